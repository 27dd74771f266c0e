package styledal

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStoreConnString(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		want    StoreConnectionURL
		wantErr bool
	}{
		{"postgres", "postgresql://localhost/styles", StoreConnectionURL{StoreTypePostgresql, "localhost/styles"}, false},
		{"sqlite absolute path", "sqlite:///var/lib/styles.db", StoreConnectionURL{StoreTypeSQLite, "/var/lib/styles.db"}, false},
		{"sqlite relative path", "sqlite://styles.db", StoreConnectionURL{StoreTypeSQLite, "styles.db"}, false},
		{"no separator", "styles.db", StoreConnectionURL{}, true},
		{"unknown type", "mysql://localhost", StoreConnectionURL{}, true},
		{"empty path", "sqlite://", StoreConnectionURL{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStoreConnString(tt.str)
			if tt.wantErr {
				require.NotNil(t, err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNewPathsConfig(t *testing.T) {
	dir := t.TempDir()

	pathsConfig, err := NewPathsConfig(dir)
	require.Nil(t, err)

	assert.Equal(t, filepath.Join(dir, "styles"), pathsConfig.StylesDir)
	assert.Equal(t, filepath.Join(dir, "data", "styles.db"), pathsConfig.DefaultDBPath())

	err = pathsConfig.EnsurePaths()
	require.Nil(t, err)
	assert.DirExists(t, pathsConfig.TraceDir)
	assert.DirExists(t, pathsConfig.DataDir)
}
