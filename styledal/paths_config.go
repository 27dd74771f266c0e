package styledal

import (
	"os"
	"path/filepath"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/goutil/userextra"
)

const defaultRootDir = "~/.local/share/github.com/jamesrr39/ownmap-symbolizer/"

type PathsConfig struct {
	StylesDir string
	TraceDir  string
	DataDir   string
}

// NewPathsConfig lays the directories out under rootDir. An empty rootDir means the default, in the user's home
// directory.
func NewPathsConfig(rootDir string) (*PathsConfig, errorsx.Error) {
	if rootDir == "" {
		rootDir = defaultRootDir
	}

	expanded, err := userextra.ExpandUser(rootDir)
	if err != nil {
		return nil, errorsx.Wrap(err, "rootDir", rootDir)
	}

	return &PathsConfig{
		StylesDir: filepath.Join(expanded, "styles"),
		TraceDir:  filepath.Join(expanded, "traces"),
		DataDir:   filepath.Join(expanded, "data"),
	}, nil
}

func (pc *PathsConfig) EnsurePaths() errorsx.Error {
	for _, dirPath := range []string{pc.StylesDir, pc.TraceDir, pc.DataDir} {
		err := os.MkdirAll(dirPath, 0755)
		if err != nil {
			return errorsx.Wrap(err)
		}
	}

	return nil
}

// DefaultDBPath is the SQLite database used when no Postgres connection is configured
func (pc *PathsConfig) DefaultDBPath() string {
	return filepath.Join(pc.DataDir, "styles.db")
}
