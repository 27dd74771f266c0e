package styledal

import (
	"strings"
	"time"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styling"
)

// StoredStyleSummary describes a saved style without loading its rules
type StoredStyleSummary struct {
	Name      string    `json:"name" db:"name"`
	RuleCount int       `json:"ruleCount" db:"rule_count"`
	SavedAt   time.Time `json:"savedAt" db:"saved_at"`
}

// StyleStore persists feature type styles by name. Load and Delete return errorsx.ObjectNotFound for unknown names.
type StyleStore interface {
	Name() string
	Save(style *styling.FeatureTypeStyle) errorsx.Error
	Load(name string) (*styling.FeatureTypeStyle, errorsx.Error)
	List() ([]*StoredStyleSummary, errorsx.Error)
	Delete(name string) errorsx.Error
	Close() errorsx.Error
}

type StoreType string

const (
	StoreTypeSQLite     StoreType = "sqlite"
	StoreTypePostgresql StoreType = "postgresql"
)

type StoreConnectionURL struct {
	Type           StoreType
	ConnectionPath string
}

const ConnectionPathSeparator = "://"

// ParseStoreConnString splits a connection string such as "sqlite:///path/to/styles.db" or
// "postgresql://user@localhost/styles" into the store type and the part after the separator
func ParseStoreConnString(str string) (StoreConnectionURL, errorsx.Error) {
	idx := strings.Index(str, ConnectionPathSeparator)
	if idx < 0 {
		return StoreConnectionURL{}, errorsx.Errorf("couldn't find connection path separator %q in store connection string", ConnectionPathSeparator)
	}

	conn := StoreConnectionURL{
		Type:           StoreType(str[:idx]),
		ConnectionPath: str[idx+len(ConnectionPathSeparator):],
	}

	switch conn.Type {
	case StoreTypeSQLite, StoreTypePostgresql:
	default:
		return StoreConnectionURL{}, errorsx.Errorf("unknown store type %q", conn.Type)
	}

	if conn.ConnectionPath == "" {
		return StoreConnectionURL{}, errorsx.Errorf("empty connection path in %q", str)
	}

	return conn, nil
}
