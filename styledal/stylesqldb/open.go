package stylesqldb

import (
	"strings"

	"github.com/jamesrr39/goutil/errorsx"
	"github.com/jamesrr39/ownmap-symbolizer/styledal"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// OpenPostgres connects to a Postgres database, e.g. "user:password@localhost/styles?sslmode=disable"
func OpenPostgres(connStr string) (*StyleSQLDB, errorsx.Error) {
	if !strings.HasPrefix(connStr, "postgresql://") && !strings.HasPrefix(connStr, "postgres://") {
		connStr = "postgresql://" + connStr
	}

	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, errorsx.Wrap(err)
	}

	return NewStyleSQLDB(db, "postgresql database")
}

// OpenSQLite opens, creating if necessary, a SQLite database file
func OpenSQLite(path string) (*StyleSQLDB, errorsx.Error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errorsx.Wrap(err, "path", path)
	}

	// SQLite allows a single writer at a time
	db.SetMaxOpenConns(1)

	return NewStyleSQLDB(db, "sqlite database "+path)
}

// Open opens the store a parsed connection string points to
func Open(conn styledal.StoreConnectionURL) (*StyleSQLDB, errorsx.Error) {
	switch conn.Type {
	case styledal.StoreTypeSQLite:
		return OpenSQLite(conn.ConnectionPath)
	case styledal.StoreTypePostgresql:
		return OpenPostgres(conn.ConnectionPath)
	default:
		return nil, errorsx.Errorf("unrecognized store type: %q", conn.Type)
	}
}
