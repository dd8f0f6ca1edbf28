// Package sqlite opens the SQLite backend on modernc.org/sqlite.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/oksasatya/cipher/internal/infrastructure/sqldb"
)

const Name = "sqlite"

// SQLite serializes writers on its own and has no row locks.
var Dialect = sqldb.Dialect{
	Name:              Name,
	Isolation:         sql.LevelDefault,
	InsertIgnore:      "INSERT OR IGNORE INTO",
	IsUniqueViolation: isUniqueViolation,
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

// NormalizeDSN drops a sqlite:// scheme and enables foreign keys and a busy
// timeout unless the DSN already sets pragmas of its own.
func NormalizeDSN(dsn string) string {
	dsn = strings.TrimPrefix(dsn, "sqlite://")
	if strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
}

// Open uses a single connection; SQLite allows one writer at a time.
func Open(ctx context.Context, dsn string) (*sqldb.Provider, error) {
	db, err := sql.Open("sqlite", NormalizeDSN(dsn))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sqldb.NewProvider(db, Dialect), nil
}
