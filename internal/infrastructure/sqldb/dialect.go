// Package sqldb implements the repository over database/sql. The MySQL and
// SQLite backends share it and differ only by their Dialect.
package sqldb

import "database/sql"

// Dialect carries the SQL differences between backends.
type Dialect struct {
	Name string
	// Isolation is used for every transaction; it should be the strongest
	// level the driver supports.
	Isolation sql.IsolationLevel
	// LockSuffix is appended to row reads that precede an update, e.g.
	// " FOR UPDATE". Empty where the engine locks the whole database.
	LockSuffix string
	// InsertIgnore prefixes an insert that skips duplicate keys.
	InsertIgnore string
	// IsUniqueViolation reports driver errors caused by a unique key.
	IsUniqueViolation func(error) bool
}

func (d Dialect) conflict(err error) bool {
	return d.IsUniqueViolation != nil && d.IsUniqueViolation(err)
}
