// Package migrations embeds the schema of every backend and applies it with
// golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	mysqlmigrate "github.com/golang-migrate/migrate/v4/database/mysql"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	driver "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/internal/infrastructure/mysql"
	"github.com/oksasatya/cipher/internal/infrastructure/postgres"
	"github.com/oksasatya/cipher/internal/infrastructure/sqlite"
)

//go:embed postgres/*.sql mysql/*.sql sqlite/*.sql
var files embed.FS

// Up applies every pending migration for dialect. It opens its own
// connection and closes it before returning.
func Up(dialect, dsn string, logger logrus.FieldLogger) error {
	m, err := newMigrate(dialect, dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	logger.WithField("dialect", dialect).Info("running migrations...")
	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info("no migrations to run")
		return nil
	}
	return err
}

// Down reverts every migration.
func Down(dialect, dsn string) error {
	m, err := newMigrate(dialect, dsn)
	if err != nil {
		return err
	}
	defer func() { _, _ = m.Close() }()

	err = m.Down()
	if errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	return err
}

func newMigrate(dialect, dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(files, dialect)
	if err != nil {
		return nil, fmt.Errorf("migrations for %q: %w", dialect, err)
	}
	db, drv, err := openDriver(dialect, dsn)
	if err != nil {
		return nil, err
	}
	m, err := migrate.NewWithInstance("iofs", src, dialect, drv)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func openDriver(dialect, dsn string) (*sql.DB, database.Driver, error) {
	var (
		db  *sql.DB
		drv database.Driver
		err error
	)
	switch dialect {
	case postgres.Dialect:
		if db, err = sql.Open("pgx", dsn); err != nil {
			return nil, nil, err
		}
		drv, err = pgmigrate.WithInstance(db, &pgmigrate.Config{})
	case mysql.Name:
		cfg, perr := driver.ParseDSN(dsn)
		if perr != nil {
			return nil, nil, fmt.Errorf("parse mysql dsn: %w", perr)
		}
		cfg.MultiStatements = true
		if db, err = sql.Open("mysql", cfg.FormatDSN()); err != nil {
			return nil, nil, err
		}
		drv, err = mysqlmigrate.WithInstance(db, &mysqlmigrate.Config{})
	case sqlite.Name:
		if db, err = sql.Open("sqlite", sqlite.NormalizeDSN(dsn)); err != nil {
			return nil, nil, err
		}
		drv, err = sqlitemigrate.WithInstance(db, &sqlitemigrate.Config{})
	default:
		return nil, nil, fmt.Errorf("unsupported database dialect %q", dialect)
	}
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return db, drv, nil
}
