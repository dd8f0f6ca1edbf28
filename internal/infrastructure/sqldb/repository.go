package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
)

// querier is implemented by both *sql.Conn and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type scanner interface {
	Scan(dest ...any) error
}

type Provider struct {
	db      *sql.DB
	dialect Dialect
}

func NewProvider(db *sql.DB, dialect Dialect) *Provider {
	return &Provider{db: db, dialect: dialect}
}

// DB exposes the pool for callers that need raw access, such as migrations.
func (p *Provider) DB() *sql.DB { return p.db }

func (p *Provider) Acquire(ctx context.Context) (repository.Repository, error) {
	conn, err := p.db.Conn(ctx)
	if err != nil {
		return nil, p.backendErr("acquire connection", err)
	}
	return &Repository{dialect: p.dialect, conn: conn, q: conn}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return p.backendErr("ping", p.db.PingContext(ctx))
}

func (p *Provider) Dialect() string { return p.dialect.Name }

func (p *Provider) Close() error {
	return p.backendErr("close", p.db.Close())
}

func (p *Provider) backendErr(op string, err error) error {
	return repository.NewBackendError(p.dialect.Name, op, err, p.dialect.conflict(err))
}

type Repository struct {
	dialect Dialect
	conn    *sql.Conn
	q       querier
	tx      *sql.Tx
}

func (r *Repository) Release() {
	if r.tx != nil || r.conn == nil {
		return
	}
	_ = r.conn.Close()
	r.conn = nil
}

func (r *Repository) WithinTransaction(ctx context.Context, work func(tx repository.Repository) error) error {
	return r.inTx(ctx, func(tx *Repository) error { return work(tx) })
}

// inTx runs fn in a transaction at the dialect's isolation level, or
// directly when r already is inside one. Errors from fn are returned as is.
func (r *Repository) inTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.conn.BeginTx(ctx, &sql.TxOptions{Isolation: r.dialect.Isolation})
	if err != nil {
		return r.backendErr("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(&Repository{dialect: r.dialect, conn: r.conn, q: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return r.backendErr("commit transaction", err)
	}
	return nil
}

func (r *Repository) backendErr(op string, err error) error {
	return repository.NewBackendError(r.dialect.Name, op, err, r.dialect.conflict(err))
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func fieldColumns(alias string) string {
	cols := make([]string, len(entity.ProfileFieldOrder))
	for i, f := range entity.ProfileFieldOrder {
		if alias != "" {
			cols[i] = alias + "." + string(f)
		} else {
			cols[i] = string(f)
		}
	}
	return strings.Join(cols, ", ")
}

var (
	_ repository.Provider   = (*Provider)(nil)
	_ repository.Repository = (*Repository)(nil)
)
