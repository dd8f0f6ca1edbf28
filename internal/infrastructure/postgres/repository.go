package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/cipher/internal/domain/entity"
	"github.com/oksasatya/cipher/internal/domain/repository"
)

const Dialect = "postgres"

// querier is implemented by both *pgxpool.Conn and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Provider acquires repositories from a pgx pool.
type Provider struct {
	pool *pgxpool.Pool
}

func NewProvider(pool *pgxpool.Pool) *Provider {
	return &Provider{pool: pool}
}

func (p *Provider) Acquire(ctx context.Context) (repository.Repository, error) {
	conn, err := p.pool.Acquire(ctx)
	if err != nil {
		return nil, backendErr("acquire connection", err)
	}
	return &Repository{conn: conn, q: conn}, nil
}

func (p *Provider) Ping(ctx context.Context) error {
	return backendErr("ping", p.pool.Ping(ctx))
}

func (p *Provider) Dialect() string { return Dialect }

func (p *Provider) Close() error {
	p.pool.Close()
	return nil
}

// Repository runs every query on one pooled connection, or on the open
// transaction when tx is set.
type Repository struct {
	conn *pgxpool.Conn
	q    querier
	tx   pgx.Tx
}

func (r *Repository) Release() {
	if r.tx != nil || r.conn == nil {
		return
	}
	r.conn.Release()
	r.conn = nil
}

func (r *Repository) WithinTransaction(ctx context.Context, work func(tx repository.Repository) error) error {
	return r.inTx(ctx, func(tx *Repository) error { return work(tx) })
}

// inTx runs fn in a serializable transaction, or directly when r already is
// inside one. Errors from fn are returned as is; failures to begin or commit
// are backend errors.
func (r *Repository) inTx(ctx context.Context, fn func(tx *Repository) error) error {
	if r.tx != nil {
		return fn(r)
	}
	tx, err := r.conn.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return backendErr("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(&Repository{conn: r.conn, q: tx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return backendErr("commit transaction", err)
	}
	return nil
}

func backendErr(op string, err error) error {
	var pgErr *pgconn.PgError
	conflict := errors.As(err, &pgErr) && pgErr.Code == "23505"
	return repository.NewBackendError(Dialect, op, err, conflict)
}

// placeholders returns "$from, ..., $(from+n-1)".
func placeholders(from, n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(parts, ", ")
}

func fieldColumns() string {
	cols := make([]string, len(entity.ProfileFieldOrder))
	for i, f := range entity.ProfileFieldOrder {
		cols[i] = string(f)
	}
	return strings.Join(cols, ", ")
}

var (
	_ repository.Provider   = (*Provider)(nil)
	_ repository.Repository = (*Repository)(nil)
)
