// Package database opens the backend selected by configuration.
package database

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/domain/repository"
	"github.com/oksasatya/cipher/internal/infrastructure/migrations"
	"github.com/oksasatya/cipher/internal/infrastructure/mysql"
	"github.com/oksasatya/cipher/internal/infrastructure/postgres"
	"github.com/oksasatya/cipher/internal/infrastructure/sqlite"
)

// Open connects to cfg.DatabaseDialect, applies migrations when enabled and
// returns a provider that bounds connection acquisition by
// cfg.DBAcquireTimeout.
func Open(ctx context.Context, cfg *config.Config, logger logrus.FieldLogger) (repository.Provider, error) {
	if err := cfg.ValidateDatabase(); err != nil {
		return nil, err
	}
	if cfg.MigrationsEnabled {
		if err := migrations.Up(cfg.DatabaseDialect, cfg.DatabaseURL, logger); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	var (
		p   repository.Provider
		err error
	)
	switch cfg.DatabaseDialect {
	case postgres.Dialect:
		pool, perr := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if perr != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", perr)
		}
		p = postgres.NewProvider(pool)
	case mysql.Name:
		p, err = mysql.Open(ctx, cfg.DatabaseURL, mysql.Options{
			MaxOpenConns:    int(cfg.DBMaxConns),
			MaxIdleConns:    int(cfg.DBMinConns),
			ConnMaxLifetime: cfg.DBMaxConnLife,
		})
	case sqlite.Name:
		p, err = sqlite.Open(ctx, cfg.DatabaseURL)
	default:
		return nil, fmt.Errorf("unsupported database dialect %q", cfg.DatabaseDialect)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", cfg.DatabaseDialect, err)
	}

	logger.WithField("dialect", p.Dialect()).Info("database ready")
	return WithAcquireTimeout(p, cfg.DBAcquireTimeout), nil
}

type timeoutProvider struct {
	repository.Provider
	timeout time.Duration
}

// WithAcquireTimeout limits how long Acquire may wait for a pooled
// connection. The timeout does not apply to the work done afterwards.
func WithAcquireTimeout(p repository.Provider, timeout time.Duration) repository.Provider {
	if timeout <= 0 {
		return p
	}
	return &timeoutProvider{Provider: p, timeout: timeout}
}

func (t *timeoutProvider) Acquire(ctx context.Context) (repository.Repository, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Provider.Acquire(ctx)
}
