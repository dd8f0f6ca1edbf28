package database

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/cipher/config"
	"github.com/oksasatya/cipher/internal/domain/repository"
)

type blockingProvider struct {
	repository.Provider
	deadline bool
}

func (b *blockingProvider) Acquire(ctx context.Context) (repository.Repository, error) {
	_, b.deadline = ctx.Deadline()
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestWithAcquireTimeout(t *testing.T) {
	inner := &blockingProvider{}
	p := WithAcquireTimeout(inner, 20*time.Millisecond)

	start := time.Now()
	_, err := p.Acquire(context.Background())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, inner.deadline)
	assert.Less(t, time.Since(start), time.Second)

	assert.Same(t, inner, WithAcquireTimeout(inner, 0))
}

func TestOpenRejectsBadConfig(t *testing.T) {
	logger, _ := test.NewNullLogger()
	_, err := Open(context.Background(), &config.Config{DatabaseDialect: "oracle", DatabaseURL: "x"}, logger)
	assert.ErrorContains(t, err, "DATABASE_DIALECT")

	_, err = Open(context.Background(), &config.Config{DatabaseDialect: "sqlite"}, logger)
	assert.ErrorContains(t, err, "DATABASE_URL is required")

	_, err = Open(context.Background(), &config.Config{DatabaseDialect: "sqlite", DatabaseURL: ":memory:", MigrationsEnabled: true}, logger)
	assert.ErrorContains(t, err, "in-memory")
}

func TestOpenSQLite(t *testing.T) {
	logger, hook := test.NewNullLogger()
	p, err := Open(context.Background(), &config.Config{
		DatabaseDialect:   "sqlite",
		DatabaseURL:       "file:" + filepath.Join(t.TempDir(), "cipher.db"),
		MigrationsEnabled: true,
		DBAcquireTimeout:  time.Second,
	}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = p.Close() })

	assert.Equal(t, "sqlite", p.Dialect())
	require.NoError(t, p.Ping(context.Background()))

	repo, err := p.Acquire(context.Background())
	require.NoError(t, err)
	defer repo.Release()
	roles, err := repo.StaffRoles(context.Background())
	require.NoError(t, err)
	assert.Empty(t, roles)

	require.NotNil(t, hook.LastEntry())
	assert.Equal(t, "database ready", hook.LastEntry().Message)
}
