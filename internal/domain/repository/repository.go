package repository

import "context"

// Provider hands out repositories bound to one pooled connection of the
// configured backend.
type Provider interface {
	// Acquire blocks until a connection is free or ctx is done. Pool
	// exhaustion and connectivity failures are returned as *BackendError.
	Acquire(ctx context.Context) (Repository, error)
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Dialect names the backend, e.g. "postgres".
	Dialect() string
	Close() error
}

// Repository is a session over a single borrowed connection. It must be
// released once the unit of work is done and must not be shared between
// goroutines.
type Repository interface {
	IdentityRepository
	ProfileRepository
	StaffRoleRepository

	// WithinTransaction runs work inside one transaction and commits iff work
	// returns nil. Calls made on the repository passed to work join that
	// transaction, including nested WithinTransaction calls. The error
	// returned by work is passed through unchanged.
	WithinTransaction(ctx context.Context, work func(tx Repository) error) error

	// Release returns the connection to the pool.
	Release()
}
