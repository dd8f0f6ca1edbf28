package repository

import (
	"errors"
	"fmt"
)

// ErrConflict is wrapped into a BackendError when a unique constraint rejects a write.
var ErrConflict = errors.New("unique constraint violated")

// BackendError reports a failure of the storage backend: connectivity, pool
// exhaustion, constraint violations or serialization failures.
type BackendError struct {
	Backend string
	Op      string
	Err     error
}

func (e *BackendError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *BackendError) Unwrap() error { return e.Err }

// NewBackendError wraps err unless it is nil or already a BackendError.
// When conflict is true, ErrConflict is joined to the cause.
func NewBackendError(backend, op string, err error, conflict bool) error {
	if err == nil {
		return nil
	}
	var be *BackendError
	if errors.As(err, &be) {
		return err
	}
	if conflict {
		err = errors.Join(ErrConflict, err)
	}
	return &BackendError{Backend: backend, Op: op, Err: err}
}

// IsBackendError reports whether err comes from the storage backend.
func IsBackendError(err error) bool {
	var be *BackendError
	return errors.As(err, &be)
}

// IsConflict reports whether err was caused by a unique constraint violation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
