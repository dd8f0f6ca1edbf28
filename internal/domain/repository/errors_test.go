package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBackendError(t *testing.T) {
	assert.NoError(t, NewBackendError("sqlite", "insert identity", nil, false))

	cause := errors.New("disk I/O error")
	err := NewBackendError("sqlite", "insert identity", cause, false)
	require.Error(t, err)
	assert.True(t, IsBackendError(err))
	assert.False(t, IsConflict(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "sqlite: insert identity: disk I/O error", err.Error())
}

func TestNewBackendError_Conflict(t *testing.T) {
	err := NewBackendError("postgres", "insert identity", errors.New("duplicate key"), true)
	assert.True(t, IsConflict(err))
	assert.True(t, IsBackendError(err))
}

func TestNewBackendError_KeepsExisting(t *testing.T) {
	inner := NewBackendError("mysql", "acquire", errors.New("timeout"), false)
	outer := NewBackendError("mysql", "insert profile", inner, false)
	assert.Same(t, inner, outer)
}
