package mysql

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	driver "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDSN(t *testing.T) {
	got, err := NormalizeDSN("cipher:secret@tcp(localhost:3306)/cipher")
	require.NoError(t, err)
	assert.True(t, strings.Contains(got, "parseTime=true"), got)

	_, err = NormalizeDSN("cipher@tcp(localhost:3306/cipher")
	assert.Error(t, err)
}

func TestIsUniqueViolation(t *testing.T) {
	dup := &driver.MySQLError{Number: 1062, Message: "Duplicate entry"}
	assert.True(t, isUniqueViolation(fmt.Errorf("insert: %w", dup)))
	assert.False(t, isUniqueViolation(&driver.MySQLError{Number: 1213}))
	assert.False(t, isUniqueViolation(errors.New("boom")))
}
