package editor

import (
	"strings"

	"github.com/oksasatya/cipher/internal/domain/entity"
)

type FieldError struct {
	Field   entity.Field
	Label   string
	Message string
}

func (e FieldError) String() string {
	if e.Label == "" {
		return e.Message
	}
	return e.Label + ": " + e.Message
}

// ValidationError lists every rejected field of one submission.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.String()
	}
	return "invalid input: " + strings.Join(parts, "; ")
}
