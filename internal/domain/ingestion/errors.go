package ingestion

import (
	"fmt"

	crerr "github.com/cockroachdb/errors"
)

var (
	ErrIngestion    = crerr.New("ingestion failed")
	ErrMissingField = crerr.Wrap(ErrIngestion, "missing field")
	ErrTypeMismatch = crerr.Wrap(ErrIngestion, "type mismatch")
	ErrUnavailable  = crerr.Wrap(ErrIngestion, "unavailable")
)

// ErrNotFound means the provider answered but has no such record. It is not
// an ingestion failure.
var ErrNotFound = crerr.New("provider record not found")

// FieldError points at the provider field that failed normalization. Kind
// is ErrMissingField or ErrTypeMismatch.
type FieldError struct {
	Kind   error
	Field  string
	Detail string
}

func MissingField(field string) *FieldError {
	return &FieldError{Kind: ErrMissingField, Field: field}
}

func TypeMismatch(field, detail string) *FieldError {
	return &FieldError{Kind: ErrTypeMismatch, Field: field, Detail: detail}
}

func (e *FieldError) Error() string {
	label := "missing field"
	if e.Kind == ErrTypeMismatch {
		label = "type mismatch"
	}
	if e.Detail == "" {
		return fmt.Sprintf("%s: %s", label, e.Field)
	}
	return fmt.Sprintf("%s: %s: %s", label, e.Field, e.Detail)
}

func (e *FieldError) Unwrap() error {
	return e.Kind
}
