package usecase

import (
	"errors"

	crerr "github.com/cockroachdb/errors"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
)

var (
	ErrInvalidInput          = crerr.New("invalid input")
	ErrNotFound              = crerr.New("resource not found")
	ErrConflict              = crerr.New("conflict")
	ErrDependencyUnavailable = crerr.New("dependency unavailable")
	ErrSchema                = crerr.New("schema error")
	ErrSecurity              = crerr.New("security policy violation")
)

// Ingestion errors are raised below the use case layer by the normalizers
// and the provider client.
var (
	ErrIngestion    = ingestion.ErrIngestion
	ErrMissingField = ingestion.ErrMissingField
	ErrTypeMismatch = ingestion.ErrTypeMismatch
	ErrUnavailable  = ingestion.ErrUnavailable
)

// Specific reasons wrap their category so errors.Is matches both.
var (
	ErrDuplicate       = crerr.Wrap(ErrConflict, "duplicate")
	ErrWriteNotAllowed = crerr.Wrap(ErrSecurity, "write not allowed")
	ErrUnknownQuery    = crerr.Wrap(ErrInvalidInput, "unknown query")
)

// UserMessage turns an error into text that is safe to show to an end user.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrConflict):
		return "your input was invalid: " + err.Error()
	case errors.Is(err, ErrNotFound):
		return "the requested record was not found"
	case errors.Is(err, ErrWriteNotAllowed):
		return "only read-only queries are allowed"
	case errors.Is(err, ErrSecurity):
		return "this operation is not permitted"
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrDependencyUnavailable):
		return "the external data service is unavailable, showing stored data"
	case errors.Is(err, ErrIngestion):
		return "the external data service returned data that could not be read"
	default:
		return "an internal error occurred"
	}
}
