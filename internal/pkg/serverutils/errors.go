package serverutils

import "fmt"

// Error kinds exposed in the structured error body.
const (
	KindValidationError = "VALIDATION_ERROR"
	KindUpstreamError   = "UPSTREAM_PROVIDER_ERROR"
	KindParseError      = "PARSE_ERROR"
	KindInternalError   = "INTERNAL_ERROR"
)

// AppError carries an HTTP status, a stable kind, and a caller-safe message.
// Validation errors keep their detail; everything else gets a generic message
// at the middleware and the underlying error is only logged.
type AppError struct {
	Code    int
	Kind    string
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError builds a 400 whose message is returned to the caller.
func NewValidationError(message string) *AppError {
	return &AppError{Code: 400, Kind: KindValidationError, Message: message}
}
