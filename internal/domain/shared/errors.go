package shared

import "errors"

// Error codes shared by every layer of the gateway.
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeMalformedInput     = "MALFORMED_INPUT"
	CodeNotFound           = "NOT_FOUND"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeBackendTimeout     = "BACKEND_TIMEOUT"
	CodeInternal           = "INTERNAL_ERROR"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	cause   error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return e.Message + ": " + e.cause.Error()
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any.
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers compare against the sentinel values below with errors.Is.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error that keeps cause in its chain.
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// CodeOf returns the code of the first DomainError in err's chain,
// or CodeInternal when there is none.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Common domain errors
var (
	ErrInvalidArgument    = NewDomainError(CodeInvalidArgument, "Invalid argument")
	ErrMalformedInput     = NewDomainError(CodeMalformedInput, "Malformed input")
	ErrNotFound           = NewDomainError(CodeNotFound, "Resource not found")
	ErrValidationFailed   = NewDomainError(CodeValidationFailed, "Backend rejected the profile")
	ErrBackendUnavailable = NewDomainError(CodeBackendUnavailable, "Modern backend is unavailable")
	ErrBackendTimeout     = NewDomainError(CodeBackendTimeout, "Modern backend did not respond in time")
)
