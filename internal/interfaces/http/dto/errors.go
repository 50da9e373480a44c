package dto

import (
	"net/http"

	"github.com/profilegateway/backend/internal/domain/shared"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeInvalidArgument is used when a required profile is absent
	ErrCodeInvalidArgument = "ERR_INVALID_ARGUMENT"
	// ErrCodeMalformedInput is used when a legacy profile cannot be split
	ErrCodeMalformedInput = "ERR_MALFORMED_INPUT"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeValidation is used when request binding validation fails
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeRequestTooLarge is used when the body exceeds http.max_body_size
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeConflict is used when an idempotency key is still in flight
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeIdempotencyKeyReused is used when a key is replayed with a different body
	ErrCodeIdempotencyKeyReused = "ERR_IDEMPOTENCY_KEY_REUSED"
	// ErrCodeValidationFailed is used when the modern backend rejects a profile
	ErrCodeValidationFailed = "ERR_VALIDATION_FAILED"
)

// Upstream error codes
const (
	ErrCodeBackendUnavailable = "ERR_BACKEND_UNAVAILABLE"
	ErrCodeBackendTimeout     = "ERR_BACKEND_TIMEOUT"
	ErrCodeServiceUnavailable = "ERR_SERVICE_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeInvalidArgument: http.StatusBadRequest,
	ErrCodeMalformedInput:  http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:         http.StatusNotFound,
	ErrCodeConflict:             http.StatusConflict,
	ErrCodeIdempotencyKeyReused: http.StatusUnprocessableEntity,
	ErrCodeValidationFailed:     http.StatusUnprocessableEntity,

	ErrCodeBackendUnavailable: http.StatusBadGateway,
	ErrCodeBackendTimeout:     http.StatusGatewayTimeout,
	ErrCodeServiceUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to wire codes
var DomainErrorCodeMapping = map[string]string{
	shared.CodeInvalidArgument:    ErrCodeInvalidArgument,
	shared.CodeMalformedInput:     ErrCodeMalformedInput,
	shared.CodeNotFound:           ErrCodeNotFound,
	shared.CodeValidationFailed:   ErrCodeValidationFailed,
	shared.CodeBackendUnavailable: ErrCodeBackendUnavailable,
	shared.CodeBackendTimeout:     ErrCodeBackendTimeout,
	shared.CodeInternal:           ErrCodeInternal,
}

// NormalizeErrorCode converts a domain error code to its wire code
// If the code is already in the wire format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if wire, ok := DomainErrorCodeMapping[code]; ok {
		return wire
	}
	return code
}
