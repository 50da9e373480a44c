package modern

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/profilegateway/backend/internal/domain/shared"
)

// contextError maps a finished context to a backend error kind.
func contextError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return shared.WrapDomainError(shared.CodeBackendTimeout, "Modern backend did not respond in time", err)
	}
	return shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend call was cancelled", err)
}

// transportError classifies a failure to get any response at all.
func transportError(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return shared.WrapDomainError(shared.CodeBackendTimeout, "Modern backend did not respond in time", err)
	}
	if errors.Is(err, context.Canceled) {
		return contextError(err)
	}
	return shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend is unreachable", err)
}

// statusError classifies a non-2xx response. body is a short excerpt kept
// only in the error chain.
func statusError(status int, body string) error {
	cause := fmt.Errorf("status %d: %s", status, body)
	switch {
	case status == http.StatusNotFound:
		return shared.WrapDomainError(shared.CodeNotFound, "Customer not found", cause)
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		return shared.WrapDomainError(shared.CodeValidationFailed, "Modern backend rejected the profile", cause)
	case status == http.StatusGatewayTimeout:
		return shared.WrapDomainError(shared.CodeBackendTimeout, "Modern backend did not respond in time", cause)
	default:
		return shared.WrapDomainError(shared.CodeBackendUnavailable, "Modern backend returned an error", cause)
	}
}

// isTransient reports whether retrying the same read could succeed. Other
// 4xx statuses, such as 401 and 403, are reported as unavailable but not
// retried.
func isTransient(status int) bool {
	return status == http.StatusRequestTimeout ||
		status == http.StatusTooManyRequests ||
		status >= http.StatusInternalServerError
}
