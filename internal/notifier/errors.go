package notifier

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kursadbilgin/hipchat-notifier/internal/domain"
)

// ErrorKind discriminates publish failures.
type ErrorKind string

const (
	KindNone            ErrorKind = ""
	KindTransport       ErrorKind = "transport"
	KindInvalidResponse ErrorKind = "invalid_response"
	KindUnknown         ErrorKind = "unknown"
)

// TransportError is a failure before any response was obtained.
type TransportError struct {
	Destination domain.Destination
	Cause       error
}

func (e *TransportError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := []string{"notification transport error", e.Destination.String()}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

func (e *TransportError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// InvalidResponseError is any response other than 204 No Content.
type InvalidResponseError struct {
	Destination domain.Destination
	StatusCode  int
	Body        string
}

func (e *InvalidResponseError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := []string{
		"notification rejected",
		e.Destination.String(),
		fmt.Sprintf("status=%d", e.StatusCode),
	}
	if body := strings.TrimSpace(e.Body); body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, ": ")
}

// KindOf reports which failure kind err carries.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var invalidErr *InvalidResponseError
	if errors.As(err, &invalidErr) {
		return KindInvalidResponse
	}

	var transportErr *TransportError
	if errors.As(err, &transportErr) {
		return KindTransport
	}

	return KindUnknown
}

// IsTransient reports whether trying again later could succeed.
// Nothing in this package retries; the answer is for callers.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var invalidErr *InvalidResponseError
	if errors.As(err, &invalidErr) {
		return isTransientHTTPStatus(invalidErr.StatusCode)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}

func isTransientHTTPStatus(statusCode int) bool {
	return statusCode == http.StatusTooManyRequests || (statusCode >= http.StatusInternalServerError && statusCode <= 599)
}
