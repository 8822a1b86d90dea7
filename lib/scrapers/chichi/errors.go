package chichi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrLoginFailed    = errors.New("failed to login to serverchichi")
	ErrPlayerNotFound = errors.New("player not found")
)

// StatusError is returned when the server answered but with a
// non-success HTTP status.
type StatusError struct {
	Code int
	Url  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Code, e.Url)
}

// ListingError aborts the pagination stream at the offset it occurred;
// entries yielded before it remain valid.
type ListingError struct {
	Offset int
	Err    error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("failed to fetch roster page at offset %d: %s", e.Offset, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// IsTransient classifies an error as worth retrying: server-side 5xx
// statuses, timeouts and transport failures are transient, while 4xx
// statuses, missing players and cancellation are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, ErrPlayerNotFound) {
		return false
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Code >= http.StatusInternalServerError
	}

	// transport-level failures: refused connections, resets, timeouts
	return true
}
