package docwatch

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors surfaced across component boundaries.
var (
	// ErrInvalidIdentifier marks malformed caller input; never retried.
	ErrInvalidIdentifier = errors.New("invalid company identifier")

	// ErrUnresolved means every candidate URL was exhausted without an
	// accepted response.
	ErrUnresolved = errors.New("company page unresolved")

	// ErrResolutionFailed is ErrUnresolved for a company with no scan
	// history; the only fetch-side failure surfaced to callers.
	ErrResolutionFailed = errors.New("company resolution failed")
)

// StatusError carries a non-2xx HTTP status through the fetch loop so the
// retry policy can distinguish transient from terminal responses.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s", e.StatusCode, e.URL)
}

// Transient reports whether the status is worth retrying on the same URL.
func (e *StatusError) Transient() bool {
	return e.StatusCode >= 500 || e.StatusCode == http.StatusTooManyRequests
}

// Gone reports statuses that rule the candidate out immediately.
func (e *StatusError) Gone() bool {
	return e.StatusCode == http.StatusNotFound || e.StatusCode == http.StatusGone
}
