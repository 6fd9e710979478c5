package openlibrary

import (
	"errors"
	"fmt"
)

// Sentinel kinds for client errors.
var (
	ErrRequest          = errors.New("openlibrary request failed")
	ErrDecode           = errors.New("openlibrary response decode failed")
	ErrResponseTooLarge = errors.New("openlibrary response too large")
	ErrRateLimited      = errors.New("openlibrary rate limit wait exceeds deadline")
)

// StatusError reports a non-200 upstream response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("openlibrary: unexpected status code: %d", e.Code)
}
