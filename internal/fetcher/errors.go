package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
)

// FetchError classifies a failed feed retrieval. It never propagates past the
// per-feed ingest step; the ingest pipeline folds it into a failed attempt row.
type FetchError struct {
	StatusCode int
	Message    string
	Timeout    bool
	Cause      error
}

func (e *FetchError) Error() string {
	if e == nil {
		return "<nil>"
	}

	parts := make([]string, 0, 4)
	parts = append(parts, "fetch error")

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}
	if msg := strings.TrimSpace(e.Message); msg != "" {
		parts = append(parts, msg)
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}

	return strings.Join(parts, ": ")
}

func (e *FetchError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// IsTimeout reports whether an error was caused by the per-fetch deadline.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Timeout
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}

	return false
}
