package domain

import "time"

// FetchAttempt is the audit record of one poll of one feed. Exactly one is
// written per feed per cycle, before any derived rows, and every derived row
// carries its ID.
type FetchAttempt struct {
	ID            string
	FeedName      string
	FeedURL       string
	FetchedAt     time.Time
	FeedTimestamp *time.Time
	Success       bool
	ErrorDetail   *string
}
