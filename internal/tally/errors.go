package tally

import "errors"

// Configuration errors surfaced at construction time.
var (
	// ErrNoPool indicates an engine was built without a thread pool.
	ErrNoPool = errors.New("tally: thread pool registration required")

	// ErrNoTotals indicates an engine was built without shared totals.
	ErrNoTotals = errors.New("tally: shared category totals required")

	// ErrBadStyle indicates a style/constructor mismatch.
	ErrBadStyle = errors.New("tally: interaction style does not match engine kind")

	// ErrThreadCount indicates an invalid parallel degree.
	ErrThreadCount = errors.New("tally: thread count must be at least 1")
)
