package domain

import "errors"

// Error taxonomy. Callers wrap these with fmt.Errorf("...: %w", Err...) so the
// HTTP layer and the sync scheduler can classify failures with errors.Is.
var (
	// ErrMalformedInput marks bad caller input (unparseable date, page or
	// page-size out of range, unknown granularity). Reported to the caller,
	// never retried.
	ErrMalformedInput = errors.New("malformed input")

	// ErrSourceUnavailable marks a transport-level fetch failure (timeout,
	// connection error, non-2xx). The affected measurement kind is skipped
	// for the current cycle and retried on the next schedule.
	ErrSourceUnavailable = errors.New("source unavailable")

	// ErrSchemaViolation marks an unexpected source payload shape, e.g. no
	// identifiable reading column. Fatal for the current cycle.
	ErrSchemaViolation = errors.New("source schema violation")

	// ErrStoreUnavailable marks a persistence or query failure.
	ErrStoreUnavailable = errors.New("store unavailable")
)
