package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no input file is specified.
	ErrNoInput = errors.New("no input specified: provide one or more log files, or - for stdin")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified. Only one output format can be used at a time.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidWorkers is returned when the tally worker count is not positive.
	ErrInvalidWorkers = errors.New("invalid workers: must be positive")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	// A batch size of zero would mean no inputs are ever processed.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrInvalidTopN is returned when the top-N row limit is negative.
	// Use 0 for unlimited rows.
	ErrInvalidTopN = errors.New("invalid top: must be non-negative (0 = unlimited)")

	// ErrInvalidPolicy is returned when the malformed-record policy is not
	// one of "skip" or "abort".
	ErrInvalidPolicy = errors.New("invalid malformed-record policy: must be skip or abort")

	// ErrInvalidOrder is returned when the sort order is not one of
	// "prob" or "page".
	ErrInvalidOrder = errors.New("invalid sort order: must be prob or page")

	// ErrInvalidSentinel is returned when a sentinel identifier is empty
	// or contains a comma (which could never appear in a parsed field).
	ErrInvalidSentinel = errors.New("invalid sentinel: must be non-empty and contain no comma")

	// ErrSentinelCollision is returned when two sentinel identifiers share
	// the same value, which would make their reports indistinguishable.
	ErrSentinelCollision = errors.New("sentinel collision: entry, bounce, and close must be distinct")
)
