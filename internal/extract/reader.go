package extract

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/clickchain/clickchain/internal/model"
)

// Policy selects how the Reader handles malformed records. One policy
// applies to the whole run; mixing behaviors per line would make the
// skipped-record accounting meaningless.
type Policy string

const (
	// PolicySkip counts and records a malformed line, logs a warning,
	// and continues with the next line. This is the default.
	PolicySkip Policy = "skip"

	// PolicyAbort stops at the first malformed record and surfaces its
	// line number and text.
	PolicyAbort Policy = "abort"
)

// ErrUnknownPolicy is returned by ParsePolicy for unrecognized names.
var ErrUnknownPolicy = errors.New("unknown malformed-record policy")

// ParsePolicy converts a policy name (as given on the command line or in
// a config file) into a Policy. An empty name selects PolicySkip.
func ParsePolicy(name string) (Policy, error) {
	switch Policy(name) {
	case PolicySkip, "":
		return PolicySkip, nil
	case PolicyAbort:
		return PolicyAbort, nil
	default:
		return "", fmt.Errorf("%w: %q (valid: skip, abort)", ErrUnknownPolicy, name)
	}
}

const (
	// DefaultMaxSkippedDetail caps how many skipped lines keep their full
	// text and reason. The skip counter is always exact; only the retained
	// detail is bounded so a garbage input cannot exhaust memory.
	DefaultMaxSkippedDetail = 100

	// maxLineBytes is the largest input line the scanner accepts.
	// Navigation records are tiny; 1MB leaves generous headroom.
	maxLineBytes = 1 << 20

	// cancelCheckInterval is how many lines are read between context
	// cancellation checks.
	cancelCheckInterval = 4096
)

// Result holds everything one pass over an input produced.
type Result struct {
	// Transitions contains every successfully parsed record, in input order.
	Transitions []model.Transition

	// Skipped retains detail for skipped malformed lines, capped at the
	// Reader's max-detail setting.
	Skipped []model.SkippedLine

	// LinesRead is the total number of input lines consumed.
	LinesRead int

	// SkippedCount is the exact number of malformed lines skipped.
	// May exceed len(Skipped) when the detail cap was hit.
	SkippedCount int
}

// Reader consumes a line-delimited navigation log and produces transitions.
// It tracks 1-based line numbers for error reporting and applies a single
// malformed-record policy for the whole input.
type Reader struct {
	r                io.Reader
	policy           Policy
	logger           *slog.Logger
	maxSkippedDetail int
}

// ReaderOption configures a Reader.
type ReaderOption func(*Reader)

// WithPolicy sets the malformed-record policy. Default is PolicySkip.
func WithPolicy(policy Policy) ReaderOption {
	return func(r *Reader) {
		r.policy = policy
	}
}

// WithReaderLogger sets a custom logger for skip warnings.
func WithReaderLogger(logger *slog.Logger) ReaderOption {
	return func(r *Reader) {
		r.logger = logger
	}
}

// WithMaxSkippedDetail sets how many skipped lines retain full detail.
func WithMaxSkippedDetail(n int) ReaderOption {
	return func(r *Reader) {
		if n >= 0 {
			r.maxSkippedDetail = n
		}
	}
}

// NewReader creates a Reader over the given input.
func NewReader(input io.Reader, opts ...ReaderOption) *Reader {
	r := &Reader{
		r:                input,
		policy:           PolicySkip,
		maxSkippedDetail: DefaultMaxSkippedDetail,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// ReadAll consumes the whole input and returns the parsed transitions.
//
// Under PolicySkip malformed lines are counted, logged at Warn, and
// skipped. Under PolicyAbort the first malformed line fails the run with
// a *MalformedRecordError carrying its position. An empty input yields an
// empty Result and no error.
func (r *Reader) ReadAll(ctx context.Context) (*Result, error) {
	scanner := bufio.NewScanner(r.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	result := &Result{}
	line := 0

	for scanner.Scan() {
		line++

		// Long inputs should still react to Ctrl-C between lines.
		if line%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		transition, err := ParseRecord(scanner.Text())
		if err != nil {
			var malformed *MalformedRecordError
			if errors.As(err, &malformed) {
				malformed.Line = line
			}

			if r.policy == PolicyAbort {
				result.LinesRead = line
				return nil, err
			}

			result.SkippedCount++
			if malformed != nil && len(result.Skipped) < r.maxSkippedDetail {
				result.Skipped = append(result.Skipped, model.SkippedLine{
					Line:   malformed.Line,
					Text:   malformed.Text,
					Reason: malformed.Reason,
				})
			}

			r.logger.Warn("skipping malformed record",
				"line", line,
				"error", err,
			)
			continue
		}

		result.Transitions = append(result.Transitions, transition)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	result.LinesRead = line
	return result, nil
}
