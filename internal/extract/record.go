package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/clickchain/clickchain/internal/model"
)

// ErrMalformedRecord is the sentinel matched by errors.Is for any record
// that does not split into exactly two non-empty comma-separated fields.
var ErrMalformedRecord = errors.New("malformed record")

// MalformedRecordError describes one unparseable input line. It wraps
// ErrMalformedRecord so callers can match the class with errors.Is while
// still reaching the offending line via errors.As.
type MalformedRecordError struct {
	// Line is the 1-based position in the input, or 0 when the record
	// was parsed outside of a Reader.
	Line int

	// Text is the offending record with trailing whitespace removed.
	Text string

	// Reason describes what made the record unparseable.
	Reason string
}

// Error returns a human-readable description including the line number
// when known.
func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record at line %d: %s (%q)", e.Line, e.Reason, e.Text)
	}
	return fmt.Sprintf("malformed record: %s (%q)", e.Reason, e.Text)
}

// Unwrap makes the error match ErrMalformedRecord via errors.Is.
func (e *MalformedRecordError) Unwrap() error {
	return ErrMalformedRecord
}

// ParseRecord parses one raw input line into a transition.
//
// The line must split into exactly two non-empty comma-separated fields
// after trimming trailing whitespace. Both fields are retained as opaque
// text; numeric-looking identifiers are never coerced, so "007" and "7"
// remain distinct pages.
func ParseRecord(line string) (model.Transition, error) {
	trimmed := strings.TrimRight(line, " \t\r\n")

	fields := strings.Split(trimmed, ",")
	if len(fields) != 2 {
		return model.Transition{}, &MalformedRecordError{
			Text:   trimmed,
			Reason: fmt.Sprintf("expected 2 comma-separated fields, got %d", len(fields)),
		}
	}
	if fields[0] == "" || fields[1] == "" {
		return model.Transition{}, &MalformedRecordError{
			Text:   trimmed,
			Reason: "empty field",
		}
	}

	return model.Transition{
		From: model.PageID(fields[0]),
		To:   model.PageID(fields[1]),
	}, nil
}
