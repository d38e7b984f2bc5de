package model

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the main result structure for one run of the pipeline.
// It accumulates the extracted transitions, the counting maps, the
// normalized probabilities, and the two derived reports.
//
// Design decision: We use a single large struct rather than many small ones
// so every pipeline step works against the same artifact and report writers
// receive everything in one place. The struct lives in memory for the
// duration of the run and is discarded after reporting; nothing is persisted.
type Analysis struct {
	// ID uniquely identifies this run.
	ID string `json:"id"`

	// Source is the input the transitions were read from. "-" means stdin.
	Source string `json:"source"`

	// StartedAt is when the pipeline began processing this input.
	StartedAt time.Time `json:"started_at"`

	// FinishedAt is when the last pipeline step completed.
	FinishedAt time.Time `json:"finished_at,omitempty"`

	// === Extraction ===

	// Transitions holds every successfully parsed navigation event,
	// in input order. Excluded from JSON due to size; the counting maps
	// and derived rows carry the reportable information.
	Transitions []Transition `json:"-"`

	// RecordsRead is the number of input lines consumed.
	RecordsRead int `json:"records_read"`

	// RecordsSkipped is the number of malformed lines skipped under the
	// skip policy. Always zero under the abort policy.
	RecordsSkipped int `json:"records_skipped"`

	// SkippedLines retains detail for skipped lines, capped by the
	// extractor so a pathological input cannot exhaust memory.
	SkippedLines []SkippedLine `json:"skipped_lines,omitempty"`

	// === Aggregation ===

	// Counts maps each distinct transition to its occurrence count.
	// Excluded from JSON: struct-keyed maps do not serialize; the derived
	// row slices carry the counts instead.
	Counts TransitionCounts `json:"-"`

	// Totals maps each source page to its total outgoing transition count.
	Totals SourceTotals `json:"-"`

	// === Normalization ===

	// Probs maps each transition to its conditional probability.
	Probs TransitionProbs `json:"-"`

	// === Derived reports ===

	// EntryPoints is the distribution of session entry destinations,
	// in the run's configured order.
	EntryPoints []EntryPoint `json:"entry_points,omitempty"`

	// BounceRates is the per-page bounce probability table, in the run's
	// configured order.
	BounceRates []BounceRate `json:"bounce_rates,omitempty"`

	// Summary contains descriptive statistics of the finished run.
	Summary *Summary `json:"summary,omitempty"`

	// === Run state ===

	// Cancelled is true if the run was interrupted before completion.
	Cancelled bool `json:"cancelled,omitempty"`

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during the run.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// SkippedLine records one malformed input line that was skipped.
type SkippedLine struct {
	// Line is the 1-based line number in the input.
	Line int `json:"line"`

	// Text is the offending line with trailing whitespace removed.
	Text string `json:"text"`

	// Reason describes why the line could not be parsed.
	Reason string `json:"reason"`
}

// EntryPoint is one row of the entry-point distribution: the probability
// that a session starts on Destination.
type EntryPoint struct {
	// Destination is the first real page of the session.
	Destination PageID `json:"destination"`

	// Count is the number of sessions that entered on Destination.
	Count int `json:"count"`

	// Probability is Count divided by the total number of entry events.
	// Entry probabilities sum to 1 across all destinations.
	Probability float64 `json:"probability"`
}

// BounceRate is one row of the bounce table: the probability that a
// visitor currently on Source leaves immediately.
//
// Each row is an independent conditional probability; bounce rates are
// not a distribution and do not sum to 1 across sources.
type BounceRate struct {
	// Source is the page the visitor bounced from.
	Source PageID `json:"source"`

	// Count is the number of bounce events recorded for Source.
	Count int `json:"count"`

	// Probability is Count divided by the total transitions out of Source.
	Probability float64 `json:"probability"`
}

// NewAnalysis creates a new Analysis for the given input source.
func NewAnalysis(source string) *Analysis {
	return &Analysis{
		ID:        uuid.NewString(),
		Source:    source,
		StartedAt: time.Now(),
		Counts:    make(TransitionCounts),
		Totals:    make(SourceTotals),
	}
}

// Finish stamps the completion time and mirrors the error state into the
// serializable ErrorMessage field.
func (a *Analysis) Finish() {
	a.FinishedAt = time.Now()
	if a.Error != nil {
		a.ErrorMessage = a.Error.Error()
	}
}

// Duration returns how long the run took. It returns zero until Finish
// has been called.
func (a *Analysis) Duration() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}
