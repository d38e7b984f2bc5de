package aggregate

import (
	"errors"
	"fmt"

	"github.com/clickchain/clickchain/internal/model"
)

// ErrInconsistentTally indicates the two counting maps disagree. This is
// an internal invariant violation (a pair counted without its source, or
// vice versa), so callers should treat it as a fatal programming error,
// not a recoverable input condition.
var ErrInconsistentTally = errors.New("inconsistent tally")

// Tally accumulates transition counts and source totals in one pass.
// Both maps are kept mutually consistent by construction: Add increments
// them together, and Merge sums two consistent tallies pairwise.
type Tally struct {
	// Counts maps each distinct transition to its occurrence count.
	Counts model.TransitionCounts

	// Totals maps each source page to its total outgoing count.
	Totals model.SourceTotals
}

// NewTally creates an empty Tally.
func NewTally() *Tally {
	return &Tally{
		Counts: make(model.TransitionCounts),
		Totals: make(model.SourceTotals),
	}
}

// Add records one transition, incrementing its pair count and its
// source's total together.
func (t *Tally) Add(tr model.Transition) {
	t.Counts.Inc(tr)
	t.Totals.Inc(tr.From)
}

// AddAll records every transition in the slice. This is the single
// linear pass over the input: O(n) time, O(distinct pairs + distinct
// sources) space.
func (t *Tally) AddAll(transitions []model.Transition) {
	for _, tr := range transitions {
		t.Add(tr)
	}
}

// Merge folds another tally into this one by summation. Counting is
// associative and commutative, so merging sharded tallies in any order
// yields the same result as one sequential pass.
func (t *Tally) Merge(other *Tally) {
	if other == nil {
		return
	}
	for tr, n := range other.Counts {
		t.Counts[tr] += n
	}
	for src, n := range other.Totals {
		t.Totals[src] += n
	}
}

// Validate checks the mutual-consistency invariant: every source's total
// equals the sum of its pair counts, every count is positive, and neither
// map carries keys the other does not account for.
func (t *Tally) Validate() error {
	recomputed := make(model.SourceTotals, len(t.Totals))
	for tr, n := range t.Counts {
		if n <= 0 {
			return fmt.Errorf("%w: non-positive count %d for pair %s", ErrInconsistentTally, n, tr)
		}
		recomputed[tr.From] += n
	}

	if len(recomputed) != len(t.Totals) {
		return fmt.Errorf("%w: %d sources in totals, %d sources in pair counts",
			ErrInconsistentTally, len(t.Totals), len(recomputed))
	}
	for src, n := range recomputed {
		if t.Totals[src] != n {
			return fmt.Errorf("%w: source %q total %d != sum of pair counts %d",
				ErrInconsistentTally, src, t.Totals[src], n)
		}
	}

	return nil
}

// TallyAll builds a Tally from the full transition slice in one pass.
func TallyAll(transitions []model.Transition) *Tally {
	t := NewTally()
	t.AddAll(transitions)
	return t
}
