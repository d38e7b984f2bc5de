package model

// PageID is an opaque text identifier for a page or sentinel state.
//
// Design decision: identifiers are kept as text even when they look
// numeric. Parsing "007" as a number would collapse it into "7" and
// silently merge two distinct pages, so no numeric coercion happens
// anywhere in the pipeline.
type PageID string

// Default reserved identifiers. They carry special meaning in reports
// but are otherwise ordinary PageID values; datasets with conflicting
// real page names can override them via Sentinels.
const (
	// DefaultEntryID is the virtual source of a session's first transition.
	DefaultEntryID PageID = "-1"

	// DefaultBounceID is the destination recorded when a visitor leaves
	// immediately after landing on a page.
	DefaultBounceID PageID = "B"

	// DefaultCloseID is the destination recorded when a session ends
	// normally. It is a valid identifier but no current report consumes
	// it; it is preserved so close events still count toward source totals.
	DefaultCloseID PageID = "C"
)

// Sentinels holds the reserved identifiers in effect for one run.
type Sentinels struct {
	// Entry is the virtual source marking session starts.
	Entry PageID `json:"entry" yaml:"entry"`

	// Bounce is the destination marking immediate session exits.
	Bounce PageID `json:"bounce" yaml:"bounce"`

	// Close is the destination marking normal session completion.
	Close PageID `json:"close" yaml:"close"`
}

// DefaultSentinels returns the standard reserved identifiers.
func DefaultSentinels() Sentinels {
	return Sentinels{
		Entry:  DefaultEntryID,
		Bounce: DefaultBounceID,
		Close:  DefaultCloseID,
	}
}

// Transition is one observed navigation event: the visitor moved from
// page From to page To. The struct is comparable and is used directly
// as a map key, so repeated identical pairs share one counter.
type Transition struct {
	// From is the source page of the navigation event.
	From PageID `json:"from"`

	// To is the destination page of the navigation event.
	To PageID `json:"to"`
}

// String returns the transition in "from -> to" form for logs and errors.
func (t Transition) String() string {
	return string(t.From) + " -> " + string(t.To)
}

// TransitionCounts maps each distinct transition to the number of times
// it was observed. It is a counting map: Inc upserts with a zero default,
// so callers never see a missing-key condition.
type TransitionCounts map[Transition]int

// Inc increments the count for t, starting from zero if unseen.
func (c TransitionCounts) Inc(t Transition) {
	c[t]++
}

// Total returns the sum of all pair counts, which equals the number of
// successfully parsed input records.
func (c TransitionCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// SourceTotals maps each source page to the total count of transitions
// originating there. For every source s that appears in TransitionCounts,
// SourceTotals[s] equals the sum of counts over all (s, *) pairs.
type SourceTotals map[PageID]int

// Inc increments the total for id, starting from zero if unseen.
func (s SourceTotals) Inc(id PageID) {
	s[id]++
}

// TransitionProbs maps each transition to its conditional probability:
// the pair's count divided by its source's total. Every value is in
// (0, 1], and for each source the values over its pairs sum to 1.
type TransitionProbs map[Transition]float64
