package markov

import (
	"math"
	"testing"

	"github.com/clickchain/clickchain/internal/aggregate"
	"github.com/clickchain/clickchain/internal/model"
)

// TestSummarize tests the descriptive statistics over a finished analysis.
func TestSummarize(t *testing.T) {
	t.Parallel()

	t.Run("basic scenario", func(t *testing.T) {
		t.Parallel()

		a := model.NewAnalysis("test")
		a.RecordsRead = 5
		tally := aggregate.TallyAll([]model.Transition{
			{From: "-1", To: "8"},
			{From: "4", To: "8"},
			{From: "-1", To: "2"},
			{From: "1", To: "B"},
			{From: "-1", To: "5"},
		})
		a.Counts = tally.Counts
		a.Totals = tally.Totals

		probs, err := Normalize(a.Counts, a.Totals)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		a.Probs = probs
		a.EntryPoints = EntryDistribution(probs, a.Counts, model.DefaultSentinels(), OrderByPage)
		a.BounceRates = BounceTable(probs, a.Counts, model.DefaultSentinels(), OrderByPage)

		s := Summarize(a)

		if s.RecordsRead != 5 {
			t.Errorf("got %d records read, expected 5", s.RecordsRead)
		}
		if s.Transitions != 5 {
			t.Errorf("got %d transitions, expected 5", s.Transitions)
		}
		if s.DistinctPairs != 5 {
			t.Errorf("got %d distinct pairs, expected 5", s.DistinctPairs)
		}
		if s.DistinctSources != 3 {
			t.Errorf("got %d distinct sources, expected 3", s.DistinctSources)
		}
		if s.EntryDestinations != 3 {
			t.Errorf("got %d entry destinations, expected 3", s.EntryDestinations)
		}

		// Uniform distribution over 3 entry pages: entropy is log2(3) bits.
		wantEntropy := math.Log2(3)
		if math.Abs(s.EntryEntropyBits-wantEntropy) > tolerance {
			t.Errorf("got entropy %v, expected %v", s.EntryEntropyBits, wantEntropy)
		}

		if s.BouncePages != 1 {
			t.Errorf("got %d bounce pages, expected 1", s.BouncePages)
		}
		if math.Abs(s.BounceMean-1.0) > tolerance {
			t.Errorf("got bounce mean %v, expected 1.0", s.BounceMean)
		}
		// Sample stddev is undefined for one page; reported as zero.
		if s.BounceStdDev != 0 {
			t.Errorf("got bounce stddev %v, expected 0", s.BounceStdDev)
		}
		if s.BounceMaxPage != "1" {
			t.Errorf("got max bounce page %q, expected %q", s.BounceMaxPage, "1")
		}
	})

	t.Run("single entry page has zero entropy", func(t *testing.T) {
		t.Parallel()

		a := model.NewAnalysis("test")
		tally := aggregate.TallyAll([]model.Transition{
			{From: "-1", To: "8"},
			{From: "-1", To: "8"},
		})
		a.Counts = tally.Counts
		a.Totals = tally.Totals
		probs, err := Normalize(a.Counts, a.Totals)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		a.EntryPoints = EntryDistribution(probs, a.Counts, model.DefaultSentinels(), OrderByPage)

		s := Summarize(a)
		if math.Abs(s.EntryEntropyBits) > tolerance {
			t.Errorf("got entropy %v, expected 0", s.EntryEntropyBits)
		}
	})

	t.Run("bounce spread across pages", func(t *testing.T) {
		t.Parallel()

		a := model.NewAnalysis("test")
		tally := aggregate.TallyAll([]model.Transition{
			{From: "1", To: "B"},
			{From: "2", To: "B"},
			{From: "2", To: "3"},
			{From: "2", To: "3"},
			{From: "2", To: "3"},
		})
		a.Counts = tally.Counts
		a.Totals = tally.Totals
		probs, err := Normalize(a.Counts, a.Totals)
		if err != nil {
			t.Fatalf("normalize: %v", err)
		}
		a.BounceRates = BounceTable(probs, a.Counts, model.DefaultSentinels(), OrderByPage)

		s := Summarize(a)
		// Page 1 bounces 1.0, page 2 bounces 0.25.
		if math.Abs(s.BounceMean-0.625) > tolerance {
			t.Errorf("got bounce mean %v, expected 0.625", s.BounceMean)
		}
		if s.BounceStdDev <= 0 {
			t.Errorf("got bounce stddev %v, expected positive", s.BounceStdDev)
		}
		if math.Abs(s.BounceMax-1.0) > tolerance || s.BounceMaxPage != "1" {
			t.Errorf("got max %v on %q, expected 1.0 on page 1", s.BounceMax, s.BounceMaxPage)
		}
	})

	t.Run("empty analysis", func(t *testing.T) {
		t.Parallel()

		a := model.NewAnalysis("test")
		s := Summarize(a)

		if s.Transitions != 0 || s.EntryEntropyBits != 0 || s.BounceMean != 0 {
			t.Errorf("expected zero summary, got %+v", s)
		}
	})
}
