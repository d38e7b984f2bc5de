package aggregate

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/clickchain/clickchain/internal/model"
)

// basicScenario returns the canonical five-record input.
func basicScenario() []model.Transition {
	return []model.Transition{
		{From: "-1", To: "8"},
		{From: "4", To: "8"},
		{From: "-1", To: "2"},
		{From: "1", To: "B"},
		{From: "-1", To: "5"},
	}
}

// TestTallyAll tests the single-pass aggregation.
func TestTallyAll(t *testing.T) {
	t.Parallel()

	t.Run("basic scenario", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll(basicScenario())

		wantTotals := model.SourceTotals{"-1": 3, "4": 1, "1": 1}
		if len(tally.Totals) != len(wantTotals) {
			t.Fatalf("got %d sources, expected %d", len(tally.Totals), len(wantTotals))
		}
		for src, want := range wantTotals {
			if tally.Totals[src] != want {
				t.Errorf("source %q: got %d, expected %d", src, tally.Totals[src], want)
			}
		}

		if got := tally.Counts[model.Transition{From: "-1", To: "8"}]; got != 1 {
			t.Errorf("got count %d for (-1,8), expected 1", got)
		}
		if got := tally.Counts[model.Transition{From: "1", To: "B"}]; got != 1 {
			t.Errorf("got count %d for (1,B), expected 1", got)
		}
	})

	t.Run("repeated pair shares one counter", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll([]model.Transition{
			{From: "-1", To: "8"},
			{From: "-1", To: "8"},
			{From: "-1", To: "2"},
		})

		if got := tally.Counts[model.Transition{From: "-1", To: "8"}]; got != 2 {
			t.Errorf("got count %d for (-1,8), expected 2", got)
		}
		if got := tally.Totals["-1"]; got != 3 {
			t.Errorf("got total %d for -1, expected 3", got)
		}
	})

	t.Run("count conservation", func(t *testing.T) {
		t.Parallel()

		input := basicScenario()
		tally := TallyAll(input)

		if got := tally.Counts.Total(); got != len(input) {
			t.Errorf("got %d total counts, expected %d input records", got, len(input))
		}
	})

	t.Run("empty input yields empty maps", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll(nil)
		if len(tally.Counts) != 0 || len(tally.Totals) != 0 {
			t.Errorf("expected empty maps, got %d pairs and %d sources",
				len(tally.Counts), len(tally.Totals))
		}
	})
}

// TestTallyOrderInsensitivity tests that permuting the input does not
// change the resulting maps.
func TestTallyOrderInsensitivity(t *testing.T) {
	t.Parallel()

	input := basicScenario()
	want := TallyAll(input)

	rng := rand.New(rand.NewSource(1))
	for range 5 {
		shuffled := make([]model.Transition, len(input))
		copy(shuffled, input)
		rng.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})

		got := TallyAll(shuffled)
		assertTalliesEqual(t, got, want)
	}
}

// TestTallyMerge tests summation merge of sharded tallies.
func TestTallyMerge(t *testing.T) {
	t.Parallel()

	t.Run("merge of shards equals sequential pass", func(t *testing.T) {
		t.Parallel()

		input := basicScenario()
		want := TallyAll(input)

		merged := NewTally()
		merged.Merge(TallyAll(input[:2]))
		merged.Merge(TallyAll(input[2:]))

		assertTalliesEqual(t, merged, want)
	})

	t.Run("merging nil is a no-op", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll(basicScenario())
		before := tally.Counts.Total()

		tally.Merge(nil)
		if tally.Counts.Total() != before {
			t.Error("expected nil merge to leave tally unchanged")
		}
	})
}

// TestTallyValidate tests the mutual-consistency check.
func TestTallyValidate(t *testing.T) {
	t.Parallel()

	t.Run("well-formed tally passes", func(t *testing.T) {
		t.Parallel()

		if err := TallyAll(basicScenario()).Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("empty tally passes", func(t *testing.T) {
		t.Parallel()

		if err := NewTally().Validate(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("detects total drift", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll(basicScenario())
		tally.Totals["-1"] = 99

		if err := tally.Validate(); !errors.Is(err, ErrInconsistentTally) {
			t.Errorf("expected ErrInconsistentTally, got %v", err)
		}
	})

	t.Run("detects missing source total", func(t *testing.T) {
		t.Parallel()

		tally := TallyAll(basicScenario())
		delete(tally.Totals, "4")

		if err := tally.Validate(); !errors.Is(err, ErrInconsistentTally) {
			t.Errorf("expected ErrInconsistentTally, got %v", err)
		}
	})

	t.Run("detects non-positive count", func(t *testing.T) {
		t.Parallel()

		tally := NewTally()
		tally.Counts[model.Transition{From: "1", To: "2"}] = 0

		if err := tally.Validate(); !errors.Is(err, ErrInconsistentTally) {
			t.Errorf("expected ErrInconsistentTally, got %v", err)
		}
	})
}

// assertTalliesEqual fails the test if the two tallies differ.
func assertTalliesEqual(t *testing.T, got, want *Tally) {
	t.Helper()

	if len(got.Counts) != len(want.Counts) {
		t.Fatalf("got %d pairs, expected %d", len(got.Counts), len(want.Counts))
	}
	for tr, n := range want.Counts {
		if got.Counts[tr] != n {
			t.Errorf("pair %s: got %d, expected %d", tr, got.Counts[tr], n)
		}
	}

	if len(got.Totals) != len(want.Totals) {
		t.Fatalf("got %d sources, expected %d", len(got.Totals), len(want.Totals))
	}
	for src, n := range want.Totals {
		if got.Totals[src] != n {
			t.Errorf("source %q: got %d, expected %d", src, got.Totals[src], n)
		}
	}
}
