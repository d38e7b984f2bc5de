package markov

import (
	"errors"
	"math"
	"testing"

	"github.com/clickchain/clickchain/internal/aggregate"
	"github.com/clickchain/clickchain/internal/model"
)

const tolerance = 1e-9

// TestNormalize tests probability computation from the counting maps.
func TestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("basic scenario", func(t *testing.T) {
		t.Parallel()

		tally := aggregate.TallyAll([]model.Transition{
			{From: "-1", To: "8"},
			{From: "4", To: "8"},
			{From: "-1", To: "2"},
			{From: "1", To: "B"},
			{From: "-1", To: "5"},
		})

		probs, err := Normalize(tally.Counts, tally.Totals)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		third := 1.0 / 3.0
		tests := []struct {
			tr   model.Transition
			want float64
		}{
			{model.Transition{From: "-1", To: "8"}, third},
			{model.Transition{From: "-1", To: "2"}, third},
			{model.Transition{From: "-1", To: "5"}, third},
			{model.Transition{From: "4", To: "8"}, 1.0},
			{model.Transition{From: "1", To: "B"}, 1.0},
		}
		for _, tt := range tests {
			if got := probs[tt.tr]; math.Abs(got-tt.want) > tolerance {
				t.Errorf("pair %s: got %v, expected %v", tt.tr, got, tt.want)
			}
		}
	})

	t.Run("repeated pair scenario", func(t *testing.T) {
		t.Parallel()

		tally := aggregate.TallyAll([]model.Transition{
			{From: "-1", To: "8"},
			{From: "-1", To: "8"},
			{From: "-1", To: "2"},
		})

		probs, err := Normalize(tally.Counts, tally.Totals)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if got := probs[model.Transition{From: "-1", To: "8"}]; math.Abs(got-2.0/3.0) > tolerance {
			t.Errorf("got %v for (-1,8), expected 2/3", got)
		}
		if got := probs[model.Transition{From: "-1", To: "2"}]; math.Abs(got-1.0/3.0) > tolerance {
			t.Errorf("got %v for (-1,2), expected 1/3", got)
		}
	})

	t.Run("per-source probabilities sum to 1", func(t *testing.T) {
		t.Parallel()

		// Uneven counts to exercise non-trivial divisions.
		tally := aggregate.NewTally()
		input := []model.Transition{
			{From: "a", To: "b"}, {From: "a", To: "b"}, {From: "a", To: "c"},
			{From: "a", To: "d"}, {From: "a", To: "d"}, {From: "a", To: "d"},
			{From: "b", To: "B"}, {From: "b", To: "c"},
			{From: "-1", To: "a"},
		}
		tally.AddAll(input)

		probs, err := Normalize(tally.Counts, tally.Totals)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		sums := make(map[model.PageID]float64)
		for tr, p := range probs {
			if p <= 0 || p > 1 {
				t.Errorf("pair %s: probability %v out of (0,1]", tr, p)
			}
			sums[tr.From] += p
		}
		for src, sum := range sums {
			if math.Abs(sum-1.0) > tolerance {
				t.Errorf("source %q: probabilities sum to %v, expected 1", src, sum)
			}
		}
	})

	t.Run("empty maps yield empty probabilities", func(t *testing.T) {
		t.Parallel()

		probs, err := Normalize(make(model.TransitionCounts), make(model.SourceTotals))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(probs) != 0 {
			t.Errorf("got %d probabilities, expected 0", len(probs))
		}
	})

	t.Run("missing source total is fatal", func(t *testing.T) {
		t.Parallel()

		counts := model.TransitionCounts{
			{From: "ghost", To: "8"}: 1,
		}

		_, err := Normalize(counts, make(model.SourceTotals))
		if !errors.Is(err, ErrMissingSourceTotal) {
			t.Errorf("expected ErrMissingSourceTotal, got %v", err)
		}
	})
}
