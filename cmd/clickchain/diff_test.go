package main

import (
	"math"
	"testing"

	"github.com/clickchain/clickchain/internal/model"
)

// TestDiffAnalyses tests the comparison of two finished analyses.
func TestDiffAnalyses(t *testing.T) {
	t.Parallel()

	newAnalysis := func(source string, entries []model.EntryPoint, bounces []model.BounceRate, bounceMean float64) *model.Analysis {
		analysis := model.NewAnalysis(source)
		analysis.EntryPoints = entries
		analysis.BounceRates = bounces
		analysis.Summary = &model.Summary{BounceMean: bounceMean}
		return analysis
	}

	t.Run("worsened bounce trend", func(t *testing.T) {
		t.Parallel()

		before := newAnalysis("before.csv",
			[]model.EntryPoint{{Destination: "8", Probability: 1.0}},
			[]model.BounceRate{{Source: "1", Probability: 0.2}},
			0.2,
		)
		after := newAnalysis("after.csv",
			[]model.EntryPoint{{Destination: "8", Probability: 1.0}},
			[]model.BounceRate{{Source: "1", Probability: 0.5}},
			0.5,
		)

		result := diffAnalyses(before, after)

		if result.Trend != trendWorsened {
			t.Errorf("got trend %q, expected %q", result.Trend, trendWorsened)
		}
		if len(result.BounceDeltas) != 1 {
			t.Fatalf("got %d bounce deltas, expected 1", len(result.BounceDeltas))
		}
		if math.Abs(result.BounceDeltas[0].Delta-0.3) > 1e-9 {
			t.Errorf("got delta %v, expected 0.3", result.BounceDeltas[0].Delta)
		}
	})

	t.Run("improved bounce trend", func(t *testing.T) {
		t.Parallel()

		before := newAnalysis("before.csv", nil,
			[]model.BounceRate{{Source: "1", Probability: 0.8}}, 0.8)
		after := newAnalysis("after.csv", nil,
			[]model.BounceRate{{Source: "1", Probability: 0.1}}, 0.1)

		if got := diffAnalyses(before, after).Trend; got != trendImproved {
			t.Errorf("got trend %q, expected %q", got, trendImproved)
		}
	})

	t.Run("unchanged for identical analyses", func(t *testing.T) {
		t.Parallel()

		before := newAnalysis("before.csv", nil,
			[]model.BounceRate{{Source: "1", Probability: 0.5}}, 0.5)
		after := newAnalysis("after.csv", nil,
			[]model.BounceRate{{Source: "1", Probability: 0.5}}, 0.5)

		if got := diffAnalyses(before, after).Trend; got != trendUnchanged {
			t.Errorf("got trend %q, expected %q", got, trendUnchanged)
		}
	})

	t.Run("pages absent on one side get zero", func(t *testing.T) {
		t.Parallel()

		before := newAnalysis("before.csv",
			[]model.EntryPoint{{Destination: "old", Probability: 1.0}}, nil, 0)
		after := newAnalysis("after.csv",
			[]model.EntryPoint{{Destination: "new", Probability: 1.0}}, nil, 0)

		result := diffAnalyses(before, after)

		if len(result.EntryDeltas) != 2 {
			t.Fatalf("got %d entry deltas, expected 2", len(result.EntryDeltas))
		}
		for _, d := range result.EntryDeltas {
			switch d.Page {
			case "old":
				if d.Before != 1.0 || d.After != 0.0 {
					t.Errorf("unexpected delta row for old: %+v", d)
				}
			case "new":
				if d.Before != 0.0 || d.After != 1.0 {
					t.Errorf("unexpected delta row for new: %+v", d)
				}
			default:
				t.Errorf("unexpected page %q", d.Page)
			}
		}
	})
}

// TestBuildDeltas tests delta ordering.
func TestBuildDeltas(t *testing.T) {
	t.Parallel()

	t.Run("orders by absolute movement descending", func(t *testing.T) {
		t.Parallel()

		before := map[model.PageID]float64{"a": 0.5, "b": 0.5, "c": 0.5}
		after := map[model.PageID]float64{"a": 0.6, "b": 0.1, "c": 0.5}

		deltas := buildDeltas(before, after)

		if len(deltas) != 3 {
			t.Fatalf("got %d deltas, expected 3", len(deltas))
		}
		if deltas[0].Page != "b" || deltas[1].Page != "a" || deltas[2].Page != "c" {
			t.Errorf("unexpected order: %v, %v, %v", deltas[0].Page, deltas[1].Page, deltas[2].Page)
		}
	})

	t.Run("ties break by page ascending", func(t *testing.T) {
		t.Parallel()

		before := map[model.PageID]float64{"z": 0.0, "a": 0.0}
		after := map[model.PageID]float64{"z": 0.2, "a": 0.2}

		deltas := buildDeltas(before, after)
		if deltas[0].Page != "a" || deltas[1].Page != "z" {
			t.Errorf("unexpected tie-break order: %v, %v", deltas[0].Page, deltas[1].Page)
		}
	})
}

// TestDiffCmdEndToEnd runs the diff command over real files.
func TestDiffCmdEndToEnd(t *testing.T) {
	t.Run("requires exactly two arguments", func(t *testing.T) {
		cmd := NewDiffCmd()
		cmd.SetArgs([]string{"only-one.csv"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing argument")
		}
	})

	t.Run("compares two logs", func(t *testing.T) {
		before := writeNavLog(t, "-1,8\n8,B\n")
		after := writeNavLog(t, "-1,8\n8,2\n")

		cmd := NewDiffCmd()
		cmd.SetArgs([]string{"--json", before, after})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("fails on missing input", func(t *testing.T) {
		cmd := NewDiffCmd()
		cmd.SetArgs([]string{"missing-a.csv", "missing-b.csv"})

		if err := cmd.Execute(); err == nil {
			t.Error("expected error for missing inputs")
		}
	})
}
