package model

import (
	"errors"
	"testing"
)

// TestNewAnalysis tests Analysis construction.
func TestNewAnalysis(t *testing.T) {
	t.Parallel()

	a := NewAnalysis("clicks.csv")

	if a.ID == "" {
		t.Error("expected a run ID to be assigned")
	}
	if a.Source != "clicks.csv" {
		t.Errorf("got %q, expected %q", a.Source, "clicks.csv")
	}
	if a.StartedAt.IsZero() {
		t.Error("expected StartedAt to be set")
	}
	if a.Counts == nil || a.Totals == nil {
		t.Error("expected counting maps to be initialized")
	}

	b := NewAnalysis("clicks.csv")
	if a.ID == b.ID {
		t.Error("expected distinct run IDs for distinct analyses")
	}
}

// TestAnalysisFinish tests completion stamping and error mirroring.
func TestAnalysisFinish(t *testing.T) {
	t.Parallel()

	t.Run("successful run", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("-")
		if a.Duration() != 0 {
			t.Error("expected zero duration before Finish")
		}

		a.Finish()
		if a.FinishedAt.IsZero() {
			t.Error("expected FinishedAt to be set")
		}
		if a.ErrorMessage != "" {
			t.Errorf("got %q, expected empty error message", a.ErrorMessage)
		}
		if a.Duration() < 0 {
			t.Error("expected non-negative duration")
		}
	})

	t.Run("failed run mirrors error message", func(t *testing.T) {
		t.Parallel()

		a := NewAnalysis("-")
		a.Error = errors.New("boom")
		a.Finish()

		if a.ErrorMessage != "boom" {
			t.Errorf("got %q, expected %q", a.ErrorMessage, "boom")
		}
	})
}
