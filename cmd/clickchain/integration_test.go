package main

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/clickchain/clickchain/internal/model"
)

// TestAnalyzeIntegration runs the full CLI over real navigation logs.
func TestAnalyzeIntegration(t *testing.T) {
	t.Run("basic scenario through root command", func(t *testing.T) {
		input := writeNavLog(t, "-1,8\n4,8\n-1,2\n1,B\n-1,5\n")
		outputPath := filepath.Join(t.TempDir(), "report.json")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"analyze", "--json", "-o", outputPath, input})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath) //nolint:gosec // Test-controlled path
		if err != nil {
			t.Fatalf("expected report file: %v", err)
		}

		var decoded struct {
			Analysis *model.Analysis `json:"analysis"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}

		analysis := decoded.Analysis
		if analysis == nil {
			t.Fatal("expected analysis in output")
		}
		if analysis.RecordsRead != 5 {
			t.Errorf("got %d records, expected 5", analysis.RecordsRead)
		}
		if len(analysis.EntryPoints) != 3 {
			t.Fatalf("got %d entry points, expected 3", len(analysis.EntryPoints))
		}
		for _, e := range analysis.EntryPoints {
			if math.Abs(e.Probability-1.0/3.0) > 1e-9 {
				t.Errorf("destination %q: got %v, expected 1/3", e.Destination, e.Probability)
			}
		}
		if len(analysis.BounceRates) != 1 || analysis.BounceRates[0].Source != "1" {
			t.Errorf("unexpected bounce rows: %v", analysis.BounceRates)
		}
		if analysis.BounceRates[0].Probability != 1.0 {
			t.Errorf("got bounce probability %v, expected 1", analysis.BounceRates[0].Probability)
		}
	})

	t.Run("markdown output", func(t *testing.T) {
		input := writeNavLog(t, "-1,8\n8,B\n")
		outputPath := filepath.Join(t.TempDir(), "report.md")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"analyze", "--markdown", "-o", outputPath, input})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath) //nolint:gosec // Test-controlled path
		if err != nil {
			t.Fatal(err)
		}
		output := string(data)
		if !strings.Contains(output, "# Clickchain Report") {
			t.Error("expected markdown report header")
		}
		if !strings.Contains(output, "```mermaid") {
			t.Error("expected mermaid chart")
		}
	})

	t.Run("repeated pairs accumulate", func(t *testing.T) {
		input := writeNavLog(t, "7,9\n7,9\n7,4\n")
		outputPath := filepath.Join(t.TempDir(), "report.json")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"analyze", "--json", "-o", outputPath, input})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		data, err := os.ReadFile(outputPath) //nolint:gosec // Test-controlled path
		if err != nil {
			t.Fatal(err)
		}

		var decoded struct {
			Analysis *model.Analysis `json:"analysis"`
		}
		if err := json.Unmarshal(data, &decoded); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if decoded.Analysis.Summary.Transitions != 3 {
			t.Errorf("got %d transitions, expected 3", decoded.Analysis.Summary.Transitions)
		}
		if decoded.Analysis.Summary.DistinctPairs != 2 {
			t.Errorf("got %d distinct pairs, expected 2", decoded.Analysis.Summary.DistinctPairs)
		}
	})

	t.Run("abort policy fails the run", func(t *testing.T) {
		input := writeNavLog(t, "-1,8\nbroken-line\n")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"analyze", "--on-malformed", "abort",
			"-o", filepath.Join(t.TempDir(), "report.txt"), input})

		// The analyze command logs per-input failures and keeps going,
		// so the command itself succeeds while the report is withheld.
		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("multiple inputs produce multiple reports", func(t *testing.T) {
		first := writeNavLog(t, "-1,8\n")
		second := writeNavLog(t, "-1,2\n-1,2\n")
		outputPath := filepath.Join(t.TempDir(), "combined.txt")

		cmd := NewRootCmd()
		cmd.SetArgs([]string{"analyze", "--batch", "1", "-o", outputPath, first, second})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		// Sequential mode truncates per report; the file holds the last one
		data, err := os.ReadFile(outputPath) //nolint:gosec // Test-controlled path
		if err != nil {
			t.Fatal(err)
		}
		if !strings.Contains(string(data), "CLICKCHAIN REPORT") {
			t.Error("expected a report for the final input")
		}
	})

	t.Run("version through root command", func(t *testing.T) {
		cmd := NewRootCmd()
		cmd.SetArgs([]string{"version"})

		if err := cmd.Execute(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})
}
