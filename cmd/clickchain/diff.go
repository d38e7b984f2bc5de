package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clickchain/clickchain/internal/config"
	"github.com/clickchain/clickchain/internal/log"
	"github.com/clickchain/clickchain/internal/model"
)

// Constants for the bounce trend verdict.
const (
	trendWorsened  = "worsened"
	trendImproved  = "improved"
	trendUnchanged = "unchanged"
)

// trendTolerance is the minimum mean bounce-rate movement treated as a
// real change rather than noise.
const trendTolerance = 1e-9

// NewDiffCmd creates the diff command.
// This command compares transition statistics between two navigation logs.
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <before-file> <after-file>",
		Short: "Compare transition statistics between two navigation logs",
		Long: `Diff analyzes two navigation logs and shows how entry-point
probabilities and bounce rates moved between them. Use it to compare
traffic before and after a site change.

Both logs are analyzed with the same settings; pages present in only
one log appear with a zero value on the other side.

Examples:
  # Compare last week against this week
  clickchain diff lastweek.csv thisweek.csv

  # Machine-readable comparison
  clickchain diff --json before.csv after.csv`,
		Args: cobra.ExactArgs(2),
		RunE: runDiffCmd,
	}

	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of goroutines used to tally each input")
	cmd.Flags().String("on-malformed", config.DefaultPolicy,
		`Malformed record handling: "skip" or "abort"`)
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output comparison result in Markdown format")

	return cmd
}

// runDiffCmd executes the diff command.
func runDiffCmd(cmd *cobra.Command, args []string) error {
	cfg := config.NewConfig()
	cfg.Inputs = args

	var err error
	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return err
	}
	cfg.Policy, err = cmd.Flags().GetString("on-malformed")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}
	if jsonOutput && markdownOutput {
		return config.ErrConflictingReportFormats
	}

	cfg.Verbose = getVerboseFlag(cmd)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	ctx := context.Background()

	before, err := analyzeForDiff(ctx, cfg, args[0], logger)
	if err != nil {
		return err
	}
	after, err := analyzeForDiff(ctx, cfg, args[1], logger)
	if err != nil {
		return err
	}

	result := diffAnalyses(before, after)

	if jsonOutput {
		return outputDiffJSON(result)
	}
	if markdownOutput {
		return outputDiffMarkdown(result)
	}
	return outputDiffText(result)
}

// analyzeForDiff runs the full pipeline over one input.
func analyzeForDiff(ctx context.Context, cfg *config.Config, input string, logger *slog.Logger) (*model.Analysis, error) {
	p, err := createPipelineForInput(cfg, logger)
	if err != nil {
		return nil, err
	}

	analysis := model.NewAnalysis(input)
	if err := p.Execute(ctx, analysis); err != nil {
		return nil, fmt.Errorf("analyze %s: %w", input, err)
	}
	return analysis, nil
}

// DiffResult holds the comparison between two analyses.
type DiffResult struct {
	// Before is the input path of the baseline log.
	Before string `json:"before"`

	// After is the input path of the compared log.
	After string `json:"after"`

	// EntryDeltas lists per-page entry probability movement, ordered by
	// absolute movement descending.
	EntryDeltas []PageDelta `json:"entry_deltas,omitempty"`

	// BounceDeltas lists per-page bounce probability movement, ordered by
	// absolute movement descending.
	BounceDeltas []PageDelta `json:"bounce_deltas,omitempty"`

	// BounceMeanBefore is the mean bounce rate of the baseline log.
	BounceMeanBefore float64 `json:"bounce_mean_before"`

	// BounceMeanAfter is the mean bounce rate of the compared log.
	BounceMeanAfter float64 `json:"bounce_mean_after"`

	// Trend is "improved", "worsened", or "unchanged" based on the mean
	// bounce rate movement. Lower bounce rates are an improvement.
	Trend string `json:"trend"`
}

// PageDelta is the probability movement for a single page.
type PageDelta struct {
	// Page is the page identifier.
	Page model.PageID `json:"page"`

	// Before is the probability in the baseline log. Zero if absent.
	Before float64 `json:"before"`

	// After is the probability in the compared log. Zero if absent.
	After float64 `json:"after"`

	// Delta is After minus Before.
	Delta float64 `json:"delta"`
}

// diffAnalyses compares two finished analyses.
func diffAnalyses(before, after *model.Analysis) *DiffResult {
	result := &DiffResult{
		Before: before.Source,
		After:  after.Source,
	}

	entryBefore := make(map[model.PageID]float64, len(before.EntryPoints))
	for _, row := range before.EntryPoints {
		entryBefore[row.Destination] = row.Probability
	}
	entryAfter := make(map[model.PageID]float64, len(after.EntryPoints))
	for _, row := range after.EntryPoints {
		entryAfter[row.Destination] = row.Probability
	}
	result.EntryDeltas = buildDeltas(entryBefore, entryAfter)

	bounceBefore := make(map[model.PageID]float64, len(before.BounceRates))
	for _, row := range before.BounceRates {
		bounceBefore[row.Source] = row.Probability
	}
	bounceAfter := make(map[model.PageID]float64, len(after.BounceRates))
	for _, row := range after.BounceRates {
		bounceAfter[row.Source] = row.Probability
	}
	result.BounceDeltas = buildDeltas(bounceBefore, bounceAfter)

	if before.Summary != nil {
		result.BounceMeanBefore = before.Summary.BounceMean
	}
	if after.Summary != nil {
		result.BounceMeanAfter = after.Summary.BounceMean
	}

	movement := result.BounceMeanAfter - result.BounceMeanBefore
	switch {
	case movement > trendTolerance:
		result.Trend = trendWorsened
	case movement < -trendTolerance:
		result.Trend = trendImproved
	default:
		result.Trend = trendUnchanged
	}

	return result
}

// buildDeltas merges two probability maps into a delta table ordered by
// absolute movement descending, page ascending on ties.
func buildDeltas(before, after map[model.PageID]float64) []PageDelta {
	pages := make(map[model.PageID]struct{}, len(before)+len(after))
	for page := range before {
		pages[page] = struct{}{}
	}
	for page := range after {
		pages[page] = struct{}{}
	}

	deltas := make([]PageDelta, 0, len(pages))
	for page := range pages {
		deltas = append(deltas, PageDelta{
			Page:   page,
			Before: before[page],
			After:  after[page],
			Delta:  after[page] - before[page],
		})
	}

	sort.Slice(deltas, func(i, j int) bool {
		di, dj := abs(deltas[i].Delta), abs(deltas[j].Delta)
		if di != dj {
			return di > dj
		}
		return deltas[i].Page < deltas[j].Page
	})

	return deltas
}

// abs returns the absolute value of f.
func abs(f float64) float64 {
	if f < 0 {
		return -f
	}
	return f
}

// outputDiffJSON outputs the comparison result in JSON format.
func outputDiffJSON(result *DiffResult) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// outputDiffMarkdown outputs the comparison result in Markdown format.
func outputDiffMarkdown(result *DiffResult) error {
	fmt.Printf("# Comparison: %s vs %s\n\n", result.Before, result.After)

	fmt.Println("## Summary")
	fmt.Printf("\n**Bounce Trend:** %s\n\n", formatTrend(result.Trend))
	fmt.Println("| Metric | Before | After | Change |")
	fmt.Println("|--------|--------|-------|--------|")
	fmt.Printf("| Mean bounce rate | %.4f | %.4f | %+.4f |\n",
		result.BounceMeanBefore, result.BounceMeanAfter,
		result.BounceMeanAfter-result.BounceMeanBefore)

	if len(result.EntryDeltas) > 0 {
		fmt.Printf("\n## Entry Point Changes (%d)\n\n", len(result.EntryDeltas))
		printDeltaTableMarkdown(result.EntryDeltas)
	}

	if len(result.BounceDeltas) > 0 {
		fmt.Printf("\n## Bounce Rate Changes (%d)\n\n", len(result.BounceDeltas))
		printDeltaTableMarkdown(result.BounceDeltas)
	}

	return nil
}

// printDeltaTableMarkdown prints one delta table as a Markdown table.
func printDeltaTableMarkdown(deltas []PageDelta) {
	fmt.Println("| Page | Before | After | Change |")
	fmt.Println("|------|--------|-------|--------|")
	for _, d := range deltas {
		fmt.Printf("| `%s` | %.4f | %.4f | %+.4f |\n", d.Page, d.Before, d.After, d.Delta)
	}
}

// outputDiffText outputs the comparison result in human-readable format.
func outputDiffText(result *DiffResult) error {
	fmt.Printf("Comparison: %s -> %s\n", result.Before, result.After)
	fmt.Println(strings.Repeat("=", 60))

	fmt.Printf("\nBounce Trend: %s\n", formatTrend(result.Trend))
	fmt.Printf("  mean bounce rate: %.4f -> %.4f (%+.4f)\n",
		result.BounceMeanBefore, result.BounceMeanAfter,
		result.BounceMeanAfter-result.BounceMeanBefore)

	if len(result.EntryDeltas) > 0 {
		fmt.Println("\nEntry Point Changes:")
		printDeltaTable(result.EntryDeltas)
	}

	if len(result.BounceDeltas) > 0 {
		fmt.Println("\nBounce Rate Changes:")
		printDeltaTable(result.BounceDeltas)
	}

	return nil
}

// printDeltaTable prints one delta table.
func printDeltaTable(deltas []PageDelta) {
	fmt.Printf("  %-24s  %-10s  %-10s  %-10s\n", "Page", "Before", "After", "Change")
	fmt.Println("  " + strings.Repeat("-", 58))
	for _, d := range deltas {
		fmt.Printf("  %-24s  %-10.4f  %-10.4f  %+-10.4f\n", d.Page, d.Before, d.After, d.Delta)
	}
}

// formatTrend formats the bounce trend for display.
func formatTrend(trend string) string {
	switch trend {
	case trendImproved:
		return "IMPROVED (bounce rate decreased)"
	case trendWorsened:
		return "WORSENED (bounce rate increased)"
	default:
		return "UNCHANGED"
	}
}
