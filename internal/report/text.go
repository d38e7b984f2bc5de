package report

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/clickchain/clickchain/internal/model"
)

// TextWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type TextWriter struct {
	baseWriter

	// printer renders counts with locale-aware thousands separators,
	// which keeps large click logs readable.
	printer *message.Printer

	// showEmpty controls whether sections with no rows are shown.
	showEmpty bool
}

// TextWriterOption configures a TextWriter.
type TextWriterOption func(*TextWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) TextWriterOption {
	return func(w *TextWriter) {
		w.showEmpty = show
	}
}

// NewTextWriter creates a TextWriter that outputs to the given writer.
func NewTextWriter(output io.Writer, opts ...TextWriterOption) *TextWriter {
	w := &TextWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
		showEmpty:  false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full analysis in human-readable format.
func (w *TextWriter) Write(analysis *model.Analysis) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, analysis)
	if analysis.Summary != nil {
		w.writeSummary(&sb, analysis.Summary)
	}
	w.writeEntryPoints(&sb, analysis)
	w.writeBounceRates(&sb, analysis)
	w.writeSkipped(&sb, analysis)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// WriteSummary outputs only the summary statistics.
func (w *TextWriter) WriteSummary(summary *model.Summary) (int, error) {
	var sb strings.Builder
	w.writeSummary(&sb, summary)
	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with run information.
func (w *TextWriter) writeHeader(sb *strings.Builder, analysis *model.Analysis) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        CLICKCHAIN REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Input:     %s\n", analysis.Source))
	sb.WriteString(fmt.Sprintf("Run ID:    %s\n", analysis.ID))
	sb.WriteString(fmt.Sprintf("Analyzed:  %s\n", analysis.StartedAt.Format("2006-01-02 15:04:05 MST")))

	switch {
	case analysis.Cancelled:
		sb.WriteString("Status:    CANCELLED (partial results)\n")
	case analysis.ErrorMessage != "":
		sb.WriteString(fmt.Sprintf("Status:    ERROR - %s\n", analysis.ErrorMessage))
	default:
		sb.WriteString("Status:    Complete\n")
	}

	sb.WriteString("\n")
}

// writeSummary writes the summary statistics section.
func (w *TextWriter) writeSummary(sb *strings.Builder, summary *model.Summary) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(w.printer.Sprintf("  Records read:      %d\n", summary.RecordsRead))
	sb.WriteString(w.printer.Sprintf("  Records skipped:   %d\n", summary.RecordsSkipped))
	sb.WriteString(w.printer.Sprintf("  Transitions:       %d\n", summary.Transitions))
	sb.WriteString(w.printer.Sprintf("  Distinct pairs:    %d\n", summary.DistinctPairs))
	sb.WriteString(w.printer.Sprintf("  Distinct sources:  %d\n", summary.DistinctSources))

	if summary.EntryDestinations > 0 {
		sb.WriteString(w.printer.Sprintf("  Entry pages:       %d", summary.EntryDestinations))
		sb.WriteString(fmt.Sprintf("  (entropy %.3f bits)\n", summary.EntryEntropyBits))
	}
	if summary.BouncePages > 0 {
		sb.WriteString(w.printer.Sprintf("  Bouncing pages:    %d", summary.BouncePages))
		sb.WriteString(fmt.Sprintf("  (mean %.4f, max %.4f on page %s)\n",
			summary.BounceMean, summary.BounceMax, summary.BounceMaxPage))
	}

	sb.WriteString("\n")
}

// writeEntryPoints writes the entry-point distribution table.
func (w *TextWriter) writeEntryPoints(sb *strings.Builder, analysis *model.Analysis) {
	if len(analysis.EntryPoints) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("ENTRY POINT DISTRIBUTION\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(analysis.EntryPoints) == 0 {
		sb.WriteString("  No entry transitions recorded\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  %-24s %12s %14s\n", "PAGE", "SESSIONS", "PROBABILITY"))
	for _, row := range analysis.EntryPoints {
		sb.WriteString(fmt.Sprintf("  %-24s %12s %14.4f\n",
			row.Destination, w.printer.Sprintf("%d", row.Count), row.Probability))
	}
	sb.WriteString("\n")
}

// writeBounceRates writes the bounce-rate table.
func (w *TextWriter) writeBounceRates(sb *strings.Builder, analysis *model.Analysis) {
	if len(analysis.BounceRates) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("BOUNCE RATES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(analysis.BounceRates) == 0 {
		sb.WriteString("  No bounces recorded\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("  %-24s %12s %14s\n", "PAGE", "BOUNCES", "PROBABILITY"))
	for _, row := range analysis.BounceRates {
		sb.WriteString(fmt.Sprintf("  %-24s %12s %14.4f\n",
			row.Source, w.printer.Sprintf("%d", row.Count), row.Probability))
	}
	sb.WriteString("\n")
}

// writeSkipped writes detail for skipped malformed lines.
func (w *TextWriter) writeSkipped(sb *strings.Builder, analysis *model.Analysis) {
	if analysis.RecordsSkipped == 0 {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(w.printer.Sprintf("SKIPPED RECORDS (%d)\n", analysis.RecordsSkipped))
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	for _, skipped := range analysis.SkippedLines {
		sb.WriteString(fmt.Sprintf("  line %d: %s (%q)\n", skipped.Line, skipped.Reason, skipped.Text))
	}
	if analysis.RecordsSkipped > len(analysis.SkippedLines) {
		sb.WriteString(w.printer.Sprintf("  ... and %d more\n",
			analysis.RecordsSkipped-len(analysis.SkippedLines)))
	}
	sb.WriteString("\n")
}

// writeFooter writes the report footer.
func (w *TextWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
