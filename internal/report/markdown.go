package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/clickchain/clickchain/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full analysis in Markdown format.
func (w *MarkdownWriter) Write(analysis *model.Analysis) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, analysis)
	if analysis.Summary != nil {
		w.writeSummaryTable(md, analysis.Summary)
	}
	w.writeAlert(md, analysis)
	w.writeEntryPoints(md, analysis)
	w.writeBounceRates(md, analysis)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSummary outputs only the summary statistics in Markdown format.
func (w *MarkdownWriter) WriteSummary(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)
	md.H1("Clickchain Summary")
	md.PlainText("")
	w.writeSummaryTable(md, summary)
	return len(md.String()), md.Build()
}

// writeHeader writes the report header with run information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, analysis *model.Analysis) {
	md.H1("Clickchain Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Input", "`" + analysis.Source + "`"},
			{"Run ID", "`" + analysis.ID + "`"},
			{"Analyzed", analysis.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.getStatusText(analysis)},
		},
	})
	md.PlainText("")
}

// getStatusText returns the status text based on run state.
func (w *MarkdownWriter) getStatusText(analysis *model.Analysis) string {
	if analysis.Cancelled {
		return "⚠️ Cancelled (partial results)"
	}
	if analysis.ErrorMessage != "" {
		return "❌ Error - " + analysis.ErrorMessage
	}
	return "✅ Complete"
}

// writeSummaryTable writes the summary statistics section.
func (w *MarkdownWriter) writeSummaryTable(md *markdown.Markdown, summary *model.Summary) {
	md.H2("Summary")
	md.PlainText("")

	rows := [][]string{
		{"Records read", strconv.Itoa(summary.RecordsRead)},
		{"Records skipped", strconv.Itoa(summary.RecordsSkipped)},
		{"Transitions", strconv.Itoa(summary.Transitions)},
		{"Distinct pairs", strconv.Itoa(summary.DistinctPairs)},
		{"Distinct sources", strconv.Itoa(summary.DistinctSources)},
	}
	if summary.EntryDestinations > 0 {
		rows = append(rows,
			[]string{"Entry pages", strconv.Itoa(summary.EntryDestinations)},
			[]string{"Entry entropy (bits)", fmt.Sprintf("%.3f", summary.EntryEntropyBits)},
		)
	}
	if summary.BouncePages > 0 {
		rows = append(rows,
			[]string{"Bouncing pages", strconv.Itoa(summary.BouncePages)},
			[]string{"Mean bounce rate", fmt.Sprintf("%.4f", summary.BounceMean)},
			[]string{"Highest bounce rate", fmt.Sprintf("%.4f (`%s`)", summary.BounceMax, summary.BounceMaxPage)},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert when the input was not fully clean.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, analysis *model.Analysis) {
	switch {
	case analysis.RecordsSkipped > 0:
		md.Warningf(
			"%d malformed record(s) were skipped. Probabilities are computed over the remaining %d transition(s).",
			analysis.RecordsSkipped, analysis.RecordsRead-analysis.RecordsSkipped,
		)
		md.PlainText("")
	case analysis.RecordsRead == 0:
		md.Note("The input contained no records.")
		md.PlainText("")
	}
}

// writeEntryPoints writes the entry-point distribution with a pie chart.
func (w *MarkdownWriter) writeEntryPoints(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Entry Point Distribution")
	md.PlainText("")

	if len(analysis.EntryPoints) == 0 {
		md.PlainText("No entry transitions recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.EntryPoints))
	for i, row := range analysis.EntryPoints {
		rows[i] = []string{
			"`" + string(row.Destination) + "`",
			strconv.Itoa(row.Count),
			fmt.Sprintf("%.4f", row.Probability),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Sessions", "Probability"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writePieChart(md, analysis.EntryPoints)
}

// writePieChart writes a mermaid pie chart of entry destinations.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, entries []model.EntryPoint) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Session Entry Points"),
		piechart.WithShowData(true),
	)

	for _, row := range entries {
		chart.LabelAndIntValue(string(row.Destination), uint64(row.Count))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeBounceRates writes the bounce-rate table.
func (w *MarkdownWriter) writeBounceRates(md *markdown.Markdown, analysis *model.Analysis) {
	md.H2("Bounce Rates")
	md.PlainText("")

	if len(analysis.BounceRates) == 0 {
		md.PlainText("No bounces recorded.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(analysis.BounceRates))
	for i, row := range analysis.BounceRates {
		rows[i] = []string{
			"`" + string(row.Source) + "`",
			strconv.Itoa(row.Count),
			fmt.Sprintf("%.4f", row.Probability),
		}
	}
	md.Table(markdown.TableSet{
		Header: []string{"Page", "Bounces", "Probability"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [clickchain](https://github.com/clickchain/clickchain)*")
}
