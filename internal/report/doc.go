// Package report renders a finished analysis in the supported output
// formats: human-readable text (default), JSON, and GitHub-flavored
// Markdown. All writers implement the same Writer interface so the CLI
// can swap formats and destinations without changing the pipeline.
package report
