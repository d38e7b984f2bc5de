// Package pipeline orchestrates the analysis of a navigation log as a
// sequence of steps: extract transitions, tally them, normalize counts
// into probabilities, and derive the entry and bounce reports.
//
// Each step fills in more of the shared model.Analysis. The pipeline
// runs steps in order, respects context cancellation between steps, and
// records which steps executed. BatchProcessor runs the same pipeline
// over many input files concurrently.
package pipeline
