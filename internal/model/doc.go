// Package model defines the core data structures used throughout clickchain.
//
// This package contains the following main types:
//   - PageID / Transition: One observed (source, destination) navigation event
//   - TransitionCounts / SourceTotals: The counting maps built by aggregation
//   - TransitionProbs: Normalized per-source transition probabilities
//   - Analysis: The per-run artifact filled by the pipeline
//   - Summary: Descriptive statistics of a finished run
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (extract, aggregate, markov, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output.
package model
