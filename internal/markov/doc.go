// Package markov turns the counting maps into a first-order Markov view
// of browsing behavior: per-source transition probabilities, the entry
// point distribution, the per-page bounce table, and the descriptive
// summary statistics reported alongside them.
package markov
