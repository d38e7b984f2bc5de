// Package main provides the entry point for the clickchain CLI.
//
// Clickchain computes first-order Markov transition statistics from
// page navigation logs. It reports where visitors enter a site and
// which pages they bounce from.
//
// Usage:
//
//	clickchain analyze <file>
//	clickchain analyze --json clicks.csv
//
// See --help for all available options.
package main

// main is the entry point for clickchain.
func main() {
	Execute()
}
