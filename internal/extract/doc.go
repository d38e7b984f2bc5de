// Package extract parses raw navigation-log records into transitions.
//
// A record is one line of text with exactly two comma-separated fields:
// the source page and the destination page. ParseRecord handles a single
// line; Reader consumes a whole input stream with a configurable policy
// for malformed records (skip-and-count or abort-on-first).
package extract
