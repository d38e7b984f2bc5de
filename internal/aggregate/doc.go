// Package aggregate tallies navigation transitions into the two counting
// maps the normalizer needs: per-pair occurrence counts and per-source
// totals.
//
// Tallying is pure counting, so it is order-insensitive and the maps can
// be built in shards and merged by summation. ParallelTally exploits this
// for large inputs; the default path is a single sequential pass.
package aggregate
