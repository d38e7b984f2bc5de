// Package log provides throttled logging functionality built on top of
// the standard slog package.
//
// This package extends slog to provide:
//   - Suppression of runaway repeated messages (e.g. one warning per
//     malformed line in a multi-gigabyte input)
//   - Configurable log levels with verbose mode support
//   - Consistent log formatting across the application
//
// # Throttling
//
// The ThrottleHandler caps how many records sharing the same message are
// forwarded to the underlying handler. When the cap is reached it emits a
// single notice and drops further repeats, so a pathological input cannot
// flood stderr while ordinary runs stay fully logged.
//
// # Usage
//
//	// Create a throttled logger
//	logger := log.NewLogger(os.Stderr, true) // verbose=true
//
//	// Use as a standard slog.Logger
//	logger.Warn("skipping malformed record", "line", 17)
//
//	// Set as default logger
//	slog.SetDefault(logger)
package log
