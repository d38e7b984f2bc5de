package log

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// DefaultRepeatLimit is how many records sharing one message are logged
// before further repeats are suppressed.
const DefaultRepeatLimit = 10

// ThrottleHandler wraps an slog.Handler and caps repeated records that
// share the same message. The first occurrences pass through unchanged;
// when the cap is reached a single suppression notice is emitted and
// later repeats are dropped.
//
// Design decision: We use a handler wrapper rather than a custom logger
// because:
//  1. It integrates seamlessly with standard slog APIs
//  2. It works with any underlying handler (text, JSON, etc.)
//  3. Call sites keep logging unconditionally; the policy lives in one place
//
// Records are keyed by message only, not by attributes: a skip warning
// carries a different line number every time, and keying on attributes
// would defeat the throttle entirely.
type ThrottleHandler struct {
	handler slog.Handler
	state   *throttleState
}

// throttleState is shared across WithAttrs/WithGroup clones so the cap
// applies to the logger as a whole.
type throttleState struct {
	mu    sync.Mutex
	limit int
	seen  map[string]int
}

// NewThrottleHandler creates a ThrottleHandler wrapping the given handler.
// If handler is nil, the returned ThrottleHandler uses slog.Default().Handler().
// A non-positive limit falls back to DefaultRepeatLimit.
func NewThrottleHandler(handler slog.Handler, limit int) *ThrottleHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}
	if limit <= 0 {
		limit = DefaultRepeatLimit
	}
	return &ThrottleHandler{
		handler: handler,
		state: &throttleState{
			limit: limit,
			seen:  make(map[string]int),
		},
	}
}

// Enabled reports whether the handler handles records at the given level.
// It delegates to the underlying handler.
func (h *ThrottleHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle forwards the record unless its message has exceeded the repeat
// limit. Exactly one suppression notice is emitted per message.
func (h *ThrottleHandler) Handle(ctx context.Context, r slog.Record) error {
	h.state.mu.Lock()
	h.state.seen[r.Message]++
	n := h.state.seen[r.Message]
	limit := h.state.limit
	h.state.mu.Unlock()

	switch {
	case n < limit:
		return h.handler.Handle(ctx, r)
	case n == limit:
		if err := h.handler.Handle(ctx, r); err != nil {
			return err
		}
		notice := slog.NewRecord(r.Time, r.Level,
			"suppressing further occurrences of repeated message", r.PC)
		notice.AddAttrs(
			slog.String("message", r.Message),
			slog.Int("limit", limit),
		)
		return h.handler.Handle(ctx, notice)
	default:
		return nil
	}
}

// WithAttrs returns a new handler with the given attributes added.
// The repeat counters are shared with the parent handler.
func (h *ThrottleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ThrottleHandler{handler: h.handler.WithAttrs(attrs), state: h.state}
}

// WithGroup returns a new handler with the given group name.
func (h *ThrottleHandler) WithGroup(name string) slog.Handler {
	return &ThrottleHandler{handler: h.handler.WithGroup(name), state: h.state}
}

// NewLogger creates a new slog.Logger with repeat throttling.
//
// Parameters:
//   - w: The io.Writer to write log output to (typically os.Stderr)
//   - verbose: If true, sets log level to Debug; otherwise Warn
//
// Returns a *slog.Logger that can be used with slog.SetDefault() or passed
// to components that accept *slog.Logger.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	textHandler := slog.NewTextHandler(w, opts)
	return slog.New(NewThrottleHandler(textHandler, DefaultRepeatLimit))
}
