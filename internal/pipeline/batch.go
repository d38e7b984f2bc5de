package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/clickchain/clickchain/internal/model"
)

// BatchProcessor handles concurrent analysis of multiple input files.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: We use a separate BatchProcessor rather than adding
// batch functionality to Pipeline because:
// 1. It keeps the Pipeline focused on single-input execution
// 2. It allows different batch strategies later (e.g., rate limiting)
// 3. It provides cleaner separation of concerns
//
// Counting within each input is still merged by summation, so batch runs
// preserve the order-insensitivity of the per-input results.
type BatchProcessor struct {
	// pipelineFactory creates a new pipeline for each input.
	// We use a factory to ensure each run gets a fresh pipeline instance.
	pipelineFactory func() *Pipeline

	// concurrency is the maximum number of concurrent analyses.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	// results stores completed analyses.
	// Access is synchronized via mutex.
	results []*model.Analysis
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent analyses.
// Default is 4 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
//
// The pipelineFactory function is called for each input to create a fresh
// pipeline instance. This ensures that pipeline state doesn't leak between
// runs and allows for per-input customization if needed.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
		results:         make([]*model.Analysis, 0),
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch analyzes multiple input files concurrently.
// It respects the configured concurrency limit and context cancellation.
//
// Design decision: We use errgroup.SetLimit rather than a worker pool
// because it's simpler and errgroup handles the concurrency correctly.
// Each input gets its own goroutine, but only 'concurrency' goroutines
// run simultaneously.
//
// Returns all analyses collected, in input order, even for inputs that
// failed. The error return indicates if the batch was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, inputs []string) ([]*model.Analysis, error) {
	bp.logger.Debug("starting batch processing",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	startTime := time.Now()

	// Pre-allocate results slice to maintain order
	bp.results = make([]*model.Analysis, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			bp.logger.Debug("analyzing input",
				"input", input,
				"index", i+1,
				"total", len(inputs),
			)

			analysis := model.NewAnalysis(input)

			pipeline := bp.pipelineFactory()
			err := pipeline.Execute(ctx, analysis)

			// Store result regardless of error
			// The analysis carries error information if the run failed
			bp.mu.Lock()
			bp.results[i] = analysis
			bp.mu.Unlock()

			if err != nil {
				bp.logger.Warn("analysis failed",
					"input", input,
					"error", err,
				)
				// Don't return the error to errgroup - we want the other
				// inputs to finish; the error is recorded in the analysis
				return nil
			}

			return nil
		})
	}

	err := g.Wait()

	bp.logger.Debug("batch processing complete",
		"total_inputs", len(inputs),
		"elapsed", time.Since(startTime),
	)

	return bp.results, err
}

// ProcessBatchWithCallback analyzes multiple inputs and calls a callback
// for each completed run. This is useful for streaming results.
//
// The callback receives the analysis and the index of the input in the
// original slice. The callback is called from the goroutine that completed
// the run, so it should be thread-safe if it accesses shared state.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	inputs []string,
	callback func(analysis *model.Analysis, index int),
) error {
	bp.logger.Debug("starting batch processing with callback",
		"total_inputs", len(inputs),
		"concurrency", bp.concurrency,
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, input := range inputs {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			analysis := model.NewAnalysis(input)
			pipeline := bp.pipelineFactory()
			_ = pipeline.Execute(ctx, analysis) //nolint:errcheck // Error is stored in analysis

			callback(analysis, i)

			return nil
		})
	}

	return g.Wait()
}
