package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/clickchain/clickchain/internal/aggregate"
	"github.com/clickchain/clickchain/internal/extract"
	"github.com/clickchain/clickchain/internal/markov"
	"github.com/clickchain/clickchain/internal/model"
)

// StdinSource is the input path that selects standard input.
const StdinSource = "-"

// ExtractStep reads the analysis source and parses it into transitions.
// This is the only step that touches the filesystem.
type ExtractStep struct {
	// policy selects malformed-record handling for the whole input.
	policy extract.Policy

	// maxSkippedDetail caps retained detail for skipped lines.
	maxSkippedDetail int

	// logger for structured logging.
	logger *slog.Logger
}

// ExtractStepOption configures an ExtractStep.
type ExtractStepOption func(*ExtractStep)

// WithExtractPolicy sets the malformed-record policy.
func WithExtractPolicy(policy extract.Policy) ExtractStepOption {
	return func(s *ExtractStep) {
		s.policy = policy
	}
}

// WithExtractMaxSkippedDetail caps the retained skipped-line detail.
func WithExtractMaxSkippedDetail(n int) ExtractStepOption {
	return func(s *ExtractStep) {
		s.maxSkippedDetail = n
	}
}

// WithExtractLogger sets a custom logger for the extract step.
func WithExtractLogger(logger *slog.Logger) ExtractStepOption {
	return func(s *ExtractStep) {
		s.logger = logger
	}
}

// NewExtractStep creates a new extraction step.
func NewExtractStep(opts ...ExtractStepOption) *ExtractStep {
	s := &ExtractStep{
		policy:           extract.PolicySkip,
		maxSkippedDetail: extract.DefaultMaxSkippedDetail,
		logger:           slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return "extract"
}

// Do executes the extraction step. The analysis source "-" reads stdin;
// anything else is opened as a file.
func (s *ExtractStep) Do(ctx context.Context, analysis *model.Analysis) error {
	input := os.Stdin
	if analysis.Source != StdinSource {
		f, err := os.Open(analysis.Source) //nolint:gosec // User-provided input path is intentional
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close() //nolint:errcheck // Read-only file
		input = f
	}

	reader := extract.NewReader(input,
		extract.WithPolicy(s.policy),
		extract.WithMaxSkippedDetail(s.maxSkippedDetail),
		extract.WithReaderLogger(s.logger),
	)

	result, err := reader.ReadAll(ctx)
	if err != nil {
		return fmt.Errorf("extract %s: %w", analysis.Source, err)
	}

	analysis.Transitions = result.Transitions
	analysis.RecordsRead = result.LinesRead
	analysis.RecordsSkipped = result.SkippedCount
	analysis.SkippedLines = result.Skipped

	s.logger.Debug("extraction completed",
		"source", analysis.Source,
		"records", result.LinesRead,
		"skipped", result.SkippedCount,
	)

	return nil
}

// TallyStep aggregates the extracted transitions into the counting maps.
type TallyStep struct {
	// workers is the number of goroutines used for counting.
	// 1 means a plain sequential pass.
	workers int

	// logger for structured logging.
	logger *slog.Logger
}

// TallyStepOption configures a TallyStep.
type TallyStepOption func(*TallyStep)

// WithTallyWorkers sets the number of counting goroutines.
func WithTallyWorkers(workers int) TallyStepOption {
	return func(s *TallyStep) {
		if workers > 0 {
			s.workers = workers
		}
	}
}

// WithTallyLogger sets a custom logger for the tally step.
func WithTallyLogger(logger *slog.Logger) TallyStepOption {
	return func(s *TallyStep) {
		s.logger = logger
	}
}

// NewTallyStep creates a new aggregation step.
func NewTallyStep(opts ...TallyStepOption) *TallyStep {
	s := &TallyStep{
		workers: 1,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *TallyStep) Name() string {
	return "tally"
}

// Do executes the aggregation step. The consistency check afterwards
// guards the normalizer's no-division-by-zero assumption; a failure there
// is a programming error, not an input problem.
func (s *TallyStep) Do(ctx context.Context, analysis *model.Analysis) error {
	tally, err := aggregate.ParallelTally(ctx, analysis.Transitions, s.workers)
	if err != nil {
		return fmt.Errorf("tally %s: %w", analysis.Source, err)
	}

	if err := tally.Validate(); err != nil {
		return fmt.Errorf("tally %s: %w", analysis.Source, err)
	}

	analysis.Counts = tally.Counts
	analysis.Totals = tally.Totals

	s.logger.Debug("tally completed",
		"source", analysis.Source,
		"distinct_pairs", len(tally.Counts),
		"distinct_sources", len(tally.Totals),
	)

	return nil
}

// NormalizeStep divides each pair count by its source total, producing
// the transition probabilities. It strictly requires the tally step to
// have completed over the full input: totals must be final before any
// probability is computed.
type NormalizeStep struct {
	logger *slog.Logger
}

// NormalizeStepOption configures a NormalizeStep.
type NormalizeStepOption func(*NormalizeStep)

// WithNormalizeLogger sets a custom logger for the normalize step.
func WithNormalizeLogger(logger *slog.Logger) NormalizeStepOption {
	return func(s *NormalizeStep) {
		s.logger = logger
	}
}

// NewNormalizeStep creates a new normalization step.
func NewNormalizeStep(opts ...NormalizeStepOption) *NormalizeStep {
	s := &NormalizeStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *NormalizeStep) Name() string {
	return "normalize"
}

// Do executes the normalization step.
func (s *NormalizeStep) Do(_ context.Context, analysis *model.Analysis) error {
	probs, err := markov.Normalize(analysis.Counts, analysis.Totals)
	if err != nil {
		return fmt.Errorf("normalize %s: %w", analysis.Source, err)
	}

	analysis.Probs = probs
	return nil
}

// DeriveStep builds the entry-point distribution, the bounce table, and
// the summary statistics from the normalized probabilities.
type DeriveStep struct {
	// sentinels are the reserved identifiers for this run.
	sentinels model.Sentinels

	// order selects the deterministic row ordering.
	order markov.Order

	// topN caps the number of rows per table. 0 = unlimited.
	topN int

	// logger for structured logging.
	logger *slog.Logger
}

// DeriveStepOption configures a DeriveStep.
type DeriveStepOption func(*DeriveStep)

// WithDeriveSentinels sets the reserved identifiers.
func WithDeriveSentinels(sentinels model.Sentinels) DeriveStepOption {
	return func(s *DeriveStep) {
		s.sentinels = sentinels
	}
}

// WithDeriveOrder sets the report row ordering.
func WithDeriveOrder(order markov.Order) DeriveStepOption {
	return func(s *DeriveStep) {
		s.order = order
	}
}

// WithDeriveTopN caps the number of rows per report table.
func WithDeriveTopN(n int) DeriveStepOption {
	return func(s *DeriveStep) {
		if n >= 0 {
			s.topN = n
		}
	}
}

// WithDeriveLogger sets a custom logger for the derive step.
func WithDeriveLogger(logger *slog.Logger) DeriveStepOption {
	return func(s *DeriveStep) {
		s.logger = logger
	}
}

// NewDeriveStep creates a new derivation step.
func NewDeriveStep(opts ...DeriveStepOption) *DeriveStep {
	s := &DeriveStep{
		sentinels: model.DefaultSentinels(),
		order:     markov.OrderByProbability,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DeriveStep) Name() string {
	return "derive"
}

// Do executes the derivation step. The summary is computed over the full
// tables before any top-N truncation, so truncated output still reports
// statistics for the whole dataset.
func (s *DeriveStep) Do(_ context.Context, analysis *model.Analysis) error {
	analysis.EntryPoints = markov.EntryDistribution(analysis.Probs, analysis.Counts, s.sentinels, s.order)
	analysis.BounceRates = markov.BounceTable(analysis.Probs, analysis.Counts, s.sentinels, s.order)

	summary := markov.Summarize(analysis)
	analysis.Summary = &summary

	if s.topN > 0 {
		if len(analysis.EntryPoints) > s.topN {
			analysis.EntryPoints = analysis.EntryPoints[:s.topN]
		}
		if len(analysis.BounceRates) > s.topN {
			analysis.BounceRates = analysis.BounceRates[:s.topN]
		}
	}

	s.logger.Debug("derivation completed",
		"source", analysis.Source,
		"entry_points", len(analysis.EntryPoints),
		"bounce_pages", len(analysis.BounceRates),
	)

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Policy is the malformed-record policy for extraction.
	Policy extract.Policy

	// Workers is the number of goroutines used for tallying.
	Workers int

	// Sentinels are the reserved identifiers for this run.
	Sentinels model.Sentinels

	// Order selects the deterministic report row ordering.
	Order markov.Order

	// TopN caps the number of rows per report table. 0 = unlimited.
	TopN int

	// Logger is propagated to every step.
	Logger *slog.Logger
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelinePolicy sets the malformed-record policy.
func WithPipelinePolicy(policy extract.Policy) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Policy = policy
	}
}

// WithPipelineWorkers sets the number of tally goroutines.
func WithPipelineWorkers(workers int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Workers = workers
	}
}

// WithPipelineSentinels sets the reserved identifiers.
func WithPipelineSentinels(sentinels model.Sentinels) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Sentinels = sentinels
	}
}

// WithPipelineOrder sets the report row ordering.
func WithPipelineOrder(order markov.Order) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Order = order
	}
}

// WithPipelineTopN caps the number of rows per report table.
func WithPipelineTopN(n int) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.TopN = n
	}
}

// WithPipelineStepLogger propagates a logger to every step.
func WithPipelineStepLogger(logger *slog.Logger) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Logger = logger
	}
}

// DefaultPipeline creates a pipeline with the four standard steps in
// order: extract, tally, normalize, derive.
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelinePolicy, etc).
func DefaultPipeline(pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Policy:    extract.PolicySkip,
		Workers:   1,
		Sentinels: model.DefaultSentinels(),
		Order:     markov.OrderByProbability,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	p.AddSteps(
		NewExtractStep(
			WithExtractPolicy(cfg.Policy),
			WithExtractLogger(cfg.Logger),
		),
		NewTallyStep(
			WithTallyWorkers(cfg.Workers),
			WithTallyLogger(cfg.Logger),
		),
		NewNormalizeStep(
			WithNormalizeLogger(cfg.Logger),
		),
		NewDeriveStep(
			WithDeriveSentinels(cfg.Sentinels),
			WithDeriveOrder(cfg.Order),
			WithDeriveTopN(cfg.TopN),
			WithDeriveLogger(cfg.Logger),
		),
	)

	return p
}
