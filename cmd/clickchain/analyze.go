package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clickchain/clickchain/internal/config"
	"github.com/clickchain/clickchain/internal/extract"
	"github.com/clickchain/clickchain/internal/log"
	"github.com/clickchain/clickchain/internal/markov"
	"github.com/clickchain/clickchain/internal/model"
	"github.com/clickchain/clickchain/internal/pipeline"
	"github.com/clickchain/clickchain/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file...]",
		Short: "Analyze navigation logs and report transition statistics",
		Long: `Analyze reads navigation logs of "source,destination" lines, counts
every page transition, and normalizes the counts into conditional
probabilities. Two reports are derived:

- Entry point distribution: where sessions start (source "-1")
- Bounce rates: how likely each page is to be the last one (destination "B")

Use "-" as the file argument to read from standard input.

Examples:
  # Analyze a single navigation log
  clickchain analyze clicks.csv

  # Analyze several logs concurrently
  clickchain analyze jan.csv feb.csv mar.csv

  # Read from standard input
  cat clicks.csv | clickchain analyze -

  # Output JSON report to a file
  clickchain analyze --json -o report.json clicks.csv

  # Fail on the first malformed line instead of skipping
  clickchain analyze --on-malformed abort clicks.csv

  # Only the ten most likely entry pages and worst bounce pages
  clickchain analyze --top 10 clicks.csv

Configuration file (.clickchain) example:
  defaults:
    policy: skip
    order: prob
  datasets:
    legacy.csv:
      entry: START
      bounce: EXIT
      policy: abort`,
		Args: cobra.ArbitraryArgs,
		RunE: runAnalyzeCmd,
	}

	// Analysis behavior flags
	cmd.Flags().IntP("workers", "w", config.DefaultWorkers,
		"Number of goroutines used to tally one input (1 = sequential)")
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of input files analyzed concurrently")
	cmd.Flags().String("on-malformed", config.DefaultPolicy,
		`Malformed record handling: "skip" or "abort"`)

	// Sentinel flags
	cmd.Flags().String("entry", string(model.DefaultEntryID),
		"Source identifier that marks a session start")
	cmd.Flags().String("bounce", string(model.DefaultBounceID),
		"Destination identifier that marks a bounce")
	cmd.Flags().String("close", string(model.DefaultCloseID),
		"Destination identifier that marks a normal session close")

	// Report flags
	cmd.Flags().IntP("top", "t", config.DefaultTopN,
		"Maximum rows per report table (0 = unlimited)")
	cmd.Flags().StringP("sort", "s", config.DefaultOrder,
		`Report row ordering: "prob" (descending probability) or "page"`)
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .clickchain in current or home directory)")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with repeated-warning throttling
	logger := log.NewLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runAnalysis(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.Workers, err = cmd.Flags().GetInt("workers")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.Policy, err = cmd.Flags().GetString("on-malformed")
	if err != nil {
		return nil, err
	}

	cfg.EntrySentinel, err = cmd.Flags().GetString("entry")
	if err != nil {
		return nil, err
	}

	cfg.BounceSentinel, err = cmd.Flags().GetString("bounce")
	if err != nil {
		return nil, err
	}

	cfg.CloseSentinel, err = cmd.Flags().GetString("close")
	if err != nil {
		return nil, err
	}

	cfg.TopN, err = cmd.Flags().GetInt("top")
	if err != nil {
		return nil, err
	}

	cfg.Order, err = cmd.Flags().GetString("sort")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load per-dataset configurations from the config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Datasets, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.Datasets = &config.File{
			Datasets: make(map[string]config.DatasetConfig),
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.Verbose = getVerboseFlag(cmd)

	// Positional arguments are the input files
	cfg.Inputs = args

	return cfg, nil
}

// runAnalysis executes the analysis over all configured inputs.
func runAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting analysis",
		"inputs", cfg.Inputs,
		"workers", cfg.Workers,
		"batchSize", cfg.BatchSize,
		"policy", cfg.Policy,
	)

	// Batch processing only pays off with several file inputs. Stdin is
	// always sequential.
	if len(cfg.Inputs) > 1 && cfg.BatchSize > 1 && !containsStdin(cfg.Inputs) {
		return runBatchAnalysis(ctx, cfg, logger)
	}

	return runSequentialAnalysis(ctx, cfg, logger)
}

// containsStdin reports whether any input reads standard input.
func containsStdin(inputs []string) bool {
	for _, input := range inputs {
		if input == pipeline.StdinSource {
			return true
		}
	}
	return false
}

// runSequentialAnalysis analyzes inputs one at a time.
func runSequentialAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	for _, input := range cfg.Inputs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Fold dataset-specific overrides into a per-input config
		inputCfg := cfg.Apply(cfg.Datasets.GetDatasetConfig(input))
		if err := inputCfg.Validate(); err != nil {
			return fmt.Errorf("configuration error for %s: %w", input, err)
		}

		p, err := createPipelineForInput(inputCfg, logger)
		if err != nil {
			return fmt.Errorf("pipeline for %s: %w", input, err)
		}

		analysis := model.NewAnalysis(input)

		startTime := time.Now()
		if err := p.Execute(ctx, analysis); err != nil {
			logger.Error("analysis failed", "input", input, "error", err)
			fmt.Fprintf(os.Stderr, "Analysis error for %s: %v\n", input, err)
			continue
		}

		logger.Debug("analysis completed",
			"input", input,
			"elapsed", time.Since(startTime).Round(time.Millisecond),
		)

		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "input", input, "error", err)
		}
	}

	return nil
}

// runBatchAnalysis analyzes multiple inputs concurrently using BatchProcessor.
func runBatchAnalysis(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.Datasets != nil && len(cfg.Datasets.Datasets) > 0 {
		logger.Warn("batch processing uses default dataset config only; dataset-specific configs (sentinels, policy) are ignored",
			"datasetCount", len(cfg.Datasets.Datasets))
		fmt.Fprintf(os.Stderr, "Warning: Dataset-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-dataset settings.\n\n")
	}

	// All pipelines in a batch share the run-level config plus the
	// config file defaults.
	batchCfg := cfg
	if cfg.Datasets != nil {
		batchCfg = cfg.Apply(cfg.Datasets.Defaults)
	}
	if err := batchCfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Fail eagerly on option typos before spinning up workers
	if _, err := createPipelineForInput(batchCfg, logger); err != nil {
		return err
	}

	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			p, err := createPipelineForInput(batchCfg, logger)
			if err != nil {
				// Validated above, so this cannot fail here
				panic(err)
			}
			return p
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Inputs, func(analysis *model.Analysis, index int) {
		mu.Lock()
		defer mu.Unlock()

		if analysis.Error != nil {
			fmt.Fprintf(os.Stderr, "[%d/%d] Analysis error for %s: %v\n",
				index+1, len(cfg.Inputs), analysis.Source, analysis.Error)
			return
		}

		if err := outputReport(cfg, analysis); err != nil {
			logger.Error("report failed", "input", analysis.Source, "error", err)
		}
	})

	logger.Debug("batch analysis completed",
		"inputs", len(cfg.Inputs),
		"elapsed", time.Since(startTime).Round(time.Millisecond),
	)

	return err
}

// createPipelineForInput creates a pipeline with the given configuration.
func createPipelineForInput(cfg *config.Config, logger *slog.Logger) (*pipeline.Pipeline, error) {
	policy, err := extract.ParsePolicy(cfg.Policy)
	if err != nil {
		return nil, err
	}

	order, err := markov.ParseOrder(cfg.Order)
	if err != nil {
		return nil, err
	}

	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelinePolicy(policy),
		pipeline.WithPipelineWorkers(cfg.Workers),
		pipeline.WithPipelineSentinels(cfg.Sentinels()),
		pipeline.WithPipelineOrder(order),
		pipeline.WithPipelineTopN(cfg.TopN),
		pipeline.WithPipelineStepLogger(logger),
	}

	return pipeline.DefaultPipeline(pipelineOpts, configOpts...), nil
}

// outputReport outputs the analysis in the requested format.
func outputReport(cfg *config.Config, analysis *model.Analysis) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // User-provided output path is intentional
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close() //nolint:errcheck // Flushed by the writers below
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewTextWriter(output)
	}

	if _, err := writer.Write(analysis); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
