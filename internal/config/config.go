package config

import (
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"

	"github.com/clickchain/clickchain/internal/model"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "clickchain"

	// DefaultWorkers of 1 keeps the tally single-threaded. The workload
	// is pure counting, so one pass is enough for tens of thousands of
	// records; workers only pay off on very large logs.
	DefaultWorkers = 1

	// DefaultBatchSize of 4 concurrent analyses balances throughput with
	// file-handle and memory usage when many input files are given.
	DefaultBatchSize = 4

	// DefaultTopN of 0 means reports include every row. Large sites can
	// cap the tables with --top.
	DefaultTopN = 0

	// DefaultPolicy skips malformed lines with a counted warning rather
	// than failing the whole run. Real click logs routinely carry a few
	// truncated lines; use "abort" for strict validation.
	DefaultPolicy = "skip"

	// DefaultOrder sorts report rows by probability descending so the
	// most likely entry pages and worst bounce pages come first.
	DefaultOrder = "prob"
)

// Config holds all configuration options for a clickchain run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// for simplicity. The number of options is manageable, and nesting would
// add complexity without significant benefit.
type Config struct {
	// Inputs is the list of navigation-log files to analyze.
	// "-" means standard input.
	Inputs []string

	// Workers is the number of goroutines used for tallying one input.
	// 1 means a plain sequential pass.
	Workers int

	// BatchSize is the number of input files analyzed concurrently when
	// more than one is given.
	BatchSize int

	// TopN caps the number of rows in each report table. 0 = unlimited.
	TopN int

	// Order selects report row ordering: "prob" or "page".
	Order string

	// Policy selects malformed-record handling: "skip" or "abort".
	Policy string

	// EntrySentinel is the source identifier marking session starts.
	EntrySentinel string

	// BounceSentinel is the destination identifier marking bounces.
	BounceSentinel string

	// CloseSentinel is the destination identifier marking normal closes.
	// Valid but inert: no current report consumes it.
	CloseSentinel string

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output instead of
	// human-readable format. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .clickchain in the current
	// directory, the home directory, and the XDG config directory.
	ConfigFilePath string

	// Datasets holds per-dataset configurations loaded from the config
	// file. Populated by LoadConfigFile and consulted per input.
	Datasets *File
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
func NewConfig() *Config {
	return &Config{
		Workers:        DefaultWorkers,
		BatchSize:      DefaultBatchSize,
		TopN:           DefaultTopN,
		Order:          DefaultOrder,
		Policy:         DefaultPolicy,
		EntrySentinel:  string(model.DefaultEntryID),
		BounceSentinel: string(model.DefaultBounceID),
		CloseSentinel:  string(model.DefaultCloseID),
	}
}

// Sentinels returns the reserved identifiers configured for this run.
func (c *Config) Sentinels() model.Sentinels {
	return model.Sentinels{
		Entry:  model.PageID(c.EntrySentinel),
		Bounce: model.PageID(c.BounceSentinel),
		Close:  model.PageID(c.CloseSentinel),
	}
}

// XDGConfigDir returns the XDG config directory for clickchain.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/clickchain
// On macOS: ~/Library/Application Support/clickchain
// On Windows: %APPDATA%\clickchain
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any analysis begins.
// The first error found is returned rather than collecting all errors,
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Workers <= 0 {
		return ErrInvalidWorkers
	}

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.TopN < 0 {
		return ErrInvalidTopN
	}

	switch c.Policy {
	case "skip", "abort":
	default:
		return ErrInvalidPolicy
	}

	switch c.Order {
	case "prob", "page":
	default:
		return ErrInvalidOrder
	}

	for _, sentinel := range []string{c.EntrySentinel, c.BounceSentinel, c.CloseSentinel} {
		if sentinel == "" || strings.Contains(sentinel, ",") {
			return ErrInvalidSentinel
		}
	}
	if c.EntrySentinel == c.BounceSentinel ||
		c.EntrySentinel == c.CloseSentinel ||
		c.BounceSentinel == c.CloseSentinel {
		return ErrSentinelCollision
	}

	return nil
}
