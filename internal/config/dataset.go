package config

// DatasetConfig holds per-dataset overrides for a single input file.
// Navigation logs from different products may use different sentinel
// identifiers or need stricter parsing; this lets one config file serve
// them all.
type DatasetConfig struct {
	// Entry overrides the entry sentinel for this dataset.
	// If empty, the run-level sentinel is used.
	Entry string `yaml:"entry,omitempty"`

	// Bounce overrides the bounce sentinel for this dataset.
	Bounce string `yaml:"bounce,omitempty"`

	// Close overrides the close sentinel for this dataset.
	Close string `yaml:"close,omitempty"`

	// Policy overrides the malformed-record policy: "skip" or "abort".
	Policy string `yaml:"policy,omitempty"`

	// Order overrides the report row ordering: "prob" or "page".
	Order string `yaml:"order,omitempty"`

	// Top overrides the report row cap. If zero, the run-level cap is used.
	Top int `yaml:"top,omitempty"`
}

// File represents the structure of the .clickchain configuration file.
type File struct {
	// Datasets maps input paths to their dataset-specific configurations.
	// Keys are matched against the input path as given on the command line.
	Datasets map[string]DatasetConfig `yaml:"datasets,omitempty"`

	// Defaults contains configuration applied to all datasets unless
	// overridden in the dataset-specific configuration.
	Defaults DatasetConfig `yaml:"defaults,omitempty"`
}

// GetDatasetConfig returns the configuration for a specific input path.
// It merges the dataset-specific configuration with defaults.
func (cf *File) GetDatasetConfig(input string) DatasetConfig {
	// Start with defaults
	result := cf.Defaults

	// Override with dataset-specific configuration if present
	if ds, ok := cf.Datasets[input]; ok {
		if ds.Entry != "" {
			result.Entry = ds.Entry
		}
		if ds.Bounce != "" {
			result.Bounce = ds.Bounce
		}
		if ds.Close != "" {
			result.Close = ds.Close
		}
		if ds.Policy != "" {
			result.Policy = ds.Policy
		}
		if ds.Order != "" {
			result.Order = ds.Order
		}
		if ds.Top != 0 {
			result.Top = ds.Top
		}
	}

	return result
}

// Apply folds the dataset overrides into a copy of the run configuration.
// Empty override fields leave the run-level values in place.
func (c *Config) Apply(ds DatasetConfig) *Config {
	applied := *c

	if ds.Entry != "" {
		applied.EntrySentinel = ds.Entry
	}
	if ds.Bounce != "" {
		applied.BounceSentinel = ds.Bounce
	}
	if ds.Close != "" {
		applied.CloseSentinel = ds.Close
	}
	if ds.Policy != "" {
		applied.Policy = ds.Policy
	}
	if ds.Order != "" {
		applied.Order = ds.Order
	}
	if ds.Top != 0 {
		applied.TopN = ds.Top
	}

	return &applied
}
