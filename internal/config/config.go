// Package config provides project configuration for starform. Settings are
// layered: built-in defaults, then an optional starform.yaml project file,
// then STARFORM_* environment variables, then CLI flags.
package config

import "github.com/leapstack-labs/starform/internal/profile"

// SourceConfig holds options for reading delimited source files.
type SourceConfig struct {
	// Delimiter overrides delimiter sniffing when set.
	Delimiter string `koanf:"delimiter"`
	// NullValues are treated as null cells in addition to the defaults.
	NullValues []string `koanf:"null_values"`
}

// Config holds all starform configuration options.
type Config struct {
	// UniquenessThreshold is the minimum distinct-value ratio for candidate
	// keys.
	UniquenessThreshold float64 `koanf:"uniqueness_threshold"`
	// MaxCompositeColumns caps the pairwise composite-key scan; zero means
	// no cap, negative disables the scan.
	MaxCompositeColumns int `koanf:"max_composite_columns"`
	// DateDimension controls whether a date dimension is synthesized.
	DateDimension bool `koanf:"date_dimension"`

	// Database and Schema name the DDL target.
	Database string `koanf:"database"`
	Schema   string `koanf:"schema"`

	// OutputDir receives the split table files.
	OutputDir string `koanf:"output_dir"`
	// StatePath is the run-history SQLite database.
	StatePath string `koanf:"state_path"`

	Verbose bool         `koanf:"verbose"`
	Source  SourceConfig `koanf:"source"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		UniquenessThreshold: profile.DefaultUniquenessThreshold,
		DateDimension:       true,
		Database:            "ANALYTICS",
		Schema:              "PUBLIC",
		OutputDir:           "output",
		StatePath:           ".starform/state.db",
	}
}

// KeyOptions converts the config into candidate-key detection options.
func (c *Config) KeyOptions() profile.KeyOptions {
	return profile.KeyOptions{
		UniquenessThreshold: c.UniquenessThreshold,
		MaxCompositeColumns: c.MaxCompositeColumns,
	}
}
