package types

import "time"

// HTTPConfig holds shared HTTP settings used by commands that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "citation-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 responses (0 uses the default).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// SearchConfig holds defaults for the search command.
type SearchConfig struct {
	// MaxResults is the default result limit. Zero means unlimited.
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ExportConfig holds defaults for export commands.
type ExportConfig struct {
	// Indent is the JSON indentation width (default 2).
	Indent int `json:"indent" yaml:"indent" mapstructure:"indent"`
}

// LookupConfig holds settings for DOI, arXiv and URL metadata lookup.
type LookupConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// Email is sent to CrossRef as the mailto parameter for polite pool access.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
}

// LinkCheckConfig holds settings for URL health checks.
type LinkCheckConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BatchSize is the number of URLs checked concurrently (default 5).
	BatchSize int `json:"batch_size" yaml:"batch_size" mapstructure:"batch_size"`

	// BatchDelay is the pause between consecutive batches (default 100ms).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay" mapstructure:"batch_delay"`
}

// Config groups every setting the CLI reads from the config file and environment.
type Config struct {
	// DataPath is the library snapshot file.
	DataPath string `json:"data_path" yaml:"data_path" mapstructure:"data_path"`

	Search    SearchConfig    `json:"search" yaml:"search" mapstructure:"search"`
	Export    ExportConfig    `json:"export" yaml:"export" mapstructure:"export"`
	Lookup    LookupConfig    `json:"lookup" yaml:"lookup" mapstructure:"lookup"`
	LinkCheck LinkCheckConfig `json:"linkcheck" yaml:"linkcheck" mapstructure:"linkcheck"`
}
