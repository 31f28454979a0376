package config

import "time"

// Defaults mirror the command-line defaults.
const (
	DefaultThreads      = 50
	DefaultTimeout      = 3
	DefaultRetries      = 1
	DefaultMaxRedirects = 10
	DefaultFormat       = "text"
	DefaultWildcardTol  = 50
)

// Options holds all configuration for a probing run.
type Options struct {
	// Input
	Domain     string `yaml:"domain" validate:"required_if=Bruteforce true"`
	Bruteforce bool   `yaml:"bruteforce"`
	ListFile   string `yaml:"list" validate:"omitempty,file"`
	CIDR       string `yaml:"cidr" validate:"omitempty,cidr|ip"`
	Ports      string `yaml:"ports"`

	// Probing
	Threads      int    `yaml:"threads" validate:"min=1"`
	Timeout      int    `yaml:"timeout" validate:"min=1"` // seconds
	Retries      int    `yaml:"retries" validate:"min=1"`
	MaxRedirects int    `yaml:"max_redirects" validate:"min=0"` // 0 = do not follow
	RateLimit    int    `yaml:"rate_limit" validate:"min=0"`    // requests/second, 0 = unlimited
	UserAgent    string `yaml:"user_agent"`                     // empty = random pick from the built-in pool
	Extract      bool   `yaml:"extract"`
	Fingerprint  bool   `yaml:"fingerprint"`
	Discover     int    `yaml:"discover" validate:"min=0,max=5"` // link-discovery passes, 0 = off

	// Status filtering
	FilterCodes  []int    `yaml:"filter_codes" validate:"dive,min=100,max=599"`
	ExcludeCodes []int    `yaml:"exclude_codes" validate:"dive,min=100,max=599"`
	MatchClass   []string `yaml:"match_class" validate:"dive,oneof=1xx 2xx 3xx 4xx 5xx"`

	// Response filtering (requires extraction)
	ExcludeSize   []int  `yaml:"exclude_size"`
	MatchBody     string `yaml:"match_body"`
	ExcludeBody   string `yaml:"exclude_body"`
	DropWildcards bool   `yaml:"drop_wildcards"`
	WildcardTol   int    `yaml:"wildcard_tolerance" validate:"min=0"` // bytes
	Dedupe        int    `yaml:"dedupe" validate:"min=0"`

	// Output
	ShowFullData bool   `yaml:"show_full_data"`
	Quiet        bool   `yaml:"quiet"`
	NoColor      bool   `yaml:"no_color"`
	OutputFile   string `yaml:"output"`
	OutputFormat string `yaml:"format" validate:"oneof=text jsonl csv"`
	SortBy       string `yaml:"sort" validate:"omitempty,oneof=host status size"`
	Tree         bool   `yaml:"tree"`
	OnResultCmd  string `yaml:"on_result"`

	Log LogOptions `yaml:"log"`
}

// LogOptions configures diagnostic logging on stderr.
type LogOptions struct {
	Level      string `yaml:"level" validate:"omitempty,loglevel"`
	Format     string `yaml:"format" validate:"omitempty,logformat"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=0"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
}

// Default returns Options populated with the command-line defaults.
func Default() Options {
	return Options{
		Threads:      DefaultThreads,
		Timeout:      DefaultTimeout,
		Retries:      DefaultRetries,
		MaxRedirects: DefaultMaxRedirects,
		OutputFormat: DefaultFormat,
		WildcardTol:  DefaultWildcardTol,
		Log: LogOptions{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  100,
			MaxBackups: 3,
		},
	}
}

// TimeoutDuration returns the per-request timeout.
func (o *Options) TimeoutDuration() time.Duration {
	return time.Duration(o.Timeout) * time.Second
}

// NeedsExtraction reports whether any enabled feature depends on full
// response metadata.
func (o *Options) NeedsExtraction() bool {
	return o.Extract || o.Fingerprint || o.Discover > 0 || o.DropWildcards || o.Dedupe > 0 ||
		len(o.ExcludeSize) > 0 || o.MatchBody != "" || o.ExcludeBody != "" ||
		o.OutputFormat == "jsonl" || o.OutputFormat == "csv"
}
