package app

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vk/heacheck/internal/depgraph"
	"github.com/vk/heacheck/internal/report"
	"github.com/vk/heacheck/internal/watch"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	Root     string
	Includes []string // manifest globs; empty means the manifest defaults
	Excludes []string // nil means the manifest defaults

	LogLevel  string
	LogFormat string
	Output    string // report format, one of report.Formats

	DotPath     string
	MermaidPath string

	SkipStructure    bool
	HotspotThreshold int

	Watch    bool
	Debounce time.Duration
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// NewConfig applies defaults to cfg and validates it.
func NewConfig(cfg Config) (*Config, error) {
	if cfg.Root == "" {
		return nil, errors.New("Root is a required configuration field and cannot be empty")
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "text"
	}
	if !slices.Contains(logLevels, cfg.LogLevel) {
		return nil, fmt.Errorf("invalid log-level %q: must be 'debug', 'info', 'warn', or 'error'", cfg.LogLevel)
	}
	if !slices.Contains(logFormats, cfg.LogFormat) {
		return nil, fmt.Errorf("invalid log-format %q: must be 'text' or 'json'", cfg.LogFormat)
	}
	if !slices.Contains(report.Formats, cfg.Output) {
		return nil, fmt.Errorf("invalid output %q: must be one of %s", cfg.Output, strings.Join(report.Formats, ", "))
	}

	switch {
	case cfg.HotspotThreshold < 0:
		return nil, fmt.Errorf("invalid hotspot-threshold %d: must not be negative", cfg.HotspotThreshold)
	case cfg.HotspotThreshold == 0:
		cfg.HotspotThreshold = depgraph.DefaultHotspotThreshold
	}

	switch {
	case cfg.Debounce < 0:
		return nil, fmt.Errorf("invalid debounce %s: must not be negative", cfg.Debounce)
	case cfg.Debounce == 0:
		cfg.Debounce = watch.DefaultConfig().Debounce
	}

	return &cfg, nil
}
