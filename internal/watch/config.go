package watch

import "time"

// Config controls a Watcher.
type Config struct {
	// Debounce is the quiet period after the last event before a batch is
	// delivered.
	Debounce time.Duration
	// MaxBatch delivers a batch early once this many distinct paths changed.
	MaxBatch int
	// Ignore holds doublestar patterns matched against root-relative,
	// slash-separated paths.
	Ignore []string
	// WatchHidden includes dot files and dot directories.
	WatchHidden bool
	// Outputs lists files the callback writes itself. Changes to them never
	// start a batch.
	Outputs []string
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		Debounce: 300 * time.Millisecond,
		MaxBatch: 100,
		Ignore: []string{
			"**/.git/**",
			"**/node_modules/**",
			"**/dist/**",
			"**/build/**",
			"**/*.log",
		},
	}
}
