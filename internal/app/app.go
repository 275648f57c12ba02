package app

import (
	"io"
	"log/slog"

	"github.com/vk/heacheck/internal/layer"
	"github.com/vk/heacheck/internal/pipe"
)

// Version is reported by the CLI and stamped on every stage pipe.
const Version = "0.1.0"

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW      io.Writer
	logger    *slog.Logger
	config    *Config
	validator *layer.Validator
	stages    *pipe.Registry
}

// NewApp is the constructor for the main application. Reports and graphs go
// to outW, logs to logW. The App gets its own logger and stage registry.
func NewApp(outW, logW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, logW)
	logger.Debug("Logger configured successfully.")

	stages := newStageRegistry(cfg.SkipStructure)
	logger.Debug("Check stages registered.", "stages", stages.List())

	return &App{
		outW:      outW,
		logger:    logger,
		config:    cfg,
		validator: layer.New(),
		stages:    stages,
	}
}

// Stages returns the application's stage registry. This is primarily for testing.
func (a *App) Stages() *pipe.Registry {
	return a.stages
}
