package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/modkit/brickflow/internal/config"
	"github.com/modkit/brickflow/internal/ctxlog"
	"github.com/modkit/brickflow/internal/registry"
	"github.com/modkit/brickflow/internal/trace"
)

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	recorder *trace.MemoryRecorder
	mod      *config.Mod
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader config.Loader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Load the mod definition into the format-agnostic model first.
	mod, err := loader.Load(ctx, appConfig.ModPath)
	if err != nil {
		// A failure to load the mod definition is a fatal startup error.
		panic(fmt.Errorf("failed to load mod definition: %w", err))
	}
	if err := mod.Validate(); err != nil {
		panic(fmt.Errorf("invalid mod definition: %w", err))
	}
	logger.Debug("Mod definition loaded and validated.", "mod", mod.ID, "apiVersion", mod.APIVersion)

	// Create and populate the brick registry.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, m := range modules {
		m.Register(reg)
	}
	logger.Debug("All brick modules registered.", "count", len(modules), "bricks", reg.IDs())

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		recorder: trace.NewMemoryRecorder(),
		mod:      mod,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Recorder returns the application's trace recorder. This is primarily for
// testing.
func (a *App) Recorder() *trace.MemoryRecorder {
	return a.recorder
}
