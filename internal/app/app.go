package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/registry"
)

// ConfigLoader loads pipeline configuration from the given paths into the
// format-agnostic model.
type ConfigLoader interface {
	Load(ctx context.Context, paths ...string) (*config.Model, error)
}

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	registry *registry.Registry
	config   *config.Model
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance, including its own isolated logger and registry.
func NewApp(outW io.Writer, appConfig *Config, loader ConfigLoader, modules ...registry.Module) *App {
	logger := newLogger(appConfig.LogLevel, appConfig.LogFormat, outW)
	ctx := ctxlog.WithLogger(context.Background(), logger)
	logger.Debug("Logger configured successfully.")

	// Merge all configuration paths into a single collection for the loader.
	var configPaths []string
	if appConfig.PipelinePath != "" {
		configPaths = append(configPaths, appConfig.PipelinePath)
	}
	if appConfig.SolidsPath != "" {
		configPaths = append(configPaths, appConfig.SolidsPath)
	}

	// Load all configuration into the format-agnostic model first.
	cfgModel, err := loader.Load(ctx, configPaths...)
	if err != nil {
		// A failure to load config is a fatal startup error.
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}
	logger.Debug("Configuration loaded and translated into unified model.")

	// Create and populate the registry with Go handlers and type hooks.
	reg := registry.New()
	if len(modules) == 0 {
		modules = coreModules
	}
	for _, mod := range modules {
		mod.Register(reg)
	}
	logger.Debug("All Go modules registered.", "count", len(modules))

	// Bind declared types and solid definitions from the config model.
	if err := reg.PopulateFromModel(ctx, cfgModel); err != nil {
		panic(err)
	}
	logger.Debug("Registry definitions populated from config model.")

	// Validate the integrity of the registry.
	if err := reg.ValidateRegistry(ctx); err != nil {
		// This is a programmer error (mismatch between code and config), so we panic.
		panic(err)
	}
	logger.Debug("Registry validation passed.")

	return &App{
		outW:     outW,
		logger:   logger,
		registry: reg,
		config:   cfgModel,
	}
}

// Registry returns the application's registry. This is primarily for testing.
func (a *App) Registry() *registry.Registry {
	return a.registry
}

// Config returns the loaded configuration model. This is primarily for testing.
func (a *App) Config() *config.Model {
	return a.config
}
