package app

import (
	"context"
	"fmt"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dag"
	"github.com/zkan/dagster/internal/executor"
)

// Run executes the loaded pipeline based on the provided configuration.
func (a *App) Run(ctx context.Context, appConfig *Config) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	a.logger.Debug("Building dependency graph from config model...")
	graph, err := dag.Build(ctx, a.config, a.registry)
	if err != nil {
		return fmt.Errorf("failed to build dependency graph: %w", err)
	}
	a.logger.Debug("Dependency graph built.", "node_count", len(graph.Nodes))

	a.logger.Info("Solid handlers registered:", "count", len(a.registry.HandlerRegistry))
	a.logger.Info("Types declared:", "count", a.registry.Types.Len())

	if len(graph.Nodes) == 0 {
		a.logger.Warn("No steps found in pipeline, execution not required.")
		return nil
	}

	a.logger.Info("🚀 Starting concurrent execution...")
	exec := executor.New(graph, appConfig.WorkerCount, a.registry)
	a.logger.Debug("Executor starting run.", "run_id", exec.RunID())
	if err := exec.Run(ctx); err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	a.logger.Info("🏁 Execution finished.")

	a.logger.Debug("App.Run method finished.")
	return nil
}
