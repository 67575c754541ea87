// Package executor runs a built dependency graph with a fixed worker pool,
// enforcing declared type contracts at every step boundary.
package executor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dag"
	"github.com/zkan/dagster/internal/intermediates"
	"github.com/zkan/dagster/internal/registry"
)

// Executor orchestrates the concurrent execution of a graph.
type Executor struct {
	Graph      *dag.Graph
	numWorkers int
	registry   *registry.Registry
	store      *intermediates.Store
	runID      string
	wg         sync.WaitGroup
}

// New creates an executor for one run of the given graph.
func New(graph *dag.Graph, numWorkers int, r *registry.Registry) *Executor {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Executor{
		Graph:      graph,
		numWorkers: numWorkers,
		registry:   r,
		store:      intermediates.New(),
		runID:      uuid.NewString(),
	}
}

// Intermediates exposes the run's intermediate-value store, primarily for tests.
func (e *Executor) Intermediates() *intermediates.Store {
	return e.store
}

// RunID returns the unique identifier of this run.
func (e *Executor) RunID() string {
	return e.runID
}

// Run executes the entire graph concurrently and returns an error if any node
// fails. It respects the cancellation signal from the provided context.
func (e *Executor) Run(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx).With("runID", e.runID)
	ctx = ctxlog.WithLogger(ctx, logger)

	readyChan := make(chan *dag.Node, len(e.Graph.Nodes))
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Debug("Initializing executor, finding root nodes...")
	rootNodeCount := 0
	for _, node := range e.Graph.Nodes {
		if node.DepCount() == 0 {
			logger.Debug("Found root node.", "nodeID", node.ID)
			readyChan <- node
			rootNodeCount++
		}
	}
	logger.Debug("Found all root nodes.", "count", rootNodeCount)

	e.wg.Add(len(e.Graph.Nodes))

	logger.Debug("Starting worker pool.", "workers", e.numWorkers)
	for i := 0; i < e.numWorkers; i++ {
		go e.worker(runCtx, readyChan, cancel, i)
	}

	logger.Info("Waiting for all nodes to complete...")
	e.wg.Wait()
	logger.Info("All nodes completed.")
	close(readyChan)

	var failedNodes []string
	var rootCauseError error
	for _, node := range e.Graph.Nodes {
		if node.GetState() == dag.Failed {
			logger.Error("Node failed execution.", "nodeID", node.ID, "error", node.Error)
			// A "skipped" error is a symptom, not a cause.
			if node.Error != nil && !strings.HasPrefix(node.Error.Error(), "skipped") && !errors.Is(node.Error, context.Canceled) {
				failedNodes = append(failedNodes, node.ID)
				if rootCauseError == nil {
					rootCauseError = node.Error
				}
			}
		}
	}

	if rootCauseError != nil {
		return fmt.Errorf("execution failed for %s: %w", strings.Join(failedNodes, ", "), rootCauseError)
	}

	return nil
}

// skipDependents recursively marks all downstream nodes as failed.
func (e *Executor) skipDependents(ctx context.Context, node *dag.Node) {
	logger := ctxlog.FromContext(ctx)
	for _, dependent := range node.Dependents {
		dep := dependent
		if dep.Skip(fmt.Errorf("skipped due to upstream failure of '%s'", node.ID), e.wg.Done) {
			logger.Warn("Skipping dependent node due to upstream failure.", "nodeID", dep.ID, "dependency", node.ID)
			e.skipDependents(ctx, dep)
		}
	}
}

// worker is the core processing loop for a single concurrent worker.
func (e *Executor) worker(ctx context.Context, readyChan chan *dag.Node, cancel context.CancelFunc, workerID int) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for node := range readyChan {
		workerLogger := logger.With("workerID", workerID, "nodeID", node.ID)

		if ctx.Err() != nil {
			if node.Skip(ctx.Err(), e.wg.Done) {
				workerLogger.Warn("Context canceled, skipping node execution.")
				// A canceled node's dependents will never be unlocked through
				// DecrementDepCount, so they must be released here too.
				e.skipDependents(ctx, node)
			}
			continue
		}

		workerLogger.Debug("Worker picked up node for execution.")
		node.SetState(dag.Running)
		err := e.executeStepNode(ctxlog.WithLogger(ctx, workerLogger), node)

		if err != nil {
			workerLogger.Error("Node execution failed.", "error", err)
			node.SetState(dag.Failed)
			node.Error = err
			cancel()
			e.skipDependents(ctx, node)
			e.wg.Done()
			continue
		}

		workerLogger.Debug("Node execution succeeded.")
		node.SetState(dag.Done)

		for _, dependent := range node.Dependents {
			if dependent.DecrementDepCount() == 0 {
				workerLogger.Debug("Unlocking dependent node.", "dependentID", dependent.ID)
				readyChan <- dependent
			}
		}

		e.wg.Done()
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}
