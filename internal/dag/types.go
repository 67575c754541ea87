package dag

import (
	"sync"
	"sync/atomic"

	"github.com/zclconf/go-cty/cty"

	"github.com/zkan/dagster/internal/config"
)

// Graph is the dependency graph of one pipeline run.
type Graph struct {
	Nodes map[string]*Node
}

// State represents the execution state of a node in the graph.
type State int32

const (
	// Pending indicates the node is waiting for its dependencies to complete.
	Pending State = iota
	// Running indicates the node is currently being executed by a worker.
	Running
	// Done indicates the node has completed execution successfully.
	Done
	// Failed indicates the node has failed execution or was skipped.
	Failed
)

// Node is a single vertex in the graph, representing one step execution.
type Node struct {
	// ID is the canonical identifier, "step.<solid_type>.<instance_name>".
	ID string
	// Name is the human-readable instance name from the configuration.
	Name string
	// StepConfig holds the step's parsed configuration.
	StepConfig *config.Step

	// Deps holds the set of nodes this node depends on (predecessors).
	Deps map[string]*Node
	// Dependents holds the set of nodes that depend on this node (successors).
	Dependents map[string]*Node

	// Error stores any error that occurred during the node's execution.
	Error error
	// Outputs stores the node's checked output values by output name, for
	// consumption by downstream argument expressions.
	Outputs map[string]cty.Value

	// depCount is an atomic counter of unmet dependencies. A node is ready
	// when it reaches zero.
	depCount atomic.Int32
	// state is the node's current execution state, managed atomically.
	state atomic.Int32
	// skipOnce ensures a node is marked as skipped and processed exactly once.
	skipOnce sync.Once
}

// SetInitialCounters primes the dependency counter after linking.
func (n *Node) SetInitialCounters() {
	n.depCount.Store(int32(len(n.Deps)))
}

// DepCount atomically returns the current number of unmet dependencies.
func (n *Node) DepCount() int32 {
	return n.depCount.Load()
}

// DecrementDepCount atomically decrements the dependency counter and returns
// the new value.
func (n *Node) DecrementDepCount() int32 {
	return n.depCount.Add(-1)
}

// SetState atomically sets the node's execution state.
func (n *Node) SetState(s State) {
	n.state.Store(int32(s))
}

// GetState atomically retrieves the node's execution state.
func (n *Node) GetState() State {
	return State(n.state.Load())
}

// Skip marks a node as failed exactly once, running done when it was the
// first skip. It returns true in that case.
func (n *Node) Skip(err error, done func()) bool {
	var wasSkipped bool
	n.skipOnce.Do(func() {
		n.SetState(Failed)
		n.Error = err
		done()
		wasSkipped = true
	})
	return wasSkipped
}
