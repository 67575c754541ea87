// Package intermediates provides the ephemeral, concurrency-safe store of
// step outputs produced during a single pipeline run.
//
// The store is write-heavy with independent keys: every finishing step writes
// its output set once, and downstream steps read the sets of their upstream
// dependencies while unrelated steps are still writing. sync.Map fits that
// access pattern without global lock contention. Output sets are stored as
// immutable snapshots: once recorded they are never mutated.
package intermediates

import (
	"sync"

	"github.com/zclconf/go-cty/cty"
)

// Store holds checked step outputs keyed by node ID for the lifetime of one run.
type Store struct {
	outputs sync.Map // map[string]map[string]cty.Value
}

// New creates an empty intermediate-value store.
func New() *Store {
	return &Store{}
}

// Record stores the output set of a completed node. The caller must not
// mutate outputs after recording.
func (s *Store) Record(nodeID string, outputs map[string]cty.Value) {
	s.outputs.Store(nodeID, outputs)
}

// Get returns the recorded output set for a node.
func (s *Store) Get(nodeID string) (map[string]cty.Value, bool) {
	v, ok := s.outputs.Load(nodeID)
	if !ok {
		return nil, false
	}
	return v.(map[string]cty.Value), true
}

// Output returns one named output of a node.
func (s *Store) Output(nodeID, name string) (cty.Value, bool) {
	set, ok := s.Get(nodeID)
	if !ok {
		return cty.NilVal, false
	}
	v, ok := set[name]
	return v, ok
}

// Len reports how many nodes have recorded outputs.
func (s *Store) Len() int {
	count := 0
	s.outputs.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}
