// Package dag builds the dependency graph of a pipeline: one node per step,
// with edges from both explicit depends_on declarations (ordering-only) and
// implicit references to upstream outputs inside argument expressions. The
// resulting graph is validated for cycles and undeclared output references
// before execution begins.
package dag
