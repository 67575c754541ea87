// Package registry provides the central "glue" between manifests and Go code.
//
// The Registry stores mappings between the string identifiers used in
// manifests (e.g. "ComputeSum", "CheckRowCount") and the compiled Go
// functions that implement them, alongside the parsed solid and type
// definitions themselves.
//
// During application startup the registry is populated and then validated to
// ensure that the Go code and the public-facing manifests are perfectly in
// sync, preventing a wide class of runtime errors.
package registry
