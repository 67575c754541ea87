// Package dagtype implements the gradual, user-defined type system that
// governs every value crossing a step boundary.
//
// A Type pairs an identity with up to three pieces of user code: a check
// (arbitrary validation returning pass/fail plus structured metadata), a
// loader (turning a validated configuration value into a runtime value), and
// a materializer (persisting a runtime value somewhere addressable). All
// three are optional; a type with none of them degrades to plain schema
// conformance, and the Any type opts out of checking entirely. That is what
// makes the system gradual: pipelines can start untyped and tighten one
// boundary at a time.
//
// A Registry holds the declared types for one engine instance and the
// interop table mapping native Go types onto declared types, so handlers can
// return plain Go values and still get checked.
package dagtype
