package dagtype

import (
	"context"
	"fmt"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// MetadataEntry is one piece of structured metadata attached to a check
// result, surfaced in logs alongside the pass/fail verdict.
type MetadataEntry struct {
	Label       string
	Description string
	Value       cty.Value
}

// CheckResult is the outcome of running a type's check against a value.
type CheckResult struct {
	Success  bool
	Reason   string
	Metadata []MetadataEntry
}

// Success builds a passing check result carrying optional metadata.
func Success(metadata ...MetadataEntry) CheckResult {
	return CheckResult{Success: true, Metadata: metadata}
}

// Failure builds a failing check result with a human-readable reason.
func Failure(reason string, metadata ...MetadataEntry) CheckResult {
	return CheckResult{Success: false, Reason: reason, Metadata: metadata}
}

// CheckFn is a user-supplied predicate deciding whether a runtime value
// satisfies the type's contract.
type CheckFn func(ctx context.Context, v cty.Value) CheckResult

// LoaderFn converts a validated configuration value into a runtime value.
type LoaderFn func(ctx context.Context, config cty.Value) (cty.Value, error)

// Materialization describes where a persisted representation of a value ended up.
type Materialization struct {
	Label       string
	Description string
	Path        string
}

// MaterializerFn persists a runtime value according to a user-provided spec
// (typically a target path) and reports the resulting address.
type MaterializerFn func(ctx context.Context, v cty.Value, spec cty.Value) (*Materialization, error)

// Type is a declared, user-defined type. Its zero behaviors are deliberate:
// without a Check it falls back to schema conformance, without a Loader its
// config values are used verbatim, and without a Materializer any request to
// materialize is an error.
type Type struct {
	Name        string
	Description string

	// ConfigSchema is the declared shape of both config values fed to the
	// loader and, for types without a custom check, runtime values.
	// cty.NilType means the shape is unconstrained.
	ConfigSchema cty.Type

	Check        CheckFn
	Loader       LoaderFn
	Materializer MaterializerFn

	nothing bool
	anyType bool
}

// IsNothing reports whether this is the ordering-only type that carries no value.
func (t *Type) IsNothing() bool { return t.nothing }

// IsAny reports whether this type accepts every value unchecked.
func (t *Type) IsAny() bool { return t.anyType }

// CheckValue runs the type's contract against a runtime value.
//
// Nothing never has a value to check, so checking it is always a failure.
// Any always passes. A type with user check code defers to it entirely;
// otherwise the value must be convertible to the declared schema.
func (t *Type) CheckValue(ctx context.Context, v cty.Value) CheckResult {
	if t.nothing {
		return Failure(fmt.Sprintf("type %q carries no value and cannot be checked against one", t.Name))
	}
	if t.anyType {
		return Success()
	}
	if t.Check != nil {
		return t.Check(ctx, v)
	}
	return t.conforms(v)
}

// conforms is the default check: structural conversion to the declared schema.
func (t *Type) conforms(v cty.Value) CheckResult {
	if t.ConfigSchema == cty.NilType {
		return Success()
	}
	if v.IsNull() {
		return Failure(fmt.Sprintf("null value is not a valid %q", t.Name))
	}
	if !v.IsKnown() {
		return Failure(fmt.Sprintf("unknown value cannot be checked against %q", t.Name))
	}
	if _, err := convert.Convert(v, t.ConfigSchema); err != nil {
		return Failure(fmt.Sprintf("value of type %s is not a valid %q: %v",
			v.Type().FriendlyName(), t.Name, err))
	}
	return Success()
}

// Hydrate turns a configuration value into a runtime value. The config value
// is first validated against the declared schema, then handed to the loader
// when one exists. Types without a loader hydrate to the (converted) config
// value itself.
func (t *Type) Hydrate(ctx context.Context, config cty.Value) (cty.Value, error) {
	if t.nothing {
		return cty.NilVal, fmt.Errorf("type %q carries no value and cannot be hydrated", t.Name)
	}
	val := config
	if t.ConfigSchema != cty.NilType {
		converted, err := convert.Convert(config, t.ConfigSchema)
		if err != nil {
			return cty.NilVal, fmt.Errorf("config value for type %q does not match its schema: %w", t.Name, err)
		}
		val = converted
	}
	if t.Loader == nil {
		return val, nil
	}
	loaded, err := t.Loader(ctx, val)
	if err != nil {
		return cty.NilVal, fmt.Errorf("loader for type %q: %w", t.Name, err)
	}
	return loaded, nil
}

// Materialize persists a runtime value using the type's materializer.
func (t *Type) Materialize(ctx context.Context, v cty.Value, spec cty.Value) (*Materialization, error) {
	if t.nothing {
		return nil, fmt.Errorf("type %q carries no value and cannot be materialized", t.Name)
	}
	if t.Materializer == nil {
		return nil, fmt.Errorf("type %q has no materializer", t.Name)
	}
	m, err := t.Materializer(ctx, v, spec)
	if err != nil {
		return nil, fmt.Errorf("materializer for type %q: %w", t.Name, err)
	}
	return m, nil
}
