package dagtype

import (
	"fmt"

	"github.com/zclconf/go-cty/cty"
)

// Builtin type names. These are reserved in every registry.
const (
	AnyTypeName     = "any"
	NothingTypeName = "nothing"
	StringTypeName  = "string"
	NumberTypeName  = "number"
	BoolTypeName    = "bool"
)

// Any accepts every value without checking. It is the default for handler
// outputs whose Go type has no registered mapping.
func Any() *Type {
	return &Type{
		Name:        AnyTypeName,
		Description: "Accepts any value; type checking is skipped.",
		anyType:     true,
	}
}

// Nothing expresses an execution-order constraint between steps without
// carrying a data value.
func Nothing() *Type {
	return &Type{
		Name:        NothingTypeName,
		Description: "An ordering-only dependency that carries no value.",
		nothing:     true,
	}
}

// String is the builtin string type.
func String() *Type {
	return &Type{Name: StringTypeName, ConfigSchema: cty.String}
}

// Number is the builtin numeric type covering ints and floats.
func Number() *Type {
	return &Type{Name: NumberTypeName, ConfigSchema: cty.Number}
}

// Bool is the builtin boolean type.
func Bool() *Type {
	return &Type{Name: BoolTypeName, ConfigSchema: cty.Bool}
}

// List derives a list type from an element type. The element must constrain
// its values: a list of any or nothing has no checkable shape.
func List(elem *Type) (*Type, error) {
	if elem.IsNothing() || elem.IsAny() {
		return nil, fmt.Errorf("cannot build a list of %q", elem.Name)
	}
	if elem.ConfigSchema == cty.NilType {
		return nil, fmt.Errorf("cannot build a list of %q: element type has no schema", elem.Name)
	}
	return &Type{
		Name:         fmt.Sprintf("list(%s)", elem.Name),
		ConfigSchema: cty.List(elem.ConfigSchema),
	}, nil
}

// Map derives a string-keyed map type from an element type.
func Map(elem *Type) (*Type, error) {
	if elem.IsNothing() || elem.IsAny() {
		return nil, fmt.Errorf("cannot build a map of %q", elem.Name)
	}
	if elem.ConfigSchema == cty.NilType {
		return nil, fmt.Errorf("cannot build a map of %q: element type has no schema", elem.Name)
	}
	return &Type{
		Name:         fmt.Sprintf("map(%s)", elem.Name),
		ConfigSchema: cty.Map(elem.ConfigSchema),
	}, nil
}
