// Package bits implements the "bits" native function package: decode
// splits a base64-encoded byte sequence into fixed-width integer fields
// per a declared binding ({field: width}), via github.com/funvibe/funbit,
// producing a RuntimeValue Object that can then be matched against a
// declared Object/List type.
package bits

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/funvibe/funbit/pkg/funbit"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// Functions returns the bits package's exported functions.
func Functions() funcpkg.Static {
	return funcpkg.Static{
		"decode": Decode,
	}
}

// fieldSpec is one declared {name: width} pair. Bound carries its
// bindings as a map, so there is no source declaration order to recover
// here; fieldsFromBindings sorts by field name instead, so Decode lays
// out the same matcher segments in the same order on every call.
type fieldSpec struct {
	name  string
	width uint
}

// fieldsFromBindings reads the "fields" binding: a Bound generic carrying
// one Const Integer entry per field name, the binding-environment shape a
// `{field: width}` declaration compiles down to.
func fieldsFromBindings(bindings *polytype.Bindings) ([]fieldSpec, error) {
	t, ok := bindings.Lookup("fields")
	if !ok {
		return nil, fmt.Errorf("bits::decode: missing \"fields\" binding")
	}
	bound, ok := t.(polytype.Bound)
	if !ok {
		return nil, fmt.Errorf("bits::decode: \"fields\" binding must be a Bound field-width map")
	}

	names := make([]string, 0, len(bound.Bindings))
	for name := range bound.Bindings {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]fieldSpec, 0, len(names))
	for _, name := range names {
		c, ok := bound.Bindings[name].(polytype.Const)
		if !ok || c.Value.Kind() != value.KindInteger {
			return nil, fmt.Errorf("bits::decode: field %q width must be a Const Integer", name)
		}
		if c.Value.AsInteger() <= 0 {
			return nil, fmt.Errorf("bits::decode: field %q width must be positive", name)
		}
		specs = append(specs, fieldSpec{name: name, width: uint(c.Value.AsInteger())})
	}
	return specs, nil
}

// Decode base64-decodes input (a String) and splits the resulting bytes
// into the fields declared by the "fields" binding, each an unsigned
// big-endian integer of its declared bit width, laid out in field-name
// order (see fieldSpec).
// Insufficient bits is a RuntimeError, not a silent None: malformed host
// input always surfaces as an error rather than a quiet no-match.
func Decode(ctx context.Context, input value.RuntimeValue, bindings *polytype.Bindings, ec evalctx.EvalContext) (value.Output, error) {
	if err := evalctx.CheckCancelled(ctx); err != nil {
		return value.Output{}, err
	}
	if input.Kind() != value.KindString {
		return value.Output{}, fmt.Errorf("bits::decode: expected a base64 String, got %s", input.Kind())
	}

	specs, err := fieldsFromBindings(bindings)
	if err != nil {
		return value.Output{}, err
	}

	raw, err := base64.StdEncoding.DecodeString(input.AsString())
	if err != nil {
		return value.Output{}, fmt.Errorf("bits::decode: invalid base64 input: %w", err)
	}

	bitstring := funbit.NewBitStringFromBytes(raw)
	matcher := funbit.NewMatcher()
	extracted := make([]int64, len(specs))
	for i, spec := range specs {
		funbit.Integer(matcher, &extracted[i], funbit.WithSize(spec.width), funbit.WithEndianness("big"))
	}

	if _, err := funbit.Match(matcher, bitstring); err != nil {
		return value.Output{}, fmt.Errorf("bits::decode: %w", err)
	}

	keys := make([]string, len(specs))
	fields := make(map[string]value.RuntimeValue, len(specs))
	for i, spec := range specs {
		keys[i] = spec.name
		fields[spec.name] = value.Integer(extracted[i])
	}
	sort.Strings(keys)

	return value.Transform(value.Object(keys, fields)), nil
}
