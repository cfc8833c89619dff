// Package value implements the runtime value domain: a tagged union that
// mirrors the JSON data model plus the transform outcome the evaluator
// produces on a match.
package value

import (
	"fmt"
	"math/big"
	"sort"
)

// Kind tags a RuntimeValue's variant.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindDecimal
	KindString
	KindList
	KindObject
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindDecimal:
		return "decimal"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	default:
		return "unknown"
	}
}

// RuntimeValue is the tagged union {Null, Bool, Integer, Decimal, String,
// List<RuntimeValue>, Object<string,RuntimeValue>}. Zero value is Null.
//
// Only one of the typed fields is meaningful, selected by Kind. RuntimeValue
// is a plain value type: copying it is cheap and safe, and the evaluator
// never mutates one in place — every Transform output is a fresh value.
type RuntimeValue struct {
	kind Kind

	boolVal    bool
	intVal     int64
	decVal     *big.Rat
	strVal     string
	listVal    []RuntimeValue
	objectVal  map[string]RuntimeValue
	objectKeys []string // preserves declaration/insertion order for Inspect/marshal
}

// Null is the RuntimeValue for JSON null.
func Null() RuntimeValue { return RuntimeValue{kind: KindNull} }

// Bool wraps a boolean.
func Bool(b bool) RuntimeValue { return RuntimeValue{kind: KindBool, boolVal: b} }

// Integer wraps a 64-bit signed integer.
func Integer(i int64) RuntimeValue { return RuntimeValue{kind: KindInteger, intVal: i} }

// Decimal wraps an exact rational. See DecimalFromFloat for the conversion
// policy used when a native function hands back a float64.
func Decimal(r *big.Rat) RuntimeValue { return RuntimeValue{kind: KindDecimal, decVal: r} }

// DecimalFromFloat converts a float64 into an exact-rational Decimal (the
// float's exact binary value; no rounding). NaN and ±Inf become 0. This is
// the only sanctioned path from float64 into the value domain, so the
// exact-rational policy documented in DESIGN.md stays centralized.
func DecimalFromFloat(f float64) RuntimeValue {
	r := new(big.Rat).SetFloat64(f)
	if r == nil {
		r = new(big.Rat)
	}
	return Decimal(r)
}

// String wraps a string.
func String(s string) RuntimeValue { return RuntimeValue{kind: KindString, strVal: s} }

// List wraps a sequence of values. The slice is not copied; callers must
// treat it as owned by the returned RuntimeValue from that point on.
func List(items []RuntimeValue) RuntimeValue {
	return RuntimeValue{kind: KindList, listVal: items}
}

// Object builds an object value from ordered key/value pairs, preserving the
// given order for Inspect and re-marshaling.
func Object(keys []string, fields map[string]RuntimeValue) RuntimeValue {
	return RuntimeValue{kind: KindObject, objectKeys: keys, objectVal: fields}
}

// Kind reports this value's tag.
func (v RuntimeValue) Kind() Kind { return v.kind }

// AsBool returns the boolean payload; only valid when Kind() == KindBool.
func (v RuntimeValue) AsBool() bool { return v.boolVal }

// AsInteger returns the integer payload; only valid when Kind() == KindInteger.
func (v RuntimeValue) AsInteger() int64 { return v.intVal }

// AsDecimal returns the decimal payload; only valid when Kind() == KindDecimal.
func (v RuntimeValue) AsDecimal() *big.Rat { return v.decVal }

// AsString returns the string payload; only valid when Kind() == KindString.
func (v RuntimeValue) AsString() string { return v.strVal }

// AsList returns the list payload; only valid when Kind() == KindList.
func (v RuntimeValue) AsList() []RuntimeValue { return v.listVal }

// AsObject returns the field map and key order; only valid when Kind() ==
// KindObject.
func (v RuntimeValue) AsObject() (keys []string, fields map[string]RuntimeValue) {
	return v.objectKeys, v.objectVal
}

// Field looks up a single field of an Object value.
func (v RuntimeValue) Field(name string) (RuntimeValue, bool) {
	if v.kind != KindObject {
		return RuntimeValue{}, false
	}
	f, ok := v.objectVal[name]
	return f, ok
}

// FromJSON converts a decoded JSON value (as produced by encoding/json's
// interface{} decoding, or any equivalent tree of
// nil/bool/float64/int/int64/string/[]any/map[string]any) into a
// RuntimeValue. A whole-valued number becomes Integer (1e3 included); any
// other number becomes Decimal. Other Go shapes, json.Number among them,
// become a String of their %v rendering.
func FromJSON(v any) RuntimeValue {
	switch t := v.(type) {
	case nil:
		return Null()
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case float64:
		return numberFromFloat64(t)
	case int:
		return Integer(int64(t))
	case int64:
		return Integer(t)
	case []any:
		items := make([]RuntimeValue, len(t))
		for i, e := range t {
			items[i] = FromJSON(e)
		}
		return List(items)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fields := make(map[string]RuntimeValue, len(t))
		for k, e := range t {
			fields[k] = FromJSON(e)
		}
		return Object(keys, fields)
	default:
		// Unknown Go shape (e.g. json.Number): best-effort string rendering
		// so FromJSON never panics on exotic decoder configurations.
		return String(fmt.Sprintf("%v", t))
	}
}

func numberFromFloat64(f float64) RuntimeValue {
	if f == float64(int64(f)) {
		return Integer(int64(f))
	}
	return DecimalFromFloat(f)
}

// Equal implements structural equality, with the numeric-tower rule from
// spec.md §4.6: an Integer and a Decimal are equal iff they denote the same
// rational.
func Equal(a, b RuntimeValue) bool {
	if a.kind == KindInteger && b.kind == KindDecimal {
		return ratEqualInt(b.decVal, a.intVal)
	}
	if a.kind == KindDecimal && b.kind == KindInteger {
		return ratEqualInt(a.decVal, b.intVal)
	}
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.boolVal == b.boolVal
	case KindInteger:
		return a.intVal == b.intVal
	case KindDecimal:
		return a.decVal.Cmp(b.decVal) == 0
	case KindString:
		return a.strVal == b.strVal
	case KindList:
		if len(a.listVal) != len(b.listVal) {
			return false
		}
		for i := range a.listVal {
			if !Equal(a.listVal[i], b.listVal[i]) {
				return false
			}
		}
		return true
	case KindObject:
		if len(a.objectVal) != len(b.objectVal) {
			return false
		}
		for k, av := range a.objectVal {
			bv, ok := b.objectVal[k]
			if !ok || !Equal(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func ratEqualInt(r *big.Rat, i int64) bool {
	if r == nil {
		return false
	}
	return r.Cmp(new(big.Rat).SetInt64(i)) == 0
}

// Inspect renders a RuntimeValue for diagnostics and trace output. It is not
// used for hashing or equality.
func (v RuntimeValue) Inspect() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindBool:
		return fmt.Sprintf("%t", v.boolVal)
	case KindInteger:
		return fmt.Sprintf("%d", v.intVal)
	case KindDecimal:
		if v.decVal == nil {
			return "0"
		}
		f, _ := v.decVal.Float64()
		return fmt.Sprintf("%v", f)
	case KindString:
		return fmt.Sprintf("%q", v.strVal)
	case KindList:
		parts := make([]string, len(v.listVal))
		for i, e := range v.listVal {
			parts[i] = e.Inspect()
		}
		return fmt.Sprintf("%v", parts)
	case KindObject:
		return fmt.Sprintf("{%d fields}", len(v.objectVal))
	default:
		return "<invalid>"
	}
}
