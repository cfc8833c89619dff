// Package polytype implements the policy language's algebraic type
// representation: the closed family of type constructors described in
// spec.md §3/§4.2, plus the binding environment used by Bound/Argument.
//
// Unlike a general-purpose type system, these nodes never form real Go
// pointer cycles: mutual and self recursion is expressed structurally via
// Ref (a qualified TypeName looked up in the World at evaluation time), so
// the tree a TypeDefinition owns is always finite and ordinary value
// equality/printing works without cycle detection. See spec.md §9 for why
// this is a deliberate simplification of the teacher's pointer-shared
// TApp/TCon graph.
package polytype

import (
	"fmt"
	"sort"
	"strings"

	"github.com/vectorpath/policyengine/internal/names"
	"github.com/vectorpath/policyengine/internal/value"
)

// Type is the interface implemented by every node in the closed algebraic
// family. Dispatch elsewhere in this module (ReferencedTypes, Qualify) is by
// type switch, not by method calls on this interface — mirroring how the
// teacher's typesystem.Type centralizes substitution logic in a single
// switch rather than spreading it across every variant's method set.
type Type interface {
	String() string
}

// Anything matches any input; evaluation result is Identity.
type Anything struct{}

func (Anything) String() string { return "anything" }

// Nothing matches no input; evaluation result is None.
type Nothing struct{}

func (Nothing) String() string { return "nothing" }

// Primordial is a leaf atom: Integer, Decimal, Boolean, String, or Function.
// For Kind == KindFunction, FuncRef names the callable in the World's
// function dictionary the evaluator must invoke.
type Primordial struct {
	Kind    PrimordialKind
	FuncRef names.TypeName
}

func (p Primordial) String() string {
	if p.Kind == KindFunction {
		return "function(" + p.FuncRef.AsTypeStr() + ")"
	}
	return p.Kind.String()
}

// Const matches iff the input structurally equals Value.
type Const struct {
	Value value.RuntimeValue
}

func (c Const) String() string { return "const(" + c.Value.Inspect() + ")" }

// ObjectField is one declared field of an Object type.
type ObjectField struct {
	Name     string
	Type     Type
	Optional bool
}

// Object matches iff the input is a map and every declared field's value
// matches the field's type (required fields must be present; optional
// fields may be absent).
type Object struct {
	Fields []ObjectField
}

func (o Object) String() string {
	parts := make([]string, len(o.Fields))
	for i, f := range o.Fields {
		opt := ""
		if f.Optional {
			opt = "?"
		}
		parts[i] = fmt.Sprintf("%s%s: %s", f.Name, opt, f.Type.String())
	}
	return "{ " + strings.Join(parts, ", ") + " }"
}

// List matches iff the input is a sequence and every element matches
// Element.
type List struct {
	Element Type
}

func (l List) String() string { return "[" + l.Element.String() + "]" }

// Join is disjunction: matches if either side matches; output is that
// side's output. Short-circuits left-to-right.
type Join struct {
	A, B Type
}

func (j Join) String() string { return j.A.String() + " || " + j.B.String() }

// Meet is conjunction: matches iff both sides match. Output composition is
// right-biased (spec.md §9 Open Question resolution).
type Meet struct {
	A, B Type
}

func (m Meet) String() string { return m.A.String() + " && " + m.B.String() }

// Refinement narrows Base by Predicate, applied to Base's output.
type Refinement struct {
	Base      Type
	Predicate Type
}

func (r Refinement) String() string {
	return r.Base.String() + "(" + r.Predicate.String() + ")"
}

// Bound applies Generic to a binding environment pushed onto the current
// one during evaluation.
type Bound struct {
	Generic  Type
	Bindings map[string]Type
}

func (b Bound) String() string {
	parts := make([]string, 0, len(b.Bindings))
	for k, v := range b.Bindings {
		parts = append(parts, k+"="+v.String())
	}
	return b.Generic.String() + "<" + strings.Join(parts, ", ") + ">"
}

// Argument is a placeholder resolved from the current binding environment.
type Argument struct {
	Name string
}

func (a Argument) String() string { return "$" + a.Name }

// Expr wraps a host-expression-language constraint evaluated against the
// input; the boolean result determines match.
type Expr struct {
	Expression Expression
}

func (e Expr) String() string { return "expr(" + e.Expression.String() + ")" }

// Ref is a named reference to another type definition, qualified to a
// fully-qualified TypeName by the Linker (spec.md §4.3). This is the sole
// mechanism for mutual/self recursion: the evaluator resolves it by name
// against the World, guarded by a visited set to stop infinite self
// reference (spec.md §4.6).
type Ref struct {
	Name names.TypeName
}

func (r Ref) String() string { return r.Name.AsTypeStr() }

// ReferencedTypes returns every TypeName textually referenced by t,
// including Primordial function references, preserving whatever
// qualified-ness the references currently carry. Used by the Linker's
// Phase 1 (intra-unit visibility check) and Phase 3 (inter-unit
// resolution).
func ReferencedTypes(t Type) []names.TypeName {
	var out []names.TypeName
	collectReferencedTypes(t, &out)
	return out
}

func collectReferencedTypes(t Type, out *[]names.TypeName) {
	switch n := t.(type) {
	case Ref:
		*out = append(*out, n.Name)
	case Primordial:
		if n.Kind == KindFunction {
			*out = append(*out, n.FuncRef)
		}
	case Object:
		for _, f := range n.Fields {
			collectReferencedTypes(f.Type, out)
		}
	case List:
		collectReferencedTypes(n.Element, out)
	case Join:
		collectReferencedTypes(n.A, out)
		collectReferencedTypes(n.B, out)
	case Meet:
		collectReferencedTypes(n.A, out)
		collectReferencedTypes(n.B, out)
	case Refinement:
		collectReferencedTypes(n.Base, out)
		collectReferencedTypes(n.Predicate, out)
	case Bound:
		collectReferencedTypes(n.Generic, out)
		keys := make([]string, 0, len(n.Bindings))
		for k := range n.Bindings {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			collectReferencedTypes(n.Bindings[k], out)
		}
	case Anything, Nothing, Const, Argument, Expr:
		// no type-name references
	}
}

// Qualify rewrites every unqualified Ref and Primordial function reference
// in t using visible, a lookup table from bare identifier to the
// fully-qualified TypeName it denotes in the current compilation unit
// (spec.md §4.3 Phase 1 step 3). References already qualified (or absent
// from visible because they are a primordial needing no qualification) are
// left unchanged. It returns a new Type tree; t is never mutated.
func Qualify(t Type, visible map[string]names.TypeName) Type {
	switch n := t.(type) {
	case Ref:
		return Ref{Name: qualifyName(n.Name, visible)}
	case Primordial:
		if n.Kind == KindFunction {
			return Primordial{Kind: n.Kind, FuncRef: qualifyName(n.FuncRef, visible)}
		}
		return n
	case Object:
		fields := make([]ObjectField, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = ObjectField{Name: f.Name, Optional: f.Optional, Type: Qualify(f.Type, visible)}
		}
		return Object{Fields: fields}
	case List:
		return List{Element: Qualify(n.Element, visible)}
	case Join:
		return Join{A: Qualify(n.A, visible), B: Qualify(n.B, visible)}
	case Meet:
		return Meet{A: Qualify(n.A, visible), B: Qualify(n.B, visible)}
	case Refinement:
		return Refinement{Base: Qualify(n.Base, visible), Predicate: Qualify(n.Predicate, visible)}
	case Bound:
		bindings := make(map[string]Type, len(n.Bindings))
		for k, v := range n.Bindings {
			bindings[k] = Qualify(v, visible)
		}
		return Bound{Generic: Qualify(n.Generic, visible), Bindings: bindings}
	default:
		return t
	}
}

func qualifyName(name names.TypeName, visible map[string]names.TypeName) names.TypeName {
	if name.IsQualified() {
		return name
	}
	if qualified, ok := visible[name.Name()]; ok {
		return qualified
	}
	return name
}
