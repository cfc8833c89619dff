// Package evaluator implements the recursive async match/transform walk
// over value × type described in spec.md §4.6: given a Type node, an input
// RuntimeValue, a binding environment, and an evaluation context, it
// returns an EvaluationResult describing whether the input satisfies the
// type and whether the type transformed it.
//
// Go has no async/await; the "recursive async function" spec.md §9 calls
// for is rendered as ordinary synchronous recursion (no future-boxing
// workaround is needed, unlike the languages that design note is written
// for). Suspension points (native function calls) are plain blocking calls
// that check ctx.Done() first, exactly where the teacher's own
// Evaluator.Context-based cancellation does.
package evaluator

import (
	"context"
	"fmt"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// visited is the cycle guard from spec.md §4.6, keyed on (qualified type
// name, input identity) within a single top-level Eval call. Input identity
// is the full %v rendering of the RuntimeValue, so distinct objects with the
// same number of fields get distinct keys.
type visited map[string]bool

func visitKey(qualified string, input value.RuntimeValue) string {
	return qualified + "|" + fmt.Sprintf("%v", input)
}

// evalState threads the pieces that change as Eval recurses, without
// growing Eval's own parameter list on every new concern (tracing depth,
// the visited set, a TraceID once tracing is on).
type evalState struct {
	lookup  TypeLookup
	ec      evalctx.EvalContext
	visited visited
	depth   int
	trace   []TraceEntry
	traceID string
}

// Eval walks t against input, per spec.md §4.6's dispatch table. lookup
// gives access to the World's dictionaries for Ref and Primordial-Function
// resolution; bindings is the current binding environment.
func Eval(ctx context.Context, lookup TypeLookup, t polytype.Type, input value.RuntimeValue, bindings *polytype.Bindings, ec evalctx.EvalContext) (EvaluationResult, error) {
	st := &evalState{lookup: lookup, ec: ec, visited: visited{}}
	if ec.Tracing {
		st.traceID = newTraceID()
	}
	out, matched, err := st.eval(ctx, t, input, bindings)
	if err != nil {
		return EvaluationResult{Trace: st.trace, TraceID: st.traceID}, err
	}
	return EvaluationResult{Matched: matched, Output: out, Trace: st.trace, TraceID: st.traceID}, nil
}

func (st *evalState) recordTrace(path string, kind string, matched bool) {
	if !st.ec.Tracing {
		return
	}
	st.trace = append(st.trace, TraceEntry{Path: path, Kind: kind, Matched: matched, Depth: st.depth})
}

func (st *evalState) eval(ctx context.Context, t polytype.Type, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	if err := evalctx.CheckCancelled(ctx); err != nil {
		return value.Output{}, false, errCancelled()
	}

	switch n := t.(type) {
	case polytype.Anything:
		st.recordTrace("", "Anything", true)
		return value.Identity(), true, nil

	case polytype.Nothing:
		st.recordTrace("", "Nothing", false)
		return value.None(), false, nil

	case polytype.Primordial:
		return st.evalPrimordial(ctx, n, input, bindings)

	case polytype.Const:
		matched := value.Equal(n.Value, input)
		st.recordTrace("", "Const", matched)
		if matched {
			return value.Identity(), true, nil
		}
		return value.None(), false, nil

	case polytype.Object:
		return st.evalObject(ctx, n, input, bindings)

	case polytype.List:
		return st.evalList(ctx, n, input, bindings)

	case polytype.Join:
		return st.evalJoin(ctx, n, input, bindings)

	case polytype.Meet:
		return st.evalMeet(ctx, n, input, bindings)

	case polytype.Refinement:
		return st.evalRefinement(ctx, n, input, bindings)

	case polytype.Bound:
		child := bindings.Push(n.Bindings)
		return st.eval(ctx, n.Generic, input, child)

	case polytype.Argument:
		bound, ok := bindings.Lookup(n.Name)
		if !ok {
			return value.Output{}, false, errUnboundArgument(n.Name)
		}
		return st.eval(ctx, bound, input, bindings)

	case polytype.Expr:
		return st.evalExpr(n, input)

	case polytype.Ref:
		return st.evalRef(ctx, n, input, bindings)

	default:
		return value.Output{}, false, fmt.Errorf("unknown type node %T", t)
	}
}

func (st *evalState) evalPrimordial(ctx context.Context, p polytype.Primordial, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	if p.Kind == polytype.KindFunction {
		qualified := p.FuncRef.AsTypeStr()
		callable, ok := st.lookup.LookupFunction(qualified)
		if !ok {
			return value.Output{}, false, errNoSuchType(qualified)
		}
		st.depth++
		out, err := callable(ctx, input, bindings, st.ec)
		st.depth--
		if err != nil {
			return value.Output{}, false, errNativeFunction(qualified, err)
		}
		matched := !out.IsNone()
		st.recordTrace(qualified, "Function", matched)
		return out, matched, nil
	}

	matched := primordialMatches(p.Kind, input)
	st.recordTrace("", p.Kind.String(), matched)
	if matched {
		return value.Identity(), true, nil
	}
	return value.None(), false, nil
}

func primordialMatches(kind polytype.PrimordialKind, input value.RuntimeValue) bool {
	switch kind {
	case polytype.KindInteger:
		return input.Kind() == value.KindInteger
	case polytype.KindDecimal:
		return input.Kind() == value.KindDecimal || input.Kind() == value.KindInteger
	case polytype.KindString:
		return input.Kind() == value.KindString
	case polytype.KindBoolean:
		return input.Kind() == value.KindBool
	default:
		return false
	}
}

func (st *evalState) evalObject(ctx context.Context, o polytype.Object, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	if input.Kind() != value.KindObject {
		st.recordTrace("", "Object", false)
		return value.None(), false, nil
	}

	keys, fields := input.AsObject()
	outFields := make(map[string]value.RuntimeValue, len(fields))
	for k, v := range fields {
		outFields[k] = v
	}
	transformed := false

	for _, f := range o.Fields {
		fv, present := fields[f.Name]
		if !present {
			if f.Optional {
				continue
			}
			st.recordTrace("", "Object", false)
			return value.None(), false, nil
		}
		st.depth++
		out, matched, err := st.eval(ctx, f.Type, fv, bindings)
		st.depth--
		if err != nil {
			return value.Output{}, false, err
		}
		if !matched {
			st.recordTrace("", "Object", false)
			return value.None(), false, nil
		}
		if out.IsTransform() {
			transformed = true
			outFields[f.Name] = out.Value()
		}
	}

	st.recordTrace("", "Object", true)
	if !transformed {
		return value.Identity(), true, nil
	}
	return value.Transform(value.Object(keys, outFields)), true, nil
}

func (st *evalState) evalList(ctx context.Context, l polytype.List, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	if input.Kind() != value.KindList {
		st.recordTrace("", "List", false)
		return value.None(), false, nil
	}

	items := input.AsList()
	outItems := make([]value.RuntimeValue, len(items))
	transformed := false

	for i, item := range items {
		st.depth++
		out, matched, err := st.eval(ctx, l.Element, item, bindings)
		st.depth--
		if err != nil {
			return value.Output{}, false, err
		}
		if !matched {
			st.recordTrace("", "List", false)
			return value.None(), false, nil
		}
		if out.IsTransform() {
			transformed = true
			outItems[i] = out.Value()
		} else {
			outItems[i] = item
		}
	}

	st.recordTrace("", "List", true)
	if !transformed {
		return value.Identity(), true, nil
	}
	return value.Transform(value.List(outItems)), true, nil
}

func (st *evalState) evalJoin(ctx context.Context, j polytype.Join, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	st.depth++
	out, matched, err := st.eval(ctx, j.A, input, bindings)
	st.depth--
	if err != nil {
		// "the left side's errors are fatal (not swallowed into no-match)"
		return value.Output{}, false, err
	}
	if matched {
		st.recordTrace("", "Join", true)
		return out, true, nil
	}

	st.depth++
	out, matched, err = st.eval(ctx, j.B, input, bindings)
	st.depth--
	if err != nil {
		return value.Output{}, false, err
	}
	st.recordTrace("", "Join", matched)
	return out, matched, nil
}

func (st *evalState) evalMeet(ctx context.Context, m polytype.Meet, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	st.depth++
	aOut, aMatched, err := st.eval(ctx, m.A, input, bindings)
	st.depth--
	if err != nil {
		return value.Output{}, false, err
	}
	if !aMatched {
		st.recordTrace("", "Meet", false)
		return value.None(), false, nil
	}

	st.depth++
	bOut, bMatched, err := st.eval(ctx, m.B, input, bindings)
	st.depth--
	if err != nil {
		return value.Output{}, false, err
	}
	if !bMatched {
		st.recordTrace("", "Meet", false)
		return value.None(), false, nil
	}

	st.recordTrace("", "Meet", true)
	return composeMeet(aOut, bOut), true, nil
}

// composeMeet implements the right-biased Meet output rule fixed by
// spec.md §9 (the source's Meet composition was underspecified).
func composeMeet(a, b value.Output) value.Output {
	if a.IsIdentity() && b.IsIdentity() {
		return value.Identity()
	}
	if b.IsTransform() {
		return b
	}
	if a.IsTransform() {
		return a
	}
	return value.Identity()
}

func (st *evalState) evalRefinement(ctx context.Context, r polytype.Refinement, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	st.depth++
	baseOut, baseMatched, err := st.eval(ctx, r.Base, input, bindings)
	st.depth--
	if err != nil {
		return value.Output{}, false, err
	}
	if !baseMatched {
		st.recordTrace("", "Refinement", false)
		return value.None(), false, nil
	}

	narrowed := baseOut.Resolve(input)
	st.depth++
	predOut, predMatched, err := st.eval(ctx, r.Predicate, narrowed, bindings)
	st.depth--
	if err != nil {
		return value.Output{}, false, err
	}
	st.recordTrace("", "Refinement", predMatched)
	if !predMatched {
		return value.None(), false, nil
	}
	if predOut.IsTransform() {
		return predOut, true, nil
	}
	return baseOut, true, nil
}

func (st *evalState) evalRef(ctx context.Context, r polytype.Ref, input value.RuntimeValue, bindings *polytype.Bindings) (value.Output, bool, error) {
	qualified := r.Name.AsTypeStr()
	key := visitKey(qualified, input)
	if st.visited[key] {
		st.recordTrace(qualified, "Ref", false)
		return value.Output{}, false, errCyclicSelfReference(qualified)
	}

	target, ok := st.lookup.LookupType(qualified)
	if !ok {
		return value.Output{}, false, errNoSuchType(qualified)
	}

	st.visited[key] = true
	defer delete(st.visited, key)

	out, matched, err := st.eval(ctx, target, input, bindings)
	if err != nil {
		return value.Output{}, false, err
	}
	st.recordTrace(qualified, "Ref", matched)
	return out, matched, nil
}
