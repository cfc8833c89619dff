// Package world implements World, the Linker's build product: the two
// flat dictionaries of fully-qualified name to type/function described in
// spec.md §3, plus the Evaluate entry point a host calls to check a value
// against a named pattern (spec.md §4.5). This is the renamed, Go-idiomatic
// form of the original prototype's Runtime
// (original_source/seedwing-policy-engine/src/runtime/linker/mod.rs).
package world

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/evaluator"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// World holds every definition a successful Link produced. It is built once
// and then read concurrently (spec.md §6): after construction, World is
// never mutated, so no locking is needed on the lookup path.
type World struct {
	types     map[string]polytype.Type
	functions map[string]funcpkg.Callable
	log       *slog.Logger
}

// New builds a World from the Linker's resolved dictionaries. Callers
// outside internal/linker should not normally construct a World directly;
// this is exported for the Linker and for tests that want to exercise
// Evaluate against a hand-built World.
func New(types map[string]polytype.Type, functions map[string]funcpkg.Callable, log *slog.Logger) *World {
	if log == nil {
		log = slog.Default()
	}
	return &World{types: types, functions: functions, log: log}
}

// LookupType implements evaluator.TypeLookup.
func (w *World) LookupType(qualified string) (polytype.Type, bool) {
	t, ok := w.types[qualified]
	return t, ok
}

// LookupFunction implements evaluator.TypeLookup.
func (w *World) LookupFunction(qualified string) (funcpkg.Callable, bool) {
	f, ok := w.functions[qualified]
	return f, ok
}

// TypeNames returns every fully-qualified type name in the World, for
// hosts that want to enumerate available patterns (e.g. a CLI's `list`
// subcommand).
func (w *World) TypeNames() []string {
	out := make([]string, 0, len(w.types))
	for name := range w.types {
		out = append(out, name)
	}
	return out
}

var _ evaluator.TypeLookup = (*World)(nil)

// Evaluate resolves qualifiedName in either dictionary and evaluates input
// against it, mirroring seedwing-policy-server's
// `runtime.evaluate(path, value, &bindings)` call shape. A bare function
// name invokes the callable directly (spec.md §4.5); a type name runs the
// full recursive evaluator.
func (w *World) Evaluate(ctx context.Context, qualifiedName string, input value.RuntimeValue, ec evalctx.EvalContext) (evaluator.EvaluationResult, error) {
	if t, ok := w.types[qualifiedName]; ok {
		return evaluator.Eval(ctx, w, t, input, ec.Bindings, ec)
	}
	if fn, ok := w.functions[qualifiedName]; ok {
		out, err := fn(ctx, input, ec.Bindings, ec)
		if err != nil {
			return evaluator.EvaluationResult{}, fmt.Errorf("function %s: %w", qualifiedName, err)
		}
		return evaluator.EvaluationResult{Matched: !out.IsNone(), Output: out}, nil
	}

	w.log.Warn("evaluate: no such type or function", slog.String("name", qualifiedName))
	return evaluator.EvaluationResult{}, &evaluator.RuntimeError{Kind: evaluator.NoSuchType, Name: qualifiedName}
}
