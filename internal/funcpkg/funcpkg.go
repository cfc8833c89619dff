// Package funcpkg implements the host-provided native function package
// registry (spec.md §4.4): named async callables grouped by package path,
// the mechanism by which host capabilities (network, binary decoding, gRPC,
// ...) become first-class policy types.
package funcpkg

import (
	"context"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// Callable is a native function's contract: given an input value, the
// current binding environment, and the evaluation context, it produces
// either an Output or a runtime error. Implementations must be re-entrant
// and free of hidden mutable state if the host plans concurrent
// evaluations (spec.md §6).
type Callable func(ctx context.Context, input value.RuntimeValue, bindings *polytype.Bindings, ec evalctx.EvalContext) (value.Output, error)

// FunctionPackage is a set of (identifier → callable) pairs contributed by
// the host. No two packages registered with a Linker may share a
// PackagePath (spec.md §4.4).
type FunctionPackage interface {
	// FunctionNames returns the bare identifiers this package exports, in
	// any order; the Linker's world-name census (spec.md §4.3 Phase 2)
	// only needs the set.
	FunctionNames() []string
	// Functions returns the callable for each exported identifier.
	Functions() map[string]Callable
}

// Static is the simplest FunctionPackage: a fixed map of name to callable,
// built once at registration time. This is the shape every native package
// in internal/builtins uses, mirroring the teacher's own
// `func XBuiltins() map[string]*Builtin` pattern
// (internal/evaluator/builtins_grpc.go) generalized to return Callables
// instead of funxy Builtins.
type Static map[string]Callable

// FunctionNames implements FunctionPackage.
func (s Static) FunctionNames() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	return names
}

// Functions implements FunctionPackage.
func (s Static) Functions() map[string]Callable {
	return map[string]Callable(s)
}
