// Package evalctx implements EvalContext, the configuration bag threaded
// through every evaluation and native function call (spec.md §6).
package evalctx

import (
	"context"

	"github.com/vectorpath/policyengine/internal/polytype"
)

// EvalContext carries the per-evaluation options recognized by the
// Evaluator and by native function packages: whether to collect a trace
// and a seeded binding environment. Deadline and cancellation (spec.md §5)
// ride on the standard context.Context passed alongside EvalContext to
// every Evaluator and native-function entry point, the same way the
// teacher's own Evaluator carries a context.Context field for
// cancellation.
type EvalContext struct {
	// Tracing, when true, makes the Evaluator collect one TraceEntry per
	// sub-pattern attempt.
	Tracing bool

	// Bindings seeds the binding environment an evaluation starts with.
	// Most evaluations start with a nil (empty) environment.
	Bindings *polytype.Bindings
}

// Background returns an EvalContext with no tracing and an empty binding
// environment — the default used when a host resolves a World entry
// directly to a function (spec.md §4.5).
func Background() EvalContext {
	return EvalContext{}
}

// WithBindings returns a copy of ec with Bindings replaced.
func (ec EvalContext) WithBindings(b *polytype.Bindings) EvalContext {
	ec.Bindings = b
	return ec
}

// CheckCancelled maps ctx's cancellation into the RuntimeError the
// Evaluator returns at a suspension point (spec.md §5: "every suspension
// point checks it and, if cancelled, returns RuntimeError::Cancelled
// immediately without producing partial Output").
func CheckCancelled(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}

// ErrCancelled is the sentinel returned by CheckCancelled. The evaluator
// package wraps it into RuntimeError{Kind: Cancelled} so callers see the
// typed RuntimeError family from spec.md §7, not a bare context error.
var ErrCancelled = errCancelled{}

type errCancelled struct{}

func (errCancelled) Error() string { return "evaluation cancelled" }
