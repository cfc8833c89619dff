package evaluator

import "github.com/vectorpath/policyengine/internal/value"

// TraceEntry is one recorded sub-pattern attempt, collected only when
// EvalContext.Tracing is set (spec.md §3 EvaluationResult, §4.12 of
// SPEC_FULL.md). Path is the canonical "::"-joined name being attempted
// (empty for structural nodes that aren't named references, e.g. a bare
// Join branch), Kind is a short label for the node variant, and Depth is
// the nesting level at the time of the attempt — mirroring the push/pop
// stack discipline the teacher's witness.go uses for trait dictionaries,
// applied here to match/no-match bookkeeping instead.
type TraceEntry struct {
	Path    string
	Kind    string
	Matched bool
	Depth   int
}

// EvaluationResult carries the matched-or-not flag, the Output, and
// per-sub-pattern trace entries if tracing was requested (spec.md §3).
type EvaluationResult struct {
	Matched bool
	Output  value.Output
	Trace   []TraceEntry
	// TraceID correlates this result with an external request log line
	// when tracing is enabled; empty otherwise.
	TraceID string
}
