package evaluator

import (
	"fmt"
	"log/slog"
)

// RuntimeErrorKind tags a RuntimeError's variant (spec.md §7).
type RuntimeErrorKind int

const (
	NoSuchType RuntimeErrorKind = iota
	UnboundArgument
	NativeFunctionError
	Cancelled
	CyclicSelfReference
	ExpressionEvaluation
)

func (k RuntimeErrorKind) String() string {
	switch k {
	case NoSuchType:
		return "NoSuchType"
	case UnboundArgument:
		return "UnboundArgument"
	case NativeFunctionError:
		return "NativeFunctionError"
	case Cancelled:
		return "Cancelled"
	case CyclicSelfReference:
		return "CyclicSelfReference"
	case ExpressionEvaluation:
		return "ExpressionEvaluation"
	default:
		return "Unknown"
	}
}

// RuntimeError is the evaluation-time error family from spec.md §7. The
// Evaluator fails fast on the first RuntimeError it encounters; a "no
// match" is never represented as a RuntimeError.
type RuntimeError struct {
	Kind   RuntimeErrorKind
	Name   string // qualified type/argument name, when applicable
	Detail string // free-form detail (expression failure, native error text)
	Inner  error  // wrapped native function error, when applicable
}

func (e *RuntimeError) Error() string {
	switch e.Kind {
	case NoSuchType:
		return fmt.Sprintf("no such type: %s", e.Name)
	case UnboundArgument:
		return fmt.Sprintf("unbound argument: %s", e.Name)
	case NativeFunctionError:
		if e.Inner != nil {
			return fmt.Sprintf("native function %s failed: %v", e.Name, e.Inner)
		}
		return fmt.Sprintf("native function %s failed: %s", e.Name, e.Detail)
	case Cancelled:
		return "evaluation cancelled"
	case CyclicSelfReference:
		return fmt.Sprintf("cyclic self reference: %s", e.Name)
	case ExpressionEvaluation:
		return fmt.Sprintf("expression evaluation error: %s", e.Detail)
	default:
		return "unknown runtime error"
	}
}

func (e *RuntimeError) Unwrap() error { return e.Inner }

// LogValue renders the error as structured slog fields, so
// a slog logger can log a RuntimeError without parsing its message string.
func (e *RuntimeError) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("kind", e.Kind.String()),
	}
	if e.Name != "" {
		attrs = append(attrs, slog.String("name", e.Name))
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	return slog.GroupValue(attrs...)
}

func errNoSuchType(name string) *RuntimeError {
	return &RuntimeError{Kind: NoSuchType, Name: name}
}

func errUnboundArgument(name string) *RuntimeError {
	return &RuntimeError{Kind: UnboundArgument, Name: name}
}

func errNativeFunction(name string, inner error) *RuntimeError {
	return &RuntimeError{Kind: NativeFunctionError, Name: name, Inner: inner}
}

func errCancelled() *RuntimeError {
	return &RuntimeError{Kind: Cancelled}
}

func errCyclicSelfReference(name string) *RuntimeError {
	return &RuntimeError{Kind: CyclicSelfReference, Name: name}
}

func errExpression(detail string) *RuntimeError {
	return &RuntimeError{Kind: ExpressionEvaluation, Detail: detail}
}
