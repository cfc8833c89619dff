package evaluator

import "github.com/google/uuid"

// newTraceID stamps a correlation id for a traced evaluation, so a caller
// can line up the returned EvaluationResult with a structured log line
// emitted by internal/telemetry.
func newTraceID() string {
	return uuid.NewString()
}
