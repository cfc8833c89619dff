package evaluator

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// EvalJob is one independent (type, input) pair submitted to
// BatchEvaluate.
type EvalJob struct {
	Name    string // caller-assigned label, copied into the matching JobResult
	Type    polytype.Type
	Input   value.RuntimeValue
	EC      evalctx.EvalContext
}

// JobResult pairs an EvalJob's Name with its outcome. Exactly one of
// Result/Err is meaningful, mirroring spec.md's "one misbehaving job's
// RuntimeError does not cancel its siblings".
type JobResult struct {
	Name   string
	Result EvaluationResult
	Err    error
}

// BatchEvaluate runs jobs concurrently against a shared TypeLookup,
// bounded by concurrency simultaneous evaluations, using
// golang.org/x/sync/errgroup plus a golang.org/x/sync/semaphore weighted
// semaphore for the bound (spec.md §5: "concurrent evaluations against the
// same World are independent and have no visible ordering between them").
// A job's RuntimeError is captured in its own JobResult rather than
// aborting the batch; only ctx cancellation (or a semaphore acquire
// failure) stops the remaining jobs early.
func BatchEvaluate(ctx context.Context, lookup TypeLookup, jobs []EvalJob, concurrency int) []JobResult {
	if concurrency <= 0 {
		concurrency = 1
	}

	results := make([]JobResult, len(jobs))
	sem := semaphore.NewWeighted(int64(concurrency))
	g, gctx := errgroup.WithContext(ctx)

	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				results[i] = JobResult{Name: job.Name, Err: err}
				return nil
			}
			defer sem.Release(1)

			res, err := Eval(gctx, lookup, job.Type, job.Input, job.EC.Bindings, job.EC)
			results[i] = JobResult{Name: job.Name, Result: res, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	return results
}
