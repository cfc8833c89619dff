package evaluator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

func TestBatchEvaluateIndependentJobs(t *testing.T) {
	w := newFakeWorld()
	jobs := []EvalJob{
		{Name: "ok-int", Type: polytype.Primordial{Kind: polytype.KindInteger}, Input: value.Integer(1), EC: evalctx.Background()},
		{Name: "bad-int", Type: polytype.Primordial{Kind: polytype.KindInteger}, Input: value.String("x"), EC: evalctx.Background()},
		{Name: "unbound", Type: polytype.Argument{Name: "missing"}, Input: value.Null(), EC: evalctx.Background()},
	}

	results := BatchEvaluate(context.Background(), w, jobs, 2)
	require.Len(t, results, 3)

	byName := map[string]JobResult{}
	for _, r := range results {
		byName[r.Name] = r
	}

	require.NoError(t, byName["ok-int"].Err)
	assert.True(t, byName["ok-int"].Result.Matched)

	require.NoError(t, byName["bad-int"].Err)
	assert.False(t, byName["bad-int"].Result.Matched)

	require.Error(t, byName["unbound"].Err)
}

func TestBatchEvaluateZeroConcurrencyDefaultsToOne(t *testing.T) {
	w := newFakeWorld()
	jobs := []EvalJob{
		{Name: "a", Type: polytype.Anything{}, Input: value.Null(), EC: evalctx.Background()},
	}
	results := BatchEvaluate(context.Background(), w, jobs, 0)
	require.Len(t, results, 1)
	assert.True(t, results[0].Result.Matched)
}
