package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/compunit"
	"github.com/vectorpath/policyengine/internal/config"
	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/evaluator"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/source"
)

func loc() source.Location { return source.Location{File: "test.policy"} }

func TestEngineLinkAndEvaluate(t *testing.T) {
	engine, err := NewDefault()
	require.NoError(t, err)
	defer engine.Close()

	unit := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})

	errs := engine.Link([]*compunit.CompilationUnit{unit})
	require.Empty(t, errs)

	res, err := engine.Evaluate(context.Background(), "example::Age", 30, evalctx.Background())
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

func TestEngineEvaluateBeforeLinkErrors(t *testing.T) {
	engine, err := NewDefault()
	require.NoError(t, err)
	defer engine.Close()

	_, err = engine.Evaluate(context.Background(), "example::Age", 1, evalctx.Background())
	require.Error(t, err)
}

func TestEngineBatchEvaluate(t *testing.T) {
	engine, err := NewDefault()
	require.NoError(t, err)
	defer engine.Close()

	unit := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})
	require.Empty(t, engine.Link([]*compunit.CompilationUnit{unit}))

	rv1, err := toRuntimeValue(30)
	require.NoError(t, err)
	rv2, err := toRuntimeValue("not an integer")
	require.NoError(t, err)

	ageType := polytype.Primordial{Kind: polytype.KindInteger}
	jobs := []evaluator.EvalJob{
		{Name: "ok", Type: ageType, Input: rv1, EC: evalctx.Background()},
		{Name: "bad", Type: ageType, Input: rv2, EC: evalctx.Background()},
	}

	results, err := engine.BatchEvaluate(context.Background(), jobs, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	byName := map[string]evaluator.JobResult{}
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.True(t, byName["ok"].Result.Matched)
	assert.False(t, byName["bad"].Result.Matched)
}

func TestEngineWithWorldCache(t *testing.T) {
	path := t.TempDir() + "/world_cache.db"
	cfg := config.Default()
	cfg.WorldCachePath = path

	engine, err := New(cfg)
	require.NoError(t, err)
	defer engine.Close()

	unit := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})
	require.Empty(t, engine.Link([]*compunit.CompilationUnit{unit}))

	digest := engine.Digest([]string{"example"})
	require.NoError(t, engine.RecordLink(context.Background(), digest))
}
