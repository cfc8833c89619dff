package linker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/compunit"
	"github.com/vectorpath/policyengine/internal/evalctx"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/names"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/source"
	"github.com/vectorpath/policyengine/internal/value"
)

func loc() source.Location { return source.Location{File: "test.policy"} }

func TestLinkSimpleUnit(t *testing.T) {
	unit := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})

	w, errs := New([]*compunit.CompilationUnit{unit}, nil, nil).Link()
	require.Empty(t, errs)
	require.NotNil(t, w)

	res, err := w.Evaluate(context.Background(), "example::Age", value.Integer(30), evalctx.Background())
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

func TestLinkCrossUnitReference(t *testing.T) {
	base := compunit.NewCompilationUnit("base", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})
	consumer := compunit.NewCompilationUnit("consumer", []compunit.Use{
		{Alias: "Age", Target: names.ParseTypeName("base::Age"), Location: loc()},
	}, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Person", loc(), polytype.Object{Fields: []polytype.ObjectField{
			{Name: "age", Type: polytype.Ref{Name: names.NewUnqualified("Age")}},
		}}),
	})

	w, errs := New([]*compunit.CompilationUnit{base, consumer}, nil, nil).Link()
	require.Empty(t, errs)

	input := value.Object([]string{"age"}, map[string]value.RuntimeValue{"age": value.Integer(10)})
	res, err := w.Evaluate(context.Background(), "consumer::Person", input, evalctx.Background())
	require.NoError(t, err)
	assert.True(t, res.Matched)
}

func TestLinkUnresolvedNameInUnit(t *testing.T) {
	unit := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Bad", loc(), polytype.Ref{Name: names.NewUnqualified("DoesNotExist")}),
	})

	_, errs := New([]*compunit.CompilationUnit{unit}, nil, nil).Link()
	require.Len(t, errs, 1)
	assert.Equal(t, UnresolvedNameInUnit, errs[0].Kind)
}

func TestLinkDuplicateDefinition(t *testing.T) {
	a := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindInteger}),
	})
	b := compunit.NewCompilationUnit("example", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("Age", loc(), polytype.Primordial{Kind: polytype.KindDecimal}),
	})

	_, errs := New([]*compunit.CompilationUnit{a, b}, nil, nil).Link()
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == DuplicateDefinition {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkFunctionTypeCollision(t *testing.T) {
	unit := compunit.NewCompilationUnit("net", nil, []*compunit.TypeDefinition{
		compunit.NewTypeDefinition("reachable", loc(), polytype.Primordial{Kind: polytype.KindString}),
	})
	packages := map[string]funcpkg.FunctionPackage{
		"net": funcpkg.Static{
			"reachable": func(_ context.Context, _ value.RuntimeValue, _ *polytype.Bindings, _ evalctx.EvalContext) (value.Output, error) {
				return value.Identity(), nil
			},
		},
	}

	_, errs := New([]*compunit.CompilationUnit{unit}, packages, nil).Link()
	require.NotEmpty(t, errs)
	found := false
	for _, e := range errs {
		if e.Kind == FunctionTypeCollision {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLinkNativeFunctionPackage(t *testing.T) {
	packages := map[string]funcpkg.FunctionPackage{
		"net": funcpkg.Static{
			"reachable": func(_ context.Context, _ value.RuntimeValue, _ *polytype.Bindings, _ evalctx.EvalContext) (value.Output, error) {
				return value.Identity(), nil
			},
		},
	}

	w, errs := New(nil, packages, nil).Link()
	require.Empty(t, errs)

	res, err := w.Evaluate(context.Background(), "net::reachable", value.String("example.com"), evalctx.Background())
	require.NoError(t, err)
	assert.True(t, res.Matched)
}
