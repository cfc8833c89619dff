package evaluator

import (
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/polytype"
)

// TypeLookup is the read-only view of a World the Evaluator needs: the two
// dictionaries from spec.md §3/§4.5. world.World implements this so the
// evaluator package never imports world (which imports evaluator to wire
// World.Evaluate); that import direction is why this interface exists
// instead of a direct *world.World parameter.
type TypeLookup interface {
	LookupType(qualified string) (polytype.Type, bool)
	LookupFunction(qualified string) (funcpkg.Callable, bool)
}
