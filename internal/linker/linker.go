// Package linker implements the four-phase build described in spec.md §4.3:
// intra-unit qualification, a world-name census, inter-unit resolution, and
// finally World construction. It is grounded directly on the original
// prototype's Linker (original_source/seedwing-policy-engine/src/runtime/
// linker/mod.rs), with every `todo!()` panic promoted to a proper,
// batched BuildError per spec.md §9's explicit redesign note.
package linker

import (
	"log/slog"

	"github.com/vectorpath/policyengine/internal/compunit"
	"github.com/vectorpath/policyengine/internal/funcpkg"
	"github.com/vectorpath/policyengine/internal/names"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/world"
)

// Linker holds the inputs to one build: the parsed compilation units and
// the host-registered native function packages, keyed by their package
// path (spec.md §4.4).
type Linker struct {
	units    []*compunit.CompilationUnit
	packages map[string]funcpkg.FunctionPackage
	log      *slog.Logger
}

// New builds a Linker. packages is keyed by the package's canonical "::"
// path string (names.PackagePath.String()).
func New(units []*compunit.CompilationUnit, packages map[string]funcpkg.FunctionPackage, log *slog.Logger) *Linker {
	if log == nil {
		log = slog.Default()
	}
	return &Linker{units: units, packages: packages, log: log}
}

// Link runs the four phases and returns a built World, or every BuildError
// it accumulated along the way. Link never returns a partial World:
// success and failure are mutually exclusive (spec.md §7 "fail closed").
func (l *Linker) Link() (*world.World, []BuildError) {
	var errs []BuildError

	l.qualifyUnits(&errs)
	census := l.buildCensus(&errs)
	l.resolveInterUnit(census, &errs)

	if len(errs) > 0 {
		return nil, errs
	}

	types, functions := l.materialize(&errs)
	if len(errs) > 0 {
		return nil, errs
	}

	l.log.Info("link succeeded", slog.Int("types", len(types)), slog.Int("functions", len(functions)))
	return world.New(types, functions, l.log), nil
}

// qualifyUnits is Phase 1: build each unit's visibility table from its
// uses, its own local type names, and the value primordials, then rewrite
// every definition's unqualified references in place.
func (l *Linker) qualifyUnits(errs *[]BuildError) {
	for _, unit := range l.units {
		unitPath := names.FromSource(unit.Source())
		visible := map[string]names.TypeName{}

		for name := range polytype.PrimordialNames {
			visible[name] = names.NewUnqualified(name)
		}

		seenAliases := map[string]names.TypeName{}
		for _, use := range unit.Uses() {
			if existing, ok := seenAliases[use.Alias]; ok && !existing.Equal(use.Target) {
				*errs = append(*errs, BuildError{Kind: DuplicateImport, Unit: unit.Source(), Name: use.Alias})
				continue
			}
			seenAliases[use.Alias] = use.Target
			visible[use.Alias] = use.Target
		}

		for _, defn := range unit.Types() {
			visible[defn.Name()] = unitPath.TypeName(defn.Name())
		}

		for _, defn := range unit.Types() {
			for _, ref := range defn.ReferencedTypes() {
				if ref.IsQualified() {
					continue
				}
				if _, ok := visible[ref.Name()]; !ok {
					*errs = append(*errs, BuildError{Kind: UnresolvedNameInUnit, Unit: unit.Source(), Name: ref.Name()})
				}
			}
		}

		for _, defn := range unit.Types() {
			defn.QualifyTypes(visible)
		}
	}
}

// buildCensus is Phase 2: the set of every fully-qualified name the linked
// World will expose, across primordials, native function packages, and
// every unit's own type definitions.
func (l *Linker) buildCensus(errs *[]BuildError) map[string]bool {
	census := map[string]bool{}
	for name := range polytype.PrimordialNames {
		census[name] = true
	}

	functionNames := map[string]bool{}
	for pkgPath, pkg := range l.packages {
		path := names.FromSource(pkgPath)
		for _, fn := range pkg.FunctionNames() {
			qualified := path.TypeName(fn).AsTypeStr()
			census[qualified] = true
			functionNames[qualified] = true
		}
	}

	for _, unit := range l.units {
		unitPath := names.FromSource(unit.Source())
		for _, defn := range unit.Types() {
			qualified := unitPath.TypeName(defn.Name()).AsTypeStr()
			if functionNames[qualified] {
				*errs = append(*errs, BuildError{Kind: FunctionTypeCollision, Name: qualified})
				continue
			}
			if census[qualified] {
				*errs = append(*errs, BuildError{Kind: DuplicateDefinition, Name: qualified})
				continue
			}
			census[qualified] = true
		}
	}

	return census
}

// resolveInterUnit is Phase 3: every reference in every unit, now qualified
// by Phase 1, must resolve against the Phase 2 census. References still
// unqualified were already checked (and, if unresolved, reported) by Phase 1.
func (l *Linker) resolveInterUnit(census map[string]bool, errs *[]BuildError) {
	for _, unit := range l.units {
		for _, defn := range unit.Types() {
			for _, ref := range defn.ReferencedTypes() {
				if !ref.IsQualified() {
					continue
				}
				if !census[ref.AsTypeStr()] {
					*errs = append(*errs, BuildError{Kind: UnresolvedNameInWorld, Unit: unit.Source(), Name: ref.AsTypeStr()})
				}
			}
		}
	}
}

// materialize is Phase 4: build the World's two dictionaries, flagging any
// name claimed by both a type definition and a native function (spec.md §3
// "no TypeName appears in both dictionaries").
func (l *Linker) materialize(errs *[]BuildError) (map[string]polytype.Type, map[string]funcpkg.Callable) {
	types := map[string]polytype.Type{}
	functions := map[string]funcpkg.Callable{}

	for _, unit := range l.units {
		unitPath := names.FromSource(unit.Source())
		for _, defn := range unit.Types() {
			qualified := unitPath.TypeName(defn.Name()).AsTypeStr()
			types[qualified] = defn.Type()
		}
	}

	for pkgPath, pkg := range l.packages {
		path := names.FromSource(pkgPath)
		for fn, callable := range pkg.Functions() {
			qualified := path.TypeName(fn).AsTypeStr()
			if _, ok := types[qualified]; ok {
				*errs = append(*errs, BuildError{Kind: FunctionTypeCollision, Name: qualified})
				continue
			}
			functions[qualified] = callable
		}
	}

	return types, functions
}
