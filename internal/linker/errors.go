package linker

import "fmt"

// BuildErrorKind tags a BuildError's variant (spec.md §7: the Linker fails
// closed and reports every problem it finds, not just the first).
type BuildErrorKind int

const (
	// UnresolvedNameInUnit: an unqualified reference inside a single unit
	// resolves to nothing in that unit's own uses/locals/primordials
	// (Phase 1). The original prototype's linker panics with
	// `todo!("unknown type referenced")` here; spec.md §9 calls for this to
	// become a proper, batched error instead.
	UnresolvedNameInUnit BuildErrorKind = iota
	// UnresolvedNameInWorld: a reference qualified during Phase 1 does not
	// name anything in the full inter-unit census (Phase 3). The
	// prototype's `todo!("failed to inter-unit link")` equivalent.
	UnresolvedNameInWorld
	// DuplicateDefinition: two type definitions (in the same or different
	// units) claim the same fully-qualified name.
	DuplicateDefinition
	// DuplicateImport: two `use` clauses in the same unit bind the same
	// local alias to different targets.
	DuplicateImport
	// FunctionTypeCollision: a native function package and a type
	// definition both claim the same fully-qualified name, violating
	// spec.md §3's "no TypeName appears in both dictionaries" invariant.
	FunctionTypeCollision
)

func (k BuildErrorKind) String() string {
	switch k {
	case UnresolvedNameInUnit:
		return "UnresolvedNameInUnit"
	case UnresolvedNameInWorld:
		return "UnresolvedNameInWorld"
	case DuplicateDefinition:
		return "DuplicateDefinition"
	case DuplicateImport:
		return "DuplicateImport"
	case FunctionTypeCollision:
		return "FunctionTypeCollision"
	default:
		return "Unknown"
	}
}

// BuildError is one link-time problem. Unit is the declaring compilation
// unit's source path (empty when not unit-specific, e.g. a cross-package
// function/type collision).
type BuildError struct {
	Kind BuildErrorKind
	Unit string
	Name string
}

func (e BuildError) Error() string {
	switch e.Kind {
	case UnresolvedNameInUnit:
		return fmt.Sprintf("%s: unresolved name %q", e.Unit, e.Name)
	case UnresolvedNameInWorld:
		return fmt.Sprintf("%s: %q does not resolve to any world definition", e.Unit, e.Name)
	case DuplicateDefinition:
		return fmt.Sprintf("duplicate definition: %s", e.Name)
	case DuplicateImport:
		return fmt.Sprintf("%s: duplicate import alias %q", e.Unit, e.Name)
	case FunctionTypeCollision:
		return fmt.Sprintf("%s is defined as both a type and a native function", e.Name)
	default:
		return "unknown build error"
	}
}
