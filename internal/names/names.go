// Package names implements package paths and type names: the qualification
// rules that let every type reference in a linked World be traced back to
// exactly one definition.
package names

import "strings"

// PackagePath is an ordered sequence of identifier segments. An empty
// PackagePath is legal and denotes the root package.
type PackagePath struct {
	segments []string
}

// RootPackage is the empty package path.
var RootPackage = PackagePath{}

// FromSource normalizes a compilation unit's declared source path into a
// PackagePath. Segments are split on "::" (the surface language's package
// separator); empty segments are dropped so "", "::", and "a::" all behave
// predictably.
func FromSource(source string) PackagePath {
	if source == "" {
		return RootPackage
	}
	raw := strings.Split(source, "::")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return PackagePath{segments: segs}
}

// PackagePathOf builds a PackagePath directly from already-split segments.
func PackagePathOf(segments ...string) PackagePath {
	segs := make([]string, len(segments))
	copy(segs, segments)
	return PackagePath{segments: segs}
}

// Segments returns the ordered identifier segments. The returned slice must
// not be mutated by the caller.
func (p PackagePath) Segments() []string {
	return p.segments
}

// Empty reports whether this is the root package.
func (p PackagePath) Empty() bool {
	return len(p.segments) == 0
}

// TypeName produces a fully-qualified TypeName by appending leaf to this
// package path.
func (p PackagePath) TypeName(leaf string) TypeName {
	segs := make([]string, len(p.segments)+1)
	copy(segs, p.segments)
	segs[len(p.segments)] = leaf
	return TypeName{segments: segs}
}

// String renders the package path using "::" as the separator. The root
// package renders as the empty string.
func (p PackagePath) String() string {
	return strings.Join(p.segments, "::")
}

// Equal reports whether two package paths have the same segments in the
// same order. No case folding is performed.
func (p PackagePath) Equal(other PackagePath) bool {
	if len(p.segments) != len(other.segments) {
		return false
	}
	for i := range p.segments {
		if p.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}

// TypeName is either a bare identifier (unqualified) or a fully-qualified
// name (a non-empty package path plus a leaf). It is immutable.
type TypeName struct {
	segments []string
}

// NewUnqualified builds an unqualified TypeName from a bare identifier.
func NewUnqualified(leaf string) TypeName {
	return TypeName{segments: []string{leaf}}
}

// IsQualified reports whether this TypeName carries a non-empty package
// path (i.e. more than one segment).
func (t TypeName) IsQualified() bool {
	return len(t.segments) > 1
}

// Name returns the leaf (unqualified) identifier.
func (t TypeName) Name() string {
	if len(t.segments) == 0 {
		return ""
	}
	return t.segments[len(t.segments)-1]
}

// Package returns the package path for a qualified name, or RootPackage for
// an unqualified one.
func (t TypeName) Package() PackagePath {
	if len(t.segments) <= 1 {
		return RootPackage
	}
	return PackagePath{segments: t.segments[:len(t.segments)-1]}
}

// AsTypeStr renders the canonical "a::b::c" form used as the World lookup
// key. This is the only representation the Linker and World ever compare
// or hash on.
func (t TypeName) AsTypeStr() string {
	return strings.Join(t.segments, "::")
}

// String implements fmt.Stringer via AsTypeStr.
func (t TypeName) String() string {
	return t.AsTypeStr()
}

// ParseTypeName splits a "::"-joined string (as accepted by the runtime
// evaluation entry point) back into a TypeName.
func ParseTypeName(s string) TypeName {
	raw := strings.Split(s, "::")
	segs := make([]string, 0, len(raw))
	for _, p := range raw {
		if p != "" {
			segs = append(segs, p)
		}
	}
	if len(segs) == 0 {
		return TypeName{}
	}
	return TypeName{segments: segs}
}

// Equal reports whether two TypeNames denote the same canonical key.
func (t TypeName) Equal(other TypeName) bool {
	if len(t.segments) != len(other.segments) {
		return false
	}
	for i := range t.segments {
		if t.segments[i] != other.segments[i] {
			return false
		}
	}
	return true
}
