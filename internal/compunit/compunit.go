// Package compunit defines the Linker's input contract: CompilationUnit and
// TypeDefinition, the surface produced by the (out-of-scope) surface
// language parser. Nothing in this package parses source text — it only
// describes the shape the Linker consumes, per spec.md §3/§6.
package compunit

import (
	"github.com/vectorpath/policyengine/internal/names"
	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/source"
)

// Use is one imported binding: a local alias mapped to a fully-qualified
// TypeName.
type Use struct {
	Alias    string
	Target   names.TypeName
	Location source.Location
}

// TypeDefinition is one named type declaration within a CompilationUnit. ty
// holds the (possibly unqualified) type expression; QualifyTypes rewrites it
// in place once the Linker has computed this unit's visibility table.
type TypeDefinition struct {
	name     string
	location source.Location
	ty       polytype.Type
}

// NewTypeDefinition builds a TypeDefinition. name is the bare (unqualified)
// identifier as declared in source.
func NewTypeDefinition(name string, loc source.Location, ty polytype.Type) *TypeDefinition {
	return &TypeDefinition{name: name, location: loc, ty: ty}
}

// Name returns the bare (unqualified at parse time) identifier.
func (d *TypeDefinition) Name() string { return d.name }

// Location returns where this definition was declared.
func (d *TypeDefinition) Location() source.Location { return d.location }

// Type returns the current type expression (possibly still unqualified,
// before QualifyTypes has run).
func (d *TypeDefinition) Type() polytype.Type { return d.ty }

// ReferencedTypes returns every TypeName textually referenced by this
// definition's type expression, preserving any unqualified-ness at parse
// time.
func (d *TypeDefinition) ReferencedTypes() []names.TypeName {
	return polytype.ReferencedTypes(d.ty)
}

// QualifyTypes replaces every unqualified reference in this definition's
// type expression using visible, mutating this definition in place.
func (d *TypeDefinition) QualifyTypes(visible map[string]names.TypeName) {
	d.ty = polytype.Qualify(d.ty, visible)
}

// CompilationUnit is one parsed source file's post-parse representation:
// a declared package path, a set of imports, and a set of type
// definitions.
type CompilationUnit struct {
	source string
	uses   []Use
	types  []*TypeDefinition
}

// NewCompilationUnit builds a CompilationUnit. source is the unit's
// declared package path string (e.g. "foo::bar").
func NewCompilationUnit(source string, uses []Use, types []*TypeDefinition) *CompilationUnit {
	return &CompilationUnit{source: source, uses: uses, types: types}
}

// Source returns the unit's declared package path string.
func (u *CompilationUnit) Source() string { return u.source }

// Uses returns the unit's imported bindings.
func (u *CompilationUnit) Uses() []Use { return u.uses }

// Types returns the unit's type definitions, in declaration order.
func (u *CompilationUnit) Types() []*TypeDefinition { return u.types }
