package polytype

// PrimordialKind enumerates the built-in atomic type constructors.
type PrimordialKind int

const (
	KindInteger PrimordialKind = iota
	KindDecimal
	KindBoolean
	KindString
	// KindFunction marks a Primordial that denotes a native function's
	// signature rather than a plain atom; FuncRef names the function in
	// the World's function dictionary the evaluator must invoke.
	KindFunction
)

func (k PrimordialKind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindBoolean:
		return "boolean"
	case KindString:
		return "string"
	case KindFunction:
		return "function"
	default:
		return "unknown"
	}
}

// PrimordialNames maps the four value primordials to the bare identifiers the
// Linker seeds every unit's visibility table with (spec.md §4.3 Phase 1).
var PrimordialNames = map[string]PrimordialKind{
	"int":     KindInteger,
	"decimal": KindDecimal,
	"boolean": KindBoolean,
	"string":  KindString,
}
