package polytype

import "fmt"

// Expression is the small host-expression-language used by Refinement
// predicates and the Expr type node. It is a closed family dispatched by
// type switch in the evaluator, the same style the teacher's evaluator uses
// for infix/prefix operator dispatch (internal/evaluator/expressions_operators.go).
type Expression interface {
	String() string
}

// Self refers to the value currently being refined (the input to the
// enclosing Refinement or Expr).
type Self struct{}

func (Self) String() string { return "self" }

// Literal is a constant operand.
type Literal struct {
	Value interface{} // bool, int64, float64, or string
}

func (l Literal) String() string { return fmt.Sprintf("%v", l.Value) }

// FieldAccess projects a field out of an object-shaped operand.
type FieldAccess struct {
	Base  Expression
	Field string
}

func (f FieldAccess) String() string { return f.Base.String() + "." + f.Field }

// UnaryOp applies a prefix operator ("!", "-") to Operand.
type UnaryOp struct {
	Op      string
	Operand Expression
}

func (u UnaryOp) String() string { return u.Op + u.Operand.String() }

// BinaryOp applies an infix operator (comparison, arithmetic, logical) to
// Left and Right. Supported operators: "<", "<=", ">", ">=", "==", "!=",
// "&&", "||", "+", "-", "*", "/", and "%" (integer operands only).
type BinaryOp struct {
	Op          string
	Left, Right Expression
}

func (b BinaryOp) String() string {
	return "(" + b.Left.String() + " " + b.Op + " " + b.Right.String() + ")"
}
