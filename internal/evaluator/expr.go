package evaluator

import (
	"fmt"
	"math/big"

	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

// evalExpr evaluates a polytype.Expr node: run the embedded Expression
// against self, then treat a boolean result as a match/no-match and any
// other result as always-matched, carried through as a Transform (the shape
// Refinement predicates and computed Bound arguments both need).
func (st *evalState) evalExpr(n polytype.Expr, input value.RuntimeValue) (value.Output, bool, error) {
	result, err := evalExpression(n.Expression, input)
	if err != nil {
		st.recordTrace("", "Expr", false)
		return value.Output{}, false, errExpression(err.Error())
	}

	if result.Kind() == value.KindBool {
		matched := result.AsBool()
		st.recordTrace("", "Expr", matched)
		if matched {
			return value.Identity(), true, nil
		}
		return value.None(), false, nil
	}

	st.recordTrace("", "Expr", true)
	return value.Transform(result), true, nil
}

type exprError struct{ msg string }

func (e exprError) Error() string { return e.msg }

func exprErrorf(format string, args ...interface{}) error {
	return exprError{msg: fmt.Sprintf(format, args...)}
}

// evalExpression is the small expression interpreter behind Refinement
// predicates and Expr nodes (spec.md's host-expression sublanguage,
// evaluated the same way the teacher dispatches infix/prefix operators in
// internal/evaluator/expressions_operators.go, generalized to this engine's
// closed RuntimeValue kinds instead of funxy's full Object set).
func evalExpression(e polytype.Expression, self value.RuntimeValue) (value.RuntimeValue, error) {
	switch n := e.(type) {
	case polytype.Self:
		return self, nil

	case polytype.Literal:
		return value.FromJSON(n.Value), nil

	case polytype.FieldAccess:
		base, err := evalExpression(n.Base, self)
		if err != nil {
			return value.RuntimeValue{}, err
		}
		if base.Kind() != value.KindObject {
			return value.RuntimeValue{}, exprErrorf("field access on non-object (%s)", base.Kind())
		}
		field, ok := base.Field(n.Field)
		if !ok {
			return value.RuntimeValue{}, exprErrorf("no such field: %s", n.Field)
		}
		return field, nil

	case polytype.UnaryOp:
		operand, err := evalExpression(n.Operand, self)
		if err != nil {
			return value.RuntimeValue{}, err
		}
		return evalUnary(n.Op, operand)

	case polytype.BinaryOp:
		left, err := evalExpression(n.Left, self)
		if err != nil {
			return value.RuntimeValue{}, err
		}
		// Short-circuit logical operators before evaluating the right side.
		if n.Op == "&&" || n.Op == "||" {
			if left.Kind() != value.KindBool {
				return value.RuntimeValue{}, exprErrorf("operator %s requires boolean operands", n.Op)
			}
			if n.Op == "&&" && !left.AsBool() {
				return value.Bool(false), nil
			}
			if n.Op == "||" && left.AsBool() {
				return value.Bool(true), nil
			}
			right, err := evalExpression(n.Right, self)
			if err != nil {
				return value.RuntimeValue{}, err
			}
			if right.Kind() != value.KindBool {
				return value.RuntimeValue{}, exprErrorf("operator %s requires boolean operands", n.Op)
			}
			return right, nil
		}

		right, err := evalExpression(n.Right, self)
		if err != nil {
			return value.RuntimeValue{}, err
		}
		return evalBinary(n.Op, left, right)

	default:
		return value.RuntimeValue{}, exprErrorf("unknown expression node %T", e)
	}
}

func evalUnary(op string, operand value.RuntimeValue) (value.RuntimeValue, error) {
	switch op {
	case "!":
		if operand.Kind() != value.KindBool {
			return value.RuntimeValue{}, exprErrorf("operator ! requires a boolean operand")
		}
		return value.Bool(!operand.AsBool()), nil
	case "-":
		switch operand.Kind() {
		case value.KindInteger:
			return value.Integer(-operand.AsInteger()), nil
		case value.KindDecimal:
			return value.Decimal(new(big.Rat).Neg(operand.AsDecimal())), nil
		default:
			return value.RuntimeValue{}, exprErrorf("operator - requires a numeric operand")
		}
	default:
		return value.RuntimeValue{}, exprErrorf("unknown unary operator: %s", op)
	}
}

func evalBinary(op string, left, right value.RuntimeValue) (value.RuntimeValue, error) {
	if isComparison(op) {
		return evalComparison(op, left, right)
	}
	return evalArithmetic(op, left, right)
}

func isComparison(op string) bool {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return true
	default:
		return false
	}
}

func evalComparison(op string, left, right value.RuntimeValue) (value.RuntimeValue, error) {
	if op == "==" {
		return value.Bool(value.Equal(left, right)), nil
	}
	if op == "!=" {
		return value.Bool(!value.Equal(left, right)), nil
	}

	lr, rr, ok := asComparableRats(left, right)
	if !ok {
		return value.RuntimeValue{}, exprErrorf("operator %s requires numeric operands", op)
	}
	cmp := lr.Cmp(rr)
	switch op {
	case "<":
		return value.Bool(cmp < 0), nil
	case "<=":
		return value.Bool(cmp <= 0), nil
	case ">":
		return value.Bool(cmp > 0), nil
	case ">=":
		return value.Bool(cmp >= 0), nil
	default:
		return value.RuntimeValue{}, exprErrorf("unknown comparison operator: %s", op)
	}
}

func evalArithmetic(op string, left, right value.RuntimeValue) (value.RuntimeValue, error) {
	if left.Kind() == value.KindInteger && right.Kind() == value.KindInteger {
		l, r := left.AsInteger(), right.AsInteger()
		switch op {
		case "+":
			return value.Integer(l + r), nil
		case "-":
			return value.Integer(l - r), nil
		case "*":
			return value.Integer(l * r), nil
		case "/":
			if r == 0 {
				return value.RuntimeValue{}, exprErrorf("division by zero")
			}
			return value.Integer(l / r), nil
		case "%":
			if r == 0 {
				return value.RuntimeValue{}, exprErrorf("modulo by zero")
			}
			return value.Integer(l % r), nil
		}
	}

	lr, rr, ok := asComparableRats(left, right)
	if !ok {
		return value.RuntimeValue{}, exprErrorf("operator %s requires numeric operands", op)
	}
	switch op {
	case "+":
		return value.Decimal(new(big.Rat).Add(lr, rr)), nil
	case "-":
		return value.Decimal(new(big.Rat).Sub(lr, rr)), nil
	case "*":
		return value.Decimal(new(big.Rat).Mul(lr, rr)), nil
	case "/":
		if rr.Sign() == 0 {
			return value.RuntimeValue{}, exprErrorf("division by zero")
		}
		return value.Decimal(new(big.Rat).Quo(lr, rr)), nil
	default:
		return value.RuntimeValue{}, exprErrorf("unknown arithmetic operator: %s", op)
	}
}

func asComparableRats(a, b value.RuntimeValue) (*big.Rat, *big.Rat, bool) {
	ar, ok := asRat(a)
	if !ok {
		return nil, nil, false
	}
	br, ok := asRat(b)
	if !ok {
		return nil, nil, false
	}
	return ar, br, true
}

func asRat(v value.RuntimeValue) (*big.Rat, bool) {
	switch v.Kind() {
	case value.KindInteger:
		return new(big.Rat).SetInt64(v.AsInteger()), true
	case value.KindDecimal:
		return v.AsDecimal(), true
	default:
		return nil, false
	}
}
