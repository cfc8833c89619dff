package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorpath/policyengine/internal/polytype"
	"github.com/vectorpath/policyengine/internal/value"
)

func TestEvalExpressionArithmeticAndComparison(t *testing.T) {
	expr := polytype.BinaryOp{
		Op:   ">",
		Left: polytype.BinaryOp{Op: "+", Left: polytype.Self{}, Right: polytype.Literal{Value: int64(1)}},
		Right: polytype.Literal{Value: int64(10)},
	}

	result, err := evalExpression(expr, value.Integer(10))
	require.NoError(t, err)
	assert.True(t, result.AsBool())

	result, err = evalExpression(expr, value.Integer(5))
	require.NoError(t, err)
	assert.False(t, result.AsBool())
}

func TestEvalExpressionFieldAccess(t *testing.T) {
	expr := polytype.FieldAccess{Base: polytype.Self{}, Field: "age"}
	input := value.Object([]string{"age"}, map[string]value.RuntimeValue{"age": value.Integer(21)})

	result, err := evalExpression(expr, input)
	require.NoError(t, err)
	assert.Equal(t, int64(21), result.AsInteger())
}

func TestEvalExpressionFieldAccessMissing(t *testing.T) {
	expr := polytype.FieldAccess{Base: polytype.Self{}, Field: "missing"}
	input := value.Object([]string{"age"}, map[string]value.RuntimeValue{"age": value.Integer(21)})

	_, err := evalExpression(expr, input)
	require.Error(t, err)
}

func TestEvalExpressionLogicalShortCircuit(t *testing.T) {
	// Right side would divide by zero; && must not evaluate it once left is false.
	expr := polytype.BinaryOp{
		Op:   "&&",
		Left: polytype.Literal{Value: false},
		Right: polytype.BinaryOp{Op: "==", Left: polytype.BinaryOp{Op: "/", Left: polytype.Literal{Value: int64(1)}, Right: polytype.Literal{Value: int64(0)}}, Right: polytype.Literal{Value: int64(1)}},
	}

	result, err := evalExpression(expr, value.Null())
	require.NoError(t, err)
	assert.False(t, result.AsBool())
}

func TestEvalExpressionUnaryNot(t *testing.T) {
	expr := polytype.UnaryOp{Op: "!", Operand: polytype.Literal{Value: true}}
	result, err := evalExpression(expr, value.Null())
	require.NoError(t, err)
	assert.False(t, result.AsBool())
}

func TestEvalExpressionDivisionByZero(t *testing.T) {
	expr := polytype.BinaryOp{Op: "/", Left: polytype.Literal{Value: int64(1)}, Right: polytype.Literal{Value: int64(0)}}
	_, err := evalExpression(expr, value.Null())
	require.Error(t, err)
}
