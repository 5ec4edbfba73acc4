package vm

import (
	"math"

	"github.com/magistermaks/sequensa-sub000/seq"
)

func numOf(g seq.Generic) float64 {
	return g.(*seq.Number).Value
}

func intOf(g seq.Generic) int64 {
	return g.(*seq.Number).Int64()
}

func strOf(g seq.Generic) string {
	return g.(*seq.String).Value
}

type exprHandler func(a, b seq.Generic, anchor bool) (seq.Generic, error)

func nullResult(a, b seq.Generic, anchor bool) (seq.Generic, error) {
	return seq.NewNull(anchor), nil
}

// exprHandlers maps each operator to its numeric and string behaviours,
// indexed by operator code minus one. Integer operators truncate first;
// unary operators use only the right operand.
var exprHandlers = [...]struct{ num, str exprHandler }{
	{ // Less
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) < numOf(b)), nil
		},
		nullResult,
	},
	{ // Greater
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) > numOf(b)), nil
		},
		nullResult,
	},
	{ // Equal
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) == numOf(b)), nil
		},
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, strOf(a) == strOf(b)), nil
		},
	},
	{ // NotEqual
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) != numOf(b)), nil
		},
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, strOf(a) != strOf(b)), nil
		},
	},
	{ // NotGreater
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) <= numOf(b)), nil
		},
		nullResult,
	},
	{ // NotLess
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, numOf(a) >= numOf(b)), nil
		},
		nullResult,
	},
	{ // And
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, intOf(a) != 0 && intOf(b) != 0), nil
		},
		nullResult,
	},
	{ // Or
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, intOf(a) != 0 || intOf(b) != 0), nil
		},
		nullResult,
	},
	{ // Xor
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, (intOf(a) != 0) != (intOf(b) != 0)), nil
		},
		nullResult,
	},
	{ // Not
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewBool(anchor, intOf(b) == 0), nil
		},
		nullResult,
	},
	{ // Multiplication
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, numOf(a)*numOf(b)), nil
		},
		nullResult,
	},
	{ // Division
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, numOf(a)/numOf(b)), nil
		},
		nullResult,
	},
	{ // Addition
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, numOf(a)+numOf(b)), nil
		},
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewString(anchor, strOf(a)+strOf(b)), nil
		},
	},
	{ // Subtraction
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, numOf(a)-numOf(b)), nil
		},
		nullResult,
	},
	{ // Modulo
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			if intOf(b) == 0 {
				return nil, &RuntimeError{Message: "modulo by zero"}
			}
			return seq.NewNumber(anchor, float64(intOf(a)%intOf(b))), nil
		},
		nullResult,
	},
	{ // Power
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, math.Pow(numOf(a), numOf(b))), nil
		},
		nullResult,
	},
	{ // BinaryAnd
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, float64(intOf(a)&intOf(b))), nil
		},
		nullResult,
	},
	{ // BinaryOr
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, float64(intOf(a)|intOf(b))), nil
		},
		nullResult,
	},
	{ // BinaryXor
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, float64(intOf(a)^intOf(b))), nil
		},
		nullResult,
	},
	{ // BinaryNot
		func(a, b seq.Generic, anchor bool) (seq.Generic, error) {
			return seq.NewNumber(anchor, float64(^intOf(b))), nil
		},
		nullResult,
	},
}

// executeExpr resolves an unsolid value: an expression is evaluated, an
// arg reference is read from the stack with the anchor propagated. Any
// other value is already solid.
func (e *Executor) executeExpr(entity seq.Generic) (seq.Generic, error) {

	switch value := entity.(type) {

	case *seq.Expression:
		ltr, err := value.Left.Copy().Next()
		if err != nil {
			return nil, err
		}
		rtr, err := value.Right.Copy().Next()
		if err != nil {
			return nil, err
		}
		return e.executeExprPair(ltr.Generic(), rtr.Generic(), value.Op, value.Anchor())

	case *seq.Arg:
		s := len(e.stack) - 1 - int(value.Level)
		if s < 0 {
			return seq.NewNull(value.Anchor()), nil
		}
		arg := e.stack[s].Arg()
		arg.SetAnchor(value.Anchor())
		return arg, nil
	}

	return entity, nil
}

// executeExprPair evaluates one operator application. Binary operators
// require matching operand variants; Bool operands are coerced through
// Number 0/1 and numeric results fold back to Bool. A mismatch yields
// Null, or a runtime error in strict mode.
func (e *Executor) executeExprPair(left, right seq.Generic, op seq.ExprOperator, anchor bool) (seq.Generic, error) {

	var err error
	if t := left.DataType(); t == seq.TypeExpr || t == seq.TypeArg {
		if left, err = e.executeExpr(left); err != nil {
			return nil, err
		}
	}
	if t := right.DataType(); t == seq.TypeExpr || t == seq.TypeArg {
		if right, err = e.executeExpr(right); err != nil {
			return nil, err
		}
	}

	// not and binary not use only the right operand
	if op != seq.OperatorNot && op != seq.OperatorBinaryNot {
		if left.DataType() != right.DataType() || left.DataType() == seq.TypeNull {
			if e.strict {
				return nil, &RuntimeError{
					Message: "invalid operands: " + left.DataType().String() + " and " + right.DataType().String(),
				}
			}
			return seq.NewNull(anchor), nil
		}
	}

	handler := exprHandlers[byte(op)-1]

	switch right.DataType() {

	case seq.TypeNumber:
		return handler.num(left, right, anchor)

	case seq.TypeBool:
		result, err := handler.num(boolToNumber(left), boolToNumber(right), anchor)
		if err != nil {
			return nil, err
		}
		if b, ok := result.(*seq.Bool); ok {
			return b, nil
		}
		return seq.NewBool(anchor, result.(*seq.Number).Int64() != 0), nil

	case seq.TypeString:
		return handler.str(left, right, anchor)
	}

	return nil, &seq.InternalError{Message: "invalid operands"}
}

func boolToNumber(g seq.Generic) seq.Generic {
	if b, ok := g.(*seq.Bool); ok && b.Value {
		return seq.NewNumber(false, 1)
	}
	return seq.NewNumber(false, 0)
}
