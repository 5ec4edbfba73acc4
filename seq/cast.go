package seq

import (
	"fmt"
	"strconv"
)

// NumberCast converts a value to a Number: Bool becomes 0/1, Null becomes
// 0, String is parsed (0 on failure), VMCall/Flowc/Func become 1. Streams,
// names, expressions and args are not castable.
func NumberCast(arg Generic) (Generic, error) {

	switch value := arg.(type) {

	case *Number:
		return arg, nil

	case *Bool:
		if value.Value {
			return NewNumber(false, 1), nil
		}
		return NewNumber(false, 0), nil

	case *Null:
		return NewNumber(false, 0), nil

	case *String:
		parsed, err := strconv.ParseFloat(value.Value, 64)
		if err != nil {
			parsed = 0
		}
		return NewNumber(false, parsed), nil

	case *VMCall, *Flowc, *Function:
		return NewNumber(false, 1), nil
	}

	return nil, &InternalError{Message: "invalid cast"}
}

// BoolCast converts a value to a Bool via numeric cast and a non-zero
// test.
func BoolCast(arg Generic) (Generic, error) {

	if _, ok := arg.(*Bool); ok {
		return arg, nil
	}

	num, err := NumberCast(arg)
	if err != nil {
		return nil, err
	}

	return NewBool(false, num.(*Number).Value != 0), nil
}

// StringCast converts a value to a String. Natural numbers render as
// integer text, other numbers as decimal text; functions and VM-calls
// render as "func", flow controllers as "flowc".
func StringCast(arg Generic) (Generic, error) {

	switch value := arg.(type) {

	case *String:
		return arg, nil

	case *Bool:
		if value.Value {
			return NewString(false, "true"), nil
		}
		return NewString(false, "false"), nil

	case *Null:
		return NewString(false, "null"), nil

	case *Number:
		if value.IsNatural() {
			return NewString(false, strconv.FormatInt(value.Int64(), 10)), nil
		}
		return NewString(false, fmt.Sprintf("%f", value.Value)), nil

	case *Flowc:
		return NewString(false, "flowc"), nil

	case *VMCall, *Function:
		return NewString(false, "func"), nil
	}

	return nil, &InternalError{Message: "invalid cast"}
}
