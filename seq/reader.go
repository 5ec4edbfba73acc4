package seq

import "fmt"

// TokenReader decodes one tagged value from a buffer position. Nested
// bodies are carved out as new sub-readers; the outer position is advanced
// past the entire nested body.
type TokenReader struct {
	anchor   bool
	dataType DataType
	generic  Generic
}

func (t *TokenReader) DataType() DataType {
	return t.dataType
}

func (t *TokenReader) IsAnchored() bool {
	return t.anchor
}

func (t *TokenReader) Generic() Generic {
	return t.generic
}

var opcodeTypes = [maxOpcode + 1]DataType{
	OpcodeBLT: TypeBool,
	OpcodeBLF: TypeBool,
	OpcodeNIL: TypeNull,
	OpcodeNUM: TypeNumber,
	OpcodeINT: TypeNumber,
	OpcodeSTR: TypeString,
	OpcodeTYP: TypeType,
	OpcodeVMC: TypeVMCall,
	OpcodeARG: TypeArg,
	OpcodeFUN: TypeFunc,
	OpcodeEXP: TypeExpr,
	OpcodeVAR: TypeName,
	OpcodeDEF: TypeName,
	OpcodeFLC: TypeFlowc,
	OpcodeSSL: TypeStream,
}

func newTokenReader(r *BufferReader) (*TokenReader, error) {

	header := r.NextByte()
	opcode := header & 0b01111111
	anchor := header&0b10000000 != 0

	if opcode < minOpcode || opcode > maxOpcode {
		return nil, &InternalError{Message: fmt.Sprintf("unknown head opcode, base: %d", opcode)}
	}

	tr := &TokenReader{anchor: anchor, dataType: opcodeTypes[opcode]}

	var err error
	switch Opcode(opcode) {
	case OpcodeBLT:
		tr.generic = NewBool(anchor, true)
	case OpcodeBLF:
		tr.generic = NewBool(anchor, false)
	case OpcodeNIL:
		tr.generic = NewNull(anchor)
	case OpcodeNUM:
		tr.generic, err = loadNumber(r, anchor)
	case OpcodeINT:
		tr.generic = NewFractionNumber(anchor, int64(int8(r.NextByte())), 1)
	case OpcodeSTR:
		tr.generic = loadString(r, anchor)
	case OpcodeTYP:
		tr.generic, err = loadType(r, anchor)
	case OpcodeVMC:
		tr.generic, err = loadCall(r, anchor)
	case OpcodeARG:
		tr.generic = NewArg(anchor, r.NextByte())
	case OpcodeFUN:
		tr.generic, err = loadFunc(r, anchor)
	case OpcodeEXP:
		tr.generic, err = loadExpr(r, anchor)
	case OpcodeVAR:
		tr.generic, err = loadName(r, anchor, false)
	case OpcodeDEF:
		tr.generic, err = loadName(r, anchor, true)
	case OpcodeFLC:
		tr.generic, err = loadFlowc(r, anchor)
	case OpcodeSSL:
		tr.generic, err = loadStream(r, anchor)
	}

	if err != nil {
		return nil, err
	}
	return tr, nil
}

// loadNumber reads the NUM form: a width-pair head byte followed by the
// numerator and denominator, each in its own declared width. The sign
// lives in the top bit of the numerator's last byte.
func loadNumber(r *BufferReader, anchor bool) (*Number, error) {

	head := r.NextByte()
	a := head >> 4
	b := head & 0b00001111

	if a&(a-1) != 0 {
		return nil, &InternalError{Message: fmt.Sprintf("invalid numerator size: %d", a)}
	}
	if b&(b-1) != 0 {
		return nil, &InternalError{Message: fmt.Sprintf("invalid denominator size: %d", b)}
	}

	var n, d uint64
	for i := byte(0); i < a; i++ {
		n |= uint64(r.NextByte()) << (i * 8)
	}
	if b == 0 {
		d = 1
	} else {
		for i := byte(0); i < b; i++ {
			d |= uint64(r.NextByte()) << (i * 8)
		}
	}

	if d == 0 {
		return nil, &InternalError{Message: "invalid denominator, value: 0"}
	}

	numerator := int64(n)
	if a != 0 {
		sign := uint64(1) << (uint(a)*8 - 1)
		if n&sign != 0 {
			numerator = -int64(n &^ sign)
		}
	}

	return NewFractionNumber(anchor, numerator, int64(d)), nil
}

func loadString(r *BufferReader, anchor bool) *String {
	var str []byte
	for {
		b := r.NextByte()
		if b == 0 {
			return NewString(anchor, string(str))
		}
		str = append(str, b)
	}
}

func loadType(r *BufferReader, anchor bool) (*Type, error) {
	b := r.NextByte()
	if b < minDataType || b > maxDataType {
		return nil, &InternalError{Message: "invalid data type"}
	}
	return NewType(anchor, DataType(b)), nil
}

func loadCall(r *BufferReader, anchor bool) (*VMCall, error) {
	b := r.NextByte()
	if b < minCallType || b > maxCallType {
		return nil, &InternalError{Message: "invalid call type"}
	}
	return NewVMCall(anchor, CallType(b)), nil
}

// loadName reads a NUL-terminated identifier of at most 128 bytes,
// restricted to ASCII alphanumerics, underscore and colon.
func loadName(r *BufferReader, anchor bool, define bool) (*Name, error) {
	var str []byte
	for i := 0; ; i++ {
		b := r.NextByte()
		if !isNameByte(b) && b != 0 {
			return nil, &InternalError{Message: fmt.Sprintf("invalid char in name, code: %d", b)}
		}
		if i > 128 {
			return nil, &InternalError{Message: "too long name"}
		}
		if b == 0 {
			break
		}
		str = append(str, b)
	}
	return NewName(anchor, define, string(str)), nil
}

func isNameByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_' || b == ':'
}

func loadFunc(r *BufferReader, anchor bool) (*Function, error) {
	length, err := r.NextInt()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, &InternalError{Message: "invalid function size"}
	}
	body, err := r.NextBlock(length)
	if err != nil {
		return nil, err
	}
	return NewFunction(anchor, body), nil
}

func loadExpr(r *BufferReader, anchor bool) (*Expression, error) {

	opByte := r.NextByte()
	if opByte < minOperator || opByte > maxOperator {
		return nil, &InternalError{Message: "invalid operator"}
	}
	op := ExprOperator(opByte)

	head := r.NextByte()
	a := head >> 4
	b := head & 0b00001111

	if a&(a-1) != 0 {
		return nil, &InternalError{Message: "invalid expression (left) size"}
	}
	if b&(b-1) != 0 {
		return nil, &InternalError{Message: "invalid expression (right) size"}
	}

	var l, rv int64
	for i := byte(0); i < a; i++ {
		l |= int64(r.NextByte()) << (i * 8)
	}
	for i := byte(0); i < b; i++ {
		rv |= int64(r.NextByte()) << (i * 8)
	}

	if l == 0 || rv == 0 {
		return nil, &InternalError{Message: "invalid expression size"}
	}

	left, err := r.NextBlock(l)
	if err != nil {
		return nil, err
	}
	right, err := r.NextBlock(rv)
	if err != nil {
		return nil, err
	}

	return NewExpression(anchor, op, left, right), nil
}

// loadFlowc reads the clause list: two sub-values denote a Range, a single
// Type sub-value a Type clause, a single non-Type sub-value a Value clause.
func loadFlowc(r *BufferReader, anchor bool) (*Flowc, error) {

	count := r.NextByte()
	conditions := make([]*FlowCondition, 0, count)

	for i := byte(0); i < count; i++ {

		length, err := r.NextInt()
		if err != nil {
			return nil, err
		}
		if length == 0 {
			return nil, &InternalError{Message: "invalid flowc size"}
		}

		block, err := r.NextBlock(length)
		if err != nil {
			return nil, err
		}

		first, err := block.Next()
		if err != nil {
			return nil, err
		}

		if block.HasNext() {
			second, err := block.Next()
			if err != nil {
				return nil, err
			}
			conditions = append(conditions, &FlowCondition{
				Type: FlowConditionTypeRange,
				A:    first.Generic(),
				B:    second.Generic(),
			})
		} else if first.DataType() == TypeType {
			conditions = append(conditions, &FlowCondition{
				Type: FlowConditionTypeType,
				A:    first.Generic(),
			})
		} else {
			conditions = append(conditions, &FlowCondition{
				Type: FlowConditionTypeValue,
				A:    first.Generic(),
			})
		}
	}

	return NewFlowc(anchor, conditions), nil
}

func loadStream(r *BufferReader, anchor bool) (*SubStream, error) {
	tags := r.NextByte()
	length, err := r.NextInt()
	if err != nil {
		return nil, err
	}
	if length == 0 {
		return nil, &InternalError{Message: "invalid stream size"}
	}
	body, err := r.NextBlock(length)
	if err != nil {
		return nil, err
	}
	return NewSubStream(anchor, tags, body), nil
}
