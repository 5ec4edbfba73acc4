package seq

import (
	"sort"
	"strings"
)

// BufferWriter appends encoded records to a byte vector. It is the exact
// counterpart of TokenReader; every Put* method emits one record.
type BufferWriter struct {
	buffer []byte
}

func NewBufferWriter() *BufferWriter {
	return &BufferWriter{}
}

// Bytes returns the written bytes.
func (w *BufferWriter) Bytes() []byte {
	return w.buffer
}

func (w *BufferWriter) PutByte(b byte) {
	w.buffer = append(w.buffer, b)
}

func (w *BufferWriter) putOpcode(anchor bool, code Opcode) {
	b := byte(code)
	if anchor {
		b |= 0b10000000
	}
	w.PutByte(b)
}

func (w *BufferWriter) putString(str string) {
	w.buffer = append(w.buffer, str...)
	w.PutByte(0)
}

func (w *BufferWriter) putInteger(length byte, value int64) {
	for ; length != 0; length-- {
		w.PutByte(byte(value & 0xFF))
		value >>= 8
	}
}

func (w *BufferWriter) putHead(left, right byte) {
	w.PutByte(left<<4 | right)
}

// PutBuffer appends a nested, already encoded buffer.
func (w *BufferWriter) PutBuffer(buf []byte) {
	w.buffer = append(w.buffer, buf...)
}

func (w *BufferWriter) PutNull(anchor bool) {
	w.putOpcode(anchor, OpcodeNIL)
}

func (w *BufferWriter) PutBool(anchor bool, value bool) {
	if value {
		w.putOpcode(anchor, OpcodeBLT)
	} else {
		w.putOpcode(anchor, OpcodeBLF)
	}
}

// PutNumber emits the single-byte INT form for small natural values and
// the NUM form otherwise, folding the sign into the top bit of the
// numerator's last byte.
func (w *BufferWriter) PutNumber(anchor bool, f Fraction) {
	if f.Denominator == 1 && f.Numerator >= 0 && f.Numerator <= 0b01111111 {
		w.putOpcode(anchor, OpcodeINT)
		w.PutByte(byte(f.Numerator))
		return
	}

	sign := f.Numerator < 0
	n := uint64(f.Numerator)
	if sign {
		n = uint64(-f.Numerator)
	}

	w.putOpcode(anchor, OpcodeNUM)
	a := sizeOf(n << 1)
	b := sizeOf(uint64(f.Denominator))
	w.putHead(a, b)
	if sign {
		n |= 1 << (uint(a)*8 - 1)
	}
	w.putInteger(a, int64(n))
	w.putInteger(b, f.Denominator)
}

func (w *BufferWriter) PutArg(anchor bool, level byte) {
	w.putOpcode(anchor, OpcodeARG)
	w.PutByte(level)
}

func (w *BufferWriter) PutString(anchor bool, str string) {
	w.putOpcode(anchor, OpcodeSTR)
	w.putString(str)
}

func (w *BufferWriter) PutType(anchor bool, typ DataType) {
	w.putOpcode(anchor, OpcodeTYP)
	w.PutByte(byte(typ))
}

func (w *BufferWriter) PutCall(anchor bool, call CallType) {
	w.putOpcode(anchor, OpcodeVMC)
	w.PutByte(byte(call))
}

func (w *BufferWriter) PutName(anchor bool, define bool, name string) {
	if define {
		w.putOpcode(anchor, OpcodeDEF)
	} else {
		w.putOpcode(anchor, OpcodeVAR)
	}
	w.putString(name)
}

func (w *BufferWriter) PutFunc(anchor bool, body []byte) {
	w.putOpcode(anchor, OpcodeFUN)
	size := int64(len(body))
	h := sizeOf(uint64(size))
	w.putHead(h, 0)
	w.putInteger(h, size)
	w.PutBuffer(body)
}

func (w *BufferWriter) PutExpr(anchor bool, op ExprOperator, left, right []byte) {
	w.putOpcode(anchor, OpcodeEXP)
	w.PutByte(byte(op))
	leftSize := int64(len(left))
	rightSize := int64(len(right))
	a := sizeOf(uint64(leftSize))
	b := sizeOf(uint64(rightSize))
	w.putHead(a, b)
	w.putInteger(a, leftSize)
	w.putInteger(b, rightSize)
	w.PutBuffer(left)
	w.PutBuffer(right)
}

func (w *BufferWriter) PutFlowc(anchor bool, blocks [][]byte) {
	w.putOpcode(anchor, OpcodeFLC)
	w.PutByte(byte(len(blocks)))
	for _, block := range blocks {
		size := int64(len(block))
		h := sizeOf(uint64(size))
		w.putHead(h, 0)
		w.putInteger(h, size)
		w.PutBuffer(block)
	}
}

func (w *BufferWriter) PutStream(anchor bool, tags byte, body []byte) {
	w.putOpcode(anchor, OpcodeSSL)
	w.PutByte(tags)
	size := int64(len(body))
	h := sizeOf(uint64(size))
	w.putHead(h, 0)
	w.putInteger(h, size)
	w.PutBuffer(body)
}

// PutFileHeader emits the fixed signature, the version triplet, the 4-byte
// little-endian payload length and the flat key/value block. Keys are
// written in sorted order so the output is deterministic. A value holding
// a NUL-separated table is flattened into one key/value pair per entry,
// keeping the block free of ambiguous embedded NULs; the reader folds the
// repeated keys back together.
func (w *BufferWriter) PutFileHeader(major, minor, patch byte, data map[string]string) {
	w.PutByte('s')
	w.PutByte('q')
	w.PutByte('c')
	w.PutByte(0)
	w.PutByte(major)
	w.PutByte(minor)
	w.PutByte(patch)

	keys := make([]string, 0, len(data))
	for key := range data {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var block []byte
	for _, key := range keys {
		for _, entry := range strings.Split(data[key], "\x00") {
			block = append(block, key...)
			block = append(block, 0)
			block = append(block, entry...)
			block = append(block, 0)
		}
	}

	w.putInteger(4, int64(len(block)))
	w.PutBuffer(block)
}
