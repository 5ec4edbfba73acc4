package seq

import (
	"math"
	"strings"
	"testing"
)

// decodeOne encodes with the writer and decodes the first token back.
func decodeOne(t *testing.T, write func(w *BufferWriter)) *TokenReader {
	t.Helper()

	writer := NewBufferWriter()
	write(writer)

	tr, err := NewByteBuffer(writer.Bytes()).Reader().Next()
	if err != nil {
		t.Fatalf("Next() raised an error: %v", err)
	}
	return tr
}

func TestRoundTripSimpleValues(t *testing.T) {

	tests := []struct {
		name   string
		anchor bool
		write  func(w *BufferWriter)
		check  func(t *testing.T, g Generic)
	}{
		{
			"null", false,
			func(w *BufferWriter) { w.PutNull(false) },
			func(t *testing.T, g Generic) {
				if g.DataType() != TypeNull {
					t.Errorf("DataType() = %v, want null", g.DataType())
				}
			},
		},
		{
			"bool true anchored", true,
			func(w *BufferWriter) { w.PutBool(true, true) },
			func(t *testing.T, g Generic) {
				if !g.(*Bool).Value {
					t.Error("Value = false, want true")
				}
			},
		},
		{
			"bool false", false,
			func(w *BufferWriter) { w.PutBool(false, false) },
			func(t *testing.T, g Generic) {
				if g.(*Bool).Value {
					t.Error("Value = true, want false")
				}
			},
		},
		{
			"small int", false,
			func(w *BufferWriter) { w.PutNumber(false, Fraction{127, 1}) },
			func(t *testing.T, g Generic) {
				if got := g.(*Number).Value; got != 127 {
					t.Errorf("Value = %v, want 127", got)
				}
			},
		},
		{
			"negative int", false,
			func(w *BufferWriter) { w.PutNumber(false, Fraction{-1, 1}) },
			func(t *testing.T, g Generic) {
				if got := g.(*Number).Value; got != -1 {
					t.Errorf("Value = %v, want -1", got)
				}
			},
		},
		{
			"large numerator", true,
			func(w *BufferWriter) { w.PutNumber(true, Fraction{300, 1}) },
			func(t *testing.T, g Generic) {
				if got := g.(*Number).Value; got != 300 {
					t.Errorf("Value = %v, want 300", got)
				}
			},
		},
		{
			"fraction", false,
			func(w *BufferWriter) { w.PutNumber(false, Fraction{1, 2}) },
			func(t *testing.T, g Generic) {
				if got := g.(*Number).Value; got != 0.5 {
					t.Errorf("Value = %v, want 0.5", got)
				}
			},
		},
		{
			"negative fraction", false,
			func(w *BufferWriter) { w.PutNumber(false, Fraction{-5, 4}) },
			func(t *testing.T, g Generic) {
				if got := g.(*Number).Value; got != -1.25 {
					t.Errorf("Value = %v, want -1.25", got)
				}
			},
		},
		{
			"string", true,
			func(w *BufferWriter) { w.PutString(true, "Hello World!") },
			func(t *testing.T, g Generic) {
				if got := g.(*String).Value; got != "Hello World!" {
					t.Errorf("Value = %q, want \"Hello World!\"", got)
				}
			},
		},
		{
			"type", false,
			func(w *BufferWriter) { w.PutType(false, TypeNumber) },
			func(t *testing.T, g Generic) {
				if got := g.(*Type).Value; got != TypeNumber {
					t.Errorf("Value = %v, want number", got)
				}
			},
		},
		{
			"call", true,
			func(w *BufferWriter) { w.PutCall(true, CallExit) },
			func(t *testing.T, g Generic) {
				if got := g.(*VMCall).Value; got != CallExit {
					t.Errorf("Value = %v, want exit", got)
				}
			},
		},
		{
			"arg", false,
			func(w *BufferWriter) { w.PutArg(false, 3) },
			func(t *testing.T, g Generic) {
				if got := g.(*Arg).Level; got != 3 {
					t.Errorf("Level = %d, want 3", got)
				}
			},
		},
		{
			"variable", false,
			func(w *BufferWriter) { w.PutName(false, false, "foo:bar") },
			func(t *testing.T, g Generic) {
				name := g.(*Name)
				if name.Define {
					t.Error("Define = true, want false")
				}
				if name.Value != "foo:bar" {
					t.Errorf("Value = %q, want \"foo:bar\"", name.Value)
				}
			},
		},
		{
			"definition", false,
			func(w *BufferWriter) { w.PutName(false, true, "x") },
			func(t *testing.T, g Generic) {
				if !g.(*Name).Define {
					t.Error("Define = false, want true")
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := decodeOne(t, tt.write)
			if tr.IsAnchored() != tt.anchor {
				t.Errorf("IsAnchored() = %v, want %v", tr.IsAnchored(), tt.anchor)
			}
			if tr.Generic().Anchor() != tt.anchor {
				t.Errorf("Anchor() = %v, want %v", tr.Generic().Anchor(), tt.anchor)
			}
			tt.check(t, tr.Generic())
		})
	}
}

func TestSmallNaturalUsesIntOpcode(t *testing.T) {

	writer := NewBufferWriter()
	writer.PutNumber(false, Fraction{5, 1})

	bytes := writer.Bytes()
	if Opcode(bytes[0]&0x7F) != OpcodeINT {
		t.Errorf("opcode = %d, want INT", bytes[0])
	}
	if len(bytes) != 2 {
		t.Errorf("encoded length = %d, want 2", len(bytes))
	}
}

func TestRoundTripFunction(t *testing.T) {

	inner := NewBufferWriter()
	inner.PutNull(false)
	inner.PutBool(false, true)

	body := NewBufferWriter()
	body.PutStream(false, TagFirst, inner.Bytes())

	writer := NewBufferWriter()
	writer.PutFunc(true, body.Bytes())

	tr := decodeOne(t, func(w *BufferWriter) { w.PutBuffer(writer.Bytes()) })

	function := tr.Generic().(*Function)
	stream, err := function.Reader.Copy().Next()
	if err != nil {
		t.Fatalf("decoding function body raised an error: %v", err)
	}

	sub := stream.Generic().(*SubStream)
	if sub.Tags != TagFirst {
		t.Errorf("Tags = %d, want %d", sub.Tags, TagFirst)
	}

	values, err := sub.Reader.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll() raised an error: %v", err)
	}
	if len(values) != 2 {
		t.Fatalf("len(values) = %d, want 2", len(values))
	}
	if values[0].DataType() != TypeNull || values[1].DataType() != TypeBool {
		t.Errorf("decoded types = %v, %v; want null, bool", values[0].DataType(), values[1].DataType())
	}
}

func TestRoundTripExpression(t *testing.T) {

	left := NewBufferWriter()
	left.PutNumber(false, Fraction{2, 1})
	right := NewBufferWriter()
	right.PutNumber(false, Fraction{3, 1})

	tr := decodeOne(t, func(w *BufferWriter) {
		w.PutExpr(false, OperatorAddition, left.Bytes(), right.Bytes())
	})

	expr := tr.Generic().(*Expression)
	if expr.Op != OperatorAddition {
		t.Errorf("Op = %v, want addition", expr.Op)
	}

	ltr, err := expr.Left.Copy().Next()
	if err != nil {
		t.Fatalf("decoding left operand raised an error: %v", err)
	}
	if got := ltr.Generic().(*Number).Value; got != 2 {
		t.Errorf("left = %v, want 2", got)
	}

	rtr, err := expr.Right.Copy().Next()
	if err != nil {
		t.Fatalf("decoding right operand raised an error: %v", err)
	}
	if got := rtr.Generic().(*Number).Value; got != 3 {
		t.Errorf("right = %v, want 3", got)
	}
}

func TestRoundTripFlowc(t *testing.T) {

	value := NewBufferWriter()
	value.PutBool(false, true)

	typ := NewBufferWriter()
	typ.PutType(false, TypeNumber)

	rng := NewBufferWriter()
	rng.PutNumber(false, Fraction{1, 1})
	rng.PutNumber(false, Fraction{5, 1})

	tr := decodeOne(t, func(w *BufferWriter) {
		w.PutFlowc(true, [][]byte{value.Bytes(), typ.Bytes(), rng.Bytes()})
	})

	flowc := tr.Generic().(*Flowc)
	if len(flowc.Conditions) != 3 {
		t.Fatalf("len(Conditions) = %d, want 3", len(flowc.Conditions))
	}

	if flowc.Conditions[0].Type != FlowConditionTypeValue {
		t.Errorf("clause 0 type = %v, want value", flowc.Conditions[0].Type)
	}
	if flowc.Conditions[1].Type != FlowConditionTypeType {
		t.Errorf("clause 1 type = %v, want type", flowc.Conditions[1].Type)
	}
	if flowc.Conditions[2].Type != FlowConditionTypeRange {
		t.Errorf("clause 2 type = %v, want range", flowc.Conditions[2].Type)
	}
	if got := flowc.Conditions[2].B.(*Number).Value; got != 5 {
		t.Errorf("range high = %v, want 5", got)
	}
}

func TestInvalidOpcodeFails(t *testing.T) {

	for _, opcode := range []byte{0, 16, 127} {
		if _, err := NewByteBuffer([]byte{opcode}).Reader().Next(); err == nil {
			t.Errorf("Next() with opcode %d did not fail", opcode)
		}
	}
}

func TestZeroDenominatorFails(t *testing.T) {

	// NUM with one numerator byte and one zero denominator byte
	buffer := []byte{byte(OpcodeNUM), 0x11, 1, 0}
	if _, err := NewByteBuffer(buffer).Reader().Next(); err == nil {
		t.Error("Next() with zero denominator did not fail")
	}
}

func TestInvalidNameCharacterFails(t *testing.T) {

	buffer := []byte{byte(OpcodeVAR), 'a', '-', 'b', 0}
	if _, err := NewByteBuffer(buffer).Reader().Next(); err == nil {
		t.Error("Next() with invalid name character did not fail")
	}
}

func TestExpressionWidthsAreIndependent(t *testing.T) {

	// a left body long enough to need a two byte length, a one byte right
	left := NewBufferWriter()
	left.PutString(false, strings.Repeat("a", 300))
	right := NewBufferWriter()
	right.PutNumber(false, Fraction{1, 1})

	tr := decodeOne(t, func(w *BufferWriter) {
		w.PutExpr(false, OperatorAddition, left.Bytes(), right.Bytes())
	})

	expr := tr.Generic().(*Expression)
	rtr, err := expr.Right.Copy().Next()
	if err != nil {
		t.Fatalf("decoding right operand raised an error: %v", err)
	}
	if got := rtr.Generic().(*Number).Value; got != 1 {
		t.Errorf("right = %v, want 1", got)
	}
}

func TestDeepCopyIsIndependent(t *testing.T) {

	original := NewString(false, "abc")
	copied := original.Copy()
	copied.SetAnchor(true)

	if original.Anchor() {
		t.Error("copy mutated the original anchor")
	}

	if math.Abs(NewNumber(false, 1.5).Copy().(*Number).Value-1.5) > 0 {
		t.Error("number copy lost its value")
	}
}
