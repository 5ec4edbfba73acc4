// Package decompiler reconstructs Sequensa source text from bytecode. The
// output is a readable rendition of the encoded structure, one stream
// record per line.
package decompiler

import (
	"strconv"
	"strings"

	"github.com/magistermaks/sequensa-sub000/seq"
)

var operatorNames = map[seq.ExprOperator]string{
	seq.OperatorLess:           "<",
	seq.OperatorGreater:        ">",
	seq.OperatorEqual:          "=",
	seq.OperatorNotEqual:       "!=",
	seq.OperatorNotGreater:     "<=",
	seq.OperatorNotLess:        ">=",
	seq.OperatorAnd:            "&&",
	seq.OperatorOr:             "||",
	seq.OperatorXor:            "^^",
	seq.OperatorNot:            "!",
	seq.OperatorMultiplication: "*",
	seq.OperatorDivision:       "/",
	seq.OperatorAddition:       "+",
	seq.OperatorSubtraction:    "-",
	seq.OperatorModulo:         "%",
	seq.OperatorPower:          "**",
	seq.OperatorBinaryAnd:      "&",
	seq.OperatorBinaryOr:       "|",
	seq.OperatorBinaryXor:      "^",
	seq.OperatorBinaryNot:      "~",
}

var tagNames = []struct {
	bit  byte
	name string
}{
	{seq.TagFirst, "first; "},
	{seq.TagLast, "last; "},
	{seq.TagEnd, "end; "},
}

// Decompile renders every stream record reachable from the reader.
func Decompile(reader *seq.BufferReader) (string, error) {
	var builder strings.Builder

	for reader.HasNext() {
		tr, err := reader.Next()
		if err != nil {
			return "", err
		}

		stream, ok := tr.Generic().(*seq.SubStream)
		if !ok {
			return "", &seq.InternalError{Message: "invalid command in function"}
		}

		line, err := decompileStream(stream, 0)
		if err != nil {
			return "", err
		}

		builder.WriteString(line)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

func decompileStream(stream *seq.SubStream, depth int) (string, error) {

	var builder strings.Builder
	builder.WriteString(strings.Repeat("\t", depth))

	for _, tag := range tagNames {
		if stream.Tags&tag.bit != 0 {
			builder.WriteString(tag.name)
		}
	}

	values, err := stream.Reader.Copy().ReadAll()
	if err != nil {
		return "", err
	}

	for i, value := range values {
		if i > 0 {
			builder.WriteString(" << ")
		}
		text, err := decompileValue(value, depth)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
	}

	return builder.String(), nil
}

func decompileValue(value seq.Generic, depth int) (string, error) {

	anchor := ""
	if value.Anchor() {
		anchor = "#"
	}

	switch v := value.(type) {

	case *seq.Null:
		return anchor + "null", nil

	case *seq.Bool:
		if v.Value {
			return anchor + "true", nil
		}
		return anchor + "false", nil

	case *seq.Number:
		return anchor + formatNumber(v), nil

	case *seq.String:
		return anchor + quote(v.Value), nil

	case *seq.Type:
		return anchor + v.Value.String(), nil

	case *seq.VMCall:
		return anchor + callName(v.Value), nil

	case *seq.Arg:
		return anchor + strings.Repeat("@", int(v.Level)+1), nil

	case *seq.Name:
		if v.Define {
			return "set " + v.Value, nil
		}
		return anchor + v.Value, nil

	case *seq.Function:
		return decompileFunction(v, anchor, depth)

	case *seq.Expression:
		return decompileExpression(v, anchor)

	case *seq.Flowc:
		return decompileFlowc(v, anchor)
	}

	return "", &seq.InternalError{Message: "invalid data type"}
}

func decompileFunction(function *seq.Function, anchor string, depth int) (string, error) {

	var builder strings.Builder
	builder.WriteString(anchor)
	builder.WriteString("{\n")

	reader := function.Reader.Copy()
	for reader.HasNext() {
		tr, err := reader.Next()
		if err != nil {
			return "", err
		}

		stream, ok := tr.Generic().(*seq.SubStream)
		if !ok {
			return "", &seq.InternalError{Message: "invalid command in function"}
		}

		line, err := decompileStream(stream, depth+1)
		if err != nil {
			return "", err
		}

		builder.WriteString(line)
		builder.WriteString("\n")
	}

	builder.WriteString(strings.Repeat("\t", depth))
	builder.WriteString("}")
	return builder.String(), nil
}

func decompileExpression(expr *seq.Expression, anchor string) (string, error) {

	ltr, err := expr.Left.Copy().Next()
	if err != nil {
		return "", err
	}
	rtr, err := expr.Right.Copy().Next()
	if err != nil {
		return "", err
	}

	left, err := decompileValue(ltr.Generic(), 0)
	if err != nil {
		return "", err
	}
	right, err := decompileValue(rtr.Generic(), 0)
	if err != nil {
		return "", err
	}

	return anchor + "(" + left + " " + operatorNames[expr.Op] + " " + right + ")", nil
}

func decompileFlowc(flowc *seq.Flowc, anchor string) (string, error) {

	parts := make([]string, 0, len(flowc.Conditions))

	for _, condition := range flowc.Conditions {
		switch condition.Type {

		case seq.FlowConditionTypeRange:
			low, err := decompileValue(condition.A, 0)
			if err != nil {
				return "", err
			}
			high, err := decompileValue(condition.B, 0)
			if err != nil {
				return "", err
			}
			parts = append(parts, low+" : "+high)

		default:
			value, err := decompileValue(condition.A, 0)
			if err != nil {
				return "", err
			}
			parts = append(parts, value)
		}
	}

	return anchor + "[" + strings.Join(parts, ", ") + "]", nil
}

func formatNumber(number *seq.Number) string {
	if number.IsNatural() {
		return strconv.FormatInt(number.Int64(), 10)
	}
	return strconv.FormatFloat(number.Value, 'f', -1, 64)
}

func quote(value string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"\"", "\\\"",
		"\n", "\\n",
		"\t", "\\t",
		"\r", "\\r",
	)
	return "\"" + replacer.Replace(value) + "\""
}

func callName(call seq.CallType) string {
	switch call {
	case seq.CallReturn:
		return "return"
	case seq.CallBreak:
		return "break"
	case seq.CallExit:
		return "exit"
	case seq.CallAgain:
		return "again"
	case seq.CallEmit:
		return "emit"
	case seq.CallFinal:
		return "final"
	}
	return "call"
}
