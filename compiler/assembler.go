package compiler

import (
	"strconv"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/token"
)

// assembleStream states
type streamState byte

const (
	streamStateStart streamState = iota
	streamStateContinue
	streamStateSet
	streamStateFunction
	streamStateExpression
	streamStateFlowc
	streamStateStream
)

// findStreamEnd locates the last token of the stream starting at start:
// the token before the first token on a new source line at which all three
// bracket counters are zero. Returns -1 when the stream never closes
// within [start, end).
func findStreamEnd(tokens []token.Token, start, end int) (int, error) {

	if start < 0 || start >= len(tokens) || end > len(tokens) {
		return 0, &seq.InternalError{Message: "invalid stream range"}
	}

	a := 0 // func bracket counter
	b := 0 // flow bracket counter
	c := 0 // math bracket counter
	l := tokens[start].Line

	for index := start; index < end; index++ {
		tok := tokens[index]

		if tok.Line != l {
			if a == 0 && b == 0 && c == 0 {
				return index - 1, nil
			}
			l = tok.Line
		}

		if index+1 >= end && a == 0 && b == 0 && c == 0 {
			return index, nil
		}

		switch tok.Category {
		case token.FuncBracket:
			a += int(tok.Data)
		case token.FlowBracket:
			b += int(tok.Data)
		case token.MathBracket:
			c += int(tok.Data)
		}
	}

	if a == 0 && b == 0 && c == 0 {
		return end - 1, nil
	}
	return -1, nil
}

// findClosing returns the index one past the bracket closing the group
// opened by the bracket at index.
func findClosing(tokens []token.Token, index int, category token.Category) (int, error) {
	index++

	for i := 1; ; {
		if index >= len(tokens) {
			return 0, &seq.InternalError{Message: "no closing token found"}
		}
		if tokens[index].Category == category {
			i += int(tokens[index].Data)
		}
		index++
		if i == 0 {
			return index, nil
		}
	}
}

// assembleFunction iterates over the streams of a scope, honouring leading
// tag tokens, and wraps the concatenated stream records in one FUN record.
// The end index is exclusive.
func assembleFunction(tokens []token.Token, start, end int, anchor bool) ([]byte, error) {

	if end-start < 2 {
		return nil, &token.CompilerError{
			Unexpected: "end of scope",
			Expected:   "stream",
			Structure:  "function",
			Line:       tokens[start].Line,
		}
	}

	var body []byte

	for i := start; i < end; i++ {

		tags := byte(0)

		if tokens[i].Category == token.Tag {
			tags = byte(tokens[i].Data)
			i++
			if i >= end {
				return nil, &token.CompilerError{
					Unexpected: "end of input",
					Expected:   "start of stream",
					Structure:  "function",
					Line:       tokens[i-1].Line,
				}
			}
		}

		j, err := findStreamEnd(tokens, i, end)
		if err != nil {
			return nil, err
		}
		if j == -1 {
			return nil, &token.CompilerError{
				Unexpected: "end of input",
				Expected:   "end of stream",
				Structure:  "function",
				Line:       tokens[i].Line,
			}
		}

		stream, err := assembleStream(tokens, i, j, tags)
		if err != nil {
			return nil, err
		}
		body = append(body, stream...)
		i = j
	}

	writer := seq.NewBufferWriter()
	writer.PutFunc(anchor, body)
	return writer.Bytes(), nil
}

// assembleStream walks one stream, expecting alternating stream atoms and
// '<<' separators. Names, primitives, '(expression)', '{function}' and
// '[flowc]' are the only atoms; 'set' introduces a binding site. The end
// index is inclusive.
func assembleStream(tokens []token.Token, start, end int, tags byte) ([]byte, error) {

	writer := seq.NewBufferWriter()
	state := streamStateStart

	for i := start; i <= end; i++ {

		tok := tokens[i]

		switch state {

		case streamStateStart, streamStateContinue:
			if state == streamStateStart && tok.Category == token.Set {
				state = streamStateSet
				break
			}

			if tok.Category == token.Name {
				writer.PutName(tok.Anchor, false, tok.Clean)
				state = streamStateStream
				break
			}

			if tok.IsPrimitive() {
				primitive, err := assemblePrimitive(tok)
				if err != nil {
					return nil, err
				}
				writer.PutBuffer(primitive)
				state = streamStateStream
				break
			}

			switch tok.Category {
			case token.FuncBracket:
				state = streamStateFunction
			case token.MathBracket:
				state = streamStateExpression
			case token.FlowBracket:
				state = streamStateFlowc
			default:
				return nil, &token.CompilerError{
					Unexpected: "token '" + tok.Raw + "'",
					Expected:   "name, value, argument, function, expression or flow controller",
					Structure:  "stream",
					Line:       tok.Line,
				}
			}

		case streamStateSet:
			if tok.Category == token.Name {
				if tok.Anchor {
					return nil, &token.CompilerError{
						Unexpected: "anchor after 'set' keyword",
						Expected:   "name",
						Structure:  "stream",
						Line:       tok.Line,
					}
				}
				writer.PutName(false, true, tok.Clean)
				state = streamStateStream
				break
			}
			return nil, &token.CompilerError{
				Unexpected: "token: '" + tok.Raw + "'",
				Expected:   "name",
				Structure:  "stream",
				Line:       tok.Line,
			}

		case streamStateFunction:
			j, err := findClosing(tokens, i-1, token.FuncBracket)
			if err != nil {
				return nil, err
			}
			body, err := assembleFunction(tokens, i, j-1, tokens[i-1].Anchor)
			if err != nil {
				return nil, err
			}
			writer.PutBuffer(body)
			i = j - 1
			state = streamStateStream

		case streamStateExpression:
			j, err := findClosing(tokens, i-1, token.MathBracket)
			if err != nil {
				return nil, err
			}
			body, err := assembleExpression(tokens, i, j-1, tokens[i-1].Anchor)
			if err != nil {
				return nil, err
			}
			writer.PutBuffer(body)
			i = j - 1
			state = streamStateStream

		case streamStateFlowc:
			j, err := findClosing(tokens, i-1, token.FlowBracket)
			if err != nil {
				return nil, err
			}
			body, err := assembleFlowc(tokens, i, j-1, tokens[i-1].Anchor)
			if err != nil {
				return nil, err
			}
			writer.PutBuffer(body)
			i = j - 1
			state = streamStateStream

		case streamStateStream:
			if tok.Category != token.Stream {
				return nil, &token.CompilerError{
					Unexpected: "token '" + tok.Raw + "'",
					Expected:   "'<<'",
					Structure:  "stream",
					Line:       tok.Line,
				}
			}
			state = streamStateContinue
		}
	}

	out := seq.NewBufferWriter()
	out.PutStream(false, tags, writer.Bytes())
	return out.Bytes(), nil
}

// assemblePrimitive emits the one-value opcode for a primitive token.
func assemblePrimitive(tok token.Token) ([]byte, error) {

	writer := seq.NewBufferWriter()
	anchor := tok.Anchor

	switch tok.Category {

	case token.Arg:
		writer.PutArg(anchor, byte(tok.Data))

	case token.Null:
		writer.PutNull(anchor)

	case token.Bool:
		writer.PutBool(anchor, tok.Data != 0)

	case token.Number:
		value, err := strconv.ParseFloat(tok.Clean, 64)
		if err != nil {
			return nil, &seq.InternalError{Message: "invalid argument " + tok.String()}
		}
		writer.PutNumber(anchor, seq.AsFraction(value))

	case token.Type:
		dataType, err := seq.ToDataType(tok.Clean)
		if err != nil {
			return nil, &seq.InternalError{Message: "invalid argument " + tok.String()}
		}
		writer.PutType(anchor, dataType)

	case token.String:
		writer.PutString(anchor, tok.Clean)

	case token.VMC:
		writer.PutCall(anchor, seq.CallType(tok.Data))

	default:
		return nil, &seq.InternalError{Message: "invalid argument " + tok.String()}
	}

	return writer.Bytes(), nil
}

// assembleFlowc parses a comma-separated clause list where each clause is
// a single primitive or a 'number : number' range. Anchors are forbidden
// inside flow controllers. The end index is exclusive.
func assembleFlowc(tokens []token.Token, start, end int, anchor bool) ([]byte, error) {

	var blocks [][]byte
	expectSeparator := false

	for i := start; i < end; i++ {

		tok := tokens[i]

		if tok.Anchor {
			return nil, &token.CompilerError{
				Unexpected: "anchor",
				Structure:  "flow controller",
				Line:       tok.Line,
			}
		}

		if expectSeparator {
			if tok.Category != token.Comma {
				return nil, &token.CompilerError{
					Unexpected: "token '" + tok.Raw + "'",
					Expected:   "','",
					Structure:  "flow controller",
					Line:       tok.Line,
				}
			}
			expectSeparator = false
			continue
		}

		switch tok.Category {

		case token.Number:
			if i+1 < end && tokens[i+1].Category == token.Colon {
				if i+2 >= end || tokens[i+2].Category != token.Number {
					return nil, &token.CompilerError{
						Unexpected: "token '" + tokens[i+1].Raw + "'",
						Expected:   "number",
						Structure:  "flow controller",
						Line:       tokens[i+1].Line,
					}
				}
				if tokens[i+2].Anchor {
					return nil, &token.CompilerError{
						Unexpected: "anchor",
						Structure:  "flow controller",
						Line:       tok.Line,
					}
				}

				low, err := assemblePrimitive(tok)
				if err != nil {
					return nil, err
				}
				high, err := assemblePrimitive(tokens[i+2])
				if err != nil {
					return nil, err
				}
				blocks = append(blocks, append(low, high...))

				i += 2
				expectSeparator = true
				break
			}

			block, err := assemblePrimitive(tok)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			expectSeparator = true

		case token.String, token.Bool, token.Type, token.Null:
			block, err := assemblePrimitive(tok)
			if err != nil {
				return nil, err
			}
			blocks = append(blocks, block)
			expectSeparator = true

		default:
			return nil, &token.CompilerError{
				Unexpected: "token '" + tok.Raw + "'",
				Expected:   "value or range",
				Structure:  "flow controller",
				Line:       tok.Line,
			}
		}
	}

	if !expectSeparator || len(blocks) == 0 {
		return nil, &token.CompilerError{
			Expected:  "value or range",
			Structure: "flow controller",
			Line:      tokens[end].Line,
		}
	}

	writer := seq.NewBufferWriter()
	writer.PutFlowc(anchor, blocks)
	return writer.Bytes(), nil
}

// assembleExpression validates operator/operand alternation, then splits
// at the weakest-binding top-level operator, re-scanning at increasing
// bracket depth when the whole expression is parenthesised. A single-token
// expression degenerates to a primitive. The end index is exclusive.
func assembleExpression(tokens []token.Token, start, end int, anchor bool) ([]byte, error) {

	if end-start == 1 {
		return assemblePrimitive(tokens[start])
	}

	// pass 1: operators and operands must alternate
	eop := false
	for i := start; i < end; i++ {

		tok := tokens[i]

		if tok.Category == token.MathBracket {
			if tok.Data == 1 {
				if eop {
					return nil, &token.CompilerError{
						Expected:  "operator",
						Structure: "expression",
						Line:      tok.Line,
					}
				}
			} else if !eop {
				return nil, &token.CompilerError{
					Unexpected: "operator",
					Structure:  "expression",
					Line:       tok.Line,
				}
			}
			continue
		}

		if eop && tok.Category != token.Operator {
			return nil, &token.CompilerError{
				Expected:  "operator",
				Structure: "expression",
				Line:      tok.Line,
			}
		}
		if !eop && tok.Category == token.Operator {
			return nil, &token.CompilerError{
				Unexpected: "operator",
				Structure:  "expression",
				Line:       tok.Line,
			}
		}
		eop = !eop
	}

	// pass 2: split at the highest-weight operator on the shallowest
	// bracket level that holds one
	h := -1
	j := -1
	l := 0
	f := 0

	for {
		for i := start; i < end; i++ {

			tok := tokens[i]

			if tok.Category == token.MathBracket {
				l += int(tok.Data)
			}

			if l == f && tok.Category == token.Operator {
				tmp := token.WeightOf(tok.Data)
				if h < tmp {
					h = tmp
					j = i
				}
			}
		}

		if h != -1 {
			break
		}

		if f != 0 {
			return nil, &token.CompilerError{
				Unexpected: "end of expression",
				Expected:   "operator",
				Structure:  "expression",
				Line:       tokens[end-1].Line,
			}
		}

		l = 0
		f = 1
	}

	left, err := assembleExpression(tokens, start+f, j, false)
	if err != nil {
		return nil, err
	}
	right, err := assembleExpression(tokens, j+1, end-f, false)
	if err != nil {
		return nil, err
	}

	writer := seq.NewBufferWriter()
	writer.PutExpr(anchor, token.OperatorOf(tokens[j].Data), left, right)
	return writer.Bytes(), nil
}
