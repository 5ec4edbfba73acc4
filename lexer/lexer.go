package lexer

import (
	"fmt"
	"strings"

	"github.com/magistermaks/sequensa-sub000/token"
)

// tokenizer states
type state byte

const (
	stateStart state = iota
	stateComment
	stateString
	stateEscape
	stateName
	stateName2
	stateNumber
	stateNumber2
	stateArg
)

var longOperators = []string{"!=", ">=", "!>", "<=", "!<", "&&", "||", "^^", "**"}

const shortOperators = "+-/%*><=&|^~"

func isLetter(chr byte) bool {
	return chr >= 'a' && chr <= 'z' || chr >= 'A' && chr <= 'Z' || chr == '_'
}

func isNumber(chr byte) bool {
	return chr >= '0' && chr <= '9'
}

func isLongOperator(str string) bool {
	for _, op := range longOperators {
		if str == op {
			return true
		}
	}
	return false
}

// Tokenizer is a single-pass character machine turning source text into a
// flat token sequence. Every token carries its source line and anchor
// flag; bracket balance is tracked by three running counters.
type Tokenizer struct {
	state          state
	token          []byte
	tokens         []token.Token
	line           int
	roundBrackets  int
	curlyBrackets  int
	squareBrackets int
}

// Tokenize scans the whole input. Unterminated strings and unbalanced
// brackets are compiler errors.
func Tokenize(code string) ([]token.Token, error) {
	lexer := &Tokenizer{state: stateStart, line: 1}
	return lexer.scan(code)
}

// next flushes the pending lexeme into the token list.
func (lexer *Tokenizer) next() error {
	if len(lexer.token) == 0 {
		return nil
	}

	tok, err := token.Construct(string(lexer.token), lexer.line)
	if err != nil {
		return err
	}

	lexer.tokens = append(lexer.tokens, tok)
	lexer.token = lexer.token[:0]
	return nil
}

func (lexer *Tokenizer) updateBrackets(chr byte) error {
	switch chr {
	case '{':
		lexer.curlyBrackets++
	case '}':
		lexer.curlyBrackets--
	case '[':
		lexer.squareBrackets++
	case ']':
		lexer.squareBrackets--
	case '(':
		lexer.roundBrackets++
	case ')':
		lexer.roundBrackets--
	}

	if lexer.curlyBrackets < 0 {
		return &token.CompilerError{Unexpected: "'}'", Line: lexer.line, Critical: true}
	}
	if lexer.roundBrackets < 0 {
		return &token.CompilerError{Unexpected: "')'", Line: lexer.line, Critical: true}
	}
	if lexer.squareBrackets != 0 && lexer.squareBrackets != 1 {
		return &token.CompilerError{Unexpected: fmt.Sprintf("'%c'", chr), Line: lexer.line, Critical: true}
	}

	return nil
}

func (lexer *Tokenizer) scan(code string) ([]token.Token, error) {

	size := len(code)
	for i := 0; i < size; i++ {

		c := code[i]
		var n byte
		if i+1 < size {
			n = code[i+1]
		}

		// keep the line number up-to-date
		if c == '\n' {
			if lexer.state == stateString {
				return nil, &token.CompilerError{Unexpected: "end of line", Expected: "end of string", Line: lexer.line, Critical: true}
			}
			if lexer.state == stateComment {
				lexer.state = stateStart
			}
			if err := lexer.next(); err != nil {
				return nil, err
			}
			lexer.line++
			continue
		}

		// a flagged pass re-feeds the current character to the new state
		for flag := true; flag; {

			flag = false

			switch lexer.state {

			case stateStart:
				switch {
				case c == '/' && n == '/':
					i++
					lexer.state = stateComment

				case c == '"':
					lexer.state = stateString
					lexer.token = append(lexer.token, c)

				case c == ' ' || c == '\t' || c == '\r':
					// whitespace is ignored

				case (c == '#' && isLetter(n)) || isLetter(c):
					lexer.state = stateName
					lexer.token = append(lexer.token, c)

				case (c == '<' && n == '<') || (c == '>' && n == '>'):
					lexer.token = append(lexer.token, c, n)
					i++
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case (c == '#' && isNumber(n)) || isNumber(c):
					lexer.state = stateNumber
					lexer.token = append(lexer.token, c)

				case isLongOperator(string([]byte{c, n})):
					lexer.token = append(lexer.token, c, n)
					i++
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case strings.IndexByte(shortOperators, c) != -1:
					lexer.token = append(lexer.token, c)
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case c == '!':
					// lone '!' negates nothing: rewrite as 'null !'
					lexer.token = append(lexer.token, "null"...)
					if err := lexer.next(); err != nil {
						return nil, err
					}
					lexer.token = append(lexer.token, c)
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case (c == '#' && n == '@') || c == '@':
					lexer.state = stateArg
					lexer.token = append(lexer.token, c)

				case strings.IndexByte("{}[]()", c) != -1:
					lexer.token = append(lexer.token, c)
					if err := lexer.updateBrackets(c); err != nil {
						return nil, err
					}
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case c == '#' && strings.IndexByte("{[(", n) != -1:
					lexer.token = append(lexer.token, c, n)
					if err := lexer.updateBrackets(n); err != nil {
						return nil, err
					}
					i++
					if err := lexer.next(); err != nil {
						return nil, err
					}

				case c == ',' || c == ':':
					lexer.token = append(lexer.token, c)
					if err := lexer.next(); err != nil {
						return nil, err
					}

				default:
					return nil, &token.CompilerError{Unexpected: fmt.Sprintf("char: '%c'", c), Line: lexer.line, Critical: true}
				}

			case stateComment:
				if (c == '/' && n == '/') || c == '\n' {
					i++
					lexer.state = stateStart
				}

			case stateString:
				switch c {
				case '\\':
					lexer.state = stateEscape
				case '"':
					lexer.token = append(lexer.token, '"')
					lexer.state = stateStart
					if err := lexer.next(); err != nil {
						return nil, err
					}
				default:
					lexer.token = append(lexer.token, c)
				}

			case stateEscape:
				switch c {
				case 'n':
					lexer.token = append(lexer.token, '\n')
				case 't':
					lexer.token = append(lexer.token, '\t')
				case 'r':
					lexer.token = append(lexer.token, '\r')
				case '\\':
					lexer.token = append(lexer.token, '\\')
				case '"':
					lexer.token = append(lexer.token, '"')
				default:
					return nil, &token.CompilerError{
						Unexpected: fmt.Sprintf("char '%c'", c),
						Expected:   `escape code (n, t, r, \ or ")`,
						Structure:  "string",
						Line:       lexer.line,
						Critical:   true,
					}
				}
				lexer.state = stateString

			case stateName: // or tag
				if isLetter(c) {
					lexer.token = append(lexer.token, c)
					break
				}

				if c == ':' {
					lexer.token = append(lexer.token, c)
					lexer.state = stateName2
					break
				}

				if c == ';' {
					lexer.token = append(lexer.token, c)
				} else {
					flag = true
				}

				lexer.state = stateStart
				if err := lexer.next(); err != nil {
					return nil, err
				}

			case stateName2:
				if c == ':' {
					lexer.state = stateStart
					flag = true
					if err := lexer.next(); err != nil {
						return nil, err
					}
				} else {
					lexer.state = stateName
					flag = true
				}

			case stateNumber:
				if isNumber(c) {
					lexer.token = append(lexer.token, c)
				} else if c == '.' {
					lexer.token = append(lexer.token, c)
					lexer.state = stateNumber2
				} else {
					lexer.state = stateStart
					flag = true
					if err := lexer.next(); err != nil {
						return nil, err
					}
				}

			case stateNumber2:
				if isNumber(c) {
					lexer.token = append(lexer.token, c)
				} else {
					lexer.state = stateStart
					flag = true
					if err := lexer.next(); err != nil {
						return nil, err
					}
				}

			case stateArg:
				if c == '@' {
					lexer.token = append(lexer.token, c)
				} else {
					lexer.state = stateStart
					flag = true
					if err := lexer.next(); err != nil {
						return nil, err
					}
				}
			}
		}
	}

	if lexer.state == stateString {
		return nil, &token.CompilerError{Unexpected: "end of input", Expected: "end of string", Line: lexer.line, Critical: true}
	}
	if lexer.curlyBrackets != 0 {
		return nil, &token.CompilerError{Unexpected: "end of input", Expected: "curly bracket", Line: lexer.line, Critical: true}
	}
	if lexer.roundBrackets != 0 {
		return nil, &token.CompilerError{Unexpected: "end of input", Expected: "round bracket", Line: lexer.line, Critical: true}
	}
	if lexer.squareBrackets != 0 {
		return nil, &token.CompilerError{Unexpected: "end of input", Expected: "square bracket", Line: lexer.line, Critical: true}
	}

	// if some token is still pending, add it
	if err := lexer.next(); err != nil {
		return nil, err
	}

	return lexer.tokens, nil
}
