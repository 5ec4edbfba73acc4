// Package compiler turns Sequensa source text into bytecode: the token
// list produced by the lexer is assembled recursively into stream, function,
// expression and flow-controller records.
package compiler

import (
	"errors"
	"fmt"

	"github.com/magistermaks/sequensa-sub000/lexer"
	"github.com/magistermaks/sequensa-sub000/token"
)

// ErrorHandle decides what happens with a reported compiler error.
// Returning true aborts compilation immediately; returning false collects
// the error and continues with the next stream. Critical errors abort no
// matter what the handle returns.
type ErrorHandle func(err *token.CompilerError) bool

// Compiler assembles source text into bytecode. The zero-configured
// compiler aborts on the first error; SetErrorHandle installs multi-error
// collection.
type Compiler struct {
	handle ErrorHandle
	loads  []string
}

func New() *Compiler {
	return &Compiler{
		handle: func(err *token.CompilerError) bool { return true },
	}
}

func (c *Compiler) SetErrorHandle(handle ErrorHandle) {
	c.handle = handle
}

// Loads returns the names collected from the 'load' directives of the
// last Compile call: native module names and '.sq' source dependencies
// alike, in source order.
func (c *Compiler) Loads() []string {
	return c.loads
}

// Compile tokenizes the source, extracts leading 'load' directives and
// assembles the remaining token list. The returned buffer is a bare
// sequence of stream records; empty input produces an empty buffer.
func Compile(code string) ([]byte, error) {
	return New().Compile(code)
}

func (c *Compiler) Compile(code string) ([]byte, error) {

	c.loads = nil

	tokens, err := lexer.Tokenize(code)
	if err != nil {
		return nil, c.report(err)
	}

	// skip empty files
	if len(tokens) == 0 {
		return nil, nil
	}

	offset, err := c.extractLoads(tokens)
	if err != nil {
		return nil, c.report(err)
	}

	if len(tokens)-offset < 2 {
		return nil, c.report(&token.CompilerError{
			Unexpected: "end of scope",
			Expected:   "stream",
			Structure:  "function",
			Line:       tokens[offset].Line,
		})
	}

	// the top level is a bare function scope, emitted without the
	// enclosing FUN record; assembling stream-by-stream lets the error
	// handle skip a broken stream and continue with the next one
	var buffer []byte
	failed := 0

	for i := offset; i < len(tokens); i++ {

		tags := byte(0)

		if tokens[i].Category == token.Tag {
			tags = byte(tokens[i].Data)
			i++
			if i >= len(tokens) {
				return nil, c.report(&token.CompilerError{
					Unexpected: "end of input",
					Expected:   "start of stream",
					Structure:  "function",
					Line:       tokens[i-1].Line,
				})
			}
		}

		j, err := findStreamEnd(tokens, i, len(tokens))
		if err != nil {
			return nil, err
		}
		if j == -1 {
			return nil, c.report(&token.CompilerError{
				Unexpected: "end of input",
				Expected:   "end of stream",
				Structure:  "function",
				Line:       tokens[i].Line,
			})
		}

		stream, err := assembleStream(tokens, i, j, tags)
		if err != nil {
			if rerr := c.report(err); rerr != nil {
				return nil, rerr
			}
			failed++
			i = j
			continue
		}

		buffer = append(buffer, stream...)
		i = j
	}

	if failed > 0 {
		return nil, &token.CompilerError{
			Unexpected: fmt.Sprintf("end of input after %d collected error(s)", failed),
			Line:       tokens[len(tokens)-1].Line,
		}
	}

	return buffer, nil
}

// report passes a compiler error through the installed handle. It returns
// the error when compilation must stop and nil when the handle chose to
// continue.
func (c *Compiler) report(err error) error {
	var cerr *token.CompilerError
	if !errors.As(err, &cerr) {
		return err
	}
	if c.handle(cerr) || cerr.Critical {
		return err
	}
	return nil
}

// extractLoads consumes 'load "module"' lines at the top of the token
// list, records the module names and returns the offset of the first
// stream token.
func (c *Compiler) extractLoads(tokens []token.Token) (int, error) {

	if len(tokens) == 0 || tokens[0].Category != token.Load {
		return 0, nil
	}

	offset := 0
	line := 0

	for i := 0; i < len(tokens); i++ {
		tok := tokens[i]

		if line == tok.Line {
			continue
		}
		line = tok.Line

		if tok.Category != token.Load {
			return i, nil
		}

		if i+1 >= len(tokens) || tokens[i+1].Category != token.String || tokens[i+1].Anchor {
			return 0, &token.CompilerError{
				Unexpected: "token " + tok.Raw,
				Expected:   "load statement",
				Structure:  "header",
				Line:       tok.Line,
				Critical:   true,
			}
		}

		c.loads = append(c.loads, tokens[i+1].Clean)
		offset = i + 2
	}

	return offset, nil
}
