// Package vm implements the Sequensa stream interpreter: it walks function
// bodies, matches stream tags, evaluates streams right-to-left, resolves
// names, dispatches anchors, performs casts and handles VM-call exits.
package vm

import (
	"errors"

	"github.com/magistermaks/sequensa-sub000/seq"
)

// Native is a host-provided function callable by anchored name. It
// receives its input stream in source order and constructs a fresh output
// stream.
type Native func(input seq.Stream) (seq.Stream, error)

// ResultType is the stream-level control outcome seen by the enclosing
// function loop.
type ResultType byte

const (
	ResultReturn ResultType = 1
	ResultBreak  ResultType = 2
	ResultExit   ResultType = 3
	ResultAgain  ResultType = 4
	ResultNone   ResultType = 5
	ResultFinal  ResultType = 6
)

// CommandResult pairs a stream's control outcome with its accumulator.
type CommandResult struct {
	Type ResultType
	Acc  seq.Stream
}

// Executor evaluates compiled bytecode. It owns its value graph and stack
// exclusively; the native table is read-only after injection.
type Executor struct {
	natives map[string]Native
	globals map[string]seq.Stream
	stack   []StackLevel
	result  seq.Stream
	strict  bool
}

func NewExecutor() *Executor {
	return &Executor{
		natives: map[string]Native{},
		globals: map[string]seq.Stream{},
	}
}

// Inject registers a native function under the given name.
func (e *Executor) Inject(name string, native Native) {
	e.natives[name] = native
}

// Define pre-binds a variable in the outermost scope of the next Execute.
func (e *Executor) Define(name string, value seq.Stream) {
	e.globals[name] = value.Copy()
}

// SetStrictMath elevates lenient Null results to runtime errors:
// mismatched expression operands and undefined variables fail instead of
// producing nothing.
func (e *Executor) SetStrictMath(strict bool) {
	e.strict = strict
}

// Reset drops all injected natives and pre-bound variables.
func (e *Executor) Reset() {
	e.natives = map[string]Native{}
	e.globals = map[string]seq.Stream{}
}

// Result returns the conventional exit value, the first element of the
// result stream.
func (e *Executor) Result() seq.Generic {
	if len(e.result) == 0 {
		return seq.NewNull(false)
	}
	return e.result[0]
}

// Results returns the full result stream.
func (e *Executor) Results() seq.Stream {
	return e.result
}

// ResultString renders the exit value as text.
func (e *Executor) ResultString() (string, error) {
	str, err := seq.StringCast(e.Result())
	if err != nil {
		return "", err
	}
	return str.(*seq.String).Value, nil
}

// Execute runs the bytecode with the given input stream; a nil input runs
// the program with a single Null. On normal completion the result stream
// is {null}; an 'exit' VM-call replaces it with the exit payload.
func (e *Executor) Execute(bb *seq.ByteBuffer, args seq.Stream) error {

	if args == nil {
		args = seq.Stream{seq.NewNull(false)}
	}

	e.stack = e.stack[:0]
	e.result = nil

	_, err := e.executeFunction(bb.Reader(), &args)
	if err != nil {
		var interrupt *ExecutorInterrupt
		if errors.As(err, &interrupt) {
			// result already set by exit
			return nil
		}
		return err
	}

	e.result = seq.Stream{seq.NewNull(false)}
	return nil
}

// Level returns the stack level at the given index, or nil.
func (e *Executor) Level(level int) *StackLevel {
	if level < 0 || level >= len(e.stack) {
		return nil
	}
	return &e.stack[level]
}

// TopLevel returns the innermost stack level.
func (e *Executor) TopLevel() *StackLevel {
	return &e.stack[len(e.stack)-1]
}

// exit stores the program result and produces the interrupt that unwinds
// every nested invocation.
func (e *Executor) exit(stream seq.Stream, code byte) error {
	if len(stream) == 0 {
		return &seq.InternalError{Message: "unable to exit without arguments"}
	}

	e.result = stream
	return &ExecutorInterrupt{Code: code}
}

// executeFunction runs a function body once per input value, plus one
// extra END pass, re-reading the body from the start on every pass and
// executing each stream record whose tags match.
func (e *Executor) executeFunction(fbr *seq.BufferReader, input *seq.Stream) (seq.Stream, error) {

	e.stack = append(e.stack, newStackLevel())
	if len(e.stack) == 1 {
		for name, value := range e.globals {
			e.stack[0].SetVar(name, value)
		}
	}
	defer func() {
		e.stack = e.stack[:len(e.stack)-1]
	}()

	var acc seq.Stream

	for i := 0; i <= len(*input); i++ {

		size := len(*input)
		tags := seq.PackTags(i, size)
		br := fbr.Copy()

		if i == size {
			e.TopLevel().SetArg(seq.NewNull(false))
		} else {
			e.TopLevel().SetArg((*input)[i])
		}

		for br.HasNext() {

			tk, err := br.Next()
			if err != nil {
				return nil, err
			}

			cr, err := e.executeCommand(tk, tags)
			if err != nil {
				return nil, err
			}

			switch cr.Type {

			case ResultReturn:
				acc = append(acc, cr.Acc...)

			case ResultBreak:
				return acc, nil

			case ResultFinal:
				acc = append(acc, cr.Acc...)
				return acc, nil

			case ResultExit:
				return nil, e.exit(cr.Acc, 0)

			case ResultAgain:
				if i == size {
					return nil, &RuntimeError{Message: "'again' can not be called from an 'end' tagged stream"}
				}
				spliced := make(seq.Stream, 0, len(*input)+len(cr.Acc))
				spliced = append(spliced, (*input)[:i+1]...)
				spliced = append(spliced, cr.Acc...)
				spliced = append(spliced, (*input)[i+1:]...)
				*input = spliced
			}
		}
	}

	return acc, nil
}

// executeCommand runs one stream record if its tag mask matches the
// current pass. Functions can only contain streams.
func (e *Executor) executeCommand(tk *seq.TokenReader, tags byte) (CommandResult, error) {

	if tk.DataType() != seq.TypeStream {
		return CommandResult{}, &seq.InternalError{Message: "invalid command in function"}
	}

	stream := tk.Generic().(*seq.SubStream)
	if !stream.MatchesTags(tags) {
		return CommandResult{Type: ResultNone}, nil
	}

	values, err := stream.Reader.Copy().ReadAll()
	if err != nil {
		return CommandResult{}, err
	}

	return e.executeStream(values)
}

// executeStream scans a decoded stream right-to-left into an accumulator.
// Plain values are prepended, keeping them in source order for an anchored
// value. Values resolved from a name are appended instead, so they follow
// the plain values that stand to the right of the name.
func (e *Executor) executeStream(gs seq.Stream) (CommandResult, error) {

	var acc seq.Stream

	for i := len(gs) - 1; i >= 0; i-- {

		g := gs[i]
		t := g.DataType()

		// unsolid values are computed first
		if t == seq.TypeExpr || t == seq.TypeArg {
			solid, err := e.executeExpr(g)
			if err != nil {
				return CommandResult{}, err
			}
			g = solid
			t = g.DataType()
		}

		if g.Anchor() {

			// 'emit' only guarantees the accumulator is non-empty
			if call, ok := g.(*seq.VMCall); ok && call.Value == seq.CallEmit {
				if len(acc) == 0 {
					acc = append(acc, seq.NewNull(false))
				}
				continue
			}

			// with an empty accumulator there is nothing to execute
			if len(acc) == 0 {
				continue
			}

			if call, ok := g.(*seq.VMCall); ok {
				return CommandResult{Type: ResultType(call.Value), Acc: acc}, nil
			}

			result, err := e.executeAnchor(g, acc)
			if err != nil {
				return CommandResult{}, err
			}
			acc = result
			continue
		}

		if name, ok := g.(*seq.Name); ok {

			if name.Define {
				e.TopLevel().SetVar(name.Value, acc)
				acc = nil
				continue
			}

			resolved, err := e.resolveName(name.Value, name.Anchor())
			if err != nil {
				return CommandResult{}, err
			}
			acc = append(acc, resolved...)
			continue
		}

		// a plain solid value joins the front of the accumulator
		acc = append(seq.Stream{g}, acc...)
	}

	return CommandResult{Type: ResultNone, Acc: acc}, nil
}

// executeAnchor applies an anchored value to the accumulated stream:
// names call natives or stored streams, functions run their bodies, flow
// controllers filter, anything else casts.
func (e *Executor) executeAnchor(entity seq.Generic, input seq.Stream) (seq.Stream, error) {

	switch value := entity.(type) {

	case *seq.Name:
		if native, ok := e.natives[value.Value]; ok {
			return native(input)
		}

		resolved, err := e.resolveName(value.Value, true)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, input...)
		cr, err := e.executeStream(resolved)
		if err != nil {
			return nil, err
		}
		return cr.Acc, nil

	case *seq.Function:
		return e.executeFunction(value.Reader.Copy(), &input)

	case *seq.Flowc:
		return e.executeFlowc(value.Conditions, input), nil
	}

	// everything else acts as a cast over the input
	output := make(seq.Stream, 0, len(input))
	for _, g := range input {
		cast, err := e.executeCast(entity, g)
		if err != nil {
			return nil, err
		}
		output = append(output, cast)
	}
	return output, nil
}

// resolveName searches the stack innermost outward. A missing name yields
// an empty stream, or a runtime error in strict mode.
func (e *Executor) resolveName(name string, anchor bool) (seq.Stream, error) {

	for i := len(e.stack) - 1; i >= 0; i-- {
		if values, ok := e.stack[i].Var(name, anchor); ok {
			return values, nil
		}
	}

	if e.strict {
		return nil, &RuntimeError{Message: "undefined variable: '" + name + "'"}
	}
	return nil, nil
}

// executeFlowc keeps the input values accepted by at least one clause.
func (e *Executor) executeFlowc(conditions []*seq.FlowCondition, input seq.Stream) seq.Stream {

	var acc seq.Stream

	for _, arg := range input {
		for _, condition := range conditions {
			if condition.Validate(arg) {
				acc = append(acc, arg)
				break
			}
		}
	}

	return acc
}

// executeCast applies a cast value to one input value. Literal values
// replace the input outright, with the anchor cleared; a Type value
// converts the input.
func (e *Executor) executeCast(cast seq.Generic, arg seq.Generic) (seq.Generic, error) {

	switch value := cast.(type) {

	case *seq.Bool, *seq.Null, *seq.Number, *seq.String, *seq.VMCall, *seq.Flowc, *seq.Function:
		c := cast.Copy()
		c.SetAnchor(false)
		return c, nil

	case *seq.Type:
		switch value.Value {
		case seq.TypeBool:
			return seq.BoolCast(arg)
		case seq.TypeNumber:
			return seq.NumberCast(arg)
		case seq.TypeString:
			return seq.StringCast(arg)
		}
		return nil, &seq.InternalError{Message: "invalid cast"}
	}

	// streams, names, expressions and args can not act as casts
	return nil, &seq.InternalError{Message: "invalid cast"}
}
