package vm

import "github.com/magistermaks/sequensa-sub000/seq"

// StackLevel is one executor scope: the current argument value plus the
// variables bound at this level. Level index 0 is the outermost program
// scope.
type StackLevel struct {
	arg  seq.Generic
	vars map[string]seq.Stream
}

func newStackLevel() StackLevel {
	return StackLevel{
		arg:  seq.NewNull(false),
		vars: map[string]seq.Stream{},
	}
}

// Arg returns a copy of the current argument.
func (l *StackLevel) Arg() seq.Generic {
	return l.arg.Copy()
}

func (l *StackLevel) SetArg(arg seq.Generic) {
	l.arg = arg
}

// Var returns copies of the values bound to name, each with the anchor bit
// forced to the given state.
func (l *StackLevel) Var(name string, anchor bool) (seq.Stream, bool) {
	values, ok := l.vars[name]
	if !ok {
		return nil, false
	}

	out := make(seq.Stream, len(values))
	for i, g := range values {
		c := g.Copy()
		c.SetAnchor(anchor)
		out[i] = c
	}
	return out, true
}

// SetVar binds name to a copy of the given stream.
func (l *StackLevel) SetVar(name string, value seq.Stream) {
	l.vars[name] = value.Copy()
}
