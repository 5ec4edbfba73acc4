package seq

// Generic is the single sum type carried by every stream slot. The closed
// set of variants is: Null, Bool, Number, String, Type, VMCall, Arg, Name,
// Function, Expression, Flowc and SubStream.
//
// Every value carries an anchor bit. Copy returns a deep copy of the value;
// body readers are duplicated as position triples, never as bytes.
type Generic interface {
	DataType() DataType
	Anchor() bool
	SetAnchor(anchor bool)
	Copy() Generic
}

// Stream is an ordered sequence of values, the universal data-flow unit.
// It is used as function input, function accumulator, variable binding and
// program result.
type Stream []Generic

// Copy deep-copies every value of the stream.
func (s Stream) Copy() Stream {
	out := make(Stream, len(s))
	for i, g := range s {
		out[i] = g.Copy()
	}
	return out
}

// generic holds the state shared by all variants.
type generic struct {
	anchor bool
}

func (g *generic) Anchor() bool {
	return g.anchor
}

func (g *generic) SetAnchor(anchor bool) {
	g.anchor = anchor
}

// Null is the terminal/empty value.
type Null struct {
	generic
}

func NewNull(anchor bool) *Null {
	return &Null{generic{anchor}}
}

func (*Null) DataType() DataType { return TypeNull }

func (n *Null) Copy() Generic {
	c := *n
	return &c
}

type Bool struct {
	generic
	Value bool
}

func NewBool(anchor bool, value bool) *Bool {
	return &Bool{generic{anchor}, value}
}

func (*Bool) DataType() DataType { return TypeBool }

func (b *Bool) Copy() Generic {
	c := *b
	return &c
}

type String struct {
	generic
	Value string
}

func NewString(anchor bool, value string) *String {
	return &String{generic{anchor}, value}
}

func (*String) DataType() DataType { return TypeString }

func (s *String) Copy() Generic {
	c := *s
	return &c
}

// Type is a data type used as a value, either a cast target or a
// flow-controller clause.
type Type struct {
	generic
	Value DataType
}

func NewType(anchor bool, value DataType) *Type {
	return &Type{generic{anchor}, value}
}

func (*Type) DataType() DataType { return TypeType }

func (t *Type) Copy() Generic {
	c := *t
	return &c
}

// VMCall is a control-flow sentinel. It behaves as a value until reached
// anchored in a stream.
type VMCall struct {
	generic
	Value CallType
}

func NewVMCall(anchor bool, value CallType) *VMCall {
	return &VMCall{generic{anchor}, value}
}

func (*VMCall) DataType() DataType { return TypeVMCall }

func (v *VMCall) Copy() Generic {
	c := *v
	return &c
}

// Arg refers to the argument of the Level-th enclosing scope; level 0 is
// the current scope.
type Arg struct {
	generic
	Level byte
}

func NewArg(anchor bool, level byte) *Arg {
	return &Arg{generic{anchor}, level}
}

func (*Arg) DataType() DataType { return TypeArg }

func (a *Arg) Copy() Generic {
	c := *a
	return &c
}

// Name is a variable reference, or a binding site when Define is set.
type Name struct {
	generic
	Define bool
	Value  string
}

func NewName(anchor bool, define bool, value string) *Name {
	return &Name{generic{anchor}, define, value}
}

func (*Name) DataType() DataType { return TypeName }

func (n *Name) Copy() Generic {
	c := *n
	return &c
}

// Function owns a reader over the bytecode slice of its body. The body is
// decoded lazily, once per invocation.
type Function struct {
	generic
	Reader *BufferReader
}

func NewFunction(anchor bool, reader *BufferReader) *Function {
	return &Function{generic{anchor}, reader}
}

func (*Function) DataType() DataType { return TypeFunc }

func (f *Function) Copy() Generic {
	return &Function{f.generic, f.Reader.Copy()}
}

// Expression owns one-value readers for its left and right operands.
type Expression struct {
	generic
	Op    ExprOperator
	Left  *BufferReader
	Right *BufferReader
}

func NewExpression(anchor bool, op ExprOperator, left, right *BufferReader) *Expression {
	return &Expression{generic{anchor}, op, left, right}
}

func (*Expression) DataType() DataType { return TypeExpr }

func (e *Expression) Copy() Generic {
	return &Expression{e.generic, e.Op, e.Left.Copy(), e.Right.Copy()}
}

// Flowc is an ordered list of flow conditions; an input passes when at
// least one condition accepts it.
type Flowc struct {
	generic
	Conditions []*FlowCondition
}

func NewFlowc(anchor bool, conditions []*FlowCondition) *Flowc {
	return &Flowc{generic{anchor}, conditions}
}

func (*Flowc) DataType() DataType { return TypeFlowc }

func (f *Flowc) Copy() Generic {
	conditions := make([]*FlowCondition, len(f.Conditions))
	for i, fc := range f.Conditions {
		conditions[i] = fc.Copy()
	}
	return &Flowc{f.generic, conditions}
}

// SubStream is a tagged stream record. It only appears inside function
// bodies.
type SubStream struct {
	generic
	Tags   byte
	Reader *BufferReader
}

func NewSubStream(anchor bool, tags byte, reader *BufferReader) *SubStream {
	return &SubStream{generic{anchor}, tags, reader}
}

func (*SubStream) DataType() DataType { return TypeStream }

func (s *SubStream) Copy() Generic {
	return &SubStream{s.generic, s.Tags, s.Reader.Copy()}
}

// MatchesTags reports whether this stream record runs under the given
// iteration tags. A record tagged END runs only on the END pass; an
// untagged record always runs; otherwise the record must share one of the
// active FIRST/LAST tags.
func (s *SubStream) MatchesTags(tags byte) bool {

	// execute stream on end ONLY if it has that tag
	if tags&TagEnd != 0 {
		return s.Tags&TagEnd != 0
	}

	// stream doesn't have any tags
	if s.Tags == 0 {
		return true
	}

	// a record tagged only END shares no FIRST/LAST tag and waits for the
	// end pass
	return s.Tags&tags&(TagFirst|TagLast) != 0
}

// FlowConditionType discriminates flow-controller clauses.
type FlowConditionType byte

const (
	FlowConditionTypeType  FlowConditionType = 1
	FlowConditionTypeValue FlowConditionType = 2
	FlowConditionTypeRange FlowConditionType = 3
)

// FlowCondition is a single clause of a flow controller: a Type clause, a
// Value clause, or a Range clause spanning (A, B).
type FlowCondition struct {
	Type FlowConditionType
	A    Generic
	B    Generic
}

func (fc *FlowCondition) Copy() *FlowCondition {
	c := &FlowCondition{Type: fc.Type, A: fc.A.Copy()}
	if fc.B != nil {
		c.B = fc.B.Copy()
	}
	return c
}

// Validate reports whether the clause accepts the given value. Value
// clauses compare Null always, Bool by value and Number by double; Range
// clauses pass Numbers strictly between A and B.
func (fc *FlowCondition) Validate(arg Generic) bool {

	switch fc.Type {

	case FlowConditionTypeValue:
		if arg.DataType() != fc.A.DataType() {
			return false
		}
		switch a := fc.A.(type) {
		case *Null:
			return true
		case *Bool:
			return a.Value == arg.(*Bool).Value
		case *Number:
			return a.Value == arg.(*Number).Value
		}
		return false

	case FlowConditionTypeType:
		return arg.DataType() == fc.A.(*Type).Value

	case FlowConditionTypeRange:
		if num, ok := arg.(*Number); ok {
			return num.Value > fc.A.(*Number).Value && num.Value < fc.B.(*Number).Value
		}
		return false
	}

	return false
}
