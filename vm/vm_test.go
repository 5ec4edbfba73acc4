package vm

import (
	"errors"
	"strings"
	"testing"

	"github.com/magistermaks/sequensa-sub000/compiler"
	"github.com/magistermaks/sequensa-sub000/seq"
)

// run compiles and executes a program, returning its result stream.
func run(t *testing.T, code string, setup func(exe *Executor)) seq.Stream {
	t.Helper()

	buffer, err := compiler.Compile(code)
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := NewExecutor()
	if setup != nil {
		setup(exe)
	}

	if err := exe.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
		t.Fatalf("Execute() raised an error: %v", err)
	}

	return exe.Results()
}

func numbers(t *testing.T, results seq.Stream) []float64 {
	t.Helper()
	out := make([]float64, len(results))
	for i, g := range results {
		num, ok := g.(*seq.Number)
		if !ok {
			t.Fatalf("results[%d] = %v, want number", i, g.DataType())
		}
		out[i] = num.Value
	}
	return out
}

func equalNumbers(t *testing.T, results seq.Stream, want []float64) {
	t.Helper()
	got := numbers(t, results)
	if len(got) != len(want) {
		t.Fatalf("results = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("results = %v, want %v", got, want)
		}
	}
}

// sumNative folds its input with '+'.
func sumNative(input seq.Stream) (seq.Stream, error) {
	total := 0.0
	for _, arg := range input {
		num, err := seq.NumberCast(arg)
		if err != nil {
			return nil, err
		}
		total += num.(*seq.Number).Value
	}
	return seq.Stream{seq.NewNumber(false, total)}, nil
}

// joinNative concatenates its input as strings.
func joinNative(input seq.Stream) (seq.Stream, error) {
	var builder strings.Builder
	for _, arg := range input {
		str, err := seq.StringCast(arg)
		if err != nil {
			return nil, err
		}
		builder.WriteString(str.(*seq.String).Value)
	}
	return seq.Stream{seq.NewString(false, builder.String())}, nil
}

func TestHelloWorld(t *testing.T) {

	results := run(t, `#exit << "Hello World!"`, nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if got := results[0].(*seq.String).Value; got != "Hello World!" {
		t.Errorf("result = %q, want \"Hello World!\"", got)
	}
}

func TestArithmetic(t *testing.T) {

	results := run(t, "#exit << ( 8 ** 2 * 9 - 5 * (( 12 + 12 - 25 ) ** 2) / 5 )", nil)
	equalNumbers(t, results, []float64{575})
}

func TestRangeFilter(t *testing.T) {

	results := run(t, `#exit << #[1:5] << 1 << null << 2 << "hello" << 3 << true << 4 << 5 << null`, nil)
	equalNumbers(t, results, []float64{2, 3, 4})
}

func TestFibonacci(t *testing.T) {

	code := "set fib << {\n" +
		"#final << #@ << #[true] << (@ <= 1)\n" +
		"#return << #sum << #fib << (@ - 1) << (@ - 2)\n" +
		"}\n" +
		"#exit << #fib << 9 << 11"

	results := run(t, code, func(exe *Executor) {
		exe.Inject("sum", sumNative)
	})

	equalNumbers(t, results, []float64{34, 89})
}

func TestAgainLoop(t *testing.T) {

	code := "#exit << #join << #string << #{\n" +
		"#return << @\n" +
		"#again << #(@ - 1) << #[true] << (@ > 0)\n" +
		"} << 10"

	results := run(t, code, func(exe *Executor) {
		exe.Inject("join", joinNative)
	})

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if got := results[0].(*seq.String).Value; got != "109876543210" {
		t.Errorf("result = %q, want \"109876543210\"", got)
	}
}

func TestBoolCasts(t *testing.T) {

	results := run(t, `#exit << #bool << 1 << null << "hello"`, nil)

	want := []bool{true, false, false}
	if len(results) != len(want) {
		t.Fatalf("len(results) = %d, want %d", len(results), len(want))
	}
	for i, value := range want {
		if got := results[i].(*seq.Bool).Value; got != value {
			t.Errorf("results[%d] = %v, want %v", i, got, value)
		}
	}
}

func TestDefaultResultIsNull(t *testing.T) {

	// a program that never exits emits {null}
	results := run(t, "set x << 1", nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].DataType() != seq.TypeNull {
		t.Errorf("result = %v, want null", results[0].DataType())
	}
}

func TestStreamOrderPreserved(t *testing.T) {

	// right-to-left evaluation still yields left-to-right output
	results := run(t, "#exit << 1 << 2 << 3 << 4", nil)
	equalNumbers(t, results, []float64{1, 2, 3, 4})
}

func TestVariableBinding(t *testing.T) {

	results := run(t, "set x << 10 << 20\n#exit << x", nil)
	equalNumbers(t, results, []float64{10, 20})
}

func TestTagCoverage(t *testing.T) {

	code := "#exit << #join << #{\n" +
		"first; #return << \"f\"\n" +
		"last; #return << \"l\"\n" +
		"end; #return << \"e\"\n" +
		"#return << \"a\"\n" +
		"} << 1 << 2 << 3"

	results := run(t, code, func(exe *Executor) {
		exe.Inject("join", joinNative)
	})

	// three inputs: first+always, always, last+always, then the end pass
	if got := results[0].(*seq.String).Value; got != "faalae" {
		t.Errorf("result = %q, want \"faalae\"", got)
	}
}

func TestSingleInputIsFirstAndLast(t *testing.T) {

	code := "#exit << #join << #{\n" +
		"first; #return << \"f\"\n" +
		"last; #return << \"l\"\n" +
		"} << 1"

	results := run(t, code, func(exe *Executor) {
		exe.Inject("join", joinNative)
	})

	if got := results[0].(*seq.String).Value; got != "fl" {
		t.Errorf("result = %q, want \"fl\"", got)
	}
}

func TestEmitInsertsNull(t *testing.T) {

	results := run(t, "#exit << #emit", nil)

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if results[0].DataType() != seq.TypeNull {
		t.Errorf("result = %v, want null", results[0].DataType())
	}
}

func TestAnchorSkipsOnEmptyAccumulator(t *testing.T) {

	// the flowc filters everything out, so the cast and the exit never
	// fire and the program completes normally
	results := run(t, "#exit << #string << #[5] << 1 << 2", nil)

	if results[0].DataType() != seq.TypeNull {
		t.Errorf("result = %v, want null", results[0].DataType())
	}
}

func TestAgainOnEndIterationFails(t *testing.T) {

	buffer, err := compiler.Compile("#exit << #{\nend; #again << #emit\n} << 1")
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := NewExecutor()
	err = exe.Execute(seq.NewByteBuffer(buffer), nil)

	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("Execute() = %v, want RuntimeError", err)
	}
}

func TestBreakStopsIteration(t *testing.T) {

	code := "#exit << #join << #{\n" +
		"#return << @\n" +
		"#break << #[true] << (@ = 2)\n" +
		"} << 1 << 2 << 3"

	results := run(t, code, func(exe *Executor) {
		exe.Inject("join", joinNative)
	})

	// break after processing 2 drops the remaining input
	if got := results[0].(*seq.String).Value; got != "12" {
		t.Errorf("result = %q, want \"12\"", got)
	}
}

func TestNestedScopeArgs(t *testing.T) {

	// '@@' reaches the argument of the enclosing scope
	code := "#exit << #{\n#return << #{\n#return << (@ + @@)\n} << 10\n} << 1 << 2"

	results := run(t, code, nil)
	equalNumbers(t, results, []float64{11, 12})
}

func TestFunctionValueCall(t *testing.T) {

	code := "set double << {\n#return << (@ * 2)\n}\n#exit << #double << 1 << 2 << 3"

	results := run(t, code, nil)
	equalNumbers(t, results, []float64{2, 4, 6})
}

func TestNativeReceivesSourceOrder(t *testing.T) {

	var seen []float64

	run(t, "#exit << #probe << 1 << 2 << 3", func(exe *Executor) {
		exe.Inject("probe", func(input seq.Stream) (seq.Stream, error) {
			for _, g := range input {
				seen = append(seen, g.(*seq.Number).Value)
			}
			return seq.Stream{seq.NewNull(false)}, nil
		})
	})

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 3 {
		t.Errorf("native saw %v, want [1 2 3]", seen)
	}
}

func TestNativeErrorUnwinds(t *testing.T) {

	buffer, err := compiler.Compile("#exit << #reject << 1")
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := NewExecutor()
	exe.Inject("reject", func(input seq.Stream) (seq.Stream, error) {
		return nil, &RuntimeError{Message: "rejected"}
	})

	err = exe.Execute(seq.NewByteBuffer(buffer), nil)

	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("Execute() = %v, want RuntimeError", err)
	}
}

func TestStrictModeUndefinedVariable(t *testing.T) {

	buffer, err := compiler.Compile("#exit << missing")
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	lenient := NewExecutor()
	if err := lenient.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
		t.Fatalf("lenient Execute() raised an error: %v", err)
	}

	strict := NewExecutor()
	strict.SetStrictMath(true)

	err = strict.Execute(seq.NewByteBuffer(buffer), nil)
	var rerr *RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("strict Execute() = %v, want RuntimeError", err)
	}
}

func TestPreBoundVariables(t *testing.T) {

	buffer, err := compiler.Compile("#exit << greeting")
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := NewExecutor()
	exe.Define("greeting", seq.Stream{seq.NewString(false, "hi")})

	if err := exe.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
		t.Fatalf("Execute() raised an error: %v", err)
	}

	if got := exe.Results()[0].(*seq.String).Value; got != "hi" {
		t.Errorf("result = %q, want \"hi\"", got)
	}
}

func TestResultString(t *testing.T) {

	buffer, err := compiler.Compile("#exit << 575")
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := NewExecutor()
	if err := exe.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
		t.Fatalf("Execute() raised an error: %v", err)
	}

	str, err := exe.ResultString()
	if err != nil {
		t.Fatalf("ResultString() raised an error: %v", err)
	}
	if str != "575" {
		t.Errorf("ResultString() = %q, want \"575\"", str)
	}
}

func TestLiteralCastReplacesInput(t *testing.T) {

	// an anchored literal acts as a constant cast over every input
	results := run(t, "#exit << #7 << 1 << 2 << 3", nil)
	equalNumbers(t, results, []float64{7, 7, 7})
}

func TestTypeFilterFlowc(t *testing.T) {

	results := run(t, `#exit << #[number] << 1 << "a" << 2 << true << 3`, nil)
	equalNumbers(t, results, []float64{1, 2, 3})
}
