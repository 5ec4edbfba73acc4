package stdlib

import (
	"testing"

	"github.com/magistermaks/sequensa-sub000/compiler"
	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

func runWithModules(t *testing.T, code string, names ...string) seq.Stream {
	t.Helper()

	buffer, err := compiler.Compile(code)
	if err != nil {
		t.Fatalf("Compile() raised an error: %v", err)
	}

	exe := vm.NewExecutor()
	header := seq.NewFileHeader(seq.APIVersionMajor, seq.APIVersionMinor, seq.APIVersionPatch, map[string]string{
		"time": "1595000000",
		"load": "std:math",
	})

	for _, name := range names {
		if err := Load(exe, header, name); err != nil {
			t.Fatalf("Load(%q) raised an error: %v", name, err)
		}
	}

	if err := exe.Execute(seq.NewByteBuffer(buffer), nil); err != nil {
		t.Fatalf("Execute() raised an error: %v", err)
	}
	return exe.Results()
}

func TestUnknownModule(t *testing.T) {
	if err := Load(vm.NewExecutor(), seq.NewFileHeader(1, 0, 0, nil), "std:nope"); err == nil {
		t.Error("Load() with unknown module did not fail")
	}
}

func TestModulesListsEverything(t *testing.T) {
	names := Modules()
	if len(names) != len(modules) {
		t.Fatalf("Modules() = %v, want %d entries", names, len(modules))
	}
}

func TestMathSum(t *testing.T) {

	results := runWithModules(t, "#exit << #std:sum << 1 << 2 << 3 << 4", "std:math")

	if got := results[0].(*seq.Number).Value; got != 10 {
		t.Errorf("sum = %v, want 10", got)
	}
}

func TestMathMinMax(t *testing.T) {

	results := runWithModules(t, "#exit << #std:min << 4 << 1 << 3", "std:math")
	if got := results[0].(*seq.Number).Value; got != 1 {
		t.Errorf("min = %v, want 1", got)
	}

	results = runWithModules(t, "#exit << #std:max << 4 << 1 << 3", "std:math")
	if got := results[0].(*seq.Number).Value; got != 4 {
		t.Errorf("max = %v, want 4", got)
	}
}

func TestStringCase(t *testing.T) {

	results := runWithModules(t, `#exit << #std:uppercase << "abc" << "Def"`, "std:string")

	if got := results[0].(*seq.String).Value; got != "ABC" {
		t.Errorf("uppercase = %q, want \"ABC\"", got)
	}
	if got := results[1].(*seq.String).Value; got != "DEF" {
		t.Errorf("uppercase = %q, want \"DEF\"", got)
	}
}

func TestStringConcat(t *testing.T) {

	results := runWithModules(t, `#exit << #std:concat << "a" << 1 << true`, "std:string")

	if got := results[0].(*seq.String).Value; got != "a1true" {
		t.Errorf("concat = %q, want \"a1true\"", got)
	}
}

func TestStringExplode(t *testing.T) {

	results := runWithModules(t, `#exit << #std:explode << "abc"`, "std:string")

	if len(results) != 3 {
		t.Fatalf("len(results) = %d, want 3", len(results))
	}
	if got := results[1].(*seq.String).Value; got != "b" {
		t.Errorf("explode[1] = %q, want \"b\"", got)
	}
}

func TestMetaVersion(t *testing.T) {

	results := runWithModules(t, "#exit << #std:meta:major << null", "std:meta")

	if got := results[0].(*seq.Number).Value; got != seq.APIVersionMajor {
		t.Errorf("meta:major = %v, want %d", got, seq.APIVersionMajor)
	}
}

func TestMetaLibs(t *testing.T) {

	results := runWithModules(t, "#exit << #std:meta:libs << null", "std:meta")

	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	if got := results[0].(*seq.String).Value; got != "std:math" {
		t.Errorf("meta:libs = %q, want \"std:math\"", got)
	}
}

func TestRandIsSeedable(t *testing.T) {

	// the same seed yields the same sequence
	first := runWithModules(t, "#exit << #std:rand << #emit << #std:srand << 7", "std:rand")
	second := runWithModules(t, "#exit << #std:rand << #emit << #std:srand << 7", "std:rand")

	if first[0].(*seq.Number).Value != second[0].(*seq.Number).Value {
		t.Error("seeded rand sequences differ")
	}
}
