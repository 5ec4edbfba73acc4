// Package stdlib provides the built-in native modules of the Sequensa
// runtime. A compiled program requests them through 'load' directives
// recorded in its file header; the driver resolves each name here and
// injects the module's natives into the executor.
package stdlib

import (
	"fmt"
	"sort"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// Module injects a set of natives into an executor. The file header is
// passed along so modules can expose build metadata.
type Module func(exe *vm.Executor, header *seq.FileHeader) error

var modules = map[string]Module{
	"std:math":   registerMath,
	"std:string": registerString,
	"std:stdio":  registerStdio,
	"std:time":   registerTime,
	"std:meta":   registerMeta,
	"std:rand":   registerRand,
}

// Load resolves a module by name and injects its natives.
func Load(exe *vm.Executor, header *seq.FileHeader, name string) error {
	module, ok := modules[name]
	if !ok {
		return fmt.Errorf("unknown native module: '%s'", name)
	}
	return module(exe, header)
}

// Modules lists all known module names.
func Modules() []string {
	names := make([]string, 0, len(modules))
	for name := range modules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// numberArg reads one input value as a float64.
func numberArg(arg seq.Generic) (float64, error) {
	num, err := seq.NumberCast(arg)
	if err != nil {
		return 0, err
	}
	return num.(*seq.Number).Value, nil
}

// stringArg reads one input value as a string.
func stringArg(arg seq.Generic) (string, error) {
	str, err := seq.StringCast(arg)
	if err != nil {
		return "", err
	}
	return str.(*seq.String).Value, nil
}
