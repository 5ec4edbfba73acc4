package stdlib

import (
	"math"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// mapNumbers lifts a float64 function into a native applied per input
// value.
func mapNumbers(fn func(float64) float64) vm.Native {
	return func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for _, arg := range input {
			value, err := numberArg(arg)
			if err != nil {
				return nil, err
			}
			output = append(output, seq.NewNumber(false, fn(value)))
		}
		return output, nil
	}
}

// foldNumbers lifts a binary float64 function into a native folding the
// whole input into one value.
func foldNumbers(fn func(a, b float64) float64) vm.Native {
	return func(input seq.Stream) (seq.Stream, error) {
		if len(input) == 0 {
			return seq.Stream{seq.NewNull(false)}, nil
		}

		acc, err := numberArg(input[0])
		if err != nil {
			return nil, err
		}
		for _, arg := range input[1:] {
			value, err := numberArg(arg)
			if err != nil {
				return nil, err
			}
			acc = fn(acc, value)
		}

		return seq.Stream{seq.NewNumber(false, acc)}, nil
	}
}

func registerMath(exe *vm.Executor, header *seq.FileHeader) error {

	exe.Inject("std:sin", mapNumbers(math.Sin))
	exe.Inject("std:cos", mapNumbers(math.Cos))
	exe.Inject("std:tan", mapNumbers(math.Tan))
	exe.Inject("std:abs", mapNumbers(math.Abs))
	exe.Inject("std:sqrt", mapNumbers(math.Sqrt))
	exe.Inject("std:round", mapNumbers(math.Round))
	exe.Inject("std:floor", mapNumbers(math.Floor))
	exe.Inject("std:ceil", mapNumbers(math.Ceil))
	exe.Inject("std:deg", mapNumbers(func(v float64) float64 { return v * 180 / math.Pi }))

	exe.Inject("std:sum", foldNumbers(func(a, b float64) float64 { return a + b }))
	exe.Inject("std:min", foldNumbers(math.Min))
	exe.Inject("std:max", foldNumbers(math.Max))

	return nil
}
