package stdlib

import (
	"math/rand"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

func registerRand(exe *vm.Executor, header *seq.FileHeader) error {

	source := rand.New(rand.NewSource(1))

	// one random integer per input value
	exe.Inject("std:rand", func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for range input {
			output = append(output, seq.NewNumber(false, float64(source.Int31())))
		}
		return output, nil
	})

	exe.Inject("std:srand", func(input seq.Stream) (seq.Stream, error) {
		for _, arg := range input {
			value, err := numberArg(arg)
			if err != nil {
				return nil, err
			}
			source.Seed(int64(value))
		}
		return nil, nil
	})

	return nil
}
