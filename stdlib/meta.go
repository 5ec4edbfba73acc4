package stdlib

import (
	"strconv"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// repeatNumber yields the same number once per input value.
func repeatNumber(value float64) vm.Native {
	return func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for range input {
			output = append(output, seq.NewNumber(false, value))
		}
		return output, nil
	}
}

// registerMeta exposes the header of the executing file: version triplet,
// arbitrary header values, the build time and the loaded module list.
func registerMeta(exe *vm.Executor, header *seq.FileHeader) error {

	exe.Inject("std:meta:major", repeatNumber(float64(header.VersionMajor())))
	exe.Inject("std:meta:minor", repeatNumber(float64(header.VersionMinor())))
	exe.Inject("std:meta:patch", repeatNumber(float64(header.VersionPatch())))

	exe.Inject("std:meta:value", func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for _, arg := range input {
			str, ok := arg.(*seq.String)
			if !ok {
				output = append(output, seq.NewNull(false))
				continue
			}
			if value, ok := header.Value(str.Value); ok {
				output = append(output, seq.NewString(false, value))
			} else {
				output = append(output, seq.NewNull(false))
			}
		}
		return output, nil
	})

	exe.Inject("std:meta:build_time", func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for range input {
			value, ok := header.Value("time")
			if !ok {
				output = append(output, seq.NewNull(false))
				continue
			}
			seconds, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				output = append(output, seq.NewNull(false))
				continue
			}
			output = append(output, seq.NewNumber(false, float64(seconds)))
		}
		return output, nil
	})

	exe.Inject("std:meta:libs", func(input seq.Stream) (seq.Stream, error) {
		var output seq.Stream
		for range input {
			for _, lib := range header.ValueTable("load") {
				output = append(output, seq.NewString(false, lib))
			}
		}
		return output, nil
	})

	return nil
}
