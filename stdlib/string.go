package stdlib

import (
	"strings"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// mapStrings lifts a string function into a native applied per input
// value.
func mapStrings(fn func(string) string) vm.Native {
	return func(input seq.Stream) (seq.Stream, error) {
		output := make(seq.Stream, 0, len(input))
		for _, arg := range input {
			value, err := stringArg(arg)
			if err != nil {
				return nil, err
			}
			output = append(output, seq.NewString(false, fn(value)))
		}
		return output, nil
	}
}

func stdConcat(input seq.Stream) (seq.Stream, error) {
	var builder strings.Builder
	for _, arg := range input {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		builder.WriteString(value)
	}
	return seq.Stream{seq.NewString(false, builder.String())}, nil
}

// stdJoin concatenates the tail of its input with the first value as
// separator.
func stdJoin(input seq.Stream) (seq.Stream, error) {
	if len(input) == 0 {
		return seq.Stream{seq.NewString(false, "")}, nil
	}

	separator, err := stringArg(input[0])
	if err != nil {
		return nil, err
	}

	parts := make([]string, 0, len(input)-1)
	for _, arg := range input[1:] {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		parts = append(parts, value)
	}

	return seq.Stream{seq.NewString(false, strings.Join(parts, separator))}, nil
}

// stdSplit splits the tail of its input on the first value.
func stdSplit(input seq.Stream) (seq.Stream, error) {
	if len(input) == 0 {
		return nil, nil
	}

	delim, err := stringArg(input[0])
	if err != nil {
		return nil, err
	}
	if delim == "" {
		return input, nil
	}

	var output seq.Stream
	for _, arg := range input[1:] {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		for _, part := range strings.Split(value, delim) {
			output = append(output, seq.NewString(false, part))
		}
	}

	return output, nil
}

// stdExplode splits every input string into single-byte strings.
func stdExplode(input seq.Stream) (seq.Stream, error) {
	var output seq.Stream
	for _, arg := range input {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		for i := 0; i < len(value); i++ {
			output = append(output, seq.NewString(false, value[i:i+1]))
		}
	}
	return output, nil
}

func stdFromCode(input seq.Stream) (seq.Stream, error) {
	output := make(seq.Stream, 0, len(input))
	for _, arg := range input {
		code, err := numberArg(arg)
		if err != nil {
			return nil, err
		}
		output = append(output, seq.NewString(false, string([]byte{byte(int64(code))})))
	}
	return output, nil
}

func stdToCode(input seq.Stream) (seq.Stream, error) {
	output := make(seq.Stream, 0, len(input))
	for _, arg := range input {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		if value == "" {
			output = append(output, seq.NewNull(false))
			continue
		}
		output = append(output, seq.NewNumber(false, float64(value[0])))
	}
	return output, nil
}

// stdSubstr slices the tail of its input between the byte offsets given
// by the first two values.
func stdSubstr(input seq.Stream) (seq.Stream, error) {
	if len(input) < 2 {
		return seq.Stream{seq.NewBool(false, false)}, nil
	}

	start, err := numberArg(input[0])
	if err != nil {
		return nil, err
	}
	end, err := numberArg(input[1])
	if err != nil {
		return nil, err
	}

	output := make(seq.Stream, 0, len(input)-2)
	for _, arg := range input[2:] {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}

		lo := int(start)
		hi := int(end)
		if lo < 0 || hi < lo || lo > len(value) {
			return seq.Stream{seq.NewString(false, "")}, nil
		}
		if hi > len(value) {
			hi = len(value)
		}

		output = append(output, seq.NewString(false, value[lo:hi]))
	}

	return output, nil
}

// stdFindstr reports the byte offset of the first value inside each of
// the remaining ones, -1 when absent.
func stdFindstr(input seq.Stream) (seq.Stream, error) {
	if len(input) == 0 {
		return seq.Stream{seq.NewNumber(false, -1)}, nil
	}

	delim, err := stringArg(input[0])
	if err != nil {
		return nil, err
	}
	if delim == "" {
		return seq.Stream{seq.NewNumber(false, -1)}, nil
	}

	output := make(seq.Stream, 0, len(input)-1)
	for _, arg := range input[1:] {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		output = append(output, seq.NewNumber(false, float64(strings.Index(value, delim))))
	}

	return output, nil
}

func registerString(exe *vm.Executor, header *seq.FileHeader) error {

	exe.Inject("std:uppercase", mapStrings(strings.ToUpper))
	exe.Inject("std:lowercase", mapStrings(strings.ToLower))
	exe.Inject("std:concat", stdConcat)
	exe.Inject("std:join", stdJoin)
	exe.Inject("std:split", stdSplit)
	exe.Inject("std:explode", stdExplode)
	exe.Inject("std:from_code", stdFromCode)
	exe.Inject("std:to_code", stdToCode)
	exe.Inject("std:substr", stdSubstr)
	exe.Inject("std:findstr", stdFindstr)

	return nil
}
