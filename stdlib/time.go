package stdlib

import (
	"time"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

// stdTime yields the current POSIX time once per input value.
func stdTime(input seq.Stream) (seq.Stream, error) {
	output := make(seq.Stream, 0, len(input))
	for range input {
		output = append(output, seq.NewNumber(false, float64(time.Now().Unix())))
	}
	return output, nil
}

// stdSleep pauses for each input value, read as milliseconds.
func stdSleep(input seq.Stream) (seq.Stream, error) {
	for _, arg := range input {
		millis, err := numberArg(arg)
		if err != nil {
			return nil, err
		}
		time.Sleep(time.Duration(int64(millis)) * time.Millisecond)
	}
	return nil, nil
}

func registerTime(exe *vm.Executor, header *seq.FileHeader) error {

	exe.Inject("std:time", stdTime)
	exe.Inject("std:sleep", stdSleep)

	return nil
}
