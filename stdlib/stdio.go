package stdlib

import (
	"bufio"
	"fmt"
	"os"

	"github.com/magistermaks/sequensa-sub000/seq"
	"github.com/magistermaks/sequensa-sub000/vm"
)

var stdin = bufio.NewScanner(os.Stdin)

func init() {
	stdin.Split(bufio.ScanWords)
}

func stdOut(input seq.Stream) (seq.Stream, error) {
	for _, arg := range input {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		fmt.Print(value)
	}
	return nil, nil
}

func stdOutln(input seq.Stream) (seq.Stream, error) {
	for _, arg := range input {
		value, err := stringArg(arg)
		if err != nil {
			return nil, err
		}
		fmt.Println(value)
	}
	return nil, nil
}

// stdIn reads one whitespace-separated word per input value.
func stdIn(input seq.Stream) (seq.Stream, error) {
	output := make(seq.Stream, 0, len(input))
	for range input {
		if !stdin.Scan() {
			output = append(output, seq.NewNull(false))
			continue
		}
		output = append(output, seq.NewString(false, stdin.Text()))
	}
	return output, nil
}

func stdFlush(input seq.Stream) (seq.Stream, error) {
	os.Stdout.Sync()
	return nil, nil
}

func registerStdio(exe *vm.Executor, header *seq.FileHeader) error {

	exe.Inject("std:out", stdOut)
	exe.Inject("std:outln", stdOutln)
	exe.Inject("std:in", stdIn)
	exe.Inject("std:flush", stdFlush)

	return nil
}
