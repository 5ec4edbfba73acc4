package vm

import (
	"fmt"
	"strconv"
)

// RuntimeError reports valid bytecode that cannot execute: 'again' on the
// end iteration, a native function rejecting its input, an undefined
// variable in strict mode.
type RuntimeError struct {
	Message string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("💥 RuntimeError: %s", e.Message)
}

// ExecutorInterrupt is not an error: it carries the exit code of an 'exit'
// VM-call up the call stack. Only the top-level Execute treats it as a
// normal termination.
type ExecutorInterrupt struct {
	Code byte
}

func (e *ExecutorInterrupt) Error() string {
	return "executor interrupt: " + strconv.Itoa(int(e.Code))
}
