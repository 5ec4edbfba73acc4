package seq

import "fmt"

// InternalError reports bytecode-level corruption or an impossible
// interpreter state: an unknown opcode, a bad length width, an invalid
// cast, an illegal name character.
type InternalError struct {
	Message string
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("🤖 InternalError: %s", e.Message)
}
