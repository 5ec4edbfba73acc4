package token

import (
	"fmt"
	"strconv"
)

// CompilerError reports a source-level problem: an unexpected token, a
// missing token, an unterminated string or bracket, a malformed
// expression. The formatted message concatenates whichever fields are
// present. Critical errors always abort compilation regardless of the
// installed error handler.
type CompilerError struct {
	Unexpected string
	Expected   string
	Structure  string
	Line       int
	Critical   bool
}

func (e *CompilerError) Error() string {
	var message string

	switch {
	case e.Unexpected == "" && e.Expected == "":
		message = "Unknown error"
	case e.Unexpected != "" && e.Expected == "":
		message = "Unexpected " + e.Unexpected
	case e.Unexpected == "" && e.Expected != "":
		message = "Expected " + e.Expected
	default:
		message = "Unexpected " + e.Unexpected + " (expected " + e.Expected + ")"
	}

	if e.Structure != "" {
		message += " in " + e.Structure
	}

	message += " at line: " + strconv.Itoa(e.Line)
	return fmt.Sprintf("💥 CompilerError: %s", message)
}
