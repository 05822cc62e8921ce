package parser

import (
	"errors"
	"fmt"
)

// SyntaxError reports malformed source. Incomplete is set when the input ended before the
// construct being parsed was closed, so more lines could still make it valid.
type SyntaxError struct {
	Line       int
	Column     int
	Message    string
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at line %d, column %d: %s", e.Line, e.Column, e.Message)
}

// IsIncomplete reports whether err is a syntax error caused by input ending too early.
func IsIncomplete(err error) bool {
	var serr *SyntaxError
	return errors.As(err, &serr) && serr.Incomplete
}
