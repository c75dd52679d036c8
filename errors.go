package ar3

import (
	"errors"
	"fmt"
)

// ErrNoIndicators is returned when a table contains no column matching
// the indicator grouping rule, so no sheet could be produced.
var ErrNoIndicators = errors.New("no indicator columns identified")

// ParseError describes a malformed result file. Line is 1-based and
// refers to the input as read, header included.
type ParseError struct {
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse error on line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("parse error: %v", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
