package model

import (
	"errors"
	"fmt"
)

// InputError marks a fatal source-data problem: missing columns, conflicting
// classifications, reconciliation mismatches. The transport layer maps these
// to client errors (400) while everything else is treated as internal.
type InputError struct {
	msg string
}

func (e *InputError) Error() string {
	return e.msg
}

// Inputf builds a fatal input error with a formatted message.
func Inputf(format string, args ...interface{}) error {
	return &InputError{msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err (or anything it wraps) is a fatal input error.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}
