package compiler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a compile error.
type ErrorKind int

const (
	// UnknownCommand: the first token of a line is not a mnemonic.
	UnknownCommand ErrorKind = iota
	// ArityMismatch: the argument count differs from the parameter count.
	ArityMismatch
	// UnknownOpcode: a packed line does not start with an opcode (Validate only).
	UnknownOpcode
)

func (k ErrorKind) String() string {
	switch k {
	case UnknownCommand:
		return "unknown command"
	case ArityMismatch:
		return "arity mismatch"
	case UnknownOpcode:
		return "unknown opcode"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// Error is a single problem found on one line of a script.
type Error struct {
	Line    int    // 1-based
	Kind    ErrorKind
	Token   string // offending command token
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Line %d: %s", e.Line, e.Message)
}

// ErrorList is every error of a failed compile, in line order.
type ErrorList []*Error

func (l ErrorList) Error() string {
	msgs := make([]string, len(l))
	for i, e := range l {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "\n")
}

// Errors extracts the line errors carried by err. It returns nil when err
// did not come from Compile or Validate.
func Errors(err error) []*Error {
	var list ErrorList
	if errors.As(err, &list) {
		return list
	}
	var single *Error
	if errors.As(err, &single) {
		return []*Error{single}
	}
	return nil
}
