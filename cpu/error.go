package cpu

import (
	"fmt"

	"github.com/pkg/errors"
)

// Known fatal conditions. A *Error returned from Step wraps one of these.
var (
	ErrMalformedProgram   = errors.New("malformed program")
	ErrInvalidWriteTarget = errors.New("invalid write target")
	ErrNegativeAddress    = errors.New("negative address")
	ErrMemoryLimit        = errors.New("memory limit exceeded")
	ErrHalted             = errors.New("machine has halted")
)

// Error defines a runtime error.
type Error struct {
	*Instruction
	Err error  // One of the known fatal conditions.
	Msg string // Additional context.
}

// NewError creates a new, formatted error message for the given instruction.
func NewError(instr *Instruction, err error, f string, argv ...interface{}) *Error {
	ic := *instr
	return &Error{
		Instruction: &ic,
		Err:         err,
		Msg:         fmt.Sprintf(f, argv...),
	}
}

func (e *Error) Error() string {
	return fmt.Sprintf("%04d: %v: %s", e.IP, e.Err, e.Msg)
}

// Unwrap returns the underlying fatal condition.
func (e *Error) Unwrap() error {
	return e.Err
}
