package network

import (
	"strings"

	"github.com/pkg/errors"
)

// Known error conditions.
var (
	ErrHalted   = errors.New("network: all nodes have halted")
	ErrStarved  = errors.New("pipeline: input closed while stage requires input")
	ErrNoOutput = errors.New("pipeline: last stage produced no output")
)

// ErrorSet defines a list of one or more errors and is itself an error.
type ErrorSet []error

func (e ErrorSet) Len() int {
	return len(e)
}

func (e *ErrorSet) Append(args ...error) {
	*e = append(*e, args...)
}

func (e ErrorSet) Error() string {
	var sb strings.Builder
	for i, err := range e {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(err.Error())
	}
	return sb.String()
}

// Unwrap returns the contained errors, so errors.Is and errors.As
// match any of them.
func (e ErrorSet) Unwrap() []error {
	return e
}
