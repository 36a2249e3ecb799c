package eval

import (
	"fmt"
)

// apply performs the given arithmetic operation on operands a and b
// and returns the result. Unary operations ignore a.
//
// Supported operations are: + - * / % << >> & | ^ u+ u-
func apply(op string, a, b int64) (int64, error) {
	switch op {
	case "u+":
		return b, nil
	case "u-":
		return -b, nil
	case "+":
		return a + b, nil
	case "-":
		return a - b, nil
	case "*":
		return a * b, nil
	case "/":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a / b, nil
	case "%":
		if b == 0 {
			return 0, fmt.Errorf("division by zero")
		}
		return a % b, nil
	case "<<":
		if b < 0 {
			return 0, fmt.Errorf("negative shift count %d", b)
		}
		return a << uint64(b), nil
	case ">>":
		if b < 0 {
			return 0, fmt.Errorf("negative shift count %d", b)
		}
		return a >> uint64(b), nil
	case "&":
		return a & b, nil
	case "|":
		return a | b, nil
	case "^":
		return a ^ b, nil
	default:
		return 0, fmt.Errorf("unrecognized operation %q", op)
	}
}

// isUnary returns true if op names a unary operation.
func isUnary(op string) bool {
	return op == "u+" || op == "u-"
}
