// Package arch defines the Intcode instruction set along with
// some related helper functions.
package arch

import "strings"

// Known opcodes.
const (
	ADD  = 1  // c = a + b
	MUL  = 2  // c = a * b
	IN   = 3  // a = next input
	OUT  = 4  // emit a
	JNZ  = 5  // if a != 0, jump to b
	JEZ  = 6  // if a == 0, jump to b
	CLT  = 7  // c = a < b
	CEQ  = 8  // c = a == b
	ARB  = 9  // relative base += a
	HALT = 99 // stop execution
)

// Opcode returns the opcode for the given instruction name.
// Returns false if the name is not recognized.
func Opcode(name string) (int, bool) {
	switch strings.ToUpper(name) {
	case "ADD":
		return ADD, true
	case "MUL":
		return MUL, true
	case "IN":
		return IN, true
	case "OUT":
		return OUT, true
	case "JNZ":
		return JNZ, true
	case "JEZ":
		return JEZ, true
	case "CLT":
		return CLT, true
	case "CEQ":
		return CEQ, true
	case "ARB":
		return ARB, true
	case "HALT":
		return HALT, true
	}

	return 0, false
}

// Name returns the name for the given opcode.
// Returns false if the opcode is not recognized.
func Name(opcode int) (string, bool) {
	switch opcode {
	case ADD:
		return "ADD", true
	case MUL:
		return "MUL", true
	case IN:
		return "IN", true
	case OUT:
		return "OUT", true
	case JNZ:
		return "JNZ", true
	case JEZ:
		return "JEZ", true
	case CLT:
		return "CLT", true
	case CEQ:
		return "CEQ", true
	case ARB:
		return "ARB", true
	case HALT:
		return "HALT", true
	}

	return "", false
}

// Argc returns the number of arguments the given instruction requires.
// Returns -1 if the opcode is not recognized.
func Argc(opcode int) int {
	switch opcode {
	case ADD, MUL, CLT, CEQ:
		return 3
	case JNZ, JEZ:
		return 2
	case IN, OUT, ARB:
		return 1
	case HALT:
		return 0
	}
	return -1
}

// WriteArg returns the index of the operand the given instruction writes to.
// Returns -1 if the instruction does not write to memory.
func WriteArg(opcode int) int {
	switch opcode {
	case ADD, MUL, CLT, CEQ:
		return 2
	case IN:
		return 0
	}
	return -1
}
