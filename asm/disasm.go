package asm

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/hexaflex/intcode/arch"
	"github.com/hexaflex/intcode/program"
)

// Disassemble renders p as assembly source. Assembling the result yields p.
//
// Words are decoded as instructions from address 0 onwards. A word which
// does not encode a valid instruction, or whose operands run past the end
// of the program, is emitted with a data directive.
func Disassemble(p program.Program) string {
	var sb strings.Builder

	for ip := 0; ip < len(p); {
		text, size := disassembleAt(p, ip)
		fmt.Fprintf(&sb, "    %-32s ; %04d\n", text, ip)
		ip += size
	}

	return sb.String()
}

// disassembleAt returns the source for the instruction at ip along with
// the number of words it occupies.
func disassembleAt(p program.Program, ip int) (string, int) {
	word := p[ip]
	data := "data " + formatInt(word)

	if word < 0 {
		return data, 1
	}

	opcode := int(word % 100)
	argc := arch.Argc(opcode)
	if argc < 0 || ip+argc >= len(p) {
		return data, 1
	}

	name, _ := arch.Name(opcode)
	args := make([]string, argc)
	modes := word / 100

	for i := 0; i < argc; i++ {
		mode := arch.AddressMode(modes % 10)
		modes /= 10

		if !mode.Valid() || (mode == arch.Immediate && i == arch.WriteArg(opcode)) {
			return data, 1
		}

		args[i] = formatOperand(mode, p[ip+1+i])
	}

	// Mode digits beyond the operand count are not reproduced by the assembler.
	if modes != 0 {
		return data, 1
	}

	return strings.TrimSpace(fmt.Sprintf("%-4s %s", strings.ToLower(name), strings.Join(args, ", "))), 1 + argc
}

// formatOperand returns the source form of a single operand.
func formatOperand(mode arch.AddressMode, v int64) string {
	switch mode {
	case arch.Immediate:
		return "$" + formatInt(v)
	case arch.Relative:
		if v >= 0 {
			return "[rb+" + formatInt(v) + "]"
		}
		return "[rb" + formatInt(v) + "]"
	default:
		return "[" + formatInt(v) + "]"
	}
}

// formatInt returns v as an expression the assembler evaluates back to v.
// Literals are unsigned, so the magnitude of math.MinInt64 can not be
// written directly.
func formatInt(v int64) string {
	if v == math.MinInt64 {
		return "-9223372036854775807-1"
	}
	return strconv.FormatInt(v, 10)
}
