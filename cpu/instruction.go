package cpu

import (
	"fmt"
	"strings"

	"github.com/hexaflex/intcode/arch"
)

// Instruction defines decoded instruction data.
type Instruction struct {
	IP     int64      // Instruction address.
	Word   int64      // Raw instruction word.
	Opcode int        // Instruction opcode.
	Argc   int        // Number of operands.
	Args   [3]Operand // Operand A, B and C.
}

// Decode decodes the instruction at ip from the given memory bank.
// rb is the relative base used to resolve relative operands.
//
// Read operands are dereferenced. The write operand, if any, only has its
// address resolved.
func (i *Instruction) Decode(m *Memory, ip, rb int64) error {
	i.IP = ip
	i.Opcode = 0
	i.Argc = 0

	word, err := m.Load(ip)
	if err != nil {
		return NewError(i, err, "instruction pointer %d", ip)
	}

	i.Word = word
	i.Opcode = int(word % 100)

	argc := arch.Argc(i.Opcode)
	if argc < 0 {
		return NewError(i, ErrMalformedProgram, "unknown opcode %d", word)
	}

	i.Argc = argc
	write := arch.WriteArg(i.Opcode)
	modes := word / 100

	for j := 0; j < argc; j++ {
		op := &i.Args[j]
		op.Mode = arch.AddressMode(modes % 10)
		op.Write = j == write
		modes /= 10

		if !op.Mode.Valid() {
			return NewError(i, ErrMalformedProgram, "unknown address mode %d for operand %d", op.Mode, j)
		}

		// Operand words are never negative addresses: ip+1+j >= 1.
		op.Raw, _ = m.Load(ip + 1 + int64(j))

		if err := op.resolve(m, rb); err != nil {
			return NewError(i, err, "operand %d (%s %d)", j, op.Mode, op.Raw)
		}
	}

	return nil
}

// Len returns the number of words occupied by the instruction.
func (i *Instruction) Len() int64 {
	return int64(1 + i.Argc)
}

// String returns a human-readable disassembly of the instruction.
func (i *Instruction) String() string {
	name, ok := arch.Name(i.Opcode)
	if !ok {
		name = fmt.Sprintf("?%d", i.Word)
	}

	var sb strings.Builder
	for j := 0; j < i.Argc; j++ {
		if j > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(i.Args[j].String())
	}

	return fmt.Sprintf("%04d %-4s %s", i.IP, name, sb.String())
}

// Operand defines decoded instruction operand data.
type Operand struct {
	Mode    arch.AddressMode // Address mode.
	Raw     int64            // Operand word as stored in memory.
	Address int64            // Resolved address. Same as Raw for immediate operands.
	Value   int64            // Dereferenced value. Unset for write operands.
	Write   bool             // Is this the instruction's write target?
}

// resolve computes the operand's address and, for read operands, its value.
func (op *Operand) resolve(m *Memory, rb int64) error {
	switch op.Mode {
	case arch.Immediate:
		if op.Write {
			return ErrInvalidWriteTarget
		}
		op.Address = op.Raw
		op.Value = op.Raw
		return nil
	case arch.Position:
		op.Address = op.Raw
	case arch.Relative:
		op.Address = rb + op.Raw
	}

	if op.Address < 0 {
		return ErrNegativeAddress
	}

	if op.Write {
		op.Value = 0
		return nil
	}

	v, err := m.Load(op.Address)
	op.Value = v
	return err
}

func (op Operand) String() string {
	var s string
	switch op.Mode {
	case arch.Immediate:
		return fmt.Sprintf("$%d", op.Raw)
	case arch.Position:
		s = fmt.Sprintf("[%d]", op.Address)
	case arch.Relative:
		s = fmt.Sprintf("[rb%+d]", op.Raw)
	}

	if op.Write {
		return s
	}
	return fmt.Sprintf("%s=%d", s, op.Value)
}
