package asm

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hexaflex/intcode/arch"
	"github.com/hexaflex/intcode/asm/eval"
	"github.com/hexaflex/intcode/asm/parser"
	"github.com/hexaflex/intcode/asm/syntax"
	"github.com/hexaflex/intcode/program"
)

// assembler holds assembler context. It turns a source AST into a program.
type assembler struct {
	out     program.Program  // Assembled program.
	symbols map[string]int64 // Table of labels or constants mapped to their respective addresses and values.
	address int64            // Address at which next instruction is written.
}

func newAssembler() *assembler {
	return &assembler{
		symbols: make(map[string]int64),
	}
}

// assemble compiles the given source AST into a program.
func (a *assembler) assemble(ast *parser.AST) (program.Program, error) {
	if err := syntax.Verify(ast); err != nil {
		return nil, err
	}

	if err := a.resolveLabels(ast.Nodes()); err != nil {
		return nil, err
	}

	if err := a.evaluateConstants(ast.Nodes()); err != nil {
		return nil, err
	}

	if err := a.compile(ast.Nodes()); err != nil {
		return nil, err
	}

	return a.out, nil
}

// resolveLabels finds all label definitions in the given set and resolves their addresses.
// Label definitions are removed.
func (a *assembler) resolveLabels(nodes *parser.List) error {
	a.address = 0

	for i := 0; i < nodes.Len(); i++ {
		n := nodes.At(i)

		if n.Type() != parser.Label {
			a.address += encodedLen(n)
			continue
		}

		lbl := n.(*parser.Value)
		if a.hasSymbol(lbl.Value) {
			return newError(lbl.Position(), "duplicate definition name %q", lbl.Value)
		}

		a.symbols[strings.ToLower(lbl.Value)] = a.address

		nodes.Remove(i)
		i--
	}

	return nil
}

// evaluateConstants evaluates constant definitions in source order.
// A constant can refer to any label and to constants defined before it.
func (a *assembler) evaluateConstants(nodes *parser.List) error {
	return nodes.Each(func(_ int, n parser.Node) error {
		if n.Type() != parser.Constant {
			return nil
		}

		constant := n.(*parser.List)
		name := constant.At(0).(*parser.Value)
		expr := constant.At(1).(*parser.List)

		if a.hasSymbol(name.Value) {
			return newError(name.Position(), "duplicate symbol %q", name.Value)
		}

		value, err := eval.Evaluate(expr, a.resolveConstReference)
		if err != nil {
			return err
		}

		a.symbols[strings.ToLower(name.Value)] = value
		return nil
	})
}

// resolveConstReference resolves references in constant expressions.
// The current address has no meaning there.
func (a *assembler) resolveConstReference(name string) (int64, error) {
	if name == "$$" {
		return 0, fmt.Errorf("current address is not available in constant definitions")
	}
	return a.resolveReference(name)
}

// resolveReference finds the address or value for a given reference.
// This can be a label, a constant or "$$", the address of the current instruction.
// Returns an error if it can't be found.
func (a *assembler) resolveReference(name string) (int64, error) {
	if name == "$$" {
		return a.address, nil
	}

	if v, ok := a.symbols[strings.ToLower(name)]; ok {
		return v, nil
	}

	return 0, fmt.Errorf("reference to undefined value %s", name)
}

// hasSymbol returns true if the given symbol is defined as either a label or constant.
func (a *assembler) hasSymbol(name string) bool {
	_, ok := a.symbols[strings.ToLower(name)]
	return ok
}

// compile compiles all given instructions.
func (a *assembler) compile(nodes *parser.List) error {
	a.address = 0

	return nodes.Each(func(_ int, n parser.Node) error {
		if n.Type() != parser.Instruction {
			return nil
		}

		code, err := a.encode(n.(*parser.List))
		if err != nil {
			return err
		}

		a.out = append(a.out, code...)
		a.address += int64(len(code))
		return nil
	})
}

// encode encodes the given instruction into its final form.
func (a *assembler) encode(instr *parser.List) ([]int64, error) {
	if syntax.IsData(instr) {
		return a.encodeData(instr)
	}

	name := instr.At(0).(*parser.Value)
	opcode, ok := arch.Opcode(name.Value)
	if !ok {
		return nil, newError(name.Position(), "unknown instruction %q", name.Value)
	}

	out := make([]int64, 1, encodedLen(instr))
	out[0] = int64(opcode)
	scale := int64(100)

	for i := 1; i < instr.Len(); i++ {
		expr := instr.At(i).(*parser.List)

		value, err := eval.Evaluate(expr, a.resolveReference)
		if err != nil {
			return nil, err
		}

		out[0] += int64(syntax.OperandMode(expr)) * scale
		scale *= 10
		out = append(out, value)
	}

	return out, nil
}

// encodeData encodes the operands of a data directive.
// Strings yield one word per character.
func (a *assembler) encodeData(instr *parser.List) ([]int64, error) {
	out := make([]int64, 0, encodedLen(instr))

	for i := 1; i < instr.Len(); i++ {
		expr := instr.At(i).(*parser.List)

		if expr.Len() == 1 && expr.At(0).Type() == parser.String {
			for _, r := range expr.At(0).(*parser.Value).Value {
				out = append(out, int64(r))
			}
			continue
		}

		value, err := eval.Evaluate(expr, a.resolveReference)
		if err != nil {
			return nil, err
		}
		out = append(out, value)
	}

	return out, nil
}

// encodedLen returns the number of words occupied by the given node's compiled version.
func encodedLen(n parser.Node) int64 {
	if n.Type() != parser.Instruction {
		return 0
	}

	instr := n.(*parser.List)
	if syntax.IsData(instr) {
		var size int64
		for i := 1; i < instr.Len(); i++ {
			expr := instr.At(i).(*parser.List)
			if expr.Len() == 1 && expr.At(0).Type() == parser.String {
				size += int64(utf8.RuneCountInString(expr.At(0).(*parser.Value).Value))
			} else {
				size++
			}
		}
		return size
	}

	return int64(instr.Len())
}
