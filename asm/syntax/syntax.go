// Package syntax performs syntax verification on an AST to ensure it is in a sane state.
// Additionally performs some mutations to simplify or amend structure where needed.
package syntax

import (
	"strconv"
	"strings"

	"github.com/hexaflex/intcode/arch"
	"github.com/hexaflex/intcode/asm/parser"
)

// Data is the name of the directive which emits its operands as raw words.
const Data = "data"

// Verify performs syntax verification on the given AST to ensure it has a sane state.
//
// Instruction operands are rewritten to a canonical form: an AddressMode node
// holding the mode digit, followed by the nodes of the value expression.
// Constant definitions are reduced to their name and value expression.
func Verify(ast *parser.AST) error {
	if err := translateConst(ast.Nodes()); err != nil {
		return err
	}

	if err := testInstructions(ast.Nodes()); err != nil {
		return err
	}

	return testNumbers(ast.Nodes())
}

// OperandMode returns the address mode of a verified instruction operand.
func OperandMode(expr *parser.List) arch.AddressMode {
	v := expr.At(0).(*parser.Value).Value
	return arch.AddressMode(v[0] - '0')
}

// IsData returns true if instr is a data directive.
func IsData(instr *parser.List) bool {
	return isInstruction(instr, Data)
}

// translateConst finds constant definitions and replaces them with
// simplified versions of themselves:
//
//	List{"const", Expr1, Expr2}
//
// where Expr1 contains the constant name and Expr2 the value, becomes:
//
//	List{Name, Expr2}
func translateConst(nodes *parser.List) error {
	for i := 0; i < nodes.Len(); i++ {
		n := nodes.At(i)
		if n.Type() != parser.Constant {
			continue
		}

		constant := n.(*parser.List)

		if constant.Len() != 3 {
			return NewError(constant.Position(), "invalid const definition; expected `const <name> = <expression>`")
		}

		expr1 := constant.At(1).(*parser.List)
		if expr1.Len() != 1 || expr1.At(0).Type() != parser.Ident {
			return NewError(expr1.Position(), "invalid constant name; expected ident")
		}

		name := expr1.At(0).(*parser.Value)
		if isReserved(name.Value) {
			return NewError(name.Position(), "%q is a reserved name", name.Value)
		}

		expr2 := constant.At(2).(*parser.List)
		if err := testPlainExpression(expr2); err != nil {
			return err
		}

		newConst := parser.NewList(n.Position(), parser.Constant)
		newConst.Append(name, expr2)
		nodes.ReplaceAt(i, newConst)
	}
	return nil
}

// testInstructions ensures instructions are properly formatted and refer to valid opcodes.
func testInstructions(nodes *parser.List) error {
	return nodes.Each(func(_ int, n parser.Node) error {
		switch n.Type() {
		case parser.Label:
			lbl := n.(*parser.Value)
			if isReserved(lbl.Value) {
				return NewError(lbl.Position(), "%q is a reserved name", lbl.Value)
			}
			return nil

		case parser.Instruction:
		default:
			return nil
		}

		instr := n.(*parser.List)
		name := instr.At(0).(*parser.Value)

		for i := 1; i < instr.Len(); i++ {
			expr := instr.At(i).(*parser.List)
			if expr.Len() == 0 {
				return NewError(expr.Position(), "unexpected empty expression in instruction operand")
			}
		}

		if IsData(instr) {
			return testData(instr)
		}

		opcode, ok := arch.Opcode(name.Value)
		if !ok {
			return NewError(name.Position(), "unknown instruction %q", name.Value)
		}

		argc := arch.Argc(opcode)
		if argc != instr.Len()-1 {
			return NewError(name.Position(), "invalid operand count for instruction %q; expected %d", name.Value, argc)
		}

		for i := 1; i < instr.Len(); i++ {
			expr := instr.At(i).(*parser.List)
			if err := translateOperand(expr); err != nil {
				return err
			}

			if i-1 == arch.WriteArg(opcode) && OperandMode(expr) == arch.Immediate {
				return NewError(expr.Position(), "operand %d of %q is written to and can not be immediate", i, name.Value)
			}
		}

		return nil
	})
}

// testData ensures the operands of a data directive are plain expressions
// or single string literals.
func testData(instr *parser.List) error {
	if instr.Len() < 2 {
		return NewError(instr.Position(), "data directive requires at least one operand")
	}

	for i := 1; i < instr.Len(); i++ {
		expr := instr.At(i).(*parser.List)
		if expr.Len() == 1 && expr.At(0).Type() == parser.String {
			continue
		}

		if err := testPlainExpression(expr); err != nil {
			return err
		}
	}

	return nil
}

// testPlainExpression ensures expr holds neither address modes nor strings.
func testPlainExpression(expr *parser.List) error {
	if expr.Len() == 0 {
		return NewError(expr.Position(), "unexpected empty expression")
	}

	return expr.Each(func(_ int, n parser.Node) error {
		switch n.Type() {
		case parser.AddressMode:
			return NewError(n.Position(), "unexpected address mode %q", n.(*parser.Value).Value)
		case parser.String:
			return NewError(n.Position(), "unexpected string literal in expression")
		}
		return nil
	})
}

// translateOperand rewrites an instruction operand into its canonical form.
//
//	$expr          immediate
//	[expr]         position
//	[rb]           relative, offset 0
//	[rb + expr]    relative
//	[rb - expr]    relative
func translateOperand(expr *parser.List) error {
	first := expr.At(0)
	pos := first.Position()

	var mode arch.AddressMode
	var value []parser.Node

	switch {
	case parser.Is(first, parser.AddressMode, "$"):
		mode = arch.Immediate
		value = append(value, expr.Slice()[1:]...)

	case parser.Is(first, parser.AddressMode, "["):
		last := expr.At(expr.Len() - 1)
		if expr.Len() < 2 || !parser.Is(last, parser.AddressMode, "]") {
			return NewError(pos, "missing closing ']' in operand")
		}

		mode = arch.Position
		value = append(value, expr.Slice()[1:expr.Len()-1]...)

		if len(value) > 0 && parser.Is(value[0], parser.Ident, "rb") {
			mode = arch.Relative
			value = value[1:]

			if len(value) == 0 {
				value = append(value, parser.NewValue(pos, parser.Number, "0"))
			} else if !parser.Is(value[0], parser.Operator, "+") && !parser.Is(value[0], parser.Operator, "-") {
				return NewError(value[0].Position(), "expected '+' or '-' after rb")
			}
		}

	default:
		return NewError(pos, "missing address mode; expected $value, [address] or [rb+offset]")
	}

	if len(value) == 0 {
		return NewError(pos, "missing operand value")
	}

	for _, n := range value {
		switch n.Type() {
		case parser.AddressMode:
			return NewError(n.Position(), "unexpected address mode %q", n.(*parser.Value).Value)
		case parser.String:
			return NewError(n.Position(), "unexpected string literal in operand")
		}
	}

	expr.Clear()
	expr.Append(parser.NewValue(pos, parser.AddressMode, strconv.Itoa(int(mode))))
	expr.Append(value...)
	return nil
}

// testNumbers finds numeric literals and ensures they can be parsed into
// actual integers without issue.
func testNumbers(nodes *parser.List) error {
	return nodes.Each(func(_ int, n parser.Node) error {
		if list, ok := n.(*parser.List); ok {
			return testNumbers(list)
		}

		if n.Type() != parser.Number {
			return nil
		}

		node := n.(*parser.Value)
		_, err := parser.ParseNumber(node.Value)
		if err != nil {
			return NewError(node.Position(), "invalid number: %v", err)
		}

		return nil
	})
}

// isReserved returns true if name can not be used for labels or constants.
func isReserved(name string) bool {
	if strings.EqualFold(name, "rb") || strings.EqualFold(name, Data) {
		return true
	}
	_, ok := arch.Opcode(name)
	return ok
}

// isInstruction returns true if n is an instruction with the given name.
func isInstruction(n *parser.List, name string) bool {
	return n.Type() == parser.Instruction && parser.Is(n.At(0), parser.Ident, name)
}
