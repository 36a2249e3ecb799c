// Package eval facilitates compile-time evaluation of operand expressions.
package eval

import (
	"strings"

	"github.com/hexaflex/intcode/asm/parser"
)

// ReferenceFunc finds the address or value for a given reference.
// This can be a label or constant.
type ReferenceFunc func(name string) (int64, error)

// Evaluate reduces the given expression to a single number.
// Address mode markers in the expression are ignored.
func Evaluate(expr *parser.List, resolve ReferenceFunc) (int64, error) {
	postfix, err := toPostfix(expr)
	if err != nil {
		return 0, err
	}

	if len(postfix) == 0 {
		return 0, NewError(expr.Position(), "invalid expression; no value")
	}

	return evalPostfix(postfix, resolve)
}

// evalPostfix evaluates the given postfix expression.
func evalPostfix(expr []parser.Node, resolve ReferenceFunc) (int64, error) {
	stack := make([]int64, 0, len(expr))

	for _, n := range expr {
		v := n.(*parser.Value)

		switch n.Type() {
		case parser.Ident:
			value, err := resolve(strings.ToLower(v.Value))
			if err != nil {
				return 0, NewError(n.Position(), "%v", err)
			}
			stack = append(stack, value)

		case parser.Number:
			value, err := parser.ParseNumber(v.Value)
			if err != nil {
				return 0, NewError(n.Position(), "invalid number %q", v.Value)
			}
			stack = append(stack, value)

		case parser.Operator:
			var a, b int64

			if isUnary(v.Value) {
				if len(stack) < 1 {
					return 0, NewError(n.Position(), "missing operand for operation %q", v.Value[1:])
				}

				b = stack[len(stack)-1]
				stack = stack[:len(stack)-1]
			} else {
				if len(stack) < 2 {
					return 0, NewError(n.Position(), "missing operands for operation %q", v.Value)
				}

				a = stack[len(stack)-2]
				b = stack[len(stack)-1]
				stack = stack[:len(stack)-2]
			}

			c, err := apply(v.Value, a, b)
			if err != nil {
				return 0, NewError(n.Position(), "%v", err)
			}

			stack = append(stack, c)

		default:
			return 0, NewError(n.Position(), "invalid node type %s; expected number, name or operator", n.Type())
		}
	}

	if len(stack) != 1 {
		return 0, NewError(expr[0].Position(), "invalid expression; want one result, have %d", len(stack))
	}

	return stack[0], nil
}

// hasValue returns true if the given node represents the given value
func hasValue(n parser.Node, v string) bool {
	tn, ok := n.(*parser.Value)
	return ok && strings.EqualFold(tn.Value, v)
}
