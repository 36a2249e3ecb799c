package eval

import "github.com/hexaflex/intcode/asm/parser"

// ref: https://en.wikipedia.org/wiki/Shunting-yard_algorithm

// toPostfix uses Dijkstra's Shunting Yard algorithm to convert the given
// infix expression into postfix notation. This makes it a lot easier to
// evaluate later on.
//
// Unary operators are renamed to "u+" and "u-". There should be no more
// parentheses once this call is finished.
func toPostfix(n *parser.List) ([]parser.Node, error) {
	out := make([]parser.Node, 0, n.Len())
	ops := make([]parser.Node, 0, n.Len()/2)

	// operand is true if the previous token ends an operand.
	var operand bool

	if err := n.Each(func(i int, n parser.Node) error {
		var err error

		switch n.Type() {
		case parser.AddressMode:
			/* nop */

		case parser.Operator:
			switch {
			case hasValue(n, "("):
				ops = append(ops, n)
				operand = false

			case hasValue(n, ")"):
				out, ops, err = postfixHandleOp(out, ops, n)
				operand = true

			case !operand:
				if !hasValue(n, "-") && !hasValue(n, "+") {
					return NewError(n.Position(), "unexpected operator %q; expected value", n.(*parser.Value).Value)
				}
				ops = append(ops, parser.NewValue(n.Position(), parser.Operator, "u"+n.(*parser.Value).Value))

			default:
				out, ops, err = postfixHandleOp(out, ops, n)
				operand = false
			}

		default:
			if operand {
				return NewError(n.Position(), "unexpected value; expected operator")
			}
			out = append(out, n)
			operand = true
		}

		return err
	}); err != nil {
		return nil, err
	}

	for i := len(ops) - 1; i >= 0; i-- {
		if hasValue(ops[i], "(") {
			return nil, NewError(ops[i].Position(), "mismatched opening parenthesis")
		}
		out = append(out, ops[i])
	}

	return out, nil
}

// postfixHandleOp handles the given binary operator or closing parenthesis
// according to the Shunting yard algorithm rules.
func postfixHandleOp(out, ops []parser.Node, n parser.Node) ([]parser.Node, []parser.Node, error) {
	if hasValue(n, ")") {
		var haveParen bool

		for len(ops) > 0 {
			top := ops[len(ops)-1]
			ops = ops[:len(ops)-1]
			if hasValue(top, "(") {
				haveParen = true
				break
			}
			out = append(out, top)
		}

		if !haveParen {
			return nil, nil, NewError(n.Position(), "mismatched closing parenthesis")
		}

		return out, ops, nil
	}

	np, _ := opProperties(n)

	for len(ops) > 0 {
		top := ops[len(ops)-1]
		if hasValue(top, "(") {
			break
		}

		// All binary operators are left-associative.
		if tp, _ := opProperties(top); tp < np {
			break
		}

		out = append(out, top)
		ops = ops[:len(ops)-1]
	}

	ops = append(ops, n)
	return out, ops, nil
}

// opProperties treats n as an operator and returns its precedence,
// as well as true if it is left-associative.
func opProperties(n parser.Node) (int, bool) {
	switch n.(*parser.Value).Value {
	case "(", ")":
		return 0, true
	case "u+", "u-":
		return 7, false
	case "*", "/", "%":
		return 6, true
	case "+", "-":
		return 5, true
	case ">>", "<<":
		return 4, true
	case "&":
		return 3, true
	case "^":
		return 2, true
	case "|":
		return 1, true
	}

	panic("eval: unknown operator " + n.(*parser.Value).Value)
}
