package parser

// Type identifies the kind of an AST node.
type Type int

// Known node types.
const (
	_ Type = iota
	AddressMode
	Ident
	String
	Number
	Operator
	Label
	Instruction
	Expression
	Constant
)

func (t Type) String() string {
	switch t {
	case Constant:
		return "Constant"
	case AddressMode:
		return "AddressMode"
	case Ident:
		return "Ident"
	case String:
		return "String"
	case Number:
		return "Number"
	case Operator:
		return "Operator"
	case Label:
		return "Label"
	case Instruction:
		return "Instruction"
	case Expression:
		return "Expression"
	}

	return ""
}

// Node represents a generic AST node.
type Node interface {
	Position() Position
	Type() Type
	Copy() Node
}

// node holds the fields shared by all node types.
type node struct {
	pos   Position
	ntype Type
}

func (n node) Position() Position { return n.pos }
func (n node) Type() Type         { return n.ntype }
