package parser

import "strings"

// Value is a leaf node holding a single token.
type Value struct {
	node
	Value string
}

func NewValue(pos Position, ntype Type, value string) *Value {
	return &Value{node: node{pos, ntype}, Value: value}
}

func (n *Value) Copy() Node {
	return NewValue(n.pos, n.ntype, n.Value)
}

// Is returns true if n is a value of the given type which matches v,
// ignoring case.
func Is(n Node, ntype Type, v string) bool {
	tn, ok := n.(*Value)
	return ok && tn.ntype == ntype && strings.EqualFold(tn.Value, v)
}
