package parser

import "slices"

// List is a node holding an ordered set of child nodes.
type List struct {
	node
	children []Node
}

// NewList creates a new, empty list.
func NewList(pos Position, ntype Type) *List {
	return &List{node: node{pos, ntype}}
}

func (n *List) Len() int {
	return len(n.children)
}

// At returns the node at index x.
func (n *List) At(x int) Node {
	return n.children[x]
}

// Slice returns the child nodes.
func (n *List) Slice() []Node {
	return n.children
}

func (n *List) Clear() {
	n.children = n.children[:0]
}

// Remove removes the node at index x.
func (n *List) Remove(x int) {
	n.children = slices.Delete(n.children, x, x+1)
}

func (n *List) Append(set ...Node) {
	n.children = append(n.children, set...)
}

// ReplaceAt replaces the node at index x with the given set.
// The set may be empty or hold more than one node.
func (n *List) ReplaceAt(x int, set ...Node) {
	// set may alias n.children.
	set = slices.Clone(set)
	n.children = slices.Replace(n.children, x, x+1, set...)
}

// Copy returns a deep copy of this list and its contents.
func (n *List) Copy() Node {
	out := NewList(n.pos, n.ntype)
	out.children = make([]Node, len(n.children))
	for i, c := range n.children {
		out.children[i] = c.Copy()
	}
	return out
}

// Each calls f for each element in the list.
// Iteration stops at the first error returned by f.
func (n *List) Each(f func(int, Node) error) error {
	for i, c := range n.children {
		if err := f(i, c); err != nil {
			return err
		}
	}
	return nil
}
