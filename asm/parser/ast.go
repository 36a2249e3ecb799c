// Package parser turns Intcode assembly source into an abstract syntax tree.
package parser

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"
)

// AST defines an Abstract Syntax Tree for Intcode assembly sources.
type AST struct {
	nodes *List
}

// NewAST creates a new, empty AST.
func NewAST() *AST {
	return &AST{nodes: NewList(Position{}, 0)}
}

// Nodes returns the top level node list.
func (a *AST) Nodes() *List {
	return a.nodes
}

// ParseFile parses the given file into the AST.
func (a *AST) ParseFile(filename string) error {
	fd, err := os.Open(filename)
	if err != nil {
		return err
	}
	defer fd.Close()
	return a.Parse(fd, filename)
}

// Parse parses the given stream into the AST. The filename is used to
// provide source context and is made absolute if it is not empty.
func (a *AST) Parse(r io.Reader, filename string) error {
	if len(filename) > 0 {
		abs, err := filepath.Abs(filename)
		if err != nil {
			return err
		}
		filename = abs
	}

	b := builder{stack: []*List{a.nodes}}
	return tokenize(r, filename, b.token)
}

// builder assembles the token stream into nested lists.
type builder struct {
	stack []*List
}

func (b *builder) token(tt int, pos Position, value string) error {
	top := b.stack[len(b.stack)-1]

	switch tt {
	case tokInstructionBegin:
		ntype := Instruction
		if strings.EqualFold(value, "const") {
			ntype = Constant
		}
		b.push(top, NewList(pos, ntype))
		b.stack[len(b.stack)-1].Append(NewValue(pos, Ident, value))

	case tokExpressionBegin:
		b.push(top, NewList(pos, Expression))

	case tokInstructionEnd, tokExpressionEnd:
		b.stack = b.stack[:len(b.stack)-1]

	case tokLabel:
		top.Append(NewValue(pos, Label, value))
	case tokNumber:
		top.Append(NewValue(pos, Number, value))
	case tokOperator:
		top.Append(NewValue(pos, Operator, value))
	case tokIdent:
		top.Append(NewValue(pos, Ident, value))
	case tokAddressMode:
		top.Append(NewValue(pos, AddressMode, value))

	case tokChar:
		r, err := unquoteChar(value)
		if err != nil {
			return NewError(pos, "%v", err)
		}
		top.Append(NewValue(pos, Number, strconv.Itoa(int(r))))

	case tokString:
		s, err := strconv.Unquote(value)
		if err != nil {
			return NewError(pos, "invalid string literal %s", value)
		}
		top.Append(NewValue(pos, String, s))
	}

	return nil
}

func (b *builder) push(parent, l *List) {
	parent.Append(l)
	b.stack = append(b.stack, l)
}

// unquoteChar returns the single rune held by a quoted character literal.
func unquoteChar(lit string) (rune, error) {
	s, err := strconv.Unquote(lit)
	if err != nil {
		return 0, fmt.Errorf("invalid character literal %s", lit)
	}

	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError || size != len(s) {
		return 0, fmt.Errorf("invalid character literal %s", lit)
	}
	return r, nil
}

// String returns a human readable dump of the node tree.
func (a *AST) String() string {
	var sb strings.Builder
	dump(&sb, a.nodes, 0)
	return sb.String()
}

func dump(sb *strings.Builder, n Node, depth int) {
	pos := n.Position()
	indent := strings.Repeat("   ", depth)
	fmt.Fprintf(sb, "%s%s:%d:%d ", indent, filepath.Base(pos.File), pos.Line, pos.Col)

	switch t := n.(type) {
	case *Value:
		fmt.Fprintf(sb, "%s(%q)\n", t.Type(), t.Value)
	case *List:
		fmt.Fprintf(sb, "%s {\n", t.Type())
		for _, c := range t.Slice() {
			dump(sb, c, depth+1)
		}
		fmt.Fprintf(sb, "%s}\n", indent)
	}
}
