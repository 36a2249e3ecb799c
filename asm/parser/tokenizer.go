package parser

import (
	"bytes"
	"fmt"
	"io"
)

// Known token types.
const (
	tokInstructionBegin = 1 + iota
	tokInstructionEnd
	tokExpressionBegin
	tokExpressionEnd
	tokLabel
	tokNumber
	tokIdent
	tokString
	tokChar
	tokOperator
	tokAddressMode
)

// tokenFunc is called whenever a new token is read from source.
type tokenFunc func(typ int, pos Position, value string) error

// tokenizer scans source one line at a time. Every statement ends at the
// end of its line.
type tokenizer struct {
	tf   tokenFunc
	line []byte   // Line being scanned, without its newline.
	pos  Position // Position of line[0].
	i    int      // Read offset into line.
}

// tokenize reads sourcecode from the given reader and turns it into a flat
// stream of tokens. Each token is passed into the given tokenFunc as it
// is read. The filename provides source context for each token.
func tokenize(r io.Reader, filename string, tf tokenFunc) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("parse error: %v", err)
	}

	t := tokenizer{tf: tf}
	t.pos = Position{File: filename, Line: 1, Col: 1}

	for len(data) > 0 {
		line := data
		next := len(data)
		if n := bytes.IndexByte(data, '\n'); n > -1 {
			line, next = data[:n], n+1
		}

		t.line = line
		t.i = 0

		if err := t.scanLine(); err != nil {
			return err
		}

		data = data[next:]
		t.pos.Line++
		t.pos.Offset += next
	}

	return nil
}

// scanLine reads all labels and the optional instruction on the current line.
func (t *tokenizer) scanLine() error {
	for {
		t.skipSpace()

		switch c := t.peek(); {
		case c == 0 || c == ';':
			return nil

		case c == ':':
			t.i++
			start := t.i
			if !t.skipName() {
				return t.errorAt(start, "invalid label definition; expected name")
			}
			if err := t.emit(tokLabel, start); err != nil {
				return err
			}

		case isNameStart(c):
			return t.scanInstruction()

		default:
			return t.errorAt(t.i, "unexpected token: '%c'; expected comment, label or instruction", c)
		}
	}
}

// scanInstruction reads an instruction name and its comma separated operands.
// The name of a constant definition is separated from its value by '='.
func (t *tokenizer) scanInstruction() error {
	start := t.i
	t.skipName()

	if err := t.emit(tokInstructionBegin, start); err != nil {
		return err
	}

	t.skipSpace()
	if c := t.peek(); c != 0 && c != ';' {
		for {
			more, err := t.scanExpression()
			if err != nil {
				return err
			}
			if !more {
				break
			}
		}
	}

	return t.tf(tokInstructionEnd, t.at(t.i), "")
}

// scanExpression reads a single operand. Returns true if another operand
// follows it.
func (t *tokenizer) scanExpression() (bool, error) {
	t.skipSpace()

	if err := t.tf(tokExpressionBegin, t.at(t.i), ""); err != nil {
		return false, err
	}

	for {
		t.skipSpace()
		start := t.i
		c := t.peek()

		var err error
		switch {
		case c == 0 || c == ';':
			return false, t.tf(tokExpressionEnd, t.at(t.i), "")

		case c == ',' || c == '=':
			t.i++
			return true, t.tf(tokExpressionEnd, t.at(start), "")

		case c == '$' && t.peekAt(1) == '$':
			t.i += 2
			err = t.emit(tokIdent, start)

		case c == '$' || c == '[' || c == ']':
			t.i++
			err = t.emit(tokAddressMode, start)

		case (c == '<' || c == '>') && t.peekAt(1) == c:
			t.i += 2
			err = t.emit(tokOperator, start)

		case isOperator(c):
			t.i++
			err = t.emit(tokOperator, start)

		case isDigit(c):
			err = t.scanNumber()

		case isNameStart(c):
			t.skipName()
			err = t.emit(tokIdent, start)

		case c == '\'':
			err = t.scanQuoted(tokChar)

		case c == '"':
			err = t.scanQuoted(tokString)

		default:
			err = t.errorAt(start, "unexpected token '%c'; want comma, operator or value", c)
		}

		if err != nil {
			return false, err
		}
	}
}

// scanNumber reads a numeric literal.
//
// A number can take the form: x#y
// Where x is the base and y is the actual numeric value.
// For instance:
//
//	2#10011010
//	8#644
//	16#ff
//
// The base prefix is optional. Underscores may be used to group digits.
func (t *tokenizer) scanNumber() error {
	start := t.i
	for c := t.peek(); isDigit(c) || isAlpha(c) || c == '_' || c == '#'; c = t.peek() {
		t.i++
	}

	value := string(t.line[start:t.i])
	if _, err := ParseNumber(value); err != nil {
		return t.errorAt(start, "invalid number %q", value)
	}

	return t.emit(tokNumber, start)
}

// scanQuoted reads a quoted literal, including its quotes.
// Backslash escapes are kept as-is.
func (t *tokenizer) scanQuoted(typ int) error {
	start := t.i
	quote := t.line[t.i]
	t.i++

	for t.i < len(t.line) {
		switch t.line[t.i] {
		case '\\':
			t.i += 2
			continue
		case quote:
			t.i++
			return t.emit(typ, start)
		}
		t.i++
	}

	return t.errorAt(start, "unterminated literal; expected %c", quote)
}

// skipName reads past a name. Returns false if there is none.
func (t *tokenizer) skipName() bool {
	if !isNameStart(t.peek()) {
		return false
	}

	for c := t.peek(); isNameStart(c) || isDigit(c); c = t.peek() {
		t.i++
	}
	return true
}

func (t *tokenizer) skipSpace() {
	for t.i < len(t.line) && isSpace(t.line[t.i]) {
		t.i++
	}
}

// peek returns the next byte without consuming it, or 0 at the end of the line.
func (t *tokenizer) peek() byte {
	return t.peekAt(0)
}

func (t *tokenizer) peekAt(n int) byte {
	if t.i+n >= len(t.line) {
		return 0
	}
	return t.line[t.i+n]
}

// emit passes line[start:i] to the token func.
func (t *tokenizer) emit(typ int, start int) error {
	return t.tf(typ, t.at(start), string(t.line[start:t.i]))
}

// at returns the position of the given offset into the current line.
func (t *tokenizer) at(i int) Position {
	pos := t.pos
	pos.Col += i
	pos.Offset += i
	return pos
}

func (t *tokenizer) errorAt(i int, f string, argv ...interface{}) error {
	return NewError(t.at(i), f, argv...)
}

func isSpace(x byte) bool {
	switch x {
	case ' ', '\t', '\r', '\v', '\f':
		return true
	}
	return false
}

func isNameStart(x byte) bool {
	return x == '_' || x == '.' || isAlpha(x)
}

func isAlpha(x byte) bool {
	return (x >= 'a' && x <= 'z') || (x >= 'A' && x <= 'Z')
}

func isDigit(x byte) bool {
	return x >= '0' && x <= '9'
}

func isOperator(x byte) bool {
	switch x {
	case '+', '-', '*', '/', '%', '&', '|', '^', '(', ')':
		return true
	}
	return false
}
