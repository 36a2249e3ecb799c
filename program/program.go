// Package program reads and writes Intcode programs in their textual form:
// comma-separated decimal integers.
package program

import (
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Program defines an initial memory image.
type Program []int64

// Parse reads a program from r.
// Whitespace around values is ignored; empty values are not.
func Parse(r io.Reader) (Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "program: read")
	}
	return ParseString(string(data))
}

// ParseString parses a program from its textual form.
func ParseString(src string) (Program, error) {
	src = strings.TrimSpace(src)
	if len(src) == 0 {
		return nil, errors.New("program: empty input")
	}

	fields := strings.Split(src, ",")
	out := make(Program, len(fields))

	for i, field := range fields {
		field = strings.TrimSpace(field)
		if len(field) == 0 {
			return nil, errors.Errorf("program: empty value at index %d", i)
		}

		v, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "program: invalid value at index %d", i)
		}
		out[i] = v
	}

	return out, nil
}

// ReadFile loads the program stored in the given file.
func ReadFile(file string) (Program, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer fd.Close()

	p, err := Parse(fd)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", file)
	}
	return p, nil
}

// Clone returns a deep copy of p.
func (p Program) Clone() Program {
	if p == nil {
		return nil
	}
	out := make(Program, len(p))
	copy(out, p)
	return out
}

// String returns the program in its canonical textual form.
func (p Program) String() string {
	var sb strings.Builder
	for i, v := range p {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}
