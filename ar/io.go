package ar

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// magic identifies snapshot files.
var magic = [4]byte{'I', 'C', 'S', 'N'}

var endian = binary.LittleEndian

func check(err error) {
	if err != nil {
		panic((err))
	}
}

func readHeader(r io.Reader) {
	var m [4]byte
	_, err := io.ReadFull(r, m[:])
	check(err)

	if m != magic {
		panic(errors.New("not a snapshot file"))
	}

	if v := readU16(r); v != Version {
		panic(errors.Errorf("unsupported snapshot version %d", v))
	}
}

func writeHeader(w io.Writer) {
	_, err := w.Write(magic[:])
	check(err)
	writeU16(w, Version)
}

func readU16(r io.Reader) (v uint16) {
	check(binary.Read(r, endian, &v))
	return
}

func writeU16(w io.Writer, v uint16) {
	check(binary.Write(w, endian, v))
}
