// Package ar defines the machine snapshot type, as well as an encoder
// and decoder for its file format.
//
// A snapshot file is a gzip stream holding a short header followed by the
// CBOR encoded Snapshot.
package ar

import (
	"compress/gzip"
	"fmt"
	"io"
	"math"
	"runtime"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

// Version is the current snapshot format version.
const Version = 1

// Snapshot defines the complete state of a machine.
// A suspended machine can be saved and resumed later.
type Snapshot struct {
	Memory       []int64 `cbor:"1,keyasint"`           // Tape contents.
	IP           int64   `cbor:"2,keyasint"`           // Instruction pointer.
	RelativeBase int64   `cbor:"3,keyasint"`           // Relative base register.
	Inputs       []int64 `cbor:"4,keyasint,omitempty"` // Pending input values.
	Halted       bool    `cbor:"5,keyasint,omitempty"` // Has the program halted?
}

// MaxCells is the largest tape or input queue a snapshot can hold.
const MaxCells = math.MaxInt32

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("ar: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{MaxArrayElements: MaxCells}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("ar: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

// New creates a new, empty snapshot.
func New() *Snapshot {
	return &Snapshot{}
}

// Load reads snapshot data from the given stream.
func (s *Snapshot) Load(r io.Reader) (err error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return errors.Wrapf(err, "ar: invalid snapshot format")
	}

	defer gz.Close()
	defer recoverOnPanic(&err)

	readHeader(gz)

	data, err := io.ReadAll(gz)
	if err != nil {
		return errors.Wrapf(err, "ar")
	}

	var tmp Snapshot
	if err := decMode.Unmarshal(data, &tmp); err != nil {
		return errors.Wrapf(err, "ar: decode snapshot")
	}

	*s = tmp
	return
}

// Save writes snapshot data to the given stream.
func (s *Snapshot) Save(w io.Writer) (err error) {
	defer recoverOnPanic(&err)

	if len(s.Memory) > MaxCells || len(s.Inputs) > MaxCells {
		return errors.Errorf("ar: snapshot exceeds %d cells", MaxCells)
	}

	data, err := encMode.Marshal(s)
	if err != nil {
		return errors.Wrapf(err, "ar: encode snapshot")
	}

	gz := gzip.NewWriter(w)
	writeHeader(gz)
	_, err = gz.Write(data)
	check(err)
	return gz.Close()
}

func recoverOnPanic(err *error) {
	x := recover()
	if x == nil {
		return
	}

	switch tx := x.(type) {
	case runtime.Error:
		panic(tx)
	case error:
		*err = errors.Wrapf(tx, "ar")
	default:
		*err = fmt.Errorf("ar: %v", tx)
	}
}

// String returns a human-readable dump of the snapshot's contents.
func (s *Snapshot) String() string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "IP: %d\n", s.IP)
	fmt.Fprintf(&sb, "Relative base: %d\n", s.RelativeBase)
	fmt.Fprintf(&sb, "Halted: %v\n", s.Halted)

	if len(s.Inputs) > 0 {
		fmt.Fprintf(&sb, "Inputs (%d): %v\n", len(s.Inputs), s.Inputs)
	}

	if len(s.Memory) > 0 {
		fmt.Fprintf(&sb, "Memory (%d):\n", len(s.Memory))
		for i := 0; i < len(s.Memory); i += 8 {
			end := i + 8
			if end > len(s.Memory) {
				end = len(s.Memory)
			}
			fmt.Fprintf(&sb, " %06d: %v\n", i, s.Memory[i:end])
		}
	}

	return sb.String()
}
