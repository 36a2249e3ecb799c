package ar

import (
	"bytes"
	"compress/gzip"
	"reflect"
	"strings"
	"testing"
)

func TestSnapshot(t *testing.T) {
	s := New()
	s.Memory = []int64{109, 1, 204, -1, 1125899906842624, 0, 99}
	s.IP = 2
	s.RelativeBase = 1
	s.Inputs = []int64{7, -1}

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatal(err)
	}

	r := New()
	if err := r.Load(&buf); err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(s, r) {
		t.Fatalf("snapshot mismatch:\nhave: %v\nwant: %v", r, s)
	}
}

func TestSnapshotLargeTape(t *testing.T) {
	s := New()
	s.Memory = make([]int64, 200000)
	s.Memory[0] = 99
	s.Memory[len(s.Memory)-1] = -3
	s.Inputs = make([]int64, 140000)

	var buf bytes.Buffer
	if err := s.Save(&buf); err != nil {
		t.Fatal(err)
	}

	r := New()
	if err := r.Load(&buf); err != nil {
		t.Fatal(err)
	}

	if len(r.Memory) != len(s.Memory) || len(r.Inputs) != len(s.Inputs) {
		t.Fatalf("size mismatch: want %d cells and %d inputs; have %d and %d",
			len(s.Memory), len(s.Inputs), len(r.Memory), len(r.Inputs))
	}

	if !reflect.DeepEqual(s, r) {
		t.Fatalf("snapshot contents mismatch")
	}
}

func TestLoadInvalid(t *testing.T) {
	if err := New().Load(strings.NewReader("1,2,3")); err == nil {
		t.Fatalf("expected error for non-gzip input")
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	gz.Write([]byte("NOPE\x01\x00"))
	gz.Close()

	if err := New().Load(&buf); err == nil {
		t.Fatalf("expected error for bad magic")
	}

	buf.Reset()
	gz = gzip.NewWriter(&buf)
	gz.Write(append(magic[:], 9, 0))
	gz.Close()

	err := New().Load(&buf)
	if err == nil || !strings.Contains(err.Error(), "version") {
		t.Fatalf("expected version error; have %v", err)
	}
}

func TestString(t *testing.T) {
	s := &Snapshot{Memory: []int64{1, 0, 0, 0, 99}, IP: 4, Halted: true}
	have := s.String()

	for _, want := range []string{"IP: 4", "Halted: true", "[1 0 0 0 99]"} {
		if !strings.Contains(have, want) {
			t.Fatalf("dump is missing %q:\n%s", want, have)
		}
	}
}
