package main

import (
	"io"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestConfigFlags(t *testing.T) {
	c, err := newConfig([]string{
		"-input", "1, 2,,3",
		"-set", "1=12",
		"-set", "2 = -2",
		"-ascii",
		"-memory-limit", "4096",
		"-save", "out.icsn",
		"prog.ic",
	}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.Program != "prog.ic" {
		t.Fatalf("program mismatch: have %q", c.Program)
	}

	if !reflect.DeepEqual(c.Inputs, []int64{1, 2, 3}) {
		t.Fatalf("inputs mismatch: have %v", c.Inputs)
	}

	want := []Patch{{Addr: 1, Value: 12}, {Addr: 2, Value: -2}}
	if !reflect.DeepEqual(c.Patches, want) {
		t.Fatalf("patches mismatch:\nwant: %v\nhave: %v", want, c.Patches)
	}

	if !c.ASCII || c.MemoryLimit != 4096 || c.Save != "out.icsn" {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigDefaults(t *testing.T) {
	c, err := newConfig([]string{"prog.ic"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.MemoryLimit != 1<<24 {
		t.Fatalf("memory limit mismatch: have %d", c.MemoryLimit)
	}

	if c.ASCII || c.Trace || c.InputRate != 0 || len(c.Inputs) > 0 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "intcode.toml")
	src := `
program = "day09.ic"
inputs = [1, 2]
ascii = true
input-rate = 60.0

[[patch]]
addr = 0
value = 2
`
	if err := os.WriteFile(file, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := newConfig([]string{"-config", file, "-ascii=false"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.Program != "day09.ic" {
		t.Fatalf("program mismatch: have %q", c.Program)
	}

	if !reflect.DeepEqual(c.Inputs, []int64{1, 2}) {
		t.Fatalf("inputs mismatch: have %v", c.Inputs)
	}

	if !reflect.DeepEqual(c.Patches, []Patch{{Addr: 0, Value: 2}}) {
		t.Fatalf("patches mismatch: have %v", c.Patches)
	}

	if c.ASCII {
		t.Fatalf("command line flag did not override config file")
	}

	if c.InputRate != 60 || c.MemoryLimit != 1<<24 {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigFileOverride(t *testing.T) {
	file := filepath.Join(t.TempDir(), "intcode.toml")
	if err := os.WriteFile(file, []byte(`program = "a.ic"`+"\ninputs = [9]\n"), 0644); err != nil {
		t.Fatal(err)
	}

	c, err := newConfig([]string{"-config", file, "-input", "4", "b.ic"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.Program != "b.ic" || !reflect.DeepEqual(c.Inputs, []int64{4}) {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigInvalid(t *testing.T) {
	tests := [][]string{
		{},
		{"-memory-limit", "-1", "prog.ic"},
		{"-input-rate", "-2", "prog.ic"},
		{"-input", "1,x", "prog.ic"},
		{"-set", "12", "prog.ic"},
		{"-set", "-1=2", "prog.ic"},
		{"-set", "1=y", "prog.ic"},
		{"-config", "/nonexistent/intcode.toml", "prog.ic"},
		{"-unknown", "prog.ic"},
	}

	for _, args := range tests {
		if _, err := newConfig(args, io.Discard); err == nil {
			t.Fatalf("newConfig(%q): expected error", args)
		}
	}
}

func TestConfigResumeOnly(t *testing.T) {
	c, err := newConfig([]string{"-resume", "state.icsn"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.Resume != "state.icsn" || c.Program != "" {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigInspectOnly(t *testing.T) {
	c, err := newConfig([]string{"-inspect", "state.icsn"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if c.Inspect != "state.icsn" || c.Program != "" {
		t.Fatalf("unexpected config: %+v", c)
	}
}

func TestConfigVersion(t *testing.T) {
	c, err := newConfig([]string{"-version"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}

	if !c.Version {
		t.Fatalf("version flag not set")
	}
}

func TestFilteredSplit(t *testing.T) {
	have := filteredSplit(" a,, ,b ,c,", ",")
	want := []string{"a", "b", "c"}
	if !reflect.DeepEqual(have, want) {
		t.Fatalf("filteredSplit mismatch:\nwant: %q\nhave: %q", want, have)
	}
}
