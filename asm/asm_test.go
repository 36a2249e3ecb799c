package asm

import (
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/program"
)

const echo = `
; Echo input until a zero is read.
const ZERO = 0
:loop
    in   [value]
    jez  [value], $done
    out  [value]
    jnz  $1, $loop
:done
    halt
:value
    data ZERO
`

func TestAssemble(t *testing.T) {
	at := newAsmTest(echo)
	at.want = program.Program{3, 11, 1006, 11, 10, 4, 11, 1105, 1, 0, 99, 0}
	p := runAsmTest(t, at)

	c := cpu.New(p, cpu.WithInput(5, 7, 0))

	var have []int64
	for {
		action, err := c.Run()
		if err != nil {
			t.Fatal(err)
		}

		if action.Kind == cpu.Halt {
			break
		}

		if action.Kind != cpu.Output {
			t.Fatalf("unexpected action %v", action.Kind)
		}
		have = append(have, action.Value)
	}

	if want := []int64{5, 7}; !reflect.DeepEqual(want, have) {
		t.Fatalf("output mismatch:\nwant: %v\nhave: %v", want, have)
	}
}

func TestAssembleRelative(t *testing.T) {
	at := newAsmTest("ARB $10\nout [rb-3]\nadd [rb+1], $2, [rb]\nhalt")
	at.want = program.Program{109, 10, 204, -3, 21201, 1, 2, 0, 99}
	runAsmTest(t, at)
}

func TestAssembleData(t *testing.T) {
	at := newAsmTest("halt\n:msg\ndata \"Hi\", 10, msg, $$ + 1")
	at.want = program.Program{99, 72, 105, 10, 1, 2}
	runAsmTest(t, at)
}

func TestAssembleConstants(t *testing.T) {
	at := newAsmTest("const A = 3\nconst B = A * 2 + end\nout $B\n:end\nhalt")
	at.want = program.Program{104, 8, 99}
	runAsmTest(t, at)
}

func TestAssembleCurrentAddress(t *testing.T) {
	// Jump to self: an endless loop.
	at := newAsmTest("out $1\njnz $1, $($$)")
	at.want = program.Program{104, 1, 1105, 1, 2}
	runAsmTest(t, at)
}

func TestAssembleErrors(t *testing.T) {
	for _, src := range []string{
		"foo $1",
		"add $1, $2",
		"add $1, $2, $3",
		"in [rb+1], [2]",
		"in 5",
		"out [rb*2]",
		"out [1",
		"out []",
		"out $x",
		"out $1 +",
		"out $(1",
		"out $\"a\"",
		":a\n:a\nhalt",
		":A\n:a\nhalt",
		":x\nconst X = 1\nhalt",
		"const X = $$",
		"const X = Y\nconst Y = 1",
		"const X",
		"const 1 = 2",
		":add\nhalt",
		":rb\nhalt",
		"data",
		"data [1]",
		`include "missing.asm"`,
		"include 12",
	} {
		if _, err := Assemble(strings.NewReader(src), nil); err == nil {
			t.Fatalf("%q: expected error", src)
		}
	}
}

func TestBuildIncludes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.asm"), "include \"lib/io.asm\"\n    jnz $1, $exit\n:exit\n    halt\n")
	writeFile(t, filepath.Join(dir, "lib", "io.asm"), "    out $7\n    include \"const.asm\"\n    out $SEVEN\n")
	writeFile(t, filepath.Join(dir, "lib", "const.asm"), "const SEVEN = 8\n")

	have, err := Build(filepath.Join(dir, "main.asm"), nil)
	if err != nil {
		t.Fatal(err)
	}

	want := program.Program{104, 7, 104, 8, 1105, 1, 7, 99}
	if !reflect.DeepEqual(want, have) {
		t.Fatalf("program mismatch:\nwant: %v\nhave: %v", want, have)
	}
}

func TestBuildSearchPaths(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib")
	writeFile(t, filepath.Join(dir, "main.asm"), "include \"io.asm\"\nhalt\n")
	writeFile(t, filepath.Join(lib, "io.asm"), "out $1\n")

	have, err := Build(filepath.Join(dir, "main.asm"), []string{lib})
	if err != nil {
		t.Fatal(err)
	}

	want := program.Program{104, 1, 99}
	if !reflect.DeepEqual(want, have) {
		t.Fatalf("program mismatch:\nwant: %v\nhave: %v", want, have)
	}
}

func TestBuildCircular(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.asm"), "include \"b.asm\"\n")
	writeFile(t, filepath.Join(dir, "b.asm"), "include \"a.asm\"\n")

	_, err := Build(filepath.Join(dir, "a.asm"), nil)
	if err == nil || !strings.Contains(err.Error(), "circular") {
		t.Fatalf("expected circular reference error; have %v", err)
	}
}

func TestDisassemble(t *testing.T) {
	src := Disassemble(program.Program{1002, 4, 3, 4, 33, 204, -1, 99})

	for _, want := range []string{
		"mul  [4], $3, [4]",
		"data 33",
		"out  [rb-1]",
		"halt",
		"; 0005",
	} {
		if !strings.Contains(src, want) {
			t.Fatalf("disassembly lacks %q:\n%s", want, src)
		}
	}
}

func TestDisassembleRoundTrip(t *testing.T) {
	for _, p := range []program.Program{
		{1, 0, 0, 0, 99},
		{3, 9, 8, 9, 10, 9, 4, 9, 99, -1, 8},
		{3, 3, 1107, -1, 8, 3, 4, 3, 99},
		{109, 1, 204, -1, 1001, 100, 1, 100, 1008, 100, 16, 101, 1006, 101, 0, 99},
		{104, 1125899906842624, 99},
		{0, -5, 11199, 1101, 1, 2},
		{11101, 1, 1, 1, 1, 2},
		{203, 0, 21107, 3, 4, 5, 99, 1},
		{math.MinInt64},
		{1101, math.MinInt64, 0, 0, 99},
		{22201, math.MinInt64, 0, 0, 99},
		{1, math.MinInt64, math.MaxInt64, 0, 99},
	} {
		src := Disassemble(p)

		have, err := Assemble(strings.NewReader(src), nil)
		if err != nil {
			t.Fatalf("%v: %v\n%s", p, err, src)
		}

		if !reflect.DeepEqual(p, have) {
			t.Fatalf("round trip mismatch:\nwant: %v\nhave: %v\n%s", p, have, src)
		}
	}
}

type asmTest struct {
	src  string
	want program.Program
}

func newAsmTest(src string) *asmTest {
	return &asmTest{src: src}
}

func runAsmTest(t *testing.T, at *asmTest) program.Program {
	t.Helper()

	have, err := Assemble(strings.NewReader(at.src), nil)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(at.want, have) {
		t.Fatalf("program mismatch:\nwant: %v\nhave: %v", at.want, have)
	}

	return have
}

func writeFile(t *testing.T, file, data string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(file, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
}
