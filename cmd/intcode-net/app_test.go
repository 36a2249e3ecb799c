package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/hexaflex/intcode/cpu"
)

// sender reports (address, address*10) to address 255, then keeps reading.
//
//	 0: IN  [100]
//	 2: MUL [100], $10, [101]
//	 6: OUT $255
//	 8: OUT [100]
//	10: OUT [101]
//	12: IN  [102]
//	14: JNZ $1, $12
const sender = "3,100,1002,100,10,101,104,255,4,100,4,101,3,102,1105,1,12"

func TestNetworkMode(t *testing.T) {
	c := testConfig(t, sender)
	c.Nodes = 3
	c.Count = 0

	expectOutput(t, c, "0 -> 255: 0,0\n1 -> 255: 1,10\n2 -> 255: 2,20\n")
}

func TestNetworkCount(t *testing.T) {
	c := testConfig(t, sender)
	c.Nodes = 3
	c.Count = 2

	expectOutput(t, c, "0 -> 255: 0,0\n1 -> 255: 1,10\n")
}

func TestNetworkNAT(t *testing.T) {
	c := testConfig(t, sender)
	c.Nodes = 1
	c.Count = 0
	c.NAT = 255

	expectOutput(t, c, "nat -> 0: 0,0\n")
}

func TestNetworkHalted(t *testing.T) {
	c := testConfig(t, "3,0,99")
	c.Nodes = 2

	expectOutput(t, c, "")
}

func TestNetworkFailure(t *testing.T) {
	c := testConfig(t, "98")
	c.Nodes = 2

	err := NewApp(c, slog.New(slog.DiscardHandler), new(bytes.Buffer)).Run(context.Background())
	if !errors.Is(err, cpu.ErrMalformedProgram) {
		t.Fatalf("error mismatch: want %v, have %v", cpu.ErrMalformedProgram, err)
	}
}

func TestPipelineMode(t *testing.T) {
	c := testConfig(t, "3,15,3,16,1002,16,10,16,1,16,15,15,4,15,99,0,0")
	c.Mode = ModePipeline
	c.Phases = []int64{4, 3, 2, 1, 0}

	expectOutput(t, c, "43210\n")
}

func TestPipelineLoopMode(t *testing.T) {
	c := testConfig(t, "3,26,1001,26,-4,26,3,27,1002,27,2,27,1,27,26,27,4,27,1001,28,-1,28,1005,28,6,99,0,0,5")
	c.Mode = ModePipeline
	c.Phases = []int64{9, 8, 7, 6, 5}
	c.Loop = true

	expectOutput(t, c, "139629729\n")
}

func testConfig(t *testing.T, src string) *Config {
	file := filepath.Join(t.TempDir(), "program.ic")
	if err := os.WriteFile(file, []byte(src), 0644); err != nil {
		t.Fatal(err)
	}

	c := defaultConfig()
	c.Program = file
	return c
}

func expectOutput(t *testing.T, c *Config, want string) {
	t.Helper()

	var stdout bytes.Buffer
	if err := NewApp(c, slog.New(slog.DiscardHandler), &stdout).Run(context.Background()); err != nil {
		t.Fatal(err)
	}

	if have := stdout.String(); have != want {
		t.Fatalf("output mismatch:\nwant: %q\nhave: %q", want, have)
	}
}
