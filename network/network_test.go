package network

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/program"
)

// relay forwards every packet (x, y) it receives to address+1 as
// (x, y+address).
//
//	 0: IN  [100]             ; own address
//	 2: IN  [101]             ; x, or the idle value
//	 4: CEQ [101], $-1, [102]
//	 8: JNZ [102], $2         ; nothing received; ask again
//	11: IN  [103]             ; y
//	13: ADD [100], $1, [104]  ; destination
//	17: ADD [103], [100], [103]
//	21: OUT [104]
//	23: OUT [101]
//	25: OUT [103]
//	27: JNZ $1, $2
//	30: HALT
var relay = program.Program{
	3, 100,
	3, 101,
	1008, 101, -1, 102,
	1005, 102, 2,
	3, 103,
	1001, 100, 1, 104,
	1, 103, 100, 103,
	4, 104,
	4, 101,
	4, 103,
	1105, 1, 2,
	99,
}

func TestNetworkRelay(t *testing.T) {
	nw := New(relay, 3)

	if err := nw.Inject(0, 10, 0); err != nil {
		t.Fatal(err)
	}

	if err := nw.Run(context.Background(), (*Network).Idle); err != nil {
		t.Fatal(err)
	}

	want := []Packet{{Src: 2, Dst: 3, Words: []int64{10, 3}}}
	if have := nw.Outbox(); !reflect.DeepEqual(want, have) {
		t.Fatalf("outbox mismatch:\nwant: %+v\nhave: %+v", want, have)
	}

	if have := nw.Outbox(); len(have) != 0 {
		t.Fatalf("outbox not cleared: %+v", have)
	}

	// An idle network comes back to life when a packet is injected.
	if err := nw.Inject(1, 5, 5); err != nil {
		t.Fatal(err)
	}
	if nw.Idle() {
		t.Fatalf("network reports idle with a queued packet")
	}

	if err := nw.Run(context.Background(), (*Network).Idle); err != nil {
		t.Fatal(err)
	}

	want = []Packet{{Src: 2, Dst: 3, Words: []int64{5, 8}}}
	if have := nw.Outbox(); !reflect.DeepEqual(want, have) {
		t.Fatalf("outbox mismatch:\nwant: %+v\nhave: %+v", want, have)
	}
}

func TestNetworkIdleValue(t *testing.T) {
	//   IN  [20]  ; address
	//   IN  [21]
	//   OUT [21]
	//   HALT
	prog := program.Program{3, 20, 3, 21, 4, 21, 99}

	// A one word packet: the output only holds the destination.
	nw := New(prog, 2, WithIdleValue(-7), WithPacketSize(1))

	for !nw.Halted() {
		if err := nw.Step(); err != nil {
			t.Fatal(err)
		}
	}

	// Each node emits a single word, which is not a complete packet.
	have := nw.Outbox()
	if len(have) != 0 {
		t.Fatalf("expected incomplete packets to stay buffered; have %+v", have)
	}

	for addr := 0; addr < nw.Len(); addr++ {
		if v, _ := nw.Node(addr).Peek(21); v != -7 {
			t.Fatalf("node %d: want idle value -7; have %d", addr, v)
		}
	}

	if nw.Node(2) != nil || nw.Node(-1) != nil {
		t.Fatalf("expected nil for unknown addresses")
	}

	if err := nw.Run(context.Background(), func(*Network) bool { return false }); !errors.Is(err, ErrHalted) {
		t.Fatalf("want %v; have %v", ErrHalted, err)
	}
}

func TestNetworkInjectInvalid(t *testing.T) {
	nw := New(relay, 2)

	if err := nw.Inject(2, 1, 2); err == nil {
		t.Fatalf("expected error for unknown address")
	}
	if err := nw.Inject(0, 1); err == nil {
		t.Fatalf("expected error for short packet")
	}
}

func TestNetworkFailure(t *testing.T) {
	nw := New(program.Program{42}, 3)

	err := nw.Step()
	if !errors.Is(err, cpu.ErrMalformedProgram) {
		t.Fatalf("want %v; have %v", cpu.ErrMalformedProgram, err)
	}

	var errorset ErrorSet
	if !errors.As(err, &errorset) || errorset.Len() != 3 {
		t.Fatalf("want 3 node errors; have %v", err)
	}

	if !nw.Halted() {
		t.Fatalf("expected failed nodes to stop the network")
	}
}

func TestNetworkCancel(t *testing.T) {
	// JNZ $1, $0 -- spin forever.
	nw := New(program.Program{1105, 1, 0}, 2)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := nw.Run(ctx, func(*Network) bool { return false })
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("want %v; have %v", context.DeadlineExceeded, err)
	}
	if nw.Steps() == 0 {
		t.Fatalf("network never stepped")
	}
}

func TestNetworkCPUOptions(t *testing.T) {
	nw := New(program.Program{1101, 1, 1, 100, 99}, 1, WithCPUOptions(cpu.WithMemoryLimit(10)))

	if err := nw.Step(); !errors.Is(err, cpu.ErrMemoryLimit) {
		t.Fatalf("want %v; have %v", cpu.ErrMemoryLimit, err)
	}
}
