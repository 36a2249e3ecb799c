// Package network connects multiple Intcode machines.
//
// Machines never share memory. A Network interleaves them cooperatively and
// routes their output through per-destination queues it owns; a Pipeline runs
// each machine in its own goroutine and links them with channels.
package network

import (
	"context"
	"log/slog"

	"github.com/pkg/errors"

	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/program"
)

// Defaults for Network options.
const (
	DefaultPacketSize = 2
	DefaultIdleValue  = -1
)

// Packet defines a message sent by a node.
type Packet struct {
	Src   int     // Address of the sending node.
	Dst   int64   // Destination address.
	Words []int64 // Payload.
}

// node defines a single machine in the network.
type node struct {
	cpu    *cpu.CPU
	out    []int64  // Output words of the packet being assembled.
	queue  []Packet // Packets waiting to be delivered.
	idle   bool     // Did the node ask for input with nothing to deliver?
	halted bool     // Has the node's program halted?
	failed bool     // Did the node hit a fatal error?
}

// Network runs a set of machines in round-robin order and routes the packets
// they send to each other.
//
// Every machine starts with its own address as the first input. A packet is
// written as the destination address followed by PacketSize payload words.
// Packets for addresses outside the network are collected in the outbox.
// A machine asking for input receives the payload of its next queued packet,
// or the idle value if there is none.
type Network struct {
	nodes      []*node
	outbox     []Packet
	log        *slog.Logger
	cpuOpts    []cpu.Option
	packetSize int
	idleValue  int64
	steps      uint64
}

// Option configures a Network.
type Option func(*Network)

// WithPacketSize sets the number of payload words per packet.
func WithPacketSize(n int) Option {
	return func(nw *Network) {
		if n > 0 {
			nw.packetSize = n
		}
	}
}

// WithIdleValue sets the value delivered to a node asking for input while
// its queue is empty.
func WithIdleValue(v int64) Option {
	return func(nw *Network) { nw.idleValue = v }
}

// WithLogger sets the logger used for routing and lifecycle messages.
func WithLogger(log *slog.Logger) Option {
	return func(nw *Network) {
		if log != nil {
			nw.log = log
		}
	}
}

// WithCPUOptions sets options applied to every machine in the network.
func WithCPUOptions(opts ...cpu.Option) Option {
	return func(nw *Network) { nw.cpuOpts = append(nw.cpuOpts, opts...) }
}

// New creates a network of size machines, each running its own copy of p.
func New(p program.Program, size int, opts ...Option) *Network {
	nw := &Network{
		log:        slog.New(slog.DiscardHandler),
		packetSize: DefaultPacketSize,
		idleValue:  DefaultIdleValue,
	}

	for _, opt := range opts {
		opt(nw)
	}

	nw.nodes = make([]*node, size)
	for addr := range nw.nodes {
		c := cpu.New(p, nw.cpuOpts...)
		c.PushInput(int64(addr))
		nw.nodes[addr] = &node{cpu: c}
	}

	nw.log.Debug("network created", "nodes", size, "packet-size", nw.packetSize)
	return nw
}

// Len returns the number of nodes in the network.
func (nw *Network) Len() int {
	return len(nw.nodes)
}

// Steps returns the number of completed round-robin passes.
func (nw *Network) Steps() uint64 {
	return nw.steps
}

// Node returns the machine with the given address.
// Returns nil if the address is not part of the network.
func (nw *Network) Node(addr int) *cpu.CPU {
	if addr < 0 || addr >= len(nw.nodes) {
		return nil
	}
	return nw.nodes[addr].cpu
}

// Inject queues a packet for the given node from outside the network.
func (nw *Network) Inject(dst int, words ...int64) error {
	if dst < 0 || dst >= len(nw.nodes) {
		return errors.Errorf("network: inject: unknown address %d", dst)
	}

	if len(words) != nw.packetSize {
		return errors.Errorf("network: inject: want %d words; have %d", nw.packetSize, len(words))
	}

	nw.deliver(Packet{Src: -1, Dst: int64(dst), Words: append([]int64(nil), words...)})
	return nil
}

// Outbox returns and clears the packets sent to addresses outside the network.
func (nw *Network) Outbox() []Packet {
	out := nw.outbox
	nw.outbox = nil
	return out
}

// Idle returns true if every running node is waiting for input and no
// packets are queued.
func (nw *Network) Idle() bool {
	for _, n := range nw.nodes {
		if n.halted || n.failed {
			continue
		}
		if !n.idle || len(n.queue) > 0 {
			return false
		}
	}
	return true
}

// Halted returns true if no node can make progress anymore.
func (nw *Network) Halted() bool {
	for _, n := range nw.nodes {
		if !n.halted && !n.failed {
			return false
		}
	}
	return true
}

// Step performs one execution step on every running node, in address order.
// Fatal node errors are collected in an ErrorSet; the failed nodes are
// skipped from then on.
func (nw *Network) Step() error {
	var errorset ErrorSet

	for addr, n := range nw.nodes {
		if n.halted || n.failed {
			continue
		}

		action, err := n.cpu.Step()
		if err != nil {
			n.failed = true
			nw.log.Error("node failed", "node", addr, "error", err)
			errorset.Append(errors.Wrapf(err, "node %d", addr))
			continue
		}

		switch action.Kind {
		case cpu.Output:
			n.out = append(n.out, action.Value)
			if len(n.out) == 1+nw.packetSize {
				words := make([]int64, nw.packetSize)
				copy(words, n.out[1:])
				nw.route(Packet{Src: addr, Dst: n.out[0], Words: words})
				n.out = n.out[:0]
			}

		case cpu.RequiresInput:
			if len(n.queue) > 0 {
				p := n.queue[0]
				n.queue = n.queue[1:]
				n.cpu.PushInput(p.Words...)
				n.idle = false
			} else {
				n.cpu.PushInput(nw.idleValue)
				n.idle = true
			}

		case cpu.Halt:
			n.halted = true
			nw.log.Info("node halted", "node", addr)
		}
	}

	nw.steps++

	if errorset.Len() == 0 {
		return nil
	}
	return errorset
}

// Run steps the network until done returns true, the context is cancelled,
// a node fails or every node has halted.
func (nw *Network) Run(ctx context.Context, done func(*Network) bool) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if done(nw) {
			return nil
		}

		if nw.Halted() {
			return ErrHalted
		}

		if err := nw.Step(); err != nil {
			return err
		}
	}
}

// route hands the given packet to its destination or to the outbox.
func (nw *Network) route(p Packet) {
	if p.Dst < 0 || p.Dst >= int64(len(nw.nodes)) {
		nw.log.Debug("packet leaves network", "src", p.Src, "dst", p.Dst, "words", p.Words)
		nw.outbox = append(nw.outbox, p)
		return
	}

	nw.log.Debug("packet routed", "src", p.Src, "dst", p.Dst, "words", p.Words)
	nw.deliver(p)
}

// deliver queues p at its destination node.
func (nw *Network) deliver(p Packet) {
	n := nw.nodes[p.Dst]
	n.queue = append(n.queue, p)
	n.idle = false
}
