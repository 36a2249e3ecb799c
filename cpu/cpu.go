// Package cpu implements the Intcode interpreter.
//
// A CPU only executes when the caller invokes Step or Run. When an input
// instruction finds the queue empty, Step reports RequiresInput and leaves the
// instruction pointer on that instruction; the caller pushes input and steps
// again.
package cpu

import (
	"github.com/pkg/errors"

	"github.com/hexaflex/intcode/arch"
	"github.com/hexaflex/intcode/ar"
	"github.com/hexaflex/intcode/program"
)

// TraceFunc represents a callback handler for debug trace output.
type TraceFunc func(*Instruction)

// CPU implements the runtime.
type CPU struct {
	memory Memory      // System memory.
	instr  Instruction // Decoded instruction data.
	trace  TraceFunc   // Handler for debug trace output.
	inputs []int64     // Pending input values.
	ip     int64       // Instruction pointer.
	rb     int64       // Relative base.
	halted bool        // Has the program executed HALT?
	fault  error       // Fatal error which aborted execution.
}

// New creates a new CPU for the given program.
// The program is copied; it can be reused to create other CPUs.
func New(p program.Program, opts ...Option) *CPU {
	c := &CPU{
		trace:  func(*Instruction) { /* nop */ },
		memory: NewMemory(p, DefaultMemoryLimit),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// PushInput appends the given values to the input queue.
// This is legal at any time; values pushed after HALT are never consumed.
func (c *CPU) PushInput(values ...int64) {
	c.inputs = append(c.inputs, values...)
}

// Pending returns the number of queued input values.
func (c *CPU) Pending() int {
	return len(c.inputs)
}

// IP returns the instruction pointer.
func (c *CPU) IP() int64 {
	return c.ip
}

// RelativeBase returns the relative base register.
func (c *CPU) RelativeBase() int64 {
	return c.rb
}

// Memory returns a copy of the current tape contents.
func (c *CPU) Memory() []int64 {
	return c.memory.Cells()
}

// Peek returns the value at the given address.
func (c *CPU) Peek(addr int64) (int64, error) {
	v, err := c.memory.Load(addr)
	if err != nil {
		return 0, errors.Wrapf(err, "peek %d", addr)
	}
	return v, nil
}

// Poke overwrites the value at the given address, bypassing the
// instruction stream. The tape grows as needed.
func (c *CPU) Poke(addr, value int64) error {
	if err := c.memory.Store(addr, value); err != nil {
		return errors.Wrapf(err, "poke %d", addr)
	}
	return nil
}

// Err returns the fatal error which aborted execution, if any.
func (c *CPU) Err() error {
	return c.fault
}

// State returns the current execution state.
// AwaitingInput is derived from the decoded instruction at the instruction
// pointer; it is not stored.
func (c *CPU) State() State {
	switch {
	case c.fault != nil:
		return Faulted
	case c.halted:
		return Halted
	}

	if len(c.inputs) > 0 {
		return Running
	}

	// Decode so a malformed IN, which Step reports as a fault, is not
	// mistaken for one waiting on input.
	var instr Instruction
	if err := instr.Decode(&c.memory, c.ip, c.rb); err == nil && instr.Opcode == arch.IN {
		return AwaitingInput
	}
	return Running
}

// Step performs a single execution step.
//
// Any returned error is fatal: the CPU stays faulted and every subsequent
// call returns the same error. Stepping a halted CPU returns ErrHalted.
func (c *CPU) Step() (Action, error) {
	if c.fault != nil {
		return Action{}, c.fault
	}

	if c.halted {
		return Action{}, ErrHalted
	}

	instr := &c.instr
	args := instr.Args[:]

	if err := instr.Decode(&c.memory, c.ip, c.rb); err != nil {
		return c.abort(err)
	}

	c.trace(instr)

	var action Action
	var err error
	next := c.ip + instr.Len()

	switch instr.Opcode {
	case arch.ADD:
		err = c.store(args[2], args[0].Value+args[1].Value)
	case arch.MUL:
		err = c.store(args[2], args[0].Value*args[1].Value)

	case arch.IN:
		if len(c.inputs) == 0 {
			// Leave ip on this instruction so the next step retries it.
			return Action{Kind: RequiresInput}, nil
		}
		v := c.inputs[0]
		c.inputs = c.inputs[1:]
		err = c.store(args[0], v)
	case arch.OUT:
		action = Action{Kind: Output, Value: args[0].Value}

	case arch.JNZ:
		if args[0].Value != 0 {
			next, err = c.jump(args[1].Value)
		}
	case arch.JEZ:
		if args[0].Value == 0 {
			next, err = c.jump(args[1].Value)
		}

	case arch.CLT:
		err = c.store(args[2], _bool(args[0].Value < args[1].Value))
	case arch.CEQ:
		err = c.store(args[2], _bool(args[0].Value == args[1].Value))

	case arch.ARB:
		c.rb += args[0].Value

	case arch.HALT:
		c.halted = true
		action = Action{Kind: Halt}
	}

	if err != nil {
		return c.abort(err)
	}

	c.ip = next
	return action, nil
}

// Run steps until an instruction produces an observable action: Output,
// RequiresInput or Halt.
func (c *CPU) Run() (Action, error) {
	for {
		action, err := c.Step()
		if err != nil || action.Kind != None {
			return action, err
		}
	}
}

// Snapshot captures the complete machine state.
func (c *CPU) Snapshot() *ar.Snapshot {
	inputs := make([]int64, len(c.inputs))
	copy(inputs, c.inputs)

	return &ar.Snapshot{
		Memory:       c.memory.Cells(),
		IP:           c.ip,
		RelativeBase: c.rb,
		Inputs:       inputs,
		Halted:       c.halted,
	}
}

// Restore creates a new CPU from the given snapshot.
func Restore(s *ar.Snapshot, opts ...Option) (*CPU, error) {
	if s.IP < 0 {
		return nil, errors.Wrapf(ErrNegativeAddress, "restore: instruction pointer %d", s.IP)
	}

	c := New(s.Memory, opts...)
	c.ip = s.IP
	c.rb = s.RelativeBase
	c.halted = s.Halted
	c.PushInput(s.Inputs...)

	if c.memory.limit > 0 && int64(c.memory.Len()) > c.memory.limit {
		return nil, errors.Wrapf(ErrMemoryLimit, "restore: %d cells", c.memory.Len())
	}

	return c, nil
}

// store writes value to the address held by the given write operand.
func (c *CPU) store(op Operand, value int64) error {
	if err := c.memory.Store(op.Address, value); err != nil {
		return NewError(&c.instr, err, "store %d at %d", value, op.Address)
	}
	return nil
}

// jump validates the given jump target.
func (c *CPU) jump(target int64) (int64, error) {
	if target < 0 {
		return 0, NewError(&c.instr, ErrNegativeAddress, "jump target %d", target)
	}
	return target, nil
}

// abort marks the CPU as faulted.
func (c *CPU) abort(err error) (Action, error) {
	c.fault = err
	return Action{}, err
}

func _bool(v bool) int64 {
	if v {
		return 1
	}
	return 0
}
