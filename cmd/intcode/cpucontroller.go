package main

import (
	"context"
	"time"

	"github.com/hexaflex/intcode/cpu"
)

// cancelCheckInterval is the number of cycles between context checks.
const cancelCheckInterval = 4096

// CPUController controls the execution of a CPU.
type CPUController struct {
	cpu        *cpu.CPU
	start      time.Time
	cycleCount uint64
}

// NewCPUController creates a new CPU controller.
func NewCPUController(c *cpu.CPU) *CPUController {
	return &CPUController{
		cpu:   c,
		start: time.Now(),
	}
}

// CPU returns the controlled CPU.
func (c *CPUController) CPU() *cpu.CPU {
	return c.cpu
}

// Cycles returns the number of steps performed so far.
func (c *CPUController) Cycles() uint64 {
	return c.cycleCount
}

// Frequency returns the average clock frequency in herz.
func (c *CPUController) Frequency() float64 {
	elapsed := time.Since(c.start).Seconds()
	if elapsed <= 0 {
		return 0
	}
	return float64(c.cycleCount) / elapsed
}

// Step performs a single exection step.
func (c *CPUController) Step() (cpu.Action, error) {
	c.cycleCount++
	return c.cpu.Step()
}

// Run steps the CPU until it produces an observable action or the
// context is cancelled.
func (c *CPUController) Run(ctx context.Context) (cpu.Action, error) {
	for {
		action, err := c.Step()
		if err != nil || action.Kind != cpu.None {
			return action, err
		}

		if c.cycleCount%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return cpu.Action{}, err
			}
		}
	}
}
