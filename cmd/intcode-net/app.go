package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/network"
	"github.com/hexaflex/intcode/program"
)

// App defines application context.
type App struct {
	config *Config
	log    *slog.Logger
	stdout io.Writer
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config, log *slog.Logger, stdout io.Writer) *App {
	return &App{
		config: config,
		log:    log,
		stdout: stdout,
	}
}

// Run loads the program and runs it in the configured mode.
func (a *App) Run(ctx context.Context) error {
	a.log.Info("starting", "version", Version(), "mode", a.config.Mode)

	prog, err := program.ReadFile(a.config.Program)
	if err != nil {
		return err
	}

	if a.config.Mode == ModePipeline {
		return a.runPipeline(ctx, prog)
	}
	return a.runNetwork(ctx, prog)
}

// runPipeline runs the program as a chain of stages and prints the value
// produced by the last one.
func (a *App) runPipeline(ctx context.Context, prog program.Program) error {
	c := a.config
	pl := network.Pipeline{
		Program: prog,
		Phases:  c.Phases,
		Loop:    c.Loop,
		Options: []cpu.Option{cpu.WithMemoryLimit(c.MemoryLimit)},
		Log:     a.log,
	}

	v, err := pl.Run(ctx, c.Input)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(a.stdout, v)
	return err
}

// runNetwork runs the program on every node of a network and prints the
// packets leaving it.
func (a *App) runNetwork(ctx context.Context, prog program.Program) error {
	c := a.config
	nw := network.New(prog, c.Nodes,
		network.WithPacketSize(c.PacketSize),
		network.WithIdleValue(c.Idle),
		network.WithLogger(a.log),
		network.WithCPUOptions(cpu.WithMemoryLimit(c.MemoryLimit)))

	var nat *network.NAT
	if c.NAT >= 0 {
		nat = network.NewNAT(c.NAT)
	}

	var sent int
	var failure error

	done := func(nw *network.Network) bool {
		packets := nw.Outbox()
		if nat != nil {
			packets = nat.Observe(packets)
		}

		for _, p := range packets {
			a.printPacket(strconv.Itoa(p.Src), p.Dst, p.Words)
			sent++
			if c.Count > 0 && sent >= c.Count {
				return true
			}
		}

		if !nw.Idle() {
			return false
		}

		if nat == nil {
			a.log.Info("network idle")
			return true
		}

		p, ok, err := nat.Wake(nw)
		if err != nil {
			failure = err
			return true
		}

		if !ok {
			a.log.Info("network idle")
			return true
		}

		a.printPacket("nat", 0, p.Words)

		if nat.Repeated() {
			a.log.Info("nat delivered the same value twice in a row", "value", p.Words[len(p.Words)-1])
			return true
		}
		return false
	}

	err := nw.Run(ctx, done)
	a.log.Info("stopped", "steps", nw.Steps(), "packets", sent)

	if errors.Is(err, network.ErrHalted) {
		a.log.Info("all nodes halted")
		return failure
	}

	if err != nil {
		return err
	}
	return failure
}

// printPacket writes a single packet as "src -> dst: w0,w1,...".
func (a *App) printPacket(src string, dst int64, words []int64) {
	fields := make([]string, len(words))
	for i, w := range words {
		fields[i] = strconv.FormatInt(w, 10)
	}
	fmt.Fprintf(a.stdout, "%s -> %d: %s\n", src, dst, strings.Join(fields, ","))
}
