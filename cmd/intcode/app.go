package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/time/rate"

	"github.com/hexaflex/intcode/ar"
	"github.com/hexaflex/intcode/cpu"
	"github.com/hexaflex/intcode/program"
)

// ErrInputExhausted is returned when the program asks for input after
// stdin has been fully consumed and no snapshot file was configured.
var ErrInputExhausted = errors.New("program requires input but stdin is exhausted")

// App defines application context.
type App struct {
	config  *Config        // Application configuration.
	log     *slog.Logger   // Structured logger.
	cpu     *CPUController // VM with program to be run.
	limiter *rate.Limiter  // Paces input requests, if configured.
	stdin   io.Reader      // Source of program input.
	lines   chan inputLine // Lines read from stdin; started on first use.
	stdout  *bufio.Writer  // Destination for program output.
	trace   io.Writer      // Destination for trace output.
}

// inputLine is a single line read from stdin, along with the read error.
type inputLine struct {
	text string
	err  error
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config, log *slog.Logger, stdin io.Reader, stdout, trace io.Writer) *App {
	var a App
	a.config = config
	a.log = log
	a.stdin = stdin
	a.stdout = bufio.NewWriter(stdout)
	a.trace = trace

	if config.InputRate > 0 {
		a.limiter = rate.NewLimiter(rate.Limit(config.InputRate), 1)
	}

	return &a
}

// Run loads the program and executes it until it halts, fails or suspends
// for lack of input.
func (a *App) Run(ctx context.Context) error {
	log := a.log
	log.Info("starting", "version", Version())

	if len(a.config.Inspect) > 0 {
		return a.inspect()
	}

	if err := a.loadProgram(); err != nil {
		return err
	}

	defer a.stdout.Flush()
	defer a.logSummary()

	for {
		action, err := a.cpu.Run(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("interrupted")
				a.stdout.Flush()
				return a.suspend(err)
			}
			return err
		}

		switch action.Kind {
		case cpu.Output:
			if err := a.writeOutput(action.Value); err != nil {
				return err
			}

		case cpu.RequiresInput:
			if err := a.stdout.Flush(); err != nil {
				return err
			}

			if a.limiter != nil {
				if err := a.limiter.Wait(ctx); err != nil {
					return a.suspend(err)
				}
			}

			ok, err := a.readInput(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Info("interrupted while waiting for input")
					return a.suspend(err)
				}
				return err
			}

			if !ok {
				log.Info("input exhausted", "ip", a.cpu.CPU().IP())
				return a.suspend(ErrInputExhausted)
			}

		case cpu.Halt:
			log.Info("halted")
			return nil
		}
	}
}

// inspect prints the contents of the configured snapshot file.
func (a *App) inspect() error {
	s, err := loadSnapshot(a.config.Inspect)
	if err != nil {
		return err
	}

	if _, err := a.stdout.WriteString(s.String()); err != nil {
		return err
	}
	return a.stdout.Flush()
}

// loadProgram creates the CPU from the configured program or snapshot.
// Memory writes and initial inputs only apply to a fresh program; a
// resumed machine continues with the state stored in its snapshot.
func (a *App) loadProgram() error {
	c := a.config
	opts := []cpu.Option{cpu.WithMemoryLimit(c.MemoryLimit)}
	if c.Trace {
		opts = append(opts, cpu.WithTrace(a.printTrace))
	}

	if len(c.Resume) > 0 {
		a.log.Info("resuming", "snapshot", c.Resume)

		s, err := loadSnapshot(c.Resume)
		if err != nil {
			return err
		}

		vm, err := cpu.Restore(s, opts...)
		if err != nil {
			return errors.Wrapf(err, "%s", c.Resume)
		}

		if len(c.Patches) > 0 || len(c.Inputs) > 0 {
			a.log.Warn("memory writes and initial inputs are ignored when resuming",
				"patches", len(c.Patches), "inputs", len(c.Inputs))
		}

		a.cpu = NewCPUController(vm)
		return nil
	}

	a.log.Info("loading", "program", c.Program)

	prog, err := program.ReadFile(c.Program)
	if err != nil {
		return err
	}

	vm := cpu.New(prog, opts...)

	for _, p := range c.Patches {
		a.log.Debug("memory write", "addr", p.Addr, "value", p.Value)
		if err := vm.Poke(p.Addr, p.Value); err != nil {
			return err
		}
	}

	vm.PushInput(c.Inputs...)
	a.cpu = NewCPUController(vm)
	return nil
}

// suspend writes a snapshot of the machine if a snapshot file is configured.
// It returns cause if no snapshot was written.
func (a *App) suspend(cause error) error {
	file := a.config.Save
	if len(file) == 0 {
		return cause
	}

	if err := saveSnapshot(file, a.cpu.CPU().Snapshot()); err != nil {
		return err
	}

	a.log.Info("snapshot saved", "file", file, "ip", a.cpu.CPU().IP())
	return nil
}

// writeOutput prints a single output value.
func (a *App) writeOutput(v int64) error {
	var err error
	if a.config.ASCII && v >= 0 && v < 128 {
		err = a.stdout.WriteByte(byte(v))
	} else {
		_, err = fmt.Fprintln(a.stdout, v)
	}
	return err
}

// readInput reads the next line from stdin and queues it as input.
// Returns false if stdin holds no more data. Returns the context error
// if ctx is done before a line arrives.
func (a *App) readInput(ctx context.Context) (bool, error) {
	vm := a.cpu.CPU()

	for {
		line, err := a.nextLine(ctx)
		if err != nil && err != io.EOF {
			return false, err
		}

		if len(line) == 0 && err == io.EOF {
			return false, nil
		}

		line = strings.TrimRight(line, "\r\n")

		if a.config.ASCII {
			for i := 0; i < len(line); i++ {
				vm.PushInput(int64(line[i]))
			}
			vm.PushInput('\n')
			return true, nil
		}

		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t'
		})

		for _, field := range fields {
			v, perr := strconv.ParseInt(field, 10, 64)
			if perr != nil {
				return false, errors.Wrapf(perr, "invalid input %q", field)
			}
			vm.PushInput(v)
		}

		if len(fields) > 0 {
			return true, nil
		}

		if err == io.EOF {
			return false, nil
		}
	}
}

// nextLine returns the next line from stdin, including its newline.
// Stdin is read in its own goroutine so a blocked read does not keep
// the caller from seeing ctx.
func (a *App) nextLine(ctx context.Context) (string, error) {
	if a.lines == nil {
		a.lines = make(chan inputLine, 1)
		go readLines(a.stdin, a.lines)
	}

	select {
	case l, ok := <-a.lines:
		if !ok {
			return "", io.EOF
		}
		return l.text, l.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLines sends every line read from r to out. It closes out after the
// first read error, which is sent along with the final line.
func readLines(r io.Reader, out chan<- inputLine) {
	defer close(out)

	br := bufio.NewReader(r)
	for {
		text, err := br.ReadString('\n')
		out <- inputLine{text, err}
		if err != nil {
			return
		}
	}
}

// logSummary logs execution statistics.
func (a *App) logSummary() {
	a.log.Info("stopped",
		"state", a.cpu.CPU().State(),
		"cycles", a.cpu.Cycles(),
		"frequency", prettyFrequency(a.cpu.Frequency()))
}

// printTrace prints instruction trace data.
func (a *App) printTrace(i *cpu.Instruction) {
	fmt.Fprintln(a.trace, i.String())
}

// loadSnapshot reads the snapshot stored in the given file.
func loadSnapshot(file string) (*ar.Snapshot, error) {
	fd, err := os.Open(file)
	if err != nil {
		return nil, err
	}

	defer fd.Close()

	s := ar.New()
	if err := s.Load(fd); err != nil {
		return nil, errors.Wrapf(err, "%s", file)
	}
	return s, nil
}

// saveSnapshot writes s to the given file.
func saveSnapshot(file string, s *ar.Snapshot) error {
	dir, _ := filepath.Split(file)
	if len(dir) > 0 {
		if err := os.MkdirAll(dir, 0744); err != nil {
			return err
		}
	}

	fd, err := os.Create(file)
	if err != nil {
		return err
	}

	if err := s.Save(fd); err != nil {
		fd.Close()
		return errors.Wrapf(err, "%s", file)
	}

	return fd.Close()
}

// prettyFrequency returns a human-readable version of the given clock frequency in herz.
func prettyFrequency(v float64) string {
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%.2f GHz", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.2f MHz", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.2f KHz", v/1e3)
	default:
		return fmt.Sprintf("%.2f Hz", v)
	}
}
