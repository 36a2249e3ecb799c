package main

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hexaflex/intcode/asm"
	"github.com/hexaflex/intcode/program"
	"github.com/pkg/errors"
)

// App defines application context.
type App struct {
	config *Config
	log    *slog.Logger
	stdout io.Writer
}

// NewApp creates a new application instance using the given configuration.
func NewApp(config *Config, log *slog.Logger) *App {
	return &App{
		config: config,
		log:    log,
		stdout: os.Stdout,
	}
}

// Run performs the requested operation and writes its result to the
// configured output.
func (a *App) Run() error {
	switch {
	case a.config.DumpAST:
		return a.dumpAST()
	case a.config.Disassemble:
		return a.disassemble()
	default:
		return a.buildProgram()
	}
}

// dumpAST loads the source AST and writes a human readable version of it.
func (a *App) dumpAST() error {
	ast, err := asm.BuildAST(a.config.Input, a.config.Includes)
	if err != nil {
		return err
	}

	return a.write(ast.String())
}

// disassemble reads a program file and writes it as assembly source.
func (a *App) disassemble() error {
	p, err := program.ReadFile(a.config.Input)
	if err != nil {
		return err
	}

	a.log.Debug("disassembling", "file", a.config.Input, "words", len(p))
	return a.write(asm.Disassemble(p))
}

// buildProgram assembles the input and writes the program in its textual form.
func (a *App) buildProgram() error {
	p, err := asm.Build(a.config.Input, a.config.Includes)
	if err != nil {
		return err
	}

	a.log.Debug("build complete", "file", a.config.Input, "words", len(p))
	return a.write(p.String() + "\n")
}

// write writes s to the configured output.
func (a *App) write(s string) error {
	w, closer, err := a.makeWriter()
	if err != nil {
		return err
	}

	if _, err = io.WriteString(w, s); err != nil {
		closer()
		return errors.Wrap(err, "write output")
	}

	return closer()
}

// makeWriter creates an output writer and a cleanup function for it.
func (a *App) makeWriter() (io.Writer, func() error, error) {
	file := a.config.Output
	if file == "" {
		return a.stdout, func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(file), 0744); err != nil {
		return nil, nil, errors.Wrapf(err, "output %s", file)
	}

	fd, err := os.Create(file)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "output %s", file)
	}

	return fd, fd.Close, nil
}
