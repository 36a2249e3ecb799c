package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Config defines program configuration.
type Config struct {
	Includes    []string // Include search paths.
	Input       string   // Input source file to build, or program file to disassemble.
	Output      string   // Path to store output in. Empty means stdout.
	DumpAST     bool     // Print a human-readable dump of the unprocessed AST.
	Disassemble bool     // Treat the input as a program and print its assembly source.
	Debug       bool
	LogFile     string
	Version     bool
}

// parseArgs parses command line arguments as applicable.
//
// If an error occurred, this exits the program with an appropriate message.
// When version information is requested, it is printed to stdout and the program ends cleanly.
func parseArgs() *Config {
	c, err := newConfig(os.Args[1:], os.Stderr)
	if err == flag.ErrHelp {
		os.Exit(0)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if c.Version {
		fmt.Println(Version())
		os.Exit(0)
	}

	return c
}

// newConfig builds the configuration from the given arguments.
func newConfig(args []string, output io.Writer) (*Config, error) {
	var c Config

	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)
	fs.Usage = func() {
		fmt.Fprintf(output, "%s [options] <input file>\n", AppName)
		fs.PrintDefaults()
	}

	includes := fs.String("include", "", "Colon-separated list of include search paths.")
	fs.StringVar(&c.Output, "out", c.Output, "Output file. Defaults to stdout.")
	fs.BoolVar(&c.DumpAST, "dump-ast", c.DumpAST, "Print a human-readable version of the unprocessed AST.")
	fs.BoolVar(&c.Disassemble, "disassemble", c.Disassemble, "Read a program file and print it as assembly source.")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging.")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Also write JSON log records to this file.")
	fs.BoolVar(&c.Version, "version", c.Version, "Display version information.")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if c.Version {
		return &c, nil
	}

	if fs.NArg() == 0 {
		fs.Usage()
		return nil, errors.New("no input file given")
	}

	if c.DumpAST && c.Disassemble {
		return nil, errors.New("-dump-ast and -disassemble are mutually exclusive")
	}

	if len(*includes) > 0 {
		c.Includes = filteredSplit(*includes, ":")
	}

	c.Input = fs.Arg(0)
	return &c, nil
}

// filteredSplit splits value by sep and returns the resulting list, minus empty entries.
func filteredSplit(value, sep string) []string {
	var out []string
	for _, v := range strings.Split(value, sep) {
		if v = strings.TrimSpace(v); len(v) > 0 {
			out = append(out, v)
		}
	}
	return out
}
