package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config defines program configuration.
//
// Values can be loaded from a TOML file through -config. Flags given on the
// command line override values from the file.
type Config struct {
	ConfigFile  string  `toml:"-"`            // Optional TOML file with default values.
	Program     string  `toml:"program"`      // Path to the program file to load.
	Inputs      []int64 `toml:"inputs"`       // Input values queued before the first step.
	Patches     []Patch `toml:"patch"`        // Direct memory writes applied before the first step.
	ASCII       bool    `toml:"ascii"`        // Treat input and output as ASCII text?
	Trace       bool    `toml:"trace"`        // Print instruction trace data?
	Debug       bool    `toml:"debug"`        // Enable debug logging?
	MemoryLimit int     `toml:"memory-limit"` // Maximum tape length in cells.
	InputRate   float64 `toml:"input-rate"`   // Maximum input requests served per second; 0 is unlimited.
	Save        string  `toml:"save"`         // Snapshot file written when execution suspends.
	Resume      string  `toml:"resume"`       // Snapshot file to resume from.
	Inspect     string  `toml:"-"`            // Snapshot file to print instead of running anything.
	LogFile     string  `toml:"log-file"`     // Optional file receiving JSON log records.
	Version     bool    `toml:"-"`            // Display version information?
}

// Patch defines a direct memory write.
type Patch struct {
	Addr  int64 `toml:"addr"`
	Value int64 `toml:"value"`
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

// newConfig builds the configuration from the given arguments and the
// optional configuration file they name.
func newConfig(args []string, output io.Writer) (*Config, error) {
	c := defaultConfig()
	fs := c.flags(output)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if file := c.ConfigFile; len(file) > 0 {
		c = defaultConfig()
		if _, err := toml.DecodeFile(file, c); err != nil {
			return nil, errors.Wrapf(err, "config %s", file)
		}

		c.ConfigFile = file
		fs = c.flags(output)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	if fs.NArg() > 0 {
		c.Program = fs.Arg(0)
	}

	if c.Version {
		return c, nil
	}

	if len(c.Program) == 0 && len(c.Resume) == 0 && len(c.Inspect) == 0 {
		fs.Usage()
		return nil, errors.New("no program file given")
	}

	if c.MemoryLimit < 0 {
		return nil, errors.Errorf("invalid memory limit %d", c.MemoryLimit)
	}

	if c.InputRate < 0 {
		return nil, errors.Errorf("invalid input rate %v", c.InputRate)
	}

	return c, nil
}

// defaultConfig returns the configuration used when nothing else is given.
func defaultConfig() *Config {
	return &Config{
		MemoryLimit: 1 << 24,
	}
}

// flags binds command line flags to the fields of c.
func (c *Config) flags(output io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet(AppName, flag.ContinueOnError)
	fs.SetOutput(output)

	fs.Usage = func() {
		fmt.Fprintf(output, "%s [options] <program file>\n", AppName)
		fs.PrintDefaults()
	}

	fs.StringVar(&c.ConfigFile, "config", c.ConfigFile, "TOML file with default option values.")
	fs.Func("input", "Comma-separated input values queued before execution starts.", func(v string) error {
		inputs, err := parseValues(v)
		if err != nil {
			return err
		}
		c.Inputs = inputs
		return nil
	})
	fs.Func("set", "Direct memory write in the form addr=value. Can be repeated.", func(v string) error {
		p, err := parsePatch(v)
		if err != nil {
			return err
		}
		c.Patches = append(c.Patches, p)
		return nil
	})
	fs.BoolVar(&c.ASCII, "ascii", c.ASCII, "Read input lines as ASCII codes and print outputs below 128 as characters.")
	fs.BoolVar(&c.Trace, "trace", c.Trace, "Print instruction trace data to stderr.")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging.")
	fs.IntVar(&c.MemoryLimit, "memory-limit", c.MemoryLimit, "Maximum tape length in cells. 0 removes the limit.")
	fs.Float64Var(&c.InputRate, "input-rate", c.InputRate, "Maximum number of input requests served per second. 0 is unlimited.")
	fs.StringVar(&c.Save, "save", c.Save, "Write a snapshot to this file when execution suspends.")
	fs.StringVar(&c.Resume, "resume", c.Resume, "Resume execution from this snapshot file. Memory writes and initial inputs are ignored.")
	fs.StringVar(&c.Inspect, "inspect", c.Inspect, "Print the contents of this snapshot file and exit.")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Also write JSON log records to this file.")
	fs.BoolVar(&c.Version, "version", c.Version, "Display version information.")
	return fs
}

// parseValues parses a comma-separated list of integers.
func parseValues(v string) ([]int64, error) {
	var out []int64
	for _, field := range filteredSplit(v, ",") {
		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value %q", field)
		}
		out = append(out, n)
	}
	return out, nil
}

// parsePatch parses a memory write in the form addr=value.
func parsePatch(v string) (Patch, error) {
	addr, value, ok := strings.Cut(v, "=")
	if !ok {
		return Patch{}, errors.Errorf("invalid memory write %q; want addr=value", v)
	}

	var p Patch
	var err error

	if p.Addr, err = strconv.ParseInt(strings.TrimSpace(addr), 10, 64); err != nil || p.Addr < 0 {
		return Patch{}, errors.Errorf("invalid address in %q", v)
	}

	if p.Value, err = strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
		return Patch{}, errors.Errorf("invalid value in %q", v)
	}

	return p, nil
}

// filteredSplit splits value by sep and returns the resulting list, minus empty entries.
func filteredSplit(value, sep string) []string {
	out := strings.Split(value, sep)
	for i := 0; i < len(out); i++ {
		out[i] = strings.TrimSpace(out[i])
		if len(out[i]) == 0 {
			copy(out[i:], out[i+1:])
			out = out[:len(out)-1]
			i--
		}
	}
	return out
}
