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

// Known execution modes.
const (
	ModeNetwork  = "network"
	ModePipeline = "pipeline"
)

// Config defines program configuration.
type Config struct {
	ConfigFile  string  `toml:"-"`
	Program     string  `toml:"program"`      // Path to the program file to load.
	Mode        string  `toml:"mode"`         // Either "network" or "pipeline".
	Nodes       int     `toml:"nodes"`        // Number of machines in network mode.
	PacketSize  int     `toml:"packet-size"`  // Payload words per packet.
	Idle        int64   `toml:"idle"`         // Value delivered to nodes with nothing to read.
	Count       int     `toml:"count"`        // Stop after this many packets; 0 is unlimited.
	NAT         int64   `toml:"nat"`          // Address monitored by the NAT; negative disables it.
	Phases      []int64 `toml:"phases"`       // Phase values of the pipeline stages.
	Loop        bool    `toml:"loop"`         // Feed the last stage back into the first?
	Input       int64   `toml:"input"`        // First input of the pipeline.
	MemoryLimit int     `toml:"memory-limit"` // Maximum tape length per machine.
	Debug       bool    `toml:"debug"`
	LogFile     string  `toml:"log-file"`
	Version     bool    `toml:"-"`
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

	if len(c.Program) == 0 {
		fs.Usage()
		return nil, errors.New("no program file given")
	}

	switch c.Mode {
	case ModeNetwork:
		if c.Nodes < 1 {
			return nil, errors.Errorf("invalid node count %d", c.Nodes)
		}
		if c.PacketSize < 1 {
			return nil, errors.Errorf("invalid packet size %d", c.PacketSize)
		}
		if c.Count < 0 {
			return nil, errors.Errorf("invalid packet count %d", c.Count)
		}
	case ModePipeline:
		if len(c.Phases) == 0 {
			return nil, errors.New("pipeline mode requires -phases")
		}
	default:
		return nil, errors.Errorf("unknown mode %q", c.Mode)
	}

	if c.MemoryLimit < 0 {
		return nil, errors.Errorf("invalid memory limit %d", c.MemoryLimit)
	}

	return c, nil
}

// defaultConfig returns the configuration used when nothing else is given.
func defaultConfig() *Config {
	return &Config{
		Mode:        ModeNetwork,
		Nodes:       50,
		PacketSize:  2,
		Idle:        -1,
		Count:       1,
		NAT:         -1,
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
	fs.StringVar(&c.Mode, "mode", c.Mode, "Execution mode: network or pipeline.")
	fs.IntVar(&c.Nodes, "nodes", c.Nodes, "Number of machines in network mode.")
	fs.IntVar(&c.PacketSize, "packet-size", c.PacketSize, "Number of payload words per packet.")
	fs.Int64Var(&c.Idle, "idle", c.Idle, "Value delivered to a machine asking for input with no packet queued.")
	fs.IntVar(&c.Count, "count", c.Count, "Stop after this many packets left the network. 0 is unlimited.")
	fs.Int64Var(&c.NAT, "nat", c.NAT, "Address whose packets are re-sent to node 0 when the network is idle. Negative disables it.")
	fs.Func("phases", "Comma-separated phase values, one per pipeline stage.", func(v string) error {
		phases, err := parseValues(v)
		if err != nil {
			return err
		}
		c.Phases = phases
		return nil
	})
	fs.BoolVar(&c.Loop, "loop", c.Loop, "Feed the output of the last pipeline stage back into the first.")
	fs.Int64Var(&c.Input, "input", c.Input, "Input value for the first pipeline stage.")
	fs.IntVar(&c.MemoryLimit, "memory-limit", c.MemoryLimit, "Maximum tape length per machine. 0 removes the limit.")
	fs.BoolVar(&c.Debug, "debug", c.Debug, "Enable debug logging.")
	fs.StringVar(&c.LogFile, "log-file", c.LogFile, "Also write JSON log records to this file.")
	fs.BoolVar(&c.Version, "version", c.Version, "Display version information.")
	return fs
}

// parseValues parses a comma-separated list of integers.
func parseValues(v string) ([]int64, error) {
	var out []int64
	for _, field := range strings.Split(v, ",") {
		field = strings.TrimSpace(field)
		if len(field) == 0 {
			continue
		}

		n, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			return nil, errors.Wrapf(err, "invalid value %q", field)
		}
		out = append(out, n)
	}
	return out, nil
}
