// Command tomasim simulates a program on the Tomasulo machine and prints the
// machine state cycle by cycle.
//
// Usage:
//
//	tomasim [flags] <input-file>
//
// The input file holds the instruction count, the cycle count, one
// "op rd rs1 rs2" line per instruction and one initial value per register.
// Use "-" to read from standard input.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/report"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

type options struct {
	configPath      string
	addStations     int
	mulStations     int
	reuseFreedSlots bool
	cycles          int
	untilDrained    bool
	reportMode      string
	dump            bool
	verbosity       int
}

func main() {
	if err := newRootCmd(os.Stdin, os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}
	defaults := tomasulo.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "tomasim [flags] <input-file>",
		Short: "Cycle-driven Tomasulo out-of-order execution simulator",
		Long: `Tomasim simulates a program of ADD/SUB/MUL/DIV instructions on a machine
with register renaming, reservation stations, one functional unit per
operation class and a single common data bus. It runs the number of cycles
given in the input file and prints the reservation stations, the RAT and
the instruction queue for every cycle.
`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := run(opts, args[0], stdin, stdout, stderr)
			if err != nil {
				_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
			}
			return err
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.configPath, "config", "", "path to timing configuration JSON file")
	flags.IntVar(&opts.addStations, "add-stations", defaults.AddStations, "number of ADD/SUB reservation stations")
	flags.IntVar(&opts.mulStations, "mul-stations", defaults.MulStations, "number of MUL/DIV reservation stations")
	flags.BoolVar(&opts.reuseFreedSlots, "reuse-freed-slots", false, "issue into a station in the cycle it was freed")
	flags.IntVar(&opts.cycles, "cycles", -1, "cycles to simulate, overriding the input file")
	flags.BoolVar(&opts.untilDrained, "until-drained", false, "stop early once all instructions completed")
	flags.StringVar(&opts.reportMode, "report", "after", "when to print state: before, after, both or none")
	flags.BoolVar(&opts.dump, "dump", false, "dump the full machine state with every report")
	flags.CountVarP(&opts.verbosity, "verbose", "v", "log verbosity (repeat for more detail)")

	return cmd
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func loadProgram(path string, stdin io.Reader) (*loader.Program, error) {
	if path == "-" {
		return loader.Parse(stdin)
	}
	return loader.Load(path)
}

func run(opts *options, path string, stdin io.Reader, stdout, stderr io.Writer) error {
	mode, err := report.ParseMode(opts.reportMode)
	if err != nil {
		return err
	}

	prog, err := loadProgram(path, stdin)
	if err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	if opts.cycles >= 0 {
		prog.Cycles = uint64(opts.cycles)
	}

	timing := latency.DefaultTimingConfig()
	if opts.configPath != "" {
		timing, err = latency.LoadConfig(opts.configPath)
		if err != nil {
			return err
		}
	}

	machine := tomasulo.DefaultConfig()
	machine.AddStations = opts.addStations
	machine.MulStations = opts.mulStations
	machine.ReuseFreedSlots = opts.reuseFreedSlots

	reporter := report.NewReporter(stdout, mode, opts.dump)
	log := newLogger(stderr, opts.verbosity)

	c, err := core.NewCore(prog,
		core.WithConfig(machine),
		core.WithTimingConfig(timing),
		core.WithLogger(log),
		core.WithHook(reporter),
	)
	if err != nil {
		return err
	}

	if mode != report.ModeNone {
		reporter.WriteInitial(c.Snapshot())
	}

	if opts.untilDrained {
		_, err = c.Run()
	} else {
		err = c.RunCycles(prog.Cycles)
	}
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintln(stdout, "")
	report.WriteSummary(stdout, c.Controller.Stats(), c.Faults())

	return nil
}
