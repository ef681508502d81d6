// Package main provides a profiling wrapper for Tomasim to identify
// performance bottlenecks in the timing model.
package main

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

type options struct {
	emulate    bool
	cpuProfile string
	memProfile string
	duration   time.Duration
	synthetic  int
	seed       int64
}

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "profile [flags] [input-file]",
		Short: "Profile the Tomasim timing model",
		Long: `Profile runs a program on the timing model (or, with --emulate, on the
in-order reference emulator) and optionally writes CPU and heap profiles.
Without an input file a synthetic program is generated.
`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(opts, args, out)
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&opts.emulate, "emulate", false, "run the in-order reference emulator instead of the timing model")
	flags.StringVar(&opts.cpuProfile, "cpuprofile", "", "write cpu profile to file")
	flags.StringVar(&opts.memProfile, "memprofile", "", "write memory profile to file")
	flags.DurationVar(&opts.duration, "duration", 30*time.Second, "max duration to run")
	flags.IntVar(&opts.synthetic, "synthetic", 100000, "instructions in the synthetic program")
	flags.Int64Var(&opts.seed, "seed", 1, "seed of the synthetic program")

	return cmd
}

func run(opts *options, args []string, out io.Writer) error {
	var prog *loader.Program
	if len(args) == 1 {
		p, err := loader.Load(args[0])
		if err != nil {
			return err
		}
		prog = p
		_, _ = fmt.Fprintf(out, "Loaded: %s\n", args[0])
	} else {
		prog = benchmarks.Synthetic(opts.synthetic, tomasulo.DefaultConfig().NumRegs, opts.seed)
		_, _ = fmt.Fprintf(out, "Synthetic program: %d instructions, seed %d\n", opts.synthetic, opts.seed)
	}

	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			return fmt.Errorf("creating CPU profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("starting CPU profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	start := time.Now()

	var (
		instrCount uint64
		err        error
	)
	if opts.emulate {
		instrCount, err = runEmulation(prog)
	} else {
		instrCount, err = runTiming(prog, out, start.Add(opts.duration))
	}
	if err != nil {
		return err
	}

	elapsed := time.Since(start)

	if opts.memProfile != "" {
		f, err := os.Create(opts.memProfile)
		if err != nil {
			return fmt.Errorf("creating memory profile: %w", err)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			return fmt.Errorf("writing memory profile: %w", err)
		}
	}

	_, _ = fmt.Fprintf(out, "\nProfiling Results:\n")
	_, _ = fmt.Fprintf(out, "Instructions executed: %d\n", instrCount)
	_, _ = fmt.Fprintf(out, "Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		_, _ = fmt.Fprintf(out, "Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}

	return nil
}

// runEmulation runs the program on the reference emulator.
func runEmulation(prog *loader.Program) (uint64, error) {
	e := emu.NewEmulator(prog.RegFile())
	if _, err := e.Run(prog.Instructions); err != nil {
		return e.InstructionCount(), err
	}
	return e.InstructionCount(), nil
}

// runTiming runs the program on the timing model until it drains, its cycle
// budget is spent or the deadline passes.
func runTiming(prog *loader.Program, out io.Writer, deadline time.Time) (uint64, error) {
	c, err := core.NewCore(prog)
	if err != nil {
		return 0, err
	}

	const checkEvery = 1024
	for c.Stats().Cycles < prog.Cycles && !c.Drained() {
		if err := c.Tick(); err != nil {
			return c.Stats().Instructions, err
		}
		if c.Stats().Cycles%checkEvery == 0 && time.Now().After(deadline) {
			_, _ = fmt.Fprintf(out, "\nTimeout reached - stopping execution\n")
			break
		}
	}

	stats := c.Stats()
	_, _ = fmt.Fprintf(out, "Simulated cycles: %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(out, "IPC: %.3f\n", stats.IPC())

	return stats.Instructions, nil
}
