// Package core provides the top-level model of the simulated machine.
// It builds a Tomasulo controller from a loaded program and provides a
// high-level interface for running it.
package core

import (
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// Stats holds performance statistics for the core.
type Stats struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Instructions is the number of instructions that broadcast a result.
	Instructions uint64
	// Stalls is the number of cycles issue was blocked.
	Stalls uint64
	// Faults is the number of poisoned results.
	Faults uint64
	// SimulatedTime is Cycles at the configured clock frequency.
	SimulatedTime sim.VTimeInSec
}

// IPC returns completed instructions per cycle.
func (s Stats) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Instructions) / float64(s.Cycles)
}

// Core is the simulated machine running one program.
type Core struct {
	// Controller is the underlying Tomasulo controller.
	Controller *tomasulo.Controller

	program *loader.Program
	config  tomasulo.Config
	table   *latency.Table
	log     logr.Logger
	hooks   []sim.Hook
}

// Option configures a Core.
type Option func(*Core)

// WithConfig sets the machine configuration.
func WithConfig(config tomasulo.Config) Option {
	return func(c *Core) {
		c.config = config.Clone()
	}
}

// WithTimingConfig sets the functional unit latencies.
func WithTimingConfig(config *latency.TimingConfig) Option {
	return func(c *Core) {
		c.table = latency.NewTableWithConfig(config)
	}
}

// WithLogger sets the logger passed to the controller.
func WithLogger(log logr.Logger) Option {
	return func(c *Core) {
		c.log = log
	}
}

// WithHook attaches hook to the controller, including after Reset.
func WithHook(hook sim.Hook) Option {
	return func(c *Core) {
		c.hooks = append(c.hooks, hook)
	}
}

// NewCore creates a core that runs prog.
func NewCore(prog *loader.Program, opts ...Option) (*Core, error) {
	c := &Core{
		program: prog,
		config:  tomasulo.DefaultConfig(),
		table:   latency.NewTable(),
		log:     logr.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if len(prog.Registers) != c.config.NumRegs {
		return nil, fmt.Errorf("program sets %d registers, machine has %d",
			len(prog.Registers), c.config.NumRegs)
	}

	if err := c.build(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Core) build() error {
	ctrl, err := tomasulo.NewController(
		c.program.RegFile(),
		c.program.Instructions,
		tomasulo.WithConfig(c.config),
		tomasulo.WithLatencyTable(c.table),
		tomasulo.WithLogger(c.log),
	)
	if err != nil {
		return err
	}

	for _, h := range c.hooks {
		ctrl.AcceptHook(h)
	}

	c.Controller = ctrl
	return nil
}

// Program returns the program the core runs.
func (c *Core) Program() *loader.Program {
	return c.program
}

// RegFile returns the architectural register file.
func (c *Core) RegFile() *emu.RegFile {
	return c.Controller.RegFile()
}

// Tick executes one cycle.
func (c *Core) Tick() error {
	return c.Controller.Tick()
}

// RunCycles executes exactly cycles cycles.
func (c *Core) RunCycles(cycles uint64) error {
	return c.Controller.Run(cycles)
}

// Run executes the program's cycle budget, stopping early once all work
// has drained. It returns true if the machine drained.
func (c *Core) Run() (bool, error) {
	remaining := uint64(0)
	if c.program.Cycles > c.Controller.Cycle() {
		remaining = c.program.Cycles - c.Controller.Cycle()
	}
	return c.Controller.RunUntilDrained(remaining)
}

// Drained reports whether all instructions have completed.
func (c *Core) Drained() bool {
	return c.Controller.Drained()
}

// Snapshot returns the current machine state.
func (c *Core) Snapshot() tomasulo.Snapshot {
	return c.Controller.Snapshot()
}

// Faults returns the faults recorded so far.
func (c *Core) Faults() []tomasulo.Fault {
	return c.Controller.Faults()
}

// Stats returns performance statistics for the core.
func (c *Core) Stats() Stats {
	s := c.Controller.Stats()
	return Stats{
		Cycles:        s.Cycles,
		Instructions:  s.Completed,
		Stalls:        s.IssueStalls,
		Faults:        s.Faults,
		SimulatedTime: s.SimulatedTime(c.config.Freq),
	}
}

// Reset discards all state and reloads the program and initial registers.
func (c *Core) Reset() error {
	return c.build()
}
