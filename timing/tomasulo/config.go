package tomasulo

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Config holds the structural parameters of the simulated machine.
type Config struct {
	// AddStations is the number of reservation stations of the additive
	// class (ADD, SUB). Default: 3.
	AddStations int `json:"add_stations"`

	// MulStations is the number of reservation stations of the
	// multiplicative class (MUL, DIV). Default: 2.
	MulStations int `json:"mul_stations"`

	// NumRegs is the number of architectural registers. Default: 8.
	NumRegs int `json:"num_regs"`

	// Priority orders the classes for bus arbitration, highest first. When
	// several units finish in the same cycle the first in this list
	// broadcasts and the others retry one cycle later.
	// Default: multiplicative before additive.
	Priority []insts.Class `json:"priority"`

	// ReuseFreedSlots lets issue fill a reservation station in the same cycle
	// the station was freed by capture. Default: false.
	ReuseFreedSlots bool `json:"reuse_freed_slots"`

	// Freq is the clock frequency used to report simulated time.
	// Default: 1 GHz.
	Freq sim.Freq `json:"freq"`
}

// DefaultConfig returns the default machine: 3 additive stations,
// 2 multiplicative stations and 8 registers.
func DefaultConfig() Config {
	return Config{
		AddStations: 3,
		MulStations: 2,
		NumRegs:     emu.DefaultNumRegs,
		Priority:    []insts.Class{insts.ClassMul, insts.ClassAdd},
		Freq:        1 * sim.GHz,
	}
}

// StationCount returns the number of stations configured for class.
func (c Config) StationCount(class insts.Class) int {
	switch class {
	case insts.ClassAdd:
		return c.AddStations
	case insts.ClassMul:
		return c.MulStations
	default:
		return 0
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.AddStations < 1 || c.AddStations > MaxStationsPerGroup {
		return fmt.Errorf("add_stations must be in [1, %d]", MaxStationsPerGroup)
	}
	if c.MulStations < 1 || c.MulStations > MaxStationsPerGroup {
		return fmt.Errorf("mul_stations must be in [1, %d]", MaxStationsPerGroup)
	}
	if c.NumRegs < 1 || c.NumRegs > 256 {
		return fmt.Errorf("num_regs must be in [1, 256]")
	}
	if c.Freq <= 0 {
		return fmt.Errorf("freq must be > 0")
	}

	if len(c.Priority) != insts.NumClasses {
		return fmt.Errorf("priority must list each of the %d classes once", insts.NumClasses)
	}
	seen := make(map[insts.Class]bool)
	for _, class := range c.Priority {
		if int(class) >= insts.NumClasses || seen[class] {
			return fmt.Errorf("priority must list each of the %d classes once", insts.NumClasses)
		}
		seen[class] = true
	}

	return nil
}

// Clone returns a deep copy of the Config.
func (c Config) Clone() Config {
	clone := c
	clone.Priority = append([]insts.Class(nil), c.Priority...)
	return clone
}
