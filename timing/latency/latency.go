// Package latency provides instruction timing models for cycle-accurate simulation.
//
// The latency values describe how many cycles a functional unit needs from
// dispatch to result broadcast and can be configured via TimingConfig.
package latency

import (
	"github.com/sarchlab/tomasim/insts"
)

// Table provides instruction latency lookups.
type Table struct {
	config *TimingConfig
}

// NewTable creates a new latency table with default timing values.
func NewTable() *Table {
	return &Table{
		config: DefaultTimingConfig(),
	}
}

// NewTableWithConfig creates a new latency table with custom timing configuration.
func NewTableWithConfig(config *TimingConfig) *Table {
	return &Table{
		config: config,
	}
}

// GetLatency returns the execution latency in cycles for the given opcode.
func (t *Table) GetLatency(op insts.Op) uint64 {
	switch op {
	case insts.OpADD:
		return t.config.AddLatency
	case insts.OpSUB:
		return t.config.SubLatency
	case insts.OpMUL:
		return t.config.MulLatency
	case insts.OpDIV:
		return t.config.DivLatency
	default:
		return 1
	}
}

// GetInstLatency returns the execution latency of an instruction.
func (t *Table) GetInstLatency(inst insts.Instruction) uint64 {
	return t.GetLatency(inst.Op)
}

// MaxLatency returns the longest latency of any opcode.
func (t *Table) MaxLatency() uint64 {
	var m uint64
	for _, op := range []insts.Op{insts.OpADD, insts.OpSUB, insts.OpMUL, insts.OpDIV} {
		if l := t.GetLatency(op); l > m {
			m = l
		}
	}
	return m
}

// Config returns the current timing configuration.
func (t *Table) Config() *TimingConfig {
	return t.config
}
