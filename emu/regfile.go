// Package emu provides the functional (untimed) model of the machine: the
// architectural register file, the arithmetic unit and an in-order
// reference emulator.
package emu

import "fmt"

// DefaultNumRegs is the number of architectural registers of the machine.
const DefaultNumRegs = 8

// RegFile represents the architectural register file.
// It holds the committed value of every register (R0..R(N-1)).
type RegFile struct {
	regs []int64
}

// NewRegFile creates a register file with n registers, all zero.
func NewRegFile(n int) *RegFile {
	return &RegFile{regs: make([]int64, n)}
}

// NewRegFileWithValues creates a register file holding a copy of values.
func NewRegFileWithValues(values []int64) *RegFile {
	r := NewRegFile(len(values))
	copy(r.regs, values)
	return r
}

// Size returns the number of registers.
func (r *RegFile) Size() int {
	return len(r.regs)
}

// ReadReg reads a register value. Out-of-range registers read as 0.
func (r *RegFile) ReadReg(reg uint8) int64 {
	if int(reg) >= len(r.regs) {
		return 0
	}
	return r.regs[reg]
}

// WriteReg writes a value to a register. Writes to out-of-range registers
// are ignored.
func (r *RegFile) WriteReg(reg uint8, value int64) {
	if int(reg) >= len(r.regs) {
		return
	}
	r.regs[reg] = value
}

// Values returns a copy of all register values.
func (r *RegFile) Values() []int64 {
	out := make([]int64, len(r.regs))
	copy(out, r.regs)
	return out
}

// CheckReg returns an error if reg is not a register of this file.
func (r *RegFile) CheckReg(reg uint8) error {
	if int(reg) >= len(r.regs) {
		return fmt.Errorf("register R%d out of range (have %d registers)", reg, len(r.regs))
	}
	return nil
}
