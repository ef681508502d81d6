package emu

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// StepResult represents the result of executing a single instruction.
type StepResult struct {
	// Poisoned is true if the instruction faulted or read a poisoned
	// register. Its destination was not written.
	Poisoned bool

	// Err is the fault of a poisoned instruction, or a hard error if the
	// instruction could not execute at all.
	Err error
}

// Emulator executes instructions one at a time in program order, without
// timing. It produces the architectural state the timing model must reach
// once all work has drained.
type Emulator struct {
	regFile *RegFile
	alu     *ALU

	// poisoned marks registers whose last writer faulted.
	poisoned []bool

	instructionCount uint64
	maxInstructions  uint64 // 0 means no limit
}

// EmulatorOption is a functional option for configuring the Emulator.
type EmulatorOption func(*Emulator)

// WithMaxInstructions sets the maximum number of instructions to execute.
// A value of 0 means no limit.
func WithMaxInstructions(max uint64) EmulatorOption {
	return func(e *Emulator) {
		e.maxInstructions = max
	}
}

// NewEmulator creates an emulator operating on regFile.
func NewEmulator(regFile *RegFile, opts ...EmulatorOption) *Emulator {
	e := &Emulator{
		regFile:  regFile,
		alu:      NewALU(),
		poisoned: make([]bool, regFile.Size()),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// RegFile returns the emulator's register file.
func (e *Emulator) RegFile() *RegFile {
	return e.regFile
}

// InstructionCount returns the number of instructions executed.
func (e *Emulator) InstructionCount() uint64 {
	return e.instructionCount
}

// Poisoned reports whether reg holds a poisoned value.
func (e *Emulator) Poisoned(reg uint8) bool {
	return int(reg) < len(e.poisoned) && e.poisoned[reg]
}

// Step executes a single instruction.
func (e *Emulator) Step(inst insts.Instruction) StepResult {
	if e.maxInstructions > 0 && e.instructionCount >= e.maxInstructions {
		return StepResult{Err: fmt.Errorf("max instructions reached")}
	}

	if err := e.regFile.CheckReg(inst.MaxReg()); err != nil {
		return StepResult{Err: fmt.Errorf("%s: %w", inst, err)}
	}

	e.instructionCount++

	if e.poisoned[inst.Rs1] || e.poisoned[inst.Rs2] {
		e.poisoned[inst.Rd] = true
		return StepResult{
			Poisoned: true,
			Err:      fmt.Errorf("%s: reads a poisoned register", inst),
		}
	}

	v, err := e.alu.Execute(inst.Op, e.regFile.ReadReg(inst.Rs1), e.regFile.ReadReg(inst.Rs2))
	if err != nil {
		e.poisoned[inst.Rd] = true
		return StepResult{Poisoned: true, Err: err}
	}

	e.regFile.WriteReg(inst.Rd, v)
	e.poisoned[inst.Rd] = false
	return StepResult{}
}

// Run executes program in order. It returns the number of poisoned
// instructions, or an error if an instruction could not execute.
func (e *Emulator) Run(program []insts.Instruction) (int, error) {
	faults := 0
	for i, inst := range program {
		result := e.Step(inst)
		if result.Poisoned {
			faults++
			continue
		}
		if result.Err != nil {
			return faults, fmt.Errorf("instruction %d: %w", i, result.Err)
		}
	}
	return faults, nil
}
