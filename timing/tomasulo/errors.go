package tomasulo

import (
	"errors"
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// ErrPoisonedOperand is wrapped by the fault of an instruction that consumed
// the result of a faulted instruction.
var ErrPoisonedOperand = errors.New("poisoned operand")

// CapacityError reports an issue attempt into a full station group.
// The controller treats it as a stall and retries in the next cycle.
type CapacityError struct {
	Class insts.Class
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("no free %s reservation station", e.Class)
}

// UnitBusyError reports a dispatch into a functional unit that still has an
// operation in flight. It means the controller skipped its idle check.
type UnitBusyError struct {
	Class       insts.Class
	InFlight    Tag
	Rejected    Tag
	FinishCycle uint64
}

func (e *UnitBusyError) Error() string {
	return fmt.Sprintf("%s unit busy with %s until cycle %d, cannot start %s",
		e.Class, e.InFlight, e.FinishCycle, e.Rejected)
}

// BusContentionError reports a second publish on the common data bus within
// one cycle. It means broadcast arbitration was not applied.
type BusContentionError struct {
	Holder    Tag
	Contender Tag
}

func (e *BusContentionError) Error() string {
	return fmt.Sprintf("bus contention: %s already holds the bus, %s cannot publish",
		e.Holder, e.Contender)
}

// Fault records an instruction whose result was poisoned. Faults do not stop
// the simulation.
type Fault struct {
	// Cycle is the cycle the poisoned result was broadcast.
	Cycle uint64
	// Tag is the reservation station that held the instruction.
	Tag Tag
	// Inst is the faulted instruction.
	Inst insts.Instruction
	// Err is the cause: an *emu.ArithmeticError for the faulting instruction
	// or an error wrapping ErrPoisonedOperand for its consumers.
	Err error
}

func (f Fault) String() string {
	return fmt.Sprintf("cycle %d: %s (%s): %v", f.Cycle, f.Inst, f.Tag, f.Err)
}
