package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Operation is the work handed from a reservation station to its functional
// unit at dispatch.
type Operation struct {
	Op  insts.Op
	Tag Tag
	V1  int64
	V2  int64

	// Poison is set when an operand was poisoned; the unit then broadcasts a
	// poisoned result without computing.
	Poison error
}

// FunctionalUnit executes one operation at a time for a station group.
// Operations are not pipelined: a new operation can only start once the
// previous result has been broadcast.
type FunctionalUnit struct {
	class        insts.Class
	latencyTable *latency.Table
	alu          *emu.ALU

	inFlight    bool
	op          Operation
	finishCycle uint64
}

// NewFunctionalUnit creates an idle functional unit for class.
func NewFunctionalUnit(
	class insts.Class,
	latencyTable *latency.Table,
	alu *emu.ALU,
) *FunctionalUnit {
	return &FunctionalUnit{
		class:        class,
		latencyTable: latencyTable,
		alu:          alu,
	}
}

// Class returns the operation class served by the unit.
func (u *FunctionalUnit) Class() insts.Class {
	return u.class
}

// Idle reports whether the unit has no operation in flight.
func (u *FunctionalUnit) Idle() bool {
	return !u.inFlight
}

// Busy reports whether the unit is still executing at cycle, i.e. it has an
// operation in flight that finishes after cycle.
func (u *FunctionalUnit) Busy(cycle uint64) bool {
	return u.inFlight && u.finishCycle > cycle
}

// Finishing reports whether the unit's result is due at cycle.
func (u *FunctionalUnit) Finishing(cycle uint64) bool {
	return u.inFlight && u.finishCycle == cycle
}

// StartExecution begins op at cycle. The result becomes due at
// cycle + latency(op). It fails with a UnitBusyError if the unit is not idle.
func (u *FunctionalUnit) StartExecution(op Operation, cycle uint64) error {
	if u.inFlight {
		return &UnitBusyError{
			Class:       u.class,
			InFlight:    u.op.Tag,
			Rejected:    op.Tag,
			FinishCycle: u.finishCycle,
		}
	}

	u.inFlight = true
	u.op = op
	u.finishCycle = cycle + u.latencyTable.GetLatency(op.Op)
	return nil
}

// TryBroadcast returns the unit's result if it is due at cycle. The unit
// keeps the operation until Complete is called, so a result that loses bus
// arbitration can be deferred instead.
func (u *FunctionalUnit) TryBroadcast(cycle uint64) (Broadcast, bool) {
	if !u.Finishing(cycle) {
		return Broadcast{}, false
	}

	b := Broadcast{Tag: u.op.Tag}
	if u.op.Poison != nil {
		b.Err = u.op.Poison
		return b, true
	}

	value, err := u.alu.Execute(u.op.Op, u.op.V1, u.op.V2)
	if err != nil {
		b.Err = fmt.Errorf("%s: %w", u.op.Tag, err)
		return b, true
	}
	b.Value = value
	return b, true
}

// Complete returns the unit to idle after its result was placed on the bus.
func (u *FunctionalUnit) Complete() {
	u.inFlight = false
	u.op = Operation{}
	u.finishCycle = 0
}

// Defer postpones a due result by one cycle after it lost bus arbitration.
func (u *FunctionalUnit) Defer() {
	u.finishCycle++
}

// InFlight returns the operation being executed, if any.
func (u *FunctionalUnit) InFlight() (Operation, bool) {
	return u.op, u.inFlight
}

// FinishCycle returns the cycle the in-flight result is due.
func (u *FunctionalUnit) FinishCycle() uint64 {
	return u.finishCycle
}
