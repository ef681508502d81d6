package tomasulo

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// Station is one reservation station slot.
type Station struct {
	// Tag is the permanent tag of the slot.
	Tag Tag
	// Busy is set from issue until the slot's own result is captured.
	Busy bool
	// Inst is the instruction held by the slot.
	Inst insts.Instruction
	// Src1 and Src2 are the operand sources.
	Src1, Src2 OperandSource
	// IssueCycle is the cycle the instruction entered the slot.
	IssueCycle uint64
	// Dispatched is set once the instruction entered the functional unit.
	Dispatched bool
	// DispatchCycle is the cycle of dispatch, valid if Dispatched.
	DispatchCycle uint64

	// freed and freedCycle survive clearing so issue can skip slots vacated
	// in the current cycle.
	freed      bool
	freedCycle uint64
}

// OperandsReady reports whether both operands are resolved.
func (s *Station) OperandsReady() bool {
	return s.Src1.IsReady() && s.Src2.IsReady()
}

func (s *Station) clear(cycle uint64) {
	*s = Station{Tag: s.Tag, freed: true, freedCycle: cycle}
}

// StationGroup is the set of reservation stations feeding one functional
// unit. Slots are tagged base..base+size-1.
type StationGroup struct {
	class    insts.Class
	base     Tag
	stations []Station
	unit     *FunctionalUnit
	rat      *RAT

	// reuseFreed lets issue fill a slot in the cycle it was freed.
	reuseFreed bool
}

// NewStationGroup creates size free stations tagged from base, feeding unit
// and reading operands through rat. It fails if size is outside
// [1, MaxStationsPerGroup].
func NewStationGroup(
	class insts.Class,
	base Tag,
	size int,
	unit *FunctionalUnit,
	rat *RAT,
) (*StationGroup, error) {
	if size < 1 || size > MaxStationsPerGroup {
		return nil, fmt.Errorf("station group size %d out of range [1, %d]",
			size, MaxStationsPerGroup)
	}

	g := &StationGroup{
		class:    class,
		base:     base,
		stations: make([]Station, size),
		unit:     unit,
		rat:      rat,
	}
	for i := range g.stations {
		g.stations[i].Tag = base + Tag(i)
	}
	return g, nil
}

// Class returns the operation class of the group.
func (g *StationGroup) Class() insts.Class {
	return g.class
}

// Size returns the number of stations in the group.
func (g *StationGroup) Size() int {
	return len(g.stations)
}

// Unit returns the functional unit of the group.
func (g *StationGroup) Unit() *FunctionalUnit {
	return g.unit
}

// SetReuseFreedSlots controls whether issue may fill a slot in the same
// cycle the slot was freed.
func (g *StationGroup) SetReuseFreedSlots(reuse bool) {
	g.reuseFreed = reuse
}

// Owns reports whether tag belongs to this group.
func (g *StationGroup) Owns(tag Tag) bool {
	return tag >= g.base && tag < g.base+Tag(len(g.stations))
}

// Station returns a copy of the slot with tag.
func (g *StationGroup) Station(tag Tag) (Station, bool) {
	if !g.Owns(tag) {
		return Station{}, false
	}
	return g.stations[tag-g.base], true
}

// Stations returns a copy of all slots, ordered by tag.
func (g *StationGroup) Stations() []Station {
	out := make([]Station, len(g.stations))
	copy(out, g.stations)
	return out
}

// BusyCount returns the number of busy slots.
func (g *StationGroup) BusyCount() int {
	n := 0
	for i := range g.stations {
		if g.stations[i].Busy {
			n++
		}
	}
	return n
}

func (g *StationGroup) freeMask(cycle uint64) uint64 {
	var mask uint64
	for i := range g.stations {
		s := &g.stations[i]
		if s.Busy {
			continue
		}
		if !g.reuseFreed && s.freed && s.freedCycle == cycle {
			continue
		}
		mask |= 1 << uint(i)
	}
	return mask & lowMask(len(g.stations))
}

// HasFreeSlot reports whether an instruction can issue into the group at
// cycle. Unless the group reuses freed slots, a slot freed during cycle is
// not free until the next cycle.
func (g *StationGroup) HasFreeSlot(cycle uint64) bool {
	return g.freeMask(cycle) != 0
}

// Issue places inst into the lowest free slot at cycle. Operands are read
// through the RAT before the destination register is renamed to the slot, so
// an instruction that reads its own destination sees the previous producer.
func (g *StationGroup) Issue(inst insts.Instruction, cycle uint64) (Tag, error) {
	idx, ok := lowestSet(g.freeMask(cycle))
	if !ok {
		return 0, &CapacityError{Class: g.class}
	}

	s := &g.stations[idx]
	s.Busy = true
	s.Inst = inst
	s.Src1 = g.rat.Resolve(inst.Rs1)
	s.Src2 = g.rat.Resolve(inst.Rs2)
	s.IssueCycle = cycle
	s.Dispatched = false
	s.DispatchCycle = 0

	g.rat.Rename(inst.Rd, s.Tag)

	return s.Tag, nil
}

// CaptureBroadcast resolves every operand waiting on b and frees the slot
// that produced b if it belongs to this group. It returns true if a slot was
// freed.
func (g *StationGroup) CaptureBroadcast(b Broadcast, cycle uint64) bool {
	for i := range g.stations {
		s := &g.stations[i]
		if !s.Busy {
			continue
		}
		s.Src1 = s.Src1.capture(b)
		s.Src2 = s.Src2.capture(b)
	}

	if !g.Owns(b.Tag) {
		return false
	}

	s := &g.stations[b.Tag-g.base]
	if !s.Busy {
		return false
	}
	s.clear(cycle)
	return true
}

func (g *StationGroup) readyMask(cycle uint64) uint64 {
	var mask uint64
	for i := range g.stations {
		s := &g.stations[i]
		if s.Busy && !s.Dispatched && s.OperandsReady() && s.IssueCycle < cycle {
			mask |= 1 << uint(i)
		}
	}
	return mask
}

// DispatchCandidate returns the oldest-slot (lowest tag) station that can
// start at cycle: busy, not dispatched, both operands ready and issued in an
// earlier cycle. It returns false while the group's unit is not idle.
func (g *StationGroup) DispatchCandidate(cycle uint64) (Tag, bool) {
	if !g.unit.Idle() {
		return 0, false
	}

	idx, ok := lowestSet(g.readyMask(cycle))
	if !ok {
		return 0, false
	}
	return g.stations[idx].Tag, true
}

// Dispatch starts the dispatch candidate on the group's unit at cycle.
// It returns the dispatched tag, or false if nothing could start.
func (g *StationGroup) Dispatch(cycle uint64) (Tag, bool, error) {
	tag, ok := g.DispatchCandidate(cycle)
	if !ok {
		return 0, false, nil
	}

	s := &g.stations[tag-g.base]
	op := Operation{
		Op:  s.Inst.Op,
		Tag: tag,
		V1:  s.Src1.Value(),
		V2:  s.Src2.Value(),
	}
	if src, poisoned := poisonSource(s); poisoned {
		op.Poison = fmt.Errorf("%w from %s", ErrPoisonedOperand, src)
	}

	if err := g.unit.StartExecution(op, cycle); err != nil {
		return 0, false, err
	}

	s.Dispatched = true
	s.DispatchCycle = cycle
	return tag, true, nil
}

func poisonSource(s *Station) (Tag, bool) {
	if s.Src1.IsPoisoned() {
		return s.Src1.Tag(), true
	}
	if s.Src2.IsPoisoned() {
		return s.Src2.Tag(), true
	}
	return 0, false
}
