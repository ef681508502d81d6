package tomasulo

import "github.com/sarchlab/tomasim/insts"

// StationView is a read-only copy of a reservation station.
type StationView struct {
	Class insts.Class
	Station
}

// RegisterView is a read-only copy of one register and its RAT entry.
type RegisterView struct {
	Reg      uint8
	Value    int64
	Alias    Tag
	Aliased  bool
	Poisoned bool
}

// UnitView is a read-only copy of a functional unit.
type UnitView struct {
	Class       insts.Class
	InFlight    bool
	Op          Operation
	FinishCycle uint64
}

// Snapshot is the machine state at the end of a cycle, as consumed by
// reporting. Cycle 0 is the initial state.
type Snapshot struct {
	Cycle     uint64
	Queue     []insts.Instruction
	Stations  []StationView
	Registers []RegisterView
	Units     []UnitView

	// Bus holds the broadcast of Cycle, valid if BusValid.
	Bus      Broadcast
	BusValid bool
}

// BusyStations returns the views of busy stations.
func (s Snapshot) BusyStations() []StationView {
	var out []StationView
	for _, st := range s.Stations {
		if st.Busy {
			out = append(out, st)
		}
	}
	return out
}

// Snapshot captures the current machine state.
func (c *Controller) Snapshot() Snapshot {
	snap := Snapshot{
		Cycle: c.cycle,
		Queue: c.queue.Contents(),
	}

	for _, g := range c.groups {
		for _, st := range g.Stations() {
			snap.Stations = append(snap.Stations, StationView{Class: g.Class(), Station: st})
		}

		u := g.Unit()
		op, inFlight := u.InFlight()
		snap.Units = append(snap.Units, UnitView{
			Class:       u.Class(),
			InFlight:    inFlight,
			Op:          op,
			FinishCycle: u.FinishCycle(),
		})
	}

	for i := 0; i < c.rat.Size(); i++ {
		reg := uint8(i)
		tag, aliased := c.rat.Alias(reg)
		snap.Registers = append(snap.Registers, RegisterView{
			Reg:      reg,
			Value:    c.regFile.ReadReg(reg),
			Alias:    tag,
			Aliased:  aliased,
			Poisoned: c.rat.IsPoisoned(reg),
		})
	}

	snap.Bus, snap.BusValid = c.bus.Read()

	return snap
}
