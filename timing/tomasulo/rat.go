package tomasulo

import "github.com/sarchlab/tomasim/emu"

type aliasState uint8

const (
	aliasNone aliasState = iota
	aliasPending
	aliasPoisoned
)

type ratEntry struct {
	state aliasState
	tag   Tag
}

// RAT is the register alias table. For every architectural register it names
// the reservation station that will produce the register's next value, or
// records that the value lives in the register file.
//
// A register whose producer faulted stays poisoned until a new producer is
// renamed onto it; readers receive a poisoned operand instead of a stale
// register file value.
type RAT struct {
	regFile *emu.RegFile
	entries []ratEntry

	// byTag maps a pending producer back to the register it aliases.
	// At most one register aliases a tag at a time.
	byTag map[Tag]uint8
}

// NewRAT creates a RAT in front of regFile with no pending producers.
func NewRAT(regFile *emu.RegFile) *RAT {
	return &RAT{
		regFile: regFile,
		entries: make([]ratEntry, regFile.Size()),
		byTag:   make(map[Tag]uint8),
	}
}

// Rename makes tag the producer of reg, replacing any earlier producer. The
// earlier producer's result will no longer reach the register file.
func (r *RAT) Rename(reg uint8, tag Tag) {
	e := &r.entries[reg]
	if e.state == aliasPending {
		delete(r.byTag, e.tag)
	}
	e.state = aliasPending
	e.tag = tag
	r.byTag[tag] = reg
}

// Resolve returns the source of reg's current value.
func (r *RAT) Resolve(reg uint8) OperandSource {
	e := r.entries[reg]
	switch e.state {
	case aliasPending:
		return Pending(e.tag)
	case aliasPoisoned:
		return Poisoned(e.tag)
	default:
		return Ready(r.regFile.ReadReg(reg))
	}
}

// CaptureBroadcast commits a broadcast to the register that aliases its tag
// and clears the alias. It returns the register and true if one was aliased.
// A poisoned broadcast does not write the register file.
func (r *RAT) CaptureBroadcast(b Broadcast) (uint8, bool) {
	reg, ok := r.byTag[b.Tag]
	if !ok {
		return 0, false
	}
	delete(r.byTag, b.Tag)

	e := &r.entries[reg]
	if b.Poisoned() {
		e.state = aliasPoisoned
		return reg, true
	}

	r.regFile.WriteReg(reg, b.Value)
	e.state = aliasNone
	return reg, true
}

// Alias returns the pending producer of reg, if any.
func (r *RAT) Alias(reg uint8) (Tag, bool) {
	e := r.entries[reg]
	return e.tag, e.state == aliasPending
}

// IsPoisoned reports whether reg holds a poisoned value.
func (r *RAT) IsPoisoned(reg uint8) bool {
	return r.entries[reg].state == aliasPoisoned
}

// Size returns the number of registers covered by the table.
func (r *RAT) Size() int {
	return len(r.entries)
}

// PendingCount returns the number of registers waiting on a producer.
func (r *RAT) PendingCount() int {
	return len(r.byTag)
}
