package tomasulo

// Broadcast is a result travelling on the common data bus.
type Broadcast struct {
	// Tag is the reservation station that produced the result.
	Tag Tag
	// Value is the result. It is meaningless when Err is set.
	Value int64
	// Err is set when the result is poisoned, e.g. by a division by zero.
	Err error
}

// Poisoned reports whether the broadcast carries a faulted result.
func (b Broadcast) Poisoned() bool {
	return b.Err != nil
}

// CommonDataBus carries at most one broadcast per cycle.
type CommonDataBus struct {
	slot     Broadcast
	occupied bool
}

// NewCommonDataBus creates an empty bus.
func NewCommonDataBus() *CommonDataBus {
	return &CommonDataBus{}
}

// Reset empties the bus. It is called once at the start of every cycle.
func (b *CommonDataBus) Reset() {
	b.slot = Broadcast{}
	b.occupied = false
}

// Publish places a broadcast on the bus. It fails with a BusContentionError
// if another broadcast already holds the bus this cycle.
func (b *CommonDataBus) Publish(bc Broadcast) error {
	if b.occupied {
		return &BusContentionError{Holder: b.slot.Tag, Contender: bc.Tag}
	}
	b.slot = bc
	b.occupied = true
	return nil
}

// Read returns the broadcast on the bus, if any.
func (b *CommonDataBus) Read() (Broadcast, bool) {
	return b.slot, b.occupied
}
