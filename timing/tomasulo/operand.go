package tomasulo

import "fmt"

// Tag identifies a reservation station. Tags are permanent per slot and
// partitioned contiguously across station groups, so a tag alone names the
// group that owns it.
type Tag int

// String formats the tag the way station tables name it, e.g. "RS3".
func (t Tag) String() string {
	return fmt.Sprintf("RS%d", int(t))
}

// OperandSource is the source of one operand of a reservation station. It is
// either Ready with a value or Pending on the station that will produce the
// value.
//
// A ready operand may be poisoned, meaning its producer faulted. Poisoned
// operands still count as ready so the consumer can drain, but the consumer's
// own result is poisoned as well.
type OperandSource struct {
	pending  bool
	poisoned bool
	tag      Tag
	value    int64
}

// Ready returns a resolved operand holding value.
func Ready(value int64) OperandSource {
	return OperandSource{value: value}
}

// Pending returns an operand waiting for the broadcast of tag.
func Pending(tag Tag) OperandSource {
	return OperandSource{pending: true, tag: tag}
}

// Poisoned returns a resolved operand whose producer, tag, faulted.
func Poisoned(tag Tag) OperandSource {
	return OperandSource{poisoned: true, tag: tag}
}

// IsReady reports whether the operand has been resolved.
func (o OperandSource) IsReady() bool {
	return !o.pending
}

// IsPending reports whether the operand still waits for a broadcast.
func (o OperandSource) IsPending() bool {
	return o.pending
}

// IsPoisoned reports whether the operand was resolved by a faulted producer.
func (o OperandSource) IsPoisoned() bool {
	return o.poisoned
}

// Value returns the resolved value. It is zero for pending or poisoned
// operands.
func (o OperandSource) Value() int64 {
	return o.value
}

// Tag returns the producer tag of a pending or poisoned operand.
func (o OperandSource) Tag() Tag {
	return o.tag
}

// WaitsOn reports whether the operand is pending on tag.
func (o OperandSource) WaitsOn(tag Tag) bool {
	return o.pending && o.tag == tag
}

// capture resolves the operand if it waits on the broadcast tag.
func (o OperandSource) capture(b Broadcast) OperandSource {
	if !o.WaitsOn(b.Tag) {
		return o
	}
	if b.Poisoned() {
		return Poisoned(b.Tag)
	}
	return Ready(b.Value)
}

func (o OperandSource) String() string {
	switch {
	case o.pending:
		return o.tag.String()
	case o.poisoned:
		return "poison(" + o.tag.String() + ")"
	default:
		return fmt.Sprintf("%d", o.value)
	}
}
