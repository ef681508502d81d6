package tomasulo

import "github.com/sarchlab/tomasim/insts"

// InstructionQueue holds the instructions that have not been issued yet, in
// program order.
type InstructionQueue struct {
	insts []insts.Instruction
}

// NewInstructionQueue creates a queue holding program.
func NewInstructionQueue(program []insts.Instruction) *InstructionQueue {
	q := &InstructionQueue{}
	q.insts = append(q.insts, program...)
	return q
}

// Push appends an instruction.
func (q *InstructionQueue) Push(inst insts.Instruction) {
	q.insts = append(q.insts, inst)
}

// Peek returns the oldest instruction without removing it.
func (q *InstructionQueue) Peek() (insts.Instruction, bool) {
	if len(q.insts) == 0 {
		return insts.Instruction{}, false
	}
	return q.insts[0], true
}

// Pop removes and returns the oldest instruction.
func (q *InstructionQueue) Pop() (insts.Instruction, bool) {
	inst, ok := q.Peek()
	if ok {
		q.insts = q.insts[1:]
	}
	return inst, ok
}

// Len returns the number of queued instructions.
func (q *InstructionQueue) Len() int {
	return len(q.insts)
}

// Empty reports whether the queue has no instructions.
func (q *InstructionQueue) Empty() bool {
	return len(q.insts) == 0
}

// Contents returns a copy of the queued instructions, oldest first.
func (q *InstructionQueue) Contents() []insts.Instruction {
	out := make([]insts.Instruction, len(q.insts))
	copy(out, q.insts)
	return out
}
