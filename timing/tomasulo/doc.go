// Package tomasulo provides a cycle-driven model of out-of-order execution
// under Tomasulo's algorithm.
//
// The machine is built from an instruction queue, a register alias table
// (RAT) in front of the architectural register file, one reservation-station
// group and one functional unit per operation class, and a single common data
// bus (CDB). The Controller advances the machine one cycle per Tick, running
// four phases in a fixed order:
//
//	Broadcast: a functional unit that finishes this cycle publishes its
//	           result on the CDB. When several finish together the class
//	           priority decides, and every loser retries next cycle.
//	Capture:   the RAT and all reservation stations snoop the CDB. Waiting
//	           operands become ready, the producing station is freed and the
//	           register file is updated if the RAT still names the producer.
//	Dispatch:  every idle functional unit starts the oldest ready station of
//	           its group. A station never dispatches in the cycle it issued.
//	Issue:     the head of the instruction queue enters a free station of its
//	           class, reading operands through the RAT and renaming its
//	           destination register.
//
// The current cycle is passed explicitly to every phase; the Controller is
// the only owner of time.
package tomasulo
