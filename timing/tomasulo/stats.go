package tomasulo

import "github.com/sarchlab/akita/v4/sim"

// Statistics holds controller performance statistics.
type Statistics struct {
	// Cycles is the total number of cycles simulated.
	Cycles uint64
	// Issued is the number of instructions issued into reservation stations.
	Issued uint64
	// Dispatched is the number of instructions started on functional units.
	Dispatched uint64
	// Completed is the number of results broadcast on the bus.
	Completed uint64
	// IssueStalls is the number of cycles the queue head could not issue
	// because its station group was full.
	IssueStalls uint64
	// BusDeferrals is the number of results postponed by bus arbitration.
	BusDeferrals uint64
	// Faults is the number of poisoned results.
	Faults uint64
}

// IPC returns the completed instructions per cycle.
func (s Statistics) IPC() float64 {
	if s.Cycles == 0 {
		return 0
	}
	return float64(s.Completed) / float64(s.Cycles)
}

// CPI returns the cycles per completed instruction.
func (s Statistics) CPI() float64 {
	if s.Completed == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Completed)
}

// SimulatedTime converts the cycle count into simulated seconds at freq.
func (s Statistics) SimulatedTime(freq sim.Freq) sim.VTimeInSec {
	if freq <= 0 {
		return 0
	}
	return sim.VTimeInSec(float64(s.Cycles) / float64(freq))
}
