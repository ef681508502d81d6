// Package insts provides the instruction definitions consumed by the
// Tomasulo timing model.
//
// The simulated machine understands four register-register arithmetic
// operations. Each operation belongs to an operation class, and the class
// selects the reservation-station group and functional unit that executes it:
//   - Additive class: ADD, SUB
//   - Multiplicative class: MUL, DIV
//
// Usage:
//
//	inst, err := insts.FromIDs(2, 1, 2, 3) // MUL R1, R2, R3
//	fmt.Printf("Op: %v, Rd: %d, Rs1: %d, Rs2: %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
package insts
