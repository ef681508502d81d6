package benchmarks

import (
	"math/rand"

	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/loader"
)

// Synthetic generates a pseudo-random program of n instructions over
// numRegs registers. The same seed yields the same program. Register values
// are non-zero, but divisors computed at run time may still be zero.
func Synthetic(n, numRegs int, seed int64) *loader.Program {
	rng := rand.New(rand.NewSource(seed))

	prog := &loader.Program{
		Instructions: make([]insts.Instruction, n),
		Registers:    make([]int64, numRegs),
	}

	for i := range prog.Instructions {
		prog.Instructions[i] = insts.Instruction{
			Op:  insts.Op(rng.Intn(4)),
			Rd:  uint8(rng.Intn(numRegs)),
			Rs1: uint8(rng.Intn(numRegs)),
			Rs2: uint8(rng.Intn(numRegs)),
		}
	}

	for i := range prog.Registers {
		prog.Registers[i] = int64(rng.Intn(100) + 1)
	}

	// Generous: a serialized DIV costs its latency plus issue and dispatch.
	prog.Cycles = uint64(n) * 50

	return prog
}
