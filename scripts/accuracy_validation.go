// Package main provides accuracy validation for the timing model.
// Ensures that out-of-order execution preserves in-order results.
package main

import (
	"fmt"
	"os"
	"reflect"

	"github.com/sarchlab/tomasim/benchmarks"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

const (
	numSeeds     = 20
	programSize  = 200
	numRegisters = 8
)

// machines are the configurations every program is validated on.
func machines() map[string]tomasulo.Config {
	out := map[string]tomasulo.Config{}

	out["default"] = tomasulo.DefaultConfig()

	narrow := tomasulo.DefaultConfig()
	narrow.AddStations = 1
	narrow.MulStations = 1
	out["narrow"] = narrow

	wide := tomasulo.DefaultConfig()
	wide.AddStations = 8
	wide.MulStations = 8
	wide.ReuseFreedSlots = true
	out["wide"] = wide

	addFirst := tomasulo.DefaultConfig()
	addFirst.Priority = []insts.Class{insts.ClassAdd, insts.ClassMul}
	out["add-priority"] = addFirst

	return out
}

// testFinalState validates that every synthetic program drains and reaches
// the state computed by the in-order reference emulator.
func testFinalState() bool {
	fmt.Println("Testing final state against the reference emulator...")

	passed := true
	for name, machine := range machines() {
		for seed := int64(1); seed <= numSeeds; seed++ {
			prog := benchmarks.Synthetic(programSize, numRegisters, seed)

			c, err := core.NewCore(prog, core.WithConfig(machine))
			if err != nil {
				fmt.Printf("❌ %s seed %d: %v\n", name, seed, err)
				passed = false
				continue
			}

			drained, err := c.Run()
			if err != nil || !drained {
				fmt.Printf("❌ %s seed %d: drained=%t err=%v\n", name, seed, drained, err)
				passed = false
				continue
			}

			if err := benchmarks.Verify(prog, c); err != nil {
				fmt.Printf("❌ %s seed %d: %v\n", name, seed, err)
				passed = false
			}
		}
	}

	if passed {
		fmt.Println("✅ Final state matches the reference emulator")
	}
	return passed
}

// testDeterminism validates that Reset followed by a rerun reproduces the
// same machine state.
func testDeterminism() bool {
	fmt.Println("Testing run determinism...")

	for seed := int64(1); seed <= numSeeds; seed++ {
		prog := benchmarks.Synthetic(programSize, numRegisters, seed)

		c, err := core.NewCore(prog)
		if err != nil {
			fmt.Printf("❌ seed %d: %v\n", seed, err)
			return false
		}

		if _, err := c.Run(); err != nil {
			fmt.Printf("❌ seed %d: %v\n", seed, err)
			return false
		}
		first := c.Snapshot()
		firstStats := c.Stats()

		if err := c.Reset(); err != nil {
			fmt.Printf("❌ seed %d: reset: %v\n", seed, err)
			return false
		}
		if _, err := c.Run(); err != nil {
			fmt.Printf("❌ seed %d: %v\n", seed, err)
			return false
		}

		if !reflect.DeepEqual(first, c.Snapshot()) || firstStats != c.Stats() {
			fmt.Printf("❌ seed %d: rerun diverged\n", seed)
			return false
		}
	}

	fmt.Println("✅ Reruns are identical")
	return true
}

func main() {
	fmt.Println("Tomasim Accuracy Validation")
	fmt.Println("=======================================================")

	allPassed := true

	if !testFinalState() {
		allPassed = false
	}

	if !testDeterminism() {
		allPassed = false
	}

	fmt.Println("\n=======================================================")
	if allPassed {
		fmt.Println("🎉 ALL ACCURACY TESTS PASSED")
		os.Exit(0)
	} else {
		fmt.Println("❌ ACCURACY TESTS FAILED")
		os.Exit(1)
	}
}
