// Package main provides the entry point for Tomasim.
// Tomasim is a cycle-driven simulator of Tomasulo's out-of-order execution
// algorithm built on Akita.
//
// For the full CLI, use: go run ./cmd/tomasim
package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Println("Tomasim - Tomasulo Out-of-Order Execution Simulator")
	fmt.Println("Built on Akita simulation framework")
	fmt.Println("")
	fmt.Println("Usage: tomasim [options] <input-file>")
	fmt.Println("")
	fmt.Println("Options:")
	fmt.Println("  --config        Path to timing configuration JSON file")
	fmt.Println("  --add-stations  Number of ADD/SUB reservation stations")
	fmt.Println("  --mul-stations  Number of MUL/DIV reservation stations")
	fmt.Println("  --cycles        Cycles to simulate, overriding the input file")
	fmt.Println("  --report        When to print state: before, after, both or none")
	fmt.Println("  --dump          Dump the full machine state with every report")
	fmt.Println("  -v              Log verbosity (repeat for more detail)")
	fmt.Println("")
	fmt.Println("Run 'go run ./cmd/tomasim' for the full CLI.")
	fmt.Println("Run 'go run ./cmd/benchmark' for the scenario harness.")

	if len(os.Args) > 1 {
		fmt.Println("\nNote: You provided arguments. Use 'go run ./cmd/tomasim' instead.")
	}
}
