// Package benchmarks provides named scenario programs and a harness that
// runs them on the timing model and reports statistics.
package benchmarks

// GetScenarios returns the standard set of scenarios. Each exercises one
// behaviour of the machine.
func GetScenarios() []Benchmark {
	return []Benchmark{
		independentAdds(),
		rawForwarding(),
		divideByZero(),
		budgetExhausted(),
		dependencyChain(),
		stationPressure(),
		writeAfterWrite(),
		mixedOperations(),
	}
}

// GetCoreScenarios returns a minimal set for quick validation.
func GetCoreScenarios() []Benchmark {
	return []Benchmark{
		independentAdds(),
		rawForwarding(),
		divideByZero(),
	}
}

const defaultRegs = `10
20
30
40
50
60
70
80
`

// 1. Two independent adds sharing one unit.
func independentAdds() Benchmark {
	return Benchmark{
		Name:        "independent_adds",
		Description: "2 independent ADDs - back-to-back use of the additive unit",
		Source: `2
10
0 1 2 3
0 4 5 6
` + defaultRegs,
		ExpectedCycles: 6,
	}
}

// 2. A multiply waiting on an add.
func rawForwarding() Benchmark {
	return Benchmark{
		Name:        "raw_forwarding",
		Description: "MUL reads the ADD result from the bus - RAW dependency",
		Source: `2
20
0 1 2 3
2 5 1 4
` + defaultRegs,
		ExpectedCycles: 14,
	}
}

// 3. A faulting divide, an independent add and a consumer of the fault.
func divideByZero() Benchmark {
	return Benchmark{
		Name:        "divide_by_zero",
		Description: "DIV by zero poisons its consumer; independent ADD completes",
		Source: `3
60
3 1 2 7
0 3 4 5
0 6 1 4
10
20
30
40
50
60
70
0
`,
		ExpectedCycles: 44,
		ExpectedFaults: 2,
	}
}

// 4. The cycle budget ends before the divide completes.
func budgetExhausted() Benchmark {
	return Benchmark{
		Name:        "budget_exhausted",
		Description: "DIV longer than the cycle budget - run stops undrained",
		Source: `1
10
3 1 2 3
` + defaultRegs,
		ExpectedCycles:  10,
		ExpectUndrained: true,
	}
}

// 5. Every add depends on the previous one.
func dependencyChain() Benchmark {
	return Benchmark{
		Name:        "dependency_chain",
		Description: "6 dependent ADDs (R1 = R1 + R2) - measures bus forwarding latency",
		Source: `6
50
0 1 1 2
0 1 1 2
0 1 1 2
0 1 1 2
0 1 1 2
0 1 1 2
` + defaultRegs,
	}
}

// 6. More independent adds than additive stations.
func stationPressure() Benchmark {
	return Benchmark{
		Name:        "station_pressure",
		Description: "6 independent ADDs into 3 stations - measures issue stalls",
		Source: `6
50
0 0 6 7
0 1 6 7
0 2 6 7
0 3 6 7
0 4 6 7
0 5 6 7
` + defaultRegs,
	}
}

// 7. Two writers of the same register and a reader of the second.
func writeAfterWrite() Benchmark {
	return Benchmark{
		Name:        "write_after_write",
		Description: "2 writers of R1 - only the last issued reaches the register file",
		Source: `3
30
0 1 2 3
0 1 4 5
2 6 1 1
` + defaultRegs,
		ExpectedCycles: 16,
	}
}

// 8. A mix of all four opcodes with cross-class dependencies.
func mixedOperations() Benchmark {
	return Benchmark{
		Name:        "mixed_operations",
		Description: "ADD/SUB/MUL/DIV mix with dependencies across both classes",
		Source: `6
200
0 1 2 3
2 1 1 4
0 2 1 1
1 3 2 1
3 4 3 2
0 0 4 4
` + defaultRegs,
	}
}
