package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/loader"
	"github.com/sarchlab/tomasim/timing/core"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// BenchmarkResult holds the results for a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// SimulatedCycles is the number of cycles run before the machine
	// drained or the budget ran out
	SimulatedCycles uint64 `json:"simulated_cycles"`

	// Issued is the number of instructions issued
	Issued uint64 `json:"issued"`

	// Completed is the number of results broadcast
	Completed uint64 `json:"completed"`

	// CPI is cycles per completed instruction
	CPI float64 `json:"cpi"`

	// IssueStalls is the number of cycles issue was blocked by a full group
	IssueStalls uint64 `json:"issue_stalls"`

	// BusDeferrals is the number of results delayed by bus arbitration
	BusDeferrals uint64 `json:"bus_deferrals"`

	// Faults is the number of poisoned results
	Faults uint64 `json:"faults"`

	// Drained is true if all work completed within the budget
	Drained bool `json:"drained"`

	// Verified is true if the final registers match the in-order
	// reference emulator. Only drained runs are verified.
	Verified bool `json:"verified"`

	// Err describes why the benchmark could not run or verify
	Err string `json:"error,omitempty"`

	// Registers is the final register file
	Registers []int64 `json:"registers"`

	// WallTime is the actual time taken to run the simulation
	WallTime time.Duration `json:"wall_time_ns"`
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Source is the program in the loader's text format
	Source string

	// ExpectedCycles is the cycle count on the default machine, 0 if not
	// pinned
	ExpectedCycles uint64

	// ExpectedFaults is the number of poisoned results
	ExpectedFaults uint64

	// ExpectUndrained is set when the budget is meant to run out
	ExpectUndrained bool
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// Machine is the machine configuration
	Machine tomasulo.Config

	// Timing sets the functional unit latencies; nil uses the defaults
	Timing *latency.TimingConfig

	// Logger receives controller logs
	Logger logr.Logger

	// Output is where to write results (default: os.Stdout)
	Output io.Writer

	// Verbose enables detailed output
	Verbose bool
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Machine: tomasulo.DefaultConfig(),
		Logger:  logr.Discard(),
		Output:  os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Logger.GetSink() == nil {
		config.Logger = logr.Discard()
	}
	return &Harness{
		config:     config,
		benchmarks: []Benchmark{},
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))

	for _, bench := range h.benchmarks {
		result := h.runBenchmark(bench)
		results = append(results, result)
	}

	return results
}

// runBenchmark executes a single benchmark.
func (h *Harness) runBenchmark(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	prog, err := loader.Parse(strings.NewReader(bench.Source),
		loader.WithNumRegs(h.config.Machine.NumRegs))
	if err != nil {
		result.Err = err.Error()
		return result
	}

	opts := []core.Option{
		core.WithConfig(h.config.Machine),
		core.WithLogger(h.config.Logger.WithValues("benchmark", bench.Name)),
	}
	if h.config.Timing != nil {
		opts = append(opts, core.WithTimingConfig(h.config.Timing))
	}

	c, err := core.NewCore(prog, opts...)
	if err != nil {
		result.Err = err.Error()
		return result
	}

	start := time.Now()
	drained, err := c.Run()
	result.WallTime = time.Since(start)
	if err != nil {
		result.Err = err.Error()
	}

	stats := c.Controller.Stats()
	result.SimulatedCycles = stats.Cycles
	result.Issued = stats.Issued
	result.Completed = stats.Completed
	result.CPI = stats.CPI()
	result.IssueStalls = stats.IssueStalls
	result.BusDeferrals = stats.BusDeferrals
	result.Faults = stats.Faults
	result.Drained = drained
	result.Registers = c.RegFile().Values()

	if drained && err == nil {
		if verr := Verify(prog, c); verr != nil {
			result.Err = verr.Error()
		} else {
			result.Verified = true
		}
	}

	return result
}

// Verify replays prog on the in-order emulator and compares every register
// that is not poisoned, and the fault count.
func Verify(prog *loader.Program, c *core.Core) error {
	e := emu.NewEmulator(prog.RegFile())
	faults, err := e.Run(prog.Instructions)
	if err != nil {
		return fmt.Errorf("reference run failed: %w", err)
	}

	if uint64(faults) != c.Stats().Faults {
		return fmt.Errorf("fault count %d, reference %d", c.Stats().Faults, faults)
	}

	rat := c.Controller.RAT()
	for i := 0; i < e.RegFile().Size(); i++ {
		reg := uint8(i)
		if rat.IsPoisoned(reg) != e.Poisoned(reg) {
			return fmt.Errorf("R%d poisoned=%t, reference poisoned=%t",
				reg, rat.IsPoisoned(reg), e.Poisoned(reg))
		}
		if e.Poisoned(reg) {
			continue
		}
		if got, want := c.RegFile().ReadReg(reg), e.RegFile().ReadReg(reg); got != want {
			return fmt.Errorf("R%d = %d, reference %d", reg, got, want)
		}
	}

	return nil
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== Tomasim Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		if r.Err != "" {
			_, _ = fmt.Fprintf(h.config.Output, "  Error: %s\n", r.Err)
		}
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Simulated Cycles: %d\n", r.SimulatedCycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Issued:           %d\n", r.Issued)
		_, _ = fmt.Fprintf(h.config.Output, "  Completed:        %d\n", r.Completed)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:              %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Issue Stalls:     %d\n", r.IssueStalls)
		_, _ = fmt.Fprintf(h.config.Output, "  Bus Deferrals:    %d\n", r.BusDeferrals)
		_, _ = fmt.Fprintf(h.config.Output, "  Faults:           %d\n", r.Faults)
		_, _ = fmt.Fprintf(h.config.Output, "  Drained:          %t\n", r.Drained)
		_, _ = fmt.Fprintf(h.config.Output, "  Verified:         %t\n", r.Verified)

		if h.config.Verbose {
			_, _ = fmt.Fprintf(h.config.Output, "  Registers: %v\n", r.Registers)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,cycles,issued,completed,cpi,issue_stalls,bus_deferrals,faults,drained,verified")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%t,%t\n",
			r.Name,
			r.SimulatedCycles,
			r.Issued,
			r.Completed,
			r.CPI,
			r.IssueStalls,
			r.BusDeferrals,
			r.Faults,
			r.Drained,
			r.Verified,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// Machine is the machine configuration used
	Machine tomasulo.Config `json:"machine"`

	// Timing is the latency configuration used
	Timing *latency.TimingConfig `json:"timing"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	// TotalBenchmarks is the number of benchmarks run
	TotalBenchmarks int `json:"total_benchmarks"`

	// TotalCycles is the sum of all simulated cycles
	TotalCycles uint64 `json:"total_cycles"`

	// TotalCompleted is the sum of all completed instructions
	TotalCompleted uint64 `json:"total_completed"`

	// AverageCPI is the average cycles per instruction
	AverageCPI float64 `json:"average_cpi"`

	// Unverified is the number of drained benchmarks that failed verification
	Unverified int `json:"unverified"`

	// TotalWallTime is the total wall clock time for all benchmarks
	TotalWallTime time.Duration `json:"total_wall_time_ns"`
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	var summary ReportSummary
	summary.TotalBenchmarks = len(results)
	for _, r := range results {
		summary.TotalCycles += r.SimulatedCycles
		summary.TotalCompleted += r.Completed
		summary.TotalWallTime += r.WallTime
		if r.Drained && !r.Verified {
			summary.Unverified++
		}
	}
	if summary.TotalCompleted > 0 {
		summary.AverageCPI = float64(summary.TotalCycles) / float64(summary.TotalCompleted)
	}

	timing := h.config.Timing
	if timing == nil {
		timing = latency.DefaultTimingConfig()
	}

	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp: time.Now().UTC().Format(time.RFC3339),
			Machine:   h.config.Machine,
			Timing:    timing,
		},
		Results: results,
		Summary: summary,
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
