// Package loader reads simulation inputs in the plain text format:
//
//	N                 number of instructions
//	T                 number of cycles to simulate
//	op rd rs1 rs2     N lines, op 0=ADD 1=SUB 2=MUL 3=DIV
//	v                 one line per register with its initial value
//
// Blank lines and lines starting with '#' are ignored.
package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

// Program is a parsed simulation input.
type Program struct {
	// Cycles is the number of cycles to simulate.
	Cycles uint64
	// Instructions are the instructions in program order.
	Instructions []insts.Instruction
	// Registers are the initial register values.
	Registers []int64
}

// RegFile returns a new register file holding the initial register values.
func (p *Program) RegFile() *emu.RegFile {
	return emu.NewRegFileWithValues(p.Registers)
}

// FormatError reports malformed input. Line is 1-based; 0 means the input
// ended early.
type FormatError struct {
	Line int
	Msg  string
	Err  error
}

func (e *FormatError) Error() string {
	msg := e.Msg
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Line == 0 {
		return "unexpected end of input: " + msg
	}
	return fmt.Sprintf("line %d: %s", e.Line, msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// Option configures parsing.
type Option func(*parser)

// WithNumRegs sets the number of register value lines expected.
// Default: emu.DefaultNumRegs.
func WithNumRegs(n int) Option {
	return func(p *parser) {
		p.numRegs = n
	}
}

// Load parses the input file at path.
func Load(path string, opts ...Option) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Parse(f, opts...)
}

// Parse reads a program from r.
func Parse(r io.Reader, opts ...Option) (*Program, error) {
	p := &parser{
		scanner: bufio.NewScanner(r),
		numRegs: emu.DefaultNumRegs,
	}
	for _, opt := range opts {
		opt(p)
	}

	return p.parse()
}

type parser struct {
	scanner *bufio.Scanner
	line    int
	numRegs int
}

// next returns the fields of the next non-empty, non-comment line.
func (p *parser) next(what string) ([]string, error) {
	for p.scanner.Scan() {
		p.line++
		text := strings.TrimSpace(p.scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		return strings.Fields(text), nil
	}

	if err := p.scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return nil, &FormatError{Msg: "missing " + what}
}

func (p *parser) int(what string) (int64, error) {
	fields, err := p.next(what)
	if err != nil {
		return 0, err
	}
	if len(fields) != 1 {
		return 0, &FormatError{Line: p.line,
			Msg: fmt.Sprintf("%s: expected 1 value, got %d", what, len(fields))}
	}

	v, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, &FormatError{Line: p.line, Msg: what, Err: err}
	}
	return v, nil
}

func (p *parser) count(what string) (int, error) {
	v, err := p.int(what)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, &FormatError{Line: p.line, Msg: fmt.Sprintf("%s: negative value %d", what, v)}
	}
	return int(v), nil
}

func (p *parser) parse() (*Program, error) {
	n, err := p.count("instruction count")
	if err != nil {
		return nil, err
	}

	cycles, err := p.count("cycle count")
	if err != nil {
		return nil, err
	}

	prog := &Program{
		Cycles:       uint64(cycles),
		Instructions: make([]insts.Instruction, 0, n),
		Registers:    make([]int64, 0, p.numRegs),
	}

	for i := 0; i < n; i++ {
		inst, err := p.instruction(i)
		if err != nil {
			return nil, err
		}
		prog.Instructions = append(prog.Instructions, inst)
	}

	for i := 0; i < p.numRegs; i++ {
		v, err := p.int(fmt.Sprintf("value of R%d", i))
		if err != nil {
			return nil, err
		}
		prog.Registers = append(prog.Registers, v)
	}

	return prog, nil
}

func (p *parser) instruction(i int) (insts.Instruction, error) {
	what := fmt.Sprintf("instruction %d", i)
	fields, err := p.next(what)
	if err != nil {
		return insts.Instruction{}, err
	}
	if len(fields) != 4 {
		return insts.Instruction{}, &FormatError{Line: p.line,
			Msg: fmt.Sprintf("%s: expected 4 fields, got %d", what, len(fields))}
	}

	var ids [4]int
	for j, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return insts.Instruction{}, &FormatError{Line: p.line, Msg: what, Err: err}
		}
		ids[j] = v
	}

	for _, reg := range ids[1:] {
		if reg < 0 || reg >= p.numRegs {
			return insts.Instruction{}, &FormatError{Line: p.line,
				Msg: fmt.Sprintf("%s: register R%d out of range [0, %d)", what, reg, p.numRegs)}
		}
	}

	inst, err := insts.FromIDs(ids[0], ids[1], ids[2], ids[3])
	if err != nil {
		return insts.Instruction{}, &FormatError{Line: p.line, Msg: what, Err: err}
	}
	return inst, nil
}

// Format writes prog in the input format accepted by Parse.
func Format(w io.Writer, prog *Program) error {
	bw := bufio.NewWriter(w)

	_, _ = fmt.Fprintf(bw, "%d\n%d\n", len(prog.Instructions), prog.Cycles)
	for _, inst := range prog.Instructions {
		_, _ = fmt.Fprintf(bw, "%d %d %d %d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	}
	for _, v := range prog.Registers {
		_, _ = fmt.Fprintf(bw, "%d\n", v)
	}

	return bw.Flush()
}
