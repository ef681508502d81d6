package emu

import (
	"fmt"

	"github.com/sarchlab/tomasim/insts"
)

// ArithmeticError reports an operation whose result is undefined, such as a
// division by zero.
type ArithmeticError struct {
	Op   insts.Op
	A, B int64
}

func (e *ArithmeticError) Error() string {
	return fmt.Sprintf("arithmetic error: %s %d, %d: division by zero", e.Op, e.A, e.B)
}

// ALU implements the arithmetic operations of the machine on 64-bit signed
// integers. Overflow wraps around; division truncates toward zero.
type ALU struct{}

// NewALU creates a new ALU.
func NewALU() *ALU {
	return &ALU{}
}

// Execute computes op(a, b).
// DIV with a zero divisor returns an *ArithmeticError.
func (a *ALU) Execute(op insts.Op, x, y int64) (int64, error) {
	switch op {
	case insts.OpADD:
		return x + y, nil
	case insts.OpSUB:
		return x - y, nil
	case insts.OpMUL:
		return x * y, nil
	case insts.OpDIV:
		if y == 0 {
			return 0, &ArithmeticError{Op: op, A: x, B: y}
		}
		return x / y, nil
	default:
		return 0, fmt.Errorf("unknown opcode %v", op)
	}
}
