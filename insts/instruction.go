package insts

import "fmt"

// Op represents an arithmetic opcode.
type Op uint8

// Opcodes. The numeric values match the opcode ids used by the text input
// format (0=ADD, 1=SUB, 2=MUL, 3=DIV).
const (
	OpADD Op = iota
	OpSUB
	OpMUL
	OpDIV

	numOps
)

var opNames = [...]string{
	OpADD: "ADD",
	OpSUB: "SUB",
	OpMUL: "MUL",
	OpDIV: "DIV",
}

// String returns the mnemonic of the opcode.
func (o Op) String() string {
	if o.Valid() {
		return opNames[o]
	}
	return fmt.Sprintf("Op(%d)", uint8(o))
}

// Valid reports whether o is a known opcode.
func (o Op) Valid() bool {
	return o < numOps
}

// Class returns the operation class that executes the opcode.
func (o Op) Class() Class {
	switch o {
	case OpMUL, OpDIV:
		return ClassMul
	default:
		return ClassAdd
	}
}

// Class identifies a group of opcodes sharing reservation stations and a
// functional unit.
type Class uint8

// Operation classes.
const (
	ClassAdd Class = iota // ADD, SUB
	ClassMul              // MUL, DIV

	// NumClasses is the number of operation classes.
	NumClasses = 2
)

// String returns a short name of the class.
func (c Class) String() string {
	switch c {
	case ClassAdd:
		return "add"
	case ClassMul:
		return "mul"
	default:
		return fmt.Sprintf("Class(%d)", uint8(c))
	}
}

// MarshalText encodes the class by name.
func (c Class) MarshalText() ([]byte, error) {
	if c >= NumClasses {
		return nil, fmt.Errorf("invalid class %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a class name produced by MarshalText.
func (c *Class) UnmarshalText(text []byte) error {
	switch string(text) {
	case "add":
		*c = ClassAdd
	case "mul":
		*c = ClassMul
	default:
		return fmt.Errorf("unknown class %q", text)
	}
	return nil
}

// Instruction is a register-register arithmetic instruction.
// Instructions are values and are never modified after they are issued.
type Instruction struct {
	Op  Op    // Operation code
	Rd  uint8 // Destination register
	Rs1 uint8 // First source register
	Rs2 uint8 // Second source register
}

// String formats the instruction as assembly, e.g. "ADD R1, R2, R3".
func (i Instruction) String() string {
	return fmt.Sprintf("%s R%d, R%d, R%d", i.Op, i.Rd, i.Rs1, i.Rs2)
}

// FromIDs builds an instruction from the integer fields of the input format.
// It rejects unknown opcode ids and register numbers that do not fit in a
// register index; range checks against the register file size belong to the
// caller.
func FromIDs(opID, rd, rs1, rs2 int) (Instruction, error) {
	if opID < 0 || opID >= int(numOps) {
		return Instruction{}, fmt.Errorf("unknown opcode id %d", opID)
	}

	regs := [3]int{rd, rs1, rs2}
	for _, r := range regs {
		if r < 0 || r > 0xFF {
			return Instruction{}, fmt.Errorf("register R%d out of range", r)
		}
	}

	return Instruction{
		Op:  Op(opID),
		Rd:  uint8(rd),
		Rs1: uint8(rs1),
		Rs2: uint8(rs2),
	}, nil
}

// MaxReg returns the highest register index referenced by the instruction.
func (i Instruction) MaxReg() uint8 {
	m := i.Rd
	if i.Rs1 > m {
		m = i.Rs1
	}
	if i.Rs2 > m {
		m = i.Rs2
	}
	return m
}
