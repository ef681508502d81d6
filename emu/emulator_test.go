package emu_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
)

var _ = Describe("Emulator", func() {
	var (
		regFile *emu.RegFile
		e       *emu.Emulator
	)

	BeforeEach(func() {
		regFile = emu.NewRegFileWithValues([]int64{10, 20, 30, 40, 50, 60, 70, 0})
		e = emu.NewEmulator(regFile)
	})

	It("should execute instructions in program order", func() {
		faults, err := e.Run([]insts.Instruction{
			{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3},
			{Op: insts.OpMUL, Rd: 5, Rs1: 1, Rs2: 4},
			{Op: insts.OpSUB, Rd: 1, Rs1: 5, Rs2: 1},
			{Op: insts.OpDIV, Rd: 2, Rs1: 1, Rs2: 0},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(faults).To(BeZero())
		Expect(e.InstructionCount()).To(Equal(uint64(4)))
		Expect(regFile.Values()).To(Equal([]int64{10, 3430, 343, 40, 50, 3500, 70, 0}))
		Expect(e.RegFile()).To(BeIdenticalTo(regFile))
	})

	It("should poison the destination of a division by zero", func() {
		result := e.Step(insts.Instruction{Op: insts.OpDIV, Rd: 1, Rs1: 2, Rs2: 7})

		Expect(result.Poisoned).To(BeTrue())
		var arithErr *emu.ArithmeticError
		Expect(errors.As(result.Err, &arithErr)).To(BeTrue())
		Expect(regFile.ReadReg(1)).To(Equal(int64(20)))
		Expect(e.Poisoned(1)).To(BeTrue())
	})

	It("should propagate poison to readers until overwritten", func() {
		faults, err := e.Run([]insts.Instruction{
			{Op: insts.OpDIV, Rd: 1, Rs1: 2, Rs2: 7},
			{Op: insts.OpADD, Rd: 6, Rs1: 1, Rs2: 4},
			{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3},
			{Op: insts.OpADD, Rd: 3, Rs1: 1, Rs2: 1},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(faults).To(Equal(2))
		Expect(e.Poisoned(6)).To(BeTrue())
		Expect(regFile.ReadReg(6)).To(Equal(int64(70)))
		Expect(e.Poisoned(1)).To(BeFalse())
		Expect(regFile.ReadReg(3)).To(Equal(int64(140)))
	})

	It("should carry only the integer part of a quotient forward", func() {
		faults, err := e.Run([]insts.Instruction{
			{Op: insts.OpDIV, Rd: 1, Rs1: 6, Rs2: 3},
			{Op: insts.OpADD, Rd: 2, Rs1: 1, Rs2: 1},
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(faults).To(BeZero())
		Expect(regFile.ReadReg(1)).To(Equal(int64(1)))
		Expect(regFile.ReadReg(2)).To(Equal(int64(2)))
	})

	It("should reject a register outside the register file", func() {
		result := e.Step(insts.Instruction{Op: insts.OpADD, Rd: 9})
		Expect(result.Poisoned).To(BeFalse())
		Expect(result.Err).To(HaveOccurred())

		_, err := e.Run([]insts.Instruction{{Op: insts.OpADD, Rd: 9}})
		Expect(err).To(MatchError(ContainSubstring("instruction 0")))
	})

	It("should stop at the instruction limit", func() {
		e = emu.NewEmulator(regFile, emu.WithMaxInstructions(1))

		_, err := e.Run([]insts.Instruction{
			{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3},
			{Op: insts.OpADD, Rd: 1, Rs1: 2, Rs2: 3},
		})
		Expect(err).To(MatchError(ContainSubstring("max instructions")))
		Expect(e.InstructionCount()).To(Equal(uint64(1)))
	})
})
