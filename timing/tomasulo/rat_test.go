package tomasulo_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

var _ = Describe("RAT", func() {
	var (
		regFile *emu.RegFile
		rat     *tomasulo.RAT
	)

	BeforeEach(func() {
		regFile = emu.NewRegFileWithValues([]int64{10, 20, 30, 40, 50, 60, 70, 80})
		rat = tomasulo.NewRAT(regFile)
	})

	It("should resolve unaliased registers from the register file", func() {
		Expect(rat.Resolve(2)).To(Equal(tomasulo.Ready(30)))
		_, aliased := rat.Alias(2)
		Expect(aliased).To(BeFalse())
		Expect(rat.Size()).To(Equal(8))
	})

	It("should resolve renamed registers to their producer", func() {
		rat.Rename(1, 4)

		Expect(rat.Resolve(1)).To(Equal(tomasulo.Pending(4)))
		tag, aliased := rat.Alias(1)
		Expect(aliased).To(BeTrue())
		Expect(tag).To(Equal(tomasulo.Tag(4)))
		Expect(rat.PendingCount()).To(Equal(1))
	})

	It("should commit a broadcast and clear the alias", func() {
		rat.Rename(1, 4)

		reg, ok := rat.CaptureBroadcast(tomasulo.Broadcast{Tag: 4, Value: 99})
		Expect(ok).To(BeTrue())
		Expect(reg).To(Equal(uint8(1)))
		Expect(regFile.ReadReg(1)).To(Equal(int64(99)))
		Expect(rat.Resolve(1)).To(Equal(tomasulo.Ready(99)))
		Expect(rat.PendingCount()).To(Equal(0))
	})

	It("should ignore broadcasts no register aliases", func() {
		_, ok := rat.CaptureBroadcast(tomasulo.Broadcast{Tag: 2, Value: 5})
		Expect(ok).To(BeFalse())
		Expect(regFile.Values()).To(Equal([]int64{10, 20, 30, 40, 50, 60, 70, 80}))
	})

	It("should let the last rename win", func() {
		rat.Rename(1, 0)
		rat.Rename(1, 1)

		_, ok := rat.CaptureBroadcast(tomasulo.Broadcast{Tag: 0, Value: 5})
		Expect(ok).To(BeFalse())
		Expect(regFile.ReadReg(1)).To(Equal(int64(20)))
		Expect(rat.Resolve(1)).To(Equal(tomasulo.Pending(1)))

		_, ok = rat.CaptureBroadcast(tomasulo.Broadcast{Tag: 1, Value: 6})
		Expect(ok).To(BeTrue())
		Expect(regFile.ReadReg(1)).To(Equal(int64(6)))
	})

	Describe("poisoned broadcasts", func() {
		BeforeEach(func() {
			rat.Rename(3, 2)
			_, ok := rat.CaptureBroadcast(tomasulo.Broadcast{Tag: 2, Err: errors.New("div by zero")})
			Expect(ok).To(BeTrue())
		})

		It("should not write the register file", func() {
			Expect(regFile.ReadReg(3)).To(Equal(int64(40)))
		})

		It("should resolve the register as poisoned", func() {
			Expect(rat.IsPoisoned(3)).To(BeTrue())
			Expect(rat.Resolve(3)).To(Equal(tomasulo.Poisoned(2)))
			_, aliased := rat.Alias(3)
			Expect(aliased).To(BeFalse())
		})

		It("should clear the poison on the next rename", func() {
			rat.Rename(3, 0)
			Expect(rat.IsPoisoned(3)).To(BeFalse())
			Expect(rat.Resolve(3)).To(Equal(tomasulo.Pending(0)))
		})
	})
})
