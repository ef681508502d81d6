package tomasulo_test

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
	"github.com/sarchlab/tomasim/timing/tomasulo"
)

func mustInst(opID, rd, rs1, rs2 int) insts.Instruction {
	inst, err := insts.FromIDs(opID, rd, rs1, rs2)
	Expect(err).NotTo(HaveOccurred())
	return inst
}

var _ = Describe("StationGroup", func() {
	var (
		regFile *emu.RegFile
		rat     *tomasulo.RAT
		unit    *tomasulo.FunctionalUnit
		group   *tomasulo.StationGroup
	)

	BeforeEach(func() {
		regFile = emu.NewRegFileWithValues([]int64{10, 20, 30, 40, 50, 60, 70, 80})
		rat = tomasulo.NewRAT(regFile)
		unit = tomasulo.NewFunctionalUnit(insts.ClassAdd, latency.NewTable(), emu.NewALU())
		var err error
		group, err = tomasulo.NewStationGroup(insts.ClassAdd, 0, 3, unit, rat)
		Expect(err).NotTo(HaveOccurred())
	})

	It("should own a contiguous tag range", func() {
		mulUnit := tomasulo.NewFunctionalUnit(insts.ClassMul, latency.NewTable(), emu.NewALU())
		mulGroup, err := tomasulo.NewStationGroup(insts.ClassMul, 3, 2, mulUnit, rat)
		Expect(err).NotTo(HaveOccurred())

		Expect(mulGroup.Owns(2)).To(BeFalse())
		Expect(mulGroup.Owns(3)).To(BeTrue())
		Expect(mulGroup.Owns(4)).To(BeTrue())
		Expect(mulGroup.Owns(5)).To(BeFalse())

		stations := mulGroup.Stations()
		Expect(stations).To(HaveLen(2))
		Expect(stations[0].Tag).To(Equal(tomasulo.Tag(3)))
		Expect(stations[1].Tag).To(Equal(tomasulo.Tag(4)))
	})

	DescribeTable("should reject an out-of-range size",
		func(size int) {
			g, err := tomasulo.NewStationGroup(insts.ClassAdd, 0, size, unit, rat)
			Expect(err).To(MatchError(ContainSubstring("out of range")))
			Expect(g).To(BeNil())
		},
		Entry("empty", 0),
		Entry("negative", -1),
		Entry("wider than a bitmap word", tomasulo.MaxStationsPerGroup+1),
	)

	Describe("Issue", func() {
		It("should fill the lowest free slot and rename the destination", func() {
			tag, err := group.Issue(mustInst(0, 1, 2, 3), 1)
			Expect(err).NotTo(HaveOccurred())
			Expect(tag).To(Equal(tomasulo.Tag(0)))

			st, ok := group.Station(0)
			Expect(ok).To(BeTrue())
			Expect(st.Busy).To(BeTrue())
			Expect(st.IssueCycle).To(Equal(uint64(1)))
			Expect(st.Src1).To(Equal(tomasulo.Ready(30)))
			Expect(st.Src2).To(Equal(tomasulo.Ready(40)))
			Expect(rat.Resolve(1)).To(Equal(tomasulo.Pending(0)))

			tag, err = group.Issue(mustInst(1, 4, 1, 5), 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(tag).To(Equal(tomasulo.Tag(1)))

			st, _ = group.Station(1)
			Expect(st.Src1).To(Equal(tomasulo.Pending(0)))
			Expect(st.Src2).To(Equal(tomasulo.Ready(60)))
		})

		It("should read sources before renaming its own destination", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			tag, err := group.Issue(mustInst(0, 1, 1, 1), 2)
			Expect(err).NotTo(HaveOccurred())

			st, _ := group.Station(tag)
			Expect(st.Src1).To(Equal(tomasulo.Pending(0)))
			Expect(st.Src2).To(Equal(tomasulo.Pending(0)))
			Expect(rat.Resolve(1)).To(Equal(tomasulo.Pending(tag)))
		})

		It("should fail with a CapacityError when full", func() {
			for i := 0; i < 3; i++ {
				_, err := group.Issue(mustInst(0, i, 0, 0), 1)
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(group.HasFreeSlot(2)).To(BeFalse())
			Expect(group.BusyCount()).To(Equal(3))

			_, err := group.Issue(mustInst(0, 4, 0, 0), 2)
			var capErr *tomasulo.CapacityError
			Expect(errors.As(err, &capErr)).To(BeTrue())
			Expect(capErr.Class).To(Equal(insts.ClassAdd))
		})

		It("should not count a slot freed this cycle as free", func() {
			for i := 0; i < 3; i++ {
				group.Issue(mustInst(0, i, 0, 0), 1)
			}

			Expect(group.CaptureBroadcast(tomasulo.Broadcast{Tag: 1, Value: 5}, 4)).To(BeTrue())

			Expect(group.HasFreeSlot(4)).To(BeFalse())
			Expect(group.HasFreeSlot(5)).To(BeTrue())

			tag, err := group.Issue(mustInst(0, 5, 0, 0), 5)
			Expect(err).NotTo(HaveOccurred())
			Expect(tag).To(Equal(tomasulo.Tag(1)))
		})

		It("should reuse a slot freed this cycle when configured", func() {
			group.SetReuseFreedSlots(true)
			for i := 0; i < 3; i++ {
				group.Issue(mustInst(0, i, 0, 0), 1)
			}

			group.CaptureBroadcast(tomasulo.Broadcast{Tag: 2, Value: 5}, 4)

			Expect(group.HasFreeSlot(4)).To(BeTrue())
		})
	})

	Describe("CaptureBroadcast", func() {
		It("should resolve waiting operands in every busy slot", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			group.Issue(mustInst(0, 4, 1, 1), 2)

			freed := group.CaptureBroadcast(tomasulo.Broadcast{Tag: 0, Value: 70}, 4)
			Expect(freed).To(BeTrue())

			st, _ := group.Station(1)
			Expect(st.Src1).To(Equal(tomasulo.Ready(70)))
			Expect(st.Src2).To(Equal(tomasulo.Ready(70)))

			st, _ = group.Station(0)
			Expect(st.Busy).To(BeFalse())
			Expect(st.Inst).To(BeZero())
		})

		It("should not free anything for a foreign tag", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			Expect(group.CaptureBroadcast(tomasulo.Broadcast{Tag: 3, Value: 1}, 2)).To(BeFalse())
			Expect(group.BusyCount()).To(Equal(1))
		})

		It("should poison operands waiting on a poisoned broadcast", func() {
			rat.Rename(2, 3)
			group.Issue(mustInst(0, 1, 2, 4), 1)

			group.CaptureBroadcast(tomasulo.Broadcast{Tag: 3, Err: errors.New("fault")}, 5)

			st, _ := group.Station(0)
			Expect(st.Src1).To(Equal(tomasulo.Poisoned(3)))
			Expect(st.OperandsReady()).To(BeTrue())
		})
	})

	Describe("Dispatch", func() {
		It("should not dispatch in the issue cycle", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)

			_, ok := group.DispatchCandidate(1)
			Expect(ok).To(BeFalse())

			tag, ok := group.DispatchCandidate(2)
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal(tomasulo.Tag(0)))
		})

		It("should skip stations with pending operands", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			group.Issue(mustInst(0, 4, 1, 5), 1)
			group.Issue(mustInst(0, 6, 5, 5), 1)

			_, _, err := group.Dispatch(2)
			Expect(err).NotTo(HaveOccurred())
			unit.Complete()

			tag, ok := group.DispatchCandidate(3)
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal(tomasulo.Tag(2)))
		})

		It("should prefer the lowest ready tag", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			group.Issue(mustInst(0, 4, 5, 6), 1)

			tag, ok := group.DispatchCandidate(2)
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal(tomasulo.Tag(0)))
		})

		It("should start the unit and record the dispatch cycle", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)

			tag, ok, err := group.Dispatch(2)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())
			Expect(tag).To(Equal(tomasulo.Tag(0)))

			st, _ := group.Station(0)
			Expect(st.Dispatched).To(BeTrue())
			Expect(st.DispatchCycle).To(Equal(uint64(2)))

			op, inFlight := unit.InFlight()
			Expect(inFlight).To(BeTrue())
			Expect(op).To(Equal(tomasulo.Operation{Op: insts.OpADD, Tag: 0, V1: 30, V2: 40}))
			Expect(unit.FinishCycle()).To(Equal(uint64(4)))
		})

		It("should offer nothing while the unit is busy", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			group.Issue(mustInst(0, 4, 5, 6), 1)
			group.Dispatch(2)

			_, ok := group.DispatchCandidate(3)
			Expect(ok).To(BeFalse())
		})

		It("should never dispatch a station twice", func() {
			group.Issue(mustInst(0, 1, 2, 3), 1)
			group.Dispatch(2)
			unit.Complete()

			_, ok := group.DispatchCandidate(3)
			Expect(ok).To(BeFalse())
		})

		It("should mark the operation poisoned when an operand is poisoned", func() {
			rat.Rename(2, 3)
			group.Issue(mustInst(0, 1, 2, 4), 1)
			group.CaptureBroadcast(tomasulo.Broadcast{Tag: 3, Err: errors.New("fault")}, 2)

			_, ok, err := group.Dispatch(3)
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeTrue())

			op, _ := unit.InFlight()
			Expect(op.Poison).To(MatchError(tomasulo.ErrPoisonedOperand))
		})
	})
})
