package tomasulo

import (
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/emu"
	"github.com/sarchlab/tomasim/insts"
	"github.com/sarchlab/tomasim/timing/latency"
)

// Hook positions invoked by the Controller. Hooks receive a Snapshot as the
// HookCtx item, except HookPosFault which receives a Fault.
var (
	// HookPosCycleStart fires before the phases of a cycle run. The snapshot
	// shows the state left by the previous cycle.
	HookPosCycleStart = &sim.HookPos{Name: "CycleStart"}

	// HookPosCycleEnd fires after the Issue phase of a cycle.
	HookPosCycleEnd = &sim.HookPos{Name: "CycleEnd"}

	// HookPosFault fires when a poisoned result is broadcast.
	HookPosFault = &sim.HookPos{Name: "Fault"}
)

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithConfig sets the machine configuration.
func WithConfig(config Config) Option {
	return func(c *Controller) {
		c.config = config.Clone()
	}
}

// WithLatencyTable sets a custom latency table for the functional units.
func WithLatencyTable(table *latency.Table) Option {
	return func(c *Controller) {
		c.latencyTable = table
	}
}

// WithLogger sets the logger. Phase events are logged at V(1), arbitration
// details at V(2) and faults as errors.
func WithLogger(log logr.Logger) Option {
	return func(c *Controller) {
		c.log = log
	}
}

// Controller drives the Tomasulo machine one cycle at a time.
type Controller struct {
	*sim.HookableBase

	config       Config
	latencyTable *latency.Table
	log          logr.Logger

	regFile *emu.RegFile
	rat     *RAT
	queue   *InstructionQueue
	bus     *CommonDataBus

	// groups is indexed by insts.Class; tags are assigned in class order.
	groups []*StationGroup

	cycle  uint64
	stats  Statistics
	faults []Fault
}

// NewController creates a controller that will execute program against
// regFile. It fails if the configuration or a latency is invalid, if regFile does not
// have Config.NumRegs registers or if an instruction names a register
// outside the register file.
func NewController(
	regFile *emu.RegFile,
	program []insts.Instruction,
	opts ...Option,
) (*Controller, error) {
	c := &Controller{
		HookableBase: sim.NewHookableBase(),
		config:       DefaultConfig(),
		latencyTable: latency.NewTable(),
		log:          logr.Discard(),
		regFile:      regFile,
		bus:          NewCommonDataBus(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if err := c.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	timing := c.latencyTable.Config()
	if timing == nil {
		return nil, errors.New("invalid timing config: no latencies set")
	}
	if err := timing.Validate(); err != nil {
		return nil, fmt.Errorf("invalid timing config: %w", err)
	}
	if regFile.Size() != c.config.NumRegs {
		return nil, fmt.Errorf("register file has %d registers, config expects %d",
			regFile.Size(), c.config.NumRegs)
	}
	for i, inst := range program {
		if err := regFile.CheckReg(inst.MaxReg()); err != nil {
			return nil, fmt.Errorf("instruction %d (%s): %w", i, inst, err)
		}
	}

	c.rat = NewRAT(regFile)
	c.queue = NewInstructionQueue(program)

	alu := emu.NewALU()
	base := Tag(0)
	for class := insts.Class(0); int(class) < insts.NumClasses; class++ {
		size := c.config.StationCount(class)
		unit := NewFunctionalUnit(class, c.latencyTable, alu)
		group, err := NewStationGroup(class, base, size, unit, c.rat)
		if err != nil {
			return nil, fmt.Errorf("%s stations: %w", class, err)
		}
		group.SetReuseFreedSlots(c.config.ReuseFreedSlots)
		c.groups = append(c.groups, group)
		base += Tag(size)
	}

	return c, nil
}

// Config returns a copy of the machine configuration.
func (c *Controller) Config() Config {
	return c.config.Clone()
}

// Cycle returns the last completed cycle. It is 0 before the first Tick.
func (c *Controller) Cycle() uint64 {
	return c.cycle
}

// Stats returns controller statistics.
func (c *Controller) Stats() Statistics {
	return c.stats
}

// Faults returns the poisoned results recorded so far, in broadcast order.
func (c *Controller) Faults() []Fault {
	out := make([]Fault, len(c.faults))
	copy(out, c.faults)
	return out
}

// RegFile returns the architectural register file.
func (c *Controller) RegFile() *emu.RegFile {
	return c.regFile
}

// RAT returns the register alias table.
func (c *Controller) RAT() *RAT {
	return c.rat
}

// Queue returns the instruction queue.
func (c *Controller) Queue() *InstructionQueue {
	return c.queue
}

// Group returns the station group of class.
func (c *Controller) Group(class insts.Class) *StationGroup {
	return c.groups[class]
}

// GroupOf returns the station group owning tag.
func (c *Controller) GroupOf(tag Tag) (*StationGroup, bool) {
	for _, g := range c.groups {
		if g.Owns(tag) {
			return g, true
		}
	}
	return nil, false
}

// Drained reports whether all work is done: the queue is empty, no station
// is busy and every functional unit is idle.
func (c *Controller) Drained() bool {
	if !c.queue.Empty() {
		return false
	}
	for _, g := range c.groups {
		if g.BusyCount() > 0 || !g.Unit().Idle() {
			return false
		}
	}
	return true
}

// Run executes exactly cycles ticks, regardless of remaining work.
func (c *Controller) Run(cycles uint64) error {
	for i := uint64(0); i < cycles; i++ {
		if err := c.Tick(); err != nil {
			return err
		}
	}
	return nil
}

// RunUntilDrained ticks until the machine is drained or maxCycles ticks have
// run. It returns true if the machine drained.
func (c *Controller) RunUntilDrained(maxCycles uint64) (bool, error) {
	for i := uint64(0); i < maxCycles && !c.Drained(); i++ {
		if err := c.Tick(); err != nil {
			return false, err
		}
	}
	return c.Drained(), nil
}

// Tick executes one cycle: Broadcast, Capture, Dispatch, Issue.
//
// A returned error is fatal and means an internal invariant was violated
// (a UnitBusyError or BusContentionError). Arithmetic faults are not errors;
// they are recorded in Faults.
func (c *Controller) Tick() error {
	c.invoke(HookPosCycleStart)

	c.cycle++
	c.stats.Cycles++
	now := c.cycle

	c.bus.Reset()

	if err := c.broadcast(now); err != nil {
		return fmt.Errorf("cycle %d: broadcast: %w", now, err)
	}

	c.capture(now)

	if err := c.dispatch(now); err != nil {
		return fmt.Errorf("cycle %d: dispatch: %w", now, err)
	}

	c.issue(now)

	c.invoke(HookPosCycleEnd)

	return nil
}

func (c *Controller) invoke(pos *sim.HookPos) {
	if c.NumHooks() == 0 {
		return
	}
	c.InvokeHook(sim.HookCtx{
		Domain: c,
		Pos:    pos,
		Item:   c.Snapshot(),
	})
}

// broadcast arbitrates among the units finishing at now and publishes the
// winner's result. Losers are deferred by one cycle.
func (c *Controller) broadcast(now uint64) error {
	var winner *StationGroup

	for _, class := range c.config.Priority {
		g := c.groups[class]
		u := g.Unit()
		if !u.Finishing(now) {
			continue
		}

		if winner == nil {
			winner = g
			continue
		}

		op, _ := u.InFlight()
		u.Defer()
		c.stats.BusDeferrals++
		c.log.V(2).Info("bus arbitration deferred result",
			"cycle", now, "tag", op.Tag, "class", class,
			"winner", winner.Class(), "finishCycle", u.FinishCycle())
	}

	if winner == nil {
		return nil
	}

	u := winner.Unit()
	b, _ := u.TryBroadcast(now)
	if err := c.bus.Publish(b); err != nil {
		return err
	}
	u.Complete()
	c.stats.Completed++

	if b.Poisoned() {
		c.recordFault(winner, b, now)
		return nil
	}

	c.log.V(1).Info("broadcast", "cycle", now, "tag", b.Tag, "value", b.Value)
	return nil
}

func (c *Controller) recordFault(g *StationGroup, b Broadcast, now uint64) {
	st, _ := g.Station(b.Tag)
	f := Fault{
		Cycle: now,
		Tag:   b.Tag,
		Inst:  st.Inst,
		Err:   b.Err,
	}
	c.faults = append(c.faults, f)
	c.stats.Faults++

	c.log.Error(b.Err, "instruction faulted",
		"cycle", now, "tag", b.Tag, "inst", st.Inst.String(),
		"poisonedOperand", errors.Is(b.Err, ErrPoisonedOperand))

	if c.NumHooks() > 0 {
		c.InvokeHook(sim.HookCtx{Domain: c, Pos: HookPosFault, Item: f})
	}
}

// capture lets every station group and the RAT snoop the bus.
func (c *Controller) capture(now uint64) {
	b, ok := c.bus.Read()
	if !ok {
		return
	}

	for _, g := range c.groups {
		if g.CaptureBroadcast(b, now) {
			c.log.V(1).Info("station freed", "cycle", now, "tag", b.Tag)
		}
	}

	if reg, ok := c.rat.CaptureBroadcast(b); ok && !b.Poisoned() {
		c.log.V(1).Info("register committed", "cycle", now, "reg", reg, "value", b.Value)
	}
}

// dispatch offers every idle unit the oldest ready station of its group.
func (c *Controller) dispatch(now uint64) error {
	for _, g := range c.groups {
		tag, ok, err := g.Dispatch(now)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		c.stats.Dispatched++
		c.log.V(1).Info("dispatch", "cycle", now, "tag", tag,
			"class", g.Class(), "finishCycle", g.Unit().FinishCycle())
	}
	return nil
}

// issue moves the queue head into a free station of its class, or stalls.
func (c *Controller) issue(now uint64) {
	inst, ok := c.queue.Peek()
	if !ok {
		return
	}

	g := c.groups[inst.Op.Class()]
	if !g.HasFreeSlot(now) {
		c.stats.IssueStalls++
		c.log.V(1).Info("issue stalled", "cycle", now, "inst", inst.String(), "class", g.Class())
		return
	}

	tag, err := g.Issue(inst, now)
	if err != nil {
		c.stats.IssueStalls++
		c.log.V(1).Info("issue stalled", "cycle", now, "inst", inst.String(), "reason", err.Error())
		return
	}

	c.queue.Pop()
	c.stats.Issued++
	c.log.V(1).Info("issue", "cycle", now, "inst", inst.String(), "tag", tag)
}
