package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// Mode selects which snapshots a Reporter prints.
type Mode uint8

// Report modes.
const (
	ModeBefore Mode = 1 << iota
	ModeAfter

	ModeNone Mode = 0
	ModeBoth      = ModeBefore | ModeAfter
)

// ParseMode parses "before", "after", "both" or "none".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "none":
		return ModeNone, nil
	case "before":
		return ModeBefore, nil
	case "after":
		return ModeAfter, nil
	case "both":
		return ModeBoth, nil
	default:
		return ModeNone, fmt.Errorf("unknown report mode %q", s)
	}
}

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeBefore:
		return "before"
	case ModeAfter:
		return "after"
	case ModeBoth:
		return "both"
	default:
		return fmt.Sprintf("Mode(%d)", uint8(m))
	}
}

// Reporter is a hook that prints machine snapshots as the controller runs.
// Attach it with AcceptHook.
type Reporter struct {
	w    io.Writer
	mode Mode
	dump bool
}

// NewReporter creates a reporter writing to w. With dump set, every printed
// snapshot is followed by a structural dump.
func NewReporter(w io.Writer, mode Mode, dump bool) *Reporter {
	return &Reporter{w: w, mode: mode, dump: dump}
}

// WriteInitial prints the state before the first cycle.
func (r *Reporter) WriteInitial(snap tomasulo.Snapshot) {
	r.write("CLOCK CYCLE = 0", snap)
}

// Func implements sim.Hook.
func (r *Reporter) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case tomasulo.HookPosCycleStart:
		if r.mode&ModeBefore == 0 {
			return
		}
		snap := ctx.Item.(tomasulo.Snapshot)
		r.write(fmt.Sprintf("CLOCK CYCLE = %d (before)", snap.Cycle+1), snap)
	case tomasulo.HookPosCycleEnd:
		if r.mode&ModeAfter == 0 {
			return
		}
		snap := ctx.Item.(tomasulo.Snapshot)
		r.write(fmt.Sprintf("CLOCK CYCLE = %d", snap.Cycle), snap)
	case tomasulo.HookPosFault:
		f := ctx.Item.(tomasulo.Fault)
		_, _ = fmt.Fprintf(r.w, "!!! FAULT %s\n", f)
	}
}

func (r *Reporter) write(title string, snap tomasulo.Snapshot) {
	_, _ = fmt.Fprintf(r.w, "\n@@@ %s @@@\n\n", title)
	_ = WriteSnapshot(r.w, snap)
	if r.dump {
		Dump(r.w, snap)
	}
}
