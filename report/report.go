// Package report renders machine snapshots as text tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/davecgh/go-spew/spew"

	"github.com/sarchlab/tomasim/timing/tomasulo"
)

// WriteSnapshot writes the reservation stations, the RAT with the register
// file and the instruction queue of snap as aligned tables.
func WriteSnapshot(w io.Writer, snap tomasulo.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(tw, "### RESERVATION STATIONS ###")
	_, _ = fmt.Fprintln(tw, "RS#\tBusy\tOp\tVj\tVk\tQj\tQk\tDisp")
	for _, st := range snap.Stations {
		writeStation(tw, st)
	}

	_, _ = fmt.Fprintln(tw, "")
	_, _ = fmt.Fprintln(tw, "### RAT ###")
	_, _ = fmt.Fprintln(tw, "#\tRF\tRAT")
	for _, reg := range snap.Registers {
		_, _ = fmt.Fprintf(tw, "R%d\t%d\t%s\n", reg.Reg, reg.Value, alias(reg))
	}

	_, _ = fmt.Fprintln(tw, "")
	_, _ = fmt.Fprintln(tw, "### INSTRUCTION QUEUE ###")
	_, _ = fmt.Fprintln(tw, "OPCODE\tDST\tSRC1\tSRC2")
	for _, inst := range snap.Queue {
		_, _ = fmt.Fprintf(tw, "%s\tR%d\tR%d\tR%d\n", inst.Op, inst.Rd, inst.Rs1, inst.Rs2)
	}

	return tw.Flush()
}

func writeStation(w io.Writer, st tomasulo.StationView) {
	if !st.Busy {
		_, _ = fmt.Fprintf(w, "%s\tno\t\t\t\t\t\t\n", st.Tag)
		return
	}

	vj, qj := operandColumns(st.Src1)
	vk, qk := operandColumns(st.Src2)

	disp := ""
	if st.Dispatched {
		disp = strconv.FormatUint(st.DispatchCycle, 10)
	}

	_, _ = fmt.Fprintf(w, "%s\tyes\t%s\t%s\t%s\t%s\t%s\t%s\n",
		st.Tag, st.Inst.Op, vj, vk, qj, qk, disp)
}

// operandColumns splits an operand into its value and tag columns.
func operandColumns(src tomasulo.OperandSource) (v, q string) {
	switch {
	case src.IsPending():
		return "", src.Tag().String()
	case src.IsPoisoned():
		return "poison", src.Tag().String()
	default:
		return strconv.FormatInt(src.Value(), 10), ""
	}
}

func alias(reg tomasulo.RegisterView) string {
	switch {
	case reg.Aliased:
		return reg.Alias.String()
	case reg.Poisoned:
		return "poison"
	default:
		return ""
	}
}

// WriteSummary writes run statistics and recorded faults.
func WriteSummary(w io.Writer, stats tomasulo.Statistics, faults []tomasulo.Fault) {
	_, _ = fmt.Fprintln(w, "=== Simulation Summary ===")
	_, _ = fmt.Fprintf(w, "Cycles:        %d\n", stats.Cycles)
	_, _ = fmt.Fprintf(w, "Issued:        %d\n", stats.Issued)
	_, _ = fmt.Fprintf(w, "Dispatched:    %d\n", stats.Dispatched)
	_, _ = fmt.Fprintf(w, "Completed:     %d\n", stats.Completed)
	_, _ = fmt.Fprintf(w, "IPC:           %.3f\n", stats.IPC())
	_, _ = fmt.Fprintf(w, "Issue stalls:  %d\n", stats.IssueStalls)
	_, _ = fmt.Fprintf(w, "Bus deferrals: %d\n", stats.BusDeferrals)
	_, _ = fmt.Fprintf(w, "Faults:        %d\n", stats.Faults)

	for _, f := range faults {
		_, _ = fmt.Fprintf(w, "  %s\n", f)
	}
}

var dumper = spew.ConfigState{
	Indent:                  "  ",
	DisablePointerAddresses: true,
	DisableCapacities:       true,
	SortKeys:                true,
}

// Dump writes a structural dump of v, typically a Snapshot, for debugging.
func Dump(w io.Writer, v interface{}) {
	dumper.Fdump(w, v)
}
