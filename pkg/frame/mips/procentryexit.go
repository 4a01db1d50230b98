package mips

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// ProcEntryExit2 appends a dummy sink instruction listing every
// register that must still be considered live-out of the procedure's
// visible code: $sp, $ra, $v0 and every callee-saved register. With
// nothing using them, liveness would otherwise let the allocator
// treat a callee-saved register as dead right where the epilogue
// needs to restore it from.
//
// Grounded on pkg/stacking/prolog.go's callee-save/return-register
// bookkeeping, adapted from ARM64's STP-pair save accounting to a
// single dummy instruction (Appel's own proc_entry_exit2 shape).
func ProcEntryExit2(instrs []assem.Instruction) []assem.Instruction {
	sink := append([]temp.Temp{Target.SP(), Target.RA(), Target.RV()}, Target.CalleeSaves()...)
	return append(instrs, assem.Oper{Assem: "", Src: sink})
}

// frame.go's own locals and spill slots occupy the top of the frame,
// just below the incoming frame pointer (offsets -4, -8, ... down to
// -Frame.Size()). The fixed savedRegsBase-byte RA/FP save area sits
// right below them, and the callee-saved registers below that.
const savedRegsBase = 8

// ProcEntryExit3 wraps body with the concrete MIPS prologue and
// epilogue for a procedure named by label, given its frame's local
// size (frame.Frame.Size()) and the callee-saved registers actually
// assigned a color by this procedure's allocation (only those need
// saving and restoring).
//
// Grounded on pkg/stacking/prolog.go's GeneratePrologue/
// GenerateEpilogue (save-FP-and-RA, allocate frame, save callee-saves
// / mirror in reverse), adapted from ARM64's paired STP/LDP and
// mach.Instruction shape to MIPS sw/lw text against assem.Oper, per
// SPEC_FULL.md's Open Question resolution to emit concrete MIPS
// prologue/epilogue text.
func ProcEntryExit3(label temp.Label, localSize int64, savedCallee []temp.Temp, body []assem.Instruction) []assem.Instruction {
	frameSize := localSize + savedRegsBase + int64(len(savedCallee))*wordSize
	sp, fp, ra := Target.SP(), Target.FP(), Target.RA()

	var out []assem.Instruction
	out = append(out, assem.LabelInst{Assem: label.String() + ":", Lbl: label})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("subu 's0, 's0, %d", frameSize), Src: []temp.Temp{sp}, Dst: []temp.Temp{sp}})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("sw 's0, %d('s1)", frameSize-localSize-4), Src: []temp.Temp{ra, sp}})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("sw 's0, %d('s1)", frameSize-localSize-8), Src: []temp.Temp{fp, sp}})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("addu 'd0, 's0, %d", frameSize), Src: []temp.Temp{sp}, Dst: []temp.Temp{fp}})
	for i, r := range savedCallee {
		out = append(out, assem.Oper{
			Assem: fmt.Sprintf("sw 's0, %d('s1)", -localSize-int64(savedRegsBase)-int64(i+1)*wordSize),
			Src:   []temp.Temp{r, fp},
		})
	}

	out = append(out, body...)

	for i := len(savedCallee) - 1; i >= 0; i-- {
		out = append(out, assem.Oper{
			Assem: fmt.Sprintf("lw 'd0, %d('s0)", -localSize-int64(savedRegsBase)-int64(i+1)*wordSize),
			Dst:   []temp.Temp{savedCallee[i]},
			Src:   []temp.Temp{fp},
		})
	}
	out = append(out, assem.Oper{Assem: fmt.Sprintf("lw 'd0, %d('s0)", frameSize-localSize-4), Dst: []temp.Temp{ra}, Src: []temp.Temp{sp}})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("lw 'd0, %d('s0)", frameSize-localSize-8), Dst: []temp.Temp{fp}, Src: []temp.Temp{sp}})
	out = append(out, assem.Oper{Assem: fmt.Sprintf("addu 's0, 's0, %d", frameSize), Src: []temp.Temp{sp}, Dst: []temp.Temp{sp}})
	out = append(out, assem.Oper{Assem: "jr 's0", Src: []temp.Temp{ra}, Jump: nil})

	return out
}

// SavedCalleeRegisters returns, in a fixed deterministic order, the
// subset of target's callee-saved registers that appear anywhere in
// color (i.e. were actually assigned to some temp by this procedure's
// allocation) — exactly the registers ProcEntryExit3 needs to save.
func SavedCalleeRegisters(color map[temp.Temp]temp.Temp) []temp.Temp {
	used := make(map[temp.Temp]bool, len(color))
	for t, r := range color {
		if !t.Precolored() {
			used[r] = true
		}
	}
	var saved []temp.Temp
	for _, r := range Target.CalleeSaves() {
		if used[r] {
			saved = append(saved, r)
		}
	}
	return saved
}

var _ frame.Target = Target
