// RewriteSpills has no direct counterpart elsewhere in this package:
// pkg/regalloc/irc.go marks a node spilled and stops there, handing
// the caller the temp in AllocationResult.Spilled and never touching the
// instruction stream again. Here every temp must end up in a register
// or memory with no remaining virtual temp in the final instruction
// list, so the instructions themselves need rewriting: a fresh temp
// loaded from the spill slot immediately before each use and stored
// back immediately after each def, so every spilled temp's live range
// shrinks to a single instruction and Allocate can be run again on
// the result.
package regalloc

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// RewriteSpills assigns every temp in spilled a frame-local memory
// slot (allocating one on f the first time it's seen) and returns a
// new instruction list with a load inserted before every use and a
// store inserted after every def of a spilled temp.
func RewriteSpills(target frame.Target, instrs []assem.Instruction, spilled RegSet, f *frame.Frame, supply *temp.Supply) []assem.Instruction {
	slots := make(map[temp.Temp]int64, len(spilled))
	for t := range spilled {
		access := f.AllocLocal(true, supply)
		mem, ok := access.(frame.InMem)
		if !ok {
			panic("regalloc: spill slot must be allocated in memory")
		}
		slots[t] = mem.Offset
	}

	var out []assem.Instruction
	for _, inst := range instrs {
		out = append(out, rewriteOne(target, inst, spilled, slots, supply)...)
	}
	return out
}

// rewriteOne rewrites one instruction, returning the load(s), the
// (possibly remapped) instruction itself, and the store(s) to append
// after it, in emission order.
func rewriteOne(target frame.Target, inst assem.Instruction, spilled RegSet, slots map[temp.Temp]int64, supply *temp.Supply) []assem.Instruction {
	var result []assem.Instruction
	load := func(t temp.Temp) temp.Temp {
		fresh := supply.NewTemp()
		result = append(result, assem.Oper{
			Assem: fmt.Sprintf("lw 'd0, %d('s0)", slots[t]),
			Dst:   []temp.Temp{fresh},
			Src:   []temp.Temp{target.FP()},
		})
		return fresh
	}

	switch i := inst.(type) {
	case assem.Oper:
		src := remapSlice(i.Src, spilled, load)
		dst, stores := storeSpilledDsts(target, i.Dst, spilled, slots, supply)
		result = append(result, assem.Oper{Assem: i.Assem, Dst: dst, Src: src, Jump: i.Jump, Call: i.Call})
		result = append(result, stores...)

	case assem.Move:
		src := remapSlice([]temp.Temp{i.Src}, spilled, load)
		dst, stores := storeSpilledDsts(target, []temp.Temp{i.Dst}, spilled, slots, supply)
		result = append(result, assem.Move{Assem: i.Assem, Dst: dst[0], Src: src[0]})
		result = append(result, stores...)

	default:
		result = append(result, inst)
	}
	return result
}

// remapSlice replaces every spilled temp in ts with the temp load(t)
// returns, leaving non-spilled temps untouched.
func remapSlice(ts []temp.Temp, spilled RegSet, load func(temp.Temp) temp.Temp) []temp.Temp {
	if len(ts) == 0 {
		return ts
	}
	out := make([]temp.Temp, len(ts))
	for i, t := range ts {
		if spilled.Contains(t) {
			out[i] = load(t)
		} else {
			out[i] = t
		}
	}
	return out
}

// storeSpilledDsts replaces every spilled temp in dsts with a fresh
// temp and returns the store instructions to write it back after.
func storeSpilledDsts(target frame.Target, dsts []temp.Temp, spilled RegSet, slots map[temp.Temp]int64, supply *temp.Supply) ([]temp.Temp, []assem.Instruction) {
	if len(dsts) == 0 {
		return dsts, nil
	}
	out := make([]temp.Temp, len(dsts))
	var stores []assem.Instruction
	for i, t := range dsts {
		if !spilled.Contains(t) {
			out[i] = t
			continue
		}
		fresh := supply.NewTemp()
		out[i] = fresh
		stores = append(stores, assem.Oper{
			Assem: fmt.Sprintf("sw 's0, %d('s1)", slots[t]),
			Src:   []temp.Temp{fresh, target.FP()},
		})
	}
	return out, stores
}
