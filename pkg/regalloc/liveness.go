// Package regalloc implements Register Allocation: liveness
// analysis, interference-graph construction, Iterated Register
// Coalescing, and spill-code rewriting, all operating over a flat
// []assem.Instruction list (the shape Codegen produces) rather than
// a CFG of basic blocks.
//
// Grounded throughout on pkg/regalloc/liveness.go (in the companion
// jpshackelford-ralph-cc-go tree — the file raymyers-ralph-cc-go's
// irc.go references but the retrieved tree is missing) and
// pkg/regalloc/interference.go / irc.go, adapted from CFG node maps
// (map[rtl.Node]rtl.Instruction plus Instruction.Successors()) to an
// instruction index plus an explicit jump-target list: successors of
// instruction i are its Jumps() resolved through a label->index
// table when non-empty, or simply i+1 (fall-through) otherwise. A
// Cjump's assem.Oper therefore always lists BOTH of its targets
// (true and false) even though only the true target appears in its
// assembly text, since the false "fall-through" edge is still a real
// successor liveness must see.
package regalloc

import "github.com/tiger-lang/tigerc/pkg/assem"
import "github.com/tiger-lang/tigerc/pkg/temp"

// RegSet is a set of temps.
type RegSet map[temp.Temp]bool

func NewRegSet() RegSet { return make(RegSet) }

func (s RegSet) Add(t temp.Temp) { s[t] = true }

func (s RegSet) Contains(t temp.Temp) bool { return s[t] }

func (s RegSet) Union(other RegSet) RegSet {
	result := NewRegSet()
	for t := range s {
		result[t] = true
	}
	for t := range other {
		result[t] = true
	}
	return result
}

func (s RegSet) Minus(other RegSet) RegSet {
	result := NewRegSet()
	for t := range s {
		if !other[t] {
			result[t] = true
		}
	}
	return result
}

func (s RegSet) Equal(other RegSet) bool {
	if len(s) != len(other) {
		return false
	}
	for t := range s {
		if !other[t] {
			return false
		}
	}
	return true
}

func (s RegSet) Copy() RegSet {
	result := NewRegSet()
	for t := range s {
		result[t] = true
	}
	return result
}

func (s RegSet) Slice() []temp.Temp {
	result := make([]temp.Temp, 0, len(s))
	for t := range s {
		result = append(result, t)
	}
	return result
}

// LivenessInfo holds, per instruction index, its def/use sets and
// the fixed-point live-in/live-out sets.
type LivenessInfo struct {
	LiveIn  []RegSet
	LiveOut []RegSet
	Def     []RegSet
	Use     []RegSet
}

// ComputeDefUse derives def/use sets directly from each
// instruction's Dsts()/Srcs(), since assem.Instruction already
// exposes them uniformly across its three shapes.
func ComputeDefUse(instrs []assem.Instruction) (def, use []RegSet) {
	def = make([]RegSet, len(instrs))
	use = make([]RegSet, len(instrs))
	for i, inst := range instrs {
		d := NewRegSet()
		for _, t := range inst.Dsts() {
			d.Add(t)
		}
		u := NewRegSet()
		for _, t := range inst.Srcs() {
			u.Add(t)
		}
		def[i], use[i] = d, u
	}
	return def, use
}

// labelIndex maps every LabelInst's label to its instruction index.
func labelIndex(instrs []assem.Instruction) map[temp.Label]int {
	idx := make(map[temp.Label]int, len(instrs))
	for i, inst := range instrs {
		if l, ok := inst.(assem.LabelInst); ok {
			idx[l.Lbl] = i
		}
	}
	return idx
}

// successors returns the instruction indices control may flow to
// immediately after instruction i.
func successors(instrs []assem.Instruction, idx map[temp.Label]int, i int) []int {
	jumps := instrs[i].Jumps()
	if len(jumps) == 0 {
		if i+1 < len(instrs) {
			return []int{i + 1}
		}
		return nil
	}
	succs := make([]int, 0, len(jumps))
	for _, l := range jumps {
		if target, ok := idx[l]; ok {
			succs = append(succs, target)
		}
	}
	return succs
}

// LoopDepths estimates, for every instruction index, how many
// enclosing back-edges (a jump whose target is at or before the jump
// itself) contain it. There is no surviving loop structure once
// Codegen has flattened everything to a label/jump instruction list,
// so this reconstructs nesting the same way a peephole pass would:
// any backward jump's span counts as one loop, and spans that nest
// inside one another add up.
func LoopDepths(instrs []assem.Instruction) []int {
	idx := labelIndex(instrs)
	depths := make([]int, len(instrs))
	for i, inst := range instrs {
		for _, l := range inst.Jumps() {
			target, ok := idx[l]
			if !ok || target > i {
				continue
			}
			for j := target; j <= i; j++ {
				depths[j]++
			}
		}
	}
	return depths
}

// AnalyzeLiveness computes liveness by fixed-point iteration over
// live_in = use ∪ (live_out − def), live_out = ⋃ live_in(successors).
func AnalyzeLiveness(instrs []assem.Instruction) *LivenessInfo {
	def, use := ComputeDefUse(instrs)
	idx := labelIndex(instrs)

	liveIn := make([]RegSet, len(instrs))
	liveOut := make([]RegSet, len(instrs))
	for i := range instrs {
		liveIn[i] = NewRegSet()
		liveOut[i] = NewRegSet()
	}

	changed := true
	for changed {
		changed = false
		for i := len(instrs) - 1; i >= 0; i-- {
			newLiveOut := NewRegSet()
			for _, succ := range successors(instrs, idx, i) {
				for t := range liveIn[succ] {
					newLiveOut[t] = true
				}
			}
			newLiveIn := use[i].Union(newLiveOut.Minus(def[i]))

			if !liveIn[i].Equal(newLiveIn) || !liveOut[i].Equal(newLiveOut) {
				changed = true
				liveIn[i] = newLiveIn
				liveOut[i] = newLiveOut
			}
		}
	}

	return &LivenessInfo{LiveIn: liveIn, LiveOut: liveOut, Def: def, Use: use}
}
