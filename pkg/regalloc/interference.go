package regalloc

import "github.com/tiger-lang/tigerc/pkg/assem"
import "github.com/tiger-lang/tigerc/pkg/temp"

// InterferenceGraph records, for every temp appearing in a
// procedure, which other temps it may not share a register with
// (Edges) and which it is move-related to and so would like to share
// a register with (Preferences). LiveAcrossCalls flags every temp
// that must therefore end up in a callee-saved register (or be
// spilled), since a caller-saved register is not guaranteed to
// survive the call.
type InterferenceGraph struct {
	Nodes           RegSet
	Edges           map[temp.Temp]RegSet
	Preferences     map[temp.Temp]RegSet
	LiveAcrossCalls RegSet

	// SpillWeight sums, for every temp, one weighted count per
	// instruction that uses or defines it, each occurrence weighted by
	// 10^(loop nesting depth of that instruction) so a spill
	// candidate's cost reflects how often it would actually reload,
	// not just how many instructions happen to mention it.
	SpillWeight map[temp.Temp]int
}

func NewInterferenceGraph() *InterferenceGraph {
	return &InterferenceGraph{
		Nodes:           NewRegSet(),
		Edges:           make(map[temp.Temp]RegSet),
		Preferences:     make(map[temp.Temp]RegSet),
		LiveAcrossCalls: NewRegSet(),
		SpillWeight:     make(map[temp.Temp]int),
	}
}

func (g *InterferenceGraph) AddNode(t temp.Temp) {
	g.Nodes.Add(t)
	if g.Edges[t] == nil {
		g.Edges[t] = NewRegSet()
	}
	if g.Preferences[t] == nil {
		g.Preferences[t] = NewRegSet()
	}
}

func (g *InterferenceGraph) AddEdge(a, b temp.Temp) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.Edges[a].Add(b)
	g.Edges[b].Add(a)
}

func (g *InterferenceGraph) AddPreference(a, b temp.Temp) {
	if a == b {
		return
	}
	g.AddNode(a)
	g.AddNode(b)
	g.Preferences[a].Add(b)
	g.Preferences[b].Add(a)
}

func (g *InterferenceGraph) HasEdge(a, b temp.Temp) bool {
	if edges, ok := g.Edges[a]; ok {
		return edges.Contains(b)
	}
	return false
}

func (g *InterferenceGraph) Degree(t temp.Temp) int {
	if edges, ok := g.Edges[t]; ok {
		return len(edges)
	}
	return 0
}

func (g *InterferenceGraph) Neighbors(t temp.Temp) RegSet {
	if edges, ok := g.Edges[t]; ok {
		return edges.Copy()
	}
	return NewRegSet()
}

func (g *InterferenceGraph) MoveRelated(t temp.Temp) bool {
	return len(g.Preferences[t]) > 0
}

// BuildInterferenceGraph derives the graph from liveness info: a
// defined temp interferes with everything live out of its
// instruction, except the move's own source (so a pure copy remains
// coalescable), and every temp live out of a Call is marked
// LiveAcrossCalls.
func BuildInterferenceGraph(instrs []assem.Instruction, liveness *LivenessInfo) *InterferenceGraph {
	g := NewInterferenceGraph()
	depths := LoopDepths(instrs)

	for i, inst := range instrs {
		def := liveness.Def[i]
		liveOut := liveness.LiveOut[i]
		move, isMove := inst.(assem.Move)

		for d := range def {
			for l := range liveOut {
				if isMove && move.Src == l {
					continue
				}
				g.AddEdge(d, l)
			}
		}

		if oper, ok := inst.(assem.Oper); ok && oper.Call {
			// liveOut minus def excludes the call's own result (and
			// anything else it clobbers-and-redefines): a value that
			// springs into existence at the call never needed to
			// survive it.
			for l := range liveOut.Minus(def) {
				g.LiveAcrossCalls.Add(l)
			}
		}

		if isMove {
			g.AddPreference(move.Dst, move.Src)
		}
		weight := spillWeight(depths[i])
		for t := range def {
			g.AddNode(t)
			g.SpillWeight[t] += weight
		}
		for t := range liveness.Use[i] {
			g.AddNode(t)
			g.SpillWeight[t] += weight
		}
	}

	return g
}

// spillWeight turns a loop nesting depth into the multiplier its
// instruction's uses/defs count for: an access one loop deeper is
// assumed an order of magnitude more frequent, the same scaling
// Appel's Tiger book uses for spill cost estimates.
func spillWeight(depth int) int {
	w := 1
	for i := 0; i < depth; i++ {
		w *= 10
	}
	return w
}
