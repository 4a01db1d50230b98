// Allocator implements Iterated Register Coalescing: repeatedly
// simplify low-degree nodes, coalesce move-related pairs that are
// safe to merge, freeze moves that aren't, and spill when nothing
// else is left, until every node is either colored or marked for
// spilling.
//
// Grounded on pkg/regalloc/irc.go's Allocator (same worklist
// structure, same main loop, same conservative-coalescing and
// assign-colors logic), adapted from rtl.Reg/ltl.Loc precolored-param
// handling to temp.Temp nodes where a PHYSICAL register is just
// another node already present in the graph (every Oper/Move that
// mentions $a0-$a3, $v0, or a caller-saved clobber set puts that
// register's own temp.Temp directly into Dst/Src — see
// pkg/frame/mips's negative-id convention and temp.Temp.Precolored).
// Because of that, this version folds a separate "precoloredParams"
// map into one uniform rule: any node for which
// Precolored() is true is already colored, to itself, before
// buildWorklists ever runs, and coalescing a virtual node into a
// precolored one is checked with George's test (every neighbor of the
// non-precolored side either already interferes with the precolored
// side or has degree below K) rather than Briggs', since Briggs'
// bound on combined degree assumes neither side already has a fixed,
// non-negotiable color.
package regalloc

import (
	"sort"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

type movePair [2]temp.Temp

// Allocator runs IRC over one procedure's interference graph.
type Allocator struct {
	graph    *InterferenceGraph
	target   frame.Target
	K        int
	colors   map[temp.Temp]temp.Temp
	registers []temp.Temp

	simplifyWorklist []temp.Temp
	freezeWorklist   []temp.Temp
	spillWorklist    []temp.Temp
	coalescedNodes   RegSet
	coloredNodes     RegSet
	spilledNodes     RegSet
	selectStack      []temp.Temp

	alias map[temp.Temp]temp.Temp

	coalescedMoves   []movePair
	constrainedMoves []movePair
	frozenMoves      []movePair
	worklistMoves    []movePair
	activeMoves      []movePair
}

// AllocationResult is the outcome of running Allocate on one
// procedure's instructions.
type AllocationResult struct {
	// Color maps every temp that was successfully colored to the
	// physical register it was assigned, and every precolored temp to
	// itself.
	Color map[temp.Temp]temp.Temp
	// Spilled is the set of temps that could not be colored and must
	// be rewritten to memory by the spill pass.
	Spilled RegSet
}

// NewAllocator builds an allocator for graph over target's register
// file. Every node already marked Precolored() in the graph is
// treated as already colored to itself.
func NewAllocator(target frame.Target, graph *InterferenceGraph) *Allocator {
	regs := target.Registers()
	a := &Allocator{
		graph:          graph,
		target:         target,
		K:              len(regs),
		registers:      regs,
		colors:         make(map[temp.Temp]temp.Temp),
		coalescedNodes: NewRegSet(),
		coloredNodes:   NewRegSet(),
		spilledNodes:   NewRegSet(),
		alias:          make(map[temp.Temp]temp.Temp),
	}
	for n := range graph.Nodes {
		if n.Precolored() {
			a.colors[n] = n
			a.coloredNodes.Add(n)
		}
	}
	return a
}

// Allocate runs IRC's main loop to completion and returns the
// resulting coloring and spill set.
func (a *Allocator) Allocate() *AllocationResult {
	a.buildWorklists()

	for {
		switch {
		case len(a.simplifyWorklist) > 0:
			a.simplify()
		case len(a.worklistMoves) > 0:
			a.coalesce()
		case len(a.freezeWorklist) > 0:
			a.freeze()
		case len(a.spillWorklist) > 0:
			a.selectSpill()
		default:
			a.assignColors()
			return a.buildResult()
		}
	}
}

func (a *Allocator) buildWorklists() {
	nodes := sortedTemps(a.graph.Nodes)
	for _, r := range nodes {
		if r.Precolored() {
			continue
		}
		switch {
		case a.degree(r) >= a.K:
			a.spillWorklist = append(a.spillWorklist, r)
		case a.graph.MoveRelated(r):
			a.freezeWorklist = append(a.freezeWorklist, r)
		default:
			a.simplifyWorklist = append(a.simplifyWorklist, r)
		}
	}

	seen := make(map[movePair]bool)
	for _, r := range nodes {
		for _, p := range sortedTemps(a.graph.Preferences[r]) {
			m := movePair{r, p}
			if r > p {
				m = movePair{p, r}
			}
			if !seen[m] {
				seen[m] = true
				a.worklistMoves = append(a.worklistMoves, m)
			}
		}
	}
}

// sortedTemps returns set's members in ascending temp-id order, so
// every worklist this allocator builds from a RegSet (itself a Go map
// and so unordered by construction) visits nodes in a fixed order and
// every degree or spill-cost tie resolves to the lowest temp id,
// regardless of map iteration order.
func sortedTemps(set RegSet) []temp.Temp {
	out := set.Slice()
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (a *Allocator) degree(r temp.Temp) int {
	if r.Precolored() {
		return a.K // infinite degree, for decrementDegree/conservativeCoalesce purposes
	}
	deg := 0
	for n := range a.graph.Edges[r] {
		if !a.coalescedNodes.Contains(n) && !a.onSelectStack(n) {
			deg++
		}
	}
	return deg
}

// onSelectStack reports whether simplify has already removed r from
// the graph.
func (a *Allocator) onSelectStack(r temp.Temp) bool {
	for _, s := range a.selectStack {
		if s == r {
			return true
		}
	}
	return false
}

func (a *Allocator) simplify() {
	n := len(a.simplifyWorklist) - 1
	r := a.simplifyWorklist[n]
	a.simplifyWorklist = a.simplifyWorklist[:n]
	a.selectStack = append(a.selectStack, r)
	for neighbor := range a.graph.Edges[r] {
		a.decrementDegree(neighbor)
	}
}

func (a *Allocator) decrementDegree(r temp.Temp) {
	if r.Precolored() || a.coalescedNodes.Contains(r) || a.onSelectStack(r) {
		return
	}
	if a.degree(r) == a.K-1 {
		a.removeFromWorklist(r, &a.spillWorklist)
		if a.graph.MoveRelated(r) {
			a.freezeWorklist = append(a.freezeWorklist, r)
		} else {
			a.simplifyWorklist = append(a.simplifyWorklist, r)
		}
	}
}

func (a *Allocator) removeFromWorklist(r temp.Temp, list *[]temp.Temp) {
	for i, t := range *list {
		if t == r {
			*list = append((*list)[:i], (*list)[i+1:]...)
			return
		}
	}
}

func (a *Allocator) coalesce() {
	n := len(a.worklistMoves) - 1
	m := a.worklistMoves[n]
	a.worklistMoves = a.worklistMoves[:n]

	x, y := a.getAlias(m[0]), a.getAlias(m[1])
	// u ends up precolored if either side is, so every later check
	// only has to ask "is u precolored"; otherwise order by value so
	// repeated coalesces of the same pair always agree on which side
	// absorbs the other.
	u, v := x, y
	if y.Precolored() || (!x.Precolored() && x > y) {
		u, v = y, x
	}

	switch {
	case u == v:
		a.coalescedMoves = append(a.coalescedMoves, m)
		a.addToWorklist(u)
	case v.Precolored() || a.graph.HasEdge(u, v):
		a.constrainedMoves = append(a.constrainedMoves, m)
		a.addToWorklist(u)
		a.addToWorklist(v)
	case (u.Precolored() && a.george(u, v)) || (!u.Precolored() && a.briggs(u, v)):
		a.coalescedMoves = append(a.coalescedMoves, m)
		a.combine(u, v)
		a.addToWorklist(u)
	default:
		a.activeMoves = append(a.activeMoves, m)
	}
}

func (a *Allocator) getAlias(r temp.Temp) temp.Temp {
	if a.coalescedNodes.Contains(r) {
		return a.getAlias(a.alias[r])
	}
	return r
}

// briggs is the conservative coalescing test for two non-precolored
// nodes: safe if the merged node has fewer than K neighbors of degree
// >= K.
func (a *Allocator) briggs(u, v temp.Temp) bool {
	neighbors := a.mergedNeighbors(u, v)
	highDegree := 0
	for n := range neighbors {
		if a.degree(n) >= a.K {
			highDegree++
		}
	}
	return highDegree < a.K
}

// george is the test for coalescing non-precolored v into precolored
// u: safe if every neighbor of v already interferes with u or has
// degree below K (so merging can never push it over budget).
func (a *Allocator) george(u, v temp.Temp) bool {
	for n := range a.graph.Edges[v] {
		if a.coalescedNodes.Contains(n) {
			continue
		}
		if a.degree(n) < a.K || n.Precolored() || a.graph.HasEdge(n, u) {
			continue
		}
		return false
	}
	return true
}

func (a *Allocator) mergedNeighbors(u, v temp.Temp) RegSet {
	neighbors := NewRegSet()
	for n := range a.graph.Edges[u] {
		if !a.coalescedNodes.Contains(n) {
			neighbors.Add(n)
		}
	}
	for n := range a.graph.Edges[v] {
		if !a.coalescedNodes.Contains(n) {
			neighbors.Add(n)
		}
	}
	return neighbors
}

func (a *Allocator) combine(u, v temp.Temp) {
	a.removeFromWorklist(v, &a.freezeWorklist)
	a.removeFromWorklist(v, &a.spillWorklist)
	a.coalescedNodes.Add(v)
	a.alias[v] = u

	if a.graph.LiveAcrossCalls.Contains(v) {
		a.graph.LiveAcrossCalls.Add(u)
	}

	for n := range a.graph.Edges[v] {
		if !a.coalescedNodes.Contains(n) && n != u {
			a.graph.AddEdge(u, n)
			a.decrementDegree(n)
		}
	}
	for n := range a.graph.Preferences[v] {
		if n != u {
			a.graph.AddPreference(u, n)
		}
	}

	if !u.Precolored() && a.degree(u) >= a.K {
		a.removeFromWorklist(u, &a.freezeWorklist)
		a.spillWorklist = append(a.spillWorklist, u)
	}
}

func (a *Allocator) addToWorklist(r temp.Temp) {
	if r.Precolored() || a.coalescedNodes.Contains(r) {
		return
	}
	if a.degree(r) < a.K && !a.graph.MoveRelated(r) {
		a.removeFromWorklist(r, &a.freezeWorklist)
		a.simplifyWorklist = append(a.simplifyWorklist, r)
	}
}

func (a *Allocator) freeze() {
	n := len(a.freezeWorklist) - 1
	r := a.freezeWorklist[n]
	a.freezeWorklist = a.freezeWorklist[:n]
	a.simplifyWorklist = append(a.simplifyWorklist, r)
	a.freezeMovesFor(r)
}

func (a *Allocator) freezeMovesFor(r temp.Temp) {
	var remaining []movePair
	for _, m := range a.activeMoves {
		if m[0] == r || m[1] == r {
			a.frozenMoves = append(a.frozenMoves, m)
			other := m[0]
			if m[0] == r {
				other = m[1]
			}
			a.addToWorklist(other)
		} else {
			remaining = append(remaining, m)
		}
	}
	a.activeMoves = remaining
}

// selectSpill picks the spill worklist's best candidate — the one
// whose degree is highest relative to how much it is actually used
// (degree ÷ weighted use/def count, so a node that merely collides
// with many others but is rarely touched is preferred over one that's
// read and written constantly inside a loop) — and lets simplify
// proceed past it; it is only actually spilled later if assignColors
// can't find it a color. Ties resolve to the lowest temp id.
func (a *Allocator) selectSpill() {
	bestIdx := -1
	var bestCost float64
	var pick temp.Temp
	for i, r := range a.spillWorklist {
		cost := a.spillCost(r)
		if bestIdx < 0 || cost > bestCost || (cost == bestCost && r < pick) {
			bestCost, pick, bestIdx = cost, r, i
		}
	}
	if bestIdx < 0 {
		return
	}
	a.spillWorklist = append(a.spillWorklist[:bestIdx], a.spillWorklist[bestIdx+1:]...)
	a.simplifyWorklist = append(a.simplifyWorklist, pick)
	a.freezeMovesFor(pick)
}

// spillCost is r's degree ÷ (uses+defs), weighted by loop nesting.
func (a *Allocator) spillCost(r temp.Temp) float64 {
	weight := a.graph.SpillWeight[r]
	if weight == 0 {
		weight = 1
	}
	return float64(a.degree(r)) / float64(weight)
}

func (a *Allocator) assignColors() {
	for len(a.selectStack) > 0 {
		n := len(a.selectStack) - 1
		r := a.selectStack[n]
		a.selectStack = a.selectStack[:n]

		used := NewRegSet()
		for neighbor := range a.graph.Edges[r] {
			alias := a.getAlias(neighbor)
			if c, ok := a.colors[alias]; ok {
				used.Add(c)
			}
		}

		start := 0
		if a.graph.LiveAcrossCalls.Contains(r) {
			start = a.target.FirstCalleeSaveColor()
		}

		assigned := false
		for i := start; i < len(a.registers); i++ {
			if !used.Contains(a.registers[i]) {
				a.colors[r] = a.registers[i]
				a.coloredNodes.Add(r)
				assigned = true
				break
			}
		}
		if !assigned {
			a.spilledNodes.Add(r)
		}
	}

	for r := range a.coalescedNodes {
		alias := a.getAlias(r)
		if c, ok := a.colors[alias]; ok {
			a.colors[r] = c
			a.coloredNodes.Add(r)
		} else if a.spilledNodes.Contains(alias) {
			a.spilledNodes.Add(r)
		}
	}
}

func (a *Allocator) buildResult() *AllocationResult {
	result := &AllocationResult{
		Color:   make(map[temp.Temp]temp.Temp),
		Spilled: a.spilledNodes.Copy(),
	}
	for r, c := range a.colors {
		if !a.spilledNodes.Contains(r) {
			result.Color[r] = c
		}
	}
	return result
}

// AllocateInstrs runs liveness analysis, interference-graph
// construction and IRC over instrs once. A non-empty Spilled set in
// the result means instrs still needs spill code inserted (see
// RewriteSpills) and allocation re-run on the rewritten list; a
// driver is expected to loop until Spilled comes back empty.
func AllocateInstrs(target frame.Target, instrs []assem.Instruction) (*AllocationResult, *LivenessInfo, *InterferenceGraph) {
	liveness := AnalyzeLiveness(instrs)
	graph := BuildInterferenceGraph(instrs, liveness)
	result := NewAllocator(target, graph).Allocate()
	return result, liveness, graph
}
