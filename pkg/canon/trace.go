package canon

import "github.com/tiger-lang/tigerc/pkg/ir"
import "github.com/tiger-lang/tigerc/pkg/temp"

// TraceSchedule orders BasicBlocks' output into traces that make a
// Cjump's false branch the immediately following block wherever
// possible, negating the comparison and swapping targets when only
// the true branch is available, and inserting a small trampoline
// block when neither successor can follow directly. Grounded on
// pkg/linearize/linearize.go's emitTerminator, which resolves the
// same three cases (successor falls through / only the other
// successor can fall through / neither can) for an already-flat LTL
// block list; here the blocks still need assembling into traces
// first since Canonicalize's input was a tree, not a CFG.
func TraceSchedule(blocks [][]ir.Stmt, done temp.Label, supply *temp.Supply) []ir.Stmt {
	byLabel := make(map[temp.Label][]ir.Stmt, len(blocks))
	order := make([]temp.Label, 0, len(blocks))
	for _, b := range blocks {
		lbl := b[0].(ir.LabelStmt).Label
		byLabel[lbl] = b
		order = append(order, lbl)
	}
	marked := make(map[temp.Label]bool, len(blocks))

	var out []ir.Stmt
	for _, start := range order {
		if marked[start] {
			continue
		}
		traceFrom(start, byLabel, marked, &out, supply)
	}
	out = append(out, ir.LabelStmt{Label: done})
	return dropRedundantJumps(out)
}

// traceFrom emits blocks following successors while they remain
// unmarked, mutating out in place.
func traceFrom(start temp.Label, byLabel map[temp.Label][]ir.Stmt, marked map[temp.Label]bool, out *[]ir.Stmt, supply *temp.Supply) {
	lbl := start
	for {
		block, ok := byLabel[lbl]
		if !ok || marked[lbl] {
			return
		}
		marked[lbl] = true
		body := block[:len(block)-1]
		last := block[len(block)-1]
		*out = append(*out, body...)

		switch term := last.(type) {
		case ir.Jump:
			*out = append(*out, term)
			if len(term.Labels) == 1 && !marked[term.Labels[0]] {
				lbl = term.Labels[0]
				continue
			}
			return

		case ir.Cjump:
			switch {
			case !marked[term.False]:
				*out = append(*out, term)
				lbl = term.False
				continue
			case !marked[term.True]:
				*out = append(*out, ir.Cjump{Op: term.Op.Negate(), Left: term.Left, Right: term.Right, True: term.False, False: term.True})
				lbl = term.True
				continue
			default:
				// Neither successor is free: the trace ends here, but
				// munchCjump only ever emits the true-branch text and
				// falls through into whatever follows, so the false
				// target still needs an explicit landing pad — a fresh
				// label immediately followed by a jump to it.
				trampoline := supply.NewLabel()
				*out = append(*out, ir.Cjump{Op: term.Op, Left: term.Left, Right: term.Right, True: term.True, False: trampoline})
				*out = append(*out, ir.LabelStmt{Label: trampoline})
				*out = append(*out, ir.Jump{Target: ir.Name{Label: term.False}, Labels: []temp.Label{term.False}})
				return
			}

		default:
			*out = append(*out, last)
			return
		}
	}
}

// dropRedundantJumps removes a trailing Jump whose single target is
// the label immediately following it in the final schedule: trace
// scheduling already arranges that adjacency whenever it safely can,
// so the jump is dead weight Codegen would otherwise have to emit
// and a peephole pass would just delete again.
func dropRedundantJumps(stmts []ir.Stmt) []ir.Stmt {
	out := make([]ir.Stmt, 0, len(stmts))
	for i, s := range stmts {
		if j, ok := s.(ir.Jump); ok && len(j.Labels) == 1 && i+1 < len(stmts) {
			if lbl, ok := stmts[i+1].(ir.LabelStmt); ok && lbl.Label == j.Labels[0] {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}
