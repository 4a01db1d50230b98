package canon

import (
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// BasicBlocks partitions a linearized statement list into basic
// blocks: each block begins with a Label and ends with a Jump or
// Cjump. A block missing a leading label gets one; a block missing a
// trailing jump is given an explicit one to the next block (or, for
// the very last block, to done), so TraceSchedule never has to guess
// at implicit fall-through again.
func BasicBlocks(stmts []ir.Stmt, supply *temp.Supply) (blocks [][]ir.Stmt, done temp.Label) {
	done = supply.NewNamed("done")
	var cur []ir.Stmt
	i := 0

	startBlock := func() {
		if i < len(stmts) {
			if lbl, ok := stmts[i].(ir.LabelStmt); ok {
				cur = append(cur, lbl)
				i++
				return
			}
		}
		cur = append(cur, ir.LabelStmt{Label: supply.NewLabel()})
	}

	endsBlock := func(s ir.Stmt) bool {
		switch s.(type) {
		case ir.Jump, ir.Cjump:
			return true
		default:
			return false
		}
	}

	for i < len(stmts) {
		cur = nil
		startBlock()
		for i < len(stmts) {
			s := stmts[i]
			if lbl, ok := s.(ir.LabelStmt); ok && len(cur) > 0 {
				// A label starting a new block without an explicit
				// predecessor jump: close the current block with a
				// fall-through jump to it first.
				cur = append(cur, ir.Jump{Target: ir.Name{Label: lbl.Label}, Labels: []temp.Label{lbl.Label}})
				break
			}
			cur = append(cur, s)
			i++
			if endsBlock(s) {
				break
			}
		}
		if len(cur) > 0 {
			if !endsBlock(cur[len(cur)-1]) {
				cur = append(cur, ir.Jump{Target: ir.Name{Label: done}, Labels: []temp.Label{done}})
			}
			blocks = append(blocks, cur)
		}
	}
	return blocks, done
}
