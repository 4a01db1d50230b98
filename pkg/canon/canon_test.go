package canon

import (
	"testing"

	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

func TestLinearizeFlattensSeq(t *testing.T) {
	a := ir.Exp{Expr: ir.Const{Value: 1}}
	b := ir.Exp{Expr: ir.Const{Value: 2}}
	stmt := ir.Seq{First: a, Second: ir.Seq{First: b, Second: a}}

	out := Linearize(stmt, temp.NewSupply())
	if len(out) != 3 {
		t.Fatalf("Linearize produced %d statements, want 3 (no Seq survives flattening): %+v", len(out), out)
	}
	for _, s := range out {
		if _, ok := s.(ir.Seq); ok {
			t.Errorf("Linearize left a Seq in its output: %+v", s)
		}
	}
}

func TestLinearizeHoistsEseqOutOfBinop(t *testing.T) {
	supply := temp.NewSupply()
	sideEffect := ir.Exp{Expr: ir.Const{Value: 99}}
	binop := ir.Binop{
		Op:   ir.Plus,
		Left: ir.Eseq{Stmt: sideEffect, Expr: ir.Const{Value: 1}},
		Right: ir.Const{Value: 2},
	}
	stmt := ir.Exp{Expr: binop}

	out := Linearize(stmt, supply)
	for _, s := range out {
		walkExprs(s, func(e ir.Expr) {
			if _, ok := e.(ir.Eseq); ok {
				t.Errorf("Linearize left an Eseq in its output: %+v", out)
			}
		})
	}
	if len(out) < 2 {
		t.Fatalf("expected the hoisted side effect to appear as its own statement, got %+v", out)
	}
}

func TestLinearizeHoistsCallIntoItsOwnMove(t *testing.T) {
	supply := temp.NewSupply()
	call := ir.Call{Fn: ir.Name{Label: temp.NamedLabel("f")}}
	stmt := ir.Exp{Expr: ir.Binop{Op: ir.Plus, Left: call, Right: ir.Const{Value: 1}}}

	out := Linearize(stmt, supply)
	foundMoveFromCall := false
	for _, s := range out {
		if mv, ok := s.(ir.Move); ok {
			if _, ok := mv.Src.(ir.Call); ok {
				foundMoveFromCall = true
			}
		}
		walkExprs(s, func(e ir.Expr) {
			if binop, ok := e.(ir.Binop); ok {
				if _, ok := binop.Left.(ir.Call); ok {
					t.Errorf("a raw Call survived inside a Binop: %+v", binop)
				}
			}
		})
	}
	if !foundMoveFromCall {
		t.Errorf("expected the Call to be hoisted into its own MOVE(TEMP, CALL), got %+v", out)
	}
}

// walkExprs visits every direct Expr field of s's first level, enough
// for the shallow Eseq/Call-hoisting checks above.
func walkExprs(s ir.Stmt, visit func(ir.Expr)) {
	switch st := s.(type) {
	case ir.Exp:
		visit(st.Expr)
		if b, ok := st.Expr.(ir.Binop); ok {
			visit(b.Left)
			visit(b.Right)
		}
	case ir.Move:
		visit(st.Src)
		visit(st.Dst)
	}
}

func TestBasicBlocksEachBlockStartsWithLabelEndsWithJump(t *testing.T) {
	supply := temp.NewSupply()
	l1 := supply.NewLabel()
	l2 := supply.NewLabel()
	stmts := []ir.Stmt{
		ir.LabelStmt{Label: l1},
		ir.Exp{Expr: ir.Const{Value: 1}},
		ir.LabelStmt{Label: l2},
		ir.Exp{Expr: ir.Const{Value: 2}},
	}
	blocks, done := BasicBlocks(stmts, supply)
	if len(blocks) != 2 {
		t.Fatalf("expected 2 blocks (one per label), got %d: %+v", len(blocks), blocks)
	}
	for _, b := range blocks {
		if _, ok := b[0].(ir.LabelStmt); !ok {
			t.Errorf("block does not start with a label: %+v", b)
		}
		switch b[len(b)-1].(type) {
		case ir.Jump, ir.Cjump:
		default:
			t.Errorf("block does not end with a Jump/Cjump: %+v", b)
		}
	}
	if blocks[1][len(blocks[1])-1].(ir.Jump).Labels[0] != done {
		t.Errorf("last block should fall through to done, got %+v", blocks[1][len(blocks[1])-1])
	}
}

func TestBasicBlocksInsertsImplicitLabelWhenMissing(t *testing.T) {
	supply := temp.NewSupply()
	stmts := []ir.Stmt{ir.Exp{Expr: ir.Const{Value: 1}}}
	blocks, _ := BasicBlocks(stmts, supply)
	if len(blocks) != 1 {
		t.Fatalf("expected exactly one block, got %d", len(blocks))
	}
	if _, ok := blocks[0][0].(ir.LabelStmt); !ok {
		t.Errorf("expected a synthesized leading label, got %+v", blocks[0])
	}
}

func TestTraceScheduleMakesFalseBranchFallThrough(t *testing.T) {
	supply := temp.NewSupply()
	entry := supply.NewNamed("entry")
	trueL := supply.NewNamed("true")
	falseL := supply.NewNamed("false")
	done := supply.NewNamed("done")

	// entry's false successor (falseL) appears next in block order, so
	// TraceSchedule should keep the comparison as-is and fall through
	// directly into it, visiting trueL only afterward.
	blocks := [][]ir.Stmt{
		{
			ir.LabelStmt{Label: entry},
			ir.Cjump{Op: ir.Lt, Left: ir.Const{Value: 0}, Right: ir.Const{Value: 1}, True: trueL, False: falseL},
		},
		{
			ir.LabelStmt{Label: falseL},
			ir.Jump{Target: ir.Name{Label: done}, Labels: []temp.Label{done}},
		},
		{
			ir.LabelStmt{Label: trueL},
			ir.Jump{Target: ir.Name{Label: done}, Labels: []temp.Label{done}},
		},
	}
	out := TraceSchedule(blocks, done, supply)

	for i, s := range out {
		if cj, ok := s.(ir.Cjump); ok {
			if i+1 >= len(out) {
				t.Fatalf("Cjump is the last statement, has no successor to check: %+v", out)
			}
			next, ok := out[i+1].(ir.LabelStmt)
			if !ok || next.Label != cj.False {
				t.Errorf("Cjump's False label %v does not immediately follow in the schedule: next stmt %+v", cj.False, out[i+1])
			}
		}
	}
}

func TestDropRedundantJumpsRemovesJumpToImmediatelyFollowingLabel(t *testing.T) {
	l := temp.NewSupply().NewNamed("next")
	stmts := []ir.Stmt{
		ir.Exp{Expr: ir.Const{Value: 1}},
		ir.Jump{Target: ir.Name{Label: l}, Labels: []temp.Label{l}},
		ir.LabelStmt{Label: l},
	}
	out := dropRedundantJumps(stmts)
	if len(out) != 2 {
		t.Fatalf("expected the redundant jump to be dropped, got %+v", out)
	}
	if _, ok := out[1].(ir.LabelStmt); !ok {
		t.Errorf("expected the label to remain, got %+v", out)
	}
}
