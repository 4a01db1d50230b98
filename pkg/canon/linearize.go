// Package canon implements Canonicalize: Linearize pulls every Eseq
// out of the tree and flattens Seq into a straight-line statement
// list; BasicBlocks partitions that list at labels and jumps;
// TraceSchedule reorders the blocks so every Cjump's false branch
// falls through, inserting jumps and negating conditions only when
// it must.
//
// Grounded end to end on pkg/linearize/linearize.go: this package
// mirrors its emitTerminator fall-through/negation logic (traces are
// started in the input block order, not in reverse postorder),
// adapted from an
// already-flat LTL CFG input to a tree-shaped IR that must first be
// flattened itself.
package canon

import (
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// Linearize rewrites stmt into an equivalent flat list of statements
// containing no Seq and no Eseq, in program order.
func Linearize(stmt ir.Stmt, supply *temp.Supply) []ir.Stmt {
	clean := doStmt(stmt, supply)
	var out []ir.Stmt
	flatten(clean, &out)
	return out
}

// flatten walks a Seq-only tree (as doStmt produces) into a slice,
// in-order, dropping no-op Exp{Const} markers used internally as
// empty placeholders.
func flatten(s ir.Stmt, out *[]ir.Stmt) {
	switch st := s.(type) {
	case ir.Seq:
		flatten(st.First, out)
		flatten(st.Second, out)
	case ir.Exp:
		if c, ok := st.Expr.(ir.Const); ok && c.Value == 0 {
			return
		}
		*out = append(*out, st)
	default:
		*out = append(*out, st)
	}
}

// seq builds a, then b, skipping either side if it's the canonical
// no-op (avoids accumulating a chain of empty Seq nodes).
func seq(a, b ir.Stmt) ir.Stmt {
	if isNop(a) {
		return b
	}
	if isNop(b) {
		return a
	}
	return ir.Seq{First: a, Second: b}
}

func isNop(s ir.Stmt) bool {
	e, ok := s.(ir.Exp)
	if !ok {
		return false
	}
	c, ok := e.Expr.(ir.Const)
	return ok && c.Value == 0
}

func nop() ir.Stmt { return ir.Exp{Expr: ir.Const{Value: 0}} }

// commute conservatively decides whether evaluating e can be moved
// ahead of the side effects in stmts without changing behavior. Kept
// deliberately narrow: a no-op statement commutes with anything, and
// a bare Const or Name commutes with anything, since neither reads a
// temp or memory a preceding statement could have changed. Anything
// else is assumed NOT to commute, even when a smarter alias analysis
// might allow it.
func commute(stmts ir.Stmt, e ir.Expr) bool {
	if isNop(stmts) {
		return true
	}
	switch e.(type) {
	case ir.Const, ir.Name:
		return true
	default:
		return false
	}
}

// doStmt reorders stmt's subexpressions so every side effect they
// contain happens before the statement itself, returning a
// Seq-of-side-effects-then-statement tree with no remaining Eseq.
func doStmt(s ir.Stmt, supply *temp.Supply) ir.Stmt {
	switch st := s.(type) {
	case ir.Seq:
		return seq(doStmt(st.First, supply), doStmt(st.Second, supply))

	case ir.Jump:
		return reorderStmt([]ir.Expr{st.Target}, supply, func(l []ir.Expr) ir.Stmt {
			return ir.Jump{Target: l[0], Labels: st.Labels}
		})

	case ir.Cjump:
		return reorderStmt([]ir.Expr{st.Left, st.Right}, supply, func(l []ir.Expr) ir.Stmt {
			return ir.Cjump{Op: st.Op, Left: l[0], Right: l[1], True: st.True, False: st.False}
		})

	case ir.Move:
		return doMove(st, supply)

	case ir.Exp:
		if call, ok := st.Expr.(ir.Call); ok {
			args := append([]ir.Expr{call.Fn}, call.Args...)
			return reorderStmt(args, supply, func(l []ir.Expr) ir.Stmt {
				return ir.Exp{Expr: ir.Call{Fn: l[0], Args: l[1:]}}
			})
		}
		return reorderStmt([]ir.Expr{st.Expr}, supply, func(l []ir.Expr) ir.Stmt {
			return ir.Exp{Expr: l[0]}
		})

	case ir.LabelStmt, nil:
		return s

	default:
		return reorderStmt(nil, supply, func([]ir.Expr) ir.Stmt { return s })
	}
}

func doMove(st ir.Move, supply *temp.Supply) ir.Stmt {
	if eseq, ok := st.Dst.(ir.Eseq); ok {
		// MOVE(ESEQ(s,e), b) ~= SEQ(s, MOVE(e,b)): the destination's
		// side effect must run before the move itself.
		return doStmt(ir.Seq{First: eseq.Stmt, Second: ir.Move{Dst: eseq.Expr, Src: st.Src}}, supply)
	}
	if tgt, ok := st.Dst.(ir.TempExpr); ok {
		if call, ok := st.Src.(ir.Call); ok {
			args := append([]ir.Expr{call.Fn}, call.Args...)
			return reorderStmt(args, supply, func(l []ir.Expr) ir.Stmt {
				return ir.Move{Dst: tgt, Src: ir.Call{Fn: l[0], Args: l[1:]}}
			})
		}
		return reorderStmt([]ir.Expr{st.Src}, supply, func(l []ir.Expr) ir.Stmt {
			return ir.Move{Dst: tgt, Src: l[0]}
		})
	}
	if mem, ok := st.Dst.(ir.Mem); ok {
		return reorderStmt([]ir.Expr{mem.Addr, st.Src}, supply, func(l []ir.Expr) ir.Stmt {
			return ir.Move{Dst: ir.Mem{Addr: l[0]}, Src: l[1]}
		})
	}
	panic("canon: Move destination must be a TempExpr or Mem")
}

// doExpr reorders e's subexpressions for the same reason doStmt
// does, returning the side-effecting prefix and an Eseq-free
// expression.
func doExpr(e ir.Expr, supply *temp.Supply) (ir.Stmt, ir.Expr) {
	switch ex := e.(type) {
	case ir.Const, ir.Name, ir.TempExpr:
		return nop(), ex

	case ir.Binop:
		return reorderExpr([]ir.Expr{ex.Left, ex.Right}, supply, func(l []ir.Expr) ir.Expr {
			return ir.Binop{Op: ex.Op, Left: l[0], Right: l[1]}
		})

	case ir.Mem:
		return reorderExpr([]ir.Expr{ex.Addr}, supply, func(l []ir.Expr) ir.Expr {
			return ir.Mem{Addr: l[0]}
		})

	case ir.Eseq:
		stmts := doStmt(ex.Stmt, supply)
		stmts2, e2 := doExpr(ex.Expr, supply)
		return seq(stmts, stmts2), e2

	case ir.Call:
		args := append([]ir.Expr{ex.Fn}, ex.Args...)
		return reorderExpr(args, supply, func(l []ir.Expr) ir.Expr {
			return ir.Call{Fn: l[0], Args: l[1:]}
		})

	default:
		return nop(), e
	}
}

// reorder evaluates exprs left to right, returning the accumulated
// side-effect prefix and a list of expressions each safe to read in
// that final order. A Call is always hoisted into its own temp first,
// so it only ever appears as MOVE(TEMP t, CALL...) or EXP(CALL...): a
// raw Call surviving inside a larger expression would let its side
// effects interleave unpredictably with the rest of the tree once
// flattened.
func reorder(exprs []ir.Expr, supply *temp.Supply) (ir.Stmt, []ir.Expr) {
	if len(exprs) == 0 {
		return nop(), nil
	}
	first := exprs[0]
	if call, ok := first.(ir.Call); ok {
		t := supply.NewTemp()
		hoisted := ir.Eseq{Stmt: ir.Move{Dst: ir.TempExpr{Temp: t}, Src: call}, Expr: ir.TempExpr{Temp: t}}
		rest := append([]ir.Expr{hoisted}, exprs[1:]...)
		return reorder(rest, supply)
	}
	stmts, e := doExpr(first, supply)
	restStmts, restExprs := reorder(exprs[1:], supply)
	if commute(restStmts, e) {
		return seq(stmts, restStmts), append([]ir.Expr{e}, restExprs...)
	}
	t := supply.NewTemp()
	combined := seq(stmts, seq(ir.Move{Dst: ir.TempExpr{Temp: t}, Src: e}, restStmts))
	return combined, append([]ir.Expr{ir.TempExpr{Temp: t}}, restExprs...)
}

func reorderExpr(exprs []ir.Expr, supply *temp.Supply, build func([]ir.Expr) ir.Expr) (ir.Stmt, ir.Expr) {
	stmts, l := reorder(exprs, supply)
	return stmts, build(l)
}

func reorderStmt(exprs []ir.Expr, supply *temp.Supply, build func([]ir.Expr) ir.Stmt) ir.Stmt {
	stmts, l := reorder(exprs, supply)
	return seq(stmts, build(l))
}
