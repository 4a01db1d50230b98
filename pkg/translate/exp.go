// Package translate implements Translate: it lowers the typed Tiger
// AST (pkg/absyn) into tree IR (pkg/ir), tracking lexical levels
// (pkg/frame) so that a free variable reference compiles into a
// chain of static-link dereferences.
//
// The three-way Ex/Nx/Cx split and the un-coercion functions follow
// pkg/asmgen/transform.go's genContext continuation style, adapted
// from "translate one RTL op, carrying enough context to pick the
// right Mach instruction" to "translate one Tiger expression,
// carrying enough context to pick the right tree-IR shape (value /
// effect / conditional-jump)".
package translate

import (
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// Exp is the result of translating a Tiger expression: a value
// (Ex), an effect with no useful value (Nx), or a conditional jump
// still waiting for its true/false targets (Cx).
type Exp interface {
	// UnEx coerces the translation to a value-producing Expr.
	UnEx(supply *temp.Supply) ir.Expr
	// UnNx coerces the translation to an effect-only Stmt.
	UnNx(supply *temp.Supply) ir.Stmt
	// UnCx coerces the translation to a jump awaiting targets.
	UnCx(supply *temp.Supply) CxFn
}

// CxFn fills in a Cx translation's branch targets, producing the
// Stmt that actually jumps.
type CxFn func(trueLabel, falseLabel temp.Label) ir.Stmt

type exEx struct{ e ir.Expr }
type exNx struct{ s ir.Stmt }
type exCx struct{ f CxFn }

func Ex(e ir.Expr) Exp { return exEx{e} }
func Nx(s ir.Stmt) Exp  { return exNx{s} }
func Cx(f CxFn) Exp     { return exCx{f} }

func (x exEx) UnEx(*temp.Supply) ir.Expr { return x.e }
func (x exEx) UnNx(*temp.Supply) ir.Stmt  { return ir.Exp{Expr: x.e} }
func (x exEx) UnCx(*temp.Supply) CxFn {
	// A value used as a condition compares it against zero, e.g. the
	// result of Tiger's `if f() then ...` where f returns int.
	return func(t, f temp.Label) ir.Stmt {
		return ir.Cjump{Op: ir.Ne, Left: x.e, Right: ir.Const{Value: 0}, True: t, False: f}
	}
}

func (x exNx) UnEx(*temp.Supply) ir.Expr {
	panic("translate: cannot use a statement (Nx) as a value")
}
func (x exNx) UnNx(*temp.Supply) ir.Stmt { return x.s }
func (x exNx) UnCx(*temp.Supply) CxFn {
	panic("translate: cannot use a statement (Nx) as a condition")
}

func (x exCx) UnEx(supply *temp.Supply) ir.Expr {
	r := supply.NewTemp()
	t := supply.NewLabel()
	f := supply.NewLabel()
	join := supply.NewLabel()
	stmt := ir.SeqStmts(
		ir.Move{Dst: ir.TempExpr{Temp: r}, Src: ir.Const{Value: 1}},
		x.f(t, f),
		ir.LabelStmt{Label: f},
		ir.Move{Dst: ir.TempExpr{Temp: r}, Src: ir.Const{Value: 0}},
		ir.Jump{Target: ir.Name{Label: join}, Labels: []temp.Label{join}},
		ir.LabelStmt{Label: t},
		ir.LabelStmt{Label: join},
	)
	return ir.Eseq{Stmt: stmt, Expr: ir.TempExpr{Temp: r}}
}
func (x exCx) UnNx(supply *temp.Supply) ir.Stmt {
	// Evaluated purely for side effect: jump to a single label
	// regardless of outcome, since nothing downstream inspects it.
	join := supply.NewLabel()
	return ir.SeqStmts(x.f(join, join), ir.LabelStmt{Label: join})
}
func (x exCx) UnCx(*temp.Supply) CxFn { return x.f }

// FrameExp returns the Exp for reading a frame.Access relative to a
// frame pointer already held in fp (the caller is responsible for
// having followed any necessary static links to reach the right
// frame's FP first; see Translator.simpleVar).
func FrameExp(access frame.Access, fp ir.Expr) Exp {
	switch a := access.(type) {
	case frame.InReg:
		return Ex(ir.TempExpr{Temp: a.Temp})
	case frame.InMem:
		return Ex(ir.Mem{Addr: ir.Binop{Op: ir.Plus, Left: fp, Right: ir.Const{Value: a.Offset}}})
	default:
		panic("translate: unknown frame.Access variant")
	}
}
