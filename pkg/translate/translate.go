package translate

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/absyn"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// Translator carries everything Translate needs across one whole
// program: the target machine description, the level-id counter
// (frame.LevelCounter, shared for the whole compilation so Level.Equal
// stays meaningful program-wide), and the fragment list every nested
// FunDec appends its compiled Proc to.
type Translator struct {
	target     frame.Target
	counter    *frame.LevelCounter
	fragments  []ir.Fragment
	doneLabels map[string]temp.Label
	nextLabel  int
}

// NewTranslator creates a Translator for a single compilation unit.
func NewTranslator(target frame.Target) *Translator {
	return &Translator{target: target, counter: frame.NewLevelCounter(), doneLabels: map[string]temp.Label{}, nextLabel: 1}
}

// newSupply mints a fresh per-procedure Supply whose temp counter
// starts at 1 (temps never need to stay unique beyond the one
// procedure they're allocated within) but whose label counter
// continues from every label minted by any procedure translated so
// far: labels become jump targets in the final concatenated assembly
// output, so two procedures' internal "L3" would otherwise collide.
func (tr *Translator) newSupply() *temp.Supply {
	return temp.NewSupplyFrom(1, tr.nextLabel)
}

// commitSupply records supply's label high-water mark as the floor
// for every subsequently created Supply.
func (tr *Translator) commitSupply(supply *temp.Supply) {
	_, tr.nextLabel = supply.HighWaterMarks()
}

// Fragments returns every Proc/StringFrag produced so far.
func (tr *Translator) Fragments() []ir.Fragment { return tr.fragments }

// varBinding binds a variable name to the level it was declared at
// and its frame.Access — semantic analysis would normally hand
// Translate pre-resolved (depth, access) pairs directly; since that
// front end is out of scope here, env plays translator-side stand-in
// for that environment.
type varBinding struct {
	level  *frame.Level
	access frame.Access
}

// funBinding is just the call target's label: translateCall never
// dereferences the callee's Level, only the static-link depth the
// semantic analyzer already recorded on the call site itself.
type funBinding struct {
	label temp.Label
}

type env struct {
	vars   map[string]varBinding
	funs   map[string]funBinding
	parent *env
}

func newEnv(parent *env) *env {
	return &env{vars: map[string]varBinding{}, funs: map[string]funBinding{}, parent: parent}
}

func (e *env) lookupVar(name string) (varBinding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.vars[name]; ok {
			return b, true
		}
	}
	return varBinding{}, false
}

func (e *env) lookupFun(name string) (funBinding, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if b, ok := cur.funs[name]; ok {
			return b, true
		}
	}
	return funBinding{}, false
}

// TranslateProgram translates the whole-program expression as the
// body of the distinguished outermost procedure ("main"), returning
// the complete fragment list (main's Proc plus every nested FunDec's
// Proc and every string literal's StringFrag).
func (tr *Translator) TranslateProgram(root absyn.Expr) []ir.Fragment {
	supply := tr.newSupply()
	outer := frame.Outermost(tr.target, tr.counter, supply)
	e := newEnv(nil)
	body := tr.translateExpr(e, outer, supply, root)
	tr.emitProc(outer, supply, body.UnEx(supply))
	tr.commitSupply(supply)
	return tr.fragments
}

// emitProc wraps a translated function body with ProcEntryExit1 (the
// view shift that spills escaping formals into their frame slots)
// and appends the resulting Proc fragment.
func (tr *Translator) emitProc(level *frame.Level, supply *temp.Supply, bodyVal ir.Expr) {
	f := level.Frame()
	moveResult := ir.Move{Dst: ir.TempExpr{Temp: tr.target.RV()}, Src: bodyVal}
	wrapped := tr.ProcEntryExit1(level, supply, moveResult)
	nextTemp, _ := supply.HighWaterMarks()
	tr.fragments = append(tr.fragments, ir.Proc{Body: wrapped, Frame: f, NextTemp: nextTemp})
}

// ProcEntryExit1 is the "view shift": prepend, to a translated
// function body, the moves that copy every formal out of its
// incoming argument register and into the access Translate already
// assigned it — a frame slot for an escaping formal, a fresh virtual
// temp otherwise. Either way the access is a distinct identity from
// the physical argument register it arrives in, so skipping this for
// non-escaping formals would leave their Access temp permanently
// undefined. Grounded on pkg/regalloc/transform.go's entry-block
// parameter-copy insertion, generalized from "move into the
// allocator's chosen home" to "move into the access Translate (not
// the allocator) chose".
func (tr *Translator) ProcEntryExit1(level *frame.Level, supply *temp.Supply, body ir.Stmt) ir.Stmt {
	f := level.Frame()
	argRegs := tr.target.ArgRegs()
	var moves []ir.Stmt
	for i, access := range f.Formals() {
		if i >= len(argRegs) {
			break // formals beyond the register file arrive on the stack already
		}
		switch a := access.(type) {
		case frame.InMem:
			dst := ir.Mem{Addr: ir.Binop{Op: ir.Plus, Left: ir.TempExpr{Temp: tr.target.FP()}, Right: ir.Const{Value: a.Offset}}}
			moves = append(moves, ir.Move{Dst: dst, Src: ir.TempExpr{Temp: argRegs[i]}})
		case frame.InReg:
			// The access is a fresh virtual temp distinct from the
			// physical argument register it arrives in, so it must be
			// copied out before the allocator is free to reuse a0-a3
			// for anything else in the body.
			if a.Temp != argRegs[i] {
				moves = append(moves, ir.Move{Dst: ir.TempExpr{Temp: a.Temp}, Src: ir.TempExpr{Temp: argRegs[i]}})
			}
		}
	}
	stmts := append(moves, body)
	return ir.SeqStmts(stmts...)
}

// simpleVar resolves a SimpleVar to the Exp reading it: it walks
// Depth static links from the current level up to the declaring
// level, then reads the Access relative to that frame's FP.
func (tr *Translator) simpleVar(useLevel *frame.Level, b varBinding) Exp {
	fp := ir.Expr(ir.TempExpr{Temp: tr.target.FP()})
	cur := useLevel
	for !cur.Equal(b.level) {
		fp = ir.Mem{Addr: tr.staticLinkAddr(cur, fp)}
		cur = cur.Parent()
		if cur == nil {
			panic("translate: variable's declaring level is not an ancestor of its use")
		}
	}
	return FrameExp(b.access, fp)
}

// staticLinkAddr computes the address of level's static-link slot
// given fp, the already-computed frame pointer for level.
func (tr *Translator) staticLinkAddr(level *frame.Level, fp ir.Expr) ir.Expr {
	link := level.StaticLink()
	mem, ok := link.(frame.InMem)
	if !ok {
		panic("translate: static link must live in memory")
	}
	return ir.Binop{Op: ir.Plus, Left: fp, Right: ir.Const{Value: mem.Offset}}
}

func (tr *Translator) translateVar(e *env, level *frame.Level, supply *temp.Supply, v absyn.Var) Exp {
	switch vv := v.(type) {
	case absyn.SimpleVar:
		b, ok := e.lookupVar(vv.Name)
		if !ok {
			panic(fmt.Sprintf("translate: undefined variable %q", vv.Name))
		}
		return tr.simpleVar(level, b)
	case absyn.FieldVar:
		base := tr.translateVar(e, level, supply, vv.Base).UnEx(supply)
		offset := int64(vv.Slot) * tr.target.WordSize()
		return Ex(ir.Mem{Addr: ir.Binop{Op: ir.Plus, Left: base, Right: ir.Const{Value: offset}}})
	case absyn.SubscriptVar:
		base := tr.translateVar(e, level, supply, vv.Base).UnEx(supply)
		idx := tr.translateExpr(e, level, supply, vv.Index).UnEx(supply)
		scaled := ir.Binop{Op: ir.Mul, Left: idx, Right: ir.Const{Value: tr.target.WordSize()}}
		return Ex(ir.Mem{Addr: ir.Binop{Op: ir.Plus, Left: base, Right: scaled}})
	default:
		panic("translate: unknown absyn.Var variant")
	}
}

func (tr *Translator) translateExpr(e *env, level *frame.Level, supply *temp.Supply, expr absyn.Expr) Exp {
	switch ex := expr.(type) {
	case absyn.IntExpr:
		return Ex(ir.Const{Value: ex.Value})

	case absyn.StringExpr:
		label := supply.NewLabel()
		tr.fragments = append(tr.fragments, ir.StringFrag{Label: label, Value: ex.Value})
		return Ex(ir.Name{Label: label})

	case absyn.NilExpr:
		return Ex(ir.Const{Value: 0})

	case absyn.VarExpr:
		return tr.translateVar(e, level, supply, ex.Var)

	case absyn.OpExpr:
		return tr.translateOp(e, level, supply, ex)

	case absyn.CallExpr:
		return tr.translateCall(e, level, supply, ex)

	case absyn.RecordExpr:
		return tr.translateRecord(e, level, supply, ex)

	case absyn.ArrayExpr:
		return tr.translateArray(e, level, supply, ex)

	case absyn.SeqExpr:
		return tr.translateSeq(e, level, supply, ex)

	case absyn.AssignExpr:
		dst := tr.translateVar(e, level, supply, ex.Var).UnEx(supply)
		src := tr.translateExpr(e, level, supply, ex.Value).UnEx(supply)
		return Nx(ir.Move{Dst: dst, Src: src})

	case absyn.IfExpr:
		return tr.translateIf(e, level, supply, ex)

	case absyn.WhileExpr:
		return tr.translateWhile(e, level, supply, ex)

	case absyn.ForExpr:
		return tr.translateFor(e, level, supply, ex)

	case absyn.BreakExpr:
		target := tr.breakTarget(ex)
		return Nx(ir.Jump{Target: ir.Name{Label: target}, Labels: []temp.Label{target}})

	case absyn.LetExpr:
		return tr.translateLet(e, level, supply, ex)

	default:
		panic("translate: unknown absyn.Expr variant")
	}
}

// breakTarget resolves a BreakExpr's Done name to the temp.Label
// minted for that loop's exit, tracked via a table the Translator
// maintains per active loop (see translateWhile/translateFor).
func (tr *Translator) breakTarget(b absyn.BreakExpr) temp.Label {
	l, ok := tr.doneLabels[b.Done]
	if !ok {
		panic(fmt.Sprintf("translate: break outside any loop named %q", b.Done))
	}
	return l
}

func (tr *Translator) translateOp(e *env, level *frame.Level, supply *temp.Supply, ex absyn.OpExpr) Exp {
	if ex.OperandTy == absyn.TyString {
		return tr.translateStringOp(e, level, supply, ex)
	}
	left := tr.translateExpr(e, level, supply, ex.Left).UnEx(supply)
	right := tr.translateExpr(e, level, supply, ex.Right).UnEx(supply)
	if binop, ok := arithOp(ex.Op); ok {
		return Ex(ir.Binop{Op: binop, Left: left, Right: right})
	}
	relop := relOp(ex.Op)
	return Cx(func(t, f temp.Label) ir.Stmt {
		return ir.Cjump{Op: relop, Left: left, Right: right, True: t, False: f}
	})
}

// translateStringOp lowers string (in)equality/ordering to a call
// into the runtime's stringEqual/stringCompare routines: Tiger
// strings compare by content, never by address.
func (tr *Translator) translateStringOp(e *env, level *frame.Level, supply *temp.Supply, ex absyn.OpExpr) Exp {
	left := tr.translateExpr(e, level, supply, ex.Left).UnEx(supply)
	right := tr.translateExpr(e, level, supply, ex.Right).UnEx(supply)
	switch ex.Op {
	case absyn.OpEq, absyn.OpNe:
		call := ir.Call{Fn: ir.Name{Label: tr.target.ExternalCall("stringEqual")}, Args: []ir.Expr{left, right}}
		op := ir.Ne
		if ex.Op == absyn.OpNe {
			op = ir.Eq
		}
		return Cx(func(t, f temp.Label) ir.Stmt {
			return ir.Cjump{Op: op, Left: call, Right: ir.Const{Value: 0}, True: t, False: f}
		})
	default:
		call := ir.Call{Fn: ir.Name{Label: tr.target.ExternalCall("stringCompare")}, Args: []ir.Expr{left, right}}
		return Cx(func(t, f temp.Label) ir.Stmt {
			return ir.Cjump{Op: relOp(ex.Op), Left: call, Right: ir.Const{Value: 0}, True: t, False: f}
		})
	}
}

func arithOp(op absyn.OpKind) (ir.BinOp, bool) {
	switch op {
	case absyn.OpAdd:
		return ir.Plus, true
	case absyn.OpSub:
		return ir.Minus, true
	case absyn.OpMul:
		return ir.Mul, true
	case absyn.OpDiv:
		return ir.Div, true
	}
	return 0, false
}

func relOp(op absyn.OpKind) ir.RelOp {
	switch op {
	case absyn.OpEq:
		return ir.Eq
	case absyn.OpNe:
		return ir.Ne
	case absyn.OpLt:
		return ir.Lt
	case absyn.OpLe:
		return ir.Le
	case absyn.OpGt:
		return ir.Gt
	case absyn.OpGe:
		return ir.Ge
	}
	panic("translate: not a relational OpKind")
}

// translateCall builds a CALL carrying the static link as its hidden
// first argument, computed by walking Depth static links up from the
// caller's level to the callee's declaring level's parent (the
// frame the callee expects as ITS static link).
func (tr *Translator) translateCall(e *env, level *frame.Level, supply *temp.Supply, ex absyn.CallExpr) Exp {
	fb, ok := e.lookupFun(ex.Name)
	if !ok {
		return tr.translateExternalCall(e, level, supply, ex)
	}
	fp := ir.Expr(ir.TempExpr{Temp: tr.target.FP()})
	cur := level
	for depth := 0; depth < ex.Depth; depth++ {
		fp = ir.Mem{Addr: tr.staticLinkAddr(cur, fp)}
		cur = cur.Parent()
	}
	args := make([]ir.Expr, 0, len(ex.Args)+1)
	args = append(args, fp)
	for _, a := range ex.Args {
		args = append(args, tr.translateExpr(e, level, supply, a).UnEx(supply))
	}
	call := ir.Call{Fn: ir.Name{Label: fb.label}, Args: args}
	if ex.ResultTy == absyn.TyVoid {
		return Nx(ir.Exp{Expr: call})
	}
	return Ex(call)
}

// translateExternalCall lowers a call to a name absent from the
// user-function environment to a direct call to the target's
// runtime-library symbol of the same name (print, flush, ord, ...),
// with no static link argument: runtime routines are not Tiger
// closures.
func (tr *Translator) translateExternalCall(e *env, level *frame.Level, supply *temp.Supply, ex absyn.CallExpr) Exp {
	args := make([]ir.Expr, 0, len(ex.Args))
	for _, a := range ex.Args {
		args = append(args, tr.translateExpr(e, level, supply, a).UnEx(supply))
	}
	call := ir.Call{Fn: ir.Name{Label: tr.target.ExternalCall(ex.Name)}, Args: args}
	if ex.ResultTy == absyn.TyVoid {
		return Nx(ir.Exp{Expr: call})
	}
	return Ex(call)
}

// translateRecord lowers record creation to a call to initRecord
// sized in words, followed by one store per field into the freshly
// allocated block: record/array allocation is a runtime call here,
// not an inline bump allocator.
func (tr *Translator) translateRecord(e *env, level *frame.Level, supply *temp.Supply, ex absyn.RecordExpr) Exp {
	size := ir.Const{Value: int64(len(ex.Fields)) * tr.target.WordSize()}
	alloc := ir.Call{Fn: ir.Name{Label: tr.target.ExternalCall("initRecord")}, Args: []ir.Expr{size}}
	r := supply.NewTemp()
	stmts := []ir.Stmt{ir.Move{Dst: ir.TempExpr{Temp: r}, Src: alloc}}
	for i, field := range ex.Fields {
		val := tr.translateExpr(e, level, supply, field).UnEx(supply)
		offset := int64(i) * tr.target.WordSize()
		dst := ir.Mem{Addr: ir.Binop{Op: ir.Plus, Left: ir.TempExpr{Temp: r}, Right: ir.Const{Value: offset}}}
		stmts = append(stmts, ir.Move{Dst: dst, Src: val})
	}
	return Ex(ir.Eseq{Stmt: ir.SeqStmts(stmts...), Expr: ir.TempExpr{Temp: r}})
}

// translateArray lowers array creation to a call to initArray(size,
// init), which the runtime implements as allocate-then-fill.
func (tr *Translator) translateArray(e *env, level *frame.Level, supply *temp.Supply, ex absyn.ArrayExpr) Exp {
	size := tr.translateExpr(e, level, supply, ex.Size).UnEx(supply)
	init := tr.translateExpr(e, level, supply, ex.Init).UnEx(supply)
	call := ir.Call{Fn: ir.Name{Label: tr.target.ExternalCall("initArray")}, Args: []ir.Expr{size, init}}
	return Ex(call)
}

func (tr *Translator) translateSeq(e *env, level *frame.Level, supply *temp.Supply, ex absyn.SeqExpr) Exp {
	if len(ex.Exprs) == 0 {
		return Ex(ir.Const{Value: 0})
	}
	var stmts []ir.Stmt
	for _, sub := range ex.Exprs[:len(ex.Exprs)-1] {
		stmts = append(stmts, tr.translateExpr(e, level, supply, sub).UnNx(supply))
	}
	last := tr.translateExpr(e, level, supply, ex.Exprs[len(ex.Exprs)-1])
	if len(stmts) == 0 {
		return last
	}
	return Ex(ir.Eseq{Stmt: ir.SeqStmts(stmts...), Expr: last.UnEx(supply)})
}

func (tr *Translator) translateIf(e *env, level *frame.Level, supply *temp.Supply, ex absyn.IfExpr) Exp {
	condFn := tr.translateExpr(e, level, supply, ex.Cond).UnCx(supply)
	if ex.Else == nil {
		thenStmt := tr.translateExpr(e, level, supply, ex.Then).UnNx(supply)
		t := supply.NewLabel()
		f := supply.NewLabel()
		return Nx(ir.SeqStmts(
			condFn(t, f),
			ir.LabelStmt{Label: t},
			thenStmt,
			ir.LabelStmt{Label: f},
		))
	}
	t := supply.NewLabel()
	f := supply.NewLabel()
	join := supply.NewLabel()
	if ex.Ty == absyn.TyVoid {
		thenStmt := tr.translateExpr(e, level, supply, ex.Then).UnNx(supply)
		elseStmt := tr.translateExpr(e, level, supply, ex.Else).UnNx(supply)
		return Nx(ir.SeqStmts(
			condFn(t, f),
			ir.LabelStmt{Label: t}, thenStmt, ir.Jump{Target: ir.Name{Label: join}, Labels: []temp.Label{join}},
			ir.LabelStmt{Label: f}, elseStmt,
			ir.LabelStmt{Label: join},
		))
	}
	r := supply.NewTemp()
	thenVal := tr.translateExpr(e, level, supply, ex.Then).UnEx(supply)
	elseVal := tr.translateExpr(e, level, supply, ex.Else).UnEx(supply)
	stmt := ir.SeqStmts(
		condFn(t, f),
		ir.LabelStmt{Label: t}, ir.Move{Dst: ir.TempExpr{Temp: r}, Src: thenVal}, ir.Jump{Target: ir.Name{Label: join}, Labels: []temp.Label{join}},
		ir.LabelStmt{Label: f}, ir.Move{Dst: ir.TempExpr{Temp: r}, Src: elseVal},
		ir.LabelStmt{Label: join},
	)
	return Ex(ir.Eseq{Stmt: stmt, Expr: ir.TempExpr{Temp: r}})
}

func (tr *Translator) translateWhile(e *env, level *frame.Level, supply *temp.Supply, ex absyn.WhileExpr) Exp {
	test := supply.NewLabel()
	body := supply.NewLabel()
	done := supply.NewNamed("done")
	tr.doneLabels[ex.Done] = done
	defer delete(tr.doneLabels, ex.Done)

	condFn := tr.translateExpr(e, level, supply, ex.Cond).UnCx(supply)
	bodyStmt := tr.translateExpr(e, level, supply, ex.Body).UnNx(supply)
	return Nx(ir.SeqStmts(
		ir.LabelStmt{Label: test},
		condFn(body, done),
		ir.LabelStmt{Label: body},
		bodyStmt,
		ir.Jump{Target: ir.Name{Label: test}, Labels: []temp.Label{test}},
		ir.LabelStmt{Label: done},
	))
}

// translateFor lowers `for i := lo to hi do body` into its own
// counting loop over a local holding the limit: the body runs only
// while i <= limit, and the loop exits before the increment once i
// has reached limit, so i is never incremented past hi. BreakExpr
// jumps to the loop's done label, as it does in translateWhile.
func (tr *Translator) translateFor(e *env, level *frame.Level, supply *temp.Supply, ex absyn.ForExpr) Exp {
	access := level.AllocLocal(ex.Escapes, supply)
	limitAccess := level.AllocLocal(false, supply)
	inner := newEnv(e)
	inner.vars[ex.VarName] = varBinding{level: level, access: access}

	fp := ir.Expr(ir.TempExpr{Temp: tr.target.FP()})
	loVar := FrameExp(access, fp).UnEx(supply)
	limitVar := FrameExp(limitAccess, fp).UnEx(supply)

	lo := tr.translateExpr(e, level, supply, ex.Lo).UnEx(supply)
	hi := tr.translateExpr(e, level, supply, ex.Hi).UnEx(supply)

	test := supply.NewLabel()
	body := supply.NewLabel()
	incr := supply.NewLabel()
	done := supply.NewNamed("done")
	tr.doneLabels[ex.Done] = done
	defer delete(tr.doneLabels, ex.Done)

	bodyStmt := tr.translateExpr(inner, level, supply, ex.Body).UnNx(supply)

	return Nx(ir.SeqStmts(
		ir.Move{Dst: loVar, Src: lo},
		ir.Move{Dst: limitVar, Src: hi},
		ir.LabelStmt{Label: test},
		ir.Cjump{Op: ir.Le, Left: loVar, Right: limitVar, True: body, False: done},
		ir.LabelStmt{Label: body},
		bodyStmt,
		ir.Cjump{Op: ir.Lt, Left: loVar, Right: limitVar, True: incr, False: done},
		ir.LabelStmt{Label: incr},
		ir.Move{Dst: loVar, Src: ir.Binop{Op: ir.Plus, Left: loVar, Right: ir.Const{Value: 1}}},
		ir.Jump{Target: ir.Name{Label: test}, Labels: []temp.Label{test}},
		ir.LabelStmt{Label: done},
	))
}

// translateLet opens a fresh scope for Decs (binding VarDecs
// immediately, and threading every FunDec in the group into the
// environment before translating any of their bodies, so mutually
// recursive calls resolve), then translates Body in that scope.
func (tr *Translator) translateLet(e *env, level *frame.Level, supply *temp.Supply, ex absyn.LetExpr) Exp {
	inner := newEnv(e)
	var inits []ir.Stmt
	i := 0
	for i < len(ex.Decs) {
		switch d := ex.Decs[i].(type) {
		case absyn.VarDec:
			access := level.AllocLocal(d.Escapes, supply)
			inner.vars[d.Name] = varBinding{level: level, access: access}
			fp := ir.Expr(ir.TempExpr{Temp: tr.target.FP()})
			dst := FrameExp(access, fp).UnEx(supply)
			val := tr.translateExpr(e, level, supply, d.Init).UnEx(supply)
			inits = append(inits, ir.Move{Dst: dst, Src: val})
			i++
		case absyn.FunDec:
			j := i
			for j < len(ex.Decs) {
				if _, ok := ex.Decs[j].(absyn.FunDec); !ok {
					break
				}
				j++
			}
			tr.translateFunGroup(inner, level, asFunDecs(ex.Decs[i:j]))
			i = j
		default:
			panic("translate: unknown absyn.Dec variant")
		}
	}
	body := tr.translateExpr(inner, level, supply, ex.Body)
	if len(inits) == 0 {
		return body
	}
	if ex.Ty == absyn.TyVoid {
		return Nx(ir.SeqStmts(append(inits, body.UnNx(supply))...))
	}
	return Ex(ir.Eseq{Stmt: ir.SeqStmts(inits...), Expr: body.UnEx(supply)})
}

func asFunDecs(decs []absyn.Dec) []absyn.FunDec {
	out := make([]absyn.FunDec, len(decs))
	for i, d := range decs {
		out[i] = d.(absyn.FunDec)
	}
	return out
}

// translateFunGroup binds every function name to its entry label
// first (so mutually recursive bodies can call each other and
// themselves before any of them is translated), then translates each
// function in turn: its Level, its formal-access temps and its body's
// temps all come from the one Supply created for it, so a formal's
// register can never collide with an unrelated body temp of the same
// id. Each function's Supply is created only when that function's
// translation begins, continuing the Translator's global label floor
// from wherever the previous function's translation left it.
func (tr *Translator) translateFunGroup(e *env, parent *frame.Level, decs []absyn.FunDec) {
	labels := make([]temp.Label, len(decs))
	for i, d := range decs {
		labels[i] = temp.NamedLabel(d.Name)
		e.funs[d.Name] = funBinding{label: labels[i]}
	}
	for i, d := range decs {
		escapes := make([]bool, len(d.Params))
		for j, p := range d.Params {
			escapes[j] = p.Escapes
		}
		supply := tr.newSupply()
		level := frame.NewLevel(parent, labels[i], escapes, tr.counter, supply)

		funEnv := newEnv(e)
		for j, p := range d.Params {
			funEnv.vars[p.Name] = varBinding{level: level, access: level.Formals()[j]}
		}
		bodyVal := tr.translateExpr(funEnv, level, supply, d.Body).UnEx(supply)
		tr.emitProc(level, supply, bodyVal)
		tr.commitSupply(supply)
	}
}
