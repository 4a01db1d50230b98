// Package codegen implements maximal-munch instruction selection:
// Codegen tiles a canonicalized tree-IR statement list into target
// assem.Instructions, always matching the largest available pattern
// first so that, e.g., `MEM(BINOP(PLUS, e, CONST i))` folds into one
// load with an immediate offset instead of a separate add followed
// by a zero-offset load.
//
// Grounded on pkg/selection/expr.go and pkg/selection/stmt.go's
// switch-on-node-kind tiling (there: Cminor -> CminorSel, matching
// addressing modes and combined operators the same "biggest shape
// first" way) and pkg/asmgen/transform.go's per-opcode emission
// functions, adapted from already-three-address CminorSel/RTL input
// to tree-shaped ir.Expr/ir.Stmt.
package codegen

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// ctx carries per-procedure codegen state: the target machine
// description, the shared temp/label supply, and the instruction
// list built up so far.
type ctx struct {
	target frame.Target
	supply *temp.Supply
	code   []assem.Instruction
}

func (c *ctx) emit(i assem.Instruction) { c.code = append(c.code, i) }

// Codegen tiles a canonicalized statement list (the output of
// canon.TraceSchedule) into a flat assem.Instruction list for the
// given target.
func Codegen(target frame.Target, stmts []ir.Stmt, supply *temp.Supply) []assem.Instruction {
	c := &ctx{target: target, supply: supply}
	for _, s := range stmts {
		c.munchStmt(s)
	}
	return c.code
}

func (c *ctx) munchStmt(s ir.Stmt) {
	switch st := s.(type) {
	case ir.Seq:
		c.munchStmt(st.First)
		c.munchStmt(st.Second)

	case ir.LabelStmt:
		c.emit(assem.LabelInst{Assem: st.Label.String() + ":", Lbl: st.Label})

	case ir.Jump:
		if name, ok := st.Target.(ir.Name); ok {
			c.emit(assem.Oper{Assem: "j 'j0", Jump: []temp.Label{name.Label}})
			return
		}
		r := c.munchExpr(st.Target)
		c.emit(assem.Oper{Assem: "jr 's0", Src: []temp.Temp{r}, Jump: st.Labels})

	case ir.Cjump:
		c.munchCjump(st)

	case ir.Move:
		c.munchMove(st)

	case ir.Exp:
		if call, ok := st.Expr.(ir.Call); ok {
			c.munchCall(call)
			return
		}
		c.munchExpr(st.Expr)

	default:
		panic(fmt.Sprintf("codegen: unexpected statement %T (Seq/Eseq must already be gone)", s))
	}
}

var condOps = map[ir.RelOp]string{
	ir.Eq: "beq", ir.Ne: "bne",
	ir.Lt: "blt", ir.Le: "ble", ir.Gt: "bgt", ir.Ge: "bge",
	ir.Ult: "bltu", ir.Ule: "bleu", ir.Ugt: "bgtu", ir.Uge: "bgeu",
}

func (c *ctx) munchCjump(st ir.Cjump) {
	l, r := c.munchExpr(st.Left), c.munchExpr(st.Right)
	op, ok := condOps[st.Op]
	if !ok {
		panic("codegen: unknown RelOp")
	}
	// Jump lists both branch targets for liveness's benefit even
	// though the emitted text only names the true target: the false
	// branch is the next instruction by construction of
	// canon.TraceSchedule, a real (if implicit) control-flow edge.
	c.emit(assem.Oper{
		Assem: op + " 's0, 's1, 'j0",
		Src:   []temp.Temp{l, r},
		Jump:  []temp.Label{st.True, st.False},
	})
}

func (c *ctx) munchMove(st ir.Move) {
	if dstTemp, ok := st.Dst.(ir.TempExpr); ok {
		c.munchMoveToTemp(dstTemp.Temp, st.Src)
		return
	}
	mem, ok := st.Dst.(ir.Mem)
	if !ok {
		panic("codegen: Move destination must be a TempExpr or Mem")
	}
	src := c.munchExpr(st.Src)
	base, offset := c.munchAddress(mem.Addr)
	c.emit(assem.Oper{Assem: fmt.Sprintf("sw 's0, %d('s1)", offset), Src: []temp.Temp{src, base}})
}

func (c *ctx) munchMoveToTemp(dst temp.Temp, src ir.Expr) {
	if call, ok := src.(ir.Call); ok {
		rv := c.munchCall(call)
		c.emit(assem.Move{Assem: "move 'd0, 's0", Dst: dst, Src: rv})
		return
	}
	if k, ok := src.(ir.Const); ok {
		c.emit(assem.Oper{Assem: fmt.Sprintf("li 'd0, %d", k.Value), Dst: []temp.Temp{dst}})
		return
	}
	if binop, ok := src.(ir.Binop); ok {
		if tile, ok := c.tryBinopImm(binop); ok {
			c.emit(assem.Oper{Assem: tile.assem, Dst: []temp.Temp{dst}, Src: tile.src})
			return
		}
	}
	r := c.munchExpr(src)
	if r == dst {
		return
	}
	c.emit(assem.Move{Assem: "move 'd0, 's0", Dst: dst, Src: r})
}

// munchExpr tiles e, emitting instructions as needed, and returns
// the temp holding its value.
func (c *ctx) munchExpr(e ir.Expr) temp.Temp {
	switch ex := e.(type) {
	case ir.TempExpr:
		return ex.Temp

	case ir.Const:
		t := c.supply.NewTemp()
		c.emit(assem.Oper{Assem: fmt.Sprintf("li 'd0, %d", ex.Value), Dst: []temp.Temp{t}})
		return t

	case ir.Name:
		t := c.supply.NewTemp()
		c.emit(assem.Oper{Assem: "la 'd0, " + ex.Label.String(), Dst: []temp.Temp{t}})
		return t

	case ir.Binop:
		return c.munchBinop(ex)

	case ir.Mem:
		base, offset := c.munchAddress(ex.Addr)
		t := c.supply.NewTemp()
		c.emit(assem.Oper{Assem: fmt.Sprintf("lw 'd0, %d('s0)", offset), Dst: []temp.Temp{t}, Src: []temp.Temp{base}})
		return t

	case ir.Call:
		return c.munchCall(ex)

	default:
		panic(fmt.Sprintf("codegen: unexpected expression %T (Eseq must already be gone)", e))
	}
}

var binOps = map[ir.BinOp]string{
	ir.Plus: "add", ir.Minus: "sub", ir.Mul: "mul", ir.Div: "div",
	ir.And: "and", ir.Or: "or", ir.Xor: "xor",
	ir.Lshift: "sll", ir.Rshift: "srl", ir.Arshift: "sra",
}

var binOpsImm = map[ir.BinOp]string{
	ir.Plus: "addi", ir.And: "andi", ir.Or: "ori", ir.Xor: "xori",
	ir.Lshift: "slli", ir.Rshift: "srli", ir.Arshift: "srai",
}

type immTile struct {
	assem string
	src   []temp.Temp
}

// tryBinopImm matches BINOP(op, e, CONST i) or, for commutative ops,
// BINOP(op, CONST i, e), folding the constant into the instruction's
// own immediate field instead of materializing it in a register
// first — the largest available tile for this shape.
func (c *ctx) tryBinopImm(b ir.Binop) (immTile, bool) {
	mnemonic, ok := binOpsImm[b.Op]
	if !ok {
		return immTile{}, false
	}
	if rc, ok := b.Right.(ir.Const); ok {
		r := c.munchExpr(b.Left)
		return immTile{assem: fmt.Sprintf("%s 'd0, 's0, %d", mnemonic, rc.Value), src: []temp.Temp{r}}, true
	}
	if lc, ok := b.Left.(ir.Const); ok && commutativeImm(b.Op) {
		r := c.munchExpr(b.Right)
		return immTile{assem: fmt.Sprintf("%s 'd0, 's0, %d", mnemonic, lc.Value), src: []temp.Temp{r}}, true
	}
	return immTile{}, false
}

func commutativeImm(op ir.BinOp) bool {
	switch op {
	case ir.Plus, ir.And, ir.Or, ir.Xor:
		return true
	default:
		return false
	}
}

func (c *ctx) munchBinop(b ir.Binop) temp.Temp {
	if tile, ok := c.tryBinopImm(b); ok {
		t := c.supply.NewTemp()
		c.emit(assem.Oper{Assem: tile.assem, Dst: []temp.Temp{t}, Src: tile.src})
		return t
	}
	mnemonic, ok := binOps[b.Op]
	if !ok {
		panic("codegen: unknown BinOp")
	}
	l, r := c.munchExpr(b.Left), c.munchExpr(b.Right)
	t := c.supply.NewTemp()
	c.emit(assem.Oper{Assem: fmt.Sprintf("%s 'd0, 's0, 's1", mnemonic), Dst: []temp.Temp{t}, Src: []temp.Temp{l, r}})
	return t
}

// munchAddress tiles a memory address into a single base register
// plus a constant offset, folding a BINOP(PLUS, _, CONST) shape
// (either operand order) into the offset instead of computing it in
// a register — MEM's own largest addressing tile.
func (c *ctx) munchAddress(addr ir.Expr) (base temp.Temp, offset int64) {
	if b, ok := addr.(ir.Binop); ok && b.Op == ir.Plus {
		if rc, ok := b.Right.(ir.Const); ok {
			return c.munchExpr(b.Left), rc.Value
		}
		if lc, ok := b.Left.(ir.Const); ok {
			return c.munchExpr(b.Right), lc.Value
		}
	}
	return c.munchExpr(addr), 0
}

// munchCall evaluates a call's function and argument expressions
// left to right, moves the first len(ArgRegs()) of them into the
// target's argument registers, spills the remainder onto the
// outgoing-argument area of the stack, emits the call instruction
// (which defines RV and every caller-saved register, since the
// callee is free to clobber them), and copies RV into a fresh temp
// so the result isn't pinned to a physical register any longer than
// necessary.
func (c *ctx) munchCall(call ir.Call) temp.Temp {
	name, ok := call.Fn.(ir.Name)
	if !ok {
		panic("codegen: indirect calls are not supported by this target")
	}
	argRegs := c.target.ArgRegs()
	argVals := make([]temp.Temp, len(call.Args))
	for i, a := range call.Args {
		argVals[i] = c.munchExpr(a)
	}
	var moveSrcs []temp.Temp
	for i, v := range argVals {
		if i >= len(argRegs) {
			offset := int64(i-len(argRegs)) * c.target.WordSize()
			c.emit(assem.Oper{Assem: fmt.Sprintf("sw 's0, %d('s1)", offset), Src: []temp.Temp{v, c.target.SP()}})
			continue
		}
		c.emit(assem.Move{Assem: "move 'd0, 's0", Dst: argRegs[i], Src: v})
		moveSrcs = append(moveSrcs, argRegs[i])
	}
	clobbered := append(append([]temp.Temp{}, c.target.CallerSaves()...), c.target.RV())
	c.emit(assem.Oper{Assem: "jal " + name.Label.String(), Src: moveSrcs, Dst: clobbered, Call: true})
	result := c.supply.NewTemp()
	c.emit(assem.Move{Assem: "move 'd0, 's0", Dst: result, Src: c.target.RV()})
	return result
}
