// Package ir defines the tree intermediate representation: the small,
// untyped expression/statement language Translate produces and
// Canonicalize, Codegen and Register Allocation all manipulate.
// This mirrors the tagged-interface-plus-marker-method idiom the
// teacher uses throughout its own per-stage ASTs (e.g.
// pkg/rtl/ast.go's Operation/Instruction, pkg/mach/ast.go's FunRef).
package ir

import "github.com/tiger-lang/tigerc/pkg/temp"

// Expr is a tree-IR expression: it yields a value.
type Expr interface {
	implExpr()
}

// Stmt is a tree-IR statement: it has only side effects.
type Stmt interface {
	implStmt()
}

// BinOp names a binary arithmetic or bitwise operator.
type BinOp int

const (
	Plus BinOp = iota
	Minus
	Mul
	Div
	And
	Or
	Lshift
	Rshift
	Arshift
	Xor
)

// RelOp names a comparison used by Cjump.
type RelOp int

const (
	Eq RelOp = iota
	Ne
	Lt
	Gt
	Le
	Ge
	Ult
	Ule
	Ugt
	Uge
)

// Negate returns the logically negated relational operator, used
// when trace scheduling swaps a Cjump's branch targets.
func (r RelOp) Negate() RelOp {
	switch r {
	case Eq:
		return Ne
	case Ne:
		return Eq
	case Lt:
		return Ge
	case Ge:
		return Lt
	case Gt:
		return Le
	case Le:
		return Gt
	case Ult:
		return Uge
	case Uge:
		return Ult
	case Ugt:
		return Ule
	case Ule:
		return Ugt
	}
	panic("ir: unknown RelOp")
}

// --- Expressions ---

// Const is an integer literal.
type Const struct{ Value int64 }

// Name is the address of a label.
type Name struct{ Label temp.Label }

// TempExpr reads the value of a temp. Named TempExpr (not Temp) to
// avoid colliding with temp.Temp in call sites that import both
// packages unqualified.
type TempExpr struct{ Temp temp.Temp }

// Binop applies a binary operator to two subexpressions.
type Binop struct {
	Op          BinOp
	Left, Right Expr
}

// Mem dereferences a memory address.
type Mem struct{ Addr Expr }

// Call invokes a function, yielding its return value.
type Call struct {
	Fn   Expr
	Args []Expr
}

// Eseq evaluates a statement for effect, then yields an expression's
// value. Canonicalize eliminates every Eseq; none may survive into
// Codegen.
type Eseq struct {
	Stmt Stmt
	Expr Expr
}

func (Const) implExpr()    {}
func (Name) implExpr()     {}
func (TempExpr) implExpr() {}
func (Binop) implExpr()    {}
func (Mem) implExpr()      {}
func (Call) implExpr()     {}
func (Eseq) implExpr()     {}

// --- Statements ---

// Move assigns the value of Src to the location denoted by Dst,
// which must be a TempExpr or a Mem.
type Move struct {
	Dst, Src Expr
}

// Exp evaluates an expression and discards its value (used to
// sequence a bare Call).
type Exp struct{ Expr Expr }

// Jump transfers control to the address computed by Target; Labels
// lists every label Target might evaluate to (a plain Name yields
// exactly one).
type Jump struct {
	Target Expr
	Labels []temp.Label
}

// Cjump compares Left and Right with Op and transfers control to
// True or False. After canonicalization, False is always the label
// immediately following in program order.
type Cjump struct {
	Op          RelOp
	Left, Right Expr
	True, False temp.Label
}

// Seq sequences two statements. Canonicalize flattens every Seq into
// a flat statement list; no Seq survives past linearize.
type Seq struct {
	First, Second Stmt
}

// LabelStmt marks a jump target.
type LabelStmt struct{ Label temp.Label }

func (Move) implStmt()      {}
func (Exp) implStmt()       {}
func (Jump) implStmt()      {}
func (Cjump) implStmt()     {}
func (Seq) implStmt()       {}
func (LabelStmt) implStmt() {}

// SeqStmts folds a slice of statements into a right-nested Seq chain,
// skipping nils. An empty slice yields the no-op Exp{Const{0}}.
func SeqStmts(stmts ...Stmt) Stmt {
	filtered := stmts[:0:0]
	for _, s := range stmts {
		if s != nil {
			filtered = append(filtered, s)
		}
	}
	if len(filtered) == 0 {
		return Exp{Const{0}}
	}
	result := filtered[len(filtered)-1]
	for i := len(filtered) - 2; i >= 0; i-- {
		result = Seq{First: filtered[i], Second: result}
	}
	return result
}

// --- Fragments ---

// Fragment is a compilation unit Translate hands off: either a
// compiled procedure body or a string literal.
type Fragment interface {
	implFragment()
}

// Proc is a compiled function body paired with the frame it executes
// in. The frame is a *frame.Frame, but ir must not import frame (that
// would be an import cycle), so the Frame field holds it through the
// FrameHandle interface.
type Proc struct {
	Body  Stmt
	Frame FrameHandle

	// NextTemp is the first never-yet-minted temp id in the Supply
	// that translated Body, i.e. every temp embedded in Body (formals,
	// escaping-local spills, Cx result temps, ...) is strictly below
	// it. Codegen must seed its own Supply from here rather than from
	// 1, or its scratch temps collide with live temps Body already
	// uses.
	NextTemp int
}

// FrameHandle is whatever the frame package's *Frame is; declared
// here as an empty interface purely to break the import cycle between
// ir (which Translate and Canonicalize consume) and frame (which
// Translate also consumes directly). Callers type-assert back to
// *frame.Frame.
type FrameHandle interface{}

// StringFrag is a string literal constant.
type StringFrag struct {
	Label temp.Label
	Value string
}

func (Proc) implFragment()       {}
func (StringFrag) implFragment() {}
