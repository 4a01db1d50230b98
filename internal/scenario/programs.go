// Package scenario holds the small set of named, built-in Tiger
// programs this repository drives its end-to-end checks from (there
// is no lexer, parser or type checker here to produce an absyn.Expr
// from source text) and the YAML-driven table of expected-output
// checks run against each one.
//
// Grounded on cmd/ralph-cc/integration_test.go's E2EAsmTestSpec table
// (Expect/ExpectOrder/ExpectUnique/ExpectNot substring checks against
// compiled assembly text) — here Input names a Program instead of
// carrying source text, since nothing in this repo parses Tiger
// source.
package scenario

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/absyn"
	"github.com/tiger-lang/tigerc/pkg/frame/mips"
)

// Programs maps a scenario's name to a builder for its already-typed,
// escape-annotated AST — hand-built fixtures in the same style the
// register allocator's own tests use for constructing instruction
// lists directly, instead of going through a parser.
var Programs = map[string]func() absyn.Expr{
	"empty":             emptyProgram,
	"arithmetic":        arithmeticProgram,
	"nested-function":   nestedFunctionProgram,
	"if-else":           ifElseProgram,
	"string-literal":    stringLiteralProgram,
	"register-pressure": registerPressureProgram,
}

// emptyProgram is `let in () end`.
func emptyProgram() absyn.Expr {
	return absyn.LetExpr{Body: absyn.SeqExpr{}, Ty: absyn.TyVoid}
}

// arithmeticProgram is `let var x := 1 + 2 * 3 in x end`.
func arithmeticProgram() absyn.Expr {
	return absyn.LetExpr{
		Decs: []absyn.Dec{
			absyn.VarDec{
				Name: "x",
				Ty:   absyn.TyInt,
				Init: absyn.OpExpr{
					Op:        absyn.OpAdd,
					OperandTy: absyn.TyInt,
					Left:      absyn.IntExpr{Value: 1},
					Right: absyn.OpExpr{
						Op:        absyn.OpMul,
						OperandTy: absyn.TyInt,
						Left:      absyn.IntExpr{Value: 2},
						Right:     absyn.IntExpr{Value: 3},
					},
				},
			},
		},
		Body: absyn.VarExpr{Var: absyn.SimpleVar{Name: "x"}, Ty: absyn.TyInt},
		Ty:   absyn.TyInt,
	}
}

// nestedFunctionProgram is `let var a := 5 function f() : int = a in
// f() end`: f is declared directly in main's own let, so the call's
// static-link depth is 0 (the static link IS main's own frame
// pointer) while f's one free-variable read of a crosses exactly one
// static link.
func nestedFunctionProgram() absyn.Expr {
	return absyn.LetExpr{
		Decs: []absyn.Dec{
			absyn.VarDec{Name: "a", Ty: absyn.TyInt, Init: absyn.IntExpr{Value: 5}, Escapes: true},
			absyn.FunDec{
				Name:     "f",
				ResultTy: absyn.TyInt,
				Body:     absyn.VarExpr{Var: absyn.SimpleVar{Name: "a"}, Ty: absyn.TyInt},
			},
		},
		Body: absyn.CallExpr{Name: "f", Depth: 0, ResultTy: absyn.TyInt},
		Ty:   absyn.TyInt,
	}
}

// ifElseProgram is `let var x := if 1 < 2 then 10 else 20 in x end`.
func ifElseProgram() absyn.Expr {
	return absyn.LetExpr{
		Decs: []absyn.Dec{
			absyn.VarDec{
				Name: "x",
				Ty:   absyn.TyInt,
				Init: absyn.IfExpr{
					Cond: absyn.OpExpr{
						Op:        absyn.OpLt,
						OperandTy: absyn.TyInt,
						Left:      absyn.IntExpr{Value: 1},
						Right:     absyn.IntExpr{Value: 2},
					},
					Then: absyn.IntExpr{Value: 10},
					Else: absyn.IntExpr{Value: 20},
					Ty:   absyn.TyInt,
				},
			},
		},
		Body: absyn.VarExpr{Var: absyn.SimpleVar{Name: "x"}, Ty: absyn.TyInt},
		Ty:   absyn.TyInt,
	}
}

// stringLiteralProgram is `let var s := "hello" in s end`.
func stringLiteralProgram() absyn.Expr {
	return absyn.LetExpr{
		Decs: []absyn.Dec{
			absyn.VarDec{Name: "s", Ty: absyn.TyString, Init: absyn.StringExpr{Value: "hello"}},
		},
		Body: absyn.VarExpr{Var: absyn.SimpleVar{Name: "s"}, Ty: absyn.TyString},
		Ty:   absyn.TyString,
	}
}

// registerPressureProgram declares K+3 integer locals (K = the
// target's total usable register count) and sums them in a
// right-associated chain `x0 + (x1 + (x2 + ... + x(n-1)))`: unlike a
// left-associated fold (where only the running total and the next
// operand are ever live at once), this ordering keeps every earlier
// operand alive across the entire evaluation of its nested remainder,
// so all K+3 values are simultaneously live at the innermost add,
// forcing at least three of them to spill.
func registerPressureProgram() absyn.Expr {
	k := len(mips.Target.Registers())
	n := k + 3

	decs := make([]absyn.Dec, n)
	for i := 0; i < n; i++ {
		decs[i] = absyn.VarDec{Name: varName(i), Ty: absyn.TyInt, Init: absyn.IntExpr{Value: int64(i + 1)}}
	}

	var body absyn.Expr = absyn.VarExpr{Var: absyn.SimpleVar{Name: varName(n - 1)}, Ty: absyn.TyInt}
	for i := n - 2; i >= 0; i-- {
		body = absyn.OpExpr{
			Op:        absyn.OpAdd,
			OperandTy: absyn.TyInt,
			Left:      absyn.VarExpr{Var: absyn.SimpleVar{Name: varName(i)}, Ty: absyn.TyInt},
			Right:     body,
		}
	}
	return absyn.LetExpr{Decs: decs, Body: body, Ty: absyn.TyInt}
}

func varName(i int) string { return fmt.Sprintf("x%d", i) }
