package absyn

import "testing"

func TestSeqExprTypeIsVoidWhenEmpty(t *testing.T) {
	if got := (SeqExpr{}).Type(); got != TyVoid {
		t.Errorf("SeqExpr{}.Type() = %v, want TyVoid", got)
	}
}

func TestSeqExprTypeIsItsLastExprsType(t *testing.T) {
	seq := SeqExpr{Exprs: []Expr{IntExpr{Value: 1}, StringExpr{Value: "s"}}}
	if got := seq.Type(); got != TyString {
		t.Errorf("SeqExpr{int, string}.Type() = %v, want TyString", got)
	}
}

func TestIfExprTypeIsItsOwnField(t *testing.T) {
	e := IfExpr{Cond: IntExpr{Value: 1}, Then: IntExpr{Value: 2}, Else: IntExpr{Value: 3}, Ty: TyInt}
	if got := e.Type(); got != TyInt {
		t.Errorf("IfExpr.Type() = %v, want TyInt", got)
	}
}

func TestStatementFormsAreVoidTyped(t *testing.T) {
	cases := []Expr{
		AssignExpr{Var: SimpleVar{Name: "x"}, Value: IntExpr{Value: 1}},
		WhileExpr{Cond: IntExpr{Value: 1}, Body: AssignExpr{}},
		ForExpr{VarName: "i", Lo: IntExpr{Value: 0}, Hi: IntExpr{Value: 10}, Body: AssignExpr{}},
		BreakExpr{Done: "l1"},
	}
	for _, e := range cases {
		if got := e.Type(); got != TyVoid {
			t.Errorf("%T.Type() = %v, want TyVoid", e, got)
		}
	}
}

func TestCallExprTypeIsResultTy(t *testing.T) {
	c := CallExpr{Name: "f", ResultTy: TyString}
	if got := c.Type(); got != TyString {
		t.Errorf("CallExpr.Type() = %v, want TyString", got)
	}
}

func TestLetExprTypeIsItsOwnField(t *testing.T) {
	l := LetExpr{Body: IntExpr{Value: 1}, Ty: TyInt}
	if got := l.Type(); got != TyInt {
		t.Errorf("LetExpr.Type() = %v, want TyInt", got)
	}
}

func TestVarKindsImplementVar(t *testing.T) {
	var vs []Var = []Var{
		SimpleVar{Name: "x"},
		FieldVar{Base: SimpleVar{Name: "r"}, Slot: 0, Name: "f"},
		SubscriptVar{Base: SimpleVar{Name: "a"}, Index: IntExpr{Value: 0}},
	}
	if len(vs) != 3 {
		t.Fatalf("expected all three Var kinds to compile against the Var interface")
	}
}
