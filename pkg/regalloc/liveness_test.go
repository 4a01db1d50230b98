package regalloc

import (
	"testing"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

func TestAnalyzeLivenessStraightLine(t *testing.T) {
	a, b, c := temp.Temp(1), temp.Temp(2), temp.Temp(3)
	// a = 1; b = 2; c = a + b; (use c nowhere after, so c dies immediately)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{a}},
		assem.Oper{Assem: "li 'd0, 2", Dst: []temp.Temp{b}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{c}, Src: []temp.Temp{a, b}},
	}
	info := AnalyzeLiveness(instrs)

	if !info.LiveOut[0].Equal(RegSet{a: true}) {
		t.Errorf("live-out of instr 0 = %v, want {a}", info.LiveOut[0])
	}
	if !info.LiveOut[1].Equal(RegSet{a: true, b: true}) {
		t.Errorf("live-out of instr 1 = %v, want {a, b}", info.LiveOut[1])
	}
	if len(info.LiveOut[2]) != 0 {
		t.Errorf("live-out of instr 2 = %v, want empty (c never used)", info.LiveOut[2])
	}
}

func TestAnalyzeLivenessLoop(t *testing.T) {
	i, limit := temp.Temp(1), temp.Temp(2)
	top := temp.NamedLabel("top")
	body := temp.NamedLabel("body")
	done := temp.NamedLabel("done")
	// top: if i >= limit goto done (else fall into body); body: i = i+1; goto top; done:
	// Every Cjump target names a real block, matching canon.TraceSchedule's
	// invariant that a basic block always opens with a label.
	instrs := []assem.Instruction{
		assem.LabelInst{Assem: "top:", Lbl: top},
		assem.Oper{Assem: "bge 's0, 's1, 'j0", Src: []temp.Temp{i, limit}, Jump: []temp.Label{done, body}},
		assem.LabelInst{Assem: "body:", Lbl: body},
		assem.Oper{Assem: "addi 'd0, 's0, 1", Dst: []temp.Temp{i}, Src: []temp.Temp{i}},
		assem.Oper{Assem: "j 'j0", Jump: []temp.Label{top}},
		assem.LabelInst{Assem: "done:", Lbl: done},
	}
	info := AnalyzeLiveness(instrs)

	// i and limit must both be live across the whole loop body, since
	// the back edge keeps using them every iteration.
	for idx := 0; idx < 5; idx++ {
		if !info.LiveOut[idx].Contains(limit) {
			t.Errorf("instr %d: limit not live-out, got %v", idx, info.LiveOut[idx])
		}
	}
	if !info.LiveIn[0].Contains(i) || !info.LiveIn[0].Contains(limit) {
		t.Errorf("loop header live-in = %v, want i and limit live", info.LiveIn[0])
	}
}

func TestAnalyzeLivenessCjumpBothTargetsAreSuccessors(t *testing.T) {
	v := temp.Temp(1)
	trueL, falseL := temp.NamedLabel("T"), temp.NamedLabel("F")
	instrs := []assem.Instruction{
		assem.Oper{Assem: "beqz 's0, 'j0", Src: []temp.Temp{v}, Jump: []temp.Label{trueL, falseL}},
		assem.LabelInst{Assem: "T:", Lbl: trueL},
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{v}},
		assem.LabelInst{Assem: "F:", Lbl: falseL},
		assem.Oper{Assem: "li 'd0, 2", Dst: []temp.Temp{v}},
	}
	idx := labelIndex(instrs)
	succ := successors(instrs, idx, 0)
	if len(succ) != 2 {
		t.Fatalf("Cjump successors = %v, want both branch targets", succ)
	}
}
