package regalloc

import (
	"testing"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

// fakeTarget is a minimal frame.Target stand-in with a small,
// explicitly-sized register file, so tests can force spilling without
// needing a full machine description.
type fakeTarget struct {
	regs        []temp.Temp
	calleeStart int
}

func (f fakeTarget) WordSize() int64         { return 4 }
func (f fakeTarget) FP() temp.Temp           { return temp.Temp(-1) }
func (f fakeTarget) RV() temp.Temp           { return temp.Temp(-2) }
func (f fakeTarget) RA() temp.Temp           { return temp.Temp(-3) }
func (f fakeTarget) SP() temp.Temp           { return temp.Temp(-4) }
func (f fakeTarget) ArgRegs() []temp.Temp    { return []temp.Temp{temp.Temp(-5), temp.Temp(-6)} }
func (f fakeTarget) CalleeSaves() []temp.Temp { return f.regs[f.calleeStart:] }
func (f fakeTarget) CallerSaves() []temp.Temp { return f.regs[:f.calleeStart] }
func (f fakeTarget) Registers() []temp.Temp  { return f.regs }
func (f fakeTarget) FirstCalleeSaveColor() int { return f.calleeStart }
func (f fakeTarget) ExternalCall(name string) temp.Label { return temp.NamedLabel(name) }

func twoRegTarget() fakeTarget {
	return fakeTarget{regs: []temp.Temp{temp.Temp(-10), temp.Temp(-11)}, calleeStart: 1}
}

func TestAllocateColorsDisjointTemps(t *testing.T) {
	a, b := temp.Temp(1), temp.Temp(2)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{a}},
		assem.Oper{Assem: "li 'd0, 2", Dst: []temp.Temp{b}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{a}, Src: []temp.Temp{a, b}},
	}
	target := twoRegTarget()
	result, _, _ := AllocateInstrs(target, instrs)

	if len(result.Spilled) != 0 {
		t.Fatalf("expected no spills with 2 registers for 2 interfering temps, got %v", result.Spilled)
	}
	if result.Color[a] == result.Color[b] {
		t.Errorf("a and b interfere (both live into the add) but got the same color %v", result.Color[a])
	}
}

func TestAllocateSpillsWhenOutOfRegisters(t *testing.T) {
	// Three temps all simultaneously live (pairwise interfering) but
	// only one register available: one must spill.
	a, b, c := temp.Temp(1), temp.Temp(2), temp.Temp(3)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{a}},
		assem.Oper{Assem: "li 'd0, 2", Dst: []temp.Temp{b}},
		assem.Oper{Assem: "li 'd0, 3", Dst: []temp.Temp{c}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{a}, Src: []temp.Temp{a, b}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{a}, Src: []temp.Temp{a, c}},
	}
	target := fakeTarget{regs: []temp.Temp{temp.Temp(-10)}, calleeStart: 0}
	result, _, _ := AllocateInstrs(target, instrs)

	if len(result.Spilled) == 0 {
		t.Fatalf("expected at least one spill with only 1 register for 3 simultaneously live temps")
	}
}

func TestAllocateMoveCoalescingPrefersSameColor(t *testing.T) {
	a, b := temp.Temp(1), temp.Temp(2)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{a}},
		assem.Move{Assem: "move 'd0, 's0", Dst: b, Src: a},
		assem.Oper{Assem: "add 'd0, 's0, 's0", Dst: []temp.Temp{b}, Src: []temp.Temp{b}},
	}
	target := twoRegTarget()
	result, _, _ := AllocateInstrs(target, instrs)

	if result.Color[a] != result.Color[b] {
		t.Errorf("non-interfering move-related a, b should coalesce to the same color, got %v and %v", result.Color[a], result.Color[b])
	}
}

func TestAllocateRespectsLiveAcrossCallsColorFloor(t *testing.T) {
	saved := temp.Temp(1)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{saved}},
		assem.Oper{Assem: "jal f", Call: true},
		assem.Oper{Assem: "add 'd0, 's0, 's0", Dst: []temp.Temp{saved}, Src: []temp.Temp{saved}},
	}
	target := twoRegTarget() // calleeStart = 1: regs[0] caller-saved, regs[1] callee-saved
	result, _, _ := AllocateInstrs(target, instrs)

	if len(result.Spilled) != 0 {
		t.Fatalf("unexpected spill: %v", result.Spilled)
	}
	if result.Color[saved] != target.regs[1] {
		t.Errorf("saved is live across a call and must land in the callee-saved register, got %v", result.Color[saved])
	}
}
