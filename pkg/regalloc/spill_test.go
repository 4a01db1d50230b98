package regalloc

import (
	"testing"

	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

func TestRewriteSpillsInsertsLoadsAndStoresAndConverges(t *testing.T) {
	a, b, c := temp.Temp(1), temp.Temp(2), temp.Temp(3)
	instrs := []assem.Instruction{
		assem.Oper{Assem: "li 'd0, 1", Dst: []temp.Temp{a}},
		assem.Oper{Assem: "li 'd0, 2", Dst: []temp.Temp{b}},
		assem.Oper{Assem: "li 'd0, 3", Dst: []temp.Temp{c}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{a}, Src: []temp.Temp{a, b}},
		assem.Oper{Assem: "add 'd0, 's0, 's1", Dst: []temp.Temp{a}, Src: []temp.Temp{a, c}},
	}
	// Three mutually-interfering temps over a two-register target:
	// exactly one must spill, and the other two fit once it's out of
	// the way.
	target := twoRegTarget()
	result, _, _ := AllocateInstrs(target, instrs)
	if len(result.Spilled) == 0 {
		t.Fatalf("setup invariant broken: expected a spill to exercise the rewrite")
	}

	supply := temp.NewSupply()
	f := frame.NewFrame(target, temp.NamedLabel("f"), nil, supply)
	rewritten := RewriteSpills(target, instrs, result.Spilled, f, supply)

	if len(rewritten) <= len(instrs) {
		t.Fatalf("expected RewriteSpills to grow the instruction list with load/store pairs, got %d from %d", len(rewritten), len(instrs))
	}

	// The rewritten list must no longer mention any spilled temp
	// directly; allocation on it should need no further spilling.
	result2, _, _ := AllocateInstrs(target, rewritten)
	for t2 := range result2.Spilled {
		if result.Spilled.Contains(t2) {
			t.Errorf("rewritten instruction list still spills original temp %v", t2)
		}
	}
}
