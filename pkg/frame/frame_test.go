package frame_test

import (
	"testing"

	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/frame/mips"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

func TestNewFrameEscapingFormalGoesToMemoryNonEscapingToRegister(t *testing.T) {
	supply := temp.NewSupply()
	f := frame.NewFrame(mips.Target, temp.NamedLabel("f"), []bool{true, false}, supply)
	formals := f.Formals()
	if len(formals) != 2 {
		t.Fatalf("expected 2 formals, got %d", len(formals))
	}
	if _, ok := formals[0].(frame.InMem); !ok {
		t.Errorf("escaping formal should be InMem, got %T", formals[0])
	}
	if _, ok := formals[1].(frame.InReg); !ok {
		t.Errorf("non-escaping formal should be InReg, got %T", formals[1])
	}
}

func TestAllocLocalGrowsFrameSizeOnlyWhenEscaping(t *testing.T) {
	supply := temp.NewSupply()
	f := frame.NewFrame(mips.Target, temp.NamedLabel("f"), nil, supply)
	if f.Size() != 0 {
		t.Fatalf("fresh frame should have size 0, got %d", f.Size())
	}
	f.AllocLocal(true, supply)
	if f.Size() != mips.Target.WordSize() {
		t.Errorf("one escaping local should grow size to one word, got %d", f.Size())
	}
	f.AllocLocal(true, supply)
	if f.Size() != 2*mips.Target.WordSize() {
		t.Errorf("two escaping locals should grow size to two words, got %d", f.Size())
	}
	f.AllocLocal(false, supply)
	if f.Size() != 2*mips.Target.WordSize() {
		t.Errorf("a non-escaping local should not grow frame size, got %d", f.Size())
	}
	if len(f.Locals()) != 3 {
		t.Errorf("expected 3 locals recorded regardless of escaping, got %d", len(f.Locals()))
	}
}

func TestFrameNameAndTarget(t *testing.T) {
	supply := temp.NewSupply()
	f := frame.NewFrame(mips.Target, temp.NamedLabel("f"), nil, supply)
	if f.Name().String() != "f" {
		t.Errorf("Name() = %q, want \"f\"", f.Name().String())
	}
	if f.Target() != mips.Target {
		t.Errorf("Target() did not return the target the frame was built with")
	}
}

func TestOutermostHasNoFormalsAndIsNamedMain(t *testing.T) {
	counter := frame.NewLevelCounter()
	supply := temp.NewSupply()
	outer := frame.Outermost(mips.Target, counter, supply)
	if len(outer.Frame().Formals()) != 0 {
		t.Errorf("Outermost should have no formals, got %+v", outer.Frame().Formals())
	}
	if outer.Frame().Name().String() != "main" {
		t.Errorf("Outermost frame name = %q, want \"main\"", outer.Frame().Name().String())
	}
	if outer.Parent() != nil {
		t.Errorf("Outermost should have no parent")
	}
}

func TestNewLevelPrependsStaticLinkFormal(t *testing.T) {
	counter := frame.NewLevelCounter()
	supply := temp.NewSupply()
	outer := frame.Outermost(mips.Target, counter, supply)
	lvl := frame.NewLevel(outer, temp.NamedLabel("g"), []bool{false}, counter, supply)

	all := lvl.Frame().Formals()
	if len(all) != 2 {
		t.Fatalf("expected static link + 1 user formal, got %d: %+v", len(all), all)
	}
	if _, ok := all[0].(frame.InMem); !ok {
		t.Errorf("static link must always escape to memory, got %T", all[0])
	}
	user := lvl.Formals()
	if len(user) != 1 {
		t.Errorf("Level.Formals() should elide the static link, got %d formals", len(user))
	}
	if lvl.StaticLink() != all[0] {
		t.Errorf("StaticLink() should be the frame's formal #0")
	}
}

func TestLevelEqualComparesByIdNotStructure(t *testing.T) {
	counter := frame.NewLevelCounter()
	supply := temp.NewSupply()
	outer := frame.Outermost(mips.Target, counter, supply)
	a := frame.NewLevel(outer, temp.NamedLabel("dup"), nil, counter, supply)
	b := frame.NewLevel(outer, temp.NamedLabel("dup"), nil, counter, supply)

	if a.Equal(b) {
		t.Errorf("two distinct NewLevel calls should never be Equal, even with identical names")
	}
	if !a.Equal(a) {
		t.Errorf("a level should always equal itself")
	}
}

func TestLevelAllocLocalDelegatesToItsFrame(t *testing.T) {
	counter := frame.NewLevelCounter()
	supply := temp.NewSupply()
	outer := frame.Outermost(mips.Target, counter, supply)
	lvl := frame.NewLevel(outer, temp.NamedLabel("g"), nil, counter, supply)

	access := lvl.AllocLocal(true, supply)
	if _, ok := access.(frame.InMem); !ok {
		t.Errorf("expected an escaping local to be InMem, got %T", access)
	}
	if len(lvl.Frame().Locals()) != 1 {
		t.Errorf("expected the local to be recorded on the level's frame")
	}
}
