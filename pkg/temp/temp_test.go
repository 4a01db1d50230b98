package temp

import "testing"

func TestSupplyNewTempIsMonotonicAndDistinct(t *testing.T) {
	s := NewSupply()
	a := s.NewTemp()
	b := s.NewTemp()
	if a == b {
		t.Fatalf("expected two distinct temps, got %v and %v", a, b)
	}
	if a.String() != "t1" || b.String() != "t2" {
		t.Errorf("got %q, %q; want t1, t2", a.String(), b.String())
	}
}

func TestSupplyNewLabelDefaultsToLPrefix(t *testing.T) {
	s := NewSupply()
	l := s.NewLabel()
	if l.String() != "L1" {
		t.Errorf("NewLabel().String() = %q, want L1", l.String())
	}
}

func TestSupplyNewNamedUsesGivenPrefix(t *testing.T) {
	s := NewSupply()
	l := s.NewNamed("while")
	if l.String() != "while1" {
		t.Errorf("NewNamed(\"while\").String() = %q, want while1", l.String())
	}
}

func TestNamedLabelPrintsJustItsName(t *testing.T) {
	l := NamedLabel("main")
	if l.String() != "main" {
		t.Errorf("NamedLabel(\"main\").String() = %q, want main", l.String())
	}
}

func TestTempPrecoloredIsNonPositive(t *testing.T) {
	if !Temp(0).Precolored() {
		t.Error("Temp(0).Precolored() = false, want true")
	}
	if !Temp(-3).Precolored() {
		t.Error("Temp(-3).Precolored() = false, want true")
	}
	if Temp(1).Precolored() {
		t.Error("Temp(1).Precolored() = true, want false")
	}
}

func TestSupplyFromContinuesHighWaterMarks(t *testing.T) {
	first := NewSupply()
	first.NewTemp()
	first.NewTemp()
	first.NewLabel()
	nextTemp, nextLabel := first.HighWaterMarks()

	second := NewSupplyFrom(1, nextLabel)
	if got := second.NewLabel().String(); got != "L2" {
		t.Errorf("second Supply's first label = %q, want L2 (continuing from the first Supply)", got)
	}
	if second.NewTemp().String() != "t1" {
		t.Error("second Supply's temp counter should restart at 1, independent of nextTemp")
	}
	_ = nextTemp
}
