package mips

import "testing"

func TestFormatKnownRegisterReturnsMnemonic(t *testing.T) {
	if got, want := Format(fp), "$fp"; got != want {
		t.Errorf("Format(fp) = %q, want %q", got, want)
	}
	if got, want := Format(ra), "$ra"; got != want {
		t.Errorf("Format(ra) = %q, want %q", got, want)
	}
}

func TestFormatUnknownTempFallsBackToTempString(t *testing.T) {
	virtual := t0 + 1000 // outside the precolored id range, stands in for a virtual temp
	if got, want := Format(virtual), virtual.String(); got != want {
		t.Errorf("Format(%v) = %q, want %q", virtual, got, want)
	}
}

func TestRegistersOrdersCallerSavesBeforeCalleeSaves(t *testing.T) {
	regs := Target.Registers()
	callers := Target.CallerSaves()
	callees := Target.CalleeSaves()
	if len(regs) != len(callers)+len(callees) {
		t.Fatalf("Registers() has %d entries, want %d", len(regs), len(callers)+len(callees))
	}
	for i, r := range callers {
		if regs[i] != r {
			t.Errorf("Registers()[%d] = %v, want caller-saved %v", i, regs[i], r)
		}
	}
	for i, r := range callees {
		if regs[len(callers)+i] != r {
			t.Errorf("Registers()[%d] = %v, want callee-saved %v", len(callers)+i, regs[len(callers)+i], r)
		}
	}
}

func TestFirstCalleeSaveColorMatchesCallerSavesLength(t *testing.T) {
	if got, want := Target.FirstCalleeSaveColor(), len(Target.CallerSaves()); got != want {
		t.Errorf("FirstCalleeSaveColor() = %d, want %d", got, want)
	}
}

func TestExternalCallKnownSymbolsMapToThemselves(t *testing.T) {
	for name, sym := range externalCalls {
		if got := Target.ExternalCall(name).String(); got != sym {
			t.Errorf("ExternalCall(%q) = %q, want %q", name, got, sym)
		}
	}
}

func TestExternalCallUnknownNameFallsBackVerbatim(t *testing.T) {
	if got, want := Target.ExternalCall("mystery").String(), "mystery"; got != want {
		t.Errorf("ExternalCall(\"mystery\") = %q, want %q", got, want)
	}
}

func TestArgRegsHasFourEntries(t *testing.T) {
	if got := len(Target.ArgRegs()); got != 4 {
		t.Errorf("ArgRegs() has %d entries, want 4 ($a0-$a3)", got)
	}
}
