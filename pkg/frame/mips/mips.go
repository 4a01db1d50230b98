// Package mips implements frame.Target for a MIPS-like machine: the
// textbook target for a Tiger compiler (Appel's own Frame modules
// target MIPS/Sparc), chosen over a RISC target with variable-width
// argument conventions because its fixed four-argument-register,
// explicit-$fp/$ra convention keeps Translate's static-link chasing
// and frame-offset arithmetic answerable against one simple, fully
// specified ABI (see DESIGN.md).
package mips

import "github.com/tiger-lang/tigerc/pkg/temp"

// Physical-register temps live in a disjoint, negative id range so
// they can never collide with a virtual temp minted by temp.Supply
// (which starts at 1). This mirrors the pre-colored-temp convention
// in pkg/regalloc/irc.go's precoloredParams, but gives every machine
// register a fixed identity up front instead of assigning colors only
// to the parameters that happen to need one.
const (
	zeroID = -(iota + 1)
	atID
	v0ID
	v1ID
	a0ID
	a1ID
	a2ID
	a3ID
	t0ID
	t1ID
	t2ID
	t3ID
	t4ID
	t5ID
	t6ID
	t7ID
	t8ID
	t9ID
	s0ID
	s1ID
	s2ID
	s3ID
	s4ID
	s5ID
	s6ID
	s7ID
	gpID
	spID
	fpID
	raID
)

var (
	zero = temp.Temp(zeroID)
	at   = temp.Temp(atID)
	v0   = temp.Temp(v0ID)
	v1   = temp.Temp(v1ID)
	a0   = temp.Temp(a0ID)
	a1   = temp.Temp(a1ID)
	a2   = temp.Temp(a2ID)
	a3   = temp.Temp(a3ID)
	t0   = temp.Temp(t0ID)
	t1   = temp.Temp(t1ID)
	t2   = temp.Temp(t2ID)
	t3   = temp.Temp(t3ID)
	t4   = temp.Temp(t4ID)
	t5   = temp.Temp(t5ID)
	t6   = temp.Temp(t6ID)
	t7   = temp.Temp(t7ID)
	t8   = temp.Temp(t8ID)
	t9   = temp.Temp(t9ID)
	s0   = temp.Temp(s0ID)
	s1   = temp.Temp(s1ID)
	s2   = temp.Temp(s2ID)
	s3   = temp.Temp(s3ID)
	s4   = temp.Temp(s4ID)
	s5   = temp.Temp(s5ID)
	s6   = temp.Temp(s6ID)
	s7   = temp.Temp(s7ID)
	gp   = temp.Temp(gpID)
	sp   = temp.Temp(spID)
	fp   = temp.Temp(fpID)
	ra   = temp.Temp(raID)
)

// RegisterName maps a physical-register temp back to its MIPS
// mnemonic, for assembly templates and dumps. Virtual (positive)
// temps are not in this table; Format falls through to temp.String().
var RegisterName = map[temp.Temp]string{
	zero: "$zero", at: "$at", v0: "$v0", v1: "$v1",
	a0: "$a0", a1: "$a1", a2: "$a2", a3: "$a3",
	t0: "$t0", t1: "$t1", t2: "$t2", t3: "$t3", t4: "$t4",
	t5: "$t5", t6: "$t6", t7: "$t7", t8: "$t8", t9: "$t9",
	s0: "$s0", s1: "$s1", s2: "$s2", s3: "$s3",
	s4: "$s4", s5: "$s5", s6: "$s6", s7: "$s7",
	gp: "$gp", sp: "$sp", fp: "$fp", ra: "$ra",
}

// target is the sole frame.Target value for this package.
type target struct{}

// Target is the shared MIPS target instance.
var Target target

const wordSize = 4

func (target) WordSize() int64   { return wordSize }
func (target) FP() temp.Temp     { return fp }
func (target) RV() temp.Temp     { return v0 }
func (target) RA() temp.Temp     { return ra }
func (target) SP() temp.Temp     { return sp }
func (target) ArgRegs() []temp.Temp { return []temp.Temp{a0, a1, a2, a3} }

func (target) CalleeSaves() []temp.Temp {
	return []temp.Temp{s0, s1, s2, s3, s4, s5, s6, s7}
}

func (target) CallerSaves() []temp.Temp {
	return []temp.Temp{t0, t1, t2, t3, t4, t5, t6, t7, t8, t9}
}

// Registers lists every general-purpose temp available to the
// allocator, caller-saved first: coloring assigns the lowest-numbered
// free color, so ordering caller-saved registers first means the
// allocator reaches for them before disturbing a callee-saved
// register a surrounding frame must otherwise spill to preserve.
func (t target) Registers() []temp.Temp {
	regs := make([]temp.Temp, 0, len(t.CallerSaves())+len(t.CalleeSaves()))
	regs = append(regs, t.CallerSaves()...)
	regs = append(regs, t.CalleeSaves()...)
	return regs
}

// FirstCalleeSaveColor is the allocator color index at which
// callee-saved registers begin, used to restrict registers live
// across a call to the callee-saved half of the palette (matching
// pkg/regalloc/irc.go assignColors' startColor logic).
func (t target) FirstCalleeSaveColor() int {
	return len(t.CallerSaves())
}

// externalCalls lists the Tiger runtime-library symbols this backend
// may reference by name. ExternalCall resolves any other name
// verbatim too, on the assumption Translate only ever asks for a name
// the runtime actually exports.
var externalCalls = map[string]string{
	"initRecord":     "initRecord",
	"initArray":      "initArray",
	"stringEqual":    "stringEqual",
	"stringCompare":  "stringCompare",
	"stringConcat":   "stringConcat",
	"print":          "print",
	"printi":         "printi",
	"flush":          "flush",
	"getChar":        "getChar",
	"ord":            "ord",
	"chr":            "chr",
	"size":           "size",
	"substring":      "substring",
	"not":            "not",
	"exit":           "exit",
	"checkIndex":     "checkIndex",
	"checkNil":       "checkNil",
}

func (target) ExternalCall(name string) temp.Label {
	if sym, ok := externalCalls[name]; ok {
		return temp.NamedLabel(sym)
	}
	return temp.NamedLabel(name)
}

// Format renders a temp as its MIPS mnemonic if it names a physical
// register, else as a plain virtual-temp name (only expected to
// appear in pre-allocation dumps; a fully register-allocated
// instruction list should have no such temps left).
func Format(t temp.Temp) string {
	if name, ok := RegisterName[t]; ok {
		return name
	}
	return t.String()
}
