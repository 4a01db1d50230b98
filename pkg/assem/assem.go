// Package assem defines the target instruction representation
// Codegen emits and Register Allocation consumes: one of three
// shapes (Oper, Move, Label), each carrying an assembly template
// string alongside the temps/labels Format later substitutes into
// it.
//
// Grounded on pkg/mach/ast.go's Instruction marker-method idiom, but
// collapsed from a one-struct-per-opcode enumeration
// (Mop/Mload/Mstore/Mcall/...) down to a fixed three-case shape: a
// target-agnostic backend cannot enumerate a concrete target's
// opcodes in its own IR, so Codegen instead stores the target's own
// assembly text directly on each Oper.
package assem

import (
	"strconv"
	"strings"

	"github.com/tiger-lang/tigerc/pkg/temp"
)

// Instruction is one of Oper, Move, or Label.
type Instruction interface {
	implInstruction()
	// Dsts, Srcs and Jumps expose the temps/labels register
	// allocation and canonicalization-adjacent passes need without
	// type-switching on every call site.
	Dsts() []temp.Temp
	Srcs() []temp.Temp
	Jumps() []temp.Label
}

// Oper is a single non-move machine instruction: Assem is its
// assembly template, Dst/Src list the temps it defines/uses (in the
// order the template's 'd<n>/'s<n> placeholders reference them), and
// Jump lists every label it might transfer control to (nil for a
// straight-line instruction that just falls through).
type Oper struct {
	Assem string
	Dst   []temp.Temp
	Src   []temp.Temp
	Jump  []temp.Label
	// Call marks an instruction that transfers control to another
	// procedure and returns, for register allocation's benefit: every
	// temp live across a Call must end up in a callee-saved register
	// or be spilled, since the callee is free to clobber Dst.
	Call bool
}

// Move is a register-to-register (or register-to/from-memory, via
// the target's own move-like assembly text) copy. Keeping Move
// distinct from Oper is what lets register allocation coalesce it
// away for free when Dst and Src end up assigned the same color.
type Move struct {
	Assem string
	Dst   temp.Temp
	Src   temp.Temp
}

// LabelInst marks a jump target; Assem is usually just "<name>:".
type LabelInst struct {
	Assem string
	Lbl   temp.Label
}

func (Oper) implInstruction()      {}
func (Move) implInstruction()      {}
func (LabelInst) implInstruction() {}

func (o Oper) Dsts() []temp.Temp       { return o.Dst }
func (o Oper) Srcs() []temp.Temp       { return o.Src }
func (o Oper) Jumps() []temp.Label     { return o.Jump }
func (m Move) Dsts() []temp.Temp       { return []temp.Temp{m.Dst} }
func (m Move) Srcs() []temp.Temp       { return []temp.Temp{m.Src} }
func (m Move) Jumps() []temp.Label     { return nil }
func (l LabelInst) Dsts() []temp.Temp   { return nil }
func (l LabelInst) Srcs() []temp.Temp   { return nil }
func (l LabelInst) Jumps() []temp.Label { return nil }

// RegisterName resolves a temp to the text Format should print for
// it: a physical register's mnemonic, or a virtual temp's t<n> name
// if allocation hasn't run yet (only expected in pre-allocation
// debug dumps).
type RegisterName func(temp.Temp) string

// Format substitutes an instruction's 'd<n>, 's<n> and 'j<n> template
// placeholders (Appel's own notation) with the given temp/label
// names, e.g. "add 'd0, 's0, 's1" with Dst=[t7], Src=[t3,t4] and
// regName mapping each to its physical register renders
// "add $t0, $t1, $t2".
func Format(inst Instruction, regName RegisterName) string {
	switch i := inst.(type) {
	case Oper:
		return substitute(i.Assem, i.Dst, i.Src, i.Jump, regName)
	case Move:
		return substitute(i.Assem, []temp.Temp{i.Dst}, []temp.Temp{i.Src}, nil, regName)
	case LabelInst:
		return substitute(i.Assem, nil, nil, nil, regName)
	default:
		panic("assem: unknown Instruction variant")
	}
}

func substitute(tmpl string, dst, src []temp.Temp, jumps []temp.Label, regName RegisterName) string {
	var b strings.Builder
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] != '\'' || i+1 >= len(tmpl) {
			b.WriteByte(tmpl[i])
			continue
		}
		kind := tmpl[i+1]
		if kind != 'd' && kind != 's' && kind != 'j' {
			b.WriteByte(tmpl[i])
			continue
		}
		j := i + 2
		start := j
		for j < len(tmpl) && tmpl[j] >= '0' && tmpl[j] <= '9' {
			j++
		}
		if j == start {
			b.WriteByte(tmpl[i])
			continue
		}
		n, _ := strconv.Atoi(tmpl[start:j])
		switch kind {
		case 'd':
			b.WriteString(regName(dst[n]))
		case 's':
			b.WriteString(regName(src[n]))
		case 'j':
			b.WriteString(jumps[n].String())
		}
		i = j - 1
	}
	return b.String()
}
