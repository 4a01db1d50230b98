// Package driver orchestrates the whole backend pipeline end to end:
// Translate produces a fragment per procedure and per string literal,
// and each Proc fragment is carried independently through
// Canonicalize, Codegen, register allocation and the target's
// concrete prologue/epilogue, before every procedure's finished text
// and every string literal's data are concatenated into one program.
//
// Grounded on cmd/ralph-cc/main.go's doRTL/doLTL/doMach/doAsm: each of
// those re-runs the whole pipeline up to its own stage and prints the
// result. Compile plays the same orchestrating role, but (there is no
// separate RTL/LTL/Mach stage in this backend) carries every procedure
// through to finished assembly in a single pass, recording each
// stage's intermediate output along the way so a caller can print any
// of them without re-running anything.
package driver

import (
	"fmt"

	"github.com/tiger-lang/tigerc/pkg/absyn"
	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/canon"
	"github.com/tiger-lang/tigerc/pkg/codegen"
	"github.com/tiger-lang/tigerc/pkg/frame"
	"github.com/tiger-lang/tigerc/pkg/frame/mips"
	"github.com/tiger-lang/tigerc/pkg/ir"
	"github.com/tiger-lang/tigerc/pkg/regalloc"
	"github.com/tiger-lang/tigerc/pkg/temp"
	"github.com/tiger-lang/tigerc/pkg/translate"
)

// ProcResult is one procedure's output at every stage of the
// pipeline, kept around so a caller can inspect an intermediate stage
// without re-translating anything.
type ProcResult struct {
	Label      temp.Label
	Traced     []ir.Stmt              // after Linearize/BasicBlocks/TraceSchedule
	Selected   []assem.Instruction    // after Codegen, before allocation
	Color      map[temp.Temp]temp.Temp // final register assignment
	Spills     int                    // how many RewriteSpills rounds were needed
	Allocated  []assem.Instruction    // Selected's temps, after every spill round
	Text       []string               // final formatted assembly, prologue/epilogue included
}

// Output is a whole compiled program: one ProcResult per Tiger
// function (including the implicit top-level "main"), one formatted
// data block per string literal, and the full concatenation of both in
// fragment order.
type Output struct {
	Procs   []ProcResult
	Strings []string
	Text    []string
}

// Compile runs the whole backend over root, the body of the
// program's implicit outermost procedure. The sole Target this
// backend instantiates is mips.Target (see pkg/frame/mips);
// Translate, Codegen and register allocation take it as a
// frame.Target, while compileProc calls pkg/frame/mips directly for
// the prologue/epilogue and for register names.
func Compile(root absyn.Expr) (*Output, error) {
	target := mips.Target
	tr := translate.NewTranslator(target)
	fragments := tr.TranslateProgram(root)

	out := &Output{}
	for _, frag := range fragments {
		switch f := frag.(type) {
		case ir.Proc:
			pr, err := compileProc(target, f)
			if err != nil {
				return nil, err
			}
			out.Procs = append(out.Procs, *pr)
			out.Text = append(out.Text, pr.Text...)
		case ir.StringFrag:
			text := codegen.CodegenData(f)
			out.Strings = append(out.Strings, text)
			out.Text = append(out.Text, text)
		default:
			return nil, fmt.Errorf("driver: unknown fragment variant %T", frag)
		}
	}
	return out, nil
}

// compileProc carries one procedure through Canonicalize, Codegen and
// register allocation — looping AllocateInstrs/RewriteSpills until
// every temp has a physical register or memory slot — then wraps the
// result with the target's concrete prologue and epilogue.
//
// Liveness, interference and allocation all run once per procedure
// and never see another procedure's instructions: ProcEntryExit3's
// body ends in a jump through $ra, which would otherwise look like
// straight-line fall-through into whatever procedure's prologue came
// next in one flat instruction list.
func compileProc(target frame.Target, proc ir.Proc) (*ProcResult, error) {
	f, ok := proc.Frame.(*frame.Frame)
	if !ok {
		return nil, fmt.Errorf("driver: Proc fragment carries a %T, not *frame.Frame", proc.Frame)
	}
	// Body already embeds temps Translate minted up to NextTemp (formal
	// and escaping-local temps, if/Cx result temps, ...); Codegen's own
	// scratch temps have to start above all of them or they'd alias an
	// already-live temp from Body.
	supply := temp.NewSupplyFrom(proc.NextTemp, 1)

	linear := canon.Linearize(proc.Body, supply)
	blocks, done := canon.BasicBlocks(linear, supply)
	traced := canon.TraceSchedule(blocks, done, supply)

	selected := codegen.Codegen(target, traced, supply)
	instrs := mips.ProcEntryExit2(selected)

	var result *regalloc.AllocationResult
	spillRounds := 0
	for {
		var err error
		result, instrs, err = allocateOnce(target, instrs, f, supply)
		if err != nil {
			return nil, err
		}
		if len(result.Spilled) == 0 {
			break
		}
		spillRounds++
	}

	saved := mips.SavedCalleeRegisters(result.Color)
	withPrologue := mips.ProcEntryExit3(f.Name(), f.Size(), saved, instrs)

	regName := func(t temp.Temp) string {
		if r, ok := result.Color[t]; ok {
			return mips.Format(r)
		}
		return mips.Format(t)
	}
	text := make([]string, 0, len(withPrologue))
	for _, inst := range withPrologue {
		text = append(text, assem.Format(inst, regName))
	}

	return &ProcResult{
		Label:     f.Name(),
		Traced:    traced,
		Selected:  selected,
		Color:     result.Color,
		Spills:    spillRounds,
		Allocated: instrs,
		Text:      text,
	}, nil
}

// allocateOnce runs one allocation pass; if it leaves anything
// spilled, it rewrites instrs (via RewriteSpills) so the caller can
// try again. When nothing spilled, the returned instruction list is
// the one the returned AllocationResult was computed against;
// otherwise it is the rewritten list, which that result does not
// cover.
func allocateOnce(target frame.Target, instrs []assem.Instruction, f *frame.Frame, supply *temp.Supply) (*regalloc.AllocationResult, []assem.Instruction, error) {
	result, _, _ := regalloc.AllocateInstrs(target, instrs)
	if len(result.Spilled) == 0 {
		return result, instrs, nil
	}
	return result, regalloc.RewriteSpills(target, instrs, result.Spilled, f, supply), nil
}
