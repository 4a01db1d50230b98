// Command tigerc is the driver CLI for the Tiger compiler backend.
// There is no lexer, parser or type checker in this repository, so it
// compiles one of a small set of named, built-in example programs
// rather than reading Tiger source from a file.
//
// Grounded on cmd/ralph-cc/main.go's cobra root command, its
// CompCert-style single-dash debug-flag normalization
// (normalizeFlags), and its per-stage `-d<stage>` dump flags.
package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tiger-lang/tigerc/internal/driver"
	"github.com/tiger-lang/tigerc/internal/scenario"
	"github.com/tiger-lang/tigerc/pkg/assem"
	"github.com/tiger-lang/tigerc/pkg/temp"
)

var version = "0.1.0"

// Debug flags for dumping one pipeline stage instead of final assembly.
var (
	dTr    bool // post-Translate tree IR
	dCanon bool // post-canonicalize (linearize/basic-blocks/trace-schedule)
	dCg    bool // post-codegen assembly, virtual temps still unresolved
	dRa    bool // post-register-allocation assembly
)

func main() {
	os.Exit(run())
}

func run() int {
	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	rootCmd.SetArgs(normalizeFlags(os.Args[1:]))
	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

// debugFlagNames lists every debug flag that should also accept
// CompCert-style single-dash spelling (-dtr as well as --dtr).
var debugFlagNames = []string{"dtr", "dcanon", "dcg", "dra"}

func normalizeFlags(args []string) []string {
	result := make([]string, len(args))
	for i, arg := range args {
		result[i] = arg
		for _, name := range debugFlagNames {
			if arg == "-"+name {
				result[i] = "--" + name
				break
			}
		}
	}
	return result
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tigerc [program]",
		Short: "tigerc compiles a built-in Tiger example program to MIPS assembly",
		Long: `tigerc drives the Tiger compiler backend: Translate, Canonicalize,
Codegen and Register Allocation, over one of a small set of named
built-in example programs (run with no arguments to list them).`,
		Version:       version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				listPrograms(out)
				return nil
			}
			name := args[0]
			switch {
			case dTr:
				return doTranslate(name, out, errOut)
			case dCanon:
				return doCanonicalize(name, out, errOut)
			case dCg:
				return doCodegen(name, out, errOut)
			case dRa:
				return doRegalloc(name, out, errOut)
			default:
				return doFull(name, out)
			}
		},
	}

	rootCmd.Flags().BoolVar(&dTr, "dtr", false, "list the fragments Translate produced")
	rootCmd.Flags().BoolVar(&dCanon, "dcanon", false, "print each procedure's statement count after canonicalization")
	rootCmd.Flags().BoolVar(&dCg, "dcg", false, "dump assembly after Codegen, before allocation")
	rootCmd.Flags().BoolVar(&dRa, "dra", false, "dump assembly after register allocation")

	return rootCmd
}

func listPrograms(out io.Writer) {
	names := make([]string, 0, len(scenario.Programs))
	for name := range scenario.Programs {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Fprintln(out, "available programs:")
	for _, name := range names {
		fmt.Fprintf(out, "  %s\n", name)
	}
}

// doFull compiles name end to end and prints the final assembly text.
func doFull(name string, out io.Writer) error {
	build, ok := scenario.Programs[name]
	if !ok {
		return fmt.Errorf("tigerc: unknown program %q (run with no arguments to list them)", name)
	}
	result, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("tigerc: compiling %q: %w", name, err)
	}
	fmt.Fprintln(out, strings.Join(result.Text, "\n"))
	return nil
}

// doTranslate reports one procedure per Translate fragment. The tree
// IR Translate produced is consumed by Canonicalize before Compile
// returns, so -dtr reports fragment shape rather than raw Tree nodes;
// -dcanon is the first stage whose intermediate form Compile retains.
func doTranslate(name string, out, errOut io.Writer) error {
	build, ok := scenario.Programs[name]
	if !ok {
		return fmt.Errorf("tigerc: unknown program %q", name)
	}
	result, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("tigerc: compiling %q: %w", name, err)
	}
	for _, proc := range result.Procs {
		fmt.Fprintf(out, "%s: 1 procedure fragment\n", proc.Label)
	}
	for _, s := range result.Strings {
		fmt.Fprintf(out, "string fragment: %s\n", s)
	}
	return nil
}

// doCanonicalize prints, for each procedure, how many statements are
// left after Linearize/BasicBlocks/TraceSchedule.
func doCanonicalize(name string, out, errOut io.Writer) error {
	build, ok := scenario.Programs[name]
	if !ok {
		return fmt.Errorf("tigerc: unknown program %q", name)
	}
	result, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("tigerc: compiling %q: %w", name, err)
	}
	for _, proc := range result.Procs {
		fmt.Fprintf(out, "%s: %d canonical statements\n", proc.Label, len(proc.Traced))
	}
	return nil
}

// doCodegen prints each procedure's assembly immediately after
// Codegen, before register allocation: virtual temps (t<n>) appear
// verbatim since no color map has been computed yet.
func doCodegen(name string, out, errOut io.Writer) error {
	build, ok := scenario.Programs[name]
	if !ok {
		return fmt.Errorf("tigerc: unknown program %q", name)
	}
	result, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("tigerc: compiling %q: %w", name, err)
	}
	for _, proc := range result.Procs {
		fmt.Fprintf(out, "; %s (pre-allocation)\n", proc.Label)
		for _, inst := range proc.Selected {
			fmt.Fprintln(out, assem.Format(inst, temp.Temp.String))
		}
	}
	return nil
}

// doRegalloc prints each procedure's assembly after register
// allocation, with physical register names already substituted.
func doRegalloc(name string, out, errOut io.Writer) error {
	build, ok := scenario.Programs[name]
	if !ok {
		return fmt.Errorf("tigerc: unknown program %q", name)
	}
	result, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("tigerc: compiling %q: %w", name, err)
	}
	for _, proc := range result.Procs {
		fmt.Fprintf(out, "; %s (%d spill round(s))\n", proc.Label, proc.Spills)
		fmt.Fprintln(out, strings.Join(proc.Text, "\n"))
	}
	return nil
}
