package codegen

import (
	"fmt"
	"strings"

	"github.com/tiger-lang/tigerc/pkg/ir"
)

// CodegenData lowers a string-literal fragment to the assembly text
// for a length-prefixed Tiger string constant (a string value is a
// pointer to [length][bytes...], not a NUL-terminated C string), in
// MIPS label/.word/.ascii form (no section directive is emitted).
func CodegenData(frag ir.StringFrag) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:\n", frag.Label.String())
	fmt.Fprintf(&b, "\t.word %d\n", len(frag.Value))
	fmt.Fprintf(&b, "\t.ascii %q\n", frag.Value)
	return b.String()
}
