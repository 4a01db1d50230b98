package scenario

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tiger-lang/tigerc/internal/driver"
)

// Spec is one end-to-end scenario: compile Program (a key into
// Programs) and check its assembly text against Expect/ExpectOrder/
// ExpectUnique/ExpectNot, exactly the fields
// cmd/ralph-cc/integration_test.go's E2EAsmTestSpec checks against
// real compiled output.
type Spec struct {
	Name         string   `yaml:"name"`
	Program      string   `yaml:"program"`
	Expect       []string `yaml:"expect"`
	ExpectOrder  []string `yaml:"expect_order"`
	ExpectUnique []string `yaml:"expect_unique"`
	ExpectNot    []string `yaml:"expect_not"`
	Skip         string   `yaml:"skip,omitempty"`
}

// File is the top-level shape of testdata/scenarios.yaml.
type File struct {
	Scenarios []Spec `yaml:"scenarios"`
}

// Load decodes a scenarios.yaml document.
func Load(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("scenario: parsing yaml: %w", err)
	}
	return &f, nil
}

// Run compiles spec's named program and checks every expectation
// against the concatenated final assembly text, returning the first
// violation found (nil if every expectation holds).
func Run(spec Spec) error {
	build, ok := Programs[spec.Program]
	if !ok {
		return fmt.Errorf("scenario %q: unknown program %q", spec.Name, spec.Program)
	}
	out, err := driver.Compile(build())
	if err != nil {
		return fmt.Errorf("scenario %q: compile: %w", spec.Name, err)
	}
	text := strings.Join(out.Text, "\n")

	for _, exp := range spec.Expect {
		if !strings.Contains(text, exp) {
			return fmt.Errorf("scenario %q: expected output to contain %q\ngot:\n%s", spec.Name, exp, text)
		}
	}

	lastIdx := -1
	for _, exp := range spec.ExpectOrder {
		idx := strings.Index(text, exp)
		if idx == -1 {
			return fmt.Errorf("scenario %q: expected output to contain %q for order check\ngot:\n%s", spec.Name, exp, text)
		}
		if idx <= lastIdx {
			return fmt.Errorf("scenario %q: expected %q to appear after the previous pattern (position %d vs %d)", spec.Name, exp, idx, lastIdx)
		}
		lastIdx = idx
	}

	for _, exp := range spec.ExpectUnique {
		if count := strings.Count(text, exp); count != 1 {
			return fmt.Errorf("scenario %q: expected %q exactly once, found %d\ngot:\n%s", spec.Name, exp, count, text)
		}
	}

	for _, exp := range spec.ExpectNot {
		if strings.Contains(text, exp) {
			return fmt.Errorf("scenario %q: expected output NOT to contain %q\ngot:\n%s", spec.Name, exp, text)
		}
	}

	return nil
}
