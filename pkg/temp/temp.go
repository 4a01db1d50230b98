// Package temp issues fresh temporaries and labels for the backend.
// A Temp is an opaque virtual register; a Label is an opaque code
// address. Both are compared by identity (their integer id), never
// by any derived meaning.
package temp

import "fmt"

// Temp is a virtual register. The zero value is not a valid temp;
// temps are minted only through a Supply.
type Temp int

// String renders the temp the way an Instruction template expects,
// e.g. "t7".
func (t Temp) String() string {
	return fmt.Sprintf("t%d", int(t))
}

// Precolored reports whether t names a physical register rather than
// a value minted by a Supply. Every Supply starts numbering at 1, so
// a target reserves the non-positive range for its fixed register
// identities (see pkg/frame/mips's zeroID..raID block); register
// allocation skips simplifying, spilling or recoloring any such temp.
func (t Temp) Precolored() bool { return t <= 0 }

// Label is an opaque code address, optionally created with a debug
// prefix for readability in dumps.
type Label struct {
	id     int
	prefix string
	fixed  bool // true for a NamedLabel with no numeric suffix
}

// String renders the label as "<prefix><id>", defaulting the prefix
// to "L" when none was supplied. A NamedLabel prints just its name.
func (l Label) String() string {
	if l.fixed {
		return l.prefix
	}
	prefix := l.prefix
	if prefix == "" {
		prefix = "L"
	}
	return fmt.Sprintf("%s%d", prefix, l.id)
}

// NamedLabel builds a fixed, well-known label outside any Supply's
// counter, for symbols whose text must match a fixed external name
// (e.g. a frame's entry label, or a runtime routine).
func NamedLabel(name string) Label {
	return Label{prefix: name, fixed: true}
}

// Supply mints fresh Temps and Labels from a monotonic counter. Each
// procedure gets its own Supply, seeded deterministically, so that
// repeated compilations of identical input produce identical temp and
// label numbering.
type Supply struct {
	nextTemp  int
	nextLabel int
}

// NewSupply creates a fresh Supply with counters starting at 1, so
// the zero Temp/Label never collide with a minted one.
func NewSupply() *Supply {
	return &Supply{nextTemp: 1, nextLabel: 1}
}

// NewSupplyFrom creates a fresh Supply whose counters start at
// nextTemp and nextLabel, e.g. a prior Supply's high-water marks.
// Translate uses it to carry its label counter from one procedure's
// Supply to the next while temps restart at 1 in every procedure;
// the driver uses it to start a procedure's codegen temps above the
// ones Translate minted for it.
func NewSupplyFrom(nextTemp, nextLabel int) *Supply {
	return &Supply{nextTemp: nextTemp, nextLabel: nextLabel}
}

// HighWaterMarks returns the next-to-be-issued temp and label
// counters, for seeding the following procedure's Supply via
// NewSupplyFrom.
func (s *Supply) HighWaterMarks() (nextTemp, nextLabel int) {
	return s.nextTemp, s.nextLabel
}

// NewTemp mints a fresh virtual register.
func (s *Supply) NewTemp() Temp {
	t := Temp(s.nextTemp)
	s.nextTemp++
	return t
}

// NewLabel mints a fresh, unprefixed label.
func (s *Supply) NewLabel() Label {
	return s.NewNamed("L")
}

// NewNamed mints a fresh label carrying the given debug prefix.
func (s *Supply) NewNamed(prefix string) Label {
	l := Label{id: s.nextLabel, prefix: prefix}
	s.nextLabel++
	return l
}
