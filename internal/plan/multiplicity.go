package plan

import "fmt"

// Multiplicity is a usage policy applied to a dependency multiset.
//
// The four substructural policies are Linear (exactly once), Affine (at most
// once), Relevant (at least once), and Unrestricted (no constraint).
//
// LinearDistinct is a fifth, named variant used only for the combined
// check across all outputs: each output's dependencies are deduplicated
// before concatenation, so an input reaching two different outputs is
// permitted while a duplicate within a single output still violates.
type Multiplicity int

const (
	Unrestricted Multiplicity = iota
	Affine
	Relevant
	Linear
	LinearDistinct
)

// RequiresAffine reports whether the policy includes the at-most-once
// (duplicate-free) component.
func (m Multiplicity) RequiresAffine() bool {
	return m == Affine || m == Linear || m == LinearDistinct
}

// RequiresRelevant reports whether the policy includes the at-least-once
// (full-coverage) component.
func (m Multiplicity) RequiresRelevant() bool {
	return m == Relevant || m == Linear || m == LinearDistinct
}

// CollapsesPerOutput reports whether each output's dependencies are
// deduplicated before the combined check.
func (m Multiplicity) CollapsesPerOutput() bool {
	return m == LinearDistinct
}

// String returns the lowercase name used in scenarios and storage.
func (m Multiplicity) String() string {
	switch m {
	case Unrestricted:
		return "unrestricted"
	case Affine:
		return "affine"
	case Relevant:
		return "relevant"
	case Linear:
		return "linear"
	case LinearDistinct:
		return "linear_distinct"
	default:
		return fmt.Sprintf("multiplicity(%d)", int(m))
	}
}

// ParseMultiplicity parses the string form produced by String.
func ParseMultiplicity(s string) (Multiplicity, error) {
	switch s {
	case "unrestricted":
		return Unrestricted, nil
	case "affine":
		return Affine, nil
	case "relevant":
		return Relevant, nil
	case "linear":
		return Linear, nil
	case "linear_distinct":
		return LinearDistinct, nil
	default:
		return 0, fmt.Errorf("unknown multiplicity %q", s)
	}
}
