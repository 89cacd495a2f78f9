package plan

// Connective is a named grouping of output Refs together with the two
// declared multiplicities: ForAll applies to the combined dependency
// multiset across all outputs jointly, ForEach to each output individually.
//
// A Connective is pure data; it performs no checking itself.
type Connective struct {
	Outputs []*Ref
	ForAll  Multiplicity
	ForEach Multiplicity
}

// Balanced is the default contract: every input used somewhere
// (ForAll-Relevant), no input duplicated within one output (ForEach-Affine).
func Balanced(outputs ...*Ref) Connective {
	return Connective{Outputs: outputs, ForAll: Relevant, ForEach: Affine}
}

// EachLinear requires each output alone to be exactly-once-linear, with no
// joint constraint across outputs.
func EachLinear(outputs ...*Ref) Connective {
	return Connective{Outputs: outputs, ForAll: Unrestricted, ForEach: Linear}
}

// AffineOnly applies the at-most-once component both jointly and per output.
func AffineOnly(outputs ...*Ref) Connective {
	return Connective{Outputs: outputs, ForAll: Affine, ForEach: Affine}
}

// RelevantOnly applies the at-least-once component both jointly and
// per output.
func RelevantOnly(outputs ...*Ref) Connective {
	return Connective{Outputs: outputs, ForAll: Relevant, ForEach: Relevant}
}

// Custom builds a Connective with explicit multiplicities.
func Custom(forAll, forEach Multiplicity, outputs ...*Ref) Connective {
	return Connective{Outputs: outputs, ForAll: forAll, ForEach: forEach}
}

// CombinedDeps returns the concatenation of all output dependency multisets
// in output order. When collapse is true, each output's multiset is
// deduplicated (order-preserving, first occurrence wins) before
// concatenation; this is the LinearDistinct reading of the joint check.
func (c Connective) CombinedDeps(collapse bool) []int {
	var combined []int
	for _, out := range c.Outputs {
		if collapse {
			combined = append(combined, dedup(out.Deps())...)
		} else {
			combined = out.AppendDeps(combined)
		}
	}
	return combined
}

// dedup removes duplicate ordinals, keeping first occurrences in order.
func dedup(deps []int) []int {
	seen := make(map[int]bool, len(deps))
	out := deps[:0]
	for _, d := range deps {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	return out
}
