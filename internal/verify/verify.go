package verify

import "github.com/lineal-dev/lineal/internal/plan"

// Policy is the per-entry-point configuration beyond the Connective's own
// multiplicities: whether output count must equal input count, and which
// consumption discipline the outputs must satisfy.
type Policy struct {
	// FixedArity requires len(outputs) == nInputs.
	FixedArity bool

	// Consumption is the vertical policy. Linear and Relevant require
	// every output consumed. Affine needs no verifier-time check: the
	// at-most-once half is enforced during staging by the consume
	// transition rule. Unrestricted checks nothing.
	Consumption plan.Multiplicity
}

// Check verifies a Connective against n inputs under the given policy.
// Returns nil on success or the first *plan.Violation found.
//
// Check order: arity, per-output (ForEach), combined (ForAll), consumption.
func Check(conn plan.Connective, nInputs int, pol Policy) error {
	if pol.FixedArity && len(conn.Outputs) != nInputs {
		return plan.NewArityMismatch(nInputs, len(conn.Outputs))
	}

	for i, out := range conn.Outputs {
		if err := checkEach(i, out.Deps(), nInputs, conn.ForEach); err != nil {
			return err
		}
	}

	if err := checkAll(conn, nInputs); err != nil {
		return err
	}

	if pol.Consumption.RequiresRelevant() {
		for i, out := range conn.Outputs {
			if out.State() != plan.StateConsumed {
				return plan.NewUnconsumedOutput(i)
			}
		}
	}

	return nil
}

// checkEach applies a multiplicity to a single output's dependency multiset.
func checkEach(output int, deps []int, nInputs int, m plan.Multiplicity) error {
	if m.RequiresAffine() {
		if ord, ok := duplicateOrdinal(deps); ok {
			return plan.NewForEachAffine(output, ord)
		}
	}
	if m.RequiresRelevant() {
		if ord, ok := missingOrdinal(deps, nInputs); ok {
			return plan.NewForEachRelevant(output, ord)
		}
	}
	return nil
}

// checkAll applies the ForAll multiplicity to the combined multiset across
// all outputs. LinearDistinct collapses each output's deps first; every
// other policy reads the raw concatenation.
func checkAll(conn plan.Connective, nInputs int) error {
	m := conn.ForAll
	if !m.RequiresAffine() && !m.RequiresRelevant() {
		return nil
	}

	combined := conn.CombinedDeps(m.CollapsesPerOutput())

	if m.RequiresAffine() {
		if ord, ok := duplicateOrdinal(combined); ok {
			return plan.NewForAllAffine(ord)
		}
	}
	if m.RequiresRelevant() {
		if ord, ok := missingOrdinal(combined, nInputs); ok {
			return plan.NewForAllRelevant(ord)
		}
	}
	return nil
}

// duplicateOrdinal returns the first ordinal occurring more than once.
func duplicateOrdinal(deps []int) (int, bool) {
	seen := make(map[int]bool, len(deps))
	for _, d := range deps {
		if seen[d] {
			return d, true
		}
		seen[d] = true
	}
	return 0, false
}

// missingOrdinal returns the lowest ordinal in [0, n) absent from deps.
func missingOrdinal(deps []int, n int) (int, bool) {
	present := make(map[int]bool, len(deps))
	for _, d := range deps {
		present[d] = true
	}
	for ord := 0; ord < n; ord++ {
		if !present[ord] {
			return ord, true
		}
	}
	return 0, false
}
