// Package verify implements the constraint checker for staged plans.
//
// The checker reads the dependency multisets and consumption states of a
// Connective's outputs and decides whether the declared usage discipline
// holds. It never forces a Ref: verification is side-effect-free, and a
// rejected plan has executed nothing.
//
// Two orthogonal constraint families are checked:
//
//   - Horizontal usage counting: the ForEach multiplicity is applied to
//     each output's dependency multiset individually, and the ForAll
//     multiplicity to the concatenation across all outputs.
//   - Vertical consumption: the consumption policy requires outputs to be
//     finalized (state consumed) when the entry point demands it.
//
// Failures are reported as *plan.Violation with a code naming the exact
// constraint that broke, plus which output and ordinal were involved.
package verify
