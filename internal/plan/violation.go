package plan

import (
	"errors"
	"fmt"
)

// Violation represents a constraint failure detected during staging or
// verification. Every Violation is raised before any operation executes,
// so a failed plan is always recoverable: reject it and nothing has run.
//
// Violation lives in plan (not verify) because staging, lifting, and
// verification all raise kinds from the same taxonomy and plan is the only
// package below all of them.
type Violation struct {
	// Code identifies the violation kind.
	Code ViolationCode

	// Message is a human-readable description.
	Message string

	// Output is the index of the offending output, or -1 when the
	// violation is not attributable to a single output.
	Output int

	// Ordinal is the input ordinal involved (duplicated or missing),
	// or -1 when not applicable.
	Ordinal int

	// Type and Op identify the registry entry involved, for staging-time
	// violations (registry miss, consumption mismatch).
	Type string
	Op   string
}

// ViolationCode categorizes violations.
type ViolationCode string

const (
	// CodeForAllRelevant: an input ordinal is absent from the combined
	// dependency multiset across all outputs.
	CodeForAllRelevant ViolationCode = "FORALL_RELEVANT"

	// CodeForAllAffine: an input ordinal occurs more than once in the
	// combined dependency multiset across all outputs.
	CodeForAllAffine ViolationCode = "FORALL_AFFINE"

	// CodeForEachRelevant: a single output's dependencies do not cover
	// every input ordinal.
	CodeForEachRelevant ViolationCode = "FOREACH_RELEVANT"

	// CodeForEachAffine: a single output's dependencies contain a
	// duplicate ordinal.
	CodeForEachAffine ViolationCode = "FOREACH_AFFINE"

	// CodeConsumptionMismatch: an operation's transition is incompatible
	// with the receiver's state, or an output required to be consumed
	// is still unconsumed.
	CodeConsumptionMismatch ViolationCode = "CONSUMPTION_MISMATCH"

	// CodeArityMismatch: a fixed-arity entry point received an output
	// count different from the input count.
	CodeArityMismatch ViolationCode = "ARITY_MISMATCH"

	// CodeRegistryMiss: no operation metadata registered for the
	// (type, operation) pair.
	CodeRegistryMiss ViolationCode = "REGISTRY_MISS"

	// CodeMalformedLift: the inner Refs of one lifted container disagree
	// on consumption state.
	CodeMalformedLift ViolationCode = "MALFORMED_LIFT"
)

// Error implements the error interface.
func (v *Violation) Error() string {
	switch {
	case v.Type != "" && v.Op != "":
		return fmt.Sprintf("%s: %s (type=%s, op=%s)", v.Code, v.Message, v.Type, v.Op)
	case v.Output >= 0 && v.Ordinal >= 0:
		return fmt.Sprintf("%s: %s (output=%d, ordinal=%d)", v.Code, v.Message, v.Output, v.Ordinal)
	case v.Output >= 0:
		return fmt.Sprintf("%s: %s (output=%d)", v.Code, v.Message, v.Output)
	case v.Ordinal >= 0:
		return fmt.Sprintf("%s: %s (ordinal=%d)", v.Code, v.Message, v.Ordinal)
	default:
		return fmt.Sprintf("%s: %s", v.Code, v.Message)
	}
}

// AsViolation unwraps err to a *Violation if one is in the chain.
func AsViolation(err error) (*Violation, bool) {
	var v *Violation
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}

// IsCode reports whether err carries a Violation with the given code.
func IsCode(err error, code ViolationCode) bool {
	v, ok := AsViolation(err)
	return ok && v.Code == code
}

// NewRegistryMiss creates a Violation for a missing registry entry.
func NewRegistryMiss(typ, op string) *Violation {
	return &Violation{
		Code:    CodeRegistryMiss,
		Message: "no operation metadata registered",
		Output:  -1,
		Ordinal: -1,
		Type:    typ,
		Op:      op,
	}
}

// NewConsumptionMismatch creates a Violation for a staging-time transition
// incompatibility: the operation requires a state the receiver is not in.
func NewConsumptionMismatch(typ, op string, required, actual State) *Violation {
	return &Violation{
		Code:    CodeConsumptionMismatch,
		Message: fmt.Sprintf("operation requires %s receiver, got %s", required, actual),
		Output:  -1,
		Ordinal: -1,
		Type:    typ,
		Op:      op,
	}
}

// NewUnconsumedOutput creates a Violation for an output that the entry
// point's consumption policy required to be consumed.
func NewUnconsumedOutput(output int) *Violation {
	return &Violation{
		Code:    CodeConsumptionMismatch,
		Message: "output must be consumed",
		Output:  output,
		Ordinal: -1,
	}
}

// NewArityMismatch creates a Violation for an output/input count mismatch.
func NewArityMismatch(nInputs, nOutputs int) *Violation {
	return &Violation{
		Code:    CodeArityMismatch,
		Message: fmt.Sprintf("expected %d outputs for %d inputs, got %d", nInputs, nInputs, nOutputs),
		Output:  -1,
		Ordinal: -1,
	}
}

// NewMalformedLift creates a Violation for inconsistent inner states in a
// lifted container. The element positions are reported in the message.
func NewMalformedLift(first, second int, a, b State) *Violation {
	return &Violation{
		Code:    CodeMalformedLift,
		Message: fmt.Sprintf("container elements disagree on state: element %d is %s, element %d is %s", first, a, second, b),
		Output:  -1,
		Ordinal: -1,
	}
}

// NewForAllRelevant creates a Violation for an input unused by any output.
func NewForAllRelevant(ordinal int) *Violation {
	return &Violation{
		Code:    CodeForAllRelevant,
		Message: "input is not used by any output",
		Output:  -1,
		Ordinal: ordinal,
	}
}

// NewForAllAffine creates a Violation for an input used more than once
// across all outputs.
func NewForAllAffine(ordinal int) *Violation {
	return &Violation{
		Code:    CodeForAllAffine,
		Message: "input is used more than once across outputs",
		Output:  -1,
		Ordinal: ordinal,
	}
}

// NewForEachRelevant creates a Violation for an output that fails to use
// every input.
func NewForEachRelevant(output, ordinal int) *Violation {
	return &Violation{
		Code:    CodeForEachRelevant,
		Message: "output does not use input",
		Output:  output,
		Ordinal: ordinal,
	}
}

// NewForEachAffine creates a Violation for an output that uses one input
// more than once.
func NewForEachAffine(output, ordinal int) *Violation {
	return &Violation{
		Code:    CodeForEachAffine,
		Message: "output uses input more than once",
		Output:  output,
		Ordinal: ordinal,
	}
}
