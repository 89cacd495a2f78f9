package plan

import "fmt"

// Transition is the consumption-state rule an operation applies to its
// receiver.
type Transition int

const (
	// TransitionPreserve requires an unconsumed receiver and leaves the
	// result unconsumed. Safe to stage repeatedly.
	TransitionPreserve Transition = iota

	// TransitionConsume requires an unconsumed receiver and finalizes it:
	// the result is consumed.
	TransitionConsume

	// TransitionAny runs regardless of receiver state and inherits it.
	// Used for read-only queries that must work on both live and
	// finalized values.
	TransitionAny
)

// Admits reports whether the transition may be applied to a receiver in
// state s.
func (t Transition) Admits(s State) bool {
	switch t {
	case TransitionAny:
		return true
	default:
		return s == StateUnconsumed
	}
}

// Requires returns the receiver state the transition demands. Only
// meaningful when Admits can fail, i.e. not for TransitionAny.
func (t Transition) Requires() State { return StateUnconsumed }

// Next returns the state of the operation's result given receiver state s.
func (t Transition) Next(s State) State {
	switch t {
	case TransitionConsume:
		return StateConsumed
	case TransitionPreserve:
		return StateUnconsumed
	default:
		return s
	}
}

// String returns the lowercase name used in declarations and storage.
func (t Transition) String() string {
	switch t {
	case TransitionPreserve:
		return "preserve"
	case TransitionConsume:
		return "consume"
	case TransitionAny:
		return "any"
	default:
		return fmt.Sprintf("transition(%d)", int(t))
	}
}

// ParseTransition parses the string form produced by String.
func ParseTransition(s string) (Transition, error) {
	switch s {
	case "preserve":
		return TransitionPreserve, nil
	case "consume":
		return TransitionConsume, nil
	case "any":
		return TransitionAny, nil
	default:
		return 0, fmt.Errorf("unknown transition %q", s)
	}
}

// OperationMeta describes one operation on a receiver type: which argument
// positions contribute dependencies, how the receiver's consumption state
// transitions, and the registry type of the result.
//
// OperationMeta is plain data. It is populated before any session begins,
// either by static registration or by compiling declarations (internal/declc),
// and only consulted afterward.
type OperationMeta struct {
	// Name is the operation name, unique per receiver type.
	Name string `json:"name"`

	// Tracked holds argument positions (0-based, receiver excluded) whose
	// dependencies flow into the result. Untracked positions contribute
	// nothing.
	Tracked map[int]bool `json:"tracked"`

	// Transition is the consumption-state rule.
	Transition Transition `json:"transition"`

	// Result is the registry type name of the operation's result.
	Result string `json:"result"`
}

// IsTracked reports whether argument position i contributes dependencies.
func (m OperationMeta) IsTracked(i int) bool { return m.Tracked[i] }
