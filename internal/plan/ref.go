package plan

import "fmt"

// State tracks the one-shot resource state of a Ref.
type State int

const (
	// StateUnconsumed marks a live value; consuming operations may still run.
	StateUnconsumed State = iota

	// StateConsumed marks a finalized value; only state-indifferent
	// operations may run against it.
	StateConsumed
)

// String returns the lowercase name used in traces and storage.
func (s State) String() string {
	switch s {
	case StateUnconsumed:
		return "unconsumed"
	case StateConsumed:
		return "consumed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ParseState parses the string form produced by State.String.
func ParseState(s string) (State, error) {
	switch s {
	case "unconsumed":
		return StateUnconsumed, nil
	case "consumed":
		return StateConsumed, nil
	default:
		return 0, fmt.Errorf("unknown state %q", s)
	}
}

// Ref is a deferred computation tagged with a dependency multiset and a
// consumption state.
//
// A Ref never holds a computed value at staging time; the thunk closes over
// whatever is needed to produce one. Refs are immutable descriptors: staging
// an operation builds a new Ref and leaves the receiver untouched.
//
// Thread-safety: a Ref belongs to a single verification session and sessions
// are single-threaded, so no synchronization is used. Force memoizes its
// result so that a Ref shared by several outputs computes at most once.
type Ref struct {
	typ   string
	deps  []int
	state State
	thunk func() (any, error)

	forced bool
	value  any
	err    error
}

// NewInput creates the Ref for a caller-supplied input value.
// The ordinal becomes the Ref's sole dependency.
func NewInput(ordinal int, typ string, value any) *Ref {
	return &Ref{
		typ:   typ,
		deps:  []int{ordinal},
		state: StateUnconsumed,
		thunk: func() (any, error) { return value, nil },
	}
}

// NewLiteral creates a Ref for a plain value passed as an operation argument.
// Literals carry no dependencies and start unconsumed.
func NewLiteral(typ string, value any) *Ref {
	return &Ref{
		typ:   typ,
		state: StateUnconsumed,
		thunk: func() (any, error) { return value, nil },
	}
}

// NewDerived creates a Ref produced by staging an operation.
// The deps slice is copied; callers may reuse their buffer.
func NewDerived(typ string, deps []int, state State, thunk func() (any, error)) *Ref {
	d := make([]int, len(deps))
	copy(d, deps)
	return &Ref{typ: typ, deps: d, state: state, thunk: thunk}
}

// Type returns the registry type name of the value this Ref will produce.
func (r *Ref) Type() string { return r.typ }

// State returns the consumption state.
func (r *Ref) State() State { return r.state }

// Deps returns a copy of the dependency multiset in derivation order.
func (r *Ref) Deps() []int {
	d := make([]int, len(r.deps))
	copy(d, r.deps)
	return d
}

// AppendDeps appends this Ref's dependencies to dst and returns the result.
// Used by staging to concatenate multisets without intermediate copies.
func (r *Ref) AppendDeps(dst []int) []int {
	return append(dst, r.deps...)
}

// Force computes the Ref's value, invoking whatever operations its thunk
// closes over. The result is memoized: a second Force returns the same
// value or error without recomputing.
//
// Force must only be called after verification has passed; the verifier
// never calls it.
func (r *Ref) Force() (any, error) {
	if !r.forced {
		r.value, r.err = r.thunk()
		r.forced = true
	}
	return r.value, r.err
}
