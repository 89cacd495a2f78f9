package plan

// Container type names assigned to lifted Refs.
const (
	TypeSlice  = "Slice"
	TypeOption = "Option"
)

// LiftSlice normalizes a slice of Refs into a single Ref over a slice of
// values. Dependencies are concatenated in element order. All elements must
// agree on consumption state; a mismatch is a malformed plan, reported as
// CodeMalformedLift rather than silently resolved.
//
// Forcing the lifted Ref forces every element exactly once and yields a
// []any in element order. An empty slice lifts to an unconsumed Ref with no
// dependencies.
func LiftSlice(elems []*Ref) (*Ref, error) {
	state, err := commonState(elems)
	if err != nil {
		return nil, err
	}

	var deps []int
	for _, e := range elems {
		deps = e.AppendDeps(deps)
	}

	inner := make([]*Ref, len(elems))
	copy(inner, elems)

	return NewDerived(TypeSlice, deps, state, func() (any, error) {
		values := make([]any, len(inner))
		for i, e := range inner {
			v, err := e.Force()
			if err != nil {
				return nil, err
			}
			values[i] = v
		}
		return values, nil
	}), nil
}

// LiftOption normalizes an optional Ref into a single Ref over an optional
// value. A nil elem lifts to an absent option: no dependencies, unconsumed,
// forcing to nil.
func LiftOption(elem *Ref) (*Ref, error) {
	if elem == nil {
		return NewDerived(TypeOption, nil, StateUnconsumed, func() (any, error) {
			return nil, nil
		}), nil
	}
	return NewDerived(TypeOption, elem.Deps(), elem.State(), func() (any, error) {
		return elem.Force()
	}), nil
}

// commonState returns the shared state of all elements, or a malformed-lift
// violation naming the first disagreeing pair.
func commonState(elems []*Ref) (State, error) {
	if len(elems) == 0 {
		return StateUnconsumed, nil
	}
	first := elems[0].State()
	for i, e := range elems[1:] {
		if e.State() != first {
			return 0, NewMalformedLift(0, i+1, first, e.State())
		}
	}
	return first, nil
}
