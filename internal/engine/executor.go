package engine

import "github.com/lineal-dev/lineal/internal/plan"

// forceAll forces each output in order and collects the concrete values.
//
// Runs only after the verifier returns success. Lifted containers force
// their elements through their own thunks, so recursion into containers
// needs no special handling here. Dependency multisets and multiplicities
// are erased at this layer: an error from an invoked operation propagates
// unmodified, with no retry or recovery.
func forceAll(outputs []*plan.Ref) ([]any, error) {
	values := make([]any, len(outputs))
	for i, out := range outputs {
		v, err := out.Force()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}
