package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLiftSliceConcatenatesDeps(t *testing.T) {
	a := NewInput(0, "Token", "a")
	b := NewInput(1, "Token", "b")

	lifted, err := LiftSlice([]*Ref{a, b})
	require.NoError(t, err)

	assert.Equal(t, TypeSlice, lifted.Type())
	assert.Equal(t, []int{0, 1}, lifted.Deps())
	assert.Equal(t, StateUnconsumed, lifted.State())
}

func TestLiftSliceRoundTrip(t *testing.T) {
	// Forcing the lifted slice must equal forcing each element
	// independently and collecting into a slice.
	elems := []*Ref{
		NewInput(0, "Token", "a"),
		NewInput(1, "Token", "b"),
		NewLiteral("Token", "c"),
	}

	lifted, err := LiftSlice(elems)
	require.NoError(t, err)

	got, err := lifted.Force()
	require.NoError(t, err)

	var want []any
	for _, e := range elems {
		v, err := e.Force()
		require.NoError(t, err)
		want = append(want, v)
	}
	assert.Equal(t, want, got)
}

func TestLiftSliceForcesElementsOnce(t *testing.T) {
	calls := 0
	elem := NewDerived("Int", []int{0}, StateUnconsumed, func() (any, error) {
		calls++
		return calls, nil
	})

	lifted, err := LiftSlice([]*Ref{elem})
	require.NoError(t, err)

	_, err = lifted.Force()
	require.NoError(t, err)
	_, err = lifted.Force()
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "elementwise map must run only once")
}

func TestLiftSliceStateMismatch(t *testing.T) {
	live := NewDerived("Res", []int{0}, StateUnconsumed, func() (any, error) { return nil, nil })
	done := NewDerived("Res", []int{1}, StateConsumed, func() (any, error) { return nil, nil })

	_, err := LiftSlice([]*Ref{live, done})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeMalformedLift))

	v, ok := AsViolation(err)
	require.True(t, ok)
	assert.Contains(t, v.Message, "element 0")
	assert.Contains(t, v.Message, "element 1")
}

func TestLiftSliceConsumedElementsAgree(t *testing.T) {
	a := NewDerived("Res", []int{0}, StateConsumed, func() (any, error) { return "a", nil })
	b := NewDerived("Res", []int{1}, StateConsumed, func() (any, error) { return "b", nil })

	lifted, err := LiftSlice([]*Ref{a, b})
	require.NoError(t, err)
	assert.Equal(t, StateConsumed, lifted.State())
}

func TestLiftSliceEmpty(t *testing.T) {
	lifted, err := LiftSlice(nil)
	require.NoError(t, err)

	assert.Empty(t, lifted.Deps())
	assert.Equal(t, StateUnconsumed, lifted.State())

	v, err := lifted.Force()
	require.NoError(t, err)
	assert.Empty(t, v)
}

func TestLiftOptionPresent(t *testing.T) {
	elem := NewInput(2, "Token", "x")

	lifted, err := LiftOption(elem)
	require.NoError(t, err)

	assert.Equal(t, TypeOption, lifted.Type())
	assert.Equal(t, []int{2}, lifted.Deps())

	v, err := lifted.Force()
	require.NoError(t, err)
	assert.Equal(t, "x", v)
}

func TestLiftOptionAbsent(t *testing.T) {
	lifted, err := LiftOption(nil)
	require.NoError(t, err)

	assert.Empty(t, lifted.Deps())
	assert.Equal(t, StateUnconsumed, lifted.State())

	v, err := lifted.Force()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLiftSliceDuplicateDepsPreserved(t *testing.T) {
	// A container must not smuggle a duplicated input past the checks:
	// duplicates survive lifting.
	a := NewInput(0, "Token", "a")

	lifted, err := LiftSlice([]*Ref{a, a})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 0}, lifted.Deps())
}
