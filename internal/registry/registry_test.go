package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineal-dev/lineal/internal/plan"
)

func swapMeta() plan.OperationMeta {
	return plan.OperationMeta{
		Name:       "swap",
		Tracked:    map[int]bool{0: true},
		Transition: plan.TransitionPreserve,
		Result:     "Token",
	}
}

func TestRegisterAndLookup(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Token", swapMeta()))

	meta, ok := r.Lookup("Token", "swap")
	require.True(t, ok)
	assert.Equal(t, "swap", meta.Name)
	assert.Equal(t, "Token", meta.Result)
	assert.True(t, meta.IsTracked(0))
}

func TestLookupMiss(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Token", swapMeta()))

	_, ok := r.Lookup("Token", "missing")
	assert.False(t, ok)

	_, ok = r.Lookup("Other", "swap")
	assert.False(t, ok, "lookup is keyed by type, not just operation name")
}

func TestRegisterDuplicate(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Token", swapMeta()))

	err := r.Register("Token", swapMeta())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate operation Token.swap")
}

func TestRegisterRejectsEmptyNames(t *testing.T) {
	r := New()
	assert.Error(t, r.Register("", swapMeta()))

	meta := swapMeta()
	meta.Name = ""
	assert.Error(t, r.Register("Token", meta))
}

func TestCounts(t *testing.T) {
	r := New()
	require.NoError(t, r.Register("Token", swapMeta()))

	other := swapMeta()
	other.Name = "pair"
	require.NoError(t, r.Register("Token", other))
	require.NoError(t, r.Register("Res", swapMeta()))

	assert.Equal(t, 2, r.Types())
	assert.Equal(t, 3, r.Ops())
}

func TestInvokeThroughFuncBinding(t *testing.T) {
	r := New()
	r.Bind("Token", FuncBinding{
		"swap": func(receiver any, args []any) (any, error) {
			return []any{args[0], receiver}, nil
		},
	})

	v, err := r.Invoke("Token", "a", "swap", []any{"b"})
	require.NoError(t, err)
	assert.Equal(t, []any{"b", "a"}, v)
}

func TestInvokeWithoutBinding(t *testing.T) {
	r := New()
	_, err := r.Invoke("Token", "a", "swap", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no binding for type "Token"`)
}

func TestFuncBindingUnknownOp(t *testing.T) {
	fb := FuncBinding{}
	_, err := fb.Invoke("a", "swap", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `no implementation for operation "swap"`)
}
