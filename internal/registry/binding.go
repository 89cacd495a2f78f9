package registry

import (
	"fmt"
	"strings"
)

// Binding discovers and invokes an operation on a concrete receiver value.
// Implementations are the interchangeable front-ends kept outside the core
// engine: generated static accessors, function maps, or anything satisfying
// this one method. The engine calls Invoke only from inside a forced thunk.
type Binding interface {
	Invoke(receiver any, op string, args []any) (any, error)
}

// FuncBinding is a static-accessor front-end: a map from operation name to
// implementation. The simplest binding for host applications and tests.
type FuncBinding map[string]func(receiver any, args []any) (any, error)

// Invoke implements Binding.
func (fb FuncBinding) Invoke(receiver any, op string, args []any) (any, error) {
	fn, ok := fb[op]
	if !ok {
		return nil, fmt.Errorf("no implementation for operation %q", op)
	}
	return fn(receiver, args)
}

// SymbolicBinding produces deterministic symbolic values instead of running
// real operations: Invoke("a", "swap", ["b"]) yields "swap(a; b)".
//
// The harness and the check CLI use it so scenarios can exercise the full
// verify-then-execute path without a host application, and so forced
// results are stable for golden comparison.
type SymbolicBinding struct{}

// Invoke implements Binding.
func (SymbolicBinding) Invoke(receiver any, op string, args []any) (any, error) {
	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('(')
	writeSymbolic(&b, receiver)
	for _, a := range args {
		b.WriteString("; ")
		writeSymbolic(&b, a)
	}
	b.WriteByte(')')
	return b.String(), nil
}

// writeSymbolic renders a value. Slices (from lifted containers) render as
// bracketed element lists so nesting stays readable.
func writeSymbolic(b *strings.Builder, v any) {
	switch val := v.(type) {
	case nil:
		b.WriteString("none")
	case []any:
		b.WriteByte('[')
		for i, e := range val {
			if i > 0 {
				b.WriteString(", ")
			}
			writeSymbolic(b, e)
		}
		b.WriteByte(']')
	case string:
		b.WriteString(val)
	default:
		fmt.Fprintf(b, "%v", val)
	}
}
