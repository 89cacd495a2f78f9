package registry

import (
	"fmt"

	"github.com/lineal-dev/lineal/internal/plan"
)

// opKey identifies an operation within the table.
type opKey struct {
	typ string
	op  string
}

// Registry maps (type name, operation name) to operation metadata and holds
// one Binding per type for invocation at executor time.
type Registry struct {
	ops      map[opKey]plan.OperationMeta
	bindings map[string]Binding
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		ops:      make(map[opKey]plan.OperationMeta),
		bindings: make(map[string]Binding),
	}
}

// Register adds operation metadata for a type. Registering the same
// (type, operation) pair twice is an error: the table is append-only and
// populated once at process start.
func (r *Registry) Register(typ string, meta plan.OperationMeta) error {
	if typ == "" {
		return fmt.Errorf("register: empty type name")
	}
	if meta.Name == "" {
		return fmt.Errorf("register: empty operation name for type %q", typ)
	}
	key := opKey{typ: typ, op: meta.Name}
	if _, exists := r.ops[key]; exists {
		return fmt.Errorf("register: duplicate operation %s.%s", typ, meta.Name)
	}
	r.ops[key] = meta
	return nil
}

// MustRegister is like Register but panics on error. Use for static
// registration at process start, where a duplicate is a programming error.
func (r *Registry) MustRegister(typ string, meta plan.OperationMeta) {
	if err := r.Register(typ, meta); err != nil {
		panic(err)
	}
}

// Bind associates a Binding with a type. Later binds replace earlier ones;
// tests use this to swap in symbolic bindings.
func (r *Registry) Bind(typ string, b Binding) {
	r.bindings[typ] = b
}

// Lookup returns the metadata for (type, operation), if registered.
func (r *Registry) Lookup(typ, op string) (plan.OperationMeta, bool) {
	meta, ok := r.ops[opKey{typ: typ, op: op}]
	return meta, ok
}

// Invoke runs an operation against a concrete receiver value through the
// type's Binding. Only called from inside a forced thunk, after
// verification has passed.
func (r *Registry) Invoke(typ string, receiver any, op string, args []any) (any, error) {
	b, ok := r.bindings[typ]
	if !ok {
		return nil, fmt.Errorf("invoke %s.%s: no binding for type %q", typ, op, typ)
	}
	return b.Invoke(receiver, op, args)
}

// Types returns the number of distinct types with at least one operation.
func (r *Registry) Types() int {
	seen := make(map[string]bool)
	for key := range r.ops {
		seen[key.typ] = true
	}
	return len(seen)
}

// Ops returns the number of registered operations.
func (r *Registry) Ops() int { return len(r.ops) }
