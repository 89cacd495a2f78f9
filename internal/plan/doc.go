// Package plan provides the foundational descriptor types for lineal.
//
// This package contains type definitions and pure functions only. All other
// internal packages import plan; plan imports nothing internal. This keeps
// the descriptor layer foundational with no circular dependencies.
//
// Key design constraints:
//   - Refs are immutable after creation; a new operation produces a new Ref,
//     never a mutated one
//   - Dependency collections are multisets: duplicate ordinals are
//     significant and must be preserved in order
//   - No operation is ever invoked from this package; thunks are only built
//     here and forced by the executor
//   - Content-addressed identity uses RFC 8785 canonical JSON and SHA-256
//     with domain separation (see canonical.go, hash.go)
package plan
