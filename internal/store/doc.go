// Package store provides SQLite-backed storage for verification session
// audit records.
//
// Every completed session, passed or rejected, can be persisted with:
//   - the session row: token, content-addressed plan hash, verdict,
//     input/output counts
//   - the staged-operation trace, ordered by logical seq
//   - the violation that rejected the plan, when there is one
//
// The store is an audit log, not part of the verification path: the engine
// writes to it after the verdict is decided, and the trace CLI command
// reads it back. Writes are transactional: a session row and its trace
// land together or not at all.
//
// Database configuration:
//   - WAL mode for concurrent reads during writes
//   - synchronous=NORMAL
//   - busy_timeout=5000
//   - foreign_keys=ON
//
// All trace queries order by seq so read-back reproduces staging order.
package store
