// Package engine implements the lineal verification engine: staging,
// the verify-then-execute protocol, and the named entry points.
//
// ARCHITECTURE:
//
// A verification session is synchronous and single-threaded:
//
//  1. Caller-supplied inputs are tagged with ordinals 0..n-1.
//  2. The body runs against the input Refs, staging operations. Staging
//     consults registry metadata and builds new Refs; it never invokes
//     an operation.
//  3. The outputs are packaged into a Connective with the entry point's
//     preset multiplicities.
//  4. The verifier checks the horizontal (usage counting) and vertical
//     (consumption) constraints.
//  5. Only on success does the executor force the output thunks; the
//     forced values are returned. On failure, the plan is discarded with
//     nothing ever invoked.
//
// Distinct sessions share nothing and may run in parallel; within one
// session staging is strictly sequential. The registry is treated as an
// immutable table populated before any session begins.
//
// Every staged operation is recorded on a logical clock (Clock). The trace
// feeds the optional audit store and the golden tests; wall-clock time is
// never used for ordering.
package engine
