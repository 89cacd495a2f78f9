// Package registry provides the process-wide operation table consumed by
// the staging engine: a lookup keyed by (type name, operation name) that
// returns plan.OperationMeta, plus the binding contract used to invoke an
// operation against a concrete value once verification has passed.
//
// The registry is populated once before any session begins, either by
// static Register calls or by compiling declarations (internal/declc),
// and is read-only afterward. No synchronization is used; populate-then-read
// is the contract.
package registry
