package plan

// StagedOp is the trace record for one staged operation. The session
// appends one per Stage call; the audit store, the harness goldens, and
// the trace CLI command all consume this form.
type StagedOp struct {
	// OpID is the content-addressed identity of this staged operation.
	OpID string `json:"op_id"`

	// Seq is the logical clock position within the session.
	Seq int64 `json:"seq"`

	// Receiver is the registry type name of the receiver.
	Receiver string `json:"receiver"`

	// Op is the operation name.
	Op string `json:"op"`

	// Deps is the result's dependency multiset, in derivation order.
	Deps []int `json:"deps"`

	// State is the result's consumption state.
	State State `json:"state"`
}

// canonicalMap renders the record for canonical JSON hashing.
// OpID is excluded: it is derived from this very content.
func (op StagedOp) canonicalMap(sessionToken string) map[string]any {
	return map[string]any{
		"session":  sessionToken,
		"seq":      op.Seq,
		"receiver": op.Receiver,
		"op":       op.Op,
		"deps":     op.Deps,
		"state":    op.State.String(),
	}
}
