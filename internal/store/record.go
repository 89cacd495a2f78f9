package store

import "github.com/lineal-dev/lineal/internal/plan"

// Session verdicts.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

// SessionRecord is the audit record for one verification session.
type SessionRecord struct {
	// Token is the session identity (UUIDv7 in production).
	Token string `json:"token"`

	// PlanHash is the content-addressed identity of the staged script.
	PlanHash string `json:"plan_hash"`

	// Verdict is VerdictPass or VerdictFail.
	Verdict string `json:"verdict"`

	// NInputs and NOutputs record the session's arity.
	NInputs  int `json:"n_inputs"`
	NOutputs int `json:"n_outputs"`

	// CreatedAt is a unix timestamp. Informational only; nothing orders
	// by wall clock.
	CreatedAt int64 `json:"created_at"`

	// Trace is the staged-operation log in seq order.
	Trace []plan.StagedOp `json:"trace"`

	// Violation holds the constraint failure for rejected plans, nil for
	// passing ones.
	Violation *plan.Violation `json:"violation,omitempty"`
}

// ViolationCode returns the violation's code, or "" for passing sessions.
func (r SessionRecord) ViolationCode() string {
	if r.Violation == nil {
		return ""
	}
	return string(r.Violation.Code)
}
