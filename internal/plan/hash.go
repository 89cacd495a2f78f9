package plan

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainOp   = "lineal/op/v1"
	DomainPlan = "lineal/plan/v1"
)

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null byte prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// OpID computes the content-addressed identity of a staged operation.
// Stable across runs given the same session token and trace position.
func OpID(sessionToken string, op StagedOp) (string, error) {
	canonical, err := MarshalCanonical(op.canonicalMap(sessionToken))
	if err != nil {
		return "", fmt.Errorf("OpID: marshal: %w", err)
	}
	return hashWithDomain(DomainOp, canonical), nil
}

// PlanHash computes the content-addressed identity of a whole staged plan:
// the ordered trace of operations, independent of the session token, so two
// sessions staging the same script produce the same hash.
func PlanHash(trace []StagedOp) (string, error) {
	ops := make([]any, len(trace))
	for i, op := range trace {
		m := op.canonicalMap("")
		delete(m, "session")
		ops[i] = m
	}
	canonical, err := MarshalCanonical(ops)
	if err != nil {
		return "", fmt.Errorf("PlanHash: marshal: %w", err)
	}
	return hashWithDomain(DomainPlan, canonical), nil
}

// MustOpID is like OpID but panics on error. Use only in tests or when
// inputs are known to be valid.
func MustOpID(sessionToken string, op StagedOp) string {
	id, err := OpID(sessionToken, op)
	if err != nil {
		panic(err)
	}
	return id
}

// MustPlanHash is like PlanHash but panics on error.
func MustPlanHash(trace []StagedOp) string {
	h, err := PlanHash(trace)
	if err != nil {
		panic(err)
	}
	return h
}
