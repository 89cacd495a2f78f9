package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lineal-dev/lineal/internal/plan"
)

// ErrNotFound is returned when no session exists for a token.
var ErrNotFound = errors.New("session not found")

// ReadSession loads a full session record by token: the session row, its
// trace in seq order, and its violation if one was recorded.
func (s *Store) ReadSession(ctx context.Context, token string) (*SessionRecord, error) {
	rec := &SessionRecord{Token: token}

	var violationCode string
	err := s.db.QueryRowContext(ctx, `
		SELECT plan_hash, verdict, violation_code, n_inputs, n_outputs, created_at
		FROM sessions WHERE token = ?
	`, token).Scan(
		&rec.PlanHash,
		&rec.Verdict,
		&violationCode,
		&rec.NInputs,
		&rec.NOutputs,
		&rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("read session %s: %w", token, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read session %s: %w", token, err)
	}

	rec.Trace, err = s.readTrace(ctx, token)
	if err != nil {
		return nil, err
	}

	rec.Violation, err = s.readViolation(ctx, token)
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// readTrace loads the staged-operation log in seq order.
func (s *Store) readTrace(ctx context.Context, token string) ([]plan.StagedOp, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT op_id, seq, receiver_type, op_name, deps, state
		FROM staged_ops
		WHERE session_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("read trace %s: %w", token, err)
	}
	defer rows.Close()

	var trace []plan.StagedOp
	for rows.Next() {
		var op plan.StagedOp
		var depsJSON, state string
		if err := rows.Scan(&op.OpID, &op.Seq, &op.Receiver, &op.Op, &depsJSON, &state); err != nil {
			return nil, fmt.Errorf("read trace %s: scan: %w", token, err)
		}
		if err := json.Unmarshal([]byte(depsJSON), &op.Deps); err != nil {
			return nil, fmt.Errorf("read trace %s: deps: %w", token, err)
		}
		op.State, err = plan.ParseState(state)
		if err != nil {
			return nil, fmt.Errorf("read trace %s: %w", token, err)
		}
		trace = append(trace, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read trace %s: %w", token, err)
	}
	return trace, nil
}

// readViolation loads the violation row, if any.
func (s *Store) readViolation(ctx context.Context, token string) (*plan.Violation, error) {
	var v plan.Violation
	var code string
	err := s.db.QueryRowContext(ctx, `
		SELECT code, message, output_idx, ordinal
		FROM violations WHERE session_token = ?
	`, token).Scan(&code, &v.Message, &v.Output, &v.Ordinal)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read violation %s: %w", token, err)
	}
	v.Code = plan.ViolationCode(code)
	return &v, nil
}

// SessionSummary is a single row of ListSessions output.
type SessionSummary struct {
	Token     string `json:"token"`
	PlanHash  string `json:"plan_hash"`
	Verdict   string `json:"verdict"`
	Code      string `json:"violation_code,omitempty"`
	CreatedAt int64  `json:"created_at"`
}

// ListSessions returns recent sessions, newest first, up to limit.
func (s *Store) ListSessions(ctx context.Context, limit int) ([]SessionSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT token, plan_hash, verdict, violation_code, created_at
		FROM sessions
		ORDER BY created_at DESC, token DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []SessionSummary
	for rows.Next() {
		var sum SessionSummary
		if err := rows.Scan(&sum.Token, &sum.PlanHash, &sum.Verdict, &sum.Code, &sum.CreatedAt); err != nil {
			return nil, fmt.Errorf("list sessions: scan: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	return out, nil
}
