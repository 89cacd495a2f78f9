package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/plan"
)

// WriteSession persists a session record, its trace, and its violation (if
// any) in one transaction. Either everything lands or nothing does.
//
// Writing the same token twice is an error: session tokens are unique and
// records are immutable once written.
func (s *Store) WriteSession(ctx context.Context, rec SessionRecord) error {
	if rec.Verdict != VerdictPass && rec.Verdict != VerdictFail {
		return fmt.Errorf("write session: invalid verdict %q", rec.Verdict)
	}

	createdAt := rec.CreatedAt
	if createdAt == 0 {
		createdAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write session: begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sessions
		(token, plan_hash, verdict, violation_code, n_inputs, n_outputs, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		rec.Token,
		rec.PlanHash,
		rec.Verdict,
		rec.ViolationCode(),
		rec.NInputs,
		rec.NOutputs,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("write session %s: %w", rec.Token, err)
	}

	for _, op := range rec.Trace {
		depsJSON, err := plan.MarshalCanonical(op.Deps)
		if err != nil {
			return fmt.Errorf("write session %s: marshal deps: %w", rec.Token, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO staged_ops
			(op_id, session_token, seq, receiver_type, op_name, deps, state)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			op.OpID,
			rec.Token,
			op.Seq,
			op.Receiver,
			op.Op,
			string(depsJSON),
			op.State.String(),
		)
		if err != nil {
			return fmt.Errorf("write session %s: staged op seq %d: %w", rec.Token, op.Seq, err)
		}
	}

	if rec.Violation != nil {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO violations
			(session_token, code, message, output_idx, ordinal)
			VALUES (?, ?, ?, ?, ?)
		`,
			rec.Token,
			string(rec.Violation.Code),
			rec.Violation.Message,
			rec.Violation.Output,
			rec.Violation.Ordinal,
		)
		if err != nil {
			return fmt.Errorf("write session %s: violation: %w", rec.Token, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write session %s: commit: %w", rec.Token, err)
	}

	s.logger.Debug("session recorded",
		zap.String("session", rec.Token),
		zap.String("verdict", rec.Verdict),
		zap.Int("ops", len(rec.Trace)))
	return nil
}
