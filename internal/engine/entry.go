package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/plan"
	"github.com/lineal-dev/lineal/internal/registry"
	"github.com/lineal-dev/lineal/internal/store"
	"github.com/lineal-dev/lineal/internal/verify"
)

// Body is a staged computation: a straight-line script from input Refs to
// output Refs. Preset entry points package the outputs into their fixed
// Connective; CustomBody returns the Connective itself.
type Body func(s *Session, inputs []*plan.Ref) ([]*plan.Ref, error)

// CustomBody is a staged computation that declares its own multiplicities.
type CustomBody func(s *Session, inputs []*plan.Ref) (plan.Connective, error)

// Apply runs the default balanced contract: output count must equal input
// count, every input used somewhere (ForAll-Relevant), no input duplicated
// within one output (ForEach-Affine), no consumption requirement.
func Apply(ctx context.Context, reg *registry.Registry, inputs []Input, body Body, opts ...Option) ([]any, error) {
	return run(ctx, reg, inputs, presetBody(body, plan.Balanced),
		verify.Policy{FixedArity: true, Consumption: plan.Unrestricted}, opts)
}

// ApplyConsumed is Apply plus the requirement that every output be
// consumed: the body must finalize each resource exactly once.
func ApplyConsumed(ctx context.Context, reg *registry.Registry, inputs []Input, body Body, opts ...Option) ([]any, error) {
	return run(ctx, reg, inputs, presetBody(body, plan.Balanced),
		verify.Policy{FixedArity: true, Consumption: plan.Relevant}, opts)
}

// ApplyMulti relaxes Apply's arity requirement: any output count is
// accepted as long as the balanced contract still holds.
func ApplyMulti(ctx context.Context, reg *registry.Registry, inputs []Input, body Body, opts ...Option) ([]any, error) {
	return run(ctx, reg, inputs, presetBody(body, plan.Balanced),
		verify.Policy{FixedArity: false, Consumption: plan.Unrestricted}, opts)
}

// ApplyConsumedMulti is ApplyMulti plus the all-consumed requirement.
func ApplyConsumedMulti(ctx context.Context, reg *registry.Registry, inputs []Input, body Body, opts ...Option) ([]any, error) {
	return run(ctx, reg, inputs, presetBody(body, plan.Balanced),
		verify.Policy{FixedArity: false, Consumption: plan.Relevant}, opts)
}

// CustomApply wires caller-chosen policies: the vertical consumption
// multiplicity is given here, the horizontal pair is declared on the
// Connective the body returns. No arity check.
func CustomApply(ctx context.Context, reg *registry.Registry, inputs []Input, consumption plan.Multiplicity, body CustomBody, opts ...Option) ([]any, error) {
	return run(ctx, reg, inputs, body,
		verify.Policy{FixedArity: false, Consumption: consumption}, opts)
}

// presetBody adapts a plain Body to a CustomBody with a preset Connective.
func presetBody(body Body, preset func(...*plan.Ref) plan.Connective) CustomBody {
	return func(s *Session, inputs []*plan.Ref) (plan.Connective, error) {
		outputs, err := body(s, inputs)
		if err != nil {
			return plan.Connective{}, err
		}
		return preset(outputs...), nil
	}
}

// run is the verify-then-execute protocol shared by every entry point.
func run(ctx context.Context, reg *registry.Registry, inputs []Input, body CustomBody, pol verify.Policy, opts []Option) ([]any, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	token := cfg.tokens.Generate()
	s := newSession(reg, token, len(inputs), cfg.logger)

	cfg.logger.Debug("session started",
		zap.String("session", token),
		zap.Int("inputs", len(inputs)))

	conn, err := body(s, s.inputRefs(inputs))
	if err != nil {
		recordVerdict(ctx, cfg, s, 0, err)
		return nil, err
	}

	if err := verify.Check(conn, len(inputs), pol); err != nil {
		cfg.logger.Info("plan rejected",
			zap.String("session", token),
			zap.Error(err))
		recordVerdict(ctx, cfg, s, len(conn.Outputs), err)
		return nil, err
	}

	cfg.logger.Debug("plan verified",
		zap.String("session", token),
		zap.Int("outputs", len(conn.Outputs)))
	recordVerdict(ctx, cfg, s, len(conn.Outputs), nil)

	// Verification has passed; only now are thunks forced.
	return forceAll(conn.Outputs)
}

// recordVerdict writes the session's audit record when a store is wired.
// Best-effort: a failed audit write is logged, never surfaced, so the
// session's verdict is unaffected.
func recordVerdict(ctx context.Context, cfg config, s *Session, nOutputs int, verr error) {
	if cfg.store == nil {
		return
	}

	trace := s.Trace()
	planHash, err := plan.PlanHash(trace)
	if err != nil {
		cfg.logger.Warn("plan hash failed", zap.String("session", s.Token()), zap.Error(err))
	}

	rec := store.SessionRecord{
		Token:     s.Token(),
		PlanHash:  planHash,
		Verdict:   store.VerdictPass,
		NInputs:   s.nInputs,
		NOutputs:  nOutputs,
		CreatedAt: time.Now().Unix(),
		Trace:     trace,
	}
	if verr != nil {
		rec.Verdict = store.VerdictFail
		if v, ok := plan.AsViolation(verr); ok {
			rec.Violation = v
		}
	}

	if err := cfg.store.WriteSession(ctx, rec); err != nil {
		cfg.logger.Warn("audit write failed",
			zap.String("session", s.Token()),
			zap.Error(err))
	}
}
