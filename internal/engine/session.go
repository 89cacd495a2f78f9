package engine

import (
	"fmt"
	"reflect"

	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/plan"
	"github.com/lineal-dev/lineal/internal/registry"
)

// Input is one caller-supplied value entering a session, together with its
// registry type name. Inputs are never copied; the engine holds them only
// through closures.
type Input struct {
	Type  string
	Value any
}

// In builds an Input with an explicit type name.
func In(typ string, value any) Input {
	return Input{Type: typ, Value: value}
}

// ValueIn builds an Input whose type name is inferred by reflection.
// Convenient when registry type names match Go type names.
func ValueIn(value any) Input {
	return Input{Type: typeNameOf(value), Value: value}
}

// Session stages operations for one verification run. Sessions are
// single-threaded and share nothing with each other; create one per run
// via the entry points, never directly.
type Session struct {
	reg     *registry.Registry
	clock   *Clock
	logger  *zap.Logger
	token   string
	nInputs int
	trace   []plan.StagedOp
}

func newSession(reg *registry.Registry, token string, nInputs int, logger *zap.Logger) *Session {
	return &Session{
		reg:     reg,
		clock:   NewClock(),
		logger:  logger,
		token:   token,
		nInputs: nInputs,
	}
}

// Token returns the session token.
func (s *Session) Token() string { return s.token }

// Trace returns the staged-operation log in staging order.
func (s *Session) Trace() []plan.StagedOp {
	out := make([]plan.StagedOp, len(s.trace))
	copy(out, s.trace)
	return out
}

// inputRefs tags each input with its ordinal and wraps it in a Ref.
func (s *Session) inputRefs(inputs []Input) []*plan.Ref {
	refs := make([]*plan.Ref, len(inputs))
	for i, in := range inputs {
		refs[i] = plan.NewInput(i, in.Type, in.Value)
	}
	return refs
}

// Stage stages one operation application: metadata is consulted and a new
// Ref built, but nothing is invoked.
//
// Plain (non-Ref) arguments are auto-lifted into literal Refs with empty
// dependencies. The new Ref's dependencies are the receiver's followed by
// each tracked argument's, in parameter order; untracked arguments
// contribute nothing. The new state follows the operation's transition.
func (s *Session) Stage(receiver *plan.Ref, op string, args ...any) (*plan.Ref, error) {
	meta, ok := s.reg.Lookup(receiver.Type(), op)
	if !ok {
		return nil, plan.NewRegistryMiss(receiver.Type(), op)
	}

	if !meta.Transition.Admits(receiver.State()) {
		return nil, plan.NewConsumptionMismatch(
			receiver.Type(), op, meta.Transition.Requires(), receiver.State())
	}

	argRefs := make([]*plan.Ref, len(args))
	for i, a := range args {
		if r, isRef := a.(*plan.Ref); isRef {
			argRefs[i] = r
		} else {
			argRefs[i] = plan.NewLiteral(typeNameOf(a), a)
		}
	}

	deps := receiver.AppendDeps(nil)
	for i, a := range argRefs {
		if meta.IsTracked(i) {
			deps = a.AppendDeps(deps)
		}
	}

	state := meta.Transition.Next(receiver.State())

	// The thunk forces the receiver and every argument, then invokes the
	// operation through the type's binding. Untracked arguments are still
	// forced: they contribute no dependencies but the operation needs
	// their values.
	reg, typ := s.reg, receiver.Type()
	thunk := func() (any, error) {
		recvValue, err := receiver.Force()
		if err != nil {
			return nil, err
		}
		argValues := make([]any, len(argRefs))
		for i, a := range argRefs {
			argValues[i], err = a.Force()
			if err != nil {
				return nil, err
			}
		}
		return reg.Invoke(typ, recvValue, op, argValues)
	}

	result := plan.NewDerived(meta.Result, deps, state, thunk)
	s.record(receiver.Type(), op, result)
	return result, nil
}

// record appends a trace entry for a newly staged operation.
func (s *Session) record(receiverType, op string, result *plan.Ref) {
	entry := plan.StagedOp{
		Seq:      s.clock.Next(),
		Receiver: receiverType,
		Op:       op,
		Deps:     result.Deps(),
		State:    result.State(),
	}
	id, err := plan.OpID(s.token, entry)
	if err != nil {
		// Deps and strings always marshal; keep the trace entry usable.
		s.logger.Warn("op id computation failed", zap.Error(err))
	}
	entry.OpID = id
	s.trace = append(s.trace, entry)

	s.logger.Debug("operation staged",
		zap.String("session", s.token),
		zap.Int64("seq", entry.Seq),
		zap.String("op", fmt.Sprintf("%s.%s", receiverType, op)),
		zap.Ints("deps", entry.Deps),
		zap.String("state", entry.State.String()))
}

// typeNameOf derives a registry type name for a plain Go value.
func typeNameOf(v any) string {
	if v == nil {
		return "Nil"
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}
