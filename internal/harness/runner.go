package harness

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/declc"
	"github.com/lineal-dev/lineal/internal/engine"
	"github.com/lineal-dev/lineal/internal/plan"
	"github.com/lineal-dev/lineal/internal/registry"
)

// Verdict values for reports and expect clauses.
const (
	VerdictPass = "pass"
	VerdictFail = "fail"
)

// Report is the outcome of one scenario run.
type Report struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// Token is the session token used for the run.
	Token string `json:"token"`

	// Verdict is "pass" or "fail".
	Verdict string `json:"verdict"`

	// Code is the violation code when Verdict is fail.
	Code string `json:"code,omitempty"`

	// Message is the violation message when Verdict is fail.
	Message string `json:"message,omitempty"`

	// Values are the rendered output values when Verdict is pass.
	Values []string `json:"values,omitempty"`

	// Trace is the staged-operation log, in staging order.
	Trace []plan.StagedOp `json:"trace"`

	// Pass indicates the expect clause matched the outcome.
	Pass bool `json:"pass"`

	// Problems lists expectation mismatches. Empty when Pass is true.
	Problems []string `json:"problems,omitempty"`
}

// addProblem records one expectation mismatch and fails the report.
func (r *Report) addProblem(format string, args ...any) {
	r.Problems = append(r.Problems, fmt.Sprintf(format, args...))
	r.Pass = false
}

// Run executes a scenario and evaluates its expect clause.
//
// The returned error covers infrastructure failures only: a bad registry,
// an unresolvable reference, a broken declaration directory. A rejected
// plan is not an error; it surfaces as Verdict fail in the report.
func Run(scenario *Scenario, opts ...engine.Option) (*Report, error) {
	reg, err := buildRegistry(scenario)
	if err != nil {
		return nil, err
	}

	token := scenario.SessionToken
	if token == "" {
		token = DefaultSessionToken
	}

	inputs := make([]engine.Input, len(scenario.Inputs))
	for i, in := range scenario.Inputs {
		inputs[i] = engine.In(in.Type, in.Value)
	}

	var sess *engine.Session
	body := func(s *engine.Session, refs []*plan.Ref) ([]*plan.Ref, error) {
		sess = s
		return runScript(s, scenario, refs)
	}

	runOpts := append([]engine.Option{
		engine.WithTokenGenerator(engine.NewFixedGenerator(token)),
		engine.WithLogger(zap.NewNop()),
	}, opts...)

	values, runErr := dispatch(scenario, reg, inputs, body, runOpts)

	report := &Report{
		Scenario: scenario.Name,
		Token:    token,
		Verdict:  VerdictPass,
		Pass:     true,
	}
	if sess != nil {
		report.Trace = sess.Trace()
	}

	if runErr != nil {
		v, ok := plan.AsViolation(runErr)
		if !ok {
			return nil, fmt.Errorf("scenario %s: %w", scenario.Name, runErr)
		}
		report.Verdict = VerdictFail
		report.Code = string(v.Code)
		report.Message = v.Message
	} else {
		report.Values = renderValues(values)
	}

	evaluateExpect(scenario, report)
	return report, nil
}

// dispatch routes the scenario to its entry point.
func dispatch(scenario *Scenario, reg *registry.Registry, inputs []engine.Input, body engine.Body, opts []engine.Option) ([]any, error) {
	ctx := context.Background()

	switch scenario.Entry {
	case EntryApply:
		return engine.Apply(ctx, reg, inputs, body, opts...)
	case EntryApplyConsumed:
		return engine.ApplyConsumed(ctx, reg, inputs, body, opts...)
	case EntryApplyMulti:
		return engine.ApplyMulti(ctx, reg, inputs, body, opts...)
	case EntryApplyConsumedMulti:
		return engine.ApplyConsumedMulti(ctx, reg, inputs, body, opts...)
	case EntryCustom:
		forAll, err := plan.ParseMultiplicity(scenario.Policy.ForAll)
		if err != nil {
			return nil, fmt.Errorf("policy.for_all: %w", err)
		}
		forEach, err := plan.ParseMultiplicity(scenario.Policy.ForEach)
		if err != nil {
			return nil, fmt.Errorf("policy.for_each: %w", err)
		}
		consumption, err := plan.ParseMultiplicity(scenario.Policy.Consumption)
		if err != nil {
			return nil, fmt.Errorf("policy.consumption: %w", err)
		}
		custom := func(s *engine.Session, refs []*plan.Ref) (plan.Connective, error) {
			outputs, err := body(s, refs)
			if err != nil {
				return plan.Connective{}, err
			}
			return plan.Custom(forAll, forEach, outputs...), nil
		}
		return engine.CustomApply(ctx, reg, inputs, consumption, custom, opts...)
	default:
		return nil, fmt.Errorf("unknown entry %q", scenario.Entry)
	}
}

// buildRegistry compiles the scenario's declarations and binds the
// symbolic front-end for every declared type.
func buildRegistry(scenario *Scenario) (*registry.Registry, error) {
	var decls []declc.TypeDecl

	if scenario.RegistryDir != "" {
		result, errs := declc.Load(scenario.RegistryDir)
		if len(errs) > 0 {
			return nil, fmt.Errorf("loading declarations: %w", errs[0])
		}
		decls = result.Types
	} else {
		for typ, ops := range scenario.Registry {
			decl := declc.TypeDecl{Name: typ}
			for name, spec := range ops {
				decl.Ops = append(decl.Ops, declc.OpDecl{
					Name:       name,
					Tracked:    spec.Tracked,
					Transition: spec.Transition,
					Result:     spec.Result,
				})
			}
			decls = append(decls, decl)
		}
	}

	if errs := declc.Validate(decls); len(errs) > 0 {
		return nil, fmt.Errorf("invalid declarations: %w", errs[0])
	}

	reg := registry.New()
	if err := declc.Populate(reg, decls); err != nil {
		return nil, err
	}

	bound := make(map[string]bool)
	for _, decl := range decls {
		if !bound[decl.Name] {
			reg.Bind(decl.Name, registry.SymbolicBinding{})
			bound[decl.Name] = true
		}
		for _, op := range decl.Ops {
			if !bound[op.Result] {
				reg.Bind(op.Result, registry.SymbolicBinding{})
				bound[op.Result] = true
			}
		}
	}

	return reg, nil
}

// runScript interprets the staging script against a live session.
func runScript(s *engine.Session, scenario *Scenario, refs []*plan.Ref) ([]*plan.Ref, error) {
	env := make(map[string]*plan.Ref, len(refs)+len(scenario.Script))
	for i, in := range scenario.Inputs {
		env[in.As] = refs[i]
	}

	for i, step := range scenario.Script {
		var (
			result *plan.Ref
			err    error
		)
		if len(step.Lift) > 0 {
			elems := make([]*plan.Ref, len(step.Lift))
			for j, name := range step.Lift {
				elems[j] = env[name]
			}
			result, err = plan.LiftSlice(elems)
		} else {
			args := make([]any, len(step.Args))
			for j, arg := range step.Args {
				if name, ok := refName(arg); ok {
					args[j] = env[name]
				} else {
					args[j] = arg
				}
			}
			result, err = s.Stage(env[step.Receiver], step.Op, args...)
		}
		if err != nil {
			return nil, fmt.Errorf("script[%d]: %w", i, err)
		}
		if step.As != "" {
			env[step.As] = result
		}
	}

	outputs := make([]*plan.Ref, len(scenario.Outputs))
	for i, name := range scenario.Outputs {
		outputs[i] = env[name]
	}
	return outputs, nil
}

// evaluateExpect compares the run outcome against the expect clause.
func evaluateExpect(scenario *Scenario, report *Report) {
	expect := scenario.Expect

	if report.Verdict != expect.Verdict {
		report.addProblem("verdict: want %s, got %s", expect.Verdict, report.Verdict)
		return
	}

	if expect.Code != "" && report.Code != expect.Code {
		report.addProblem("violation code: want %s, got %s", expect.Code, report.Code)
	}

	if len(expect.Values) > 0 {
		if len(report.Values) != len(expect.Values) {
			report.addProblem("values: want %d, got %d", len(expect.Values), len(report.Values))
			return
		}
		for i, want := range expect.Values {
			if report.Values[i] != want {
				report.addProblem("values[%d]: want %q, got %q", i, want, report.Values[i])
			}
		}
	}
}

// renderValues formats forced output values the way the symbolic binding
// renders arguments, so scenario expectations read uniformly.
func renderValues(values []any) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = renderValue(v)
	}
	return out
}

func renderValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "none"
	case string:
		return val
	case []any:
		elems := make([]string, len(val))
		for i, e := range val {
			elems[i] = renderValue(e)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return fmt.Sprintf("%v", val)
	}
}
