package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/lineal-dev/lineal/internal/plan"
)

// snapshotMap renders a report for canonical JSON serialization. Hashes
// are excluded: op identities are derived content, not scenario behavior.
func snapshotMap(r *Report) map[string]any {
	trace := make([]any, len(r.Trace))
	for i, op := range r.Trace {
		trace[i] = map[string]any{
			"seq":      op.Seq,
			"receiver": op.Receiver,
			"op":       op.Op,
			"deps":     op.Deps,
			"state":    op.State.String(),
		}
	}

	m := map[string]any{
		"scenario": r.Scenario,
		"session":  r.Token,
		"verdict":  r.Verdict,
		"trace":    trace,
	}
	if r.Verdict == VerdictFail {
		m["code"] = r.Code
	}
	if len(r.Values) > 0 {
		m["values"] = r.Values
	}
	return m
}

// RunWithGolden executes a scenario and compares its report snapshot
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Report, error) {
	t.Helper()

	report, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	snapshot, err := plan.MarshalCanonical(snapshotMap(report))
	if err != nil {
		return nil, err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, snapshot)

	return report, nil
}
