package harness

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lineal-dev/lineal/internal/plan"
)

func loadAndRun(t *testing.T, name string) *Report {
	t.Helper()
	s, err := LoadScenario("testdata/scenarios/" + name + ".yaml")
	require.NoError(t, err)
	report, err := Run(s)
	require.NoError(t, err)
	return report
}

func TestRunSwapPair(t *testing.T) {
	report := loadAndRun(t, "swap_pair")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, VerdictPass, report.Verdict)
	assert.Equal(t, DefaultSessionToken, report.Token)

	wantValues := []string{"tag(b; a)", "tag(a; b)"}
	if diff := cmp.Diff(wantValues, report.Values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	require.Len(t, report.Trace, 2)
	assert.Equal(t, []int{1, 0}, report.Trace[0].Deps)
	assert.Equal(t, []int{0, 1}, report.Trace[1].Deps)
	assert.Equal(t, int64(1), report.Trace[0].Seq)
	assert.Equal(t, int64(2), report.Trace[1].Seq)
}

func TestRunUnusedInput(t *testing.T) {
	report := loadAndRun(t, "unused_input")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, string(plan.CodeForAllRelevant), report.Code)
	assert.Empty(t, report.Values)
	assert.Len(t, report.Trace, 2)
}

func TestRunConsumeReceipt(t *testing.T) {
	report := loadAndRun(t, "consume_receipt")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	require.Len(t, report.Trace, 1)
	assert.Equal(t, plan.StateConsumed, report.Trace[0].State)
	assert.Equal(t, []string{"finalize(r1)"}, report.Values)
}

func TestRunLiftPair(t *testing.T) {
	report := loadAndRun(t, "lift_pair")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, []string{"[a, b]"}, report.Values)
	assert.Empty(t, report.Trace, "lifting stages no operations")
}

func TestRunEachLinearGap(t *testing.T) {
	report := loadAndRun(t, "each_linear_gap")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, string(plan.CodeForEachRelevant), report.Code)
}

func TestRunDoubleFinalize(t *testing.T) {
	report := loadAndRun(t, "double_finalize")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, string(plan.CodeConsumptionMismatch), report.Code)
	// The first finalize staged before the rejection.
	require.Len(t, report.Trace, 1)
}

func TestRunRegistryDir(t *testing.T) {
	report := loadAndRun(t, "peek_finalized")

	assert.True(t, report.Pass, "problems: %v", report.Problems)
	assert.Equal(t, []string{"peek(finalize(r1))"}, report.Values)
	require.Len(t, report.Trace, 2)
	assert.Equal(t, "peek", report.Trace[1].Op)
	assert.Equal(t, plan.StateConsumed, report.Trace[1].State)
}

func TestRunFlagsExpectationMismatch(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/swap_pair.yaml")
	require.NoError(t, err)
	s.Expect.Values = []string{"tag(b; a)", "wrong"}

	report, err := Run(s)
	require.NoError(t, err)

	assert.False(t, report.Pass)
	require.Len(t, report.Problems, 1)
	assert.Contains(t, report.Problems[0], `want "wrong"`)
}

func TestRunUnknownOperationIsViolation(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/swap_pair.yaml")
	require.NoError(t, err)
	s.Script[0].Op = "ghost"

	report, err := Run(s)
	require.NoError(t, err)

	assert.Equal(t, VerdictFail, report.Verdict)
	assert.Equal(t, string(plan.CodeRegistryMiss), report.Code)
	assert.False(t, report.Pass, "expected pass verdict, got registry miss")
}

func TestRunRejectsBadDeclarations(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/swap_pair.yaml")
	require.NoError(t, err)
	s.Registry["Token"]["tag"] = OpSpec{Transition: "discard", Result: "Token"}

	_, err = Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid declarations")
}
