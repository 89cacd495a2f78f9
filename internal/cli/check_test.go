package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/lineal-dev/lineal/internal/harness"
	"github.com/lineal-dev/lineal/internal/store"
)

func TestCheckPassingScenario(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCheckCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/scenarios/tag_swap.yaml"})

	require.NoError(t, cmd.Execute())

	output := buf.String()
	assert.Contains(t, output, "tag_swap: verdict pass")
	assert.Contains(t, output, "out[0] = tag(b; a)")
	assert.Contains(t, output, "PASS")
}

func TestCheckPassingScenarioJSON(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCheckCommand(&RootOptions{Format: "json"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/scenarios/note_pass.yaml"})

	require.NoError(t, cmd.Execute())

	var resp CLIResponse
	require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)

	data, err := json.Marshal(resp.Data)
	require.NoError(t, err)
	var report harness.Report
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "note_pass", report.Scenario)
	assert.True(t, report.Pass)
}

func TestCheckFailingExpectation(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewCheckCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/scenarios_mixed/bad_expect.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "FAIL")
}

func TestCheckMissingScenario(t *testing.T) {
	cmd := NewCheckCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/scenarios/nope.yaml"})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestCheckRecordsSessionToStore(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")

	cmd := NewCheckCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"testdata/scenarios/tag_swap.yaml", "--db", dbPath})

	require.NoError(t, cmd.Execute())

	st, err := store.Open(dbPath, zap.NewNop())
	require.NoError(t, err)
	defer st.Close()

	rec, err := st.ReadSession(context.Background(), harness.DefaultSessionToken)
	require.NoError(t, err)
	assert.Equal(t, store.VerdictPass, rec.Verdict)
	assert.Len(t, rec.Trace, 2)
}
