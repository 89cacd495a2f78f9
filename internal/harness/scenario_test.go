package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadScenario(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/swap_pair.yaml")
	require.NoError(t, err)

	assert.Equal(t, "swap_pair", s.Name)
	assert.Equal(t, EntryApply, s.Entry)
	require.Len(t, s.Inputs, 2)
	assert.Equal(t, "x", s.Inputs[0].As)
	require.Len(t, s.Script, 2)
	assert.Equal(t, "y", s.Script[0].Receiver)
	assert.Equal(t, []string{"o1", "o2"}, s.Outputs)
	assert.Equal(t, VerdictPass, s.Expect.Verdict)
}

func TestLoadScenarioResolvesRegistryDir(t *testing.T) {
	s, err := LoadScenario("testdata/scenarios/peek_finalized.yaml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("testdata", "scenarios", "..", "decls"), s.RegistryDir)
}

func TestLoadScenarioDir(t *testing.T) {
	scenarios, err := LoadScenarioDir("testdata/scenarios")
	require.NoError(t, err)
	require.Len(t, scenarios, 7)

	// Sorted by file path.
	assert.Equal(t, "consume_receipt", scenarios[0].Name)
}

func TestLoadScenarioRejectsUnknownFields(t *testing.T) {
	path := writeScenario(t, `
name: typo
description: "unknown field"
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: apply
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: o1}
outputs: [o1]
expectation:
  verdict: pass
`)
	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing scenario YAML")
}

func TestValidateScenarioErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "missing entry",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: o1}
outputs: [o1]
expect: {verdict: pass}
`,
			want: "entry is required",
		},
		{
			name: "unknown receiver",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: apply
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: ghost, op: note, as: o1}
outputs: [o1]
expect: {verdict: pass}
`,
			want: `unknown receiver "ghost"`,
		},
		{
			name: "unknown output",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: apply
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: o1}
outputs: [o9]
expect: {verdict: pass}
`,
			want: `unknown reference "o9"`,
		},
		{
			name: "custom without policy",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: custom
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: o1}
outputs: [o1]
expect: {verdict: pass}
`,
			want: "custom entry requires a policy clause",
		},
		{
			name: "code with pass verdict",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: apply
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: o1}
outputs: [o1]
expect: {verdict: pass, code: ARITY_MISMATCH}
`,
			want: "code is only valid with verdict fail",
		},
		{
			name: "duplicate name",
			yaml: `
name: s
description: d
registry:
  Token:
    note: {transition: preserve, result: Token}
entry: apply
inputs:
  - {type: Token, value: a, as: x}
script:
  - {receiver: x, op: note, as: x}
outputs: [x]
expect: {verdict: pass}
`,
			want: `duplicate name "x"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadScenario(writeScenario(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func writeScenario(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
