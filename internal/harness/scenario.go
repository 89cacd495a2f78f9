package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// DefaultSessionToken is used when a scenario names no session_token.
const DefaultSessionToken = "scenario-session"

// Entry point names accepted in the entry field.
const (
	EntryApply              = "apply"
	EntryApplyConsumed      = "apply_consumed"
	EntryApplyMulti         = "apply_multi"
	EntryApplyConsumedMulti = "apply_consumed_multi"
	EntryCustom             = "custom"
)

// Scenario defines one usage-discipline contract test.
type Scenario struct {
	// Name uniquely identifies this scenario. Golden files are keyed on it.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Registry declares operations inline: type name to operation name to
	// spec. Either Registry or RegistryDir must be set.
	Registry map[string]map[string]OpSpec `yaml:"registry,omitempty"`

	// RegistryDir points at a directory of CUE declaration files, relative
	// to the scenario file.
	RegistryDir string `yaml:"registry_dir,omitempty"`

	// SessionToken is the fixed token for this run. Defaults to
	// DefaultSessionToken so golden files stay stable.
	SessionToken string `yaml:"session_token,omitempty"`

	// Entry selects the contract: apply, apply_consumed, apply_multi,
	// apply_consumed_multi, or custom.
	Entry string `yaml:"entry"`

	// Policy names the multiplicities for the custom entry point.
	Policy *PolicyClause `yaml:"policy,omitempty"`

	// Inputs are the session's tracked inputs, in ordinal order.
	Inputs []InputClause `yaml:"inputs"`

	// Script is the staging sequence.
	Script []ScriptStep `yaml:"script"`

	// Outputs names the script results forming the session's outputs.
	Outputs []string `yaml:"outputs"`

	// Expect is the required outcome.
	Expect ExpectClause `yaml:"expect"`
}

// OpSpec declares one operation inline.
type OpSpec struct {
	Tracked    []int  `yaml:"tracked,omitempty"`
	Transition string `yaml:"transition"`
	Result     string `yaml:"result"`
}

// InputClause is one session input.
type InputClause struct {
	// Type is the registry type name.
	Type string `yaml:"type"`

	// Value is the concrete value, usually a string for symbolic runs.
	Value any `yaml:"value"`

	// As names the input for script references.
	As string `yaml:"as"`
}

// ScriptStep stages one operation or lifts references into a container.
// Exactly one of Op or Lift is used.
type ScriptStep struct {
	// Receiver names the reference the operation is staged on.
	Receiver string `yaml:"receiver,omitempty"`

	// Op is the operation name.
	Op string `yaml:"op,omitempty"`

	// Args are scalar literals or {ref: name} maps.
	Args []any `yaml:"args,omitempty"`

	// Lift names references to combine into one container reference.
	Lift []string `yaml:"lift,omitempty"`

	// As names the result for later references and the outputs list.
	As string `yaml:"as"`
}

// PolicyClause names the multiplicities for the custom entry point.
type PolicyClause struct {
	ForAll      string `yaml:"for_all"`
	ForEach     string `yaml:"for_each"`
	Consumption string `yaml:"consumption"`
}

// ExpectClause is the required outcome of a scenario run.
type ExpectClause struct {
	// Verdict is "pass" or "fail".
	Verdict string `yaml:"verdict"`

	// Code is the required violation code when Verdict is fail.
	Code string `yaml:"code,omitempty"`

	// Values are the required rendered output values when Verdict is pass.
	Values []string `yaml:"values,omitempty"`
}

// LoadScenario reads and parses a scenario YAML file. Unknown fields are
// rejected so typos surface as load errors, not silently ignored clauses.
// RegistryDir is resolved relative to the scenario file's directory.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	if scenario.RegistryDir != "" && !filepath.IsAbs(scenario.RegistryDir) {
		scenario.RegistryDir = filepath.Join(filepath.Dir(path), scenario.RegistryDir)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario %s: %w", path, err)
	}

	return &scenario, nil
}

// LoadScenarioDir loads every .yaml file under dir, sorted by path.
func LoadScenarioDir(dir string) ([]*Scenario, error) {
	var paths []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if ext := filepath.Ext(path); !info.IsDir() && (ext == ".yaml" || ext == ".yml") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning scenario directory: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no scenario files found in %s", dir)
	}
	sort.Strings(paths)

	scenarios := make([]*Scenario, 0, len(paths))
	for _, path := range paths {
		s, err := LoadScenario(path)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// validateScenario checks required fields before any session runs.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Registry) == 0 && s.RegistryDir == "" {
		return fmt.Errorf("registry or registry_dir is required")
	}
	if len(s.Registry) > 0 && s.RegistryDir != "" {
		return fmt.Errorf("registry and registry_dir are mutually exclusive")
	}

	switch s.Entry {
	case EntryApply, EntryApplyConsumed, EntryApplyMulti, EntryApplyConsumedMulti:
		if s.Policy != nil {
			return fmt.Errorf("policy is only valid with the custom entry")
		}
	case EntryCustom:
		if s.Policy == nil {
			return fmt.Errorf("custom entry requires a policy clause")
		}
	case "":
		return fmt.Errorf("entry is required")
	default:
		return fmt.Errorf("unknown entry %q", s.Entry)
	}

	names := make(map[string]bool)
	for i, in := range s.Inputs {
		if in.Type == "" {
			return fmt.Errorf("inputs[%d]: type is required", i)
		}
		if in.As == "" {
			return fmt.Errorf("inputs[%d]: as is required", i)
		}
		if names[in.As] {
			return fmt.Errorf("inputs[%d]: duplicate name %q", i, in.As)
		}
		names[in.As] = true
	}

	for i, step := range s.Script {
		switch {
		case len(step.Lift) > 0:
			if step.Op != "" || step.Receiver != "" {
				return fmt.Errorf("script[%d]: lift cannot be combined with an operation", i)
			}
			for _, name := range step.Lift {
				if !names[name] {
					return fmt.Errorf("script[%d]: unknown reference %q", i, name)
				}
			}
		case step.Op != "":
			if step.Receiver == "" {
				return fmt.Errorf("script[%d]: receiver is required", i)
			}
			if !names[step.Receiver] {
				return fmt.Errorf("script[%d]: unknown receiver %q", i, step.Receiver)
			}
			for j, arg := range step.Args {
				if name, ok := refName(arg); ok && !names[name] {
					return fmt.Errorf("script[%d].args[%d]: unknown reference %q", i, j, name)
				}
			}
		default:
			return fmt.Errorf("script[%d]: op or lift is required", i)
		}
		if step.As != "" {
			if names[step.As] {
				return fmt.Errorf("script[%d]: duplicate name %q", i, step.As)
			}
			names[step.As] = true
		}
	}

	for i, out := range s.Outputs {
		if !names[out] {
			return fmt.Errorf("outputs[%d]: unknown reference %q", i, out)
		}
	}

	switch s.Expect.Verdict {
	case VerdictPass:
		if s.Expect.Code != "" {
			return fmt.Errorf("expect: code is only valid with verdict fail")
		}
	case VerdictFail:
		if len(s.Expect.Values) > 0 {
			return fmt.Errorf("expect: values are only valid with verdict pass")
		}
	case "":
		return fmt.Errorf("expect: verdict is required")
	default:
		return fmt.Errorf("expect: unknown verdict %q", s.Expect.Verdict)
	}

	return nil
}

// refName extracts the name from a {ref: name} argument.
func refName(arg any) (string, bool) {
	m, ok := arg.(map[string]any)
	if !ok || len(m) != 1 {
		return "", false
	}
	name, ok := m["ref"].(string)
	return name, ok
}
