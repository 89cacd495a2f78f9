// Package harness runs usage-discipline scenarios as executable contract
// tests.
//
// A scenario declares an operation registry, a set of session inputs, a
// staging script, and an expected verdict. The harness compiles the
// registry, stages the script through a real session, verifies the plan,
// and compares the outcome against the expectation. Operations resolve
// through a symbolic binding, so scenarios need no host application and
// forced results are stable across runs.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: swap_pair
//	description: "Two tokens swap positions"
//	registry:
//	  Token:
//	    tag: {tracked: [0], transition: preserve, result: Token}
//	entry: apply
//	inputs:
//	  - {type: Token, value: a, as: x}
//	  - {type: Token, value: b, as: y}
//	script:
//	  - {receiver: y, op: tag, args: [{ref: x}], as: o1}
//	  - {receiver: x, op: tag, args: [{ref: y}], as: o2}
//	outputs: [o1, o2]
//	expect:
//	  verdict: pass
//	  values: ["tag(b; a)", "tag(a; b)"]
//
// Script arguments are scalar literals, or {ref: name} to pass a staged
// reference. A step may instead lift named references into one container:
//
//	- {lift: [x, y], as: pair}
//
// The entry field selects the contract: apply, apply_consumed,
// apply_multi, apply_consumed_multi, or custom. With custom, the policy
// clause names the multiplicities:
//
//	policy: {for_all: unrestricted, for_each: linear, consumption: unrestricted}
//
// # Deterministic Execution
//
// Each run uses a fixed session token (scenario.session_token, default
// "scenario-session") and the symbolic binding, so traces and values are
// identical across runs and suitable for golden comparison.
package harness
