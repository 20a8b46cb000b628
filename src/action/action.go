// Package action turns analysed nodes into declared actions: one invocation
// plan, a designated toolchain binary and a designated output, ready to hand
// to the executor. It supports the primary compile step and the secondary
// (attachable) analyzer step.
package action

import (
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/crater/src/core"
	"github.com/please-build/crater/src/rustc"
	"github.com/please-build/crater/src/toolchain"
)

var log = logging.MustGetLogger("action")

// OutputGroup is the named group the secondary analysis markers are exposed
// under, so callers can request all verification markers without requesting
// full builds.
const OutputGroup = "clippy"

// An Action is one declared, cacheable execution step. The executor stages
// Plan.Inputs, runs Tool with Plan.Args under Plan.Env and requires
// Plan.Outputs to exist afterwards.
type Action struct {
	// Label of the node this action belongs to.
	Label core.BuildLabel
	// Tool is the binary to invoke.
	Tool string
	// Plan is the full invocation description.
	Plan *core.InvocationPlan
	// OutputGroup is empty for the primary action, "clippy" for markers.
	OutputGroup string
}

// Emit constructs a node's primary compile action. Configuration errors are
// fatal to this node's analysis and are never downgraded; no partial action
// is ever returned.
func Emit(graph *core.BuildGraph, node *core.Node, tc *toolchain.Toolchain, emit []rustc.EmitKind, lintConfig string) (*Action, error) {
	if node.Crate == nil {
		return nil, core.ConfigErrorf("%s: not a compilation unit", node.Label)
	}
	if err := node.Crate.Validate(); err != nil {
		return nil, err
	}
	deps, err := rustc.CollectDeps(graph, node)
	if err != nil {
		return nil, err
	}
	inputs, build := rustc.CollectInputs(node, deps, tc.Rustc)
	plan, err := rustc.ConstructArgs(rustc.Request{
		Crate:      node.Crate,
		Deps:       deps,
		Toolchain:  tc,
		Emit:       emit,
		ExtraFlags: node.ExtraFlags,
		External:   node.External,
		Build:      build,
		LintConfig: lintConfig, // filename is validated on the primary path too
	})
	if err != nil {
		return nil, err
	}
	plan.Inputs = inputs
	plan.Outputs = []core.Artifact{node.Crate.Out}
	log.Debug("Emitted build action for %s", node.Label)
	return &Action{Label: node.Label, Tool: tc.Rustc, Plan: plan}, nil
}

// EmitAspect constructs the secondary analyzer action for a node the primary
// pass has already analysed. It reuses the node's memoized dependency info
// rather than re-deriving it, never alters the primary action, and produces
// a marker artifact under the clippy output group. Eligibility is the
// caller's problem; this assumes the node qualifies.
func EmitAspect(graph *core.BuildGraph, node *core.Node, tc *toolchain.Toolchain, lintConfig string) (*Action, error) {
	if node.Crate == nil {
		return nil, core.ConfigErrorf("%s: not a compilation unit", node.Label)
	}
	if tc.Clippy == "" {
		return nil, core.ConfigErrorf("toolchain %s has no clippy binary configured", tc.Name)
	}
	deps, err := rustc.CollectDeps(graph, node)
	if err != nil {
		return nil, err
	}
	inputs, build := rustc.CollectInputs(node, deps, tc.Clippy)
	plan, err := rustc.ConstructArgs(rustc.Request{
		Crate:      node.Crate,
		Deps:       deps,
		Toolchain:  tc,
		Emit:       []rustc.EmitKind{rustc.EmitMetadata},
		ExtraFlags: node.ExtraFlags,
		External:   node.External,
		Build:      build,
		Lint:       true,
		LintConfig: lintConfig,
	})
	if err != nil {
		return nil, err
	}
	if lintConfig != "" {
		inputs = core.SortArtifacts(append(inputs, core.Artifact{Path: lintConfig}))
	}
	plan.Inputs = inputs
	plan.Outputs = []core.Artifact{core.MarkerFor(node.Label)}
	log.Debug("Emitted clippy action for %s", node.Label)
	return &Action{Label: node.Label, Tool: tc.Clippy, Plan: plan, OutputGroup: OutputGroup}, nil
}
