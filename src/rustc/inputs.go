package rustc

import (
	"github.com/please-build/crater/src/core"
)

// CollectInputs resolves everything that must be staged for a node's action
// to run: its own sources, dependency artifacts, dependency build metadata,
// its own build-script outputs if it has any, declared extra inputs and the
// toolchain binary itself. Resolution is pure; staging is the executor's job.
func CollectInputs(node *core.Node, deps *core.DepInfo, tool string) ([]core.Artifact, *core.BuildInfo) {
	crate := node.Crate
	inputs := make([]core.Artifact, 0, len(crate.Srcs)+len(deps.Transitive)+len(deps.BuildMetadata)+len(node.ExtraInputs)+4)
	for _, src := range crate.Srcs {
		inputs = append(inputs, core.Artifact{Path: src})
	}
	for _, dep := range deps.Transitive {
		inputs = append(inputs, dep.Out)
	}
	for _, dep := range deps.ProcMacros {
		inputs = append(inputs, dep.Out)
	}
	inputs = append(inputs, deps.BuildMetadata...)
	inputs = append(inputs, node.ExtraInputs...)
	inputs = append(inputs, core.Artifact{Path: tool})
	build := node.BuildScript
	if build != nil {
		for _, a := range []core.Artifact{build.EnvFile, build.FlagsFile, build.OutDir} {
			if !a.IsZero() {
				inputs = append(inputs, a)
			}
		}
	}
	return core.SortArtifacts(inputs), build
}
