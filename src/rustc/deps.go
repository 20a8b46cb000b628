// Package rustc derives the invocation plans for the Rust toolchain; it
// houses the dependency collector, the input collector and the argument
// constructor. Everything here is a pure function of its inputs so unrelated
// nodes can be analysed in parallel by whoever drives us.
package rustc

import (
	"sort"

	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/crater/src/core"
)

var log = logging.MustGetLogger("rustc")

// CollectDeps flattens a node's declared dependencies into a DepInfo.
// Dependencies must already carry crate metadata from the primary analysis
// pass; the result is memoized on the node so the secondary pass never
// re-derives it. The host graph rejects cycles before we get here.
func CollectDeps(graph *core.BuildGraph, node *core.Node) (*core.DepInfo, error) {
	if deps := node.DepInfo(); deps != nil {
		return deps, nil
	}
	transitive := map[core.BuildLabel]*core.CrateInfo{}
	metadata := []core.Artifact{}
	for _, label := range node.Deps {
		dep := graph.Node(label)
		if dep == nil {
			return nil, core.ConfigErrorf("%s: dependency %s not in graph", node.Label, label)
		} else if dep.Crate == nil {
			return nil, core.ConfigErrorf("%s: dependency %s is not a compilation unit", node.Label, label)
		}
		depInfo, err := CollectDeps(graph, dep)
		if err != nil {
			return nil, err
		}
		transitive[dep.Label] = dep.Crate
		for _, c := range depInfo.Transitive {
			transitive[c.Owner] = c
		}
		metadata = append(metadata, dep.Metadata...)
		metadata = append(metadata, depInfo.BuildMetadata...)
	}
	procMacros := []*core.CrateInfo{}
	for _, label := range node.ProcMacroDeps {
		dep := graph.Node(label)
		if dep == nil {
			return nil, core.ConfigErrorf("%s: proc-macro dependency %s not in graph", node.Label, label)
		} else if dep.Crate == nil || dep.Crate.Kind != core.ProcMacro {
			return nil, core.ConfigErrorf("%s: proc-macro dependency %s is not a proc-macro crate", node.Label, label)
		}
		procMacros = append(procMacros, dep.Crate)
	}
	crates := make([]*core.CrateInfo, 0, len(transitive))
	for _, c := range transitive {
		crates = append(crates, c)
	}
	deps := &core.DepInfo{
		Transitive:    core.SortCrates(crates),
		ProcMacros:    core.SortCrates(procMacros),
		Aliases:       node.Aliases,
		BuildMetadata: core.SortArtifacts(metadata),
	}
	if err := checkAliases(graph, node, deps); err != nil {
		return nil, err
	}
	node.SetDepInfo(deps)
	log.Debug("Collected %d transitive deps for %s", len(deps.Transitive), node.Label)
	return deps, nil
}

// checkAliases verifies the node's declared aliases: each must name a
// declared dependency, and no alias may collide with the crate name of a
// different direct dependency. Silent shadowing would make the argument list
// ambiguous, so it's rejected here rather than left to the compiler.
func checkAliases(graph *core.BuildGraph, node *core.Node, deps *core.DepInfo) error {
	aliases := make([]string, 0, len(deps.Aliases))
	for alias := range deps.Aliases {
		aliases = append(aliases, alias)
	}
	sort.Strings(aliases) // report errors deterministically
	for _, alias := range aliases {
		target := deps.Aliases[alias]
		if !declaresDep(node, target) {
			return core.ConfigErrorf("%s: alias %s refers to %s which is not a declared dependency", node.Label, alias, target)
		}
		for _, label := range append(node.Deps, node.ProcMacroDeps...) {
			if label == target {
				continue
			}
			if dep := graph.Node(label); dep != nil && dep.Crate != nil && dep.Crate.Name == alias {
				return core.ConfigErrorf("%s: alias %s collides with the crate name of dependency %s", node.Label, alias, label)
			}
		}
	}
	return nil
}

func declaresDep(node *core.Node, label core.BuildLabel) bool {
	for _, l := range node.Deps {
		if l == label {
			return true
		}
	}
	for _, l := range node.ProcMacroDeps {
		if l == label {
			return true
		}
	}
	return false
}
