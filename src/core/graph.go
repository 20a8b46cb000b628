// Representation of the workspace graph. Nodes arrive from the host graph's
// own analysis already resolved; this side never mutates them, it only
// derives per-node values (DepInfo, plans) from what it reads.

package core

import (
	"sort"
)

// A Node is one vertex of the workspace graph. Not every node is a
// compilation unit; nodes without crate metadata are skipped by the
// secondary analysis and cannot be depended on by crates.
type Node struct {
	// Identifier of this node.
	Label BuildLabel
	// Crate metadata, nil for non-compilation nodes.
	Crate *CrateInfo
	// Ordinary dependencies, as declared.
	Deps []BuildLabel
	// Compiler-plugin dependencies, kept apart from Deps throughout.
	ProcMacroDeps []BuildLabel
	// Aliases maps a name the node's source uses to the dependency it means.
	Aliases map[string]BuildLabel
	// Tags attached to the node, used for policy (opt-outs, generated code).
	Tags []string
	// External marks nodes in the third-party partition of the graph.
	External bool
	// BuildScript holds the node's own build-time step outputs, if any.
	BuildScript *BuildInfo
	// ExtraInputs are additional declared file inputs (e.g. include data).
	ExtraInputs []Artifact
	// ExtraFlags is a shell-style string of flags appended after everything
	// else, so they can override defaults.
	ExtraFlags string
	// Metadata files this node's build step exports to dependents.
	Metadata []Artifact

	// Flattened dependency info, memoized by the primary analysis pass.
	depInfo *DepInfo
}

// HasTag returns true if the node carries the given tag.
func (node *Node) HasTag(tag string) bool {
	for _, t := range node.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DepInfo returns the node's memoized flattened dependencies, or nil if the
// primary pass hasn't analysed it yet.
func (node *Node) DepInfo() *DepInfo {
	return node.depInfo
}

// SetDepInfo memoizes the node's flattened dependencies. It's called exactly
// once per node by the primary analysis pass.
func (node *Node) SetDepInfo(deps *DepInfo) {
	if node.depInfo != nil {
		panic("re-analysing dependencies of " + node.Label.String())
	}
	node.depInfo = deps
}

// A BuildGraph contains all the known nodes of the workspace. The host graph
// guarantees it's acyclic before we ever see it; nothing here checks that.
type BuildGraph struct {
	nodes map[BuildLabel]*Node
}

// NewBuildGraph constructs an empty graph.
func NewBuildGraph() *BuildGraph {
	return &BuildGraph{nodes: map[BuildLabel]*Node{}}
}

// AddNode adds a new node to the graph.
func (graph *BuildGraph) AddNode(node *Node) *Node {
	if _, present := graph.nodes[node.Label]; present {
		panic("Attempted to re-add existing node to build graph: " + node.Label.String())
	}
	graph.nodes[node.Label] = node
	return node
}

// Node retrieves a node from the graph by label. Returns nil if not present.
func (graph *BuildGraph) Node(label BuildLabel) *Node {
	return graph.nodes[label]
}

// NodeOrDie retrieves a node from the graph by label. Dies if not present.
func (graph *BuildGraph) NodeOrDie(label BuildLabel) *Node {
	node := graph.Node(label)
	if node == nil {
		log.Fatalf("Node %s not found in build graph", label)
	}
	return node
}

// Len returns the number of nodes in the graph.
func (graph *BuildGraph) Len() int {
	return len(graph.nodes)
}

// Labels returns all node labels in canonical order.
func (graph *BuildGraph) Labels() []BuildLabel {
	ret := make([]BuildLabel, 0, len(graph.nodes))
	for label := range graph.nodes {
		ret = append(ret, label)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i].Less(ret[j]) })
	return ret
}
