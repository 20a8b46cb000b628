// Package clippy drives the secondary analysis: it attaches an analyzer
// action to every qualifying node of an already-analysed graph, without
// re-deriving or mutating anything the primary pass computed, and collects
// the resulting markers into one combined result.
package clippy

import (
	"sort"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/crater/src/action"
	"github.com/please-build/crater/src/core"
	"github.com/please-build/crater/src/toolchain"
)

var log = logging.MustGetLogger("clippy")

// OptOutTag lets a node exclude itself from the secondary analysis.
const OptOutTag = "no-clippy"

// A SkipReason says why a node was left out of the secondary analysis.
// Skipping is policy, not failure; skipped nodes produce no marker and no
// error.
type SkipReason string

const (
	// SkipNone means the node qualifies.
	SkipNone SkipReason = ""
	// SkipExternal is a node in the third-party partition of the graph.
	SkipExternal SkipReason = "external"
	// SkipOptOut is a node tagged with the opt-out tag.
	SkipOptOut SkipReason = "opted out"
	// SkipNoCrate is a node with no crate metadata (not a compilation unit).
	SkipNoCrate SkipReason = "not a compilation unit"
)

// Eligibility decides whether the secondary analysis should visit a node,
// returning the reason it shouldn't. Evaluated once per node.
func Eligibility(node *core.Node) SkipReason {
	if node.Crate == nil {
		return SkipNoCrate
	} else if node.External {
		return SkipExternal
	} else if node.HasTag(OptOutTag) {
		return SkipOptOut
	}
	return SkipNone
}

// Check attaches the analyzer action to a single node, or reports why it was
// skipped. Exactly one of the returns is meaningful: an action, a skip
// reason, or an error.
func Check(graph *core.BuildGraph, node *core.Node, tc *toolchain.Toolchain, config string) (*action.Action, SkipReason, error) {
	if reason := Eligibility(node); reason != SkipNone {
		log.Debug("Skipping %s: %s", node.Label, reason)
		return nil, reason, nil
	}
	a, err := action.EmitAspect(graph, node, tc, config)
	if err != nil {
		return nil, SkipNone, err
	}
	return a, SkipNone, nil
}

// A Result is the combined outcome of the secondary analysis over a set of
// nodes: the union of all markers produced, plus which nodes were skipped
// and why.
type Result struct {
	// Actions are the emitted analyzer actions, in canonical label order.
	Actions []*action.Action
	// Markers is the union of the actions' marker artifacts.
	Markers []core.Artifact
	// Skipped records the ineligible nodes and their reasons.
	Skipped map[core.BuildLabel]SkipReason
}

// Aggregate runs the secondary analysis over an explicit set of nodes and
// combines the results. Skipped nodes contribute nothing and don't fail the
// aggregate; configuration errors on individual nodes accumulate and are all
// reported together.
func Aggregate(graph *core.BuildGraph, labels []core.BuildLabel, tc *toolchain.Toolchain, config string) (*Result, error) {
	sorted := append([]core.BuildLabel{}, labels...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Less(sorted[j]) })
	result := &Result{Skipped: map[core.BuildLabel]SkipReason{}}
	var errs *multierror.Error
	for _, label := range sorted {
		node := graph.Node(label)
		if node == nil {
			errs = multierror.Append(errs, core.ConfigErrorf("%s not in graph", label))
			continue
		}
		a, reason, err := Check(graph, node, tc, config)
		if err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		if reason != SkipNone {
			result.Skipped[label] = reason
			continue
		}
		result.Actions = append(result.Actions, a)
		result.Markers = append(result.Markers, a.Plan.Outputs...)
	}
	return result, errs.ErrorOrNil()
}
