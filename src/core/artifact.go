package core

import (
	"sort"
)

// An Artifact is a reference to a file that an action consumes or produces.
// Paths are always workspace-relative; the executor is responsible for
// staging them into whatever sandbox it runs actions in.
type Artifact struct {
	Path string
}

// IsZero returns true if this artifact hasn't been set.
func (a Artifact) IsZero() bool {
	return a.Path == ""
}

// SortArtifacts sorts the given artifacts into their canonical order and
// removes duplicates. All artifact sets handed to the executor go through
// this so that identical inputs always serialize identically.
func SortArtifacts(artifacts []Artifact) []Artifact {
	sort.Slice(artifacts, func(i, j int) bool { return artifacts[i].Path < artifacts[j].Path })
	ret := artifacts[:0]
	last := ""
	for i, a := range artifacts {
		if i == 0 || a.Path != last {
			ret = append(ret, a)
		}
		last = a.Path
	}
	return ret
}

// MarkerSuffix is appended to a node's name to derive its clippy marker artifact.
const MarkerSuffix = ".clippy.ok"

// MarkerFor returns the marker artifact for the given node. The marker has
// empty content; its existence is the sole signal that the verification
// action ran successfully. The executor model requires even pure checks to
// declare an output, so this is what they declare.
func MarkerFor(label BuildLabel) Artifact {
	return Artifact{Path: label.ArtifactName(MarkerSuffix)}
}
