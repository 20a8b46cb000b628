package core

import (
	"sort"
)

// A DepInfo is the flattened view of everything a crate's compilation needs
// from its dependencies. It is computed once per node during the primary
// analysis pass and read-only afterwards. Both crate sets are deduplicated
// by owning label and held in canonical (label string) order; input
// declaration order never affects them.
type DepInfo struct {
	// Transitive is every crate reachable via ordinary dependencies,
	// including the direct ones.
	Transitive []*CrateInfo
	// ProcMacros are the direct compiler-plugin dependencies. They are kept
	// disjoint from Transitive since they're loaded by the compiler rather
	// than linked, which needs different invocation syntax.
	ProcMacros []*CrateInfo
	// Aliases maps the name a crate's source uses for a dependency to that
	// dependency's label, where it differs from the dependency's crate name.
	Aliases map[string]BuildLabel
	// BuildMetadata is the set of build-time-generated metadata files
	// exported by dependency build steps.
	BuildMetadata []Artifact
}

// AliasFor returns the name the owning crate's source uses for the given
// dependency, which is its declared alias if one exists, else the crate name.
// Several aliases for one dependency resolve to the lexicographically first,
// so argument construction stays deterministic.
func (d *DepInfo) AliasFor(crate *CrateInfo) string {
	best := ""
	for alias, label := range d.Aliases {
		if label == crate.Owner && (best == "" || alias < best) {
			best = alias
		}
	}
	if best != "" {
		return best
	}
	return crate.Name
}

// SortCrates sorts a crate set into canonical order and dedups it by owner.
func SortCrates(crates []*CrateInfo) []*CrateInfo {
	sort.Slice(crates, func(i, j int) bool { return crates[i].Owner.Less(crates[j].Owner) })
	ret := crates[:0]
	for i, c := range crates {
		if i == 0 || c.Owner != crates[i-1].Owner {
			ret = append(ret, c)
		}
	}
	return ret
}

// A BuildInfo holds the outputs of a unit's own build-time step (in Rust
// terms, its build script). They are consumed only by that unit's main
// action; dependents only ever see the exported metadata files through
// DepInfo, never these handles.
type BuildInfo struct {
	// EnvFile contains KEY=VALUE lines the executor merges verbatim into the
	// action's environment before invoking the toolchain.
	EnvFile Artifact
	// FlagsFile contains extra compiler flags, passed as an @argfile.
	FlagsFile Artifact
	// OutDir is the directory tree of generated files, exposed as OUT_DIR.
	OutDir Artifact
}
