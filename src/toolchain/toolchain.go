// Package toolchain resolves the concrete compiler & analyzer binaries to
// use for a given execution platform, from a registry config file.
package toolchain

import (
	"sort"

	"github.com/Masterminds/semver/v3"
	"github.com/please-build/gcfg"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/crater/src/core"
)

var log = logging.MustGetLogger("toolchain")

// A Toolchain describes one registered compiler/analyzer pair and the
// platforms it can run on. Resolution copies the registry's edition table
// onto the descriptor so downstream code only ever needs the descriptor.
type Toolchain struct {
	// Name of the toolchain as registered; filled in from its section name.
	Name string
	// Rustc is the path to the primary compiler binary.
	Rustc string
	// Clippy is the path to the secondary analyzer binary.
	Clippy string
	// OS and Arch constrain the platforms this toolchain runs on.
	// Empty means it matches any.
	OS   []string
	Arch []string
	// Version is the compiler's version, used to gate editions.
	Version string
	// Flag is the default flags always passed first.
	Flag []string

	// Editions is the registry's edition table, copied onto the descriptor
	// when the registry is read so downstream code needs nothing but this.
	Editions map[string]*Edition
}

// An Edition holds the per-edition defaults from the registry.
type Edition struct {
	// Flag is the extra flags this edition needs.
	Flag []string
	// MinVersion is the minimum compiler version supporting this edition.
	MinVersion string
}

// A Registry is the set of registered toolchains & editions, loaded from an
// ini-style config file with [toolchain "name"] and [edition "year"] sections.
type Registry struct {
	Toolchain map[string]*Toolchain
	Edition   map[string]*Edition
}

// ReadRegistry loads a toolchain registry from the given file.
func ReadRegistry(filename string) (*Registry, error) {
	registry := &Registry{}
	if err := gcfg.ReadFileInto(registry, filename); err != nil {
		return nil, err
	}
	for name, tc := range registry.Toolchain {
		tc.Name = name
		tc.Editions = registry.Edition
		if tc.Rustc == "" {
			return nil, core.ConfigErrorf("toolchain %s: no rustc binary configured", name)
		}
	}
	return registry, nil
}

// Resolve selects the toolchain matching the given execution platform.
// It fails with a configuration error if none matches; that's fatal to
// analysis of anything needing a toolchain, not retryable.
func (registry *Registry) Resolve(os, arch string) (*Toolchain, error) {
	names := make([]string, 0, len(registry.Toolchain))
	for name := range registry.Toolchain {
		names = append(names, name)
	}
	sort.Strings(names) // deterministic choice when several match
	for _, name := range names {
		tc := registry.Toolchain[name]
		if tc.matches(os, arch) {
			log.Debug("Resolved toolchain %s for %s_%s", name, os, arch)
			return tc, nil
		}
	}
	return nil, core.ConfigErrorf("no registered toolchain matches platform %s_%s", os, arch)
}

func (tc *Toolchain) matches(os, arch string) bool {
	return matchesConstraint(tc.OS, os) && matchesConstraint(tc.Arch, arch)
}

func matchesConstraint(constraint []string, value string) bool {
	if len(constraint) == 0 {
		return true
	}
	for _, c := range constraint {
		if c == value {
			return true
		}
	}
	return false
}

// EditionFlags returns the default flags for the given language edition,
// verifying that this toolchain's compiler is new enough for it.
func (tc *Toolchain) EditionFlags(edition string) ([]string, error) {
	ed, present := tc.Editions[edition]
	if !present {
		return nil, core.ConfigErrorf("toolchain %s: unknown edition %s", tc.Name, edition)
	}
	if ed.MinVersion != "" && tc.Version != "" {
		constraint, err := semver.NewConstraint(">= " + ed.MinVersion)
		if err != nil {
			return nil, core.ConfigErrorf("edition %s: invalid minimum version %s", edition, ed.MinVersion)
		}
		version, err := semver.NewVersion(tc.Version)
		if err != nil {
			return nil, core.ConfigErrorf("toolchain %s: invalid version %s", tc.Name, tc.Version)
		}
		if !constraint.Check(version) {
			return nil, core.ConfigErrorf("toolchain %s (rustc %s) is too old for edition %s (needs >= %s)",
				tc.Name, tc.Version, edition, ed.MinVersion)
		}
	}
	return append([]string{"--edition=" + edition}, ed.Flag...), nil
}
