package core

import (
	"encoding/hex"
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// CrateKind identifies what kind of compilation unit a crate is.
type CrateKind string

const (
	// Lib is an ordinary library crate, emitted as an rlib.
	Lib CrateKind = "lib"
	// Bin is a binary crate.
	Bin CrateKind = "bin"
	// ProcMacro is a compiler-plugin crate, emitted as a shared object and
	// loaded by rustc itself rather than linked into dependents.
	ProcMacro CrateKind = "proc-macro"
	// Test is a test crate; compiled like a lib but with the test harness.
	Test CrateKind = "test"
)

// KnownCrateKinds are all the kinds a manifest may declare.
var KnownCrateKinds = []CrateKind{Lib, Bin, ProcMacro, Test}

// A CrateInfo describes one compilation unit in the graph. It is derived
// once when the owning node is analysed and read-only afterwards; the
// secondary analysis pass reuses it rather than re-deriving anything.
type CrateInfo struct {
	// Owner is the node this crate belongs to.
	Owner BuildLabel
	// Kind of the crate (lib / bin / proc-macro / test).
	Kind CrateKind
	// Name is the crate name as the unit's own source refers to it.
	Name string
	// Root is the crate's root source file (lib.rs / main.rs).
	Root string
	// Srcs are all the crate's source files, including the root.
	Srcs []string
	// Edition is the language edition the crate is written against.
	Edition string
	// Out is the artifact the crate's primary action emits.
	Out Artifact
	// Tags attached to the owning node; used for policy decisions only.
	Tags []string
}

// MetadataHash returns the crate's disambiguation hash, used to keep outputs
// of same-named crates apart and fed to the compiler as -Cmetadata. It is a
// pure function of the owning label and root source, so it is stable across
// runs and differs whenever two crates share a name but not an identity.
func (c *CrateInfo) MetadataHash() string {
	h := xxhash.New()
	h.Write([]byte(c.Owner.String()))
	h.Write([]byte{0})
	h.Write([]byte(c.Root))
	var b [8]byte
	sum := h.Sum64()
	for i := 0; i < 8; i++ {
		b[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(b[:])
}

// HasTag returns true if the crate's owning node carries the given tag.
func (c *CrateInfo) HasTag(tag string) bool {
	for _, t := range c.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// DefaultOutput derives the crate's emitted artifact from its kind, name and
// disambiguation hash. Manifests can override this but rarely need to.
func (c *CrateInfo) DefaultOutput() Artifact {
	hash := c.MetadataHash()
	switch c.Kind {
	case Bin:
		return Artifact{Path: c.Owner.ArtifactName("")}
	case ProcMacro:
		return Artifact{Path: c.Owner.PackageDir() + "/lib" + c.Name + "-" + hash + ".so"}
	case Test:
		return Artifact{Path: c.Owner.PackageDir() + "/" + c.Name + "-" + hash + ".test"}
	default:
		return Artifact{Path: c.Owner.PackageDir() + "/lib" + c.Name + "-" + hash + ".rlib"}
	}
}

// Validate checks that the crate's fields are complete enough to analyse.
func (c *CrateInfo) Validate() error {
	if c.Name == "" {
		return ConfigErrorf("%s: crate has no name", c.Owner)
	} else if c.Root == "" {
		return ConfigErrorf("%s: crate has no root source", c.Owner)
	}
	for _, k := range KnownCrateKinds {
		if c.Kind == k {
			return nil
		}
	}
	return ConfigErrorf("%s: unknown crate kind %q", c.Owner, c.Kind)
}

func (c *CrateInfo) String() string {
	return fmt.Sprintf("%s (%s %s)", c.Owner, c.Kind, c.Name)
}
