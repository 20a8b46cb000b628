package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnvSorted(t *testing.T) {
	env := BuildEnv{
		"OUT_DIR":          "gen/hello",
		"CARGO_CRATE_NAME": "hello",
		"CLIPPY_CONF_DIR":  ".",
	}
	assert.Equal(t, []string{
		"CARGO_CRATE_NAME=hello",
		"CLIPPY_CONF_DIR=.",
		"OUT_DIR=gen/hello",
	}, env.Sorted())
}

func TestEnvMerge(t *testing.T) {
	env := BuildEnv{"A": "1", "B": "2"}
	env.Merge(BuildEnv{"B": "3", "C": "4"})
	assert.Equal(t, BuildEnv{"A": "1", "B": "3", "C": "4"}, env)
}

func TestSortArtifacts(t *testing.T) {
	in := []Artifact{{Path: "b"}, {Path: "a"}, {Path: "b"}, {Path: "c"}}
	assert.Equal(t, []Artifact{{Path: "a"}, {Path: "b"}, {Path: "c"}}, SortArtifacts(in))
}

func TestFingerprintIsDeterministic(t *testing.T) {
	mkPlan := func() *InvocationPlan {
		return &InvocationPlan{
			Args:    []string{"--crate-name=hello", "--edition=2021"},
			Env:     BuildEnv{"CARGO_CRATE_NAME": "hello", "OUT_DIR": "gen"},
			Inputs:  []Artifact{{Path: "hello/src/lib.rs"}},
			Outputs: []Artifact{{Path: "hello/libhello.rlib"}},
		}
	}
	assert.Equal(t, mkPlan().Fingerprint(), mkPlan().Fingerprint())
}

func TestFingerprintSeesEveryField(t *testing.T) {
	base := InvocationPlan{
		Args:    []string{"--crate-name=hello"},
		Env:     BuildEnv{"CARGO_CRATE_NAME": "hello"},
		Inputs:  []Artifact{{Path: "hello/src/lib.rs"}},
		Outputs: []Artifact{{Path: "hello/libhello.rlib"}},
	}
	changed := base
	changed.Args = []string{"--crate-name=other"}
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())

	changed = base
	changed.Env = BuildEnv{"CARGO_CRATE_NAME": "other"}
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())

	changed = base
	changed.Inputs = []Artifact{{Path: "other/src/lib.rs"}}
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())

	changed = base
	changed.Outputs = []Artifact{{Path: "other/libhello.rlib"}}
	assert.NotEqual(t, base.Fingerprint(), changed.Fingerprint())
}

func TestMarkerFor(t *testing.T) {
	assert.Equal(t, "hello/lib.clippy.ok", MarkerFor(ParseBuildLabel("//hello:lib")).Path)
}
