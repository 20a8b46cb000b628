package rustc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/please-build/crater/src/core"
	"github.com/please-build/crater/src/toolchain"
)

func testToolchain() *toolchain.Toolchain {
	return &toolchain.Toolchain{
		Name:    "test",
		Rustc:   "/opt/rust/bin/rustc",
		Clippy:  "/opt/rust/bin/clippy-driver",
		Version: "1.70.0",
		Flag:    []string{"--color=never"},
		Editions: map[string]*toolchain.Edition{
			"2018": {},
			"2021": {MinVersion: "1.56.0"},
		},
	}
}

func testCrate(label string, kind core.CrateKind, tags ...string) *core.CrateInfo {
	l := core.ParseBuildLabel(label)
	crate := &core.CrateInfo{
		Owner:   l,
		Kind:    kind,
		Name:    l.Name,
		Root:    l.PackageDir() + "/src/lib.rs",
		Srcs:    []string{l.PackageDir() + "/src/lib.rs"},
		Edition: "2021",
		Tags:    tags,
	}
	crate.Out = crate.DefaultOutput()
	return crate
}

func TestCanonicalArgumentOrder(t *testing.T) {
	serde := testCrate("//third_party:serde", core.Lib)
	derive := testCrate("//macros:derive", core.ProcMacro)
	crate := testCrate("//hello:hello", core.Lib)
	req := Request{
		Crate: crate,
		Deps: &core.DepInfo{
			Transitive: []*core.CrateInfo{serde},
			ProcMacros: []*core.CrateInfo{derive},
		},
		Toolchain:  testToolchain(),
		Emit:       []EmitKind{EmitLink, EmitDepInfo},
		ExtraFlags: "--cfg extra",
	}
	plan, err := ConstructArgs(req)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"--color=never",
		"--crate-name=hello",
		"--crate-type=lib",
		"hello/src/lib.rs",
		"--edition=2021",
		"--error-format=human",
		"-Dwarnings",
		"--emit=dep-info,link",
		"-Ldependency=third_party",
		"--extern", "serde=" + serde.Out.Path,
		"--extern", "derive=" + derive.Out.Path,
		"-Cmetadata=" + crate.MetadataHash(),
		"-Cextra-filename=-" + crate.MetadataHash(),
		"--out-dir=hello",
		"--cfg", "extra",
	}, plan.Args)
	assert.Equal(t, core.BuildEnv{"CARGO_CRATE_NAME": "hello"}, plan.Env)
}

func TestConstructionIsDeterministic(t *testing.T) {
	mkReq := func() Request {
		return Request{
			Crate: testCrate("//hello:hello", core.Lib),
			Deps: &core.DepInfo{
				Transitive: []*core.CrateInfo{testCrate("//a:a", core.Lib), testCrate("//b:b", core.Lib)},
				Aliases:    map[string]core.BuildLabel{"aaa": core.ParseBuildLabel("//a:a")},
			},
			Toolchain:  testToolchain(),
			Emit:       []EmitKind{EmitLink},
			ExtraFlags: "--cfg extra",
		}
	}
	first, err := ConstructArgs(mkReq())
	require.NoError(t, err)
	for i := 0; i < 20; i++ {
		plan, err := ConstructArgs(mkReq())
		require.NoError(t, err)
		assert.Equal(t, first.Args, plan.Args)
		assert.Equal(t, first.Env.Sorted(), plan.Env.Sorted())
		assert.Equal(t, first.Fingerprint(), plan.Fingerprint())
	}
}

func TestProcMacroSegmentsNeverMix(t *testing.T) {
	serde := testCrate("//third_party:serde", core.Lib)
	derive := testCrate("//macros:derive", core.ProcMacro)
	plan, err := ConstructArgs(Request{
		Crate: testCrate("//hello:hello", core.Lib),
		Deps: &core.DepInfo{
			Transitive: []*core.CrateInfo{serde},
			ProcMacros: []*core.CrateInfo{derive},
		},
		Toolchain: testToolchain(),
	})
	require.NoError(t, err)
	serdeIdx, deriveIdx := -1, -1
	for i, arg := range plan.Args {
		switch arg {
		case "serde=" + serde.Out.Path:
			serdeIdx = i
		case "derive=" + derive.Out.Path:
			deriveIdx = i
		}
	}
	require.NotEqual(t, -1, serdeIdx)
	require.NotEqual(t, -1, deriveIdx)
	// Ordinary deps always precede the proc-macro segment.
	assert.Less(t, serdeIdx, deriveIdx)
}

func TestAliasesAreHonoured(t *testing.T) {
	dep := testCrate("//forked:serde_v2", core.Lib)
	plan, err := ConstructArgs(Request{
		Crate: testCrate("//hello:hello", core.Lib),
		Deps: &core.DepInfo{
			Transitive: []*core.CrateInfo{dep},
			Aliases:    map[string]core.BuildLabel{"serde": dep.Owner},
		},
		Toolchain: testToolchain(),
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "serde="+dep.Out.Path)
	assert.NotContains(t, plan.Args, "serde_v2="+dep.Out.Path)
}

func TestTestCratesGetTestMode(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:     testCrate("//hello:test", core.Test),
		Deps:      &core.DepInfo{},
		Toolchain: testToolchain(),
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "--test")
	assert.NotContains(t, plan.Args, "--crate-type=test")
}

func TestStrictWarningPolicyByDefault(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:     testCrate("//hello:hello", core.Lib),
		Deps:      &core.DepInfo{},
		Toolchain: testToolchain(),
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "-Dwarnings")
}

func TestGeneratedCodeGetsNarrowedPolicy(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:     testCrate("//gen:proto", core.Lib, GeneratedTag),
		Deps:      &core.DepInfo{},
		Toolchain: testToolchain(),
	})
	require.NoError(t, err)
	assert.NotContains(t, plan.Args, "-Dwarnings")
	assert.Contains(t, plan.Args, "-Dunused_must_use")
}

func TestGeneratedCodeNarrowedClippyPolicy(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:      testCrate("//gen:proto", core.Lib, GeneratedTag),
		Deps:       &core.DepInfo{},
		Toolchain:  testToolchain(),
		Lint:       true,
		LintConfig: "hello/clippy.toml",
	})
	require.NoError(t, err)
	assert.NotContains(t, plan.Args, "-Dwarnings")
	assert.Contains(t, plan.Args, "-Aclippy::style")
	assert.Contains(t, plan.Args, "-Dclippy::correctness")
	assert.Contains(t, plan.Args, "-Dclippy::suspicious")
}

func TestExternalCratesCapLints(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:     testCrate("//third_party:serde", core.Lib),
		Deps:      &core.DepInfo{},
		Toolchain: testToolchain(),
		External:  true,
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "--cap-lints=allow")
	assert.NotContains(t, plan.Args, "-Dwarnings")
}

func TestExtraFlagsComeLast(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:      testCrate("//hello:hello", core.Lib),
		Deps:       &core.DepInfo{},
		Toolchain:  testToolchain(),
		ExtraFlags: "-C opt-level=3",
	})
	require.NoError(t, err)
	n := len(plan.Args)
	assert.Equal(t, []string{"-C", "opt-level=3"}, plan.Args[n-2:])
}

func TestMalformedExtraFlags(t *testing.T) {
	_, err := ConstructArgs(Request{
		Crate:      testCrate("//hello:hello", core.Lib),
		Deps:       &core.DepInfo{},
		Toolchain:  testToolchain(),
		ExtraFlags: `--cfg "unterminated`,
	})
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestBuildScriptOutputsAreMergedIn(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:     testCrate("//hello:hello", core.Lib),
		Deps:      &core.DepInfo{},
		Toolchain: testToolchain(),
		Build: &core.BuildInfo{
			EnvFile:   core.Artifact{Path: "hello/build.env"},
			FlagsFile: core.Artifact{Path: "hello/build.flags"},
			OutDir:    core.Artifact{Path: "hello/out"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, plan.Args, "@hello/build.flags")
	assert.Equal(t, "hello/out", plan.Env["OUT_DIR"])
	assert.Equal(t, "hello/build.env", plan.Env["BUILD_ENV_FILE"])
}

func TestClippyConfigDir(t *testing.T) {
	plan, err := ConstructArgs(Request{
		Crate:      testCrate("//hello:hello", core.Lib),
		Deps:       &core.DepInfo{},
		Toolchain:  testToolchain(),
		Lint:       true,
		LintConfig: "hello/.clippy.toml",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", plan.Env["CLIPPY_CONF_DIR"])
}

func TestValidateLintConfig(t *testing.T) {
	dir, err := ValidateLintConfig("hello/clippy.toml")
	assert.NoError(t, err)
	assert.Equal(t, "hello", dir)

	dir, err = ValidateLintConfig(".clippy.toml")
	assert.NoError(t, err)
	assert.Equal(t, ".", dir)

	_, err = ValidateLintConfig("hello/clippy.yaml")
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))

	// No config at all is fine.
	dir, err = ValidateLintConfig("")
	assert.NoError(t, err)
	assert.Equal(t, "", dir)
}

func TestBadLintConfigRejectedOnPrimaryPathToo(t *testing.T) {
	_, err := ConstructArgs(Request{
		Crate:      testCrate("//hello:hello", core.Lib),
		Deps:       &core.DepInfo{},
		Toolchain:  testToolchain(),
		LintConfig: "hello/lints.toml",
	})
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}

func TestEditionGateAppliesDuringConstruction(t *testing.T) {
	tc := testToolchain()
	tc.Version = "1.40.0"
	_, err := ConstructArgs(Request{
		Crate:     testCrate("//hello:hello", core.Lib),
		Deps:      &core.DepInfo{},
		Toolchain: tc,
	})
	assert.Error(t, err)
	assert.True(t, core.IsConfigError(err))
}
