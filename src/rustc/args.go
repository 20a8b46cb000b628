package rustc

import (
	"path"
	"sort"
	"strings"

	"github.com/google/shlex"

	"github.com/please-build/crater/src/core"
	"github.com/please-build/crater/src/toolchain"
)

// An EmitKind is one kind of artifact the compiler is asked to emit.
type EmitKind string

const (
	EmitDepInfo  EmitKind = "dep-info"
	EmitMetadata EmitKind = "metadata"
	EmitLink     EmitKind = "link"
)

// GeneratedTag marks nodes whose sources are generated or bound code; they
// get the narrowed warning policy since stylistic findings in code nobody
// wrote aren't worth blocking on.
const GeneratedTag = "generated"

// Escalations applied to generated code instead of the blanket -Dwarnings.
var narrowedRustcEscalations = []string{"unused_must_use", "unconditional_recursion"}
var narrowedClippyEscalations = []string{"clippy::correctness", "clippy::suspicious"}

// Lint groups allowed outright on generated code under the narrowed policy.
var narrowedClippyAllowances = []string{"clippy::style", "clippy::complexity", "clippy::perf"}

// The two file basenames the analyzer recognises for its configuration.
var clippyConfigNames = []string{"clippy.toml", ".clippy.toml"}

// A Request is everything the argument constructor needs to build a plan.
type Request struct {
	Crate     *core.CrateInfo
	Deps      *core.DepInfo
	Toolchain *toolchain.Toolchain
	// Emit is the set of artifact kinds the compiler should produce.
	Emit []EmitKind
	// ExtraFlags is the node's shell-style flag string, appended last so the
	// declaring rule can override anything we set.
	ExtraFlags string
	// External marks crates in the third-party partition; their own lints
	// are capped since we can't fix their code.
	External bool
	// Build holds the crate's own build-script outputs, if it has any.
	Build *core.BuildInfo
	// Lint switches to secondary (analyzer) mode.
	Lint bool
	// LintConfig is the path to the analyzer's config file, if one exists.
	LintConfig string
}

// ValidateLintConfig checks the analyzer config file's basename against the
// two recognised names and returns the directory the analyzer should be
// pointed at. An unrecognised name is a configuration error, raised before
// any action is constructed.
func ValidateLintConfig(config string) (string, error) {
	if config == "" {
		return "", nil
	}
	base := path.Base(config)
	for _, name := range clippyConfigNames {
		if base == name {
			return path.Dir(config), nil
		}
	}
	return "", core.ConfigErrorf("unrecognised clippy config filename %s (must be one of %s)",
		base, strings.Join(clippyConfigNames, ", "))
}

// ConstructArgs builds the argument list and environment for one toolchain
// invocation. The same request always yields a byte-identical result; the
// executor's cache correctness depends on that. Artifact sets are merged in
// by the action emitter, not here.
//
// Argument order is canonical: toolchain defaults, crate identity, edition,
// warning policy, emit kinds, dependency flags (ordinary then proc-macro,
// each in canonical dedup order), disambiguation hash, output directory,
// build-script argfile, then the caller's extra flags last.
func ConstructArgs(req Request) (*core.InvocationPlan, error) {
	crate := req.Crate
	confDir, err := ValidateLintConfig(req.LintConfig)
	if err != nil {
		return nil, err
	}
	editionFlags, err := req.Toolchain.EditionFlags(crate.Edition)
	if err != nil {
		return nil, err
	}
	extraFlags, err := shlex.Split(req.ExtraFlags)
	if err != nil {
		return nil, core.ConfigErrorf("%s: cannot parse extra flags: %s", crate.Owner, err)
	}

	args := append([]string{}, req.Toolchain.Flag...)
	args = append(args, "--crate-name="+crate.Name)
	if crate.Kind == core.Test {
		args = append(args, "--test")
	} else {
		args = append(args, "--crate-type="+string(crate.Kind))
	}
	args = append(args, crate.Root)
	args = append(args, editionFlags...)
	args = append(args, "--error-format=human") // pinned for output stability
	args = append(args, warningPolicy(req)...)
	if len(req.Emit) > 0 {
		args = append(args, "--emit="+joinEmit(req.Emit))
	}
	args = append(args, dependencyArgs(req.Deps)...)
	hash := crate.MetadataHash()
	args = append(args, "-Cmetadata="+hash, "-Cextra-filename=-"+hash)
	if !req.Lint {
		args = append(args, "--out-dir="+path.Dir(crate.Out.Path))
	}
	if req.Build != nil && !req.Build.FlagsFile.IsZero() {
		// Flags generated by the crate's own build step; the compiler reads
		// the argfile at run time, analysis only declares it.
		args = append(args, "@"+req.Build.FlagsFile.Path)
	}
	args = append(args, extraFlags...)

	env := core.BuildEnv{
		"CARGO_CRATE_NAME": crate.Name,
	}
	if req.Build != nil {
		if !req.Build.OutDir.IsZero() {
			env["OUT_DIR"] = req.Build.OutDir.Path
		}
		if !req.Build.EnvFile.IsZero() {
			// Entries in this file are merged verbatim into the environment
			// by the executor immediately before the toolchain runs.
			env["BUILD_ENV_FILE"] = req.Build.EnvFile.Path
		}
	}
	if req.Lint && confDir != "" {
		env["CLIPPY_CONF_DIR"] = confDir
	}
	return &core.InvocationPlan{Args: args, Env: env}, nil
}

// warningPolicy returns the lint escalation flags for the request. By
// default every warning is escalated to a hard failure: the executor treats
// any zero exit as success and would silently revalidate a warning as
// up-to-date forever after. Generated code gets the narrowed policy instead.
func warningPolicy(req Request) []string {
	if req.External {
		// Third-party code isn't ours to fix.
		return []string{"--cap-lints=allow"}
	}
	if !req.Crate.HasTag(GeneratedTag) {
		return []string{"-Dwarnings"}
	}
	flags := []string{}
	if req.Lint {
		for _, group := range narrowedClippyAllowances {
			flags = append(flags, "-A"+group)
		}
		for _, group := range narrowedClippyEscalations {
			flags = append(flags, "-D"+group)
		}
	} else {
		for _, lint := range narrowedRustcEscalations {
			flags = append(flags, "-D"+lint)
		}
	}
	return flags
}

// dependencyArgs emits the flags wiring the crate up to its dependencies.
// Ordinary crates first, then proc-macros; within each segment the crates
// come in the collector's canonical dedup order. A proc-macro never appears
// in the ordinary segment or vice versa.
func dependencyArgs(deps *core.DepInfo) []string {
	args := []string{}
	dirs := map[string]struct{}{}
	for _, dep := range deps.Transitive {
		dirs[path.Dir(dep.Out.Path)] = struct{}{}
	}
	for _, dir := range sortedKeys(dirs) {
		args = append(args, "-Ldependency="+dir)
	}
	for _, dep := range deps.Transitive {
		args = append(args, "--extern", deps.AliasFor(dep)+"="+dep.Out.Path)
	}
	for _, dep := range deps.ProcMacros {
		args = append(args, "--extern", deps.AliasFor(dep)+"="+dep.Out.Path)
	}
	return args
}

func joinEmit(kinds []EmitKind) string {
	strs := make([]string, len(kinds))
	for i, k := range kinds {
		strs[i] = string(k)
	}
	sort.Strings(strs)
	return strings.Join(strs, ",")
}

func sortedKeys(m map[string]struct{}) []string {
	ret := make([]string, 0, len(m))
	for k := range m {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}
