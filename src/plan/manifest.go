// Package plan loads a workspace manifest into a build graph and renders
// invocation plans for inspection. The manifest is the host graph's node
// attribute schema serialized as YAML; generating it from package manifests
// is someone else's job.
package plan

import (
	"fmt"
	"os"

	"gopkg.in/op/go-logging.v1"
	"gopkg.in/yaml.v3"

	"github.com/please-build/crater/src/core"
)

var log = logging.MustGetLogger("plan")

type manifest struct {
	Nodes []manifestNode `yaml:"nodes"`
}

type manifestNode struct {
	Label         core.BuildLabel            `yaml:"label"`
	Kind          string                     `yaml:"kind"`
	CrateName     string                     `yaml:"crate_name"`
	Root          string                     `yaml:"root"`
	Srcs          []string                   `yaml:"srcs"`
	Edition       string                     `yaml:"edition"`
	Out           string                     `yaml:"out"`
	Deps          []core.BuildLabel          `yaml:"deps"`
	ProcMacroDeps []core.BuildLabel          `yaml:"proc_macro_deps"`
	Aliases       map[string]core.BuildLabel `yaml:"aliases"`
	Tags          []string                   `yaml:"tags"`
	External      bool                       `yaml:"external"`
	ExtraFlags    string                     `yaml:"extra_flags"`
	Inputs        []string                   `yaml:"inputs"`
	Metadata      []string                   `yaml:"metadata"`
	BuildScript   *manifestBuildScript       `yaml:"build_script"`
}

type manifestBuildScript struct {
	EnvFile   string `yaml:"env_file"`
	FlagsFile string `yaml:"flags_file"`
	OutDir    string `yaml:"out_dir"`
}

// Load reads a workspace manifest and assembles the build graph from it.
func Load(filename string) (*core.BuildGraph, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return load(b)
}

func load(b []byte) (*core.BuildGraph, error) {
	m := manifest{}
	if err := yaml.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("cannot parse workspace manifest: %w", err)
	}
	graph := core.NewBuildGraph()
	for _, n := range m.Nodes {
		node, err := n.toNode()
		if err != nil {
			return nil, err
		}
		if graph.Node(node.Label) != nil {
			return nil, core.ConfigErrorf("duplicate node %s in manifest", node.Label)
		}
		graph.AddNode(node)
	}
	log.Debug("Loaded %d nodes from manifest", graph.Len())
	return graph, nil
}

func (n *manifestNode) toNode() (*core.Node, error) {
	node := &core.Node{
		Label:         n.Label,
		Deps:          n.Deps,
		ProcMacroDeps: n.ProcMacroDeps,
		Aliases:       n.Aliases,
		Tags:          n.Tags,
		External:      n.External,
		ExtraFlags:    n.ExtraFlags,
		ExtraInputs:   toArtifacts(n.Inputs),
		Metadata:      toArtifacts(n.Metadata),
	}
	if n.BuildScript != nil {
		node.BuildScript = &core.BuildInfo{
			EnvFile:   core.Artifact{Path: n.BuildScript.EnvFile},
			FlagsFile: core.Artifact{Path: n.BuildScript.FlagsFile},
			OutDir:    core.Artifact{Path: n.BuildScript.OutDir},
		}
	}
	if n.Kind == "" {
		// A non-compilation node; deps etc. may still be declared on it.
		return node, nil
	}
	crate := &core.CrateInfo{
		Owner:   n.Label,
		Kind:    core.CrateKind(n.Kind),
		Name:    n.CrateName,
		Root:    n.Root,
		Srcs:    n.Srcs,
		Edition: n.Edition,
		Tags:    n.Tags,
		Out:     core.Artifact{Path: n.Out},
	}
	if crate.Out.IsZero() {
		crate.Out = crate.DefaultOutput()
	}
	if err := crate.Validate(); err != nil {
		return nil, err
	}
	node.Crate = crate
	return node, nil
}

func toArtifacts(paths []string) []core.Artifact {
	ret := make([]core.Artifact, len(paths))
	for i, p := range paths {
		ret[i] = core.Artifact{Path: p}
	}
	return ret
}
