package main

import (
	"fmt"
	"os"

	cli "github.com/peterebden/go-cli-init/v5/flags"
	clilogging "github.com/peterebden/go-cli-init/v5/logging"
	"gopkg.in/op/go-logging.v1"

	"github.com/please-build/crater/src/action"
	"github.com/please-build/crater/src/clippy"
	"github.com/please-build/crater/src/core"
	"github.com/please-build/crater/src/plan"
	"github.com/please-build/crater/src/rustc"
	"github.com/please-build/crater/src/toolchain"
)

var log = logging.MustGetLogger("crater")

var opts = struct {
	Usage      string
	Verbosity  clilogging.Verbosity `short:"v" long:"verbosity" default:"warning" description:"Verbosity of output (error, warning, notice, info, debug)"`
	Manifest   string               `short:"m" long:"manifest" default:"workspace.yaml" description:"Workspace manifest describing the node graph"`
	Registry   string               `short:"r" long:"registry" default:"toolchains.cfg" description:"Toolchain registry config file"`
	OS         string               `long:"os" default:"linux" description:"Execution platform OS"`
	Arch       string               `long:"arch" default:"amd64" description:"Execution platform architecture"`
	LintConfig string               `short:"c" long:"lint_config" description:"Path to the clippy configuration file"`

	Plan struct {
		Emit []string `short:"e" long:"emit" default:"dep-info" default:"link" description:"Artifact kinds the compiler should emit"`
		Args struct {
			Targets []core.BuildLabel `positional-arg-name:"targets" required:"true" description:"Nodes to derive plans for"`
		} `positional-args:"true" required:"true"`
	} `command:"plan" description:"Derives the compile invocation plan for one or more nodes"`

	Lint struct {
		Args struct {
			Targets []core.BuildLabel `positional-arg-name:"targets" description:"Nodes to lint; defaults to the whole graph"`
		} `positional-args:"true"`
	} `command:"lint" description:"Attaches the clippy aspect to qualifying nodes and prints the combined markers"`
}{
	Usage: `
crater derives deterministic rustc & clippy invocation plans for compilation
units embedded in a workspace graph. It doesn't execute anything itself; the
plans it prints are what an executor would run, cache-keyed by their content.
`,
}

var subCommands = map[string]func() int{
	"plan": planCmd,
	"lint": lintCmd,
}

func main() {
	command := cli.ParseFlagsOrDie("crater", &opts, nil)
	clilogging.InitLogging(opts.Verbosity)
	os.Exit(subCommands[command]())
}

func loadWorld() (*core.BuildGraph, *toolchain.Toolchain) {
	graph, err := plan.Load(opts.Manifest)
	if err != nil {
		log.Fatalf("%s", err)
	}
	registry, err := toolchain.ReadRegistry(opts.Registry)
	if err != nil {
		log.Fatalf("%s", err)
	}
	tc, err := registry.Resolve(opts.OS, opts.Arch)
	if err != nil {
		log.Fatalf("%s", err)
	}
	return graph, tc
}

func planCmd() int {
	graph, tc := loadWorld()
	emit := make([]rustc.EmitKind, len(opts.Plan.Emit))
	for i, e := range opts.Plan.Emit {
		emit[i] = rustc.EmitKind(e)
	}
	for _, label := range opts.Plan.Args.Targets {
		a, err := action.Emit(graph, graph.NodeOrDie(label), tc, emit, opts.LintConfig)
		if err != nil {
			log.Fatalf("%s", err)
		}
		plan.Print(os.Stdout, a)
	}
	return 0
}

func lintCmd() int {
	graph, tc := loadWorld()
	labels := opts.Lint.Args.Targets
	if len(labels) == 0 {
		labels = graph.Labels()
	}
	result, err := clippy.Aggregate(graph, labels, tc, opts.LintConfig)
	if err != nil {
		log.Fatalf("%s", err)
	}
	for _, a := range result.Actions {
		plan.Print(os.Stdout, a)
	}
	fmt.Printf("markers:\n")
	for _, m := range result.Markers {
		fmt.Printf("  %s\n", m.Path)
	}
	for label, reason := range result.Skipped {
		log.Info("Skipped %s: %s", label, reason)
	}
	return 0
}
