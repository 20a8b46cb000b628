package plan

import (
	"fmt"
	"io"

	"github.com/please-build/crater/src/action"
)

// Print writes a human-readable rendering of an action to w. The field order
// mirrors the canonical serialization so the output doubles as a golden form
// for diffing plans between runs.
func Print(w io.Writer, a *action.Action) {
	fmt.Fprintf(w, "action: %s\n", a.Label)
	fmt.Fprintf(w, "tool: %s\n", a.Tool)
	if a.OutputGroup != "" {
		fmt.Fprintf(w, "output_group: %s\n", a.OutputGroup)
	}
	fmt.Fprintf(w, "args:\n")
	for _, arg := range a.Plan.Args {
		fmt.Fprintf(w, "  %s\n", arg)
	}
	fmt.Fprintf(w, "env:\n")
	for _, e := range a.Plan.Env.Sorted() {
		fmt.Fprintf(w, "  %s\n", e)
	}
	fmt.Fprintf(w, "inputs:\n")
	for _, in := range a.Plan.Inputs {
		fmt.Fprintf(w, "  %s\n", in.Path)
	}
	fmt.Fprintf(w, "outputs:\n")
	for _, out := range a.Plan.Outputs {
		fmt.Fprintf(w, "  %s\n", out.Path)
	}
	fmt.Fprintf(w, "fingerprint: %s\n", a.Plan.Fingerprint())
}
