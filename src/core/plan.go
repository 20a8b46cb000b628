package core

import (
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// An InvocationPlan is the complete, deterministic description of one
// toolchain invocation: ordered arguments, environment and the declared
// input/output artifact sets. Plans are values; they are built fresh per
// action and never mutated afterwards. The external executor caches by a
// content key over the plan, so identical inputs must always produce a
// byte-identical plan.
type InvocationPlan struct {
	Args    []string
	Env     BuildEnv
	Inputs  []Artifact
	Outputs []Artifact
}

// Fingerprint returns the plan's content key. Two plans have equal
// fingerprints iff their canonical serialized forms are byte-identical.
func (p *InvocationPlan) Fingerprint() string {
	h := xxhash.New()
	for _, arg := range p.Args {
		h.Write([]byte(arg))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, e := range p.Env.Sorted() {
		h.Write([]byte(e))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, in := range p.Inputs {
		h.Write([]byte(in.Path))
		h.Write([]byte{0})
	}
	h.Write([]byte{1})
	for _, out := range p.Outputs {
		h.Write([]byte(out.Path))
		h.Write([]byte{0})
	}
	sum := h.Sum(nil)
	return hex.EncodeToString(sum)
}
