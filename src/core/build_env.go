package core

import (
	"sort"
)

// A BuildEnv is the environment an action runs the toolchain with.
// Keys are unique; the canonical serialized form is sorted.
type BuildEnv map[string]string

// Merge copies all entries of other into this env, overwriting on conflict.
func (env BuildEnv) Merge(other BuildEnv) {
	for k, v := range other {
		env[k] = v
	}
}

// Sorted returns the canonical KEY=VALUE form of the environment. The
// executor's cache key is computed over this, so the ordering must be stable.
func (env BuildEnv) Sorted() []string {
	ret := make([]string, 0, len(env))
	for k, v := range env {
		ret = append(ret, k+"="+v)
	}
	sort.Strings(ret)
	return ret
}
