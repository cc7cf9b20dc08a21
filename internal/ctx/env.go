// Package ctx implements the typing context (C7): a scoped identifier →
// scheme environment with lexical enter/leave, a per-analysis fresh
// variable counter, and pattern-variable extraction. Grounded on the
// teacher's internal/types/env.go (TypeEnv with parent chaining) and
// typechecker_patterns.go's pattern-binding extraction.
package ctx

import (
	"fmt"

	"github.com/sunholo/effectlang/internal/types"
)

// Env is a single frame of the typing context's scope stack. Looking up a
// name walks from the top frame outward (spec.md §4.6).
type Env struct {
	bindings map[string]*types.Scheme
	parent   *Env
}

// NewEnv creates an empty root environment.
func NewEnv() *Env {
	return &Env{bindings: map[string]*types.Scheme{}}
}

// Enter pushes a new lexical scope.
func (e *Env) Enter() *Env {
	return &Env{bindings: map[string]*types.Scheme{}, parent: e}
}

// Leave returns the enclosing scope (a no-op safety net at the root).
func (e *Env) Leave() *Env {
	if e.parent == nil {
		return e
	}
	return e.parent
}

// Bind introduces name at the current (innermost) frame.
func (e *Env) Bind(name string, s *types.Scheme) {
	e.bindings[name] = s
}

// Lookup walks from this frame outward.
func (e *Env) Lookup(name string) (*types.Scheme, bool) {
	for cur := e; cur != nil; cur = cur.parent {
		if s, ok := cur.bindings[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// FreeVars collects every free type/effect variable bound anywhere in the
// chain — used by Generalize to know which variables are NOT eligible for
// quantification because an enclosing scope still depends on them.
func (e *Env) FreeVars() map[string]bool {
	out := map[string]bool{}
	for cur := e; cur != nil; cur = cur.parent {
		for _, s := range cur.bindings {
			for v := range s.FreeVars() {
				out[v] = true
			}
		}
	}
	return out
}

// Fresh is the process-local, monotonic fresh-variable source for one
// analysis (spec.md §4.6). It is intentionally a value, not a package
// global, so concurrent per-module analyses never share a counter (spec.md
// §5: "each analysis owns its ... fresh-variable counter").
type Fresh struct {
	counter int
}

// NewFresh creates a fresh-variable source starting at zero.
func NewFresh() *Fresh { return &Fresh{} }

// Next mints a new id with the given prefix ("t" for type vars, "e" for
// effect vars, by convention).
func (f *Fresh) Next(prefix string) string {
	f.counter++
	return fmt.Sprintf("%s%d", prefix, f.counter)
}

// TypeVar mints a fresh type_var(id).
func (f *Fresh) TypeVar() *types.Var {
	return &types.Var{ID: f.Next("t")}
}
