package fixpoint

import (
	"fmt"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/registry"
)

// AnalyzeFunc re-runs the walker+classifier for one function clause using
// the registry's current summaries for its own (and its SCC siblings')
// calls, returning the freshly classified compact effect.
type AnalyzeFunc func(mfa ast.MFA) effects.Compact

// Run drives spec.md §4.10's fix-point loop over one SCC:
//  1. Initialize each member's summary to pure.
//  2. Analyze each member using current summaries for self/sibling calls.
//  3. If any summary strictly increased in severity, repeat; else stop.
//
// Termination is guaranteed by the finite severity lattice (7 levels): a
// summary can only climb, at most once per level, so the loop is bounded
// by members × 7 (spec.md §4.10). Exceeding that bound without
// stabilizing indicates a driver bug, not a legitimate non-termination —
// reported as FIX001 rather than looped forever.
func Run(reg *registry.Registry, scc []ast.MFA, analyze AnalyzeFunc) error {
	for _, m := range scc {
		seedPure(reg, m)
	}

	maxIterations := len(scc)*effects.Severity(effects.CatUnknown) + len(scc) + 1
	for iter := 0; iter < maxIterations; iter++ {
		changed := false
		for _, m := range scc {
			before, _ := reg.EffectOf(m)
			after := analyze(m)
			reg.Put(m, registry.Entry{Effect: after})
			if effects.Severity(after.Category) > effects.Severity(before.Category) {
				changed = true
			}
		}
		if !changed {
			return nil
		}
	}
	return fmt.Errorf("FIX001: fix-point driver failed to stabilize SCC %v after %d iterations", scc, maxIterations)
}

func seedPure(reg *registry.Registry, m ast.MFA) {
	reg.Put(m, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})
}
