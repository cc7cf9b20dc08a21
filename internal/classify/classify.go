// Package classify implements the classifier & compactor (C9): turns the
// walker's raw (Type, Effect, Subst) result for a function clause into the
// registry-stored compact summary.
//
// Grounded on the teacher's internal/types/defaulting.go (post-inference
// normalization pass applied once synthesis completes) — this package
// plays the same "last mile after inference" role, just compacting effect
// rows instead of defaulting ambiguous numeric types.
package classify

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/registry"
	"github.com/sunholo/effectlang/internal/types"
)

// Result is the per-function-clause product the classifier hands to the
// registry (spec.md §4.9, §6 "Produced: per-function summary").
type Result struct {
	Compact effects.Compact
	Scheme  *types.Scheme
	Calls   []ast.MFA
	Visible ast.Visibility
}

// Classify applies σ to the raw effect row, then implements the
// lambda-classification rule: a row of only effect_vars classifies as
// lambda ONLY IF the function also has at least one function/closure-typed
// parameter (spec.md §4.9 step 2) — effects.ToCompact alone checks just the
// row; the parameter-type check is this package's job.
func Classify(sub types.Subst, t types.Type, e *effects.Row, paramTypes []types.Type) effects.Compact {
	applied := e.Substitute(sub.EffSubst())
	if isAllEffectVars(applied) && hasFunctionParam(sub, paramTypes) {
		return effects.Compact{Category: effects.CatLambda}
	}
	return effects.ToCompact(applied)
}

// isAllEffectVars reports whether the row consists only of effect
// variables (empty row, a bare var, or a spine whose only occurrences are
// variable tails — i.e. ToCompact would already say lambda on its own).
func isAllEffectVars(r *effects.Row) bool {
	c := effects.ToCompact(r)
	return c.Category == effects.CatLambda
}

// hasFunctionParam reports whether any of the clause's (substituted)
// parameter types is a function or closure.
func hasFunctionParam(sub types.Subst, paramTypes []types.Type) bool {
	for _, p := range paramTypes {
		switch types.ApplySubst(sub, p).(type) {
		case *types.Func, *types.Closure:
			return true
		}
	}
	return false
}

// Commit records the classified result in the registry under mfa, merging
// with any existing entry per the registry's merge policy (spec.md §4.9
// step 4, §4.4 merge rule).
func Commit(reg *registry.Registry, mfa ast.MFA, compact effects.Compact) {
	reg.Put(mfa, registry.Entry{Effect: compact})
}
