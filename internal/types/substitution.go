package types

import "github.com/sunholo/effectlang/internal/effects"

// Subst is an idempotent mapping from variable id to term (C2). Types and
// effect rows carry disjoint id namespaces, so a single Subst bundles both
// maps the way a single environment frame would — apply_subst is specified
// to act uniformly over types, rows, schemes, and environments (spec.md
// §4.1), and bundling keeps call sites from having to thread two maps
// everywhere the bidirectional walker threads one.
type Subst struct {
	Types   map[string]Type
	Effects effects.Subst
}

// New returns an empty substitution.
func New() Subst {
	return Subst{Types: map[string]Type{}, Effects: effects.Subst{}}
}

// EffSubst exposes the effect half for effects.Row.Substitute call sites.
func (s Subst) EffSubst() effects.Subst { return s.Effects }

// BindType records v ↦ t. Callers are expected to have already run the
// occurs-check (internal/unify owns that).
func (s Subst) BindType(v string, t Type) {
	s.Types[v] = t
}

// BindEffect records an effect-variable binding.
func (s Subst) BindEffect(v string, r *effects.Row) {
	s.Effects[v] = r
}

// ApplySubst rewrites t by substituting every TVar/effect var to its image,
// following chains to a fixed point (spec.md §4.1 apply_subst).
func ApplySubst(s Subst, t Type) Type {
	return t.Substitute(s)
}

// Compose returns σ2 ∘ σ1 = { v ↦ apply_subst(σ2, σ1(v)) } ∪ σ2, associative
// but not commutative (spec.md §4.1).
func Compose(s2, s1 Subst) Subst {
	out := New()
	for v, t := range s1.Types {
		out.Types[v] = ApplySubst(s2, t)
	}
	for v, t := range s2.Types {
		if _, exists := out.Types[v]; !exists {
			out.Types[v] = t
		}
	}
	for v, r := range s1.Effects {
		out.Effects[v] = r.Substitute(s2.Effects)
	}
	for v, r := range s2.Effects {
		if _, exists := out.Effects[v]; !exists {
			out.Effects[v] = r
		}
	}
	return out
}

// FreeVars returns the set of unbound type-variable ids in t, plus the
// effect-variable ids of any Func/Closure effect rows in it.
func FreeVars(t Type) map[string]bool {
	into := map[string]bool{}
	t.FreeVars(into)
	return into
}

// FreeEffectVars returns the set of unbound effect-variable ids reachable
// from t (walking into Func/Closure effect fields).
func FreeEffectVars(t Type) map[string]bool {
	into := map[string]bool{}
	collectEffectVars(t, into)
	return into
}

func collectEffectVars(t Type, into map[string]bool) {
	switch v := t.(type) {
	case *Func:
		v.Eff.FreeVars(into)
		collectEffectVars(v.Arg, into)
		collectEffectVars(v.Ret, into)
	case *Closure:
		v.Captured.FreeVars(into)
		v.Body.FreeVars(into)
		collectEffectVars(v.Arg, into)
		collectEffectVars(v.Ret, into)
	case *List:
		collectEffectVars(v.Elem, into)
	case *Tuple:
		for _, e := range v.Elems {
			collectEffectVars(e, into)
		}
	case *Map:
		collectEffectVars(v.Key, into)
		collectEffectVars(v.Val, into)
	case *Union:
		for _, a := range v.Alts {
			collectEffectVars(a, into)
		}
	case *Struct:
		for _, f := range v.Fields {
			collectEffectVars(f, into)
		}
	}
}
