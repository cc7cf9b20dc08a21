package types

import "github.com/sunholo/effectlang/internal/effects"

// FreshFunc mints a fresh variable id given a prefix ("t" for type
// variables, "e" for effect variables). Schemes don't own a counter
// themselves — the caller's fresh-variable source (C7, internal/ctx) is
// threaded through so that ids stay unique across one analysis, per
// spec.md §4.6 ("a fresh-variable counter is process-local and monotonic
// within an analysis").
type FreshFunc func(prefix string) string

// Instantiate produces a fresh instance of the scheme, alpha-renaming every
// bound type and effect variable (spec.md §3, "bound ... variables are
// alpha-renamed on instantiation").
func (s *Scheme) Instantiate(fresh FreshFunc) Type {
	sub := New()
	for _, tv := range s.TypeVars {
		sub.Types[tv] = &Var{ID: fresh("t")}
	}
	for _, ev := range s.EffectVars {
		sub.Effects[ev] = effects.NewVar(fresh("e"))
	}
	return s.Body.Substitute(sub)
}

// Generalize closes over every free type/effect variable in t that is not
// already bound in the ambient environment (envFree), producing a scheme.
// Per spec.md §4.7, generalization only happens at the top of a function
// clause (let-generalization), never for bindings inside an expression —
// the caller is responsible for calling this only at that boundary.
func Generalize(t Type, envFree map[string]bool) *Scheme {
	free := FreeVars(t)
	effFree := FreeEffectVars(t)

	var tvs []string
	for v := range free {
		if !envFree[v] {
			tvs = append(tvs, v)
		}
	}
	var evs []string
	for v := range effFree {
		if !envFree[v] {
			evs = append(evs, v)
		}
	}
	sortStrings(tvs)
	sortStrings(evs)
	return &Scheme{TypeVars: tvs, EffectVars: evs, Body: t}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// Mono wraps a monomorphic type as a trivial (unquantified) scheme.
func Mono(t Type) *Scheme { return &Scheme{Body: t} }
