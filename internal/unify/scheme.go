package unify

import (
	"fmt"

	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/errors"
	"github.com/sunholo/effectlang/internal/types"
)

// UnifyScheme unifies two polymorphic schemes (spec.md §4.2,
// "forall(vs1,B1) ~ forall(vs2,B2)"): requires equal arity of bound
// variables, alpha-renames one side's variables to the other's — which
// must walk every constructor including nested foralls, effect rows, and
// tuple/list/union positions, which FreshFunc-driven renaming does by
// substituting through the whole body — and then unifies the bodies.
func (u *Unifier) UnifyScheme(s1, s2 *types.Scheme, sub types.Subst) (types.Subst, error) {
	if len(s1.TypeVars) != len(s2.TypeVars) || len(s1.EffectVars) != len(s2.EffectVars) {
		return nil, &forallArityError{s1, s2}
	}

	// Alpha-rename s2's bound variables to s1's so free occurrences line up.
	rename := types.New()
	for i, tv := range s1.TypeVars {
		rename.Types[s2.TypeVars[i]] = &types.Var{ID: tv}
	}
	for i, ev := range s1.EffectVars {
		rename.Effects[s2.EffectVars[i]] = effects.NewVar(ev)
	}
	renamedBody := s2.Body.Substitute(rename)

	return u.Unify(s1.Body, renamedBody, sub)
}

type forallArityError struct {
	S1, S2 *types.Scheme
}

func (e *forallArityError) Error() string {
	return errors.New("unify", errors.UNI004, fmt.Sprintf(
		"forall arity mismatch: %d/%d type/effect vars vs %d/%d",
		len(e.S1.TypeVars), len(e.S1.EffectVars), len(e.S2.TypeVars), len(e.S2.EffectVars))).Error()
}
