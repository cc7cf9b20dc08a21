package unify

import (
	"fmt"

	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/errors"
	"github.com/sunholo/effectlang/internal/types"
)

// UnifyEffect unifies two effect rows (spec.md §4.2, "unify_effect"). The
// interesting case is rows: a label on one side is matched against an
// occurrence anywhere in the other row's spine, removed once (duplicates
// matter — spec.md §4.2's duplicate-label rule), and the tails are unified
// recursively; a missing label against an open tail extends that tail with
// a fresh row variable rather than failing.
func (u *Unifier) UnifyEffect(e1, e2 *effects.Row, sub types.Subst) (types.Subst, error) {
	e1 = e1.Substitute(sub.Effects)
	e2 = e2.Substitute(sub.Effects)

	switch {
	case effects.IsEmpty(e1) && effects.IsEmpty(e2):
		return sub, nil

	case effects.IsEmpty(e1) && !effects.IsEmpty(e2):
		if effects.IsVar(e2) {
			return u.bindEffect(e2.Var, effects.Empty(), sub)
		}
		return nil, rowNonEmptyVsEmpty(e2)

	case !effects.IsEmpty(e1) && effects.IsEmpty(e2):
		if effects.IsVar(e1) {
			return u.bindEffect(e1.Var, effects.Empty(), sub)
		}
		return nil, rowNonEmptyVsEmpty(e1)

	case effects.IsVar(e1):
		return u.bindEffect(e1.Var, e2, sub)

	case effects.IsVar(e2):
		return u.bindEffect(e2.Var, e1, sub)

	// Both e1 and e2 are non-empty, non-var: e1 is row(L, tail1).
	default:
		return u.unifyRowHead(e1, e2, sub)
	}
}

// unifyRowHead implements "row(L, tail1) ~ E2": scan E2's spine for label
// L; if found, remove one occurrence and unify tail1 with the remainder.
// If not found and E2 ends in a variable, extend that variable with a
// fresh row carrying L and retry; if E2 is closed and L is absent, fail.
func (u *Unifier) unifyRowHead(e1, e2 *effects.Row, sub types.Subst) (types.Subst, error) {
	label, payload, tail1 := e1.Label, e1.Payload, e1.Tail

	if rest, ok := removeMatchingOccurrence(label, payload, e2); ok {
		return u.UnifyEffect(tail1, rest, sub)
	}

	tailVar := openTailVar(e2)
	if tailVar != "" && tailVar != openTailVar(tail1) {
		fresh := effects.NewVar(u.Fresh("e"))
		extended := effects.Cons(label, payload, fresh)
		var err error
		sub, err = u.bindEffect(tailVar, extended, sub)
		if err != nil {
			return nil, err
		}
		return u.UnifyEffect(e1, e2, sub)
	}

	return nil, incompatibleRows(e1, e2)
}

// removeMatchingOccurrence finds the first occurrence of (label, payload)
// — matching on label only when payload is empty, so a bare label(L) head
// can still be removed against a payload-bearing occurrence elsewhere — and
// returns the row with exactly that one occurrence stripped.
func removeMatchingOccurrence(label, payload string, r *effects.Row) (*effects.Row, bool) {
	if r == nil || r.Empty || r.Var != "" {
		return r, false
	}
	if r.Label == label && (payload == "" || r.Payload == "" || r.Payload == payload) {
		return r.Tail, true
	}
	rest, ok := removeMatchingOccurrence(label, payload, r.Tail)
	if !ok {
		return r, false
	}
	return effects.Cons(r.Label, r.Payload, rest), true
}

func openTailVar(r *effects.Row) string {
	cur := r
	for cur != nil && !cur.Empty && cur.Var == "" {
		cur = cur.Tail
	}
	if cur != nil {
		return cur.Var
	}
	return ""
}

func (u *Unifier) bindEffect(v string, r *effects.Row, sub types.Subst) (types.Subst, error) {
	if effects.IsVar(r) && r.Var == v {
		return sub, nil
	}
	if occursInRow(v, r) {
		return nil, &occursEffectError{v, r}
	}
	sub.BindEffect(v, r)
	return sub, nil
}

func occursInRow(v string, r *effects.Row) bool {
	into := map[string]bool{}
	r.FreeVars(into)
	return into[v]
}

func rowNonEmptyVsEmpty(r *effects.Row) error {
	return errors.New("unify", errors.ROW001, fmt.Sprintf("cannot unify non-empty row %s with empty", r)).
		WithContext(map[string]string{"row": r.String()})
}

func incompatibleRows(a, b *effects.Row) error {
	return errors.New("unify", errors.ROW002, fmt.Sprintf("incompatible effect rows: %s vs %s", a, b)).
		WithContext(map[string]string{"lhs": a.String(), "rhs": b.String()})
}

type occursEffectError struct {
	V string
	R *effects.Row
}

func (e *occursEffectError) Error() string {
	return errors.New("unify", errors.UNI003, fmt.Sprintf("occurs check failed: effect variable %s occurs in %s", e.V, e.R)).Error()
}
