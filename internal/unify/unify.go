// Package unify implements structural type unification and row-polymorphic
// effect unification with mandatory occurs-checking (C3).
package unify

import (
	"fmt"

	"github.com/sunholo/effectlang/internal/errors"
	"github.com/sunholo/effectlang/internal/types"
)

// Unifier carries the fresh-variable source row unification needs when it
// has to extend an open row with a brand-new row variable (spec.md §4.2,
// "bind μ ↦ row(L, fresh_var)").
type Unifier struct {
	Fresh types.FreshFunc
}

// New builds a Unifier. fresh mints a new variable id given a prefix; pass
// the same fresh-variable source (C7, internal/ctx) used for the rest of
// the analysis so ids never collide.
func New(fresh types.FreshFunc) *Unifier {
	return &Unifier{Fresh: fresh}
}

// Unify attempts to unify two types, returning an updated substitution
// (spec.md §4.2). Errors are returned as values (structural mismatches as
// *errors.Encoded; occurs-check and union failures as their own error types,
// see IsOccursCheckFailure) so callers can attach them to an AST node
// without aborting analysis (spec.md §4.8).
func (u *Unifier) Unify(t1, t2 types.Type, sub types.Subst) (types.Subst, error) {
	t1 = types.ApplySubst(sub, t1)
	t2 = types.ApplySubst(sub, t2)

	if t1.Equals(t2) {
		return sub, nil
	}

	switch a := t1.(type) {
	case *types.Var:
		return u.bindType(a.ID, t2, sub)
	}
	switch b := t2.(type) {
	case *types.Var:
		return u.bindType(b.ID, t1, sub)
	}

	switch a := t1.(type) {
	case *types.Prim:
		return nil, cannotUnify(t1, t2)

	case *types.List:
		b, ok := t2.(*types.List)
		if !ok {
			return nil, cannotUnify(t1, t2)
		}
		return u.Unify(a.Elem, b.Elem, sub)

	case *types.Tuple:
		b, ok := t2.(*types.Tuple)
		if !ok || len(a.Elems) != len(b.Elems) {
			return nil, cannotUnify(t1, t2)
		}
		var err error
		for i := range a.Elems {
			sub, err = u.Unify(types.ApplySubst(sub, a.Elems[i]), types.ApplySubst(sub, b.Elems[i]), sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *types.Map:
		b, ok := t2.(*types.Map)
		if !ok {
			return nil, cannotUnify(t1, t2)
		}
		var err error
		sub, err = u.Unify(a.Key, b.Key, sub)
		if err != nil {
			return nil, err
		}
		return u.Unify(types.ApplySubst(sub, a.Val), types.ApplySubst(sub, b.Val), sub)

	case *types.Union:
		b, ok := t2.(*types.Union)
		if !ok || !a.Equals(b) {
			return nil, &unionMismatch{a, t2}
		}
		return sub, nil

	case *types.Struct:
		b, ok := t2.(*types.Struct)
		if !ok || a.Module != b.Module || len(a.Fields) != len(b.Fields) {
			return nil, cannotUnify(t1, t2)
		}
		var err error
		for name, ft := range a.Fields {
			bf, ok := b.Fields[name]
			if !ok {
				return nil, cannotUnify(t1, t2)
			}
			sub, err = u.Unify(types.ApplySubst(sub, ft), types.ApplySubst(sub, bf), sub)
			if err != nil {
				return nil, err
			}
		}
		return sub, nil

	case *types.Func:
		b, ok := t2.(*types.Func)
		if !ok {
			return nil, cannotUnify(t1, t2)
		}
		var err error
		sub, err = u.Unify(a.Arg, b.Arg, sub)
		if err != nil {
			return nil, err
		}
		sub, err = u.UnifyEffect(a.Eff.Substitute(sub.EffSubst()), b.Eff.Substitute(sub.EffSubst()), sub)
		if err != nil {
			return nil, err
		}
		return u.Unify(types.ApplySubst(sub, a.Ret), types.ApplySubst(sub, b.Ret), sub)

	case *types.Closure:
		b, ok := t2.(*types.Closure)
		if !ok {
			return nil, cannotUnify(t1, t2)
		}
		var err error
		sub, err = u.Unify(a.Arg, b.Arg, sub)
		if err != nil {
			return nil, err
		}
		sub, err = u.Unify(a.Ret, b.Ret, sub)
		if err != nil {
			return nil, err
		}
		sub, err = u.UnifyEffect(a.Captured.Substitute(sub.EffSubst()), b.Captured.Substitute(sub.EffSubst()), sub)
		if err != nil {
			return nil, err
		}
		return u.UnifyEffect(a.Body.Substitute(sub.EffSubst()), b.Body.Substitute(sub.EffSubst()), sub)

	default:
		return nil, cannotUnify(t1, t2)
	}
}

func (u *Unifier) bindType(v string, t types.Type, sub types.Subst) (types.Subst, error) {
	if tv, ok := t.(*types.Var); ok && tv.ID == v {
		return sub, nil
	}
	if occursInType(v, t) {
		return nil, &occursError{v, t}
	}
	sub.BindType(v, t)
	return sub, nil
}

// occursInType walks every constructor (including nested closures/row
// tails) looking for v, per spec.md §4.2's exhaustive occurs-check list.
func occursInType(v string, t types.Type) bool {
	return types.FreeVars(t)[v]
}

func cannotUnify(a, b types.Type) error {
	return errors.New("unify", errors.UNI001, fmt.Sprintf("cannot unify %s with %s", a, b)).
		WithContext(map[string]string{"lhs": a.String(), "rhs": b.String()})
}

type unionMismatch struct {
	A, B types.Type
}

func (e *unionMismatch) Error() string {
	return errors.New("unify", errors.UNI002, fmt.Sprintf("cannot unify unions %s and %s", e.A, e.B)).Error()
}

type occursError struct {
	V string
	T types.Type
}

func (e *occursError) Error() string {
	return errors.New("unify", errors.UNI003, fmt.Sprintf("occurs check failed: %s occurs in %s", e.V, e.T)).Error()
}

// IsOccursCheckFailure reports whether err is an occurs-check failure, so
// callers can distinguish it from a plain structural mismatch when deciding
// how to recover (spec.md §4.8: local failures never abort the analysis).
func IsOccursCheckFailure(err error) bool {
	_, ok := err.(*occursError)
	return ok
}
