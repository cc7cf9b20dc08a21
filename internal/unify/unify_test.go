package unify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/types"
)

func freshCounter() types.FreshFunc {
	n := 0
	return func(prefix string) string {
		n++
		return prefix + itoa(n)
	}
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	digits := ""
	for n > 0 {
		digits = string(rune('0'+n%10)) + digits
		n /= 10
	}
	return digits
}

func TestUnifyPrimitives(t *testing.T) {
	u := New(freshCounter())
	sub, err := u.Unify(types.TInt, types.TInt, types.New())
	require.NoError(t, err)
	assert.Empty(t, sub.Types)
}

func TestUnifyPrimitiveMismatch(t *testing.T) {
	u := New(freshCounter())
	_, err := u.Unify(types.TInt, types.TBool, types.New())
	require.Error(t, err)
}

func TestUnifyVarBinds(t *testing.T) {
	u := New(freshCounter())
	v := &types.Var{ID: "t1"}
	sub, err := u.Unify(v, types.TInt, types.New())
	require.NoError(t, err)
	assert.True(t, sub.Types["t1"].Equals(types.TInt))
}

func TestOccursCheckFails(t *testing.T) {
	u := New(freshCounter())
	v := &types.Var{ID: "t1"}
	listOfV := &types.List{Elem: v}
	_, err := u.Unify(v, listOfV, types.New())
	require.Error(t, err)
	assert.True(t, IsOccursCheckFailure(err))
}

func TestOccursCheckThroughClosure(t *testing.T) {
	// t1 occurs inside a closure's return type — must still be caught.
	u := New(freshCounter())
	v := &types.Var{ID: "t1"}
	clo := &types.Closure{Arg: types.TInt, Ret: v, Captured: effects.Empty(), Body: effects.Empty()}
	_, err := u.Unify(v, clo, types.New())
	require.Error(t, err)
	assert.True(t, IsOccursCheckFailure(err))
}

func TestUnifyFuncUnifiesArgEffectReturn(t *testing.T) {
	u := New(freshCounter())
	f1 := &types.Func{Arg: types.TInt, Eff: effects.Empty(), Ret: &types.Var{ID: "r"}}
	f2 := &types.Func{Arg: &types.Var{ID: "a"}, Eff: effects.Empty(), Ret: types.TBool}
	sub, err := u.Unify(f1, f2, types.New())
	require.NoError(t, err)
	assert.True(t, sub.Types["a"].Equals(types.TInt))
	assert.True(t, sub.Types["r"].Equals(types.TBool))
}

func TestUnifyFuncEffectMismatchFails(t *testing.T) {
	u := New(freshCounter())
	f1 := &types.Func{Arg: types.TInt, Eff: effects.Single("io", ""), Ret: types.TUnit}
	f2 := &types.Func{Arg: types.TInt, Eff: effects.Empty(), Ret: types.TUnit}
	_, err := u.Unify(f1, f2, types.New())
	require.Error(t, err)
}

func TestUnifyEffectRowRemovesOneDuplicate(t *testing.T) {
	u := New(freshCounter())
	// {exn, exn} ~ {exn} | ev  -> ev should bind to {exn}
	lhs := effects.Cons("exn", "E1", effects.Cons("exn", "E2", effects.Empty()))
	rhs := effects.Cons("exn", "E1", effects.NewVar("ev"))
	sub, err := u.UnifyEffect(lhs, rhs, types.New())
	require.NoError(t, err)
	bound := sub.Effects["ev"]
	require.NotNil(t, bound)
	assert.True(t, effects.HasEffect("exn", bound))
}

func TestUnifyEffectBareVarBindsToConcreteRow(t *testing.T) {
	u := New(freshCounter())
	lhs := effects.Single("fs", "File.write/3")
	rhs := effects.NewVar("ev")
	sub, err := u.UnifyEffect(lhs, rhs, types.New())
	require.NoError(t, err)
	bound := sub.Effects["ev"]
	require.NotNil(t, bound)
	assert.True(t, effects.HasEffect("fs", bound))
}

func TestUnifyEffectClosedMismatchFails(t *testing.T) {
	u := New(freshCounter())
	lhs := effects.Single("io", "")
	rhs := effects.Single("fs", "")
	_, err := u.UnifyEffect(lhs, rhs, types.New())
	require.Error(t, err)
}

func TestUnifyEffectEmptyVsNonEmptyFails(t *testing.T) {
	u := New(freshCounter())
	_, err := u.UnifyEffect(effects.Empty(), effects.Single("io", ""), types.New())
	require.Error(t, err)
}

func TestUnifySchemeAlphaRenames(t *testing.T) {
	u := New(freshCounter())
	s1 := &types.Scheme{TypeVars: []string{"a"}, Body: &types.List{Elem: &types.Var{ID: "a"}}}
	s2 := &types.Scheme{TypeVars: []string{"b"}, Body: &types.List{Elem: &types.Var{ID: "b"}}}
	_, err := u.UnifyScheme(s1, s2, types.New())
	require.NoError(t, err)
}

func TestUnifySchemeArityMismatchFails(t *testing.T) {
	u := New(freshCounter())
	s1 := &types.Scheme{TypeVars: []string{"a"}, Body: types.TInt}
	s2 := &types.Scheme{TypeVars: []string{"a", "b"}, Body: types.TInt}
	_, err := u.UnifyScheme(s1, s2, types.New())
	require.Error(t, err)
}

func TestUnifyUnionRequiresStructuralEquality(t *testing.T) {
	u := New(freshCounter())
	a := &types.Union{Alts: []types.Type{types.TInt, types.TBool}}
	b := &types.Union{Alts: []types.Type{types.TBool, types.TInt}}
	_, err := u.Unify(a, b, types.New())
	// Order in String() is sorted, so this should actually succeed since
	// Equals compares canonical String() forms.
	require.NoError(t, err)
}
