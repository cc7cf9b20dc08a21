package infer

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/ctx"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/resolve"
	"github.com/sunholo/effectlang/internal/types"
)

// synthCall is `Call(target, args)` (spec.md §4.7 Application / Protocol
// dispatch call / External call).
func (w *Walker) synthCall(env *ctx.Env, sub types.Subst, n *ast.Call) (types.Type, *effects.Row, types.Subst) {
	argTypes := make([]types.Type, len(n.Args))
	eff := effects.Empty()
	for i, a := range n.Args {
		t, e2, s2 := w.Synthesize(env, sub, a)
		sub = s2
		argTypes[i] = t
		eff = effects.Combine(eff, e2)
	}
	for i := range argTypes {
		argTypes[i] = types.ApplySubst(sub, argTypes[i])
	}

	if n.Target.IsRemote {
		entry := ast.MFA{Module: n.Target.Module, Function: n.Target.Function, Arity: len(n.Args)}

		if impl, ok := resolve.Resolve(w.Protocols, entry, argTypes); ok {
			w.Calls = append(w.Calls, impl)
			callEff := effects.Combine(eff, resolve.CombineEffect(w.Registry, impl, latentArgEffects(argTypes)))
			return w.Fresh.TypeVar(), callEff, sub
		}

		if w.Protocols.IsRegistered(entry) {
			// A known dispatch point whose receiver couldn't be narrowed to
			// a concrete implementation: unknown, never a registry lookup
			// on the entry point itself (spec.md §4.5, §4.7 "On
			// unresolvable input → unknown").
			callEff := effects.Combine(eff, effects.FromCompact(effects.Compact{Category: effects.CatUnknown}))
			return w.Fresh.TypeVar(), callEff, sub
		}

		// External call: look up registry, combine with argument effects
		// (spec.md §4.7 "External call").
		w.Calls = append(w.Calls, entry)
		compact, _ := w.Registry.EffectOf(entry)
		callEff := effects.Combine(eff, effects.FromCompact(compact))
		return w.Fresh.TypeVar(), callEff, sub
	}

	// Local call: an application of a same-module definition, reachable
	// through the typing context the way any other bound identifier is.
	scheme, ok := env.Lookup(n.Target.Function)
	mfa := ast.MFA{Module: w.CurrentModule, Function: n.Target.Function, Arity: len(n.Args)}
	w.Calls = append(w.Calls, mfa)
	if !ok {
		compact, _ := w.Registry.EffectOf(mfa)
		callEff := effects.Combine(eff, effects.FromCompact(compact))
		return w.Fresh.TypeVar(), callEff, sub
	}
	fnType := scheme.Instantiate(w.Fresh.Next)
	return w.applyFunc(fnType, argTypes, eff, sub, n.Pos)
}

// latentArgEffects extracts the not-yet-fired body effect of each
// function/closure-typed argument (spec.md §4.9's invariant: a dispatch
// site's outer effect is the resolved impl's registry effect combined with
// its argument lambdas' latent effects, since passing a lambda doesn't fire
// it — the dispatched implementation applying it internally does).
func latentArgEffects(argTypes []types.Type) []*effects.Row {
	var out []*effects.Row
	for _, t := range argTypes {
		switch ft := t.(type) {
		case *types.Closure:
			out = append(out, ft.Body)
		case *types.Func:
			out = append(out, ft.Eff)
		}
	}
	return out
}

// synthApplyClosure is `f.(args)` (spec.md §4.7 "Closure application of a
// non-first-class target").
func (w *Walker) synthApplyClosure(env *ctx.Env, sub types.Subst, n *ast.ApplyClosure) (types.Type, *effects.Row, types.Subst) {
	fnType, fnEff, s2 := w.Synthesize(env, sub, n.Fn)
	sub = s2
	eff := fnEff

	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		t, e2, s3 := w.Synthesize(env, sub, a)
		sub = s3
		argTypes[i] = t
		eff = effects.Combine(eff, e2)
	}
	for i := range argTypes {
		argTypes[i] = types.ApplySubst(sub, argTypes[i])
	}

	switch fnType.(type) {
	case *types.Closure, *types.Func:
		return w.applyFunc(fnType, argTypes, eff, sub, n.Pos)
	default:
		// f was not yet resolved to a function/closure type (e.g. a bare
		// parameter used only as `fun.(x)`): unify it with a fresh closure
		// shape whose captured/body effects are fresh effect variables,
		// rather than leave it opaque. Two things fall out of this for
		// free: standing alone, the row is effect-vars only, which is
		// exactly what makes a function containing only `fun.(x)` classify
		// as lambda after C9 (spec.md §4.7, §4.9); and if this same
		// parameter is later unified against a concrete closure at a call
		// site (e.g. a caller passing a real lambda in), that unification
		// binds these effect variables to the real latent effect, so the
		// composed caller sees the lambda's actual effect instead of an
		// unresolved variable.
		shape := &types.Closure{
			Arg:      argTypeOf(argTypes),
			Ret:      w.Fresh.TypeVar(),
			Captured: effects.NewVar(w.Fresh.Next("e")),
			Body:     effects.NewVar(w.Fresh.Next("e")),
		}
		sub = w.unify(fnType, shape, sub, n.Pos)
		eff = effects.Combine(eff, shape.Captured.Substitute(sub.EffSubst()))
		eff = effects.Combine(eff, shape.Body.Substitute(sub.EffSubst()))
		return types.ApplySubst(sub, shape.Ret), eff, sub
	}
}

// applyFunc unifies the callee's argument shape against the actual
// argument types and combines the accumulated call-site effect with the
// callee's latent body effect (and captured effect, for a closure) per
// spec.md §4.7's Application rule.
func (w *Walker) applyFunc(fnType types.Type, argTypes []types.Type, accumEff *effects.Row, sub types.Subst, at ast.Pos) (types.Type, *effects.Row, types.Subst) {
	arg := argTypeOf(argTypes)
	switch ft := fnType.(type) {
	case *types.Func:
		sub = w.unify(ft.Arg, arg, sub, at)
		eff := effects.Combine(accumEff, ft.Eff.Substitute(sub.EffSubst()))
		return types.ApplySubst(sub, ft.Ret), eff, sub
	case *types.Closure:
		sub = w.unify(ft.Arg, arg, sub, at)
		eff := effects.Combine(accumEff, ft.Captured.Substitute(sub.EffSubst()))
		eff = effects.Combine(eff, ft.Body.Substitute(sub.EffSubst()))
		return types.ApplySubst(sub, ft.Ret), eff, sub
	default:
		// Not a function/closure: record the mismatch and proceed with a
		// fresh result so one local failure does not cascade (spec.md §4.8).
		ret := w.Fresh.TypeVar()
		sub = w.unify(fnType, &types.Func{Arg: arg, Eff: effects.Empty(), Ret: ret}, sub, at)
		return ret, accumEff, sub
	}
}
