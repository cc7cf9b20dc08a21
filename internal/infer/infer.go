// Package infer implements the bidirectional walker (C8): the two
// mutually-recursive Synthesize/Check judgments that assign a type and
// effect row to every expression in the consumed syntax tree, querying the
// registry (C5) and protocol resolver (C6) for external call effects and
// the typing context (C7) for bindings.
//
// Grounded on the teacher's internal/types/typechecker_core.go
// (bidirectional inferExpr/checkExpr pair, threading a *Subst through
// recursive calls and composing it at each step) and
// internal/types/typechecker_substitution.go (apply-as-you-go substitution
// discipline this walker mirrors).
package infer

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/ctx"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/errors"
	"github.com/sunholo/effectlang/internal/registry"
	"github.com/sunholo/effectlang/internal/resolve"
	"github.com/sunholo/effectlang/internal/types"
	"github.com/sunholo/effectlang/internal/unify"
)

// Walker holds the per-analysis state threaded through Synthesize/Check:
// the registry and protocol table are shared, read-mostly references; the
// unifier, fresh-variable source, and call log are owned exclusively by
// this one analysis (spec.md §5: "each analysis owns its substitution, its
// fresh-variable counter").
type Walker struct {
	Registry  *registry.Registry
	Protocols *resolve.Table
	Fresh     *ctx.Fresh
	Unifier   *unify.Unifier

	// CurrentModule names the module whose definitions are currently being
	// analyzed, used to build the MFA of same-module local calls.
	CurrentModule string

	// Calls records every call target observed (external calls, resolved
	// protocol implementations, same-module local calls and capture
	// references), in left-to-right evaluation order, for the produced
	// summary's `calls` field (spec.md §6).
	Calls []ast.MFA

	// Errors accumulates non-fatal type errors; unify failures do not abort
	// the walk (spec.md §4.8) but are recorded for the caller to report.
	Errors []*errors.Encoded

	// accum is the effect row accumulated so far in the innermost
	// sequence/block at the point currently being synthesized. A lambda
	// literal snapshots it as its Captured effect (spec.md §4.7, "Capture
	// the environment's currently-accumulated effect as the closure's
	// captured effect").
	accum *effects.Row
}

// New creates a walker sharing the given registry and protocol table.
func New(reg *registry.Registry, protocols *resolve.Table) *Walker {
	fresh := ctx.NewFresh()
	return &Walker{
		Registry:  reg,
		Protocols: protocols,
		Fresh:     fresh,
		Unifier:   &unify.Unifier{Fresh: fresh.Next},
		accum:     effects.Empty(),
	}
}

func (w *Walker) recordError(e *errors.Encoded) {
	w.Errors = append(w.Errors, e)
}

func (w *Walker) unify(t1, t2 types.Type, sub types.Subst, at ast.Pos) types.Subst {
	next, err := w.Unifier.Unify(t1, t2, sub)
	if err != nil {
		w.recordError(errors.New("infer", "UNI001", err.Error()).WithSpan(at.String()))
		return sub
	}
	return next
}

func (w *Walker) unifyEffect(e1, e2 *effects.Row, sub types.Subst, at ast.Pos) (types.Subst, *effects.Row) {
	next, err := w.Unifier.UnifyEffect(e1, e2, sub)
	if err != nil {
		w.recordError(errors.New("infer", "ROW001", err.Error()).WithSpan(at.String()))
		return sub, e1
	}
	return next, e2
}

// Synthesize is `Γ ⊢ e ⇒ (T, E, σ)` (spec.md §4.7).
func (w *Walker) Synthesize(env *ctx.Env, sub types.Subst, e ast.Expr) (types.Type, *effects.Row, types.Subst) {
	switch n := e.(type) {

	case *ast.Literal:
		return literalType(n), effects.Empty(), sub

	case *ast.Var:
		scheme, ok := env.Lookup(n.Name)
		if !ok {
			// Unknown identifiers resolve to a fresh variable carrying an
			// unknown effect (spec.md §4.8), so the enclosing clause
			// classifies unknown.
			return w.Fresh.TypeVar(), effects.Single(effects.LabelUnknown, ""), sub
		}
		return scheme.Instantiate(w.Fresh.Next), effects.Empty(), sub

	case *ast.List:
		return w.synthSeq(env, sub, n.Elems, func(elems []types.Type) types.Type {
			if len(elems) == 0 {
				return &types.List{Elem: w.Fresh.TypeVar()}
			}
			return &types.List{Elem: elems[0]}
		})

	case *ast.Tuple:
		return w.synthSeq(env, sub, n.Elems, func(elems []types.Type) types.Type {
			return &types.Tuple{Elems: elems}
		})

	case *ast.MapLit:
		keyT := w.Fresh.TypeVar()
		valT := w.Fresh.TypeVar()
		eff := effects.Empty()
		for _, entry := range n.Entries {
			kt, ke, s2 := w.Synthesize(env, sub, entry.Key)
			sub = w.unify(keyT, kt, s2, entry.Key.Position())
			eff = effects.Combine(eff, ke)
			vt, ve, s3 := w.Synthesize(env, sub, entry.Val)
			sub = w.unify(valT, vt, s3, entry.Val.Position())
			eff = effects.Combine(eff, ve)
		}
		return &types.Map{Key: types.ApplySubst(sub, keyT), Val: types.ApplySubst(sub, valT)}, eff, sub

	case *ast.StructLiteral:
		fields := map[string]types.Type{}
		eff := effects.Empty()
		for _, f := range n.Fields {
			ft, fe, s2 := w.Synthesize(env, sub, f.Value)
			sub = s2
			fields[f.Name] = ft
			eff = effects.Combine(eff, fe)
		}
		return &types.Struct{Module: n.Module, Fields: fields}, eff, sub

	case *ast.Binding:
		valT, valE, s2 := w.Synthesize(env, sub, n.Expr)
		skel := ctx.Skeleton(n.Pat, w.Fresh)
		s3 := w.unify(skel, valT, s2, n.Pos)
		for _, name := range ctx.PatternVars(n.Pat) {
			env.Bind(name, types.Mono(types.ApplySubst(s3, skel)))
		}
		return types.ApplySubst(s3, valT), valE, s3

	case *ast.Block:
		return w.synthBlock(env, sub, n.Exprs)

	case *ast.Lambda:
		return w.synthLambda(env, sub, n)

	case *ast.CaptureRef:
		mfa := ast.MFA{Module: n.Module, Function: n.Function, Arity: n.Arity}
		w.Calls = append(w.Calls, mfa)
		compact, _ := w.Registry.EffectOf(mfa)
		body := effects.FromCompact(compact)
		arg := w.Fresh.TypeVar()
		ret := w.Fresh.TypeVar()
		return &types.Func{Arg: arg, Eff: body, Ret: ret}, effects.Empty(), sub

	case *ast.Call:
		return w.synthCall(env, sub, n)

	case *ast.ApplyClosure:
		return w.synthApplyClosure(env, sub, n)

	case *ast.If:
		condT, condE, s2 := w.Synthesize(env, sub, n.Cond)
		s2 = w.unify(condT, types.TBool, s2, n.Cond.Position())
		thenT, thenE, s3 := w.Synthesize(env, s2, n.Then)
		elseT, elseE, s4 := w.Synthesize(env, s3, n.Else)
		s5 := w.unify(thenT, elseT, s4, n.Pos)
		eff := effects.Combine(condE, effects.Combine(thenE, elseE))
		return types.ApplySubst(s5, thenT), eff, s5

	case *ast.Case:
		return w.synthCase(env, sub, n)

	case *ast.Raise:
		return w.synthRaise(env, sub, n)

	case *ast.Throw:
		_, msgE, s2 := w.Synthesize(env, sub, n.Value)
		eff := effects.Combine(msgE, effects.Single(effects.LabelExn, ""))
		return w.Fresh.TypeVar(), eff, s2

	case *ast.Try:
		return w.synthTry(env, sub, n)

	case *ast.Pipeline:
		return w.synthPipeline(env, sub, n)

	case *ast.Aliases:
		// Dynamic module aliases are compile-time atoms with empty effect;
		// they never introduce effect variables (spec.md §4.8).
		return types.TAtom, effects.Empty(), sub

	default:
		return w.Fresh.TypeVar(), effects.Empty(), sub
	}
}

// Check is `Γ ⊢ e ⇐ T ⇒ (E, σ)` (spec.md §4.7): synthesize then unify with
// the expected type.
func (w *Walker) Check(env *ctx.Env, sub types.Subst, e ast.Expr, expected types.Type) (*effects.Row, types.Subst) {
	t, eff, s2 := w.Synthesize(env, sub, e)
	s3 := w.unify(expected, t, s2, e.Position())
	return eff, s3
}

func (w *Walker) synthSeq(env *ctx.Env, sub types.Subst, exprs []ast.Expr, build func([]types.Type) types.Type) (types.Type, *effects.Row, types.Subst) {
	outerAccum := w.accum
	eff := effects.Empty()
	elems := make([]types.Type, len(exprs))
	for i, e := range exprs {
		w.accum = effects.Combine(outerAccum, eff)
		t, e2, s2 := w.Synthesize(env, sub, e)
		sub = s2
		elems[i] = t
		eff = effects.Combine(eff, e2)
	}
	w.accum = outerAccum
	for i := range elems {
		elems[i] = types.ApplySubst(sub, elems[i])
	}
	return build(elems), eff, sub
}

func (w *Walker) synthBlock(env *ctx.Env, sub types.Subst, exprs []ast.Expr) (types.Type, *effects.Row, types.Subst) {
	if len(exprs) == 0 {
		return types.TUnit, effects.Empty(), sub
	}
	outerAccum := w.accum
	eff := effects.Empty()
	var last types.Type
	for _, e := range exprs {
		w.accum = effects.Combine(outerAccum, eff)
		t, e2, s2 := w.Synthesize(env, sub, e)
		sub = s2
		last = t
		eff = effects.Combine(eff, e2)
	}
	w.accum = outerAccum
	return types.ApplySubst(sub, last), eff, sub
}

// synthLambda implements the captured-vs-body effect split (spec.md §4.7):
// the lambda's own contribution to the enclosing row is always empty; its
// body effect only fires on application, and is stored on the resulting
// Closure alongside whatever effect was already accumulated in the
// enclosing scope at the point of definition (its "captured" effect).
func (w *Walker) synthLambda(env *ctx.Env, sub types.Subst, n *ast.Lambda) (types.Type, *effects.Row, types.Subst) {
	captured := w.accum
	// Single-clause fast path covers the vast majority of real lambdas;
	// multi-clause lambdas unify every clause's arg/body shape pairwise.
	var result *types.Closure
	for _, clause := range n.Clauses {
		inner := env.Enter()
		argTypes := make([]types.Type, len(clause.Params))
		for i, p := range clause.Params {
			skel := ctx.Skeleton(p.Pat, w.Fresh)
			argTypes[i] = skel
			for _, name := range ctx.PatternVars(p.Pat) {
				inner.Bind(name, types.Mono(skel))
			}
		}
		savedAccum := w.accum
		w.accum = effects.Empty()
		bodyT, bodyE, s2 := w.Synthesize(inner, sub, clause.Body)
		w.accum = savedAccum
		sub = s2
		env = inner.Leave()

		clauseClosure := &types.Closure{
			Arg:      argTypeOf(argTypes),
			Ret:      types.ApplySubst(sub, bodyT),
			Captured: captured,
			Body:     bodyE.Substitute(sub.EffSubst()),
		}
		if result == nil {
			result = clauseClosure
		} else {
			sub = w.unify(result.Arg, clauseClosure.Arg, sub, n.Pos)
			sub = w.unify(result.Ret, clauseClosure.Ret, sub, n.Pos)
			var merged *effects.Row
			sub, merged = w.unifyEffect(result.Body, clauseClosure.Body, sub, n.Pos)
			result.Body = merged
		}
	}
	if result == nil {
		result = &types.Closure{Arg: w.Fresh.TypeVar(), Ret: w.Fresh.TypeVar(), Captured: captured, Body: effects.Empty()}
	}
	return result, effects.Empty(), sub
}

func argTypeOf(params []types.Type) types.Type {
	if len(params) == 1 {
		return params[0]
	}
	return &types.Tuple{Elems: params}
}

func literalType(l *ast.Literal) types.Type {
	switch l.Kind {
	case ast.IntLit:
		return types.TInt
	case ast.FloatLit:
		return types.TFloat
	case ast.AtomLit:
		return types.TAtom
	case ast.StringLit:
		return types.TString
	case ast.BoolLit:
		return types.TBool
	case ast.NilLit:
		return types.TUnit
	default:
		return types.TAny
	}
}
