package infer

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/ctx"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/types"
)

// synthCase is `Case(scrutinee, clauses)` (spec.md §4.7 "If / Case"):
// synthesize the scrutinee, check each branch against a fresh shared result
// variable, unify branches pairwise, and row-combine the scrutinee's effect
// with every branch's.
func (w *Walker) synthCase(env *ctx.Env, sub types.Subst, n *ast.Case) (types.Type, *effects.Row, types.Subst) {
	scrutT, scrutE, s2 := w.Synthesize(env, sub, n.Scrutinee)
	sub = s2
	eff := scrutE

	result := w.Fresh.TypeVar()
	var resultT types.Type = result
	for _, clause := range n.Clauses {
		inner := env.Enter()
		skel := ctx.Skeleton(clause.Pat, w.Fresh)
		sub = w.unify(skel, scrutT, sub, n.Pos)
		for _, name := range ctx.PatternVars(clause.Pat) {
			inner.Bind(name, types.Mono(types.ApplySubst(sub, skel)))
		}
		if clause.Guard != nil {
			_, guardE, s3 := w.Synthesize(inner, sub, clause.Guard)
			sub = s3
			eff = effects.Combine(eff, guardE)
		}
		branchT, branchE, s4 := w.Synthesize(inner, sub, clause.Body)
		sub = s4
		env = inner.Leave()
		sub = w.unify(resultT, branchT, sub, n.Pos)
		eff = effects.Combine(eff, branchE)
	}
	return types.ApplySubst(sub, resultT), eff, sub
}

// synthRaise is `raise Module, msg` or the dynamic form `raise expr`
// (spec.md §4.7 "Raise"). The exception constructor's module argument is
// structural machinery, not an observable call — it is never added to
// Calls, and msg is synthesized only for its type, discarding its effect
// would be wrong too, so msg's effect does thread into the result (the
// expression `msg` itself may call arbitrary functions).
func (w *Walker) synthRaise(env *ctx.Env, sub types.Subst, n *ast.Raise) (types.Type, *effects.Row, types.Subst) {
	var label string
	if n.Module != "" {
		label = n.Module
	} else {
		// Module is a runtime value: emit exception([:dynamic]).
		_, dynE, s2 := w.Synthesize(env, sub, n.Dyn)
		sub = s2
		eff := effects.Combine(dynE, effects.Single(effects.LabelExn, "dynamic"))
		if n.Msg != nil {
			_, msgE, s3 := w.Synthesize(env, sub, n.Msg)
			sub = s3
			eff = effects.Combine(eff, msgE)
		}
		return w.Fresh.TypeVar(), eff, sub
	}

	eff := effects.Single(effects.LabelExn, label)
	if n.Msg != nil {
		_, msgE, s2 := w.Synthesize(env, sub, n.Msg)
		sub = s2
		eff = effects.Combine(eff, msgE)
	}
	return w.Fresh.TypeVar(), eff, sub
}

// synthTry is `Try(body, rescues, after)` (spec.md §4.7 "Try/rescue"): each
// rescue clause removes one occurrence of the matching exception label from
// the body's row; the residual row, unioned with every rescue clause's own
// effect, is the try-expression's effect.
func (w *Walker) synthTry(env *ctx.Env, sub types.Subst, n *ast.Try) (types.Type, *effects.Row, types.Subst) {
	bodyT, bodyE, s2 := w.Synthesize(env, sub, n.Body)
	sub = s2

	residual := bodyE
	result := bodyT
	for _, r := range n.Rescues {
		if removed, ok := effects.RemoveOne(effects.LabelExn, residual); ok {
			residual = removed
		}
		inner := env.Enter()
		if r.Binding != nil {
			skel := ctx.Skeleton(r.Binding, w.Fresh)
			for _, name := range ctx.PatternVars(r.Binding) {
				inner.Bind(name, types.Mono(skel))
			}
		}
		rescueT, rescueE, s3 := w.Synthesize(inner, sub, r.Body)
		sub = s3
		env = inner.Leave()
		sub = w.unify(result, rescueT, sub, n.Pos)
		residual = effects.Combine(residual, rescueE)
	}

	if n.After != nil {
		_, afterE, s4 := w.Synthesize(env, sub, n.After)
		sub = s4
		residual = effects.Combine(residual, afterE)
	}

	return types.ApplySubst(sub, result), residual, sub
}

// synthPipeline is `Pipeline(head, stages)` — optional sugar equivalent to
// chained calls (spec.md §6): each stage's piped value is implicitly
// prepended as its first argument, so a pipeline desugars into nested
// ast.Call nodes before reaching this walker in the general case; this
// direct form threads effects left-to-right the same way a desugared chain
// would.
func (w *Walker) synthPipeline(env *ctx.Env, sub types.Subst, n *ast.Pipeline) (types.Type, *effects.Row, types.Subst) {
	headT, headE, s2 := w.Synthesize(env, sub, n.Head)
	sub = s2
	eff := headE
	cur := headT

	for _, stage := range n.Stages {
		t, e2, s3 := w.synthPipelineStage(env, sub, stage, cur, n.Pos)
		sub = s3
		cur = t
		eff = effects.Combine(eff, e2)
	}
	return cur, eff, sub
}

// synthPipelineStage synthesizes one `|> f(args...)` stage given the
// already-synthesized type of the piped value, which is implicitly
// prepended as the first argument (spec.md §6 "Pipeline").
func (w *Walker) synthPipelineStage(env *ctx.Env, sub types.Subst, stage ast.PipelineStage, headT types.Type, at ast.Pos) (types.Type, *effects.Row, types.Subst) {
	argTypes := make([]types.Type, len(stage.Args)+1)
	argTypes[0] = headT
	eff := effects.Empty()
	for i, a := range stage.Args {
		t, e2, s2 := w.Synthesize(env, sub, a)
		sub = s2
		argTypes[i+1] = t
		eff = effects.Combine(eff, e2)
	}
	arity := len(argTypes)

	if stage.Target.IsRemote {
		entry := ast.MFA{Module: stage.Target.Module, Function: stage.Target.Function, Arity: arity}
		w.Calls = append(w.Calls, entry)
		compact, _ := w.Registry.EffectOf(entry)
		return w.Fresh.TypeVar(), effects.Combine(eff, effects.FromCompact(compact)), sub
	}
	mfa := ast.MFA{Module: w.CurrentModule, Function: stage.Target.Function, Arity: arity}
	w.Calls = append(w.Calls, mfa)
	scheme, ok := env.Lookup(stage.Target.Function)
	if !ok {
		compact, _ := w.Registry.EffectOf(mfa)
		return w.Fresh.TypeVar(), effects.Combine(eff, effects.FromCompact(compact)), sub
	}
	fnType := scheme.Instantiate(w.Fresh.Next)
	return w.applyFunc(fnType, argTypes, eff, sub, at)
}
