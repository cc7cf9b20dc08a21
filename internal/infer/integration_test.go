package infer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/classify"
	"github.com/sunholo/effectlang/internal/ctx"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/fixpoint"
	"github.com/sunholo/effectlang/internal/registry"
	"github.com/sunholo/effectlang/internal/resolve"
	"github.com/sunholo/effectlang/internal/types"
)

// newWalker builds a walker seeded with the scenario registry entries used
// across spec.md §8's concrete scenario table.
func newWalker() *Walker {
	reg := registry.New()
	reg.Put(ast.MFA{Module: "Scenario", Function: "write_file", Arity: 1},
		registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: []string{"write_file/1"}}})
	reg.Put(ast.MFA{Module: "Scenario", Function: "io_puts", Arity: 1},
		registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: []string{"io_puts/1"}}})
	reg.Put(ast.MFA{Module: "Scenario", Function: "write_file", Arity: 3},
		registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: []string{"write_file/3"}}})
	reg.Put(ast.MFA{Module: "Kernel", Function: "apply", Arity: 3},
		registry.Entry{Effect: effects.Compact{Category: effects.CatUnknown}})
	reg.Put(ast.MFA{Module: "Kernel", Function: "+", Arity: 2}, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})
	reg.Put(ast.MFA{Module: "Kernel", Function: "*", Arity: 2}, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})

	protocols := resolve.NewTable()
	protocols.Register(ast.MFA{Module: "Enum", Function: "map", Arity: 2}, resolve.Protocol{
		Impls: map[string]ast.MFA{"List": {Module: "List", Function: "map", Arity: 2}},
	})
	protocols.Register(ast.MFA{Module: "Enum", Function: "each", Arity: 2}, resolve.Protocol{
		Impls: map[string]ast.MFA{"List": {Module: "List", Function: "each", Arity: 2}},
	})
	reg.Put(ast.MFA{Module: "List", Function: "map", Arity: 2}, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})
	reg.Put(ast.MFA{Module: "List", Function: "each", Arity: 2}, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})

	w := New(reg, protocols)
	w.CurrentModule = "Scenario"
	return w
}

func classifyClause(w *Walker, t types.Type, e *effects.Row, sub types.Subst, params []types.Type) effects.Compact {
	return classify.Classify(sub, t, e, params)
}

// Scenario 1: f(x,y) = x + y → pure
func TestScenario01PureArithmetic(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	x, y := w.Fresh.TypeVar(), w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))
	env.Bind("y", types.Mono(y))

	body := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "+"},
		Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}}}
	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, types.TInt, eff, sub, []types.Type{x, y})
	assert.Equal(t, effects.CatPure, c.Category)
}

// Scenario 2: f(x) = write_file(x) → side([write_file/1])
func TestScenario02SideEffect(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	x := w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))

	body := &ast.Call{Target: ast.CallTarget{Function: "write_file"}, Args: []ast.Expr{&ast.Var{Name: "x"}}}
	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, types.TUnit, eff, sub, []types.Type{x})
	assert.Equal(t, effects.CatSide, c.Category)
	assert.Contains(t, c.Payloads, "write_file/1")
}

// Scenario 3: f(x) = raise ArgumentError, x → exception([ArgumentError])
func TestScenario03RaiseException(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	x := w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))

	body := &ast.Raise{Module: "ArgumentError", Msg: &ast.Var{Name: "x"}}
	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, []types.Type{x})
	assert.Equal(t, effects.CatException, c.Category)
	assert.Equal(t, []string{"ArgumentError"}, c.Payloads)
}

// Scenario 4: f(fn) = fn(10) where fn is a parameter → lambda
func TestScenario04LambdaDependent(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	fnParam := &types.Closure{Arg: types.TInt, Ret: w.Fresh.TypeVar(), Captured: effects.Empty(), Body: effects.NewVar(w.Fresh.Next("e"))}
	env.Bind("fn", types.Mono(fnParam))

	body := &ast.ApplyClosure{Fn: &ast.Var{Name: "fn"}, Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 10}}}
	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, []types.Type{fnParam})
	assert.Equal(t, effects.CatLambda, c.Category)
}

// Scenario 11: apply(M,f,a) → unknown
func TestScenario11ApplyIsUnknown(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	body := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "apply"},
		Args: []ast.Expr{&ast.Var{Name: "m"}, &ast.Var{Name: "f"}, &ast.Var{Name: "a"}}}
	env.Bind("m", types.Mono(types.TAtom))
	env.Bind("f", types.Mono(types.TAtom))
	env.Bind("a", types.Mono(types.TAny))

	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, nil)
	assert.Equal(t, effects.CatUnknown, c.Category)
}

// Scenario 7: Block{io_puts(x); write_file(y)} → side([io_puts/1, write_file/3])
func TestScenario07BlockCombinesDedupedSortedPayloads(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	x, y := w.Fresh.TypeVar(), w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))
	env.Bind("y", types.Mono(y))

	block := &ast.Block{Exprs: []ast.Expr{
		&ast.Call{Target: ast.CallTarget{Function: "io_puts"}, Args: []ast.Expr{&ast.Var{Name: "x"}}},
		&ast.Call{Target: ast.CallTarget{Function: "write_file"}, Args: []ast.Expr{&ast.Var{Name: "y"}, &ast.Var{Name: "y"}, &ast.Var{Name: "y"}}},
	}}
	reg := w.Registry
	reg.Put(ast.MFA{Module: "Scenario", Function: "write_file", Arity: 3},
		registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: []string{"write_file/3"}}})
	reg.Put(ast.MFA{Module: "Scenario", Function: "io_puts", Arity: 1},
		registry.Entry{Effect: effects.Compact{Category: effects.CatSide, Payloads: []string{"io_puts/1"}}})

	_, eff, sub := w.Synthesize(env, types.New(), block)
	c := classifyClause(w, types.TUnit, eff, sub, []types.Type{x, y})
	assert.Equal(t, effects.CatSide, c.Category)
	assert.Equal(t, []string{"io_puts/1", "write_file/3"}, c.Payloads)
}

// Scenario 10: nested try/rescue removes exactly one matching exn occurrence.
func TestScenario10NestedTryRemovesOneException(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()

	inner := &ast.Try{
		Body: &ast.Raise{Module: "Exn"},
	}
	outer := &ast.Try{
		Body:    &ast.Raise{Module: "Exn"},
		Rescues: []ast.Rescue{{ExceptionType: "Exn", Body: inner}},
	}

	_, eff, sub := w.Synthesize(env, types.New(), outer)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, nil)
	assert.Equal(t, effects.CatException, c.Category)
	assert.Equal(t, []string{"Exn"}, c.Payloads)
}

// Scenario 5: call4_pure() = f(λx.x*2) with f(fn) = fn(10) → pure
func TestScenario05ComposedPureLambdaStaysPure(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()

	f := &ast.Lambda{Clauses: []ast.LambdaClause{{
		Params: []ast.Param{{Pat: &ast.Var{Name: "fn"}}},
		Body: &ast.ApplyClosure{Fn: &ast.Var{Name: "fn"}, Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 10}}},
	}}}
	fT, _, sub := w.Synthesize(env, types.New(), f)
	env.Bind("f", types.Mono(fT))

	double := &ast.Lambda{Clauses: []ast.LambdaClause{{
		Params: []ast.Param{{Pat: &ast.Var{Name: "x"}}},
		Body: &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "*"},
			Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Literal{Kind: ast.IntLit, Value: 2}}},
	}}}

	call4Pure := &ast.Call{Target: ast.CallTarget{Function: "f"}, Args: []ast.Expr{double}}
	_, eff, sub2 := w.Synthesize(env, sub, call4Pure)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub2, nil)
	assert.Equal(t, effects.CatPure, c.Category)
}

// Scenario 6: call4_eff() = f(λx. io_puts(x); x*2) with f as in (4/5) → side([io_puts/1])
func TestScenario06ComposedEffectfulLambdaPropagatesSide(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()

	f := &ast.Lambda{Clauses: []ast.LambdaClause{{
		Params: []ast.Param{{Pat: &ast.Var{Name: "fn"}}},
		Body: &ast.ApplyClosure{Fn: &ast.Var{Name: "fn"}, Args: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 10}}},
	}}}
	fT, _, sub := w.Synthesize(env, types.New(), f)
	env.Bind("f", types.Mono(fT))

	loggingDouble := &ast.Lambda{Clauses: []ast.LambdaClause{{
		Params: []ast.Param{{Pat: &ast.Var{Name: "x"}}},
		Body: &ast.Block{Exprs: []ast.Expr{
			&ast.Call{Target: ast.CallTarget{Function: "io_puts"}, Args: []ast.Expr{&ast.Var{Name: "x"}}},
			&ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "*"},
				Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Literal{Kind: ast.IntLit, Value: 2}}},
		}},
	}}}

	call4Eff := &ast.Call{Target: ast.CallTarget{Function: "f"}, Args: []ast.Expr{loggingDouble}}
	_, eff, sub2 := w.Synthesize(env, sub, call4Eff)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub2, nil)
	assert.Equal(t, effects.CatSide, c.Category)
	assert.Contains(t, c.Payloads, "io_puts/1")
}

// Scenario 8: enum_map(list_literal, λx.x*2) resolves to List.map (pure) → pure
func TestScenario08ProtocolDispatchToPureImplStaysPure(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()

	double := &ast.Lambda{Clauses: []ast.LambdaClause{{
		Params: []ast.Param{{Pat: &ast.Var{Name: "x"}}},
		Body: &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "*"},
			Args: []ast.Expr{&ast.Var{Name: "x"}, &ast.Literal{Kind: ast.IntLit, Value: 2}}},
	}}}

	body := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Enum", Function: "map"},
		Args: []ast.Expr{&ast.List{Elems: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 1}}}, double}}

	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, nil)
	assert.Equal(t, effects.CatPure, c.Category)
}

// Scenario 9: enum_each(list_literal, io_puts_ref) resolves to List.each
// (itself pure) but applies the passed io_puts reference → side([io_puts/1])
func TestScenario09ProtocolDispatchCombinesArgumentLambdaEffect(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()

	ioPutsRef := &ast.CaptureRef{Module: "Scenario", Function: "io_puts", Arity: 1}
	body := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "Enum", Function: "each"},
		Args: []ast.Expr{&ast.List{Elems: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 1}}}, ioPutsRef}}

	_, eff, sub := w.Synthesize(env, types.New(), body)
	c := classifyClause(w, w.Fresh.TypeVar(), eff, sub, nil)
	assert.Equal(t, effects.CatSide, c.Category)
	assert.Contains(t, c.Payloads, "io_puts/1")
}

// Scenario 12: mutual recursion a(n) = b(n), b(n) = a(n), neither does
// anything but call its sibling — the fix-point driver must converge both
// to pure rather than loop or classify them dependent/unknown.
func TestScenario12MutualRecursionConvergesToPure(t *testing.T) {
	reg := registry.New()
	protocols := resolve.NewTable()
	a := ast.MFA{Module: "Scenario", Function: "a", Arity: 1}
	b := ast.MFA{Module: "Scenario", Function: "b", Arity: 1}
	scc := []ast.MFA{a, b}

	analyze := func(m ast.MFA) effects.Compact {
		w := newWalkerFor(reg, protocols)
		env := ctx.NewEnv()
		n := w.Fresh.TypeVar()
		env.Bind("n", types.Mono(n))

		callee := "b"
		if m == b {
			callee = "a"
		}
		body := &ast.Call{Target: ast.CallTarget{Function: callee}, Args: []ast.Expr{&ast.Var{Name: "n"}}}
		_, eff, sub := w.Synthesize(env, types.New(), body)
		return classify.Classify(sub, n, eff, []types.Type{n})
	}

	require.NoError(t, fixpoint.Run(reg, scc, analyze))

	ca, _ := reg.EffectOf(a)
	cb, _ := reg.EffectOf(b)
	assert.Equal(t, effects.CatPure, ca.Category)
	assert.Equal(t, effects.CatPure, cb.Category)
}

// newWalkerFor builds a walker over an already-seeded registry, for the
// fix-point driver's repeated re-analysis passes (unlike newWalker, it does
// not install its own scenario-specific seed entries).
func newWalkerFor(reg *registry.Registry, protocols *resolve.Table) *Walker {
	w := New(reg, protocols)
	w.CurrentModule = "Scenario"
	return w
}

func TestRegistryResolveToLeavesIntegratesWithWalkerCalls(t *testing.T) {
	w := newWalker()
	env := ctx.NewEnv()
	env.Bind("x", types.Mono(w.Fresh.TypeVar()))

	body := &ast.Call{Target: ast.CallTarget{Function: "write_file"}, Args: []ast.Expr{&ast.Var{Name: "x"}}}
	_, _, _ = w.Synthesize(env, types.New(), body)

	require.NotEmpty(t, w.Calls)
	leaves, ok := w.Registry.ResolveToLeaves(w.Calls[len(w.Calls)-1])
	require.True(t, ok)
	assert.NotEmpty(t, leaves)
}
