// Command effectinfer is a thin demo/inspection CLI over the effect
// engine. It is deliberately small: spec.md §1 places a full
// project-level CLI/orchestrator out of scope, so this binary only
// exercises the pipeline (registry → resolver → walker → classifier)
// against a handful of built-in scenarios and lets a user load a
// registry override document to see how merge behaves.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/classify"
	"github.com/sunholo/effectlang/internal/config"
	"github.com/sunholo/effectlang/internal/ctx"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/fixpoint"
	"github.com/sunholo/effectlang/internal/infer"
	"github.com/sunholo/effectlang/internal/registry"
	"github.com/sunholo/effectlang/internal/resolve"
	"github.com/sunholo/effectlang/internal/summary"
	"github.com/sunholo/effectlang/internal/types"
)

var (
	// Version is set by ldflags during build.
	Version = "dev"

	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()
)

func main() {
	var (
		versionFlag = flag.Bool("version", false, "Print version information")
		helpFlag    = flag.Bool("help", false, "Show help")
		jsonFlag    = flag.Bool("json", false, "Emit JSON instead of a table")
	)

	flag.Parse()

	if *versionFlag {
		printVersion()
		return
	}

	if *helpFlag || flag.NArg() == 0 {
		printHelp()
		return
	}

	command := flag.Arg(0)

	switch command {
	case "demo":
		runDemo(*jsonFlag)

	case "config":
		if flag.NArg() < 2 {
			fmt.Fprintf(os.Stderr, "%s: missing file argument\n", red("Error"))
			fmt.Println("Usage: effectinfer config <overrides.json|.yaml>")
			os.Exit(1)
		}
		runConfig(flag.Arg(1), *jsonFlag)

	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command '%s'\n", red("Error"), command)
		printHelp()
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("effectinfer %s\n", bold(Version))
	fmt.Println("Static effect-inference demo CLI")
}

func printHelp() {
	fmt.Println(bold("effectinfer - static effect inference demo"))
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  effectinfer <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Printf("  %s                Run built-in scenarios through the walker\n", cyan("demo"))
	fmt.Printf("  %s <file>       Load a registry override document and print it\n", cyan("config"))
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --version   Print version information")
	fmt.Println("  --help      Show this help message")
	fmt.Println("  --json      Emit JSON instead of a table")
}

// runDemo exercises the full pipeline against a handful of small,
// hand-built functions covering the scenario families in spec.md §8:
// pure arithmetic, external side effects, raised exceptions, protocol
// dispatch, and mutual recursion resolved via the fix-point driver.
func runDemo(asJSON bool) {
	reg := registry.NewWithBuiltins()
	protocols := resolve.NewTable()
	protocols.Register(ast.MFA{Module: "Enum", Function: "map", Arity: 2}, resolve.Protocol{
		Impls: map[string]ast.MFA{"List": {Module: "List", Function: "map", Arity: 2}},
	})
	reg.Put(ast.MFA{Module: "List", Function: "map", Arity: 2}, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})

	var summaries []summary.Summary

	summaries = append(summaries, analyzeArithmetic(reg, protocols))
	summaries = append(summaries, analyzeSideEffect(reg, protocols))
	summaries = append(summaries, analyzeRaise(reg, protocols))
	summaries = append(summaries, analyzeProtocolDispatch(reg, protocols))
	summaries = append(summaries, analyzeMutualRecursion(reg, protocols)...)

	if asJSON {
		b, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%s Analyzed %d function(s)\n", green("✓"), len(summaries))
	fmt.Print(summary.Table(summaries))
	for _, s := range summaries {
		if s.CompactEffect.Category == effects.CatUnknown {
			fmt.Printf("%s %s resolved to unknown\n", yellow("⚠"), s.MFA)
		}
	}
}

func newWalker(reg *registry.Registry, protocols *resolve.Table, module string) *infer.Walker {
	w := infer.New(reg, protocols)
	w.CurrentModule = module
	return w
}

func finalize(w *infer.Walker, mfa ast.MFA, t types.Type, eff *effects.Row, sub types.Subst, params []types.Type, vis ast.Visibility) summary.Summary {
	compact := classify.Classify(sub, t, eff, params)
	reg := w.Registry
	classify.Commit(reg, mfa, compact)
	return summary.Summary{
		MFA:           mfa,
		CompactEffect: compact,
		TypeScheme:    types.Mono(types.ApplySubst(sub, t)),
		Calls:         w.Calls,
		Visibility:    vis,
	}
}

// Demo.add(x, y) = x + y -> pure
func analyzeArithmetic(reg *registry.Registry, protocols *resolve.Table) summary.Summary {
	w := newWalker(reg, protocols, "Demo")
	env := ctx.NewEnv()
	x, y := w.Fresh.TypeVar(), w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))
	env.Bind("y", types.Mono(y))

	body := &ast.Call{
		Target: ast.CallTarget{IsRemote: true, Module: "Kernel", Function: "+"},
		Args:   []ast.Expr{&ast.Var{Name: "x"}, &ast.Var{Name: "y"}},
	}
	t, eff, sub := w.Synthesize(env, types.New(), body)
	return finalize(w, ast.MFA{Module: "Demo", Function: "add", Arity: 2}, t, eff, sub, []types.Type{x, y}, ast.Public)
}

// Demo.log(msg) = IO.puts(msg) -> side([IO.puts/1])
func analyzeSideEffect(reg *registry.Registry, protocols *resolve.Table) summary.Summary {
	w := newWalker(reg, protocols, "Demo")
	env := ctx.NewEnv()
	x := w.Fresh.TypeVar()
	env.Bind("msg", types.Mono(x))

	body := &ast.Call{
		Target: ast.CallTarget{IsRemote: true, Module: "IO", Function: "puts"},
		Args:   []ast.Expr{&ast.Var{Name: "msg"}},
	}
	t, eff, sub := w.Synthesize(env, types.New(), body)
	return finalize(w, ast.MFA{Module: "Demo", Function: "log", Arity: 1}, t, eff, sub, []types.Type{x}, ast.Public)
}

// Demo.boom(x) = raise ArgumentError, x -> exception([ArgumentError])
func analyzeRaise(reg *registry.Registry, protocols *resolve.Table) summary.Summary {
	w := newWalker(reg, protocols, "Demo")
	env := ctx.NewEnv()
	x := w.Fresh.TypeVar()
	env.Bind("x", types.Mono(x))

	body := &ast.Raise{Module: "ArgumentError", Msg: &ast.Var{Name: "x"}}
	t, eff, sub := w.Synthesize(env, types.New(), body)
	return finalize(w, ast.MFA{Module: "Demo", Function: "boom", Arity: 1}, t, eff, sub, []types.Type{x}, ast.Public)
}

// Demo.total(xs) = Enum.map([1], &Kernel.hd/1) -> dispatches to List.map/2, pure
func analyzeProtocolDispatch(reg *registry.Registry, protocols *resolve.Table) summary.Summary {
	w := newWalker(reg, protocols, "Demo")
	env := ctx.NewEnv()

	body := &ast.Call{
		Target: ast.CallTarget{IsRemote: true, Module: "Enum", Function: "map"},
		Args: []ast.Expr{
			&ast.List{Elems: []ast.Expr{&ast.Literal{Kind: ast.IntLit, Value: 1}}},
			&ast.CaptureRef{Module: "Kernel", Function: "hd", Arity: 1},
		},
	}
	t, eff, sub := w.Synthesize(env, types.New(), body)
	return finalize(w, ast.MFA{Module: "Demo", Function: "total", Arity: 1}, t, eff, sub, nil, ast.Public)
}

// Demo.is_even(n)/is_odd(n): a mutually-recursive pair; each calls IO.puts
// once, so the fix-point must converge the whole SCC to side.
func analyzeMutualRecursion(reg *registry.Registry, protocols *resolve.Table) []summary.Summary {
	isEven := ast.MFA{Module: "Demo", Function: "is_even", Arity: 1}
	isOdd := ast.MFA{Module: "Demo", Function: "is_odd", Arity: 1}
	scc := []ast.MFA{isEven, isOdd}

	reg.Put(isEven, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})
	reg.Put(isOdd, registry.Entry{Effect: effects.Compact{Category: effects.CatPure}})

	analyze := func(m ast.MFA) effects.Compact {
		w := newWalker(reg, protocols, "Demo")
		env := ctx.NewEnv()
		n := w.Fresh.TypeVar()
		env.Bind("n", types.Mono(n))

		log := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: "IO", Function: "puts"}, Args: []ast.Expr{&ast.Var{Name: "n"}}}
		callee := isOdd
		if m == isOdd {
			callee = isEven
		}
		recurse := &ast.Call{Target: ast.CallTarget{IsRemote: true, Module: callee.Module, Function: callee.Function}, Args: []ast.Expr{&ast.Var{Name: "n"}}}
		body := &ast.Block{Exprs: []ast.Expr{log, recurse}}

		_, eff, sub := w.Synthesize(env, types.New(), body)
		return classify.Classify(sub, types.TBool, eff, []types.Type{n})
	}

	if err := fixpoint.Run(reg, scc, analyze); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
	}

	var out []summary.Summary
	for _, m := range scc {
		c, _ := reg.EffectOf(m)
		out = append(out, summary.Summary{MFA: m, CompactEffect: c, TypeScheme: types.Mono(types.TBool), Visibility: ast.Public})
	}
	return out
}

// runConfig loads a registry override document (JSON or YAML, detected by
// extension) and prints the merged entries it would install.
func runConfig(path string, asJSON bool) {
	b, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot read file '%s': %v\n", red("Error"), path, err)
		os.Exit(1)
	}

	var entries map[ast.MFA]registry.Entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		entries, err = config.LoadYAML(b)
	default:
		entries, err = config.LoadJSON(b)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
		os.Exit(1)
	}

	reg := registry.NewWithBuiltins()
	reg.Merge(entries)

	var summaries []summary.Summary
	for m := range entries {
		c, _ := reg.EffectOf(m)
		summaries = append(summaries, summary.Summary{MFA: m, CompactEffect: c, TypeScheme: types.Mono(types.TAny), Visibility: ast.Public})
	}

	if asJSON {
		b, err := json.MarshalIndent(summaries, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", red("Error"), err)
			os.Exit(1)
		}
		fmt.Println(string(b))
		return
	}

	fmt.Printf("%s Merged %d override(s) from %s\n", cyan("→"), len(entries), path)
	fmt.Print(summary.Table(summaries))
	fmt.Printf("%s done\n", green("✓"))
}
