package registry

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
)

// mfa is a tiny constructor to keep the table below readable.
func mfa(mod, fn string, arity int) ast.MFA {
	return ast.MFA{Module: mod, Function: fn, Arity: arity}
}

func pure(payloads ...string) effects.Compact {
	return effects.Compact{Category: effects.CatPure, Payloads: payloads}
}

func side(payloads ...string) effects.Compact {
	return effects.Compact{Category: effects.CatSide, Payloads: payloads}
}

func exn(payloads ...string) effects.Compact {
	return effects.Compact{Category: effects.CatException, Payloads: payloads}
}

func nif(payloads ...string) effects.Compact {
	return effects.Compact{Category: effects.CatNif, Payloads: payloads}
}

// BuiltinTable is the static seed table for the registry: the ambient
// library surface of the target language, classified once and for all
// (spec.md §4.4, "built-in seed"). It is intentionally small and
// representative rather than exhaustive — user override documents (see
// config.LoadJSON and config.LoadYAML) extend it for real standard-library
// coverage.
func BuiltinTable() map[ast.MFA]Entry {
	t := map[ast.MFA]Entry{}

	// Kernel/Enum-style pure combinators.
	for _, e := range []struct {
		mod string
		fn  string
		ar  int
	}{
		{"Kernel", "+", 2}, {"Kernel", "-", 2}, {"Kernel", "*", 2}, {"Kernel", "/", 2},
		{"Kernel", "==", 2}, {"Kernel", "!=", 2}, {"Kernel", "<", 2}, {"Kernel", ">", 2},
		{"Kernel", "hd", 1}, {"Kernel", "tl", 1}, {"Kernel", "length", 1},
		{"Kernel", "is_atom", 1}, {"Kernel", "is_integer", 1}, {"Kernel", "is_list", 1},
		{"Enum", "map", 2}, {"Enum", "filter", 2}, {"Enum", "reduce", 3},
		{"Enum", "sort", 1}, {"Enum", "count", 1}, {"Enum", "zip", 2},
		{"String", "length", 1}, {"String", "upcase", 1}, {"String", "split", 2},
		{"Map", "get", 2}, {"Map", "put", 3}, {"Map", "keys", 1},
		{"Tuple", "to_list", 1},
	} {
		t[mfa(e.mod, e.fn, e.ar)] = Entry{Effect: pure()}
	}

	// Side-effecting I/O surface.
	for _, e := range []struct {
		mod   string
		fn    string
		ar    int
		label string
	}{
		{"IO", "puts", 1, effects.LabelIO},
		{"IO", "inspect", 1, effects.LabelIO},
		{"IO", "write", 1, effects.LabelIO},
		{"File", "read", 1, effects.LabelFS},
		{"File", "write", 2, effects.LabelFS},
		{"File", "exists?", 1, effects.LabelFS},
		{"HTTPoison", "get", 1, effects.LabelNet},
		{"HTTPoison", "post", 2, effects.LabelNet},
	} {
		m := mfa(e.mod, e.fn, e.ar)
		t[m] = Entry{Effect: side(m.String())}
	}

	// Exception-raising kernel primitives.
	t[mfa("Kernel", "raise", 1)] = Entry{Effect: exn("RuntimeError")}
	t[mfa("Kernel", "raise", 2)] = Entry{Effect: exn("RuntimeError")}
	t[mfa("Kernel", "throw", 1)] = Entry{Effect: exn("throw")}
	t[mfa("Kernel", "exit", 1)] = Entry{Effect: exn("exit")}
	t[mfa("Map", "fetch!", 2)] = Entry{Effect: exn("KeyError")}
	t[mfa("Enum", "fetch!", 2)] = Entry{Effect: exn("KeyError")}
	t[mfa("List", "first!", 1)] = Entry{Effect: exn("EmptyError")}

	// NIF/BIF-level effects the registry cannot see through.
	t[mfa("Kernel", "apply", 2)] = Entry{Effect: effects.Compact{Category: effects.CatUnknown}}
	t[mfa("Kernel", "apply", 3)] = Entry{Effect: effects.Compact{Category: effects.CatUnknown}}
	t[mfa(":erlang", "nif_error", 1)] = Entry{Effect: nif()}
	t[mfa(":crypto", "hash", 2)] = Entry{Effect: nif()}

	// Process/dependent-effect primitives (depend on runtime state/messages).
	t[mfa("Process", "get", 1)] = Entry{Effect: effects.Compact{Category: effects.CatDependent}}
	t[mfa("Process", "put", 2)] = Entry{Effect: effects.Compact{Category: effects.CatDependent}}
	t[mfa("GenServer", "call", 2)] = Entry{Effect: effects.Compact{Category: effects.CatDependent}}

	return t
}
