// Package resolve implements the protocol dispatch resolver (C6):
// type-directed resolution of a polymorphic dispatch site to a concrete
// implementation MFA, or unknown when the receiver's type cannot be
// narrowed. Grounded on the teacher's internal/types/instances.go
// (InstanceEnv.Lookup: canonical key, superclass derivation fallback,
// MissingInstanceError) — narrowing here plays the role instance lookup
// plays there, keyed on a narrowed receiver type instead of a declared one.
package resolve

import (
	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/registry"
	"github.com/sunholo/effectlang/internal/types"
)

// Protocol names the resolver understands (spec.md §4.5).
type Protocol struct {
	Name string
	// Impls maps a narrowed type tag (see narrowTag) to the concrete
	// implementation's MFA for this protocol's function/arity.
	Impls map[string]ast.MFA
}

// Table is the set of known protocols, keyed by entry-point MFA
// (e.g. (Enum, map, 2)) the walker recognizes as a dispatch site.
type Table struct {
	protocols map[ast.MFA]Protocol
}

// NewTable builds an empty protocol table.
func NewTable() *Table {
	return &Table{protocols: map[ast.MFA]Protocol{}}
}

// Register installs a protocol under its polymorphic entry point.
func (t *Table) Register(entry ast.MFA, p Protocol) {
	t.protocols[entry] = p
}

// IsRegistered reports whether entry is a known protocol dispatch point,
// independent of whether any particular call site's receiver narrows to an
// implementation. The walker uses this to distinguish "dispatch site whose
// receiver didn't narrow" (→ unknown, spec.md §4.5) from "not a dispatch
// site at all" (→ an ordinary external call).
func (t *Table) IsRegistered(entry ast.MFA) bool {
	_, ok := t.protocols[entry]
	return ok
}

// Unknown is the sentinel zero-value MFA returned when resolution fails;
// callers must check the accompanying bool rather than compare to this.
var Unknown ast.MFA

// Resolve narrows arg0's type and, if the entry point is a known protocol,
// returns the concrete implementation MFA (spec.md §4.5). ok is false when
// the entry point isn't a registered protocol, or when the type could not
// be narrowed; callers tell the two apart with IsRegistered (the walker
// treats an unnarrowed dispatch as unknown and an unregistered entry point
// as an ordinary external call).
func Resolve(t *Table, entry ast.MFA, argTypes []types.Type) (ast.MFA, bool) {
	p, ok := t.protocols[entry]
	if !ok || len(argTypes) == 0 {
		return Unknown, false
	}
	tag := narrowTag(argTypes[0])
	if tag == "" {
		return Unknown, false
	}
	impl, ok := p.Impls[tag]
	if !ok {
		return Unknown, false
	}
	return impl, true
}

// narrowTag implements spec.md §4.5's type-narrowing rules: list/map
// literals narrow to their structural tag; a struct type narrows to its
// module name (covers constructor-call results and %Struct{} patterns,
// both of which the walker represents as types.Struct by the time
// narrowing runs); anything else cannot be statically narrowed.
func narrowTag(t types.Type) string {
	switch tv := t.(type) {
	case *types.List:
		return "List"
	case *types.Map:
		return "Map"
	case *types.Tuple:
		return "Tuple"
	case *types.Struct:
		return tv.Module
	default:
		return ""
	}
}

// CombineEffect implements spec.md §4.5's effect combination at a dispatch
// site: look up the implementation's registry effect, combine with the
// supplied argument-lambda effect rows (already inferred by the walker),
// and apply severity ordering.
func CombineEffect(reg *registry.Registry, impl ast.MFA, argEffects []*effects.Row) *effects.Row {
	entry, ok := reg.Lookup(impl)
	var result *effects.Row
	if ok {
		result = effects.FromCompact(entry.Effect)
	} else {
		result = effects.FromCompact(effects.Compact{Category: effects.CatUnknown})
	}
	for _, e := range argEffects {
		result = effects.Combine(result, e)
	}
	return result
}
