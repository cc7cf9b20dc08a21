// Package registry implements the effect registry (C5): the canonical
// source of truth for the compact effect of every externally callable MFA.
// It is seeded from a static built-in table, merged with user overrides,
// and extended at runtime with summaries the fix-point driver (C10) commits
// for just-analyzed user functions.
//
// Grounded on the teacher's internal/types/dictionaries.go
// (DictionaryRegistry: key-based lookup, registerBuiltins) and
// internal/types/instances.go (InstanceEnv.Lookup with chained/derived
// resolution, the model for ResolveToLeaves).
package registry

import (
	"fmt"
	"sync"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
)

// Entry is a registry entry: an MFA's compact effect plus an optional
// resolution chain of child MFAs whose combined effect justifies it
// (spec.md §3 "Registry entry").
type Entry struct {
	Effect  effects.Compact
	Resolve []ast.MFA // child MFAs to walk for ResolveToLeaves; may be empty
}

// Registry answers effect_of(mfa) in O(1) and supports resolve_to_leaves.
// Reads take a short read lock to load a stable snapshot; writes (built-in seed,
// user override merge, and fix-point commits) are serialized on a single
// writer via a copy-on-write snapshot swap, matching the single-writer
// discipline spec.md §5 requires for the one genuinely shared resource in
// this engine.
type Registry struct {
	mu       sync.Mutex
	snapshot atomicMap
}

// atomicMap is a tiny copy-on-write holder so readers never see a
// partially-written map (spec.md §5: "readers see a consistent snapshot
// per lookup").
type atomicMap struct {
	mu sync.RWMutex
	m  map[ast.MFA]Entry
}

func (a *atomicMap) load() map[ast.MFA]Entry {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.m
}

func (a *atomicMap) store(m map[ast.MFA]Entry) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.m = m
}

// New creates an empty registry (no built-ins seeded).
func New() *Registry {
	r := &Registry{}
	r.snapshot.store(map[ast.MFA]Entry{})
	return r
}

// NewWithBuiltins creates a registry pre-seeded with the built-in table.
func NewWithBuiltins() *Registry {
	r := New()
	r.mergeLocked(BuiltinTable())
	return r
}

// EffectOf answers effect_of(mfa); a miss is reported via the second return
// value so callers can surface registry_miss → unknown per spec.md §7,
// without the registry itself deciding that policy.
func (r *Registry) EffectOf(mfa ast.MFA) (effects.Compact, bool) {
	m := r.snapshot.load()
	e, ok := m[mfa]
	if !ok {
		return effects.Compact{Category: effects.CatUnknown}, false
	}
	return e.Effect, true
}

// Lookup returns the full entry (effect + resolution chain).
func (r *Registry) Lookup(mfa ast.MFA) (Entry, bool) {
	m := r.snapshot.load()
	e, ok := m[mfa]
	return e, ok
}

// Put installs or merges a single entry. For two entries with the same MFA
// the incoming entry's category always wins, whatever its severity
// (spec.md §4.4, "user overrides always win on the category label"), and
// payload sets are unioned.
func (r *Registry) Put(mfa ast.MFA, e Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur := r.snapshot.load()
	next := make(map[ast.MFA]Entry, len(cur)+1)
	for k, v := range cur {
		next[k] = v
	}
	if existing, ok := next[mfa]; ok {
		next[mfa] = mergeEntries(existing, e)
	} else {
		next[mfa] = e
	}
	r.snapshot.store(next)
}

// Merge bulk-installs a table of entries using the same merge policy as Put.
func (r *Registry) Merge(table map[ast.MFA]Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mergeLocked(table)
}

func (r *Registry) mergeLocked(table map[ast.MFA]Entry) {
	cur := r.snapshot.load()
	next := make(map[ast.MFA]Entry, len(cur)+len(table))
	for k, v := range cur {
		next[k] = v
	}
	for mfa, e := range table {
		if existing, ok := next[mfa]; ok {
			next[mfa] = mergeEntries(existing, e)
		} else {
			next[mfa] = e
		}
	}
	r.snapshot.store(next)
}

// mergeEntries implements spec.md §4.4's merge rule: category comes from
// the incoming (override) entry; payloads union; resolution chains union
// (deduplicated) too, since both sides may document useful leaves.
func mergeEntries(base, override Entry) Entry {
	payloadSet := map[string]bool{}
	for _, p := range base.Effect.Payloads {
		payloadSet[p] = true
	}
	for _, p := range override.Effect.Payloads {
		payloadSet[p] = true
	}
	var payloads []string
	for p := range payloadSet {
		payloads = append(payloads, p)
	}
	sortStrings(payloads)

	resolveSet := map[ast.MFA]bool{}
	var resolve []ast.MFA
	for _, m := range base.Resolve {
		if !resolveSet[m] {
			resolveSet[m] = true
			resolve = append(resolve, m)
		}
	}
	for _, m := range override.Resolve {
		if !resolveSet[m] {
			resolveSet[m] = true
			resolve = append(resolve, m)
		}
	}

	return Entry{
		Effect:  effects.Compact{Category: override.Effect.Category, Payloads: payloads},
		Resolve: resolve,
	}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// ResolveToLeaves follows mfa's declared resolution chain to its bottommost
// leaves. Chains must terminate — the registry stores them explicitly, no
// transitive closure is computed at lookup time beyond the declared chain
// (spec.md §4.4); a cycle is reported via ok=false rather than looping
// forever.
func (r *Registry) ResolveToLeaves(mfa ast.MFA) ([]ast.MFA, bool) {
	visited := map[ast.MFA]bool{}
	var leaves []ast.MFA
	if !r.walkLeaves(mfa, visited, &leaves) {
		return nil, false
	}
	if len(leaves) == 0 {
		leaves = []ast.MFA{mfa}
	}
	return leaves, true
}

func (r *Registry) walkLeaves(mfa ast.MFA, visited map[ast.MFA]bool, out *[]ast.MFA) bool {
	if visited[mfa] {
		return false // cycle: chains must terminate
	}
	visited[mfa] = true
	defer delete(visited, mfa)

	entry, ok := r.Lookup(mfa)
	if !ok || len(entry.Resolve) == 0 {
		*out = append(*out, mfa)
		return true
	}
	for _, child := range entry.Resolve {
		if !r.walkLeaves(child, visited, out) {
			return false
		}
	}
	return true
}

// String is a debug helper used by the REPL/CLI shell.
func (e Entry) String() string {
	return fmt.Sprintf("%s%v", e.Effect.Category, e.Effect.Payloads)
}
