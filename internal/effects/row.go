// Package effects implements the effect half of the term model (C1) and the
// effect algebra (C4): rows, severity ordering, compact categories, and the
// row operations (extend/remove/combine) unification depends on.
//
// Effect rows are represented as an explicit cons-spine rather than a set or
// map, because duplicate labels are semantically significant: a nested
// try/rescue must be able to remove exactly one occurrence of an exception
// label while leaving a second, unrelated occurrence untouched (spec.md
// §4.2, the duplicate-label rule). A map-based row — the representation the
// teacher uses for its (set-only) record/effect rows — would silently
// collapse duplicates and break that rule.
package effects

import (
	"fmt"
	"sort"
	"strings"
)

// Label names used throughout the registry and walker. Additional
// specialized kinds may be introduced by C9 (classifier) for internal
// bookkeeping; these are the ones the registry and walker speak directly.
const (
	LabelIO      = "io"
	LabelFS      = "fs"
	LabelNet     = "net"
	LabelExn     = "exn"
	LabelDep     = "dep"
	LabelNif     = "nif"
	LabelUnknown = "unknown"
)

// Row is an effect term: empty, a single label, a cons of a label onto
// another row, or a row variable.
type Row struct {
	// Empty marks the pure sentinel. When Empty is true all other fields
	// are zero.
	Empty bool

	// Var is set when this row is exactly an effect_var(id); Label/Tail
	// are unused in that case.
	Var string

	// Label, set for the `row(head, tail)` / `label(L)` forms. Payload
	// carries an MFA string (side/dependent/nif) or an exception type name
	// (exn); it has no meaning for io/fs/net beyond identifying the
	// concrete call site that contributed the label.
	Label   string
	Payload string

	// Tail is the rest of the spine. nil together with Label == "" and
	// Var == "" and Empty == false is not a valid state; use Empty() /
	// NewLabel() / NewVar() to construct rows.
	Tail *Row
}

// Empty returns the pure sentinel.
func Empty() *Row { return &Row{Empty: true} }

// IsEmpty reports whether r is the pure sentinel (nil is treated as pure,
// matching the teacher's nil-is-pure convention in effects.go).
func IsEmpty(r *Row) bool {
	return r == nil || r.Empty
}

// NewVar returns effect_var(id).
func NewVar(id string) *Row { return &Row{Var: id} }

// IsVar reports whether r is exactly an effect_var.
func IsVar(r *Row) bool { return r != nil && r.Var != "" }

// Single returns a one-label row: row(label(L, payload), empty).
func Single(label, payload string) *Row {
	return Cons(label, payload, Empty())
}

// Cons prepends a label onto an existing row (possibly with duplicates).
func Cons(label, payload string, tail *Row) *Row {
	if tail == nil {
		tail = Empty()
	}
	return &Row{Label: label, Payload: payload, Tail: tail}
}

// Extend is Cons under the §4.3 name.
func Extend(label, payload string, r *Row) *Row { return Cons(label, payload, r) }

func (r *Row) String() string {
	if r == nil || r.Empty {
		return "{}"
	}
	if r.Var != "" {
		return r.Var
	}
	var labels []string
	cur := r
	for cur != nil && !cur.Empty && cur.Var == "" {
		if cur.Payload != "" {
			labels = append(labels, fmt.Sprintf("%s(%s)", cur.Label, cur.Payload))
		} else {
			labels = append(labels, cur.Label)
		}
		cur = cur.Tail
	}
	tailStr := ""
	if cur != nil && cur.Var != "" {
		tailStr = " | " + cur.Var
	}
	return "{" + strings.Join(labels, ", ") + tailStr + "}"
}

// Equals is structural spine equality (order-insensitive up to the
// duplicate-significant multiset of labels, tail-sensitive). Two rows are
// equal when they have the same tail variable (or both closed) and the
// same multiset of (label,payload) pairs along the spine.
func (r *Row) Equals(o *Row) bool {
	if IsEmpty(r) && IsEmpty(o) {
		return true
	}
	if IsVar(r) && IsVar(o) {
		return r.Var == o.Var
	}
	if IsVar(r) != IsVar(o) {
		return false
	}
	la, ta := spine(r)
	lb, tb := spine(o)
	if ta != tb {
		return false
	}
	if len(la) != len(lb) {
		return false
	}
	sa := multisetKeys(la)
	sb := multisetKeys(lb)
	if len(sa) != len(sb) {
		return false
	}
	for i := range sa {
		if sa[i] != sb[i] {
			return false
		}
	}
	return true
}

type labelOccurrence struct{ Label, Payload string }

// spine walks r, returning its labels in spine order plus the trailing
// variable name ("" if the row is closed).
func spine(r *Row) ([]labelOccurrence, string) {
	var out []labelOccurrence
	cur := r
	for cur != nil && !cur.Empty && cur.Var == "" {
		out = append(out, labelOccurrence{cur.Label, cur.Payload})
		cur = cur.Tail
	}
	if cur != nil && cur.Var != "" {
		return out, cur.Var
	}
	return out, ""
}

func multisetKeys(occs []labelOccurrence) []string {
	keys := make([]string, len(occs))
	for i, o := range occs {
		keys[i] = o.Label + "\x00" + o.Payload
	}
	sort.Strings(keys)
	return keys
}

// HasEffect reports whether label L occurs anywhere along the spine.
func HasEffect(label string, r *Row) bool {
	cur := r
	for cur != nil && !cur.Empty && cur.Var == "" {
		if cur.Label == label {
			return true
		}
		cur = cur.Tail
	}
	return false
}

// RemoveOne strips exactly one occurrence of label L from the spine,
// returning the resulting row and whether a removal happened. This is the
// operation try/rescue applies once per matching rescue clause (spec.md
// §4.2 duplicate-label rule, §4.7 Try/rescue).
func RemoveOne(label string, r *Row) (*Row, bool) {
	if r == nil || r.Empty || r.Var != "" {
		return r, false
	}
	if r.Label == label {
		return r.Tail, true
	}
	rest, ok := RemoveOne(label, r.Tail)
	if !ok {
		return r, false
	}
	return &Row{Label: r.Label, Payload: r.Payload, Tail: rest}, true
}

// Combine is the row-union used by C4's `combine(r1, r2)`: concatenates the
// spines of both rows (preserving duplicates from each side) and keeps at
// most one trailing variable: a's variable when b is closed, b's variable
// when b is open. If both rows are open with different variables, a's
// variable is dropped; the caller is expected to have already unified them.
func Combine(a, b *Row) *Row {
	if IsEmpty(a) {
		return b
	}
	if IsEmpty(b) {
		return a
	}
	occs, tailVar := spine(a)
	bOccs, bTail := spine(b)
	if tailVar != "" && bTail == "" {
		// a is open and b is closed: a's variable stays as the tail, after
		// both rows' labels.
		return prepend(append(occs, bOccs...), nil, NewVar(tailVar))
	}
	return prepend(occs, nil, b)
}

func prepend(occs []labelOccurrence, tail *Row, rest *Row) *Row {
	result := rest
	if tail != nil && tail.Var != "" {
		// An open tail variable, when combined, is approximated by simply
		// keeping rest as-is after the occurrences: the variable itself
		// carries no concrete labels to add.
	}
	for i := len(occs) - 1; i >= 0; i-- {
		result = Cons(occs[i].Label, occs[i].Payload, result)
	}
	return result
}

// Labels returns the deduplicated, sorted set of concrete label names
// occurring along the spine (ignoring payload and ignoring any trailing
// variable).
func Labels(r *Row) []string {
	occs, _ := spine(r)
	seen := map[string]bool{}
	for _, o := range occs {
		seen[o.Label] = true
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}

// Payloads returns the deduplicated, sorted payload strings recorded
// against a given label (MFA strings for side/dependent/nif, exception
// type names for exn).
func Payloads(label string, r *Row) []string {
	occs, _ := spine(r)
	seen := map[string]bool{}
	for _, o := range occs {
		if o.Label == label && o.Payload != "" {
			seen[o.Payload] = true
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// FreeVars collects row-variable ids reachable from r.
func (r *Row) FreeVars(into map[string]bool) {
	if r == nil {
		return
	}
	if r.Var != "" {
		into[r.Var] = true
		return
	}
	if r.Empty {
		return
	}
	r.Tail.FreeVars(into)
}

// Subst maps effect-variable ids to rows.
type Subst map[string]*Row

// Substitute applies s to r, following chains to a fixed point so the
// result is idempotent the way apply_subst is specified to be (spec.md
// §4.1, §8 idempotence property).
func (r *Row) Substitute(s Subst) *Row {
	if r == nil {
		return nil
	}
	if r.Var != "" {
		if repl, ok := s[r.Var]; ok {
			return repl.Substitute(s)
		}
		return r
	}
	if r.Empty {
		return r
	}
	return &Row{Label: r.Label, Payload: r.Payload, Tail: r.Tail.Substitute(s)}
}
