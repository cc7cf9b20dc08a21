// Package types implements the term model of the effect-inference engine:
// primitive and structured types, function/closure constructors, type
// variables, and polymorphic schemes (C1), plus the substitution machinery
// that rewrites them (C2).
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sunholo/effectlang/internal/effects"
)

// Type is any term in the type algebra. All constructors are immutable;
// rewriting happens by building a new value through Substitute.
type Type interface {
	String() string
	Equals(Type) bool
	// Substitute rewrites every TVar occurrence found in sub's domain.
	Substitute(sub Subst) Type
	// FreeVars collects the unbound type-variable ids reachable from this
	// term, plus the effect-variable ids of any Func/Closure effect rows.
	FreeVars(into map[string]bool)
}

// Prim is a primitive tag: int, float, bool, atom, string/binary, pid,
// reference, any.
type Prim struct {
	Name string
}

var (
	TInt       = &Prim{Name: "int"}
	TFloat     = &Prim{Name: "float"}
	TBool      = &Prim{Name: "bool"}
	TAtom      = &Prim{Name: "atom"}
	TString    = &Prim{Name: "string"}
	TPid       = &Prim{Name: "pid"}
	TReference = &Prim{Name: "reference"}
	TAny       = &Prim{Name: "any"}
	TUnit      = &Prim{Name: "unit"}
)

func (t *Prim) String() string { return t.Name }
func (t *Prim) Equals(o Type) bool {
	op, ok := o.(*Prim)
	return ok && op.Name == t.Name
}
func (t *Prim) Substitute(Subst) Type           { return t }
func (t *Prim) FreeVars(map[string]bool)        {}

// List is list<T>.
type List struct{ Elem Type }

func (t *List) String() string { return "list<" + t.Elem.String() + ">" }
func (t *List) Equals(o Type) bool {
	ol, ok := o.(*List)
	return ok && t.Elem.Equals(ol.Elem)
}
func (t *List) Substitute(s Subst) Type    { return &List{Elem: t.Elem.Substitute(s)} }
func (t *List) FreeVars(into map[string]bool) { t.Elem.FreeVars(into) }

// Tuple is tuple<T1,...,Tn>.
type Tuple struct{ Elems []Type }

func (t *Tuple) String() string {
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return "tuple<" + strings.Join(parts, ",") + ">"
}
func (t *Tuple) Equals(o Type) bool {
	ot, ok := o.(*Tuple)
	if !ok || len(ot.Elems) != len(t.Elems) {
		return false
	}
	for i := range t.Elems {
		if !t.Elems[i].Equals(ot.Elems[i]) {
			return false
		}
	}
	return true
}
func (t *Tuple) Substitute(s Subst) Type {
	out := make([]Type, len(t.Elems))
	for i, e := range t.Elems {
		out[i] = e.Substitute(s)
	}
	return &Tuple{Elems: out}
}
func (t *Tuple) FreeVars(into map[string]bool) {
	for _, e := range t.Elems {
		e.FreeVars(into)
	}
}

// Map is map<K,V>.
type Map struct{ Key, Val Type }

func (t *Map) String() string { return "map<" + t.Key.String() + "," + t.Val.String() + ">" }
func (t *Map) Equals(o Type) bool {
	om, ok := o.(*Map)
	return ok && t.Key.Equals(om.Key) && t.Val.Equals(om.Val)
}
func (t *Map) Substitute(s Subst) Type {
	return &Map{Key: t.Key.Substitute(s), Val: t.Val.Substitute(s)}
}
func (t *Map) FreeVars(into map[string]bool) {
	t.Key.FreeVars(into)
	t.Val.FreeVars(into)
}

// Union is union<T1,...>. Unions are compared structurally; this engine
// does not support subtyping between unions (spec.md §4.2).
type Union struct{ Alts []Type }

func (t *Union) String() string {
	parts := make([]string, len(t.Alts))
	for i, a := range t.Alts {
		parts[i] = a.String()
	}
	sort.Strings(parts)
	return "union<" + strings.Join(parts, "|") + ">"
}
func (t *Union) Equals(o Type) bool {
	ou, ok := o.(*Union)
	if !ok || len(ou.Alts) != len(t.Alts) {
		return false
	}
	return t.String() == ou.String()
}
func (t *Union) Substitute(s Subst) Type {
	out := make([]Type, len(t.Alts))
	for i, a := range t.Alts {
		out[i] = a.Substitute(s)
	}
	return &Union{Alts: out}
}
func (t *Union) FreeVars(into map[string]bool) {
	for _, a := range t.Alts {
		a.FreeVars(into)
	}
}

// Struct is struct<Module, fields> — the concrete, protocol-carrying type
// produced by %Struct{...} patterns and constructors recognized by C6.
type Struct struct {
	Module string
	Fields map[string]Type
}

func (t *Struct) String() string {
	keys := make([]string, 0, len(t.Fields))
	for k := range t.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s: %s", k, t.Fields[k].String())
	}
	return fmt.Sprintf("struct<%s,{%s}>", t.Module, strings.Join(parts, ","))
}
func (t *Struct) Equals(o Type) bool {
	os, ok := o.(*Struct)
	if !ok || os.Module != t.Module || len(os.Fields) != len(t.Fields) {
		return false
	}
	for k, v := range t.Fields {
		ov, ok := os.Fields[k]
		if !ok || !v.Equals(ov) {
			return false
		}
	}
	return true
}
func (t *Struct) Substitute(s Subst) Type {
	out := make(map[string]Type, len(t.Fields))
	for k, v := range t.Fields {
		out[k] = v.Substitute(s)
	}
	return &Struct{Module: t.Module, Fields: out}
}
func (t *Struct) FreeVars(into map[string]bool) {
	for _, v := range t.Fields {
		v.FreeVars(into)
	}
}

// Func is function(T_arg, E, T_ret) — the single-argument form; a multi-arg
// function takes its arguments as one Tuple argument.
type Func struct {
	Arg    Type
	Eff    *effects.Row
	Ret    Type
}

func (t *Func) String() string {
	return fmt.Sprintf("(%s -%s-> %s)", t.Arg.String(), t.Eff.String(), t.Ret.String())
}
func (t *Func) Equals(o Type) bool {
	of, ok := o.(*Func)
	return ok && t.Arg.Equals(of.Arg) && t.Eff.Equals(of.Eff) && t.Ret.Equals(of.Ret)
}
func (t *Func) Substitute(s Subst) Type {
	return &Func{Arg: t.Arg.Substitute(s), Eff: t.Eff.Substitute(s.EffSubst()), Ret: t.Ret.Substitute(s)}
}
func (t *Func) FreeVars(into map[string]bool) {
	t.Arg.FreeVars(into)
	t.Eff.FreeVars(into)
	t.Ret.FreeVars(into)
}

// Closure is closure(T_arg, T_ret, E_captured, E_body) — a function value
// whose captured effects already fired at creation time, and whose body
// effects fire only on application (spec.md §4.7 Function literal /
// Application).
type Closure struct {
	Arg      Type
	Ret      Type
	Captured *effects.Row
	Body     *effects.Row
}

func (t *Closure) String() string {
	return fmt.Sprintf("closure<%s, %s, captured=%s, body=%s>", t.Arg.String(), t.Ret.String(), t.Captured.String(), t.Body.String())
}
func (t *Closure) Equals(o Type) bool {
	oc, ok := o.(*Closure)
	return ok && t.Arg.Equals(oc.Arg) && t.Ret.Equals(oc.Ret) && t.Captured.Equals(oc.Captured) && t.Body.Equals(oc.Body)
}
func (t *Closure) Substitute(s Subst) Type {
	return &Closure{
		Arg:      t.Arg.Substitute(s),
		Ret:      t.Ret.Substitute(s),
		Captured: t.Captured.Substitute(s.EffSubst()),
		Body:     t.Body.Substitute(s.EffSubst()),
	}
}
func (t *Closure) FreeVars(into map[string]bool) {
	t.Arg.FreeVars(into)
	t.Ret.FreeVars(into)
	t.Captured.FreeVars(into)
	t.Body.FreeVars(into)
}

// Var is type_var(id) — a unification variable.
type Var struct{ ID string }

func (t *Var) String() string { return t.ID }
func (t *Var) Equals(o Type) bool {
	ov, ok := o.(*Var)
	return ok && ov.ID == t.ID
}
func (t *Var) Substitute(s Subst) Type {
	if repl, ok := s.Types[t.ID]; ok {
		// Follow chains to a fixed point (idempotent application).
		return repl.Substitute(s)
	}
	return t
}
func (t *Var) FreeVars(into map[string]bool) { into[t.ID] = true }

// Scheme is forall([tv..., ev...], T) — a polymorphic type scheme. Bound
// type and effect variables are alpha-renamed on instantiation.
type Scheme struct {
	TypeVars   []string
	EffectVars []string
	Body       Type
}

func (s *Scheme) String() string {
	if len(s.TypeVars) == 0 && len(s.EffectVars) == 0 {
		return s.Body.String()
	}
	vars := append(append([]string{}, s.TypeVars...), s.EffectVars...)
	return "forall " + strings.Join(vars, " ") + ". " + s.Body.String()
}

// FreeVars of a scheme excludes its own bound variables.
func (s *Scheme) FreeVars() map[string]bool {
	into := map[string]bool{}
	s.Body.FreeVars(into)
	for _, v := range s.TypeVars {
		delete(into, v)
	}
	for _, v := range s.EffectVars {
		delete(into, v)
	}
	return into
}
