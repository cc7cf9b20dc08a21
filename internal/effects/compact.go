package effects

import "fmt"

// Category is the seven-valued severity summary emitted for external
// consumption (spec.md §3, "compact effect categories").
type Category int

const (
	CatPure Category = iota
	CatLambda
	CatException
	CatDependent
	CatSide
	CatNif
	CatUnknown
)

// severityOrder is the total order used to collapse a row to a single
// category and to bound C10's fix-point iteration (spec.md §3, §4.10):
// pure < lambda < exception < dependent < side < nif < unknown.
var severityOrder = map[Category]int{
	CatPure:      0,
	CatLambda:    1,
	CatException: 2,
	CatDependent: 3,
	CatSide:      4,
	CatNif:       5,
	CatUnknown:   6,
}

func (c Category) String() string {
	switch c {
	case CatPure:
		return "pure"
	case CatLambda:
		return "lambda"
	case CatException:
		return "exception"
	case CatDependent:
		return "dependent"
	case CatSide:
		return "side"
	case CatNif:
		return "nif"
	case CatUnknown:
		return "unknown"
	default:
		return fmt.Sprintf("category(%d)", int(c))
	}
}

// Severity returns the position of c in the severity lattice.
func Severity(c Category) int { return severityOrder[c] }

// MaxSeverity returns whichever of a, b is more severe.
func MaxSeverity(a, b Category) Category {
	if Severity(b) > Severity(a) {
		return b
	}
	return a
}

// categoryLabel maps the registry/row label vocabulary to the compact
// category it belongs to for a non-empty, non-var row.
var categoryLabel = map[string]Category{
	LabelIO:      CatSide,
	LabelFS:      CatSide,
	LabelNet:     CatSide,
	LabelExn:     CatException,
	LabelDep:     CatDependent,
	LabelNif:     CatNif,
	LabelUnknown: CatUnknown,
}

// CategoryOfLabel classifies a single concrete label. side/io/fs/net all
// collapse to CatSide at the compact level; the registry keeps them
// distinguishable via Payload (the MFA) for reporting (spec.md §6 "calls").
func CategoryOfLabel(label string) Category {
	if c, ok := categoryLabel[label]; ok {
		return c
	}
	// Unrecognized concrete labels are conservatively treated as side
	// effects: silently downgrading an unmodeled label to pure would
	// violate the sound-first requirement (spec.md §1).
	return CatSide
}

// Compact is the compact effect summary: a category plus the deduplicated,
// sorted payload(s) that justify it.
type Compact struct {
	Category Category
	Payloads []string // MFA strings for side/dependent/nif, type names for exception
}

func (c Compact) String() string {
	if len(c.Payloads) == 0 {
		return c.Category.String()
	}
	return fmt.Sprintf("%s(%v)", c.Category, c.Payloads)
}

// ToCompact collapses a row into the single most-severe category,
// concatenating per-label payloads and deduplicating/sorting them
// (spec.md §4.3). A row consisting only of effect_vars collapses to
// lambda; C9 additionally requires a function-typed parameter before
// applying that rule, which is the classifier's job, not this one's — this
// function implements the row-only part of the rule.
func ToCompact(r *Row) Compact {
	if IsEmpty(r) {
		return Compact{Category: CatPure}
	}
	if IsVar(r) {
		return Compact{Category: CatLambda}
	}
	occs, tailVar := spine(r)
	if len(occs) == 0 && tailVar != "" {
		return Compact{Category: CatLambda}
	}
	best := CatLambda
	if len(occs) > 0 {
		best = CategoryOfLabel(occs[0].Label)
	}
	payloadSet := map[string]bool{}
	for _, o := range occs {
		cat := CategoryOfLabel(o.Label)
		best = MaxSeverity(best, cat)
		if o.Payload != "" {
			payloadSet[o.Payload] = true
		}
	}
	if tailVar != "" {
		best = MaxSeverity(best, CatLambda)
	}
	var payloads []string
	for p := range payloadSet {
		payloads = append(payloads, p)
	}
	sortStrings(payloads)
	return Compact{Category: best, Payloads: payloads}
}

func sortStrings(s []string) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// FromCompact is the inverse of ToCompact, used for registry seeding and
// serialization round-trips (spec.md §4.3). It must be lossless for pure,
// side(mfas), exception(types), dependent(mfas), nif, lambda, unknown.
func FromCompact(c Compact) *Row {
	switch c.Category {
	case CatPure:
		return Empty()
	case CatLambda:
		return NewVar("ρ")
	}
	label := labelForCategory(c.Category)
	if len(c.Payloads) == 0 {
		return Single(label, "")
	}
	row := Empty()
	for i := len(c.Payloads) - 1; i >= 0; i-- {
		row = Cons(label, c.Payloads[i], row)
	}
	return row
}

func labelForCategory(c Category) string {
	switch c {
	case CatException:
		return LabelExn
	case CatDependent:
		return LabelDep
	case CatSide:
		return LabelIO
	case CatNif:
		return LabelNif
	case CatUnknown:
		return LabelUnknown
	default:
		return LabelUnknown
	}
}
