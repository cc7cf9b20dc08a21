// Package summary formats the per-function summary produced by the engine
// (spec.md §6, "Produced: per-function summary") as text or JSON, for the
// demo CLI to render. Grounded on the teacher's
// internal/schema.MarshalDeterministic text/JSON reporting conventions and
// cmd/ailang's tabular stdout rendering, column-aligned via
// golang.org/x/text/width for consistent terminal output across wide/narrow
// Unicode (the teacher imports golang.org/x/text for the same reason in its
// REPL prompt rendering).
package summary

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/width"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/types"
)

// Summary is one function's produced record (spec.md §6).
type Summary struct {
	MFA          ast.MFA
	CompactEffect effects.Compact
	TypeScheme   *types.Scheme
	Calls        []ast.MFA
	Visibility   ast.Visibility
}

// jsonView is the wire shape for JSON rendering; field names are the
// spec's own vocabulary (spec.md §6).
type jsonView struct {
	MFA          string   `json:"mfa"`
	CompactEffect string  `json:"compact_effect"`
	Payloads     []string `json:"payloads,omitempty"`
	TypeScheme   string   `json:"type_scheme"`
	Calls        []string `json:"calls"`
	Visibility   string   `json:"visibility"`
}

// MarshalJSON encodes s per spec.md §6's produced-summary shape.
func (s Summary) MarshalJSON() ([]byte, error) {
	calls := make([]string, len(s.Calls))
	for i, c := range s.Calls {
		calls[i] = c.String()
	}
	vis := "private"
	if s.Visibility == ast.Public {
		vis = "public"
	}
	return json.Marshal(jsonView{
		MFA:           s.MFA.String(),
		CompactEffect: s.CompactEffect.Category.String(),
		Payloads:      s.CompactEffect.Payloads,
		TypeScheme:    s.TypeScheme.String(),
		Calls:         calls,
		Visibility:    vis,
	})
}

// Table renders a column-aligned text report across many summaries,
// sorted by MFA for deterministic output.
func Table(summaries []Summary) string {
	sorted := append([]Summary{}, summaries...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].MFA.String() < sorted[j].MFA.String()
	})

	mfaCol := len("FUNCTION")
	effCol := len("EFFECT")
	for _, s := range sorted {
		if w := displayWidth(s.MFA.String()); w > mfaCol {
			mfaCol = w
		}
		if w := displayWidth(s.CompactEffect.String()); w > effCol {
			effCol = w
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-*s  %-*s  %s\n", mfaCol, "FUNCTION", effCol, "EFFECT", "TYPE")
	for _, s := range sorted {
		fmt.Fprintf(&b, "%-*s  %-*s  %s\n", mfaCol, s.MFA.String(), effCol, s.CompactEffect.String(), s.TypeScheme.String())
	}
	return b.String()
}

// displayWidth measures a string's terminal column width, accounting for
// East-Asian wide runes that a naive len()/rune-count would undercount.
func displayWidth(s string) int {
	n := 0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}
