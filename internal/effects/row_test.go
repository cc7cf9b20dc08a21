package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// Row.Substitute must be idempotent: substituting a row already rewritten
// by s produces the same row again (spec.md §4.1, §8 idempotence property).
func TestRowSubstituteIdempotentThroughChain(t *testing.T) {
	s := Subst{"e1": NewVar("e2"), "e2": Single(LabelIO, "IO.puts/1")}
	row := NewVar("e1")

	once := row.Substitute(s)
	twice := once.Substitute(s)
	assert.True(t, once.Equals(twice))
	assert.True(t, HasEffect(LabelIO, once))
}

func TestRowSubstituteLeavesUnboundVarUntouched(t *testing.T) {
	s := Subst{"e1": Empty()}
	row := NewVar("e2")
	got := row.Substitute(s)
	assert.True(t, got.Equals(row))
}

func TestRowSubstitutePreservesDuplicateLabels(t *testing.T) {
	s := Subst{"e1": Single(LabelExn, "TimeoutError")}
	row := Cons(LabelExn, "ArgumentError", NewVar("e1"))
	got := row.Substitute(s)
	occs, _ := spine(got)
	assert.Len(t, occs, 2)
}

func TestCombineWithEmptyIsIdentity(t *testing.T) {
	row := Single(LabelIO, "IO.puts/1")
	assert.True(t, Combine(Empty(), row).Equals(row))
	assert.True(t, Combine(row, Empty()).Equals(row))
}

func TestCombineConcatenatesBothSpines(t *testing.T) {
	a := Single(LabelIO, "IO.puts/1")
	b := Single(LabelExn, "ArgumentError")
	c := Combine(a, b)
	assert.True(t, HasEffect(LabelIO, c))
	assert.True(t, HasEffect(LabelExn, c))
}

// RemoveOne strips exactly one occurrence, leaving a second, unrelated
// occurrence of the same label untouched (spec.md §4.2 duplicate-label
// rule).
func TestRemoveOneStripsExactlyOneOccurrence(t *testing.T) {
	row := Cons(LabelExn, "ArgumentError", Cons(LabelExn, "ArgumentError", Empty()))
	after, ok := RemoveOne(LabelExn, row)
	assert.True(t, ok)
	assert.True(t, HasEffect(LabelExn, after))
	occs, _ := spine(after)
	assert.Len(t, occs, 1)
}

func TestRemoveOneReportsFalseWhenLabelAbsent(t *testing.T) {
	row := Single(LabelIO, "IO.puts/1")
	_, ok := RemoveOne(LabelExn, row)
	assert.False(t, ok)
}

func TestRowEqualsIgnoresSpineOrder(t *testing.T) {
	a := Cons(LabelIO, "IO.puts/1", Cons(LabelExn, "ArgumentError", Empty()))
	b := Cons(LabelExn, "ArgumentError", Cons(LabelIO, "IO.puts/1", Empty()))
	assert.True(t, a.Equals(b))
}

func TestRowEqualsDistinguishesDuplicateCounts(t *testing.T) {
	a := Cons(LabelExn, "E", Cons(LabelExn, "E", Empty()))
	b := Single(LabelExn, "E")
	assert.False(t, a.Equals(b))
}
