package effects

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// FromCompact(ToCompact(r)) must be lossless for every category the
// registry round-trips through JSON/YAML (spec.md §4.3, §8 round-trip
// property): pure, side(mfas), exception(types), dependent(mfas), nif,
// lambda, unknown.
func TestCompactRoundTripPure(t *testing.T) {
	c := ToCompact(Empty())
	assert.Equal(t, Compact{Category: CatPure}, c)
	assert.True(t, IsEmpty(FromCompact(c)))
}

func TestCompactRoundTripLambda(t *testing.T) {
	c := ToCompact(NewVar("ρ"))
	assert.Equal(t, CatLambda, c.Category)
	assert.True(t, IsVar(FromCompact(c)))
}

func TestCompactRoundTripSideWithPayloads(t *testing.T) {
	row := Cons(LabelIO, "IO.puts/1", Cons(LabelFS, "File.write/3", Empty()))
	c := ToCompact(row)
	assert.Equal(t, CatSide, c.Category)
	assert.ElementsMatch(t, []string{"IO.puts/1", "File.write/3"}, c.Payloads)

	back := FromCompact(c)
	c2 := ToCompact(back)
	assert.Equal(t, c.Category, c2.Category)
	assert.ElementsMatch(t, c.Payloads, c2.Payloads)
}

func TestCompactRoundTripException(t *testing.T) {
	row := Single(LabelExn, "ArgumentError")
	c := ToCompact(row)
	assert.Equal(t, CatException, c.Category)
	assert.Equal(t, []string{"ArgumentError"}, c.Payloads)

	back := FromCompact(c)
	c2 := ToCompact(back)
	assert.Equal(t, c, c2)
}

func TestCompactRoundTripDependent(t *testing.T) {
	row := Single(LabelDep, "Protocol.dispatch/1")
	c := ToCompact(row)
	assert.Equal(t, CatDependent, c.Category)

	back := FromCompact(c)
	c2 := ToCompact(back)
	assert.Equal(t, c, c2)
}

func TestCompactRoundTripNif(t *testing.T) {
	c := ToCompact(Single(LabelNif, ""))
	assert.Equal(t, CatNif, c.Category)
	assert.Empty(t, c.Payloads)

	back := FromCompact(c)
	assert.Equal(t, CatNif, ToCompact(back).Category)
}

func TestCompactRoundTripUnknown(t *testing.T) {
	c := ToCompact(Single(LabelUnknown, ""))
	assert.Equal(t, CatUnknown, c.Category)

	back := FromCompact(c)
	assert.Equal(t, CatUnknown, ToCompact(back).Category)
}

// Deduplication: the same payload occurring twice collapses to one entry.
func TestToCompactDeduplicatesPayloads(t *testing.T) {
	row := Cons(LabelIO, "IO.puts/1", Cons(LabelIO, "IO.puts/1", Empty()))
	c := ToCompact(row)
	assert.Equal(t, []string{"IO.puts/1"}, c.Payloads)
}

// A row that mixes an exception and a side effect collapses to the more
// severe category per the severity lattice (spec.md §3).
func TestToCompactPicksMostSevereCategory(t *testing.T) {
	row := Cons(LabelExn, "ArgumentError", Cons(LabelIO, "IO.puts/1", Empty()))
	c := ToCompact(row)
	assert.Equal(t, CatSide, c.Category)
}

func TestSeverityOrderIsTotal(t *testing.T) {
	order := []Category{CatPure, CatLambda, CatException, CatDependent, CatSide, CatNif, CatUnknown}
	for i := 1; i < len(order); i++ {
		assert.Less(t, Severity(order[i-1]), Severity(order[i]))
	}
}

func TestMaxSeverityPicksHigher(t *testing.T) {
	assert.Equal(t, CatUnknown, MaxSeverity(CatUnknown, CatPure))
	assert.Equal(t, CatSide, MaxSeverity(CatException, CatSide))
}
