package summary

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/types"
)

func sampleSummary() Summary {
	return Summary{
		MFA:           ast.MFA{Module: "My", Function: "double", Arity: 1},
		CompactEffect: effects.Compact{Category: effects.CatPure},
		TypeScheme:    types.Mono(&types.Func{Arg: types.TInt, Eff: effects.Empty(), Ret: types.TInt}),
		Calls:         nil,
		Visibility:    ast.Public,
	}
}

func TestMarshalJSONShapesPerSpec(t *testing.T) {
	s := sampleSummary()
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(b, &v))
	assert.Equal(t, "My.double/1", v["mfa"])
	assert.Equal(t, "pure", v["compact_effect"])
	assert.Equal(t, "public", v["visibility"])
}

func TestTableIncludesHeaderAndRow(t *testing.T) {
	out := Table([]Summary{sampleSummary()})
	assert.Contains(t, out, "FUNCTION")
	assert.Contains(t, out, "My.double/1")
	assert.Contains(t, out, "pure")
}

func TestTableSortsByMFA(t *testing.T) {
	b := sampleSummary()
	b.MFA = ast.MFA{Module: "Z", Function: "last", Arity: 0}
	b.TypeScheme = types.Mono(types.TUnit)
	out := Table([]Summary{b, sampleSummary()})
	assert.True(t, indexOf(out, "My.double/1") < indexOf(out, "Z.last/0"))
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
