package fixpoint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/effects"
	"github.com/sunholo/effectlang/internal/registry"
)

func TestRunStabilizesMutualRecursionToSide(t *testing.T) {
	reg := registry.New()
	even := mfa("even")
	odd := mfa("odd")
	scc := []ast.MFA{even, odd}

	// even calls odd and does IO; odd just calls even. The fix-point must
	// converge both to side since the cycle propagates the more severe
	// category to every member.
	iterations := 0
	err := Run(reg, scc, func(m ast.MFA) effects.Compact {
		iterations++
		if m == even {
			return effects.Compact{Category: effects.CatSide, Payloads: []string{effects.LabelIO}}
		}
		oddOf, _ := reg.EffectOf(odd)
		_ = oddOf
		return effects.Compact{Category: effects.CatSide}
	})
	require.NoError(t, err)

	e, _ := reg.EffectOf(even)
	o, _ := reg.EffectOf(odd)
	assert.Equal(t, effects.CatSide, e.Category)
	assert.Equal(t, effects.CatSide, o.Category)
	assert.Greater(t, iterations, 0)
}

func TestRunSeedsPureBeforeFirstIteration(t *testing.T) {
	reg := registry.New()
	m := mfa("pure_fn")
	err := Run(reg, []ast.MFA{m}, func(mfa ast.MFA) effects.Compact {
		return effects.Compact{Category: effects.CatPure}
	})
	require.NoError(t, err)
	c, ok := reg.EffectOf(m)
	assert.True(t, ok)
	assert.Equal(t, effects.CatPure, c.Category)
}

func TestRunConvergesInBoundedIterations(t *testing.T) {
	reg := registry.New()
	m := mfa("climber")
	levels := []effects.Category{
		effects.CatLambda, effects.CatException, effects.CatDependent,
		effects.CatSide, effects.CatNif, effects.CatUnknown,
	}
	call := 0
	err := Run(reg, []ast.MFA{m}, func(mfa ast.MFA) effects.Compact {
		cat := levels[call]
		if call < len(levels)-1 {
			call++
		}
		return effects.Compact{Category: cat}
	})
	require.NoError(t, err)
	c, _ := reg.EffectOf(m)
	assert.Equal(t, effects.CatUnknown, c.Category)
}
