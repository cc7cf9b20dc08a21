package ctx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sunholo/effectlang/internal/ast"
	"github.com/sunholo/effectlang/internal/types"
)

func TestEnvLookupWalksScopes(t *testing.T) {
	root := NewEnv()
	root.Bind("x", types.Mono(types.TInt))
	child := root.Enter()
	child.Bind("y", types.Mono(types.TBool))

	_, ok := child.Lookup("x")
	assert.True(t, ok)
	_, ok = child.Lookup("y")
	assert.True(t, ok)

	back := child.Leave()
	_, ok = back.Lookup("y")
	assert.False(t, ok)
}

func TestFreshIsMonotonicAndPrefixed(t *testing.T) {
	f := NewFresh()
	a := f.Next("t")
	b := f.Next("t")
	assert.NotEqual(t, a, b)
	assert.Equal(t, "t1", a)
	assert.Equal(t, "t2", b)
}

func TestPatternVarsIgnoresWildcardAndLiteral(t *testing.T) {
	p := &ast.Tuple{Elems: []ast.Expr{
		&ast.Var{Name: "a"},
		&ast.Wildcard{},
		&ast.Literal{Kind: ast.IntLit, Value: 1},
		&ast.Var{Name: "b"},
	}}
	vars := PatternVars(p)
	assert.ElementsMatch(t, []string{"a", "b"}, vars)
}

func TestSkeletonBuildsStructuralShape(t *testing.T) {
	f := NewFresh()
	p := &ast.Tuple{Elems: []ast.Expr{
		&ast.Literal{Kind: ast.IntLit, Value: 1},
		&ast.Var{Name: "x"},
	}}
	sk := Skeleton(p, f)
	tup, ok := sk.(*types.Tuple)
	assert.True(t, ok)
	assert.True(t, tup.Elems[0].Equals(types.TInt))
}
