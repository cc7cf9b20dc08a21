package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMFAString(t *testing.T) {
	m := MFA{Module: "File", Function: "write", Arity: 3}
	assert.Equal(t, "File.write/3", m.String())
}

func TestCallTargetString(t *testing.T) {
	local := CallTarget{Function: "double"}
	remote := CallTarget{IsRemote: true, Module: "IO", Function: "puts"}
	assert.Equal(t, "double", local.String())
	assert.Equal(t, "IO.puts", remote.String())
}

func TestPatternMarkerTypes(t *testing.T) {
	var pats []Pattern
	pats = append(pats, &Var{Name: "x"}, &Wildcard{}, &Literal{Kind: IntLit, Value: 1})
	for _, p := range pats {
		_ = p.Position()
	}
}
