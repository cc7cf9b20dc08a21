package errors

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodedRoundTrip(t *testing.T) {
	e := New("unify", UNI001, "cannot unify int with bool").
		WithContext(map[string]string{"lhs": "int", "rhs": "bool"}).
		WithSpan("foo.ex:3:5")

	raw, err := MarshalDeterministic(e)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, SchemaVersion, decoded["schema"])
	assert.Equal(t, UNI001, decoded["code"])
	assert.Equal(t, "foo.ex:3:5", decoded["source_span"])
}

func TestMarshalDeterministicIsStable(t *testing.T) {
	e := New("registry", REG001, "no entry for Foo.bar/1")
	a, err := MarshalDeterministic(e)
	require.NoError(t, err)
	b, err := MarshalDeterministic(e)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestErrorInterface(t *testing.T) {
	e := New("unify", UNI003, "t0 occurs in list<t0>")
	assert.Contains(t, e.Error(), UNI003)
	assert.Contains(t, e.Error(), "occurs")
}
