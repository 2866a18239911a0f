// Copyright © 2024 The Qanun authors

package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	global := NewEnv(nil)
	require.NoError(t, global.Define("a", Number(1)))
	require.NoError(t, global.DefineConst("k", String("const")))
	assert.ErrorIs(t, global.Define("a", Nil), ErrRedeclared)
	assert.ErrorIs(t, global.DefineConst("a", Nil), ErrRedeclared)
	assert.ErrorIs(t, global.Define("k", Nil), ErrRedeclared)

	assert.True(t, global.IsConst("k"))
	assert.False(t, global.IsConst("a"))
	assert.Equal(t, []string{"a", "k"}, global.Names())

	local := NewEnv(global)
	require.NoError(t, local.Define("a", Number(2)))
	assert.Same(t, global, local.Parent())

	v, ok := local.Get("a")
	require.True(t, ok)
	assert.Equal(t, Number(2), v)
	_, ok = local.Get("k")
	assert.False(t, ok, "Get does not search enclosing scopes")
	v, ok = local.Lookup("k")
	require.True(t, ok)
	assert.Equal(t, String("const"), v)

	v, ok = local.GetAt(1, "a")
	require.True(t, ok)
	assert.Equal(t, Number(1), v)
	_, ok = local.GetAt(5, "a")
	assert.False(t, ok)

	require.NoError(t, local.AssignAt(1, "a", Number(3)))
	v, _ = global.Get("a")
	assert.Equal(t, Number(3), v)
	assert.ErrorIs(t, local.AssignAt(1, "k", Nil), ErrConstant)
	assert.ErrorIs(t, local.Assign("missing", Nil), ErrUndefined)
	assert.ErrorIs(t, local.AssignAt(3, "a", Nil), ErrUndefined)

	global.Redefine("k", Number(4), false)
	assert.False(t, global.IsConst("k"))
	require.NoError(t, global.Assign("k", Number(5)))
	global.Redefine("a", Number(6), true)
	assert.True(t, global.IsConst("a"))
	assert.Equal(t, []string{"a", "k"}, global.Names())

	global.set("a", Number(7))
	v, _ = global.Get("a")
	assert.Equal(t, Number(7), v)
	assert.True(t, global.IsConst("a"))
}

func TestValues(t *testing.T) {
	assert.False(t, Truthy(Nil))
	assert.False(t, Truthy(nil))
	assert.False(t, Truthy(Bool(false)))
	assert.True(t, Truthy(Number(0)))
	assert.True(t, Truthy(String("")))
	assert.True(t, Truthy(NewList()))

	assert.True(t, Equal(nil, Nil))
	assert.False(t, Equal(Number(1), String("1")))
	assert.True(t, Equal(NewList(Number(1)), NewList(Number(1))))
	assert.False(t, Equal(NewList(Number(1)), NewList(Number(1), Number(2))))

	assert.Equal(t, "Infinity", FormatNumber(1/zero()))
	assert.Equal(t, "-Infinity", FormatNumber(-1/zero()))
	assert.Equal(t, "2.5", Number(2.5).String())
	assert.Equal(t, "-3", Number(-3).String())

	for _, v := range []Value{Nil, Bool(true), Number(1), String(""), NewList(), &Module{Name: "M"}} {
		assert.NotEqual(t, "unknown", v.Kind().String())
	}
	assert.Equal(t, "<module 'M'>", (&Module{Name: "M"}).String())
}

func zero() float64 { return 0 }
