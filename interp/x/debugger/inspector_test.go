// Copyright © 2024 The Qanun authors

package debugger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
)

func TestFormatValue(t *testing.T) {
	c := &interp.Class{Name: "Point"}
	inst := interp.NewInstance(c)
	long := interp.NewList()
	for i := 0; i < 11; i++ {
		long.Elems = append(long.Elems, interp.Number(i))
	}
	self := interp.NewList(interp.Number(1))
	self.Elems = append(self.Elems, self)
	for _, test := range []struct {
		v    interp.Value
		want string
	}{
		{interp.Nil, "nil"},
		{interp.Number(1.5), "1.5"},
		{interp.Bool(true), "true"},
		{interp.String("a\tb"), `"a\tb"`},
		{interp.NewList(interp.Number(1), interp.String("x")), `[1, "x"]`},
		{long, "[11 elements]"},
		{self, "[1, [...]]"},
		{&interp.Function{Name: "f"}, "<function f>"},
		{&interp.Function{}, "<function>"},
		{&interp.Function{Name: "m", Class: c}, "<method Point.m>"},
		{c, "<class Point>"},
		{inst, "<Point instance>"},
	} {
		assert.Equal(t, test.want, FormatValue(test.v))
	}
}

func TestChildren(t *testing.T) {
	inst := interp.NewInstance(&interp.Class{Name: "P"})
	inst.Fields["y"] = interp.Number(2)
	inst.Fields["x"] = interp.Number(1)
	kids := Children(inst)
	require.Len(t, kids, 2)
	assert.Equal(t, "x", kids[0].Name)
	assert.True(t, HasChildren(inst))

	kids = Children(interp.NewList(interp.String("a")))
	require.Len(t, kids, 1)
	assert.Equal(t, "0", kids[0].Name)

	assert.Nil(t, Children(interp.Number(1)))
	assert.False(t, HasChildren(interp.Number(1)))
}

func TestInspectScopes(t *testing.T) {
	it, err := interp.New(natives.Config())
	require.NoError(t, err)
	require.NoError(t, it.RunString("test", `val k = 1; var v = "s"; import "Time";`))

	globals := InspectGlobals(it)
	var names []string
	for _, b := range globals {
		names = append(names, b.Name)
	}
	assert.Equal(t, []string{"k", "v"}, names)
	assert.True(t, globals[0].Const)
	assert.False(t, globals[1].Const)

	outer := interp.NewEnv(it.Globals())
	require.NoError(t, outer.Define("a", interp.Number(1)))
	require.NoError(t, outer.Define("b", interp.Number(2)))
	inner := interp.NewEnv(outer)
	require.NoError(t, inner.Define("a", interp.Number(3)))
	locals := InspectFunctionLocals(inner)
	require.Len(t, locals, 2)
	assert.Equal(t, interp.Number(3), locals[0].Value)
	assert.Len(t, InspectLocals(inner), 1)
	assert.Nil(t, InspectLocals(nil))
}
