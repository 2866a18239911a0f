// Copyright © 2024 The Qanun authors

package repl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
)

func complete(c *completer, line string) ([]string, int) {
	candidates, offset := c.Do([]rune(line), len([]rune(line)))
	var out []string
	for _, r := range candidates {
		out = append(out, string(r))
	}
	return out, offset
}

func TestCompleter(t *testing.T) {
	it, err := interp.New(natives.Config())
	require.NoError(t, err)
	require.NoError(t, it.RunString("test", `
		import "Regex"
		var counter = 0
		class Shape { static unit() -> Shape() }
	`))
	c := &completer{it: it}

	got, offset := complete(c, "print(cou")
	assert.Equal(t, 3, offset)
	assert.Equal(t, []string{"nter"}, got)

	got, _ = complete(c, "whi")
	assert.Equal(t, []string{"le"}, got)

	got, _ = complete(c, "pri")
	assert.Contains(t, got, "nt")
	assert.Contains(t, got, "ntln")

	got, offset = complete(c, "Regex.fi")
	assert.Equal(t, 8, offset)
	assert.Equal(t, []string{"nd", "ndAll"}, got)

	got, _ = complete(c, "Shape.u")
	assert.Equal(t, []string{"nit"}, got)

	got, _ = complete(c, "zzz")
	assert.Empty(t, got)

	got, offset = complete(c, "x = ")
	assert.Empty(t, got)
	assert.Zero(t, offset)
}
