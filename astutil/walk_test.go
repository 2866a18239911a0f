// Copyright © 2024 The Qanun authors

package astutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
)

const program = `var total = 0
val limit = 3
fun add(a, b) {
  return a + b
}
class Point : Base {
  init(x) { this.x = x }
  static origin() -> Point(0)
}
for (var item : [1, 2]) {
  total = add(total, item)
}
`

func parse(t *testing.T, src string) []ast.Stmt {
	t.Helper()
	stmts, err := parser.ParseString("test", src)
	require.NoError(t, err)
	return stmts
}

func TestWalk(t *testing.T) {
	stmts := parse(t, program)
	var (
		count    int
		maxDepth int
		topLevel int
	)
	Walk(stmts, func(node ast.Node, parent ast.Node, depth int) {
		count++
		if depth > maxDepth {
			maxDepth = depth
		}
		if parent == nil {
			topLevel++
			assert.Equal(t, 0, depth)
		}
	})
	assert.Equal(t, len(stmts), topLevel)
	assert.Greater(t, count, 20)
	assert.Greater(t, maxDepth, 3)
}

func TestInspectSkip(t *testing.T) {
	stmts := parse(t, program)
	var funcs, vars int
	for _, stmt := range stmts {
		Inspect(stmt, func(node ast.Node) bool {
			switch node.(type) {
			case *ast.FunctionLit:
				funcs++
				return false
			case *ast.Variable:
				vars++
			}
			return true
		})
	}
	assert.Equal(t, 3, funcs)
	// Base, add, total and item; variables inside function bodies are
	// skipped.
	assert.Equal(t, 4, vars)
}

func TestChildrenOrder(t *testing.T) {
	stmts := parse(t, `a = b + c * d`)
	assign := stmts[0].(*ast.Expression).Expr.(*ast.Assign)
	children := Children(assign)
	require.Len(t, children, 1)
	bin := children[0].(*ast.Binary)
	kids := Children(bin)
	require.Len(t, kids, 2)
	assert.Equal(t, "b", kids[0].(*ast.Variable).Name.Text)

	class := parse(t, `class A {}`)[0]
	assert.Empty(t, Children(class))
}

func TestDeclarations(t *testing.T) {
	stmts := parse(t, program)
	var names []string
	for _, tok := range Declarations(stmts) {
		names = append(names, tok.Text)
	}
	assert.Equal(t, []string{"total", "limit", "add", "Point"}, names)
}

func TestUserDefined(t *testing.T) {
	defs := UserDefined(parse(t, program))
	for _, name := range []string{"total", "limit", "add", "a", "b", "Point", "init", "x", "origin", "item"} {
		assert.True(t, defs[name], name)
	}
	assert.False(t, defs["Base"])
}

func TestStatementLines(t *testing.T) {
	lines := StatementLines(parse(t, program))
	for _, line := range []int{1, 2, 3, 4, 6, 10, 11} {
		assert.True(t, lines[line], "line %d", line)
	}
	assert.False(t, lines[5])
}

func TestIdentAt(t *testing.T) {
	stmts := parse(t, program)
	tok := IdentAt(stmts, 3, 5)
	require.NotNil(t, tok)
	assert.Equal(t, "add", tok.Text)

	tok = IdentAt(stmts, 11, 13)
	require.NotNil(t, tok)
	assert.Equal(t, "add", tok.Text)

	tok = IdentAt(stmts, 4, 14)
	require.NotNil(t, tok)
	assert.Equal(t, "b", tok.Text)

	assert.Nil(t, IdentAt(stmts, 5, 1))
}
