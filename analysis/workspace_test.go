// Copyright © 2024 The Qanun authors

package analysis

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanWorkspace_Basic(t *testing.T) {
	dir := t.TempDir()

	err := os.WriteFile(filepath.Join(dir, "lib.qan"), []byte(`
fun helper(x) -> x + 1
class Point { init(x, y) { this.x = x } }
var counter = 0
val LIMIT = 10
{ var hidden = 1 }
`), 0600)
	require.NoError(t, err)

	syms, err := ScanWorkspace(dir)
	require.NoError(t, err)

	kinds := make(map[string]SymbolKind)
	for _, s := range syms {
		kinds[s.Name] = s.Kind
	}
	assert.Equal(t, map[string]SymbolKind{
		"helper":  SymFunction,
		"Point":   SymClass,
		"counter": SymVariable,
		"LIMIT":   SymConstant,
	}, kinds)
}

func TestScanWorkspace_SkipsParseErrorsAndHidden(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "good.qanun"), []byte("fun good() -> 42\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.qan"), []byte("fun (\n"), 0600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("fun other() -> 1\n"), 0600))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "x.qan"), []byte("fun secret() -> 1\n"), 0600))

	syms, err := ScanWorkspace(dir)
	require.NoError(t, err)
	require.Len(t, syms, 1)
	assert.Equal(t, "good", syms[0].Name)
	assert.Equal(t, 1, syms[0].Source.Line)
	assert.Equal(t, 5, syms[0].Source.Col)
}

func TestAnalyzeFile(t *testing.T) {
	_, res, err := AnalyzeFile([]byte("fun f() { return }\nbreak\n"), "a.qan", nil)
	require.NoError(t, err)
	require.Error(t, res.Err())
	assert.Equal(t, "[line 2] Error at 'break': Can't use 'break' outside of a loop or switch.", res.Err().Error())

	_, res, err = AnalyzeFile([]byte("var = 1\n"), "b.qan", nil)
	assert.Nil(t, res)
	var errs rdparser.ErrorList
	assert.ErrorAs(t, err, &errs)
}

func TestIsSourceFile(t *testing.T) {
	assert.True(t, IsSourceFile("a/b.qan"))
	assert.True(t, IsSourceFile("b.qanun"))
	assert.False(t, IsSourceFile("b.txt"))
	assert.False(t, IsSourceFile("qan"))
}
