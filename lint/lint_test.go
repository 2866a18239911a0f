// Copyright © 2024 The Qanun authors

package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/luthersystems/qanun/analysis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *analysis.Config {
	return &analysis.Config{
		ExtraGlobals: []analysis.ExternalSymbol{
			{Name: "println", Kind: analysis.SymBuiltin, Signature: &analysis.Signature{Params: []string{"value"}}},
			{Name: "clock", Kind: analysis.SymBuiltin, Signature: &analysis.Signature{}},
		},
	}
}

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers(), Modules: []string{"Time", "File"}}
	diags, err := l.LintFile([]byte(source), "test.qan", testConfig())
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}, Modules: []string{"Time", "File"}}
	diags, err := l.LintFile([]byte(source), "test.qan", testConfig())
	require.NoError(t, err)
	return diags
}

// assertNoDiags checks that there are no diagnostics.
func assertNoDiags(t *testing.T, diags []Diagnostic) {
	t.Helper()
	if len(diags) > 0 {
		var msgs []string
		for _, d := range diags {
			msgs = append(msgs, d.String())
		}
		t.Errorf("expected no diagnostics, got %d: %v", len(diags), msgs)
	}
}

// assertDiagOnLine checks that a diagnostic exists on the given line with the given substring.
func assertDiagOnLine(t *testing.T, diags []Diagnostic, line int, substr string) {
	t.Helper()
	for _, d := range diags {
		if d.Pos.Line == line && strings.Contains(d.Message, substr) {
			return
		}
	}
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, fmt.Sprintf("line %d: %s", d.Pos.Line, d.Message))
	}
	t.Errorf("expected diagnostic on line %d containing %q, got: %v", line, substr, msgs)
}

func TestUndefinedGlobal(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefinedGlobal, "var x = 1\nprintln(x + y)\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "undefined: y")
	assert.Equal(t, 13, diags[0].Pos.Col)
	assert.Equal(t, 14, diags[0].EndPos.Col)
	assert.Equal(t, SeverityWarning, diags[0].Severity)
	assert.Equal(t, "undefined-global", diags[0].Analyzer)
	assert.Equal(t, "test.qan", diags[0].Pos.File)
}

func TestUndefinedGlobal_BuiltinModule(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefinedGlobal, "import \"Time\"\nprintln(Time.now())\n")
	assertNoDiags(t, diags)
}

func TestUndefinedGlobal_FileImport(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefinedGlobal, "import \"util\"\nhelper()\n")
	assertNoDiags(t, diags)
}

func TestUndefinedGlobal_ForwardReference(t *testing.T) {
	src := `fun main() {
  return helper()
}
fun helper() {
  return 1
}
`
	assertNoDiags(t, lintCheck(t, AnalyzerUndefinedGlobal, src))
}

func TestUnusedVariable(t *testing.T) {
	src := `var global = 1
fun f() {
  var unused = 1
  var used = 2
  var _ignored = 3
  val k = 4
  return used
}
f()
`
	diags := lintCheck(t, AnalyzerUnusedVariable, src)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "variable unused declared and not used")
	assertDiagOnLine(t, diags, 6, "constant k declared and not used")
}

func TestUnusedVariable_AssignedCounts(t *testing.T) {
	src := `fun f() {
  var n = 0
  n = 1
}
`
	assertNoDiags(t, lintCheck(t, AnalyzerUnusedVariable, src))
}

func TestCallArity(t *testing.T) {
	src := `fun add(a, b) {
  return a + b
}
add(1)
println(1, 2)
add(1, 2)
class Point {
  init(x, y) {
    this.x = x
    this.y = y
  }
}
Point(1)
clock()
`
	diags := lintCheck(t, AnalyzerCallArity, src)
	require.Len(t, diags, 3)
	assertDiagOnLine(t, diags, 4, "add expects 2 arguments but got 1")
	assertDiagOnLine(t, diags, 5, "println expects 1 argument but got 2")
	assertDiagOnLine(t, diags, 13, "Point expects 2 arguments but got 1")
	assert.Equal(t, SeverityError, diags[0].Severity)
}

func TestCallArity_Reassigned(t *testing.T) {
	src := `fun f(a) {
  return a
}
f = fun () -> 1
f()
`
	assertNoDiags(t, lintCheck(t, AnalyzerCallArity, src))
}

func TestUnreachableCode(t *testing.T) {
	src := `fun f() {
  return 1
  println("never")
}
while (true) {
  break
  println("never")
}
`
	diags := lintCheck(t, AnalyzerUnreachableCode, src)
	require.Len(t, diags, 2)
	assertDiagOnLine(t, diags, 3, "unreachable code after return")
	assertDiagOnLine(t, diags, 7, "unreachable code after break")
}

func TestSelfAssign(t *testing.T) {
	diags := lintCheck(t, AnalyzerSelfAssign, "var x = 1\nx = x\nx += x\n")
	require.Len(t, diags, 1)
	assertDiagOnLine(t, diags, 2, "self-assignment of x")
}

func TestNolint(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		count int
	}{
		{"all", "var x = 1\nx = x // nolint\n", 0},
		{"named", "var x = 1\nx = x // nolint:self-assign\n", 0},
		{"other", "var x = 1\nx = x // nolint:unused-variable\n", 1},
		{"list", "var x = 1\nx = x // nolint:undefined-global,self-assign\n", 0},
		{"prefix only", "var x = 1\nx = x // nolintx\n", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Len(t, lintSource(t, tt.src), tt.count)
		})
	}
}

func TestLintFile_SyntaxError(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile([]byte("var = 1\n"), "bad.qan", nil)
	require.Error(t, err)
}

func TestLintFile_ResolveError(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile([]byte("return 1\n"), "bad.qan", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Can't return from top-level code.")
}

func TestCleanProgram(t *testing.T) {
	src := `fun fib(n) {
  if (n < 2) return n
  return fib(n - 1) + fib(n - 2)
}
println(fib(10))
`
	assertNoDiags(t, lintSource(t, src))
}

func TestSortedOutput(t *testing.T) {
	src := "var a = 1\na = a\nprintln(b)\n"
	diags := lintSource(t, src)
	require.Len(t, diags, 2)
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, 3, diags[1].Pos.Line)
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, []Diagnostic{{
		Pos:      Position{File: "a.qan", Line: 2, Col: 1},
		Message:  "self-assignment of x",
		Analyzer: "self-assign",
		Notes:    []string{"remove it"},
	}})
	assert.Equal(t, "a.qan:2:1: self-assignment of x (self-assign)\n  = note: remove it\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	diags := lintSource(t, "println(y)\n")
	require.NoError(t, FormatJSON(&buf, diags))
	var decoded []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, SeverityWarning, decoded[0].Severity)
	assert.Equal(t, "undefined-global", decoded[0].Analyzer)
	assert.Contains(t, buf.String(), `"severity": "warning"`)
}

func TestSeverityJSON(t *testing.T) {
	b, err := json.Marshal(Severity(0))
	require.NoError(t, err)
	assert.Equal(t, `"warning"`, string(b))

	var s Severity
	require.NoError(t, json.Unmarshal([]byte(`"error"`), &s))
	assert.Equal(t, SeverityError, s)
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
}

func TestAnalyzerNames(t *testing.T) {
	names := AnalyzerNames()
	assert.Equal(t, []string{"call-arity", "self-assign", "undefined-global", "unreachable-code", "unused-variable"}, names)
	doc := AnalyzerDoc()
	for _, n := range names {
		assert.Contains(t, doc, n)
	}
}
