// Copyright © 2024 The Qanun authors

package cmd

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/lint"
)

func checkInterpreter(t *testing.T) *interp.Interpreter {
	t.Helper()
	it, err := natives.NewDocInterpreter()
	require.NoError(t, err)
	return it
}

func runCheckCaptured(t *testing.T, stdin string, args []string, o checkOptions) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	code := runCheck(strings.NewReader(stdin), &stdout, &stderr, checkInterpreter(t), args, o)
	return code, stdout.String(), stderr.String()
}

func decodeDiagnostics(t *testing.T, out string) []lint.Diagnostic {
	t.Helper()
	var diags []lint.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &diags))
	return diags
}

func TestCheckCommand_DefaultFlags(t *testing.T) {
	cmd := CheckCommand()
	assert.Equal(t, "check [flags] [files...]", cmd.Use)
	for _, name := range []string{"json", "checks", "list", "exclude"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
	for _, name := range lint.AnalyzerNames() {
		assert.Contains(t, cmd.Long, name)
	}
}

func TestCheck_Clean(t *testing.T) {
	dir := t.TempDir()
	path := writeSource(t, dir, "fib.qan", fibSource)
	writeSource(t, dir, "clock.qan", "import \"Time\"\nprintln(Time.now() - clock())\n")

	code, stdout, stderr := runCheckCaptured(t, "", []string{dir + "/..."}, checkOptions{})
	assert.Equal(t, checkClean, code, stderr)
	assert.Empty(t, stdout)
	assert.Empty(t, stderr)

	code, stdout, _ = runCheckCaptured(t, "", []string{path}, checkOptions{json: true})
	assert.Equal(t, checkClean, code)
	assert.Equal(t, "[]", strings.TrimSpace(stdout))
}

func TestCheck_LintFindings(t *testing.T) {
	src := `fun add(a, b) {
  var unused = 1
  return a + b
}
println(add(1))
`
	path := writeSource(t, t.TempDir(), "main.qan", src)

	code, _, stderr := runCheckCaptured(t, "", []string{path}, checkOptions{})
	assert.Equal(t, checkProblem, code)
	assert.Contains(t, stderr, "(unused-variable)")
	assert.Contains(t, stderr, "(call-arity)")
	assert.Contains(t, stderr, `nolint:call-arity`)

	code, stdout, _ := runCheckCaptured(t, "", []string{path}, checkOptions{json: true})
	assert.Equal(t, checkProblem, code)
	diags := decodeDiagnostics(t, stdout)
	require.Len(t, diags, 2)
	assert.Equal(t, "unused-variable", diags[0].Analyzer)
	assert.Equal(t, lint.SeverityWarning, diags[0].Severity)
	assert.Equal(t, 2, diags[0].Pos.Line)
	assert.Equal(t, "call-arity", diags[1].Analyzer)
	assert.Equal(t, lint.SeverityError, diags[1].Severity)
	assert.Equal(t, path, diags[1].Pos.File)
}

func TestCheck_SelectChecks(t *testing.T) {
	src := "fun f() {\n  var unused = 1\n}\nf(1)\n"
	code, stdout, _ := runCheckCaptured(t, src, nil, checkOptions{json: true, checks: "call-arity"})
	assert.Equal(t, checkProblem, code)
	diags := decodeDiagnostics(t, stdout)
	require.Len(t, diags, 1)
	assert.Equal(t, "call-arity", diags[0].Analyzer)
	assert.Equal(t, "<stdin>", diags[0].Pos.File)

	code, _, stderr := runCheckCaptured(t, src, nil, checkOptions{checks: "call-arity, no-such-check"})
	assert.Equal(t, checkUsage, code)
	assert.Contains(t, stderr, "unknown check: no-such-check")
}

func TestCheck_SyntaxAndResolveErrors(t *testing.T) {
	dir := t.TempDir()
	syntax := writeSource(t, dir, "a.qan", "var = 1\n")
	resolve := writeSource(t, dir, "b.qan", "fun f() {\n  var x = 1\n  var x = 2\n  return x\n}\nf()\n")

	code, stdout, _ := runCheckCaptured(t, "", []string{syntax, resolve}, checkOptions{json: true})
	assert.Equal(t, checkProblem, code)
	diags := decodeDiagnostics(t, stdout)
	require.Len(t, diags, 2)
	assert.Equal(t, syntaxAnalyzer, diags[0].Analyzer)
	assert.Equal(t, "Expect variable name.", diags[0].Message)
	assert.Equal(t, lint.SeverityError, diags[0].Severity)
	assert.Equal(t, 1, diags[0].Pos.Line)
	assert.Equal(t, 5, diags[0].Pos.Col)
	assert.Equal(t, resolveAnalyzer, diags[1].Analyzer)
	assert.Equal(t, 3, diags[1].Pos.Line)

	code, _, stderr := runCheckCaptured(t, "", []string{syntax}, checkOptions{})
	assert.Equal(t, checkProblem, code)
	assert.Contains(t, stderr, "Expect variable name.")
}

func TestCheck_Nolint(t *testing.T) {
	src := "var x = 1\nx = x // nolint:self-assign\nx = x\n"
	code, stdout, _ := runCheckCaptured(t, src, nil, checkOptions{json: true})
	assert.Equal(t, checkProblem, code)
	diags := decodeDiagnostics(t, stdout)
	require.Len(t, diags, 1)
	assert.Equal(t, 3, diags[0].Pos.Line)
}

func TestCheck_ListAndUsage(t *testing.T) {
	code, stdout, _ := runCheckCaptured(t, "", nil, checkOptions{list: true})
	assert.Equal(t, checkClean, code)
	assert.Equal(t, lint.AnalyzerNames(), strings.Fields(stdout))

	code, _, stderr := runCheckCaptured(t, "", []string{"/no/such/file.qan"}, checkOptions{})
	assert.Equal(t, checkUsage, code)
	assert.NotEmpty(t, stderr)
}

func TestCheckCommand_WithNatives(t *testing.T) {
	greet := &interp.Native{
		Name:   "greet",
		Params: []string{"name"},
		Fn: func(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
			return args[0], nil
		},
	}
	cfg := newCmdConfig([]Option{WithNatives(greet)})
	it, err := cfg.resolveInterpreter()
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	code := runCheck(strings.NewReader("greet(\"x\")\ngreet()\n"), &stdout, &stderr, it, nil, checkOptions{json: true})
	assert.Equal(t, checkProblem, code)
	diags := decodeDiagnostics(t, stdout.String())
	require.Len(t, diags, 1, "greet is defined, so only the arity is wrong")
	assert.Equal(t, "call-arity", diags[0].Analyzer)
	assert.Equal(t, 2, diags[0].Pos.Line)
}

func TestResolveInterpreter_PrefersInjected(t *testing.T) {
	it := checkInterpreter(t)
	cfg := newCmdConfig([]Option{WithInterpreter(it), WithNatives(&interp.Native{Name: "ignored"})})
	got, err := cfg.resolveInterpreter()
	require.NoError(t, err)
	assert.Same(t, it, got)
}
