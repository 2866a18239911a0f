// Copyright © 2024 The Qanun authors

package interp_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/qanuntest"
)

func newInterpreter(t *testing.T, configs ...interp.Config) (*interp.Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	configs = append([]interp.Config{
		interp.WithStdout(&out),
		interp.WithStderr(qanuntest.NewLogger(t)),
		natives.Config(),
	}, configs...)
	it, err := interp.New(configs...)
	require.NoError(t, err)
	return it, &out
}

func parseAndResolve(it *interp.Interpreter, src string) ([]ast.Stmt, error) {
	stmts, err := parser.ParseString("repl", src)
	if err != nil {
		return nil, err
	}
	return stmts, it.Resolve("repl", stmts)
}

func TestStatements(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "while", Source: `var i = 0; while (i < 10) i = i + 1; print(i)`, Stdout: "10"},
		{Name: "for", Source: `for (var i = 0; i < 3; i++) print(i)`, Stdout: "012"},
		{Name: "for scope", Source: `for (var i = 0; i < 1; i++) {} print(i)`, Err: "Undefined variable 'i'."},
		{Name: "break continue", Source: `
			for (var i = 0; i < 10; i++) {
				if (i == 2) continue
				if (i == 5) break
				print(i)
			}`, Stdout: "0134"},
		{Name: "while continue", Source: `
			var i = 0
			while (i < 5) {
				i++
				if (i % 2 == 0) continue
				print(i)
			}`, Stdout: "135"},
		{Name: "if else", Source: `if (nil) print("a"); else if (0) print("b"); else print("c")`, Stdout: "b"},
		{Name: "block scope", Source: `
			var a = "global"
			{
				var a = "inner"
				print(a)
			}
			print(a)`, Stdout: "innerglobal"},
		{Name: "static scoping", Source: `
			var a = "global"
			{
				fun show() { print(a) }
				show()
				var a = "block"
				show()
			}`, Stdout: "globalglobal"},
		{Name: "foreach list", Source: `for (var x : [1, 2, 3]) print(x * 2)`, Stdout: "246"},
		{Name: "foreach string", Source: `for (var c : "añb") print(c + ".")`, Stdout: "a.ñ.b."},
		{Name: "foreach snapshot", Source: `
			var xs = [1, 2]
			for (var x : xs) xs += [x]
			print(xs)`, Stdout: "[1, 2, 1, 2]"},
		{Name: "foreach closures", Source: `
			var fns = []
			for (var x : [1, 2, 3]) fns += [fun () -> x]
			for (var f : fns) print(f())`, Stdout: "123"},
		{Name: "foreach break", Source: `for (var x : [1, 2, 3]) { if (x == 2) break; print(x) }`, Stdout: "1"},
		{Name: "foreach invalid", Source: `for (var x : 3) print(x)`, Err: "Can only iterate over lists and strings."},
		{Name: "switch", Source: `
			fun kind(x) {
				switch (x) {
					case 0: return "zero"
					case "a":
						print("letter ")
						return "a"
					case -1: return "negative"
					case nil:
					default: return "other"
				}
				return "none"
			}
			print(kind(0) + " " + kind("a") + " " + kind(-1) + " " + kind(nil) + " " + kind(7))`,
			Stdout: "letter zero a negative none other"},
		{Name: "switch break", Source: `
			switch (1) {
				case 1:
					print("one")
					break
					print("unreachable")
				case 2: print("two")
			}
			print("!")`, Stdout: "one!"},
		{Name: "switch continue", Source: `
			for (var i = 0; i < 3; i++) {
				switch (i) {
					case 1: continue
				}
				print(i)
			}`, Stdout: "02"},
		{Name: "redeclare var", Source: `var a = 1; var a = 2`, Err: "Redeclaration of var 'a'."},
		{Name: "redeclare val", Source: `val a = 1; var a = 2`, Err: "Redeclaration of val 'a'."},
		{Name: "redeclare native", Source: `fun print(x) {}`, Err: "Redeclaration of var 'print'."},
		{Name: "val reassign", Source: `val a = 1; a = 2`, Err: "Can't reassign constant 'a'."},
		{Name: "val increment", Source: `fun f() { val a = 1; a++ } f()`, Err: "Can't reassign constant 'a'."},
		{Name: "undefined", Source: `print(nope)`, Err: "Undefined variable 'nope'.\n[line 1]"},
		{Name: "undefined assign", Source: `nope = 1`, Err: "Undefined variable 'nope'."},
	})
}

func TestExpressions(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "arithmetic", Source: `print(1 + 2 * 3 - 4 / 2)`, Stdout: "5"},
		{Name: "modulo", Source: `print(7 % 2); print(" "); print(-7 % 3); print(" "); print(5.5 % 2)`, Stdout: "1 -1 1.5"},
		{Name: "power", Source: `print(2 ** 10); print(" "); print(-2 ** 2); print(" "); print(2 ** 3 ** 2)`, Stdout: "1024 -4 512"},
		{Name: "division by zero", Source: `print(1 / 0)`, Err: "division by zero"},
		{Name: "fraction", Source: `print(1 / 4)`, Stdout: "0.25"},
		{Name: "comparison", Source: `print(1 < 2); print(2 <= 2); print(3 > 4); print(4 >= 5)`, Stdout: "truetruefalsefalse"},
		{Name: "comparison types", Source: `print("a" < "b")`, Err: "Operands must be numbers."},
		{Name: "negate", Source: `print(-"a")`, Err: "Operand must be a number."},
		{Name: "not", Source: `print(!nil); print(!0); print(!"")`, Stdout: "truefalsefalse"},
		{Name: "string concat", Source: `print("a" + "b")`, Stdout: "ab"},
		{Name: "mixed add", Source: `print("a" + 1)`, Err: "Operands must be two numbers or two strings."},
		{Name: "list add", Source: `var a = [1]; var b = a + [2]; print(a); print(b)`, Stdout: "[1][1, 2]"},
		{Name: "list add mixed", Source: `print([1] + 2)`, Err: "Operands must be two lists."},
		{Name: "list append aliasing", Source: `var a = [1]; var b = a; b += [2]; print(a)`, Stdout: "[1, 2]"},
		{Name: "list append mixed", Source: `var a = [1]; a += 2`, Err: "Operands must be two lists."},
		{Name: "equality", Source: `
			print(nil == nil); print(nil == false); print(1 == 1); print("a" == "a")
			print([1, [2]] == [1, [2]]); print(1 != "1")`, Stdout: "truefalsetruetruetruetrue"},
		{Name: "identity", Source: `class A {} print(A() == A()); var a = A(); print(a == a)`, Stdout: "falsetrue"},
		{Name: "logical", Source: `print(nil or "x"); print(1 and 2); print(false and nope); print(true or nope)`, Stdout: "x2falsetrue"},
		{Name: "ternary", Source: `print(1 > 2 ? "a" : 3 > 2 ? "b" : "c")`, Stdout: "b"},
		{Name: "increment", Source: `var i = 1; print(i++); print(i); print(++i); print(i--); print(--i)`, Stdout: "12331"},
		{Name: "increment non number", Source: `var s = "a"; s++`, Err: "Operand must be a number."},
		{Name: "compound", Source: `
			var x = 2
			x += 3; print(x)
			x -= 1; print(x)
			x *= 3; print(x)
			x /= 4; print(x)
			x **= 2; print(x)
			x %= 4; print(x)`, Stdout: "5412391"},
		{Name: "compound string", Source: `var s = "a"; s += "b"; print(s)`, Stdout: "ab"},
		{Name: "number printing", Source: `print(1.0); print(" "); print(0.1 + 0.2); print(" "); print(1000000)`, Stdout: "1 0.30000000000000004 1000000"},
	})
}

func TestLists(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "index", Source: `var xs = [1, 2, 3]; print(xs[0] + xs[2])`, Stdout: "4"},
		{Name: "string index", Source: `print("hé!"[1])`, Stdout: "é"},
		{Name: "mutate", Source: `var xs = [1, 2]; xs[1] = 5; xs[0] += 10; print(xs)`, Stdout: "[11, 5]"},
		{Name: "nested", Source: `var m = [[1, 2], [3]]; m[0][1] = 9; print(m[0][1])`, Stdout: "9"},
		{Name: "out of range", Source: `[1][1]`, Err: "Index 1 out of range for length 1."},
		{Name: "negative", Source: `[1][-1]`, Err: "Index -1 out of range for length 1."},
		{Name: "fractional", Source: `[1][0.5]`, Err: "Index must be an integer."},
		{Name: "non number", Source: `[1]["a"]`, Err: "Index must be a number."},
		{Name: "non list", Source: `var n = 1; n[0]`, Err: "Only lists and strings can be indexed."},
		{Name: "string mutate", Source: `var s = "abc"; s[0] = "x"`, Err: "Only list elements can be assigned."},
		{Name: "self reference", Source: `var xs = [1]; xs[0] = xs; print(xs)`, Stdout: "[[...]]"},
		{Name: "huge index", Source: `[1][100000000000000000000000000]`, Err: "Index 100000000000000000000000000 out of range for length 1."},
		{Name: "huge negative index", Source: `"ab"[-100000000000000000000000000]`, Err: "Index -100000000000000000000000000 out of range for length 2."},
		{Name: "mutual reference", Source: `
			var a = [1]
			var b = [a]
			a[0] = b
			println(a)
			println(b)`, Stdout: "[[[...]]]\n[[[...]]]\n"},
		{Name: "cyclic equality", Source: `
			var a = [0]; a[0] = a
			var b = [0]; b[0] = b
			var c = [1, 0]; c[1] = c
			print(a == b); print(a != b); print(a == c); print([a] == [b])`, Stdout: "truefalsefalsetrue"},
		{Name: "cross cyclic equality", Source: `
			var a = [0]; var b = [a]; a[0] = b
			var c = [0]; var d = [c]; c[0] = d
			print(a == c); print(a == d)`, Stdout: "truetrue"},
	})
}

func TestFunctions(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "recursion", Source: `fun fib(n) -> n < 2 ? n : fib(n - 1) + fib(n - 2); print(fib(20))`, Stdout: "6765"},
		{Name: "closure counter", Source: `
			fun counter() {
				var n = 0
				return fun () { n++; return n }
			}
			var a = counter()
			var b = counter()
			a(); a()
			print(a()); print(b())`, Stdout: "31"},
		{Name: "implicit nil", Source: `fun f() {} print(f())`, Stdout: "nil"},
		{Name: "printing", Source: `fun f() {} print(f); print(fun () {})`, Stdout: "<function 'f'><function>"},
		{Name: "arity", Source: `fun f(a, b) {} f(1)`, Err: "Expected 2 arguments but got 1."},
		{Name: "not callable", Source: `"a"()`, Err: "Can only call functions and classes."},
		{Name: "stack overflow", Source: `fun f() { f() } f()`, Err: "stack overflow: maximum call depth 1024 exceeded"},
		{Name: "arrow", Source: `var double = fun (x) -> x * 2; print(double(4))`, Stdout: "8"},
	})
}

func TestClasses(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "fields", Source: `
			class P { init(x) { this.x = x } get() -> this.x }
			var p = P(3)
			p.y = 4
			print(p.get() + p.y)`, Stdout: "7"},
		{Name: "printing", Source: `class P {} print(P); print(" "); print(P())`, Stdout: "P P instance"},
		{Name: "super", Source: `
			class A { name() -> "A" }
			class B : A { name() -> super.name() + "B" }
			print(B().name())`, Stdout: "AB"},
		{Name: "super chain", Source: `
			class A { m() -> "A" }
			class B : A { m() -> "B" + super.m() }
			class C : B { m() -> "C" + super.m() }
			print(C().m())`, Stdout: "CBA"},
		{Name: "init returns this", Source: `
			class A { init() { this.v = 1; return } }
			var a = A()
			print(a.init() == a)`, Stdout: "true"},
		{Name: "init arity", Source: `class A { init(x) {} } A()`, Err: "Expected 1 arguments but got 0."},
		{Name: "inherited init", Source: `class A { init(x) { this.x = x } } class B : A {} print(B(5).x)`, Stdout: "5"},
		{Name: "bound method", Source: `
			class A { init() { this.v = "v" } m() -> this.v }
			var m = A().m
			print(m())`, Stdout: "v"},
		{Name: "static", Source: `
			class M { static square(x) -> x * x }
			print(M.square(3))`, Stdout: "9"},
		{Name: "static inheritance", Source: `
			class A { static fun make() -> "A.make" }
			class B : A {}
			print(B.make())`, Stdout: "A.make"},
		{Name: "super in static", Source: `
			class A { static fun name() -> "A" }
			class B : A { static fun name() -> super.name() + "B" }
			print(B.name())`, Stdout: "AB"},
		{Name: "this in static", Source: `
			class A { static fun self() -> this }
			print(A.self())`, Stdout: "A"},
		{Name: "compound field", Source: `
			class C { init() { this.n = 1; this.xs = [] } }
			var c = C()
			c.n += 4
			c.xs += [c.n]
			print(c.n); print(c.xs)`, Stdout: "5[5]"},
		{Name: "field shadows method", Source: `
			class A { m() -> "method" }
			var a = A()
			a.m = fun () -> "field"
			print(a.m())`, Stdout: "field"},
		{Name: "undefined property", Source: `class A {} A().x`, Err: "Undefined property 'x'."},
		{Name: "property of number", Source: `var n = 1; n.x`, Err: "Only instances have properties."},
		{Name: "set on number", Source: `var n = 1; n.x = 2`, Err: "Only instances have fields."},
		{Name: "superclass not class", Source: `var A = 1; class B : A {}`, Err: "Superclass must be a class."},
	})
}

func TestStaticErrors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
	}{
		{"return at top level", `print("x"); return 1`, "Can't return from top-level code."},
		{"break outside loop", `print("x"); break`, "Can't use 'break' outside of a loop or switch."},
		{"this outside class", `print(this)`, "Can't use 'this' outside of a class."},
		{"self initializer", `{ var a = 1; { var a = a } }`, "Can't read local variable in its own initializer."},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			it, out := newInterpreter(t)
			err := it.RunString("test", test.source)
			require.Error(t, err)
			assert.True(t, interp.IsResolveError(err))
			assert.Contains(t, err.Error(), test.message)
			assert.Equal(t, interp.ExitDataErr, interp.ExitCode(err))
			assert.Empty(t, out.String(), "no statement may run")
		})
	}

	it, out := newInterpreter(t)
	err := it.RunString("test", `print("x"); var = 1`)
	require.Error(t, err)
	assert.True(t, interp.IsParseError(err))
	assert.Equal(t, interp.ExitDataErr, interp.ExitCode(err))
	assert.Empty(t, out.String())
}

func TestRuntimeError(t *testing.T) {
	it, out := newInterpreter(t)
	err := it.RunString("test", "fun inner() {\n  return 1 + nil\n}\nfun outer() -> inner()\nprint(\"before\")\nouter()\n")
	require.Error(t, err)
	assert.Equal(t, "before", out.String())
	assert.Equal(t, "Operands must be two numbers or two strings.\n[line 2]", err.Error())
	assert.Equal(t, interp.ExitSoftware, interp.ExitCode(err))

	rerr, ok := interp.AsRuntimeError(err)
	require.True(t, ok)
	assert.Equal(t, "inner", rerr.FunName())
	assert.Equal(t, 2, rerr.Stack.Len())

	var buf bytes.Buffer
	_, err = rerr.WriteTrace(&buf)
	require.NoError(t, err)
	trace := buf.String()
	assert.True(t, strings.HasPrefix(trace, "Operands must be two numbers or two strings.\n[line 2]\nStack Trace [2 frames -- entrypoint last]:\n"), trace)
	assert.Contains(t, trace, "height 1: ")
	assert.Contains(t, trace, "inner")
	assert.Contains(t, trace, "outer")
}

func TestNativeError(t *testing.T) {
	fail := &interp.Native{
		Name:   "fail",
		Params: []string{"msg"},
		Fn: func(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
			return nil, errors.New(interp.Stringify(args[0]))
		},
	}
	it, _ := newInterpreter(t, interp.WithNatives(fail))
	err := it.RunString("test", "\n\nfail(\"boom\")")
	require.Error(t, err)
	assert.Equal(t, "boom\n[line 3]", err.Error())
	rerr, ok := interp.AsRuntimeError(err)
	require.True(t, ok)
	assert.EqualError(t, rerr.Err, "boom")
}

func TestMaxCallDepth(t *testing.T) {
	it, _ := newInterpreter(t, interp.WithMaxCallDepth(50))
	err := it.RunString("test", `fun down(n) { if (n > 0) down(n - 1) } down(48)`)
	require.NoError(t, err)
	err = it.RunString("test2", `down(60)`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stack overflow: maximum call depth 50 exceeded")
	var overflow *interp.StackOverflowError
	assert.ErrorAs(t, err, &overflow)
	assert.Equal(t, 0, it.Stack.Len(), "stack unwinds after error")

	_, err = interp.New(interp.WithMaxCallDepth(-1))
	assert.Error(t, err)
}

func TestRedefineGlobals(t *testing.T) {
	it, out := newInterpreter(t, interp.WithRedefineGlobals())
	require.NoError(t, it.RunString("1", `val a = 1`))
	require.NoError(t, it.RunString("2", `var a = 2; a = 3; print(a)`))
	assert.Equal(t, "3", out.String())
	require.NoError(t, it.RunString("3", `fun a() -> "f"; print(a())`))
	assert.Equal(t, "3f", out.String())

	err := it.RunString("4", `{ var b = 1; var b = 2 }`)
	require.Error(t, err)
	assert.True(t, interp.IsResolveError(err), "local redeclaration is still an error")
}

func TestInterpretInteractive(t *testing.T) {
	it, out := newInterpreter(t, interp.WithRedefineGlobals())
	var echoed []string
	echo := func(v interp.Value) { echoed = append(echoed, interp.Stringify(v)) }
	for _, line := range []string{`var x = 2`, `x * 21`, `print("p")`, `"s"`} {
		stmts, err := parseAndResolve(it, line)
		require.NoError(t, err)
		require.NoError(t, it.InterpretInteractive(stmts, echo))
	}
	assert.Equal(t, []string{"42", "nil", "s"}, echoed)
	assert.Equal(t, "p", out.String())
}

func TestImport(t *testing.T) {
	fsys := fstest.MapFS{
		"lib/math.qan":   {Data: []byte(`println("loading math"); fun square(x) -> x * x; import "helper"`)},
		"lib/helper.qan": {Data: []byte(`val helperLoaded = true`)},
		"main.qanun":     {Data: []byte(`fun main() -> "main"`)},
	}
	it, out := newInterpreter(t, interp.WithLoader(&interp.FSysLoader{FS: fsys}))
	err := it.RunString("test", `
		import "lib/math"
		import "lib/math.qan"
		import "main"
		print(square(4)); print(helperLoaded); print(main())`)
	require.NoError(t, err)
	assert.Equal(t, "loading math\n16truemain", out.String())

	err = it.RunString("test", "\nimport \"nothing\"")
	require.Error(t, err)
	assert.Equal(t, "Module \"nothing\" doesn't exist.\n[line 2]", err.Error())

	err = it.RunString("test", `import 3`)
	assert.ErrorContains(t, err, "Import path must be a string.")
}

func TestImportBuiltin(t *testing.T) {
	mod := &interp.Module{Name: "Answers", Members: map[string]interp.Value{"everything": interp.Number(42)}}
	it, out := newInterpreter(t, interp.WithModules(mod))
	require.NoError(t, it.RunString("test", `import "Answers"; import "Answers"; print(Answers.everything)`))
	assert.Equal(t, "42", out.String())
	assert.ErrorContains(t, it.RunString("test", `Answers = 1`), "Can't reassign constant 'Answers'.")

	it, _ = newInterpreter(t)
	assert.ErrorContains(t, it.RunString("test", `import "Answers"`), `Module "Answers" doesn't exist.`)
}

func TestImportErrors(t *testing.T) {
	fsys := fstest.MapFS{
		"bad.qan":     {Data: []byte(`var = 1`)},
		"runtime.qan": {Data: []byte(`1 / 0`)},
	}
	it, _ := newInterpreter(t, interp.WithLoader(&interp.FSysLoader{FS: fsys}))
	err := it.RunString("test", `import "bad"`)
	assert.True(t, interp.IsParseError(err))
	err = it.RunString("test", `import "runtime"`)
	assert.ErrorContains(t, err, "division by zero")
}

func TestContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	it, out := newInterpreter(t, interp.WithContext(ctx))
	err := it.RunString("test", `print("x")`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "execution cancelled: context canceled")
	assert.Empty(t, out.String())
}

func TestCall(t *testing.T) {
	it, _ := newInterpreter(t)
	require.NoError(t, it.RunString("test", `fun add(a, b) -> a + b`))
	fn, ok := it.Globals().Get("add")
	require.True(t, ok)
	v, err := it.Call(fn, interp.Number(1), interp.Number(2))
	require.NoError(t, err)
	assert.Equal(t, interp.Number(3), v)

	_, err = it.Call(interp.Number(1))
	assert.ErrorContains(t, err, "Can only call functions and classes.")
}

func TestEval(t *testing.T) {
	it, _ := newInterpreter(t)
	require.NoError(t, it.RunString("test", `var g = 10`))
	env := interp.NewEnv(it.Globals())
	require.NoError(t, env.Define("x", interp.Number(2)))
	inner := interp.NewEnv(env)
	require.NoError(t, inner.Define("y", interp.Number(3)))

	v, err := it.Eval(inner, `x * y + g`)
	require.NoError(t, err)
	assert.Equal(t, interp.Number(16), v)

	v, err = it.Eval(inner, `x = 5`)
	require.NoError(t, err)
	assert.Equal(t, interp.Number(5), v)
	got, _ := env.Get("x")
	assert.Equal(t, interp.Number(5), got)

	_, err = it.Eval(inner, `(`)
	assert.True(t, interp.IsParseError(err))
}

func TestExternalSymbols(t *testing.T) {
	it, _ := newInterpreter(t)
	require.NoError(t, it.RunString("test", `import "Time"; fun f(a) {} class C {} val k = 1; var v = 2`))
	kinds := make(map[string]string)
	for _, sym := range it.ExternalSymbols() {
		kinds[sym.Name] = sym.Kind.String()
	}
	for name, kind := range map[string]string{
		"f": "function", "C": "class", "Time": "module", "k": "constant", "v": "variable", "print": "builtin",
	} {
		assert.Equal(t, kind, kinds[name], name)
	}
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, interp.ExitCode(nil))
	assert.Equal(t, interp.ExitSoftware, interp.ExitCode(errors.New("x")))
}
