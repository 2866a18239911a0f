// Copyright © 2024 The Qanun authors

// Package interp evaluates resolved Qanun programs.
//
// An Interpreter walks the syntax tree directly.  Statements execute for
// effect and report how control leaves them (normally, or by return, break
// or continue); expressions evaluate to a Value.  Local variables are
// addressed by the depths the analysis package records for each reference,
// and globals are looked up by name.
//
// A typical driver parses source, resolves it, and then interprets it:
//
//	it, err := interp.New(natives.Config())
//	if err != nil { ... }
//	err = it.RunString("main", src)
//
// RunString and RunFile perform all three steps.  Syntax errors are returned
// as rdparser.ErrorList, resolution errors as analysis.ErrorList and runtime
// errors as *RuntimeError.
package interp

import (
	"bufio"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/astutil"
	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/rdparser"
)

// Interpreter holds the state of one program run.  An Interpreter is not
// safe for concurrent use.
type Interpreter struct {
	// Stack is the call stack of the running program.
	Stack *CallStack

	globals *Env
	env     *Env
	locals  map[ast.Expr]int

	stdout io.Writer
	stderr io.Writer
	stdin  *bufio.Reader

	loader  Loader
	modules map[string]*Module
	loaded  map[string]bool
	dir     string

	debugger Debugger
	profiler Profiler
	ctx      context.Context
	stmt     ast.Stmt

	redefineGlobals bool
}

// New returns an Interpreter configured by configs.
func New(configs ...Config) (*Interpreter, error) {
	globals := NewEnv(nil)
	it := &Interpreter{
		Stack:   &CallStack{MaxHeight: DefaultMaxCallDepth},
		globals: globals,
		env:     globals,
		locals:  make(map[ast.Expr]int),
		stdout:  os.Stdout,
		stderr:  os.Stderr,
		stdin:   bufio.NewReader(os.Stdin),
		modules: make(map[string]*Module),
		loaded:  make(map[string]bool),
	}
	for _, config := range configs {
		if err := config(it); err != nil {
			return nil, err
		}
	}
	return it, nil
}

// Globals returns the global environment.
func (it *Interpreter) Globals() *Env { return it.globals }

// Stdout returns the writer program output is written to.
func (it *Interpreter) Stdout() io.Writer { return it.stdout }

// Stderr returns the writer diagnostics are written to.
func (it *Interpreter) Stderr() io.Writer { return it.stderr }

// Stdin returns the reader the input natives consume.
func (it *Interpreter) Stdin() *bufio.Reader { return it.stdin }

// Context returns the context governing evaluation.
func (it *Interpreter) Context() context.Context {
	if it.ctx == nil {
		return context.Background()
	}
	return it.ctx
}

// Profiler returns the attached profiler, or nil.
func (it *Interpreter) Profiler() Profiler { return it.profiler }

// DefineNative binds n as a global, replacing any existing global with the
// same name.
func (it *Interpreter) DefineNative(n *Native) {
	it.globals.Redefine(n.Name, n, false)
}

// RegisterModule makes m importable by name.
func (it *Interpreter) RegisterModule(m *Module) {
	it.modules[m.Name] = m
}

// Module returns the built-in module registered as name.
func (it *Interpreter) Module(name string) (*Module, bool) {
	m, ok := it.modules[name]
	return m, ok
}

// Modules returns the registered built-in modules ordered by name.
func (it *Interpreter) Modules() []*Module {
	mods := make([]*Module, 0, len(it.modules))
	for _, m := range it.modules {
		mods = append(mods, m)
	}
	sort.Slice(mods, func(i, j int) bool { return mods[i].Name < mods[j].Name })
	return mods
}

// Natives returns the native functions bound in the global environment,
// ordered by name.
func (it *Interpreter) Natives() []*Native {
	var natives []*Native
	for _, name := range it.globals.Names() {
		v, _ := it.globals.Get(name)
		if n, ok := v.(*Native); ok {
			natives = append(natives, n)
		}
	}
	return natives
}

// ExternalSymbols describes the current globals for the resolver.
func (it *Interpreter) ExternalSymbols() []analysis.ExternalSymbol {
	var syms []analysis.ExternalSymbol
	for _, name := range it.globals.Names() {
		v, _ := it.globals.Get(name)
		sym := analysis.ExternalSymbol{Name: name, Kind: analysis.SymVariable}
		switch v := v.(type) {
		case *Native:
			sym.Kind = analysis.SymBuiltin
			sym.Signature = &analysis.Signature{Params: v.Params}
			sym.DocString = v.Doc
		case *Function:
			sym.Kind = analysis.SymFunction
			sym.Signature = &analysis.Signature{Params: paramNames(v.Decl)}
		case *Class:
			sym.Kind = analysis.SymClass
		case *Module:
			sym.Kind = analysis.SymModule
			sym.DocString = v.Doc
		default:
			if it.globals.IsConst(name) {
				sym.Kind = analysis.SymConstant
			}
		}
		syms = append(syms, sym)
	}
	return syms
}

func paramNames(fn *ast.FunctionLit) []string {
	names := make([]string, len(fn.Params))
	for i, p := range fn.Params {
		names[i] = p.Text
	}
	return names
}

// Resolve runs static resolution over stmts and records the local variable
// depths for later evaluation.  Resolve returns an analysis.ErrorList when
// the program has static errors, in which case it must not be interpreted.
func (it *Interpreter) Resolve(name string, stmts []ast.Stmt) error {
	result := analysis.Resolve(stmts, &analysis.Config{
		Filename:     name,
		ExtraGlobals: it.ExternalSymbols(),
	})
	if err := result.Err(); err != nil {
		return err
	}
	for expr, depth := range result.Locals {
		it.locals[expr] = depth
	}
	return nil
}

// Interpret executes a resolved program in the global environment.  The
// first runtime error stops execution and is returned.
func (it *Interpreter) Interpret(stmts []ast.Stmt) error {
	return it.InterpretInteractive(stmts, nil)
}

// InterpretInteractive is like Interpret but passes the value of each
// top-level expression statement to echo.  A REPL uses this to print the
// values of bare expressions.
func (it *Interpreter) InterpretInteractive(stmts []ast.Stmt, echo func(Value)) error {
	it.env = it.globals
	for _, stmt := range stmts {
		if es, ok := stmt.(*ast.Expression); ok && echo != nil {
			if err := it.checkContext(stmt); err != nil {
				return err
			}
			it.hook(stmt)
			v, err := it.eval(es.Expr)
			if err != nil {
				return err
			}
			echo(v)
			continue
		}
		if _, err := it.exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// RunString parses, resolves and interprets src.  Imports are resolved
// relative to the working directory.
func (it *Interpreter) RunString(name, src string) error {
	stmts, err := parser.ParseString(name, src)
	if err != nil {
		return err
	}
	return it.run(name, "", stmts)
}

// RunFile parses, resolves and interprets the program stored at path.
// Imports are resolved relative to the directory containing path.
func (it *Interpreter) RunFile(path string) error {
	stmts, err := parser.ParseFile(path)
	if err != nil {
		return err
	}
	if abs, err := filepath.Abs(path); err == nil {
		it.loaded[abs] = true
	}
	return it.run(path, filepath.Dir(path), stmts)
}

func (it *Interpreter) run(name, dir string, stmts []ast.Stmt) error {
	if err := it.Resolve(name, stmts); err != nil {
		return err
	}
	prev := it.dir
	it.dir = dir
	defer func() { it.dir = prev }()
	return it.Interpret(stmts)
}

// Eval evaluates a single expression in env.  Names in expr are looked up
// dynamically through env's chain, so Eval works for any environment
// captured while the program runs, such as the one a debugger is paused
// in.
func (it *Interpreter) Eval(env *Env, src string) (Value, error) {
	expr, err := parser.ParseExpression("eval", src)
	if err != nil {
		return nil, err
	}
	prevEnv, prevLocals := it.env, it.locals
	it.env = env
	it.locals = dynamicLocals(env, expr)
	defer func() { it.env, it.locals = prevEnv, prevLocals }()
	return it.eval(expr)
}

// dynamicLocals computes depths for the variable references in expr by
// searching env's chain by name.
func dynamicLocals(env *Env, expr ast.Expr) map[ast.Expr]int {
	locals := make(map[ast.Expr]int)
	astutil.Inspect(expr, func(n ast.Node) bool {
		var name string
		switch n := n.(type) {
		case *ast.Variable:
			name = n.Name.Text
		case *ast.Assign:
			name = n.Name.Text
		case *ast.This:
			name = "this"
		case *ast.Super:
			name = "super"
		default:
			return true
		}
		depth := 0
		for e := env; e != nil && e.parent != nil; e = e.parent {
			if e.Has(name) {
				locals[n.(ast.Expr)] = depth
				break
			}
			depth++
		}
		return true
	})
	return locals
}

// Call invokes fn with args as if it were called from Qanun code.  Natives
// use Call to apply function arguments.
func (it *Interpreter) Call(fn Value, args ...Value) (Value, error) {
	return it.call(nil, fn, args)
}

// IsParseError reports whether err came from the lexer or parser.
func IsParseError(err error) bool {
	var el rdparser.ErrorList
	return errors.As(err, &el)
}

// IsResolveError reports whether err came from static resolution.
func IsResolveError(err error) bool {
	var el analysis.ErrorList
	return errors.As(err, &el)
}

// ExitCode returns the process exit code a driver should use for err.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case IsParseError(err), IsResolveError(err):
		return ExitDataErr
	default:
		return ExitSoftware
	}
}
