// Copyright © 2024 The Qanun authors

package interp

import (
	"errors"
	"fmt"

	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

type ctlKind int

const (
	ctlNormal ctlKind = iota
	ctlReturn
	ctlBreak
	ctlContinue
)

// control reports how execution left a statement.  value is set for
// ctlReturn.
type control struct {
	kind  ctlKind
	value Value
}

var normal = control{}

func (it *Interpreter) checkContext(stmt ast.Stmt) error {
	if it.ctx == nil {
		return nil
	}
	select {
	case <-it.ctx.Done():
		return it.errorf(&token.Token{Source: stmt.Pos()}, "execution cancelled: %v", it.ctx.Err())
	default:
		return nil
	}
}

func (it *Interpreter) hook(stmt ast.Stmt) {
	it.stmt = stmt
	if d := it.debugger; d != nil && d.IsEnabled() {
		if d.OnStatement(it, it.env, stmt) {
			d.WaitIfPaused(it, it.env, stmt)
		}
	}
}

// executeBlock runs stmts in env and restores the current environment
// afterwards.
func (it *Interpreter) executeBlock(stmts []ast.Stmt, env *Env) (control, error) {
	prev := it.env
	it.env = env
	defer func() { it.env = prev }()
	for _, stmt := range stmts {
		ctl, err := it.exec(stmt)
		if err != nil || ctl.kind != ctlNormal {
			return ctl, err
		}
	}
	return normal, nil
}

func (it *Interpreter) exec(stmt ast.Stmt) (control, error) {
	if err := it.checkContext(stmt); err != nil {
		return normal, err
	}
	it.hook(stmt)

	switch s := stmt.(type) {
	case *ast.Expression:
		_, err := it.eval(s.Expr)
		return normal, err
	case *ast.Var:
		v := Nil
		if s.Init != nil {
			var err error
			if v, err = it.eval(s.Init); err != nil {
				return normal, err
			}
		}
		return normal, it.declare(s.Name, v, false)
	case *ast.Val:
		v, err := it.eval(s.Init)
		if err != nil {
			return normal, err
		}
		return normal, it.declare(s.Name, v, true)
	case *ast.Function:
		fn := &Function{Name: s.Name.Text, Decl: s.Fn, Closure: it.env}
		return normal, it.declare(s.Name, fn, false)
	case *ast.Class:
		return normal, it.classDecl(s)
	case *ast.Block:
		return it.executeBlock(s.Stmts, NewEnv(it.env))
	case *ast.If:
		cond, err := it.eval(s.Cond)
		if err != nil {
			return normal, err
		}
		if Truthy(cond) {
			return it.exec(s.Then)
		}
		if s.Else != nil {
			return it.exec(s.Else)
		}
		return normal, nil
	case *ast.While:
		return it.loop(s.Cond, nil, s.Body)
	case *ast.For:
		return it.loop(s.Cond, s.Increment, s.Body)
	case *ast.ForEach:
		return it.forEach(s)
	case *ast.Switch:
		return it.switchStmt(s)
	case *ast.Return:
		v := Nil
		if s.Value != nil {
			var err error
			if v, err = it.eval(s.Value); err != nil {
				return normal, err
			}
		}
		return control{kind: ctlReturn, value: v}, nil
	case *ast.Break:
		return control{kind: ctlBreak}, nil
	case *ast.Continue:
		return control{kind: ctlContinue}, nil
	case *ast.Import:
		return normal, it.importStmt(s)
	}
	return normal, fmt.Errorf("unexpected statement %T", stmt)
}

// declare binds name in the current environment.  Redeclaring a global is
// an error unless the interpreter was configured to allow it.
func (it *Interpreter) declare(name *token.Token, v Value, constant bool) error {
	if it.env == it.globals && it.redefineGlobals {
		it.env.Redefine(name.Text, v, constant)
		return nil
	}
	var err error
	if constant {
		err = it.env.DefineConst(name.Text, v)
	} else {
		err = it.env.Define(name.Text, v)
	}
	if errors.Is(err, ErrRedeclared) {
		kind := "var"
		if it.env.IsConst(name.Text) {
			kind = "val"
		}
		return it.errorf(name, "Redeclaration of %s '%s'.", kind, name.Text)
	}
	return err
}

// loop runs a while loop or the loop part of a for statement.  The
// increment runs after the body completes normally or continues.
func (it *Interpreter) loop(cond, increment ast.Expr, body ast.Stmt) (control, error) {
	for {
		if cond != nil {
			v, err := it.eval(cond)
			if err != nil {
				return normal, err
			}
			if !Truthy(v) {
				return normal, nil
			}
		}
		ctl, err := it.exec(body)
		if err != nil {
			return normal, err
		}
		switch ctl.kind {
		case ctlBreak:
			return normal, nil
		case ctlReturn:
			return ctl, nil
		}
		if increment != nil {
			if _, err := it.eval(increment); err != nil {
				return normal, err
			}
		}
	}
}

func (it *Interpreter) forEach(s *ast.ForEach) (control, error) {
	iterable, err := it.eval(s.Iterable)
	if err != nil {
		return normal, err
	}
	var elems []Value
	switch v := iterable.(type) {
	case *List:
		// Snapshot so that appending to the list in the body terminates.
		elems = append([]Value(nil), v.Elems...)
	case String:
		for _, r := range string(v) {
			elems = append(elems, String(string(r)))
		}
	default:
		return normal, it.errorf(s.Keyword, "Can only iterate over lists and strings.")
	}
	for _, elem := range elems {
		env := NewEnv(it.env)
		env.vars[s.Name.Text] = elem
		ctl, err := it.executeBlock([]ast.Stmt{s.Body}, env)
		if err != nil {
			return normal, err
		}
		switch ctl.kind {
		case ctlBreak:
			return normal, nil
		case ctlReturn:
			return ctl, nil
		}
	}
	return normal, nil
}

// switchStmt runs the first arm whose value equals the subject, or the
// default arm.  Arms do not fall through and break leaves the switch.
// Continue propagates to the enclosing loop.
func (it *Interpreter) switchStmt(s *ast.Switch) (control, error) {
	subject, err := it.eval(s.Subject)
	if err != nil {
		return normal, err
	}
	arm := s.Default
	for _, c := range s.Cases {
		if Equal(subject, literal(c.Value.Value)) {
			arm = c
			break
		}
	}
	if arm == nil {
		return normal, nil
	}
	ctl, err := it.executeBlock(arm.Body, NewEnv(it.env))
	if err != nil {
		return normal, err
	}
	if ctl.kind == ctlBreak {
		return normal, nil
	}
	return ctl, nil
}

func (it *Interpreter) classDecl(s *ast.Class) error {
	var super *Class
	if s.Superclass != nil {
		v, err := it.eval(s.Superclass)
		if err != nil {
			return err
		}
		var ok bool
		if super, ok = v.(*Class); !ok {
			return it.errorf(s.Superclass.Name, "Superclass must be a class.")
		}
	}
	if err := it.declare(s.Name, Nil, false); err != nil {
		return err
	}
	declEnv := it.env

	closure := it.env
	if super != nil {
		closure = NewEnv(it.env)
		closure.vars["super"] = super
	}

	class := &Class{
		Name:    s.Name.Text,
		Super:   super,
		Methods: make(map[string]*Function, len(s.Methods)),
		Statics: make(map[string]*Function, len(s.StaticMethods)),
	}
	for _, m := range s.Methods {
		class.Methods[m.Name.Text] = &Function{
			Name:    m.Name.Text,
			Decl:    m.Fn,
			Closure: closure,
			IsInit:  m.Name.Text == "init",
			Class:   class,
		}
	}
	for _, m := range s.StaticMethods {
		class.Statics[m.Name.Text] = &Function{
			Name:    m.Name.Text,
			Decl:    m.Fn,
			Closure: closure,
			Class:   class,
		}
	}
	declEnv.set(s.Name.Text, class)
	return nil
}

func (it *Interpreter) importStmt(s *ast.Import) error {
	v, err := it.eval(s.Path)
	if err != nil {
		return err
	}
	name, ok := v.(String)
	if !ok {
		return it.errorf(s.Keyword, "Import path must be a string.")
	}
	if mod, ok := it.modules[string(name)]; ok {
		if existing, ok := it.globals.Get(mod.Name); ok && existing == Value(mod) {
			return nil
		}
		it.globals.Redefine(mod.Name, mod, true)
		return nil
	}
	if it.loader == nil {
		return it.errorf(s.Keyword, "Module \"%s\" doesn't exist.", name)
	}
	src, path, err := it.loader.Load(it.dir, string(name))
	if errors.Is(err, ErrModuleNotFound) {
		return it.errorf(s.Keyword, "Module \"%s\" doesn't exist.", name)
	}
	if err != nil {
		return it.wrapError(s.Keyword, err)
	}
	if it.loaded[path] {
		return nil
	}
	it.loaded[path] = true

	stmts, err := parser.ParseString(path, string(src))
	if err != nil {
		return err
	}
	prevDir, prevEnv := it.dir, it.env
	it.dir = dirOf(path)
	defer func() { it.dir, it.env = prevDir, prevEnv }()
	if err := it.Resolve(path, stmts); err != nil {
		return err
	}
	return it.Interpret(stmts)
}
