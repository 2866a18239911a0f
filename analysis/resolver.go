// Copyright © 2024 The Qanun authors

package analysis

import (
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

type functionKind int

const (
	fnNone functionKind = iota
	fnFunction
	fnMethod
	fnInitializer
)

type classKind int

const (
	classNone classKind = iota
	classPlain
	classSub
)

// resolver is the internal state for a single resolution pass.
type resolver struct {
	root   *Scope
	scope  *Scope
	result *Result

	fn          functionKind
	class       classKind
	loopDepth   int
	switchDepth int
}

func (r *resolver) errorf(tok *token.Token, msg string) {
	r.result.Errors.Add(tok, msg)
}

func (r *resolver) prescan(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Function:
			r.prescanDecl(s.Name, SymFunction, s).Signature = signatureOf(s.Fn)
		case *ast.Class:
			sym := r.prescanDecl(s.Name, SymClass, s)
			for _, m := range s.Methods {
				if m.Name.Text == "init" {
					sym.Signature = signatureOf(m.Fn)
				}
			}
		case *ast.Var:
			r.prescanDecl(s.Name, SymVariable, s)
		case *ast.Val:
			r.prescanDecl(s.Name, SymConstant, s)
		}
	}
}

func (r *resolver) prescanDecl(name *token.Token, kind SymbolKind, node ast.Node) *Symbol {
	if sym := r.root.LookupLocal(name.Text); sym != nil && !sym.External {
		return sym
	}
	sym := &Symbol{
		Name:    name.Text,
		Kind:    kind,
		Source:  name.Source,
		Node:    node,
		Defined: true,
	}
	r.root.Define(sym)
	r.result.Symbols = append(r.result.Symbols, sym)
	return sym
}

func (r *resolver) push(kind ScopeKind, node ast.Node) *Scope {
	r.scope = NewScope(kind, r.scope, node)
	return r.scope
}

func (r *resolver) pop() {
	r.scope = r.scope.Parent
}

// declare adds name to the current scope in the not yet defined state.
// Globals may be redeclared; that is checked when the program runs.
func (r *resolver) declare(name *token.Token, kind SymbolKind, node ast.Node) *Symbol {
	if r.scope == r.root {
		sym := r.root.LookupLocal(name.Text)
		if sym == nil || sym.External {
			sym = r.prescanDecl(name, kind, node)
		}
		return sym
	}
	if r.scope.LookupLocal(name.Text) != nil {
		r.errorf(name, "Already variable/constant with the same name is in this scope.")
	}
	sym := &Symbol{
		Name:   name.Text,
		Kind:   kind,
		Source: name.Source,
		Node:   node,
	}
	r.scope.Define(sym)
	r.result.Symbols = append(r.result.Symbols, sym)
	return sym
}

func (r *resolver) define(sym *Symbol) {
	sym.Defined = true
}

// bind declares an implicit name such as this or super.
func (r *resolver) bind(name string) {
	r.scope.Define(&Symbol{Name: name, Kind: SymParameter, Defined: true})
}

// local records the depth of a reference to name.  References that reach
// the global scope are left unrecorded and looked up by name at runtime.
func (r *resolver) local(expr ast.Expr, name *token.Token) {
	sym, depth := r.scope.lookupDepth(name.Text)
	if sym == nil {
		r.result.Unresolved = append(r.result.Unresolved, &UnresolvedRef{
			Name:   name.Text,
			Source: name.Source,
			Node:   expr,
		})
		return
	}
	sym.References++
	r.result.References = append(r.result.References, &Reference{
		Symbol: sym,
		Source: name.Source,
		Node:   expr,
	})
	if sym.Scope != r.root {
		r.result.Locals[expr] = depth
	}
}

func (r *resolver) stmts(stmts []ast.Stmt) {
	for _, stmt := range stmts {
		r.stmt(stmt)
	}
}

func (r *resolver) block(node ast.Node, stmts []ast.Stmt) {
	r.push(ScopeBlock, node)
	r.stmts(stmts)
	r.pop()
}

func (r *resolver) loopBody(body ast.Stmt) {
	r.loopDepth++
	r.stmt(body)
	r.loopDepth--
}

func (r *resolver) stmt(stmt ast.Stmt) {
	switch s := stmt.(type) {
	case *ast.Block:
		r.block(s, s.Stmts)
	case *ast.Expression:
		r.expr(s.Expr)
	case *ast.Var:
		sym := r.declare(s.Name, SymVariable, s)
		if s.Init != nil {
			r.expr(s.Init)
		}
		r.define(sym)
	case *ast.Val:
		sym := r.declare(s.Name, SymConstant, s)
		r.expr(s.Init)
		r.define(sym)
	case *ast.Function:
		sym := r.declare(s.Name, SymFunction, s)
		sym.Signature = signatureOf(s.Fn)
		r.define(sym)
		r.function(s.Fn, fnFunction)
	case *ast.Class:
		r.classDecl(s)
	case *ast.If:
		r.expr(s.Cond)
		r.stmt(s.Then)
		if s.Else != nil {
			r.stmt(s.Else)
		}
	case *ast.While:
		r.expr(s.Cond)
		r.loopBody(s.Body)
	case *ast.For:
		if s.Cond != nil {
			r.expr(s.Cond)
		}
		if s.Increment != nil {
			r.expr(s.Increment)
		}
		r.loopBody(s.Body)
	case *ast.ForEach:
		r.expr(s.Iterable)
		r.push(ScopeLoop, s)
		r.define(r.declare(s.Name, SymParameter, s))
		r.loopBody(s.Body)
		r.pop()
	case *ast.Return:
		if r.fn == fnNone {
			r.errorf(s.Keyword, "Can't return from top-level code.")
		}
		if s.Value != nil {
			if r.fn == fnInitializer {
				r.errorf(s.Keyword, "Can't return a value from an initializer.")
			}
			r.expr(s.Value)
		}
	case *ast.Break:
		if r.loopDepth == 0 && r.switchDepth == 0 {
			r.errorf(s.Keyword, "Can't use 'break' outside of a loop or switch.")
		}
	case *ast.Continue:
		if r.loopDepth == 0 {
			r.errorf(s.Keyword, "Can't use 'continue' outside of a loop.")
		}
	case *ast.Switch:
		r.expr(s.Subject)
		r.switchDepth++
		for _, c := range s.Cases {
			r.block(c, c.Body)
		}
		if s.Default != nil {
			r.block(s.Default, s.Default.Body)
		}
		r.switchDepth--
	case *ast.Import:
		r.expr(s.Path)
	}
}

func (r *resolver) classDecl(s *ast.Class) {
	enclosing := r.class
	r.class = classPlain
	r.define(r.declare(s.Name, SymClass, s))

	if s.Superclass != nil {
		if s.Superclass.Name.Text == s.Name.Text {
			r.errorf(s.Superclass.Name, "A class can't inherit from itself.")
		}
		r.class = classSub
		r.expr(s.Superclass)
		r.push(ScopeSuper, s)
		r.bind("super")
	}

	classScope := r.push(ScopeClass, s)
	r.bind("this")
	methods := func(fns []*ast.Function, static bool) {
		for _, m := range fns {
			kind := fnMethod
			if !static && m.Name.Text == "init" {
				kind = fnInitializer
			}
			r.result.Symbols = append(r.result.Symbols, &Symbol{
				Name:      m.Name.Text,
				Kind:      SymMethod,
				Source:    m.Name.Source,
				Scope:     classScope,
				Signature: signatureOf(m.Fn),
				Node:      m,
				Defined:   true,
			})
			r.function(m.Fn, kind)
		}
	}
	methods(s.Methods, false)
	methods(s.StaticMethods, true)
	r.pop()

	if s.Superclass != nil {
		r.pop()
	}
	r.class = enclosing
}

func (r *resolver) function(fn *ast.FunctionLit, kind functionKind) {
	enclosing, loops, switches := r.fn, r.loopDepth, r.switchDepth
	r.fn, r.loopDepth, r.switchDepth = kind, 0, 0

	r.push(ScopeFunction, fn)
	for _, param := range fn.Params {
		r.define(r.declare(param, SymParameter, fn))
	}
	r.stmts(fn.Body)
	r.pop()

	r.fn, r.loopDepth, r.switchDepth = enclosing, loops, switches
}

func (r *resolver) exprs(exprs []ast.Expr) {
	for _, e := range exprs {
		r.expr(e)
	}
}

func (r *resolver) expr(expr ast.Expr) {
	switch e := expr.(type) {
	case *ast.Literal:
	case *ast.Variable:
		if r.scope != r.root {
			if sym := r.scope.LookupLocal(e.Name.Text); sym != nil && !sym.Defined {
				r.errorf(e.Name, "Can't read local variable in its own initializer.")
			}
		}
		r.local(e, e.Name)
	case *ast.Assign:
		r.expr(e.Value)
		r.local(e, e.Name)
	case *ast.Unary:
		r.expr(e.Right)
	case *ast.Binary:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.Logical:
		r.expr(e.Left)
		r.expr(e.Right)
	case *ast.Ternary:
		r.expr(e.Cond)
		r.expr(e.Then)
		r.expr(e.Else)
	case *ast.Grouping:
		r.expr(e.Expr)
	case *ast.Call:
		r.expr(e.Callee)
		r.exprs(e.Args)
	case *ast.Get:
		r.expr(e.Object)
	case *ast.Set:
		r.expr(e.Value)
		r.expr(e.Object)
	case *ast.ListLiteral:
		r.exprs(e.Elements)
	case *ast.ListAccessor:
		r.expr(e.Object)
		r.expr(e.Index)
	case *ast.ListMutator:
		r.expr(e.Object)
		r.expr(e.Index)
		r.expr(e.Value)
	case *ast.FunctionLit:
		r.function(e, fnFunction)
	case *ast.This:
		if r.class == classNone {
			r.errorf(e.Keyword, "Can't use 'this' outside of a class.")
			return
		}
		r.local(e, e.Keyword)
	case *ast.Super:
		switch r.class {
		case classNone:
			r.errorf(e.Keyword, "Can't use 'super' outside of a class.")
			return
		case classPlain:
			r.errorf(e.Keyword, "Can't use 'super' in a class with no superclass.")
			return
		}
		r.local(e, e.Keyword)
	}
}
