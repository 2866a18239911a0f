// Copyright © 2024 The Qanun authors

// Package astutil provides shared syntax tree walking utilities.
//
// These helpers are used by the interpreter, the language server and the
// REPL for traversing parsed Qanun programs.
package astutil

import (
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// Walk calls fn for every node in the tree, depth-first, in source order.
// parent is nil for top-level statements.
func Walk(stmts []ast.Stmt, fn func(node ast.Node, parent ast.Node, depth int)) {
	for _, stmt := range stmts {
		walkNode(stmt, nil, 0, fn)
	}
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range Children(node) {
		walkNode(child, node, depth+1, fn)
	}
}

// Inspect traverses the tree rooted at node depth-first.  If fn returns
// false the children of the node are skipped.
func Inspect(node ast.Node, fn func(ast.Node) bool) {
	if node == nil || !fn(node) {
		return
	}
	for _, child := range Children(node) {
		Inspect(child, fn)
	}
}

// Children returns the direct child nodes of node in source order.
func Children(node ast.Node) []ast.Node {
	var out []ast.Node
	add := func(nodes ...ast.Node) {
		for _, n := range nodes {
			if n != nil {
				out = append(out, n)
			}
		}
	}
	switch n := node.(type) {
	case *ast.Assign:
		add(n.Value)
	case *ast.Unary:
		add(n.Right)
	case *ast.Binary:
		add(n.Left, n.Right)
	case *ast.Logical:
		add(n.Left, n.Right)
	case *ast.Ternary:
		add(n.Cond, n.Then, n.Else)
	case *ast.Grouping:
		add(n.Expr)
	case *ast.Call:
		add(n.Callee)
		for _, arg := range n.Args {
			add(arg)
		}
	case *ast.Get:
		add(n.Object)
	case *ast.Set:
		add(n.Object, n.Value)
	case *ast.ListLiteral:
		for _, e := range n.Elements {
			add(e)
		}
	case *ast.ListAccessor:
		add(n.Object, n.Index)
	case *ast.ListMutator:
		add(n.Object, n.Index, n.Value)
	case *ast.FunctionLit:
		for _, s := range n.Body {
			add(s)
		}
	case *ast.Block:
		for _, s := range n.Stmts {
			add(s)
		}
	case *ast.Expression:
		add(n.Expr)
	case *ast.Var:
		add(n.Init)
	case *ast.Val:
		add(n.Init)
	case *ast.Function:
		add(n.Fn)
	case *ast.Class:
		if n.Superclass != nil {
			add(n.Superclass)
		}
		for _, m := range n.Methods {
			add(m)
		}
		for _, m := range n.StaticMethods {
			add(m)
		}
	case *ast.If:
		add(n.Cond, n.Then, n.Else)
	case *ast.While:
		add(n.Cond, n.Body)
	case *ast.For:
		add(n.Cond, n.Increment, n.Body)
	case *ast.ForEach:
		add(n.Iterable, n.Body)
	case *ast.Return:
		add(n.Value)
	case *ast.Switch:
		add(n.Subject)
		for _, c := range n.Cases {
			add(c.Value)
			for _, s := range c.Body {
				add(s)
			}
		}
		if n.Default != nil {
			for _, s := range n.Default.Body {
				add(s)
			}
		}
	case *ast.Import:
		add(n.Path)
	}
	return out
}

// Declarations returns the names declared at the top level of stmts, in
// source order.
func Declarations(stmts []ast.Stmt) []*token.Token {
	var names []*token.Token
	for _, stmt := range stmts {
		switch s := stmt.(type) {
		case *ast.Var:
			names = append(names, s.Name)
		case *ast.Val:
			names = append(names, s.Name)
		case *ast.Function:
			names = append(names, s.Name)
		case *ast.Class:
			names = append(names, s.Name)
		}
	}
	return names
}

// UserDefined returns the set of every name declared anywhere in stmts:
// variables, constants, functions, classes, methods and parameters.  The
// result is not scope-aware.
func UserDefined(stmts []ast.Stmt) map[string]bool {
	defs := make(map[string]bool)
	Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		switch n := node.(type) {
		case *ast.Var:
			defs[n.Name.Text] = true
		case *ast.Val:
			defs[n.Name.Text] = true
		case *ast.Function:
			defs[n.Name.Text] = true
		case *ast.Class:
			defs[n.Name.Text] = true
		case *ast.ForEach:
			defs[n.Name.Text] = true
		case *ast.FunctionLit:
			for _, p := range n.Params {
				defs[p.Text] = true
			}
		}
	})
	return defs
}

// StatementLines returns the set of source lines on which a statement
// begins.  A debugger uses it to verify breakpoint locations.
func StatementLines(stmts []ast.Stmt) map[int]bool {
	lines := make(map[int]bool)
	Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		if _, ok := node.(ast.Stmt); !ok {
			return
		}
		if loc := node.Pos(); loc != nil && loc.Line > 0 {
			lines[loc.Line] = true
		}
	})
	return lines
}

// IdentAt returns the identifier token that covers the 1-based line and
// column, or nil.  Declaration names, parameters and references are all
// considered.
func IdentAt(stmts []ast.Stmt, line, col int) *token.Token {
	var found *token.Token
	check := func(tok *token.Token) {
		if tok == nil || tok.Source == nil || tok.Source.Line != line {
			return
		}
		start := tok.Source.Col
		if col >= start && col < start+len(tok.Text) {
			found = tok
		}
	}
	Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		switch n := node.(type) {
		case *ast.Variable:
			check(n.Name)
		case *ast.Assign:
			check(n.Name)
		case *ast.Get:
			check(n.Name)
		case *ast.Set:
			check(n.Name)
		case *ast.Super:
			check(n.Method)
		case *ast.Var:
			check(n.Name)
		case *ast.Val:
			check(n.Name)
		case *ast.Function:
			check(n.Name)
		case *ast.Class:
			check(n.Name)
		case *ast.ForEach:
			check(n.Name)
		case *ast.FunctionLit:
			for _, p := range n.Params {
				check(p)
			}
		}
	})
	return found
}
