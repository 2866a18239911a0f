// Copyright © 2024 The Qanun authors

package lint

import (
	"github.com/luthersystems/qanun/astutil"
	"github.com/luthersystems/qanun/parser/ast"
)

// WalkStmtLists calls fn for the top-level statement list and for every
// nested statement sequence: block bodies, function bodies and switch arms.
func WalkStmtLists(stmts []ast.Stmt, fn func(list []ast.Stmt)) {
	fn(stmts)
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		switch n := node.(type) {
		case *ast.Block:
			fn(n.Stmts)
		case *ast.FunctionLit:
			fn(n.Body)
		case *ast.Switch:
			for _, c := range n.Cases {
				fn(c.Body)
			}
			if n.Default != nil {
				fn(n.Default.Body)
			}
		}
	})
}

// WalkCalls calls fn for every call expression in the tree.
func WalkCalls(stmts []ast.Stmt, fn func(call *ast.Call)) {
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		if call, ok := node.(*ast.Call); ok {
			fn(call)
		}
	})
}

// importedNames returns the built-in modules imported by a literal path
// anywhere in stmts.  open reports whether some import may bind names that
// cannot be known statically: a file module or a computed path.
func importedNames(stmts []ast.Stmt, modules map[string]bool) (names map[string]bool, open bool) {
	names = make(map[string]bool)
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		imp, ok := node.(*ast.Import)
		if !ok {
			return
		}
		lit, ok := imp.Path.(*ast.Literal)
		if !ok {
			open = true
			return
		}
		path, ok := lit.Value.(string)
		if !ok || !modules[path] {
			open = true
			return
		}
		names[path] = true
	})
	return names, open
}

// WalkAssigns calls fn for every variable assignment in the tree.
func WalkAssigns(stmts []ast.Stmt, fn func(assign *ast.Assign)) {
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		if a, ok := node.(*ast.Assign); ok {
			fn(a)
		}
	})
}
