// Copyright © 2024 The Qanun authors

package analysis

import (
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// Reference records a resolved symbol usage.
type Reference struct {
	Symbol *Symbol
	Source *token.Location
	Node   ast.Expr
}

// UnresolvedRef records a global name that no declaration in the program or
// its configured globals defines.  It may still be defined at runtime by an
// imported module.
type UnresolvedRef struct {
	Name   string
	Source *token.Location
	Node   ast.Expr
}
