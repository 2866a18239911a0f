// Copyright © 2024 The Qanun authors

// Package ast defines the syntax tree produced by the Qanun parser.
//
// Expressions and statements are two closed families of nodes.  Both
// interfaces carry an unexported marker method so that only this package can
// add variants, and consumers (the resolver, the interpreter, the printer)
// dispatch with exhaustive type switches.
//
//	Expr
//	├── Literal, Variable, Grouping, ListLiteral, FunctionLit
//	├── Assign, Set, ListMutator          (assignment forms)
//	├── Unary, Binary, Logical, Ternary   (operators)
//	├── Call, Get, ListAccessor           (postfix chain)
//	└── This, Super
//	Stmt
//	├── Expression, Var, Val, Function, Class, Import
//	├── Block, If, While, For, ForEach, Switch
//	└── Return, Break, Continue
//
// Nodes are always handled by pointer.  The resolver annotates expression
// nodes by identity, so a tree must not be copied between resolution and
// evaluation.
package ast

import "github.com/luthersystems/qanun/parser/token"

// Node is implemented by every syntax tree node.
type Node interface {
	// Pos returns the location of the token that best identifies the node
	// in error messages.
	Pos() *token.Location
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

func loc(tok *token.Token) *token.Location {
	if tok == nil {
		return nil
	}
	return tok.Source
}
