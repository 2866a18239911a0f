// Copyright © 2024 The Qanun authors

package ast

import "github.com/luthersystems/qanun/parser/token"

// Literal is a number, string, boolean or nil constant.  Value is float64,
// string, bool or nil.
type Literal struct {
	Token *token.Token
	Value any
}

// Variable is a reference to a named binding.
type Variable struct {
	Name *token.Token
}

// Assign stores a value into a named binding.  Op is the `=` token or one of
// the compound assignment operators.
type Assign struct {
	Name  *token.Token
	Op    *token.Token
	Value Expr
}

// Unary is a prefix operator (`!`, `-`, `++`, `--`) or, when Postfix is set,
// a postfix increment or decrement.
type Unary struct {
	Op      *token.Token
	Right   Expr
	Postfix bool
}

type Binary struct {
	Left  Expr
	Op    *token.Token
	Right Expr
}

// Logical is a short-circuiting `and` or `or`.
type Logical struct {
	Left  Expr
	Op    *token.Token
	Right Expr
}

// Ternary is `Cond ? Then : Else`.
type Ternary struct {
	Cond     Expr
	Question *token.Token
	Then     Expr
	Else     Expr
}

type Grouping struct {
	Paren *token.Token
	Expr  Expr
}

// Call applies Callee to Args.  Paren is the closing parenthesis and is used
// to report call errors.
type Call struct {
	Callee Expr
	Paren  *token.Token
	Args   []Expr
}

// Get reads a property of an instance, class or module.
type Get struct {
	Object Expr
	Name   *token.Token
}

// Set writes a field of an instance.
type Set struct {
	Object Expr
	Name   *token.Token
	Op     *token.Token
	Value  Expr
}

// ListLiteral is a bracketed list of element expressions.
type ListLiteral struct {
	Bracket  *token.Token
	Elements []Expr
}

// ListAccessor indexes a list or string.
type ListAccessor struct {
	Object  Expr
	Bracket *token.Token
	Index   Expr
}

// ListMutator stores into a list element.
type ListMutator struct {
	Object  Expr
	Bracket *token.Token
	Index   Expr
	Op      *token.Token
	Value   Expr
}

// FunctionLit is a parameter list and body.  It backs anonymous functions,
// named function declarations and methods alike.  Arrow bodies are stored as
// a single Return statement.
type FunctionLit struct {
	Keyword *token.Token
	Params  []*token.Token
	Body    []Stmt
}

type This struct {
	Keyword *token.Token
}

// Super is `super.Method`.
type Super struct {
	Keyword *token.Token
	Method  *token.Token
}

func (e *Literal) Pos() *token.Location      { return loc(e.Token) }
func (e *Variable) Pos() *token.Location     { return loc(e.Name) }
func (e *Assign) Pos() *token.Location       { return loc(e.Name) }
func (e *Unary) Pos() *token.Location        { return loc(e.Op) }
func (e *Binary) Pos() *token.Location       { return loc(e.Op) }
func (e *Logical) Pos() *token.Location      { return loc(e.Op) }
func (e *Ternary) Pos() *token.Location      { return loc(e.Question) }
func (e *Grouping) Pos() *token.Location     { return loc(e.Paren) }
func (e *Call) Pos() *token.Location         { return loc(e.Paren) }
func (e *Get) Pos() *token.Location          { return loc(e.Name) }
func (e *Set) Pos() *token.Location          { return loc(e.Name) }
func (e *ListLiteral) Pos() *token.Location  { return loc(e.Bracket) }
func (e *ListAccessor) Pos() *token.Location { return loc(e.Bracket) }
func (e *ListMutator) Pos() *token.Location  { return loc(e.Bracket) }
func (e *FunctionLit) Pos() *token.Location  { return loc(e.Keyword) }
func (e *This) Pos() *token.Location         { return loc(e.Keyword) }
func (e *Super) Pos() *token.Location        { return loc(e.Keyword) }

func (*Literal) exprNode()      {}
func (*Variable) exprNode()     {}
func (*Assign) exprNode()       {}
func (*Unary) exprNode()        {}
func (*Binary) exprNode()       {}
func (*Logical) exprNode()      {}
func (*Ternary) exprNode()      {}
func (*Grouping) exprNode()     {}
func (*Call) exprNode()         {}
func (*Get) exprNode()          {}
func (*Set) exprNode()          {}
func (*ListLiteral) exprNode()  {}
func (*ListAccessor) exprNode() {}
func (*ListMutator) exprNode()  {}
func (*FunctionLit) exprNode()  {}
func (*This) exprNode()         {}
func (*Super) exprNode()        {}
