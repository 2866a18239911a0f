// Copyright © 2024 The Qanun authors

package ast

import "github.com/luthersystems/qanun/parser/token"

type Block struct {
	Brace *token.Token
	Stmts []Stmt
}

// Expression evaluates Expr for its effect.
type Expression struct {
	Expr Expr
}

// Var declares a mutable binding.  Init is nil when no initializer is given.
type Var struct {
	Name *token.Token
	Init Expr
}

// Val declares a constant binding.  Init is always present.
type Val struct {
	Name *token.Token
	Init Expr
}

type Function struct {
	Name *token.Token
	Fn   *FunctionLit
}

// Class declares a class.  Superclass is nil for a root class.
type Class struct {
	Name          *token.Token
	Superclass    *Variable
	Methods       []*Function
	StaticMethods []*Function
}

type If struct {
	Keyword *token.Token
	Cond    Expr
	Then    Stmt
	Else    Stmt
}

type While struct {
	Keyword *token.Token
	Cond    Expr
	Body    Stmt
}

// For is the loop part of a classic for statement.  The initializer is
// hoisted by the parser into an enclosing Block.  Cond and Increment may be
// nil.
type For struct {
	Keyword   *token.Token
	Cond      Expr
	Increment Expr
	Body      Stmt
}

// ForEach iterates the elements of a list or the characters of a string,
// binding each to Name.
type ForEach struct {
	Keyword  *token.Token
	Name     *token.Token
	Iterable Expr
	Body     Stmt
}

type Return struct {
	Keyword *token.Token
	Value   Expr
}

type Break struct {
	Keyword *token.Token
}

type Continue struct {
	Keyword *token.Token
}

// Case is one arm of a Switch.
type Case struct {
	Keyword *token.Token
	Value   *Literal
	Body    []Stmt
}

// Switch compares Subject against each case value in order.  Default is nil
// when the statement has no default arm.
type Switch struct {
	Keyword *token.Token
	Subject Expr
	Cases   []*Case
	Default *Case
}

// Import loads a module by name.  Path must evaluate to a string.
type Import struct {
	Keyword *token.Token
	Path    Expr
}

func (s *Block) Pos() *token.Location      { return loc(s.Brace) }
func (s *Expression) Pos() *token.Location { return s.Expr.Pos() }
func (s *Var) Pos() *token.Location        { return loc(s.Name) }
func (s *Val) Pos() *token.Location        { return loc(s.Name) }
func (s *Function) Pos() *token.Location   { return loc(s.Name) }
func (s *Class) Pos() *token.Location      { return loc(s.Name) }
func (s *If) Pos() *token.Location         { return loc(s.Keyword) }
func (s *While) Pos() *token.Location      { return loc(s.Keyword) }
func (s *For) Pos() *token.Location        { return loc(s.Keyword) }
func (s *ForEach) Pos() *token.Location    { return loc(s.Keyword) }
func (s *Return) Pos() *token.Location     { return loc(s.Keyword) }
func (s *Break) Pos() *token.Location      { return loc(s.Keyword) }
func (s *Continue) Pos() *token.Location   { return loc(s.Keyword) }
func (s *Switch) Pos() *token.Location     { return loc(s.Keyword) }
func (s *Import) Pos() *token.Location     { return loc(s.Keyword) }

// Pos makes a Case usable as the node of a switch arm's scope.
func (c *Case) Pos() *token.Location { return loc(c.Keyword) }

func (*Block) stmtNode()      {}
func (*Expression) stmtNode() {}
func (*Var) stmtNode()        {}
func (*Val) stmtNode()        {}
func (*Function) stmtNode()   {}
func (*Class) stmtNode()      {}
func (*If) stmtNode()         {}
func (*While) stmtNode()      {}
func (*For) stmtNode()        {}
func (*ForEach) stmtNode()    {}
func (*Return) stmtNode()     {}
func (*Break) stmtNode()      {}
func (*Continue) stmtNode()   {}
func (*Switch) stmtNode()     {}
func (*Import) stmtNode()     {}
