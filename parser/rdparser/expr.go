// Copyright © 2024 The Qanun authors

package rdparser

import (
	"fmt"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

func (p *Parser) expression() ast.Expr {
	return p.assignment()
}

var assignOps = []token.Type{
	token.EQUAL,
	token.PLUS_EQUAL,
	token.MINUS_EQUAL,
	token.STAR_EQUAL,
	token.SLASH_EQUAL,
	token.STAR_STAR_EQUAL,
	token.PERCENT_EQUAL,
}

// assignment is right-associative.  The target is parsed as an ordinary
// expression and then converted into the matching assignment node.
func (p *Parser) assignment() ast.Expr {
	expr := p.ternary()
	if !p.Accept(assignOps...) {
		return expr
	}
	op := p.previous()
	p.skipNewlines()
	value := p.assignment()
	switch target := expr.(type) {
	case *ast.Variable:
		return &ast.Assign{Name: target.Name, Op: op, Value: value}
	case *ast.Get:
		return &ast.Set{Object: target.Object, Name: target.Name, Op: op, Value: value}
	case *ast.ListAccessor:
		return &ast.ListMutator{Object: target.Object, Bracket: target.Bracket, Index: target.Index, Op: op, Value: value}
	}
	p.report(op, "Invalid assignment target.")
	return expr
}

func (p *Parser) ternary() ast.Expr {
	cond := p.or()
	if !p.Accept(token.QUESTION) {
		return cond
	}
	question := p.previous()
	p.skipNewlines()
	then := p.ternary()
	p.skipNewlines()
	p.expect(token.COLON, "Expect ':' after then branch of conditional expression.")
	p.skipNewlines()
	return &ast.Ternary{Cond: cond, Question: question, Then: then, Else: p.ternary()}
}

func (p *Parser) or() ast.Expr {
	expr := p.and()
	for p.Accept(token.OR) {
		op := p.previous()
		expr = &ast.Logical{Left: expr, Op: op, Right: p.and()}
	}
	return expr
}

func (p *Parser) and() ast.Expr {
	expr := p.equality()
	for p.Accept(token.AND) {
		op := p.previous()
		expr = &ast.Logical{Left: expr, Op: op, Right: p.equality()}
	}
	return expr
}

// binary parses a left-associative chain of operators from ops, with operands
// parsed by next.
func (p *Parser) binary(next func() ast.Expr, ops ...token.Type) ast.Expr {
	expr := next()
	for p.Accept(ops...) {
		op := p.previous()
		expr = &ast.Binary{Left: expr, Op: op, Right: next()}
	}
	return expr
}

func (p *Parser) equality() ast.Expr {
	return p.binary(p.comparison, token.EQUAL_EQUAL, token.BANG_EQUAL)
}

func (p *Parser) comparison() ast.Expr {
	return p.binary(p.term, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL)
}

func (p *Parser) term() ast.Expr {
	return p.binary(p.factor, token.PLUS, token.MINUS)
}

func (p *Parser) factor() ast.Expr {
	return p.binary(p.unary, token.STAR, token.SLASH, token.PERCENT)
}

func (p *Parser) unary() ast.Expr {
	if p.Accept(token.BANG, token.MINUS) {
		op := p.previous()
		return &ast.Unary{Op: op, Right: p.unary()}
	}
	return p.exponent()
}

// exponent binds tighter than unary minus and is right-associative, so
// -2 ** 2 is -(2 ** 2) and 2 ** 3 ** 2 is 2 ** (3 ** 2).
func (p *Parser) exponent() ast.Expr {
	expr := p.prefix()
	if p.Accept(token.STAR_STAR) {
		op := p.previous()
		return &ast.Binary{Left: expr, Op: op, Right: p.unary()}
	}
	return expr
}

func (p *Parser) prefix() ast.Expr {
	if p.Accept(token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		operand := p.prefix()
		p.checkIncrementTarget(op, operand)
		return &ast.Unary{Op: op, Right: operand}
	}
	return p.postfix()
}

func (p *Parser) postfix() ast.Expr {
	expr := p.call()
	if p.Accept(token.PLUS_PLUS, token.MINUS_MINUS) {
		op := p.previous()
		p.checkIncrementTarget(op, expr)
		return &ast.Unary{Op: op, Right: expr, Postfix: true}
	}
	return expr
}

func (p *Parser) checkIncrementTarget(op *token.Token, operand ast.Expr) {
	if _, ok := operand.(*ast.Variable); !ok {
		p.report(op, fmt.Sprintf("Operand of '%s' must be a variable.", op.Text))
	}
}

func (p *Parser) call() ast.Expr {
	expr := p.primary()
	for {
		switch {
		case p.Accept(token.PAREN_L):
			expr = p.finishCall(expr)
		case p.Accept(token.DOT):
			name := p.expect(token.IDENTIFIER, "Expect property name after '.'.")
			expr = &ast.Get{Object: expr, Name: name}
		case p.Accept(token.BRACKET_L):
			bracket := p.previous()
			var index ast.Expr
			p.enclosed(func() {
				index = p.expression()
				p.expect(token.BRACKET_R, "Expect ']' after index.")
			})
			expr = &ast.ListAccessor{Object: expr, Bracket: bracket, Index: index}
		default:
			return expr
		}
	}
}

func (p *Parser) finishCall(callee ast.Expr) ast.Expr {
	var args []ast.Expr
	var paren *token.Token
	p.enclosed(func() {
		args = p.elements(token.PAREN_R, "arguments")
		paren = p.expect(token.PAREN_R, "Expect ')' after arguments.")
	})
	return &ast.Call{Callee: callee, Paren: paren, Args: args}
}

// elements parses a comma separated list of expressions ending before close.
// It is called inside enclosed, so line breaks may separate elements.
func (p *Parser) elements(close token.Type, what string) []ast.Expr {
	var exprs []ast.Expr
	if p.PeekType() == close {
		return exprs
	}
	for {
		if len(exprs) >= MaxArgs {
			p.report(p.src.Peek(), fmt.Sprintf("Can't have more than %d %s.", MaxArgs, what))
		}
		exprs = append(exprs, p.expression())
		if !p.Accept(token.COMMA) {
			return exprs
		}
	}
}

func (p *Parser) primary() ast.Expr {
	tok := p.src.Peek()
	switch tok.Type {
	case token.FALSE:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: false}
	case token.TRUE:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: true}
	case token.NIL:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: nil}
	case token.NUMBER, token.STRING:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: tok.Literal}
	case token.IDENTIFIER:
		p.ReadToken()
		return &ast.Variable{Name: tok}
	case token.THIS:
		p.ReadToken()
		return &ast.This{Keyword: tok}
	case token.SUPER:
		p.ReadToken()
		p.expect(token.DOT, "Expect '.' after 'super'.")
		method := p.expect(token.IDENTIFIER, "Expect superclass method name.")
		return &ast.Super{Keyword: tok, Method: method}
	case token.PAREN_L:
		p.ReadToken()
		var expr ast.Expr
		p.enclosed(func() {
			expr = p.expression()
			p.expect(token.PAREN_R, "Expect ')' after expression.")
		})
		return &ast.Grouping{Paren: tok, Expr: expr}
	case token.BRACKET_L:
		p.ReadToken()
		var elems []ast.Expr
		p.enclosed(func() {
			elems = p.elements(token.BRACKET_R, "list elements")
			p.expect(token.BRACKET_R, "Expect ']' after list elements.")
		})
		return &ast.ListLiteral{Bracket: tok, Elements: elems}
	case token.FUN:
		p.ReadToken()
		fn, _ := p.functionBody(tok, "function")
		return fn
	}
	p.errorAt(tok, "Expect expression.")
	return nil
}
