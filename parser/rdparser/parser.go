// Copyright © 2024 The Qanun authors

// Package rdparser implements a recursive-descent parser for Qanun.
//
// The parser reports a syntax error, then resynchronizes at the next
// statement boundary so that a single run can surface several errors.
package rdparser

import (
	"io"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// MaxArgs is the maximum number of call arguments or function parameters.
const MaxArgs = 255

// bailout unwinds the parser to the enclosing declaration after an error.
type bailout struct{}

// Parser is a Qanun parser.
type Parser struct {
	src  *TokenSource
	errs ErrorList
}

// NewFromSource initializes and returns a Parser that reads tokens from src.
func NewFromSource(src *TokenSource) *Parser {
	p := &Parser{
		src: src,
	}
	src.OnError = p.lexError
	return p
}

// New initializes and returns a new Parser that reads tokens from scanner.
func New(scanner *token.Scanner) *Parser {
	return NewFromSource(NewTokenSource(scanner))
}

// Parse reads all of r and parses it as a program.
func Parse(name string, r io.Reader) ([]ast.Stmt, error) {
	s, err := token.ReadScanner(name, r)
	if err != nil {
		return nil, err
	}
	return New(s).ParseProgram()
}

// ParseProgram parses declarations until EOF.  When any error was reported
// the returned error is an ErrorList and the statements should not be
// evaluated.
func (p *Parser) ParseProgram() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for {
		p.skipTerminators()
		if p.src.IsEOF() {
			break
		}
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, p.Errors().Err()
}

// ParseExpression parses a single expression followed by EOF.
func (p *Parser) ParseExpression() (expr ast.Expr, err error) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			expr = nil
		}
		err = p.Errors().Err()
	}()
	expr = p.expression()
	p.skipTerminators()
	if !p.src.IsEOF() {
		p.errorAt(p.src.Peek(), "Expect end of expression.")
	}
	return expr, nil
}

// Errors returns the errors reported so far, ordered by position.
func (p *Parser) Errors() ErrorList {
	p.errs.Sort()
	return p.errs
}

func (p *Parser) lexError(tok *token.Token) {
	p.errs.Add(&Error{
		Source:  tok.Source,
		Message: tok.Text,
	})
}

// report records an error at tok without unwinding.
func (p *Parser) report(tok *token.Token, msg string) {
	err := &Error{
		Source:  tok.Source,
		Message: msg,
	}
	if tok.Type == token.EOF {
		err.AtEnd = true
	} else {
		err.Lexeme = tok.Text
	}
	p.errs.Add(err)
}

// errorAt records an error at tok and unwinds to the enclosing declaration.
func (p *Parser) errorAt(tok *token.Token, msg string) {
	p.report(tok, msg)
	panic(bailout{})
}

// synchronize discards tokens until a statement boundary.
func (p *Parser) synchronize() {
	p.src.Scan()
	for !p.src.IsEOF() {
		if p.src.Token.Type == token.SEMICOLON {
			return
		}
		switch p.PeekType() {
		case token.CLASS, token.FUN, token.VAR, token.VAL, token.FOR,
			token.IF, token.WHILE, token.RETURN, token.BREAK, token.CONTINUE,
			token.SWITCH, token.IMPORT:
			return
		}
		p.src.Scan()
	}
}

func (p *Parser) ReadToken() *token.Token {
	p.src.Scan()
	return p.src.Token
}

func (p *Parser) PeekType() token.Type {
	return p.src.Peek().Type
}

func (p *Parser) Accept(typ ...token.Type) bool {
	return p.src.AcceptType(typ...)
}

// previous returns the most recently consumed token.
func (p *Parser) previous() *token.Token {
	return p.src.Token
}

// expect consumes a token of type typ or fails with msg.
func (p *Parser) expect(typ token.Type, msg string) *token.Token {
	if p.Accept(typ) {
		return p.previous()
	}
	p.errorAt(p.src.Peek(), msg)
	return nil
}

// skipNewlines discards inserted terminators, allowing a construct to
// continue on the next line.
func (p *Parser) skipNewlines() {
	for p.src.Peek().Inserted() {
		p.src.Scan()
	}
}

// enclosed runs fn over the inside of parentheses or brackets, where a line
// break does not end the statement.
func (p *Parser) enclosed(fn func()) {
	prev := p.src.SetNested(true)
	defer p.src.SetNested(prev)
	fn()
}

// skipTerminators discards empty statements.
func (p *Parser) skipTerminators() {
	for p.Accept(token.SEMICOLON) {
	}
}

// terminator consumes the end of a statement.  A statement also ends before
// a closing brace, a switch arm or EOF, and after a closing brace.
func (p *Parser) terminator(msg string) {
	if p.Accept(token.SEMICOLON) {
		return
	}
	switch p.PeekType() {
	case token.BRACE_R, token.EOF, token.CASE, token.DEFAULT:
		return
	}
	if prev := p.previous(); prev != nil && prev.Type == token.BRACE_R {
		return
	}
	p.errorAt(p.src.Peek(), msg)
}

// atTerminator reports whether the next token ends a statement.
func (p *Parser) atTerminator() bool {
	switch p.PeekType() {
	case token.SEMICOLON, token.BRACE_R, token.EOF, token.CASE, token.DEFAULT:
		return true
	}
	return false
}
