// Copyright © 2024 The Qanun authors

package rdparser

import (
	"fmt"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// declaration parses one declaration or statement.  If a syntax error occurs
// the parser synchronizes and declaration returns nil.
func (p *Parser) declaration() (stmt ast.Stmt) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize()
			stmt = nil
		}
	}()
	switch p.PeekType() {
	case token.CLASS:
		p.ReadToken()
		return p.classDecl()
	case token.FUN:
		if p.src.PeekAt(1).Type == token.IDENTIFIER {
			p.ReadToken()
			return p.function("function")
		}
	case token.VAR:
		p.ReadToken()
		return p.varDecl()
	case token.VAL:
		p.ReadToken()
		return p.valDecl()
	}
	return p.statement()
}

func (p *Parser) classDecl() ast.Stmt {
	name := p.expect(token.IDENTIFIER, "Expect class name.")
	class := &ast.Class{Name: name}
	if p.Accept(token.COLON) {
		super := p.expect(token.IDENTIFIER, "Expect superclass name.")
		class.Superclass = &ast.Variable{Name: super}
	}
	p.skipNewlines()
	p.expect(token.BRACE_L, "Expect '{' before class body.")
	for {
		p.skipTerminators()
		if p.PeekType() == token.BRACE_R || p.src.IsEOF() {
			break
		}
		if p.Accept(token.STATIC) {
			p.Accept(token.FUN)
			class.StaticMethods = append(class.StaticMethods, p.function("method"))
			continue
		}
		p.Accept(token.FUN)
		class.Methods = append(class.Methods, p.function("method"))
	}
	p.expect(token.BRACE_R, "Expect '}' after class body.")
	return class
}

// function parses the name, parameters and body of a named function or
// method.  The `fun` keyword has already been consumed when present.
func (p *Parser) function(kind string) *ast.Function {
	name := p.expect(token.IDENTIFIER, fmt.Sprintf("Expect %s name.", kind))
	fn, arrow := p.functionBody(name, kind)
	if arrow {
		p.terminator(fmt.Sprintf("Expect ';' or a new line after %s body.", kind))
	}
	return &ast.Function{Name: name, Fn: fn}
}

// functionBody parses `(params) { body }` or `(params) -> expr`.  The second
// result is true for an arrow body.
func (p *Parser) functionBody(keyword *token.Token, kind string) (*ast.FunctionLit, bool) {
	fn := &ast.FunctionLit{Keyword: keyword}
	p.expect(token.PAREN_L, fmt.Sprintf("Expect '(' after %s name.", kind))
	p.enclosed(func() {
		if p.PeekType() == token.PAREN_R {
			p.ReadToken()
			return
		}
		for {
			if len(fn.Params) >= MaxArgs {
				p.report(p.src.Peek(), fmt.Sprintf("Can't have more than %d parameters.", MaxArgs))
			}
			fn.Params = append(fn.Params, p.expect(token.IDENTIFIER, "Expect parameter name."))
			if !p.Accept(token.COMMA) {
				break
			}
		}
		p.expect(token.PAREN_R, "Expect ')' after parameters.")
	})
	if p.Accept(token.ARROW) {
		arrow := p.previous()
		p.skipNewlines()
		fn.Body = []ast.Stmt{&ast.Return{Keyword: arrow, Value: p.expression()}}
		return fn, true
	}
	p.skipNewlines()
	p.expect(token.BRACE_L, fmt.Sprintf("Expect '{' before %s body.", kind))
	fn.Body = p.block()
	return fn, false
}

func (p *Parser) varDecl() ast.Stmt {
	name := p.expect(token.IDENTIFIER, "Expect variable name.")
	stmt := &ast.Var{Name: name}
	if p.Accept(token.EQUAL) {
		stmt.Init = p.expression()
	}
	p.terminator("Expect ';' or a new line after variable declaration.")
	return stmt
}

func (p *Parser) valDecl() ast.Stmt {
	name := p.expect(token.IDENTIFIER, "Expect constant name.")
	p.expect(token.EQUAL, fmt.Sprintf("Constant '%s' must be initialized.", name.Text))
	stmt := &ast.Val{Name: name, Init: p.expression()}
	p.terminator("Expect ';' or a new line after constant declaration.")
	return stmt
}

func (p *Parser) statement() ast.Stmt {
	switch p.PeekType() {
	case token.IF:
		return p.ifStmt(p.ReadToken())
	case token.WHILE:
		return p.whileStmt(p.ReadToken())
	case token.FOR:
		return p.forStmt(p.ReadToken())
	case token.SWITCH:
		return p.switchStmt(p.ReadToken())
	case token.RETURN:
		return p.returnStmt(p.ReadToken())
	case token.BREAK:
		stmt := &ast.Break{Keyword: p.ReadToken()}
		p.terminator("Expect ';' or a new line after 'break'.")
		return stmt
	case token.CONTINUE:
		stmt := &ast.Continue{Keyword: p.ReadToken()}
		p.terminator("Expect ';' or a new line after 'continue'.")
		return stmt
	case token.IMPORT:
		stmt := &ast.Import{Keyword: p.ReadToken(), Path: p.expression()}
		p.terminator("Expect ';' or a new line after import.")
		return stmt
	case token.BRACE_L:
		brace := p.ReadToken()
		return &ast.Block{Brace: brace, Stmts: p.block()}
	}
	return p.expressionStmt()
}

func (p *Parser) expressionStmt() ast.Stmt {
	expr := p.expression()
	p.terminator("Expect ';' or a new line after value.")
	return &ast.Expression{Expr: expr}
}

// block parses declarations up to the closing brace.  The opening brace has
// already been consumed.
func (p *Parser) block() []ast.Stmt {
	prev := p.src.SetNested(false)
	defer p.src.SetNested(prev)
	var stmts []ast.Stmt
	for {
		p.skipTerminators()
		if p.PeekType() == token.BRACE_R || p.src.IsEOF() {
			break
		}
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
	p.expect(token.BRACE_R, "Expect '}' at the end of a block.")
	return stmts
}

// body parses the statement controlled by a loop or conditional header.
func (p *Parser) body() ast.Stmt {
	p.skipNewlines()
	return p.statement()
}

// condition parses the parenthesized header of if, while and switch.
func (p *Parser) condition(keyword string) ast.Expr {
	p.expect(token.PAREN_L, fmt.Sprintf("Expect '(' after '%s'.", keyword))
	var cond ast.Expr
	p.enclosed(func() {
		cond = p.expression()
		p.expect(token.PAREN_R, fmt.Sprintf("Expect ')' after %s condition.", keyword))
	})
	return cond
}

func (p *Parser) ifStmt(keyword *token.Token) ast.Stmt {
	stmt := &ast.If{Keyword: keyword, Cond: p.condition("if")}
	stmt.Then = p.body()
	if p.elseFollows() {
		p.skipNewlines()
		p.ReadToken()
		stmt.Else = p.body()
	}
	return stmt
}

// elseFollows looks past inserted terminators for an else branch.
func (p *Parser) elseFollows() bool {
	for i := 0; ; i++ {
		tok := p.src.PeekAt(i)
		if tok.Inserted() {
			continue
		}
		return tok.Type == token.ELSE
	}
}

func (p *Parser) whileStmt(keyword *token.Token) ast.Stmt {
	cond := p.condition("while")
	return &ast.While{Keyword: keyword, Cond: cond, Body: p.body()}
}

// forStmt parses a classic for loop or, when the loop variable is followed
// by a colon, a for-each loop.  A classic loop with an initializer is wrapped
// in a block so the loop variable is scoped to the loop.
func (p *Parser) forStmt(keyword *token.Token) ast.Stmt {
	p.expect(token.PAREN_L, "Expect '(' after 'for'.")
	var (
		init ast.Stmt
		each *ast.ForEach
		loop = &ast.For{Keyword: keyword}
	)
	p.enclosed(func() {
		switch {
		case p.Accept(token.SEMICOLON):
		case p.Accept(token.VAR):
			name := p.expect(token.IDENTIFIER, "Expect variable name.")
			if p.Accept(token.COLON) {
				each = &ast.ForEach{Keyword: keyword, Name: name, Iterable: p.expression()}
				p.expect(token.PAREN_R, "Expect ')' after for-each clause.")
				return
			}
			decl := &ast.Var{Name: name}
			if p.Accept(token.EQUAL) {
				decl.Init = p.expression()
			}
			p.expect(token.SEMICOLON, "Expect ';' after loop initializer.")
			init = decl
		default:
			init = &ast.Expression{Expr: p.expression()}
			p.expect(token.SEMICOLON, "Expect ';' after loop initializer.")
		}
		if p.PeekType() != token.SEMICOLON {
			loop.Cond = p.expression()
		}
		p.expect(token.SEMICOLON, "Expect ';' after loop condition.")
		if p.PeekType() != token.PAREN_R {
			loop.Increment = p.expression()
		}
		p.expect(token.PAREN_R, "Expect ')' after for clauses.")
	})
	if each != nil {
		each.Body = p.body()
		return each
	}
	loop.Body = p.body()
	if init == nil {
		return loop
	}
	return &ast.Block{Brace: keyword, Stmts: []ast.Stmt{init, loop}}
}

func (p *Parser) switchStmt(keyword *token.Token) ast.Stmt {
	stmt := &ast.Switch{Keyword: keyword, Subject: p.condition("switch")}
	p.skipNewlines()
	p.expect(token.BRACE_L, "Expect '{' before switch body.")
	seen := make(map[any]bool)
	for {
		p.skipTerminators()
		switch p.PeekType() {
		case token.CASE:
			c := &ast.Case{Keyword: p.ReadToken()}
			c.Value = p.caseValue()
			if seen[c.Value.Value] {
				p.report(c.Value.Token, "Duplicate case value in switch.")
			}
			seen[c.Value.Value] = true
			p.expect(token.COLON, "Expect ':' after case value.")
			c.Body = p.caseBody()
			stmt.Cases = append(stmt.Cases, c)
		case token.DEFAULT:
			c := &ast.Case{Keyword: p.ReadToken()}
			if stmt.Default != nil {
				p.report(c.Keyword, "Multiple default cases in switch.")
			}
			p.expect(token.COLON, "Expect ':' after 'default'.")
			c.Body = p.caseBody()
			stmt.Default = c
		case token.BRACE_R:
			p.ReadToken()
			return stmt
		default:
			p.errorAt(p.src.Peek(), "Expect 'case', 'default' or '}' in switch body.")
		}
	}
}

// caseValue parses the literal of a case arm.  Negative numbers are allowed.
func (p *Parser) caseValue() *ast.Literal {
	if p.Accept(token.MINUS) {
		minus := p.previous()
		num := p.expect(token.NUMBER, "Expect number after '-' in case value.")
		return &ast.Literal{Token: minus, Value: -num.Literal.(float64)}
	}
	tok := p.src.Peek()
	switch tok.Type {
	case token.NUMBER, token.STRING:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: tok.Literal}
	case token.TRUE:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: true}
	case token.FALSE:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: false}
	case token.NIL:
		p.ReadToken()
		return &ast.Literal{Token: tok, Value: nil}
	}
	p.errorAt(tok, "Expect literal case value.")
	return nil
}

func (p *Parser) caseBody() []ast.Stmt {
	var stmts []ast.Stmt
	for {
		p.skipTerminators()
		switch p.PeekType() {
		case token.CASE, token.DEFAULT, token.BRACE_R, token.EOF:
			return stmts
		}
		if stmt := p.declaration(); stmt != nil {
			stmts = append(stmts, stmt)
		}
	}
}

func (p *Parser) returnStmt(keyword *token.Token) ast.Stmt {
	stmt := &ast.Return{Keyword: keyword}
	if !p.atTerminator() {
		stmt.Value = p.expression()
	}
	p.terminator("Expect ';' or a new line after return value.")
	return stmt
}
