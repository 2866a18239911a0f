// Copyright © 2024 The Qanun authors

package ast

import (
	"strconv"
	"strings"

	"github.com/luthersystems/qanun/parser/token"
)

// Sexpr renders a node as a parenthesized prefix expression.  It is meant for
// inspecting parser output, e.g. `(+ 1 (group (* 2 3)))`.
func Sexpr(n Node) string {
	var p sexprPrinter
	p.node(n)
	return p.String()
}

// SexprProgram renders each statement of a program on its own line.
func SexprProgram(stmts []Stmt) string {
	var b strings.Builder
	for _, s := range stmts {
		b.WriteString(Sexpr(s))
		b.WriteByte('\n')
	}
	return b.String()
}

// Source renders a node back into Qanun syntax.  Parsing the result yields a
// tree with the same shape as n.
func Source(n Node) string {
	var p sourcePrinter
	p.node(n)
	return p.String()
}

// FormatNumber renders a number the way the language prints it: integral
// values have no fractional part.
func FormatNumber(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func formatLiteral(v any) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return FormatNumber(v)
	case string:
		return `"` + v + `"`
	}
	return "?"
}

type sexprPrinter struct {
	strings.Builder
}

func (p *sexprPrinter) open(head string, parts ...Node) {
	p.WriteByte('(')
	p.WriteString(head)
	for _, n := range parts {
		p.WriteByte(' ')
		p.node(n)
	}
}

func (p *sexprPrinter) close() {
	p.WriteByte(')')
}

func (p *sexprPrinter) form(head string, parts ...Node) {
	p.open(head, parts...)
	p.close()
}

func (p *sexprPrinter) stmts(stmts []Stmt) {
	for _, s := range stmts {
		p.WriteByte(' ')
		p.node(s)
	}
}

func (p *sexprPrinter) params(params []*token.Token) {
	p.WriteString(" (")
	for i, param := range params {
		if i > 0 {
			p.WriteByte(' ')
		}
		p.WriteString(param.Text)
	}
	p.WriteByte(')')
}

func (p *sexprPrinter) node(n Node) {
	switch n := n.(type) {
	case nil:
		p.WriteString("nil")
	case *Literal:
		p.WriteString(formatLiteral(n.Value))
	case *Variable:
		p.WriteString(n.Name.Text)
	case *Assign:
		p.open(n.Op.Text + " " + n.Name.Text)
		p.WriteByte(' ')
		p.node(n.Value)
		p.close()
	case *Unary:
		head := n.Op.Text
		if n.Postfix {
			head = "post" + head
		}
		p.form(head, n.Right)
	case *Binary:
		p.form(n.Op.Text, n.Left, n.Right)
	case *Logical:
		p.form(n.Op.Text, n.Left, n.Right)
	case *Ternary:
		p.form("?:", n.Cond, n.Then, n.Else)
	case *Grouping:
		p.form("group", n.Expr)
	case *Call:
		p.open("call", n.Callee)
		for _, arg := range n.Args {
			p.WriteByte(' ')
			p.node(arg)
		}
		p.close()
	case *Get:
		p.open(".", n.Object)
		p.WriteString(" " + n.Name.Text)
		p.close()
	case *Set:
		p.open(n.Op.Text, n.Object)
		p.WriteString(" " + n.Name.Text + " ")
		p.node(n.Value)
		p.close()
	case *ListLiteral:
		p.open("list")
		for _, e := range n.Elements {
			p.WriteByte(' ')
			p.node(e)
		}
		p.close()
	case *ListAccessor:
		p.form("[]", n.Object, n.Index)
	case *ListMutator:
		p.form("[]"+n.Op.Text, n.Object, n.Index, n.Value)
	case *FunctionLit:
		p.open("fun")
		p.params(n.Params)
		p.stmts(n.Body)
		p.close()
	case *This:
		p.WriteString("this")
	case *Super:
		p.WriteString("super." + n.Method.Text)

	case *Block:
		p.open("block")
		p.stmts(n.Stmts)
		p.close()
	case *Expression:
		p.form(";", n.Expr)
	case *Var:
		p.open("var " + n.Name.Text)
		if n.Init != nil {
			p.WriteByte(' ')
			p.node(n.Init)
		}
		p.close()
	case *Val:
		p.form("val "+n.Name.Text, n.Init)
	case *Function:
		p.open("fun " + n.Name.Text)
		p.params(n.Fn.Params)
		p.stmts(n.Fn.Body)
		p.close()
	case *Class:
		p.open("class " + n.Name.Text)
		if n.Superclass != nil {
			p.WriteString(" : " + n.Superclass.Name.Text)
		}
		for _, m := range n.Methods {
			p.WriteByte(' ')
			p.node(m)
		}
		for _, m := range n.StaticMethods {
			p.WriteString(" (static ")
			p.node(m)
			p.close()
		}
		p.close()
	case *If:
		if n.Else == nil {
			p.form("if", n.Cond, n.Then)
		} else {
			p.form("if", n.Cond, n.Then, n.Else)
		}
	case *While:
		p.form("while", n.Cond, n.Body)
	case *For:
		p.form("for", n.Cond, n.Increment, n.Body)
	case *ForEach:
		p.open("foreach " + n.Name.Text)
		p.WriteByte(' ')
		p.node(n.Iterable)
		p.WriteByte(' ')
		p.node(n.Body)
		p.close()
	case *Return:
		if n.Value == nil {
			p.form("return")
		} else {
			p.form("return", n.Value)
		}
	case *Break:
		p.form("break")
	case *Continue:
		p.form("continue")
	case *Switch:
		p.open("switch", n.Subject)
		for _, c := range n.Cases {
			p.WriteByte(' ')
			p.open("case", c.Value)
			p.stmts(c.Body)
			p.close()
		}
		if n.Default != nil {
			p.WriteString(" (default")
			p.stmts(n.Default.Body)
			p.close()
		}
		p.close()
	case *Import:
		p.form("import", n.Path)
	}
}

type sourcePrinter struct {
	strings.Builder
}

func (p *sourcePrinter) list(exprs []Expr) {
	for i, e := range exprs {
		if i > 0 {
			p.WriteString(", ")
		}
		p.node(e)
	}
}

func (p *sourcePrinter) params(params []*token.Token) {
	p.WriteByte('(')
	for i, param := range params {
		if i > 0 {
			p.WriteString(", ")
		}
		p.WriteString(param.Text)
	}
	p.WriteByte(')')
}

func (p *sourcePrinter) body(stmts []Stmt) {
	p.WriteString("{")
	for _, s := range stmts {
		p.WriteByte(' ')
		p.node(s)
	}
	p.WriteString(" }")
}

func (p *sourcePrinter) method(fn *Function) {
	p.WriteString(fn.Name.Text)
	p.params(fn.Fn.Params)
	p.WriteByte(' ')
	p.body(fn.Fn.Body)
}

func (p *sourcePrinter) node(n Node) {
	switch n := n.(type) {
	case nil:
	case *Literal:
		p.WriteString(formatLiteral(n.Value))
	case *Variable:
		p.WriteString(n.Name.Text)
	case *Assign:
		p.WriteString(n.Name.Text + " " + n.Op.Text + " ")
		p.node(n.Value)
	case *Unary:
		if n.Postfix {
			p.node(n.Right)
			p.WriteString(n.Op.Text)
			return
		}
		operand := Source(n.Right)
		p.WriteString(n.Op.Text)
		if strings.HasPrefix(operand, "-") || strings.HasPrefix(operand, "+") {
			p.WriteByte(' ')
		}
		p.WriteString(operand)
	case *Binary:
		p.node(n.Left)
		p.WriteString(" " + n.Op.Text + " ")
		p.node(n.Right)
	case *Logical:
		p.node(n.Left)
		p.WriteString(" " + n.Op.Text + " ")
		p.node(n.Right)
	case *Ternary:
		p.node(n.Cond)
		p.WriteString(" ? ")
		p.node(n.Then)
		p.WriteString(" : ")
		p.node(n.Else)
	case *Grouping:
		p.WriteByte('(')
		p.node(n.Expr)
		p.WriteByte(')')
	case *Call:
		p.node(n.Callee)
		p.WriteByte('(')
		p.list(n.Args)
		p.WriteByte(')')
	case *Get:
		p.node(n.Object)
		p.WriteString("." + n.Name.Text)
	case *Set:
		p.node(n.Object)
		p.WriteString("." + n.Name.Text + " " + n.Op.Text + " ")
		p.node(n.Value)
	case *ListLiteral:
		p.WriteByte('[')
		p.list(n.Elements)
		p.WriteByte(']')
	case *ListAccessor:
		p.node(n.Object)
		p.WriteByte('[')
		p.node(n.Index)
		p.WriteByte(']')
	case *ListMutator:
		p.node(n.Object)
		p.WriteByte('[')
		p.node(n.Index)
		p.WriteString("] " + n.Op.Text + " ")
		p.node(n.Value)
	case *FunctionLit:
		p.WriteString("fun ")
		p.params(n.Params)
		p.WriteByte(' ')
		p.body(n.Body)
	case *This:
		p.WriteString("this")
	case *Super:
		p.WriteString("super." + n.Method.Text)

	case *Block:
		p.body(n.Stmts)
	case *Expression:
		p.node(n.Expr)
		p.WriteByte(';')
	case *Var:
		p.WriteString("var " + n.Name.Text)
		if n.Init != nil {
			p.WriteString(" = ")
			p.node(n.Init)
		}
		p.WriteByte(';')
	case *Val:
		p.WriteString("val " + n.Name.Text + " = ")
		p.node(n.Init)
		p.WriteByte(';')
	case *Function:
		p.WriteString("fun ")
		p.method(n)
	case *Class:
		p.WriteString("class " + n.Name.Text)
		if n.Superclass != nil {
			p.WriteString(" : " + n.Superclass.Name.Text)
		}
		p.WriteString(" {")
		for _, m := range n.Methods {
			p.WriteByte(' ')
			p.method(m)
		}
		for _, m := range n.StaticMethods {
			p.WriteString(" static fun ")
			p.method(m)
		}
		p.WriteString(" }")
	case *If:
		p.WriteString("if (")
		p.node(n.Cond)
		p.WriteString(") ")
		p.node(n.Then)
		if n.Else != nil {
			p.WriteString(" else ")
			p.node(n.Else)
		}
	case *While:
		p.WriteString("while (")
		p.node(n.Cond)
		p.WriteString(") ")
		p.node(n.Body)
	case *For:
		p.WriteString("for (; ")
		p.node(n.Cond)
		p.WriteString("; ")
		p.node(n.Increment)
		p.WriteString(") ")
		p.node(n.Body)
	case *ForEach:
		p.WriteString("for (var " + n.Name.Text + " : ")
		p.node(n.Iterable)
		p.WriteString(") ")
		p.node(n.Body)
	case *Return:
		p.WriteString("return")
		if n.Value != nil {
			p.WriteByte(' ')
			p.node(n.Value)
		}
		p.WriteByte(';')
	case *Break:
		p.WriteString("break;")
	case *Continue:
		p.WriteString("continue;")
	case *Switch:
		p.WriteString("switch (")
		p.node(n.Subject)
		p.WriteString(") {")
		for _, c := range n.Cases {
			p.WriteString(" case ")
			p.node(c.Value)
			p.WriteByte(':')
			for _, s := range c.Body {
				p.WriteByte(' ')
				p.node(s)
			}
		}
		if n.Default != nil {
			p.WriteString(" default:")
			for _, s := range n.Default.Body {
				p.WriteByte(' ')
				p.node(s)
			}
		}
		p.WriteString(" }")
	case *Import:
		p.WriteString("import ")
		p.node(n.Path)
		p.WriteByte(';')
	}
}
