// Copyright © 2024 The Qanun authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/astutil"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	var content string
	if sym, _ := symbolAtPosition(doc, line, col); sym != nil {
		content = buildHoverContent(sym)
	} else {
		content = s.moduleHover(doc.stmts, line+1, col+1)
	}
	if content == "" {
		return nil, nil
	}

	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol.
func buildHoverContent(sym *analysis.Symbol) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`", sym.Kind, sym.Name)

	if sym.Signature != nil {
		var decl string
		switch sym.Kind {
		case analysis.SymFunction:
			decl = "fun " + sym.Name + sym.Signature.String()
		case analysis.SymClass:
			decl = "class " + sym.Name + sym.Signature.String()
		default:
			decl = sym.Name + sym.Signature.String()
		}
		fmt.Fprintf(&sb, "\n\n```qanun\n%s\n```", decl)
	}

	if sym.DocString != "" {
		fmt.Fprintf(&sb, "\n\n%s", sym.DocString)
	}

	if sym.Source != nil && sym.Source.File != "" {
		fmt.Fprintf(&sb, "\n\n*Defined in %s:%d*", sym.Source.File, sym.Source.Line)
	}
	return sb.String()
}

// moduleHover describes a built-in module, or a native member of one,
// named at the 1-based line and column.  Modules are bound when the
// program runs, so the resolver never sees them.
func (s *Server) moduleHover(stmts []ast.Stmt, line, col int) string {
	tok := astutil.IdentAt(stmts, line, col)
	if tok == nil {
		return ""
	}
	if m, ok := s.it.Module(tok.Text); ok {
		return moduleHoverContent(m)
	}
	mod, member := s.moduleMember(stmts, tok)
	if member == nil {
		return ""
	}
	return fmt.Sprintf("**builtin** `%s.%s`\n\n```qanun\n%s.%s\n```\n\n%s",
		mod.Name, member.Name, mod.Name, member.Signature(), member.Doc)
}

// moduleMember returns the module and native named by tok when tok is the
// property of a Get on a built-in module.
func (s *Server) moduleMember(stmts []ast.Stmt, tok *token.Token) (*interp.Module, *interp.Native) {
	var mod *interp.Module
	var member *interp.Native
	astutil.Walk(stmts, func(node ast.Node, _ ast.Node, _ int) {
		get, ok := node.(*ast.Get)
		if !ok || get.Name != tok {
			return
		}
		obj, ok := get.Object.(*ast.Variable)
		if !ok {
			return
		}
		m, ok := s.it.Module(obj.Name.Text)
		if !ok {
			return
		}
		if n, ok := m.Members[tok.Text].(*interp.Native); ok {
			mod, member = m, n
		}
	})
	return mod, member
}

func moduleHoverContent(m *interp.Module) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**module** `%s`", m.Name)
	if m.Doc != "" {
		fmt.Fprintf(&sb, "\n\n%s", m.Doc)
	}
	fmt.Fprintf(&sb, "\n\n```qanun\nimport \"%s\"\n```", m.Name)
	return sb.String()
}
