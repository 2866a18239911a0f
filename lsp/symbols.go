// Copyright © 2024 The Qanun authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request.  Top-level functions, classes and bindings are listed; a class
// carries its methods as children.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	doc.mu.Lock()
	stmts := doc.stmts
	doc.mu.Unlock()

	symbols := []protocol.DocumentSymbol{}
	for _, stmt := range stmts {
		switch d := stmt.(type) {
		case *ast.Function:
			symbols = append(symbols, documentSymbol(d.Name, protocol.SymbolKindFunction, signature(d.Fn)))
		case *ast.Class:
			cls := documentSymbol(d.Name, protocol.SymbolKindClass, nil)
			if d.Superclass != nil {
				detail := ": " + d.Superclass.Name.Text
				cls.Detail = &detail
			}
			for _, m := range d.Methods {
				kind := protocol.SymbolKindMethod
				if m.Name.Text == "init" {
					kind = protocol.SymbolKindConstructor
				}
				cls.Children = append(cls.Children, documentSymbol(m.Name, kind, signature(m.Fn)))
			}
			for _, m := range d.StaticMethods {
				detail := "static " + *signature(m.Fn)
				cls.Children = append(cls.Children, documentSymbol(m.Name, protocol.SymbolKindMethod, &detail))
			}
			symbols = append(symbols, cls)
		case *ast.Var:
			symbols = append(symbols, documentSymbol(d.Name, protocol.SymbolKindVariable, nil))
		case *ast.Val:
			symbols = append(symbols, documentSymbol(d.Name, protocol.SymbolKindConstant, nil))
		}
	}
	return symbols, nil
}

func documentSymbol(name *token.Token, kind protocol.SymbolKind, detail *string) protocol.DocumentSymbol {
	r := nameRange(name.Source, name.Text)
	return protocol.DocumentSymbol{
		Name:           name.Text,
		Detail:         detail,
		Kind:           kind,
		Range:          r,
		SelectionRange: r,
	}
}

// signature renders the parameter list of fn, e.g. "(a, b)".
func signature(fn *ast.FunctionLit) *string {
	sig := "("
	for i, p := range fn.Params {
		if i > 0 {
			sig += ", "
		}
		sig += p.Text
	}
	sig += ")"
	return &sig
}
