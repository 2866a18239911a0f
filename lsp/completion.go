// Copyright © 2024 The Qanun authors

package lsp

import (
	"sort"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// textDocumentCompletion handles the textDocument/completion request.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	prefix := wordAtPosition(doc.Content, line, col)

	var items []protocol.CompletionItem
	if owner, partial, ok := splitQualified(prefix); ok {
		items = s.memberCompletions(doc, owner, partial)
	} else {
		items = s.scopeCompletions(doc, line, col, prefix)
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Label < items[j].Label })
	return items, nil
}

// splitQualified splits "Owner.partial" at the last dot.
func splitQualified(prefix string) (owner, partial string, ok bool) {
	idx := strings.LastIndex(prefix, ".")
	if idx <= 0 {
		return "", "", false
	}
	return prefix[:idx], prefix[idx+1:], true
}

// memberCompletions lists the members of a built-in module or the static
// methods of a class declared at the top of the document.
func (s *Server) memberCompletions(doc *Document, owner, partial string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	if m, ok := s.it.Module(owner); ok {
		for name, v := range m.Members {
			if !strings.HasPrefix(name, partial) {
				continue
			}
			kind := protocol.CompletionItemKindFunction
			item := protocol.CompletionItem{Label: name, Kind: &kind}
			if n, ok := v.(*interp.Native); ok {
				detail := n.Signature()
				item.Detail = &detail
				if n.Doc != "" {
					item.Documentation = &protocol.MarkupContent{Kind: protocol.MarkupKindMarkdown, Value: n.Doc}
				}
			}
			items = append(items, item)
		}
		return items
	}
	for _, stmt := range doc.stmts {
		cls, ok := stmt.(*ast.Class)
		if !ok || cls.Name.Text != owner {
			continue
		}
		for _, m := range cls.StaticMethods {
			if !strings.HasPrefix(m.Name.Text, partial) {
				continue
			}
			kind := protocol.CompletionItemKindMethod
			items = append(items, protocol.CompletionItem{
				Label:  m.Name.Text,
				Kind:   &kind,
				Detail: signature(m.Fn),
			})
		}
	}
	return items
}

// scopeCompletions returns the names visible at the cursor, the built-in
// module names, and the keywords.
func (s *Server) scopeCompletions(doc *Document, line, col int, prefix string) []protocol.CompletionItem {
	var items []protocol.CompletionItem
	if doc.analysis != nil {
		scope := scopeAtPosition(doc.analysis.RootScope, line+1, col+1)
		for _, sym := range collectVisibleSymbols(scope) {
			if !strings.HasPrefix(sym.Name, prefix) {
				continue
			}
			items = append(items, symbolCompletion(sym))
		}
	}
	for _, m := range s.it.Modules() {
		if !strings.HasPrefix(m.Name, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindModule
		items = append(items, protocol.CompletionItem{Label: m.Name, Kind: &kind})
	}
	for _, kw := range token.Keywords() {
		if prefix == "" || !strings.HasPrefix(kw, prefix) {
			continue
		}
		kind := protocol.CompletionItemKindKeyword
		items = append(items, protocol.CompletionItem{Label: kw, Kind: &kind})
	}
	return items
}

func symbolCompletion(sym *analysis.Symbol) protocol.CompletionItem {
	kind := mapCompletionItemKind(sym.Kind)
	item := protocol.CompletionItem{
		Label: sym.Name,
		Kind:  &kind,
	}
	if sym.Signature != nil {
		detail := sym.Signature.String()
		item.Detail = &detail
	}
	if sym.DocString != "" {
		item.Documentation = &protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: sym.DocString,
		}
	}
	return item
}
