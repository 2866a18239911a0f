// Copyright © 2024 The Qanun authors

package lsp

import (
	"fmt"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/parser/token"
)

// renameable reports whether sym is declared in the document and is
// reached only through resolved references.  Methods are looked up by
// property name at runtime, so their uses are unknown.
func renameable(sym *analysis.Symbol) bool {
	if sym == nil || sym.External || sym.Source == nil {
		return false
	}
	switch sym.Kind {
	case analysis.SymBuiltin, analysis.SymModule, analysis.SymMethod:
		return false
	}
	return true
}

// textDocumentPrepareRename validates that the symbol under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	sym, ref := symbolAtPosition(doc, int(params.Position.Line), int(params.Position.Character))
	if !renameable(sym) {
		// Per the protocol, null rejects the rename without an error.
		return nil, nil
	}
	loc := sym.Source
	if ref != nil && ref.Source != nil {
		loc = ref.Source
	}
	return &protocol.RangeWithPlaceholder{
		Range:       nameRange(loc, sym.Name),
		Placeholder: sym.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	s.ensureAnalysis(doc)

	if !validIdentifier(params.NewName) {
		return nil, fmt.Errorf("invalid name: %q", params.NewName)
	}

	sym, _ := symbolAtPosition(doc, int(params.Position.Line), int(params.Position.Character))
	if sym == nil {
		return nil, fmt.Errorf("no symbol at position")
	}
	if !renameable(sym) {
		return nil, fmt.Errorf("cannot rename %s: %s", sym.Kind, sym.Name)
	}

	docURI := params.TextDocument.URI
	edits := make(map[protocol.DocumentUri][]protocol.TextEdit)
	edits[docURI] = append(edits[docURI], protocol.TextEdit{
		Range:   nameRange(sym.Source, sym.Name),
		NewText: params.NewName,
	})
	for _, ref := range doc.analysis.References {
		if ref.Symbol != sym || ref.Source == nil {
			continue
		}
		edits[docURI] = append(edits[docURI], protocol.TextEdit{
			Range:   nameRange(ref.Source, sym.Name),
			NewText: params.NewName,
		})
	}
	return &protocol.WorkspaceEdit{Changes: edits}, nil
}

// validIdentifier reports whether name lexes as a single identifier.
func validIdentifier(name string) bool {
	if name == "" || token.Lookup(name) != token.IDENTIFIER {
		return false
	}
	for i, c := range name {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
