// Copyright © 2024 The Qanun authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
// Only references within the document are reported.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	sym, _ := symbolAtPosition(doc, line, col)
	if sym == nil || doc.analysis == nil {
		return nil, nil
	}

	var locs []protocol.Location
	if params.Context.IncludeDeclaration && sym.Source != nil && sym.Source.Line > 0 {
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, sym.Source.File),
			Range: nameRange(sym.Source, sym.Name),
		})
	}
	for _, ref := range doc.analysis.References {
		if ref.Symbol != sym || ref.Source == nil {
			continue
		}
		locs = append(locs, protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, ref.Source.File),
			Range: nameRange(ref.Source, sym.Name),
		})
	}
	return locs, nil
}
