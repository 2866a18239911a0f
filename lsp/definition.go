// Copyright © 2024 The Qanun authors

package lsp

import (
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/astutil"
)

// textDocumentDefinition handles the textDocument/definition request.
// Names the document does not declare are looked up among the top-level
// declarations of the workspace.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	s.ensureAnalysis(doc)

	line := int(params.Position.Line)
	col := int(params.Position.Character)

	if sym, _ := symbolAtPosition(doc, line, col); sym != nil {
		// Natives and implicit bindings have no navigable source.
		if sym.Source == nil || sym.Source.Line == 0 {
			return nil, nil
		}
		return protocol.Location{
			URI:   s.resolveURI(params.TextDocument.URI, sym.Source.File),
			Range: nameRange(sym.Source, sym.Name),
		}, nil
	}

	tok := astutil.IdentAt(doc.stmts, line+1, col+1)
	if tok == nil {
		return nil, nil
	}
	ext := s.workspaceSymbol(tok.Text, uriToPath(params.TextDocument.URI))
	if ext == nil {
		return nil, nil
	}
	return protocol.Location{
		URI:   s.resolveURI(params.TextDocument.URI, ext.Source.File),
		Range: nameRange(ext.Source, ext.Name),
	}, nil
}

// resolveURI resolves a file path from analysis into a document URI.
// If the file matches the current document, the original URI is returned.
func (s *Server) resolveURI(currentURI, file string) string {
	if file == "" || file == uriToPath(currentURI) {
		return currentURI
	}
	path := file
	if !filepath.IsAbs(path) && s.rootPath != "" {
		path = filepath.Join(s.rootPath, path)
	}
	return pathToURI(path)
}
