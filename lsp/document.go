// Copyright © 2024 The Qanun authors

package lsp

import (
	"sync"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

// Document represents an open text document tracked by the LSP server.
type Document struct {
	mu       sync.Mutex
	URI      string
	Version  int32
	Content  string
	stmts    []ast.Stmt
	analysis *analysis.Result
	parseErr error
}

// parse parses the document content and caches the statements.  The
// parser recovers at statement boundaries, so a document with syntax
// errors still yields every statement that parsed cleanly.
func (d *Document) parse() {
	path := uriToPath(d.URI)
	s := token.NewScanner(path, []byte(d.Content))
	s.SetPath(path)
	d.stmts, d.parseErr = rdparser.New(s).ParseProgram()
}

// analyze resolves the cached statements.
func (d *Document) analyze(cfg *analysis.Config) {
	d.analysis = analysis.Resolve(d.stmts, cfg)
}

// DocumentStore holds the open documents keyed by URI.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open starts tracking uri with the given content.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	return s.set(uri, version, content)
}

// Change replaces the content of uri (full sync).  A change for a document
// that was never opened starts tracking it.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	return s.set(uri, version, content)
}

func (s *DocumentStore) set(uri string, version int32, content string) *Document {
	s.mu.Lock()
	doc := s.docs[uri]
	if doc == nil {
		doc = &Document{URI: uri}
		s.docs[uri] = doc
	}
	s.mu.Unlock()

	doc.mu.Lock()
	defer doc.mu.Unlock()
	doc.Version = version
	doc.Content = content
	doc.analysis = nil
	doc.parse()
	return doc
}

// Close stops tracking uri.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, uri)
}

// Get returns the document for uri, or nil.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}
