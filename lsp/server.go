// Copyright © 2024 The Qanun authors

// Package lsp implements a Language Server Protocol server for Qanun.
// It provides diagnostics, hover, go-to-definition, references,
// completion, document symbols, and rename support.
package lsp

import (
	"log"
	"os"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	glspserver "github.com/tliron/glsp/server"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/lint"
)

const serverName = "qanun-lsp"

// Server is the Qanun language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string

	// it supplies the natives and built-in modules that every document
	// may reference.
	it      *interp.Interpreter
	globals []analysis.ExternalSymbol

	// Top-level declarations of the workspace, used to navigate to names
	// that a document imports from its siblings.
	workspace   []analysis.ExternalSymbol
	workspaceMu sync.RWMutex
	indexOnce   sync.Once

	linter *lint.Linter

	pending *debouncer

	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithInterpreter supplies the interpreter whose globals and built-in
// modules documents are analyzed against.  By default the standard
// library is loaded into a fresh interpreter.
func WithInterpreter(it *interp.Interpreter) Option {
	return func(s *Server) { s.it = it }
}

// New creates a new Qanun LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:    NewDocumentStore(),
		pending: newDebouncer(debounceDelay),
		exitFn:  os.Exit,
	}
	for _, o := range opts {
		o(s)
	}
	if s.it == nil {
		it, err := natives.NewDocInterpreter()
		if err != nil {
			log.Printf("lsp: loading natives: %v", err)
			it, _ = interp.New()
		}
		s.it = it
	}
	s.globals = s.it.ExternalSymbols()
	var modules []string
	for _, m := range s.it.Modules() {
		modules = append(modules, m.Name)
	}
	s.linter = &lint.Linter{Analyzers: lint.DefaultAnalyzers(), Modules: modules}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentPrepareRename:  s.textDocumentPrepareRename,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}

	capabilities := s.handler.CreateServerCapabilities()

	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}
	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"."},
	}
	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// shutdown handles the LSP shutdown request.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.pending.stopAll()
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureWorkspaceIndex scans the workspace root once, on first demand.
func (s *Server) ensureWorkspaceIndex() {
	s.indexOnce.Do(func() {
		if s.rootPath == "" {
			return
		}
		syms, err := analysis.ScanWorkspace(s.rootPath)
		if err != nil {
			log.Printf("lsp: scanning workspace %s: %v", s.rootPath, err)
			return
		}
		s.workspaceMu.Lock()
		s.workspace = syms
		s.workspaceMu.Unlock()
	})
}

// workspaceSymbol returns the first top-level declaration of name in a
// workspace file other than path.
func (s *Server) workspaceSymbol(name, path string) *analysis.ExternalSymbol {
	s.ensureWorkspaceIndex()
	s.workspaceMu.RLock()
	defer s.workspaceMu.RUnlock()
	for i := range s.workspace {
		sym := &s.workspace[i]
		if sym.Name == name && sym.Source != nil && sym.Source.File != path {
			return sym
		}
	}
	return nil
}

// analysisConfig returns the resolver configuration for a document.
func (s *Server) analysisConfig(uri string) *analysis.Config {
	return &analysis.Config{
		Filename:     uriToPath(uri),
		ExtraGlobals: s.globals,
	}
}

// ensureAnalysis ensures the document has a current analysis result.
func (s *Server) ensureAnalysis(doc *Document) {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.analysis != nil {
		return
	}
	doc.analyze(s.analysisConfig(doc.URI))
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	if ctx == nil {
		return
	}
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
