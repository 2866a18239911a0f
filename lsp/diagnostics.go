// Copyright © 2024 The Qanun authors

package lsp

import (
	"errors"
	"log"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/lint"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

const debounceDelay = 300 * time.Millisecond

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	uri := doc.URI
	s.pending.schedule(uri, func() {
		if d := s.docs.Get(uri); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.pending.cancel(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.pending.cancel(params.TextDocument.URI)

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

// debouncer runs a per-document action once edits to that document have
// paused for delay.
type debouncer struct {
	mu     sync.Mutex
	delay  time.Duration
	timers map[string]*time.Timer
}

func newDebouncer(delay time.Duration) *debouncer {
	return &debouncer{delay: delay, timers: make(map[string]*time.Timer)}
}

// schedule replaces any pending action for key with fn.
func (d *debouncer) schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.timers[key]; t != nil {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		if d.timers[key] == t {
			delete(d.timers, key)
		}
		d.mu.Unlock()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("lsp: analysis of %s panicked: %v", key, r)
			}
		}()
		fn()
	})
	d.timers[key] = t
}

func (d *debouncer) cancel(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t := d.timers[key]; t != nil {
		t.Stop()
		delete(d.timers, key)
	}
}

func (d *debouncer) stopAll() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
}

// analyzeAndPublish publishes the document's syntax errors or, when it
// parses cleanly, its resolution errors and lint findings.
func (s *Server) analyzeAndPublish(doc *Document) {
	s.ensureAnalysis(doc)

	doc.mu.Lock()
	uri := doc.URI
	version := doc.Version
	content := doc.Content
	stmts := doc.stmts
	parseErr := doc.parseErr
	result := doc.analysis
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	var perrs rdparser.ErrorList
	switch {
	case errors.As(parseErr, &perrs):
		for _, e := range perrs {
			diags = append(diags, syntaxDiagnostic(e))
		}
	case parseErr != nil:
		diags = append(diags, protocol.Diagnostic{
			Severity: severity(protocol.DiagnosticSeverityError),
			Source:   strPtr("qanun"),
			Message:  parseErr.Error(),
		})
	case len(result.Errors) > 0:
		result.Errors.Sort()
		for _, e := range result.Errors {
			diags = append(diags, resolveDiagnostic(e))
		}
	default:
		lintDiags, err := s.linter.LintProgram([]byte(content), uriToPath(uri), stmts, result)
		if err != nil {
			log.Printf("lsp: linting %s: %v", uri, err)
		}
		for _, d := range lintDiags {
			diags = append(diags, convertLintDiagnostic(d))
		}
	}

	v := protocol.UInteger(version) // #nosec G115 -- document versions are non-negative
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Version:     &v,
		Diagnostics: diags,
	})
}

func syntaxDiagnostic(e *rdparser.Error) protocol.Diagnostic {
	width := 0
	if !e.AtEnd && e.Lexeme != "\n" {
		width = utf8.RuneCountInString(e.Lexeme)
	}
	d := protocol.Diagnostic{
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr("qanun"),
		Message:  e.Message,
	}
	if e.Source != nil {
		d.Range = qanunToLSPRange(e.Source, width)
	}
	return d
}

func resolveDiagnostic(e *analysis.Error) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr("qanun"),
		Message:  e.Message,
	}
	if e.Source != nil {
		d.Range = qanunToLSPRange(e.Source, utf8.RuneCountInString(e.Lexeme))
	}
	return d
}

// convertLintDiagnostic converts a lint finding.  A finding without an end
// position gets an empty range at its start.
func convertLintDiagnostic(d lint.Diagnostic) protocol.Diagnostic {
	start := qanunToLSPPosition(&token.Location{Line: d.Pos.Line, Col: d.Pos.Col})
	end := start
	if d.EndPos.Line > 0 {
		end = qanunToLSPPosition(&token.Location{Line: d.EndPos.Line, Col: d.EndPos.Col})
	}
	return protocol.Diagnostic{
		Range:    protocol.Range{Start: start, End: end},
		Severity: severity(mapLintSeverity(d.Severity)),
		Source:   strPtr("qanun-lint"),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

func strPtr(s string) *string {
	return &s
}
