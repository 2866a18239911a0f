// Copyright © 2024 The Qanun authors

package lsp

import (
	"strings"
	"unicode/utf8"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// qanunToLSPPosition converts a 1-based Qanun location to a 0-based LSP position.
func qanunToLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// qanunToLSPRange converts a token location to a single-line LSP range
// that is width characters wide.
func qanunToLSPRange(loc *token.Location, width int) protocol.Range {
	start := qanunToLSPPosition(loc)
	end := protocol.Position{
		Line:      start.Line,
		Character: start.Character + safeUint(width),
	}
	return protocol.Range{Start: start, End: end}
}

// nameRange is the range covered by name written at loc.
func nameRange(loc *token.Location, name string) protocol.Range {
	return qanunToLSPRange(loc, utf8.RuneCountInString(name))
}

// symbolAtPosition finds the analysis symbol at the given 0-based LSP
// position in the document's analysis result. It returns both the symbol
// (definition) and the specific reference that was hit, if any.
func symbolAtPosition(doc *Document, line, col int) (*analysis.Symbol, *analysis.Reference) {
	if doc == nil || doc.analysis == nil {
		return nil, nil
	}
	qLine := line + 1
	qCol := col + 1

	// References first; they point to specific usage sites.
	for _, ref := range doc.analysis.References {
		if ref.Source == nil || ref.Source.Line != qLine {
			continue
		}
		if locContainsCol(ref.Source, ref.Symbol.Name, qCol) {
			return ref.Symbol, ref
		}
	}

	for _, sym := range doc.analysis.Symbols {
		if sym.External || sym.Source == nil || sym.Source.Line != qLine {
			continue
		}
		if locContainsCol(sym.Source, sym.Name, qCol) {
			return sym, nil
		}
	}
	return nil, nil
}

// locContainsCol checks whether a 1-based column falls within name
// written at loc.
func locContainsCol(loc *token.Location, name string, col int) bool {
	start := loc.Col
	if start == 0 {
		return false
	}
	end := start + utf8.RuneCountInString(name)
	return col >= start && col < end
}

// wordAtPosition extracts the identifier-like word at the given 0-based LSP
// position.  Dots are included so that a module member such as Time.now is
// returned whole.  The cursor can be inside or at the end of a word.
func wordAtPosition(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := []rune(lines[line])
	if col < 0 || col > len(ln) {
		return ""
	}
	start := col
	for start > 0 && isWordChar(ln[start-1]) {
		start--
	}
	end := col
	for end < len(ln) && isWordChar(ln[end]) {
		end++
	}
	return string(ln[start:end])
}

func isWordChar(c rune) bool {
	return c == '_' || c == '.' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scopeAtPosition returns the innermost scope that contains the given
// 1-based line and column.  Scopes only record where they start, so a
// scope is taken to extend to the start of its next sibling.
func scopeAtPosition(root *analysis.Scope, line, col int) *analysis.Scope {
	if root == nil {
		return nil
	}
	best := root
	for _, child := range root.Children {
		if s := scopeContaining(child, line, col); s != nil {
			best = s
		}
	}
	return best
}

func scopeContaining(scope *analysis.Scope, line, col int) *analysis.Scope {
	loc := scopeStart(scope.Node)
	if loc == nil || loc.Line == 0 {
		return nil
	}
	if line < loc.Line || (line == loc.Line && col < loc.Col) {
		return nil
	}
	best := scope
	for _, child := range scope.Children {
		if s := scopeContaining(child, line, col); s != nil {
			best = s
		}
	}
	return best
}

func scopeStart(node ast.Node) *token.Location {
	if node == nil {
		return nil
	}
	return node.Pos()
}

// collectVisibleSymbols walks the scope chain outward from scope, collecting
// all symbols visible at that point.  Inner names shadow outer ones.
func collectVisibleSymbols(scope *analysis.Scope) []*analysis.Symbol {
	seen := make(map[string]bool)
	var result []*analysis.Symbol
	for s := scope; s != nil; s = s.Parent {
		for name, sym := range s.Symbols {
			if name == "this" || name == "super" || seen[name] {
				continue
			}
			seen[name] = true
			result = append(result, sym)
		}
	}
	return result
}

// mapCompletionItemKind converts an analysis.SymbolKind to an LSP CompletionItemKind.
func mapCompletionItemKind(kind analysis.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case analysis.SymFunction, analysis.SymBuiltin:
		return protocol.CompletionItemKindFunction
	case analysis.SymMethod:
		return protocol.CompletionItemKindMethod
	case analysis.SymConstant:
		return protocol.CompletionItemKindConstant
	case analysis.SymClass:
		return protocol.CompletionItemKindClass
	case analysis.SymModule:
		return protocol.CompletionItemKindModule
	default:
		return protocol.CompletionItemKindVariable
	}
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}

// pathToURI converts a filesystem path to a file:// URI.
func pathToURI(path string) string {
	if strings.HasPrefix(path, "/") {
		return "file://" + path
	}
	return path
}
