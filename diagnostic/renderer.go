// Copyright © 2024 The Qanun authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// tabWidth is the number of columns a tab occupies in a rendered snippet.
const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// WithSource returns a copy of r that reads the source named name from src
// and falls back to r's reader for other names.  Drivers use it for
// programs that do not come from a file, like -e scripts and REPL input.
func (r *Renderer) WithSource(name, src string) *Renderer {
	next := r.reader()
	cp := *r
	cp.SourceReader = func(file string) ([]byte, error) {
		if file == name {
			return []byte(src), nil
		}
		return next(file)
	}
	return &cp
}

func (r *Renderer) reader() func(string) ([]byte, error) {
	if r.SourceReader != nil {
		return r.SourceReader
	}
	return os.ReadFile
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	return r.RenderAll(w, []Diagnostic{d})
}

// RenderAll writes all diagnostics to w separated by blank lines.  Each
// source file is read at most once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	st := styleFor(r.Color, w)
	src := &sourceLines{read: r.reader(), files: make(map[string][]string)}
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeDiagnostic(&b, d, src, st)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func writeDiagnostic(b *strings.Builder, d Diagnostic, src *sourceLines, st style) {
	b.WriteString(st.paint(st.severity[d.Severity], d.Severity.String()))
	b.WriteString(": ")
	b.WriteString(st.paint(st.message, d.Message))
	b.WriteByte('\n')
	for _, span := range d.Spans {
		writeSpan(b, span, src, st)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(b, "   %s note: %s\n", st.paint(st.note, "="), note)
	}
}

// writeSpan prints the location of span followed, when the source line is
// available, by the line itself and a caret underline.
func writeSpan(b *strings.Builder, span Span, src *sourceLines, st style) {
	fmt.Fprintf(b, "  %s %s\n", st.paint(st.gutter, "-->"), spanLocation(span))

	text, ok := src.line(span.File, span.Line)
	if !ok {
		fmt.Fprintf(b, "   %s\n", st.paint(st.gutter, "|"))
		return
	}
	number := strconv.Itoa(span.Line)
	blank := strings.Repeat(" ", len(number))
	gutter := func(label string) string {
		return " " + st.paint(st.gutter, label+" |")
	}

	runes := []rune(text)
	start, end := underlineBounds(runes, span.Col, span.EndCol)
	fmt.Fprintf(b, "%s\n", gutter(blank))
	fmt.Fprintf(b, "%s  %s\n", gutter(number), expandTabs(runes))
	b.WriteString(gutter(blank))
	b.WriteString("  ")
	b.WriteString(strings.Repeat(" ", displayWidth(runes[:start])))
	b.WriteString(st.paint(st.marker, strings.Repeat("^", end-start)))
	if span.Label != "" {
		b.WriteString(" ")
		b.WriteString(st.paint(st.marker, span.Label))
	}
	b.WriteByte('\n')
	fmt.Fprintf(b, "%s\n", gutter(blank))
}

func spanLocation(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return fmt.Sprintf("%s:%d", span.File, span.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	}
}

// underlineBounds converts the 1-based inclusive columns of a span into a
// half-open rune range of line.  Without an end column the range covers
// the token starting at col.
func underlineBounds(line []rune, col, endCol int) (int, int) {
	start := col - 1
	if start < 0 {
		start = 0
	}
	if start > len(line) {
		start = len(line)
	}
	end := endCol
	if end <= 0 {
		end = tokenEnd(line, start)
	}
	if end > len(line) {
		end = len(line)
	}
	if end <= start {
		end = start + 1
	}
	return start, end
}

// tokenDelims end an identifier or literal when no explicit end column is
// given.
const tokenDelims = " \t()[]{},.;:?+-*/%!=<>"

func tokenEnd(line []rune, start int) int {
	end := start
	for end < len(line) && !strings.ContainsRune(tokenDelims, line[end]) {
		end++
	}
	return end
}

func displayWidth(rs []rune) int {
	w := 0
	for _, c := range rs {
		if c == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

func expandTabs(rs []rune) string {
	return strings.ReplaceAll(string(rs), "\t", strings.Repeat(" ", tabWidth))
}

// sourceLines caches the lines of each source file read during a render.
type sourceLines struct {
	read  func(string) ([]byte, error)
	files map[string][]string
}

func (s *sourceLines) line(file string, n int) (string, bool) {
	if file == "" || n <= 0 {
		return "", false
	}
	lines, seen := s.files[file]
	if !seen {
		if data, err := s.read(file); err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		s.files[file] = lines
	}
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}
