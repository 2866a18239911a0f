// Copyright © 2024 The Qanun authors

// Package lint runs static checks over resolved Qanun programs.  Each check
// is an Analyzer that walks the statements of one file and reports
// Diagnostics through its Pass.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// Severity indicates the severity level of a lint diagnostic.
type Severity int

const (
	severityUnset Severity = iota // unexported zero sentinel for default detection
	SeverityError
	SeverityWarning
	SeverityInfo
)

var severityNames = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalJSON encodes s by name.  An unset severity encodes as "warning",
// the level analyzers report at unless they say otherwise.
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		s = SeverityWarning
	}
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a severity name.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for sev, n := range severityNames {
		if n == name {
			*s = sev
			return nil
		}
	}
	return fmt.Errorf("unknown severity: %q", name)
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "unused-variable").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Stmts are the top-level parsed statements.
	Stmts []ast.Stmt

	// Semantics holds the result of resolving Stmts.
	Semantics *analysis.Result

	// Modules names the built-in modules an import may bind.
	Modules map[string]bool

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	d := Diagnostic{
		Message: fmt.Sprintf(format, args...),
	}
	if source != nil {
		d.Pos = Position{File: source.File, Line: source.Line, Col: source.Col}
	}
	p.Report(d)
}

// ReportTokenf reports a diagnostic spanning the text of tok.
func (p *Pass) ReportTokenf(tok *token.Token, format string, args ...interface{}) {
	d := Diagnostic{
		Message: fmt.Sprintf(format, args...),
	}
	if tok != nil && tok.Source != nil {
		src := tok.Source
		d.Pos = Position{File: src.File, Line: src.Line, Col: src.Col}
		d.EndPos = Position{File: src.File, Line: src.Line, Col: src.Col + utf8.RuneCountInString(tok.Text)}
	}
	p.Report(d)
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// EndPos is the exclusive end of the problem's span, when known.
	EndPos Position `json:"end"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file,omitempty"`
	Line int    `json:"line,omitempty"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style: file:line: message (analyzer)
// with optional note lines appended.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Modules names the built-in modules an import may bind.  Names
	// referenced after importing one of them are not reported as undefined.
	Modules []string
}

// LintProgram runs the analyzers over a parsed program and its resolution
// result.  The source text is consulted for nolint comments.
func (l *Linter) LintProgram(source []byte, filename string, stmts []ast.Stmt, semantics *analysis.Result) ([]Diagnostic, error) {
	modules := make(map[string]bool, len(l.Modules))
	for _, m := range l.Modules {
		modules[m] = true
	}

	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  filename,
			Stmts:     stmts,
			Semantics: semantics,
			Modules:   modules,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		for i := range pass.diagnostics {
			if pass.diagnostics[i].Pos.File == "" {
				pass.diagnostics[i].Pos.File = filename
			}
		}
		all = append(all, pass.diagnostics...)
	}

	all = nolintDirectives(source).filter(all)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Pos.before(all[j].Pos) })
	return all, nil
}

func (p Position) before(q Position) bool {
	if p.File != q.File {
		return p.File < q.File
	}
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// LintFile parses, resolves, and lints a source file in one call.  A syntax
// or resolution error is returned as is and no diagnostics are produced.
func (l *Linter) LintFile(source []byte, filename string, cfg *analysis.Config) ([]Diagnostic, error) {
	stmts, result, err := analysis.AnalyzeFile(source, filename, cfg)
	if err != nil {
		return nil, err
	}
	if err := result.Err(); err != nil {
		return nil, err
	}
	return l.LintProgram(source, filename, stmts, result)
}

// suppressions maps a line number to the analyzers silenced there by a
// nolint comment.  A nil set silences every analyzer.
type suppressions map[int]map[string]bool

// nolintDirectives scans source for "// nolint" and "// nolint:a,b"
// comments.
func nolintDirectives(source []byte) suppressions {
	sup := make(suppressions)
	for i, ln := range strings.Split(string(source), "\n") {
		_, comment, ok := strings.Cut(ln, "//")
		if !ok {
			continue
		}
		rest, ok := strings.CutPrefix(strings.TrimSpace(comment), "nolint")
		if !ok {
			continue
		}
		switch {
		case rest == "" || rest[0] == ' ':
			sup[i+1] = nil
		case rest[0] == ':':
			fields := strings.Fields(rest[1:])
			if len(fields) == 0 {
				continue
			}
			names := make(map[string]bool)
			for _, name := range strings.Split(fields[0], ",") {
				names[strings.TrimSpace(name)] = true
			}
			sup[i+1] = names
		}
	}
	return sup
}

func (sup suppressions) covers(d Diagnostic) bool {
	names, ok := sup[d.Pos.Line]
	return ok && (names == nil || names[d.Analyzer])
}

func (sup suppressions) filter(diags []Diagnostic) []Diagnostic {
	var kept []Diagnostic
	for _, d := range diags {
		if !sup.covers(d) {
			kept = append(kept, d)
		}
	}
	return kept
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerUndefinedGlobal,
		AnalyzerUnusedVariable,
		AnalyzerCallArity,
		AnalyzerUnreachableCode,
		AnalyzerSelfAssign,
	}
}
