// Copyright © 2024 The Qanun authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/diagnostic"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/lint"
)

func colorMode() diagnostic.ColorMode {
	mode, err := diagnostic.ParseColorMode(viper.GetString(keyColor))
	if err != nil {
		fmt.Fprintf(os.Stderr, "qanun: %v\n", err)
		return diagnostic.ColorAuto
	}
	return mode
}

func newRenderer() *diagnostic.Renderer {
	return &diagnostic.Renderer{Color: colorMode()}
}

// renderError renders err with diagnostic formatting.  When a runtime
// error comes from a file, a hint to run qanun check is appended.
func renderError(w io.Writer, r *diagnostic.Renderer, err error, sourceFile string) {
	diags := diagnostic.FromError(err)
	if _, ok := interp.AsRuntimeError(err); ok && sourceFile != "" && len(diags) > 0 {
		last := &diags[len(diags)-1]
		last.Notes = append(last.Notes, "try: qanun check "+sourceFile)
	}
	_ = r.RenderAll(w, diags)
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: lintSeverity(ld.Severity),
		Message:  ld.Message + " (" + ld.Analyzer + ")",
	}
	if ld.Pos.Line > 0 {
		span := diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		}
		if ld.EndPos.Line == ld.Pos.Line && ld.EndPos.Col > ld.Pos.Col {
			span.EndCol = ld.EndPos.Col
		}
		d.Spans = append(d.Spans, span)
	}
	d.Notes = append(d.Notes, ld.Notes...)
	d.Notes = append(d.Notes, "to suppress: add \"// nolint:"+ld.Analyzer+"\" as a comment on this line")
	return d
}

func lintSeverity(s lint.Severity) diagnostic.Severity {
	switch s {
	case lint.SeverityError:
		return diagnostic.SeverityError
	case lint.SeverityInfo:
		return diagnostic.SeverityNote
	default:
		return diagnostic.SeverityWarning
	}
}

// renderLintDiagnostics renders lint diagnostics with diagnostic formatting.
func renderLintDiagnostics(w io.Writer, diags []lint.Diagnostic) {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	_ = newRenderer().RenderAll(w, ds)
}
