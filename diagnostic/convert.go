// Copyright © 2024 The Qanun authors

package diagnostic

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

// FromError converts err into diagnostics.  Parse and resolve error lists
// produce one diagnostic per entry.  Runtime errors carry their call stack
// as notes.  Any other error becomes a single diagnostic without spans.
func FromError(err error) []Diagnostic {
	if err == nil {
		return nil
	}
	var perrs rdparser.ErrorList
	if errors.As(err, &perrs) {
		diags := make([]Diagnostic, len(perrs))
		for i, e := range perrs {
			label := ""
			switch {
			case e.AtEnd:
				label = "at end of input"
			case e.Lexeme == "\n":
				label = "at newline"
			}
			lexeme := e.Lexeme
			if lexeme == "\n" {
				lexeme = ""
			}
			diags[i] = Diagnostic{
				Severity: SeverityError,
				Message:  e.Message,
				Spans:    spansAt(e.Source, lexeme, label),
			}
		}
		return diags
	}
	var rerrs analysis.ErrorList
	if errors.As(err, &rerrs) {
		diags := make([]Diagnostic, len(rerrs))
		for i, e := range rerrs {
			diags[i] = Diagnostic{
				Severity: SeverityError,
				Message:  e.Message,
				Spans:    spansAt(e.Source, e.Lexeme, ""),
			}
		}
		return diags
	}
	if rterr, ok := interp.AsRuntimeError(err); ok {
		return []Diagnostic{runtimeDiagnostic(rterr)}
	}
	return []Diagnostic{Errorf("%v", err)}
}

func runtimeDiagnostic(err *interp.RuntimeError) Diagnostic {
	d := Diagnostic{
		Severity: SeverityError,
		Message:  err.Message,
	}
	if err.Token != nil {
		d.Spans = spansAt(err.Token.Source, err.Token.Text, "")
	}
	if err.Stack == nil {
		return d
	}
	for i := len(err.Stack.Frames) - 1; i >= 0; i-- {
		frame := &err.Stack.Frames[i]
		loc := "unknown"
		if frame.Source != nil {
			loc = frame.Source.String()
		}
		d.Notes = append(d.Notes, fmt.Sprintf("in %s called at %s", frame.QualifiedName(), loc))
	}
	return d
}

func spansAt(loc *token.Location, lexeme, label string) []Span {
	if loc == nil || loc.Line == 0 {
		return nil
	}
	span := Span{
		File:  loc.File,
		Line:  loc.Line,
		Col:   loc.Col,
		Label: label,
	}
	if loc.Path != "" {
		span.File = loc.Path
	}
	if n := utf8.RuneCountInString(lexeme); n > 0 && loc.Col > 0 {
		span.EndCol = loc.Col + n - 1
	}
	return []Span{span}
}
