// Copyright © 2024 The Qanun authors

package rdparser

import (
	"fmt"
	"sort"

	"github.com/luthersystems/qanun/parser/token"
)

// Error is a lexical or syntax error.
type Error struct {
	Source  *token.Location
	Lexeme  string // offending token text; empty for lexical errors
	AtEnd   bool   // the error was detected at end of input
	Message string
}

func (e *Error) Error() string {
	line := 0
	if e.Source != nil {
		line = e.Source.Line
	}
	var where string
	switch {
	case e.AtEnd:
		where = " at end"
	case e.Lexeme == "\n":
		where = " at newline"
	case e.Lexeme != "":
		where = fmt.Sprintf(" at '%s'", e.Lexeme)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", line, where, e.Message)
}

// ErrorList is the set of errors reported while parsing one source text.
type ErrorList []*Error

func (el ErrorList) Error() string {
	switch len(el) {
	case 0:
		return "no errors"
	case 1:
		return el[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", el[0].Error(), len(el)-1)
	}
}

// Add appends an error to the list.
func (el *ErrorList) Add(err *Error) {
	*el = append(*el, err)
}

// Sort orders the errors by source position.  Lexical errors are discovered
// one token ahead of the parser, so they may be recorded out of order.
func (el ErrorList) Sort() {
	sort.SliceStable(el, func(i, j int) bool {
		a, b := el[i].Source, el[j].Source
		if a == nil || b == nil {
			return false
		}
		return a.Pos < b.Pos
	})
}

// Err returns an error if there are any errors, nil otherwise.
func (el ErrorList) Err() error {
	if len(el) == 0 {
		return nil
	}
	return el
}

// Incomplete reports whether every error was caused by the input ending in
// the middle of a construct.  A REPL uses this to ask for another line
// instead of reporting an error.
func (el ErrorList) Incomplete() bool {
	for _, err := range el {
		if !err.AtEnd {
			return false
		}
	}
	return len(el) > 0
}
