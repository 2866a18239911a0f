// Copyright © 2024 The Qanun authors

package analysis

import (
	"fmt"
	"sort"

	"github.com/luthersystems/qanun/parser/token"
)

// Error is a static error found while resolving a program, such as a
// misplaced return or a duplicate declaration.
type Error struct {
	Source  *token.Location
	Lexeme  string
	Message string
}

func (e *Error) Error() string {
	line := 0
	if e.Source != nil {
		line = e.Source.Line
	}
	return fmt.Sprintf("[line %d] Error at '%s': %s", line, e.Lexeme, e.Message)
}

// ErrorList is the set of errors reported by one resolution pass.
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

// Add records an error at tok.
func (el *ErrorList) Add(tok *token.Token, msg string) {
	*el = append(*el, &Error{
		Source:  tok.Source,
		Lexeme:  tok.Text,
		Message: msg,
	})
}

// Sort orders the errors by source position.
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
