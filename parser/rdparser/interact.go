// Copyright © 2024 The Qanun authors

package rdparser

import (
	"errors"
	"strings"
	"sync"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// Interactive implements a parser that is fed one line of input at a time.
// Lines are buffered until they form a complete program, which lets a REPL
// accept constructs spanning several lines.
type Interactive struct {
	name       string
	prompt     string
	promptCont string
	buf        strings.Builder
	mut        sync.RWMutex
}

// NewInteractive initializes and returns a new Interactive parser.  The name
// is used as the file name in token locations.
func NewInteractive(name string) *Interactive {
	return &Interactive{name: name}
}

// SetPrompts configures the string prompts returned by p.Prompt().  The cont
// string is used to prompt the user when the parser is in the middle of
// parsing a statement.
func (p *Interactive) SetPrompts(prompt, cont string) {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.prompt = prompt
	p.promptCont = cont
}

// Prompt returns the prompt a REPL should display for the next line.
func (p *Interactive) Prompt() string {
	if p.IsParsing() {
		p.mut.RLock()
		defer p.mut.RUnlock()
		return p.promptCont
	}
	p.mut.RLock()
	defer p.mut.RUnlock()
	return p.prompt
}

// IsParsing returns true if p holds an incomplete statement.  IsParsing can
// be called at any time, potentially by concurrent goroutines or when p is
// nil.
func (p *Interactive) IsParsing() bool {
	if p == nil {
		return false
	}
	p.mut.RLock()
	defer p.mut.RUnlock()
	return p.buf.Len() > 0
}

// Feed appends line to the buffered input and attempts to parse it.  When
// the input ends in the middle of a construct Feed returns nil statements and
// a nil error and keeps the input buffered.  Otherwise the buffer is cleared
// and the parsed statements, or the syntax errors, are returned.
func (p *Interactive) Feed(line string) ([]ast.Stmt, error) {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.buf.WriteString(line)
	p.buf.WriteByte('\n')
	src := p.buf.String()
	if strings.TrimSpace(src) == "" {
		p.buf.Reset()
		return nil, nil
	}
	stmts, err := New(token.NewScanner(p.name, []byte(src))).ParseProgram()
	var errs ErrorList
	if errors.As(err, &errs) && errs.Incomplete() {
		return nil, nil
	}
	p.buf.Reset()
	return stmts, err
}

// Reset discards any buffered input.
func (p *Interactive) Reset() {
	p.mut.Lock()
	defer p.mut.Unlock()
	p.buf.Reset()
}
