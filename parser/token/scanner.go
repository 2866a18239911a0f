// Copyright © 2024 The Qanun authors

package token

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Scanner facilitates construction of tokens from an in-memory source text.
// It tracks line and column numbers so that every emitted token carries the
// location where it started.
type Scanner struct {
	file string
	path string
	src  []byte

	start     int // byte offset of the current token
	next      int // byte offset of the rune following c
	c         rune
	line      int // line of the rune at next
	col       int // column of the rune at next
	startLine int
	startCol  int
}

// NewScanner initializes and returns a new Scanner over src.
func NewScanner(file string, src []byte) *Scanner {
	return &Scanner{
		file:      file,
		src:       src,
		line:      1,
		col:       1,
		startLine: 1,
		startCol:  1,
	}
}

// ReadScanner reads all of r and returns a Scanner over its contents.
func ReadScanner(file string, r io.Reader) (*Scanner, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return NewScanner(file, src), nil
}

// SetPath associates a physical location (e.g. filesystem path) with s to aid
// in debugging projects which scan many files.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EmitToken returns a token containing the text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore causes the scanner to skip all text scanned since the last call to
// either EmitToken or Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// Text returns a string containing text scanned since the last call to either
// EmitToken or Ignore.
func (s *Scanner) Text() string {
	return string(s.src[s.start:s.next])
}

// Rune returns the last rune scanned.
func (s *Scanner) Rune() rune {
	return s.c
}

// Line returns the line number of the next rune to be scanned.
func (s *Scanner) Line() int {
	return s.line
}

// Peek returns the next rune to be scanned.  At EOF, or when the next bytes
// are not valid utf-8, Peek returns a false second value.
func (s *Scanner) Peek() (rune, bool) {
	return s.PeekAt(0)
}

// PeekAt returns the rune n positions past the next rune to be scanned.
func (s *Scanner) PeekAt(n int) (rune, bool) {
	pos := s.next
	for pos < len(s.src) {
		c, size := utf8.DecodeRune(s.src[pos:])
		if c == utf8.RuneError && size == 1 {
			return utf8.RuneError, false
		}
		if n == 0 {
			return c, true
		}
		n--
		pos += size
	}
	return 0, false
}

// ScanRune includes the next rune in the current token.  ScanRune returns
// io.EOF when the input is exhausted.  An invalid utf-8 byte is consumed and
// reported as an error so that scanning can continue past it.
func (s *Scanner) ScanRune() error {
	if s.next >= len(s.src) {
		return io.EOF
	}
	c, size := utf8.DecodeRune(s.src[s.next:])
	if c == utf8.RuneError && size == 1 {
		b := s.src[s.next]
		s.c = c
		s.next++
		s.col++
		return fmt.Errorf("invalid utf-8 sequence in source text starting with byte %q", b)
	}
	s.c = c
	s.next += size
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return nil
}

// EOF returns true when every byte of the input has been scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.src)
}

func (s *Scanner) Accept(fn func(rune) bool) bool {
	peek, ok := s.Peek()
	if !ok || !fn(peek) {
		return false
	}
	return s.ScanRune() == nil
}

func (s *Scanner) AcceptRune(c rune) bool {
	return s.Accept(func(r rune) bool { return r == c })
}

func (s *Scanner) AcceptAny(charset string) bool {
	return s.Accept(func(r rune) bool { return strings.ContainsRune(charset, r) })
}

func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

// LocStart returns a Location referencing the beginning of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns a Location referencing the current scanner position.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.next,
		Line: s.line,
		Col:  s.col,
	}
}
