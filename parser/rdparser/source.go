// Copyright © 2024 The Qanun authors

package rdparser

import (
	"github.com/luthersystems/qanun/parser/lexer"
	"github.com/luthersystems/qanun/parser/token"
)

// TokenStream is an arbitrary sequence of tokens.  Typically, a TokenStream
// will be a *lexer.Lexer.
type TokenStream interface {
	// ReadToken returns a set of tokens from an input source.  When no more
	// tokens can be generated ReadToken returns a token with type token.EOF.
	// ReadToken never returns an empty slice.
	ReadToken() []*token.Token
}

// TokenGenerator implements TokenStream.  The function will be called any time
// a TokenSource wants a token.
type TokenGenerator func() []*token.Token

// ReadToken implements TokenStream.
func (fn TokenGenerator) ReadToken() []*token.Token {
	return fn()
}

// TokenSlice returns a TokenStream over a fixed slice of tokens.  The final
// token of toks is repeated once the slice is exhausted, so it should be EOF.
func TokenSlice(toks []*token.Token) TokenStream {
	i := 0
	return TokenGenerator(func() []*token.Token {
		tok := toks[i]
		if i < len(toks)-1 {
			i++
		}
		return []*token.Token{tok}
	})
}

// TokenSource abstracts a TokenStream by adding "memory" and providing methods
// to process and branch off the stream's tokens.  ERROR tokens never reach
// the parser; they are handed to OnError as they are read.
type TokenSource struct {
	lex     TokenStream
	Token   *token.Token
	peek    []*token.Token
	OnError func(*token.Token)

	// nested hides inserted terminators, which is how line breaks behave
	// inside parentheses and brackets.
	nested bool
}

func NewTokenStreamSource(stream TokenStream) *TokenSource {
	return &TokenSource{
		lex: stream,
	}
}

// NewTokenSource initializes and returns a new TokenSource that lexes tokens
// from scanner.
func NewTokenSource(scanner *token.Scanner) *TokenSource {
	return NewTokenStreamSource(lexer.New(scanner))
}

// Peek returns the next token without consuming it.
func (s *TokenSource) Peek() *token.Token {
	return s.PeekAt(0)
}

// PeekAt returns the token n positions after the next one.
func (s *TokenSource) PeekAt(n int) *token.Token {
	for s.fill(0); s.nested && s.peek[0].Inserted(); s.fill(0) {
		s.peek = s.peek[1:]
	}
	s.fill(n)
	if n >= len(s.peek) {
		return s.peek[len(s.peek)-1]
	}
	return s.peek[n]
}

// fill buffers tokens until position n is available or EOF has been read.
func (s *TokenSource) fill(n int) {
	for len(s.peek) <= n {
		if len(s.peek) > 0 && s.peek[len(s.peek)-1].Type == token.EOF {
			return
		}
		for _, tok := range s.lex.ReadToken() {
			if tok.Type == token.ERROR {
				if s.OnError != nil {
					s.OnError(tok)
				}
				continue
			}
			s.peek = append(s.peek, tok)
		}
	}
}

// SetNested controls whether inserted terminators are skipped and returns
// the previous setting.
func (s *TokenSource) SetNested(on bool) bool {
	prev := s.nested
	s.nested = on
	return prev
}

func (s *TokenSource) Accept(fn func(*token.Token) bool) bool {
	if fn(s.Peek()) {
		s.scan()
		return true
	}
	return false
}

func (s *TokenSource) AcceptType(typ ...token.Type) bool {
	for _, typ := range typ {
		if s.Peek().Type == typ {
			s.scan()
			return true
		}
	}
	return false
}

// Scan advances the stream.  At EOF, Scan sets Token to the EOF token and
// returns false.
func (s *TokenSource) Scan() bool {
	if s.IsEOF() {
		s.Token = s.Peek()
		return false
	}
	s.scan()
	return true
}

func (s *TokenSource) IsEOF() bool {
	return s.Peek().Type == token.EOF
}

func (s *TokenSource) scan() {
	s.Token = s.Peek()
	s.peek = s.peek[1:]
}
