// Copyright © 2024 The Qanun authors

// Package lexer converts Qanun source text into tokens.  Besides the usual
// operators, literals and keywords, the lexer inserts statement terminators
// at line breaks that follow a token which could end a statement.
package lexer

import (
	"io"
	"strconv"

	"github.com/luthersystems/qanun/parser/token"
)

type LexFn func(*Lexer) []*token.Token

type Lexer struct {
	scanner *token.Scanner
	lex     LexFn
	last    *token.Token
}

func New(s *token.Scanner) *Lexer {
	lex := &Lexer{
		scanner: s,
		lex:     (*Lexer).readToken,
	}
	return lex
}

// ReadToken returns the next tokens in the stream.  Once EOF has been
// returned every subsequent call returns EOF again.
func (lex *Lexer) ReadToken() []*token.Token {
	return lex.lex(lex)
}

// ScanAll reads the remaining tokens, including the final EOF token.
func (lex *Lexer) ScanAll() []*token.Token {
	var toks []*token.Token
	for {
		next := lex.ReadToken()
		toks = append(toks, next...)
		if len(next) > 0 && next[len(next)-1].Type == token.EOF {
			return toks
		}
	}
}

func (lex *Lexer) readToken() []*token.Token {
	if term := lex.skipWhitespace(); term != nil {
		return term
	}
	if lex.scanner.EOF() {
		if lex.needsTerminator() {
			return lex.emit(token.SEMICOLON, "\n")
		}
		lex.lex = (*Lexer).readEOF
		return lex.lex(lex)
	}
	if err := lex.scanner.ScanRune(); err != nil {
		return lex.errorf("Unexpected character.")
	}
	c := lex.scanner.Rune()
	switch c {
	case '(':
		return lex.emitText(token.PAREN_L)
	case ')':
		return lex.emitText(token.PAREN_R)
	case '{':
		return lex.emitText(token.BRACE_L)
	case '}':
		return lex.emitText(token.BRACE_R)
	case '[':
		return lex.emitText(token.BRACKET_L)
	case ']':
		return lex.emitText(token.BRACKET_R)
	case ',':
		return lex.emitText(token.COMMA)
	case '.':
		return lex.emitText(token.DOT)
	case ';':
		return lex.emitText(token.SEMICOLON)
	case ':':
		return lex.emitText(token.COLON)
	case '?':
		return lex.emitText(token.QUESTION)
	case '!':
		return lex.either('=', token.BANG_EQUAL, token.BANG)
	case '=':
		return lex.either('=', token.EQUAL_EQUAL, token.EQUAL)
	case '<':
		return lex.either('=', token.LESS_EQUAL, token.LESS)
	case '>':
		return lex.either('=', token.GREATER_EQUAL, token.GREATER)
	case '/':
		return lex.either('=', token.SLASH_EQUAL, token.SLASH)
	case '%':
		return lex.either('=', token.PERCENT_EQUAL, token.PERCENT)
	case '+':
		switch {
		case lex.scanner.AcceptRune('+'):
			return lex.emitText(token.PLUS_PLUS)
		case lex.scanner.AcceptRune('='):
			return lex.emitText(token.PLUS_EQUAL)
		}
		return lex.emitText(token.PLUS)
	case '-':
		switch {
		case lex.scanner.AcceptRune('-'):
			return lex.emitText(token.MINUS_MINUS)
		case lex.scanner.AcceptRune('='):
			return lex.emitText(token.MINUS_EQUAL)
		case lex.scanner.AcceptRune('>'):
			return lex.emitText(token.ARROW)
		}
		return lex.emitText(token.MINUS)
	case '*':
		if lex.scanner.AcceptRune('*') {
			return lex.either('=', token.STAR_STAR_EQUAL, token.STAR_STAR)
		}
		return lex.either('=', token.STAR_EQUAL, token.STAR)
	case '"':
		return lex.readString()
	}
	switch {
	case isDigit(c):
		return lex.readNumber()
	case isIdentStart(c):
		return lex.readIdentifier()
	}
	return lex.errorf("Unexpected character.")
}

func (lex *Lexer) readEOF() []*token.Token {
	return lex.emit(token.EOF, "")
}

func (lex *Lexer) either(c rune, match token.Type, otherwise token.Type) []*token.Token {
	if lex.scanner.AcceptRune(c) {
		return lex.emitText(match)
	}
	return lex.emitText(otherwise)
}

func (lex *Lexer) readString() []*token.Token {
	lex.scanner.AcceptSeq(func(c rune) bool { return c != '"' })
	if !lex.scanner.AcceptRune('"') {
		return lex.errorf("Unterminated string.")
	}
	text := lex.scanner.Text()
	toks := lex.emitText(token.STRING)
	toks[0].Literal = text[1 : len(text)-1]
	return toks
}

func (lex *Lexer) readNumber() []*token.Token {
	lex.scanner.AcceptSeq(isDigit)
	if c, ok := lex.scanner.Peek(); ok && c == '.' {
		if d, ok := lex.scanner.PeekAt(1); ok && isDigit(d) {
			lex.scanner.AcceptRune('.')
			lex.scanner.AcceptSeq(isDigit)
		}
	}
	x, err := strconv.ParseFloat(lex.scanner.Text(), 64)
	if err != nil {
		return lex.errorf("Invalid number.")
	}
	toks := lex.emitText(token.NUMBER)
	toks[0].Literal = x
	return toks
}

func (lex *Lexer) readIdentifier() []*token.Token {
	lex.scanner.AcceptSeq(isIdent)
	return lex.emitText(token.Lookup(lex.scanner.Text()))
}

// skipWhitespace discards blanks and line comments.  When a line break ends a
// statement a terminator token is returned.
func (lex *Lexer) skipWhitespace() []*token.Token {
	for {
		c, ok := lex.scanner.Peek()
		if !ok {
			return nil
		}
		switch {
		case c == '\n':
			_ = lex.scanner.ScanRune()
			if lex.needsTerminator() {
				return lex.emit(token.SEMICOLON, "\n")
			}
			lex.scanner.Ignore()
		case c == ' ' || c == '\t' || c == '\r':
			_ = lex.scanner.ScanRune()
			lex.scanner.Ignore()
		case c == '/':
			if next, ok := lex.scanner.PeekAt(1); !ok || next != '/' {
				return nil
			}
			lex.scanner.AcceptSeq(func(c rune) bool { return c != '\n' })
			lex.scanner.Ignore()
		default:
			return nil
		}
	}
}

// needsTerminator reports whether the last emitted token can end a
// statement.
func (lex *Lexer) needsTerminator() bool {
	if lex.last == nil {
		return false
	}
	switch lex.last.Type {
	case token.IDENTIFIER, token.NUMBER, token.STRING,
		token.TRUE, token.FALSE, token.NIL, token.THIS, token.SUPER,
		token.PAREN_R, token.BRACKET_R,
		token.PLUS_PLUS, token.MINUS_MINUS,
		token.RETURN, token.BREAK, token.CONTINUE:
		return true
	}
	return false
}

func (lex *Lexer) emit(typ token.Type, text string) []*token.Token {
	tok := lex.scanner.EmitToken(typ)
	tok.Text = text
	lex.last = tok
	return []*token.Token{tok}
}

func (lex *Lexer) emitText(typ token.Type) []*token.Token {
	tok := lex.scanner.EmitToken(typ)
	lex.last = tok
	return []*token.Token{tok}
}

// errorf emits an ERROR token whose text is the error message.  Lexing
// continues with the following rune.
func (lex *Lexer) errorf(msg string) []*token.Token {
	tok := lex.scanner.EmitToken(token.ERROR)
	tok.Text = msg
	return []*token.Token{tok}
}

func isDigit(c rune) bool {
	return '0' <= c && c <= '9'
}

func isIdentStart(c rune) bool {
	return c == '_' || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}

func isIdent(c rune) bool {
	return isIdentStart(c) || isDigit(c)
}

// Scan is a convenience that lexes src completely.
func Scan(name string, src []byte) []*token.Token {
	return New(token.NewScanner(name, src)).ScanAll()
}

// ScanReader lexes all of r.
func ScanReader(name string, r io.Reader) ([]*token.Token, error) {
	s, err := token.ReadScanner(name, r)
	if err != nil {
		return nil, err
	}
	return New(s).ScanAll(), nil
}
