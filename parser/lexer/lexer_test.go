// Copyright © 2024 The Qanun authors

package lexer

import (
	"testing"

	"github.com/luthersystems/qanun/parser/token"
	"github.com/stretchr/testify/assert"
)

type tokenSummary struct {
	Type token.Type
	Text string
}

func summarize(toks []*token.Token) []tokenSummary {
	out := make([]tokenSummary, len(toks))
	for i, tok := range toks {
		out[i] = tokenSummary{tok.Type, tok.Text}
	}
	return out
}

func testToken(typ token.Type, text string) tokenSummary {
	return tokenSummary{typ, text}
}

func TestLexer(t *testing.T) {
	tests := []struct {
		input  string
		tokens []tokenSummary
	}{
		{``, []tokenSummary{
			testToken(token.EOF, ""),
		}},
		{`abc`, []tokenSummary{
			testToken(token.IDENTIFIER, "abc"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.EOF, ""),
		}},
		{`(){}[],.;:?`, []tokenSummary{
			testToken(token.PAREN_L, "("),
			testToken(token.PAREN_R, ")"),
			testToken(token.BRACE_L, "{"),
			testToken(token.BRACE_R, "}"),
			testToken(token.BRACKET_L, "["),
			testToken(token.BRACKET_R, "]"),
			testToken(token.COMMA, ","),
			testToken(token.DOT, "."),
			testToken(token.SEMICOLON, ";"),
			testToken(token.COLON, ":"),
			testToken(token.QUESTION, "?"),
			testToken(token.EOF, ""),
		}},
		{`**= ** *= * ++ += + -- -= -> - /= / %= % != ! == = <= < >= >`, []tokenSummary{
			testToken(token.STAR_STAR_EQUAL, "**="),
			testToken(token.STAR_STAR, "**"),
			testToken(token.STAR_EQUAL, "*="),
			testToken(token.STAR, "*"),
			testToken(token.PLUS_PLUS, "++"),
			testToken(token.PLUS_EQUAL, "+="),
			testToken(token.PLUS, "+"),
			testToken(token.MINUS_MINUS, "--"),
			testToken(token.MINUS_EQUAL, "-="),
			testToken(token.ARROW, "->"),
			testToken(token.MINUS, "-"),
			testToken(token.SLASH_EQUAL, "/="),
			testToken(token.SLASH, "/"),
			testToken(token.PERCENT_EQUAL, "%="),
			testToken(token.PERCENT, "%"),
			testToken(token.BANG_EQUAL, "!="),
			testToken(token.BANG, "!"),
			testToken(token.EQUAL_EQUAL, "=="),
			testToken(token.EQUAL, "="),
			testToken(token.LESS_EQUAL, "<="),
			testToken(token.LESS, "<"),
			testToken(token.GREATER_EQUAL, ">="),
			testToken(token.GREATER, ">"),
			testToken(token.EOF, ""),
		}},
		{`10 -5 0.25 7. x`, []tokenSummary{
			testToken(token.NUMBER, "10"),
			testToken(token.MINUS, "-"),
			testToken(token.NUMBER, "5"),
			testToken(token.NUMBER, "0.25"),
			testToken(token.NUMBER, "7"),
			testToken(token.DOT, "."),
			testToken(token.IDENTIFIER, "x"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.EOF, ""),
		}},
		{`"abc" ""`, []tokenSummary{
			testToken(token.STRING, `"abc"`),
			testToken(token.STRING, `""`),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.EOF, ""),
		}},
		{"var x = 1 // one\nval y = x\n", []tokenSummary{
			testToken(token.VAR, "var"),
			testToken(token.IDENTIFIER, "x"),
			testToken(token.EQUAL, "="),
			testToken(token.NUMBER, "1"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.VAL, "val"),
			testToken(token.IDENTIFIER, "y"),
			testToken(token.EQUAL, "="),
			testToken(token.IDENTIFIER, "x"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.EOF, ""),
		}},
		{"if (x) {\n  y++\n}\n", []tokenSummary{
			testToken(token.IF, "if"),
			testToken(token.PAREN_L, "("),
			testToken(token.IDENTIFIER, "x"),
			testToken(token.PAREN_R, ")"),
			testToken(token.BRACE_L, "{"),
			testToken(token.IDENTIFIER, "y"),
			testToken(token.PLUS_PLUS, "++"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.BRACE_R, "}"),
			testToken(token.EOF, ""),
		}},
		{"a +\nb", []tokenSummary{
			testToken(token.IDENTIFIER, "a"),
			testToken(token.PLUS, "+"),
			testToken(token.IDENTIFIER, "b"),
			testToken(token.SEMICOLON, "\n"),
			testToken(token.EOF, ""),
		}},
		{`class Foo_1 : Bar { static fun baz() -> this }`, []tokenSummary{
			testToken(token.CLASS, "class"),
			testToken(token.IDENTIFIER, "Foo_1"),
			testToken(token.COLON, ":"),
			testToken(token.IDENTIFIER, "Bar"),
			testToken(token.BRACE_L, "{"),
			testToken(token.STATIC, "static"),
			testToken(token.FUN, "fun"),
			testToken(token.IDENTIFIER, "baz"),
			testToken(token.PAREN_L, "("),
			testToken(token.PAREN_R, ")"),
			testToken(token.ARROW, "->"),
			testToken(token.THIS, "this"),
			testToken(token.BRACE_R, "}"),
			testToken(token.EOF, ""),
		}},
	}

	for i, test := range tests {
		toks := Scan("test", []byte(test.input))
		assert.Equal(t, test.tokens, summarize(toks), "test %d: %q", i, test.input)
	}
}

func TestLexerLiterals(t *testing.T) {
	toks := Scan("test", []byte(`12.5 "a\nb"`))
	assert.Equal(t, 12.5, toks[0].Literal)
	assert.Equal(t, `a\nb`, toks[1].Literal)
}

func TestLexerLines(t *testing.T) {
	toks := Scan("test", []byte("a\n\"x\ny\"\nb\n"))
	var lines []int
	for _, tok := range toks {
		if tok.Type == token.SEMICOLON {
			continue
		}
		lines = append(lines, tok.Line())
	}
	// a, "x\ny", b, EOF
	assert.Equal(t, []int{1, 2, 4, 5}, lines)
}

func TestLexerErrors(t *testing.T) {
	toks := Scan("test", []byte("a @ b\n\"open"))
	assert.Equal(t, []tokenSummary{
		testToken(token.IDENTIFIER, "a"),
		testToken(token.ERROR, "Unexpected character."),
		testToken(token.IDENTIFIER, "b"),
		testToken(token.SEMICOLON, "\n"),
		testToken(token.ERROR, "Unterminated string."),
		testToken(token.EOF, ""),
	}, summarize(toks))
	assert.Equal(t, 2, toks[4].Line())
}
