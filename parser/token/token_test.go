// Copyright © 2024 The Qanun authors

package token

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
}

func TestLookup(t *testing.T) {
	for _, word := range Keywords() {
		typ := Lookup(word)
		assert.True(t, typ.IsKeyword(), word)
		assert.Equal(t, word, typ.String())
	}
	assert.Equal(t, IDENTIFIER, Lookup("print"))
	assert.Equal(t, IDENTIFIER, Lookup("Class"))
	assert.Equal(t, VAL, Lookup("val"))
	assert.Len(t, Keywords(), 23)
}

func TestTokenInserted(t *testing.T) {
	assert.True(t, (&Token{Type: SEMICOLON, Text: "\n"}).Inserted())
	assert.False(t, (&Token{Type: SEMICOLON, Text: ";"}).Inserted())
	assert.Equal(t, "newline", (&Token{Type: SEMICOLON, Text: "\n"}).String())
	assert.Equal(t, "end", (&Token{Type: EOF}).String())
	assert.Equal(t, `"x"`, (&Token{Type: IDENTIFIER, Text: "x"}).String())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "a.qan", (&Location{File: "a.qan", Pos: -1}).String())
	assert.Equal(t, "a.qan[4]", (&Location{File: "a.qan", Pos: 4}).String())
	assert.Equal(t, "a.qan:2", (&Location{File: "a.qan", Pos: 4, Line: 2}).String())
	assert.Equal(t, "a.qan:2:3", (&Location{File: "a.qan", Pos: 4, Line: 2, Col: 3}).String())
}
