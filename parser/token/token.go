// Copyright © 2024 The Qanun authors

package token

import "fmt"

// Source is an abstract stream of tokens which allows one token lookahead.
type Source interface {
	// Token returns the current token.  Token returns nil if Scan has not been
	// called.
	Token() *Token
	// Peek returns the next token in the stream.  At the end of the stream
	// Peek should return a value to indicate the lack of a token (EOF).
	Peek() *Token
	// Scan advances the token stream if possible.  If there are no tokens
	// remaining Scan returns false.
	Scan() bool
}

// Token is a lexical unit of Qanun source.  Tokens are immutable once
// produced by the lexer.
type Token struct {
	Type Type
	Text string
	// Literal holds the decoded value of NUMBER (float64) and STRING (string)
	// tokens.  It is nil for every other type.
	Literal any
	Source  *Location
}

// Inserted reports whether tok is a statement terminator that the lexer
// inserted at a line break rather than one written in the source.
func (tok *Token) Inserted() bool {
	return tok.Type == SEMICOLON && tok.Text == "\n"
}

// Line returns the 1-based source line tok started on, or 0 when unknown.
func (tok *Token) Line() int {
	if tok == nil || tok.Source == nil {
		return 0
	}
	return tok.Source.Line
}

func (tok *Token) String() string {
	if tok.Inserted() {
		return "newline"
	}
	if tok.Type == EOF {
		return "end"
	}
	return fmt.Sprintf("%q", tok.Text)
}

type Type uint

// Type constants used by the Qanun lexer and parser.
const (
	INVALID Type = iota
	ERROR
	EOF

	// Delimiters
	PAREN_L
	PAREN_R
	BRACE_L
	BRACE_R
	BRACKET_L
	BRACKET_R
	COMMA
	DOT
	SEMICOLON
	COLON
	QUESTION
	ARROW

	// Operators
	BANG
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	GREATER
	GREATER_EQUAL
	LESS
	LESS_EQUAL
	MINUS
	MINUS_MINUS
	MINUS_EQUAL
	PLUS
	PLUS_PLUS
	PLUS_EQUAL
	STAR
	STAR_EQUAL
	STAR_STAR
	STAR_STAR_EQUAL
	SLASH
	SLASH_EQUAL
	PERCENT
	PERCENT_EQUAL

	// Literals
	IDENTIFIER
	STRING
	NUMBER

	// Keywords
	AND
	BREAK
	CASE
	CLASS
	CONTINUE
	DEFAULT
	ELSE
	FALSE
	FOR
	FUN
	IF
	IMPORT
	NIL
	OR
	RETURN
	STATIC
	SUPER
	SWITCH
	THIS
	TRUE
	VAL
	VAR
	WHILE

	numTokenTypes
)

var typeStrings = [numTokenTypes]string{
	INVALID:         "invalid",
	ERROR:           "error",
	EOF:             "EOF",
	PAREN_L:         "(",
	PAREN_R:         ")",
	BRACE_L:         "{",
	BRACE_R:         "}",
	BRACKET_L:       "[",
	BRACKET_R:       "]",
	COMMA:           ",",
	DOT:             ".",
	SEMICOLON:       ";",
	COLON:           ":",
	QUESTION:        "?",
	ARROW:           "->",
	BANG:            "!",
	BANG_EQUAL:      "!=",
	EQUAL:           "=",
	EQUAL_EQUAL:     "==",
	GREATER:         ">",
	GREATER_EQUAL:   ">=",
	LESS:            "<",
	LESS_EQUAL:      "<=",
	MINUS:           "-",
	MINUS_MINUS:     "--",
	MINUS_EQUAL:     "-=",
	PLUS:            "+",
	PLUS_PLUS:       "++",
	PLUS_EQUAL:      "+=",
	STAR:            "*",
	STAR_EQUAL:      "*=",
	STAR_STAR:       "**",
	STAR_STAR_EQUAL: "**=",
	SLASH:           "/",
	SLASH_EQUAL:     "/=",
	PERCENT:         "%",
	PERCENT_EQUAL:   "%=",
	IDENTIFIER:      "identifier",
	STRING:          "string",
	NUMBER:          "number",
	AND:             "and",
	BREAK:           "break",
	CASE:            "case",
	CLASS:           "class",
	CONTINUE:        "continue",
	DEFAULT:         "default",
	ELSE:            "else",
	FALSE:           "false",
	FOR:             "for",
	FUN:             "fun",
	IF:              "if",
	IMPORT:          "import",
	NIL:             "nil",
	OR:              "or",
	RETURN:          "return",
	STATIC:          "static",
	SUPER:           "super",
	SWITCH:          "switch",
	THIS:            "this",
	TRUE:            "true",
	VAL:             "val",
	VAR:             "var",
	WHILE:           "while",
}

func (typ Type) String() string {
	if typ >= numTokenTypes {
		return typeStrings[INVALID]
	}
	return typeStrings[typ]
}

// IsKeyword returns true if typ is a reserved word.
func (typ Type) IsKeyword() bool {
	return AND <= typ && typ <= WHILE
}

var keywords = func() map[string]Type {
	m := make(map[string]Type, WHILE-AND+1)
	for typ := AND; typ <= WHILE; typ++ {
		m[typeStrings[typ]] = typ
	}
	return m
}()

// Lookup returns the keyword type for ident, or IDENTIFIER if ident is not a
// reserved word.
func Lookup(ident string) Type {
	if typ, ok := keywords[ident]; ok {
		return typ
	}
	return IDENTIFIER
}

// Keywords returns every reserved word of the language.
func Keywords() []string {
	words := make([]string, 0, len(keywords))
	for typ := AND; typ <= WHILE; typ++ {
		words = append(words, typeStrings[typ])
	}
	return words
}

type Location struct {
	File string // a name representing the source stream
	Path string // a physical location which may differ from File
	Pos  int
	Line int // line number (starting at 1 when tracked)
	Col  int // line column number (starting at 1 when tracked)
}

func (loc *Location) String() string {
	switch {
	case loc.Pos < 0:
		return loc.File
	case loc.Line == 0:
		return fmt.Sprintf("%s[%d]", loc.File, loc.Pos)
	case loc.Col == 0:
		return fmt.Sprintf("%s:%d", loc.File, loc.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", loc.File, loc.Line, loc.Col)
	}
}

type LocationError struct {
	Err    error
	Source *Location
}

func (err *LocationError) Error() string {
	return fmt.Sprintf("%s: %s", err.Source, err.Err)
}

func (err *LocationError) Unwrap() error {
	return err.Err
}
