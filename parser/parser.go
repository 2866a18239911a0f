// Copyright © 2024 The Qanun authors

// Package parser is the entry point for turning Qanun source text into
// syntax trees.  The work is done by the lexer and rdparser packages.
package parser

import (
	"os"
	"strings"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

// ParseString parses src as a program.  The name is used in error messages
// and token locations.
func ParseString(name, src string) ([]ast.Stmt, error) {
	return rdparser.Parse(name, strings.NewReader(src))
}

// ParseFile parses the program stored at path.
func ParseFile(path string) ([]ast.Stmt, error) {
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	s := token.NewScanner(path, b)
	s.SetPath(path)
	return rdparser.New(s).ParseProgram()
}

// ParseExpression parses src as a single expression.
func ParseExpression(name, src string) (ast.Expr, error) {
	return rdparser.New(token.NewScanner(name, []byte(src))).ParseExpression()
}
