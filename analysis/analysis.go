// Copyright © 2024 The Qanun authors

// Package analysis implements static resolution of Qanun programs.
//
// The resolver walks a parsed program once before it runs.  For every local
// variable reference it records how many environments the interpreter must
// walk outward to find the binding, and it reports structural errors such as
// a return outside of a function or a break outside of a loop.  The scope
// tree and symbol references it builds are also used by the language server.
package analysis

import (
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// Config controls the behavior of the resolver.
type Config struct {
	// ExtraGlobals are names defined before the program runs, such as
	// natives or top-level declarations from other files.
	ExtraGlobals []ExternalSymbol

	// Filename is the source file being analyzed.
	Filename string
}

// ExternalSymbol represents a global defined outside the analyzed program.
type ExternalSymbol struct {
	Name      string
	Kind      SymbolKind
	Signature *Signature
	DocString string
	Source    *token.Location
}

// Result holds the output of resolution.
type Result struct {
	RootScope *Scope

	// Locals maps each resolved local reference to the number of
	// environments between the reference and its binding.  Global
	// references are absent.
	Locals map[ast.Expr]int

	Symbols    []*Symbol
	References []*Reference
	Unresolved []*UnresolvedRef
	Errors     ErrorList
}

// Err returns the resolution errors ordered by position, or nil.
func (r *Result) Err() error {
	r.Errors.Sort()
	return r.Errors.Err()
}

// Resolve analyzes a parsed program.  Resolution always runs to completion;
// callers must check Result.Err before evaluating the program.
func Resolve(stmts []ast.Stmt, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}

	root := NewScope(ScopeGlobal, nil, nil)
	for _, ext := range cfg.ExtraGlobals {
		root.Define(&Symbol{
			Name:      ext.Name,
			Kind:      ext.Kind,
			Source:    ext.Source,
			Signature: ext.Signature,
			DocString: ext.DocString,
			Defined:   true,
			External:  true,
		})
	}

	r := &resolver{
		root:  root,
		scope: root,
		result: &Result{
			RootScope: root,
			Locals:    make(map[ast.Expr]int),
		},
	}

	// Top-level declarations may be referenced before they appear, e.g.
	// from the body of a function declared earlier.
	r.prescan(stmts)

	r.stmts(stmts)
	return r.result
}
