// Copyright © 2024 The Qanun authors

package analysis

import "github.com/luthersystems/qanun/parser/ast"

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeGlobal   ScopeKind = iota // program level
	ScopeFunction                  // function, method or lambda body
	ScopeBlock                     // braces or a switch arm
	ScopeClass                     // binds this
	ScopeSuper                     // binds super
	ScopeLoop                      // for-each variable
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeGlobal:
		return "global"
	case ScopeFunction:
		return "function"
	case ScopeBlock:
		return "block"
	case ScopeClass:
		return "class"
	case ScopeSuper:
		return "super"
	case ScopeLoop:
		return "loop"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope in the source.  Every scope other than
// the global one corresponds to exactly one runtime environment.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Symbols  map[string]*Symbol
	Node     ast.Node // the AST node that introduced this scope
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
		Node:    node,
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Define adds a symbol to this scope.
func (s *Scope) Define(sym *Symbol) {
	sym.Scope = s
	s.Symbols[sym.Name] = sym
}

// Lookup resolves a symbol by walking the parent chain.
// Returns nil if the symbol is not found.
func (s *Scope) Lookup(name string) *Symbol {
	sym, _ := s.lookupDepth(name)
	return sym
}

// LookupLocal resolves a symbol only in this scope (not parents).
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}

// lookupDepth resolves name and returns the number of parent links walked
// to find it.
func (s *Scope) lookupDepth(name string) (*Symbol, int) {
	depth := 0
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.Symbols[name]; ok {
			return sym, depth
		}
		depth++
	}
	return nil, -1
}
