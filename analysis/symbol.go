// Copyright © 2024 The Qanun authors

package analysis

import (
	"strings"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymVariable  SymbolKind = iota // var binding
	SymConstant                    // val binding
	SymFunction                    // fun declaration
	SymClass                       // class declaration
	SymMethod                      // instance or static method
	SymParameter                   // function parameter or loop variable
	SymBuiltin                     // native function
	SymModule                      // built-in module
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymConstant:
		return "constant"
	case SymFunction:
		return "function"
	case SymClass:
		return "class"
	case SymMethod:
		return "method"
	case SymParameter:
		return "parameter"
	case SymBuiltin:
		return "builtin"
	case SymModule:
		return "module"
	default:
		return "unknown"
	}
}

// Symbol represents a defined name in a scope.
type Symbol struct {
	Name       string
	Kind       SymbolKind
	Source     *token.Location // nil for builtins
	Scope      *Scope
	Signature  *Signature // non-nil for callables
	DocString  string
	Node       ast.Node // declaring node; nil for builtins
	References int
	Defined    bool // false between declaration and the end of its initializer
	External   bool // defined outside the analyzed file
}

// Signature describes the parameters of a callable symbol.
type Signature struct {
	Params []string
}

// Arity returns the number of arguments the callable requires.
func (sig *Signature) Arity() int {
	if sig == nil {
		return 0
	}
	return len(sig.Params)
}

func (sig *Signature) String() string {
	if sig == nil {
		return "()"
	}
	return "(" + strings.Join(sig.Params, ", ") + ")"
}

func signatureOf(fn *ast.FunctionLit) *Signature {
	sig := &Signature{Params: make([]string, len(fn.Params))}
	for i, p := range fn.Params {
		sig.Params[i] = p.Text
	}
	return sig
}
