// Copyright © 2024 The Qanun authors

package interp

import (
	"errors"
	"sort"
)

var (
	// ErrUndefined is returned when a name has no binding.
	ErrUndefined = errors.New("undefined")
	// ErrConstant is returned when assigning to a val binding.
	ErrConstant = errors.New("constant")
	// ErrRedeclared is returned when a name is declared twice in one scope.
	ErrRedeclared = errors.New("redeclared")
)

// Env is one lexical scope.  Variables and constants are held in separate
// maps; a name appears in at most one of them.  Environments are shared by
// every closure created while they were current, so they live as long as the
// longest-lived closure.
type Env struct {
	parent *Env
	vars   map[string]Value
	consts map[string]Value
}

// NewEnv returns an empty scope enclosed by parent.  The global scope has a
// nil parent.
func NewEnv(parent *Env) *Env {
	return &Env{
		parent: parent,
		vars:   make(map[string]Value),
		consts: make(map[string]Value),
	}
}

// Parent returns the enclosing scope, or nil for the global scope.
func (e *Env) Parent() *Env {
	return e.parent
}

// Has reports whether name is bound in this scope.
func (e *Env) Has(name string) bool {
	_, isVar := e.vars[name]
	_, isConst := e.consts[name]
	return isVar || isConst
}

// IsConst reports whether name is bound as a constant in this scope.
func (e *Env) IsConst(name string) bool {
	_, ok := e.consts[name]
	return ok
}

// Define binds a new variable in this scope.
func (e *Env) Define(name string, v Value) error {
	if e.Has(name) {
		return ErrRedeclared
	}
	e.vars[name] = v
	return nil
}

// DefineConst binds a new constant in this scope.
func (e *Env) DefineConst(name string, v Value) error {
	if e.Has(name) {
		return ErrRedeclared
	}
	e.consts[name] = v
	return nil
}

// Redefine binds name in this scope, replacing any previous binding.
func (e *Env) Redefine(name string, v Value, constant bool) {
	delete(e.vars, name)
	delete(e.consts, name)
	if constant {
		e.consts[name] = v
		return
	}
	e.vars[name] = v
}

// Get returns the value bound to name in this scope only.
func (e *Env) Get(name string) (Value, bool) {
	if v, ok := e.vars[name]; ok {
		return v, true
	}
	v, ok := e.consts[name]
	return v, ok
}

// Lookup returns the value bound to name in this scope or the nearest
// enclosing scope that binds it.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if v, ok := env.Get(name); ok {
			return v, true
		}
	}
	return nil, false
}

// Assign rebinds an existing variable in this scope.
func (e *Env) Assign(name string, v Value) error {
	if _, ok := e.consts[name]; ok {
		return ErrConstant
	}
	if _, ok := e.vars[name]; !ok {
		return ErrUndefined
	}
	e.vars[name] = v
	return nil
}

// Ancestor returns the scope depth links above e.
func (e *Env) Ancestor(depth int) *Env {
	env := e
	for i := 0; i < depth && env != nil; i++ {
		env = env.parent
	}
	return env
}

// GetAt returns the value bound to name in the scope depth links above e.
func (e *Env) GetAt(depth int, name string) (Value, bool) {
	env := e.Ancestor(depth)
	if env == nil {
		return nil, false
	}
	return env.Get(name)
}

// AssignAt rebinds name in the scope depth links above e.
func (e *Env) AssignAt(depth int, name string, v Value) error {
	env := e.Ancestor(depth)
	if env == nil {
		return ErrUndefined
	}
	return env.Assign(name, v)
}

// Names returns the names bound in this scope in sorted order.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.vars)+len(e.consts))
	for name := range e.vars {
		names = append(names, name)
	}
	for name := range e.consts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// set rebinds a name in this scope without checking for constants.  It is
// used to fill in a class binding that was declared as nil.
func (e *Env) set(name string, v Value) {
	if _, ok := e.consts[name]; ok {
		e.consts[name] = v
		return
	}
	e.vars[name] = v
}
