// Copyright © 2024 The Qanun authors

package debugger

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/luthersystems/qanun/interp"
)

// ErrNotPaused is returned by operations that need a paused interpreter.
var ErrNotPaused = errors.New("debugger is not paused")

// ScopeBinding is a single variable binding in a scope.
type ScopeBinding struct {
	Name  string
	Value interp.Value
	Const bool
}

// InspectLocals returns the bindings of env's immediate scope sorted by
// name.
func InspectLocals(env *interp.Env) []ScopeBinding {
	if env == nil {
		return nil
	}
	var bindings []ScopeBinding
	for _, name := range env.Names() {
		v, _ := env.Get(name)
		bindings = append(bindings, ScopeBinding{Name: name, Value: v, Const: env.IsConst(name)})
	}
	return bindings
}

// InspectFunctionLocals returns the bindings visible from env, excluding
// the global scope.  Inner bindings shadow outer ones.  The this binding
// of a method is included.
func InspectFunctionLocals(env *interp.Env) []ScopeBinding {
	seen := make(map[string]bool)
	var bindings []ScopeBinding
	for e := env; e != nil && e.Parent() != nil; e = e.Parent() {
		for _, b := range InspectLocals(e) {
			if !seen[b.Name] {
				seen[b.Name] = true
				bindings = append(bindings, b)
			}
		}
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Name < bindings[j].Name
	})
	return bindings
}

// InspectGlobals returns the user-defined global bindings of it.  Natives
// and built-in modules are omitted.
func InspectGlobals(it *interp.Interpreter) []ScopeBinding {
	var bindings []ScopeBinding
	for _, b := range InspectLocals(it.Globals()) {
		switch b.Value.(type) {
		case *interp.Native:
			continue
		case *interp.Module:
			if m, ok := it.Module(b.Name); ok && m == b.Value {
				continue
			}
		}
		bindings = append(bindings, b)
	}
	return bindings
}

// FormatValue returns a short human-readable rendering of v for a
// variables view.
func FormatValue(v interp.Value) string {
	switch v := v.(type) {
	case nil:
		return "nil"
	case interp.String:
		return strconv.Quote(string(v))
	case *interp.List:
		return formatList(v)
	case *interp.Function:
		if v.Name == "" {
			return "<function>"
		}
		if v.Class != nil {
			return fmt.Sprintf("<method %s.%s>", v.Class.Name, v.Name)
		}
		return fmt.Sprintf("<function %s>", v.Name)
	case *interp.Class:
		return fmt.Sprintf("<class %s>", v.Name)
	case *interp.Instance:
		return fmt.Sprintf("<%s instance>", v.Class.Name)
	default:
		return v.String()
	}
}

func formatList(l *interp.List) string {
	if len(l.Elems) > 10 {
		return fmt.Sprintf("[%d elements]", len(l.Elems))
	}
	parts := make([]string, len(l.Elems))
	for i, v := range l.Elems {
		if v == interp.Value(l) {
			parts[i] = "[...]"
			continue
		}
		parts[i] = FormatValue(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// Children returns the expandable members of v: list elements by index,
// instance fields and module members by name.  Scalars have no children.
func Children(v interp.Value) []ScopeBinding {
	switch v := v.(type) {
	case *interp.List:
		children := make([]ScopeBinding, len(v.Elems))
		for i, elem := range v.Elems {
			children[i] = ScopeBinding{Name: strconv.Itoa(i), Value: elem}
		}
		return children
	case *interp.Instance:
		return sortedBindings(v.Fields)
	case *interp.Module:
		return sortedBindings(v.Members)
	default:
		return nil
	}
}

// HasChildren reports whether Children(v) may return bindings.
func HasChildren(v interp.Value) bool {
	switch v.(type) {
	case *interp.List, *interp.Instance, *interp.Module:
		return true
	}
	return false
}

func sortedBindings(m map[string]interp.Value) []ScopeBinding {
	bindings := make([]ScopeBinding, 0, len(m))
	for name, v := range m {
		bindings = append(bindings, ScopeBinding{Name: name, Value: v})
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].Name < bindings[j].Name
	})
	return bindings
}
