// Copyright © 2024 The Qanun authors

package interp

import (
	"math"
	"strings"

	"github.com/luthersystems/qanun/parser/ast"
)

// Kind identifies the runtime type of a Value.
type Kind int

const (
	KindNil Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindFunction
	KindNative
	KindClass
	KindInstance
	KindModule
)

// String returns the name the type() native reports for k.
func (k Kind) String() string {
	switch k {
	case KindNil:
		return "nil"
	case KindBool:
		return "boolean"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindFunction:
		return "function"
	case KindNative:
		return "native function"
	case KindClass:
		return "class"
	case KindInstance:
		return "instance"
	case KindModule:
		return "module"
	default:
		return "unknown"
	}
}

// Value is a Qanun runtime value.  The set of implementations is closed:
// NilValue, Bool, Number, String, *List, *Function, *Native, *Class,
// *Instance and *Module.
type Value interface {
	Kind() Kind
	String() string
}

// NilValue is the type of nil.
type NilValue struct{}

// Nil is the nil value.
var Nil Value = NilValue{}

func (NilValue) Kind() Kind     { return KindNil }
func (NilValue) String() string { return "nil" }

type Bool bool

func (Bool) Kind() Kind { return KindBool }

func (b Bool) String() string {
	if b {
		return "true"
	}
	return "false"
}

// Number is a double precision float.  The language has no integer type.
type Number float64

func (Number) Kind() Kind { return KindNumber }

func (n Number) String() string {
	return FormatNumber(float64(n))
}

type String string

func (String) Kind() Kind { return KindString }

func (s String) String() string { return string(s) }

// List is a mutable, growable sequence.  Lists are reference values.
type List struct {
	Elems []Value
}

// NewList returns a list holding elems.
func NewList(elems ...Value) *List {
	return &List{Elems: elems}
}

func (*List) Kind() Kind { return KindList }

// String renders the list.  A list that contains itself, directly or
// through other lists, is written as [...] where it recurs.
func (l *List) String() string {
	var b strings.Builder
	l.write(&b, make(map[*List]bool))
	return b.String()
}

func (l *List) write(b *strings.Builder, open map[*List]bool) {
	if open[l] {
		b.WriteString("[...]")
		return
	}
	open[l] = true
	defer delete(open, l)
	b.WriteByte('[')
	for i, v := range l.Elems {
		if i > 0 {
			b.WriteString(", ")
		}
		if inner, ok := v.(*List); ok {
			inner.write(b, open)
			continue
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
}

// Instance is an object created by calling a class.
type Instance struct {
	Class  *Class
	Fields map[string]Value
}

// NewInstance returns an instance of c with no fields.
func NewInstance(c *Class) *Instance {
	return &Instance{Class: c, Fields: make(map[string]Value)}
}

func (*Instance) Kind() Kind { return KindInstance }

func (i *Instance) String() string {
	return i.Class.Name + " instance"
}

// Module is a named collection of values bound by an import statement.
type Module struct {
	Name    string
	Doc     string
	Members map[string]Value
}

func (*Module) Kind() Kind { return KindModule }

func (m *Module) String() string {
	return "<module '" + m.Name + "'>"
}

// Get returns the member of m called name.
func (m *Module) Get(name string) (Value, bool) {
	v, ok := m.Members[name]
	return v, ok
}

// FormatNumber renders x the way print() does.  Integral values have no
// fractional part.
func FormatNumber(x float64) string {
	switch {
	case math.IsInf(x, 1):
		return "Infinity"
	case math.IsInf(x, -1):
		return "-Infinity"
	case math.IsNaN(x):
		return "NaN"
	}
	return ast.FormatNumber(x)
}

// Stringify returns the text print() writes for v.
func Stringify(v Value) string {
	if v == nil {
		return "nil"
	}
	return v.String()
}

// Truthy reports whether v counts as true in a condition.  Only nil and
// false are falsey.
func Truthy(v Value) bool {
	switch v := v.(type) {
	case nil, NilValue:
		return false
	case Bool:
		return bool(v)
	}
	return true
}

// Equal reports whether a and b are equal.  Scalars compare by value and
// lists compare element-wise.  All other values compare by identity.
// Cyclic lists are equal when no difference is found along the cycle.
func Equal(a, b Value) bool {
	return equal(a, b, nil)
}

type listPair struct{ a, b *List }

func equal(a, b Value, seen map[listPair]bool) bool {
	if a == nil {
		a = Nil
	}
	if b == nil {
		b = Nil
	}
	switch a := a.(type) {
	case *List:
		bl, ok := b.(*List)
		if !ok {
			return false
		}
		if a == bl {
			return true
		}
		if len(a.Elems) != len(bl.Elems) {
			return false
		}
		pair := listPair{a, bl}
		if seen[pair] {
			return true
		}
		if seen == nil {
			seen = make(map[listPair]bool)
		}
		seen[pair] = true
		for i := range a.Elems {
			if !equal(a.Elems[i], bl.Elems[i], seen) {
				return false
			}
		}
		return true
	}
	return a == b
}

// literal converts a parsed literal into a Value.
func literal(v any) Value {
	switch v := v.(type) {
	case bool:
		return Bool(v)
	case float64:
		return Number(v)
	case string:
		return String(v)
	}
	return Nil
}
