// Copyright © 2024 The Qanun authors

package interp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/qanun/parser/ast"
)

// Callable is a value that can appear as the callee of a call expression.
type Callable interface {
	Value
	// Arity is the exact number of arguments the callable accepts.
	Arity() int
	// Call invokes the callable.  The number of args has already been
	// checked against Arity.
	Call(it *Interpreter, args []Value) (Value, error)
}

var (
	_ Callable = (*Function)(nil)
	_ Callable = (*Native)(nil)
	_ Callable = (*Class)(nil)
)

// Function is a closure: a function literal paired with the environment in
// effect where it was evaluated.
type Function struct {
	// Name is empty for anonymous functions.
	Name    string
	Decl    *ast.FunctionLit
	Closure *Env
	// IsInit is set for class initializers, which always return this.
	IsInit bool
	// Class is the class that declared the function when it is a method.
	Class *Class
}

func (*Function) Kind() Kind { return KindFunction }

func (f *Function) String() string {
	if f.Name == "" {
		return "<function>"
	}
	return "<function '" + f.Name + "'>"
}

func (f *Function) Arity() int {
	return len(f.Decl.Params)
}

// Bind returns a copy of f whose closure has this bound to receiver.
func (f *Function) Bind(receiver Value) *Function {
	env := NewEnv(f.Closure)
	_ = env.Define("this", receiver)
	return &Function{
		Name:    f.Name,
		Decl:    f.Decl,
		Closure: env,
		IsInit:  f.IsInit,
		Class:   f.Class,
	}
}

// Call runs the function body in a new environment holding the parameters.
func (f *Function) Call(it *Interpreter, args []Value) (Value, error) {
	env := NewEnv(f.Closure)
	for i, param := range f.Decl.Params {
		env.vars[param.Text] = args[i]
	}
	if top := it.Stack.Top(); top != nil {
		top.Env = env
	}
	if d := it.debugger; d != nil && d.IsEnabled() {
		d.OnCallEntry(it, f, env)
	}
	ctl, err := it.executeBlock(f.Decl.Body, env)
	if err != nil {
		return nil, err
	}
	result := Nil
	switch {
	case f.IsInit:
		result, _ = f.Closure.Get("this")
	case ctl.kind == ctlReturn:
		result = ctl.value
	}
	if d := it.debugger; d != nil && d.IsEnabled() {
		d.OnCallReturn(it, f, result)
	}
	return result, nil
}

// NativeFunc implements a Native.  A plain error returned by a NativeFunc
// becomes a runtime error reported at the call site.
type NativeFunc func(it *Interpreter, args []Value) (Value, error)

// Native is a function implemented in Go.
type Native struct {
	Name string
	// Params names the formal parameters.  Its length is the native's arity.
	Params []string
	Fn     NativeFunc
	// Doc is shown by the doc command and in editor hovers.
	Doc string
}

func (*Native) Kind() Kind { return KindNative }

func (n *Native) String() string {
	return "<native function '" + n.Name + "'>"
}

func (n *Native) Arity() int {
	return len(n.Params)
}

func (n *Native) Call(it *Interpreter, args []Value) (Value, error) {
	v, err := n.Fn(it, args)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return Nil, nil
	}
	return v, nil
}

// Signature returns the native's name and formal parameters as they would
// be written in a call, e.g. "writeFile(path, text)".
func (n *Native) Signature() string {
	return fmt.Sprintf("%s(%s)", n.Name, strings.Join(n.Params, ", "))
}

// Class is a user-defined class.  Calling a class constructs an instance.
type Class struct {
	Name    string
	Super   *Class
	Methods map[string]*Function
	Statics map[string]*Function
}

func (*Class) Kind() Kind { return KindClass }

func (c *Class) String() string { return c.Name }

// FindMethod returns the instance method called name declared by c or its
// nearest ancestor that declares it.
func (c *Class) FindMethod(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Super {
		if m, ok := class.Methods[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// FindStatic returns the static method called name declared by c or its
// nearest ancestor that declares it.
func (c *Class) FindStatic(name string) (*Function, bool) {
	for class := c; class != nil; class = class.Super {
		if m, ok := class.Statics[name]; ok {
			return m, true
		}
	}
	return nil, false
}

// Arity is the arity of the class initializer, or zero without one.
func (c *Class) Arity() int {
	if init, ok := c.FindMethod("init"); ok {
		return init.Arity()
	}
	return 0
}

// Call constructs a new instance and runs its initializer.
func (c *Class) Call(it *Interpreter, args []Value) (Value, error) {
	inst := NewInstance(c)
	if init, ok := c.FindMethod("init"); ok {
		if _, err := init.Bind(inst).Call(it, args); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

// IsSubclass reports whether c is other or inherits from it.
func (c *Class) IsSubclass(other *Class) bool {
	for class := c; class != nil; class = class.Super {
		if class == other {
			return true
		}
	}
	return false
}
