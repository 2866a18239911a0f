// Copyright © 2024 The Qanun authors

package interp

import (
	"errors"
	"fmt"
	"math"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

func (it *Interpreter) eval(expr ast.Expr) (Value, error) {
	switch e := expr.(type) {
	case *ast.Literal:
		return literal(e.Value), nil
	case *ast.Grouping:
		return it.eval(e.Expr)
	case *ast.Variable:
		return it.lookup(e.Name, e)
	case *ast.Assign:
		return it.assign(e)
	case *ast.Unary:
		return it.unary(e)
	case *ast.Binary:
		left, err := it.eval(e.Left)
		if err != nil {
			return nil, err
		}
		right, err := it.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return it.binary(e.Op, e.Op.Type, left, right)
	case *ast.Logical:
		left, err := it.eval(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Op.Type == token.OR {
			if Truthy(left) {
				return left, nil
			}
		} else if !Truthy(left) {
			return left, nil
		}
		return it.eval(e.Right)
	case *ast.Ternary:
		cond, err := it.eval(e.Cond)
		if err != nil {
			return nil, err
		}
		if Truthy(cond) {
			return it.eval(e.Then)
		}
		return it.eval(e.Else)
	case *ast.Call:
		return it.callExpr(e)
	case *ast.Get:
		obj, err := it.eval(e.Object)
		if err != nil {
			return nil, err
		}
		return it.property(obj, e.Name)
	case *ast.Set:
		return it.setProperty(e)
	case *ast.ListLiteral:
		elems := make([]Value, 0, len(e.Elements))
		for _, el := range e.Elements {
			v, err := it.eval(el)
			if err != nil {
				return nil, err
			}
			elems = append(elems, v)
		}
		return NewList(elems...), nil
	case *ast.ListAccessor:
		obj, err := it.eval(e.Object)
		if err != nil {
			return nil, err
		}
		index, err := it.eval(e.Index)
		if err != nil {
			return nil, err
		}
		return it.index(e.Bracket, obj, index)
	case *ast.ListMutator:
		return it.mutateList(e)
	case *ast.FunctionLit:
		return &Function{Decl: e, Closure: it.env}, nil
	case *ast.This:
		return it.lookup(e.Keyword, e)
	case *ast.Super:
		return it.super(e)
	}
	return nil, fmt.Errorf("unexpected expression %T", expr)
}

func (it *Interpreter) lookup(name *token.Token, expr ast.Expr) (Value, error) {
	if depth, ok := it.locals[expr]; ok {
		if v, ok := it.env.GetAt(depth, name.Text); ok {
			return v, nil
		}
	} else if v, ok := it.globals.Get(name.Text); ok {
		return v, nil
	}
	return nil, it.errorf(name, "Undefined variable '%s'.", name.Text)
}

func (it *Interpreter) assignVar(name *token.Token, expr ast.Expr, v Value) error {
	var err error
	if depth, ok := it.locals[expr]; ok {
		err = it.env.AssignAt(depth, name.Text, v)
	} else {
		err = it.globals.Assign(name.Text, v)
	}
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrConstant):
		return it.errorf(name, "Can't reassign constant '%s'.", name.Text)
	default:
		return it.errorf(name, "Undefined variable '%s'.", name.Text)
	}
}

func (it *Interpreter) assign(e *ast.Assign) (Value, error) {
	var (
		v   Value
		err error
	)
	if e.Op.Type == token.EQUAL {
		v, err = it.eval(e.Value)
		if err != nil {
			return nil, err
		}
	} else {
		cur, err := it.lookup(e.Name, e)
		if err != nil {
			return nil, err
		}
		rhs, err := it.eval(e.Value)
		if err != nil {
			return nil, err
		}
		if v, err = it.compound(e.Op, cur, rhs); err != nil {
			return nil, err
		}
	}
	if err := it.assignVar(e.Name, e, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (it *Interpreter) unary(e *ast.Unary) (Value, error) {
	switch e.Op.Type {
	case token.BANG:
		right, err := it.eval(e.Right)
		if err != nil {
			return nil, err
		}
		return Bool(!Truthy(right)), nil
	case token.MINUS:
		right, err := it.eval(e.Right)
		if err != nil {
			return nil, err
		}
		n, ok := right.(Number)
		if !ok {
			return nil, it.errorf(e.Op, "Operand must be a number.")
		}
		return -n, nil
	case token.PLUS_PLUS, token.MINUS_MINUS:
		target, ok := e.Right.(*ast.Variable)
		if !ok {
			return nil, it.errorf(e.Op, "Operand of '%s' must be a variable.", e.Op.Text)
		}
		cur, err := it.lookup(target.Name, target)
		if err != nil {
			return nil, err
		}
		n, ok := cur.(Number)
		if !ok {
			return nil, it.errorf(e.Op, "Operand must be a number.")
		}
		next := n + 1
		if e.Op.Type == token.MINUS_MINUS {
			next = n - 1
		}
		if err := it.assignVar(target.Name, target, next); err != nil {
			return nil, err
		}
		if e.Postfix {
			return n, nil
		}
		return next, nil
	}
	return nil, it.errorf(e.Op, "Unknown unary operator '%s'.", e.Op.Text)
}

func (it *Interpreter) callExpr(e *ast.Call) (Value, error) {
	callee, err := it.eval(e.Callee)
	if err != nil {
		return nil, err
	}
	args := make([]Value, 0, len(e.Args))
	for _, arg := range e.Args {
		v, err := it.eval(arg)
		if err != nil {
			return nil, err
		}
		args = append(args, v)
	}
	return it.call(e.Paren, callee, args)
}

func (it *Interpreter) call(paren *token.Token, callee Value, args []Value) (Value, error) {
	fn, ok := callee.(Callable)
	if !ok {
		return nil, it.errorf(paren, "Can only call functions and classes.")
	}
	if len(args) != fn.Arity() {
		return nil, it.errorf(paren, "Expected %d arguments but got %d.", fn.Arity(), len(args))
	}
	frame := CallFrame{Name: callableName(fn)}
	if paren != nil {
		frame.Source = paren.Source
	}
	if f, ok := fn.(*Function); ok && f.Class != nil {
		frame.Class = f.Class.Name
	}
	if err := it.Stack.Push(frame); err != nil {
		return nil, it.wrapError(paren, err)
	}
	defer it.Stack.Pop()
	if p := it.profiler; p != nil && p.IsEnabled() {
		p.Start(fn)
		defer p.End(fn)
	}
	v, err := fn.Call(it, args)
	if err != nil {
		return nil, it.wrapError(paren, err)
	}
	return v, nil
}

func callableName(fn Callable) string {
	switch fn := fn.(type) {
	case *Function:
		if fn.Name == "" {
			return "fun"
		}
		return fn.Name
	case *Native:
		return fn.Name
	case *Class:
		return fn.Name
	}
	return fn.String()
}

// property reads name from an instance, class or module.
func (it *Interpreter) property(obj Value, name *token.Token) (Value, error) {
	switch o := obj.(type) {
	case *Instance:
		if v, ok := o.Fields[name.Text]; ok {
			return v, nil
		}
		if m, ok := o.Class.FindMethod(name.Text); ok {
			return m.Bind(o), nil
		}
	case *Class:
		if m, ok := o.FindStatic(name.Text); ok {
			return m.Bind(o), nil
		}
	case *Module:
		if v, ok := o.Get(name.Text); ok {
			return v, nil
		}
	default:
		return nil, it.errorf(name, "Only instances have properties.")
	}
	return nil, it.errorf(name, "Undefined property '%s'.", name.Text)
}

func (it *Interpreter) setProperty(e *ast.Set) (Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	inst, ok := obj.(*Instance)
	if !ok {
		return nil, it.errorf(e.Name, "Only instances have fields.")
	}
	v, err := it.eval(e.Value)
	if err != nil {
		return nil, err
	}
	if e.Op.Type != token.EQUAL {
		cur, err := it.property(inst, e.Name)
		if err != nil {
			return nil, err
		}
		if v, err = it.compound(e.Op, cur, v); err != nil {
			return nil, err
		}
	}
	inst.Fields[e.Name.Text] = v
	return v, nil
}

// checkIndex validates index against a sequence of length n.
func (it *Interpreter) checkIndex(bracket *token.Token, index Value, n int) (int, error) {
	num, ok := index.(Number)
	if !ok {
		return 0, it.errorf(bracket, "Index must be a number.")
	}
	x := float64(num)
	if math.Trunc(x) != x {
		return 0, it.errorf(bracket, "Index must be an integer.")
	}
	if x < 0 || x >= float64(n) {
		return 0, it.errorf(bracket, "Index %s out of range for length %d.", num, n)
	}
	return int(x), nil
}

func (it *Interpreter) index(bracket *token.Token, obj, index Value) (Value, error) {
	switch o := obj.(type) {
	case *List:
		i, err := it.checkIndex(bracket, index, len(o.Elems))
		if err != nil {
			return nil, err
		}
		return o.Elems[i], nil
	case String:
		runes := []rune(string(o))
		i, err := it.checkIndex(bracket, index, len(runes))
		if err != nil {
			return nil, err
		}
		return String(string(runes[i])), nil
	}
	return nil, it.errorf(bracket, "Only lists and strings can be indexed.")
}

func (it *Interpreter) mutateList(e *ast.ListMutator) (Value, error) {
	obj, err := it.eval(e.Object)
	if err != nil {
		return nil, err
	}
	index, err := it.eval(e.Index)
	if err != nil {
		return nil, err
	}
	list, ok := obj.(*List)
	if !ok {
		return nil, it.errorf(e.Bracket, "Only list elements can be assigned.")
	}
	i, err := it.checkIndex(e.Bracket, index, len(list.Elems))
	if err != nil {
		return nil, err
	}
	v, err := it.eval(e.Value)
	if err != nil {
		return nil, err
	}
	if e.Op.Type != token.EQUAL {
		if v, err = it.compound(e.Op, list.Elems[i], v); err != nil {
			return nil, err
		}
	}
	list.Elems[i] = v
	return v, nil
}

// super looks up a method starting at the superclass of the class whose
// method is running.  In a static method the receiver is the class itself.
func (it *Interpreter) super(e *ast.Super) (Value, error) {
	depth, ok := it.locals[e]
	if !ok {
		return nil, it.errorf(e.Keyword, "Can't use 'super' outside of a class.")
	}
	sv, _ := it.env.GetAt(depth, "super")
	superclass, ok := sv.(*Class)
	if !ok {
		return nil, it.errorf(e.Keyword, "Superclass must be a class.")
	}
	this, _ := it.env.GetAt(depth-1, "this")
	var (
		m     *Function
		found bool
	)
	if _, static := this.(*Class); static {
		m, found = superclass.FindStatic(e.Method.Text)
	} else {
		m, found = superclass.FindMethod(e.Method.Text)
	}
	if !found {
		return nil, it.errorf(e.Method, "Undefined property '%s'.", e.Method.Text)
	}
	return m.Bind(this), nil
}
