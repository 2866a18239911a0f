// Copyright © 2024 The Qanun authors

package interp

import (
	"math"

	"github.com/luthersystems/qanun/parser/token"
)

// compoundOps maps each compound assignment operator to the binary
// operator it applies.
var compoundOps = map[token.Type]token.Type{
	token.PLUS_EQUAL:      token.PLUS,
	token.MINUS_EQUAL:     token.MINUS,
	token.STAR_EQUAL:      token.STAR,
	token.SLASH_EQUAL:     token.SLASH,
	token.PERCENT_EQUAL:   token.PERCENT,
	token.STAR_STAR_EQUAL: token.STAR_STAR,
}

// compound combines the current value of an assignment target with rhs.
// A list target of += is extended in place.
func (it *Interpreter) compound(op *token.Token, cur, rhs Value) (Value, error) {
	bop, ok := compoundOps[op.Type]
	if !ok {
		return nil, it.errorf(op, "Unknown assignment operator '%s'.", op.Text)
	}
	if bop == token.PLUS {
		if l, ok := cur.(*List); ok {
			r, ok := rhs.(*List)
			if !ok {
				return nil, it.errorf(op, "Operands must be two lists.")
			}
			l.Elems = append(l.Elems, r.Elems...)
			return l, nil
		}
	}
	return it.binary(op, bop, cur, rhs)
}

// binary applies the operator typ to two evaluated operands.  op is the
// token errors are reported against.
func (it *Interpreter) binary(op *token.Token, typ token.Type, left, right Value) (Value, error) {
	switch typ {
	case token.EQUAL_EQUAL:
		return Bool(Equal(left, right)), nil
	case token.BANG_EQUAL:
		return Bool(!Equal(left, right)), nil
	case token.PLUS:
		return it.add(op, left, right)
	}

	a, aok := left.(Number)
	b, bok := right.(Number)
	if !aok || !bok {
		return nil, it.errorf(op, "Operands must be numbers.")
	}
	switch typ {
	case token.GREATER:
		return Bool(a > b), nil
	case token.GREATER_EQUAL:
		return Bool(a >= b), nil
	case token.LESS:
		return Bool(a < b), nil
	case token.LESS_EQUAL:
		return Bool(a <= b), nil
	case token.MINUS:
		return a - b, nil
	case token.STAR:
		return a * b, nil
	case token.SLASH:
		if b == 0 {
			return nil, it.errorf(op, "division by zero")
		}
		return a / b, nil
	case token.PERCENT:
		return Number(math.Mod(float64(a), float64(b))), nil
	case token.STAR_STAR:
		return Number(math.Pow(float64(a), float64(b))), nil
	}
	return nil, it.errorf(op, "Unknown operator '%s'.", op.Text)
}

// add implements +.  Both operands must be numbers, strings or lists; types
// are never mixed.  Adding two lists creates a new list.
func (it *Interpreter) add(op *token.Token, left, right Value) (Value, error) {
	switch l := left.(type) {
	case Number:
		if r, ok := right.(Number); ok {
			return l + r, nil
		}
	case String:
		if r, ok := right.(String); ok {
			return l + r, nil
		}
	case *List:
		r, ok := right.(*List)
		if !ok {
			return nil, it.errorf(op, "Operands must be two lists.")
		}
		elems := make([]Value, 0, len(l.Elems)+len(r.Elems))
		elems = append(elems, l.Elems...)
		return NewList(append(elems, r.Elems...)...), nil
	}
	if _, ok := right.(*List); ok {
		return nil, it.errorf(op, "Operands must be two lists.")
	}
	return nil, it.errorf(op, "Operands must be two numbers or two strings.")
}
