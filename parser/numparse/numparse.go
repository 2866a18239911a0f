// Copyright © 2024 The Qanun authors

// Package numparse converts text to numbers for the num() builtin.
//
//	number   := <space>* <sign>? <mantissa> <exponent>? <space>*
//	sign     := '+' | '-'
//	mantissa := digits ('.' digits?)? | '.' digits
//	exponent := ('e' | 'E') <sign>? digits
package numparse

import (
	"errors"
	"math"
	"strconv"

	parsec "github.com/prataprc/goparsec"
)

// ErrSyntax is returned when text is not a number.
var ErrSyntax = errors.New("invalid number syntax")

var numberParser = newNumberParser()

func newNumberParser() parsec.Parser {
	decimal := parsec.Token(`[+-]?(?:[0-9]+(?:[.][0-9]*)?|[.][0-9]+)(?:[eE][+-]?[0-9]+)?`, "DECIMAL")
	special := parsec.Token(`[+-]?(?:Infinity|NaN)`, "SPECIAL")
	return parsec.OrdChoice(first, decimal, special)
}

// first unwraps the single node matched by an ordered choice.
func first(ns []parsec.ParsecNode) parsec.ParsecNode {
	if len(ns) == 0 {
		return nil
	}
	return ns[0]
}

// Parse returns the number represented by text.  Leading and trailing
// whitespace is ignored.  Besides decimal notation the words Infinity and NaN
// are recognized, optionally signed.
func Parse(text string) (float64, error) {
	s := parsec.NewScanner([]byte(text))
	node, s := numberParser(s)
	term, ok := node.(*parsec.Terminal)
	if !ok {
		return 0, ErrSyntax
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		return 0, ErrSyntax
	}
	if term.Name == "SPECIAL" {
		return special(term.Value), nil
	}
	x, err := strconv.ParseFloat(term.Value, 64)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return x, nil
		}
		return 0, ErrSyntax
	}
	return x, nil
}

func special(s string) float64 {
	sign := 1
	switch s[0] {
	case '-':
		sign = -1
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if s == "NaN" {
		return math.NaN()
	}
	return math.Inf(sign)
}
