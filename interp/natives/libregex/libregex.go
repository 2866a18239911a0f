// Copyright © 2024 The Qanun authors

// Package libregex implements the Regex module.
package libregex

import (
	"fmt"
	"sync"

	"github.com/coregx/coregex"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
)

// DefaultModuleName is the name programs import the module by.
const DefaultModuleName = "Regex"

// LoadPackage registers the Regex module with it.
func LoadPackage(it *interp.Interpreter) error {
	it.RegisterModule(NewModule())
	return nil
}

// NewModule returns a fresh Regex module value.
func NewModule() *interp.Module {
	return libutil.Module(DefaultModuleName,
		`Regular expression matching using RE2 syntax.  Every function
		takes the pattern as its first argument.  Compiled patterns are
		cached.`,
		builtins)
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("match", libutil.Params("pattern", "text"), BuiltinMatch,
		`Returns true if pattern matches anywhere in text.`),
	libutil.FunctionDoc("find", libutil.Params("pattern", "text"), BuiltinFind,
		`Returns the leftmost match of pattern in text, or nil.`),
	libutil.FunctionDoc("findAll", libutil.Params("pattern", "text"), BuiltinFindAll,
		`Returns a list of every non-overlapping match of pattern in text.`),
	libutil.FunctionDoc("replace", libutil.Params("pattern", "text", "replacement"), BuiltinReplace,
		`Replaces every match of pattern in text.  Within replacement, $1
		refers to the first submatch.`),
	libutil.FunctionDoc("split", libutil.Params("pattern", "text"), BuiltinSplit,
		`Returns the substrings of text between matches of pattern.`),
}

var cache sync.Map

func compile(fname string, args []interp.Value) (*coregex.Regexp, string, error) {
	patt, err := libutil.String(fname, args, 0)
	if err != nil {
		return nil, "", err
	}
	text, err := libutil.String(fname, args, 1)
	if err != nil {
		return nil, "", err
	}
	if re, ok := cache.Load(patt); ok {
		return re.(*coregex.Regexp), text, nil
	}
	re, err := coregex.Compile(patt)
	if err != nil {
		return nil, "", fmt.Errorf("invalid pattern %q: %w", patt, err)
	}
	cache.Store(patt, re)
	return re, text, nil
}

func BuiltinMatch(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	re, text, err := compile("match", args)
	if err != nil {
		return nil, err
	}
	return interp.Bool(re.MatchString(text)), nil
}

func BuiltinFind(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	re, text, err := compile("find", args)
	if err != nil {
		return nil, err
	}
	loc := re.FindStringIndex(text)
	if loc == nil {
		return interp.Nil, nil
	}
	return interp.String(text[loc[0]:loc[1]]), nil
}

func BuiltinFindAll(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	re, text, err := compile("findAll", args)
	if err != nil {
		return nil, err
	}
	locs := re.FindAllStringIndex(text, -1)
	matches := make([]string, len(locs))
	for i, loc := range locs {
		matches[i] = text[loc[0]:loc[1]]
	}
	return libutil.Strings(matches), nil
}

func BuiltinReplace(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	re, text, err := compile("replace", args)
	if err != nil {
		return nil, err
	}
	repl, err := libutil.String("replace", args, 2)
	if err != nil {
		return nil, err
	}
	return interp.String(re.ReplaceAllString(text, repl)), nil
}

func BuiltinSplit(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	re, text, err := compile("split", args)
	if err != nil {
		return nil, err
	}
	return libutil.Strings(re.Split(text, -1)), nil
}
