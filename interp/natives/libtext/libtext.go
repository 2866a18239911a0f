// Copyright © 2024 The Qanun authors

// Package libtext implements the Text module.
package libtext

import (
	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
)

// DefaultModuleName is the name programs import the module by.
const DefaultModuleName = "Text"

// LoadPackage registers the Text module with it.
func LoadPackage(it *interp.Interpreter) error {
	it.RegisterModule(NewModule())
	return nil
}

// NewModule returns a fresh Text module value.
func NewModule() *interp.Module {
	return libutil.Module(DefaultModuleName,
		`Layout of plain text for terminal output.`,
		builtins)
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("wrap", libutil.Params("text", "width"), BuiltinWrap,
		`Word wraps text so that no line is longer than width, except for
		single words that do not fit.`),
	libutil.FunctionDoc("indent", libutil.Params("text", "n"), BuiltinIndent,
		`Prefixes every line of text with n spaces.`),
}

func BuiltinWrap(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	text, err := libutil.String("wrap", args, 0)
	if err != nil {
		return nil, err
	}
	width, err := libutil.Int("wrap", args, 1)
	if err != nil {
		return nil, err
	}
	return interp.String(wordwrap.String(text, width)), nil
}

func BuiltinIndent(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	text, err := libutil.String("indent", args, 0)
	if err != nil {
		return nil, err
	}
	n, err := libutil.Int("indent", args, 1)
	if err != nil {
		return nil, err
	}
	return interp.String(indent.String(text, uint(n))), nil // #nosec G115
}
