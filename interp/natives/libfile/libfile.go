// Copyright © 2024 The Qanun authors

// Package libfile implements the File module.
package libfile

import (
	"errors"
	"io/fs"
	"os"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
	"github.com/luthersystems/qanun/interp/natives/libcore"
)

// DefaultModuleName is the name programs import the module by.
const DefaultModuleName = "File"

// LoadPackage registers the File module with it.
func LoadPackage(it *interp.Interpreter) error {
	it.RegisterModule(NewModule())
	return nil
}

// NewModule returns a fresh File module value.
func NewModule() *interp.Module {
	return libutil.Module(DefaultModuleName,
		`Reading and writing files on the local filesystem.  Paths are
		relative to the working directory of the process.`,
		builtins)
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("readFile", libutil.Params("path"), BuiltinReadFile,
		`Returns the contents of the file at path as a string, or nil if
		the file cannot be read.`),
	libutil.FunctionDoc("writeFile", libutil.Params("path", "text"), BuiltinWriteFile,
		`Replaces the contents of the file at path with text.  Returns
		true on success and false otherwise.`),
	libutil.FunctionDoc("appendFile", libutil.Params("path", "text"), BuiltinAppendFile,
		`Appends text to the file at path.  Returns true on success and
		false otherwise.`),
	libutil.FunctionDoc("exists", libutil.Params("path"), BuiltinExists,
		`Returns true if a file or directory exists at path.`),
}

func BuiltinReadFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	path, err := libutil.String("readFile", args, 0)
	if err != nil {
		return nil, err
	}
	return libcore.ReadFile(path), nil
}

func BuiltinWriteFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	path, err := libutil.String("writeFile", args, 0)
	if err != nil {
		return nil, err
	}
	return libcore.WriteFile(path, interp.Stringify(args[1]), false), nil
}

func BuiltinAppendFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	path, err := libutil.String("appendFile", args, 0)
	if err != nil {
		return nil, err
	}
	return libcore.WriteFile(path, interp.Stringify(args[1]), true), nil
}

func BuiltinExists(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	path, err := libutil.String("exists", args, 0)
	if err != nil {
		return nil, err
	}
	_, err = os.Stat(path)
	switch {
	case err == nil:
		return interp.Bool(true), nil
	case errors.Is(err, fs.ErrNotExist):
		return interp.Bool(false), nil
	}
	return nil, err
}
