// Copyright © 2024 The Qanun authors

// Package libcore defines the native functions bound in every global
// environment.
package libcore

import (
	"errors"
	"io"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
	"github.com/luthersystems/qanun/parser/numparse"
)

// ClearScreen is the sequence clear() writes to standard output.
const ClearScreen = "\033[H\033[2J"

// LoadPackage defines the core natives as globals of it.
func LoadPackage(it *interp.Interpreter) error {
	for _, fn := range builtins {
		it.DefineNative(fn)
	}
	return nil
}

// Builtins returns the core natives.
func Builtins() []*interp.Native {
	return builtins
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("print", libutil.Params("value"), BuiltinPrint,
		`Writes value to standard output without a trailing newline.
		Strings are written without quotes and numbers without a
		trailing ".0".`),
	libutil.FunctionDoc("println", libutil.Params("value"), BuiltinPrintln,
		`Writes value to standard output followed by a newline.`),
	libutil.FunctionDoc("clock", libutil.Params(), BuiltinClock,
		`Returns the number of seconds since the Unix epoch, with a
		fractional part.  Useful for timing code.`),
	libutil.FunctionDoc("str", libutil.Params("value"), BuiltinStr,
		`Returns value converted to a string, exactly as print would
		write it.`),
	libutil.FunctionDoc("len", libutil.Params("value"), BuiltinLen,
		`Returns the number of elements in a list or the number of
		characters in a string.  Any other argument is an error.`),
	libutil.FunctionDoc("num", libutil.Params("text"), BuiltinNum,
		`Parses text as a number.  Accepts an optional sign, a decimal
		with an optional fraction and exponent, Infinity or NaN.
		Surrounding whitespace is ignored.`),
	libutil.FunctionDoc("read", libutil.Params(), BuiltinRead,
		`Reads one whitespace delimited word from standard input.
		Returns nil at the end of input.`),
	libutil.FunctionDoc("readln", libutil.Params(), BuiltinReadln,
		`Reads one line from standard input and returns it without the
		line terminator.  Returns nil at the end of input.`),
	libutil.FunctionDoc("readFile", libutil.Params("path"), BuiltinReadFile,
		`Returns the contents of the file at path as a string, without a
		final newline.  Returns nil if the file cannot be read.`),
	libutil.FunctionDoc("writeFile", libutil.Params("path", "text"), BuiltinWriteFile,
		`Replaces the contents of the file at path with text, creating the
		file if needed.  Returns true on success and false otherwise.`),
	libutil.FunctionDoc("appendFile", libutil.Params("path", "text"), BuiltinAppendFile,
		`Appends text to the file at path, creating the file if needed.
		Returns true on success and false otherwise.`),
	libutil.FunctionDoc("clear", libutil.Params(), BuiltinClear,
		`Clears the terminal by writing an ANSI escape sequence.`),
	libutil.FunctionDoc("type", libutil.Params("value"), BuiltinType,
		`Returns the name of the type of value: "nil", "boolean",
		"number", "string", "list", "function", "native function",
		"class", "instance" or "module".`),
}

func BuiltinPrint(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	_, err := io.WriteString(it.Stdout(), interp.Stringify(args[0]))
	return interp.Nil, err
}

func BuiltinPrintln(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	_, err := io.WriteString(it.Stdout(), interp.Stringify(args[0])+"\n")
	return interp.Nil, err
}

func BuiltinClock(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	now := time.Now()
	return interp.Number(float64(now.UnixNano()) / float64(time.Second)), nil
}

func BuiltinStr(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.String(interp.Stringify(args[0])), nil
}

func BuiltinLen(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	switch v := args[0].(type) {
	case *interp.List:
		return interp.Number(len(v.Elems)), nil
	case interp.String:
		return interp.Number(utf8.RuneCountInString(string(v))), nil
	}
	return nil, errors.New("Only strings or lists can have length.")
}

func BuiltinNum(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	switch v := args[0].(type) {
	case interp.Number:
		return v, nil
	case interp.String:
		x, err := numparse.Parse(string(v))
		if err == nil {
			return interp.Number(x), nil
		}
	}
	return nil, errors.New("Only strings with numeric digits can be casted to numbers.")
}

func BuiltinRead(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	in := it.Stdin()
	var word strings.Builder
	for {
		r, _, err := in.ReadRune()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if unicode.IsSpace(r) {
			if word.Len() > 0 {
				break
			}
			continue
		}
		word.WriteRune(r)
	}
	if word.Len() == 0 {
		return interp.Nil, nil
	}
	return interp.String(word.String()), nil
}

func BuiltinReadln(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	line, err := it.Stdin().ReadString('\n')
	if errors.Is(err, io.EOF) && line == "" {
		return interp.Nil, nil
	}
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	return interp.String(line), nil
}

func BuiltinReadFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return ReadFile(interp.Stringify(args[0])), nil
}

func BuiltinWriteFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return WriteFile(interp.Stringify(args[0]), interp.Stringify(args[1]), false), nil
}

func BuiltinAppendFile(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return WriteFile(interp.Stringify(args[0]), interp.Stringify(args[1]), true), nil
}

func BuiltinClear(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	_, err := io.WriteString(it.Stdout(), ClearScreen)
	return interp.Nil, err
}

func BuiltinType(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.String(args[0].Kind().String()), nil
}

// ReadFile returns the contents of path without a final newline, or nil
// when the file cannot be read.
func ReadFile(path string) interp.Value {
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return interp.Nil
	}
	return interp.String(strings.TrimSuffix(string(b), "\n"))
}

// WriteFile writes text to path, appending when append is set.  It reports
// success as a Bool.
func WriteFile(path, text string, append bool) interp.Value {
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if append {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	f, err := os.OpenFile(path, flag, 0o644) //#nosec G302 G304
	if err != nil {
		return interp.Bool(false)
	}
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return interp.Bool(false)
	}
	return interp.Bool(f.Close() == nil)
}
