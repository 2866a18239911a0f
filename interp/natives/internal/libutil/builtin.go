// Copyright © 2024 The Qanun authors

package libutil

import (
	"fmt"
	"strings"

	"github.com/luthersystems/qanun/interp"
)

// Params returns its arguments.  It makes native parameter lists read like
// the formals of a declaration.
func Params(names ...string) []string {
	return names
}

func Function(name string, params []string, fn interp.NativeFunc) *interp.Native {
	return &interp.Native{Name: name, Params: params, Fn: fn}
}

func FunctionDoc(name string, params []string, fn interp.NativeFunc, docs string) *interp.Native {
	return &interp.Native{Name: name, Params: params, Fn: fn, Doc: Dedent(docs)}
}

// Module returns a module value holding fns as members.
func Module(name string, docs string, fns []*interp.Native) *interp.Module {
	mod := &interp.Module{
		Name:    name,
		Doc:     Dedent(docs),
		Members: make(map[string]interp.Value, len(fns)),
	}
	for _, fn := range fns {
		mod.Members[fn.Name] = fn
	}
	return mod
}

// Dedent joins the lines of a raw string literal doc, dropping the
// indentation of continuation lines.  Blank lines separate paragraphs.
func Dedent(docs string) string {
	lines := strings.Split(strings.TrimSpace(docs), "\n")
	var b strings.Builder
	for i, line := range lines {
		line = strings.TrimSpace(line)
		switch {
		case i == 0:
		case line == "":
			b.WriteString("\n\n")
			continue
		case strings.HasSuffix(b.String(), "\n\n"):
		default:
			b.WriteByte(' ')
		}
		b.WriteString(line)
	}
	return b.String()
}

// String returns argument i as a Go string.
func String(fname string, args []interp.Value, i int) (string, error) {
	s, ok := args[i].(interp.String)
	if !ok {
		return "", argError(fname, i, "string", args[i])
	}
	return string(s), nil
}

// Number returns argument i as a float64.
func Number(fname string, args []interp.Value, i int) (float64, error) {
	n, ok := args[i].(interp.Number)
	if !ok {
		return 0, argError(fname, i, "number", args[i])
	}
	return float64(n), nil
}

// Int returns argument i as a non-negative int.
func Int(fname string, args []interp.Value, i int) (int, error) {
	n, err := Number(fname, args, i)
	if err != nil {
		return 0, err
	}
	if n < 0 || n != float64(int(n)) {
		return 0, fmt.Errorf("%s() argument %d must be a non-negative integer", fname, i+1)
	}
	return int(n), nil
}

// Strings converts ss into a list of strings.
func Strings(ss []string) *interp.List {
	elems := make([]interp.Value, len(ss))
	for i, s := range ss {
		elems[i] = interp.String(s)
	}
	return interp.NewList(elems...)
}

func argError(fname string, i int, want string, got interp.Value) error {
	return fmt.Errorf("%s() argument %d must be a %s, got %s", fname, i+1, want, got.Kind())
}
