// Copyright © 2024 The Qanun authors

// Package natives loads the standard library of native functions and
// built-in modules into an interpreter.
package natives

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/libcore"
	"github.com/luthersystems/qanun/interp/natives/libcrypto"
	"github.com/luthersystems/qanun/interp/natives/libfile"
	"github.com/luthersystems/qanun/interp/natives/libregex"
	"github.com/luthersystems/qanun/interp/natives/libtext"
	"github.com/luthersystems/qanun/interp/natives/libtime"
)

// DocWidth is the column at which rendered documentation wraps.
const DocWidth = 72

var loaders = []func(*interp.Interpreter) error{
	libcore.LoadPackage,
	libfile.LoadPackage,
	libtime.LoadPackage,
	libcrypto.LoadPackage,
	libregex.LoadPackage,
	libtext.LoadPackage,
}

// LoadLibrary defines the core natives and registers every built-in module.
func LoadLibrary(it *interp.Interpreter) error {
	for _, load := range loaders {
		if err := load(it); err != nil {
			return err
		}
	}
	return nil
}

// Config returns an interpreter option that loads the standard library.
func Config() interp.Config {
	return LoadLibrary
}

// NewDocInterpreter returns an interpreter with the standard library loaded
// and all output discarded, suitable for documentation queries.
func NewDocInterpreter() (*interp.Interpreter, error) {
	return interp.New(
		interp.WithStdout(io.Discard),
		interp.WithStderr(io.Discard),
		Config(),
	)
}

// RenderNative writes the signature and documentation of n.
func RenderNative(w io.Writer, n *interp.Native) error {
	if _, err := fmt.Fprintf(w, "native function %s\n", n.Signature()); err != nil {
		return fmt.Errorf("rendering signature: %w", err)
	}
	return renderDoc(w, n.Doc)
}

// RenderModule writes the documentation of m followed by that of each of
// its native members.
func RenderModule(w io.Writer, m *interp.Module) error {
	if _, err := fmt.Fprintf(w, "module %s\n", m.Name); err != nil {
		return err
	}
	if err := renderDoc(w, m.Doc); err != nil {
		return err
	}
	for _, name := range memberNames(m) {
		n, ok := m.Members[name].(*interp.Native)
		if !ok {
			continue
		}
		if _, err := fmt.Fprintln(w); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "native function %s.%s\n", m.Name, n.Signature()); err != nil {
			return err
		}
		if err := renderDoc(w, n.Doc); err != nil {
			return err
		}
	}
	return nil
}

// RenderIndex writes a one-line summary of every native and module known
// to it.
func RenderIndex(w io.Writer, it *interp.Interpreter) error {
	for _, n := range it.Natives() {
		if _, err := fmt.Fprintf(w, "%-28s %s\n", n.Signature(), summary(n.Doc)); err != nil {
			return err
		}
	}
	for _, m := range it.Modules() {
		if _, err := fmt.Fprintf(w, "%-28s %s\n", m.Name, summary(m.Doc)); err != nil {
			return err
		}
	}
	return nil
}

// Render writes the documentation for name, which may be a native, a
// module, or a module member written Module.member.
func Render(w io.Writer, it *interp.Interpreter, name string) error {
	if modName, member, ok := strings.Cut(name, "."); ok {
		m, found := it.Module(modName)
		if !found {
			return fmt.Errorf("no module named %s", modName)
		}
		n, isNative := m.Members[member].(*interp.Native)
		if !isNative {
			return fmt.Errorf("module %s has no member %s", modName, member)
		}
		if _, err := fmt.Fprintf(w, "native function %s.%s\n", m.Name, n.Signature()); err != nil {
			return err
		}
		return renderDoc(w, n.Doc)
	}
	if m, ok := it.Module(name); ok {
		return RenderModule(w, m)
	}
	for _, n := range it.Natives() {
		if n.Name == name {
			return RenderNative(w, n)
		}
	}
	return fmt.Errorf("no documentation for %s", name)
}

func renderDoc(w io.Writer, doc string) error {
	if doc == "" {
		return nil
	}
	doc = indent.String(wordwrap.String(doc, DocWidth), 2)
	_, err := fmt.Fprintln(w, strings.TrimSuffix(doc, "\n"))
	return err
}

// summary returns the first sentence of doc.
func summary(doc string) string {
	doc, _, _ = strings.Cut(doc, "\n")
	if i := strings.Index(doc, ".  "); i >= 0 {
		return doc[:i+1]
	}
	return doc
}

func memberNames(m *interp.Module) []string {
	names := make([]string, 0, len(m.Members))
	for name := range m.Members {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
