// Copyright © 2024 The Qanun authors

package repl

import (
	"sort"
	"strings"
	"unicode"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/token"
)

// completer implements readline.AutoCompleter over keywords, the globals of
// the interpreter and the members of modules bound to globals.
type completer struct {
	it *interp.Interpreter
}

func isWordRune(r rune) bool {
	return r == '_' || r == '.' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func (c *completer) Do(line []rune, pos int) ([][]rune, int) {
	start := pos
	for start > 0 && isWordRune(line[start-1]) {
		start--
	}
	prefix := string(line[start:pos])
	if prefix == "" {
		return nil, 0
	}
	candidates := c.candidates(prefix)
	result := make([][]rune, 0, len(candidates))
	for _, name := range candidates {
		result = append(result, []rune(name[len(prefix):]))
	}
	return result, len([]rune(prefix))
}

func (c *completer) candidates(prefix string) []string {
	if dot := strings.LastIndexByte(prefix, '.'); dot >= 0 {
		return c.memberCandidates(prefix[:dot], prefix[dot+1:])
	}
	seen := make(map[string]bool)
	var result []string
	add := func(name string) {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, name)
		}
	}
	for _, kw := range token.Keywords() {
		add(kw)
	}
	for _, name := range c.it.Globals().Names() {
		add(name)
	}
	sort.Strings(result)
	return result
}

// memberCandidates completes members of the module or class bound to the
// global called owner.
func (c *completer) memberCandidates(owner, prefix string) []string {
	v, ok := c.it.Globals().Get(owner)
	if !ok {
		return nil
	}
	var names []string
	switch v := v.(type) {
	case *interp.Module:
		for name := range v.Members {
			names = append(names, name)
		}
	case *interp.Class:
		for class := v; class != nil; class = class.Super {
			for name := range class.Statics {
				names = append(names, name)
			}
		}
	}
	var result []string
	seen := make(map[string]bool)
	for _, name := range names {
		if strings.HasPrefix(name, prefix) && !seen[name] {
			seen[name] = true
			result = append(result, owner+"."+name)
		}
	}
	sort.Strings(result)
	return result
}
