// Copyright © 2024 The Qanun authors

package libregex_test

import (
	"testing"

	"github.com/luthersystems/qanun/qanuntest"
)

func TestRegex(t *testing.T) {
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "match", Source: `import "Regex"; print(Regex.match("a+b", "xaab")); print(Regex.match("^b", "ab"))`, Stdout: "truefalse"},
		{Name: "find", Source: `import "Regex"; print(Regex.find("[0-9]+", "ab12c345")); print(Regex.find("z", "ab"))`, Stdout: "12nil"},
		{Name: "findAll", Source: `import "Regex"; print(Regex.findAll("[0-9]+", "ab12c345"))`, Stdout: "[12, 345]"},
		{Name: "findAll none", Source: `import "Regex"; print(Regex.findAll("z", "ab"))`, Stdout: "[]"},
		{Name: "replace", Source: `import "Regex"; print(Regex.replace("(\w+)@", "bob@ x@", "<$1>"))`, Stdout: "<bob> <x>"},
		{Name: "split", Source: `import "Regex"; print(Regex.split(",\s*", "a, b,c"))`, Stdout: "[a, b, c]"},
		{Name: "cached", Source: `import "Regex"; for (var i = 0; i < 3; i++) print(Regex.match("b", "abc"))`, Stdout: "truetruetrue"},
		{Name: "invalid", Source: `import "Regex"; Regex.match("(", "x")`, Err: `invalid pattern "("`},
		{Name: "argument", Source: `import "Regex"; Regex.match("a", 1)`, Err: "match() argument 2 must be a string, got number"},
	})
}
