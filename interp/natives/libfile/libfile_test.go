// Copyright © 2024 The Qanun authors

package libfile_test

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/qanun/qanuntest"
)

func TestFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	quoted := `"` + path + `"`
	src := strings.ReplaceAll(`
		import "File"
		println(File.exists(P))
		println(File.writeFile(P, "a"))
		println(File.appendFile(P, "b"))
		println(File.readFile(P))
		println(File.exists(P))
		println(File.readFile(P + "x"))`, "P", quoted)
	qanuntest.RunTestSuite(t, qanuntest.TestSuite{
		{Name: "roundtrip", Source: src, Stdout: "false\ntrue\ntrue\nab\ntrue\nnil\n"},
		{Name: "bad path", Source: `import "File"; File.exists(1)`, Err: "exists() argument 1 must be a string, got number"},
		{Name: "undefined member", Source: `import "File"; File.remove("x")`, Err: "Undefined property 'remove'."},
	})
}
