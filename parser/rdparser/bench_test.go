// Copyright © 2024 The Qanun authors

package rdparser_test

import (
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

const fixtureDir = "../../examples"

func BenchmarkParser(b *testing.B) {
	files, err := filepath.Glob(filepath.Join(fixtureDir, "*.qan"))
	if err != nil {
		b.Fatalf("Failed to list test fixtures: %v", err)
	}
	sort.Strings(files) // should be redundant
	for _, path := range files {
		buf, err := os.ReadFile(path) //#nosec G304
		if err != nil {
			b.Fatalf("Unable to read source file %v: %v", path, err)
		}
		b.Run(filepath.Base(path), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				p := rdparser.New(token.NewScanner(path, buf))
				if _, err := p.ParseProgram(); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func TestFixturesParse(t *testing.T) {
	files, err := filepath.Glob(filepath.Join(fixtureDir, "*.qan"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) == 0 {
		t.Fatal("no fixtures found")
	}
	for _, path := range files {
		f, err := os.Open(path) //#nosec G304
		if err != nil {
			t.Fatal(err)
		}
		_, err = rdparser.Parse(path, f)
		f.Close()
		if err != nil {
			t.Errorf("%s: %v", path, err)
		}
	}
}
