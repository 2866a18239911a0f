// Copyright © 2024 The Qanun authors

package analysis

import (
	"os"
	"path/filepath"

	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

// SourceExts are the file extensions of Qanun source files.
var SourceExts = []string{".qan", ".qanun"}

// IsSourceFile reports whether path has a Qanun source extension.
func IsSourceFile(path string) bool {
	ext := filepath.Ext(path)
	for _, e := range SourceExts {
		if ext == e {
			return true
		}
	}
	return false
}

// ScanWorkspace walks a directory tree, parsing all Qanun files and
// extracting their top-level declarations.  The result can be used as
// Config.ExtraGlobals so that a program importing its siblings does not
// report their names as unresolved.
//
// Files that fail to parse are silently skipped (fault tolerant).
func ScanWorkspace(root string) ([]ExternalSymbol, error) {
	var globals []ExternalSymbol
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // skip unreadable dirs
		}
		if info.IsDir() {
			if shouldSkipDir(info.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsSourceFile(path) {
			return nil
		}
		src, readErr := os.ReadFile(path) //#nosec G304
		if readErr != nil {
			return nil
		}
		globals = append(globals, scanFile(src, path)...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return globals, nil
}

// shouldSkipDir returns true for hidden directories such as .git, but not
// for "." or "..".
func shouldSkipDir(name string) bool {
	if name == "." || name == ".." {
		return false
	}
	return len(name) > 0 && name[0] == '.'
}

// scanFile parses a single file and extracts its top-level declarations.
// Returns nil if the file fails to parse.
func scanFile(source []byte, filename string) []ExternalSymbol {
	s := token.NewScanner(filename, source)
	s.SetPath(filename)
	stmts, err := rdparser.New(s).ParseProgram()
	if err != nil {
		return nil
	}
	var syms []ExternalSymbol
	for _, stmt := range stmts {
		switch d := stmt.(type) {
		case *ast.Function:
			syms = append(syms, ExternalSymbol{
				Name:      d.Name.Text,
				Kind:      SymFunction,
				Signature: signatureOf(d.Fn),
				Source:    d.Name.Source,
			})
		case *ast.Class:
			syms = append(syms, ExternalSymbol{Name: d.Name.Text, Kind: SymClass, Source: d.Name.Source})
		case *ast.Var:
			syms = append(syms, ExternalSymbol{Name: d.Name.Text, Kind: SymVariable, Source: d.Name.Source})
		case *ast.Val:
			syms = append(syms, ExternalSymbol{Name: d.Name.Text, Kind: SymConstant, Source: d.Name.Source})
		}
	}
	return syms
}

// AnalyzeFile parses and resolves source.  A syntax error is returned as an
// rdparser.ErrorList and no Result is produced; resolution errors are
// reported through Result.Err.
func AnalyzeFile(source []byte, filename string, cfg *Config) ([]ast.Stmt, *Result, error) {
	s := token.NewScanner(filename, source)
	s.SetPath(filename)
	stmts, err := rdparser.New(s).ParseProgram()
	if err != nil {
		return stmts, nil, err
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.Filename = filename
	return stmts, Resolve(stmts, cfg), nil
}
