// Copyright © 2024 The Qanun authors

package interp

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrModuleNotFound is returned by a Loader that cannot resolve a module
// name.
var ErrModuleNotFound = errors.New("module not found")

// Loader resolves the name in an import statement to module source.  dir is
// the directory of the importing file, or empty when the importing code did
// not come from a file.  The returned path identifies the module; a path is
// executed at most once per interpreter.
type Loader interface {
	Load(dir, name string) (src []byte, path string, err error)
}

// SourceExts are the file extensions tried, in order, after the bare module
// name.
var SourceExts = []string{".qan", ".qanun"}

// FSLoader loads modules from the file system.  A name is resolved relative
// to the importing file's directory and then each of Roots.
type FSLoader struct {
	Roots []string
}

var _ Loader = (*FSLoader)(nil)

func (l *FSLoader) Load(dir, name string) ([]byte, string, error) {
	if name == "" {
		return nil, "", ErrModuleNotFound
	}
	var dirs []string
	if dir != "" {
		dirs = append(dirs, dir)
	} else {
		dirs = append(dirs, ".")
	}
	dirs = append(dirs, l.Roots...)
	for _, d := range dirs {
		for _, candidate := range candidates(d, name) {
			b, err := os.ReadFile(candidate) //#nosec G304
			if err == nil {
				abs, absErr := filepath.Abs(candidate)
				if absErr != nil {
					abs = candidate
				}
				return b, abs, nil
			}
			if !errors.Is(err, fs.ErrNotExist) && !isDirErr(candidate) {
				return nil, "", fmt.Errorf("%s: %w", candidate, err)
			}
		}
	}
	return nil, "", ErrModuleNotFound
}

// FSysLoader loads modules from an fs.FS.  Paths are slash separated and
// may not escape the root of FS.
type FSysLoader struct {
	FS fs.FS
}

var _ Loader = (*FSysLoader)(nil)

func (l *FSysLoader) Load(dir, name string) ([]byte, string, error) {
	if dir == "" {
		dir = "."
	}
	for _, candidate := range candidates(filepath.ToSlash(dir), name) {
		p := filepath.ToSlash(filepath.Clean(candidate))
		if !fs.ValidPath(p) {
			continue
		}
		b, err := fs.ReadFile(l.FS, p)
		if err == nil {
			return b, p, nil
		}
	}
	return nil, "", ErrModuleNotFound
}

func candidates(dir, name string) []string {
	base := filepath.Join(dir, name)
	paths := []string{base}
	if hasSourceExt(name) {
		return paths
	}
	for _, ext := range SourceExts {
		paths = append(paths, base+ext)
	}
	return paths
}

func hasSourceExt(name string) bool {
	for _, ext := range SourceExts {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

func isDirErr(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func dirOf(path string) string {
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}
