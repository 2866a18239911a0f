// Copyright © 2024 The Qanun authors

package interp

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFSLoader(t *testing.T) {
	dir := t.TempDir()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "local.qan"), []byte("var local = 1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "shared.qanun"), []byte("var shared = 1"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(root, "local.qan"), []byte("var other = 1"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "pkg"), 0o700))

	l := &FSLoader{Roots: []string{root}}

	src, path, err := l.Load(dir, "local")
	require.NoError(t, err)
	assert.Equal(t, "var local = 1", string(src))
	assert.Equal(t, filepath.Join(dir, "local.qan"), path)

	src, path, err = l.Load(dir, "shared")
	require.NoError(t, err)
	assert.Equal(t, "var shared = 1", string(src))
	assert.Equal(t, filepath.Join(root, "shared.qanun"), path)

	_, _, err = l.Load(dir, "pkg")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	_, _, err = l.Load(dir, "missing")
	assert.ErrorIs(t, err, ErrModuleNotFound)
	_, _, err = l.Load(dir, "")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}

func TestFSysLoader(t *testing.T) {
	l := &FSysLoader{FS: fstest.MapFS{
		"a/b.qan": {Data: []byte("b")},
		"c.qan":   {Data: []byte("c")},
	}}
	src, path, err := l.Load("a", "b")
	require.NoError(t, err)
	assert.Equal(t, "b", string(src))
	assert.Equal(t, "a/b.qan", path)

	_, path, err = l.Load("", "c.qan")
	require.NoError(t, err)
	assert.Equal(t, "c.qan", path)

	_, _, err = l.Load("a", "../../c")
	assert.ErrorIs(t, err, ErrModuleNotFound, "paths may not escape the root")
	_, _, err = l.Load("a", "c")
	assert.ErrorIs(t, err, ErrModuleNotFound)
}
