// Copyright © 2024 The Qanun authors

package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/repl"
)

// Configuration keys.  Each may also be set through the environment as
// QANUN_<KEY>.
const (
	keyMaxCallDepth = "max_call_depth"
	keyHistoryFile  = "history_file"
	keyColor        = "color"
	keyModulePath   = "module_path"
	keyTrace        = "trace"
)

const defaultMaxCallDepth = 1024

func setConfigDefaults(v *viper.Viper) {
	v.SetDefault(keyMaxCallDepth, defaultMaxCallDepth)
	v.SetDefault(keyHistoryFile, repl.DefaultHistoryFile())
	v.SetDefault(keyColor, "auto")
	v.SetDefault(keyModulePath, "")
	v.SetDefault(keyTrace, false)
}

// moduleRoots splits the module_path setting into directories.
func moduleRoots(v *viper.Viper) []string {
	path := v.GetString(keyModulePath)
	if path == "" {
		return nil
	}
	var roots []string
	for _, dir := range filepath.SplitList(path) {
		if dir != "" {
			roots = append(roots, dir)
		}
	}
	return roots
}

// interpreterConfigs returns the interpreter options every command that
// executes Qanun code shares: output streams, the standard library and the
// runtime options of runtimeConfigs.
func interpreterConfigs(v *viper.Viper, stdout, stderr io.Writer) []interp.Config {
	return append([]interp.Config{
		interp.WithStdout(stdout),
		interp.WithStderr(stderr),
		interp.WithStdin(os.Stdin),
		natives.Config(),
	}, runtimeConfigs(v)...)
}

// runtimeConfigs returns the module loader and call depth limit taken from
// the configuration.
func runtimeConfigs(v *viper.Viper) []interp.Config {
	depth := v.GetInt(keyMaxCallDepth)
	if depth <= 0 {
		depth = defaultMaxCallDepth
	}
	return []interp.Config{
		interp.WithLoader(&interp.FSLoader{Roots: moduleRoots(v)}),
		interp.WithMaxCallDepth(depth),
	}
}
