// Copyright © 2024 The Qanun authors

package cmd

import (
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
)

// Option configures an exported command factory (CheckCommand, DocCommand,
// LSPCommand).
type Option func(*cmdConfig)

type cmdConfig struct {
	it      *interp.Interpreter
	natives []*interp.Native
	modules []*interp.Module
}

// WithInterpreter injects a fully configured interpreter.  Its natives and
// modules are what the command documents and what static checks treat as
// defined.
func WithInterpreter(it *interp.Interpreter) Option {
	return func(c *cmdConfig) { c.it = it }
}

// WithNatives adds embedder-provided natives to the standard library.
func WithNatives(ns ...*interp.Native) Option {
	return func(c *cmdConfig) { c.natives = append(c.natives, ns...) }
}

// WithModules adds embedder-provided built-in modules to the standard
// library.
func WithModules(ms ...*interp.Module) Option {
	return func(c *cmdConfig) { c.modules = append(c.modules, ms...) }
}

// resolveInterpreter returns the injected interpreter or a documentation
// interpreter holding the standard library plus any extra natives and
// modules.
func (c *cmdConfig) resolveInterpreter() (*interp.Interpreter, error) {
	if c.it != nil {
		return c.it, nil
	}
	it, err := natives.NewDocInterpreter()
	if err != nil {
		return nil, err
	}
	for _, n := range c.natives {
		it.DefineNative(n)
	}
	for _, m := range c.modules {
		it.RegisterModule(m)
	}
	return it, nil
}

func newCmdConfig(opts []Option) *cmdConfig {
	cfg := &cmdConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
