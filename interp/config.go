// Copyright © 2024 The Qanun authors

package interp

import (
	"bufio"
	"context"
	"errors"
	"io"
)

// Config is a function that configures an Interpreter.  Configs are applied
// in order by New.
type Config func(it *Interpreter) error

// WithStdout returns a Config that makes the interpreter write program
// output to w instead of the default, os.Stdout.
func WithStdout(w io.Writer) Config {
	return func(it *Interpreter) error {
		it.stdout = w
		return nil
	}
}

// WithStderr returns a Config that makes the interpreter write diagnostic
// output to w instead of the default, os.Stderr.
func WithStderr(w io.Writer) Config {
	return func(it *Interpreter) error {
		it.stderr = w
		return nil
	}
}

// WithStdin returns a Config that makes the read and readln natives consume
// r instead of os.Stdin.
func WithStdin(r io.Reader) Config {
	return func(it *Interpreter) error {
		it.stdin = bufio.NewReader(r)
		return nil
	}
}

// WithLoader returns a Config that makes import statements resolve module
// files using l.  Without a loader only built-in modules can be imported.
func WithLoader(l Loader) Config {
	return func(it *Interpreter) error {
		it.loader = l
		return nil
	}
}

// WithMaxCallDepth returns a Config that limits the number of active calls.
// A call that would exceed n frames fails with a stack overflow runtime
// error.  A value of 0 disables the limit.
func WithMaxCallDepth(n int) Config {
	return func(it *Interpreter) error {
		if n < 0 {
			return errors.New("negative maximum call depth")
		}
		it.Stack.MaxHeight = n
		return nil
	}
}

// WithDebugger returns a Config that attaches a debugger to the interpreter.
func WithDebugger(d Debugger) Config {
	return func(it *Interpreter) error {
		it.debugger = d
		return nil
	}
}

// WithProfiler returns a Config that attaches a profiler to the interpreter.
// The profiler is enabled by New.
func WithProfiler(p Profiler) Config {
	return func(it *Interpreter) error {
		it.profiler = p
		if p.IsEnabled() {
			return nil
		}
		return p.Enable()
	}
}

// WithContext returns a Config that sets the context.Context checked before
// each statement.  When ctx is done, evaluation stops with a runtime error.
func WithContext(ctx context.Context) Config {
	return func(it *Interpreter) error {
		it.ctx = ctx
		return nil
	}
}

// WithNatives returns a Config that defines each native function as a
// global.
func WithNatives(natives ...*Native) Config {
	return func(it *Interpreter) error {
		for _, n := range natives {
			it.DefineNative(n)
		}
		return nil
	}
}

// WithModules returns a Config that registers built-in modules which
// programs can import by name.
func WithModules(mods ...*Module) Config {
	return func(it *Interpreter) error {
		for _, m := range mods {
			it.RegisterModule(m)
		}
		return nil
	}
}

// WithRedefineGlobals returns a Config that allows global var and val
// declarations to replace existing globals of the same name.  This is what
// an interactive session wants.
func WithRedefineGlobals() Config {
	return func(it *Interpreter) error {
		it.redefineGlobals = true
		return nil
	}
}
