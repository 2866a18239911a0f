// Copyright © 2024 The Qanun authors

// Package profiler implements interp.Profiler annotators that record Qanun
// function calls with OpenTelemetry, OpenCensus or pprof labels.
package profiler

import (
	"errors"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/token"
)

// ErrAlreadyEnabled is returned by Enable when called twice.
var ErrAlreadyEnabled = errors.New("profiler already enabled")

// profiler holds the state shared by every annotator.
type profiler struct {
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return ErrAlreadyEnabled
	}
	p.enabled = true
	return nil
}

// FunName returns the canonical span name for fn.  Methods are qualified by
// their class and anonymous functions are called "fun".
func FunName(fn interp.Callable) string {
	switch fn := fn.(type) {
	case *interp.Function:
		name := fn.Name
		if name == "" {
			name = "fun"
		}
		if fn.Class != nil {
			return fn.Class.Name + "." + name
		}
		return name
	case *interp.Native:
		return fn.Name
	case *interp.Class:
		return fn.Name
	}
	return fn.String()
}

// prettyFunName returns a display label and the canonical name of fn.  The
// label comes from the configured FunLabeler when it produces one.
func (p *profiler) prettyFunName(fn interp.Callable) (string, string) {
	orig := FunName(fn)
	pretty := orig
	if p.funLabeler != nil {
		if label := p.funLabeler(fn); label != "" {
			pretty = label
		}
	}
	return pretty, orig
}

// skipTrace reports whether a call to fn should not be recorded.
func (p *profiler) skipTrace(fn interp.Callable) bool {
	return !p.enabled || p.skipFilter != nil && p.skipFilter(fn)
}

// sourceOf returns the declaration site of fn, or nil for natives.
func sourceOf(fn interp.Callable) *token.Location {
	switch fn := fn.(type) {
	case *interp.Function:
		if fn.Decl != nil && fn.Decl.Keyword != nil {
			return fn.Decl.Keyword.Source
		}
	case *interp.Class:
		if init, ok := fn.FindMethod("init"); ok {
			return sourceOf(init)
		}
	}
	return nil
}

// namespaceOf returns the class that declares fn, or an empty string.
func namespaceOf(fn interp.Callable) string {
	switch fn := fn.(type) {
	case *interp.Function:
		if fn.Class != nil {
			return fn.Class.Name
		}
	case *interp.Native:
		return "native"
	}
	return ""
}
