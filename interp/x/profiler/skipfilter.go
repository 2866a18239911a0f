// Copyright © 2024 The Qanun authors

package profiler

import (
	"github.com/luthersystems/qanun/interp"
)

// SkipFilter reports whether calls to fn should be left out of a profile.
type SkipFilter func(fn interp.Callable) bool

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}

// WithSkipNatives leaves calls to native functions out of the profile.
func WithSkipNatives() Option {
	return WithSkipFilter(func(fn interp.Callable) bool {
		_, ok := fn.(*interp.Native)
		return ok
	})
}

// WithOnly records only the functions whose canonical names are given.
func WithOnly(names ...string) Option {
	keep := make(map[string]bool, len(names))
	for _, name := range names {
		keep[name] = true
	}
	return WithSkipFilter(func(fn interp.Callable) bool {
		return !keep[FunName(fn)]
	})
}
