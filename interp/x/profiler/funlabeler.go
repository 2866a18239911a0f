// Copyright © 2024 The Qanun authors

package profiler

import (
	"github.com/luthersystems/qanun/interp"
)

// FunLabeler provides an alternative name for a function label in the trace.
// Returning an empty string keeps the canonical name.
type FunLabeler func(fn interp.Callable) string

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

// WithLabels renames the functions listed in labels, keyed by canonical
// name.
func WithLabels(labels map[string]string) Option {
	return WithFunLabeler(func(fn interp.Callable) string {
		return labels[FunName(fn)]
	})
}
