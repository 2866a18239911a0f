// Copyright © 2024 The Qanun authors

package profiler

import (
	"context"
	"runtime/pprof"

	"github.com/luthersystems/qanun/interp"
)

// PprofAnnotator labels the running goroutine with the Qanun function being
// called so that CPU profiles taken with pprof attribute samples to Qanun
// code.  It does not start profiling itself.
type PprofAnnotator struct {
	profiler
	currentContext context.Context
	contexts       []context.Context
}

var _ interp.Profiler = &PprofAnnotator{}

func NewPprofAnnotator(parentContext context.Context, opts ...Option) *PprofAnnotator {
	p := &PprofAnnotator{
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *PprofAnnotator) Enable() error {
	if p.currentContext == nil {
		p.currentContext = context.Background()
	}
	return p.profiler.Enable()
}

func (p *PprofAnnotator) Complete() error {
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

// Labels returns the labels currently applied by p.
func (p *PprofAnnotator) Labels() map[string]string {
	labels := make(map[string]string)
	if p.currentContext == nil {
		return labels
	}
	pprof.ForLabels(p.currentContext, func(k, v string) bool {
		labels[k] = v
		return true
	})
	return labels
}

func (p *PprofAnnotator) Start(fn interp.Callable) {
	if p.skipTrace(fn) {
		return
	}
	label, _ := p.prettyFunName(fn)
	p.contexts = append(p.contexts, p.currentContext)
	p.currentContext = pprof.WithLabels(p.currentContext, pprof.Labels("function", label))
	pprof.SetGoroutineLabels(p.currentContext)
}

func (p *PprofAnnotator) End(fn interp.Callable) {
	if p.skipTrace(fn) || len(p.contexts) == 0 {
		return
	}
	p.currentContext = p.contexts[len(p.contexts)-1]
	p.contexts = p.contexts[:len(p.contexts)-1]
	pprof.SetGoroutineLabels(p.currentContext)
}
