// Copyright © 2024 The Qanun authors

package profiler

import (
	"context"
	"errors"

	"go.opencensus.io/trace"

	"github.com/luthersystems/qanun/interp"
)

var _ interp.Profiler = &OCAnnotator{}

// OCAnnotator records an OpenCensus span for every call.
type OCAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    *trace.Span
	contexts       []context.Context
}

func NewOpenCensusAnnotator(parentContext context.Context, opts ...Option) *OCAnnotator {
	p := &OCAnnotator{
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

// EnableWithContext enables the annotator, parenting spans on ctx.
func (p *OCAnnotator) EnableWithContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("set a context to use this function")
	}
	p.currentContext = ctx
	return p.Enable()
}

func (p *OCAnnotator) Enable() error {
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opencensus")
	}
	return p.profiler.Enable()
}

func (p *OCAnnotator) Complete() error {
	for len(p.contexts) > 0 {
		p.pop()
	}
	return nil
}

func (p *OCAnnotator) Start(fn interp.Callable) {
	if p.skipTrace(fn) {
		return
	}
	label, _ := p.prettyFunName(fn)
	p.contexts = append(p.contexts, p.currentContext)
	p.currentContext, p.currentSpan = trace.StartSpan(p.currentContext, label)
}

func (p *OCAnnotator) End(fn interp.Callable) {
	if p.skipTrace(fn) || len(p.contexts) == 0 {
		return
	}
	file, line := "no-source", 0
	if loc := sourceOf(fn); loc != nil {
		file, line = loc.File, loc.Line
	}
	p.currentSpan.Annotate([]trace.Attribute{
		trace.StringAttribute("file", file),
		trace.Int64Attribute("line", int64(line)),
	}, "source")
	p.pop()
}

func (p *OCAnnotator) pop() {
	p.currentSpan.End()
	p.currentContext = p.contexts[len(p.contexts)-1]
	p.contexts = p.contexts[:len(p.contexts)-1]
	p.currentSpan = trace.FromContext(p.currentContext)
}
