// Copyright © 2024 The Qanun authors

package profiler

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/luthersystems/qanun/interp"
)

type contextKey string

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
	ContextOpenTelemetryTracerKey contextKey = "otelParentTracer"

	// DefaultTracerName names the tracer when the context does not.
	DefaultTracerName = "qanun"
)

var _ interp.Profiler = &OTelAnnotator{}

// OTelAnnotator records a span for every call.  Spans nest the way the
// calls do.
type OTelAnnotator struct {
	profiler
	currentContext context.Context
	currentSpan    trace.Span
	contexts       []context.Context
	spans          []trace.Span
}

func NewOpenTelemetryAnnotator(parentContext context.Context, opts ...Option) *OTelAnnotator {
	p := &OTelAnnotator{
		currentContext: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *OTelAnnotator) Enable() error {
	if p.currentContext == nil {
		return errors.New("we can only append spans to a context that is linked to opentelemetry")
	}
	return p.profiler.Enable()
}

// Complete ends any spans left open by calls that did not return.
func (p *OTelAnnotator) Complete() error {
	for len(p.spans) > 0 {
		p.pop()
	}
	return nil
}

func contextTracer(ctx context.Context) trace.Tracer {
	tracerName, ok := ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		tracerName = DefaultTracerName
	}
	return otel.GetTracerProvider().Tracer(tracerName)
}

func (p *OTelAnnotator) Start(fn interp.Callable) {
	if p.skipTrace(fn) {
		return
	}
	prettyLabel, funName := p.prettyFunName(fn)
	p.contexts = append(p.contexts, p.currentContext)
	p.currentContext, p.currentSpan = contextTracer(p.currentContext).Start(p.currentContext, prettyLabel)
	p.spans = append(p.spans, p.currentSpan)
	p.addCodeAttributes(fn, funName)
}

func (p *OTelAnnotator) End(fn interp.Callable) {
	if p.skipTrace(fn) || len(p.spans) == 0 {
		return
	}
	p.pop()
}

func (p *OTelAnnotator) pop() {
	p.spans[len(p.spans)-1].End()
	p.spans = p.spans[:len(p.spans)-1]
	p.currentContext = p.contexts[len(p.contexts)-1]
	p.contexts = p.contexts[:len(p.contexts)-1]
	p.currentSpan = trace.SpanFromContext(p.currentContext)
}

func (p *OTelAnnotator) addCodeAttributes(fn interp.Callable, funName string) {
	attrs := []attribute.KeyValue{
		semconv.CodeFunction(funName),
	}
	if ns := namespaceOf(fn); ns != "" {
		attrs = append(attrs, semconv.CodeNamespace(ns))
	}
	if loc := sourceOf(fn); loc != nil {
		attrs = append(attrs,
			semconv.CodeColumn(loc.Col),
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
		)
	}
	p.currentSpan.SetAttributes(attrs...)
}
