// Copyright © 2024 The Qanun authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime/pprof"
	"sync"

	octrace "go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/x/profiler"
)

// Tracer back ends accepted by "qanun run --tracer".
const (
	tracerOpenTelemetry = "otel"
	tracerOpenCensus    = "opencensus"
)

// session attaches a profiler to a run and reports what it recorded once
// the run is over.
type session struct {
	profiler interp.Profiler
	finish   func(w io.Writer) error
}

// newTraceSession records a span per function call with the named back end.
// The summary written by finish lists each function with its call count
// and total time.
func newTraceSession(backend string) (*session, error) {
	switch backend {
	case "", tracerOpenTelemetry:
		return newOTelSession(), nil
	case tracerOpenCensus:
		return newOpenCensusSession(), nil
	default:
		return nil, fmt.Errorf("unknown tracer %q: want %s or %s", backend, tracerOpenTelemetry, tracerOpenCensus)
	}
}

func newOTelSession() *session {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	ann := profiler.NewOpenTelemetryAnnotator(context.Background(), profiler.WithSkipNatives())
	return &session{
		profiler: ann,
		finish: func(w io.Writer) error {
			defer otel.SetTracerProvider(prev)
			if err := ann.Complete(); err != nil {
				return err
			}
			ctx := context.Background()
			if err := tp.ForceFlush(ctx); err != nil {
				return err
			}
			spans := exporter.GetSpans()
			if err := tp.Shutdown(ctx); err != nil {
				return err
			}
			return profiler.WriteSummary(w, profiler.Summarize(spans))
		},
	}
}

// spanCollector is an OpenCensus exporter that keeps every span it is
// given.
type spanCollector struct {
	mu    sync.Mutex
	spans tracetest.SpanStubs
}

func (c *spanCollector) ExportSpan(sd *octrace.SpanData) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.spans = append(c.spans, tracetest.SpanStub{
		Name:      sd.Name,
		StartTime: sd.StartTime,
		EndTime:   sd.EndTime,
	})
}

func newOpenCensusSession() *session {
	collector := &spanCollector{}
	octrace.RegisterExporter(collector)
	octrace.ApplyConfig(octrace.Config{DefaultSampler: octrace.AlwaysSample()})
	ann := profiler.NewOpenCensusAnnotator(context.Background(), profiler.WithSkipNatives())
	return &session{
		profiler: ann,
		finish: func(w io.Writer) error {
			defer octrace.UnregisterExporter(collector)
			if err := ann.Complete(); err != nil {
				return err
			}
			collector.mu.Lock()
			spans := collector.spans
			collector.mu.Unlock()
			return profiler.WriteSummary(w, profiler.Summarize(spans))
		},
	}
}

// newCPUProfileSession writes a CPU profile to path.  Samples are labeled
// with the Qanun function that was running.
func newCPUProfileSession(path string) (*session, error) {
	f, err := os.Create(path) //#nosec G304
	if err != nil {
		return nil, err
	}
	if err := pprof.StartCPUProfile(f); err != nil {
		_ = f.Close()
		return nil, err
	}
	ann := profiler.NewPprofAnnotator(context.Background())
	return &session{
		profiler: ann,
		finish: func(io.Writer) error {
			pprof.StopCPUProfile()
			if err := ann.Complete(); err != nil {
				_ = f.Close()
				return err
			}
			return f.Close()
		},
	}, nil
}
