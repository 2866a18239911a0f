// Copyright © 2024 The Qanun authors

package profiler_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/interp/x/profiler"
	"github.com/luthersystems/qanun/qanuntest"
)

const testProgram = `
fun addIt(x, y) -> x + y
fun recurseIt(x) {
  if (x < 4) return addIt(x, 3)
  return recurseIt(x - 1)
}
class Greeter {
  init(name) { this.name = name }
  greet() -> "hi " + this.name
}
print(addIt(recurseIt(5), 8))
print(Greeter("q").greet())
`

func run(t *testing.T, p interp.Profiler) string {
	t.Helper()
	var out bytes.Buffer
	it, err := interp.New(
		interp.WithStdout(&out),
		interp.WithStderr(qanuntest.NewLogger(t)),
		natives.Config(),
		interp.WithProfiler(p),
	)
	require.NoError(t, err)
	require.NoError(t, it.RunString("test.qan", testProgram))
	require.NoError(t, p.Complete())
	return out.String()
}

func newTracerProvider(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func TestOpenTelemetryAnnotator(t *testing.T) {
	exporter := newTracerProvider(t)
	p := profiler.NewOpenTelemetryAnnotator(context.Background())
	assert.Equal(t, "14hi q", run(t, p))
	assert.ErrorIs(t, p.Enable(), profiler.ErrAlreadyEnabled)

	spans := exporter.GetSpans()
	names := make(map[string]int)
	for _, span := range spans {
		names[span.Name]++
	}
	assert.Equal(t, 3, names["recurseIt"])
	assert.Equal(t, 2, names["addIt"])
	assert.Equal(t, 1, names["Greeter"])
	assert.Zero(t, names["Greeter.init"], "initializers run inside the constructor span")
	assert.Equal(t, 1, names["Greeter.greet"])
	assert.Equal(t, 2, names["print"])

	var greet tracetest.SpanStub
	for _, span := range spans {
		if span.Name == "Greeter.greet" {
			greet = span
		}
	}
	attrs := attribute.NewSet(greet.Attributes...)
	v, ok := attrs.Value(semconv.CodeNamespaceKey)
	require.True(t, ok)
	assert.Equal(t, "Greeter", v.AsString())
	v, ok = attrs.Value(semconv.CodeLineNumberKey)
	require.True(t, ok)
	assert.Equal(t, int64(9), v.AsInt64())
	v, ok = attrs.Value(semconv.CodeFilepathKey)
	require.True(t, ok)
	assert.Equal(t, "test.qan", v.AsString())

	// recursive spans are nested
	byID := make(map[string]tracetest.SpanStub)
	for _, span := range spans {
		byID[span.SpanContext.SpanID().String()] = span
	}
	nested := 0
	for _, span := range spans {
		if span.Name != "recurseIt" {
			continue
		}
		if parent, ok := byID[span.Parent.SpanID().String()]; ok && parent.Name == "recurseIt" {
			nested++
		}
	}
	assert.Equal(t, 2, nested)
}

func TestOpenTelemetryAnnotatorFilters(t *testing.T) {
	exporter := newTracerProvider(t)
	p := profiler.NewOpenTelemetryAnnotator(context.Background(),
		profiler.WithOnly("addIt", "Greeter.greet"),
		profiler.WithLabels(map[string]string{"addIt": "Add_It"}))
	run(t, p)

	spans := exporter.GetSpans()
	require.Len(t, spans, 3)
	assert.Equal(t, "Add_It", spans[0].Name)
	assert.Equal(t, "Add_It", spans[1].Name)
	assert.Equal(t, "Greeter.greet", spans[2].Name)
}

func TestOpenTelemetryAnnotatorNoContext(t *testing.T) {
	//nolint:staticcheck
	p := profiler.NewOpenTelemetryAnnotator(nil)
	assert.Error(t, p.Enable())
}

func TestSummarize(t *testing.T) {
	exporter := newTracerProvider(t)
	p := profiler.NewOpenTelemetryAnnotator(context.Background(), profiler.WithSkipNatives())
	run(t, p)

	summaries := profiler.Summarize(exporter.GetSpans())
	calls := make(map[string]int)
	for _, s := range summaries {
		calls[s.Name] = s.Calls
		assert.GreaterOrEqual(t, s.Total, time.Duration(0))
	}
	assert.Equal(t, map[string]int{
		"addIt": 2, "recurseIt": 3, "Greeter": 1, "Greeter.greet": 1,
	}, calls)

	var buf bytes.Buffer
	require.NoError(t, profiler.WriteSummary(&buf, summaries))
	assert.Contains(t, buf.String(), "FUNCTION")
	assert.Contains(t, buf.String(), "recurseIt")
}

func TestFunName(t *testing.T) {
	class := &interp.Class{Name: "C"}
	assert.Equal(t, "C.m", profiler.FunName(&interp.Function{Name: "m", Class: class}))
	assert.Equal(t, "fun", profiler.FunName(&interp.Function{}))
	assert.Equal(t, "len", profiler.FunName(&interp.Native{Name: "len"}))
	assert.Equal(t, "C", profiler.FunName(class))
}
