// Copyright © 2024 The Qanun authors

package profiler

import (
	"fmt"
	"io"
	"sort"
	"time"

	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

// SpanSummary aggregates the spans recorded for one function.
type SpanSummary struct {
	Name  string
	Calls int
	// Total is the summed duration of every span.  Recursive calls are
	// counted once per span, so Total may exceed the wall time of the run.
	Total time.Duration
}

// Summarize aggregates spans by name, ordered by decreasing total duration
// and then by name.
func Summarize(spans tracetest.SpanStubs) []SpanSummary {
	byName := make(map[string]*SpanSummary)
	for _, span := range spans {
		s, ok := byName[span.Name]
		if !ok {
			s = &SpanSummary{Name: span.Name}
			byName[span.Name] = s
		}
		s.Calls++
		s.Total += span.EndTime.Sub(span.StartTime)
	}
	summaries := make([]SpanSummary, 0, len(byName))
	for _, s := range byName {
		summaries = append(summaries, *s)
	}
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Total != summaries[j].Total {
			return summaries[i].Total > summaries[j].Total
		}
		return summaries[i].Name < summaries[j].Name
	})
	return summaries
}

// WriteSummary writes a table of summaries to w.
func WriteSummary(w io.Writer, summaries []SpanSummary) error {
	if _, err := fmt.Fprintf(w, "%-32s %8s %14s\n", "FUNCTION", "CALLS", "TOTAL"); err != nil {
		return err
	}
	for _, s := range summaries {
		if _, err := fmt.Fprintf(w, "%-32s %8d %14s\n", s.Name, s.Calls, s.Total); err != nil {
			return err
		}
	}
	return nil
}
