// Copyright © 2024 The Qanun authors

package profiler_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/x/profiler"
)

func TestPprofAnnotator(t *testing.T) {
	p := profiler.NewPprofAnnotator(nil)
	assert.Equal(t, "14hi q", run(t, p))
	assert.Empty(t, p.Labels())
}

func TestPprofAnnotatorLabels(t *testing.T) {
	p := profiler.NewPprofAnnotator(context.Background())
	require.NoError(t, p.Enable())
	outer := &interp.Function{Name: "outer"}
	inner := &interp.Native{Name: "len"}
	p.Start(outer)
	assert.Equal(t, map[string]string{"function": "outer"}, p.Labels())
	p.Start(inner)
	assert.Equal(t, map[string]string{"function": "len"}, p.Labels())
	p.End(inner)
	assert.Equal(t, map[string]string{"function": "outer"}, p.Labels())
	p.End(outer)
	assert.Empty(t, p.Labels())
	require.NoError(t, p.Complete())
}
