// Copyright © 2024 The Qanun authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/docs"
	"github.com/luthersystems/qanun/interp"
)

func TestDocCommand_DefaultFlags(t *testing.T) {
	cmd := DocCommand()
	assert.Equal(t, "doc [flags] [NAME]", cmd.Use)

	for _, name := range []string{"guide", "debugging", "list"} {
		assert.NotNil(t, cmd.Flags().Lookup(name), "missing flag: %s", name)
	}
}

func TestRunDoc(t *testing.T) {
	it := checkInterpreter(t)
	tests := []struct {
		name     string
		args     []string
		opts     docOptions
		contains []string
	}{
		{"index", nil, docOptions{}, []string{"println(value)", "Time", "Regex"}},
		{"list flag", []string{"ignored"}, docOptions{list: true}, []string{"clock()"}},
		{"native", []string{"println"}, docOptions{}, []string{"native function println(value)", "Writes value to standard output"}},
		{"module", []string{"Time"}, docOptions{}, []string{"module Time", "Access to the local wall clock.", "native function Time.now()"}},
		{"member", []string{"Time.now"}, docOptions{}, []string{"Returns the number of seconds since the Unix epoch."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, runDoc(&buf, it, tt.args, tt.opts))
			for _, s := range tt.contains {
				assert.Contains(t, buf.String(), s)
			}
		})
	}
}

func TestRunDoc_Guides(t *testing.T) {
	it := checkInterpreter(t)
	var buf bytes.Buffer
	require.NoError(t, runDoc(&buf, it, nil, docOptions{guide: true}))
	assert.Equal(t, docs.LangGuide, buf.String())

	buf.Reset()
	require.NoError(t, runDoc(&buf, it, nil, docOptions{debugging: true}))
	assert.Equal(t, docs.DebuggingGuide, buf.String())
}

func TestRunDoc_Unknown(t *testing.T) {
	it := checkInterpreter(t)
	var buf bytes.Buffer
	assert.Error(t, runDoc(&buf, it, []string{"nosuch"}, docOptions{}))
	assert.Error(t, runDoc(&buf, it, []string{"Time.nosuch"}, docOptions{}))
	assert.Error(t, runDoc(&buf, it, []string{"Nosuch.member"}, docOptions{}))
}

func TestDocCommand_WithModules(t *testing.T) {
	mod := &interp.Module{
		Name: "Greeter",
		Doc:  "Friendly greetings.",
		Members: map[string]interp.Value{
			"hello": &interp.Native{
				Name:   "hello",
				Params: []string{"name"},
				Doc:    "Returns a greeting for name.",
			},
		},
	}
	cfg := newCmdConfig([]Option{WithModules(mod)})
	it, err := cfg.resolveInterpreter()
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, runDoc(&buf, it, []string{"Greeter"}, docOptions{}))
	assert.Contains(t, buf.String(), "Friendly greetings.")
	assert.Contains(t, buf.String(), "native function Greeter.hello(name)")
}
