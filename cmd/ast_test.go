// Copyright © 2024 The Qanun authors

package cmd

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/luthersystems/qanun/interp"
)

func TestRunAST(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runAST(&stdout, &stderr, "1 + 2 * 3", astOptions{expression: true})
	assert.Equal(t, 0, code)
	assert.Equal(t, "(; (+ 1 (* 2 3)))\n", stdout.String())
	assert.Empty(t, stderr.String())
}

func TestRunAST_File(t *testing.T) {
	path := writeSource(t, t.TempDir(), "main.qan", "var x = 1\nprintln(x)\n")
	var stdout, stderr bytes.Buffer
	code := runAST(&stdout, &stderr, path, astOptions{})
	assert.Equal(t, 0, code)
	assert.Equal(t, "(var x 1)\n(; (call println x))\n", stdout.String())
}

func TestRunAST_Errors(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := runAST(&stdout, &stderr, "var = 1", astOptions{expression: true})
	assert.Equal(t, interp.ExitDataErr, code)
	assert.Contains(t, stderr.String(), "Expect variable name.")

	stderr.Reset()
	code = runAST(&stdout, &stderr, "/no/such/file.qan", astOptions{})
	assert.Equal(t, interp.ExitUsage, code)
	assert.Contains(t, stderr.String(), "qanun ast:")
}
