// Copyright © 2024 The Qanun authors

// Package qanuntest runs Qanun programs as Go tests.
package qanuntest

import (
	"bytes"
	"fmt"
	"log"
	"os"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/parser"
)

// TestCase is a program together with the output it must produce.
type TestCase struct {
	Name   string `yaml:"name"`
	Source string `yaml:"source"`
	// Stdout is the complete text the program writes to standard output.
	Stdout string `yaml:"stdout"`
	// Err, when not empty, is a substring of the error the program must
	// fail with.  Output written before the error is still compared.
	Err string `yaml:"err"`
	// Stdin is supplied as the program's standard input.
	Stdin string `yaml:"stdin"`
}

// TestSuite is a set of TestCases, each run by a fresh interpreter.
type TestSuite []TestCase

// Runner runs test cases.  The zero Runner loads the standard library.
type Runner struct {
	// Configs are applied to each interpreter after the standard library
	// and output streams are configured.
	Configs []interp.Config
}

// NewInterpreter returns an interpreter with the standard library loaded,
// writing program output to stdout and diagnostics to t.Log.
func (r *Runner) NewInterpreter(t testing.TB, stdout *bytes.Buffer, stdin string) (*interp.Interpreter, *Logger, error) {
	logger := NewLogger(t)
	configs := []interp.Config{
		interp.WithStdout(stdout),
		interp.WithStderr(logger),
		interp.WithStdin(bytes.NewBufferString(stdin)),
		interp.WithMaxCallDepth(interp.DefaultMaxCallDepth),
		natives.Config(),
	}
	configs = append(configs, r.Configs...)
	it, err := interp.New(configs...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize interpreter: %w", err)
	}
	return it, logger, nil
}

// RunTest runs a single case as the current test.
func (r *Runner) RunTest(t *testing.T, test TestCase) {
	var stdout bytes.Buffer
	it, logger, err := r.NewInterpreter(t, &stdout, test.Stdin)
	if err != nil {
		t.Error(err)
		return
	}
	defer logger.Flush()
	err = it.RunString(test.Name, test.Source)
	switch {
	case test.Err == "" && err != nil:
		r.ReportError(t, err)
	case test.Err != "" && err == nil:
		t.Errorf("expected error containing %q", test.Err)
	case test.Err != "" && !strings.Contains(err.Error(), test.Err):
		t.Errorf("expected error containing %q (got %q)", test.Err, err.Error())
	}
	if stdout.String() != test.Stdout {
		t.Errorf("expected output %q (got %q)", test.Stdout, stdout.String())
	}
}

// RunTestSuite runs each case in tests as a subtest.
func (r *Runner) RunTestSuite(t *testing.T, tests TestSuite) {
	for i, test := range tests {
		name := test.Name
		if name == "" {
			name = fmt.Sprintf("case%d", i)
		}
		t.Run(name, func(t *testing.T) {
			r.RunTest(t, test)
		})
	}
}

// RunTestFile runs the cases of the YAML suite stored at path.
func (r *Runner) RunTestFile(t *testing.T, path string) {
	tests, err := LoadTestSuite(path)
	if err != nil {
		t.Error(err)
		return
	}
	r.RunTestSuite(t, tests)
}

// ReportError fails t with err, including the call stack of runtime errors.
func (r *Runner) ReportError(t testing.TB, err error) {
	rerr, ok := interp.AsRuntimeError(err)
	if !ok {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	if _, ioerr := rerr.WriteTrace(&buf); ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// LoadTestSuite reads a YAML list of test cases from path.
func LoadTestSuite(path string) (TestSuite, error) {
	b, err := os.ReadFile(path) //#nosec G304
	if err != nil {
		return nil, fmt.Errorf("unable to read test file: %w", err)
	}
	var tests TestSuite
	if err := yaml.Unmarshal(b, &tests); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return tests, nil
}

// RunTestSuite runs tests with the default Runner.
func RunTestSuite(t *testing.T, tests TestSuite) {
	log.SetFlags(0)
	(&Runner{}).RunTestSuite(t, tests)
}

// RunBenchmark runs a standard benchmark that executes the program in source
// on a fresh interpreter for each iteration.
func RunBenchmark(b *testing.B, source string) {
	b.StopTimer()
	stmts, err := parser.ParseString("benchmark", source)
	if err != nil {
		b.Fatalf("parse error: %v", err)
	}
	for i := 0; i < b.N; i++ {
		var stdout bytes.Buffer
		it, err := interp.New(
			interp.WithStdout(&stdout),
			interp.WithStderr(&stdout),
			natives.Config(),
		)
		if err != nil {
			b.Fatal(err)
		}
		if err := it.Resolve("benchmark", stmts); err != nil {
			b.Fatal(err)
		}
		b.StartTimer()
		if err := it.Interpret(stmts); err != nil {
			b.Fatal(err)
		}
		b.StopTimer()
	}
}
