// Copyright © 2024 The Qanun authors

package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/lint"
	"github.com/luthersystems/qanun/parser/rdparser"
	"github.com/luthersystems/qanun/parser/token"
)

// Exit codes of the check command.
const (
	checkClean   = 0
	checkProblem = 1
	checkUsage   = 2
)

// Analyzer names used for problems found before linting starts.
const (
	syntaxAnalyzer  = "syntax"
	resolveAnalyzer = "resolve"
)

type checkOptions struct {
	json     bool
	checks   string
	list     bool
	excludes []string
}

// CheckCommand creates the "check" cobra command with optional embedder
// configuration.  Natives and modules supplied with WithInterpreter,
// WithNatives or WithModules are treated as defined.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var o checkOptions

	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Report errors and likely mistakes in Qanun source files",
		Long: `Check Qanun source files without running them.

Each file is scanned, parsed and resolved, so every syntax and resolution
error is reported.  Files that resolve cleanly are then examined by a set of
analyzers that report likely mistakes, similar to "go vet" for Go.

With no files, reads from stdin.  A "dir/..." argument expands to every
.qan and .qanun file under dir.

Exit codes:
  0  No problems found
  1  One or more problems were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  x = x // nolint:self-assign

To suppress all checks on a line:
  x = x // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  qanun check file.qan                          # Check a single file
  qanun check ./...                             # Check every file below .
  qanun check --json file.qan                   # Output diagnostics as JSON
  qanun check --checks=call-arity file.qan      # Run only specific checks
  qanun check --list                            # List available checks
  qanun check --exclude=vendor ./...            # Exclude a directory
  cat file.qan | qanun check                    # Check from stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			it, err := cfg.resolveInterpreter()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(checkUsage)
			}
			os.Exit(runCheck(os.Stdin, os.Stdout, os.Stderr, it, args, o))
		},
	}

	cmd.Flags().BoolVar(&o.json, "json", false,
		"Output diagnostics as JSON.")
	cmd.Flags().StringVar(&o.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	cmd.Flags().BoolVar(&o.list, "list", false,
		"List available checks and exit.")
	cmd.Flags().StringArrayVar(&o.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	return cmd
}

// runCheck checks each file named in args, or stdin when there are none,
// and returns the exit code.
func runCheck(stdin io.Reader, stdout, stderr io.Writer, it *interp.Interpreter, args []string, o checkOptions) int {
	if o.list {
		for _, name := range lint.AnalyzerNames() {
			fmt.Fprintln(stdout, name)
		}
		return checkClean
	}

	analyzers, err := selectAnalyzers(o.checks)
	if err != nil {
		fmt.Fprintf(stderr, "qanun check: %v\n", err)
		return checkUsage
	}
	l := &lint.Linter{Analyzers: analyzers}
	for _, m := range it.Modules() {
		l.Modules = append(l.Modules, m.Name)
	}
	globals := it.ExternalSymbols()

	type input struct {
		name string
		src  []byte
	}
	var inputs []input
	if len(args) == 0 {
		src, err := io.ReadAll(stdin)
		if err != nil {
			fmt.Fprintf(stderr, "qanun check: reading stdin: %v\n", err)
			return checkUsage
		}
		inputs = append(inputs, input{name: "<stdin>", src: src})
	} else {
		paths, err := expandArgs(args, o.excludes)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return checkUsage
		}
		for _, path := range paths {
			src, err := os.ReadFile(path) //#nosec G304 -- CLI tool reads user-specified files
			if err != nil {
				fmt.Fprintln(stderr, err)
				return checkUsage
			}
			inputs = append(inputs, input{name: path, src: src})
		}
	}

	var all []lint.Diagnostic
	renderer := newRenderer()
	for _, in := range inputs {
		diags, err := l.LintFile(in.src, in.name, &analysis.Config{ExtraGlobals: globals})
		if err != nil {
			errDiags := errorDiagnostics(err, in.name)
			if errDiags == nil {
				fmt.Fprintf(stderr, "qanun check: %v\n", err)
				return checkUsage
			}
			if !o.json {
				renderError(stderr, renderer.WithSource(in.name, string(in.src)), err, "")
			}
			all = append(all, errDiags...)
			continue
		}
		if !o.json && len(diags) > 0 {
			renderLintDiagnostics(stderr, diags)
		}
		all = append(all, diags...)
	}

	if o.json {
		if err := lint.FormatJSON(stdout, all); err != nil {
			fmt.Fprintln(stderr, err)
			return checkUsage
		}
	}
	if len(all) > 0 {
		return checkProblem
	}
	return checkClean
}

// selectAnalyzers returns the analyzers named in a comma separated list,
// or all of them when checks is empty.
func selectAnalyzers(checks string) ([]*lint.Analyzer, error) {
	analyzers := lint.DefaultAnalyzers()
	if checks == "" {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range strings.Split(checks, ",") {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}
	var filtered []*lint.Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	for name := range selected {
		return nil, fmt.Errorf("unknown check: %s", name)
	}
	return filtered, nil
}

// errorDiagnostics converts syntax and resolution errors to lint
// diagnostics so they can be reported as JSON.  Other errors yield nil.
func errorDiagnostics(err error, filename string) []lint.Diagnostic {
	var perrs rdparser.ErrorList
	if errors.As(err, &perrs) {
		diags := make([]lint.Diagnostic, len(perrs))
		for i, e := range perrs {
			diags[i] = errorDiagnostic(e.Source, filename, e.Message, syntaxAnalyzer)
		}
		return diags
	}
	var rerrs analysis.ErrorList
	if errors.As(err, &rerrs) {
		diags := make([]lint.Diagnostic, len(rerrs))
		for i, e := range rerrs {
			diags[i] = errorDiagnostic(e.Source, filename, e.Message, resolveAnalyzer)
		}
		return diags
	}
	return nil
}

func errorDiagnostic(loc *token.Location, filename, msg, analyzer string) lint.Diagnostic {
	d := lint.Diagnostic{
		Pos:      lint.Position{File: filename},
		Message:  msg,
		Analyzer: analyzer,
		Severity: lint.SeverityError,
	}
	if loc != nil {
		d.Pos.Line = loc.Line
		d.Pos.Col = loc.Col
	}
	return d
}

func init() {
	rootCmd.AddCommand(CheckCommand())
}
