// Copyright © 2018 The Qanun authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
)

// expressionSource names -e programs in error messages.
const expressionSource = "expression"

type runOptions struct {
	expression bool
	trace      bool
	tracer     string
	cpuProfile string
	stdout     io.Writer
	stderr     io.Writer
}

var runOpts runOptions

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run [flags] file.qan...",
	Short: "Run Qanun programs",
	Long: `Run Qanun code supplied via the command line or a file.

Source files must end in .qan or .qanun.  Each file runs in the same
interpreter, so later files see the globals of earlier ones.

Exit codes:
  0   Success
  64  Bad invocation
  65  Syntax or resolution error
  70  Runtime error

Examples:
  qanun run fib.qan                       Run a file
  qanun run -e 'println(1 + 2)'           Evaluate a snippet
  qanun run --trace fib.qan               Print a per-function call summary
  qanun run --trace --tracer opencensus fib.qan
  qanun run --cpuprofile cpu.out fib.qan  Write a labeled pprof CPU profile`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := runOpts
		opts.trace = opts.trace || viper.GetBool(keyTrace)
		os.Exit(runFiles(args, opts))
	},
}

// runFiles runs each argument as a file or, with the expression option, as
// source text, and returns the process exit code.
func runFiles(args []string, opts runOptions) int {
	stdout, stderr := opts.stdout, opts.stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if len(args) == 0 {
		fmt.Fprintln(stderr, "qanun run: no input files")
		return interp.ExitUsage
	}
	if !opts.expression {
		for _, path := range args {
			if !analysis.IsSourceFile(path) {
				fmt.Fprintf(stderr, "qanun run: %s: source files must end in .qan or .qanun\n", path)
				return interp.ExitUsage
			}
		}
	}

	configs := interpreterConfigs(viper.GetViper(), stdout, stderr)
	sess, err := newRunSession(opts)
	if err != nil {
		fmt.Fprintf(stderr, "qanun run: %v\n", err)
		return interp.ExitUsage
	}
	if sess != nil {
		configs = append(configs, interp.WithProfiler(sess.profiler))
	}
	it, err := interp.New(configs...)
	if err != nil {
		if sess != nil {
			_ = sess.finish(io.Discard)
		}
		fmt.Fprintf(stderr, "qanun run: %v\n", err)
		return interp.ExitSoftware
	}

	code := 0
	renderer := newRenderer()
	for _, arg := range args {
		var err error
		r := renderer
		file := arg
		if opts.expression {
			r = renderer.WithSource(expressionSource, arg)
			file = ""
			err = it.RunString(expressionSource, arg)
		} else {
			err = it.RunFile(arg)
		}
		if err != nil {
			renderError(stderr, r, err, file)
			code = interp.ExitCode(err)
			break
		}
	}

	if sess != nil {
		if err := sess.finish(stderr); err != nil {
			fmt.Fprintf(stderr, "qanun run: %v\n", err)
		}
	}
	return code
}

func newRunSession(opts runOptions) (*session, error) {
	switch {
	case opts.cpuProfile != "" && opts.trace:
		return nil, fmt.Errorf("--trace and --cpuprofile cannot be combined")
	case opts.cpuProfile != "":
		return newCPUProfileSession(opts.cpuProfile)
	case opts.trace:
		return newTraceSession(opts.tracer)
	}
	return nil, nil
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolVarP(&runOpts.expression, "expression", "e", false,
		"Interpret arguments as Qanun source instead of file names")
	runCmd.Flags().BoolVar(&runOpts.trace, "trace", false,
		"Trace function calls and print a summary to stderr")
	runCmd.Flags().StringVar(&runOpts.tracer, "tracer", tracerOpenTelemetry,
		`Tracing back end: "otel" or "opencensus"`)
	runCmd.Flags().StringVar(&runOpts.cpuProfile, "cpuprofile", "",
		"Write a CPU profile labeled by Qanun function to this file")
}
