// Copyright © 2024 The Qanun authors

package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
)

type astOptions struct {
	expression bool
	source     bool
}

var astOpts astOptions

var astCmd = &cobra.Command{
	Use:   "ast [flags] file.qan",
	Short: "Print the syntax tree of a Qanun program",
	Long: `Parse a Qanun program and print its syntax tree, one statement per
line, in parenthesized prefix form.  With --source the tree is printed back
as Qanun code instead, which normalizes spacing and parenthesization.

Examples:
  qanun ast fib.qan
  qanun ast -e '1 + 2 * 3'             prints (; (+ 1 (* 2 3)))
  qanun ast --source fib.qan`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		os.Exit(runAST(os.Stdout, os.Stderr, args[0], astOpts))
	},
}

func runAST(stdout, stderr io.Writer, arg string, o astOptions) int {
	var (
		stmts []ast.Stmt
		err   error
	)
	r := newRenderer()
	if o.expression {
		r = r.WithSource(expressionSource, arg)
		stmts, err = parser.ParseString(expressionSource, arg)
	} else {
		stmts, err = parser.ParseFile(arg)
	}
	if err != nil {
		if !interp.IsParseError(err) {
			fmt.Fprintf(stderr, "qanun ast: %v\n", err)
			return interp.ExitUsage
		}
		renderError(stderr, r, err, "")
		return interp.ExitDataErr
	}
	if !o.source {
		_, _ = io.WriteString(stdout, ast.SexprProgram(stmts))
		return 0
	}
	for _, s := range stmts {
		fmt.Fprintln(stdout, ast.Source(s))
	}
	return 0
}

func init() {
	rootCmd.AddCommand(astCmd)

	astCmd.Flags().BoolVarP(&astOpts.expression, "expression", "e", false,
		"Interpret the argument as Qanun source instead of a file name")
	astCmd.Flags().BoolVar(&astOpts.source, "source", false,
		"Print the tree as Qanun source")
}
