// Copyright © 2021 The Qanun authors

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/qanun/docs"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
)

type docOptions struct {
	guide     bool
	debugging bool
	list      bool
}

// DocCommand creates the "doc" cobra command with optional embedder
// configuration.  Natives and modules supplied with WithInterpreter,
// WithNatives or WithModules are documented alongside the standard
// library.
func DocCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var o docOptions

	cmd := &cobra.Command{
		Use:   "doc [flags] [NAME]",
		Short: "Show documentation for natives, modules and the language",
		Long: `Show built-in documentation for Qanun natives and modules.

With no argument, lists every native and module with a one-line summary.
NAME may be a native (println), a module (Time) or a module member
(Time.now).

Use --guide to print the language guide and --debugging to print the
guide to the debugger.

Examples:
  qanun doc                 List natives and modules
  qanun doc println         Show docs for the println native
  qanun doc Regex           Show docs for the Regex module and its members
  qanun doc Crypto.sha      Show docs for a module member
  qanun doc --guide         Print the language guide`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			it, err := cfg.resolveInterpreter()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
			out := bufio.NewWriter(os.Stdout)
			err = runDoc(out, it, args, o)
			_ = out.Flush()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolVar(&o.guide, "guide", false,
		"Print the language guide.")
	cmd.Flags().BoolVar(&o.debugging, "debugging", false,
		"Print the debugger guide.")
	cmd.Flags().BoolVarP(&o.list, "list", "l", false,
		"List all natives and modules with a summary.")
	return cmd
}

func runDoc(w io.Writer, it *interp.Interpreter, args []string, o docOptions) error {
	switch {
	case o.guide:
		_, err := io.WriteString(w, docs.LangGuide)
		return err
	case o.debugging:
		_, err := io.WriteString(w, docs.DebuggingGuide)
		return err
	case o.list || len(args) == 0:
		return natives.RenderIndex(w, it)
	}
	return natives.Render(w, it, args[0])
}

func init() {
	rootCmd.AddCommand(DocCommand())
}
