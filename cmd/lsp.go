// Copyright © 2024 The Qanun authors

package cmd

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/luthersystems/qanun/lsp"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration.  Natives and modules supplied with WithInterpreter,
// WithNatives or WithModules are known to the server's analysis.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio bool
		port  int
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the Qanun Language Server Protocol server",
		Long: `Start an LSP server for Qanun source files.

The language server provides real-time IDE features including diagnostics,
hover documentation, go-to-definition, find references, completion,
document symbols, and rename support.

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Examples:
  qanun lsp                           Start with stdio transport
  qanun lsp --stdio                   Same as above (explicit)
  qanun lsp --port 7998               Start with TCP on port 7998

Editor configuration (VS Code):
  Install a generic LSP client extension and configure it to run
  "qanun lsp --stdio" for .qan files.`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			it, err := cfg.resolveInterpreter()
			if err != nil {
				fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
				os.Exit(1)
			}
			srv := lsp.New(lsp.WithInterpreter(it))

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				log.Printf("Qanun LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			} else {
				if err := srv.RunStdio(); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
