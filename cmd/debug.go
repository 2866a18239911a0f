// Copyright © 2018 The Qanun authors

package cmd

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/analysis"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/x/debugger"
	"github.com/luthersystems/qanun/interp/x/debugger/dapserver"
)

var (
	debugPort        int
	debugStdio       bool
	debugStopOnEntry bool
)

var debugCmd = &cobra.Command{
	Use:   "debug [flags] file.qan",
	Short: "Run a file under the DAP debugger",
	Long: `Start a debugger for a Qanun source file.

Starts a DAP (Debug Adapter Protocol) server for editors (VS Code, Neovim,
Helix, etc.) to connect to.  The program starts once the editor has sent
its breakpoints.  Program output is forwarded to the editor.

Transport modes:
  --port N     Listen for a DAP client on TCP port N (default: 4711)
  --stdio      Use stdin/stdout for DAP communication (for editors that
               launch the debug adapter as a child process)

The --stop-on-entry flag pauses execution before the first statement.

Examples:
  qanun debug myfile.qan                     Debug with TCP on port 4711
  qanun debug --port 9229 myfile.qan         Debug with TCP on port 9229
  qanun debug --stdio myfile.qan             Debug with stdio transport
  qanun debug --stop-on-entry myfile.qan     Pause at the first statement

Run "qanun doc --debugging" for the full guide.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		file := args[0]
		if !analysis.IsSourceFile(file) {
			fmt.Fprintf(os.Stderr, "qanun debug: %s: source files must end in .qan or .qanun\n", file)
			os.Exit(interp.ExitUsage)
		}
		absFile, err := filepath.Abs(file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "cannot resolve %s: %v\n", file, err)
			os.Exit(interp.ExitUsage)
		}

		// Create the debugger engine.
		dbg := debugger.New(debugger.WithStopOnEntry(debugStopOnEntry))
		dbg.Enable()

		// Create the DAP server.
		srv := dapserver.New(dbg, dapserver.WithLineValidator(debugger.ValidLines))

		configs := append(
			interpreterConfigs(viper.GetViper(), srv.Output("stdout"), srv.Output("stderr")),
			interp.WithDebugger(dbg),
		)
		it, err := interp.New(configs...)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(interp.ExitSoftware)
		}

		// Start the program once the client has finished configuration.
		// After it finishes, notify the DAP server so it can send
		// ExitedEvent + TerminatedEvent while the connection is open.
		evalDone := make(chan error, 1)
		served := make(chan struct{})
		go func() {
			select {
			case <-dbg.ReadyCh():
			case <-served:
				select {
				case <-dbg.ReadyCh():
				default:
					// The client went away without configuring.
					evalDone <- nil
					return
				}
			}
			err := it.RunFile(absFile)
			dbg.NotifyExit(interp.ExitCode(err))
			evalDone <- err
		}()

		// Serve DAP.
		if debugStdio {
			log.Println("DAP debugger: using stdio transport")
			if err := srv.ServeStdio(os.Stdin, os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "dap server error: %v\n", err)
			}
		} else {
			addr := fmt.Sprintf("localhost:%d", debugPort)
			ln, err := net.Listen("tcp", addr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "cannot listen on %s: %v\n", addr, err)
				os.Exit(1)
			}
			defer ln.Close() //nolint:errcheck
			log.Printf("DAP debugger listening on %s", addr)
			log.Println("Waiting for DAP client to connect...")
			if err := srv.ServeListener(ln); err != nil {
				fmt.Fprintf(os.Stderr, "dap server error: %v\n", err)
			}
		}

		close(served)
		dbg.Disconnect()

		// Wait for eval to finish and report any errors.
		if err := <-evalDone; err != nil {
			renderError(os.Stderr, newRenderer(), err, file)
			os.Exit(interp.ExitCode(err))
		}
	},
}

func init() {
	rootCmd.AddCommand(debugCmd)

	debugCmd.Flags().IntVar(&debugPort, "port", 4711,
		"TCP port for DAP server (default: 4711)")
	debugCmd.Flags().BoolVar(&debugStdio, "stdio", false,
		"Use stdin/stdout for DAP communication")
	debugCmd.Flags().BoolVar(&debugStopOnEntry, "stop-on-entry", false,
		"Pause execution before the first statement")
}
