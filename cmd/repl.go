// Copyright © 2018 The Qanun authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/repl"
)

// replCmd represents the repl command
var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive Qanun REPL",
	Long: `Start an interactive read-eval-print loop for Qanun.

All natives are defined and every built-in module can be imported.  Line
editing, tab completion of names and persistent command history are
supported via readline.  Input with unbalanced braces or parentheses
continues on the next line.  Use Ctrl-D to exit.

Globals may be declared again, so a definition can be corrected by entering
it anew.

Example REPL session:
  qanun> 1 + 2
  3
  qanun> fun square(x) { return x * x }
  qanun> square(5)
  25
  qanun> import "Time"
  qanun> Time.date()
  19-10-2026`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		v := viper.GetViper()
		err := repl.RunRepl(repl.DefaultPrompt,
			repl.WithHistoryFile(v.GetString(keyHistoryFile)),
			repl.WithColor(colorMode()),
			repl.WithConfigs(runtimeConfigs(v)...),
		)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
