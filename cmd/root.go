// Copyright © 2018 The Qanun authors

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luthersystems/qanun/interp"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "qanun [file.qan]",
	Short: "Qanun is a small scripting language with closures and classes",
	Long: `Qanun is a dynamically typed scripting language with first-class
functions, closures, single-inheritance classes, lists, switch statements
and constants.  This command runs, checks and explores Qanun programs.

Getting started:
  qanun file.qan                Run a source file
  qanun run -e 'println(1 + 2)' Evaluate a snippet
  qanun repl                    Start an interactive REPL
  qanun check ./...             Report likely mistakes without running
  qanun doc Time                Show documentation for a module
  qanun doc --guide             Print the language guide

Built-in modules (import "Name"):
  File      Read, write and test for files
  Time      Wall clock time and date
  Crypto    SHA3 hashing and random UUIDs
  Regex     Regular expression matching
  Text      Word wrapping and indentation

Configuration is read from $HOME/.qanun.yaml (or --config) and from
QANUN_* environment variables:
  max_call_depth   Maximum nesting of calls (default 1024)
  history_file     REPL history file (default ~/.qanun_history)
  color            auto, always or never
  module_path      Extra directories searched by import
  trace            Trace function calls during "qanun run"`,
	Args: cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		if len(args) == 0 {
			_ = cmd.Help()
			return
		}
		os.Exit(runFiles(args, runOptions{trace: viper.GetBool(keyTrace)}))
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(interp.ExitUsage)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.qanun.yaml)")
	rootCmd.PersistentFlags().String("color", "auto",
		`Control colored output: "auto", "always", or "never".`)
	_ = viper.BindPFlag(keyColor, rootCmd.PersistentFlags().Lookup("color"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setConfigDefaults(viper.GetViper())
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			// Search config in home directory with name ".qanun" (without extension).
			viper.AddConfigPath(home)
			viper.SetConfigName(".qanun")
		}
	}

	viper.SetEnvPrefix("QANUN")
	viper.AutomaticEnv() // read in environment variables that match

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "qanun: reading config: %v\n", err)
		}
	}
}
