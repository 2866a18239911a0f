// Copyright © 2024 The Qanun authors

// Package repl implements the interactive Qanun read-eval-print loop.
package repl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ergochat/readline"

	"github.com/luthersystems/qanun/diagnostic"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/parser"
)

// DefaultPrompt is the prompt shown before each new statement.
const DefaultPrompt = "qanun> "

// SourceName is the file name given to REPL input in error messages.
const SourceName = "repl"

type config struct {
	stdin       io.ReadCloser
	stdout      io.Writer
	stderr      io.Writer
	historyFile string
	color       diagnostic.ColorMode
	configs     []interp.Config
}

func newConfig(opts ...Option) *config {
	c := &config{
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		historyFile: DefaultHistoryFile(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option configures the REPL.
type Option func(*config)

// WithStdin overrides the input to the REPL.
func WithStdin(stdin io.ReadCloser) Option {
	return func(c *config) {
		c.stdin = stdin
	}
}

// WithStdout overrides where program output and expression values go.
func WithStdout(stdout io.Writer) Option {
	return func(c *config) {
		c.stdout = stdout
	}
}

// WithStderr overrides where prompts and errors go.
func WithStderr(stderr io.Writer) Option {
	return func(c *config) {
		c.stderr = stderr
	}
}

// WithHistoryFile sets the history file.  An empty path disables history.
func WithHistoryFile(path string) Option {
	return func(c *config) {
		c.historyFile = path
	}
}

// WithColor sets the color mode used to render errors.
func WithColor(mode diagnostic.ColorMode) Option {
	return func(c *config) {
		c.color = mode
	}
}

// WithConfigs adds interpreter configuration, applied after the defaults.
func WithConfigs(configs ...interp.Config) Option {
	return func(c *config) {
		c.configs = append(c.configs, configs...)
	}
}

// RunRepl runs a REPL in a new interpreter with the native library loaded.
// Globals may be redeclared between inputs.
func RunRepl(prompt string, opts ...Option) error {
	cfg := newConfig(opts...)
	configs := append([]interp.Config{
		interp.WithStdout(cfg.stdout),
		interp.WithStderr(cfg.stderr),
		interp.WithRedefineGlobals(),
		natives.Config(),
	}, cfg.configs...)
	it, err := interp.New(configs...)
	if err != nil {
		return err
	}
	return run(it, cfg, prompt, strings.Repeat(".", len(prompt)-1)+" ")
}

func run(it *interp.Interpreter, cfg *config, prompt, cont string) error {
	ensureHistoryFilePermissions(cfg.historyFile)
	rlCfg := &readline.Config{
		Stdout:            cfg.stderr,
		Stderr:            cfg.stderr,
		Prompt:            prompt,
		HistoryFile:       cfg.historyFile,
		HistorySearchFold: true,
		AutoComplete:      &completer{it: it},
	}
	if cfg.stdin != nil {
		rlCfg.Stdin = cfg.stdin
	}
	rl, err := readline.NewEx(rlCfg)
	if err != nil {
		return err
	}
	defer rl.Close() //nolint:errcheck

	renderer := &diagnostic.Renderer{Color: cfg.color}
	var pending strings.Builder
	for {
		if pending.Len() == 0 {
			rl.SetPrompt(prompt)
		} else {
			rl.SetPrompt(cont)
		}
		b, err := rl.ReadSlice()
		line := string(b)
		if errors.Is(err, readline.ErrInterrupt) {
			pending.Reset()
			continue
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if pending.Len() == 0 && strings.TrimSpace(line) == "" {
			continue
		}
		pending.WriteString(line)
		pending.WriteByte('\n')
		src := pending.String()
		if Incomplete(src) {
			continue
		}
		pending.Reset()
		if err := eval(it, cfg.stdout, src); err != nil {
			renderError(cfg.stderr, renderer.WithSource(SourceName, src), err)
		}
	}
}

// eval runs one complete REPL input, printing the value of each bare
// expression statement.
func eval(it *interp.Interpreter, w io.Writer, src string) error {
	stmts, err := parser.ParseString(SourceName, src)
	if err != nil {
		return err
	}
	if err := it.Resolve(SourceName, stmts); err != nil {
		return err
	}
	return it.InterpretInteractive(stmts, func(v interp.Value) {
		fmt.Fprintln(w, interp.Stringify(v)) //nolint:errcheck
	})
}

// Incomplete reports whether src has unclosed brackets or an unterminated
// string, in which case the REPL reads a continuation line.
func Incomplete(src string) bool {
	depth := 0
	inString := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		switch {
		case inString:
			if c == '"' {
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '(' || c == '[' || c == '{':
			depth++
		case c == ')' || c == ']' || c == '}':
			depth--
		}
	}
	return inString || depth > 0
}

// DefaultHistoryFile returns ~/.qanun_history, or the empty string when
// there is no home directory.
func DefaultHistoryFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".qanun_history")
}

// ensureHistoryFilePermissions creates the history file if needed and
// restricts it to the current user.
func ensureHistoryFilePermissions(path string) {
	if path == "" {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0600) //nolint:gosec
	if err != nil {
		return
	}
	_ = f.Close()
	_ = os.Chmod(path, 0600)
}
