// Copyright © 2024 The Qanun authors

package diagnostic

import (
	"fmt"
	"os"
	"strings"
)

// ColorMode controls when ANSI color codes are used.
type ColorMode int

const (
	ColorAuto   ColorMode = iota // color when writing to a terminal and NO_COLOR is unset
	ColorAlways                  // always use colors
	ColorNever                   // never use colors
)

// String returns the flag value naming m.
func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseColorMode parses a --color flag value: auto, always or never.
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(s) {
	case "", "auto":
		return ColorAuto, nil
	case "always":
		return ColorAlways, nil
	case "never":
		return ColorNever, nil
	default:
		return ColorAuto, fmt.Errorf("invalid color mode %q: want auto, always or never", s)
	}
}

const (
	ansiReset    = "\033[0m"
	ansiBold     = "\033[1m"
	ansiYellow   = "\033[33m"
	ansiBoldRed  = "\033[1;31m"
	ansiBoldBlue = "\033[1;34m"
	ansiBoldCyan = "\033[1;36m"
)

// style maps each part of a rendered diagnostic to its escape sequence.
// The zero style renders plain text.
type style struct {
	severity map[Severity]string
	message  string
	gutter   string
	marker   string
	note     string
	reset    string
}

func ansiStyle() style {
	return style{
		severity: map[Severity]string{
			SeverityError:   ansiBoldRed,
			SeverityWarning: ansiYellow + ansiBold,
			SeverityNote:    ansiBoldCyan,
		},
		message: ansiBold,
		gutter:  ansiBoldBlue,
		marker:  ansiBoldRed,
		note:    ansiBoldCyan,
		reset:   ansiReset,
	}
}

// paint wraps s in the sequence code, or returns s unchanged when the
// style is plain.
func (st style) paint(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + st.reset
}

// styleFor picks the style for output written to w under mode.
func styleFor(mode ColorMode, w any) style {
	switch mode {
	case ColorAlways:
		return ansiStyle()
	case ColorNever:
		return style{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return style{}
	}
	f, ok := w.(*os.File)
	if !ok || !isTerminal(f) {
		return style{}
	}
	return ansiStyle()
}

func isTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
