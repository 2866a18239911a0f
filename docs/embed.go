// Copyright © 2024 The Qanun authors

// Package docs embeds the Qanun language guides for use by the CLI.
package docs

import _ "embed"

// LangGuide is the language reference printed by "qanun doc --guide".
//
//go:embed lang.md
var LangGuide string

// DebuggingGuide describes the debug adapter and is printed by
// "qanun doc --debugging".
//
//go:embed debugging-guide.md
var DebuggingGuide string
