// Copyright © 2024 The Qanun authors

package repl

import (
	"io"

	"github.com/luthersystems/qanun/diagnostic"
)

// renderError renders err as annotated source.  The last diagnostic points
// at the help commands.
func renderError(w io.Writer, r *diagnostic.Renderer, err error) {
	diags := diagnostic.FromError(err)
	if len(diags) == 0 {
		return
	}
	last := &diags[len(diags)-1]
	last.Notes = append(last.Notes, "run `qanun doc` to list the built-in functions")
	_ = r.RenderAll(w, diags)
}
