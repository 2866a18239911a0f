// Copyright © 2024 The Qanun authors

package dapserver

import (
	"path/filepath"

	"github.com/google/go-dap"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/x/debugger"
	"github.com/luthersystems/qanun/parser/ast"
	"github.com/luthersystems/qanun/parser/token"
)

// mainThreadID is the only thread of a Qanun program.
const mainThreadID = 1

// frame pairs a DAP stack frame with the environment used to inspect it.
type frame struct {
	dap.StackFrame
	env *interp.Env
}

// buildFrames converts the interpreter call stack into DAP frames, most
// recent first.  The innermost frame is located at the paused statement
// and every other frame at the call it is waiting on.  The last frame is
// the top level of the program.
func buildFrames(it *interp.Interpreter, env *interp.Env, stmt ast.Stmt) []frame {
	stack := it.Stack.Frames
	n := len(stack)
	frames := make([]frame, 0, n+1)
	for k := 0; k <= n; k++ {
		f := frame{}
		f.Id = k + 1
		switch {
		case k == n:
			f.Name = "main"
			f.env = it.Globals()
		default:
			f.Name = stack[n-1-k].QualifiedName()
			f.env = stack[n-1-k].Env
		}
		var loc *token.Location
		if k == 0 {
			loc = stmt.Pos()
			f.env = env
		} else {
			loc = stack[n-k].Source
		}
		if loc != nil {
			f.Source = translateSource(loc)
			f.Line = loc.Line
			f.Column = loc.Col
		}
		frames = append(frames, f)
	}
	return frames
}

func translateSource(loc *token.Location) *dap.Source {
	path := loc.Path
	if path == "" {
		path = loc.File
	}
	if abs, err := filepath.Abs(path); err == nil && path != "" {
		path = abs
	}
	return &dap.Source{Name: filepath.Base(loc.File), Path: path}
}

// translateVariables converts scope bindings to DAP variables.  allocRef
// assigns a reference to expandable values.
func translateVariables(bindings []debugger.ScopeBinding, allocRef func(interp.Value) int) []dap.Variable {
	vars := make([]dap.Variable, len(bindings))
	for i, b := range bindings {
		vars[i] = translateVariable(b.Name, b.Value, allocRef)
	}
	return vars
}

func translateVariable(name string, v interp.Value, allocRef func(interp.Value) int) dap.Variable {
	dv := dap.Variable{
		Name:  name,
		Value: debugger.FormatValue(v),
		Type:  valueTypeName(v),
	}
	if debugger.HasChildren(v) {
		dv.VariablesReference = allocRef(v)
	}
	if l, ok := v.(*interp.List); ok {
		dv.IndexedVariables = len(l.Elems)
	}
	return dv
}

func valueTypeName(v interp.Value) string {
	if v == nil {
		return interp.KindNil.String()
	}
	return v.Kind().String()
}

// translateBreakpoints converts engine breakpoints to DAP breakpoints.
func translateBreakpoints(bps []*debugger.Breakpoint) []dap.Breakpoint {
	result := make([]dap.Breakpoint, len(bps))
	for i, bp := range bps {
		result[i] = dap.Breakpoint{
			Id:       bp.ID,
			Verified: bp.Verified,
			Source: &dap.Source{
				Name: filepath.Base(bp.File),
				Path: bp.File,
			},
			Line: bp.Line,
		}
		if !bp.Verified {
			result[i].Message = "no statement on this line"
		}
	}
	return result
}
