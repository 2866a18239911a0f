// Copyright © 2024 The Qanun authors

package interp

import "github.com/luthersystems/qanun/parser/ast"

// Debugger is called by the interpreter at key execution points to support
// breakpoints, stepping, and variable inspection.  When no debugger is
// attached no hook calls are made.
//
// Hook calls use a two-check gate pattern:
//
//	if d := it.debugger; d != nil && d.IsEnabled() { ... }
//
// IsEnabled allows a debugger to remain attached but dormant.
type Debugger interface {
	// IsEnabled returns true when the debugger is actively debugging.
	IsEnabled() bool

	// OnStatement is called before executing any statement.  Returns true if
	// the debugger wants execution to pause (breakpoint hit or step
	// complete).
	OnStatement(it *Interpreter, env *Env, stmt ast.Stmt) bool

	// WaitIfPaused blocks until the debugger allows execution to continue.
	// It is called when OnStatement or OnError returns true.  The
	// interpreter goroutine blocks here while the debugger front end
	// processes user commands.
	WaitIfPaused(it *Interpreter, env *Env, stmt ast.Stmt) DebugAction

	// OnCallEntry is called when a Qanun function is entered, after its
	// parameters have been bound in env.  Natives do not trigger this hook.
	OnCallEntry(it *Interpreter, fn *Function, env *Env)

	// OnCallReturn is called after a Qanun function returns.
	OnCallReturn(it *Interpreter, fn *Function, result Value)

	// OnError is called when a runtime error is raised.  Returns true if the
	// debugger wants execution to pause before the error unwinds.
	OnError(it *Interpreter, err *RuntimeError) bool
}

// DebugAction represents the action the interpreter should take after the
// debugger resumes execution from a paused state.
type DebugAction int

const (
	// DebugContinue resumes execution until the next breakpoint.
	DebugContinue DebugAction = iota

	// DebugStepInto pauses on the next statement regardless of depth.
	DebugStepInto

	// DebugStepOver pauses on the next statement at the same or lesser call
	// depth.
	DebugStepOver

	// DebugStepOut pauses on the next statement at a lesser call depth.
	DebugStepOut
)

func (a DebugAction) String() string {
	switch a {
	case DebugContinue:
		return "continue"
	case DebugStepInto:
		return "step-into"
	case DebugStepOver:
		return "step-over"
	case DebugStepOut:
		return "step-out"
	default:
		return "unknown"
	}
}
