// Copyright © 2024 The Qanun authors

// Package debugger implements a debugger engine for the Qanun interpreter.
// It provides breakpoint management, stepping, variable inspection and
// debug evaluation without any protocol dependencies.
//
// The engine implements interp.Debugger and communicates with front ends
// (such as the dapserver package) through an event callback and a
// channel-based pause/resume mechanism.
//
// Concurrency model: the interpreter goroutine calls the hook methods
// (OnStatement, WaitIfPaused, etc.).  When paused it blocks on a channel
// until the front end goroutine sends a command with Resume, StepInto,
// StepOver or StepOut.
package debugger

import (
	"sync"
	"sync/atomic"

	"github.com/luthersystems/qanun/astutil"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser"
	"github.com/luthersystems/qanun/parser/ast"
)

// EventType identifies the kind of debug event.
type EventType int

const (
	// EventStopped indicates execution has paused.
	EventStopped EventType = iota
	// EventContinued indicates execution has resumed.
	EventContinued
	// EventExited indicates the program has finished.
	EventExited
)

// StopReason describes why execution paused.
type StopReason string

const (
	StopBreakpoint         StopReason = "breakpoint"
	StopStep               StopReason = "step"
	StopException          StopReason = "exception"
	StopEntry              StopReason = "entry"
	StopPause              StopReason = "pause"
	StopFunctionBreakpoint StopReason = "function breakpoint"
)

// Event is sent to the event callback when the debugger state changes.
type Event struct {
	Type     EventType
	Reason   StopReason
	ExitCode int // EventExited only
	Env      *interp.Env
	Stmt     ast.Stmt
	BP       *Breakpoint          // non-nil for breakpoint stops
	Err      *interp.RuntimeError // non-nil for exception stops
}

// EventCallback is called when the debugger state changes.  It runs on the
// interpreter goroutine and must not block.
type EventCallback func(Event)

// Engine implements interp.Debugger.
type Engine struct {
	breakpoints *BreakpointStore
	stepper     *Stepper
	statements  atomic.Int64

	mu                  sync.Mutex
	onEvent             EventCallback
	enabled             bool
	stopOnEntry         bool
	stoppedOnEntry      bool
	pauseRequested      bool
	pauseReason         StopReason
	evaluatingCondition bool
	lastContinuedKey    string
	funBreakpoints      map[string]bool
	pendingErr          *interp.RuntimeError

	pauseCh chan interp.DebugAction

	pausedIt   *interp.Interpreter
	pausedEnv  *interp.Env
	pausedStmt ast.Stmt

	readyCh   chan struct{}
	readyOnce sync.Once
}

var _ interp.Debugger = (*Engine)(nil)

// Option configures an Engine.
type Option func(*Engine)

// WithEventCallback sets the function called on debugger state changes.
func WithEventCallback(cb EventCallback) Option {
	return func(e *Engine) {
		e.onEvent = cb
	}
}

// WithStopOnEntry makes the debugger pause before the first statement.
func WithStopOnEntry(stop bool) Option {
	return func(e *Engine) {
		e.stopOnEntry = stop
	}
}

// New creates a new debugger engine.  Hooks are ignored until Enable is
// called.
func New(opts ...Option) *Engine {
	e := &Engine{
		breakpoints: NewBreakpointStore(),
		stepper:     NewStepper(),
		pauseCh:     make(chan interp.DebugAction, 1),
		readyCh:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Breakpoints returns the breakpoint store.
func (e *Engine) Breakpoints() *BreakpointStore {
	return e.breakpoints
}

// SetEventCallback sets or replaces the event callback.
func (e *Engine) SetEventCallback(cb EventCallback) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.onEvent = cb
}

// SetStopOnEntry overrides the stop-on-entry flag before evaluation starts.
func (e *Engine) SetStopOnEntry(stop bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopOnEntry = stop
}

// Enable activates the debugger.
func (e *Engine) Enable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = true
}

// Disable deactivates the debugger without detaching it.
func (e *Engine) Disable() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = false
}

// IsEnabled implements interp.Debugger.
func (e *Engine) IsEnabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

// IsPaused returns true while the interpreter goroutine is blocked in
// WaitIfPaused.
func (e *Engine) IsPaused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pausedStmt != nil
}

// PausedState returns the interpreter, environment and statement where
// execution is paused.  All are nil when not paused.
func (e *Engine) PausedState() (*interp.Interpreter, *interp.Env, ast.Stmt) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pausedIt, e.pausedEnv, e.pausedStmt
}

// SignalReady signals that the front end has finished configuration.
// Safe to call multiple times.
func (e *Engine) SignalReady() {
	e.readyOnce.Do(func() {
		close(e.readyCh)
	})
}

// ReadyCh returns a channel that is closed by SignalReady.  Drivers wait on
// it before starting the program so breakpoints are in place.
func (e *Engine) ReadyCh() <-chan struct{} {
	return e.readyCh
}

// StatementCount returns the number of statements the engine has seen.
func (e *Engine) StatementCount() int64 {
	return e.statements.Load()
}

// OnStatement implements interp.Debugger.
func (e *Engine) OnStatement(it *interp.Interpreter, env *interp.Env, stmt ast.Stmt) bool {
	e.statements.Add(1)
	src := stmt.Pos()
	var file string
	var line int
	if src != nil {
		file, line = src.File, src.Line
	}

	e.mu.Lock()
	if e.evaluatingCondition {
		e.mu.Unlock()
		return false
	}
	// Breakpoints may fire again once execution leaves the line.
	if e.lastContinuedKey != "" && e.lastContinuedKey != breakpointKey(file, line) {
		e.lastContinuedKey = ""
	}
	if e.stopOnEntry {
		e.stopOnEntry = false
		e.stoppedOnEntry = true
		e.mu.Unlock()
		return true
	}
	if e.pauseRequested {
		e.mu.Unlock()
		return true
	}
	e.mu.Unlock()

	if e.stepper.ShouldPause(it.Stack.Len(), file, line) {
		return true
	}

	bp := e.breakpoints.Match(src)
	if bp == nil {
		return false
	}
	e.mu.Lock()
	if e.lastContinuedKey == bp.key() {
		e.mu.Unlock()
		return false
	}
	e.mu.Unlock()
	if bp.Condition != "" {
		e.setEvaluating(true)
		ok := EvalCondition(it, env, bp.Condition)
		e.setEvaluating(false)
		return ok
	}
	return true
}

func (e *Engine) setEvaluating(b bool) {
	e.mu.Lock()
	e.evaluatingCondition = b
	e.mu.Unlock()
}

// WaitIfPaused implements interp.Debugger.  It blocks the interpreter
// goroutine until the front end sends a resume command.
func (e *Engine) WaitIfPaused(it *interp.Interpreter, env *interp.Env, stmt ast.Stmt) interp.DebugAction {
	reason := StopStep
	bp := e.breakpoints.Match(stmt.Pos())
	if bp != nil {
		reason = StopBreakpoint
	}

	e.mu.Lock()
	rterr := e.pendingErr
	e.pendingErr = nil
	switch {
	case rterr != nil:
		reason = StopException
		bp = nil
	case e.stoppedOnEntry:
		reason = StopEntry
		e.stoppedOnEntry = false
	case e.pauseRequested:
		reason = e.pauseReason
		e.pauseRequested = false
		e.pauseReason = ""
	}
	e.pausedIt = it
	e.pausedEnv = env
	e.pausedStmt = stmt
	cb := e.onEvent
	e.mu.Unlock()

	if cb != nil {
		cb(Event{
			Type:   EventStopped,
			Reason: reason,
			Env:    env,
			Stmt:   stmt,
			BP:     bp,
			Err:    rterr,
		})
	}

	action := <-e.pauseCh

	src := stmt.Pos()
	var file string
	var line int
	if src != nil {
		file, line = src.File, src.Line
	}
	e.mu.Lock()
	e.pausedIt = nil
	e.pausedEnv = nil
	e.pausedStmt = nil
	if action == interp.DebugContinue {
		e.lastContinuedKey = breakpointKey(file, line)
	}
	cb = e.onEvent
	e.mu.Unlock()

	depth := it.Stack.Len()
	switch action {
	case interp.DebugStepInto:
		e.stepper.Set(StepInto, depth, file, line)
	case interp.DebugStepOver:
		e.stepper.Set(StepOver, depth, file, line)
	case interp.DebugStepOut:
		e.stepper.Set(StepOut, depth, file, line)
	default:
		e.stepper.Reset()
	}

	if cb != nil {
		cb(Event{Type: EventContinued})
	}
	return action
}

// SetFunctionBreakpoints replaces the set of function breakpoints.  Names
// are plain function names or Class.method names.
func (e *Engine) SetFunctionBreakpoints(names []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funBreakpoints = make(map[string]bool, len(names))
	for _, name := range names {
		e.funBreakpoints[name] = true
	}
}

// OnCallEntry implements interp.Debugger.  It checks function breakpoints;
// a match pauses on the first statement of the function body.
func (e *Engine) OnCallEntry(it *interp.Interpreter, fn *interp.Function, env *interp.Env) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.funBreakpoints) == 0 || e.evaluatingCondition {
		return
	}
	name := fn.Name
	qualified := name
	if fn.Class != nil {
		qualified = fn.Class.Name + "." + name
	}
	if e.funBreakpoints[qualified] || (name != "" && e.funBreakpoints[name]) {
		e.pauseRequested = true
		e.pauseReason = StopFunctionBreakpoint
	}
}

// OnCallReturn implements interp.Debugger.
func (e *Engine) OnCallReturn(it *interp.Interpreter, fn *interp.Function, result interp.Value) {
}

// OnError implements interp.Debugger.
func (e *Engine) OnError(it *interp.Interpreter, err *interp.RuntimeError) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.evaluatingCondition {
		return false
	}
	if e.breakpoints.ExceptionBreak() != ExceptionBreakAll {
		return false
	}
	e.pendingErr = err
	return true
}

// Resume sends a continue action to the paused interpreter.
func (e *Engine) Resume() {
	e.pauseCh <- interp.DebugContinue
}

// StepInto sends a step-into action to the paused interpreter.
func (e *Engine) StepInto() {
	e.pauseCh <- interp.DebugStepInto
}

// StepOver sends a step-over action to the paused interpreter.
func (e *Engine) StepOver() {
	e.pauseCh <- interp.DebugStepOver
}

// StepOut sends a step-out action to the paused interpreter.
func (e *Engine) StepOut() {
	e.pauseCh <- interp.DebugStepOut
}

// RequestPause asks the interpreter to pause before its next statement.
func (e *Engine) RequestPause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pauseRequested = true
	e.pauseReason = StopPause
}

// NotifyExit fires an EventExited event.  Drivers call it after the
// program finishes.
func (e *Engine) NotifyExit(exitCode int) {
	e.mu.Lock()
	cb := e.onEvent
	e.mu.Unlock()
	if cb != nil {
		cb(Event{Type: EventExited, ExitCode: exitCode})
	}
}

// EvalInContext evaluates an expression in the paused environment.
func (e *Engine) EvalInContext(source string) (interp.Value, error) {
	return e.EvalInEnv(nil, source)
}

// EvalInEnv evaluates an expression in env, which should be an environment
// of the paused program.  A nil env means the paused environment.  Hooks
// triggered by the evaluation, such as statements in called functions,
// never pause.
func (e *Engine) EvalInEnv(env *interp.Env, source string) (interp.Value, error) {
	e.mu.Lock()
	it := e.pausedIt
	if env == nil {
		env = e.pausedEnv
	}
	e.mu.Unlock()
	if it == nil {
		return nil, ErrNotPaused
	}
	e.setEvaluating(true)
	defer e.setEvaluating(false)
	return it.Eval(env, source)
}

// ValidLines returns the lines of the file at path on which a statement
// begins.  It returns nil when the file cannot be parsed.
func ValidLines(path string) map[int]bool {
	stmts, err := parser.ParseFile(path)
	if err != nil {
		return nil
	}
	return astutil.StatementLines(stmts)
}

// Disconnect disables the debugger and resumes execution if paused.
func (e *Engine) Disconnect() {
	e.mu.Lock()
	e.enabled = false
	paused := e.pausedStmt != nil
	e.mu.Unlock()
	if paused {
		e.Resume()
	}
}
