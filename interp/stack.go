// Copyright © 2024 The Qanun authors

package interp

import (
	"fmt"
	"io"

	"github.com/luthersystems/qanun/parser/token"
)

// DefaultMaxCallDepth is the call depth limit of an Interpreter created
// without WithMaxCallDepth.
const DefaultMaxCallDepth = 1024

// CallStack is the stack of active Qanun function calls.
type CallStack struct {
	Frames    []CallFrame
	MaxHeight int
}

// CallFrame is one frame in the CallStack.
type CallFrame struct {
	// Source is the location of the call expression.
	Source *token.Location
	// Name is the function name, or "fun" for an anonymous function.
	Name string
	// Class is the class name for methods.
	Class string
	// Env is the environment the function body runs in.  It is nil for
	// natives and is used by the debugger to inspect variables.
	Env *Env
}

// QualifiedName returns the function name, prefixed by its class for
// methods.
func (f *CallFrame) QualifiedName() string {
	if f == nil {
		return ""
	}
	if f.Class == "" {
		return f.Name
	}
	return f.Class + "." + f.Name
}

func (f *CallFrame) String() string {
	if f.Source != nil {
		return fmt.Sprintf("%s: %s", f.Source, f.QualifiedName())
	}
	return f.QualifiedName()
}

// Len returns the number of frames on the stack.
func (s *CallStack) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Frames)
}

// Copy creates a copy of the current stack so that it can be attached to a
// runtime error.
func (s *CallStack) Copy() *CallStack {
	frames := make([]CallFrame, len(s.Frames))
	copy(frames, s.Frames)
	return &CallStack{
		MaxHeight: s.MaxHeight,
		Frames:    frames,
	}
}

// Top returns the CallFrame at the top of the stack or nil if none exists.
func (s *CallStack) Top() *CallFrame {
	if s == nil || len(s.Frames) == 0 {
		return nil
	}
	return &s.Frames[len(s.Frames)-1]
}

// Push pushes a new frame onto s.  Push returns a *StackOverflowError
// without modifying s when the stack is already at its maximum height.
func (s *CallStack) Push(frame CallFrame) error {
	if s.MaxHeight > 0 && len(s.Frames) >= s.MaxHeight {
		return &StackOverflowError{Height: s.MaxHeight}
	}
	s.Frames = append(s.Frames, frame)
	return nil
}

// Pop removes the top CallFrame from the stack and returns it.  Pop panics
// if the stack is empty.
func (s *CallStack) Pop() CallFrame {
	if len(s.Frames) < 1 {
		panic("pop called on an empty stack")
	}
	f := s.Frames[len(s.Frames)-1]
	s.Frames[len(s.Frames)-1] = CallFrame{}
	s.Frames = s.Frames[:len(s.Frames)-1]
	return f
}

// DebugPrint prints s
func (s *CallStack) DebugPrint(w io.Writer) (int, error) {
	n, err := fmt.Fprintf(w, "Stack Trace [%d frames -- entrypoint last]:\n", len(s.Frames))
	if err != nil {
		return n, err
	}
	indent := "  "
	for i := len(s.Frames) - 1; i >= 0; i-- {
		_n, err := fmt.Fprintf(w, "%sheight %d: %s\n", indent, i, s.Frames[i].String())
		n += _n
		if err != nil {
			return n, err
		}
	}
	return n, nil
}

// StackOverflowError is returned when a call would exceed the maximum call
// depth.
type StackOverflowError struct {
	Height int
}

func (e *StackOverflowError) Error() string {
	return fmt.Sprintf("stack overflow: maximum call depth %d exceeded", e.Height)
}
