// Copyright © 2024 The Qanun authors

package interp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/qanun/parser/token"
)

// Process exit codes used by the qanun command for each class of failure.
const (
	ExitUsage    = 64
	ExitDataErr  = 65
	ExitSoftware = 70
)

// RuntimeError is an error raised while evaluating a program.  Runtime
// errors are not recoverable by Qanun code; the first one aborts the run.
type RuntimeError struct {
	// Token is the token the error is reported against.  It may be nil for
	// errors raised outside of any expression.
	Token   *token.Token
	Message string
	// Stack is a copy of the call stack at the point of the error.
	Stack *CallStack
	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	if e.Token == nil || e.Token.Line() == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s\n[line %d]", e.Message, e.Token.Line())
}

func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// Location returns the source location of the error, or nil.
func (e *RuntimeError) Location() *token.Location {
	if e.Token == nil {
		return nil
	}
	return e.Token.Source
}

// FunName returns the qualified name of the function on top of the call
// stack when the error occurred.
func (e *RuntimeError) FunName() string {
	return e.Stack.Top().QualifiedName()
}

// WriteTrace writes the error and a stack trace to w
func (e *RuntimeError) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if e.Stack.Len() > 0 {
		if !wrote(e.Stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// AsRuntimeError returns the *RuntimeError in err's chain, if there is one.
func AsRuntimeError(err error) (*RuntimeError, bool) {
	var rerr *RuntimeError
	if errors.As(err, &rerr) {
		return rerr, true
	}
	return nil, false
}

func (it *Interpreter) errorf(tok *token.Token, format string, v ...any) *RuntimeError {
	return it.raise(&RuntimeError{
		Token:   tok,
		Message: fmt.Sprintf(format, v...),
		Stack:   it.Stack.Copy(),
	})
}

// raise gives an attached debugger the chance to pause before err unwinds.
func (it *Interpreter) raise(err *RuntimeError) *RuntimeError {
	if d := it.debugger; d != nil && d.IsEnabled() && it.stmt != nil {
		if d.OnError(it, err) {
			d.WaitIfPaused(it, it.env, it.stmt)
		}
	}
	return err
}

// wrapError attaches tok to err unless err is already a runtime error.
func (it *Interpreter) wrapError(tok *token.Token, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := AsRuntimeError(err); ok {
		return err
	}
	return it.raise(&RuntimeError{
		Token:   tok,
		Message: err.Error(),
		Stack:   it.Stack.Copy(),
		Err:     err,
	})
}
