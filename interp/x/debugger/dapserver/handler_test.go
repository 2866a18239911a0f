// Copyright © 2024 The Qanun authors

package dapserver

import (
	"bufio"
	"bytes"
	"encoding/json"
	"io"
	"net"
	"testing"
	"time"

	"github.com/google/go-dap"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/luthersystems/qanun/astutil"
	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives"
	"github.com/luthersystems/qanun/interp/x/debugger"
	"github.com/luthersystems/qanun/parser"
)

const program = `fun add(a, b) {
  return a + b[0]
}
var x = add(1, [2, 3])
print(x)
`

type client struct {
	t    *testing.T
	conn net.Conn
	r    *bufio.Reader
	seq  int
}

func (c *client) send(msg dap.RequestMessage) {
	c.t.Helper()
	c.seq++
	req := msg.GetRequest()
	req.Seq = c.seq
	req.Type = "request"
	require.NoError(c.t, dap.WriteProtocolMessage(c.conn, msg))
}

func (c *client) read() dap.Message {
	c.t.Helper()
	msgs := make(chan dap.Message, 1)
	errs := make(chan error, 1)
	go func() {
		msg, err := dap.ReadProtocolMessage(c.r)
		if err != nil {
			errs <- err
			return
		}
		msgs <- msg
	}()
	select {
	case msg := <-msgs:
		return msg
	case err := <-errs:
		c.t.Fatalf("read error: %v", err)
	case <-time.After(2 * time.Second):
		c.t.Fatal("timed out waiting for a message")
	}
	return nil
}

func expect[T dap.Message](c *client) T {
	c.t.Helper()
	msg := c.read()
	v, ok := msg.(T)
	require.True(c.t, ok, "unexpected message %T", msg)
	return v
}

func request(command string) dap.Request {
	return dap.Request{Command: command}
}

func statementLines(src string) func(string) map[int]bool {
	return func(string) map[int]bool {
		stmts, err := parser.ParseString("test.qan", src)
		if err != nil {
			return nil
		}
		return astutil.StatementLines(stmts)
	}
}

// startSession serves a new engine over an in-memory pipe.
func startSession(t *testing.T, src string) (*client, *debugger.Engine, *Server) {
	t.Helper()
	e := debugger.New()
	e.Enable()
	srv := New(e, WithLineValidator(statementLines(src)))
	conn, server := net.Pipe()
	t.Cleanup(func() { conn.Close() }) //nolint:errcheck
	go func() {
		_ = srv.ServeConn(server)
	}()
	c := &client{t: t, conn: conn, r: bufio.NewReader(conn)}
	c.send(&dap.InitializeRequest{Request: request("initialize")})
	init := expect[*dap.InitializeResponse](c)
	assert.True(t, init.Success)
	assert.True(t, init.Body.SupportsConditionalBreakpoints)
	expect[*dap.InitializedEvent](c)
	return c, e, srv
}

func runProgram(t *testing.T, e *debugger.Engine, src string, stdout io.Writer) <-chan error {
	t.Helper()
	it, err := interp.New(
		interp.WithStdout(stdout),
		interp.WithDebugger(e),
		natives.Config(),
	)
	require.NoError(t, err)
	done := make(chan error, 1)
	go func() {
		<-e.ReadyCh()
		err := it.RunString("test.qan", src)
		e.NotifyExit(interp.ExitCode(err))
		done <- err
	}()
	return done
}

func TestInitializeAndDisconnect(t *testing.T) {
	c, _, srv := startSession(t, program)
	c.send(&dap.DisconnectRequest{Request: request("disconnect")})
	resp := expect[*dap.DisconnectResponse](c)
	assert.True(t, resp.Success)
	expect[*dap.TerminatedEvent](c)
	select {
	case <-srv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("server did not stop")
	}
}

func TestDebugSession(t *testing.T) {
	c, e, _ := startSession(t, program)
	var out bytes.Buffer
	done := runProgram(t, e, program, &out)

	c.send(&dap.SetBreakpointsRequest{
		Request: request("setBreakpoints"),
		Arguments: dap.SetBreakpointsArguments{
			Source: dap.Source{Path: "test.qan"},
			Breakpoints: []dap.SourceBreakpoint{
				{Line: 2, Condition: "a == 1"},
				{Line: 3},
			},
		},
	})
	bps := expect[*dap.SetBreakpointsResponse](c)
	require.Len(t, bps.Body.Breakpoints, 2)
	assert.True(t, bps.Body.Breakpoints[0].Verified)
	assert.Equal(t, 2, bps.Body.Breakpoints[0].Line)
	assert.False(t, bps.Body.Breakpoints[1].Verified)

	c.send(&dap.ConfigurationDoneRequest{Request: request("configurationDone")})
	expect[*dap.ConfigurationDoneResponse](c)

	stopped := expect[*dap.StoppedEvent](c)
	assert.Equal(t, "breakpoint", stopped.Body.Reason)
	assert.Equal(t, []int{bps.Body.Breakpoints[0].Id}, stopped.Body.HitBreakpointIds)

	c.send(&dap.ThreadsRequest{Request: request("threads")})
	threads := expect[*dap.ThreadsResponse](c)
	require.Len(t, threads.Body.Threads, 1)

	c.send(&dap.StackTraceRequest{Request: request("stackTrace")})
	trace := expect[*dap.StackTraceResponse](c)
	require.Len(t, trace.Body.StackFrames, 2)
	assert.Equal(t, "add", trace.Body.StackFrames[0].Name)
	assert.Equal(t, 2, trace.Body.StackFrames[0].Line)
	assert.Equal(t, "main", trace.Body.StackFrames[1].Name)
	assert.Equal(t, 4, trace.Body.StackFrames[1].Line)
	require.NotNil(t, trace.Body.StackFrames[0].Source)
	assert.Equal(t, "test.qan", trace.Body.StackFrames[0].Source.Name)

	c.send(&dap.ScopesRequest{Request: request("scopes"), Arguments: dap.ScopesArguments{FrameId: 1}})
	scopes := expect[*dap.ScopesResponse](c)
	require.Len(t, scopes.Body.Scopes, 2)
	assert.Equal(t, "Locals", scopes.Body.Scopes[0].Name)

	c.send(&dap.VariablesRequest{
		Request:   request("variables"),
		Arguments: dap.VariablesArguments{VariablesReference: scopes.Body.Scopes[0].VariablesReference},
	})
	vars := expect[*dap.VariablesResponse](c)
	require.Len(t, vars.Body.Variables, 2)
	assert.Equal(t, "a", vars.Body.Variables[0].Name)
	assert.Equal(t, "1", vars.Body.Variables[0].Value)
	assert.Equal(t, "b", vars.Body.Variables[1].Name)
	assert.Equal(t, "[2, 3]", vars.Body.Variables[1].Value)
	assert.Equal(t, "list", vars.Body.Variables[1].Type)
	listRef := vars.Body.Variables[1].VariablesReference
	require.NotZero(t, listRef)

	c.send(&dap.VariablesRequest{
		Request:   request("variables"),
		Arguments: dap.VariablesArguments{VariablesReference: listRef},
	})
	elems := expect[*dap.VariablesResponse](c)
	require.Len(t, elems.Body.Variables, 2)
	assert.Equal(t, "3", elems.Body.Variables[1].Value)

	c.send(&dap.EvaluateRequest{
		Request:   request("evaluate"),
		Arguments: dap.EvaluateArguments{Expression: "a + b[0]", FrameId: 1},
	})
	eval := expect[*dap.EvaluateResponse](c)
	assert.True(t, eval.Success)
	assert.Equal(t, "3", eval.Body.Result)
	assert.Equal(t, "number", eval.Body.Type)

	c.send(&dap.EvaluateRequest{
		Request:   request("evaluate"),
		Arguments: dap.EvaluateArguments{Expression: "nosuchvar"},
	})
	bad := expect[*dap.ErrorResponse](c)
	assert.False(t, bad.Success)
	assert.Contains(t, bad.Message, "nosuchvar")

	c.send(&dap.NextRequest{Request: request("next")})
	expect[*dap.NextResponse](c)
	stopped = expect[*dap.StoppedEvent](c)
	assert.Equal(t, "step", stopped.Body.Reason)

	c.send(&dap.StackTraceRequest{Request: request("stackTrace")})
	trace = expect[*dap.StackTraceResponse](c)
	require.Len(t, trace.Body.StackFrames, 1)
	assert.Equal(t, 5, trace.Body.StackFrames[0].Line)

	c.send(&dap.ContinueRequest{Request: request("continue")})
	expect[*dap.ContinueResponse](c)
	exited := expect[*dap.ExitedEvent](c)
	assert.Equal(t, 0, exited.Body.ExitCode)
	expect[*dap.TerminatedEvent](c)

	require.NoError(t, <-done)
	assert.Equal(t, "3", out.String())

	c.send(&dap.DisconnectRequest{Request: request("disconnect")})
	expect[*dap.DisconnectResponse](c)
	expect[*dap.TerminatedEvent](c)
}

func TestExceptionAndOutput(t *testing.T) {
	src := `print("before")
print(1 + nil)
`
	c, e, srv := startSession(t, src)
	done := runProgram(t, e, src, srv.Output("stdout"))

	c.send(&dap.SetExceptionBreakpointsRequest{
		Request:   request("setExceptionBreakpoints"),
		Arguments: dap.SetExceptionBreakpointsArguments{Filters: []string{"all"}},
	})
	expect[*dap.SetExceptionBreakpointsResponse](c)

	c.send(&dap.ConfigurationDoneRequest{Request: request("configurationDone")})
	expect[*dap.ConfigurationDoneResponse](c)

	output := expect[*dap.OutputEvent](c)
	assert.Equal(t, "stdout", output.Body.Category)
	assert.Equal(t, "before", output.Body.Output)

	stopped := expect[*dap.StoppedEvent](c)
	assert.Equal(t, "exception", stopped.Body.Reason)
	assert.NotEmpty(t, stopped.Body.Text)

	c.send(&dap.ContinueRequest{Request: request("continue")})
	expect[*dap.ContinueResponse](c)
	exited := expect[*dap.ExitedEvent](c)
	assert.NotZero(t, exited.Body.ExitCode)
	expect[*dap.TerminatedEvent](c)
	require.Error(t, <-done)
}

func TestLaunchStopOnEntry(t *testing.T) {
	c, e, _ := startSession(t, program)
	done := runProgram(t, e, program, io.Discard)

	args, err := json.Marshal(map[string]any{"stopOnEntry": true})
	require.NoError(t, err)
	c.send(&dap.LaunchRequest{Request: request("launch"), Arguments: args})
	expect[*dap.LaunchResponse](c)

	c.send(&dap.SetFunctionBreakpointsRequest{
		Request: request("setFunctionBreakpoints"),
		Arguments: dap.SetFunctionBreakpointsArguments{
			Breakpoints: []dap.FunctionBreakpoint{{Name: "add"}},
		},
	})
	fbps := expect[*dap.SetFunctionBreakpointsResponse](c)
	require.Len(t, fbps.Body.Breakpoints, 1)

	c.send(&dap.ConfigurationDoneRequest{Request: request("configurationDone")})
	expect[*dap.ConfigurationDoneResponse](c)
	assert.Equal(t, "entry", expect[*dap.StoppedEvent](c).Body.Reason)

	c.send(&dap.ContinueRequest{Request: request("continue")})
	expect[*dap.ContinueResponse](c)
	assert.Equal(t, "function breakpoint", expect[*dap.StoppedEvent](c).Body.Reason)

	// Disconnecting resumes the program, whose exit races with the
	// disconnect events.
	c.send(&dap.DisconnectRequest{Request: request("disconnect")})
	expect[*dap.DisconnectResponse](c)
	go io.Copy(io.Discard, c.r) //nolint:errcheck
	require.NoError(t, <-done)
	assert.False(t, e.IsEnabled())
}

func TestUnsupportedRequest(t *testing.T) {
	c, _, _ := startSession(t, program)
	c.send(&dap.RestartRequest{Request: request("restart")})
	resp := expect[*dap.ErrorResponse](c)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Message, "restart")
}
