// Copyright © 2024 The Qanun authors

package dapserver

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/google/go-dap"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/x/debugger"
)

// Variable references encode the scope kind and frame ID.  References at
// or above valueRefBase name expandable values.
const (
	scopeLocalBase  = 1000
	scopeGlobalBase = 3000
	valueRefBase    = 10000
)

// launchArguments are the launch/attach arguments the adapter understands.
type launchArguments struct {
	StopOnEntry bool `json:"stopOnEntry"`
}

// handler dispatches incoming DAP messages.
type handler struct {
	server *Server
	engine *debugger.Engine

	mu     sync.Mutex
	frames []frame
	values map[int]interp.Value
}

func newHandler(s *Server, e *debugger.Engine) *handler {
	h := &handler{
		server: s,
		engine: e,
	}
	e.SetEventCallback(h.onEngineEvent)
	return h
}

func (h *handler) send(msg dap.Message) {
	if err := h.server.send(msg); err != nil {
		log.Printf("dap: send error: %v", err)
	}
}

func (h *handler) handle(msg dap.Message) {
	switch req := msg.(type) {
	case *dap.InitializeRequest:
		h.onInitialize(req)
	case *dap.LaunchRequest:
		h.onLaunch(req)
	case *dap.AttachRequest:
		h.onAttach(req)
	case *dap.SetBreakpointsRequest:
		h.onSetBreakpoints(req)
	case *dap.SetFunctionBreakpointsRequest:
		h.onSetFunctionBreakpoints(req)
	case *dap.SetExceptionBreakpointsRequest:
		h.onSetExceptionBreakpoints(req)
	case *dap.ConfigurationDoneRequest:
		h.onConfigurationDone(req)
	case *dap.ThreadsRequest:
		h.onThreads(req)
	case *dap.StackTraceRequest:
		h.onStackTrace(req)
	case *dap.ScopesRequest:
		h.onScopes(req)
	case *dap.VariablesRequest:
		h.onVariables(req)
	case *dap.ContinueRequest:
		h.onContinue(req)
	case *dap.NextRequest:
		h.onNext(req)
	case *dap.StepInRequest:
		h.onStepIn(req)
	case *dap.StepOutRequest:
		h.onStepOut(req)
	case *dap.PauseRequest:
		h.onPause(req)
	case *dap.EvaluateRequest:
		h.onEvaluate(req)
	case *dap.DisconnectRequest:
		h.onDisconnect(req)
	case dap.RequestMessage:
		r := req.GetRequest()
		resp := &dap.ErrorResponse{}
		resp.Response = h.server.newResponse(r.Seq, r.Command)
		resp.Success = false
		resp.Message = "unsupported request: " + r.Command
		h.send(resp)
	default:
		log.Printf("dap: unhandled message type: %T", msg)
	}
}

func (h *handler) onEngineEvent(evt debugger.Event) {
	switch evt.Type {
	case debugger.EventStopped:
		h.mu.Lock()
		h.frames = nil
		h.values = nil
		h.mu.Unlock()
		stopped := &dap.StoppedEvent{Event: h.server.newEvent("stopped")}
		stopped.Body.Reason = string(evt.Reason)
		stopped.Body.ThreadId = mainThreadID
		stopped.Body.AllThreadsStopped = true
		if evt.BP != nil {
			stopped.Body.HitBreakpointIds = []int{evt.BP.ID}
		}
		if evt.Err != nil {
			stopped.Body.Description = "Runtime error"
			stopped.Body.Text = evt.Err.Message
		}
		h.send(stopped)
	case debugger.EventExited:
		exited := &dap.ExitedEvent{Event: h.server.newEvent("exited")}
		exited.Body.ExitCode = evt.ExitCode
		h.send(exited)
		h.send(&dap.TerminatedEvent{Event: h.server.newEvent("terminated")})
	}
}

func (h *handler) onInitialize(req *dap.InitializeRequest) {
	resp := &dap.InitializeResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body = dap.Capabilities{
		SupportsConfigurationDoneRequest: true,
		SupportsConditionalBreakpoints:   true,
		SupportsFunctionBreakpoints:      true,
		SupportsEvaluateForHovers:        true,
		SupportTerminateDebuggee:         true,
		ExceptionBreakpointFilters: []dap.ExceptionBreakpointsFilter{
			{Filter: "all", Label: "Runtime Errors"},
		},
	}
	h.send(resp)
	h.send(&dap.InitializedEvent{Event: h.server.newEvent("initialized")})
}

func (h *handler) applyLaunchArguments(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	var args launchArguments
	if err := json.Unmarshal(raw, &args); err != nil {
		log.Printf("dap: bad launch arguments: %v", err)
		return
	}
	if args.StopOnEntry {
		h.engine.SetStopOnEntry(true)
	}
}

// The program is chosen by the command that started the adapter, so
// launch and attach only configure the session.
func (h *handler) onLaunch(req *dap.LaunchRequest) {
	h.applyLaunchArguments(req.Arguments)
	resp := &dap.LaunchResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
}

func (h *handler) onAttach(req *dap.AttachRequest) {
	h.applyLaunchArguments(req.Arguments)
	resp := &dap.AttachResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
}

func (h *handler) onSetBreakpoints(req *dap.SetBreakpointsRequest) {
	file := req.Arguments.Source.Path
	if file == "" {
		file = req.Arguments.Source.Name
	}
	lines := make([]int, len(req.Arguments.Breakpoints))
	conditions := make([]string, len(req.Arguments.Breakpoints))
	for i, bp := range req.Arguments.Breakpoints {
		lines[i] = bp.Line
		conditions[i] = bp.Condition
	}
	var valid map[int]bool
	if h.server.validLines != nil {
		valid = h.server.validLines(file)
	}
	bps := h.engine.Breakpoints().SetForFile(file, lines, conditions, valid)

	resp := &dap.SetBreakpointsResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body.Breakpoints = translateBreakpoints(bps)
	h.send(resp)
}

func (h *handler) onSetFunctionBreakpoints(req *dap.SetFunctionBreakpointsRequest) {
	names := make([]string, len(req.Arguments.Breakpoints))
	for i, bp := range req.Arguments.Breakpoints {
		names[i] = bp.Name
	}
	h.engine.SetFunctionBreakpoints(names)

	resp := &dap.SetFunctionBreakpointsResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body.Breakpoints = make([]dap.Breakpoint, len(names))
	for i := range names {
		resp.Body.Breakpoints[i] = dap.Breakpoint{Verified: true}
	}
	h.send(resp)
}

func (h *handler) onSetExceptionBreakpoints(req *dap.SetExceptionBreakpointsRequest) {
	mode := debugger.ExceptionBreakNever
	for _, filter := range req.Arguments.Filters {
		if filter == "all" {
			mode = debugger.ExceptionBreakAll
		}
	}
	h.engine.Breakpoints().SetExceptionBreak(mode)

	resp := &dap.SetExceptionBreakpointsResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
}

func (h *handler) onConfigurationDone(req *dap.ConfigurationDoneRequest) {
	resp := &dap.ConfigurationDoneResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	h.engine.SignalReady()
}

func (h *handler) onThreads(req *dap.ThreadsRequest) {
	resp := &dap.ThreadsResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body.Threads = []dap.Thread{{Id: mainThreadID, Name: "main"}}
	h.send(resp)
}

// pausedFrames returns the frames of the paused program, building them on
// first use after each stop.
func (h *handler) pausedFrames() []frame {
	it, env, stmt := h.engine.PausedState()
	if it == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frames == nil {
		h.frames = buildFrames(it, env, stmt)
	}
	return h.frames
}

func (h *handler) frameEnv(id int) *interp.Env {
	frames := h.pausedFrames()
	if id < 1 || id > len(frames) {
		return nil
	}
	return frames[id-1].env
}

func (h *handler) onStackTrace(req *dap.StackTraceRequest) {
	resp := &dap.StackTraceResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	frames := h.pausedFrames()
	resp.Body.TotalFrames = len(frames)

	start := req.Arguments.StartFrame
	if start > len(frames) {
		start = len(frames)
	}
	end := len(frames)
	if req.Arguments.Levels > 0 && start+req.Arguments.Levels < end {
		end = start + req.Arguments.Levels
	}
	resp.Body.StackFrames = make([]dap.StackFrame, 0, end-start)
	for _, f := range frames[start:end] {
		resp.Body.StackFrames = append(resp.Body.StackFrames, f.StackFrame)
	}
	h.send(resp)
}

func (h *handler) onScopes(req *dap.ScopesRequest) {
	resp := &dap.ScopesResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	id := req.Arguments.FrameId
	resp.Body.Scopes = []dap.Scope{
		{Name: "Locals", PresentationHint: "locals", VariablesReference: scopeLocalBase + id},
		{Name: "Globals", VariablesReference: scopeGlobalBase + id, Expensive: true},
	}
	h.send(resp)
}

func (h *handler) allocRef(v interp.Value) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.values == nil {
		h.values = make(map[int]interp.Value)
	}
	ref := valueRefBase + len(h.values)
	h.values[ref] = v
	return ref
}

func (h *handler) onVariables(req *dap.VariablesRequest) {
	resp := &dap.VariablesResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body.Variables = []dap.Variable{}

	ref := req.Arguments.VariablesReference
	var bindings []debugger.ScopeBinding
	switch {
	case ref >= valueRefBase:
		h.mu.Lock()
		v := h.values[ref]
		h.mu.Unlock()
		bindings = debugger.Children(v)
	case ref >= scopeGlobalBase:
		if it, _, _ := h.engine.PausedState(); it != nil {
			bindings = debugger.InspectGlobals(it)
		}
	case ref >= scopeLocalBase:
		if env := h.frameEnv(ref - scopeLocalBase); env != nil {
			bindings = debugger.InspectFunctionLocals(env)
		}
	}
	if len(bindings) > 0 {
		resp.Body.Variables = translateVariables(bindings, h.allocRef)
	}
	h.send(resp)
}

func (h *handler) onContinue(req *dap.ContinueRequest) {
	resp := &dap.ContinueResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	resp.Body.AllThreadsContinued = true
	h.send(resp)
	if h.engine.IsPaused() {
		h.engine.Resume()
	}
}

func (h *handler) onNext(req *dap.NextRequest) {
	resp := &dap.NextResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	if h.engine.IsPaused() {
		h.engine.StepOver()
	}
}

func (h *handler) onStepIn(req *dap.StepInRequest) {
	resp := &dap.StepInResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	if h.engine.IsPaused() {
		h.engine.StepInto()
	}
}

func (h *handler) onStepOut(req *dap.StepOutRequest) {
	resp := &dap.StepOutResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	if h.engine.IsPaused() {
		h.engine.StepOut()
	}
}

func (h *handler) onPause(req *dap.PauseRequest) {
	resp := &dap.PauseResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	h.engine.RequestPause()
}

func (h *handler) onEvaluate(req *dap.EvaluateRequest) {
	resp := &dap.EvaluateResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)

	var env *interp.Env
	if req.Arguments.FrameId > 0 {
		env = h.frameEnv(req.Arguments.FrameId)
	}
	v, err := h.engine.EvalInEnv(env, req.Arguments.Expression)
	if err != nil {
		resp.Success = false
		resp.Message = err.Error()
		h.send(resp)
		return
	}
	dv := translateVariable("", v, h.allocRef)
	resp.Body.Result = dv.Value
	resp.Body.Type = dv.Type
	resp.Body.VariablesReference = dv.VariablesReference
	resp.Body.IndexedVariables = dv.IndexedVariables
	h.send(resp)
}

func (h *handler) onDisconnect(req *dap.DisconnectRequest) {
	resp := &dap.DisconnectResponse{}
	resp.Response = h.server.newResponse(req.Seq, req.Command)
	h.send(resp)
	h.engine.Disconnect()
	h.send(&dap.TerminatedEvent{Event: h.server.newEvent("terminated")})
	h.server.close()
}
