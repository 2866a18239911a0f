// Copyright © 2024 The Qanun authors

// Package dapserver implements a Debug Adapter Protocol server for the
// Qanun debugger engine.  It translates between the DAP wire protocol and
// the debugger.Engine interface.
//
// The server supports two transports:
//   - TCP: the server listens on a port and accepts a single client.
//   - Stdio: for editors that launch the adapter as a child process
//     ("qanun debug --stdio").
package dapserver

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"

	"github.com/google/go-dap"

	"github.com/luthersystems/qanun/interp/x/debugger"
)

// Option configures a Server.
type Option func(*Server)

// WithLineValidator sets the function used to find the lines of a file on
// which breakpoints can be verified.  A nil result verifies every line.
func WithLineValidator(fn func(path string) map[int]bool) Option {
	return func(s *Server) {
		s.validLines = fn
	}
}

// Server is a DAP server that wraps a debugger Engine.
type Server struct {
	engine     *debugger.Engine
	validLines func(path string) map[int]bool

	mu     sync.Mutex
	seq    int
	writer io.Writer

	done chan struct{}
}

// New creates a new DAP server wrapping engine.  Breakpoints are verified
// with debugger.ValidLines unless WithLineValidator says otherwise.
func New(engine *debugger.Engine, opts ...Option) *Server {
	s := &Server{
		engine:     engine,
		validLines: debugger.ValidLines,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ServeConn serves DAP messages on a single connection.  It blocks until
// the connection is closed or a disconnect request is received.
func (s *Server) ServeConn(conn io.ReadWriteCloser) error {
	defer conn.Close() //nolint:errcheck
	return s.ServeStdio(conn, conn)
}

// ServeTCP listens on addr and serves a single DAP client.
func (s *Server) ServeTCP(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	defer ln.Close() //nolint:errcheck
	return s.ServeListener(ln)
}

// ServeListener accepts a single connection from ln and serves it.
func (s *Server) ServeListener(ln net.Listener) error {
	conn, err := ln.Accept()
	if err != nil {
		return err
	}
	return s.ServeConn(conn)
}

// ServeStdio serves DAP messages read from r, writing responses and
// events to w.
func (s *Server) ServeStdio(r io.Reader, w io.Writer) error {
	s.mu.Lock()
	s.writer = w
	s.mu.Unlock()
	reader := bufio.NewReader(r)
	h := newHandler(s, s.engine)
	for {
		select {
		case <-s.done:
			return nil
		default:
		}
		msg, err := dap.ReadProtocolMessage(reader)
		if err != nil {
			select {
			case <-s.done:
				return nil
			default:
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		h.handle(msg)
	}
}

// Done returns a channel that is closed once the client disconnects.
func (s *Server) Done() <-chan struct{} {
	return s.done
}

// Output returns a writer that forwards program output to the client as
// output events in the given category ("stdout" or "stderr").
func (s *Server) Output(category string) io.Writer {
	return &outputWriter{server: s, category: category}
}

type outputWriter struct {
	server   *Server
	category string
}

func (w *outputWriter) Write(p []byte) (int, error) {
	evt := &dap.OutputEvent{Event: w.server.newEvent("output")}
	evt.Body.Category = w.category
	evt.Body.Output = string(p)
	if err := w.server.send(evt); err != nil {
		return 0, err
	}
	return len(p), nil
}

func (s *Server) send(msg dap.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.writer == nil {
		return errors.New("dap: no client connected")
	}
	return dap.WriteProtocolMessage(s.writer, msg)
}

func (s *Server) nextSeq() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

func (s *Server) newResponse(reqSeq int, command string) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "response"},
		RequestSeq:      reqSeq,
		Success:         true,
		Command:         command,
	}
}

func (s *Server) newEvent(event string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{Seq: s.nextSeq(), Type: "event"},
		Event:           event,
	}
}

func (s *Server) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	select {
	case <-s.done:
	default:
		close(s.done)
	}
}
