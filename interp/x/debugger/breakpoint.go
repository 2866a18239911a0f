// Copyright © 2024 The Qanun authors

package debugger

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/parser/token"
)

// Breakpoint represents a location where execution should pause.
type Breakpoint struct {
	ID   int
	File string
	Line int
	// Condition is an optional Qanun expression.  The breakpoint only
	// pauses when it evaluates to a truthy value.
	Condition string
	Enabled   bool
	// Verified is false when no statement begins on Line.
	Verified bool
}

func (bp *Breakpoint) key() string {
	return breakpointKey(bp.File, bp.Line)
}

func breakpointKey(file string, line int) string {
	return fmt.Sprintf("%s:%d", file, line)
}

// ExceptionBreakMode controls when the debugger pauses on runtime errors.
type ExceptionBreakMode int

const (
	// ExceptionBreakNever disables exception breakpoints.
	ExceptionBreakNever ExceptionBreakMode = iota
	// ExceptionBreakAll pauses on every runtime error before it unwinds.
	ExceptionBreakAll
)

// BreakpointStore manages breakpoints indexed by file:line.  All methods
// are safe for concurrent use from a protocol goroutine while the
// interpreter goroutine reads via Match.
type BreakpointStore struct {
	mu             sync.RWMutex
	byKey          map[string]*Breakpoint
	nextID         int
	exceptionBreak ExceptionBreakMode
}

// NewBreakpointStore returns an empty breakpoint store.
func NewBreakpointStore() *BreakpointStore {
	return &BreakpointStore{
		byKey: make(map[string]*Breakpoint),
	}
}

// Set adds or replaces the breakpoint at file:line.
func (s *BreakpointStore) Set(file string, line int, condition string) *Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := breakpointKey(file, line)
	if bp, ok := s.byKey[key]; ok {
		bp.Condition = condition
		bp.Enabled = true
		return bp
	}
	s.nextID++
	bp := &Breakpoint{
		ID:        s.nextID,
		File:      file,
		Line:      line,
		Condition: condition,
		Enabled:   true,
		Verified:  true,
	}
	s.byKey[key] = bp
	return bp
}

// Remove removes the breakpoint at file:line.  Returns true if it existed.
func (s *BreakpointStore) Remove(file string, line int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := breakpointKey(file, line)
	_, ok := s.byKey[key]
	delete(s.byKey, key)
	return ok
}

// ClearFile removes all breakpoints for file.
func (s *BreakpointStore) ClearFile(file string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearFile(file)
}

func (s *BreakpointStore) clearFile(file string) {
	prefix := file + ":"
	for key := range s.byKey {
		if strings.HasPrefix(key, prefix) {
			delete(s.byKey, key)
		}
	}
}

// SetForFile replaces all breakpoints in file.  When validLines is
// non-nil, breakpoints on lines not present in it are stored unverified
// and never match.
func (s *BreakpointStore) SetForFile(file string, lines []int, conditions []string, validLines map[int]bool) []*Breakpoint {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearFile(file)
	result := make([]*Breakpoint, len(lines))
	for i, line := range lines {
		s.nextID++
		cond := ""
		if i < len(conditions) {
			cond = conditions[i]
		}
		verified := validLines == nil || validLines[line]
		bp := &Breakpoint{
			ID:        s.nextID,
			File:      file,
			Line:      line,
			Condition: cond,
			Enabled:   verified,
			Verified:  verified,
		}
		s.byKey[bp.key()] = bp
		result[i] = bp
	}
	return result
}

// Match returns the enabled breakpoint at src, or nil.
func (s *BreakpointStore) Match(src *token.Location) *Breakpoint {
	if src == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	bp, ok := s.byKey[breakpointKey(src.File, src.Line)]
	if !ok || !bp.Enabled {
		return nil
	}
	return bp
}

// SetExceptionBreak sets the exception breakpoint mode.
func (s *BreakpointStore) SetExceptionBreak(mode ExceptionBreakMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exceptionBreak = mode
}

// ExceptionBreak returns the current exception breakpoint mode.
func (s *BreakpointStore) ExceptionBreak() ExceptionBreakMode {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exceptionBreak
}

// All returns all breakpoints ordered by file and line.
func (s *BreakpointStore) All() []*Breakpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*Breakpoint, 0, len(s.byKey))
	for _, bp := range s.byKey {
		result = append(result, bp)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].File != result[j].File {
			return result[i].File < result[j].File
		}
		return result[i].Line < result[j].Line
	})
	return result
}

// EvalCondition evaluates a breakpoint condition in env.  An empty
// condition is always satisfied.  A condition that fails to parse or
// raises an error is treated as unsatisfied.
func EvalCondition(it *interp.Interpreter, env *interp.Env, condition string) bool {
	if condition == "" {
		return true
	}
	v, err := it.Eval(env, condition)
	if err != nil {
		return false
	}
	return interp.Truthy(v)
}
