// Copyright © 2024 The Qanun authors

package debugger

// StepMode represents the current stepping behavior.
type StepMode int

const (
	// StepNone means no stepping is active.
	StepNone StepMode = iota
	// StepInto pauses on the next statement regardless of depth.
	StepInto
	// StepOver pauses on the next statement at the same or lesser depth.
	StepOver
	// StepOut pauses on the next statement at a lesser depth.
	StepOut
)

func (m StepMode) String() string {
	switch m {
	case StepInto:
		return "into"
	case StepOver:
		return "over"
	case StepOut:
		return "out"
	default:
		return "none"
	}
}

// Stepper implements the step state machine.  It is not safe for
// concurrent use; all access happens on the interpreter goroutine.
type Stepper struct {
	mode      StepMode
	depth     int
	startFile string
	startLine int
}

// NewStepper returns a stepper in the StepNone state.
func NewStepper() *Stepper {
	return &Stepper{}
}

// Mode returns the current step mode.
func (s *Stepper) Mode() StepMode {
	return s.mode
}

// Depth returns the call depth recorded by the last step command.
func (s *Stepper) Depth() int {
	return s.depth
}

// Reset clears the stepper to StepNone.
func (s *Stepper) Reset() {
	*s = Stepper{}
}

// Set configures the stepper for mode, starting from the statement at
// file:line executing at call depth.
func (s *Stepper) Set(mode StepMode, depth int, file string, line int) {
	s.mode = mode
	s.depth = depth
	s.startFile = file
	s.startLine = line
}

func (s *Stepper) isSameLine(file string, line int) bool {
	return file == s.startFile && line == s.startLine
}

// ShouldPause returns true if the statement at file:line executing at
// depth completes the active step.  After returning true the stepper
// resets to StepNone.
func (s *Stepper) ShouldPause(depth int, file string, line int) bool {
	switch s.mode {
	case StepInto:
		// Statements nested on the starting line are skipped unless a call
		// was entered.
		if s.isSameLine(file, line) && depth <= s.depth {
			return false
		}
	case StepOver:
		if depth > s.depth {
			return false
		}
		if depth == s.depth && s.isSameLine(file, line) {
			return false
		}
	case StepOut:
		if depth >= s.depth {
			return false
		}
	default:
		return false
	}
	s.Reset()
	return true
}
