// Copyright © 2024 The Qanun authors

package interp

// Profiler is notified of every call made by the interpreter.
type Profiler interface {
	// Is the profiler enabled?
	IsEnabled() bool
	// Enable the profiler
	Enable() error
	// End the profiling session and flush any summary
	Complete() error
	// Marks the start of a call to fn
	Start(fn Callable)
	// Marks the end of a call to fn
	End(fn Callable)
}
