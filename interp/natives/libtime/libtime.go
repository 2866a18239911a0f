// Copyright © 2024 The Qanun authors

// Package libtime implements the Time module.
package libtime

import (
	"time"

	"github.com/luthersystems/qanun/interp"
	"github.com/luthersystems/qanun/interp/natives/internal/libutil"
)

// DefaultModuleName is the name programs import the module by.
const DefaultModuleName = "Time"

// Layouts used to render the local wall clock.
const (
	TimeLayout        = "15:04:05"
	DateLayout        = "02-01-2006"
	DateAndTimeLayout = DateLayout + " " + TimeLayout
)

// Now returns the current time.  Tests replace it to get fixed output.
var Now = time.Now

// LoadPackage registers the Time module with it.
func LoadPackage(it *interp.Interpreter) error {
	it.RegisterModule(NewModule())
	return nil
}

// NewModule returns a fresh Time module value.
func NewModule() *interp.Module {
	return libutil.Module(DefaultModuleName,
		`Access to the local wall clock.`,
		builtins)
}

var builtins = []*interp.Native{
	libutil.FunctionDoc("time", libutil.Params(), BuiltinTime,
		`Returns the local time of day formatted as HH:MM:SS.`),
	libutil.FunctionDoc("date", libutil.Params(), BuiltinDate,
		`Returns the local date formatted as DD-MM-YYYY.`),
	libutil.FunctionDoc("dateAndTime", libutil.Params(), BuiltinDateAndTime,
		`Returns the local date and time formatted as DD-MM-YYYY HH:MM:SS.`),
	libutil.FunctionDoc("now", libutil.Params(), BuiltinNow,
		`Returns the number of seconds since the Unix epoch.`),
}

func BuiltinTime(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.String(Now().Format(TimeLayout)), nil
}

func BuiltinDate(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.String(Now().Format(DateLayout)), nil
}

func BuiltinDateAndTime(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.String(Now().Format(DateAndTimeLayout)), nil
}

func BuiltinNow(it *interp.Interpreter, args []interp.Value) (interp.Value, error) {
	return interp.Number(float64(Now().UnixNano()) / float64(time.Second)), nil
}
