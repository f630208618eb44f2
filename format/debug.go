// Package format renders generation traces and results for terminals.
package format

import (
	"io"

	"github.com/fatih/color"
)

// Debugger prints each generation step: the caller in green, prompts in
// yellow and produced values in blue. A nil *Debugger prints nothing.
type Debugger struct {
	w      io.Writer
	caller *color.Color
	prompt *color.Color
	value  *color.Color
}

func NewDebugger(w io.Writer) *Debugger {
	return &Debugger{
		w:      w,
		caller: color.New(color.FgGreen),
		prompt: color.New(color.FgYellow),
		value:  color.New(color.FgBlue),
	}
}

func (d *Debugger) Prompt(caller, text string) {
	if d == nil {
		return
	}
	d.caller.Fprintln(d.w, caller)
	d.prompt.Fprintln(d.w, text)
}

func (d *Debugger) Value(caller, text string) {
	if d == nil {
		return
	}
	d.caller.Fprintln(d.w, caller)
	d.value.Fprintln(d.w, text)
}
