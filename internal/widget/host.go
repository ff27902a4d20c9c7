package widget

import "time"

// Script identifies the external script element.
type Script struct {
	ID  string
	Src string
}

// ScriptHost is the page capability the loader drives. The browser binding
// lives in package dom; tests use an in-memory fake.
//
// Callbacks passed to InjectScript and RewaitScript may run synchronously or
// later, but must run at most once.
type ScriptHost interface {
	// EntryPointReady reports whether the external entry point is callable.
	EntryPointReady() bool
	// ScriptPresent reports whether an element with id exists in the document.
	ScriptPresent(id string) bool
	// InjectScript inserts a new script element and reports its load outcome.
	InjectScript(s Script, done func(error))
	// RewaitScript re-attaches to an existing element's load outcome. It
	// returns false when the outcome can no longer be observed.
	RewaitScript(id string, done func(error)) bool
	// InvokeEntryPoint calls the entry point with the directives verbatim.
	InvokeEntryPoint(directives []string) error
	// ReloadPage is the last-resort recovery for an unrecoverable script.
	ReloadPage()
}

// Timer is a stoppable pending callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock schedules callbacks with time.AfterFunc.
type SystemClock struct{}

// AfterFunc implements Clock.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
