package widget

import (
	"errors"
	"fmt"
	"time"
)

// State is the lifecycle position of a loader's current mount attempt.
type State int

const (
	StateIdle State = iota
	StateScriptInjecting
	StateScriptLoaded
	StatePolling
	StateReady
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScriptInjecting:
		return "script-injecting"
	case StateScriptLoaded:
		return "script-loaded"
	case StatePolling:
		return "polling"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed-out"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether s ends a mount attempt.
func (s State) Terminal() bool {
	return s == StateReady || s == StateFailed || s == StateTimedOut
}

// Loading reports whether the host should show a progress indicator.
func (s State) Loading() bool {
	switch s {
	case StateScriptInjecting, StateScriptLoaded, StatePolling:
		return true
	default:
		return false
	}
}

// Failure reasons carried by Status.Reason when State is StateFailed.
const (
	ReasonScriptLoad = "script-load-error"
	ReasonInit       = "init-error"
)

// Status is the observable loader state handed to hosts.
type Status struct {
	State  State
	Reason string
	Err    error
}

// Retryable reports whether the host should offer a manual retry.
func (s Status) Retryable() bool {
	return s.State == StateFailed || s.State == StateTimedOut
}

func (s Status) String() string {
	if s.Reason != "" {
		return s.State.String() + "(" + s.Reason + ")"
	}
	return s.State.String()
}

// ScriptLoadError reports that the external script element failed to load.
type ScriptLoadError struct {
	Src string
	Err error
}

func (e *ScriptLoadError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("widget: script %s failed to load", e.Src)
	}
	return fmt.Sprintf("widget: script %s failed to load: %v", e.Src, e.Err)
}

func (e *ScriptLoadError) Unwrap() error { return e.Err }

// InitTimeoutError reports that the entry point never became callable.
type InitTimeoutError struct {
	EntryPoint string
	Waited     time.Duration
}

func (e *InitTimeoutError) Error() string {
	return fmt.Sprintf("widget: %s not available after %s", e.EntryPoint, e.Waited)
}

// InitInvocationError reports that calling the entry point failed.
type InitInvocationError struct {
	EntryPoint string
	Err        error
}

func (e *InitInvocationError) Error() string {
	return fmt.Sprintf("widget: %s failed: %v", e.EntryPoint, e.Err)
}

func (e *InitInvocationError) Unwrap() error { return e.Err }

// ErrReloadRequired is returned by the script registry when a failed script
// element cannot be re-observed and only a page reload can recover it.
var ErrReloadRequired = errors.New("widget: page reload required")
