//go:build js && wasm

package dom

import (
	"errors"
	"fmt"
	"syscall/js"

	"cranks.com.au/web/internal/widget"
)

// Host implements widget.ScriptHost against the live document.
type Host struct {
	win        js.Value
	doc        js.Value
	namespace  string
	entryPoint string
}

// NewHost returns a host that looks for entryPoint and namespace on window.
func NewHost(namespace, entryPoint string) *Host {
	win := js.Global()
	return &Host{
		win:        win,
		doc:        win.Get("document"),
		namespace:  namespace,
		entryPoint: entryPoint,
	}
}

func (h *Host) EntryPointReady() bool {
	if h.namespace != "" && !h.win.Get(h.namespace).Truthy() {
		return false
	}
	return h.win.Get(h.entryPoint).Type() == js.TypeFunction
}

func (h *Host) ScriptPresent(id string) bool {
	return h.byID(id).Truthy()
}

func (h *Host) InjectScript(s widget.Script, done func(error)) {
	el := h.doc.Call("createElement", "script")
	el.Set("id", s.ID)
	el.Set("src", s.Src)
	el.Set("async", true)
	el.Call("setAttribute", AttrLoadState, LoadStateLoading)
	h.listen(el, s.Src, done)
	parent := h.doc.Get("body")
	if !parent.Truthy() {
		parent = h.doc.Get("head")
	}
	parent.Call("appendChild", el)
}

// RewaitScript follows elements this host injected. Elements placed by
// other code carry no load state and cannot be followed.
func (h *Host) RewaitScript(id string, done func(error)) bool {
	el := h.byID(id)
	if !el.Truthy() {
		return false
	}
	switch el.Call("getAttribute", AttrLoadState).String() {
	case LoadStateLoaded:
		done(nil)
		return true
	case LoadStateLoading:
		h.listen(el, el.Get("src").String(), done)
		return true
	default:
		return false
	}
}

func (h *Host) InvokeEntryPoint(directives []string) (err error) {
	fn := h.win.Get(h.entryPoint)
	if fn.Type() != js.TypeFunction {
		return fmt.Errorf("%s is not a function", h.entryPoint)
	}
	defer func() {
		if r := recover(); r != nil {
			var jsErr js.Error
			if e, ok := r.(error); ok && errors.As(e, &jsErr) {
				err = jsErr
				return
			}
			err = fmt.Errorf("%v", r)
		}
	}()
	args := make([]any, len(directives))
	for i, d := range directives {
		args[i] = d
	}
	fn.Invoke(args...)
	return nil
}

func (h *Host) ReloadPage() {
	h.win.Get("location").Call("reload")
}

func (h *Host) byID(id string) js.Value {
	return h.doc.Call("getElementById", id)
}

// listen reports the first load or error event on el and releases both
// handlers afterwards.
func (h *Host) listen(el js.Value, src string, done func(error)) {
	var onLoad, onError js.Func
	fired := false
	release := func() {
		el.Call("removeEventListener", "load", onLoad)
		el.Call("removeEventListener", "error", onError)
		onLoad.Release()
		onError.Release()
	}
	onLoad = js.FuncOf(func(js.Value, []js.Value) any {
		if fired {
			return nil
		}
		fired = true
		el.Call("setAttribute", AttrLoadState, LoadStateLoaded)
		release()
		done(nil)
		return nil
	})
	onError = js.FuncOf(func(js.Value, []js.Value) any {
		if fired {
			return nil
		}
		fired = true
		el.Call("setAttribute", AttrLoadState, LoadStateError)
		release()
		done(fmt.Errorf("error event from %s", src))
		return nil
	})
	el.Call("addEventListener", "load", onLoad)
	el.Call("addEventListener", "error", onError)
}
