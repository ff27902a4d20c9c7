//go:build js && wasm

package dom

import (
	"syscall/js"

	"cranks.com.au/web/internal/widget"
)

// Panel drives the status panel rendered next to a widget container.
type Panel struct {
	root    js.Value
	message js.Value
	retry   js.Value
	onRetry js.Func
}

// FindPanel locates the panel for containerID. It returns nil when the page
// has none.
func FindPanel(containerID string) *Panel {
	doc := js.Global().Get("document")
	root := doc.Call("querySelector", "["+AttrPanel+"=\""+containerID+"\"]")
	if !root.Truthy() {
		return nil
	}
	return &Panel{
		root:    root,
		message: root.Call("querySelector", "["+AttrMessage+"]"),
		retry:   root.Call("querySelector", "["+AttrRetry+"]"),
	}
}

// Render applies the view for st.
func (p *Panel) Render(st widget.Status) {
	v := ViewFor(st)
	setHidden(p.root, v.Hidden)
	p.root.Call("setAttribute", "aria-busy", boolAttr(v.Loading))
	p.root.Call("setAttribute", "data-state", st.State.String())
	if p.message.Truthy() {
		p.message.Set("textContent", v.Message)
	}
	if p.retry.Truthy() {
		setHidden(p.retry, !v.Retry)
	}
}

// OnRetry wires the retry button to fn.
func (p *Panel) OnRetry(fn func()) {
	if !p.retry.Truthy() {
		return
	}
	p.onRetry = js.FuncOf(func(js.Value, []js.Value) any {
		fn()
		return nil
	})
	p.retry.Call("addEventListener", "click", p.onRetry)
}

// Release detaches the retry handler.
func (p *Panel) Release() {
	if p.onRetry.Truthy() {
		p.retry.Call("removeEventListener", "click", p.onRetry)
		p.onRetry.Release()
		p.onRetry = js.Func{}
	}
}

func setHidden(el js.Value, hidden bool) {
	if hidden {
		el.Call("setAttribute", "hidden", "")
		return
	}
	el.Call("removeAttribute", "hidden")
}

func boolAttr(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
