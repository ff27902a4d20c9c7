// Package dom binds the widget loader to a browser document through
// syscall/js. Only the panel view model builds outside js/wasm.
package dom

import (
	"errors"

	"cranks.com.au/web/internal/widget"
)

// Attribute names shared with templates/partials/store_widget.tmpl.
const (
	AttrLoadState = "data-load-state"
	AttrPanel     = "data-widget-panel"
	AttrRetry     = "data-widget-retry"
	AttrMessage   = "data-widget-message"
)

// Values of AttrLoadState on script elements injected by Host.
const (
	LoadStateLoading = "loading"
	LoadStateLoaded  = "loaded"
	LoadStateError   = "error"
)

// PanelView is what the status panel beside a container should show.
type PanelView struct {
	Hidden  bool
	Loading bool
	Message string
	Retry   bool
}

// ViewFor maps a loader status to the panel.
func ViewFor(st widget.Status) PanelView {
	switch {
	case st.State == widget.StateReady:
		return PanelView{Hidden: true}
	case st.State.Loading(), st.State == widget.StateIdle:
		return PanelView{Loading: true, Message: "Loading store…"}
	case st.State == widget.StateTimedOut:
		return PanelView{Message: "The store is taking too long to load. Check your connection and try again.", Retry: true}
	case st.State == widget.StateFailed && errors.Is(st.Err, widget.ErrReloadRequired):
		return PanelView{Loading: true, Message: "Reloading the page…"}
	case st.State == widget.StateFailed && st.Reason == widget.ReasonScriptLoad:
		return PanelView{Message: "We couldn't load the store. An ad blocker or network issue may be preventing it.", Retry: true}
	case st.State == widget.StateFailed:
		return PanelView{Message: "The store failed to start. Please try again.", Retry: true}
	default:
		return PanelView{Hidden: true}
	}
}
