//go:build js && wasm

// Command storewidget is the WebAssembly module that mounts the hosted
// product browser into every [data-store-widget] container on the page.
package main

import (
	"encoding/json"
	"strings"
	"syscall/js"

	"go.uber.org/zap"

	"cranks.com.au/web/internal/observability"
	"cranks.com.au/web/internal/widget"
	"cranks.com.au/web/internal/widget/dom"
)

// mountPoint mirrors the data attributes written by
// templates/partials/store_widget.tmpl.
type mountPoint struct {
	StoreID     string
	ContainerID string
	ScriptID    string
	ScriptSrc   string
	EntryPoint  string
	Namespace   string
	Directives  []string
}

func main() {
	logger, err := observability.NewLogger(attr(js.Global().Get("document").Get("documentElement"), "data-log-level"))
	if err != nil {
		logger = zap.NewNop()
	}

	points := discover(logger)
	if len(points) == 0 {
		logger.Debug("no store widget containers on page")
		return
	}

	host := dom.NewHost(firstNonEmpty(points[0].Namespace, widget.DefaultNamespace), firstNonEmpty(points[0].EntryPoint, widget.DefaultEntryPoint))
	reg := widget.NewRegistry(host, widget.WithLogger(logger))

	var mounts []*widget.Mount
	var panels []*dom.Panel
	for _, p := range points {
		l, err := reg.Loader(widget.Config{
			StoreID:     p.StoreID,
			ContainerID: p.ContainerID,
			Script:      widget.Script{ID: p.ScriptID, Src: p.ScriptSrc},
			EntryPoint:  p.EntryPoint,
			Directives:  p.Directives,
		})
		if err != nil {
			logger.Error("store widget config rejected", zap.String("container", p.ContainerID), zap.Error(err))
			continue
		}
		panel := dom.FindPanel(l.Config().ContainerID)
		var observe func(widget.Status)
		if panel != nil {
			observe = panel.Render
			panels = append(panels, panel)
		}
		m := l.Mount(observe)
		if panel != nil {
			panel.OnRetry(func() { m.Retry() })
		}
		mounts = append(mounts, m)
	}

	var onHide js.Func
	onHide = js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) > 0 && args[0].Get("persisted").Bool() {
			return nil
		}
		for _, m := range mounts {
			m.Unmount()
		}
		for _, p := range panels {
			p.Release()
		}
		js.Global().Call("removeEventListener", "pagehide", onHide)
		onHide.Release()
		return nil
	})
	js.Global().Call("addEventListener", "pagehide", onHide)

	select {}
}

func discover(logger *zap.Logger) []mountPoint {
	nodes := js.Global().Get("document").Call("querySelectorAll", "[data-store-widget]")
	n := nodes.Get("length").Int()
	points := make([]mountPoint, 0, n)
	for i := 0; i < n; i++ {
		el := nodes.Call("item", i)
		p := mountPoint{
			StoreID:     attr(el, "data-store-id"),
			ContainerID: el.Get("id").String(),
			ScriptID:    attr(el, "data-script-id"),
			ScriptSrc:   attr(el, "data-script-src"),
			EntryPoint:  attr(el, "data-entry-point"),
			Namespace:   attr(el, "data-namespace"),
		}
		if raw := attr(el, "data-directives"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &p.Directives); err != nil {
				logger.Warn("invalid store widget directives", zap.String("container", p.ContainerID), zap.Error(err))
			}
		}
		points = append(points, p)
	}
	return points
}

func attr(el js.Value, name string) string {
	v := el.Call("getAttribute", name)
	if v.IsNull() || v.IsUndefined() {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
