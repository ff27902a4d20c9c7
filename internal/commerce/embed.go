// Package commerce describes the hosted store: how its widget is embedded
// in pages and how product data is read from its REST API.
package commerce

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"cranks.com.au/web/internal/widget"
)

// DefaultScriptBase serves the storefront script.
const DefaultScriptBase = "https://app.business.shop/script.js"

// DefaultDirectives configure the product browser on the shop page.
var DefaultDirectives = []string{
	"categoriesPerRow=3",
	"views=grid(20,3) list(60) table(60)",
	"categoryView=grid",
	"searchView=list",
}

// Embed is the mount point markup data for one widget container.
type Embed struct {
	StoreID     string
	ContainerID string
	ScriptID    string
	ScriptSrc   string
	EntryPoint  string
	Namespace   string
	Directives  []string
}

// ScriptURL builds the storefront script URL for storeID.
func ScriptURL(base, storeID string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultScriptBase
	}
	return base + "?" + url.QueryEscape(strings.TrimSpace(storeID)) + "&data_platform=code"
}

// NewEmbed describes the shop page product browser for storeID.
func NewEmbed(storeID, scriptBase string) Embed {
	storeID = strings.TrimSpace(storeID)
	containerID := widget.ContainerIDFor(storeID)
	directives := append(append([]string(nil), DefaultDirectives...), "id="+containerID)
	return Embed{
		StoreID:     storeID,
		ContainerID: containerID,
		ScriptID:    widget.ScriptIDFor(storeID),
		ScriptSrc:   ScriptURL(scriptBase, storeID),
		EntryPoint:  widget.DefaultEntryPoint,
		Namespace:   widget.DefaultNamespace,
		Directives:  directives,
	}
}

// ForProduct returns an embed that opens the browser on a single product,
// rendered into its own container next to the product details.
func (e Embed) ForProduct(productID int64) Embed {
	id := strconv.FormatInt(productID, 10)
	out := e
	out.ContainerID = e.ContainerID + "-product-" + id
	out.Directives = []string{"defaultProductId=" + id, "id=" + out.ContainerID}
	return out
}

// DirectivesJSON encodes the directives for a data attribute.
func (e Embed) DirectivesJSON() string {
	b, err := json.Marshal(e.Directives)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// Enabled reports whether the embed has a store to load.
func (e Embed) Enabled() bool {
	return e.StoreID != ""
}
