package main

import (
	"bytes"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"cranks.com.au/web/internal/cms"
	mw "cranks.com.au/web/internal/middleware"
	"cranks.com.au/web/internal/observability"
	"cranks.com.au/web/internal/seo"
)

// siteSettingsResponse is the JSON shape served to client-side consumers.
type siteSettingsResponse struct {
	Settings cms.SiteSettings `json:"settings"`
	Widget   widgetConfig     `json:"widget"`
}

type widgetConfig struct {
	StoreID     string   `json:"storeId"`
	ContainerID string   `json:"containerId"`
	ScriptID    string   `json:"scriptId"`
	ScriptSrc   string   `json:"scriptSrc"`
	EntryPoint  string   `json:"entryPoint"`
	Directives  []string `json:"directives"`
}

// SiteSettingsAPI serves the resolved site settings as JSON.
func (a *app) SiteSettingsAPI(w http.ResponseWriter, r *http.Request) {
	settings := a.settings.Resolve(r.Context())
	w.Header().Set("Cache-Control", "public, max-age=300")
	mw.WriteJSON(w, http.StatusOK, siteSettingsResponse{
		Settings: settings,
		Widget: widgetConfig{
			StoreID:     a.embed.StoreID,
			ContainerID: a.embed.ContainerID,
			ScriptID:    a.embed.ScriptID,
			ScriptSrc:   a.embed.ScriptSrc,
			EntryPoint:  a.embed.EntryPoint,
			Directives:  a.embed.Directives,
		},
	})
}

// SitemapHandler serves sitemap.xml with the fixed pages and blog posts.
func (a *app) SitemapHandler(w http.ResponseWriter, r *http.Request) {
	entries := seo.StaticPages(a.now())
	posts, err := a.cms.Posts(r.Context())
	if err != nil {
		a.cms.LogFetchError("posts", err)
	}
	for _, p := range posts {
		entries = append(entries, seo.SitemapEntry{
			Path:         "/blog/" + p.Slug,
			LastModified: p.PublishedAt,
			ChangeFreq:   "monthly",
			Priority:     0.5,
		})
	}

	var buf bytes.Buffer
	if err := seo.WriteSitemap(&buf, a.cfg.Site.BaseURL, entries); err != nil {
		observability.FromContext(r.Context()).Error("sitemap encode failed", zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = buf.WriteTo(w)
}

// RobotsHandler serves robots.txt.
func (a *app) RobotsHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = fmt.Fprintf(w, "User-agent: *\nAllow: /\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", a.cfg.Site.BaseURL)
}
