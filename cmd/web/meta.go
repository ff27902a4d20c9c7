package main

import (
	"net/http"
	"strings"

	"cranks.com.au/web/internal/cms"
	handlersPkg "cranks.com.au/web/internal/handlers"
	"cranks.com.au/web/internal/nav"
	"cranks.com.au/web/internal/seo"
)

// pageMeta is the per-page input to newPage.
type pageMeta struct {
	Title       string
	Description string
	Keywords    []string
	Image       string
	OGType      string
	// Leaf replaces the last breadcrumb label on detail pages.
	Leaf string
}

var defaultKeywords = []string{
	"bike shop Chatswood", "bicycle store Sydney", "mountain bike", "road bike",
	"e-bike", "cycling gear", "bike repair Chatswood", "North Shore bike shop",
}

// newPage resolves the site settings and builds the shared layout fields.
func (a *app) newPage(r *http.Request, settings cms.SiteSettings, m pageMeta) handlersPkg.PageData {
	site := settings.Title
	vm := handlersPkg.PageData{
		Title:       seo.Title(m.Title, site),
		Lang:        "en-AU",
		Path:        r.URL.Path,
		Settings:    settings,
		Nav:         nav.Build(settings.Navigation, r.URL),
		Breadcrumbs: nav.Breadcrumbs(r.URL.Path, m.Leaf),
		Analytics:   a.analytics,
		Year:        a.now().Year(),
	}

	vm.SEO.Title = vm.Title
	vm.SEO.Description = m.Description
	vm.SEO.Keywords = m.Keywords
	if len(vm.SEO.Keywords) == 0 {
		vm.SEO.Keywords = defaultKeywords
	}
	vm.SEO.Canonical = a.absoluteURL(r.URL.Path)
	vm.SEO.Robots = "index, follow"
	vm.SEO.OG.URL = vm.SEO.Canonical
	vm.SEO.OG.SiteName = site
	vm.SEO.OG.Title = vm.SEO.Title
	vm.SEO.OG.Description = vm.SEO.Description
	vm.SEO.OG.Locale = "en_AU"
	vm.SEO.OG.Type = m.OGType
	if vm.SEO.OG.Type == "" {
		vm.SEO.OG.Type = "website"
	}
	vm.SEO.OG.Image = a.absoluteURL(m.Image)
	if m.Image == "" {
		vm.SEO.OG.Image = a.business.Logo
	}
	vm.SEO.Twitter.Card = "summary_large_image"
	vm.SEO.Twitter.Title = vm.SEO.Title
	vm.SEO.Twitter.Description = vm.SEO.Description
	vm.SEO.Twitter.Image = vm.SEO.OG.Image

	if len(vm.Breadcrumbs) > 1 {
		items := make([]seo.BreadcrumbItem, 0, len(vm.Breadcrumbs))
		for _, c := range vm.Breadcrumbs {
			items = append(items, seo.BreadcrumbItem{Name: c.Label, Item: a.absoluteURL(c.Href)})
		}
		vm.SEO.JSONLD = append(vm.SEO.JSONLD, seo.JSON(seo.BreadcrumbList(items)))
	}
	return vm
}

// addJSONLD appends structured data blocks to the page.
func addJSONLD(vm *handlersPkg.PageData, blocks ...map[string]any) {
	for _, b := range blocks {
		if s := seo.JSON(b); s != "" {
			vm.SEO.JSONLD = append(vm.SEO.JSONLD, s)
		}
	}
}

// absoluteURL resolves a site-relative path against the public base URL.
// Absolute URLs are returned unchanged.
func (a *app) absoluteURL(p string) string {
	if p == "" {
		return ""
	}
	if strings.HasPrefix(p, "http://") || strings.HasPrefix(p, "https://") {
		return p
	}
	if p == "/" {
		return a.cfg.Site.BaseURL
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return a.cfg.Site.BaseURL + p
}

// businessFor adds the social profiles from settings to the structured data.
func (a *app) businessFor(settings cms.SiteSettings) seo.Business {
	b := a.business
	b.SameAs = nil
	for _, u := range []string{settings.SocialMedia.Facebook, settings.SocialMedia.Instagram, settings.SocialMedia.Twitter} {
		if u != "" {
			b.SameAs = append(b.SameAs, u)
		}
	}
	if settings.ContactInfo.Email != "" {
		b.Email = settings.ContactInfo.Email
	}
	return b
}
