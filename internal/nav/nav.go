// Package nav turns the site navigation settings into header and
// breadcrumb view models.
package nav

import (
	"net/url"
	"path"
	"strings"

	"cranks.com.au/web/internal/cms"
)

// Link is a dropdown entry.
type Link struct {
	Title  string
	Href   string
	Active bool
}

// RenderedItem is a view model for templates.
type RenderedItem struct {
	Title    string
	Href     string
	Special  bool
	Active   bool
	Dropdown []Link
}

// HasDropdown reports whether the item opens a menu.
func (it RenderedItem) HasDropdown() bool { return len(it.Dropdown) > 0 }

// Crumb represents a breadcrumb entry.
type Crumb struct {
	Href   string
	Label  string
	Active bool
}

// Sections maps top-level paths to breadcrumb labels.
var Sections = map[string]string{
	"/shop":         "Shop",
	"/about-us":     "About Us",
	"/our-services": "Services",
	"/contact":      "Contact",
	"/blog":         "Blog",
}

// Build renders navigation items with active state for the current URL.
// An item whose href carries a query is only active when the current URL
// has the same query values; otherwise any query on the current URL is
// ignored.
func Build(items []cms.NavItem, current *url.URL) []RenderedItem {
	currentPath, currentQuery := "/", url.Values{}
	if current != nil {
		currentPath = normalise(current.Path)
		currentQuery = current.Query()
	}
	out := make([]RenderedItem, 0, len(items))
	for _, it := range items {
		r := RenderedItem{
			Title:   it.Title,
			Href:    it.Href,
			Special: it.IsSpecial,
			Active:  isActive(it.Href, currentPath, currentQuery, items),
		}
		if it.HasDropdown || len(it.DropdownItems) > 0 {
			for _, d := range it.DropdownItems {
				r.Dropdown = append(r.Dropdown, Link{
					Title:  d.Title,
					Href:   d.Href,
					Active: isActive(d.Href, currentPath, currentQuery, nil),
				})
			}
		}
		out = append(out, r)
	}
	return out
}

func isActive(href, currentPath string, currentQuery url.Values, siblings []cms.NavItem) bool {
	u, err := url.Parse(href)
	if err != nil || u.IsAbs() {
		return false
	}
	itemPath := normalise(u.Path)
	if itemPath == "/" {
		return currentPath == "/"
	}
	if currentPath != itemPath && !strings.HasPrefix(currentPath, itemPath+"/") {
		return false
	}
	want := u.Query()
	if len(want) > 0 {
		for k := range want {
			if currentQuery.Get(k) != want.Get(k) {
				return false
			}
		}
		return true
	}
	// "/shop" yields to "/shop?category=Sale" when that sibling matches.
	for _, s := range siblings {
		su, err := url.Parse(s.Href)
		if err != nil || normalise(su.Path) != itemPath || len(su.Query()) == 0 {
			continue
		}
		if isActive(s.Href, currentPath, currentQuery, nil) {
			return false
		}
	}
	return true
}

func normalise(p string) string {
	if p == "" {
		return "/"
	}
	clean := path.Clean("/" + p)
	if clean == "." {
		return "/"
	}
	return clean
}

// Breadcrumbs builds breadcrumb entries from the current path. The last
// crumb uses leaf when it is not empty, which lets detail pages show a
// product or post title instead of the raw slug.
func Breadcrumbs(currentPath, leaf string) []Crumb {
	currentPath = normalise(currentPath)
	crumbs := []Crumb{{Href: "/", Label: "Home", Active: currentPath == "/"}}
	if currentPath == "/" {
		return crumbs
	}

	parts := strings.Split(strings.TrimPrefix(currentPath, "/"), "/")
	href := ""
	for i, seg := range parts {
		href += "/" + seg
		label, ok := Sections[href]
		if !ok {
			label = titleFromSegment(seg)
		}
		last := i == len(parts)-1
		if last && leaf != "" {
			label = leaf
		}
		// "/shop/product" has no page of its own.
		if !last && seg == "product" {
			continue
		}
		crumbs = append(crumbs, Crumb{Href: href, Label: label, Active: last})
	}
	return crumbs
}

func titleFromSegment(seg string) string {
	if seg == "" {
		return seg
	}
	if s, err := url.PathUnescape(seg); err == nil {
		seg = s
	}
	words := strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' || r == ' ' })
	for i, w := range words {
		r := []rune(w)
		r[0] = toUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

func toUpper(r rune) rune {
	// ASCII only is sufficient for slugs here
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
