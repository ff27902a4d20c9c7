package nav

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"cranks.com.au/web/internal/cms"
)

func activeTitles(items []RenderedItem) []string {
	var out []string
	for _, it := range items {
		if it.Active {
			out = append(out, it.Title)
		}
	}
	return out
}

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

func TestBuildMarksActiveItem(t *testing.T) {
	items := cms.FallbackSiteSettings().Navigation

	cases := map[string][]string{
		"/":                      {"Home"},
		"/shop":                  {"Shop"},
		"/shop/product/12":       {"Shop"},
		"/shop?category=Sale":    {"Sale"},
		"/shop?category=E-Bikes": {"E-Bikes"},
		"/our-services":          {"Services"},
		"/our-services/":         {"Services"},
		"/contact":               nil,
		"/shop?category=Unknown": {"Shop"},
		"/shopping":              nil,
	}
	for raw, want := range cases {
		got := activeTitles(Build(items, mustURL(t, raw)))
		require.Equal(t, want, got, raw)
	}
}

func TestBuildKeepsSettingsOrderAndFlags(t *testing.T) {
	items := []cms.NavItem{
		{Title: "Bikes", Href: "/shop", HasDropdown: true, DropdownItems: []cms.NavLink{
			{Title: "Road", Href: "/shop?category=Road"},
			{Title: "Gravel", Href: "/shop?category=Gravel"},
		}},
		{Title: "Sale", Href: "/shop?category=Sale", IsSpecial: true},
		{Title: "Facebook", Href: "https://facebook.com/cranksbikes"},
	}
	got := Build(items, mustURL(t, "/shop?category=Gravel"))

	require.Len(t, got, 3)
	require.True(t, got[0].HasDropdown())
	require.True(t, got[0].Active)
	require.False(t, got[0].Dropdown[0].Active)
	require.True(t, got[0].Dropdown[1].Active)
	require.True(t, got[1].Special)
	require.False(t, got[1].Active)
	require.False(t, got[2].Active)
}

func TestBuildNilURL(t *testing.T) {
	got := Build([]cms.NavItem{{Title: "Home", Href: "/"}}, nil)
	require.True(t, got[0].Active)
}

func TestBreadcrumbs(t *testing.T) {
	require.Equal(t, []Crumb{{Href: "/", Label: "Home", Active: true}}, Breadcrumbs("", ""))

	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/our-services", Label: "Services", Active: true},
	}, Breadcrumbs("/our-services/", ""))

	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/shop", Label: "Shop"},
		{Href: "/shop/product/trek-fuel-ex-9.7", Label: "Trek Fuel EX 9.7", Active: true},
	}, Breadcrumbs("/shop/product/trek-fuel-ex-9.7", "Trek Fuel EX 9.7"))

	require.Equal(t, []Crumb{
		{Href: "/", Label: "Home"},
		{Href: "/blog", Label: "Blog"},
		{Href: "/blog/winter-riding-tips", Label: "Winter Riding Tips", Active: true},
	}, Breadcrumbs("/blog/winter-riding-tips", ""))
}
