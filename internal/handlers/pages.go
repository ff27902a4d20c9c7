// Package handlers holds the view models rendered by the page templates.
package handlers

import (
	"cranks.com.au/web/internal/cms"
	"cranks.com.au/web/internal/commerce"
	"cranks.com.au/web/internal/nav"
)

// PageData is a generic view model for pages using the shared layout.
type PageData struct {
	Title     string
	Lang      string
	SEO       SEOData
	Analytics Analytics
	Year      int

	Path        string
	Settings    cms.SiteSettings
	Nav         []nav.RenderedItem
	Breadcrumbs []nav.Crumb

	// Optional per-page view model payloads
	Home     *HomeView
	Shop     *ShopView
	Product  *ProductView
	Services *ServicesView
	Content  *cms.ContentPage
	Blog     *BlogView
	Post     *cms.Post
	Error    *ErrorView
}

// SEOData is a lightweight copy to avoid importing the seo package here.
type SEOData struct {
	Title       string
	Description string
	Keywords    []string
	Canonical   string
	Robots      string
	OG          struct {
		Title       string
		Description string
		Image       string
		Type        string
		URL         string
		SiteName    string
		Locale      string
	}
	Twitter struct {
		Card        string
		Title       string
		Description string
		Image       string
	}
	JSONLD []string
}

// HomeView is the landing page payload.
type HomeView struct {
	Page       cms.HomePage
	Highlights []Highlight
}

// Highlight is one of the "why ride with us" cards.
type Highlight struct {
	Icon  string
	Title string
	Text  string
}

// ShopView is the shop page payload.
type ShopView struct {
	Category   string
	Categories []string
	Widget     commerce.Embed
}

// ProductView is the product detail payload.
type ProductView struct {
	Product commerce.Product
	Widget  commerce.Embed
	// BuyInStore is set when the product has no store counterpart and the
	// page links to the shop instead of mounting the widget.
	BuyInStore bool
}

// ServicesView is the services page payload.
type ServicesView struct {
	Services []cms.Service
	Perks    []Highlight
}

// BlogView lists posts.
type BlogView struct {
	Posts    []cms.Post
	Featured *cms.Post
}

// ErrorView describes an error page.
type ErrorView struct {
	Status  int
	Heading string
	Message string
	Reload  bool
}

// HomeHighlights are the fixed selling points shown under the hero.
var HomeHighlights = []Highlight{
	{Icon: "star", Title: "30+ Years Experience", Text: "Serving Sydney's North Shore riders since 1990."},
	{Icon: "shield", Title: "Free 3-Month Service", Text: "Every new bike comes with a free service within the first three months."},
	{Icon: "wrench", Title: "Expert Workshop", Text: "Qualified mechanics for everything from kids' bikes to electronic shifting."},
	{Icon: "map-pin", Title: "Local & Independent", Text: "Find us at 352A Penshurst Street, Chatswood."},
}

// ServicePerks list what comes with every workshop visit.
var ServicePerks = []Highlight{
	{Icon: "bike", Title: "Bike Sales", Text: "Road, mountain, hybrid and e-bikes from brands we trust."},
	{Icon: "shield", Title: "Free 3-Month Service", Text: "New bikes get a free check-up once the cables have settled."},
	{Icon: "package", Title: "Stock Ordering", Text: "Can't see it in store? We can order parts and bikes in."},
}

// ShopCategories are the category filters offered on the shop page.
var ShopCategories = []string{"All Bikes", "E-Bikes", "Parts", "Sale"}
