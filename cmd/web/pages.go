package main

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"cranks.com.au/web/internal/cms"
	"cranks.com.au/web/internal/commerce"
	handlersPkg "cranks.com.au/web/internal/handlers"
	"cranks.com.au/web/internal/observability"
	"cranks.com.au/web/internal/seo"
)

const (
	metaDescriptionLimit = 160
	shopDescription      = "Premium bikes, parts, and accessories. Mountain bikes, road bikes, e-bikes, and cycling gear."
)

// HomeHandler renders the landing page.
func (a *app) HomeHandler(w http.ResponseWriter, r *http.Request) {
	var (
		settings cms.SiteSettings
		home     cms.HomePage
	)
	// A failed page fetch must not cancel the settings lookup beside it.
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		services, err := a.cms.Services(ctx)
		if err != nil {
			return err
		}
		home, err = a.cms.HomePage(ctx, services)
		return err
	})
	if err := g.Wait(); err != nil {
		a.ErrorHandler(w, r)
		return
	}

	vm := a.newPage(r, settings, pageMeta{
		Title:       home.Title,
		Description: home.SEODescription,
		Image:       home.HeroImage.URL,
	})
	vm.Home = &handlersPkg.HomeView{Page: home, Highlights: handlersPkg.HomeHighlights}
	addJSONLD(&vm, seo.LocalBusiness(a.businessFor(settings), []seo.Offer{
		{Type: "Product", Name: "Mountain Bikes"},
		{Type: "Product", Name: "Road Bikes"},
		{Type: "Product", Name: "E-Bikes"},
		{Type: "Service", Name: "Bike Repair and Service"},
	}))
	renderPage(w, r, "home", http.StatusOK, vm)
}

// ShopHandler renders the store page with the product browser mount point.
func (a *app) ShopHandler(w http.ResponseWriter, r *http.Request) {
	settings := a.settings.Resolve(r.Context())
	category := strings.TrimSpace(r.URL.Query().Get("category"))

	title := "Shop Bikes, Parts & Accessories"
	if category != "" {
		title = category + " | Shop"
	}
	vm := a.newPage(r, settings, pageMeta{Title: title, Description: shopDescription})
	vm.Shop = &handlersPkg.ShopView{
		Category:   category,
		Categories: handlersPkg.ShopCategories,
		Widget:     a.embed,
	}
	addJSONLD(&vm, seo.Store(a.businessFor(settings), shopDescription, a.absoluteURL("/shop")))
	renderPage(w, r, "shop", http.StatusOK, vm)
}

// ProductHandler renders a product detail page.
func (a *app) ProductHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var (
		settings cms.SiteSettings
		product  commerce.Product
	)
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		product, err = a.catalog.ProductDetail(ctx, id)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, commerce.ErrNotFound) {
			a.NotFoundHandler(w, r)
			return
		}
		observability.FromContext(r.Context()).Error("product page failed", zap.String("product_id", id), zap.Error(err))
		a.ErrorHandler(w, r)
		return
	}

	desc := product.ShortDescription
	if desc == "" {
		desc = seo.Excerpt(string(product.Description), metaDescriptionLimit)
	}
	vm := a.newPage(r, settings, pageMeta{
		Title:       product.Name,
		Description: desc,
		Image:       product.PrimaryImage(),
		OGType:      "product",
		Leaf:        product.Name,
	})
	view := &handlersPkg.ProductView{Product: product, BuyInStore: product.WidgetID == 0}
	if product.WidgetID > 0 {
		view.Widget = a.embed.ForProduct(product.WidgetID)
	}
	vm.Product = view
	addJSONLD(&vm, seo.Product(seo.ProductInfo{
		Name:        product.Name,
		Description: desc,
		URL:         vm.SEO.Canonical,
		Image:       a.absoluteURL(product.PrimaryImage()),
		SKU:         product.SKU,
		Brand:       product.Brand,
		Price:       product.Price,
		Currency:    product.Currency,
		InStock:     product.InStock,
		Rating:      product.Rating,
		Reviews:     product.Reviews,
	}))
	renderPage(w, r, "product", http.StatusOK, vm)
}

// ServicesHandler renders the workshop services page.
func (a *app) ServicesHandler(w http.ResponseWriter, r *http.Request) {
	var (
		settings cms.SiteSettings
		services []cms.Service
	)
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		services, err = a.cms.Services(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		a.ErrorHandler(w, r)
		return
	}

	vm := a.newPage(r, settings, pageMeta{
		Title:       "Our Services - Expert Bike Repairs & Sales",
		Description: "Professional bike services in Chatswood: expert repairs, bike sales, free 3-month service, stock ordering. 30+ years experience.",
		Keywords:    []string{"bike service Chatswood", "bike repair Sydney", "bike mechanic North Shore", "e-bike service"},
	})
	vm.Services = &handlersPkg.ServicesView{Services: services, Perks: handlersPkg.ServicePerks}
	offers := make([]seo.Offer, 0, len(services))
	for _, s := range services {
		offers = append(offers, seo.Offer{Type: "Service", Name: s.Title, Description: s.Summary})
	}
	addJSONLD(&vm, seo.ServiceCatalog(a.businessFor(settings), offers))
	renderPage(w, r, "services", http.StatusOK, vm)
}

// AboutHandler renders the about page.
func (a *app) AboutHandler(w http.ResponseWriter, r *http.Request) {
	a.contentPage(w, r, "about-us", "about", pageMeta{
		Title:       "About Us - 30+ Years Experience",
		Description: "Learn about Cranks Bikes, your trusted independent bike shop in Chatswood. Serving Sydney's North Shore for over 30 years with expert advice and quality service.",
	}, seo.AboutPage)
}

// ContactHandler renders the contact page.
func (a *app) ContactHandler(w http.ResponseWriter, r *http.Request) {
	a.contentPage(w, r, "contact", "contact", pageMeta{
		Title:       "Contact Us - Get Expert Bike Advice",
		Description: "Contact Cranks Bikes in Chatswood. Call 02 9417 3776 for expert bike advice. Open 7 days. 352A Penshurst Street, Chatswood NSW 2067.",
	}, seo.ContactPage)
}

// contentPage renders a page whose body copy is editable content. When the
// copy cannot be loaded the template's built-in copy is shown.
func (a *app) contentPage(w http.ResponseWriter, r *http.Request, slug, tmpl string, m pageMeta, schema func(seo.Business) map[string]any) {
	var (
		settings cms.SiteSettings
		page     *cms.ContentPage
	)
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		p, err := a.cms.ContentPage(ctx, slug)
		if err != nil {
			if !errors.Is(err, cms.ErrNotFound) {
				observability.FromContext(r.Context()).Warn("content page unavailable; using built-in copy",
					zap.String("slug", slug), zap.Error(err))
			}
			return nil
		}
		page = &p
		return nil
	})
	_ = g.Wait()

	if page != nil {
		if page.SEO.Title != "" {
			m.Title = page.SEO.Title
		}
		if page.SEO.Description != "" {
			m.Description = page.SEO.Description
		}
		m.Image = page.SEO.OGImage
	}
	vm := a.newPage(r, settings, m)
	vm.Content = page
	addJSONLD(&vm, schema(a.businessFor(settings)))
	renderPage(w, r, tmpl, http.StatusOK, vm)
}

// BlogHandler lists blog posts.
func (a *app) BlogHandler(w http.ResponseWriter, r *http.Request) {
	var (
		settings cms.SiteSettings
		posts    []cms.Post
	)
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		posts, err = a.cms.Posts(ctx)
		if err != nil {
			a.cms.LogFetchError("posts", err)
			posts = nil
		}
		return nil
	})
	_ = g.Wait()

	vm := a.newPage(r, settings, pageMeta{
		Title:       "Blog - Riding Tips, News & Workshop Notes",
		Description: "News, riding tips and workshop notes from the team at Cranks Bike Shop in Chatswood.",
	})
	view := &handlersPkg.BlogView{Posts: posts}
	for i := range posts {
		if posts[i].Featured {
			view.Featured = &posts[i]
			break
		}
	}
	vm.Blog = view
	renderPage(w, r, "blog", http.StatusOK, vm)
}

// PostHandler renders a single blog post.
func (a *app) PostHandler(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var (
		settings cms.SiteSettings
		post     cms.Post
	)
	var g errgroup.Group
	ctx := r.Context()
	g.Go(func() error {
		settings = a.settings.Resolve(ctx)
		return nil
	})
	g.Go(func() error {
		var err error
		post, err = a.cms.Post(ctx, slug)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, cms.ErrNotFound) {
			a.NotFoundHandler(w, r)
			return
		}
		a.cms.LogFetchError("post", err)
		a.renderError(w, r, http.StatusServiceUnavailable, "Blog temporarily unavailable",
			"We couldn't load this article right now. Please try again in a moment.")
		return
	}

	desc := post.SEODescription
	if desc == "" {
		desc = post.Excerpt
	}
	if desc == "" {
		desc = seo.Excerpt(string(post.Body), metaDescriptionLimit)
	}
	vm := a.newPage(r, settings, pageMeta{
		Title:       post.Title,
		Description: desc,
		Keywords:    post.Tags,
		Image:       post.FeaturedImage.URL,
		OGType:      "article",
		Leaf:        post.Title,
	})
	vm.Post = &post
	published := ""
	if !post.PublishedAt.IsZero() {
		published = post.PublishedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	addJSONLD(&vm, seo.Article(post.Title, vm.SEO.Canonical, a.absoluteURL(post.FeaturedImage.URL), post.Author, published))
	renderPage(w, r, "post", http.StatusOK, vm)
}

// NotFoundHandler renders the 404 page.
func (a *app) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	a.renderError(w, r, http.StatusNotFound, "Page not found",
		"The page you were looking for has moved or no longer exists.")
}

// ErrorHandler renders the generic error page with a reload action.
func (a *app) ErrorHandler(w http.ResponseWriter, r *http.Request) {
	a.renderError(w, r, http.StatusInternalServerError, "Something went wrong",
		"An unexpected error occurred. Please reload the page to try again.")
}

func (a *app) renderError(w http.ResponseWriter, r *http.Request, status int, heading, message string) {
	// Settings resolution never fails, but it may itself be what panicked.
	settings := cms.FallbackSiteSettings()
	if status != http.StatusInternalServerError {
		settings = a.settings.Resolve(r.Context())
	}
	vm := a.newPage(r, settings, pageMeta{Title: heading, Description: message})
	vm.SEO.Robots = "noindex"
	vm.SEO.JSONLD = nil
	vm.Breadcrumbs = nil
	vm.Error = &handlersPkg.ErrorView{
		Status:  status,
		Heading: heading,
		Message: message,
		Reload:  status >= http.StatusInternalServerError,
	}
	w.Header().Set("Cache-Control", "no-store")
	renderPage(w, r, "error", status, vm)
}
