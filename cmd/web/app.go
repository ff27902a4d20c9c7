package main

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"cranks.com.au/web/internal/cms"
	"cranks.com.au/web/internal/commerce"
	"cranks.com.au/web/internal/config"
	handlersPkg "cranks.com.au/web/internal/handlers"
	mw "cranks.com.au/web/internal/middleware"
	"cranks.com.au/web/internal/seo"
)

// app holds the per-process dependencies shared by every handler.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	cms       *cms.Client
	settings  *cms.SettingsResolver
	catalog   *commerce.Catalog
	embed     commerce.Embed
	business  seo.Business
	analytics handlersPkg.Analytics
	now       func() time.Time
}

type appOption func(*app)

// withCMS replaces the content client, e.g. with one pointed at a test server.
func withCMS(c *cms.Client) appOption {
	return func(a *app) { a.cms = c }
}

// withProducts replaces the product lookup behind the catalog.
func withProducts(p commerce.ProductLookup) appOption {
	return func(a *app) { a.catalog = commerce.NewCatalog(p, cms.SanitizeHTML, a.logger) }
}

func newCMSClient(cfg *config.Config, logger *zap.Logger) *cms.Client {
	return cms.NewClient(cms.Config{
		ProjectID:  cfg.Sanity.ProjectID,
		Dataset:    cfg.Sanity.Dataset,
		APIVersion: cfg.Sanity.APIVersion,
		Token:      cfg.Sanity.Token,
		UseCDN:     cfg.Sanity.UseCDN,
		Timeout:    cfg.Sanity.Timeout,
		CacheTTL:   cfg.Sanity.CacheTTL,
		ContentDir: cfg.Server.ContentDir,
	}, cms.WithLogger(logger.Named("cms")))
}

func newApp(cfg *config.Config, logger *zap.Logger, opts ...appOption) *app {
	if logger == nil {
		logger = zap.NewNop()
	}
	store := commerce.NewClient(commerce.Config{
		StoreID:  cfg.Ecwid.StoreID,
		Token:    cfg.Ecwid.SecretToken,
		APIURL:   cfg.Ecwid.APIURL,
		Timeout:  cfg.Ecwid.Timeout,
		CacheTTL: cfg.Ecwid.CacheTTL,
	}, commerce.WithLogger(logger.Named("commerce")))

	a := &app{
		cfg:       cfg,
		logger:    logger,
		cms:       newCMSClient(cfg, logger),
		embed:     commerce.NewEmbed(cfg.Ecwid.StoreID, cfg.Ecwid.ScriptBase),
		business:  seo.Cranks(cfg.Site.BaseURL),
		analytics: handlersPkg.AnalyticsFromConfig(cfg.Analytics),
		now:       time.Now,
	}
	a.catalog = commerce.NewCatalog(store, cms.SanitizeHTML, logger.Named("catalog"))
	for _, opt := range opts {
		opt(a)
	}
	var fetcher cms.SettingsFetcher
	if a.cms.Configured() {
		fetcher = a.cms
	}
	a.settings = cms.NewSettingsResolver(fetcher, logger.Named("settings"))
	return a
}

// routes builds the site router. extra registers additional routes behind
// the same middleware stack.
func (a *app) routes(extra ...func(chi.Router)) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	// If deployed behind a trusted reverse proxy/load balancer, RealIP will use
	// X-Forwarded-For to determine the client IP. Ensure only trusted proxies
	// can set these headers in production environments.
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(a.logger))
	r.Use(mw.Recover(a.ErrorHandler))
	r.Use(middleware.Compress(5))
	if d := a.cfg.Server.RequestTimeout; d > 0 {
		r.Use(middleware.Timeout(d))
	}

	// Health check
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	// Static assets under /assets/
	assets := http.StripPrefix("/assets", mw.AssetsWithCache(filepath.Join(publicDir, "assets"), devMode))
	r.Handle("/assets/*", assets)

	r.Get("/", a.HomeHandler)
	r.Get("/shop", a.ShopHandler)
	r.Get("/shop/product/{id}", a.ProductHandler)
	r.Get("/about-us", a.AboutHandler)
	r.Get("/our-services", a.ServicesHandler)
	r.Get("/contact", a.ContactHandler)
	r.Get("/blog", a.BlogHandler)
	r.Get("/blog/{slug}", a.PostHandler)

	r.Get("/sitemap.xml", a.SitemapHandler)
	r.Get("/robots.txt", a.RobotsHandler)

	r.Route("/api", func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"https://*", "http://*"},
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
		r.Get("/site-settings", a.SiteSettingsAPI)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			mw.WriteJSONError(w, r, http.StatusNotFound, "not_found", "no such endpoint")
		})
	})

	// Trailing-slash links from the navigation settings resolve to the canonical page.
	r.Get("/our-services/", redirectTo("/our-services"))
	r.Get("/about-us/", redirectTo("/about-us"))

	for _, add := range extra {
		add(r)
	}

	r.NotFound(a.NotFoundHandler)
	return r
}

func redirectTo(target string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, target, http.StatusMovedPermanently)
	}
}
