package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gopkg.in/yaml.v3"

	"cranks.com.au/web/internal/cms"
	"cranks.com.au/web/internal/commerce"
	"cranks.com.au/web/internal/config"
)

// contentServer answers GROQ queries by document type.
type contentServer struct {
	mu      sync.Mutex
	results map[string]string
	status  int
}

func newContentServer(t *testing.T) (*contentServer, *httptest.Server) {
	t.Helper()
	cs := &contentServer{results: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cs.mu.Lock()
		defer cs.mu.Unlock()
		if cs.status != 0 {
			w.WriteHeader(cs.status)
			_, _ = io.WriteString(w, `{"error":{"description":"unavailable"}}`)
			return
		}
		q := r.URL.Query().Get("query")
		for docType, body := range cs.results {
			if strings.Contains(q, `_type == "`+docType+`"`) {
				_, _ = io.WriteString(w, `{"ms":1,"result":`+body+`}`)
				return
			}
		}
		_, _ = io.WriteString(w, `{"ms":1,"result":null}`)
	}))
	t.Cleanup(srv.Close)
	return cs, srv
}

func (cs *contentServer) set(docType, body string) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.results[docType] = body
}

func (cs *contentServer) fail(status int) {
	cs.mu.Lock()
	defer cs.mu.Unlock()
	cs.status = status
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Site.BaseURL = "https://cranks.test"
	cfg.Server.ContentDir = "../../content"
	return cfg
}

func cmsFor(srv *httptest.Server) *cms.Client {
	return cms.NewClient(cms.Config{
		ProjectID:  "test",
		Dataset:    "production",
		BaseURL:    srv.URL,
		ContentDir: "../../content",
	})
}

// newTestRouter builds a router similar to main(), optionally adding extra routes.
func newTestRouter(t *testing.T, add func(r chi.Router), opts ...appOption) http.Handler {
	t.Helper()
	// ensure templates reparse each request and set correct paths
	devMode = true
	templatesDir = "../../templates"
	publicDir = "../../public"
	if _, err := parseTemplates(); err != nil {
		t.Fatalf("parseTemplates failed: %v", err)
	}
	cms.ResetContentCache()
	t.Cleanup(cms.ResetContentCache)

	a := newApp(testConfig(), zap.NewNop(), opts...)
	a.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	if add == nil {
		return a.routes()
	}
	return a.routes(add)
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func document(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rec.Body.String()))
	require.NoError(t, err)
	return doc
}

func jsonLDTypes(doc *goquery.Document) []string {
	var types []string
	doc.Find(`script[type="application/ld+json"]`).Each(func(_ int, s *goquery.Selection) {
		var v map[string]any
		if err := json.Unmarshal([]byte(s.Text()), &v); err == nil {
			if typ, ok := v["@type"].(string); ok {
				types = append(types, typ)
			}
		}
	})
	return types
}

func TestHealthzOK(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d; body=%s", rec.Code, rec.Body.String())
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "ok" {
		t.Fatalf("expected body 'ok', got %q", got)
	}
}

func TestHomeRendersFallbackShell(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := document(t, rec)

	require.Equal(t, "Free service within first 3 months", strings.TrimSpace(doc.Find("[data-header-message]").Text()))
	links := doc.Find(".main-nav__link")
	require.Equal(t, 7, links.Length())
	require.Equal(t, "Home", strings.TrimSpace(doc.Find(".main-nav__link.is-active").Text()))
	require.Equal(t, 1, doc.Find(".main-nav__link.is-special").Length())
	require.Contains(t, doc.Find("[data-footer-contact]").Text(), "02 9417 3776")
	require.Equal(t, 3, doc.Find("[data-footer-hours] li").Length())

	require.Equal(t, "Ride Your Adventure", strings.TrimSpace(doc.Find(".hero__title").Text()))
	require.Equal(t, 3, doc.Find(".featured-services [data-service]").Length())
	require.Contains(t, jsonLDTypes(doc), "BicycleStore")
	canonical, _ := doc.Find(`link[rel="canonical"]`).Attr("href")
	require.Equal(t, "https://cranks.test", canonical)
}

func TestHomeUsesCMSSettingsPerSection(t *testing.T) {
	content, srv := newContentServer(t)
	content.set("siteSettings", `{"headerMessage":"Winter sale on now","navigation":[{"title":"Bikes","href":"/shop"}],"contactInfo":null}`)
	h := newTestRouter(t, nil, withCMS(cmsFor(srv)))

	doc := document(t, get(t, h, "/shop"))
	require.Equal(t, "Winter sale on now", strings.TrimSpace(doc.Find("[data-header-message]").Text()))
	require.Equal(t, 1, doc.Find(".main-nav__link").Length())
	require.Equal(t, "Bikes", strings.TrimSpace(doc.Find(".main-nav__link.is-active").Text()))
	// Sections the document left out come from the fallback.
	require.Contains(t, doc.Find("[data-footer-contact]").Text(), "sales@cranks.com.au")
}

func TestCMSOutageFallsBackAndLogs(t *testing.T) {
	content, srv := newContentServer(t)
	content.fail(http.StatusBadGateway)
	core, logs := observer.New(zapcore.WarnLevel)
	client := cms.NewClient(cms.Config{ProjectID: "test", BaseURL: srv.URL, ContentDir: "../../content"}, cms.WithLogger(zap.New(core)))

	h := newTestRouter(t, nil, withCMS(client))
	rec := get(t, h, "/our-services")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	require.Equal(t, 6, doc.Find(".services [data-service]").Length())
	require.Equal(t, "Free service within first 3 months", strings.TrimSpace(doc.Find("[data-header-message]").Text()))
	require.Contains(t, jsonLDTypes(doc), "Service")
	require.Positive(t, logs.FilterMessage("services fetch failed; using fallback").Len())
}

func TestShopRendersWidgetMountPoint(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/shop?category=Sale")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	mount := doc.Find("[data-store-widget]")
	require.Equal(t, 1, mount.Length())
	id, _ := mount.Attr("id")
	require.Equal(t, "my-store-129297501", id)
	src, _ := mount.Attr("data-script-src")
	require.Equal(t, "https://app.business.shop/script.js?129297501&data_platform=code", src)
	scriptID, _ := mount.Attr("data-script-id")
	require.Equal(t, "ecwid-script-129297501", scriptID)
	raw, _ := mount.Attr("data-directives")
	var directives []string
	require.NoError(t, json.Unmarshal([]byte(raw), &directives))
	require.Equal(t, "id=my-store-129297501", directives[len(directives)-1])

	panel, _ := doc.Find("[data-widget-panel]").Attr("data-widget-panel")
	require.Equal(t, id, panel)
	require.Equal(t, 1, doc.Find(`script[src="/assets/js/storewidget.js"]`).Length())
	require.Equal(t, "Sale", strings.TrimSpace(doc.Find(".main-nav__link.is-active").Text()))
	require.Contains(t, jsonLDTypes(doc), "Store")
}

func TestProductDemoFallback(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/shop/product/trek-fuel-ex-9.7")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	require.Equal(t, "Trek Fuel EX 9.7", strings.TrimSpace(doc.Find(".product h1").Text()))
	require.Equal(t, "$4,999", strings.TrimSpace(doc.Find("[data-price]").Text()))
	require.Equal(t, "$5,499", strings.TrimSpace(doc.Find("[data-original-price]").Text()))
	require.Equal(t, 9, doc.Find(".product__specs tr").Length())
	require.Equal(t, 0, doc.Find("[data-store-widget]").Length())
	require.Equal(t, "Trek Fuel EX 9.7", strings.TrimSpace(doc.Find(".breadcrumbs [aria-current]").Text()))
	types := jsonLDTypes(doc)
	require.Contains(t, types, "Product")
	require.Contains(t, types, "BreadcrumbList")
}

type fakeProducts struct {
	product commerce.APIProduct
	err     error
}

func (f fakeProducts) Configured() bool { return true }

func (f fakeProducts) Product(context.Context, int64) (commerce.APIProduct, error) {
	return f.product, f.err
}

func TestProductFromStoreMountsWidget(t *testing.T) {
	srv := newTestRouter(t, nil, withProducts(fakeProducts{product: commerce.APIProduct{
		ID: 77, Name: "Giant Revolt", Price: 2199, InStock: true, Description: "<p>Gravel <script>x</script>ready</p>",
	}}))
	rec := get(t, srv, "/shop/product/77")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)

	id, _ := doc.Find("[data-store-widget]").Attr("id")
	require.Equal(t, "my-store-129297501-product-77", id)
	require.Equal(t, 0, doc.Find(".product__description script").Length())
	require.Contains(t, doc.Find(".product__description").Text(), "Gravel")
}

func TestProductNotFound(t *testing.T) {
	srv := newTestRouter(t, nil, withProducts(fakeProducts{err: commerce.ErrNotFound}))
	rec := get(t, srv, "/shop/product/404")
	require.Equal(t, http.StatusNotFound, rec.Code)
	status, _ := document(t, rec).Find("[data-error-status]").Attr("data-error-status")
	require.Equal(t, "404", status)
}

func TestAboutUsesMarkdownCopy(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/about-us")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	source, _ := doc.Find("[data-content-source]").Attr("data-content-source")
	require.Equal(t, "markdown", source)
	require.Equal(t, "About Cranks Bikes", strings.TrimSpace(doc.Find(".page-hero h1").Text()))
	require.Contains(t, doc.Find("title").Text(), "About Us - 30+ Years Experience")
	require.Contains(t, jsonLDTypes(doc), "AboutPage")
}

func TestContactPage(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/contact")
	require.Equal(t, http.StatusOK, rec.Code)
	doc := document(t, rec)
	href, _ := doc.Find("[data-contact-details] a[href^='tel:']").Attr("href")
	require.Equal(t, "tel:0294173776", href)
	require.Contains(t, jsonLDTypes(doc), "ContactPage")
}

func TestBlogEmptyWithoutCMS(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/blog")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, 1, document(t, rec).Find("[data-blog-empty]").Length())

	rec = get(t, srv, "/blog/anything")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBlogPostFromCMS(t *testing.T) {
	content, srv := newContentServer(t)
	content.set("post", `{"_id":"p1","title":"Winter Riding Tips","slug":"winter-riding-tips","author":"Sam","publishedAt":"2024-05-20T08:00:00Z",
		"content":[{"_type":"block","style":"normal","children":[{"_type":"span","text":"Lights on, always."}]}]}`)
	h := newTestRouter(t, nil, withCMS(cmsFor(srv)))

	rec := get(t, h, "/blog/winter-riding-tips")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	doc := document(t, rec)
	require.Equal(t, "Winter Riding Tips", strings.TrimSpace(doc.Find(".post h1").Text()))
	require.Contains(t, doc.Find(".post .prose").Text(), "Lights on, always.")
	desc, _ := doc.Find(`meta[name="description"]`).Attr("content")
	require.Equal(t, "Lights on, always.", desc)
	require.Contains(t, jsonLDTypes(doc), "Article")
}

func TestUnknownRouteRenders404(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/no/such/page")
	require.Equal(t, http.StatusNotFound, rec.Code)
	doc := document(t, rec)
	robots, _ := doc.Find(`meta[name="robots"]`).Attr("content")
	require.Equal(t, "noindex", robots)
	require.Equal(t, 0, doc.Find("button[onclick]").Length())
}

func TestPanicRendersErrorPage(t *testing.T) {
	srv := newTestRouter(t, func(r chi.Router) {
		r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	})
	rec := get(t, srv, "/boom")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	doc := document(t, rec)
	require.Equal(t, "Something went wrong", strings.TrimSpace(doc.Find(".error-page h1").Text()))
	require.Equal(t, 1, doc.Find("button[onclick]").Length())
	require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))

	// The server keeps serving after a panic.
	require.Equal(t, http.StatusOK, get(t, srv, "/healthz").Code)
}

func TestSiteSettingsAPI(t *testing.T) {
	srv := newTestRouter(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/api/site-settings", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	var body struct {
		Settings cms.SiteSettings `json:"settings"`
		Widget   struct {
			ContainerID string `json:"containerId"`
		} `json:"widget"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "Cranks Bike Shop", body.Settings.Title)
	require.Len(t, body.Settings.Navigation, 7)
	require.Equal(t, "my-store-129297501", body.Widget.ContainerID)

	rec = get(t, srv, "/api/nope")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "application/json")
}

func TestSitemapAndRobots(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "<loc>https://cranks.test/our-services</loc>")
	require.Contains(t, rec.Body.String(), "<lastmod>2024-06-01</lastmod>")

	rec = get(t, srv, "/robots.txt")
	require.Contains(t, rec.Body.String(), "Sitemap: https://cranks.test/sitemap.xml")
}

func TestTrailingSlashServicesRedirects(t *testing.T) {
	srv := newTestRouter(t, nil)
	rec := get(t, srv, "/our-services/")
	require.Equal(t, http.StatusMovedPermanently, rec.Code)
	require.Equal(t, "/our-services", rec.Header().Get("Location"))
}

func TestSettingsCommandPrintsFallbackYAML(t *testing.T) {
	for _, key := range []string{"SANITY_PROJECT_ID", "SANITY_DATASET", "SANITY_API_TOKEN", "LOG_LEVEL"} {
		t.Setenv(key, "")
	}
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"settings", "--config", ""})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		cfgFile = "cranks-web.yml"
	})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))

	var got cms.SiteSettings
	require.NoError(t, yaml.Unmarshal(out.Bytes(), &got), out.String())
	want := cms.FallbackSiteSettings()
	require.Equal(t, want.Title, got.Title)
	require.Equal(t, want.ContactInfo, got.ContactInfo)
	require.Equal(t, want.BusinessHours, got.BusinessHours)
	require.Equal(t, want.HeaderMessage, got.HeaderMessage)
	require.Equal(t, want.Navigation, got.Navigation)
	require.Equal(t, want.SocialMedia, got.SocialMedia)
}
