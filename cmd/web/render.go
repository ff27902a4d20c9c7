package main

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"cranks.com.au/web/internal/format"
	"cranks.com.au/web/internal/observability"
)

var (
	templatesDir = "templates"
	publicDir    = "public"
	// devMode reparses templates on every request.
	devMode bool

	tmplMu    sync.RWMutex
	tmplCache map[string]*template.Template
)

var funcMap = template.FuncMap{
	"now":     time.Now,
	"price":   format.Price,
	"date":    format.Date,
	"isoDate": format.ISODate,
	// jsonld marks pre-encoded JSON as safe inside <script type="application/ld+json">.
	"jsonld": func(s string) template.JS { return template.JS(s) },
	"join":   strings.Join,
	"add":    func(a, b int) int { return a + b },
	// telHref returns a tel: URL; html/template would otherwise reject the scheme.
	"telHref": func(phone string) template.URL {
		var b strings.Builder
		for _, r := range phone {
			if (r >= '0' && r <= '9') || r == '+' {
				b.WriteRune(r)
			}
		}
		return template.URL("tel:" + b.String())
	},
}

// parseTemplates parses the shared layouts and partials once and clones
// them for every file under pages/, so each page can define its own
// "content" block. The map is keyed by page file name without extension.
func parseTemplates() (map[string]*template.Template, error) {
	var shared, pages []string
	// Recursively discover all .tmpl files. Note: ParseGlob doesn't support **.
	if err := filepath.WalkDir(templatesDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".tmpl") {
			return nil
		}
		rel, err := filepath.Rel(templatesDir, path)
		if err != nil {
			return err
		}
		if strings.HasPrefix(filepath.ToSlash(rel), "pages/") {
			pages = append(pages, path)
		} else {
			shared = append(shared, path)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	if len(shared) == 0 || len(pages) == 0 {
		return nil, fmt.Errorf("no templates found under %s", templatesDir)
	}

	root, err := template.New("_root").Funcs(funcMap).ParseFiles(shared...)
	if err != nil {
		return nil, err
	}
	out := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		clone, err := root.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFiles(page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		out[strings.TrimSuffix(filepath.Base(page), ".tmpl")] = clone
	}
	return out, nil
}

func loadTemplates() error {
	set, err := parseTemplates()
	if err != nil {
		return err
	}
	tmplMu.Lock()
	tmplCache = set
	tmplMu.Unlock()
	return nil
}

func templateFor(page string) (*template.Template, error) {
	if devMode {
		set, err := parseTemplates()
		if err != nil {
			return nil, fmt.Errorf("template parse error: %w", err)
		}
		if t, ok := set[page]; ok {
			return t, nil
		}
		return nil, fmt.Errorf("unknown page template %q", page)
	}
	tmplMu.RLock()
	defer tmplMu.RUnlock()
	if tmplCache == nil {
		return nil, fmt.Errorf("template not initialized")
	}
	t, ok := tmplCache[page]
	if !ok {
		return nil, fmt.Errorf("unknown page template %q", page)
	}
	return t, nil
}

// renderPage executes the base layout with the named page. The page is
// rendered into a buffer first so a failing template never sends half a
// document.
func renderPage(w http.ResponseWriter, r *http.Request, page string, status int, data any) {
	logger := observability.FromContext(r.Context())
	t, err := templateFor(page)
	if err != nil {
		logger.Error("template lookup failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("template exec failed", zap.String("page", page), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
