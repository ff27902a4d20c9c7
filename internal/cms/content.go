package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ContentPage is a static page sourced from the CMS or local markdown.
type ContentPage struct {
	Slug      string
	Title     string
	Summary   string
	Body      template.HTML
	UpdatedAt time.Time
	Source    string // "cms" or "markdown"
	SEO       ContentSEO
}

// ContentSEO holds optional metadata overrides for static pages.
type ContentSEO struct {
	Title       string
	Description string
	OGImage     string
}

type contentFrontMatter struct {
	Title     string                `yaml:"title"`
	Summary   string                `yaml:"summary"`
	UpdatedAt string                `yaml:"updated_at"`
	SEO       contentFrontMatterSEO `yaml:"seo"`
}

type contentFrontMatterSEO struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	OGImage     string `yaml:"og_image"`
}

const (
	defaultContentDir = "content"
	contentSourceCMS  = "cms"
	contentSourceMD   = "markdown"
)

const pageQuery = `*[_type == "page" && slug.current == $slug][0] {
  title,
  summary,
  body,
  _updatedAt,
  seo
}`

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM, extension.Typographer),
	goldmark.WithParserOptions(parser.WithAutoHeadingID()),
)

var (
	pageCache = struct {
		mu    sync.RWMutex
		items map[string]pageCacheEntry
	}{
		items: map[string]pageCacheEntry{},
	}
	pageCacheTTL = 5 * time.Minute
)

type pageCacheEntry struct {
	page    ContentPage
	expires time.Time
}

// SetContentCacheDuration overrides the page cache duration (primarily for tests).
func SetContentCacheDuration(d time.Duration) {
	if d <= 0 {
		d = time.Minute
	}
	pageCacheTTL = d
}

// ResetContentCache drops cached pages.
func ResetContentCache() {
	pageCache.mu.Lock()
	defer pageCache.mu.Unlock()
	pageCache.items = map[string]pageCacheEntry{}
}

// ContentDir returns the configured markdown directory.
func (c *Client) ContentDir() string {
	if c == nil || strings.TrimSpace(c.cfg.ContentDir) == "" {
		return defaultContentDir
	}
	return c.cfg.ContentDir
}

// ContentPage fetches a static page, preferring a CMS "page" document and
// falling back to content/pages/<slug>.md.
func (c *Client) ContentPage(ctx context.Context, slug string) (ContentPage, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return ContentPage{}, ErrNotFound
	}
	if page, ok := cachedPage(slug); ok {
		return page, nil
	}

	page, err := c.fetchContentPage(ctx, slug)
	if err != nil {
		return ContentPage{}, err
	}
	storePage(slug, page)
	return page, nil
}

func (c *Client) fetchContentPage(ctx context.Context, slug string) (ContentPage, error) {
	if c.Configured() {
		page, err := c.fetchContentPageRemote(ctx, slug)
		if err == nil {
			return page, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.Logger().Warn("content page fetch failed; using local markdown", zap.String("slug", slug), zap.Error(err))
		}
	}
	return readContentMarkdown(c.ContentDir(), slug)
}

func (c *Client) fetchContentPageRemote(ctx context.Context, slug string) (ContentPage, error) {
	var raw struct {
		Title     string          `json:"title"`
		Summary   string          `json:"summary"`
		Body      json.RawMessage `json:"body"`
		UpdatedAt string          `json:"_updatedAt"`
		SEO       struct {
			MetaTitle       string `json:"metaTitle"`
			MetaDescription string `json:"metaDescription"`
		} `json:"seo"`
	}
	if err := c.Query(ctx, pageQuery, map[string]any{"slug": slug}, &raw); err != nil {
		return ContentPage{}, err
	}
	body := c.RenderPortableText(raw.Body)
	if strings.TrimSpace(string(body)) == "" {
		return ContentPage{}, fmt.Errorf("cms: empty body for page %s", slug)
	}
	return ContentPage{
		Slug:      slug,
		Title:     firstNonEmpty(strings.TrimSpace(raw.Title), prettifySlug(slug)),
		Summary:   strings.TrimSpace(raw.Summary),
		Body:      body,
		UpdatedAt: parseContentDate(raw.UpdatedAt),
		Source:    contentSourceCMS,
		SEO: ContentSEO{
			Title:       strings.TrimSpace(raw.SEO.MetaTitle),
			Description: strings.TrimSpace(raw.SEO.MetaDescription),
		},
	}, nil
}

func readContentMarkdown(contentDir, slug string) (ContentPage, error) {
	file := filepath.Join(contentDir, "pages", slug+".md")
	data, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ContentPage{}, ErrNotFound
		}
		return ContentPage{}, err
	}
	fm, body := splitFrontMatter(string(data))
	front := contentFrontMatter{}
	if strings.TrimSpace(fm) != "" {
		if err := yaml.Unmarshal([]byte(fm), &front); err != nil {
			return ContentPage{}, fmt.Errorf("cms: parse front matter %s: %w", file, err)
		}
	}
	html, err := RenderMarkdown(body)
	if err != nil {
		return ContentPage{}, fmt.Errorf("cms: render %s: %w", file, err)
	}
	page := ContentPage{
		Slug:      slug,
		Title:     strings.TrimSpace(front.Title),
		Summary:   strings.TrimSpace(front.Summary),
		Body:      html,
		UpdatedAt: parseContentDate(front.UpdatedAt),
		Source:    contentSourceMD,
		SEO: ContentSEO{
			Title:       strings.TrimSpace(front.SEO.Title),
			Description: strings.TrimSpace(front.SEO.Description),
			OGImage:     strings.TrimSpace(front.SEO.OGImage),
		},
	}
	if page.UpdatedAt.IsZero() {
		if info, err := os.Stat(file); err == nil {
			page.UpdatedAt = info.ModTime()
		}
	}
	if page.Title == "" {
		page.Title = prettifySlug(slug)
	}
	return page, nil
}

// RenderMarkdown converts markdown to sanitised HTML.
func RenderMarkdown(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return SanitizeHTML(buf.String()), nil
}

func splitFrontMatter(input string) (string, string) {
	input = strings.TrimLeft(input, "\ufeff")
	lines := strings.Split(input, "\n")
	if len(lines) == 0 {
		return "", ""
	}
	if strings.TrimSpace(lines[0]) != "---" {
		return "", input
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == "---" {
			fm := strings.Join(lines[1:i], "\n")
			body := strings.Join(lines[i+1:], "\n")
			return fm, strings.TrimLeft(body, "\n\r")
		}
	}
	return "", input
}

func parseContentDate(v string) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006/01/02",
		"2006-1-2",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t
		}
	}
	return time.Time{}
}

func prettifySlug(slug string) string {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return slug
	}
	parts := strings.Split(slug, "-")
	for i, part := range parts {
		if part == "" {
			continue
		}
		runes := []rune(part)
		runes[0] = asciiUpper(runes[0])
		parts[i] = string(runes)
	}
	return strings.Join(parts, " ")
}

func sanitizeSlug(slug string) string {
	slug = strings.TrimSpace(strings.ToLower(slug))
	slug = strings.Trim(slug, "/")
	if slug == "" {
		return ""
	}
	if strings.Contains(slug, "..") {
		return ""
	}
	if strings.ContainsAny(slug, `/\`) {
		return ""
	}
	return slug
}

func cachedPage(key string) (ContentPage, bool) {
	now := time.Now()
	pageCache.mu.RLock()
	entry, ok := pageCache.items[key]
	pageCache.mu.RUnlock()
	if !ok || now.After(entry.expires) {
		return ContentPage{}, false
	}
	return entry.page, true
}

func storePage(key string, page ContentPage) {
	pageCache.mu.Lock()
	defer pageCache.mu.Unlock()
	pageCache.items[key] = pageCacheEntry{
		page:    page,
		expires: time.Now().Add(pageCacheTTL),
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func asciiUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - ('a' - 'A')
	}
	return r
}
