package seo

import (
	"encoding/xml"
	"io"
	"strconv"
	"strings"
	"time"
)

const sitemapNS = "http://www.sitemaps.org/schemas/sitemap/0.9"

// SitemapEntry is one <url> of a sitemap.
type SitemapEntry struct {
	Path         string
	LastModified time.Time
	ChangeFreq   string
	Priority     float64
}

type urlset struct {
	XMLName xml.Name     `xml:"urlset"`
	NS      string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string `xml:"loc"`
	LastMod    string `xml:"lastmod,omitempty"`
	ChangeFreq string `xml:"changefreq,omitempty"`
	Priority   string `xml:"priority,omitempty"`
}

// StaticPages lists the fixed routes with their crawl hints.
func StaticPages(now time.Time) []SitemapEntry {
	return []SitemapEntry{
		{Path: "/", LastModified: now, ChangeFreq: "daily", Priority: 1},
		{Path: "/shop", LastModified: now, ChangeFreq: "daily", Priority: 0.9},
		{Path: "/our-services", LastModified: now, ChangeFreq: "weekly", Priority: 0.8},
		{Path: "/about-us", LastModified: now, ChangeFreq: "monthly", Priority: 0.7},
		{Path: "/contact", LastModified: now, ChangeFreq: "monthly", Priority: 0.7},
		{Path: "/blog", LastModified: now, ChangeFreq: "weekly", Priority: 0.6},
	}
}

// WriteSitemap writes entries as a sitemap document rooted at baseURL.
func WriteSitemap(w io.Writer, baseURL string, entries []SitemapEntry) error {
	baseURL = strings.TrimRight(baseURL, "/")
	set := urlset{NS: sitemapNS, URLs: make([]sitemapURL, 0, len(entries))}
	for _, e := range entries {
		u := sitemapURL{Loc: baseURL + e.Path, ChangeFreq: e.ChangeFreq}
		if e.Path == "/" {
			u.Loc = baseURL
		}
		if !e.LastModified.IsZero() {
			u.LastMod = e.LastModified.UTC().Format("2006-01-02")
		}
		if e.Priority > 0 {
			u.Priority = strconv.FormatFloat(min(e.Priority, 1), 'f', 1, 64)
		}
		set.URLs = append(set.URLs, u)
	}
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(set); err != nil {
		return err
	}
	return enc.Flush()
}
