// Package cms reads site content from the headless CMS query API and keeps
// the storefront running on built-in fallback content when it is absent.
package cms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"cranks.com.au/web/internal/observability"
)

var (
	// ErrNotFound indicates the query matched no document.
	ErrNotFound = errors.New("cms: not found")
	// ErrNotConfigured indicates no project id is set; callers use fallback content.
	ErrNotConfigured = errors.New("cms: not configured")
)

const (
	defaultDataset    = "production"
	defaultAPIVersion = "2024-01-01"
	defaultTimeout    = 5 * time.Second
	defaultCacheTTL   = 5 * time.Minute
	maxResponseBytes  = 4 << 20
)

// ContentFetchError reports a failed or malformed query response.
type ContentFetchError struct {
	Query      string
	StatusCode int
	Err        error
}

func (e *ContentFetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("cms: query %s: status %d: %v", e.Query, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("cms: query %s: %v", e.Query, e.Err)
}

func (e *ContentFetchError) Unwrap() error { return e.Err }

// Config identifies a project/dataset on the query API.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	Token      string
	UseCDN     bool
	Timeout    time.Duration
	CacheTTL   time.Duration
	// BaseURL replaces the derived API host, e.g. for a proxy.
	BaseURL string
	// ContentDir holds the local markdown pages.
	ContentDir string
}

// Client runs GROQ queries with an in-memory TTL cache. Concurrent identical
// queries share one request.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time

	group   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]cacheEntry
}

type cacheEntry struct {
	raw     json.RawMessage
	expires time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		c.logger = observability.OrNop(l)
	}
}

// NewClient builds a client. A Config without ProjectID yields a client that
// always reports ErrNotConfigured.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.ProjectID = strings.TrimSpace(cfg.ProjectID)
	if cfg.Dataset == "" {
		cfg.Dataset = defaultDataset
	}
	cfg.APIVersion = strings.TrimPrefix(strings.TrimSpace(cfg.APIVersion), "v")
	if cfg.APIVersion == "" {
		cfg.APIVersion = defaultAPIVersion
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	c := &Client{
		cfg:    cfg,
		http:   &http.Client{Timeout: cfg.Timeout},
		logger: zap.NewNop(),
		tracer: observability.Tracer("cranks.com.au/web/internal/cms"),
		now:    time.Now,
		cache:  map[string]cacheEntry{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether remote queries are enabled.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.ProjectID != ""
}

// Logger returns the client's logger.
func (c *Client) Logger() *zap.Logger {
	if c == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Query runs groq with params and decodes the result into dst. A null
// result yields ErrNotFound.
func (c *Client) Query(ctx context.Context, groq string, params map[string]any, dst any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	endpoint, err := c.queryURL(groq, params)
	if err != nil {
		return &ContentFetchError{Query: queryName(groq), Err: err}
	}

	raw, ok := c.cached(endpoint)
	if !ok {
		// The shared fetch outlives any one caller; the client timeout bounds it.
		ch := c.group.DoChan(endpoint, func() (any, error) {
			raw, err := c.fetch(context.WithoutCancel(ctx), groq, endpoint)
			if err != nil {
				return nil, err
			}
			c.store(endpoint, raw)
			return raw, nil
		})
		select {
		case <-ctx.Done():
			return &ContentFetchError{Query: queryName(groq), Err: ctx.Err()}
		case res := <-ch:
			if res.Err != nil {
				return res.Err
			}
			raw = res.Val.(json.RawMessage)
		}
	}

	if len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ErrNotFound
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return &ContentFetchError{Query: queryName(groq), Err: fmt.Errorf("decode result: %w", err)}
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, groq, endpoint string) (json.RawMessage, error) {
	name := queryName(groq)
	ctx, span := observability.StartClientSpan(ctx, c.tracer, "cms.query",
		attribute.String("cms.dataset", c.cfg.Dataset),
		attribute.String("cms.query", name),
	)
	var err error
	defer func() { observability.EndSpan(span, err) }()

	start := c.now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ContentFetchError{Query: name, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		err = &ContentFetchError{Query: name, Err: err}
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		err = &ContentFetchError{Query: name, StatusCode: resp.StatusCode, Err: err}
		return nil, err
	}
	if resp.StatusCode >= 400 {
		err = &ContentFetchError{Query: name, StatusCode: resp.StatusCode, Err: errors.New(apiErrorMessage(body, resp.Status))}
		return nil, err
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
		Ms     int             `json:"ms"`
	}
	if err = json.Unmarshal(body, &envelope); err != nil {
		err = &ContentFetchError{Query: name, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode envelope: %w", err)}
		return nil, err
	}
	c.logger.Debug("cms query",
		zap.String("query", name),
		zap.Int("status", resp.StatusCode),
		zap.Int("server_ms", envelope.Ms),
		zap.Duration("latency", c.now().Sub(start)),
	)
	return envelope.Result, nil
}

func (c *Client) queryURL(groq string, params map[string]any) (string, error) {
	base := strings.TrimRight(strings.TrimSpace(c.cfg.BaseURL), "/")
	if base == "" {
		host := "api.sanity.io"
		if c.cfg.UseCDN && c.cfg.Token == "" {
			host = "apicdn.sanity.io"
		}
		base = "https://" + c.cfg.ProjectID + "." + host
	}
	endpoint, err := url.JoinPath(base, "v"+c.cfg.APIVersion, "data", "query", c.cfg.Dataset)
	if err != nil {
		return "", err
	}
	q := url.Values{}
	q.Set("query", strings.TrimSpace(groq))
	q.Set("perspective", "published")
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		v, err := json.Marshal(params[k])
		if err != nil {
			return "", fmt.Errorf("encode param %s: %w", k, err)
		}
		q.Set("$"+k, string(v))
	}
	return endpoint + "?" + q.Encode(), nil
}

func (c *Client) cached(key string) (json.RawMessage, bool) {
	c.cacheMu.RLock()
	entry, ok := c.cache[key]
	c.cacheMu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.raw, true
}

func (c *Client) store(key string, raw json.RawMessage) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cacheEntry{raw: raw, expires: c.now().Add(c.cfg.CacheTTL)}
}

// Purge drops every cached result.
func (c *Client) Purge() {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache = map[string]cacheEntry{}
}

// queryName extracts the document type of a `*[_type == "x"]` query for
// logs and spans.
func queryName(groq string) string {
	const marker = `_type == "`
	i := strings.Index(groq, marker)
	if i < 0 {
		return "query"
	}
	rest := groq[i+len(marker):]
	if j := strings.IndexByte(rest, '"'); j > 0 {
		return rest[:j]
	}
	return "query"
}

func apiErrorMessage(body []byte, status string) string {
	var payload struct {
		Error struct {
			Description string `json:"description"`
		} `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if payload.Error.Description != "" {
			return payload.Error.Description
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return status
}
