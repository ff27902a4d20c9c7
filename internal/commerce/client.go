package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"cranks.com.au/web/internal/observability"
)

const (
	// DefaultAPIURL is the REST API root; the store id is appended per call.
	DefaultAPIURL   = "https://app.ecwid.com/api/v3"
	defaultTimeout  = 8 * time.Second
	defaultCacheTTL = 5 * time.Minute
	maxBodyBytes    = 2 << 20
)

var (
	// ErrNotConfigured indicates no store id or token is set.
	ErrNotConfigured = errors.New("commerce: not configured")
	// ErrNotFound indicates the store has no such product.
	ErrNotFound = errors.New("commerce: not found")
)

// APIError is a non-2xx response from the store API.
type APIError struct {
	Endpoint   string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("commerce: %s: status %d: %s", e.Endpoint, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("commerce: %s: status %d", e.Endpoint, e.StatusCode)
}

// Config locates a store on the REST API.
type Config struct {
	StoreID  string
	Token    string
	APIURL   string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client is a read-only store API client with a short TTL cache.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *zap.Logger
	tracer trace.Tracer
	now    func() time.Time

	group   singleflight.Group
	cacheMu sync.RWMutex
	cache   map[string]cached
}

type cached struct {
	body    []byte
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
	return func(c *Client) { c.logger = observability.OrNop(l) }
}

// NewClient builds a client. Without a store id and token every call
// returns ErrNotConfigured.
func NewClient(cfg Config, opts ...Option) *Client {
	cfg.StoreID = strings.TrimSpace(cfg.StoreID)
	cfg.Token = strings.TrimSpace(cfg.Token)
	cfg.APIURL = strings.TrimRight(strings.TrimSpace(cfg.APIURL), "/")
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
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
		tracer: observability.Tracer("cranks.com.au/web/internal/commerce"),
		now:    time.Now,
		cache:  map[string]cached{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether API calls are enabled.
func (c *Client) Configured() bool {
	return c != nil && c.cfg.StoreID != "" && c.cfg.Token != ""
}

// ProductQuery filters a product search.
type ProductQuery struct {
	Limit    int
	Offset   int
	Category int64
	Keyword  string
	Enabled  *bool
}

// ProductList is one page of search results.
type ProductList struct {
	Items  []APIProduct `json:"items"`
	Total  int          `json:"total"`
	Count  int          `json:"count"`
	Offset int          `json:"offset"`
	Limit  int          `json:"limit"`
}

// APIProduct is the subset of the product resource the site reads.
type APIProduct struct {
	ID                             int64          `json:"id"`
	SKU                            string         `json:"sku"`
	Name                           string         `json:"name"`
	Description                    string         `json:"description"`
	Price                          float64        `json:"price"`
	CompareToPrice                 float64        `json:"compareToPrice"`
	DefaultDisplayedPriceFormatted string         `json:"defaultDisplayedPriceFormatted"`
	URL                            string         `json:"url"`
	Quantity                       int            `json:"quantity"`
	Unlimited                      bool           `json:"unlimited"`
	InStock                        bool           `json:"inStock"`
	Enabled                        bool           `json:"enabled"`
	CategoryIDs                    []int64        `json:"categoryIds"`
	ImageURL                       string         `json:"imageUrl"`
	GalleryImages                  []GalleryImage `json:"galleryImages"`
	Attributes                     []Attribute    `json:"attributes"`
}

// GalleryImage is an extra product image.
type GalleryImage struct {
	ID  int64  `json:"id"`
	URL string `json:"url"`
	Alt string `json:"alt"`
}

// Attribute is a named product attribute such as Brand.
type Attribute struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Category is a store category.
type Category struct {
	ID           int64  `json:"id"`
	ParentID     int64  `json:"parentId"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	ProductCount int    `json:"productCount"`
	URL          string `json:"url"`
}

// Profile is the subset of the store profile the site reads.
type Profile struct {
	GeneralInfo struct {
		StoreID  int64  `json:"storeId"`
		StoreURL string `json:"storeUrl"`
	} `json:"generalInfo"`
	Settings struct {
		StoreName        string `json:"storeName"`
		StoreDescription string `json:"storeDescription"`
	} `json:"settings"`
	FormatsAndUnits struct {
		Currency string `json:"currency"`
	} `json:"formatsAndUnits"`
}

// Products searches products.
func (c *Client) Products(ctx context.Context, q ProductQuery) (ProductList, error) {
	params := url.Values{}
	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	params.Set("limit", strconv.Itoa(limit))
	params.Set("offset", strconv.Itoa(max(q.Offset, 0)))
	if q.Category > 0 {
		params.Set("category", strconv.FormatInt(q.Category, 10))
	}
	if kw := strings.TrimSpace(q.Keyword); kw != "" {
		params.Set("keyword", kw)
	}
	if q.Enabled != nil {
		params.Set("enabled", strconv.FormatBool(*q.Enabled))
	}
	var out ProductList
	err := c.get(ctx, "products", params, &out)
	return out, err
}

// Product fetches one product.
func (c *Client) Product(ctx context.Context, id int64) (APIProduct, error) {
	if id <= 0 {
		return APIProduct{}, ErrNotFound
	}
	var out APIProduct
	err := c.get(ctx, "products/"+strconv.FormatInt(id, 10), nil, &out)
	return out, err
}

// Categories lists categories, optionally under parent.
func (c *Client) Categories(ctx context.Context, parent int64) ([]Category, error) {
	params := url.Values{}
	params.Set("limit", "100")
	params.Set("offset", "0")
	if parent > 0 {
		params.Set("parent", strconv.FormatInt(parent, 10))
	}
	var out struct {
		Items []Category `json:"items"`
	}
	if err := c.get(ctx, "categories", params, &out); err != nil {
		return nil, err
	}
	return out.Items, nil
}

// Profile fetches the store profile.
func (c *Client) Profile(ctx context.Context) (Profile, error) {
	var out Profile
	err := c.get(ctx, "profile", nil, &out)
	return out, err
}

func (c *Client) get(ctx context.Context, path string, params url.Values, dst any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}
	endpoint, err := url.JoinPath(c.cfg.APIURL, c.cfg.StoreID, path)
	if err != nil {
		return err
	}
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	body, ok := c.cached(endpoint)
	if !ok {
		// The shared fetch outlives any one caller; the client timeout bounds it.
		ch := c.group.DoChan(endpoint, func() (any, error) {
			b, err := c.fetch(context.WithoutCancel(ctx), path, endpoint)
			if err != nil {
				return nil, err
			}
			c.store(endpoint, b)
			return b, nil
		})
		select {
		case <-ctx.Done():
			return fmt.Errorf("commerce: %s: %w", path, ctx.Err())
		case res := <-ch:
			if res.Err != nil {
				return res.Err
			}
			body = res.Val.([]byte)
		}
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("commerce: decode %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, path, endpoint string) (body []byte, err error) {
	ctx, span := observability.StartClientSpan(ctx, c.tracer, "commerce.get", attribute.String("commerce.path", path))
	defer func() { observability.EndSpan(span, err) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("commerce: %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("commerce: read %s: %w", path, err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode >= 400 {
		return nil, &APIError{Endpoint: path, StatusCode: resp.StatusCode, Message: errorMessage(body)}
	}
	return body, nil
}

func (c *Client) cached(key string) ([]byte, bool) {
	c.cacheMu.RLock()
	entry, ok := c.cache[key]
	c.cacheMu.RUnlock()
	if !ok || c.now().After(entry.expires) {
		return nil, false
	}
	return entry.body, true
}

func (c *Client) store(key string, body []byte) {
	c.cacheMu.Lock()
	defer c.cacheMu.Unlock()
	c.cache[key] = cached{body: body, expires: c.now().Add(c.cfg.CacheTTL)}
}

func errorMessage(body []byte) string {
	var payload struct {
		ErrorMessage string `json:"errorMessage"`
		ErrorCode    string `json:"errorCode"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.ErrorMessage != "" {
		return payload.ErrorMessage
	}
	return strings.TrimSpace(string(body))
}
