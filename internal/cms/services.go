package cms

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Service is one workshop offering.
type Service struct {
	ID              string
	Slug            string
	Title           string
	Subtitle        string
	Summary         string
	Description     template.HTML
	Pricing         string
	Price           *float64
	Duration        string
	Icon            string
	Features        []string
	BookingRequired bool
	Featured        bool
	Order           int
}

const servicesQuery = `*[_type == "service"] | order(order asc) {
  _id,
  title,
  "slug": slug.current,
  subtitle,
  summary,
  description,
  price,
  pricing,
  duration,
  bookingRequired,
  icon,
  features,
  featured,
  order
}`

type rawService struct {
	ID              string          `json:"_id"`
	Title           string          `json:"title"`
	Slug            string          `json:"slug"`
	Subtitle        string          `json:"subtitle"`
	Summary         string          `json:"summary"`
	Description     json.RawMessage `json:"description"`
	Price           *float64        `json:"price"`
	Pricing         string          `json:"pricing"`
	Duration        string          `json:"duration"`
	BookingRequired *bool           `json:"bookingRequired"`
	Icon            string          `json:"icon"`
	Features        []string        `json:"features"`
	Featured        bool            `json:"featured"`
	Order           *int            `json:"order"`
}

// Services lists the workshop services in display order. When the CMS is
// unconfigured, failing or empty the built-in list is returned.
func (c *Client) Services(ctx context.Context) ([]Service, error) {
	var raw []rawService
	err := c.Query(ctx, servicesQuery, nil, &raw)
	if err != nil && !errors.Is(err, ErrNotConfigured) && !errors.Is(err, ErrNotFound) {
		c.Logger().Warn("services fetch failed; using fallback", zap.Error(err))
	}
	services := make([]Service, 0, len(raw))
	for i, r := range raw {
		if s, ok := c.mapService(r, i); ok {
			services = append(services, s)
		}
	}
	if len(services) == 0 {
		return FallbackServices(), nil
	}
	sort.SliceStable(services, func(i, j int) bool { return services[i].Order < services[j].Order })
	return services, nil
}

// FallbackServices returns a copy of the built-in services.
func FallbackServices() []Service {
	out := make([]Service, len(fallbackServices))
	for i, s := range fallbackServices {
		s.Features = append([]string(nil), s.Features...)
		out[i] = s
	}
	return out
}

// FeaturedServices filters services flagged for the home page, keeping at
// most limit entries.
func FeaturedServices(services []Service, limit int) []Service {
	var out []Service
	for _, s := range services {
		if s.Featured {
			out = append(out, s)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

func (c *Client) mapService(r rawService, index int) (Service, bool) {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return Service{}, false
	}
	s := Service{
		ID:              r.ID,
		Slug:            firstNonEmpty(strings.TrimSpace(r.Slug), slugify(title)),
		Title:           title,
		Subtitle:        strings.TrimSpace(r.Subtitle),
		Summary:         strings.TrimSpace(r.Summary),
		Description:     c.RenderPortableText(r.Description),
		Pricing:         strings.TrimSpace(r.Pricing),
		Price:           r.Price,
		Duration:        strings.TrimSpace(r.Duration),
		Icon:            firstNonEmpty(strings.TrimSpace(r.Icon), "wrench"),
		Features:        nonEmptyStrings(r.Features),
		BookingRequired: r.BookingRequired == nil || *r.BookingRequired,
		Featured:        r.Featured,
		Order:           index + 1,
	}
	if r.Order != nil {
		s.Order = *r.Order
	}
	if s.Pricing == "" && r.Price != nil {
		s.Pricing = "$" + strconv.FormatFloat(*r.Price, 'f', -1, 64)
	}
	return s, true
}

func nonEmptyStrings(in []string) []string {
	var out []string
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func slugify(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
