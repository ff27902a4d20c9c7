package cms

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// HomePage is the editable copy of the landing page.
type HomePage struct {
	Title            string
	HeroTitle        string
	HeroSubtitle     string
	HeroImage        Image
	AboutPreview     string
	SEODescription   string
	FeaturedServices []Service
}

const homePageQuery = `*[_type == "homePage"][0] {
  title,
  heroTitle,
  heroSubtitle,
  heroImage { asset->{ _id, url }, alt },
  aboutPreview,
  seo,
  featuredServices[]->{
    _id,
    title,
    "slug": slug.current,
    summary,
    price,
    pricing,
    icon,
    order
  }
}`

type rawHomePage struct {
	Title            string          `json:"title"`
	HeroTitle        string          `json:"heroTitle"`
	HeroSubtitle     string          `json:"heroSubtitle"`
	HeroImage        json.RawMessage `json:"heroImage"`
	AboutPreview     string          `json:"aboutPreview"`
	FeaturedServices []rawService    `json:"featuredServices"`
	SEO              struct {
		MetaDescription string `json:"metaDescription"`
	} `json:"seo"`
}

// HomePage returns the landing page copy. Blank fields take the built-in
// copy; featured services default to the flagged entries of services.
func (c *Client) HomePage(ctx context.Context, services []Service) (HomePage, error) {
	fallback := fallbackHome()
	fallback.FeaturedServices = FeaturedServices(services, 3)

	var raw rawHomePage
	if err := c.Query(ctx, homePageQuery, nil, &raw); err != nil {
		if !errors.Is(err, ErrNotConfigured) && !errors.Is(err, ErrNotFound) {
			c.Logger().Warn("home page fetch failed; using fallback", zap.Error(err))
		}
		return fallback, nil
	}

	page := HomePage{
		Title:          firstNonEmpty(strings.TrimSpace(raw.Title), fallback.Title),
		HeroTitle:      firstNonEmpty(strings.TrimSpace(raw.HeroTitle), fallback.HeroTitle),
		HeroSubtitle:   firstNonEmpty(strings.TrimSpace(raw.HeroSubtitle), fallback.HeroSubtitle),
		HeroImage:      c.image(decodeImage(raw.HeroImage)),
		AboutPreview:   firstNonEmpty(strings.TrimSpace(raw.AboutPreview), fallback.AboutPreview),
		SEODescription: firstNonEmpty(strings.TrimSpace(raw.SEO.MetaDescription), fallback.SEODescription),
	}
	if page.HeroImage.URL == "" {
		page.HeroImage = fallback.HeroImage
	}
	for i, r := range raw.FeaturedServices {
		if s, ok := c.mapService(r, i); ok {
			page.FeaturedServices = append(page.FeaturedServices, s)
		}
	}
	if len(page.FeaturedServices) == 0 {
		page.FeaturedServices = fallback.FeaturedServices
	}
	return page, nil
}
