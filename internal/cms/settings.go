package cms

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ContactInfo is the shop's public contact block.
type ContactInfo struct {
	Phone   string `json:"phone,omitempty" yaml:"phone,omitempty"`
	Email   string `json:"email,omitempty" yaml:"email,omitempty"`
	Address string `json:"address,omitempty" yaml:"address,omitempty"`
}

// BusinessHours holds display strings per day group.
type BusinessHours struct {
	Weekdays string `json:"weekdays,omitempty" yaml:"weekdays,omitempty"`
	Saturday string `json:"saturday,omitempty" yaml:"saturday,omitempty"`
	Sunday   string `json:"sunday,omitempty" yaml:"sunday,omitempty"`
}

// NavLink is a single dropdown entry.
type NavLink struct {
	Title string `json:"title" yaml:"title"`
	Href  string `json:"href" yaml:"href"`
}

// NavItem is a top-level navigation entry.
type NavItem struct {
	Title         string    `json:"title" yaml:"title"`
	Href          string    `json:"href" yaml:"href"`
	HasDropdown   bool      `json:"hasDropdown,omitempty" yaml:"has_dropdown,omitempty"`
	IsSpecial     bool      `json:"isSpecial,omitempty" yaml:"is_special,omitempty"`
	DropdownItems []NavLink `json:"dropdownItems,omitempty" yaml:"dropdown_items,omitempty"`
}

// SocialLinks holds profile URLs.
type SocialLinks struct {
	Facebook  string `json:"facebook,omitempty" yaml:"facebook,omitempty"`
	Instagram string `json:"instagram,omitempty" yaml:"instagram,omitempty"`
	Twitter   string `json:"twitter,omitempty" yaml:"twitter,omitempty"`
}

// SiteSettings feeds the header and footer of every page.
type SiteSettings struct {
	Title         string        `json:"title" yaml:"title"`
	ContactInfo   ContactInfo   `json:"contactInfo" yaml:"contact_info"`
	BusinessHours BusinessHours `json:"businessHours" yaml:"business_hours"`
	HeaderMessage string        `json:"headerMessage" yaml:"header_message"`
	Navigation    []NavItem     `json:"navigation" yaml:"navigation"`
	SocialMedia   SocialLinks   `json:"socialMedia" yaml:"social_media"`
}

// Clone returns a deep copy.
func (s SiteSettings) Clone() SiteSettings {
	cp := s
	if s.Navigation != nil {
		cp.Navigation = make([]NavItem, len(s.Navigation))
		for i, item := range s.Navigation {
			item.DropdownItems = append([]NavLink(nil), item.DropdownItems...)
			cp.Navigation[i] = item
		}
	}
	return cp
}

const siteSettingsQuery = `*[_type == "siteSettings"][0] {
  title,
  contactInfo,
  businessHours,
  headerMessage,
  navigation[] {
    title,
    href,
    hasDropdown,
    isSpecial,
    dropdownItems[] {
      title,
      href
    }
  },
  socialMedia
}`

// fetchedSettings mirrors the query projection. A nil field means the
// document left that section out.
type fetchedSettings struct {
	Title         *string        `json:"title"`
	ContactInfo   *ContactInfo   `json:"contactInfo"`
	BusinessHours *BusinessHours `json:"businessHours"`
	HeaderMessage *string        `json:"headerMessage"`
	Navigation    *[]NavItem     `json:"navigation"`
	SocialMedia   *SocialLinks   `json:"socialMedia"`
}

// ResolveSection returns the fetched section when present and fallback
// otherwise.
func ResolveSection[T any](fetched *T, fallback T) T {
	if fetched == nil {
		return fallback
	}
	return *fetched
}

// Resolve merges a fetched document onto fallback, one top-level section at
// a time. Blank strings, empty sections and empty navigation count as absent.
func (f *fetchedSettings) Resolve(fallback SiteSettings) SiteSettings {
	if f == nil {
		return fallback.Clone()
	}
	return SiteSettings{
		Title:         ResolveSection(nonBlank(f.Title), fallback.Title),
		ContactInfo:   ResolveSection(nonZero(f.ContactInfo), fallback.ContactInfo),
		BusinessHours: ResolveSection(nonZero(f.BusinessHours), fallback.BusinessHours),
		HeaderMessage: ResolveSection(nonBlank(f.HeaderMessage), fallback.HeaderMessage),
		Navigation:    ResolveSection(validNav(f.Navigation), fallback.Clone().Navigation),
		SocialMedia:   ResolveSection(nonZero(f.SocialMedia), fallback.SocialMedia),
	}
}

func nonBlank(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := strings.TrimSpace(*s)
	return &v
}

func nonZero[T comparable](v *T) *T {
	var zero T
	if v == nil || *v == zero {
		return nil
	}
	return v
}

func validNav(items *[]NavItem) *[]NavItem {
	if items == nil {
		return nil
	}
	out := make([]NavItem, 0, len(*items))
	for _, item := range *items {
		item.Title = strings.TrimSpace(item.Title)
		item.Href = strings.TrimSpace(item.Href)
		if item.Title == "" || item.Href == "" {
			continue
		}
		links := item.DropdownItems[:0:0]
		for _, l := range item.DropdownItems {
			if strings.TrimSpace(l.Title) != "" && strings.TrimSpace(l.Href) != "" {
				links = append(links, l)
			}
		}
		item.DropdownItems = links
		item.HasDropdown = item.HasDropdown && len(links) > 0
		out = append(out, item)
	}
	if len(out) == 0 {
		return nil
	}
	return &out
}

// SettingsFetcher is the query capability the resolver needs.
type SettingsFetcher interface {
	Query(ctx context.Context, groq string, params map[string]any, dst any) error
}

// SettingsResolver produces SiteSettings for the navigation shell.
type SettingsResolver struct {
	fetcher  SettingsFetcher
	fallback SiteSettings
	logger   *zap.Logger
}

// NewSettingsResolver builds a resolver. A nil fetcher serves fallback only.
func NewSettingsResolver(fetcher SettingsFetcher, logger *zap.Logger) *SettingsResolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsResolver{fetcher: fetcher, fallback: FallbackSiteSettings(), logger: logger}
}

// Resolve never fails. Fetch errors are logged and every missing section is
// taken from the fallback settings.
func (r *SettingsResolver) Resolve(ctx context.Context) SiteSettings {
	if r == nil {
		return FallbackSiteSettings()
	}
	if r.fetcher == nil {
		return r.fallback.Clone()
	}
	var fetched fetchedSettings
	err := r.fetcher.Query(ctx, siteSettingsQuery, nil, &fetched)
	switch {
	case err == nil:
		return fetched.Resolve(r.fallback)
	case errors.Is(err, ErrNotConfigured):
		r.logger.Debug("cms not configured; using fallback site settings")
	case errors.Is(err, ErrNotFound):
		r.logger.Info("no siteSettings document; using fallback site settings")
	default:
		r.logger.Warn("site settings fetch failed; using fallback", zap.Error(err))
	}
	return r.fallback.Clone()
}
