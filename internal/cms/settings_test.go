package cms

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubFetcher struct {
	fetched *fetchedSettings
	err     error
	calls   int
}

func (s *stubFetcher) Query(_ context.Context, _ string, _ map[string]any, dst any) error {
	s.calls++
	if s.err != nil {
		return s.err
	}
	*(dst.(*fetchedSettings)) = *s.fetched
	return nil
}

func ptr[T any](v T) *T { return &v }

func requireFullyPopulated(t *testing.T, s SiteSettings) {
	t.Helper()
	require.NotEmpty(t, s.Title)
	require.NotEqual(t, ContactInfo{}, s.ContactInfo)
	require.NotEqual(t, BusinessHours{}, s.BusinessHours)
	require.NotEmpty(t, s.HeaderMessage)
	require.NotEmpty(t, s.Navigation)
	require.NotEqual(t, SocialLinks{}, s.SocialMedia)
}

func TestResolveSection(t *testing.T) {
	require.Equal(t, "fallback", ResolveSection(nil, "fallback"))
	require.Equal(t, "fetched", ResolveSection(ptr("fetched"), "fallback"))
	require.Equal(t, []int{1}, ResolveSection(ptr([]int{1}), []int{2, 3}))
	require.Equal(t, ContactInfo{Phone: "1"}, ResolveSection(ptr(ContactInfo{Phone: "1"}), ContactInfo{Phone: "2", Email: "x"}))
}

func TestResolveNavigationOnly(t *testing.T) {
	nav := []NavItem{{Title: "Bikes", Href: "/shop"}}
	fetcher := &stubFetcher{fetched: &fetchedSettings{Navigation: &nav}}
	r := NewSettingsResolver(fetcher, nil)

	got := r.Resolve(context.Background())
	requireFullyPopulated(t, got)
	fb := FallbackSiteSettings()
	require.Equal(t, nav, got.Navigation)
	require.Equal(t, fb.ContactInfo, got.ContactInfo)
	require.Equal(t, fb.BusinessHours, got.BusinessHours)
	require.Equal(t, fb.SocialMedia, got.SocialMedia)
}

func TestResolveFullDocument(t *testing.T) {
	want := SiteSettings{
		Title:         "Cranks Chatswood",
		ContactInfo:   ContactInfo{Phone: "1300 000 000", Email: "hi@example.com", Address: "1 Test St"},
		BusinessHours: BusinessHours{Weekdays: "Mon - Fri: 8am - 6pm", Saturday: "Sat: 8am - 2pm", Sunday: "Closed"},
		HeaderMessage: "Winter sale on now",
		Navigation: []NavItem{
			{Title: "Shop", Href: "/shop", HasDropdown: true, DropdownItems: []NavLink{{Title: "Road", Href: "/shop?category=Road"}}},
		},
		SocialMedia: SocialLinks{Instagram: "https://instagram.com/example"},
	}
	fetcher := &stubFetcher{fetched: &fetchedSettings{
		Title:         ptr(want.Title),
		ContactInfo:   ptr(want.ContactInfo),
		BusinessHours: ptr(want.BusinessHours),
		HeaderMessage: ptr(want.HeaderMessage),
		Navigation:    ptr(want.Navigation),
		SocialMedia:   ptr(want.SocialMedia),
	}}
	got := NewSettingsResolver(fetcher, nil).Resolve(context.Background())
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("settings mismatch (-want +got):\n%s", diff)
	}
}

func TestResolveTreatsEmptySectionsAsAbsent(t *testing.T) {
	empty := []NavItem{{Title: " ", Href: "/x"}}
	fetcher := &stubFetcher{fetched: &fetchedSettings{
		Title:         ptr("   "),
		ContactInfo:   &ContactInfo{},
		HeaderMessage: ptr(""),
		Navigation:    &empty,
	}}
	got := NewSettingsResolver(fetcher, nil).Resolve(context.Background())
	if diff := cmp.Diff(FallbackSiteSettings(), got); diff != "" {
		t.Fatalf("expected fallback (-want +got):\n%s", diff)
	}
}

func TestResolveDropsBrokenDropdownLinks(t *testing.T) {
	nav := []NavItem{{Title: "Shop", Href: "/shop", HasDropdown: true, DropdownItems: []NavLink{{Title: "", Href: "/x"}}}}
	fetcher := &stubFetcher{fetched: &fetchedSettings{Navigation: &nav}}
	got := NewSettingsResolver(fetcher, nil).Resolve(context.Background())
	require.Len(t, got.Navigation, 1)
	require.False(t, got.Navigation[0].HasDropdown)
	require.Empty(t, got.Navigation[0].DropdownItems)
}

func TestResolveAbsorbsFetchFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	fetcher := &stubFetcher{err: &ContentFetchError{Query: "siteSettings", StatusCode: 502, Err: errors.New("bad gateway")}}
	r := NewSettingsResolver(fetcher, zap.New(core))

	got := r.Resolve(context.Background())
	requireFullyPopulated(t, got)
	require.Equal(t, FallbackSiteSettings(), got)
	require.Equal(t, 1, logs.Len())
	require.Equal(t, "site settings fetch failed; using fallback", logs.All()[0].Message)
}

func TestResolveNotConfiguredIsQuiet(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := NewSettingsResolver(NewClient(Config{}), zap.New(core))
	requireFullyPopulated(t, r.Resolve(context.Background()))
	require.Zero(t, logs.Len())
}

func TestResolveNilResolverAndFetcher(t *testing.T) {
	var r *SettingsResolver
	requireFullyPopulated(t, r.Resolve(context.Background()))
	requireFullyPopulated(t, NewSettingsResolver(nil, nil).Resolve(context.Background()))
}

func TestResolveReturnsIndependentCopies(t *testing.T) {
	r := NewSettingsResolver(nil, nil)
	a := r.Resolve(context.Background())
	a.Navigation[0].Title = "mutated"
	b := r.Resolve(context.Background())
	require.Equal(t, "Home", b.Navigation[0].Title)
}

func TestResolveAgainstQueryAPI(t *testing.T) {
	fake, srv := newFakeCMS(t)
	fake.set("siteSettings", map[string]any{
		"headerMessage": "Open late Thursdays",
		"contactInfo":   map[string]any{"phone": "02 0000 0000"},
	})
	r := NewSettingsResolver(newTestClient(srv), nil)
	got := r.Resolve(context.Background())

	fb := FallbackSiteSettings()
	require.Equal(t, "Open late Thursdays", got.HeaderMessage)
	require.Equal(t, ContactInfo{Phone: "02 0000 0000"}, got.ContactInfo)
	require.Equal(t, fb.Navigation, got.Navigation)
	require.Equal(t, fb.BusinessHours, got.BusinessHours)
	require.Equal(t, fb.Title, got.Title)
}
