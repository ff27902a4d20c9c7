package cms

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServicesFallbackWhenNotConfigured(t *testing.T) {
	services, err := NewClient(Config{}).Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 6)
	require.Equal(t, "Basic Service", services[0].Title)
	require.Equal(t, "Child bike has no gears", services[5].Subtitle)

	services[0].Features[0] = "mutated"
	require.NotEqual(t, "mutated", FallbackServices()[0].Features[0])
}

func TestServicesFromCMS(t *testing.T) {
	fake, srv := newFakeCMS(t)
	fake.set("service", []map[string]any{
		{"_id": "b", "title": "Wheel Build", "price": 180, "order": 2, "features": []string{"Hand built", " "}},
		{"_id": "a", "title": "Safety Check", "pricing": "Free", "order": 1, "bookingRequired": false, "featured": true},
		{"_id": "c", "title": ""},
	})
	services, err := newTestClient(srv).Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 2)

	require.Equal(t, "Safety Check", services[0].Title)
	require.Equal(t, "safety-check", services[0].Slug)
	require.Equal(t, "Free", services[0].Pricing)
	require.False(t, services[0].BookingRequired)

	require.Equal(t, "$180", services[1].Pricing)
	require.Equal(t, []string{"Hand built"}, services[1].Features)
	require.True(t, services[1].BookingRequired)
	require.Equal(t, "wrench", services[1].Icon)

	require.Len(t, FeaturedServices(services, 3), 1)
}

func TestServicesFallbackOnFailure(t *testing.T) {
	fake, srv := newFakeCMS(t)
	fake.setStatus(503)
	services, err := newTestClient(srv).Services(context.Background())
	require.NoError(t, err)
	require.Len(t, services, 6)
}

func TestHomePage(t *testing.T) {
	fallback, err := NewClient(Config{}).HomePage(context.Background(), FallbackServices())
	require.NoError(t, err)
	require.Equal(t, "Ride Your Adventure", fallback.HeroTitle)
	require.Len(t, fallback.FeaturedServices, 3)

	fake, srv := newFakeCMS(t)
	fake.set("homePage", map[string]any{
		"heroTitle": "Spring Tune-Ups",
		"heroImage": map[string]any{"asset": map[string]any{"url": "https://cdn.example.com/hero.jpg"}, "alt": "Workshop"},
	})
	page, err := newTestClient(srv).HomePage(context.Background(), FallbackServices())
	require.NoError(t, err)
	require.Equal(t, "Spring Tune-Ups", page.HeroTitle)
	require.Equal(t, fallback.HeroSubtitle, page.HeroSubtitle)
	require.Equal(t, Image{URL: "https://cdn.example.com/hero.jpg", Alt: "Workshop"}, page.HeroImage)
	require.Equal(t, fallback.FeaturedServices, page.FeaturedServices)
}

func TestPosts(t *testing.T) {
	posts, err := NewClient(Config{}).Posts(context.Background())
	require.NoError(t, err)
	require.Empty(t, posts)

	_, err = NewClient(Config{}).Post(context.Background(), "anything")
	require.ErrorIs(t, err, ErrNotFound)

	fake, srv := newFakeCMS(t)
	fake.set("post", []map[string]any{
		{"_id": "1", "title": "Winter riding", "slug": "winter-riding", "publishedAt": "2024-06-01T08:00:00.000Z", "categories": []map[string]any{{"title": "Tips"}}},
		{"_id": "2", "title": "No slug"},
	})
	posts, err = newTestClient(srv).Posts(context.Background())
	require.NoError(t, err)
	require.Len(t, posts, 1)
	require.Equal(t, "Cranks Team", posts[0].Author)
	require.Equal(t, []string{"Tips"}, posts[0].Categories)
	require.Equal(t, 2024, posts[0].PublishedAt.Year())
	require.Equal(t, "Winter riding", posts[0].FeaturedImage.Alt)
}

func TestPostBySlug(t *testing.T) {
	fake, srv := newFakeCMS(t)
	fake.set("post", map[string]any{
		"_id": "1", "title": "Winter riding", "slug": "winter-riding",
		"content": []map[string]any{{"_type": "block", "children": []map[string]any{{"_type": "span", "text": "Layer up."}}}},
	})
	c := newTestClient(srv)
	post, err := c.Post(context.Background(), "winter-riding")
	require.NoError(t, err)
	require.Contains(t, string(post.Body), "<p>Layer up.</p>")
	require.Equal(t, `"winter-riding"`, fake.last().URL.Query().Get("$slug"))

	_, err = c.Post(context.Background(), "../x")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSlugify(t *testing.T) {
	require.Equal(t, "clean-degrease", slugify("Clean & Degrease"))
	require.Equal(t, "e-bike-tune", slugify("  E-Bike Tune! "))
}
