package cms

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Post is a blog article.
type Post struct {
	ID             string
	Slug           string
	Title          string
	Excerpt        string
	Author         string
	PublishedAt    time.Time
	FeaturedImage  Image
	Body           template.HTML
	Categories     []string
	Tags           []string
	Featured       bool
	SEODescription string
}

const postFields = `
  _id,
  title,
  "slug": slug.current,
  excerpt,
  author,
  publishedAt,
  featuredImage { asset->{ _id, url }, alt },
  categories[]->{ title },
  tags,
  featured,
  seo`

const postsQuery = `*[_type == "post" && defined(slug.current)] | order(publishedAt desc) {` + postFields + `
}`

const postQuery = `*[_type == "post" && slug.current == $slug][0] {` + postFields + `,
  content
}`

type rawPost struct {
	ID            string          `json:"_id"`
	Title         string          `json:"title"`
	Slug          string          `json:"slug"`
	Excerpt       string          `json:"excerpt"`
	Author        string          `json:"author"`
	PublishedAt   string          `json:"publishedAt"`
	FeaturedImage json.RawMessage `json:"featuredImage"`
	Categories    []struct {
		Title string `json:"title"`
	} `json:"categories"`
	Tags     []string        `json:"tags"`
	Featured bool            `json:"featured"`
	Content  json.RawMessage `json:"content"`
	SEO      struct {
		MetaDescription string `json:"metaDescription"`
	} `json:"seo"`
}

const defaultAuthor = "Cranks Team"

// Posts lists published posts, newest first. Without a configured CMS the
// list is empty.
func (c *Client) Posts(ctx context.Context) ([]Post, error) {
	var raw []rawPost
	if err := c.Query(ctx, postsQuery, nil, &raw); err != nil {
		if errors.Is(err, ErrNotConfigured) || errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	posts := make([]Post, 0, len(raw))
	for _, r := range raw {
		if p, ok := c.mapPost(r); ok {
			posts = append(posts, p)
		}
	}
	return posts, nil
}

// Post fetches one post by slug, or ErrNotFound.
func (c *Client) Post(ctx context.Context, slug string) (Post, error) {
	slug = sanitizeSlug(slug)
	if slug == "" {
		return Post{}, ErrNotFound
	}
	var raw rawPost
	if err := c.Query(ctx, postQuery, map[string]any{"slug": slug}, &raw); err != nil {
		if errors.Is(err, ErrNotConfigured) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	p, ok := c.mapPost(raw)
	if !ok {
		return Post{}, ErrNotFound
	}
	return p, nil
}

func (c *Client) mapPost(r rawPost) (Post, bool) {
	title := strings.TrimSpace(r.Title)
	slug := strings.TrimSpace(r.Slug)
	if title == "" || slug == "" {
		return Post{}, false
	}
	p := Post{
		ID:             r.ID,
		Slug:           slug,
		Title:          title,
		Excerpt:        strings.TrimSpace(r.Excerpt),
		Author:         firstNonEmpty(strings.TrimSpace(r.Author), defaultAuthor),
		PublishedAt:    parseContentDate(r.PublishedAt),
		FeaturedImage:  c.image(decodeImage(r.FeaturedImage)),
		Body:           c.RenderPortableText(r.Content),
		Tags:           nonEmptyStrings(r.Tags),
		Featured:       r.Featured,
		SEODescription: strings.TrimSpace(r.SEO.MetaDescription),
	}
	for _, cat := range r.Categories {
		if t := strings.TrimSpace(cat.Title); t != "" {
			p.Categories = append(p.Categories, t)
		}
	}
	if p.FeaturedImage.Alt == "" {
		p.FeaturedImage.Alt = title
	}
	return p, true
}

// LogFetchError records a content failure that the caller absorbs.
func (c *Client) LogFetchError(what string, err error) {
	if err == nil || errors.Is(err, ErrNotFound) || errors.Is(err, ErrNotConfigured) {
		return
	}
	c.Logger().Warn("cms fetch failed", zap.String("content", what), zap.Error(err))
}
