package cms

import (
	"encoding/json"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var richTextPolicy = newRichTextPolicy()

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class").Matching(bluemonday.SpaceSeparatedTokens).Globally()
	p.AllowAttrs("target").Matching(bluemonday.Paragraph).OnElements("a")
	p.AllowAttrs("rel").Matching(bluemonday.SpaceSeparatedTokens).OnElements("a")
	p.AllowAttrs("loading").Matching(bluemonday.Paragraph).OnElements("img")
	p.RequireNoFollowOnLinks(false)
	p.AddTargetBlankToFullyQualifiedLinks(false)
	return p
}

// SanitizeHTML strips anything outside the rich text policy.
func SanitizeHTML(s string) template.HTML {
	return template.HTML(richTextPolicy.Sanitize(s))
}

type ptBlock struct {
	Type     string   `json:"_type"`
	Style    string   `json:"style"`
	ListItem string   `json:"listItem"`
	Level    int      `json:"level"`
	Children []ptSpan `json:"children"`
	MarkDefs []ptMark `json:"markDefs"`
	Asset    *ptAsset `json:"asset"`
	Alt      string   `json:"alt"`
	Caption  string   `json:"caption"`
}

type ptSpan struct {
	Type  string   `json:"_type"`
	Text  string   `json:"text"`
	Marks []string `json:"marks"`
}

type ptMark struct {
	Key   string `json:"_key"`
	Type  string `json:"_type"`
	Href  string `json:"href"`
	Blank bool   `json:"blank"`
}

type ptAsset struct {
	Ref string `json:"_ref"`
	URL string `json:"url"`
}

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h1",
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

// RenderPortableText turns a block content array into sanitised HTML.
// Unknown block types are skipped.
func (c *Client) RenderPortableText(raw json.RawMessage) template.HTML {
	if len(raw) == 0 {
		return ""
	}
	var blocks []ptBlock
	if err := json.Unmarshal(raw, &blocks); err != nil {
		c.Logger().Debug("portable text decode failed")
		return ""
	}
	var b strings.Builder
	var openList string
	closeList := func() {
		if openList != "" {
			b.WriteString("</" + openList + ">")
			openList = ""
		}
	}
	for _, blk := range blocks {
		switch blk.Type {
		case "block":
			if blk.ListItem != "" {
				tag := "ul"
				if blk.ListItem == "number" {
					tag = "ol"
				}
				if openList != tag {
					closeList()
					b.WriteString("<" + tag + ">")
					openList = tag
				}
				b.WriteString("<li>")
				writeSpans(&b, blk.Children, blk.MarkDefs)
				b.WriteString("</li>")
				continue
			}
			closeList()
			tag, ok := blockTags[blk.Style]
			if !ok {
				tag = "p"
			}
			b.WriteString("<" + tag + ">")
			writeSpans(&b, blk.Children, blk.MarkDefs)
			b.WriteString("</" + tag + ">")
		case "image":
			closeList()
			if blk.Asset == nil {
				continue
			}
			src := blk.Asset.URL
			if src == "" {
				src = c.ImageURL(blk.Asset.Ref)
			}
			if src == "" {
				continue
			}
			alt := blk.Alt
			if alt == "" {
				alt = "Blog image"
			}
			b.WriteString(`<figure class="rich-image"><img src="` + html.EscapeString(src) + `" alt="` + html.EscapeString(alt) + `" loading="lazy">`)
			if blk.Caption != "" {
				b.WriteString("<figcaption>" + html.EscapeString(blk.Caption) + "</figcaption>")
			}
			b.WriteString("</figure>")
		}
	}
	closeList()
	return SanitizeHTML(b.String())
}

func writeSpans(b *strings.Builder, spans []ptSpan, defs []ptMark) {
	links := make(map[string]ptMark, len(defs))
	for _, d := range defs {
		links[d.Key] = d
	}
	for _, span := range spans {
		if span.Type != "" && span.Type != "span" {
			continue
		}
		var closers []string
		for _, mark := range span.Marks {
			switch mark {
			case "strong", "em", "code":
				b.WriteString("<" + mark + ">")
				closers = append(closers, "</"+mark+">")
			case "underline":
				b.WriteString("<u>")
				closers = append(closers, "</u>")
			case "strike-through":
				b.WriteString("<s>")
				closers = append(closers, "</s>")
			default:
				def, ok := links[mark]
				if !ok || def.Type != "link" {
					continue
				}
				href := def.Href
				if href == "" {
					href = "#"
				}
				if def.Blank {
					b.WriteString(`<a href="` + html.EscapeString(href) + `" target="_blank" rel="noopener noreferrer">`)
				} else {
					b.WriteString(`<a href="` + html.EscapeString(href) + `">`)
				}
				closers = append(closers, "</a>")
			}
		}
		b.WriteString(strings.ReplaceAll(html.EscapeString(span.Text), "\n", "<br>"))
		for i := len(closers) - 1; i >= 0; i-- {
			b.WriteString(closers[i])
		}
	}
}
