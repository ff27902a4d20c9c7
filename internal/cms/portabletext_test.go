package cms

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRenderPortableText(t *testing.T) {
	c := NewClient(Config{ProjectID: "abc123"})
	raw := json.RawMessage(`[
	  {"_type":"block","style":"h2","children":[{"_type":"span","text":"Winter checklist"}]},
	  {"_type":"block","style":"normal","markDefs":[{"_key":"l1","_type":"link","href":"https://example.com","blank":true}],
	   "children":[{"_type":"span","text":"Check "},{"_type":"span","text":"tyres","marks":["strong"]},{"_type":"span","text":" and ","marks":[]},{"_type":"span","text":"lights","marks":["l1"]}]},
	  {"_type":"block","listItem":"bullet","children":[{"_type":"span","text":"Chain"}]},
	  {"_type":"block","listItem":"bullet","children":[{"_type":"span","text":"Brakes"}]},
	  {"_type":"block","listItem":"number","children":[{"_type":"span","text":"Book in"}]},
	  {"_type":"image","asset":{"_ref":"image-abc-800x600-jpg"},"caption":"Workshop"},
	  {"_type":"block","style":"blockquote","children":[{"_type":"span","text":"<b>quoted</b>"}]},
	  {"_type":"youtube","url":"https://youtube.com"}
	]`)

	got := string(c.RenderPortableText(raw))
	require.Contains(t, got, "<h2>Winter checklist</h2>")
	require.Contains(t, got, "<strong>tyres</strong>")
	require.Contains(t, got, `<a href="https://example.com" target="_blank" rel="noopener noreferrer">lights</a>`)
	require.Contains(t, got, "<ul><li>Chain</li><li>Brakes</li></ul><ol><li>Book in</li></ol>")
	require.Contains(t, got, `src="https://cdn.sanity.io/images/abc123/production/abc-800x600.jpg"`)
	require.Contains(t, got, `alt="Blog image"`)
	require.Contains(t, got, "<figcaption>Workshop</figcaption>")
	require.Contains(t, got, "<blockquote>&lt;b&gt;quoted&lt;/b&gt;</blockquote>")
	require.NotContains(t, got, "youtube")
}

func TestRenderPortableTextInvalid(t *testing.T) {
	c := NewClient(Config{})
	require.Empty(t, c.RenderPortableText(nil))
	require.Empty(t, c.RenderPortableText(json.RawMessage(`{"not":"an array"}`)))
}

func TestSanitizeHTMLStripsScripts(t *testing.T) {
	got := string(SanitizeHTML(`<p onclick="x()">hi<script>alert(1)</script></p>`))
	require.Equal(t, "<p>hi</p>", got)
}

func TestImageURL(t *testing.T) {
	c := NewClient(Config{ProjectID: "abc123", Dataset: "staging"})
	require.Equal(t, "https://cdn.sanity.io/images/abc123/staging/f00-1200x800.png", c.ImageURL("image-f00-1200x800-png"))
	require.Empty(t, c.ImageURL("file-f00-pdf"))
	require.Empty(t, c.ImageURL("image-"))
	require.Empty(t, NewClient(Config{}).ImageURL("image-f00-1200x800-png"))
}
