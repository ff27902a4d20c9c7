package cms

import (
	"encoding/json"
	"strings"
)

const imageCDN = "https://cdn.sanity.io/images"

// Image is a resolved CMS image.
type Image struct {
	URL     string `json:"url,omitempty" yaml:"url,omitempty"`
	Alt     string `json:"alt,omitempty" yaml:"alt,omitempty"`
	Caption string `json:"caption,omitempty" yaml:"caption,omitempty"`
}

// rawImage is an image field as stored: an asset reference, optionally
// dereferenced by the query to carry its url.
type rawImage struct {
	Asset *struct {
		Ref string `json:"_ref"`
		URL string `json:"url"`
	} `json:"asset"`
	Alt     string `json:"alt"`
	Caption string `json:"caption"`
}

func (c *Client) image(raw *rawImage) Image {
	if raw == nil || raw.Asset == nil {
		return Image{}
	}
	url := raw.Asset.URL
	if url == "" {
		url = c.ImageURL(raw.Asset.Ref)
	}
	return Image{URL: url, Alt: strings.TrimSpace(raw.Alt), Caption: strings.TrimSpace(raw.Caption)}
}

// ImageURL maps an asset reference such as "image-abc123-1200x800-jpg" onto
// the image CDN. Malformed references yield "".
func (c *Client) ImageURL(ref string) string {
	if c == nil || c.cfg.ProjectID == "" {
		return ""
	}
	ref = strings.TrimSpace(ref)
	if !strings.HasPrefix(ref, "image-") {
		return ""
	}
	body := strings.TrimPrefix(ref, "image-")
	dash := strings.LastIndexByte(body, '-')
	if dash <= 0 || dash == len(body)-1 {
		return ""
	}
	name, ext := body[:dash], body[dash+1:]
	return imageCDN + "/" + c.cfg.ProjectID + "/" + c.cfg.Dataset + "/" + name + "." + ext
}

func decodeImage(raw json.RawMessage) *rawImage {
	if len(raw) == 0 {
		return nil
	}
	var img rawImage
	if err := json.Unmarshal(raw, &img); err != nil {
		return nil
	}
	return &img
}
