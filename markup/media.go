package markup

import (
	"html"
	"regexp"
	"strconv"
	"strings"

	"lcm/document"
)

// Recognition of non-text block constructs: two image encodings, two video
// embed providers, horizontal rules, the column break comment marker and the
// cross-reference embed shortcode. Each is matched independently over the raw
// input.

var (
	reNativeImage    = regexp.MustCompile(`(?is)<img(?:\s[^>]*)?>`)
	reShortcodeImage = regexp.MustCompile(`(?i)\[image(?:\s[^\]]*)?\]`)
	reIframe         = regexp.MustCompile(`(?is)<iframe(?:\s[^>]*)?>(?:\s*</iframe\s*>)?`)
	reHorizontalRule = regexp.MustCompile(`(?i)<hr(?:\s[^>]*)?/?\s*>`)
	reColumnBreak    = regexp.MustCompile(`(?i)<!--\s*pagebreak\s*-->`)
	reEmbedShortcode = regexp.MustCompile(`(?i)\[embed\s*,\s*id\s*=\s*"?(\d+)"?\s*\]`)

	reYouTubeSrc = regexp.MustCompile(`(?i)(?:youtube\.com/embed/|youtu\.be/)([A-Za-z0-9_-]+)`)
	reVimeoSrc   = regexp.MustCompile(`(?i)vimeo\.com/(?:video/)?(\d+)`)

	reAttr = regexp.MustCompile(`([a-zA-Z_][\w-]*)\s*=\s*(?:"([^"]*)"|'([^']*)')`)
)

// parseAttrs extracts name="value" pairs from one tag or shortcode body.
// Attribute names are lowercased, values entity-decoded.
func parseAttrs(raw string) map[string]string {
	attrs := make(map[string]string)
	for _, m := range reAttr.FindAllStringSubmatch(raw, -1) {
		value := m[2]
		if value == "" {
			value = m[3]
		}
		attrs[strings.ToLower(m[1])] = html.UnescapeString(value)
	}
	return attrs
}

// mediaFromNativeImage builds a placeholder from an <img> element. Native
// images never float.
func (c *Converter) mediaFromNativeImage(tag string) *document.MediaPlaceholder {
	attrs := parseAttrs(tag)
	src := strings.TrimSpace(attrs["src"])
	if src == "" {
		return nil
	}
	return &document.MediaPlaceholder{
		SourceURL: c.absoluteURL(src),
		AltText:   attrs["alt"],
	}
}

// mediaFromShortcode builds a placeholder from a bracket image shortcode.
// Only the exact class tokens "left" and "right" set the float; any other
// class value is ignored.
func (c *Converter) mediaFromShortcode(raw string) *document.MediaPlaceholder {
	attrs := parseAttrs(raw)
	src := strings.TrimSpace(attrs["src"])
	if src == "" {
		return nil
	}

	media := &document.MediaPlaceholder{
		SourceURL: c.absoluteURL(src),
		AltText:   attrs["alt"],
	}
	if media.AltText == "" {
		media.AltText = attrs["title"]
	}
	switch strings.TrimSpace(attrs["class"]) {
	case "left":
		media.Float = document.FloatLeft
	case "right":
		media.Float = document.FloatRight
	}
	if w, err := strconv.Atoi(strings.TrimSpace(attrs["width"])); err == nil && w > 0 {
		media.Width = w
	}
	if h, err := strconv.Atoi(strings.TrimSpace(attrs["height"])); err == nil && h > 0 {
		media.Height = h
	}
	return media
}

// videoFromIframe extracts a video embed from an iframe tag, recognizing the
// two supported providers by their source URL shape. Unknown iframes yield
// nil and are ignored.
func videoFromIframe(tag string) *document.VideoEmbed {
	attrs := parseAttrs(tag)
	src := attrs["src"]
	if src == "" {
		return nil
	}
	if m := reYouTubeSrc.FindStringSubmatch(src); m != nil {
		return &document.VideoEmbed{Provider: document.ProviderYouTube, ExternalID: m[1], Title: attrs["title"]}
	}
	if m := reVimeoSrc.FindStringSubmatch(src); m != nil {
		return &document.VideoEmbed{Provider: document.ProviderVimeo, ExternalID: m[1], Title: attrs["title"]}
	}
	return nil
}
