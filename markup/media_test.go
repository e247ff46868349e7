package markup

import (
	"testing"

	"lcm/document"
)

func TestParseAttrs(t *testing.T) {
	attrs := parseAttrs(`<img SRC="/img/a.png" alt='first &amp; second' data-x="1">`)
	if attrs["src"] != "/img/a.png" {
		t.Errorf("src = %q", attrs["src"])
	}
	if attrs["alt"] != "first & second" {
		t.Errorf("alt = %q", attrs["alt"])
	}
	if attrs["data-x"] != "1" {
		t.Errorf("data-x = %q", attrs["data-x"])
	}
}

func TestMediaFromNativeImage(t *testing.T) {
	c := testConverter(t, Options{})

	t.Run("relative source made absolute", func(t *testing.T) {
		media := c.mediaFromNativeImage(`<img src="/assets/pic.jpg" alt="A picture">`)
		if media == nil {
			t.Fatal("expected media")
		}
		if media.SourceURL != "https://www.example.com/assets/pic.jpg" {
			t.Errorf("SourceURL = %q", media.SourceURL)
		}
		if media.AltText != "A picture" {
			t.Errorf("AltText = %q", media.AltText)
		}
		if media.Float != document.FloatNone {
			t.Errorf("native images never float, got %q", media.Float)
		}
	})

	t.Run("missing src yields nothing", func(t *testing.T) {
		if media := c.mediaFromNativeImage(`<img alt="nothing">`); media != nil {
			t.Errorf("expected nil, got %+v", media)
		}
	})
}

func TestMediaFromShortcode(t *testing.T) {
	c := testConverter(t, Options{})

	t.Run("full shortcode", func(t *testing.T) {
		media := c.mediaFromShortcode(`[image src="/assets/pic.jpg" title="Title" alt="Alt" class="left" width="320" height="200"]`)
		if media == nil {
			t.Fatal("expected media")
		}
		if media.SourceURL != "https://www.example.com/assets/pic.jpg" {
			t.Errorf("SourceURL = %q", media.SourceURL)
		}
		if media.AltText != "Alt" {
			t.Errorf("alt should win over title, got %q", media.AltText)
		}
		if media.Float != document.FloatLeft {
			t.Errorf("Float = %q", media.Float)
		}
		if media.Width != 320 || media.Height != 200 {
			t.Errorf("dimensions = %dx%d", media.Width, media.Height)
		}
	})

	t.Run("title fallback", func(t *testing.T) {
		media := c.mediaFromShortcode(`[image src="/p.png" title="Only title"]`)
		if media == nil || media.AltText != "Only title" {
			t.Errorf("media = %+v", media)
		}
	})

	t.Run("unknown class ignored", func(t *testing.T) {
		media := c.mediaFromShortcode(`[image src="/p.png" class="centered fancy"]`)
		if media == nil || media.Float != document.FloatNone {
			t.Errorf("media = %+v", media)
		}
	})

	t.Run("right float", func(t *testing.T) {
		media := c.mediaFromShortcode(`[image src="/p.png" class="right"]`)
		if media == nil || media.Float != document.FloatRight {
			t.Errorf("media = %+v", media)
		}
	})

	t.Run("bad dimensions dropped", func(t *testing.T) {
		media := c.mediaFromShortcode(`[image src="/p.png" width="wide" height="-2"]`)
		if media == nil || media.Width != 0 || media.Height != 0 {
			t.Errorf("media = %+v", media)
		}
	})

	t.Run("missing src yields nothing", func(t *testing.T) {
		if media := c.mediaFromShortcode(`[image class="left"]`); media != nil {
			t.Errorf("expected nil, got %+v", media)
		}
	})
}

func TestVideoFromIframe(t *testing.T) {
	tests := []struct {
		name     string
		tag      string
		provider document.VideoProvider
		id       string
	}{
		{"youtube embed", `<iframe src="https://www.youtube.com/embed/dQw4w9WgXcQ" title="Clip"></iframe>`, document.ProviderYouTube, "dQw4w9WgXcQ"},
		{"youtu.be short", `<iframe src="https://youtu.be/abc_123-XY"></iframe>`, document.ProviderYouTube, "abc_123-XY"},
		{"vimeo player", `<iframe src="https://player.vimeo.com/video/123456789"></iframe>`, document.ProviderVimeo, "123456789"},
		{"vimeo plain", `<iframe src="https://vimeo.com/987654321"></iframe>`, document.ProviderVimeo, "987654321"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			video := videoFromIframe(tt.tag)
			if video == nil {
				t.Fatal("expected video")
			}
			if video.Provider != tt.provider || video.ExternalID != tt.id {
				t.Errorf("video = %+v", video)
			}
		})
	}

	t.Run("unknown provider ignored", func(t *testing.T) {
		if video := videoFromIframe(`<iframe src="https://maps.google.com/embed?x=1"></iframe>`); video != nil {
			t.Errorf("expected nil, got %+v", video)
		}
	})

	t.Run("title preserved", func(t *testing.T) {
		video := videoFromIframe(`<iframe src="https://youtu.be/abc" title="My clip"></iframe>`)
		if video == nil || video.Title != "My clip" {
			t.Errorf("video = %+v", video)
		}
	})
}
