package migrate

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"

	"lcm/document"
)

func writeTestImage(t *testing.T, path string, w, h int) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("unable to create image directory: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("unable to create image file: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("unable to encode image: %v", err)
	}
}

func TestAssetPath(t *testing.T) {
	const base = "https://www.example.com"

	tests := []struct {
		name   string
		srcURL string
		want   string
		wantOK bool
	}{
		{
			name:   "site asset",
			srcURL: base + "/assets/pic.png",
			want:   filepath.Join("root", "assets", "pic.png"),
			wantOK: true,
		},
		{
			name:   "query and fragment stripped",
			srcURL: base + "/assets/pic.png?v=2#top",
			want:   filepath.Join("root", "assets", "pic.png"),
			wantOK: true,
		},
		{
			name:   "external URL",
			srcURL: "https://cdn.elsewhere.net/pic.png",
			wantOK: false,
		},
		{
			name:   "path escape rejected",
			srcURL: base + "/assets/../../etc/passwd",
			wantOK: false,
		},
		{
			name:   "bare base URL",
			srcURL: base + "/",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := assetPath(tt.srcURL, base, "root")
			if ok != tt.wantOK {
				t.Fatalf("assetPath() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("assetPath() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestImageDimensions(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pic.png")
		writeTestImage(t, path, 640, 480)

		w, h, err := imageDimensions(path)
		if err != nil {
			t.Fatalf("imageDimensions() error = %v", err)
		}
		if w != 640 || h != 480 {
			t.Errorf("imageDimensions() = %dx%d, want 640x480", w, h)
		}
	})

	t.Run("not an image", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pic.png")
		if err := os.WriteFile(path, []byte("<html>not found</html>"), 0644); err != nil {
			t.Fatalf("unable to write file: %v", err)
		}
		if _, _, err := imageDimensions(path); err != image.ErrFormat {
			t.Errorf("imageDimensions() error = %v, want %v", err, image.ErrFormat)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, _, err := imageDimensions(filepath.Join(t.TempDir(), "absent.png")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestProbeAssets(t *testing.T) {
	const base = "https://www.example.com"

	root := t.TempDir()
	writeTestImage(t, filepath.Join(root, "assets", "pic.png"), 320, 200)

	t.Run("fills missing dimensions", func(t *testing.T) {
		media := &document.MediaPlaceholder{SourceURL: base + "/assets/pic.png"}
		nodes := []document.Node{document.NewMediaNode(media)}

		probeAssets(nodes, base, root, zaptest.NewLogger(t))
		if media.Width != 320 || media.Height != 200 {
			t.Errorf("dimensions = %dx%d, want 320x200", media.Width, media.Height)
		}
	})

	t.Run("source dimensions win", func(t *testing.T) {
		media := &document.MediaPlaceholder{SourceURL: base + "/assets/pic.png", Width: 100, Height: 50}
		nodes := []document.Node{document.NewMediaNode(media)}

		probeAssets(nodes, base, root, zaptest.NewLogger(t))
		if media.Width != 100 || media.Height != 50 {
			t.Errorf("dimensions = %dx%d, want 100x50", media.Width, media.Height)
		}
	})

	t.Run("partial dimensions completed", func(t *testing.T) {
		media := &document.MediaPlaceholder{SourceURL: base + "/assets/pic.png", Width: 100}
		nodes := []document.Node{document.NewMediaNode(media)}

		probeAssets(nodes, base, root, zaptest.NewLogger(t))
		if media.Width != 100 || media.Height != 200 {
			t.Errorf("dimensions = %dx%d, want 100x200", media.Width, media.Height)
		}
	})

	t.Run("off-site and missing assets left alone", func(t *testing.T) {
		external := &document.MediaPlaceholder{SourceURL: "https://cdn.elsewhere.net/pic.png"}
		missing := &document.MediaPlaceholder{SourceURL: base + "/assets/gone.png"}
		nodes := []document.Node{
			document.NewMediaNode(external),
			document.NewMediaNode(missing),
			document.NewSeparatorNode(),
		}

		probeAssets(nodes, base, root, zaptest.NewLogger(t))
		if external.Width != 0 || missing.Width != 0 {
			t.Error("untouchable placeholders must keep zero dimensions")
		}
	})

	t.Run("disabled without assets root", func(t *testing.T) {
		media := &document.MediaPlaceholder{SourceURL: base + "/assets/pic.png"}
		probeAssets([]document.Node{document.NewMediaNode(media)}, base, "", zaptest.NewLogger(t))
		if media.Width != 0 {
			t.Error("probing must be disabled without assets root")
		}
	})
}
