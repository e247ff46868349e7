package migrate

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"lcm/document"
)

// probeAssets fills in missing dimensions of media placeholders from image
// files under the assets root. Placeholders pointing outside of our site or
// with dimensions already present in the source markup are left alone.
func probeAssets(nodes []document.Node, baseURL, root string, log *zap.Logger) {
	if root == "" {
		return
	}
	for _, node := range nodes {
		if node.Kind != document.NodeMedia || node.Media == nil {
			continue
		}
		media := node.Media
		if media.Width > 0 && media.Height > 0 {
			continue
		}
		path, ok := assetPath(media.SourceURL, baseURL, root)
		if !ok {
			continue
		}
		w, h, err := imageDimensions(path)
		if err != nil {
			log.Debug("Unable to probe asset", zap.String("asset", path), zap.Error(err))
			continue
		}
		if media.Width == 0 {
			media.Width = w
		}
		if media.Height == 0 {
			media.Height = h
		}
	}
}

// assetPath maps an absolute site URL back to a file under the assets root.
func assetPath(srcURL, baseURL, root string) (string, bool) {
	rel, found := strings.CutPrefix(srcURL, baseURL)
	if !found {
		return "", false
	}
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || strings.Contains(rel, "..") {
		return "", false
	}
	// strip query and fragment, they never survive in file names
	if i := strings.IndexAny(rel, "?#"); i >= 0 {
		rel = rel[:i]
	}
	return filepath.Join(root, filepath.FromSlash(rel)), true
}

// imageDimensions reads intrinsic dimensions from an image file, verifying
// the magic bytes first so we never feed random content to the decoders.
func imageDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	head := make([]byte, 261)
	n, err := f.Read(head)
	if err != nil && err != io.EOF {
		return 0, 0, err
	}
	if !filetype.IsImage(head[:n]) {
		return 0, 0, image.ErrFormat
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return 0, 0, err
	}

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
