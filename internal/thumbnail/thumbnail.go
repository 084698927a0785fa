// Package thumbnail renders JPEG thumbnails for scanned photos, placed on
// disk according to each group's thumbnail_location/thumbnail_path, sized
// by thumbnail_resize_factor, and encoded at thumbnail_quality.
package thumbnail

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
	"github.com/billysbar/tlmerge/internal/scan"
)

// thumbConfig is the subset of RootConfig/DateConfig/GroupConfig that
// Renderer needs; all three satisfy it, so a lookup at any scope works
// without the caller caring which level actually answered it.
type thumbConfig interface {
	ThumbnailLocation() config.ThumbnailLocation
	ThumbnailPath() string
	ThumbnailResizeFactor() float64
	ThumbnailQuality() int
	UseEmbeddedThumbnail() bool
}

// Renderer turns scanned photos into thumbnail files.
type Renderer struct {
	mgr    *config.Manager
	source ImageSource
}

// New creates a Renderer over mgr's config tree, using source to decode
// each photo into a raster before resizing.
func New(mgr *config.Manager, source ImageSource) *Renderer {
	return &Renderer{mgr: mgr, source: source}
}

// Render decodes photo, resizes it per its group's thumbnail settings, and
// writes the result as a JPEG. It returns the path written.
func (r *Renderer) Render(photo scan.Photo) (string, error) {
	cfg, ok := r.mgr.Lookup(photo.Date, photo.Group).(thumbConfig)
	if !ok {
		return "", fmt.Errorf("no thumbnail configuration available for %s/%s", photo.Date, photo.Group)
	}

	dest, err := outputPath(r.mgr.Root().Project(), photo.Date, photo.Group, stem(photo.Path),
		cfg.ThumbnailLocation(), cfg.ThumbnailPath())
	if err != nil {
		return "", fmt.Errorf("laying out thumbnail for %s: %w", photo.Path, err)
	}

	img, err := r.source.Load(photo.Path)
	if err != nil {
		return "", fmt.Errorf("decoding %s for thumbnail: %w", photo.Path, err)
	}

	factor := cfg.ThumbnailResizeFactor()
	resized := img
	if factor < 1 {
		bounds := img.Bounds()
		width := int(float64(bounds.Dx())*factor + 0.5)
		if width < 1 {
			width = 1
		}
		resized = imaging.Resize(img, width, 0, imaging.Lanczos)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return "", fmt.Errorf("creating thumbnail directory for %s: %w", dest, err)
	}
	if err := imaging.Save(resized, dest, imaging.JPEGQuality(cfg.ThumbnailQuality())); err != nil {
		return "", fmt.Errorf("writing thumbnail %s: %w", dest, err)
	}

	log.Debug().Str("photo", photo.Path).Str("thumbnail", dest).Msg("rendered thumbnail")
	return dest, nil
}

func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
