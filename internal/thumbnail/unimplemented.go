package thumbnail

import (
	"fmt"
	"image"
)

// UnimplementedSource is the production ImageSource extension point: a real
// deployment wires a RAW-to-raster pipeline (or the already-decoded buffer
// from internal/extract) here. No such pipeline is in scope for this
// repository, so this placeholder fails loudly instead of silently
// producing a blank thumbnail.
type UnimplementedSource struct{}

func (UnimplementedSource) Load(path string) (image.Image, error) {
	return nil, fmt.Errorf("no image source configured: wire a production ImageSource before rendering thumbnails (got %q)", path)
}
