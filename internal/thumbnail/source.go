package thumbnail

import "image"

// ImageSource decodes a photo file into a raster ready for resizing. Like
// the RAW decoder and EXIF reader in internal/extract, it is named here as
// an opaque collaborator with a stated contract: production wiring of a
// real RAW-to-raster pipeline is left as an extension point, since the
// underlying decode library is out of scope for this pipeline.
type ImageSource interface {
	Load(path string) (image.Image, error)
}
