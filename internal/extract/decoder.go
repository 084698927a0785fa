package extract

import "fmt"

// RawImage is everything the extractor needs from a decoded RAW file. It
// stands in for what a library like rawpy/libraw exposes: crop and
// thumbnail dimensions, white balance and level readings, and a
// half-size, linear (no white balance, no auto-brightness) RGB raster for
// deriving grey-world and brightness statistics.
type RawImage struct {
	Width, Height           int
	ThumbWidth, ThumbHeight *int

	CameraWB   *WhiteBalance4
	DaylightWB *WhiteBalance4

	// BlackLevel is the per-channel black (darkness) level, always present.
	BlackLevel Levels4
	// WhiteLevel is the per-channel white (saturation) level. A decoder
	// should prefer a true per-channel camera reading, falling back to a
	// single scalar white level broadcast across all four channels if
	// that's all the format provides.
	WhiteLevel Levels4

	// Raster holds half-size, linear RGB pixel data: Raster[row][col] is
	// [red, green, blue]. It's already demosaiced but has no white
	// balance or auto-brightness correction applied.
	Raster [][][3]float64
}

// InvalidRawFile reports that a file could not be opened or decoded as a
// RAW image -- a recoverable condition the extractor's caller converts
// into an invalid-file metric rather than a task failure.
type InvalidRawFile struct {
	Path string
	Err  error
}

func (e *InvalidRawFile) Error() string {
	return fmt.Sprintf("invalid or unreadable RAW file %q: %v", e.Path, e.Err)
}

func (e *InvalidRawFile) Unwrap() error { return e.Err }

// RawDecoder opens a RAW photo file and exposes the sensor data the
// extractor needs. It's an opaque external collaborator -- a production
// implementation would wrap a RAW-processing library -- so only the
// contract lives here, exercised in tests by a deterministic fake.
type RawDecoder interface {
	// Decode opens path and reads its sensor data. A file that can't be
	// opened or isn't a supported RAW format should be returned as
	// *InvalidRawFile so the caller can treat it as a recoverable,
	// metrics-tracked failure rather than a hard error.
	Decode(path string) (*RawImage, error)
}
