package extract

import "time"

// ExifRecord is the EXIF-derived subset of a photo's metadata. It's an
// opaque external collaborator's output contract: a production
// implementation would wrap an EXIF library (e.g. shelling out to
// exiftool, the way the reference implementation did), running it in both
// a raw and a human-formatted mode; only the resulting fields matter here.
type ExifRecord struct {
	TimeTaken     time.Time
	FileSizeKB    int
	ISO           *int
	ShutterSpeed  *string
	Aperture      *float64
	FocalLength   *float64
	AutoFocus     *bool
	FocusDistance float64
	FieldOfView   float64

	ExposureDifference *float64

	CameraMake  string
	CameraModel string

	LensMake                 *string
	LensModel                *string
	LensSpec                 *string
	LensMinFocalLength       float64
	LensMaxFocalLength       float64
	LensFStops               float64
	LensMaxApertureMinFocal  float64
	LensMaxApertureMaxFocal  float64
	LensEffectiveMaxAperture float64
}

// ExifReader reads EXIF metadata from a photo file. Its handle to the
// underlying process or library is expensive to start, so readers are
// reused: the orchestrator lends one to each extraction task and takes it
// back when the task ends, and no two tasks hold the same reader at once.
// A reader is not tied to one worker goroutine, and it is not closed when a
// worker exits; all readers are closed once the run ends.
type ExifReader interface {
	// Read extracts the EXIF record for path.
	//
	// A missing mandatory tag (capture time, file size, image dimensions,
	// camera make/model) or a value that fails to parse is a hard error:
	// unlike a RAW decode failure, this is not recorded as an
	// invalid-file metric -- it counts against the task error budget.
	Read(path string) (*ExifRecord, error)

	// Close releases any resources the reader holds (e.g. a long-running
	// subprocess). Called once, after the run has finished with the reader.
	Close() error
}

// ExifReaderFactory creates a new ExifReader. It is called only when no idle
// reader is available, so a reader is not opened once per photo.
type ExifReaderFactory func() (ExifReader, error)
