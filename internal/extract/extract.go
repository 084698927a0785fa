package extract

import (
	"fmt"

	"github.com/rs/zerolog/log"
)

// Extractor builds a PhotoMetadata from a photo file: open the RAW
// decoder, derive sensor statistics, read EXIF, and assemble the result.
// It's stateless -- callers own the per-worker ExifReader lifetime (see
// ExifReaderFactory) and pass it in per call.
type Extractor struct {
	Decoder RawDecoder
}

// New creates an Extractor over the given RAW decoder.
func New(decoder RawDecoder) *Extractor {
	return &Extractor{Decoder: decoder}
}

// Extract runs the full extraction algorithm for one photo: open the RAW
// file, compute sensor/brightness statistics, read EXIF, and build the
// complete metadata record.
//
// A RAW file that can't be opened or decoded returns *InvalidRawFile,
// signaling the caller should treat this as a recoverable invalid-file
// condition rather than a task error. Any EXIF failure, or an unexpected
// error from the decoder, is returned as a plain error and should count
// against the error budget.
func (e *Extractor) Extract(date, group, fileName, path string, exif ExifReader) (*PhotoMetadata, error) {
	raw, err := e.Decoder.Decode(path)
	if err != nil {
		if _, ok := err.(*InvalidRawFile); ok {
			return nil, err
		}
		return nil, fmt.Errorf("decoding %q: %w", path, err)
	}

	meta := &PhotoMetadata{
		Date:     date,
		Group:    group,
		FileName: fileName,

		RawWidth:  raw.Width,
		RawHeight: raw.Height,
		Width:     raw.Width,
		Height:    raw.Height,

		ThumbWidth:  raw.ThumbWidth,
		ThumbHeight: raw.ThumbHeight,

		CaptureWB:  raw.CameraWB,
		DaylightWB: raw.DaylightWB,

		BlackLevel: raw.BlackLevel,
		WhiteLevel: raw.WhiteLevel,
	}

	applyRasterStats(raw, meta)

	record, err := exif.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading EXIF for %q: %w", path, err)
	}
	applyExif(record, meta)

	if err := validate(meta); err != nil {
		return nil, fmt.Errorf("invalid metadata for %q: %w", path, err)
	}

	log.Debug().Str("date", date).Str("group", group).Str("file", fileName).Msg("extracted photo metadata")
	return meta, nil
}

// applyRasterStats computes the grey-world average and brightness
// distribution from the decoder's half-size linear raster, correcting the
// brightness plane by the camera's daylight white balance (falling back
// to unity multipliers if it's unavailable, matching the reference
// implementation's use of seeded 1,1,1,1 defaults).
func applyRasterStats(raw *RawImage, meta *PhotoMetadata) {
	meta.AvgRed, meta.AvgGreen, meta.AvgBlue = averageChannels(raw.Raster)

	wb := WhiteBalance4{Red: 1, Green1: 1, Blue: 1, Green2: 1}
	if raw.DaylightWB != nil {
		wb = *raw.DaylightWB
	}

	plane := buildBrightnessPlane(raw.Raster, wb)
	stats := computeBrightnessStats(plane)

	meta.BrightnessMin = stats.min
	meta.BrightnessMax = stats.max
	meta.BrightnessP10 = stats.p10
	meta.BrightnessP20 = stats.p20
	meta.BrightnessP30 = stats.p30
	meta.BrightnessP40 = stats.p40
	meta.BrightnessMedian = stats.median
	meta.BrightnessP60 = stats.p60
	meta.BrightnessP70 = stats.p70
	meta.BrightnessP80 = stats.p80
	meta.BrightnessP90 = stats.p90
	meta.BrightnessMean = stats.mean
	meta.BrightnessStdev = stats.stdev
	meta.BrightnessIQR = stats.iqr
}

func applyExif(r *ExifRecord, meta *PhotoMetadata) {
	meta.TimeTaken = r.TimeTaken
	meta.FileSizeKB = r.FileSizeKB
	meta.ISO = r.ISO
	meta.ShutterSpeed = r.ShutterSpeed
	meta.Aperture = r.Aperture
	meta.FocalLength = r.FocalLength
	meta.AutoFocus = r.AutoFocus
	meta.FocusDistance = r.FocusDistance
	meta.FieldOfView = r.FieldOfView
	meta.ExposureDifference = r.ExposureDifference

	meta.CameraMake = r.CameraMake
	meta.CameraModel = r.CameraModel

	meta.LensMake = r.LensMake
	meta.LensModel = r.LensModel
	meta.LensSpec = r.LensSpec
	meta.LensMinFocalLength = r.LensMinFocalLength
	meta.LensMaxFocalLength = r.LensMaxFocalLength
	meta.LensFStops = r.LensFStops
	meta.LensMaxApertureMinFocal = r.LensMaxApertureMinFocal
	meta.LensMaxApertureMaxFocal = r.LensMaxApertureMaxFocal
	meta.LensEffectiveMaxAperture = r.LensEffectiveMaxAperture
}

// validate checks the invariants a PhotoMetadata record must satisfy
// before it's handed to the identity store: monotonic deciles, min/max
// bounds, non-negative distribution statistics, non-negative multipliers,
// and a sane lens focal-length range.
func validate(m *PhotoMetadata) error {
	deciles := []float64{
		float64(m.BrightnessMin), m.BrightnessP10, m.BrightnessP20, m.BrightnessP30,
		m.BrightnessP40, m.BrightnessMedian, m.BrightnessP60, m.BrightnessP70,
		m.BrightnessP80, m.BrightnessP90, float64(m.BrightnessMax),
	}
	for i := 1; i < len(deciles); i++ {
		if deciles[i] < deciles[i-1] {
			return fmt.Errorf("brightness distribution not monotonic: %v", deciles)
		}
	}
	if m.BrightnessMean < 0 || m.BrightnessStdev < 0 || m.BrightnessIQR < 0 {
		return fmt.Errorf("brightness mean/stdev/iqr must be non-negative")
	}
	if err := validateNonNegativeWB(m.CaptureWB); err != nil {
		return err
	}
	if err := validateNonNegativeWB(m.DaylightWB); err != nil {
		return err
	}
	if m.LensMinFocalLength > 0 && m.LensMaxFocalLength > 0 &&
		m.LensMinFocalLength > m.LensMaxFocalLength {
		return fmt.Errorf("lens min focal length %v exceeds max %v",
			m.LensMinFocalLength, m.LensMaxFocalLength)
	}
	return nil
}

func validateNonNegativeWB(wb *WhiteBalance4) error {
	if wb == nil {
		return nil
	}
	if wb.Red < 0 || wb.Green1 < 0 || wb.Blue < 0 || wb.Green2 < 0 {
		return fmt.Errorf("white balance multipliers must be non-negative: %+v", wb)
	}
	return nil
}
