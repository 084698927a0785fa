// Package extract implements the per-photo metadata extractor: it opens a
// RAW file through a decoder, derives sensor statistics from the decoded
// raster, reads EXIF data, and assembles the result into a PhotoMetadata
// value for the identity store to consume.
package extract

import "time"

// PhotoMetadata is the complete record produced for one photo. Field
// groups mirror the data model: identity, capture, raster, white balance,
// levels, brightness distribution, camera identity, lens identity.
type PhotoMetadata struct {
	Date     string
	Group    string
	FileName string

	TimeTaken      time.Time
	FileSizeKB     int
	ISO            *int
	ShutterSpeed   *string
	Aperture       *float64
	FocalLength    *float64
	AutoFocus      *bool
	FocusDistance  float64
	FieldOfView    float64

	RawWidth    int
	RawHeight   int
	Width       int
	Height      int
	ThumbWidth  *int
	ThumbHeight *int

	CaptureWB          *WhiteBalance4
	AvgRed, AvgGreen, AvgBlue float64

	BlackLevel Levels4
	WhiteLevel Levels4

	BrightnessMin       uint8
	BrightnessP10       float64
	BrightnessP20       float64
	BrightnessP30       float64
	BrightnessP40       float64
	BrightnessMedian    float64
	BrightnessP60       float64
	BrightnessP70       float64
	BrightnessP80       float64
	BrightnessP90       float64
	BrightnessMax       uint8
	BrightnessMean      float64
	BrightnessStdev     float64
	BrightnessIQR       float64
	ExposureDifference  *float64

	CameraMake  string
	CameraModel string
	DaylightWB  *WhiteBalance4

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

// WhiteBalance4 holds a red/green1/blue/green2 multiplier tuple, as
// produced by both camera-as-shot and daylight-reference white balance
// readings.
type WhiteBalance4 struct {
	Red, Green1, Blue, Green2 float64
}

// Levels4 holds a per-channel (red/green1/blue/green2) black or white
// level reading.
type Levels4 struct {
	Red, Green1, Blue, Green2 float64
}
