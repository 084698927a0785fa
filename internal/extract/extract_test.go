package extract

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDecoder struct {
	image *RawImage
	err   error
}

func (f *fakeDecoder) Decode(path string) (*RawImage, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.image, nil
}

type fakeExifReader struct {
	record *ExifRecord
	err    error
	closed bool
}

func (f *fakeExifReader) Read(path string) (*ExifRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.record, nil
}

func (f *fakeExifReader) Close() error {
	f.closed = true
	return nil
}

func flatRaster(rows, cols int, r, g, b float64) [][][3]float64 {
	raster := make([][][3]float64, rows)
	for i := range raster {
		raster[i] = make([][3]float64, cols)
		for j := range raster[i] {
			raster[i][j] = [3]float64{r, g, b}
		}
	}
	return raster
}

func gradientRaster(rows, cols int) [][][3]float64 {
	raster := make([][][3]float64, rows)
	for i := range raster {
		raster[i] = make([][3]float64, cols)
		for j := range raster[i] {
			v := float64((i*cols + j) % 256)
			raster[i][j] = [3]float64{v, v, v}
		}
	}
	return raster
}

func sampleRawImage(raster [][][3]float64) *RawImage {
	return &RawImage{
		Width: 6000, Height: 4000,
		CameraWB:   &WhiteBalance4{Red: 1.8, Green1: 1, Blue: 1.4, Green2: 1},
		DaylightWB: &WhiteBalance4{Red: 2.1, Green1: 1, Blue: 1.6, Green2: 1},
		BlackLevel: Levels4{Red: 512, Green1: 512, Blue: 512, Green2: 512},
		WhiteLevel: Levels4{Red: 16383, Green1: 16383, Blue: 16383, Green2: 16383},
		Raster:     raster,
	}
}

func sampleExifRecord() *ExifRecord {
	iso := 400
	return &ExifRecord{
		TimeTaken:   time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		FileSizeKB:  24500,
		ISO:         &iso,
		FocalLength: floatPtr(50),
		CameraMake:  "Canon",
		CameraModel: "EOS R5",
	}
}

func floatPtr(v float64) *float64 { return &v }

func TestExtractBuildsCompleteMetadataFromFlatRaster(t *testing.T) {
	raw := sampleRawImage(flatRaster(4, 4, 100, 100, 100))
	ex := New(&fakeDecoder{image: raw})

	meta, err := ex.Extract("2026-01-01", "1", "a.cr2", "/proj/2026-01-01/1/a.cr2", &fakeExifReader{record: sampleExifRecord()})
	require.NoError(t, err)

	assert.Equal(t, "2026-01-01", meta.Date)
	assert.Equal(t, "1", meta.Group)
	assert.Equal(t, "a.cr2", meta.FileName)
	assert.Equal(t, 6000, meta.RawWidth)
	assert.Equal(t, "Canon", meta.CameraMake)
	assert.InDelta(t, 100, meta.AvgRed, 0.001)
	assert.Equal(t, meta.BrightnessMin, meta.BrightnessMax)
}

func TestExtractComputesMonotonicBrightnessDeciles(t *testing.T) {
	raw := sampleRawImage(gradientRaster(16, 16))
	ex := New(&fakeDecoder{image: raw})

	meta, err := ex.Extract("2026-01-01", "1", "a.cr2", "/a.cr2", &fakeExifReader{record: sampleExifRecord()})
	require.NoError(t, err)

	deciles := []float64{
		float64(meta.BrightnessMin), meta.BrightnessP10, meta.BrightnessP20, meta.BrightnessP30,
		meta.BrightnessP40, meta.BrightnessMedian, meta.BrightnessP60, meta.BrightnessP70,
		meta.BrightnessP80, meta.BrightnessP90, float64(meta.BrightnessMax),
	}
	for i := 1; i < len(deciles); i++ {
		assert.GreaterOrEqual(t, deciles[i], deciles[i-1])
	}
	assert.GreaterOrEqual(t, meta.BrightnessMean, 0.0)
	assert.GreaterOrEqual(t, meta.BrightnessStdev, 0.0)
	assert.GreaterOrEqual(t, meta.BrightnessIQR, 0.0)
}

func TestExtractPropagatesInvalidRawFileUnchanged(t *testing.T) {
	wantErr := &InvalidRawFile{Path: "/bad.cr2", Err: assert.AnError}
	ex := New(&fakeDecoder{err: wantErr})

	_, err := ex.Extract("2026-01-01", "1", "bad.cr2", "/bad.cr2", &fakeExifReader{record: sampleExifRecord()})
	require.Error(t, err)
	var invalid *InvalidRawFile
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "/bad.cr2", invalid.Path)
}

func TestExtractWrapsUnexpectedDecoderError(t *testing.T) {
	ex := New(&fakeDecoder{err: assert.AnError})
	_, err := ex.Extract("2026-01-01", "1", "a.cr2", "/a.cr2", &fakeExifReader{record: sampleExifRecord()})
	require.Error(t, err)

	var invalid *InvalidRawFile
	assert.False(t, errors.As(err, &invalid))
}

func TestExtractPropagatesExifReadError(t *testing.T) {
	raw := sampleRawImage(flatRaster(4, 4, 10, 10, 10))
	ex := New(&fakeDecoder{image: raw})

	_, err := ex.Extract("2026-01-01", "1", "a.cr2", "/a.cr2", &fakeExifReader{err: assert.AnError})
	require.Error(t, err)
}

func TestExtractRejectsNegativeWhiteBalanceMultipliers(t *testing.T) {
	raw := sampleRawImage(flatRaster(4, 4, 10, 10, 10))
	raw.CameraWB = &WhiteBalance4{Red: -1, Green1: 1, Blue: 1, Green2: 1}
	ex := New(&fakeDecoder{image: raw})

	_, err := ex.Extract("2026-01-01", "1", "a.cr2", "/a.cr2", &fakeExifReader{record: sampleExifRecord()})
	require.Error(t, err)
}

func TestExtractRejectsLensMinFocalLengthAboveMax(t *testing.T) {
	raw := sampleRawImage(flatRaster(4, 4, 10, 10, 10))
	ex := New(&fakeDecoder{image: raw})

	record := sampleExifRecord()
	record.LensMinFocalLength = 200
	record.LensMaxFocalLength = 50

	_, err := ex.Extract("2026-01-01", "1", "a.cr2", "/a.cr2", &fakeExifReader{record: record})
	require.Error(t, err)
}
