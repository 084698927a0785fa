package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/billysbar/tlmerge/internal/extract"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tlmerge.db")
	s, err := Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func samplePhoto(date, group, fileName string) *extract.PhotoMetadata {
	return &extract.PhotoMetadata{
		Date:     date,
		Group:    group,
		FileName: fileName,

		TimeTaken:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		FileSizeKB:    24000,
		FocusDistance: 1.2,
		FieldOfView:   45,

		RawWidth: 6000, RawHeight: 4000, Width: 6000, Height: 4000,

		CaptureWB: &extract.WhiteBalance4{Red: 1.8, Green1: 1, Blue: 1.4, Green2: 1},
		AvgRed:    100, AvgGreen: 100, AvgBlue: 100,

		BlackLevel: extract.Levels4{Red: 512, Green1: 512, Blue: 512, Green2: 512},
		WhiteLevel: extract.Levels4{Red: 16383, Green1: 16383, Blue: 16383, Green2: 16383},

		BrightnessMin: 10, BrightnessP10: 20, BrightnessP20: 30, BrightnessP30: 40,
		BrightnessP40: 50, BrightnessMedian: 60, BrightnessP60: 70, BrightnessP70: 80,
		BrightnessP80: 90, BrightnessP90: 100, BrightnessMax: 110,
		BrightnessMean: 60, BrightnessStdev: 20, BrightnessIQR: 40,

		CameraMake:  "Canon",
		CameraModel: "EOS R5",
		DaylightWB:  &extract.WhiteBalance4{Red: 2.1, Green1: 1, Blue: 1.6, Green2: 1},

		LensMake: strPtr("Canon"), LensModel: strPtr("RF 24-70mm"), LensSpec: strPtr("f/2.8L"),
		LensMinFocalLength: 24, LensMaxFocalLength: 70, LensFStops: 0,
		LensMaxApertureMinFocal: 2.8, LensMaxApertureMaxFocal: 2.8, LensEffectiveMaxAperture: 2.8,
	}
}

func strPtr(s string) *string { return &s }

func TestApplyInsertsNewPhotoCameraAndLens(t *testing.T) {
	s := openTestStore(t)

	created, updated, err := s.Apply(samplePhoto("2026-01-01", "1", "a.cr2"))
	require.NoError(t, err)
	require.True(t, created)
	require.False(t, updated)

	var photoCount, cameraCount, lensCount int
	require.NoError(t, s.tx.Get(&photoCount, `SELECT COUNT(*) FROM photos`))
	require.NoError(t, s.tx.Get(&cameraCount, `SELECT COUNT(*) FROM cameras`))
	require.NoError(t, s.tx.Get(&lensCount, `SELECT COUNT(*) FROM lenses`))
	require.Equal(t, 1, photoCount)
	require.Equal(t, 1, cameraCount)
	require.Equal(t, 1, lensCount)
}

func TestApplyRerunSameMetadataIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	photo := samplePhoto("2026-01-01", "1", "a.cr2")

	created1, updated1, err := s.Apply(photo)
	require.NoError(t, err)
	require.True(t, created1)
	require.False(t, updated1)

	created2, updated2, err := s.Apply(photo)
	require.NoError(t, err)
	require.False(t, created2)
	require.False(t, updated2)

	var photoCount, cameraCount, lensCount int
	require.NoError(t, s.tx.Get(&photoCount, `SELECT COUNT(*) FROM photos`))
	require.NoError(t, s.tx.Get(&cameraCount, `SELECT COUNT(*) FROM cameras`))
	require.NoError(t, s.tx.Get(&lensCount, `SELECT COUNT(*) FROM lenses`))
	require.Equal(t, 1, photoCount)
	require.Equal(t, 1, cameraCount)
	require.Equal(t, 1, lensCount)
}

func TestApplyRerunWithChangedFieldReportsUpdated(t *testing.T) {
	s := openTestStore(t)
	photo := samplePhoto("2026-01-01", "1", "a.cr2")

	_, _, err := s.Apply(photo)
	require.NoError(t, err)

	changed := samplePhoto("2026-01-01", "1", "a.cr2")
	changed.BrightnessMean = photo.BrightnessMean + 5

	created, updated, err := s.Apply(changed)
	require.NoError(t, err)
	require.False(t, created)
	require.True(t, updated)

	var storedMean float64
	require.NoError(t, s.tx.Get(&storedMean, `SELECT brightness_mean FROM photos WHERE file_name = 'a.cr2'`))
	require.Equal(t, changed.BrightnessMean, storedMean)
}

func TestApplySharesCameraAndLensAcrossPhotosWithSameIdentity(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.Apply(samplePhoto("2026-01-01", "1", "a.cr2"))
	require.NoError(t, err)
	_, _, err = s.Apply(samplePhoto("2026-01-01", "1", "b.cr2"))
	require.NoError(t, err)

	var cameraIDs []int64
	require.NoError(t, s.tx.Select(&cameraIDs, `SELECT camera_id FROM photos ORDER BY file_name`))
	require.Len(t, cameraIDs, 2)
	require.Equal(t, cameraIDs[0], cameraIDs[1])

	var cameraCount int
	require.NoError(t, s.tx.Get(&cameraCount, `SELECT COUNT(*) FROM cameras`))
	require.Equal(t, 1, cameraCount)
}

func TestApplyCreatesNewCameraRowWhenIdentityChangesAndNeverMutatesOldRow(t *testing.T) {
	s := openTestStore(t)

	first := samplePhoto("2026-01-01", "1", "a.cr2")
	_, _, err := s.Apply(first)
	require.NoError(t, err)

	var firstCameraID int64
	require.NoError(t, s.tx.Get(&firstCameraID, `SELECT camera_id FROM photos WHERE file_name = 'a.cr2'`))

	changed := samplePhoto("2026-01-01", "1", "a.cr2")
	changed.DaylightWB = &extract.WhiteBalance4{Red: 9, Green1: 1, Blue: 1, Green2: 1}
	_, _, err = s.Apply(changed)
	require.NoError(t, err)

	var secondCameraID int64
	require.NoError(t, s.tx.Get(&secondCameraID, `SELECT camera_id FROM photos WHERE file_name = 'a.cr2'`))
	require.NotEqual(t, firstCameraID, secondCameraID)

	var cameraCount int
	require.NoError(t, s.tx.Get(&cameraCount, `SELECT COUNT(*) FROM cameras`))
	require.Equal(t, 2, cameraCount)

	var oldMake string
	require.NoError(t, s.tx.Get(&oldMake, `SELECT make FROM cameras WHERE id = ?`, firstCameraID))
	require.Equal(t, "Canon", oldMake)
}

func TestApplyLeavesLensNilWhenIdentityAllAbsent(t *testing.T) {
	s := openTestStore(t)
	photo := samplePhoto("2026-01-01", "1", "a.cr2")
	photo.LensMake, photo.LensModel, photo.LensSpec = nil, nil, nil

	_, _, err := s.Apply(photo)
	require.NoError(t, err)

	var lensID *int64
	require.NoError(t, s.tx.Get(&lensID, `SELECT lens_id FROM photos WHERE file_name = 'a.cr2'`))
	require.Nil(t, lensID)

	var lensCount int
	require.NoError(t, s.tx.Get(&lensCount, `SELECT COUNT(*) FROM lenses`))
	require.Equal(t, 0, lensCount)
}

func TestCommitPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tlmerge.db")
	s, err := Open(path)
	require.NoError(t, err)

	_, _, err = s.Apply(samplePhoto("2026-01-01", "1", "a.cr2"))
	require.NoError(t, err)
	require.NoError(t, s.Flush())
	require.NoError(t, s.Commit())
	require.NoError(t, s.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	var count int
	require.NoError(t, reopened.tx.Get(&count, `SELECT COUNT(*) FROM photos`))
	require.Equal(t, 1, count)
}
