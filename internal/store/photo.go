package store

import "github.com/billysbar/tlmerge/internal/extract"

const insertPhotoSQL = `
INSERT INTO photos (
	date, group_name, file_name,
	time_taken, file_size_kb, iso, shutter_speed, aperture, focal_length, auto_focus,
	focus_distance, field_of_view,
	raw_width, raw_height, width, height, thumb_width, thumb_height,
	capture_wb_r, capture_wb_g1, capture_wb_b, capture_wb_g2, avg_red, avg_green, avg_blue,
	black_level_r, black_level_g1, black_level_b, black_level_g2,
	white_level_r, white_level_g1, white_level_b, white_level_g2,
	brightness_min, brightness_p10, brightness_p20, brightness_p30, brightness_p40,
	brightness_median, brightness_p60, brightness_p70, brightness_p80, brightness_p90,
	brightness_max, brightness_mean, brightness_stdev, brightness_iqr, exposure_difference,
	camera_id, lens_id
) VALUES (
	?, ?, ?,
	?, ?, ?, ?, ?, ?, ?,
	?, ?,
	?, ?, ?, ?, ?, ?,
	?, ?, ?, ?, ?, ?, ?,
	?, ?, ?, ?,
	?, ?, ?, ?,
	?, ?, ?, ?, ?,
	?, ?, ?, ?, ?,
	?, ?, ?, ?, ?,
	?, ?
)`

// updatePhotoSQL only touches the row when at least one column actually
// differs from what's already stored -- the WHERE clause repeats the same
// column list as the SET clause via IS NOT (not !=, so a NULL-to-NULL
// column never counts as a difference). RowsAffected then tells Apply
// whether this was a real update or a no-op re-application of identical
// metadata, matching the original implementation's session.is_modified
// check.
const updatePhotoSQL = `
UPDATE photos SET
	time_taken = ?, file_size_kb = ?, iso = ?, shutter_speed = ?, aperture = ?, focal_length = ?,
	auto_focus = ?, focus_distance = ?, field_of_view = ?,
	raw_width = ?, raw_height = ?, width = ?, height = ?, thumb_width = ?, thumb_height = ?,
	capture_wb_r = ?, capture_wb_g1 = ?, capture_wb_b = ?, capture_wb_g2 = ?,
	avg_red = ?, avg_green = ?, avg_blue = ?,
	black_level_r = ?, black_level_g1 = ?, black_level_b = ?, black_level_g2 = ?,
	white_level_r = ?, white_level_g1 = ?, white_level_b = ?, white_level_g2 = ?,
	brightness_min = ?, brightness_p10 = ?, brightness_p20 = ?, brightness_p30 = ?, brightness_p40 = ?,
	brightness_median = ?, brightness_p60 = ?, brightness_p70 = ?, brightness_p80 = ?, brightness_p90 = ?,
	brightness_max = ?, brightness_mean = ?, brightness_stdev = ?, brightness_iqr = ?,
	exposure_difference = ?,
	camera_id = ?, lens_id = ?
WHERE id = ?
  AND (
	time_taken IS NOT ? OR file_size_kb IS NOT ? OR iso IS NOT ? OR shutter_speed IS NOT ? OR
	aperture IS NOT ? OR focal_length IS NOT ? OR auto_focus IS NOT ? OR focus_distance IS NOT ? OR
	field_of_view IS NOT ? OR raw_width IS NOT ? OR raw_height IS NOT ? OR width IS NOT ? OR
	height IS NOT ? OR thumb_width IS NOT ? OR thumb_height IS NOT ? OR
	capture_wb_r IS NOT ? OR capture_wb_g1 IS NOT ? OR capture_wb_b IS NOT ? OR capture_wb_g2 IS NOT ? OR
	avg_red IS NOT ? OR avg_green IS NOT ? OR avg_blue IS NOT ? OR
	black_level_r IS NOT ? OR black_level_g1 IS NOT ? OR black_level_b IS NOT ? OR black_level_g2 IS NOT ? OR
	white_level_r IS NOT ? OR white_level_g1 IS NOT ? OR white_level_b IS NOT ? OR white_level_g2 IS NOT ? OR
	brightness_min IS NOT ? OR brightness_p10 IS NOT ? OR brightness_p20 IS NOT ? OR brightness_p30 IS NOT ? OR
	brightness_p40 IS NOT ? OR brightness_median IS NOT ? OR brightness_p60 IS NOT ? OR brightness_p70 IS NOT ? OR
	brightness_p80 IS NOT ? OR brightness_p90 IS NOT ? OR brightness_max IS NOT ? OR brightness_mean IS NOT ? OR
	brightness_stdev IS NOT ? OR brightness_iqr IS NOT ? OR exposure_difference IS NOT ? OR
	camera_id IS NOT ? OR lens_id IS NOT ?
  )`

// photoFieldArgs returns every photo column's argument in the order both
// insertPhotoSQL (after the three identity columns) and updatePhotoSQL
// list them.
func photoFieldArgs(m *extract.PhotoMetadata, cameraID int64, lensID *int64) []any {
	wbR, wbG1, wbB, wbG2 := wbComponents(m.CaptureWB)
	return []any{
		m.TimeTaken, m.FileSizeKB, m.ISO, m.ShutterSpeed, m.Aperture, m.FocalLength,
		m.AutoFocus, m.FocusDistance, m.FieldOfView,
		m.RawWidth, m.RawHeight, m.Width, m.Height, m.ThumbWidth, m.ThumbHeight,
		wbR, wbG1, wbB, wbG2,
		m.AvgRed, m.AvgGreen, m.AvgBlue,
		m.BlackLevel.Red, m.BlackLevel.Green1, m.BlackLevel.Blue, m.BlackLevel.Green2,
		m.WhiteLevel.Red, m.WhiteLevel.Green1, m.WhiteLevel.Blue, m.WhiteLevel.Green2,
		m.BrightnessMin, m.BrightnessP10, m.BrightnessP20, m.BrightnessP30, m.BrightnessP40,
		m.BrightnessMedian, m.BrightnessP60, m.BrightnessP70, m.BrightnessP80, m.BrightnessP90,
		m.BrightnessMax, m.BrightnessMean, m.BrightnessStdev, m.BrightnessIQR,
		m.ExposureDifference,
		cameraID, lensID,
	}
}

func insertPhotoArgs(m *extract.PhotoMetadata, cameraID int64, lensID *int64) []any {
	args := append([]any{m.Date, m.Group, m.FileName}, photoFieldArgs(m, cameraID, lensID)...)
	return args
}

// updatePhotoArgs returns the field values once; Apply passes them to
// updatePhotoSQL twice (once for the SET clause, once for the IS NOT
// unchanged-check), since both list the same columns in the same order.
func updatePhotoArgs(m *extract.PhotoMetadata, cameraID int64, lensID *int64) []any {
	return photoFieldArgs(m, cameraID, lensID)
}
