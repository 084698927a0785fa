package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/billysbar/tlmerge/internal/extract"
)

type cameraRow struct {
	ID int64 `db:"id"`
}

// resolveCamera finds the Camera row matching meta's six camera-identity
// attributes exactly -- make, model, and the four daylight white balance
// components, with null-equals-null on the latter -- creating one if none
// matches. It never updates an existing row.
func (s *Store) resolveCamera(meta *extract.PhotoMetadata) (int64, error) {
	wbR, wbG1, wbB, wbG2 := wbComponents(meta.DaylightWB)

	var row cameraRow
	err := s.tx.Get(&row, `
		SELECT id FROM cameras
		WHERE make = ? AND model = ?
		  AND daylight_wb_r IS ? AND daylight_wb_g1 IS ? AND daylight_wb_b IS ? AND daylight_wb_g2 IS ?
	`, meta.CameraMake, meta.CameraModel, wbR, wbG1, wbB, wbG2)
	if err == nil {
		return row.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("looking up camera: %w", err)
	}

	res, err := s.tx.Exec(`
		INSERT INTO cameras (make, model, daylight_wb_r, daylight_wb_g1, daylight_wb_b, daylight_wb_g2)
		VALUES (?, ?, ?, ?, ?, ?)
	`, meta.CameraMake, meta.CameraModel, wbR, wbG1, wbB, wbG2)
	if err != nil {
		return 0, fmt.Errorf("inserting camera %s/%s: %w", meta.CameraMake, meta.CameraModel, err)
	}
	return res.LastInsertId()
}

// wbComponents splits a white balance reading into its four components as
// database/sql arguments, or four untyped nils if wb is absent -- the
// decoder always supplies all four components together or none.
func wbComponents(wb *extract.WhiteBalance4) (r, g1, b, g2 any) {
	if wb == nil {
		return nil, nil, nil, nil
	}
	return wb.Red, wb.Green1, wb.Blue, wb.Green2
}
