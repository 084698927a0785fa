package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/billysbar/tlmerge/internal/extract"
)

type lensRow struct {
	ID int64 `db:"id"`
}

// resolveLens finds the Lens row matching meta's nine lens-identity
// attributes exactly, creating one if none matches. A lens with make,
// model, and spec all null is disallowed -- rather than erroring, the
// photo simply gets no lens row (a nil id, meaning "lens unknown").
// Existing rows are never mutated.
func (s *Store) resolveLens(meta *extract.PhotoMetadata) (*int64, error) {
	if meta.LensMake == nil && meta.LensModel == nil && meta.LensSpec == nil {
		return nil, nil
	}

	var row lensRow
	err := s.tx.Get(&row, `
		SELECT id FROM lenses
		WHERE make IS ? AND model IS ? AND spec IS ?
		  AND min_focal_length = ? AND max_focal_length = ? AND lens_f_stops = ?
		  AND max_aperture_min_focal = ? AND max_aperture_max_focal = ? AND effective_max_aperture = ?
	`, meta.LensMake, meta.LensModel, meta.LensSpec,
		meta.LensMinFocalLength, meta.LensMaxFocalLength, meta.LensFStops,
		meta.LensMaxApertureMinFocal, meta.LensMaxApertureMaxFocal, meta.LensEffectiveMaxAperture)
	if err == nil {
		return &row.ID, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("looking up lens: %w", err)
	}

	res, err := s.tx.Exec(`
		INSERT INTO lenses (make, model, spec, min_focal_length, max_focal_length, lens_f_stops,
		                     max_aperture_min_focal, max_aperture_max_focal, effective_max_aperture)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, meta.LensMake, meta.LensModel, meta.LensSpec,
		meta.LensMinFocalLength, meta.LensMaxFocalLength, meta.LensFStops,
		meta.LensMaxApertureMinFocal, meta.LensMaxApertureMaxFocal, meta.LensEffectiveMaxAperture)
	if err != nil {
		return nil, fmt.Errorf("inserting lens: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &id, nil
}
