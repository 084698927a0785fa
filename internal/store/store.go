// Package store implements the identity store adapter: a single
// file-backed SQLite database holding Photos, Cameras, and Lenses, with
// Camera/Lens rows content-addressed and deduplicated by full attribute
// tuple. The orchestrator is the adapter's only caller and the store's
// only writer, so no locking is needed beyond what the transaction itself
// provides.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/billysbar/tlmerge/internal/extract"
)

// Store wraps a SQLite database and the single transaction a
// preprocessing run writes through, flushing per photo and committing
// once at the end.
type Store struct {
	db *sqlx.DB
	tx *sqlx.Tx
}

// Open creates or opens the database at path, applies the schema if
// needed, and begins the run's transaction.
func Open(path string) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %q: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database %q: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("creating schema in %q: %w", path, err)
	}

	s := &Store{db: db}
	if err := s.beginTx(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) beginTx() error {
	tx, err := s.db.Beginx()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	s.tx = tx
	return nil
}

// Apply upserts one photo's metadata: looks up the (date, group,
// file_name) key, resolves Camera/Lens identity, and either inserts a new
// Photo row or overwrites the existing one in place. Camera/Lens rows are
// never mutated -- an identity mismatch on re-run always creates a new row
// and relinks the photo to it. created reports a brand new Photo row;
// updated reports an existing row whose columns actually changed. Neither
// is true when re-applying metadata identical to what's already stored,
// so running the same extraction twice reports zero new and zero updated
// rows the second time.
func (s *Store) Apply(meta *extract.PhotoMetadata) (created, updated bool, err error) {
	cameraID, err := s.resolveCamera(meta)
	if err != nil {
		return false, false, err
	}
	lensID, err := s.resolveLens(meta)
	if err != nil {
		return false, false, err
	}

	existingID, exists, err := s.lookupPhotoID(meta.Date, meta.Group, meta.FileName)
	if err != nil {
		return false, false, err
	}

	if !exists {
		if _, err := s.tx.Exec(insertPhotoSQL, insertPhotoArgs(meta, cameraID, lensID)...); err != nil {
			return false, false, fmt.Errorf("inserting photo %s/%s/%s: %w", meta.Date, meta.Group, meta.FileName, err)
		}
		return true, false, nil
	}

	fields := updatePhotoArgs(meta, cameraID, lensID)
	args := make([]any, 0, len(fields)*2+1)
	args = append(args, fields...)
	args = append(args, existingID)
	args = append(args, fields...)

	res, err := s.tx.Exec(updatePhotoSQL, args...)
	if err != nil {
		return false, false, fmt.Errorf("updating photo %s/%s/%s: %w", meta.Date, meta.Group, meta.FileName, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, false, fmt.Errorf("checking update result for photo %s/%s/%s: %w", meta.Date, meta.Group, meta.FileName, err)
	}
	return false, n > 0, nil
}

// Flush is a deliberate no-op: database/sql sends each Exec straight
// through the open transaction as it's called, so there's no client-side
// write buffer to push out early the way a session.flush() in an ORM with
// a unit-of-work layer would need. The method is kept so the adapter's
// call sequence still names the flush-per-photo point the orchestrator's
// loop relies on.
func (s *Store) Flush() error { return nil }

// Commit ends the run's transaction. Called exactly once, after every
// queued photo has been applied.
func (s *Store) Commit() error {
	if err := s.tx.Commit(); err != nil {
		return fmt.Errorf("committing: %w", err)
	}
	return nil
}

// Close closes the underlying database handle. If the run's transaction
// was never committed, closing rolls it back.
func (s *Store) Close() error {
	_ = s.tx.Rollback()
	return s.db.Close()
}

type photoRow struct {
	ID int64 `db:"id"`
}

func (s *Store) lookupPhotoID(date, group, fileName string) (int64, bool, error) {
	var row photoRow
	err := s.tx.Get(&row,
		`SELECT id FROM photos WHERE date = ? AND group_name = ? AND file_name = ?`,
		date, group, fileName)
	switch {
	case err == nil:
		return row.ID, true, nil
	case errors.Is(err, sql.ErrNoRows):
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("looking up photo %s/%s/%s: %w", date, group, fileName, err)
	}
}
