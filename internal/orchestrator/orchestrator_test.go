package orchestrator

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billysbar/tlmerge/internal/config"
	"github.com/billysbar/tlmerge/internal/extract"
	"github.com/billysbar/tlmerge/internal/scan"
)

// buildProject lays out a date/group/photo tree from layout, which maps a
// relative directory to the (empty) photo files created in it.
func buildProject(t *testing.T, layout map[string][]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, files := range layout {
		full := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(full, 0o755))
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(full, f), nil, 0o644))
		}
	}
	return root
}

func newTestManager(t *testing.T, root string) *config.Manager {
	t.Helper()
	rootCfg, err := config.NewRootConfig(root)
	require.NoError(t, err)
	return config.NewManager(rootCfg)
}

// fakeDecoder returns a fixed RawImage for every path, or an
// *extract.InvalidRawFile for any path whose extension is rejectSuffix.
type fakeDecoder struct {
	mu           sync.Mutex
	rejectSuffix string
}

func (f *fakeDecoder) Decode(path string) (*extract.RawImage, error) {
	f.mu.Lock()
	reject := f.rejectSuffix != "" && filepath.Ext(path) == f.rejectSuffix
	f.mu.Unlock()
	if reject {
		return nil, &extract.InvalidRawFile{Path: path, Err: assert.AnError}
	}
	raster := [][][3]float64{{{50, 50, 50}, {50, 50, 50}}}
	return &extract.RawImage{
		Width: 100, Height: 100,
		CameraWB:   &extract.WhiteBalance4{Red: 1, Green1: 1, Blue: 1, Green2: 1},
		DaylightWB: &extract.WhiteBalance4{Red: 1, Green1: 1, Blue: 1, Green2: 1},
		BlackLevel: extract.Levels4{Red: 0, Green1: 0, Blue: 0, Green2: 0},
		WhiteLevel: extract.Levels4{Red: 255, Green1: 255, Blue: 255, Green2: 255},
		Raster:     raster,
	}, nil
}

type fakeExifReader struct{}

func (fakeExifReader) Read(path string) (*extract.ExifRecord, error) {
	return &extract.ExifRecord{TimeTaken: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), CameraMake: "Canon"}, nil
}
func (fakeExifReader) Close() error { return nil }

func fakeExifFactory() (extract.ExifReader, error) { return fakeExifReader{}, nil }

// fakeStore records every call it receives; Apply reports "created" the
// first time a key is seen, "updated" on a later call only if the
// metadata's TimeTaken differs from what was last applied, and neither
// when a later call repeats identical metadata.
type fakeStore struct {
	mu        sync.Mutex
	applied   []string
	flushes   int
	committed bool
	applyErr  error
	last      map[string]time.Time
}

func newFakeStore() *fakeStore { return &fakeStore{last: make(map[string]time.Time)} }

func (s *fakeStore) Apply(meta *extract.PhotoMetadata) (bool, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.applyErr != nil {
		return false, false, s.applyErr
	}
	key := meta.Date + "/" + meta.Group + "/" + meta.FileName
	s.applied = append(s.applied, key)

	prev, seen := s.last[key]
	s.last[key] = meta.TimeTaken
	if !seen {
		return true, false, nil
	}
	return false, !prev.Equal(meta.TimeTaken), nil
}

func (s *fakeStore) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

func (s *fakeStore) Commit() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.committed = true
	return nil
}

func TestRunProcessesAllPhotosAndCommitsOnce(t *testing.T) {
	root := buildProject(t, map[string][]string{"2026-01-01/1": {"a.cr2", "b.cr2"}})
	mgr := newTestManager(t, root)
	s := scan.New(mgr, nil)
	ex := extract.New(&fakeDecoder{})
	store := newFakeStore()

	o := New(mgr, s, ex, fakeExifFactory, store)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalScanned)
	assert.Equal(t, 2, summary.New)
	assert.Equal(t, 0, summary.Errors)
	assert.Equal(t, 0, summary.InvalidFiles)
	assert.True(t, store.committed)
	assert.Len(t, store.applied, 2)
}

func TestRunCountsInvalidRawFilesSeparatelyFromErrors(t *testing.T) {
	root := buildProject(t, map[string][]string{"2026-01-01/1": {"a.cr2", "b.junk"}})
	mgr := newTestManager(t, root)
	s := scan.New(mgr, nil)
	ex := extract.New(&fakeDecoder{rejectSuffix: ".junk"})
	store := newFakeStore()

	o := New(mgr, s, ex, fakeExifFactory, store)
	summary, err := o.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.TotalScanned)
	assert.Equal(t, 1, summary.New)
	assert.Equal(t, 1, summary.InvalidFiles)
	assert.True(t, store.committed)
}

func TestRunTwiceWithIdenticalMetadataReportsNoUpdates(t *testing.T) {
	root := buildProject(t, map[string][]string{"2026-01-01/1": {"a.cr2", "b.cr2"}})
	mgr := newTestManager(t, root)
	store := newFakeStore()

	run := func() Summary {
		s := scan.New(mgr, nil)
		ex := extract.New(&fakeDecoder{})
		o := New(mgr, s, ex, fakeExifFactory, store)
		summary, err := o.Run(context.Background())
		require.NoError(t, err)
		return summary
	}

	first := run()
	assert.Equal(t, 2, first.New)
	assert.Equal(t, 0, first.Updated)

	second := run()
	assert.Equal(t, 0, second.New)
	assert.Equal(t, 0, second.Updated)
}

func TestRunCancelsWhenStoreErrorBudgetExceeded(t *testing.T) {
	root := buildProject(t, map[string][]string{"2026-01-01/1": {"a.cr2", "b.cr2"}})
	mgr := newTestManager(t, root)
	require.NoError(t, mgr.Root().SetErrorBudget(0))
	s := scan.New(mgr, nil)
	ex := extract.New(&fakeDecoder{})
	store := newFakeStore()
	store.applyErr = assert.AnError

	o := New(mgr, s, ex, fakeExifFactory, store)
	_, err := o.Run(context.Background())
	require.Error(t, err)
	assert.False(t, store.committed)
}

func TestDetermineWorkerCountBelowMinimumBecomesTwo(t *testing.T) {
	assert.Equal(t, 2, determineWorkerCount(1, config.Sample{}))
	assert.Equal(t, 2, determineWorkerCount(0, config.Sample{}))
}

func TestDetermineWorkerCountCapsAtSampleSizePlusOne(t *testing.T) {
	assert.Equal(t, 3, determineWorkerCount(8, config.Sample{Enabled: true, Size: 2}))
}

func TestDetermineWorkerCountUsesConfiguredWhenSampleDisabled(t *testing.T) {
	assert.Equal(t, 8, determineWorkerCount(8, config.Sample{}))
}

func TestDetermineWorkerCountUsesConfiguredWhenSampleLarge(t *testing.T) {
	assert.Equal(t, 8, determineWorkerCount(8, config.Sample{Enabled: true, Size: 20}))
}
