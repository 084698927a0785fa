package scan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/billysbar/tlmerge/internal/config"
)

// buildProject lays out a small date/group/photo tree:
//
//	2026-01-01/1/{a.cr2,b.cr2}
//	2026-01-01/2/{c.cr2}
//	2026-01-02/1/{d.cr2,e.cr2,f.cr2}
func buildProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	layout := map[string][]string{
		"2026-01-01/1": {"a.cr2", "b.cr2"},
		"2026-01-01/2": {"c.cr2"},
		"2026-01-02/1": {"d.cr2", "e.cr2", "f.cr2"},
	}
	for dir, files := range layout {
		full := filepath.Join(root, dir)
		require.NoError(t, os.MkdirAll(full, 0o755))
		for _, f := range files {
			require.NoError(t, os.WriteFile(filepath.Join(full, f), nil, 0o644))
		}
	}
	return root
}

func newTestScanner(t *testing.T, root string) *Scanner {
	t.Helper()
	rootCfg, err := config.NewRootConfig(root)
	require.NoError(t, err)
	mgr := config.NewManager(rootCfg)
	return New(mgr, nil)
}

func collect(t *testing.T, s *Scanner) []Photo {
	t.Helper()
	var photos []Photo
	for p := range s.Stream(context.Background()) {
		photos = append(photos, p)
	}
	return photos
}

func TestStreamFullTraversalVisitsEveryPhoto(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)

	photos := collect(t, s)
	require.Len(t, photos, 6)
	require.Equal(t, 6, s.Metrics.TotalPhotos())
}

func TestStreamDeterministicSampleStopsAtExactSize(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)
	require.NoError(t, s.root().SetSample("3"))

	photos := collect(t, s)
	require.Len(t, photos, 3)
}

func TestStreamRandomSampleStopsAtExactSize(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)
	require.NoError(t, s.root().SetSample("~3"))

	photos := collect(t, s)
	require.Len(t, photos, 3)

	seen := map[string]bool{}
	for _, p := range photos {
		require.False(t, seen[p.Path], "photo yielded twice: %s", p.Path)
		seen[p.Path] = true
	}
}

func TestStreamExcludeDatesFiltersOutWholeDate(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)
	s.root().AddExcludeDates("2026-01-02")

	photos := collect(t, s)
	for _, p := range photos {
		require.NotEqual(t, "2026-01-02", p.Date)
	}
	require.Len(t, photos, 3)
}

func TestStreamRespectsContextCancellation(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var photos []Photo
	for p := range s.Stream(ctx) {
		photos = append(photos, p)
	}
	require.Empty(t, photos)
}

func TestEnqueueThreadClosesChannelWhenScanCompletes(t *testing.T) {
	root := buildProject(t)
	s := newTestScanner(t, root)

	out := EnqueueThread(context.Background(), s)
	var count int
	for range out {
		count++
	}
	require.Equal(t, 6, count)
}

func TestSkipsDirectoriesNotMatchingDateFormat(t *testing.T) {
	root := buildProject(t)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "not-a-date"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "not-a-date", "stray.cr2"), nil, 0o644))

	s := newTestScanner(t, root)
	photos := collect(t, s)
	require.Len(t, photos, 6)
}
