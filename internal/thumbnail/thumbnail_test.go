package thumbnail

import (
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/billysbar/tlmerge/internal/config"
	"github.com/billysbar/tlmerge/internal/scan"
)

type fakeSource struct {
	width, height int
}

func (f fakeSource) Load(path string) (image.Image, error) {
	img := image.NewRGBA(image.Rect(0, 0, f.width, f.height))
	for y := 0; y < f.height; y++ {
		for x := 0; x < f.width; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 100, A: 255})
		}
	}
	return img, nil
}

func newManager(t *testing.T, project string) *config.Manager {
	t.Helper()
	root, err := config.NewRootConfig(project)
	require.NoError(t, err)
	return config.NewManager(root)
}

func TestRenderGroupLocationWritesUnderDateGroupPath(t *testing.T) {
	project := t.TempDir()
	mgr := newManager(t, project)
	_, err := mgr.NewGroup("2026-01-01", "1")
	require.NoError(t, err)

	r := New(mgr, fakeSource{width: 100, height: 50})
	dest, err := r.Render(scan.Photo{Date: "2026-01-01", Group: "1", Path: filepath.Join(project, "2026-01-01", "1", "a.cr2")})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(project, "2026-01-01", "1", "thumbnails", "a.jpg"), dest)
	_, err = os.Stat(dest)
	require.NoError(t, err)
}

func TestRenderRootLocationWritesUnderProjectPathDateGroup(t *testing.T) {
	project := t.TempDir()
	mgr := newManager(t, project)
	require.NoError(t, mgr.Root().SetThumbnailLocation("root"))
	gc, err := mgr.NewGroup("2026-01-01", "1")
	require.NoError(t, err)

	r := New(mgr, fakeSource{width: 100, height: 50})
	dest, err := r.Render(scan.Photo{Date: "2026-01-01", Group: "1", Path: filepath.Join(project, "2026-01-01", "1", "a.cr2")})
	require.NoError(t, err)

	require.Equal(t, filepath.Join(project, gc.ThumbnailPath(), "2026-01-01", "1", "a.jpg"), dest)
}

func TestRenderCustomLocationRequiresAbsolutePath(t *testing.T) {
	project := t.TempDir()
	mgr := newManager(t, project)
	require.NoError(t, mgr.Root().SetThumbnailLocation("custom"))
	mgr.Root().SetThumbnailPath("relative/dir")
	_, err := mgr.NewGroup("2026-01-01", "1")
	require.NoError(t, err)

	r := New(mgr, fakeSource{width: 10, height: 10})
	_, err = r.Render(scan.Photo{Date: "2026-01-01", Group: "1", Path: filepath.Join(project, "2026-01-01", "1", "a.cr2")})
	require.Error(t, err)
}

func TestRenderCustomLocationWithAbsolutePath(t *testing.T) {
	project := t.TempDir()
	custom := t.TempDir()
	mgr := newManager(t, project)
	require.NoError(t, mgr.Root().SetThumbnailLocation("custom"))
	mgr.Root().SetThumbnailPath(custom)
	_, err := mgr.NewGroup("2026-01-01", "1")
	require.NoError(t, err)

	r := New(mgr, fakeSource{width: 10, height: 10})
	dest, err := r.Render(scan.Photo{Date: "2026-01-01", Group: "1", Path: filepath.Join(project, "2026-01-01", "1", "a.cr2")})
	require.NoError(t, err)
	require.Equal(t, filepath.Join(custom, "2026-01-01", "1", "a.jpg"), dest)
}

func TestRenderAppliesResizeFactor(t *testing.T) {
	project := t.TempDir()
	mgr := newManager(t, project)
	gc, err := mgr.NewGroup("2026-01-01", "1")
	require.NoError(t, err)
	require.NoError(t, gc.SetThumbnailResizeFactor(0.5))

	r := New(mgr, fakeSource{width: 200, height: 100})
	dest, err := r.Render(scan.Photo{Date: "2026-01-01", Group: "1", Path: filepath.Join(project, "2026-01-01", "1", "a.cr2")})
	require.NoError(t, err)

	f, err := os.Open(dest)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := jpeg.DecodeConfig(f)
	require.NoError(t, err)
	require.Equal(t, 100, cfg.Width)
	require.Equal(t, 50, cfg.Height)
}
