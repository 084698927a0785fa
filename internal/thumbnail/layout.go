package thumbnail

import (
	"fmt"
	"path/filepath"

	"github.com/billysbar/tlmerge/internal/config"
)

// outputPath derives the destination for one photo's thumbnail from its
// group's thumbnail_location and thumbnail_path, per the four layouts:
//
//	Root:   <project>/<path>/<date>/<group>/<stem>.jpg
//	Date:   <project>/<date>/<path>/<group>/<stem>.jpg
//	Group:  <project>/<date>/<group>/<path>/<stem>.jpg
//	Custom: <path>/<date>/<group>/<stem>.jpg (path must be absolute)
func outputPath(project, date, group, stem string, loc config.ThumbnailLocation, path string) (string, error) {
	name := stem + ".jpg"
	switch loc {
	case config.ThumbLocationRoot:
		return filepath.Join(project, path, date, group, name), nil
	case config.ThumbLocationDate:
		return filepath.Join(project, date, path, group, name), nil
	case config.ThumbLocationGroup:
		return filepath.Join(project, date, group, path, name), nil
	case config.ThumbLocationCustom:
		if !filepath.IsAbs(path) {
			return "", fmt.Errorf("thumbnail_path %q must be absolute when thumbnail_location is custom", path)
		}
		return filepath.Join(path, date, group, name), nil
	default:
		return "", fmt.Errorf("unknown thumbnail_location %d", loc)
	}
}
