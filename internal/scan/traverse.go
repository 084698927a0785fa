package scan

import (
	"fmt"
	"time"

	"github.com/billysbar/tlmerge/internal/config"
)

// Photo identifies one scanned photo file by its date/group directory names
// and full path.
type Photo struct {
	Date  string
	Group string
	Path  string
}

// Scanner produces a stream of photo paths under the project tree rooted at
// the config manager's RootConfig, subject to its include/exclude filters,
// group ordering policy, and sampling configuration.
type Scanner struct {
	mgr     *config.Manager
	Metrics *Metrics
}

// New creates a Scanner over the given config manager. If metrics is nil, a
// fresh Metrics tracker is created using the root's avg_photos_per_date.
func New(mgr *config.Manager, metrics *Metrics) *Scanner {
	if metrics == nil {
		metrics = NewMetrics(mgr.Root().AvgPhotosPerDate())
	}
	return &Scanner{mgr: mgr, Metrics: metrics}
}

func (s *Scanner) root() *config.RootConfig { return s.mgr.Root() }

// listDates lists and filters the project's date directories: names must
// parse under the configured date_format, and survive the root's
// include/exclude-dates filter. order sorts chronologically (by parsed
// time); randomize shuffles instead.
func (s *Scanner) listDates(order, randomize bool) ([]entry, error) {
	root := s.root()
	format := root.DateFormat()
	include, exclude := root.IncludeDates(), root.ExcludeDates()

	entries, err := listDir(root.Project(), maxDateLength, true,
		func(name string) bool { return config.Allowed(include, exclude, name) },
		func(name string) (any, bool) {
			if !config.MatchesDateFormat(name, format) {
				return nil, false
			}
			t, err := parseDateDir(name, format)
			if err != nil {
				return nil, false
			}
			return t, true
		})
	if err != nil {
		return nil, err
	}

	if randomize {
		shuffleEntries(entries)
	} else if order {
		orderByTime(entries)
	}
	return entries, nil
}

// parseDateDir converts a strftime-form format (as produced by
// ProcessDateFormat) into a time.Time for chronological ordering. Only the
// %Y/%y/%m/%d directives ProcessDateFormat emits need to be supported.
func parseDateDir(name, format string) (time.Time, error) {
	goLayout, err := strftimeToGoLayout(format)
	if err != nil {
		return time.Time{}, err
	}
	return time.Parse(goLayout, name)
}

func strftimeToGoLayout(format string) (string, error) {
	out := make([]byte, 0, len(format))
	runes := []rune(format)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '%' || i+1 >= len(runes) {
			out = append(out, string(runes[i])...)
			continue
		}
		switch runes[i+1] {
		case 'Y':
			out = append(out, "2006"...)
		case 'y':
			out = append(out, "06"...)
		case 'm':
			out = append(out, "01"...)
		case 'd':
			out = append(out, "02"...)
		case '%':
			out = append(out, '%')
		default:
			return "", fmt.Errorf("unsupported date_format directive %%%c", runes[i+1])
		}
		i++
	}
	return string(out), nil
}

func orderByTime(entries []entry) {
	for i := 1; i < len(entries); i++ {
		for j := i; j > 0 && entries[j].sortKey.(time.Time).Before(entries[j-1].sortKey.(time.Time)); j-- {
			entries[j], entries[j-1] = entries[j-1], entries[j]
		}
	}
}

// listGroups lists and filters the group directories within a date,
// honoring that date's group_ordering policy and include/exclude-groups
// filter (scanAll bypasses the filter, used by "scan_all" style tooling
// that needs every group regardless of config).
func (s *Scanner) listGroups(dateCfg *config.DateConfig, datePath string, order, randomize, scanAll bool) ([]entry, error) {
	ordering := dateCfg.GroupOrdering()

	var include, exclude config.StringSet
	if !scanAll {
		include, exclude = dateCfg.IncludeGroups(), dateCfg.ExcludeGroups()
	}

	entries, err := listDir(datePath, maxGroupLength, true,
		func(name string) bool {
			if scanAll {
				return true
			}
			return config.Allowed(include, exclude, name)
		},
		groupFilter(ordering))
	if err != nil {
		return nil, err
	}

	if randomize {
		shuffleEntries(entries)
		return entries, nil
	}
	return applyGroupOrdering(entries, ordering, order), nil
}

// listPhotos lists the photo files within a group, skipping the sentinel
// config file, honoring the group's include/exclude-photos filter.
func (s *Scanner) listPhotos(groupCfg *config.GroupConfig, groupPath string, order, randomize bool) ([]entry, error) {
	include, exclude := groupCfg.IncludePhotos(), groupCfg.ExcludePhotos()

	entries, err := listDir(groupPath, maxPhotoLength, false,
		func(name string) bool {
			if name == config.DefaultConfigFile {
				return false
			}
			return config.Allowed(include, exclude, name)
		},
		nil)
	if err != nil {
		return nil, err
	}

	if randomize {
		shuffleEntries(entries)
	} else if order {
		orderNatural(entries)
	}
	return entries, nil
}
