package scan

import (
	"context"
	"math/rand/v2"

	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
)

func shuffleEntries(entries []entry) {
	rand.Shuffle(len(entries), func(i, j int) { entries[i], entries[j] = entries[j], entries[i] })
}

// streamOrdered walks the project tree in lexicographic/policy order,
// yielding every photo (sampleSize < 0) or stopping once sampleSize photos
// have been yielded (a deterministic sample).
func (s *Scanner) streamOrdered(ctx context.Context, sampleSize int, yield func(Photo) bool) error {
	dateEntries, err := s.listDates(true, false)
	if err != nil {
		return err
	}
	if err := s.Metrics.Start(len(dateEntries), sampleSize); err != nil {
		return err
	}

	for _, de := range dateEntries {
		if err := ctx.Err(); err != nil {
			return err
		}
		dateCfg, err := s.mgr.NewDate(de.name)
		if err != nil {
			return err
		}

		groupEntries, err := s.listGroups(dateCfg, de.path, true, false, false)
		if err != nil {
			return err
		}
		s.Metrics.StartDate(de.name, len(groupEntries))

		for _, ge := range groupEntries {
			if err := ctx.Err(); err != nil {
				return err
			}
			groupCfg, err := s.mgr.NewGroup(de.name, ge.name)
			if err != nil {
				return err
			}
			s.Metrics.StartGroup(ge.name)

			photoEntries, err := s.listPhotos(groupCfg, ge.path, true, false)
			if err != nil {
				return err
			}

			for _, pe := range photoEntries {
				if err := ctx.Err(); err != nil {
					return err
				}
				stop := s.Metrics.NextPhoto(false)
				if !yield(Photo{Date: de.name, Group: ge.name, Path: pe.path}) {
					return nil
				}
				if stop {
					s.Metrics.End()
					return nil
				}
			}
			s.Metrics.EndGroup()
		}
		s.Metrics.EndDate()
	}
	s.Metrics.End()
	return nil
}

// dateIterator holds one open date directory's randomized traversal state:
// a shuffled list of its groups, and the shuffled photo list of whichever
// group is currently active. Groups (and their photos) are consumed one at
// a time rather than flattening the whole date into memory up front, to
// keep memory proportional to the number of open dates.
type dateIterator struct {
	date     string
	groups   []entry
	groupIdx int
	photos   []entry
	photoIdx int
	curGroup string
}

// newDateIterator opens a date directory for random sampling: it lists and
// shuffles the date's groups, then opens the first group's shuffled photo
// list. Returns ok=false if the date has no groups at all (an empty date,
// skipped by the caller).
func newDateIterator(s *Scanner, dateName, datePath string) (*dateIterator, bool, error) {
	dateCfg, err := s.mgr.NewDate(dateName)
	if err != nil {
		return nil, false, err
	}

	groups, err := s.listGroups(dateCfg, datePath, false, true, false)
	if err != nil {
		return nil, false, err
	}
	if len(groups) == 0 {
		return nil, false, nil
	}

	s.Metrics.StartDate(dateName, -1)

	di := &dateIterator{date: dateName, groups: groups}
	if err := di.openGroup(s, 0); err != nil {
		return nil, false, err
	}
	return di, true, nil
}

func (di *dateIterator) openGroup(s *Scanner, idx int) error {
	di.groupIdx = idx
	ge := di.groups[idx]
	di.curGroup = ge.name

	groupCfg, err := s.mgr.NewGroup(di.date, ge.name)
	if err != nil {
		return err
	}
	s.Metrics.StartGroup(ge.name)

	photos, err := s.listPhotos(groupCfg, ge.path, false, true)
	if err != nil {
		return err
	}
	di.photos, di.photoIdx = photos, 0
	return nil
}

// next returns the next photo from this date, opening subsequent groups as
// the current one's photos are exhausted. ok is false once the whole date
// has been consumed.
func (di *dateIterator) next(s *Scanner) (Photo, bool, error) {
	for {
		if di.photoIdx < len(di.photos) {
			pe := di.photos[di.photoIdx]
			di.photoIdx++
			return Photo{Date: di.date, Group: di.curGroup, Path: pe.path}, true, nil
		}
		s.Metrics.EndGroup()
		if di.groupIdx+1 >= len(di.groups) {
			return Photo{}, false, nil
		}
		if err := di.openGroup(s, di.groupIdx+1); err != nil {
			return Photo{}, false, err
		}
	}
}

// streamRandom performs a stratified random sample: a round-robin over a
// work list of open date iterators, opening additional dates only while
// there are fewer open dates than photos still needed, so memory use stays
// proportional to the number of concurrently open dates rather than the
// whole project tree.
//
// A literal port of the reference sampler would stop opening new dates and
// then immediately abandon the whole sample once the date list is
// exhausted, discarding any photos still sitting in already-open dates.
// This instead keeps draining open dates until they're empty, yielding
// until the sample size is reached or every date has been fully consumed.
func (s *Scanner) streamRandom(ctx context.Context, sampleSize int, yield func(Photo) bool) error {
	dateEntries, err := s.listDates(false, true)
	if err != nil {
		return err
	}
	if err := s.Metrics.Start(len(dateEntries), sampleSize); err != nil {
		return err
	}

	var open []*dateIterator
	next := 0
	g := 0
	datesExhausted := false

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if !datesExhausted && len(open)-g < s.Metrics.RemainingPhotos() {
			if next >= len(dateEntries) {
				datesExhausted = true
			} else {
				de := dateEntries[next]
				next++
				di, ok, err := newDateIterator(s, de.name, de.path)
				if err != nil {
					return err
				}
				if !ok {
					log.Debug().Str("date", de.name).Msg("date has no groups")
					continue
				}
				open = append(open, di)
			}
		}

		if g >= len(open) {
			if g == 0 {
				break
			}
			g = 0
			continue
		}

		di := open[g]
		photo, ok, err := di.next(s)
		if err != nil {
			return err
		}
		if !ok {
			open = append(open[:g], open[g+1:]...)
			continue
		}

		stop := s.Metrics.NextPhoto(false)
		if !yield(photo) {
			return nil
		}
		if stop {
			break
		}
		g++
	}

	s.Metrics.End()
	return nil
}
