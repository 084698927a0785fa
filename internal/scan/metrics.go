package scan

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/rs/zerolog/log"
)

// updateEstimate blends a prior average with a new observation, weighting
// the prior more heavily as more observations accumulate. The weight
// follows this sigmoid curve:
//
//	w(x) = 0.5 + 0.5/(1+e^{-9(x-0.5)})
//
// where x is the fraction of the total already observed. With exactly one
// observation so far, the prior (based on zero observations) is discarded
// and the new value is returned unmodified.
func updateEstimate(prior float64, nTotal, nRemaining int, observed float64) float64 {
	nElapsed := nTotal - nRemaining
	if nElapsed == 1 {
		return observed
	}

	x := float64(nElapsed-1) / float64(nTotal)
	priorWeight := 0.5 + 0.5/(1+math.Exp(-9*(x-0.5)))
	return prior*priorWeight + observed*(1-priorWeight)
}

// Metrics tracks scan progress and maintains a running estimate of the
// total photo count for ETA purposes. It has no terminal progress-table
// widget to drive; it exposes counters and periodic summary logging
// instead.
type Metrics struct {
	mu sync.Mutex

	totalFiles   int
	invalidFiles int

	totalDates     int
	datesRemaining int
	totalGroups    int
	groupsRemaining int
	groupsInDate    int

	photosInGroup int
	photosInDate  int

	estimate      int
	avgPerDate    float64
	avgPerGroup   float64
	estTotalGroups float64
	estGroupRatio  float64

	fixedSample bool
	started     bool
}

// NewMetrics creates a Metrics tracker, seeded with an initial guess for the
// average number of photos per date (refined after the first group
// completes).
func NewMetrics(initialAvgPhotosPerDate int) *Metrics {
	return &Metrics{avgPerDate: float64(initialAvgPhotosPerDate), estGroupRatio: 1}
}

// Start records the total date count and initializes the photo-count
// estimate. sampleSize >= 1 indicates a fixed-size sample (no estimation
// needed); sampleSize <= 0 means "no sample" (estimate from averages). A
// Metrics tracker can only be started once.
func (m *Metrics) Start(dates, sampleSize int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return errors.New("scan metrics already started")
	}
	m.started = true
	m.totalDates, m.datesRemaining = dates, dates
	if sampleSize > 0 {
		m.fixedSample = true
		m.setEstimateLocked(sampleSize)
	} else {
		m.setEstimateLocked(int(m.avgPerDate * float64(dates)))
	}
	return nil
}

func (m *Metrics) setEstimateLocked(total int) { m.estimate = total }

// StartDate records the beginning of a new date directory. groups is the
// number of groups in that date; pass -1 if unknown (only valid for a fixed
// sample, where the total estimate doesn't depend on per-date group counts).
func (m *Metrics) StartDate(dateStr string, groups int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.photosInDate = 0
	m.datesRemaining--

	if groups >= 0 {
		m.groupsInDate, m.groupsRemaining = groups, groups
		m.totalGroups += groups
	} else {
		m.groupsInDate, m.groupsRemaining = -1, 0
	}

	if !m.fixedSample && groups > 0 {
		m.avgPerGroup = m.avgPerDate / float64(groups)
		m.estTotalGroups = float64(m.totalGroups) / float64(m.totalDates-m.datesRemaining) * float64(m.totalDates)
	}
	log.Debug().Str("date", dateStr).Msg("scanning date")
}

// StartGroup records the beginning of a new group directory within the
// current date.
func (m *Metrics) StartGroup(groupStr string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.photosInGroup = 0
	if m.groupsRemaining > 0 {
		m.groupsRemaining--
	}
	if m.groupsInDate < 0 {
		m.totalGroups++
	}
	if !m.fixedSample && m.estTotalGroups > 0 {
		m.estGroupRatio = float64(m.totalGroups-m.groupsRemaining) / m.estTotalGroups
	}
	log.Debug().Str("group", groupStr).Msg("scanning group")
}

// NextPhoto records a scanned photo (or, if invalid, a non-photo file) and
// returns true when a fixed-size sample has just been completed -- the
// caller should stop scanning in that case.
func (m *Metrics) NextPhoto(invalid bool) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.totalFiles++
	if invalid {
		m.invalidFiles++
		return false
	}
	m.photosInGroup++
	m.photosInDate++

	total := m.totalFiles - m.invalidFiles
	if m.fixedSample {
		return total == m.estimate
	}

	if total > m.estimate {
		m.recalculateLocked(10, false)
	}
	if float64(total)/float64(m.estimate) > m.estGroupRatio {
		m.avgPerGroup *= 1.25
		m.recalculateLocked(0, false)
	}
	return false
}

// MarkInvalid retroactively marks an already-yielded photo as invalid,
// driven by the extractor finding an unreadable RAW file well after the
// scanner moved on.
func (m *Metrics) MarkInvalid() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidFiles++
}

// EndGroup finalizes the current group's contribution to the running
// per-group average.
func (m *Metrics) EndGroup() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.fixedSample {
		return
	}

	m.avgPerGroup = updateEstimate(m.avgPerGroup, m.groupsInDate, m.groupsRemaining, float64(m.photosInGroup))

	// datesRemaining == totalDates-1 means the current date is the first
	// one (StartDate already decremented it once); groupsRemaining+1 ==
	// groupsInDate means the group that just finished was the first group
	// in that date.
	if m.datesRemaining == m.totalDates-1 && m.groupsRemaining+1 == m.groupsInDate {
		// The very first group of the very first date just finished:
		// replace the seeded initial estimate with observed data.
		m.avgPerGroup = float64(m.photosInGroup)
		m.avgPerDate = m.avgPerGroup * float64(m.groupsInDate)
		m.setEstimateLocked(int(m.avgPerDate * float64(m.totalDates)))
	} else {
		m.recalculateLocked(0, true)
	}
}

// EndDate finalizes the current date's contribution to the running
// per-date average.
func (m *Metrics) EndDate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fixedSample {
		m.avgPerDate = updateEstimate(m.avgPerDate, m.totalDates, m.datesRemaining, float64(m.photosInDate))
	}
}

// End finalizes the estimate at 100% once scanning (or sampling) completes.
func (m *Metrics) End() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.fixedSample {
		m.setEstimateLocked(m.totalFiles)
	}
}

// recalculateLocked refines the running photo-count estimate. ghostInc adds
// a temporary buffer to the estimate (used when the observed count has
// already exceeded it); finishedGroup is false mid-group, in which case the
// remaining expected photos in the active group are added too.
func (m *Metrics) recalculateLocked(ghostInc int, finishedGroup bool) {
	refinedAvgPerGroup := m.avgPerGroup
	if ghostInc > 0 {
		refinedAvgPerGroup = updateEstimate(m.avgPerGroup, m.groupsInDate, m.groupsRemaining,
			float64(m.photosInGroup+ghostInc))
	}

	remainingInDate := refinedAvgPerGroup * float64(m.groupsRemaining)
	if !finishedGroup {
		if rest := refinedAvgPerGroup - float64(m.photosInGroup); rest > 0 {
			remainingInDate += rest
		}
	}

	refinedAvgPerDate := updateEstimate(m.avgPerDate, m.totalDates, m.datesRemaining,
		float64(m.photosInDate)+remainingInDate)

	m.setEstimateLocked(int(
		float64(m.totalFiles+ghostInc) + refinedAvgPerDate*float64(m.datesRemaining) + remainingInDate))
}

// RemainingPhotos is the estimate minus photos scanned so far -- used by the
// stratified random sampler to decide when to open another date.
func (m *Metrics) RemainingPhotos() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estimate - (m.totalFiles - m.invalidFiles)
}

// TotalPhotos is the number of valid photos scanned so far.
func (m *Metrics) TotalPhotos() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalFiles - m.invalidFiles
}

// Summary logs a one-line info/warning summary of the completed scan,
// mirroring the original scanner's log_summary.
func (m *Metrics) Summary(sample, random bool) {
	m.mu.Lock()
	total := m.totalFiles - m.invalidFiles
	estimate := m.estimate
	dates, groups := m.totalDates, m.totalGroups
	fixed := m.fixedSample
	m.mu.Unlock()

	if total == 0 {
		log.Warn().Int("dates", dates).Int("groups", groups).Msg("scan found no photos")
		return
	}

	kind := "Found a total"
	if random {
		kind = "Got randomized sample"
	} else if sample {
		kind = "Got deterministic sample"
	}

	if fixed && total < estimate {
		log.Warn().Msgf("%s: sampled only %d of the desired %d photos", kind, total, estimate)
		return
	}

	log.Info().Msg(fmt.Sprintf("%s of %d photo(s) from %d group(s) in %d date(s)", kind, total, groups, dates))
}
