package orchestrator

import (
	"fmt"
	"sort"
	"time"
)

// StallError reports that the orchestrator's main loop went silent for too
// long while draining the metadata queue -- a symptom of a hung extractor
// worker or a stuck store adapter, since neither ever blocks indefinitely
// by design.
type StallError struct {
	Elapsed     time.Duration
	PoolState   string
	Outstanding []string
}

func (e *StallError) Error() string {
	return fmt.Sprintf(
		"orchestrator stalled for %s (pool: %s); %d outstanding photo(s), e.g. %v",
		e.Elapsed.Round(time.Second), e.PoolState, len(e.Outstanding), e.Outstanding)
}

const (
	stallWarnAt1  = 10 * time.Second
	stallWarnAt2  = 30 * time.Second
	stallDumpStep = 60 * time.Second
	stallDumpMax  = 240 * time.Second
	stallFatalAt  = 5 * time.Minute

	maxOutstandingListed = 10
)

// stallTracker accumulates consecutive empty polls of the metadata queue
// and decides when to warn, dump diagnostics, or declare a fatal stall.
type stallTracker struct {
	since        time.Time
	warned10     bool
	warned30     bool
	lastDumpedAt time.Duration
}

func newStallTracker() *stallTracker {
	return &stallTracker{}
}

// poll records one empty (or non-empty) metadata-queue read. now is passed
// in explicitly so elapsed can be computed; got reports whether the read
// produced a result, which resets the stall clock.
func (t *stallTracker) poll(now time.Time, got bool) {
	if got {
		*t = stallTracker{}
		return
	}
	if t.since.IsZero() {
		t.since = now
	}
}

// check evaluates the current stall duration against the warn/dump/fatal
// thresholds, logging through logFn and returning a *StallError once the
// hard 5-minute threshold is crossed.
func (t *stallTracker) check(now time.Time, logFn func(elapsed time.Duration, dump bool)) error {
	if t.since.IsZero() {
		return nil
	}
	elapsed := now.Sub(t.since)

	switch {
	case elapsed >= stallFatalAt:
		return &StallError{Elapsed: elapsed}
	case elapsed >= stallDumpStep && elapsed-t.lastDumpedAt >= stallDumpStep && elapsed <= stallDumpMax+stallDumpStep:
		t.lastDumpedAt = elapsed
		logFn(elapsed, true)
	case elapsed >= stallWarnAt2 && !t.warned30:
		t.warned30 = true
		logFn(elapsed, false)
	case elapsed >= stallWarnAt1 && !t.warned10:
		t.warned10 = true
		logFn(elapsed, false)
	}
	return nil
}

// sampleOutstanding returns up to maxOutstandingListed keys from the
// outstanding set, sorted for deterministic diagnostics output.
func sampleOutstanding(outstanding map[string]struct{}) []string {
	all := make([]string, 0, len(outstanding))
	for k := range outstanding {
		all = append(all, k)
	}
	sort.Strings(all)
	if len(all) > maxOutstandingListed {
		all = all[:maxOutstandingListed]
	}
	return all
}
