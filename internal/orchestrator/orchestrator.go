// Package orchestrator runs the preprocessing pipeline: it starts the
// directory scanner and a bounded worker pool, alternates pulling scanned
// paths and finished metadata on the main thread, applies metadata to the
// identity store, and watches for stalls.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/billysbar/tlmerge/internal/config"
	"github.com/billysbar/tlmerge/internal/extract"
	"github.com/billysbar/tlmerge/internal/pool"
	"github.com/billysbar/tlmerge/internal/scan"
)

// metadataQueueSize is the default capacity of the bounded metadata queue
// between the pool and the orchestrator's main loop.
const metadataQueueSize = 100

// loopAPollInterval bounds how long Loop A waits for a metadata result
// before going back to check for another scanned path.
const loopAPollInterval = 200 * time.Millisecond

// Summary reports the outcome of one orchestrator run, printed as the
// single end-of-run line spec calls for.
type Summary struct {
	New          int
	Updated      int
	Errors       int
	InvalidFiles int
	TotalScanned int
}

func (s Summary) String() string {
	return fmt.Sprintf("new=%d updated=%d errors=%d invalid=%d scanned=%d",
		s.New, s.Updated, s.Errors, s.InvalidFiles, s.TotalScanned)
}

// Orchestrator wires the scanner, metadata extractor, and identity store
// together. It owns the pool's lifecycle and is the pipeline's sole
// database writer.
type Orchestrator struct {
	mgr         *config.Manager
	scanner     *scan.Scanner
	extractor   *extract.Extractor
	exifFactory extract.ExifReaderFactory
	readers     *readerPool
	store       Store

	invalidFiles atomic.Int64

	outstandingMu sync.Mutex
	outstanding   map[string]struct{}

	cancel          context.CancelFunc
	errorBudget     int
	storeErrorCount atomic.Int64
	budgetErrMu     sync.Mutex
	budgetErr       error
	budgetErrors    []error
}

// New creates an Orchestrator. exifFactory builds one ExifReader per
// concurrently in-flight extraction task.
func New(mgr *config.Manager, scanner *scan.Scanner, extractor *extract.Extractor, exifFactory extract.ExifReaderFactory, store Store) *Orchestrator {
	return &Orchestrator{
		mgr:         mgr,
		scanner:     scanner,
		extractor:   extractor,
		exifFactory: exifFactory,
		store:       store,
		outstanding: make(map[string]struct{}),
	}
}

// determineWorkerCount applies spec's worker-count formula: fewer than 2
// configured workers always becomes 2 (one goroutine is reserved for the
// scanner); a small enabled sample caps the count at sample size + 1 so the
// pool is never bigger than the work it could possibly receive.
func determineWorkerCount(configured int, sample config.Sample) int {
	if configured < 2 {
		return 2
	}
	if sample.Enabled && sample.Size+1 < configured {
		return sample.Size + 1
	}
	return configured
}

func photoID(date, group, fileName string) string {
	return fmt.Sprintf("%s/%s/%s", date, group, fileName)
}

// Run drives the full pipeline to completion: Loop A while the scanner is
// still producing paths, Loop B draining the pool afterward, then a single
// commit. It returns the run's summary even when it returns a non-nil
// error, reflecting whatever was applied before the failure.
func (o *Orchestrator) Run(ctx context.Context) (Summary, error) {
	root := o.mgr.Root()
	workerCount := determineWorkerCount(root.Workers(), root.Sample())
	poolWorkers := workerCount - 1
	if poolWorkers < 1 {
		poolWorkers = 1
	}
	log.Info().Int("requested_workers", root.Workers()).Int("effective_workers", workerCount).
		Int("pool_workers", poolWorkers).
		Msg("determined worker count (one goroutine reserved for the scanner)")

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	o.cancel = cancel
	o.errorBudget = root.ErrorBudget()

	o.readers = newReaderPool(o.exifFactory, poolWorkers)

	results := make(chan any, metadataQueueSize)
	p, err := pool.New(pool.Options{
		MaxWorkers:     poolWorkers,
		ErrorThreshold: root.ErrorBudget(),
		NamePrefix:     "extract-",
		TaskQueueSize:  metadataQueueSize,
		Results:        results,
		ErrorHandler:   o.handleTaskError,
	})
	if err != nil {
		return Summary{}, err
	}
	if err := p.Start(); err != nil {
		return Summary{}, err
	}

	var summary Summary
	photos := scan.EnqueueThread(runCtx, o.scanner)

	loopErr := o.loopA(runCtx, p, results, photos, &summary)
	if loopErr == nil {
		loopErr = o.loopB(runCtx, p, results, &summary)
	}
	if loopErr != nil {
		o.budgetErrMu.Lock()
		if o.budgetErr != nil {
			loopErr = o.budgetErr
		}
		o.budgetErrMu.Unlock()
	}

	closeErr := p.Close(loopErr != nil)
	joinErr := p.Join()
	if closeErr == nil {
		closeErr = joinErr
	}
	if readerErr := o.readers.closeAll(); readerErr != nil {
		log.Warn().Err(readerErr).Msg("error closing EXIF readers")
	}
	summary.InvalidFiles = o.InvalidFiles()

	if loopErr != nil {
		return summary, loopErr
	}
	if closeErr != nil {
		return summary, closeErr
	}

	if err := o.store.Commit(); err != nil {
		return summary, fmt.Errorf("committing store: %w", err)
	}
	log.Info().Str("summary", summary.String()).Msg("preprocessing run complete")
	return summary, nil
}

// loopA submits scanned photos to the pool and drains whatever metadata
// has already come back, until the scanner's channel closes or the run is
// cancelled.
func (o *Orchestrator) loopA(ctx context.Context, p *pool.Pool, results chan any, photos <-chan scan.Photo, summary *Summary) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case photo, ok := <-photos:
			if !ok {
				return nil
			}
			summary.TotalScanned++
			if err := o.submit(p, photo); err != nil {
				return err
			}
		default:
		}

		select {
		case res := <-results:
			o.applyResult(p, res, summary)
		case <-time.After(loopAPollInterval):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// loopB closes the pool to new submissions and drains the remaining
// metadata results, watching for a silent stall the whole time.
func (o *Orchestrator) loopB(ctx context.Context, p *pool.Pool, results chan any, summary *Summary) error {
	tracker := newStallTracker()

	for !p.IsFinished() || len(results) > 0 {
		if err := ctx.Err(); err != nil {
			return err
		}

		select {
		case res := <-results:
			o.applyResult(p, res, summary)
			tracker.poll(time.Now(), true)
		case <-time.After(loopAPollInterval):
			tracker.poll(time.Now(), false)
		case <-ctx.Done():
			return ctx.Err()
		}

		if err := tracker.check(time.Now(), o.logStall(p)); err != nil {
			var stall *StallError
			if errors.As(err, &stall) {
				stall.PoolState = p.Progress()
				stall.Outstanding = o.snapshotOutstanding()
				log.Error().Str("pool", stall.PoolState).Strs("outstanding", stall.Outstanding).
					Msg("orchestrator stalled, giving up")
			}
			return err
		}
	}
	return nil
}

func (o *Orchestrator) logStall(p *pool.Pool) func(elapsed time.Duration, dump bool) {
	return func(elapsed time.Duration, dump bool) {
		ev := log.Warn().Dur("elapsed", elapsed.Round(time.Second))
		if dump {
			ev = ev.Str("pool", p.Progress()).Strs("outstanding", o.snapshotOutstanding())
		}
		ev.Msg("orchestrator main loop has been idle")
	}
}

func (o *Orchestrator) submit(p *pool.Pool, photo scan.Photo) error {
	fileName := filepath.Base(photo.Path)
	id := photoID(photo.Date, photo.Group, fileName)

	o.outstandingMu.Lock()
	o.outstanding[id] = struct{}{}
	o.outstandingMu.Unlock()

	task := func() (any, error) {
		reader, err := o.readers.acquire()
		if err != nil {
			return nil, fmt.Errorf("acquiring EXIF reader for %q: %w", id, err)
		}
		defer o.readers.release(reader)

		meta, err := o.extractor.Extract(photo.Date, photo.Group, fileName, photo.Path, reader)
		if err != nil {
			return nil, err
		}
		return meta, nil
	}

	if err := p.Submit(task, id); err != nil {
		o.outstandingMu.Lock()
		delete(o.outstanding, id)
		o.outstandingMu.Unlock()
		return err
	}
	return nil
}

// handleTaskError is the pool's ErrorHandler: an invalid/unreadable RAW
// file is swallowed here and counted separately, per spec's
// InvalidPhotoFile policy; everything else is left for the pool's normal
// error-budget accounting.
func (o *Orchestrator) handleTaskError(err error, id string) bool {
	o.outstandingMu.Lock()
	delete(o.outstanding, id)
	o.outstandingMu.Unlock()

	var invalid *extract.InvalidRawFile
	if errors.As(err, &invalid) {
		o.invalidFiles.Add(1)
		log.Warn().Str("photo", id).Err(err).Msg("invalid RAW file, skipping")
		return true
	}
	return false
}

func (o *Orchestrator) applyResult(p *pool.Pool, res any, summary *Summary) {
	meta, ok := res.(*extract.PhotoMetadata)
	if !ok || meta == nil {
		return
	}

	id := photoID(meta.Date, meta.Group, meta.FileName)
	o.outstandingMu.Lock()
	delete(o.outstanding, id)
	o.outstandingMu.Unlock()

	created, updated, err := o.store.Apply(meta)
	if err != nil {
		summary.Errors++
		o.recordBudgetError(p, err, id, "failed to apply metadata to store")
		return
	}
	switch {
	case created:
		summary.New++
	case updated:
		summary.Updated++
	}
	if err := o.store.Flush(); err != nil {
		summary.Errors++
		o.recordBudgetError(p, err, id, "failed to flush store")
	}
}

// recordBudgetError logs a store failure and, since store writes happen on
// the main thread outside the pool, folds it into the same error budget
// the pool enforces for extraction failures: once the combined count
// exceeds the budget, the run is cancelled exactly as the pool would
// cancel itself.
func (o *Orchestrator) recordBudgetError(p *pool.Pool, err error, id, msg string) {
	log.Error().Str("photo", id).Err(err).Msg(msg)
	total := int(o.storeErrorCount.Add(1)) + p.ErrorCount()

	o.budgetErrMu.Lock()
	o.budgetErrors = append(o.budgetErrors, fmt.Errorf("%s %s: %w", msg, id, err))
	if total > o.errorBudget && o.budgetErr == nil {
		o.budgetErr = &pool.ExceedsErrorThreshold{Threshold: o.errorBudget, Errors: o.budgetErrors}
	}
	o.budgetErrMu.Unlock()

	if total > o.errorBudget {
		o.cancel()
	}
}

func (o *Orchestrator) snapshotOutstanding() []string {
	o.outstandingMu.Lock()
	defer o.outstandingMu.Unlock()
	return sampleOutstanding(o.outstanding)
}

// InvalidFiles reports how many files the RAW decoder rejected outright
// during the most recent run.
func (o *Orchestrator) InvalidFiles() int { return int(o.invalidFiles.Load()) }
