package orchestrator

import (
	"errors"
	"sync"

	"github.com/billysbar/tlmerge/internal/extract"
)

// readerPool hands out ExifReaders to in-flight extraction tasks and takes
// them back when the task finishes. Each reader wraps an external resource
// that must not be used by two tasks at once; the worker pool itself doesn't expose
// per-goroutine lifecycle hooks, so this keeps a one-reader-per-concurrent-task
// invariant instead: a task always has exclusive use of the one it's
// holding. readerPool does not enforce `max` itself; a new reader is made
// only when every existing one is in use, so at most `max` readers exist as
// long as at most `max` tasks run at once, which the worker pool's
// MaxWorkers guarantees.
type readerPool struct {
	factory extract.ExifReaderFactory
	max     int

	mu      sync.Mutex
	idle    []extract.ExifReader
	created int
}

func newReaderPool(factory extract.ExifReaderFactory, max int) *readerPool {
	if max < 1 {
		max = 1
	}
	return &readerPool{factory: factory, max: max}
}

// acquire returns an idle reader if one exists, otherwise creates a new one
// without checking max. Callers must release what they acquire.
func (p *readerPool) acquire() (extract.ExifReader, error) {
	p.mu.Lock()
	if n := len(p.idle); n > 0 {
		r := p.idle[n-1]
		p.idle = p.idle[:n-1]
		p.mu.Unlock()
		return r, nil
	}
	p.created++
	p.mu.Unlock()
	return p.factory()
}

func (p *readerPool) release(r extract.ExifReader) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.idle = append(p.idle, r)
}

// closeAll closes every idle reader, called once the orchestrator is
// finished submitting work.
func (p *readerPool) closeAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var errs []error
	for _, r := range p.idle {
		if err := r.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	p.idle = nil
	return errors.Join(errs...)
}
