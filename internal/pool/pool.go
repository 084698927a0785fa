// Package pool implements a bounded, multi-worker task pool with
// error-threshold cancellation: up to max_workers goroutines pull closures
// off a bounded queue, tolerate up to error_threshold failures, and
// otherwise collect every failure into one composite error when the
// threshold is exceeded.
package pool

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// State is one of the worker pool's five lifecycle states.
type State int

const (
	NotStarted State = iota
	Running
	Closed
	Cancelling
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Running:
		return "running"
	case Closed:
		return "closed"
	case Cancelling:
		return "cancelling"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Task is a unit of work submitted to the pool. Its return value, if any,
// is forwarded to the configured results channel.
type Task func() (any, error)

// ErrorHandler inspects a recoverable task failure and may swallow it by
// returning true, in which case it does not count toward the error budget.
type ErrorHandler func(err error, id string) bool

// FatalError marks a task failure as unrecoverable: the pool cancels
// immediately and propagates it unchanged, bypassing the error budget and
// any ErrorHandler.
type FatalError struct{ Err error }

func (e *FatalError) Error() string { return e.Err.Error() }
func (e *FatalError) Unwrap() error { return e.Err }

// ExceedsErrorThreshold is the composite error raised when the pool's
// error budget is exceeded. Unwrap returns every contributing error, so
// errors.Is/As can inspect them individually.
type ExceedsErrorThreshold struct {
	Threshold int
	Errors    []error
}

func (e *ExceedsErrorThreshold) Error() string {
	plural := "s"
	if e.Threshold == 1 {
		plural = ""
	}
	return fmt.Sprintf("too many errors: worker pool exceeded threshold of %d error%s (%d total)",
		e.Threshold, plural, len(e.Errors))
}

func (e *ExceedsErrorThreshold) Unwrap() []error { return e.Errors }

// Options configures a new Pool.
type Options struct {
	MaxWorkers     int
	ErrorThreshold int
	NamePrefix     string
	OnCloseHook    func()
	ErrorHandler   ErrorHandler
	// TaskQueueSize bounds the task queue. <= 0 approximates "unbounded"
	// with a generously sized buffer -- Go channels can't be truly
	// unbounded, which mirrors the practical memory ceiling the Python
	// original's nominally-unbounded queue.Queue() has anyway.
	TaskQueueSize int
	// Results, if non-nil, receives every task's successful return value.
	// The pool never closes it; the caller owns its lifecycle.
	Results chan any
}

const unboundedQueueSize = 4096

type taskItem struct {
	task Task
	id   string
}

// Pool dispatches Tasks to at most MaxWorkers goroutines, lazily spawned as
// tasks are submitted, with error-threshold cancellation.
type Pool struct {
	opts Options

	mu            sync.Mutex
	cond          *sync.Cond
	state         State
	errors        []error
	exception     error
	activeWorkers int
	workerCounter int
	tasks         chan taskItem
}

// New creates a pool in the NotStarted state.
func New(opts Options) (*Pool, error) {
	if opts.MaxWorkers <= 0 {
		return nil, fmt.Errorf("must have a positive max_workers count: got %d", opts.MaxWorkers)
	}
	if opts.NamePrefix == "" {
		opts.NamePrefix = "wkr-"
	}
	size := opts.TaskQueueSize
	if size <= 0 {
		size = unboundedQueueSize
	}
	p := &Pool{
		opts:  opts,
		tasks: make(chan taskItem, size),
	}
	p.cond = sync.NewCond(&p.mu)
	return p, nil
}

func (p *Pool) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *Pool) ErrorCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.errors)
}

func (p *Pool) CurrentWorkers() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.activeWorkers
}

// Tasks returns the approximate number of tasks currently enqueued.
func (p *Pool) Tasks() int { return len(p.tasks) }

func (p *Pool) IsFinished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state == Finished
}

// Progress summarizes the pool's current activity, for stall diagnostics.
func (p *Pool) Progress() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case NotStarted:
		return "not started"
	case Finished:
		return "finished"
	default:
		w, q := p.activeWorkers, len(p.tasks)
		workerWord, taskWord := "worker", "task"
		if w != 1 {
			workerWord = "workers"
		}
		if q != 1 {
			taskWord = "tasks"
		}
		return fmt.Sprintf("%s (%d active %s and ~%d enqueued %s)", p.state, w, workerWord, q, taskWord)
	}
}

// Start transitions the pool into Running, allowing Submit calls.
func (p *Pool) Start() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state != NotStarted {
		return fmt.Errorf("can't start worker pool in state %s; expected not-started", p.state)
	}
	p.state = Running
	return nil
}

// Submit adds a task to the queue, lazily spawning a worker if fewer than
// MaxWorkers are currently active. It blocks while the queue is full,
// logging staged warnings, and fails after 5 minutes of continuous
// back-pressure.
func (p *Pool) Submit(task Task, id string) error {
	if task == nil {
		return errors.New("can't submit a nil task to the worker pool")
	}

	p.mu.Lock()
	switch p.state {
	case NotStarted:
		p.mu.Unlock()
		return fmt.Errorf("can't submit a task before starting the worker pool")
	case Cancelling:
		p.mu.Unlock()
		return nil // silently dropped; the error will surface from Close/Join
	case Closed:
		p.mu.Unlock()
		return fmt.Errorf("can't submit a task to the worker pool after it's closed")
	case Finished:
		exc := p.exception
		p.mu.Unlock()
		if exc != nil {
			return exc
		}
		return fmt.Errorf("can't submit a task to the worker pool after it's finished")
	}
	p.mu.Unlock()

	item := taskItem{task: task, id: id}
	start := time.Now()
	var warned5, warned20, warned60 bool
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case p.tasks <- item:
			p.maybeSpawnWorker()
			return nil
		case <-ticker.C:
			elapsed := time.Since(start)
			switch {
			case elapsed >= 5*time.Minute:
				return fmt.Errorf(
					"request to submit task %q timed out after 5 minutes: the task queue is full", id)
			case elapsed >= 60*time.Second && !warned60:
				warned60 = true
				log.Warn().Str("task", id).Dur("elapsed", elapsed).
					Msg("worker pool running abnormally slow")
			case elapsed >= 20*time.Second && !warned20:
				warned20 = true
				log.Warn().Str("task", id).Dur("elapsed", elapsed).
					Msg("worker pool running abnormally slow")
			case elapsed >= 5*time.Second && !warned5:
				warned5 = true
				log.Warn().Str("task", id).Dur("elapsed", elapsed).
					Msg("delayed while attempting to submit task to worker pool")
			}

			p.mu.Lock()
			st, exc := p.state, p.exception
			p.mu.Unlock()
			if st == Finished {
				if exc != nil {
					return exc
				}
				return fmt.Errorf("worker pool finished while waiting to submit task %q", id)
			}
		}
	}
}

func (p *Pool) maybeSpawnWorker() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.activeWorkers >= p.opts.MaxWorkers {
		return
	}
	p.workerCounter++
	p.activeWorkers++
	name := p.opts.NamePrefix + fmt.Sprint(p.workerCounter)
	go p.workerLoop(name)
}

func (p *Pool) workerLoop(name string) {
	defer p.finishWorker()

	for {
		p.mu.Lock()
		cancelling := p.state == Cancelling
		p.mu.Unlock()
		if cancelling {
			return
		}

		select {
		case item := <-p.tasks:
			p.runTask(item)
		default:
			log.Debug().Str("worker", name).Msg("task queue empty, exiting worker")
			return
		}
	}
}

func (p *Pool) runTask(item taskItem) {
	result, err := p.invoke(item.task)

	if err == nil {
		if p.opts.Results != nil {
			p.opts.Results <- result
		}
		return
	}

	id := strings.TrimSpace(item.id)
	if id == "" {
		id = "task"
	}

	var fatalErr *FatalError
	fatal := errors.As(err, &fatalErr)

	p.mu.Lock()
	if fatal {
		log.Error().Str("task", id).Err(err).Msg("task failed with fatal error")
		if p.exception == nil {
			p.exception = err
		}
	} else if p.opts.ErrorHandler != nil && p.opts.ErrorHandler(err, id) {
		p.mu.Unlock()
		return
	} else {
		log.Error().Str("task", id).Err(err).Msg("task failed")
		p.errors = append(p.errors, err)
		if len(p.errors) <= p.opts.ErrorThreshold {
			p.mu.Unlock()
			return
		}
	}

	if p.state == Cancelling {
		p.mu.Unlock()
		return
	}
	p.state = Cancelling
	p.cond.Broadcast()
	p.mu.Unlock()

	log.Debug().Msg("cancelling: waiting for other workers to finish before recording errors")
	p.mu.Lock()
	for p.activeWorkers > 1 {
		p.cond.Wait()
	}
	if p.exception == nil {
		p.exception = &ExceedsErrorThreshold{Threshold: p.opts.ErrorThreshold, Errors: p.errors}
	}
	p.state = Finished
	remaining := len(p.tasks)
	p.cond.Broadcast()
	p.mu.Unlock()

	if remaining > 0 {
		word := "tasks"
		if remaining == 1 {
			word = "task"
		}
		log.Warn().Int("remaining", remaining).Msgf("%d %s in worker pool not finished", remaining, word)
	}
}

// invoke runs task, converting a panic into a FatalError so a host-level
// failure inside a task can never take down the pool's goroutines.
func (p *Pool) invoke(task Task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &FatalError{Err: fmt.Errorf("panic in task: %v", r)}
		}
	}()
	return task()
}

func (p *Pool) finishWorker() {
	p.mu.Lock()
	p.activeWorkers--
	p.mu.Unlock()

	if p.opts.OnCloseHook != nil {
		p.opts.OnCloseHook()
	}

	p.mu.Lock()
	if p.state == Closed && p.activeWorkers == 0 {
		p.state = Finished
	}
	p.cond.Broadcast()
	p.mu.Unlock()
}

// Close stops accepting new tasks. If clearTasks is set, any tasks still
// queued (but not yet picked up by a worker) are discarded. If the pool
// was cancelled due to a failure, that error is returned.
func (p *Pool) Close(clearTasks bool) error {
	p.mu.Lock()
	switch p.state {
	case NotStarted:
		p.mu.Unlock()
		return fmt.Errorf("can't close worker pool before starting it")
	case Running:
		p.state = Closed
		if p.activeWorkers == 0 {
			// No workers are running to drive the Closed->Finished
			// transition themselves (the queue emptied out before Close
			// was called), so do it here.
			p.state = Finished
		}
		p.cond.Broadcast()
	}
	exc := p.exception
	p.mu.Unlock()

	if clearTasks {
		p.drainTasks()
	}
	return exc
}

func (p *Pool) drainTasks() {
	for {
		select {
		case <-p.tasks:
		default:
			return
		}
	}
}

// Join blocks until every worker has exited, returning the pool's terminal
// error (if any). It must be called after Close.
func (p *Pool) Join() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state == NotStarted || p.state == Running {
		return fmt.Errorf("can't join worker pool while %s", p.state)
	}

	for !(p.state == Finished && p.activeWorkers == 0) {
		p.cond.Wait()
	}
	return p.exception
}
