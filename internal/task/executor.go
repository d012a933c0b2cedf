// Package task provides the single serialized execution context that owns
// all GPU work in a frame pipeline.
//
// Exactly one background goroutine drains the task queue, which respects
// the one-GPU-context-at-a-time constraint of the underlying graphics
// API: all shared pipeline state is touched only from that goroutine.
// Client-facing entry points submit tasks and return immediately.
package task

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrReleased is reported for tasks submitted after Release.
var ErrReleased = errors.New("task: executor released")

// Task is one unit of work run on the execution goroutine. A returned
// error is captured and forwarded to the executor's error handler, never
// propagated across the goroutine boundary.
type Task func() error

// Executor serializes tasks onto one background goroutine.
//
// Submission order is preserved within each priority class; high-priority
// tasks run before queued normal tasks. Normal tasks come in two classes:
// control tasks (Submit) always run, in order; discardable tasks
// (SubmitDiscardable) are frame work that Flush may drop. This mirrors
// the pipeline's flush contract: queued frames are cleared, but
// registrations and end-of-stream signals queued behind them still run
// exactly once.
type Executor struct {
	mu       sync.Mutex
	cond     *sync.Cond
	high     []Task
	queue    []queued
	released bool

	onError func(error)
	log     *slog.Logger
	done    chan struct{}
}

// queued is one normal-priority queue entry.
type queued struct {
	run         Task
	discardable bool
	// drop runs instead of the task when Flush discards the entry.
	drop func()
}

// NewExecutor starts the execution goroutine. Task errors are delivered to
// onError on the execution goroutine; onError must not block.
func NewExecutor(onError func(error), log *slog.Logger) *Executor {
	if onError == nil {
		onError = func(error) {}
	}
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	e := &Executor{
		onError: onError,
		log:     log,
		done:    make(chan struct{}),
	}
	e.cond = sync.NewCond(&e.mu)
	go e.loop()
	return e
}

// Submit enqueues a control task, which survives Flush. Tasks submitted
// after Release are dropped and reported as ErrReleased.
func (e *Executor) Submit(t Task) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		e.onError(ErrReleased)
		return
	}
	e.queue = append(e.queue, queued{run: t})
	e.cond.Broadcast()
	e.mu.Unlock()
}

// SubmitDiscardable enqueues frame work that Flush may drop. When the
// entry is dropped, drop (if non-nil) runs on the flushing goroutine in
// place of the task, so submission-side bookkeeping can be unwound.
func (e *Executor) SubmitDiscardable(t Task, drop func()) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		e.onError(ErrReleased)
		return
	}
	e.queue = append(e.queue, queued{run: t, discardable: true, drop: drop})
	e.cond.Broadcast()
	e.mu.Unlock()
}

// SubmitHighPriority enqueues a task ahead of all queued normal tasks.
// Used for flush and release control work that must overtake frame
// processing.
func (e *Executor) SubmitHighPriority(t Task) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		e.onError(ErrReleased)
		return
	}
	e.high = append(e.high, t)
	e.cond.Broadcast()
	e.mu.Unlock()
}

// Flush drops all pending discardable tasks, then runs barrier (if
// non-nil) on the execution goroutine and blocks the caller until it has
// completed. Control tasks stay queued in order and run after the
// barrier. The task in flight when Flush is called runs to completion
// first; that race is part of the pipeline's documented flush semantics.
func (e *Executor) Flush(barrier Task) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		return
	}
	var kept []queued
	var dropped []queued
	for _, q := range e.queue {
		if q.discardable {
			dropped = append(dropped, q)
			continue
		}
		kept = append(kept, q)
	}
	e.queue = kept
	e.mu.Unlock()

	for _, q := range dropped {
		if q.drop != nil {
			q.drop()
		}
	}
	if len(dropped) > 0 {
		e.log.Debug("executor flush dropped tasks", "count", len(dropped))
	}

	fence := make(chan struct{})
	e.SubmitHighPriority(func() error {
		var err error
		if barrier != nil {
			err = barrier()
		}
		close(fence)
		return err
	})
	<-fence
}

// Release runs final (if non-nil) after all currently queued tasks, then
// stops the goroutine. Further submissions are dropped. Release blocks
// until the goroutine has exited and is safe to call multiple times; only
// the first call runs final.
func (e *Executor) Release(final Task) {
	e.mu.Lock()
	if e.released {
		e.mu.Unlock()
		<-e.done
		return
	}
	e.released = true
	if final != nil {
		// Queued after pending work, before shutdown.
		e.queue = append(e.queue, queued{run: final})
	}
	e.cond.Broadcast()
	e.mu.Unlock()
	<-e.done
}

// loop drains the queues until released and empty.
func (e *Executor) loop() {
	defer close(e.done)
	for {
		e.mu.Lock()
		for len(e.high) == 0 && len(e.queue) == 0 && !e.released {
			e.cond.Wait()
		}
		var t Task
		switch {
		case len(e.high) > 0:
			t = e.high[0]
			e.high = e.high[1:]
		case len(e.queue) > 0:
			t = e.queue[0].run
			e.queue = e.queue[1:]
		default:
			// Released with nothing left to run.
			e.mu.Unlock()
			return
		}
		e.mu.Unlock()

		if err := e.safeRun(t); err != nil {
			e.onError(err)
		}
	}
}

// safeRun executes a task, converting a panic into an error so one bad
// frame cannot take down the execution goroutine.
func (e *Executor) safeRun(t Task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if rerr, ok := r.(error); ok {
				err = rerr
				return
			}
			err = errors.New("task: panic in task")
			e.log.Warn("panic in pipeline task", "value", r)
		}
	}()
	return t()
}
