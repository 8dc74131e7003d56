package sched

import (
	"runtime/debug"
	"sync"

	"github.com/gammazero/deque"
	"golang.org/x/sync/errgroup"
)

// DefaultWorkers is the default size of the worker pool.
const DefaultWorkers = 8

// DefaultStackMax is the default goroutine stack ceiling. Inference over
// deeply nested control flow recurses deeply.
const DefaultStackMax = 1 << 30

// Runtime is a fixed pool of workers fed by an unbounded run queue.
// Submitting never blocks.
type Runtime struct {
	mu     sync.Mutex
	cond   *sync.Cond
	queue  deque.Deque[func()]
	closed bool

	workers errgroup.Group
}

// NewRuntime starts a runtime with the given number of workers. stackMax, if
// positive, raises the process-wide goroutine stack ceiling.
func NewRuntime(workers, stackMax int) *Runtime {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if stackMax > 0 {
		debug.SetMaxStack(stackMax)
	}

	r := &Runtime{}
	r.cond = sync.NewCond(&r.mu)

	for range workers {
		r.workers.Go(func() error {
			r.work()
			return nil
		})
	}

	return r
}

// Submit queues job. Jobs submitted after Close are dropped and Submit
// reports false.
func (r *Runtime) Submit(job func()) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return false
	}

	r.queue.PushBack(job)
	r.cond.Signal()

	return true
}

// Close lets the workers finish the queued jobs, then stops them.
func (r *Runtime) Close() error {
	r.mu.Lock()
	r.closed = true
	r.cond.Broadcast()
	r.mu.Unlock()

	return r.workers.Wait()
}

func (r *Runtime) work() {
	for {
		r.mu.Lock()
		for r.queue.Len() == 0 && !r.closed {
			r.cond.Wait()
		}
		if r.queue.Len() == 0 {
			r.mu.Unlock()
			return
		}
		job := r.queue.PopFront()
		r.mu.Unlock()

		job()
	}
}
