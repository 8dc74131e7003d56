package sched

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gammazero/deque"

	"github.com/mpyw/goowl/internal/engine"
	"github.com/mpyw/goowl/internal/fatal"
)

// DefaultGrace is how long a new drain owner waits for a burst of
// submissions before it starts draining.
const DefaultGrace = 100 * time.Millisecond

// Sink receives drained results, in completion order.
type Sink interface {
	Emit(engine.Result) error
}

// Options configures a Scheduler.
type Options struct {
	Grace   time.Duration
	Clock   Clock
	Logger  *slog.Logger
	OnFatal func(error) // called for every fatal error, from the drain goroutine
}

// Scheduler owns the in-flight task set.
//
// One mutex covers insertion together with reading the resulting size, and
// removal. The Spawn call whose insert takes the set from 0 to 1 is the only
// one that can observe size 1, so it alone becomes drain owner; ownership
// lapses under the same lock as the removal that empties the set.
type Scheduler struct {
	rt      *Runtime
	sink    Sink
	grace   time.Duration
	clock   Clock
	logger  *slog.Logger
	onFatal func(error)

	mu        sync.Mutex
	inflight  map[*Task]struct{}
	completed deque.Deque[*Task]
	owner     bool
	err       error

	wake   chan struct{}
	drains sync.WaitGroup
}

// New creates a Scheduler running units on rt and emitting to sink.
func New(rt *Runtime, sink Sink, opts Options) *Scheduler {
	if opts.Clock == nil {
		opts.Clock = realClock{}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}

	return &Scheduler{
		rt:       rt,
		sink:     sink,
		grace:    opts.Grace,
		clock:    opts.Clock,
		logger:   opts.Logger,
		onFatal:  opts.OnFatal,
		inflight: make(map[*Task]struct{}),
		wake:     make(chan struct{}, 1),
	}
}

// Spawn schedules unit and returns immediately. It reports whether the caller
// was elected drain owner; the owner's drain loop runs on its own goroutine.
func (s *Scheduler) Spawn(unit engine.Unit) bool {
	t := newTask(unit)

	s.mu.Lock()
	s.inflight[t] = struct{}{}
	elected := len(s.inflight) == 1
	if elected {
		if s.owner {
			delete(s.inflight, t)
			s.mu.Unlock()
			s.fail(fatal.Internalf("elect drain owner", t.ID.String(), "a drain owner is already active"))
			return false
		}
		s.owner = true
		s.drains.Add(1)
	}
	s.mu.Unlock()

	if !s.rt.Submit(func() {
		t.run()
		s.complete(t)
	}) {
		t.abandon(errRuntimeClosed)
		s.complete(t)
	}

	if elected {
		s.logger.Debug("drain owner elected", "task", t.ID)
		go s.drain()
	}

	return elected
}

// Len returns the number of in-flight tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return len(s.inflight)
}

// Wait blocks until every spawned task has been drained and returns the first
// fatal error. Call it once no more Spawn calls can happen.
func (s *Scheduler) Wait() error {
	s.drains.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

func (s *Scheduler) complete(t *Task) {
	s.mu.Lock()
	s.completed.PushBack(t)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Scheduler) drain() {
	defer s.drains.Done()

	<-s.clock.After(s.grace)

	drained := 0
	for {
		s.mu.Lock()
		if len(s.inflight) == 0 {
			s.owner = false
			s.mu.Unlock()
			s.logger.Debug("drain owner released", "drained", drained)
			return
		}

		var t *Task
		last := false
		if s.completed.Len() > 0 {
			t = s.completed.PopFront()
			delete(s.inflight, t)
			// Ownership lapses with the removal that empties the set.
			if len(s.inflight) == 0 {
				s.owner = false
				last = true
			}
		}
		s.mu.Unlock()

		if t == nil {
			<-s.wake
			continue
		}

		drained++
		s.deliver(t)

		if last {
			s.logger.Debug("drain owner released", "drained", drained)
			return
		}
	}
}

func (s *Scheduler) deliver(t *Task) {
	if t.err != nil {
		s.fail(t.err)
		return
	}
	if err := s.sink.Emit(t.result); err != nil {
		s.fail(fatal.Wrap("emit", t.ID.String(), err))
	}
}

func (s *Scheduler) fail(err error) {
	s.mu.Lock()
	if s.err == nil {
		s.err = err
	}
	s.mu.Unlock()

	s.logger.Error("fatal", "class", fatal.ClassOf(err), "err", err)
	if s.onFatal != nil {
		s.onFatal(err)
	}
}
