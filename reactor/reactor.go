// Package reactor implements the Resilient Reactor Thread: a dedicated OS
// thread that runs a blocking I/O loop and broadcasts events to any number
// of subscribers, restarting itself on transient failure. spec.md 4.7.
//
// Go has no built-in multi-producer/multi-consumer broadcast channel, so
// RRT fans events out to a mutex-guarded slice of per-subscriber channels
// rather than a single shared channel — the same shape
// dcosson-h2/internal/session's subscriber-list broadcast uses for
// distributing session output to multiple attached viewers.
package reactor

import (
	"log/slog"
	"math"
	"runtime"
	"sync"
	"time"
)

// Continuation is a worker's instruction to the reactor after one blocking
// dispatch cycle.
type Continuation int

const (
	// Continue means call BlockUntilReadyThenDispatch again immediately.
	Continue Continuation = iota
	// Stop means the worker has permanently finished; the reactor tears
	// down and enters the Terminated state.
	Stop
	// Restart means the worker hit a transient failure; the reactor
	// applies RestartPolicy and asks the factory for a fresh worker.
	Restart
)

// RestartPolicy bounds self-healing restarts: a maximum attempt count and
// an exponential backoff between attempts.
type RestartPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultRestartPolicy allows a handful of quick restarts before giving up,
// backing off exponentially up to a five-second ceiling.
var DefaultRestartPolicy = RestartPolicy{MaxAttempts: 5, BaseDelay: 50 * time.Millisecond, MaxDelay: 5 * time.Second}

func (p RestartPolicy) delay(attempt int) time.Duration {
	d := float64(p.BaseDelay) * math.Pow(2, float64(attempt))
	if d > float64(p.MaxDelay) {
		d = float64(p.MaxDelay)
	}
	return time.Duration(d)
}

// Waker lets any goroutine nudge the reactor's blocked worker so it can
// notice a Stop request. Implementations must be safe to call concurrently
// and idempotent (waking an already-awake worker is a no-op, not an
// error).
type Waker interface {
	Wake()
}

// Worker owns the blocking I/O source and produces events of type E. A
// factory is called once per (re)start to build a fresh (Worker, Waker)
// pair, since most blocking sources (file descriptors, OS threads) can't
// be reused across a restart.
type Worker[E any] interface {
	// BlockUntilReadyThenDispatch blocks until the next event is ready,
	// sends it via send, and reports how the reactor should proceed. A
	// worker that produces no event on a given wake (e.g. a pure wakeup
	// to check for Stop) may call send zero times.
	BlockUntilReadyThenDispatch(send func(E)) Continuation
	// RestartPolicy returns this worker's restart bounds.
	RestartPolicy() RestartPolicy
}

// Factory builds a fresh worker and its waker, invoked on first Subscribe
// and again after every Restart.
type Factory[E any] func() (Worker[E], Waker, error)

// subscriber bundles one Subscribe caller's event channel with its lag
// channel: the missed count accumulates whenever events is full and the
// worker thread drops rather than blocks, and is delivered on lagged the
// next time that delivery itself doesn't also have to be dropped.
type subscriber[E any] struct {
	events chan E
	lagged chan int
	missed int
}

type state[E any] struct {
	generation int
	worker     Worker[E]
	waker      Waker
	subs       []*subscriber[E]
	terminated bool
	stopCh     chan struct{}
}

// Subscription is what Subscribe returns: the event stream itself, plus a
// side channel reporting broadcast lag (spec.md 5/7's Lagged(n_missed)
// recoverable error) for this particular subscriber. Both channels close
// together when the reactor terminates.
type Subscription[E any] struct {
	Events <-chan E
	Lagged <-chan int
}

// RRT is the reactor container for one event type. The zero value is not
// usable; construct with New.
type RRT[E any] struct {
	mu      sync.Mutex
	factory Factory[E]
	logger  *slog.Logger
	st      *state[E]
}

// Option configures an RRT at construction time.
type Option[E any] func(*RRT[E])

// WithLogger overrides the default logger used for broadcast-lag and
// restart-exhaustion diagnostics.
func WithLogger[E any](l *slog.Logger) Option[E] {
	return func(r *RRT[E]) { r.logger = l }
}

// New creates an inert reactor: no thread runs until the first Subscribe.
func New[E any](factory Factory[E], opts ...Option[E]) *RRT[E] {
	r := &RRT[E]{factory: factory, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Subscribe returns a Subscription for this reactor's events. If the worker
// thread is already running, this is the fast path: a new subscriber is
// appended to the broadcast list with no thread spawned. If the thread is
// absent or terminated, this is the slow path: the factory builds a fresh
// worker and the reactor spawns its dedicated thread.
func (r *RRT[E]) Subscribe() (Subscription[E], error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.st != nil && !r.st.terminated {
		sub := newSubscriber[E]()
		r.st.subs = append(r.st.subs, sub)
		return Subscription[E]{Events: sub.events, Lagged: sub.lagged}, nil
	}

	worker, waker, err := r.factory()
	if err != nil {
		return Subscription[E]{}, err
	}
	generation := 0
	if r.st != nil {
		generation = r.st.generation + 1
	}
	sub := newSubscriber[E]()
	st := &state[E]{
		generation: generation,
		worker:     worker,
		waker:      waker,
		subs:       []*subscriber[E]{sub},
		stopCh:     make(chan struct{}),
	}
	r.st = st
	go r.run(st)
	return Subscription[E]{Events: sub.events, Lagged: sub.lagged}, nil
}

func newSubscriber[E any]() *subscriber[E] {
	return &subscriber[E]{events: make(chan E, 16), lagged: make(chan int, 1)}
}

// Waker returns the current worker's waker, or nil if the reactor is
// inert. Safe to call from any goroutine.
func (r *RRT[E]) Waker() Waker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.st == nil {
		return nil
	}
	return r.st.waker
}

// run is the dedicated OS thread: it pins itself so the worker's blocking
// syscall always resumes on the same thread, then loops dispatch cycles
// until Stop, applying RestartPolicy on Restart.
func (r *RRT[E]) run(st *state[E]) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	worker := st.worker
	attempt := 0
	for {
		cont := worker.BlockUntilReadyThenDispatch(func(e E) { r.broadcast(st, e) })
		switch cont {
		case Continue:
			attempt = 0
			continue
		case Stop:
			r.terminate(st)
			return
		case Restart:
			policy := worker.RestartPolicy()
			if attempt >= policy.MaxAttempts {
				r.logger.Warn("reactor: restart policy exhausted, terminating", "attempts", attempt)
				r.terminate(st)
				return
			}
			time.Sleep(policy.delay(attempt))
			attempt++
			newWorker, newWaker, err := r.factory()
			if err != nil {
				r.terminate(st)
				return
			}
			r.mu.Lock()
			st.worker = newWorker
			st.waker = newWaker
			st.generation++
			r.mu.Unlock()
			worker = newWorker
		}
	}
}

func (r *RRT[E]) broadcast(st *state[E], e E) {
	r.mu.Lock()
	subs := st.subs
	r.mu.Unlock()
	for _, sub := range subs {
		select {
		case sub.events <- e:
		default:
			// A slow subscriber drops events rather than blocking the sole
			// writer thread (spec.md 4.7 makes the worker thread the single
			// writer and never has it wait on a consumer), but the drop is
			// surfaced as a Lagged(n_missed) notification per spec.md 5/7
			// rather than silently vanishing.
			sub.missed++
			select {
			case sub.lagged <- sub.missed:
				sub.missed = 0
			default:
				// The lagged channel itself is backed up (consumer isn't
				// even draining that); keep accumulating until it is.
			}
			r.logger.Warn("reactor: dropped broadcast event for slow subscriber", "missed", sub.missed)
		}
	}
}

func (r *RRT[E]) terminate(st *state[E]) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st.terminated = true
	close(st.stopCh)
	for _, sub := range st.subs {
		close(sub.events)
		close(sub.lagged)
	}
}

// Terminated reports whether the reactor's worker thread has permanently
// stopped (Stop returned, or RestartPolicy was exhausted).
func (r *RRT[E]) Terminated() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.st != nil && r.st.terminated
}
