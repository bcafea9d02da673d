// Package resource orchestrates fetching one kind of remote data (the public
// catalog, the owner's inventory, a single part detail) on behalf of a view.
//
// Each Fetcher owns a small state machine, Idle → Loading → {Success, Failed},
// and a retry counter that is independent of (and coarser than) the
// per-request retries inside apiclient: when a whole logical fetch fails, the
// fetcher schedules another one after an exponential backoff, up to
// MaxAttempts. At the bound the failure becomes terminal until an explicit
// Retry call resets the counter.
//
// Every fetch carries a monotonic generation number; a completion whose
// generation is stale (a newer fetch has started, or the fetcher was closed)
// is discarded instead of clobbering newer state.
package resource

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Status is the lifecycle state of a fetcher.
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// Config holds the coarse retry schedule. The defaults mirror the request
// level ones: 3 attempts, 1s initial delay doubling up to 10s.
type Config struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// DefaultConfig returns the standard schedule.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     10 * time.Second,
	}
}

// LoadFunc performs one logical fetch of the resource.
type LoadFunc[T any] func(ctx context.Context) (T, error)

// Snapshot is a point-in-time view of a fetcher for rendering.
type Snapshot[T any] struct {
	Status   Status
	Data     T
	Err      error // classified; apiclient.KindOf recovers the kind
	Attempts int
	// Placeholder is true when Data is the configured fallback dataset
	// rather than a fetched result. Status stays Failed in that case.
	Placeholder bool
}

// Fetcher drives fetches for a single resource kind. Safe for concurrent use.
type Fetcher[T any] struct {
	mu   sync.Mutex
	name string
	load LoadFunc[T]
	cfg  Config

	status      Status
	data        T
	err         error
	attempts    int
	placeholder *T
	usedPholder bool
	onChange    func(Snapshot[T])

	generation uint64
	retryTimer *time.Timer
	closed     bool
}

// Option configures a Fetcher.
type Option[T any] func(*Fetcher[T])

// WithPlaceholder sets a fallback dataset exposed when the retry budget is
// exhausted, so a listing view is never left with nothing to show. The
// fallback is presentation only: status stays Failed and the attempt counter
// is not reset. Opt-in on purpose: masking errors with plausible-looking
// data is the wrong default.
func WithPlaceholder[T any](data T) Option[T] {
	return func(f *Fetcher[T]) { f.placeholder = &data }
}

// WithOnChange registers a callback invoked with a snapshot after every state
// transition.
func WithOnChange[T any](fn func(Snapshot[T])) Option[T] {
	return func(f *Fetcher[T]) { f.onChange = fn }
}

// New creates a Fetcher for one resource kind. name is used in logs only.
func New[T any](name string, load LoadFunc[T], cfg Config, opts ...Option[T]) *Fetcher[T] {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	f := &Fetcher[T]{
		name:   name,
		load:   load,
		cfg:    cfg,
		status: StatusIdle,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch runs one logical fetch synchronously: it returns once the attempt has
// completed and state has been updated. On failure within the attempt budget
// an automatic re-fetch is scheduled in the background. Overlapping calls are
// permitted; the newest call wins and stale completions are dropped.
func (f *Fetcher[T]) Fetch(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	if f.attempts >= f.cfg.MaxAttempts {
		// Terminal failure: only an explicit Retry re-arms this fetcher.
		f.mu.Unlock()
		slog.DebugContext(ctx, "fetch refused, retry budget exhausted", "resource", f.name)
		return
	}
	f.generation++
	gen := f.generation
	f.stopRetryLocked()
	f.status = StatusLoading
	f.err = nil
	snap := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(snap)

	data, err := f.load(ctx)
	f.complete(ctx, gen, data, err)
}

// Retry resets the attempt counter and starts a fresh fetch. This is the
// explicit user-triggered escape from a terminal failure.
func (f *Fetcher[T]) Retry(ctx context.Context) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.attempts = 0
	f.mu.Unlock()

	f.Fetch(ctx)
}

// Close tears the fetcher down: pending auto-retries are cancelled and any
// in-flight completion is discarded. Call when the consuming view goes away.
func (f *Fetcher[T]) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopRetryLocked()
}

// Snapshot returns the current state.
func (f *Fetcher[T]) Snapshot() Snapshot[T] {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Fetcher[T]) snapshotLocked() Snapshot[T] {
	return Snapshot[T]{
		Status:      f.status,
		Data:        f.data,
		Err:         f.err,
		Attempts:    f.attempts,
		Placeholder: f.usedPholder,
	}
}

// complete applies the outcome of the fetch tagged with gen, unless that
// fetch has been superseded or the fetcher closed in the meantime.
func (f *Fetcher[T]) complete(ctx context.Context, gen uint64, data T, err error) {
	f.mu.Lock()
	if f.closed || gen != f.generation {
		f.mu.Unlock()
		slog.DebugContext(ctx, "discarding stale fetch result", "resource", f.name)
		return
	}

	if err == nil {
		f.status = StatusSuccess
		f.data = data
		f.err = nil
		f.attempts = 0
		f.usedPholder = false
		snap := f.snapshotLocked()
		f.mu.Unlock()
		f.notify(snap)
		return
	}

	delay := f.backoffLocked()
	f.attempts++
	f.status = StatusFailed
	f.err = err

	if f.attempts >= f.cfg.MaxAttempts {
		// Terminal: no more self-retries until an explicit Retry call.
		slog.WarnContext(ctx, "fetch failed, giving up",
			"resource", f.name, "attempts", f.attempts, "error", err)
		if f.placeholder != nil {
			f.data = *f.placeholder
			f.usedPholder = true
		}
		snap := f.snapshotLocked()
		f.mu.Unlock()
		f.notify(snap)
		return
	}

	slog.InfoContext(ctx, "fetch failed, retrying",
		"resource", f.name, "attempt", f.attempts, "delay", delay, "error", err)
	f.retryTimer = time.AfterFunc(delay, func() {
		f.Fetch(ctx)
	})
	snap := f.snapshotLocked()
	f.mu.Unlock()
	f.notify(snap)
}

// backoffLocked is min(InitialDelay * 2^attempts, MaxDelay) for the attempt
// count before this failure is recorded: 1s, 2s, 4s with the defaults.
func (f *Fetcher[T]) backoffLocked() time.Duration {
	delay := f.cfg.InitialDelay
	for i := 0; i < f.attempts; i++ {
		delay *= 2
		if delay >= f.cfg.MaxDelay {
			return f.cfg.MaxDelay
		}
	}
	if delay > f.cfg.MaxDelay {
		return f.cfg.MaxDelay
	}
	return delay
}

func (f *Fetcher[T]) stopRetryLocked() {
	if f.retryTimer != nil {
		f.retryTimer.Stop()
		f.retryTimer = nil
	}
}

func (f *Fetcher[T]) notify(snap Snapshot[T]) {
	if f.onChange != nil {
		f.onChange(snap)
	}
}
