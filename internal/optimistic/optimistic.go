// Package optimistic applies a state change to the local cache before the
// server confirms it, and rolls it back if the server refuses.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/julianstephens/hekate/internal/cache"
	herrors "github.com/julianstephens/hekate/internal/errors"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/notify"
)

var (
	// ErrNoop is returned when the entity is already in the target state.
	ErrNoop = errors.New("already in target state")
	// ErrInFlight is returned when a mutation for the same entity has not
	// finished yet.
	ErrInFlight = errors.New("mutation already in flight")
)

// Mutation describes one optimistic change.
type Mutation[T any] struct {
	// Key identifies the entity; one mutation per key runs at a time.
	Key string
	// Queries are snapshotted before Patch runs and restored on failure.
	Queries []cache.Key
	// Done reports whether the entity is already in the target state.
	Done func(*cache.Store) bool
	// Patch applies the change to the cached queries.
	Patch func(*cache.Store) error
	// Request performs the change on the server.
	Request func(ctx context.Context) (T, error)
	// Reconcile lists the queries dropped after success so the next read
	// sees the server's view. Prefixes drop whole key families.
	Reconcile         []cache.Key
	ReconcilePrefixes []string
	// Refetch optionally reloads the reconciled queries right away.
	Refetch func(ctx context.Context) error
	// ErrorMessage is shown to the user when Request fails.
	ErrorMessage string
	// SuccessMessage is shown when Request succeeds, if set.
	SuccessMessage string
}

// Runner holds the in-flight guard shared by every mutation.
type Runner struct {
	store    *cache.Store
	notifier notify.Notifier

	patched  func(key string)

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// Option configures a Runner.
type Option func(*Runner)

// WithPatchHook calls fn with the mutation key once the optimistic patch is
// in the cache and before the request is sent. Views use it to redraw the
// patched state while the server is still answering.
func WithPatchHook(fn func(key string)) Option {
	return func(r *Runner) {
		r.patched = fn
	}
}

func NewRunner(store *cache.Store, notifier notify.Notifier, opts ...Option) *Runner {
	if notifier == nil {
		notifier = notify.Discard{}
	}
	r := &Runner{
		store:    store,
		notifier: notifier,
		inFlight: make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) Store() *cache.Store { return r.store }

// InFlight reports whether a mutation for key is running.
func (r *Runner) InFlight(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.inFlight[key]
	return ok
}

func (r *Runner) acquire(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.inFlight[key]; ok {
		return false
	}
	r.inFlight[key] = struct{}{}
	return true
}

func (r *Runner) release(key string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.inFlight, key)
}

func (r *Runner) restore(snaps []cache.Snapshot) {
	for i := len(snaps) - 1; i >= 0; i-- {
		r.store.Restore(snaps[i])
	}
}

// Run executes m against r. A failed request restores every snapshotted
// query and notifies the user. If ctx ends before the request returns the
// cache is restored silently and nothing is reconciled, even if the server
// answered.
func Run[T any](ctx context.Context, r *Runner, m Mutation[T]) (T, error) {
	var zero T

	if m.Done != nil && m.Done(r.store) {
		return zero, ErrNoop
	}
	if !r.acquire(m.Key) {
		return zero, fmt.Errorf("%s: %w", m.Key, ErrInFlight)
	}
	defer r.release(m.Key)

	snaps := make([]cache.Snapshot, 0, len(m.Queries))
	for _, q := range m.Queries {
		snaps = append(snaps, r.store.Snapshot(q))
	}
	if m.Patch != nil {
		if err := m.Patch(r.store); err != nil {
			r.restore(snaps)
			return zero, fmt.Errorf("applying optimistic patch for %s: %w", m.Key, err)
		}
		if r.patched != nil {
			r.patched(m.Key)
		}
	}

	result, err := m.Request(ctx)

	if ctxErr := ctx.Err(); ctxErr != nil {
		r.restore(snaps)
		logger.Warn("Mutation abandoned, cache restored", "key", m.Key, "error", ctxErr)
		return zero, ctxErr
	}

	if err != nil {
		r.restore(snaps)
		logger.Warn("Mutation failed, cache restored", "key", m.Key, "error", err)
		if m.ErrorMessage == "" {
			return zero, err
		}
		r.notifier.Notify(notify.LevelError, m.ErrorMessage)
		return zero, &herrors.UserError{Message: m.ErrorMessage, Cause: err}
	}

	r.store.Invalidate(m.Reconcile...)
	for _, prefix := range m.ReconcilePrefixes {
		r.store.InvalidatePrefix(prefix)
	}
	if m.Refetch != nil {
		if err := m.Refetch(ctx); err != nil {
			logger.Warn("Refetch after mutation failed", "key", m.Key, "error", err)
		}
	}
	if m.SuccessMessage != "" {
		r.notifier.Notify(notify.LevelSuccess, m.SuccessMessage)
	}
	return result, nil
}
