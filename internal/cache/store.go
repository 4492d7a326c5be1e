// Package cache holds the client's copy of server query results.
//
// It is the only shared mutable state in the client. Callers never edit
// cached values in place: they read a copy, or apply a patch through Patch /
// Update, which returns a Snapshot that Restore puts back.
package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/julianstephens/hekate/internal/constants"
	"github.com/julianstephens/hekate/internal/logger"
	"github.com/julianstephens/hekate/internal/storage"
)

// Persister keeps entries across process restarts.
type Persister interface {
	SaveEntry(storage.Entry) error
	DeleteEntry(key string) error
	DeletePrefix(prefix string) error
	AllEntries() ([]storage.Entry, error)
}

type Options struct {
	Size      int
	TTL       time.Duration
	Now       func() time.Time
	Persister Persister
}

type entry struct {
	value     []byte
	fetchedAt time.Time
}

// Snapshot is the state of one key before a patch.
type Snapshot struct {
	Key       Key
	Value     []byte
	FetchedAt time.Time
	Present   bool
}

type Store struct {
	mu      sync.Mutex
	entries *lru.Cache[Key, entry]
	ttl     time.Duration
	now     func() time.Time
	persist Persister
}

// New creates an empty store.
func New(opts Options) (*Store, error) {
	if opts.Size <= 0 {
		opts.Size = constants.DefaultCacheSize
	}
	if opts.TTL <= 0 {
		opts.TTL = constants.DefaultCacheTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	entries, err := lru.New[Key, entry](opts.Size)
	if err != nil {
		return nil, fmt.Errorf("creating cache: %w", err)
	}
	return &Store{
		entries: entries,
		ttl:     opts.TTL,
		now:     opts.Now,
		persist: opts.Persister,
	}, nil
}

// Now returns the store's clock reading.
func (s *Store) Now() time.Time { return s.now() }

// Hydrate loads persisted entries that are still fresh.
func (s *Store) Hydrate() error {
	if s.persist == nil {
		return nil
	}
	saved, err := s.persist.AllEntries()
	if err != nil {
		return fmt.Errorf("loading persisted cache: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := 0
	for _, e := range saved {
		if s.expired(e.FetchedAt) {
			continue
		}
		s.entries.Add(Key(e.Key), entry{value: e.Value, fetchedAt: e.FetchedAt})
		loaded++
	}
	logger.Debug("Hydrated cache", "entries", loaded, "persisted", len(saved))
	return nil
}

func (s *Store) expired(fetchedAt time.Time) bool {
	return s.now().Sub(fetchedAt) >= s.ttl
}

// Get returns a copy of the raw value for key. Expired entries are misses.
func (s *Store) Get(key Key) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.getLocked(key)
	if !ok {
		return nil, false
	}
	return clone(e.value), true
}

func (s *Store) getLocked(key Key) (entry, bool) {
	e, ok := s.entries.Get(key)
	if !ok {
		return entry{}, false
	}
	if s.expired(e.fetchedAt) {
		s.entries.Remove(key)
		return entry{}, false
	}
	return e, true
}

// FetchedAt returns when key was last written.
func (s *Store) FetchedAt(key Key) (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.getLocked(key)
	return e.fetchedAt, ok
}

// Set stores a raw value as freshly fetched.
func (s *Store) Set(key Key, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLocked(key, entry{value: clone(value), fetchedAt: s.now()})
}

func (s *Store) setLocked(key Key, e entry) {
	s.entries.Add(key, e)
	if s.persist != nil {
		if err := s.persist.SaveEntry(storage.Entry{Key: string(key), Value: e.value, FetchedAt: e.fetchedAt}); err != nil {
			logger.Warn("Failed to persist cache entry", "key", key, "error", err)
		}
	}
}

// Patch applies fn to the value under key atomically and returns the
// snapshot to restore on failure. A missing key is left untouched and the
// snapshot reports Present=false. The entry keeps its fetch time so a patch
// never makes stale data look fresh.
func (s *Store) Patch(key Key, fn func([]byte) ([]byte, error)) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.getLocked(key)
	snap := Snapshot{Key: key, Present: ok}
	if !ok {
		return snap, nil
	}
	snap.Value = clone(e.value)
	snap.FetchedAt = e.fetchedAt

	next, err := fn(clone(e.value))
	if err != nil {
		return snap, err
	}
	s.setLocked(key, entry{value: next, fetchedAt: e.fetchedAt})
	return snap, nil
}

// Snapshot captures key without changing it.
func (s *Store) Snapshot(key Key) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.getLocked(key)
	if !ok {
		return Snapshot{Key: key}
	}
	return Snapshot{Key: key, Value: clone(e.value), FetchedAt: e.fetchedAt, Present: true}
}

// Restore puts a snapshot back, removing the key if it was absent.
func (s *Store) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !snap.Present {
		s.invalidateLocked(snap.Key)
		return
	}
	s.setLocked(snap.Key, entry{value: clone(snap.Value), fetchedAt: snap.FetchedAt})
}

// Invalidate drops key so the next read refetches.
func (s *Store) Invalidate(keys ...Key) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.invalidateLocked(key)
	}
}

func (s *Store) invalidateLocked(key Key) {
	s.entries.Remove(key)
	if s.persist != nil {
		if err := s.persist.DeleteEntry(string(key)); err != nil {
			logger.Warn("Failed to delete persisted cache entry", "key", key, "error", err)
		}
	}
}

// InvalidatePrefix drops every key in a family.
func (s *Store) InvalidatePrefix(prefix string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range s.entries.Keys() {
		if key.HasPrefix(prefix) {
			s.entries.Remove(key)
		}
	}
	if s.persist != nil {
		if err := s.persist.DeletePrefix(prefix); err != nil {
			logger.Warn("Failed to delete persisted cache entries", "prefix", prefix, "error", err)
		}
	}
}

// Clear drops everything.
func (s *Store) Clear() {
	s.InvalidatePrefix("")
}

// Keys returns the live keys in sorted order.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []Key
	for _, key := range s.entries.Keys() {
		if _, ok := s.getLocked(key); ok {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// ErrSkip aborts an Update without error and leaves the value unchanged.
var ErrSkip = errors.New("cache: skip update")

// Load decodes the value under key.
func Load[T any](s *Store, key Key) (T, bool, error) {
	var out T
	raw, ok := s.Get(key)
	if !ok {
		return out, false, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, false, fmt.Errorf("decoding cached %s: %w", key, err)
	}
	return out, true, nil
}

// Put encodes and stores v under key.
func Put[T any](s *Store, key Key, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s for cache: %w", key, err)
	}
	s.Set(key, raw)
	return nil
}

// Update decodes the value under key, lets fn modify it and stores the
// result, returning the previous snapshot. fn may return ErrSkip to leave
// the entry as it was.
func Update[T any](s *Store, key Key, fn func(*T) error) (Snapshot, error) {
	return s.Patch(key, func(raw []byte) ([]byte, error) {
		var v T
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("decoding cached %s: %w", key, err)
		}
		if err := fn(&v); err != nil {
			if errors.Is(err, ErrSkip) {
				return raw, nil
			}
			return nil, err
		}
		return json.Marshal(v)
	})
}
