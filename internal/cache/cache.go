// Package cache is an in-memory keyed store for server query results with
// family-wide invalidation.
//
// Keys are path-like ("customers/list/...", "customers/7/payments"); all
// entries sharing a key prefix form a family and are invalidated together.
// Invalidation is not fire-and-forget: entries with a registered fetcher are
// refetched before Invalidate returns, so a mutation that awaits invalidation
// observes lists already consistent with its own write.
package cache

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Fetcher loads the value for a key from the system of record.
type Fetcher func(ctx context.Context) (any, error)

type entry struct {
	value     any
	fetchedAt time.Time
	stale     bool
	fetch     Fetcher // last fetcher seen for this key; nil for write-through-only slots
}

type call struct {
	done chan struct{}
	val  any
	err  error
}

// Store holds cached query results. Safe for concurrent use; last write wins
// on a slot.
type Store struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]*entry
	inflight map[string]*call
	log      *zap.Logger
}

// DefaultTTL is the freshness window applied when New is given a
// non-positive duration.
const DefaultTTL = 5 * time.Minute

// New creates a Store whose entries stay fresh for ttl after a fetch.
func New(ttl time.Duration, log *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		ttl:      ttl,
		entries:  map[string]*entry{},
		inflight: map[string]*call{},
		log:      log,
	}
}

// Key joins parts into a cache key. Parts never contain the separator:
// parameter segments are query-escaped by their producers.
func Key(parts ...string) string { return strings.Join(parts, "/") }

// GetOrFetch returns the cached value for key when fresh, otherwise calls
// fetch, stores the result and remembers fetch for invalidation-triggered
// refetches. Concurrent callers for the same key share a single fetch.
func (s *Store) GetOrFetch(ctx context.Context, key string, fetch Fetcher) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[key]; ok && !e.stale && time.Since(e.fetchedAt) < s.ttl {
		v := e.value
		e.fetch = fetch
		s.mu.Unlock()
		return v, nil
	}
	if c, ok := s.inflight[key]; ok {
		s.mu.Unlock()
		select {
		case <-c.done:
			return c.val, c.err
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c := &call{done: make(chan struct{})}
	s.inflight[key] = c
	s.mu.Unlock()

	c.val, c.err = fetch(ctx)

	s.mu.Lock()
	delete(s.inflight, key)
	if c.err == nil {
		s.entries[key] = &entry{value: c.val, fetchedAt: time.Now(), fetch: fetch}
	}
	s.mu.Unlock()
	close(c.done)
	return c.val, c.err
}

// Peek reports the cached value for key if present and fresh. It never fetches.
func (s *Store) Peek(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok || e.stale || time.Since(e.fetchedAt) >= s.ttl {
		return nil, false
	}
	return e.value, true
}

// Set writes a value through to the slot, marking it fresh. A fetcher already
// registered for the key is kept so later invalidations can still refetch.
func (s *Store) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[key]
	if !ok {
		e = &entry{}
		s.entries[key] = e
	}
	e.value = v
	e.fetchedAt = time.Now()
	e.stale = false
}

// Invalidate marks every entry in the family named by parts stale and
// refetches, in key order, each one that has a registered fetcher. It returns
// once affected entries are fresh again, or with ctx's error on cancellation.
// A failing refetch drops its entry (the next read fetches anew) rather than
// failing the invalidation.
func (s *Store) Invalidate(ctx context.Context, parts ...string) error {
	prefix := Key(parts...)

	s.mu.Lock()
	var keys []string
	for k, e := range s.entries {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			e.stale = true
			keys = append(keys, k)
		}
	}
	s.mu.Unlock()
	sort.Strings(keys)

	for _, k := range keys {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		e, ok := s.entries[k]
		if !ok || !e.stale || e.fetch == nil {
			s.mu.Unlock()
			continue
		}
		fetch := e.fetch
		s.mu.Unlock()

		v, err := fetch(ctx)

		s.mu.Lock()
		if err != nil {
			delete(s.entries, k)
			s.mu.Unlock()
			s.log.Warn("refetch after invalidation failed",
				zap.String("key", k), zap.Error(err))
			continue
		}
		s.entries[k] = &entry{value: v, fetchedAt: time.Now(), fetch: fetch}
		s.mu.Unlock()
	}
	return nil
}

// Drop removes every entry in the family named by parts without refetching.
// Used after deletes, where refetching the removed entity's own slot could
// only answer not-found.
func (s *Store) Drop(parts ...string) {
	prefix := Key(parts...)
	s.mu.Lock()
	defer s.mu.Unlock()
	for k := range s.entries {
		if k == prefix || strings.HasPrefix(k, prefix+"/") {
			delete(s.entries, k)
		}
	}
}

// Clear drops every entry. Used on logout as a full trust-boundary reset.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]*entry{}
}

// Len reports the number of cached entries, fresh or stale.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Get is the typed read path over GetOrFetch.
func Get[T any](ctx context.Context, s *Store, key string, fetch func(context.Context) (T, error)) (T, error) {
	v, err := s.GetOrFetch(ctx, key, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		var zero T
		return zero, err
	}
	t, ok := v.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("cache: key %q holds %T", key, v)
	}
	return t, nil
}
