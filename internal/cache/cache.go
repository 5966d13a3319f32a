// Package cache memoizes remote reads behind stable keys and enforces the
// mutation/invalidation contract: after a successful mutation, the next
// read of an invalidated key re-fetches instead of serving the stale value.
package cache

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Key addresses one read: the operation plus its parameter ("" when the
// operation takes none). Invalidation matches by operation, so parameter
// variants of one operation go stale together.
type Key struct {
	Op  string
	Arg string
}

func (k Key) String() string {
	if k.Arg == "" {
		return k.Op
	}
	return k.Op + "/" + k.Arg
}

type entry struct {
	value any
	fresh bool
}

// Store is the process-wide read cache. Concurrent reads of one key share a
// single in-flight fetch; a fetch completed under a superseded generation
// (identity changed) or key version (invalidated mid-flight) is returned to
// its caller but never stored.
type Store struct {
	mu      sync.Mutex
	entries map[Key]*entry
	vers    map[Key]uint64
	gen     uint64

	sf singleflight.Group
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{
		entries: make(map[Key]*entry),
		vers:    make(map[Key]uint64),
	}
}

// Generation changes whenever Reset is called.
func (s *Store) Generation() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gen
}

// Reset drops every entry. Called on identity change; in-flight fetches
// from the prior identity can no longer land in the store.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[Key]*entry)
	s.vers = make(map[Key]uint64)
	s.gen++
}

// Invalidate marks stale every key whose operation matches. The stale value
// is dropped outright; the next read must fetch.
func (s *Store) Invalidate(ops ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match := func(k Key) bool {
		for _, op := range ops {
			if k.Op == op {
				return true
			}
		}
		return false
	}
	bumped := make(map[Key]bool)
	for k := range s.entries {
		if match(k) {
			delete(s.entries, k)
			s.vers[k]++
			bumped[k] = true
		}
	}
	// keys with an in-flight fetch but no stored entry must go stale too,
	// or the fetch could land a pre-mutation value
	for k := range s.vers {
		if !bumped[k] && match(k) {
			s.vers[k]++
		}
	}
}

// Peek returns the fresh value for a key without fetching.
func (s *Store) Peek(k Key) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.entries[k]; ok && e.fresh {
		return e.value, true
	}
	return nil, false
}

// Do returns the cached value for k, or runs fetch. At most one fetch per
// (key, version) is in flight; concurrent callers share its result.
func (s *Store) Do(ctx context.Context, k Key, fetch func(ctx context.Context) (any, error)) (any, error) {
	s.mu.Lock()
	if e, ok := s.entries[k]; ok && e.fresh {
		v := e.value
		s.mu.Unlock()
		return v, nil
	}
	gen := s.gen
	if _, ok := s.vers[k]; !ok {
		s.vers[k] = 0 // track the key so Invalidate sees the in-flight fetch
	}
	ver := s.vers[k]
	s.mu.Unlock()

	// version in the flight key: a read issued after an invalidation never
	// joins a pre-invalidation fetch
	flight := fmt.Sprintf("%s#%d", k.String(), ver)
	v, err, _ := s.sf.Do(flight, func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		s.mu.Lock()
		if s.gen == gen && s.vers[k] == ver {
			s.entries[k] = &entry{value: v, fresh: true}
		}
		s.mu.Unlock()
		return v, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}
