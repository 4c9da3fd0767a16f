// Package cache provides the in-process read-through cache for per-user
// notification queries (unread counts, list pages). Entries expire after a
// short TTL and a background janitor sweeps expired items, so the cache can
// only ever serve briefly stale data. Every write path invalidates the
// affected user's entries; the cache is best-effort and never a source of
// truth.
package cache

import (
	"fmt"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Store wraps an expiring key/value cache with per-user invalidation and
// hit/miss accounting. Keys are namespaced "<kind>:<user>[:<params>]" with
// the user segment escaped, so one user's entries can be dropped without
// touching anyone else's.
type Store struct {
	c      *gocache.Cache
	hits   atomic.Int64
	misses atomic.Int64
}

// Stats is a point-in-time snapshot of cache effectiveness.
type Stats struct {
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
	Size    int     `json:"size"`
}

// New builds a Store whose entries live for ttl and whose janitor sweeps
// expired items every sweep. Non-positive arguments fall back to a 30s TTL
// and a sweep of twice the TTL.
func New(ttl, sweep time.Duration) *Store {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if sweep <= 0 {
		sweep = 2 * ttl
	}
	return &Store{c: gocache.New(ttl, sweep)}
}

// Get returns the cached value for key. Expired entries count as misses.
func (s *Store) Get(key string) (any, bool) {
	v, found := s.c.Get(key)
	if found {
		s.hits.Add(1)
		return v, true
	}
	s.misses.Add(1)
	return nil, false
}

// Set stores v under key with the default TTL.
func (s *Store) Set(key string, v any) {
	s.c.Set(key, v, gocache.DefaultExpiration)
}

// Delete removes a single key.
func (s *Store) Delete(key string) {
	s.c.Delete(key)
}

// InvalidateUser drops every entry belonging to userID, whatever its kind.
// Iterating all items is fine at this cache's size: entries are per-user
// query results with a 30-second lifetime, not a large dataset.
func (s *Store) InvalidateUser(userID string) {
	owner := userSegment(userID)
	for key := range s.c.Items() {
		if keyOwner(key) == owner {
			s.c.Delete(key)
		}
	}
}

// Flush drops every entry.
func (s *Store) Flush() {
	s.c.Flush()
}

// ItemCount returns the number of live entries, expired items included until
// the janitor runs.
func (s *Store) ItemCount() int {
	return s.c.ItemCount()
}

// Stats returns hit/miss counters accumulated since construction.
func (s *Store) Stats() Stats {
	h := s.hits.Load()
	m := s.misses.Load()
	rate := 0.0
	if h+m > 0 {
		rate = float64(h) / float64(h+m)
	}
	return Stats{Hits: h, Misses: m, HitRate: rate, Size: s.c.ItemCount()}
}

// keyOwner extracts the escaped user segment from "<kind>:<user>[:<params>]".
func keyOwner(key string) string {
	rest := key
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		rest = rest[i+1:]
	} else {
		return ""
	}
	if i := strings.IndexByte(rest, ':'); i >= 0 {
		return rest[:i]
	}
	return rest
}

// userSegment escapes userID for embedding between key delimiters. User IDs
// may themselves contain ":" (till:3); unescaped they would split the key
// layout and detach the entry from its owner.
func userSegment(userID string) string {
	return url.QueryEscape(userID)
}

// UnreadCountKey is the cache key for a user's unread badge counter.
func UnreadCountKey(userID string) string {
	return "unread_count:" + userSegment(userID)
}

// ListKey is the cache key for one page of a user's notification list.
func ListKey(userID string, page, pageSize int, unreadOnly bool) string {
	scope := "all"
	if unreadOnly {
		scope = "unread"
	}
	return fmt.Sprintf("list:%s:%d:%d:%s", userSegment(userID), page, pageSize, scope)
}
