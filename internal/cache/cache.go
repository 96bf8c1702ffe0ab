// Package cache holds recent lookup outcomes keyed by canonical post URL.
// Entries expire a fixed time after they were written and the least recently
// used entry is evicted once the cache is full.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"instatrack/internal/media"
)

// Defaults match the resolver's documented behaviour.
const (
	DefaultSize = 200
	DefaultTTL  = 30 * time.Minute
)

// Entry is a cached outcome: either a resolved track or a not-found marker.
type Entry struct {
	Track    *media.Track
	NotFound bool
	StoredAt time.Time
}

// Cache is safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, Entry]
	ttl time.Duration
	now func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock replaces the clock used to judge entry age.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a cache holding at most size entries for ttl each. Zero values
// select the defaults.
func New(size int, ttl time.Duration, opts ...Option) *Cache {
	if size <= 0 {
		size = DefaultSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Cache{
		lru: expirable.NewLRU[string, Entry](size, nil, ttl),
		ttl: ttl,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the live entry for key. Resolved tracks are returned as
// independent copies.
func (c *Cache) Get(key string) (Entry, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return Entry{}, false
	}
	if c.now().Sub(e.StoredAt) >= c.ttl {
		c.lru.Remove(key)
		return Entry{}, false
	}
	e.Track = e.Track.Clone()
	return e, true
}

// PutTrack stores a resolved track under key.
func (c *Cache) PutTrack(key string, t *media.Track) {
	c.lru.Add(key, Entry{Track: t.Clone(), StoredAt: c.now()})
}

// PutNotFound records that key has no media.
func (c *Cache) PutNotFound(key string) {
	c.lru.Add(key, Entry{NotFound: true, StoredAt: c.now()})
}

// Len returns the number of stored entries, including any not yet reaped.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
