package domain

import "time"

// EntryState is the freshness state of a cache entry relative to its TTL.
type EntryState int

const (
	EntryFresh EntryState = iota
	EntryStale
	EntryExpired
)

func (s EntryState) String() string {
	switch s {
	case EntryFresh:
		return "fresh"
	case EntryStale:
		return "stale"
	default:
		return "expired"
	}
}

// CacheEntry is an immutable cached value with its write timestamp and TTL.
// Entries are created on fetch and replaced wholesale on refetch; they are
// never mutated in place.
type CacheEntry[T any] struct {
	Data      T     `json:"data"`
	Timestamp int64 `json:"timestamp"` // epoch milliseconds
	TTL       int64 `json:"ttl"`       // seconds
}

// NewCacheEntry builds an entry stamped at now.
func NewCacheEntry[T any](data T, now time.Time, ttl time.Duration) CacheEntry[T] {
	return CacheEntry[T]{
		Data:      data,
		Timestamp: now.UnixMilli(),
		TTL:       int64(ttl / time.Second),
	}
}

// Age returns the entry age at the given instant.
func (e CacheEntry[T]) Age(now time.Time) time.Duration {
	return time.Duration(now.UnixMilli()-e.Timestamp) * time.Millisecond
}

// State derives the freshness state at the given instant. An entry is
// Fresh below one TTL, Stale below two, Expired beyond.
func (e CacheEntry[T]) State(now time.Time) EntryState {
	age := e.Age(now)
	ttl := time.Duration(e.TTL) * time.Second
	switch {
	case age < ttl:
		return EntryFresh
	case age < 2*ttl:
		return EntryStale
	default:
		return EntryExpired
	}
}
