package cache

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"toolforge/internal/domain"
)

// RawEntry is the adapter-level representation of a cache entry. The typed
// front marshals values to JSON so adapters stay oblivious to value types
// and durable backends need no extra encoding step.
type RawEntry = domain.CacheEntry[json.RawMessage]

// Storage is the pluggable persistence contract behind the cache. The
// cache algorithm never changes when a different adapter is swapped in.
type Storage interface {
	Get(key string) (RawEntry, bool, error)
	Set(key string, entry RawEntry) error
	Delete(key string) error
	DeletePrefix(prefix string) (int, error)
	Clear() error
	Keys() ([]string, error)
}

// MemoryStorage is the default in-process map adapter.
type MemoryStorage struct {
	mu      sync.RWMutex
	entries map[string]RawEntry
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{entries: make(map[string]RawEntry)}
}

func (s *MemoryStorage) Get(key string) (RawEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	return entry, ok, nil
}

func (s *MemoryStorage) Set(key string, entry RawEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	return nil
}

func (s *MemoryStorage) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

func (s *MemoryStorage) DeletePrefix(prefix string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for key := range s.entries {
		if strings.HasPrefix(key, prefix) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed, nil
}

func (s *MemoryStorage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]RawEntry)
	return nil
}

func (s *MemoryStorage) Keys() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for key := range s.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
