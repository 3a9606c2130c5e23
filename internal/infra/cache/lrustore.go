package cache

import (
	"fmt"
	"sort"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
)

// LRUStorage bounds the in-memory adapter to a fixed number of entries,
// evicting least-recently-used keys. Useful for long-running batch
// deployments where the key space grows with every repository.
type LRUStorage struct {
	cache *lru.Cache[string, RawEntry]
}

func NewLRUStorage(size int) (*LRUStorage, error) {
	inner, err := lru.New[string, RawEntry](size)
	if err != nil {
		return nil, fmt.Errorf("create lru storage: %w", err)
	}
	return &LRUStorage{cache: inner}, nil
}

func (s *LRUStorage) Get(key string) (RawEntry, bool, error) {
	entry, ok := s.cache.Get(key)
	return entry, ok, nil
}

func (s *LRUStorage) Set(key string, entry RawEntry) error {
	s.cache.Add(key, entry)
	return nil
}

func (s *LRUStorage) Delete(key string) error {
	s.cache.Remove(key)
	return nil
}

func (s *LRUStorage) DeletePrefix(prefix string) (int, error) {
	removed := 0
	for _, key := range s.cache.Keys() {
		if strings.HasPrefix(key, prefix) {
			s.cache.Remove(key)
			removed++
		}
	}
	return removed, nil
}

func (s *LRUStorage) Clear() error {
	s.cache.Purge()
	return nil
}

func (s *LRUStorage) Keys() ([]string, error) {
	keys := s.cache.Keys()
	sort.Strings(keys)
	return keys, nil
}
