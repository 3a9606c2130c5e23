package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheEntry_State(t *testing.T) {
	base := time.Now()
	entry := NewCacheEntry("value", base, 10*time.Second)

	tests := []struct {
		name string
		at   time.Time
		want EntryState
	}{
		{"immediately fresh", base, EntryFresh},
		{"fresh within ttl", base.Add(5 * time.Second), EntryFresh},
		{"fresh just below ttl", base.Add(9999 * time.Millisecond), EntryFresh},
		{"stale at ttl", base.Add(10 * time.Second), EntryStale},
		{"stale within window", base.Add(15 * time.Second), EntryStale},
		{"expired at twice ttl", base.Add(20 * time.Second), EntryExpired},
		{"expired beyond", base.Add(time.Hour), EntryExpired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, entry.State(tt.at))
		})
	}
}

func TestCacheEntry_Age(t *testing.T) {
	base := time.Now()
	entry := NewCacheEntry(42, base, time.Minute)
	assert.Equal(t, 30*time.Second, entry.Age(base.Add(30*time.Second)))
}

func TestEntryState_String(t *testing.T) {
	assert.Equal(t, "fresh", EntryFresh.String())
	assert.Equal(t, "stale", EntryStale.String())
	assert.Equal(t, "expired", EntryExpired.String())
}
