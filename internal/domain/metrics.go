package domain

import "time"

// CacheOutcome labels the result of a cache lookup.
type CacheOutcome string

const (
	CacheOutcomeHit      CacheOutcome = "hit"
	CacheOutcomeStaleHit CacheOutcome = "stale_hit"
	CacheOutcomeMiss     CacheOutcome = "miss"
	CacheOutcomeExpired  CacheOutcome = "expired"
)

// RevalidateOutcome labels the result of a background revalidation.
type RevalidateOutcome string

const (
	RevalidateSuccess RevalidateOutcome = "success"
	RevalidateFailure RevalidateOutcome = "failure"
)

// Metrics records operational metrics for the extraction pipeline.
type Metrics interface {
	ObserveCacheLookup(outcome CacheOutcome)
	ObserveRevalidation(outcome RevalidateOutcome, duration time.Duration)
	ObserveExtractor(name string, duration time.Duration, toolCount int, err error)
	ObserveGeneration(duration time.Duration, toolCount int, err error)
}

// NopMetrics discards all observations.
type NopMetrics struct{}

func (NopMetrics) ObserveCacheLookup(CacheOutcome)                          {}
func (NopMetrics) ObserveRevalidation(RevalidateOutcome, time.Duration)     {}
func (NopMetrics) ObserveExtractor(string, time.Duration, int, error)       {}
func (NopMetrics) ObserveGeneration(time.Duration, int, error)              {}
