package telemetry

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

func TestNewPrometheusMetrics(t *testing.T) {
	m := NewPrometheusMetrics(prometheus.NewRegistry())
	assert.NotNil(t, m)
	assert.NotNil(t, m.cacheLookups)
	assert.NotNil(t, m.revalidations)
	assert.NotNil(t, m.extractorDuration)
	assert.NotNil(t, m.extractorTools)
	assert.NotNil(t, m.generationDuration)
	assert.NotNil(t, m.generationTools)
}

func TestPrometheusMetrics_UsesProvidedRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()

	m := NewPrometheusMetrics(registry)
	m.ObserveCacheLookup(domain.CacheOutcomeHit)
	m.ObserveCacheLookup(domain.CacheOutcomeStaleHit)
	m.ObserveRevalidation(domain.RevalidateSuccess, 20*time.Millisecond)
	m.ObserveExtractor("openapi", 10*time.Millisecond, 3, nil)
	m.ObserveExtractor("graphql", 5*time.Millisecond, 0, errors.New("boom"))
	m.ObserveGeneration(time.Second, 7, nil)

	metrics, err := registry.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(metrics))
	for _, mf := range metrics {
		names = append(names, mf.GetName())
	}

	assert.Contains(t, names, "toolforge_cache_lookups_total")
	assert.Contains(t, names, "toolforge_cache_revalidations_total")
	assert.Contains(t, names, "toolforge_extractor_duration_seconds")
	assert.Contains(t, names, "toolforge_extractor_tools_total")
	assert.Contains(t, names, "toolforge_generation_duration_seconds")
	assert.Contains(t, names, "toolforge_generation_tools")
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(false)
	require.NoError(t, err)
	assert.NotNil(t, logger)

	verbose, err := NewLogger(true)
	require.NoError(t, err)
	assert.True(t, verbose.Core().Enabled(-1), "verbose logger enables debug")
}
