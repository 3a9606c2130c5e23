package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"toolforge/internal/domain"
)

type PrometheusMetrics struct {
	cacheLookups       *prometheus.CounterVec
	revalidations      *prometheus.CounterVec
	revalidateDuration prometheus.Histogram
	extractorDuration  *prometheus.HistogramVec
	extractorTools     *prometheus.CounterVec
	generationDuration *prometheus.HistogramVec
	generationTools    prometheus.Histogram
}

func NewPrometheusMetrics(registerer prometheus.Registerer) *PrometheusMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	factory := promauto.With(registerer)

	return &PrometheusMetrics{
		cacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolforge_cache_lookups_total",
				Help: "Total cache lookups by outcome",
			},
			[]string{"outcome"},
		),
		revalidations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolforge_cache_revalidations_total",
				Help: "Total background revalidations by outcome",
			},
			[]string{"outcome"},
		),
		revalidateDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolforge_cache_revalidation_seconds",
				Help:    "Duration of background revalidations in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
			},
		),
		extractorDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolforge_extractor_duration_seconds",
				Help:    "Duration of extractor runs in seconds",
				Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"extractor", "status"},
		),
		extractorTools: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "toolforge_extractor_tools_total",
				Help: "Total tools produced per extractor",
			},
			[]string{"extractor"},
		),
		generationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "toolforge_generation_duration_seconds",
				Help:    "Duration of full generation pipelines in seconds",
				Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"status"},
		),
		generationTools: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "toolforge_generation_tools",
				Help:    "Tools per generation result after merging",
				Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
			},
		),
	}
}

func (p *PrometheusMetrics) ObserveCacheLookup(outcome domain.CacheOutcome) {
	p.cacheLookups.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusMetrics) ObserveRevalidation(outcome domain.RevalidateOutcome, duration time.Duration) {
	p.revalidations.WithLabelValues(string(outcome)).Inc()
	p.revalidateDuration.Observe(duration.Seconds())
}

func (p *PrometheusMetrics) ObserveExtractor(name string, duration time.Duration, toolCount int, err error) {
	p.extractorDuration.WithLabelValues(name, statusLabel(err)).Observe(duration.Seconds())
	if err == nil {
		p.extractorTools.WithLabelValues(name).Add(float64(toolCount))
	}
}

func (p *PrometheusMetrics) ObserveGeneration(duration time.Duration, toolCount int, err error) {
	p.generationDuration.WithLabelValues(statusLabel(err)).Observe(duration.Seconds())
	if err == nil {
		p.generationTools.Observe(float64(toolCount))
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

var _ domain.Metrics = (*PrometheusMetrics)(nil)
