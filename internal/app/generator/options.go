package generator

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"toolforge/internal/domain"
	"toolforge/internal/infra/cache"
	"toolforge/internal/infra/extract"
	"toolforge/internal/infra/specconv"
)

// Options configures a Generator. Zero values fall back to the full
// extractor set, a nop logger, and the default TTLs.
type Options struct {
	Client  RepoClient
	Cache   *cache.Cache
	Logger  *zap.Logger
	Metrics domain.Metrics

	// Extractors overrides the default ordered set. The universal
	// fallback is not part of this list; it always runs.
	Extractors []extract.Extractor

	SearchDepth int
	MetadataTTL time.Duration
	ReadmeTTL   time.Duration
	FileTTL     time.Duration

	// NewID overrides run ID generation, used by tests.
	NewID func() string
	Now   func() time.Time
}

// New creates a Generator.
func New(opts Options) *Generator {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = domain.NopMetrics{}
	}
	c := opts.Cache
	if c == nil {
		c = cache.New(cache.Options{Logger: logger, Metrics: metrics})
	}
	extractors := opts.Extractors
	if extractors == nil {
		extractors = DefaultExtractors(logger)
	}
	searchDepth := opts.SearchDepth
	if searchDepth <= 0 {
		searchDepth = domain.DefaultSearchDepth
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Generator{
		client:      opts.Client,
		cache:       c,
		logger:      logger.Named("generator"),
		metrics:     metrics,
		extractors:  extractors,
		universal:   extract.NewUniversalExtractor(),
		searchDepth: searchDepth,
		metadataTTL: ttlOr(opts.MetadataTTL, domain.DefaultMetadataTTLSeconds),
		readmeTTL:   ttlOr(opts.ReadmeTTL, domain.DefaultReadmeTTLSeconds),
		fileTTL:     ttlOr(opts.FileTTL, domain.DefaultFileTTLSeconds),
		newID:       newID,
		now:         now,
	}
}

// DefaultExtractors is the full pipeline in its fixed run order.
func DefaultExtractors(logger *zap.Logger) []extract.Extractor {
	return []extract.Extractor{
		extract.NewOpenAPIExtractor(specconv.New(logger), logger),
		extract.NewGraphQLExtractor(logger),
		extract.NewIntrospectExtractor(logger),
		extract.NewCodeExtractor(extract.CodeOptions{Logger: logger}),
		extract.NewReadmeExtractor(logger),
	}
}

func ttlOr(ttl time.Duration, defaultSecs int) time.Duration {
	if ttl > 0 {
		return ttl
	}
	return time.Duration(defaultSecs) * time.Second
}
