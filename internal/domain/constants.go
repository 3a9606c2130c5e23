package domain

// Default cache TTLs in seconds, per evidence kind. Metadata and README
// drift slowly; file content is pinned to a ref and can live longer.
const (
	DefaultMetadataTTLSeconds = 600
	DefaultReadmeTTLSeconds   = 600
	DefaultFileTTLSeconds     = 1800
)

// Pipeline defaults.
const (
	DefaultBatchConcurrency      = 4
	DefaultSearchDepth           = 3
	DefaultMaxSourceFiles        = 40
	DefaultRevalidateTimeoutSecs = 30
)

// WellKnownLanguages are primary languages that earn a classification
// confidence boost.
var WellKnownLanguages = map[string]struct{}{
	"typescript": {},
	"javascript": {},
	"python":     {},
	"go":         {},
	"rust":       {},
	"java":       {},
	"ruby":       {},
}
