// Package extract turns repository evidence into tool descriptors. Each
// extractor reads one kind of evidence (API specs, schema files, source
// code, README prose, protocol markers) and tags its output with the
// source type the merge step ranks by.
package extract

import (
	"context"

	"toolforge/internal/domain"
)

// Evidence is the material gathered for one repository before extraction.
type Evidence struct {
	Ref      domain.RepoRef
	Metadata domain.RepoMetadata
	Readme   string
	Files    []domain.FileContent
	Specs    []domain.APISpec
}

// Extractor derives tool descriptors from repository evidence. Extractors
// never fail the pipeline: an error means this extractor contributed
// nothing, and the orchestrator records it as a warning.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error)
}
