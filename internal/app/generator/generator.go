// Package generator runs the extraction pipeline: fetch evidence through
// the cache, classify the repository, run the extractor chain, and merge
// the results into a single tool set.
package generator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"toolforge/internal/domain"
	"toolforge/internal/infra/cache"
	"toolforge/internal/infra/classify"
	"toolforge/internal/infra/extract"
	"toolforge/internal/infra/githubclient"
	"toolforge/internal/infra/merge"
)

// RepoClient is the repository access the pipeline needs.
type RepoClient interface {
	GetMetadata(ctx context.Context, owner, repo string) (domain.RepoMetadata, error)
	GetReadme(ctx context.Context, owner, repo, ref string) (*domain.FileContent, error)
	GetFileContent(ctx context.Context, owner, repo, filePath, ref string) (*domain.FileContent, error)
	FindAPISpecs(ctx context.Context, owner, repo, ref string) ([]domain.APISpec, error)
	SearchFiles(ctx context.Context, owner, repo, pattern, ref string, maxDepth int) ([]domain.FileContent, error)
}

// Generator orchestrates one extraction pipeline per repository URL.
// Safe for concurrent use; the cache is shared across pipelines.
type Generator struct {
	client      RepoClient
	cache       *cache.Cache
	logger      *zap.Logger
	metrics     domain.Metrics
	extractors  []extract.Extractor
	universal   *extract.UniversalExtractor
	searchDepth int
	metadataTTL time.Duration
	readmeTTL   time.Duration
	fileTTL     time.Duration
	newID       func() string
	now         func() time.Time
}

// languageExtensions maps repository languages to the source extension
// searched for the code extractor.
var languageExtensions = map[string]string{
	"Python":     ".py",
	"TypeScript": ".ts",
	"JavaScript": ".js",
	"Go":         ".go",
	"Rust":       ".rs",
	"Ruby":       ".rb",
	"Java":       ".java",
}

// manifestFiles are fetched for MCP server detection regardless of the
// repository language.
var manifestFiles = []string{"package.json", "pyproject.toml", "go.mod"}

// Generate runs the full pipeline for one repository URL. URL parse and
// foreground metadata/README fetch errors are fatal; individual extractor
// failures degrade to warnings on the result.
func (g *Generator) Generate(ctx context.Context, url string) (result *domain.GenerationResult, err error) {
	start := g.now()
	defer func() {
		toolCount := 0
		if result != nil {
			toolCount = len(result.Tools)
		}
		g.metrics.ObserveGeneration(g.now().Sub(start), toolCount, err)
	}()

	ref, err := githubclient.ParseRepoURL(url)
	if err != nil {
		return nil, err
	}
	logger := g.logger.With(zap.String("repo", ref.String()))

	meta, err := cache.Get(ctx, g.cache, cache.Key(ref.Owner, ref.Repo, "metadata"), g.metadataTTL,
		func(ctx context.Context) (domain.RepoMetadata, error) {
			return g.client.GetMetadata(ctx, ref.Owner, ref.Repo)
		})
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "generator.metadata", err)
	}
	if ref.Branch == "" {
		ref.Branch = meta.DefaultBranch
	}

	readme, err := cache.Get(ctx, g.cache, cache.Key(ref.Owner, ref.Repo, "readme", ref.Branch), g.readmeTTL,
		func(ctx context.Context) (string, error) {
			file, err := g.client.GetReadme(ctx, ref.Owner, ref.Repo, ref.Branch)
			if err != nil {
				return "", err
			}
			if file == nil {
				return "", nil
			}
			return file.Content, nil
		})
	if err != nil {
		return nil, domain.Wrap(domain.CodeUnavailable, "generator.readme", err)
	}

	classification := classify.Classify(readme, meta)
	logger.Debug("repository classified",
		zap.String("type", string(classification.Type)),
		zap.Float64("confidence", classification.Confidence))

	var warnings []string
	evidence := &extract.Evidence{Ref: ref, Metadata: meta, Readme: readme}

	specs, err := g.gatherSpecs(ctx, ref)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("spec discovery failed: %v", err))
		logger.Warn("spec discovery failed", zap.Error(err))
	}
	evidence.Specs = specs

	files, err := g.gatherFiles(ctx, ref, meta.Language)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("source search failed: %v", err))
		logger.Warn("source search failed", zap.Error(err))
	}
	evidence.Files = files

	var collected []domain.ExtractedTool
	for _, extractor := range g.extractors {
		extractStart := g.now()
		tools, extractErr := extractor.Extract(ctx, evidence)
		g.metrics.ObserveExtractor(extractor.Name(), g.now().Sub(extractStart), len(tools), extractErr)
		if extractErr != nil {
			if ctx.Err() != nil {
				return nil, extractErr
			}
			warnings = append(warnings, fmt.Sprintf("%s extractor failed: %v", extractor.Name(), extractErr))
			logger.Warn("extractor failed",
				zap.String("extractor", extractor.Name()),
				zap.Error(extractErr))
			continue
		}
		collected = append(collected, tools...)
	}

	fallback, err := g.universal.Extract(ctx, evidence)
	if err != nil {
		return nil, err
	}
	collected = append(collected, fallback...)

	merged := merge.Merge(collected)
	logger.Info("generation complete",
		zap.Int("tools", len(merged)),
		zap.Int("warnings", len(warnings)))

	return &domain.GenerationResult{
		ID:             g.newID(),
		RepoURL:        url,
		Metadata:       meta,
		Classification: classification,
		Tools:          merged,
		Breakdown:      breakdown(collected),
		Warnings:       warnings,
		GeneratedAt:    g.now().UTC(),
	}, nil
}

// Cache returns the shared cache, exposed for the CLI cache subcommands.
func (g *Generator) Cache() *cache.Cache {
	return g.cache
}

func (g *Generator) gatherSpecs(ctx context.Context, ref domain.RepoRef) ([]domain.APISpec, error) {
	return cache.Get(ctx, g.cache, cache.Key(ref.Owner, ref.Repo, "specs", ref.Branch), g.fileTTL,
		func(ctx context.Context) ([]domain.APISpec, error) {
			return g.client.FindAPISpecs(ctx, ref.Owner, ref.Repo, ref.Branch)
		})
}

// gatherFiles collects source files matching the repository language plus
// the manifest files the introspect extractor inspects.
func (g *Generator) gatherFiles(ctx context.Context, ref domain.RepoRef, language string) ([]domain.FileContent, error) {
	ext, known := languageExtensions[language]

	var files []domain.FileContent
	if known {
		found, err := cache.Get(ctx, g.cache, cache.Key(ref.Owner, ref.Repo, "files", ref.Branch, ext), g.fileTTL,
			func(ctx context.Context) ([]domain.FileContent, error) {
				return g.client.SearchFiles(ctx, ref.Owner, ref.Repo, ext, ref.Branch, g.searchDepth)
			})
		if err != nil {
			return nil, err
		}
		files = found
	} else if language != "" {
		g.logger.Debug("no source search for language", zap.String("language", language))
	}

	seen := make(map[string]struct{}, len(files))
	for _, file := range files {
		seen[file.Path] = struct{}{}
	}
	for _, manifest := range manifestFiles {
		if _, ok := seen[manifest]; ok {
			continue
		}
		file, err := g.client.GetFileContent(ctx, ref.Owner, ref.Repo, manifest, ref.Branch)
		if err != nil {
			return files, err
		}
		if file != nil {
			files = append(files, *file)
		}
	}
	return files, nil
}

// breakdown summarizes the extracted tools per evidence source, in the
// order sources first appeared during the run. Counts are pre-merge, so
// they reflect what each extractor actually produced.
func breakdown(tools []domain.ExtractedTool) []domain.SourceBreakdown {
	var order []domain.SourceType
	counts := map[domain.SourceType]int{}
	fileSets := map[domain.SourceType]map[string]struct{}{}
	for _, tool := range tools {
		source := tool.Source.Type
		if counts[source] == 0 {
			order = append(order, source)
		}
		counts[source]++
		if tool.Source.File == "" {
			continue
		}
		if fileSets[source] == nil {
			fileSets[source] = map[string]struct{}{}
		}
		fileSets[source][tool.Source.File] = struct{}{}
	}

	entries := make([]domain.SourceBreakdown, 0, len(order))
	for _, source := range order {
		var paths []string
		for file := range fileSets[source] {
			paths = append(paths, file)
		}
		sort.Strings(paths)
		entries = append(entries, domain.SourceBreakdown{Type: source, Count: counts[source], Files: paths})
	}
	return entries
}
