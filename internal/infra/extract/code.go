package extract

import (
	"context"
	"path"
	"strings"

	"go.uber.org/zap"

	"toolforge/internal/domain"
	"toolforge/internal/infra/extract/lang"
)

// CodeExtractor dispatches source files to the per-language parsers. The
// file's role in the tree (tests, examples, docs) refines the source type
// so merge priority and confidence reflect where the evidence came from.
type CodeExtractor struct {
	logger   *zap.Logger
	maxFiles int
}

type CodeOptions struct {
	Logger *zap.Logger

	// MaxFiles bounds how many source files are parsed per run.
	MaxFiles int
}

func NewCodeExtractor(opts CodeOptions) *CodeExtractor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	maxFiles := opts.MaxFiles
	if maxFiles <= 0 {
		maxFiles = domain.DefaultMaxSourceFiles
	}
	return &CodeExtractor{logger: logger.Named("extract.code"), maxFiles: maxFiles}
}

func (e *CodeExtractor) Name() string { return "code" }

func (e *CodeExtractor) Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	var tools []domain.ExtractedTool
	parsed := 0

	for _, file := range ev.Files {
		if file.IsDir || file.Content == "" {
			continue
		}
		if parsed >= e.maxFiles {
			e.logger.Debug("source file budget reached", zap.Int("max", e.maxFiles))
			break
		}
		if err := ctx.Err(); err != nil {
			return tools, err
		}

		parser, ok := lang.ForExtension(path.Ext(file.Path))
		if !ok {
			continue
		}
		parsed++

		extracted := parser.ExtractFunctions(file.Content, file.Path)
		if role := fileRole(file.Path); role != domain.SourceCode {
			for i := range extracted {
				retag(&extracted[i], role)
			}
		}
		tools = append(tools, extracted...)
	}
	return tools, nil
}

// fileRole derives the evidence role from the file path.
func fileRole(filePath string) domain.SourceType {
	p := strings.ToLower(filePath)
	base := path.Base(p)
	switch {
	case strings.Contains(base, "test") || strings.Contains(base, "spec.") ||
		strings.Contains(p, "/test") || strings.HasPrefix(p, "test"):
		return domain.SourceTests
	case strings.Contains(p, "example") || strings.Contains(p, "demo"):
		return domain.SourceExamples
	case strings.Contains(p, "/docs/") || strings.HasPrefix(p, "docs/"):
		return domain.SourceDocs
	default:
		return domain.SourceCode
	}
}

// retag rewrites the source type and recomputes the reliability-dependent
// part of the confidence.
func retag(tool *domain.ExtractedTool, role domain.SourceType) {
	tool.Source.Type = role
	if tool.ConfidenceFactors != nil {
		factors := *tool.ConfidenceFactors
		factors.Source = domain.SourceReliability(role)
		tool.ConfidenceFactors = &factors
		tool.Confidence = factors.Score()
	}
}
