package extract

import (
	"context"

	"go.uber.org/zap"

	"toolforge/internal/domain"
)

// SpecConverter turns one API specification document into tool descriptors.
type SpecConverter interface {
	ConvertSpec(doc []byte, file string) ([]domain.ExtractedTool, error)
}

// OpenAPIExtractor runs discovered OpenAPI documents through a converter.
// A malformed document yields zero tools for that document and the run
// continues with the rest.
type OpenAPIExtractor struct {
	converter SpecConverter
	logger    *zap.Logger
}

func NewOpenAPIExtractor(converter SpecConverter, logger *zap.Logger) *OpenAPIExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OpenAPIExtractor{converter: converter, logger: logger.Named("extract.openapi")}
}

func (e *OpenAPIExtractor) Name() string { return "openapi" }

func (e *OpenAPIExtractor) Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	var tools []domain.ExtractedTool
	for _, spec := range ev.Specs {
		if spec.Format != "openapi" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return tools, err
		}

		converted, err := e.converter.ConvertSpec([]byte(spec.Content), spec.Path)
		if err != nil {
			e.logger.Warn("spec document rejected",
				zap.String("file", spec.Path),
				zap.Error(err))
			continue
		}
		tools = append(tools, converted...)
	}
	return tools, nil
}
