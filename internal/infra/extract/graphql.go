package extract

import (
	"context"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"go.uber.org/zap"

	"toolforge/internal/domain"
)

// GraphQLExtractor parses schema files and lifts root operation fields
// (Query, Mutation, Subscription) into tools. GraphQL arguments are always
// typed, so the type factor is maxed for every tool found here.
type GraphQLExtractor struct {
	logger *zap.Logger
}

func NewGraphQLExtractor(logger *zap.Logger) *GraphQLExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GraphQLExtractor{logger: logger.Named("extract.graphql")}
}

func (e *GraphQLExtractor) Name() string { return "graphql" }

func (e *GraphQLExtractor) Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	var tools []domain.ExtractedTool

	convert := func(path, content string) {
		schema, err := gqlparser.LoadSchema(&ast.Source{Name: path, Input: content})
		if err != nil {
			e.logger.Warn("schema file rejected", zap.String("file", path), zap.Error(err))
			return
		}
		for _, root := range []*ast.Definition{schema.Query, schema.Mutation, schema.Subscription} {
			if root == nil {
				continue
			}
			for _, field := range root.Fields {
				// Introspection meta fields are not part of the API surface.
				if strings.HasPrefix(field.Name, "__") {
					continue
				}
				tools = append(tools, fieldTool(field, path))
			}
		}
	}

	for _, spec := range ev.Specs {
		if spec.Format == "graphql" {
			convert(spec.Path, spec.Content)
		}
	}
	for _, file := range ev.Files {
		if file.IsDir || file.Content == "" {
			continue
		}
		lower := strings.ToLower(file.Path)
		if strings.HasSuffix(lower, ".graphql") || strings.HasSuffix(lower, ".gql") {
			convert(file.Path, file.Content)
		}
	}
	return tools, ctx.Err()
}

func fieldTool(field *ast.FieldDefinition, path string) domain.ExtractedTool {
	properties := map[string]*jsonschema.Schema{}
	var required []string
	documented := 0

	for _, arg := range field.Arguments {
		schema := gqlTypeSchema(arg.Type)
		if arg.Description != "" {
			schema.Description = arg.Description
			documented++
		}
		properties[arg.Name] = schema
		if arg.Type.NonNull && arg.DefaultValue == nil {
			required = append(required, arg.Name)
		}
	}

	signals := domain.DocSignals{
		DescriptionLen:   len(field.Description),
		ParamCount:       len(field.Arguments),
		DocumentedParams: documented,
		TypedParams:      len(field.Arguments),
	}
	line := 0
	if field.Position != nil {
		line = field.Position.Line
	}
	factors := domain.FactorsFromSignals(signals, domain.SourceGraphQL)
	return domain.ExtractedTool{
		Name:              field.Name,
		Description:       field.Description,
		InputSchema:       domain.ObjectSchema(properties, required),
		Source:            domain.ToolSource{Type: domain.SourceGraphQL, File: path, Line: line},
		Confidence:        factors.Score(),
		ConfidenceFactors: &factors,
	}
}

// gqlTypeSchema maps a GraphQL type reference to a JSON-Schema fragment.
func gqlTypeSchema(t *ast.Type) *jsonschema.Schema {
	if t == nil {
		return &jsonschema.Schema{Type: "string"}
	}
	if t.Elem != nil {
		return &jsonschema.Schema{Type: "array", Items: gqlTypeSchema(t.Elem)}
	}
	switch t.NamedType {
	case "Int":
		return &jsonschema.Schema{Type: "integer"}
	case "Float":
		return &jsonschema.Schema{Type: "number"}
	case "String", "ID":
		return &jsonschema.Schema{Type: "string"}
	case "Boolean":
		return &jsonschema.Schema{Type: "boolean"}
	default:
		// Input objects, enums, and custom scalars.
		return &jsonschema.Schema{Type: "object"}
	}
}
