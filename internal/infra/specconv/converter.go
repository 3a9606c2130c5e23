// Package specconv converts OpenAPI documents into tool descriptors, one
// tool per operation.
package specconv

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"toolforge/internal/domain"
)

type Converter struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Converter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Converter{logger: logger.Named("specconv")}
}

// ConvertSpec parses a YAML or JSON OpenAPI document and returns one tool
// per operation. A document that does not parse returns a ParseError.
func (c *Converter) ConvertSpec(doc []byte, file string) ([]domain.ExtractedTool, error) {
	const op = "specconv.ConvertSpec"

	loader := openapi3.NewLoader()
	loader.IsExternalRefsAllowed = false
	parsed, err := loader.LoadFromData(doc)
	if err != nil {
		return nil, domain.E(domain.CodeParseError, op, "not an openapi document", err)
	}
	if parsed.Paths == nil {
		return nil, nil
	}

	pathMap := parsed.Paths.Map()
	paths := make([]string, 0, len(pathMap))
	for p := range pathMap {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var tools []domain.ExtractedTool
	for _, p := range paths {
		item := pathMap[p]
		ops := item.Operations()
		methods := make([]string, 0, len(ops))
		for m := range ops {
			methods = append(methods, m)
		}
		sort.Strings(methods)

		for _, method := range methods {
			tools = append(tools, c.operationTool(ops[method], method, p, file))
		}
	}
	return tools, nil
}

func (c *Converter) operationTool(operation *openapi3.Operation, method, path, file string) domain.ExtractedTool {
	name := operation.OperationID
	if name == "" {
		name = operationSlug(method, path)
	}

	description := operation.Summary
	if description == "" {
		description = operation.Description
	}

	properties := map[string]*jsonschema.Schema{}
	var required []string
	params := 0
	documented := 0
	typed := 0

	for _, ref := range operation.Parameters {
		param := ref.Value
		if param == nil {
			continue
		}
		params++

		schema := refSchema(param.Schema)
		if schema.Type != "" {
			typed++
		} else {
			schema.Type = "string"
		}
		if param.Description != "" {
			schema.Description = param.Description
			documented++
		}
		properties[param.Name] = schema
		if param.Required {
			required = append(required, param.Name)
		}
	}

	if body := jsonBodySchema(operation.RequestBody); body != nil {
		bodyProps := make([]string, 0, len(body.Properties))
		for propName := range body.Properties {
			bodyProps = append(bodyProps, propName)
		}
		sort.Strings(bodyProps)

		for _, propName := range bodyProps {
			schema := refSchema(body.Properties[propName])
			params++
			if schema.Type != "" {
				typed++
			} else {
				schema.Type = "string"
			}
			if schema.Description != "" {
				documented++
			}
			properties[propName] = schema
		}
		required = append(required, body.Required...)
	}

	signals := domain.DocSignals{
		DescriptionLen:   len(description),
		ParamCount:       params,
		DocumentedParams: documented,
		TypedParams:      typed,
	}
	factors := domain.FactorsFromSignals(signals, domain.SourceOpenAPI)
	return domain.ExtractedTool{
		Name:              name,
		Description:       description,
		InputSchema:       domain.ObjectSchema(properties, required),
		Source:            domain.ToolSource{Type: domain.SourceOpenAPI, File: file},
		Confidence:        factors.Score(),
		ConfidenceFactors: &factors,
	}
}

// jsonBodySchema resolves the application/json request body schema.
func jsonBodySchema(ref *openapi3.RequestBodyRef) *openapi3.Schema {
	if ref == nil || ref.Value == nil {
		return nil
	}
	media := ref.Value.Content.Get("application/json")
	if media == nil || media.Schema == nil || media.Schema.Value == nil {
		return nil
	}
	return media.Schema.Value
}

// refSchema maps an OpenAPI schema reference onto the internal JSON-Schema
// representation, one level of items deep.
func refSchema(ref *openapi3.SchemaRef) *jsonschema.Schema {
	out := &jsonschema.Schema{}
	if ref == nil || ref.Value == nil {
		return out
	}
	src := ref.Value

	out.Type = firstType(src.Type)
	out.Description = src.Description
	if len(src.Enum) > 0 {
		out.Enum = append(out.Enum, src.Enum...)
	}
	if src.Items != nil && src.Items.Value != nil {
		out.Items = &jsonschema.Schema{Type: firstType(src.Items.Value.Type)}
	}
	return out
}

func firstType(types *openapi3.Types) string {
	if types == nil || len(*types) == 0 {
		return ""
	}
	return (*types)[0]
}

// operationSlug builds a deterministic tool name from method and path when
// the operation declares no id.
func operationSlug(method, path string) string {
	cleaned := strings.NewReplacer("{", "", "}", "", "/", "_", "-", "_", ".", "_").Replace(path)
	cleaned = strings.Trim(cleaned, "_")
	if cleaned == "" {
		return strings.ToLower(method)
	}
	return strings.ToLower(method) + "_" + cleaned
}
