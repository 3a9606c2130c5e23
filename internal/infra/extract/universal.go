package extract

import (
	"context"
	"strings"
	"text/template"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

// UniversalExtractor emits the fixed fallback tool set every repository
// gets regardless of what the other extractors found. It never fails and
// never returns an empty slice, so downstream output is never toolless.
type UniversalExtractor struct {
	templates *template.Template
}

type universalDef struct {
	name        string
	description string
	impl        string
	properties  map[string]*jsonschema.Schema
	required    []string
}

var universalDefs = []universalDef{
	{
		name:        "read_readme",
		description: "Read the README of {{.Owner}}/{{.Repo}}",
		impl:        `return client.getReadme("{{.Owner}}", "{{.Repo}}")`,
	},
	{
		name:        "list_files",
		description: "List files in a directory of {{.Owner}}/{{.Repo}}",
		impl:        `return client.listDirectory("{{.Owner}}", "{{.Repo}}", path)`,
		properties: map[string]*jsonschema.Schema{
			"path": {Type: "string", Description: "Directory path, repository root when empty"},
		},
	},
	{
		name:        "read_file",
		description: "Read a file from {{.Owner}}/{{.Repo}}",
		impl:        `return client.getFileContent("{{.Owner}}", "{{.Repo}}", path)`,
		properties: map[string]*jsonschema.Schema{
			"path": {Type: "string", Description: "File path relative to the repository root"},
		},
		required: []string{"path"},
	},
	{
		name:        "search_code",
		description: "Search source files of {{.Owner}}/{{.Repo}} for a pattern",
		impl:        `return client.searchFiles("{{.Owner}}", "{{.Repo}}", pattern)`,
		properties: map[string]*jsonschema.Schema{
			"pattern": {Type: "string", Description: "Filename pattern to search for"},
		},
		required: []string{"pattern"},
	},
}

func NewUniversalExtractor() *UniversalExtractor {
	root := template.New("universal")
	for _, def := range universalDefs {
		template.Must(root.New(def.name + ".description").Parse(def.description))
		template.Must(root.New(def.name + ".impl").Parse(def.impl))
	}
	return &UniversalExtractor{templates: root}
}

func (e *UniversalExtractor) Name() string { return "universal" }

func (e *UniversalExtractor) Extract(_ context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	data := struct{ Owner, Repo string }{Owner: ev.Ref.Owner, Repo: ev.Ref.Repo}

	tools := make([]domain.ExtractedTool, 0, len(universalDefs))
	for _, def := range universalDefs {
		description := e.render(def.name+".description", data)
		impl := e.render(def.name+".impl", data)

		documented := 0
		for _, prop := range def.properties {
			if prop.Description != "" {
				documented++
			}
		}
		signals := domain.DocSignals{
			DescriptionLen:   len(description),
			ParamCount:       len(def.properties),
			DocumentedParams: documented,
			TypedParams:      len(def.properties),
		}
		factors := domain.FactorsFromSignals(signals, domain.SourceUniversal)

		tools = append(tools, domain.ExtractedTool{
			Name:              def.name,
			Description:       description,
			InputSchema:       domain.ObjectSchema(cloneProperties(def.properties), def.required),
			Source:            domain.ToolSource{Type: domain.SourceUniversal},
			Confidence:        factors.Score(),
			ConfidenceFactors: &factors,
			Implementation:    impl,
		})
	}
	return tools, nil
}

func (e *UniversalExtractor) render(name string, data any) string {
	var sb strings.Builder
	if err := e.templates.ExecuteTemplate(&sb, name, data); err != nil {
		// Templates are compile-time constants; execution over a plain
		// struct cannot fail.
		return ""
	}
	return sb.String()
}

// cloneProperties copies the shared schema fragments so callers mutating a
// result cannot corrupt the definitions.
func cloneProperties(src map[string]*jsonschema.Schema) map[string]*jsonschema.Schema {
	out := make(map[string]*jsonschema.Schema, len(src))
	for name, schema := range src {
		copied := *schema
		out[name] = &copied
	}
	return out
}
