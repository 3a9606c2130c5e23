package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

type fakeConverter struct {
	byFile map[string][]domain.ExtractedTool
	errs   map[string]error
	calls  []string
}

func (f *fakeConverter) ConvertSpec(_ []byte, file string) ([]domain.ExtractedTool, error) {
	f.calls = append(f.calls, file)
	if err := f.errs[file]; err != nil {
		return nil, err
	}
	return f.byFile[file], nil
}

func TestOpenAPIExtractor(t *testing.T) {
	conv := &fakeConverter{
		byFile: map[string][]domain.ExtractedTool{
			"openapi.yaml": {
				{Name: "listPets", Source: domain.ToolSource{Type: domain.SourceOpenAPI}},
			},
		},
		errs: map[string]error{
			"broken.json": errors.New("unexpected end of document"),
		},
	}
	ev := &Evidence{Specs: []domain.APISpec{
		{Path: "openapi.yaml", Content: "openapi: 3.0.0", Format: "openapi"},
		{Path: "broken.json", Content: "{", Format: "openapi"},
		{Path: "schema.graphql", Content: "type Query { ping: String }", Format: "graphql"},
	}}

	e := NewOpenAPIExtractor(conv, nil)
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err, "a rejected document never fails the run")

	require.Len(t, tools, 1)
	assert.Equal(t, "listPets", tools[0].Name)
	assert.Equal(t, []string{"openapi.yaml", "broken.json"}, conv.calls,
		"graphql documents are not routed through the spec converter")
}
