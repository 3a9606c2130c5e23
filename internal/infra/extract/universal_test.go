package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

func TestUniversalExtractor_AlwaysYieldsTools(t *testing.T) {
	e := NewUniversalExtractor()
	ev := &Evidence{Ref: domain.RepoRef{Owner: "acme", Repo: "widgets"}}

	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, tools, 4)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.Equal(t, domain.SourceUniversal, tool.Source.Type)
		assert.NotEmpty(t, tool.Implementation)
		assert.Greater(t, tool.Confidence, 0.0)
		assert.LessOrEqual(t, tool.Confidence, 1.0)
	}
	assert.Equal(t, []string{"read_readme", "list_files", "read_file", "search_code"}, names)

	readme := tools[0]
	assert.Contains(t, readme.Description, "acme/widgets")
	assert.Contains(t, readme.Implementation, `getReadme("acme", "widgets")`)

	readFile := tools[2]
	assert.Equal(t, []string{"path"}, readFile.InputSchema.Required)
	assert.Equal(t, "string", readFile.InputSchema.Properties["path"].Type)
}

func TestUniversalExtractor_EmptyEvidence(t *testing.T) {
	e := NewUniversalExtractor()

	tools, err := e.Extract(context.Background(), &Evidence{})
	require.NoError(t, err)
	assert.NotEmpty(t, tools, "the fallback set is unconditional")
}

func TestUniversalExtractor_ResultsAreIsolated(t *testing.T) {
	e := NewUniversalExtractor()
	ev := &Evidence{Ref: domain.RepoRef{Owner: "a", Repo: "b"}}

	first, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	first[2].InputSchema.Properties["path"].Description = "mutated"

	second, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", second[2].InputSchema.Properties["path"].Description)
}
