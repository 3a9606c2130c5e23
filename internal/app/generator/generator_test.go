package generator

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
	"toolforge/internal/infra/extract"
)

const petsSpec = `openapi: 3.0.0
info:
  title: Pets
  version: "1.0"
paths:
  /pets:
    get:
      operationId: listPets
      summary: List pets
      responses:
        "200":
          description: ok
`

const pyClient = `def list_pets(limit: int = 10):
    """Fetch pets from the API.

    Args:
        limit: Max pets to return.

    Returns:
        list: Pets.
    """
    return []
`

type fakeRepoClient struct {
	mu            sync.Mutex
	metadataCalls int

	meta    domain.RepoMetadata
	metaErr error
	readme  string
	specs   []domain.APISpec
	sources []domain.FileContent
}

func (f *fakeRepoClient) GetMetadata(_ context.Context, _, _ string) (domain.RepoMetadata, error) {
	f.mu.Lock()
	f.metadataCalls++
	f.mu.Unlock()
	return f.meta, f.metaErr
}

func (f *fakeRepoClient) GetReadme(_ context.Context, _, _, _ string) (*domain.FileContent, error) {
	if f.readme == "" {
		return nil, nil
	}
	return &domain.FileContent{Path: "README.md", Name: "README.md", Content: f.readme}, nil
}

func (f *fakeRepoClient) GetFileContent(_ context.Context, _, _, filePath, _ string) (*domain.FileContent, error) {
	for _, file := range f.sources {
		if file.Path == filePath {
			return &file, nil
		}
	}
	return nil, nil
}

func (f *fakeRepoClient) FindAPISpecs(_ context.Context, _, _, _ string) ([]domain.APISpec, error) {
	return f.specs, nil
}

func (f *fakeRepoClient) SearchFiles(_ context.Context, _, _, _, _ string, _ int) ([]domain.FileContent, error) {
	return f.sources, nil
}

func petsClient() *fakeRepoClient {
	return &fakeRepoClient{
		meta: domain.RepoMetadata{
			Owner:         "acme",
			Repo:          "pets",
			Stars:         42,
			Language:      "Python",
			DefaultBranch: "main",
		},
		readme:  "A Python client for the Pets REST API.",
		specs:   []domain.APISpec{{Path: "openapi.yaml", Content: petsSpec, Format: "openapi"}},
		sources: []domain.FileContent{{Path: "client.py", Name: "client.py", Content: pyClient}},
	}
}

func toolNames(tools []domain.ExtractedTool) []string {
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	return names
}

func TestGenerate_FullPipeline(t *testing.T) {
	g := New(Options{
		Client: petsClient(),
		NewID:  func() string { return "run-1" },
	})

	result, err := g.Generate(context.Background(), "acme/pets")
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.Equal(t, "run-1", result.ID)
	assert.Equal(t, "acme/pets", result.RepoURL)
	assert.Empty(t, result.Warnings)
	assert.False(t, result.GeneratedAt.IsZero())

	assert.Equal(t, domain.RepoAPISDK, result.Classification.Type)
	assert.InDelta(t, 0.9, result.Classification.Confidence, 0.001)

	names := toolNames(result.Tools)
	assert.Contains(t, names, "listPets", "openapi operation")
	assert.Contains(t, names, "list_pets", "python source function")
	assert.Contains(t, names, "read_readme", "universal fallback")
	assert.Contains(t, names, "search_code", "universal fallback")

	wantBreakdown := []domain.SourceBreakdown{
		{Type: domain.SourceOpenAPI, Count: 1, Files: []string{"openapi.yaml"}},
		{Type: domain.SourceCode, Count: 1, Files: []string{"client.py"}},
		{Type: domain.SourceUniversal, Count: 4},
	}
	if diff := cmp.Diff(wantBreakdown, result.Breakdown); diff != "" {
		t.Errorf("breakdown mismatch (-want +got):\n%s", diff)
	}
}

func TestGenerate_InvalidURLIsFatal(t *testing.T) {
	g := New(Options{Client: petsClient()})

	result, err := g.Generate(context.Background(), "not a repository url")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidRepoURL)
	assert.Nil(t, result)
}

func TestGenerate_MetadataFetchErrorIsFatal(t *testing.T) {
	client := petsClient()
	client.metaErr = errors.New("rate limited")

	g := New(Options{Client: client})
	result, err := g.Generate(context.Background(), "acme/pets")
	require.Error(t, err)
	assert.Nil(t, result)

	code, ok := domain.CodeFrom(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeUnavailable, code)
}

func TestGenerate_ExtractorFailureBecomesWarning(t *testing.T) {
	g := New(Options{
		Client:     petsClient(),
		Extractors: []extract.Extractor{failingExtractor{}},
	})

	result, err := g.Generate(context.Background(), "acme/pets")
	require.NoError(t, err)
	require.NotNil(t, result)

	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "boom")

	// The universal fallback still runs after the failure.
	assert.Len(t, result.Tools, 4)
	for _, tool := range result.Tools {
		assert.Equal(t, domain.SourceUniversal, tool.Source.Type)
	}
}

func TestGenerate_SecondRunServedFromCache(t *testing.T) {
	client := petsClient()
	g := New(Options{Client: client})

	_, err := g.Generate(context.Background(), "acme/pets")
	require.NoError(t, err)
	_, err = g.Generate(context.Background(), "acme/pets")
	require.NoError(t, err)

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, 1, client.metadataCalls, "fresh metadata entry is not refetched")
}

func TestGenerateBatch(t *testing.T) {
	g := New(Options{Client: petsClient()})

	urls := []string{"acme/pets", "https://github.com/acme/pets", "not a url"}
	results := g.GenerateBatch(context.Background(), urls, 2)

	require.Len(t, results, 3)
	assert.Equal(t, urls[0], results[0].URL)
	assert.Equal(t, urls[1], results[1].URL)
	assert.Equal(t, urls[2], results[2].URL)

	require.NoError(t, results[0].Err)
	require.NotNil(t, results[0].Result)
	require.NoError(t, results[1].Err)

	assert.ErrorIs(t, results[2].Err, domain.ErrInvalidRepoURL)
	assert.Nil(t, results[2].Result)
}

type failingExtractor struct{}

func (failingExtractor) Name() string { return "exploding" }

func (failingExtractor) Extract(context.Context, *extract.Evidence) ([]domain.ExtractedTool, error) {
	return nil, errors.New("boom")
}
