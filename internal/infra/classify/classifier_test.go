package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"toolforge/internal/domain"
)

func TestClassify_Cascade(t *testing.T) {
	tests := []struct {
		name       string
		readme     string
		meta       domain.RepoMetadata
		wantType   domain.RepoType
		wantMinConf float64
	}{
		{
			name:        "mcp server by protocol phrase",
			readme:      "This server implements the Model Context Protocol for file access.",
			wantType:    domain.RepoMCPServer,
			wantMinConf: 0.9,
		},
		{
			name:        "api sdk",
			readme:      "An API client for the Stripe REST API.",
			wantType:    domain.RepoAPISDK,
			wantMinConf: 0.8,
		},
		{
			name:        "cli tool",
			readme:      "A fast command-line tool for resizing images.",
			wantType:    domain.RepoCLITool,
			wantMinConf: 0.7,
		},
		{
			name:        "library by install instructions",
			readme:      "pip install mypkg\nimport mypkg",
			wantType:    domain.RepoLibrary,
			wantMinConf: 0.6,
		},
		{
			name:        "documentation",
			readme:      "A curated list of Go resources.",
			wantType:    domain.RepoDocumentation,
			wantMinConf: 0.5,
		},
		{
			name:        "unknown",
			readme:      "hello world",
			wantType:    domain.RepoUnknown,
			wantMinConf: 0.3,
		},
		{
			name:        "empty readme",
			readme:      "",
			wantType:    domain.RepoUnknown,
			wantMinConf: 0.3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.readme, tt.meta)
			assert.Equal(t, tt.wantType, got.Type)
			assert.GreaterOrEqual(t, got.Confidence, tt.wantMinConf)
		})
	}
}

func TestClassify_FirstMatchWins(t *testing.T) {
	// MCP keywords are checked before api/sdk keywords even when both fire.
	readme := "An MCP server exposing a REST API wrapper."
	got := Classify(readme, domain.RepoMetadata{})
	assert.Equal(t, domain.RepoMCPServer, got.Type)
}

func TestClassify_ExactLibraryConfidence(t *testing.T) {
	// No language or star boosts: the base category confidence is exact.
	got := Classify("pip install mypkg\nimport mypkg", domain.RepoMetadata{})
	assert.Equal(t, domain.RepoLibrary, got.Type)
	assert.InDelta(t, 0.6, got.Confidence, 1e-9)
}

func TestClassify_Boosts(t *testing.T) {
	meta := domain.RepoMetadata{Language: "Python", Stars: 4200}
	got := Classify("model context protocol server", meta)

	assert.Equal(t, domain.RepoMCPServer, got.Type)
	assert.InDelta(t, 1.0, got.Confidence, 1e-9, "0.9 + 0.1 + 0.05 capped at 1.0")
	assert.Contains(t, got.Indicators, "language:python")
	assert.Contains(t, got.Indicators, "stars:4200")
}

func TestClassify_NoBoostForObscureLanguage(t *testing.T) {
	meta := domain.RepoMetadata{Language: "COBOL", Stars: 10}
	got := Classify("a command-line tool", meta)
	assert.InDelta(t, 0.7, got.Confidence, 1e-9)
}

func TestClassify_Deterministic(t *testing.T) {
	readme := "An API client. pip install thing. command-line usage."
	meta := domain.RepoMetadata{Language: "Go", Stars: 5000}
	first := Classify(readme, meta)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Classify(readme, meta))
	}
}
