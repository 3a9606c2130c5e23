package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

func TestCodeExtractor_DispatchesByExtension(t *testing.T) {
	ev := &Evidence{Files: []domain.FileContent{
		{Path: "src/api.py", Content: "def create_user(name: str):\n    pass\n"},
		{Path: "notes.txt", Content: "create_things()"},
		{Path: "src", IsDir: true},
	}}

	e := NewCodeExtractor(CodeOptions{})
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, tools, 1, "files without a registered parser are skipped")

	assert.Equal(t, "create_user", tools[0].Name)
	assert.Equal(t, domain.SourceCode, tools[0].Source.Type)
	assert.Equal(t, "src/api.py", tools[0].Source.File)
}

func TestCodeExtractor_RetagsByFileRole(t *testing.T) {
	ev := &Evidence{Files: []domain.FileContent{
		{Path: "tests/test_api.py", Content: "def probe_login(user: str):\n    pass\n"},
		{Path: "examples/demo.py", Content: "def run_demo(scenario: str):\n    pass\n"},
	}}

	e := NewCodeExtractor(CodeOptions{})
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, tools, 2)

	probe := tools[0]
	assert.Equal(t, domain.SourceTests, probe.Source.Type)
	require.NotNil(t, probe.ConfidenceFactors)
	assert.Equal(t, domain.SourceReliability(domain.SourceTests), probe.ConfidenceFactors.Source)
	assert.Equal(t, probe.ConfidenceFactors.Score(), probe.Confidence,
		"confidence is recomputed after the retag")

	demo := tools[1]
	assert.Equal(t, domain.SourceExamples, demo.Source.Type)
}

func TestCodeExtractor_FileBudget(t *testing.T) {
	ev := &Evidence{Files: []domain.FileContent{
		{Path: "a.py", Content: "def first(x: int):\n    pass\n"},
		{Path: "b.py", Content: "def second(x: int):\n    pass\n"},
	}}

	e := NewCodeExtractor(CodeOptions{MaxFiles: 1})
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "first", tools[0].Name)
}

func TestFileRole(t *testing.T) {
	tests := []struct {
		path string
		want domain.SourceType
	}{
		{"src/client.go", domain.SourceCode},
		{"tests/test_client.py", domain.SourceTests},
		{"client_test.go", domain.SourceTests},
		{"widget.spec.ts", domain.SourceTests},
		{"examples/basic.rs", domain.SourceExamples},
		{"docs/api.py", domain.SourceDocs},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, fileRole(tt.path))
		})
	}
}
