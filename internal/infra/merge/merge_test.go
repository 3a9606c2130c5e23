package merge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

func tool(name string, source domain.SourceType, description string) domain.ExtractedTool {
	return domain.ExtractedTool{
		Name:        name,
		Description: description,
		Source:      domain.ToolSource{Type: source, File: "x"},
	}
}

func TestMerge_UniqueByName(t *testing.T) {
	merged := Merge([]domain.ExtractedTool{
		tool("alpha", domain.SourceCode, ""),
		tool("beta", domain.SourceCode, ""),
		tool("alpha", domain.SourceReadme, ""),
	})

	require.Len(t, merged, 2)
	names := map[string]bool{}
	for _, m := range merged {
		assert.False(t, names[m.Name], "duplicate name %s", m.Name)
		names[m.Name] = true
	}
}

func TestMerge_HigherPrioritySourceWins(t *testing.T) {
	merged := Merge([]domain.ExtractedTool{
		tool("foo", domain.SourceReadme, "B"),
		tool("foo", domain.SourceOpenAPI, "A"),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, domain.SourceOpenAPI, merged[0].Source.Type)
	assert.Equal(t, "A", merged[0].Description)
}

func TestMerge_PreservesFirstOccurrenceOrder(t *testing.T) {
	merged := Merge([]domain.ExtractedTool{
		tool("one", domain.SourceReadme, ""),
		tool("two", domain.SourceCode, ""),
		tool("one", domain.SourceOpenAPI, ""),
		tool("three", domain.SourceUniversal, ""),
	})

	require.Len(t, merged, 3)
	assert.Equal(t, "one", merged[0].Name)
	assert.Equal(t, "two", merged[1].Name)
	assert.Equal(t, "three", merged[2].Name)
	// Replacement happened in place.
	assert.Equal(t, domain.SourceOpenAPI, merged[0].Source.Type)
}

func TestMerge_TieKeepsEarliest(t *testing.T) {
	merged := Merge([]domain.ExtractedTool{
		tool("dup", domain.SourceCode, "first"),
		tool("dup", domain.SourceCode, "second"),
	})

	require.Len(t, merged, 1)
	assert.Equal(t, "first", merged[0].Description)
}

func TestMerge_IgnoresConfidence(t *testing.T) {
	low := tool("foo", domain.SourceOpenAPI, "spec")
	low.Confidence = 0.2
	high := tool("foo", domain.SourceReadme, "prose")
	high.Confidence = 0.99

	merged := Merge([]domain.ExtractedTool{high, low})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.SourceOpenAPI, merged[0].Source.Type,
		"source priority beats a higher confidence from a weaker source")
}

func TestMerge_Idempotent(t *testing.T) {
	input := []domain.ExtractedTool{
		tool("a", domain.SourceReadme, ""),
		tool("b", domain.SourceOpenAPI, ""),
		tool("a", domain.SourceCode, ""),
		tool("c", domain.SourceUniversal, ""),
		tool("b", domain.SourceUniversal, ""),
	}

	once := Merge(input)
	twice := Merge(once)
	assert.Equal(t, once, twice)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil))
	assert.Empty(t, Merge([]domain.ExtractedTool{}))
}
