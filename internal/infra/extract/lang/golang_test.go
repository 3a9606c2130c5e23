package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goSource = `package imaging

import "context"

// Resize scales an image to the given bounds.
func Resize(path string, width, height int) error {
	return nil
}

// Fetch downloads an image. The context bounds the request.
func Fetch(ctx context.Context, url string, opts *Options) ([]byte, error) {
	return nil, nil
}

func helper(n int) int { return n }

func (s *Server) Close() error { return nil }
`

func TestGoExtract(t *testing.T) {
	parser, ok := ForExtension("go")
	require.True(t, ok)

	tools := parser.ExtractFunctions(goSource, "imaging.go")
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"Resize", "Fetch", "Close"}, names,
		"only exported functions and methods are extracted")

	resize := toolByName(t, tools, "Resize")
	assert.Equal(t, "Resize scales an image to the given bounds.", resize.Description)

	// Grouped parameters share the trailing type.
	assert.Equal(t, "string", resize.InputSchema.Properties["path"].Type)
	assert.Equal(t, "integer", resize.InputSchema.Properties["width"].Type)
	assert.Equal(t, "integer", resize.InputSchema.Properties["height"].Type)
	assert.Equal(t, []string{"path", "width", "height"}, resize.InputSchema.Required)
	assert.Equal(t, 1.0, resize.ConfidenceFactors.Types)

	fetch := toolByName(t, tools, "Fetch")
	assert.Len(t, fetch.InputSchema.Properties, 2, "context.Context is not a tool parameter")
	assert.Equal(t, "string", fetch.InputSchema.Properties["url"].Type)
	assert.Equal(t, []string{"url"}, fetch.InputSchema.Required, "pointer params are optional")
}

func TestGoExtract_VariadicAndSlices(t *testing.T) {
	source := `package q

func Enqueue(queue string, items ...string) error { return nil }

func Tags(ids []int) map[string]string { return nil }
`
	parser, _ := ForExtension("go")
	tools := parser.ExtractFunctions(source, "q.go")
	require.Len(t, tools, 2)

	enqueue := toolByName(t, tools, "Enqueue")
	items := enqueue.InputSchema.Properties["items"]
	require.NotNil(t, items)
	assert.Equal(t, "array", items.Type)
	require.NotNil(t, items.Items)
	assert.Equal(t, "string", items.Items.Type)
	assert.Equal(t, []string{"queue"}, enqueue.InputSchema.Required)

	tags := toolByName(t, tools, "Tags")
	assert.Equal(t, "array", tags.InputSchema.Properties["ids"].Type)
	assert.Equal(t, "integer", tags.InputSchema.Properties["ids"].Items.Type)
}
