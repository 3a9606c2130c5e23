package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rubySource = `module Bus
  # Publish an event to the bus.
  #
  # @param topic [String] Topic name.
  # @param payload [Hash] Event body.
  # @return [Integer] Sequence number.
  def publish(topic, payload: {})
    sequence
  end

  # Persist pending events.
  def flush!
    true
  end

  def initialize(adapter)
    @adapter = adapter
  end

  def _rebalance
    nil
  end
end
`

func TestRubyExtract(t *testing.T) {
	parser, ok := ForExtension("rb")
	require.True(t, ok)

	tools := parser.ExtractFunctions(rubySource, "bus.rb")
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"publish", "flush"}, names,
		"initialize and underscore-prefixed methods are skipped, bang suffix is stripped")

	publish := toolByName(t, tools, "publish")
	assert.Equal(t, "Publish an event to the bus.", publish.Description)
	assert.Equal(t, "string", publish.InputSchema.Properties["topic"].Type)
	assert.Equal(t, "object", publish.InputSchema.Properties["payload"].Type)
	assert.Equal(t, "Topic name.", publish.InputSchema.Properties["topic"].Description)
	assert.Equal(t, []string{"topic"}, publish.InputSchema.Required,
		"keyword arguments with defaults are optional")

	// Both params carry YARD types.
	assert.Equal(t, 1.0, publish.ConfidenceFactors.Types)
	assert.InDelta(t, 0.8, publish.Confidence, 0.001)

	flush := toolByName(t, tools, "flush")
	assert.Equal(t, "Persist pending events.", flush.Description)
	assert.Empty(t, flush.InputSchema.Properties)
}

func TestRubyExtract_RequiredKeywordAndSplat(t *testing.T) {
	source := `def self.enqueue(job:, priority: :normal, *rest, &block)
  run(job)
end
`
	parser, _ := ForExtension("rb")
	tools := parser.ExtractFunctions(source, "queue.rb")
	require.Len(t, tools, 1)

	tool := tools[0]
	assert.Equal(t, "enqueue", tool.Name)
	assert.Len(t, tool.InputSchema.Properties, 2, "splat and block arguments are dropped")
	assert.Equal(t, []string{"job"}, tool.InputSchema.Required,
		"a bare keyword argument is required")
}
