package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tsSource = `import { Widget } from "./widget";

/**
 * Create a widget.
 *
 * @param name - The widget name.
 * @param size - Pixel size.
 * @returns The widget id.
 * @example
 * createWidget("box", 10)
 */
export function createWidget(name: string, size: number = 10): string {
  return name;
}

export const sum = (a: number, b: number): number => a + b;

class Renderer {
  render(format: "json" | "text", limit?: number): void {
    if (this.busy) {
      return;
    }
    this.flush(format);
  }

  private _reset(): void {}
}
`

func TestTypeScriptExtract(t *testing.T) {
	parser, ok := ForExtension("ts")
	require.True(t, ok)

	tools := parser.ExtractFunctions(tsSource, "widget.ts")
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"createWidget", "sum", "render"}, names,
		"keywords, call expressions, and underscore-prefixed methods are skipped")

	create := toolByName(t, tools, "createWidget")
	assert.Equal(t, "Create a widget.", create.Description)
	assert.Equal(t, []string{"name"}, create.InputSchema.Required)
	assert.Equal(t, "string", create.InputSchema.Properties["name"].Type)
	assert.Equal(t, "number", create.InputSchema.Properties["size"].Type)
	assert.Equal(t, "The widget name.", create.InputSchema.Properties["name"].Description)

	require.NotNil(t, create.ConfidenceFactors)
	assert.Equal(t, 1.0, create.ConfidenceFactors.Types)
	assert.Equal(t, 1.0, create.ConfidenceFactors.Documentation)
	assert.Equal(t, 1.0, create.ConfidenceFactors.Examples)
	assert.InDelta(t, 0.95, create.Confidence, 0.001)

	sum := toolByName(t, tools, "sum")
	assert.ElementsMatch(t, []string{"a", "b"}, sum.InputSchema.Required)

	render := toolByName(t, tools, "render")
	format := render.InputSchema.Properties["format"]
	require.NotNil(t, format)
	assert.Equal(t, "string", format.Type)
	assert.Equal(t, []any{"json", "text"}, format.Enum)
	assert.Equal(t, []string{"format"}, render.InputSchema.Required,
		"limit? is optional")
}

func TestTypeScriptExtract_DestructuredParams(t *testing.T) {
	source := `export function connect({ host, port }: ConnectOptions, retries: number = 3) {
  return null;
}
`
	parser, _ := ForExtension("ts")
	tools := parser.ExtractFunctions(source, "net.ts")
	require.Len(t, tools, 1)

	schema := tools[0].InputSchema
	require.NotNil(t, schema.Properties["options"])
	assert.Equal(t, "object", schema.Properties["options"].Type)
	assert.Equal(t, []string{"options"}, schema.Required)
}

func TestTypeScriptExtract_JSDocTypesOnUntypedJS(t *testing.T) {
	source := `/**
 * Look up a user by id.
 *
 * @param {string} id - The user id.
 * @param {boolean} [fresh] - Skip the cache.
 * @returns {object} The user record.
 */
function findUser(id, fresh) {
  return db.get(id);
}
`
	parser, ok := ForExtension("js")
	require.True(t, ok)

	tools := parser.ExtractFunctions(source, "users.js")
	require.Len(t, tools, 1)

	tool := tools[0]
	assert.Equal(t, "string", tool.InputSchema.Properties["id"].Type)
	assert.Equal(t, "boolean", tool.InputSchema.Properties["fresh"].Type)
	assert.Equal(t, 1.0, tool.ConfidenceFactors.Types,
		"JSDoc types count toward the fully-typed tier")
}
