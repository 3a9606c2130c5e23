package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const rustSource = `use std::path::PathBuf;

/// Upload a file to the bucket.
///
/// # Arguments
///
/// * ` + "`path`" + ` - Local file path.
/// * ` + "`retries`" + ` - Attempt count before giving up.
///
/// # Errors
///
/// Returns an error when the bucket rejects the object.
pub fn upload(path: String, retries: Option<u32>) -> Result<(), Error> {
    todo!()
}

pub fn new() -> Client {
    todo!()
}

fn internal_sync(delta: u64) {}

impl Client {
    pub async fn list_objects(&self, prefix: &str, limit: Option<usize>) -> Vec<Object> {
        todo!()
    }
}
`

func TestRustExtract(t *testing.T) {
	parser, ok := ForExtension("rs")
	require.True(t, ok)

	tools := parser.ExtractFunctions(rustSource, "bucket.rs")
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"upload", "list_objects"}, names,
		"new() and non-pub functions are skipped")

	upload := toolByName(t, tools, "upload")
	assert.Equal(t, "Upload a file to the bucket.", upload.Description)
	assert.Equal(t, "Local file path.", upload.InputSchema.Properties["path"].Description)
	assert.Equal(t, "string", upload.InputSchema.Properties["path"].Type)
	assert.Equal(t, "integer", upload.InputSchema.Properties["retries"].Type)
	assert.Equal(t, []string{"path"}, upload.InputSchema.Required,
		"Option<T> parameters are optional")
	assert.Equal(t, 1.0, upload.ConfidenceFactors.Types)

	list := toolByName(t, tools, "list_objects")
	assert.Len(t, list.InputSchema.Properties, 2, "&self is dropped")
	assert.Equal(t, "string", list.InputSchema.Properties["prefix"].Type)
	assert.Equal(t, []string{"prefix"}, list.InputSchema.Required)
}

func TestRustTypeSchema(t *testing.T) {
	tests := []struct {
		typ      string
		kind     string
		required bool
	}{
		{"String", "string", true},
		{"&str", "string", true},
		{"u64", "integer", true},
		{"f32", "number", true},
		{"bool", "boolean", true},
		{"Vec<String>", "array", true},
		{"HashMap<String, u32>", "object", true},
		{"Option<PathBuf>", "string", false},
		{"CustomConfig", "object", true},
	}
	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			schema, required := rustTypeSchema(tt.typ)
			require.NotNil(t, schema)
			assert.Equal(t, tt.kind, schema.Type)
			assert.Equal(t, tt.required, required)
		})
	}
}
