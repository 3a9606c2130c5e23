package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourceType_Priority(t *testing.T) {
	ordered := []SourceType{
		SourceIntrospect,
		SourceOpenAPI,
		SourceGraphQL,
		SourceCode,
		SourceTests,
		SourceDocs,
		SourceExamples,
		SourceReadme,
		SourceUniversal,
	}

	for i := 1; i < len(ordered); i++ {
		assert.Greater(t, ordered[i-1].Priority(), ordered[i].Priority(),
			"%s should outrank %s", ordered[i-1], ordered[i])
	}

	assert.Equal(t, 8, SourceIntrospect.Priority())
	assert.Equal(t, 0, SourceUniversal.Priority())
	assert.Equal(t, -1, SourceType("bogus").Priority())
}

func TestSourceType_Valid(t *testing.T) {
	assert.True(t, SourceOpenAPI.Valid())
	assert.True(t, SourceGRPC.Valid())
	assert.False(t, SourceType("").Valid())
	assert.False(t, SourceType("swagger").Valid())
}

func TestObjectSchema(t *testing.T) {
	schema := ObjectSchema(nil, nil)
	require.NotNil(t, schema)
	assert.Equal(t, "object", schema.Type)
	assert.NotNil(t, schema.Properties)
	assert.Empty(t, schema.Required)
}
