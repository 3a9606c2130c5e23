package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toolforge/internal/domain"
)

const gqlSchema = `
type Query {
  "Look up a user by id."
  user(id: ID!, verbose: Boolean): User
}

type Mutation {
  createUser(input: CreateUserInput!): User
}

type User {
  id: ID!
  name: String
}

input CreateUserInput {
  name: String!
}
`

func TestGraphQLExtractor(t *testing.T) {
	ev := &Evidence{Specs: []domain.APISpec{
		{Path: "schema.graphql", Content: gqlSchema, Format: "graphql"},
	}}

	e := NewGraphQLExtractor(nil)
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)

	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.Equal(t, domain.SourceGraphQL, tool.Source.Type)
		assert.False(t, len(tool.Name) > 1 && tool.Name[:2] == "__",
			"introspection meta fields must be skipped")
	}
	assert.ElementsMatch(t, []string{"user", "createUser"}, names)

	user := toolNamed(t, tools, "user")
	assert.Equal(t, "Look up a user by id.", user.Description)
	assert.Equal(t, "string", user.InputSchema.Properties["id"].Type)
	assert.Equal(t, "boolean", user.InputSchema.Properties["verbose"].Type)
	assert.Equal(t, []string{"id"}, user.InputSchema.Required,
		"only non-null arguments without defaults are required")
	assert.Equal(t, 1.0, user.ConfidenceFactors.Types, "schema arguments are always typed")

	create := toolNamed(t, tools, "createUser")
	assert.Equal(t, "object", create.InputSchema.Properties["input"].Type)
	assert.Equal(t, []string{"input"}, create.InputSchema.Required)
}

func TestGraphQLExtractor_SchemaFilesFromTree(t *testing.T) {
	ev := &Evidence{Files: []domain.FileContent{
		{Path: "api/schema.gql", Content: "type Query {\n  ping: String\n}\n"},
	}}

	e := NewGraphQLExtractor(nil)
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err)
	require.Len(t, tools, 1)
	assert.Equal(t, "ping", tools[0].Name)
	assert.Equal(t, "api/schema.gql", tools[0].Source.File)
}

func TestGraphQLExtractor_MalformedSchema(t *testing.T) {
	ev := &Evidence{Specs: []domain.APISpec{
		{Path: "broken.graphql", Content: "type Query {", Format: "graphql"},
	}}

	e := NewGraphQLExtractor(nil)
	tools, err := e.Extract(context.Background(), ev)
	require.NoError(t, err, "a malformed schema yields zero tools, not a failure")
	assert.Empty(t, tools)
}

func toolNamed(t *testing.T, tools []domain.ExtractedTool, name string) domain.ExtractedTool {
	t.Helper()
	for _, tool := range tools {
		if tool.Name == name {
			return tool
		}
	}
	t.Fatalf("no tool named %q", name)
	return domain.ExtractedTool{}
}
