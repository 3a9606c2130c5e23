package domain

import (
	"time"

	"github.com/google/jsonschema-go/jsonschema"
)

// SourceType identifies the evidence source an extractor derived a tool from.
type SourceType string

const (
	SourceReadme     SourceType = "readme"
	SourceOpenAPI    SourceType = "openapi"
	SourceGraphQL    SourceType = "graphql"
	SourceGRPC       SourceType = "grpc"
	SourceCode       SourceType = "code"
	SourceIntrospect SourceType = "mcp-introspect"
	SourceTests      SourceType = "tests"
	SourceDocs       SourceType = "docs"
	SourceExamples   SourceType = "examples"
	SourceUniversal  SourceType = "universal"
)

// sourcePriority ranks evidence sources for merge conflict resolution.
// Higher wins. Universal fallback always loses.
var sourcePriority = map[SourceType]int{
	SourceIntrospect: 8,
	SourceOpenAPI:    7,
	SourceGraphQL:    6,
	SourceCode:       5,
	SourceTests:      4,
	SourceDocs:       3,
	SourceExamples:   2,
	SourceReadme:     1,
	SourceUniversal:  0,
}

// Priority returns the merge priority for the source type.
// Unknown types rank below universal.
func (s SourceType) Priority() int {
	p, ok := sourcePriority[s]
	if !ok {
		return -1
	}
	return p
}

// Valid reports whether the source type is one of the closed enum values.
func (s SourceType) Valid() bool {
	_, ok := sourcePriority[s]
	return ok
}

// ToolSource records where a tool was discovered.
type ToolSource struct {
	Type SourceType `json:"type"`
	File string     `json:"file"`
	Line int        `json:"line,omitempty"`
}

// ExtractedTool is a callable capability descriptor with a JSON-Schema-typed
// parameter contract.
type ExtractedTool struct {
	Name              string             `json:"name"`
	Description       string             `json:"description"`
	InputSchema       *jsonschema.Schema `json:"inputSchema"`
	Source            ToolSource         `json:"source"`
	Confidence        float64            `json:"confidence,omitempty"`
	ConfidenceFactors *ConfidenceFactors `json:"confidenceFactors,omitempty"`

	// Implementation carries generated call-through code. Opaque to the
	// extraction pipeline; downstream templating consumes it.
	Implementation string `json:"implementation,omitempty"`
}

// ObjectSchema builds the canonical {type:"object", properties, required}
// input schema shape shared by all extractors.
func ObjectSchema(properties map[string]*jsonschema.Schema, required []string) *jsonschema.Schema {
	if properties == nil {
		properties = map[string]*jsonschema.Schema{}
	}
	return &jsonschema.Schema{
		Type:       "object",
		Properties: properties,
		Required:   required,
	}
}

// RepoType classifies a repository by its dominant shape.
type RepoType string

const (
	RepoAPISDK        RepoType = "api-sdk"
	RepoMCPServer     RepoType = "mcp-server"
	RepoCLITool       RepoType = "cli-tool"
	RepoLibrary       RepoType = "library"
	RepoDocumentation RepoType = "documentation"
	RepoData          RepoType = "data"
	RepoUnknown       RepoType = "unknown"
)

// RepoClassification is the classifier verdict with explainability signals.
type RepoClassification struct {
	Type       RepoType `json:"type"`
	Confidence float64  `json:"confidence"`
	Indicators []string `json:"indicators,omitempty"`
}

// RepoRef addresses a repository, optionally pinned to a branch and subpath.
type RepoRef struct {
	Owner  string `json:"owner"`
	Repo   string `json:"repo"`
	Branch string `json:"branch,omitempty"`
	Path   string `json:"path,omitempty"`
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Repo
}

// RepoMetadata is the subset of hosting-service metadata the pipeline uses.
type RepoMetadata struct {
	Owner         string `json:"owner"`
	Repo          string `json:"repo"`
	Stars         int    `json:"stars"`
	Language      string `json:"language,omitempty"`
	License       string `json:"license,omitempty"`
	Description   string `json:"description,omitempty"`
	DefaultBranch string `json:"defaultBranch,omitempty"`
}

// FileContent is a fetched repository file or directory entry.
type FileContent struct {
	Path    string `json:"path"`
	Name    string `json:"name"`
	Content string `json:"content,omitempty"`
	Size    int    `json:"size,omitempty"`
	IsDir   bool   `json:"isDir,omitempty"`
}

// APISpec is a discovered API specification document.
type APISpec struct {
	Path    string `json:"path"`
	Content string `json:"content"`
	Format  string `json:"format"` // "openapi" or "graphql"
}

// SourceBreakdown summarizes one extractor run that yielded tools.
type SourceBreakdown struct {
	Type  SourceType `json:"type"`
	Count int        `json:"count"`
	Files []string   `json:"files,omitempty"`
}

// GenerationResult is the assembled output of one pipeline run.
type GenerationResult struct {
	ID             string             `json:"id"`
	RepoURL        string             `json:"repoUrl"`
	Metadata       RepoMetadata       `json:"metadata"`
	Classification RepoClassification `json:"classification"`
	Tools          []ExtractedTool    `json:"tools"`
	Breakdown      []SourceBreakdown  `json:"breakdown"`
	Warnings       []string           `json:"warnings,omitempty"`
	GeneratedAt    time.Time          `json:"generatedAt"`
}
