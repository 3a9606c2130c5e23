package extract

import (
	"context"
	"path"
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"toolforge/internal/domain"
	"toolforge/internal/infra/extract/lang"
)

// IntrospectExtractor lifts declared tool definitions out of MCP server
// source without running it. Registration calls name their tools
// explicitly, which makes this the most reliable static evidence there is.
type IntrospectExtractor struct {
	logger *zap.Logger
}

func NewIntrospectExtractor(logger *zap.Logger) *IntrospectExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &IntrospectExtractor{logger: logger.Named("extract.introspect")}
}

func (e *IntrospectExtractor) Name() string { return "introspect" }

var mcpMarkers = []string{
	"modelcontextprotocol",
	"model context protocol",
	"fastmcp",
	"mcp.server",
	"mcp-server",
	"mcp server",
}

// DetectMCPServer reports whether the evidence looks like an MCP server
// implementation.
func DetectMCPServer(ev *Evidence) bool {
	haystacks := []string{strings.ToLower(ev.Readme)}
	for _, file := range ev.Files {
		name := strings.ToLower(path.Base(file.Path))
		if name == "package.json" || name == "pyproject.toml" || name == "go.mod" {
			haystacks = append(haystacks, strings.ToLower(file.Content))
		}
	}
	for _, hay := range haystacks {
		for _, marker := range mcpMarkers {
			if strings.Contains(hay, marker) {
				return true
			}
		}
	}
	return false
}

var (
	// server.tool("name", "description", {...}) and registerTool variants
	// from the TypeScript SDK.
	tsRegisterRe = regexp.MustCompile(`\.(?:registerTool|tool)\(\s*["']([\w-]+)["']\s*(?:,\s*["'` + "`" + `]([^"'` + "`" + `]*)["'` + "`" + `])?`)

	// @mcp.tool() / @server.tool decorated Python functions.
	pyDecoratorRe = regexp.MustCompile(`(?m)^[ \t]*@[\w.]+\.tool\b.*\n(?:[ \t]*@.*\n)*[ \t]*(?:async[ \t]+)?def[ \t]+(\w+)`)

	// &mcp.Tool{Name: "...", Description: "..."} literals from the Go SDK.
	goToolRe = regexp.MustCompile(`mcp\.Tool\{[^{}]*Name:\s*"([^"]+)"(?:[^{}]*Description:\s*"([^"]*)")?`)

	zodFieldRe = regexp.MustCompile(`(\w+)[ \t]*:[ \t]*z\.(\w+)\(([^)]*)\)(\.optional\(\))?`)
)

func (e *IntrospectExtractor) Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	if !DetectMCPServer(ev) {
		return nil, nil
	}

	var tools []domain.ExtractedTool
	seen := map[string]struct{}{}
	add := func(tool domain.ExtractedTool) {
		if _, dup := seen[tool.Name]; dup {
			return
		}
		seen[tool.Name] = struct{}{}
		tools = append(tools, tool)
	}

	for _, file := range ev.Files {
		if file.IsDir || file.Content == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return tools, err
		}

		switch strings.TrimPrefix(path.Ext(file.Path), ".") {
		case "ts", "tsx", "js", "mjs", "cjs":
			for _, tool := range tsRegisteredTools(file) {
				add(tool)
			}
		case "py":
			for _, tool := range pyDecoratedTools(file) {
				add(tool)
			}
		case "go":
			for _, tool := range goDeclaredTools(file) {
				add(tool)
			}
		}
	}

	e.logger.Debug("introspected declared tools", zap.Int("count", len(tools)))
	return tools, nil
}

func tsRegisteredTools(file domain.FileContent) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range tsRegisterRe.FindAllStringSubmatchIndex(file.Content, -1) {
		name := file.Content[m[2]:m[3]]
		description := ""
		if m[4] >= 0 {
			description = file.Content[m[4]:m[5]]
		}

		// A zod shape usually follows the registration arguments.
		schema, paramCount := zodSchema(registrationWindow(file.Content, m[1]))
		tools = append(tools, introspectedTool(name, description, schema, paramCount,
			file.Path, lineOf(file.Content, m[0])))
	}
	return tools
}

// registrationWindow bounds how far past the registration call the zod
// shape scan reaches, so one call's schema does not bleed into the next.
func registrationWindow(code string, from int) string {
	rest := code[from:]
	if next := tsRegisterRe.FindStringIndex(rest); next != nil {
		rest = rest[:next[0]]
	}
	if len(rest) > 2000 {
		rest = rest[:2000]
	}
	return rest
}

func zodSchema(window string) (*jsonschema.Schema, int) {
	properties := map[string]*jsonschema.Schema{}
	var required []string
	for _, m := range zodFieldRe.FindAllStringSubmatch(window, -1) {
		name, kind, optional := m[1], m[2], m[4] != ""
		properties[name] = &jsonschema.Schema{Type: zodKind(kind)}
		if !optional {
			required = append(required, name)
		}
	}
	return domain.ObjectSchema(properties, required), len(properties)
}

func zodKind(kind string) string {
	switch kind {
	case "string", "enum", "literal":
		return "string"
	case "number":
		return "number"
	case "boolean":
		return "boolean"
	case "array":
		return "array"
	default:
		return "object"
	}
}

func pyDecoratedTools(file domain.FileContent) []domain.ExtractedTool {
	names := map[string]struct{}{}
	for _, m := range pyDecoratorRe.FindAllStringSubmatch(file.Content, -1) {
		names[m[1]] = struct{}{}
	}
	if len(names) == 0 {
		return nil
	}

	// The Python parser already recovers signatures and docstrings; keep
	// only the decorated functions and re-tag them as introspected.
	parser, ok := lang.ForExtension("py")
	if !ok {
		return nil
	}
	var tools []domain.ExtractedTool
	for _, tool := range parser.ExtractFunctions(file.Content, file.Path) {
		if _, decorated := names[tool.Name]; !decorated {
			continue
		}
		retag(&tool, domain.SourceIntrospect)
		tools = append(tools, tool)
	}
	return tools
}

func goDeclaredTools(file domain.FileContent) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range goToolRe.FindAllStringSubmatchIndex(file.Content, -1) {
		name := file.Content[m[2]:m[3]]
		description := ""
		if m[4] >= 0 {
			description = file.Content[m[4]:m[5]]
		}
		tools = append(tools, introspectedTool(name, description, domain.ObjectSchema(nil, nil), 0,
			file.Path, lineOf(file.Content, m[0])))
	}
	return tools
}

func introspectedTool(name, description string, schema *jsonschema.Schema, paramCount int, file string, line int) domain.ExtractedTool {
	signals := domain.DocSignals{
		DescriptionLen: len(description),
		ParamCount:     paramCount,
		TypedParams:    paramCount,
	}
	factors := domain.FactorsFromSignals(signals, domain.SourceIntrospect)
	return domain.ExtractedTool{
		Name:              name,
		Description:       description,
		InputSchema:       schema,
		Source:            domain.ToolSource{Type: domain.SourceIntrospect, File: file, Line: line},
		Confidence:        factors.Score(),
		ConfidenceFactors: &factors,
	}
}

func lineOf(code string, pos int) int {
	return strings.Count(code[:pos], "\n") + 1
}
