package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type goParser struct{}

func init() {
	Register(goParser{}, "go")
}

var goFuncRe = regexp.MustCompile(`(?m)^func[ \t]+(?:\([^)]*\)[ \t]+)?([A-Z][A-Za-z0-9_]*)\(`)

func (p goParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range goFuncRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		closeAt := matchParen(code, m[1]-1)
		if closeAt < 0 {
			continue
		}
		params := parseGoParams(code[m[1] : closeAt-1])
		doc := p.ParseDocumentation(code, m[0])
		tools = append(tools, BuildTool(name, params, doc, filename, lineAt(code, m[0])))
	}
	return tools
}

// ParseDocumentation collects the contiguous // comment block directly
// above the declaration. Go has no structured parameter tags; the block
// becomes the description, with Deprecated and example references noted.
func (goParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	lines := precedingCommentLines(code, pos, "//")
	if len(lines) == 0 {
		return nil
	}
	doc := &ParsedDoc{Description: strings.TrimSpace(strings.Join(lines, " "))}
	for _, line := range lines {
		if strings.HasPrefix(line, "Example") {
			doc.Examples = append(doc.Examples, line)
		}
	}
	if emptyDoc(doc) {
		return nil
	}
	return doc
}

// parseGoParams handles grouped parameters: in "a, b string, c int" the
// names a and b share the string type declared after b.
func parseGoParams(raw string) []Param {
	parts := SplitParams(raw)
	params := make([]Param, 0, len(parts))

	carried := ""
	for i := len(parts) - 1; i >= 0; i-- {
		part := parts[i]
		name := part
		typ := ""
		if at := strings.IndexAny(part, " \t"); at >= 0 {
			name = strings.TrimSpace(part[:at])
			typ = strings.TrimSpace(part[at+1:])
			carried = typ
		} else {
			typ = carried
		}
		if name == "" || name == "_" {
			continue
		}
		if typ == "context.Context" {
			continue // transport concern, not a tool parameter
		}

		schema, required := goTypeSchema(typ)
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    typ != "",
			Required: required,
		})
	}

	// Restore declaration order after the right-to-left type walk.
	for i, j := 0, len(params)-1; i < j; i, j = i+1, j-1 {
		params[i], params[j] = params[j], params[i]
	}
	return params
}

// goTypeSchema maps a Go type to a JSON-Schema fragment. Pointer types are
// treated as optional.
func goTypeSchema(typ string) (*jsonschema.Schema, bool) {
	t := strings.TrimSpace(typ)
	required := true
	for strings.HasPrefix(t, "*") {
		t = t[1:]
		required = false
	}
	if t == "" {
		return &jsonschema.Schema{Type: "string"}, required
	}
	if strings.HasPrefix(t, "...") {
		schema := &jsonschema.Schema{Type: "array"}
		if item, _ := goTypeSchema(t[3:]); item != nil {
			schema.Items = item
		}
		return schema, false
	}
	if strings.HasPrefix(t, "[]") {
		schema := &jsonschema.Schema{Type: "array"}
		if item, _ := goTypeSchema(t[2:]); item != nil {
			schema.Items = item
		}
		return schema, required
	}
	if strings.HasPrefix(t, "map[") {
		return &jsonschema.Schema{Type: "object"}, required
	}

	switch t {
	case "string", "[]byte", "rune", "byte", "time.Duration", "time.Time":
		return &jsonschema.Schema{Type: "string"}, required
	case "int", "int8", "int16", "int32", "int64",
		"uint", "uint8", "uint16", "uint32", "uint64", "uintptr":
		return &jsonschema.Schema{Type: "integer"}, required
	case "float32", "float64":
		return &jsonschema.Schema{Type: "number"}, required
	case "bool":
		return &jsonschema.Schema{Type: "boolean"}, required
	case "interface{}", "any":
		return &jsonschema.Schema{Type: "object"}, required
	case "error":
		return &jsonschema.Schema{Type: "string"}, required
	default:
		return &jsonschema.Schema{Type: "object"}, required
	}
}
