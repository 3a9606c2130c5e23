package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type rustParser struct{}

func init() {
	Register(rustParser{}, "rs")
}

var rustFnRe = regexp.MustCompile(`(?m)^[ \t]*pub[ \t]+(?:async[ \t]+)?fn[ \t]+([a-z_][a-z0-9_]*)[ \t]*(?:<[^>\n]*>)?\(`)

func (p rustParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range rustFnRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		// new() is the constructor convention; leading underscores mark
		// intentionally unused internals.
		if name == "new" || strings.HasPrefix(name, "_") {
			continue
		}
		closeAt := matchParen(code, m[1]-1)
		if closeAt < 0 {
			continue
		}
		params := parseRustParams(code[m[1] : closeAt-1])
		doc := p.ParseDocumentation(code, m[0])
		tools = append(tools, BuildTool(name, params, doc, filename, lineAt(code, m[0])))
	}
	return tools
}

// ParseDocumentation collects /// doc comments above the item, reading the
// rustdoc "# Arguments", "# Examples", "# Errors", and "# Panics" sections.
func (rustParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	lines := precedingCommentLines(code, pos, "///")
	if len(lines) == 0 {
		return nil
	}

	doc := &ParsedDoc{}
	var descLines []string
	section := ""
	argRe := regexp.MustCompile("^\\*[ \t]*`([^`]+)`[ \t]*-?[ \t]*(.*)$")

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			section = strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
			continue
		}
		switch section {
		case "":
			if trimmed != "" {
				descLines = append(descLines, trimmed)
			}
		case "Arguments", "Parameters":
			if m := argRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        m[1],
					Description: strings.TrimSpace(m[2]),
					Required:    true,
				})
			} else if trimmed != "" && len(doc.Params) > 0 {
				last := &doc.Params[len(doc.Params)-1]
				last.Description = strings.TrimSpace(last.Description + " " + trimmed)
			}
		case "Returns":
			if doc.Returns == nil {
				doc.Returns = &DocReturn{}
			}
			doc.Returns.Description = strings.TrimSpace(doc.Returns.Description + " " + trimmed)
		case "Examples", "Example":
			if trimmed != "" && trimmed != "```" {
				doc.Examples = append(doc.Examples, trimmed)
			}
		case "Errors", "Panics":
			if trimmed != "" {
				doc.Throws = append(doc.Throws, trimmed)
			}
		}
	}

	doc.Description = strings.Join(descLines, " ")
	if emptyDoc(doc) {
		return nil
	}
	return doc
}

func parseRustParams(raw string) []Param {
	var params []Param
	for _, part := range SplitParams(raw) {
		cleaned := strings.TrimSpace(part)
		if cleaned == "self" || cleaned == "&self" || cleaned == "&mut self" || cleaned == "mut self" {
			continue
		}

		name, typ, found := strings.Cut(cleaned, ":")
		if !found {
			continue
		}
		name = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(name), "mut "))
		typ = strings.TrimSpace(typ)
		if name == "" || strings.HasPrefix(name, "_") {
			continue
		}

		schema, required := rustTypeSchema(typ)
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    true,
			Required: required,
		})
	}
	return params
}

// rustTypeSchema maps a Rust type to a JSON-Schema fragment. Option<T>
// resolves to T and marks the parameter optional.
func rustTypeSchema(typ string) (*jsonschema.Schema, bool) {
	t := strings.TrimSpace(typ)
	t = strings.TrimPrefix(t, "&mut ")
	t = strings.TrimPrefix(t, "&")
	t = strings.TrimPrefix(t, "'static ")

	if inner, ok := rustGenericInner(t, "Option"); ok {
		schema, _ := rustTypeSchema(inner)
		return schema, false
	}
	if inner, ok := rustGenericInner(t, "Vec"); ok {
		schema := &jsonschema.Schema{Type: "array"}
		if item, _ := rustTypeSchema(inner); item != nil {
			schema.Items = item
		}
		return schema, true
	}
	if strings.HasPrefix(t, "[") || strings.HasPrefix(t, "&[") {
		return &jsonschema.Schema{Type: "array"}, true
	}
	if strings.HasPrefix(t, "HashMap") || strings.HasPrefix(t, "BTreeMap") {
		return &jsonschema.Schema{Type: "object"}, true
	}

	switch t {
	case "String", "str", "char", "PathBuf", "Path", "OsString":
		return &jsonschema.Schema{Type: "string"}, true
	case "i8", "i16", "i32", "i64", "i128", "isize",
		"u8", "u16", "u32", "u64", "u128", "usize":
		return &jsonschema.Schema{Type: "integer"}, true
	case "f32", "f64":
		return &jsonschema.Schema{Type: "number"}, true
	case "bool":
		return &jsonschema.Schema{Type: "boolean"}, true
	case "()":
		return &jsonschema.Schema{Type: "null"}, true
	default:
		return &jsonschema.Schema{Type: "object"}, true
	}
}

func rustGenericInner(t, name string) (string, bool) {
	prefix := name + "<"
	if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, ">") {
		return t[len(prefix) : len(t)-1], true
	}
	return "", false
}
