package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type javaParser struct{}

func init() {
	Register(javaParser{}, "java")
}

// Method pattern: a visibility modifier, a return type, then a lowercase
// method name. Constructors start uppercase and never match.
var javaMethodRe = regexp.MustCompile(`(?m)^[ \t]+(?:public|protected)[ \t]+(?:static[ \t]+|final[ \t]+|synchronized[ \t]+)*(?:<[^>\n]+>[ \t]+)?[\w.<>\[\],? ]+?[ \t]+([a-z][A-Za-z0-9_]*)[ \t]*\(`)

func (p javaParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	seen := map[string]struct{}{}

	for _, m := range javaMethodRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		if _, dup := seen[name]; dup {
			continue // overloads collapse onto the first declaration
		}
		closeAt := matchParen(code, m[1]-1)
		if closeAt < 0 {
			continue
		}
		seen[name] = struct{}{}

		params := parseJavaParams(code[m[1] : closeAt-1])
		doc := p.ParseDocumentation(code, m[0])
		tools = append(tools, BuildTool(name, params, doc, filename, lineAt(code, m[0])))
	}
	return tools
}

var (
	javadocParamRe  = regexp.MustCompile(`@param[ \t]+([A-Za-z_][\w]*)[ \t]*(.*)`)
	javadocReturnRe = regexp.MustCompile(`@return[ \t]+(.*)`)
	javadocThrowsRe = regexp.MustCompile(`@throws[ \t]+([\w.]+)`)
)

// ParseDocumentation walks backward from pos looking for a Javadoc block.
func (javaParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	before := strings.TrimRight(code[:pos], " \t\n")
	if !strings.HasSuffix(before, "*/") {
		return nil
	}
	open := strings.LastIndex(before, "/**")
	if open < 0 {
		return nil
	}

	doc := &ParsedDoc{}
	var descLines []string
	for _, line := range strings.Split(before[open+3:len(before)-2], "\n") {
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		switch {
		case strings.HasPrefix(trimmed, "@param"):
			if m := javadocParamRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        m[1],
					Description: strings.TrimSpace(m[2]),
					Required:    true,
				})
			}
		case strings.HasPrefix(trimmed, "@return"):
			if m := javadocReturnRe.FindStringSubmatch(trimmed); m != nil {
				doc.Returns = &DocReturn{Description: strings.TrimSpace(m[1])}
			}
		case strings.HasPrefix(trimmed, "@throws"):
			if m := javadocThrowsRe.FindStringSubmatch(trimmed); m != nil {
				doc.Throws = append(doc.Throws, m[1])
			}
		case strings.HasPrefix(trimmed, "@"):
			// other tags ignored
		case trimmed != "" && len(doc.Params) == 0 && doc.Returns == nil:
			descLines = append(descLines, trimmed)
		}
	}

	doc.Description = strings.Join(descLines, " ")
	if emptyDoc(doc) {
		return nil
	}
	return doc
}

func parseJavaParams(raw string) []Param {
	var params []Param
	for _, part := range SplitParams(raw) {
		cleaned := strings.TrimSpace(part)
		cleaned = strings.TrimPrefix(cleaned, "final ")
		// Strip annotations like @NotNull.
		for strings.HasPrefix(cleaned, "@") {
			if at := strings.IndexAny(cleaned, " \t"); at >= 0 {
				cleaned = strings.TrimSpace(cleaned[at+1:])
			} else {
				cleaned = ""
				break
			}
		}
		if cleaned == "" {
			continue
		}

		at := strings.LastIndexAny(cleaned, " \t")
		if at < 0 {
			continue
		}
		typ := strings.TrimSpace(cleaned[:at])
		name := strings.TrimSpace(cleaned[at+1:])
		if name == "" {
			continue
		}

		variadic := strings.HasSuffix(typ, "...")
		schema := javaTypeSchema(strings.TrimSuffix(typ, "..."))
		if variadic {
			schema = &jsonschema.Schema{Type: "array", Items: schema}
		}
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    true,
			Required: !variadic,
		})
	}
	return params
}

func javaTypeSchema(typ string) *jsonschema.Schema {
	t := strings.TrimSpace(typ)
	if strings.HasSuffix(t, "[]") {
		return &jsonschema.Schema{
			Type:  "array",
			Items: javaTypeSchema(strings.TrimSuffix(t, "[]")),
		}
	}

	base := t
	var inner string
	if open := strings.IndexByte(t, '<'); open >= 0 && strings.HasSuffix(t, ">") {
		base = t[:open]
		inner = t[open+1 : len(t)-1]
	}

	switch base {
	case "String", "CharSequence", "char", "Character", "StringBuilder":
		return &jsonschema.Schema{Type: "string"}
	case "int", "Integer", "long", "Long", "short", "Short", "byte", "Byte", "BigInteger":
		return &jsonschema.Schema{Type: "integer"}
	case "double", "Double", "float", "Float", "BigDecimal", "Number":
		return &jsonschema.Schema{Type: "number"}
	case "boolean", "Boolean":
		return &jsonschema.Schema{Type: "boolean"}
	case "void", "Void":
		return &jsonschema.Schema{Type: "null"}
	case "List", "ArrayList", "Set", "HashSet", "Collection", "Iterable":
		schema := &jsonschema.Schema{Type: "array"}
		if inner != "" {
			schema.Items = javaTypeSchema(SplitParams(inner)[0])
		}
		return schema
	case "Map", "HashMap", "TreeMap", "Properties":
		return &jsonschema.Schema{Type: "object"}
	case "Optional":
		if inner != "" {
			return javaTypeSchema(inner)
		}
		return &jsonschema.Schema{Type: "object"}
	default:
		return &jsonschema.Schema{Type: "object"}
	}
}
