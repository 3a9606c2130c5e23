package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type typescriptParser struct{}

func init() {
	Register(typescriptParser{}, "ts", "tsx", "js", "jsx", "mjs", "cjs")
}

var (
	tsFunctionRe = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?(?:default[ \t]+)?(?:async[ \t]+)?function[ \t]+([A-Za-z_$][\w$]*)[ \t]*(?:<[^>\n]*>)?\(`)
	tsArrowRe    = regexp.MustCompile(`(?m)^[ \t]*(?:export[ \t]+)?const[ \t]+([A-Za-z_$][\w$]*)(?:[ \t]*:[ \t]*[^=\n]+)?[ \t]*=[ \t]*(?:async[ \t]*)?\(`)
	tsMethodRe   = regexp.MustCompile(`(?m)^[ \t]+(?:public[ \t]+|static[ \t]+|async[ \t]+)*([A-Za-z_$][\w$]*)[ \t]*\(`)

	// Control-flow keywords that pattern-match like method definitions.
	tsKeywords = map[string]struct{}{
		"if": {}, "for": {}, "while": {}, "switch": {}, "catch": {},
		"return": {}, "constructor": {}, "function": {}, "else": {},
		"do": {}, "new": {}, "typeof": {}, "await": {}, "super": {},
	}
)

func (p typescriptParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	seen := map[string]struct{}{}

	collect := func(matches [][]int, requireBody bool) {
		for _, m := range matches {
			name := code[m[2]:m[3]]
			if _, keyword := tsKeywords[name]; keyword {
				continue
			}
			if strings.HasPrefix(name, "_") || strings.HasPrefix(name, "#") {
				continue
			}
			closeAt := matchParen(code, m[1]-1)
			if closeAt < 0 {
				continue
			}
			if requireBody && !tsHasBody(code, closeAt) {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			params := parseTSParams(code[m[1] : closeAt-1])
			doc := p.ParseDocumentation(code, m[0])
			tools = append(tools, BuildTool(name, params, doc, filename, lineAt(code, m[0])))
		}
	}

	collect(tsFunctionRe.FindAllStringSubmatchIndex(code, -1), false)
	collect(tsArrowRe.FindAllStringSubmatchIndex(code, -1), false)
	collect(tsMethodRe.FindAllStringSubmatchIndex(code, -1), true)

	return tools
}

// tsHasBody checks that a `{` (optionally after a return type) follows the
// closing paren, filtering out plain call expressions.
func tsHasBody(code string, closeAt int) bool {
	rest := code[closeAt:]
	limit := strings.IndexByte(rest, '\n')
	if limit < 0 {
		limit = len(rest)
	}
	head := rest[:limit]
	return strings.Contains(head, "{") && !strings.Contains(head, ";")
}

// ParseDocumentation walks backward from pos looking for a JSDoc block.
func (typescriptParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	before := strings.TrimRight(code[:pos], " \t\n")
	if !strings.HasSuffix(before, "*/") {
		return nil
	}
	open := strings.LastIndex(before, "/**")
	if open < 0 {
		return nil
	}
	return parseJSDoc(before[open+3 : len(before)-2])
}

var (
	jsdocParamRe   = regexp.MustCompile(`@param[ \t]+(?:\{([^}]*)\}[ \t]*)?(\[)?([A-Za-z_$][\w$.]*)\]?[ \t]*-?[ \t]*(.*)`)
	jsdocReturnRe  = regexp.MustCompile(`@returns?[ \t]+(?:\{([^}]*)\}[ \t]*)?(.*)`)
	jsdocThrowsRe  = regexp.MustCompile(`@throws?[ \t]+(?:\{([^}]*)\})?[ \t]*(.*)`)
)

func parseJSDoc(raw string) *ParsedDoc {
	doc := &ParsedDoc{}
	var descLines []string
	inExample := false

	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "*"))
		switch {
		case strings.HasPrefix(trimmed, "@param"):
			inExample = false
			if m := jsdocParamRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        m[3],
					Type:        strings.TrimSpace(m[1]),
					Description: strings.TrimSpace(m[4]),
					Required:    m[2] == "", // [name] marks an optional param
				})
			}
		case strings.HasPrefix(trimmed, "@return"):
			inExample = false
			if m := jsdocReturnRe.FindStringSubmatch(trimmed); m != nil {
				doc.Returns = &DocReturn{
					Type:        strings.TrimSpace(m[1]),
					Description: strings.TrimSpace(m[2]),
				}
			}
		case strings.HasPrefix(trimmed, "@throw"):
			inExample = false
			if m := jsdocThrowsRe.FindStringSubmatch(trimmed); m != nil {
				label := strings.TrimSpace(m[1])
				if label == "" {
					label = strings.TrimSpace(m[2])
				}
				if label != "" {
					doc.Throws = append(doc.Throws, label)
				}
			}
		case strings.HasPrefix(trimmed, "@example"):
			inExample = true
			if rest := strings.TrimSpace(strings.TrimPrefix(trimmed, "@example")); rest != "" {
				doc.Examples = append(doc.Examples, rest)
			}
		case strings.HasPrefix(trimmed, "@"):
			inExample = false
		case inExample:
			if trimmed != "" {
				doc.Examples = append(doc.Examples, trimmed)
			}
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

func parseTSParams(raw string) []Param {
	var params []Param
	for _, part := range SplitParams(raw) {
		if strings.HasPrefix(part, "...") {
			continue // rest parameter
		}

		name := part
		typ := ""
		def := ""

		if at := topLevelIndex(part, '='); at >= 0 {
			def = strings.TrimSpace(part[at+1:])
			name = strings.TrimSpace(part[:at])
		}
		if at := topLevelIndex(name, ':'); at >= 0 {
			typ = strings.TrimSpace(name[at+1:])
			name = strings.TrimSpace(name[:at])
		}

		optional := strings.HasSuffix(name, "?")
		name = strings.TrimSuffix(name, "?")

		// Destructured parameter bags become a single options object.
		if strings.HasPrefix(name, "{") {
			params = append(params, Param{
				Name:     "options",
				Schema:   &jsonschema.Schema{Type: "object"},
				Typed:    typ != "",
				Required: def == "" && !optional,
			})
			continue
		}
		if name == "" {
			continue
		}

		schema, typed := tsTypeSchema(typ)
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    typed,
			Required: def == "" && !optional,
			Default:  def,
		})
	}
	return params
}

// tsTypeSchema maps a TypeScript annotation to a JSON-Schema fragment.
// Unions resolve to the first non-nullish alternative; literal unions keep
// their values as an enum typed by the first literal's kind.
func tsTypeSchema(annotation string) (*jsonschema.Schema, bool) {
	t := strings.TrimSpace(annotation)
	if t == "" {
		return nil, false
	}

	if strings.Contains(t, "|") {
		alts := splitTopLevelUnion(t)
		var kept []string
		for _, alt := range alts {
			if alt == "null" || alt == "undefined" || alt == "void" {
				continue
			}
			kept = append(kept, alt)
		}
		if len(kept) == 0 {
			return &jsonschema.Schema{Type: "null"}, true
		}
		if isTSLiteral(kept[0]) {
			return literalSchema(kept), true
		}
		schema, _ := tsTypeSchema(kept[0])
		return schema, true
	}
	if isTSLiteral(t) {
		return literalSchema([]string{t}), true
	}

	if strings.HasSuffix(t, "[]") {
		schema := &jsonschema.Schema{Type: "array"}
		if item, _ := tsTypeSchema(strings.TrimSuffix(t, "[]")); item != nil {
			schema.Items = item
		}
		return schema, true
	}
	if inner, ok := tsGenericInner(t, "Array"); ok {
		schema := &jsonschema.Schema{Type: "array"}
		if item, _ := tsTypeSchema(inner); item != nil {
			schema.Items = item
		}
		return schema, true
	}
	if inner, ok := tsGenericInner(t, "Promise"); ok {
		return tsTypeSchema(inner)
	}

	switch strings.ToLower(t) {
	case "string":
		return &jsonschema.Schema{Type: "string"}, true
	case "number":
		return &jsonschema.Schema{Type: "number"}, true
	case "bigint":
		return &jsonschema.Schema{Type: "integer"}, true
	case "boolean":
		return &jsonschema.Schema{Type: "boolean"}, true
	case "null", "undefined", "void":
		return &jsonschema.Schema{Type: "null"}, true
	default:
		// Record<...>, interfaces, and anonymous object types.
		return &jsonschema.Schema{Type: "object"}, true
	}
}

func splitTopLevelUnion(t string) []string {
	var alts []string
	depth := 0
	start := 0
	for i := 0; i < len(t); i++ {
		switch t[i] {
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			depth--
		case '|':
			if depth == 0 {
				alts = append(alts, strings.TrimSpace(t[start:i]))
				start = i + 1
			}
		}
	}
	alts = append(alts, strings.TrimSpace(t[start:]))
	return alts
}

func isTSLiteral(t string) bool {
	if t == "" {
		return false
	}
	if t[0] == '\'' || t[0] == '"' || t[0] == '`' {
		return true
	}
	if t == "true" || t == "false" {
		return true
	}
	for _, ch := range t {
		if (ch < '0' || ch > '9') && ch != '.' && ch != '-' {
			return false
		}
	}
	return true
}

func tsGenericInner(t, name string) (string, bool) {
	prefix := name + "<"
	if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, ">") {
		return t[len(prefix) : len(t)-1], true
	}
	return "", false
}
