package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type rubyParser struct{}

func init() {
	Register(rubyParser{}, "rb", "rake")
}

var rubyDefRe = regexp.MustCompile(`(?m)^[ \t]*def[ \t]+(?:self\.)?([a-z_][a-zA-Z0-9_]*[?!]?)(\(([^)]*)\))?`)

func (p rubyParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range rubyDefRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		if name == "initialize" || strings.HasPrefix(name, "_") {
			continue
		}

		rawParams := ""
		if m[6] >= 0 {
			rawParams = code[m[6]:m[7]]
		}
		doc := p.ParseDocumentation(code, m[0])
		params := parseRubyParams(rawParams, doc)
		tools = append(tools, BuildTool(strings.TrimRight(name, "?!"), params, doc, filename, lineAt(code, m[0])))
	}
	return tools
}

var (
	yardParamRe  = regexp.MustCompile(`^@param[ \t]+([A-Za-z_][\w]*)[ \t]*(?:\[([^\]]*)\])?[ \t]*(.*)$`)
	yardReturnRe = regexp.MustCompile(`^@return[ \t]*(?:\[([^\]]*)\])?[ \t]*(.*)$`)
	yardRaiseRe  = regexp.MustCompile(`^@raise[ \t]*(?:\[([^\]]*)\])?`)
)

// ParseDocumentation collects the # comment block above a def, reading
// YARD tags (@param, @return, @raise, @example).
func (rubyParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	lines := precedingCommentLines(code, pos, "#")
	if len(lines) == 0 {
		return nil
	}

	doc := &ParsedDoc{}
	var descLines []string
	inExample := false

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, "@param"):
			inExample = false
			if m := yardParamRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        m[1],
					Type:        strings.TrimSpace(m[2]),
					Description: strings.TrimSpace(m[3]),
					Required:    true,
				})
			}
		case strings.HasPrefix(trimmed, "@return"):
			inExample = false
			if m := yardReturnRe.FindStringSubmatch(trimmed); m != nil {
				doc.Returns = &DocReturn{
					Type:        strings.TrimSpace(m[1]),
					Description: strings.TrimSpace(m[2]),
				}
			}
		case strings.HasPrefix(trimmed, "@raise"):
			inExample = false
			if m := yardRaiseRe.FindStringSubmatch(trimmed); m != nil && m[1] != "" {
				doc.Throws = append(doc.Throws, m[1])
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

// parseRubyParams derives parameters from the signature; types come only
// from YARD tags since Ruby signatures carry none.
func parseRubyParams(raw string, doc *ParsedDoc) []Param {
	docTypes := map[string]string{}
	if doc != nil {
		for _, p := range doc.Params {
			docTypes[p.Name] = p.Type
		}
	}

	var params []Param
	for _, part := range SplitParams(raw) {
		if strings.HasPrefix(part, "*") || strings.HasPrefix(part, "&") {
			continue // splat and block arguments
		}

		name := part
		def := ""
		required := true

		if strings.HasSuffix(name, ":") {
			// Required keyword argument.
			name = strings.TrimSuffix(name, ":")
		} else if at := topLevelIndex(part, ':'); at >= 0 {
			// Keyword argument with default.
			name = strings.TrimSpace(part[:at])
			def = strings.TrimSpace(part[at+1:])
			required = false
		} else if at := topLevelIndex(part, '='); at >= 0 {
			name = strings.TrimSpace(part[:at])
			def = strings.TrimSpace(part[at+1:])
			required = false
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		typ := docTypes[name]
		var schema *jsonschema.Schema
		if typ != "" {
			schema = &jsonschema.Schema{Type: rubyTypeKind(typ)}
		}
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    typ != "",
			Required: required,
			Default:  def,
		})
	}
	return params
}

func rubyTypeKind(typ string) string {
	t := strings.TrimSpace(typ)
	if at := strings.IndexByte(t, '<'); at >= 0 {
		t = t[:at]
	}
	switch t {
	case "String", "Symbol", "Pathname":
		return "string"
	case "Integer", "Fixnum", "Bignum":
		return "integer"
	case "Float", "Numeric", "BigDecimal":
		return "number"
	case "Boolean", "TrueClass", "FalseClass":
		return "boolean"
	case "Array":
		return "array"
	case "Hash":
		return "object"
	case "NilClass", "nil":
		return "null"
	default:
		return "object"
	}
}
