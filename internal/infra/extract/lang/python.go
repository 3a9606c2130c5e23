package lang

import (
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

type pythonParser struct{}

func init() {
	Register(pythonParser{}, "py", "pyi")
}

var pyDefRe = regexp.MustCompile(`(?m)^[ \t]*(?:async[ \t]+)?def[ \t]+([A-Za-z_][A-Za-z0-9_]*)[ \t]*\(`)

func (p pythonParser) ExtractFunctions(code, filename string) []domain.ExtractedTool {
	var tools []domain.ExtractedTool
	for _, m := range pyDefRe.FindAllStringSubmatchIndex(code, -1) {
		name := code[m[2]:m[3]]
		// Private helpers and dunder methods are not callable surface.
		if strings.HasPrefix(name, "_") {
			continue
		}
		closeAt := matchParen(code, m[1]-1)
		if closeAt < 0 {
			continue
		}
		params := parsePythonParams(code[m[1] : closeAt-1])
		doc := p.ParseDocumentation(code, m[0])
		tools = append(tools, BuildTool(name, params, doc, filename, lineAt(code, m[0])))
	}
	return tools
}

// ParseDocumentation walks forward from a def at pos to its docstring and
// parses Google, NumPy, or Sphinx style sections.
func (pythonParser) ParseDocumentation(code string, pos int) *ParsedDoc {
	openAt := strings.IndexByte(code[pos:], '(')
	if openAt < 0 {
		return nil
	}
	closeAt := matchParen(code, pos+openAt)
	if closeAt < 0 {
		return nil
	}
	colonAt := strings.IndexByte(code[closeAt:], ':')
	if colonAt < 0 {
		return nil
	}
	body := code[closeAt+colonAt+1:]

	delim := ""
	for _, candidate := range []string{`"""`, `'''`} {
		idx := strings.Index(body, candidate)
		if idx >= 0 && strings.TrimSpace(body[:idx]) == "" {
			delim = candidate
			body = body[idx+len(candidate):]
			break
		}
	}
	if delim == "" {
		return nil
	}
	end := strings.Index(body, delim)
	if end < 0 {
		return nil
	}
	return parsePythonDocstring(body[:end])
}

func parsePythonDocstring(raw string) *ParsedDoc {
	lines := dedent(strings.Split(raw, "\n"))
	switch {
	case containsSphinxFields(lines):
		return parseSphinxDoc(lines)
	case numpySectionAt(lines, "Parameters") >= 0 || numpySectionAt(lines, "Returns") >= 0:
		return parseNumpyDoc(lines)
	default:
		return parseGoogleDoc(lines)
	}
}

func containsSphinxFields(lines []string) bool {
	for _, line := range lines {
		t := strings.TrimSpace(line)
		if strings.HasPrefix(t, ":param") || strings.HasPrefix(t, ":returns:") || strings.HasPrefix(t, ":rtype:") {
			return true
		}
	}
	return false
}

// Google style: "Args:" / "Returns:" / "Raises:" / "Examples:" sections with
// indented "name (type): description" entries.
func parseGoogleDoc(lines []string) *ParsedDoc {
	doc := &ParsedDoc{}
	var descLines []string
	section := ""
	var entryRe = regexp.MustCompile(`^([*\w]+)(?:[ \t]*\(([^)]*)\))?:[ \t]*(.*)$`)

	flushDesc := func() {
		if doc.Description == "" {
			doc.Description = strings.TrimSpace(strings.Join(descLines, " "))
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch trimmed {
		case "Args:", "Arguments:", "Parameters:":
			flushDesc()
			section = "params"
			continue
		case "Returns:", "Return:":
			flushDesc()
			section = "returns"
			continue
		case "Raises:":
			flushDesc()
			section = "raises"
			continue
		case "Example:", "Examples:":
			flushDesc()
			section = "examples"
			continue
		}

		switch section {
		case "":
			if trimmed != "" {
				descLines = append(descLines, trimmed)
			}
		case "params":
			if m := entryRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        strings.TrimLeft(m[1], "*"),
					Type:        strings.TrimSuffix(strings.TrimSpace(m[2]), ", optional"),
					Description: strings.TrimSpace(m[3]),
					Required:    !strings.Contains(m[2], "optional"),
				})
			} else if trimmed != "" && len(doc.Params) > 0 {
				last := &doc.Params[len(doc.Params)-1]
				last.Description = strings.TrimSpace(last.Description + " " + trimmed)
			}
		case "returns":
			if doc.Returns == nil {
				doc.Returns = &DocReturn{}
			}
			if name, rest, found := strings.Cut(trimmed, ":"); found && doc.Returns.Type == "" && !strings.Contains(name, " ") {
				doc.Returns.Type = strings.TrimSpace(name)
				doc.Returns.Description = strings.TrimSpace(rest)
			} else if trimmed != "" {
				doc.Returns.Description = strings.TrimSpace(doc.Returns.Description + " " + trimmed)
			}
		case "raises":
			if name, _, found := strings.Cut(trimmed, ":"); found {
				doc.Throws = append(doc.Throws, strings.TrimSpace(name))
			}
		case "examples":
			if trimmed != "" {
				doc.Examples = append(doc.Examples, trimmed)
			}
		}
	}
	flushDesc()
	if emptyDoc(doc) {
		return nil
	}
	return doc
}

func numpySectionAt(lines []string, header string) int {
	for i := 0; i+1 < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == header && isDashRule(lines[i+1]) {
			return i
		}
	}
	return -1
}

func isDashRule(line string) bool {
	t := strings.TrimSpace(line)
	return len(t) >= 3 && strings.Count(t, "-") == len(t)
}

// NumPy style: underlined section headers, "name : type" entries with
// indented descriptions.
func parseNumpyDoc(lines []string) *ParsedDoc {
	doc := &ParsedDoc{}

	paramsAt := numpySectionAt(lines, "Parameters")
	returnsAt := numpySectionAt(lines, "Returns")
	raisesAt := numpySectionAt(lines, "Raises")
	examplesAt := -1
	for i, line := range lines {
		if strings.TrimSpace(line) == "Examples" && i+1 < len(lines) && isDashRule(lines[i+1]) {
			examplesAt = i
			break
		}
	}

	descEnd := len(lines)
	for _, at := range []int{paramsAt, returnsAt, raisesAt, examplesAt} {
		if at >= 0 && at < descEnd {
			descEnd = at
		}
	}
	var descLines []string
	for _, line := range lines[:descEnd] {
		if t := strings.TrimSpace(line); t != "" {
			descLines = append(descLines, t)
		}
	}
	doc.Description = strings.Join(descLines, " ")

	sectionEnd := func(start int) int {
		for i := start + 2; i < len(lines); i++ {
			if i+1 < len(lines) && isDashRule(lines[i+1]) && strings.TrimSpace(lines[i]) != "" {
				return i
			}
		}
		return len(lines)
	}

	if paramsAt >= 0 {
		for i := paramsAt + 2; i < sectionEnd(paramsAt); i++ {
			trimmed := strings.TrimSpace(lines[i])
			if trimmed == "" {
				continue
			}
			if !strings.HasPrefix(lines[i], " ") && strings.Contains(trimmed, ":") {
				name, typ, _ := strings.Cut(trimmed, ":")
				doc.Params = append(doc.Params, DocParam{
					Name:     strings.TrimSpace(name),
					Type:     strings.TrimSuffix(strings.TrimSpace(typ), ", optional"),
					Required: !strings.Contains(typ, "optional"),
				})
			} else if len(doc.Params) > 0 {
				last := &doc.Params[len(doc.Params)-1]
				last.Description = strings.TrimSpace(last.Description + " " + trimmed)
			}
		}
	}

	if returnsAt >= 0 {
		doc.Returns = &DocReturn{}
		for i := returnsAt + 2; i < sectionEnd(returnsAt); i++ {
			trimmed := strings.TrimSpace(lines[i])
			if trimmed == "" {
				continue
			}
			if doc.Returns.Type == "" && !strings.HasPrefix(lines[i], " ") {
				doc.Returns.Type = trimmed
			} else {
				doc.Returns.Description = strings.TrimSpace(doc.Returns.Description + " " + trimmed)
			}
		}
	}

	if raisesAt >= 0 {
		for i := raisesAt + 2; i < sectionEnd(raisesAt); i++ {
			if t := strings.TrimSpace(lines[i]); t != "" && !strings.HasPrefix(lines[i], " ") {
				doc.Throws = append(doc.Throws, t)
			}
		}
	}

	if examplesAt >= 0 {
		for i := examplesAt + 2; i < sectionEnd(examplesAt); i++ {
			if t := strings.TrimSpace(lines[i]); t != "" {
				doc.Examples = append(doc.Examples, t)
			}
		}
	}

	if emptyDoc(doc) {
		return nil
	}
	return doc
}

var (
	sphinxParamRe  = regexp.MustCompile(`^:param[ \t]+(?:([^ \t:]+)[ \t]+)?([^:]+):[ \t]*(.*)$`)
	sphinxTypeRe   = regexp.MustCompile(`^:type[ \t]+([^:]+):[ \t]*(.*)$`)
	sphinxRaisesRe = regexp.MustCompile(`^:raises?[ \t]+([^:]+):`)
)

// Sphinx style: ":param name:", ":type name:", ":returns:", ":rtype:".
func parseSphinxDoc(lines []string) *ParsedDoc {
	doc := &ParsedDoc{}
	var descLines []string
	types := map[string]string{}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(trimmed, ":param"):
			if m := sphinxParamRe.FindStringSubmatch(trimmed); m != nil {
				doc.Params = append(doc.Params, DocParam{
					Name:        strings.TrimSpace(m[2]),
					Type:        strings.TrimSpace(m[1]),
					Description: strings.TrimSpace(m[3]),
					Required:    true,
				})
			}
		case strings.HasPrefix(trimmed, ":type"):
			if m := sphinxTypeRe.FindStringSubmatch(trimmed); m != nil {
				types[strings.TrimSpace(m[1])] = strings.TrimSpace(m[2])
			}
		case strings.HasPrefix(trimmed, ":returns:") || strings.HasPrefix(trimmed, ":return:"):
			if doc.Returns == nil {
				doc.Returns = &DocReturn{}
			}
			_, rest, _ := strings.Cut(trimmed, ": ")
			doc.Returns.Description = strings.TrimSpace(rest)
		case strings.HasPrefix(trimmed, ":rtype:"):
			if doc.Returns == nil {
				doc.Returns = &DocReturn{}
			}
			doc.Returns.Type = strings.TrimSpace(strings.TrimPrefix(trimmed, ":rtype:"))
		case strings.HasPrefix(trimmed, ":raises") || strings.HasPrefix(trimmed, ":raise"):
			if m := sphinxRaisesRe.FindStringSubmatch(trimmed); m != nil {
				doc.Throws = append(doc.Throws, strings.TrimSpace(m[1]))
			}
		case trimmed != "" && len(doc.Params) == 0 && doc.Returns == nil:
			descLines = append(descLines, trimmed)
		}
	}

	for i := range doc.Params {
		if doc.Params[i].Type == "" {
			doc.Params[i].Type = types[doc.Params[i].Name]
		}
	}
	doc.Description = strings.Join(descLines, " ")
	if emptyDoc(doc) {
		return nil
	}
	return doc
}

func emptyDoc(doc *ParsedDoc) bool {
	return doc.Description == "" && len(doc.Params) == 0 && doc.Returns == nil &&
		len(doc.Examples) == 0 && len(doc.Throws) == 0
}

// dedent strips the common leading indentation. The first line is excluded
// from the measurement since it usually sits on the opening quote line.
func dedent(lines []string) []string {
	indent := -1
	for i, line := range lines {
		t := strings.TrimLeft(line, " \t")
		if i == 0 || t == "" {
			continue
		}
		lead := len(line) - len(t)
		if indent < 0 || lead < indent {
			indent = lead
		}
	}
	if indent <= 0 {
		return lines
	}
	out := make([]string, len(lines))
	out[0] = strings.TrimLeft(lines[0], " \t")
	for i := 1; i < len(lines); i++ {
		if len(lines[i]) >= indent {
			out[i] = lines[i][indent:]
		} else {
			out[i] = strings.TrimLeft(lines[i], " \t")
		}
	}
	return out
}

func parsePythonParams(raw string) []Param {
	var params []Param
	for _, part := range SplitParams(raw) {
		if part == "self" || part == "cls" || part == "/" || part == "*" {
			continue
		}
		if strings.HasPrefix(part, "*") {
			continue // *args / **kwargs have no fixed schema
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
		if name == "" {
			continue
		}

		schema, typed := pythonTypeSchema(typ)
		params = append(params, Param{
			Name:     name,
			Schema:   schema,
			Typed:    typed,
			Required: def == "",
			Default:  def,
		})
	}
	return params
}

// topLevelIndex finds the first occurrence of sep outside brackets and quotes.
func topLevelIndex(s string, sep byte) int {
	depth := 0
	var quote byte
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case sep:
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// pythonTypeSchema maps a type annotation to a JSON-Schema fragment.
// Optionals and unions resolve to the first non-None alternative; Literal
// types take the kind of their first value and carry the enum.
func pythonTypeSchema(annotation string) (*jsonschema.Schema, bool) {
	t := strings.Trim(strings.TrimSpace(annotation), `"'`)
	if t == "" {
		return nil, false
	}

	if inner, ok := genericInner(t, "Optional"); ok {
		schema, _ := pythonTypeSchema(inner)
		return schema, true
	}
	if inner, ok := genericInner(t, "Union"); ok {
		for _, alt := range SplitParams(inner) {
			if alt == "None" {
				continue
			}
			schema, _ := pythonTypeSchema(alt)
			return schema, true
		}
		return &jsonschema.Schema{Type: "null"}, true
	}
	if strings.Contains(t, "|") {
		for _, alt := range strings.Split(t, "|") {
			alt = strings.TrimSpace(alt)
			if alt == "None" || alt == "" {
				continue
			}
			schema, _ := pythonTypeSchema(alt)
			return schema, true
		}
		return &jsonschema.Schema{Type: "null"}, true
	}
	if inner, ok := genericInner(t, "Literal"); ok {
		return literalSchema(SplitParams(inner)), true
	}

	base := t
	var inner string
	if open := strings.IndexByte(t, '['); open >= 0 && strings.HasSuffix(t, "]") {
		base = t[:open]
		inner = t[open+1 : len(t)-1]
	}

	switch strings.ToLower(base) {
	case "str", "bytes", "pathlib.path", "path":
		return &jsonschema.Schema{Type: "string"}, true
	case "int":
		return &jsonschema.Schema{Type: "integer"}, true
	case "float", "complex", "decimal":
		return &jsonschema.Schema{Type: "number"}, true
	case "bool":
		return &jsonschema.Schema{Type: "boolean"}, true
	case "none", "nonetype":
		return &jsonschema.Schema{Type: "null"}, true
	case "list", "sequence", "tuple", "set", "frozenset", "iterable":
		schema := &jsonschema.Schema{Type: "array"}
		if inner != "" {
			if item, _ := pythonTypeSchema(SplitParams(inner)[0]); item != nil {
				schema.Items = item
			}
		}
		return schema, true
	case "dict", "mapping", "mutablemapping":
		return &jsonschema.Schema{Type: "object"}, true
	case "any":
		return &jsonschema.Schema{Type: "object"}, true
	default:
		// User-defined classes become opaque objects.
		return &jsonschema.Schema{Type: "object"}, true
	}
}

func genericInner(t, name string) (string, bool) {
	for _, prefix := range []string{name + "[", "typing." + name + "["} {
		if strings.HasPrefix(t, prefix) && strings.HasSuffix(t, "]") {
			return t[len(prefix) : len(t)-1], true
		}
	}
	return "", false
}

// literalSchema derives the schema kind from the first literal value and
// records all values as an enum constraint.
func literalSchema(values []string) *jsonschema.Schema {
	schema := &jsonschema.Schema{Type: "string"}
	if len(values) == 0 {
		return schema
	}
	first := strings.TrimSpace(values[0])
	switch {
	case strings.HasPrefix(first, `"`) || strings.HasPrefix(first, `'`):
		schema.Type = "string"
	case first == "True" || first == "False" || first == "true" || first == "false":
		schema.Type = "boolean"
	case strings.ContainsAny(first, ".eE") && first != ".":
		schema.Type = "number"
	default:
		schema.Type = "integer"
	}
	for _, v := range values {
		schema.Enum = append(schema.Enum, strings.Trim(strings.TrimSpace(v), `"'`))
	}
	return schema
}
