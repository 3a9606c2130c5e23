// Package lang provides per-language heuristic source parsers behind a
// shared registry. Parsers recover structured documentation from native
// doc-comment conventions and extract function definitions as tool
// descriptors. Everything here is pattern-based; no AST is built.
package lang

import (
	"sort"
	"strings"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"

	"toolforge/internal/domain"
)

// DocParam is one documented parameter from a doc block.
type DocParam struct {
	Name        string
	Type        string
	Description string
	Required    bool
	Default     string
}

// DocReturn documents a return value.
type DocReturn struct {
	Type        string
	Description string
}

// ParsedDoc is a structured documentation block recovered from source.
type ParsedDoc struct {
	Description string
	Params      []DocParam
	Returns     *DocReturn
	Examples    []string
	Throws      []string
}

// Parser is the per-language extraction capability. Implementations are
// registered by file extension; adding a language means registering a new
// implementation, nothing upstream changes.
type Parser interface {
	// ParseDocumentation recovers the doc block attached to the
	// definition at the byte position, or nil when none exists.
	ParseDocumentation(code string, pos int) *ParsedDoc

	// ExtractFunctions finds function definitions and derives tool
	// descriptors with JSON-Schema parameter contracts.
	ExtractFunctions(code, filename string) []domain.ExtractedTool
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Parser{}
)

// Register binds a parser to file extensions (with or without leading dot).
func Register(parser Parser, extensions ...string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	for _, ext := range extensions {
		registry[normalizeExt(ext)] = parser
	}
}

// ForExtension looks up the parser for a file extension.
func ForExtension(ext string) (Parser, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	parser, ok := registry[normalizeExt(ext)]
	return parser, ok
}

// Extensions lists all registered extensions, sorted.
func Extensions() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	exts := make([]string, 0, len(registry))
	for ext := range registry {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Param is a signature parameter resolved to a JSON-Schema fragment.
type Param struct {
	Name     string
	Schema   *jsonschema.Schema
	Typed    bool
	Required bool
	Default  string
}

// BuildTool assembles an ExtractedTool from a parsed signature and its doc
// block, computing confidence from the documentation signals.
func BuildTool(name string, params []Param, doc *ParsedDoc, file string, line int) domain.ExtractedTool {
	docByName := map[string]DocParam{}
	if doc != nil {
		for _, p := range doc.Params {
			docByName[strings.TrimLeft(p.Name, "*&")] = p
		}
	}

	properties := map[string]*jsonschema.Schema{}
	var required []string
	documented := 0
	typed := 0

	for _, param := range params {
		schema := param.Schema
		isTyped := param.Typed

		if dp, ok := docByName[param.Name]; ok {
			if dp.Description != "" {
				documented++
			}
			if !isTyped && dp.Type != "" {
				isTyped = true
			}
			if schema == nil || schema.Type == "" {
				if dp.Type != "" {
					schema = &jsonschema.Schema{Type: jsonSchemaKind(dp.Type)}
				}
			}
			if schema != nil && schema.Description == "" {
				schema.Description = dp.Description
			}
		}
		if schema == nil {
			schema = &jsonschema.Schema{Type: "string"}
		}
		if isTyped {
			typed++
		}

		properties[param.Name] = schema
		if param.Required {
			required = append(required, param.Name)
		}
	}

	description := ""
	signals := domain.DocSignals{ParamCount: len(params), TypedParams: typed, DocumentedParams: documented}
	if doc != nil {
		description = doc.Description
		signals.DescriptionLen = len(doc.Description)
		signals.HasReturnDoc = doc.Returns != nil && doc.Returns.Description != ""
		signals.ExampleCount = len(doc.Examples)
	}

	factors := domain.FactorsFromSignals(signals, domain.SourceCode)
	return domain.ExtractedTool{
		Name:              name,
		Description:       description,
		InputSchema:       domain.ObjectSchema(properties, required),
		Source:            domain.ToolSource{Type: domain.SourceCode, File: file, Line: line},
		Confidence:        factors.Score(),
		ConfidenceFactors: &factors,
	}
}

// jsonSchemaKind maps a loosely written doc type onto a JSON-Schema
// primitive category. Used for doc-only types; signature types go through
// the language-specific mappers.
func jsonSchemaKind(raw string) string {
	t := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case t == "":
		return "string"
	case strings.HasPrefix(t, "str") || t == "char" || t == "symbol" || t == "text":
		return "string"
	case strings.HasPrefix(t, "int") || strings.HasPrefix(t, "uint") || t == "long" || t == "short" || t == "byte":
		return "integer"
	case strings.HasPrefix(t, "float") || strings.HasPrefix(t, "double") || t == "number" || t == "numeric" || t == "decimal":
		return "number"
	case strings.HasPrefix(t, "bool"):
		return "boolean"
	case strings.HasPrefix(t, "list") || strings.HasPrefix(t, "array") || strings.HasPrefix(t, "vec") || strings.HasPrefix(t, "[]"):
		return "array"
	case strings.HasPrefix(t, "dict") || strings.HasPrefix(t, "map") || strings.HasPrefix(t, "hash") || t == "object":
		return "object"
	case t == "none" || t == "null" || t == "nil":
		return "null"
	default:
		return "string"
	}
}

// SplitParams splits a raw parameter list on top-level commas. Bracket
// depth is tracked across (), [], {}, and <> so composite and generic
// types keep their inner commas; quoted strings are opaque.
func SplitParams(raw string) []string {
	var parts []string
	depth := 0
	var quote byte
	start := 0

	for i := 0; i < len(raw); i++ {
		ch := raw[i]
		if quote != 0 {
			if ch == quote && (i == 0 || raw[i-1] != '\\') {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"', '`':
			quote = ch
		case '(', '[', '{', '<':
			depth++
		case ')', ']', '}', '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(raw[start:i]))
				start = i + 1
			}
		}
	}
	if trailing := strings.TrimSpace(raw[start:]); trailing != "" {
		parts = append(parts, trailing)
	}

	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// matchParen returns the index just past the parenthesis closing the one at
// open, or -1 when unbalanced.
func matchParen(code string, open int) int {
	depth := 0
	var quote byte
	for i := open; i < len(code); i++ {
		ch := code[i]
		if quote != 0 {
			if ch == quote && code[i-1] != '\\' {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// lineAt returns the 1-based line number of a byte offset.
func lineAt(code string, pos int) int {
	if pos > len(code) {
		pos = len(code)
	}
	return strings.Count(code[:pos], "\n") + 1
}

// precedingCommentLines walks backward from pos collecting contiguous
// comment lines carrying the given prefix, nearest last.
func precedingCommentLines(code string, pos int, prefix string) []string {
	var lines []string
	rest := code[:pos]
	// pos usually sits at the start of the definition line.
	rest = strings.TrimSuffix(rest, "\n")
	for {
		nl := strings.LastIndexByte(rest, '\n')
		var line string
		if nl < 0 {
			line = rest
		} else {
			line = rest[nl+1:]
		}
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, prefix) {
			break
		}
		lines = append([]string{strings.TrimSpace(strings.TrimPrefix(trimmed, prefix))}, lines...)
		if nl < 0 {
			break
		}
		rest = rest[:nl]
	}
	return lines
}
