package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"go.uber.org/zap"

	"toolforge/internal/domain"
)

// ReadmeExtractor scans README code fences for call-shaped usage examples.
// Prose evidence is weak; everything found here carries the readme source
// type and loses merges against structured sources.
type ReadmeExtractor struct {
	logger   *zap.Logger
	maxTools int
}

func NewReadmeExtractor(logger *zap.Logger) *ReadmeExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReadmeExtractor{logger: logger.Named("extract.readme"), maxTools: 20}
}

func (e *ReadmeExtractor) Name() string { return "readme" }

var (
	fenceRe = regexp.MustCompile("(?s)```[\\w-]*\\n(.*?)```")
	callRe  = regexp.MustCompile(`(?m)^[ \t]*(?:await[ \t]+)?(?:(?:const|let|var|result|resp)[ \t]+[\w$]+[ \t]*=[ \t]*(?:await[ \t]+)?)?([A-Za-z_][\w.]*)\(([^()\n]*)\)`)

	// Call-shaped noise that is not an API surface.
	readmeNoise = map[string]struct{}{
		"log": {}, "print": {}, "println": {}, "printf": {}, "require": {},
		"import": {}, "assert": {}, "expect": {}, "describe": {}, "it": {},
		"test": {}, "main": {}, "exit": {}, "len": {}, "str": {}, "type": {},
		"stringify": {}, "parse": {}, "error": {}, "warn": {}, "info": {},
	}
)

func (e *ReadmeExtractor) Extract(ctx context.Context, ev *Evidence) ([]domain.ExtractedTool, error) {
	if strings.TrimSpace(ev.Readme) == "" {
		return nil, nil
	}

	var tools []domain.ExtractedTool
	seen := map[string]struct{}{}

	for _, fence := range fenceRe.FindAllStringSubmatchIndex(ev.Readme, -1) {
		block := ev.Readme[fence[2]:fence[3]]
		heading := precedingHeading(ev.Readme, fence[0])

		for _, call := range callRe.FindAllStringSubmatch(block, -1) {
			name := lastSegment(call[1])
			if len(name) < 3 {
				continue
			}
			if _, noise := readmeNoise[strings.ToLower(name)]; noise {
				continue
			}
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			description := "Usage example from README"
			if heading != "" {
				description = heading + " (README usage example)"
			}

			tool := buildReadmeTool(name, call[2], description)
			tools = append(tools, tool)
			if len(tools) >= e.maxTools {
				return tools, nil
			}
		}
	}
	return tools, nil
}

var (
	identRe   = regexp.MustCompile(`^[A-Za-z_][\w]*$`)
	intLitRe  = regexp.MustCompile(`^-?\d+$`)
	numLitRe  = regexp.MustCompile(`^-?\d*\.\d+$`)
)

func buildReadmeTool(name, rawArgs, description string) domain.ExtractedTool {
	properties := map[string]*jsonschema.Schema{}
	var required []string

	for i, arg := range strings.Split(rawArgs, ",") {
		arg = strings.TrimSpace(arg)
		if arg == "" {
			continue
		}
		paramName := "arg" + string(rune('0'+i%10))
		if identRe.MatchString(arg) {
			paramName = arg
		}
		properties[paramName] = &jsonschema.Schema{Type: argKind(arg)}
		required = append(required, paramName)
	}

	signals := domain.DocSignals{
		DescriptionLen: len(description),
		ParamCount:     len(required),
		ExampleCount:   1,
	}
	factors := domain.FactorsFromSignals(signals, domain.SourceReadme)
	return domain.ExtractedTool{
		Name:              name,
		Description:       description,
		InputSchema:       domain.ObjectSchema(properties, required),
		Source:            domain.ToolSource{Type: domain.SourceReadme, File: "README.md"},
		Confidence:        factors.Score(),
		ConfidenceFactors: &factors,
	}
}

// argKind guesses a schema kind from an example argument literal.
func argKind(arg string) string {
	switch {
	case strings.HasPrefix(arg, `"`) || strings.HasPrefix(arg, "'") || strings.HasPrefix(arg, "`"):
		return "string"
	case arg == "true" || arg == "false":
		return "boolean"
	case strings.HasPrefix(arg, "{"):
		return "object"
	case strings.HasPrefix(arg, "["):
		return "array"
	case intLitRe.MatchString(arg):
		return "integer"
	case numLitRe.MatchString(arg):
		return "number"
	default:
		return "string"
	}
}

func lastSegment(dotted string) string {
	if at := strings.LastIndexByte(dotted, '.'); at >= 0 {
		return dotted[at+1:]
	}
	return dotted
}

// precedingHeading finds the nearest markdown heading above pos.
func precedingHeading(readme string, pos int) string {
	for _, line := range reverseLines(readme[:pos]) {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "#") {
			return strings.TrimSpace(strings.TrimLeft(trimmed, "# "))
		}
	}
	return ""
}

func reverseLines(s string) []string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for i := len(lines) - 1; i >= 0; i-- {
		out = append(out, lines[i])
	}
	return out
}
