// Package classify assigns a repository type and confidence from heuristic
// README and metadata signals. The cascade is deterministic: categories are
// checked in a fixed order and the first match wins.
package classify

import (
	"fmt"
	"strings"

	"toolforge/internal/domain"
)

type category struct {
	repoType   domain.RepoType
	confidence float64
	keywords   []string
}

// Categories in check order. MCP servers are the most specific signal and
// are probed first; package-install phrasing is the weakest positive match.
var cascade = []category{
	{
		repoType:   domain.RepoMCPServer,
		confidence: 0.9,
		keywords: []string{
			"model context protocol",
			"mcp server",
			"mcp-server",
			"@modelcontextprotocol/",
			"modelcontextprotocol/go-sdk",
			"mark3labs/mcp-go",
		},
	},
	{
		repoType:   domain.RepoAPISDK,
		confidence: 0.8,
		keywords: []string{
			"api client",
			"api wrapper",
			"rest api",
			"graphql api",
			"sdk for",
			"official sdk",
			"openapi",
			"swagger",
			"api reference",
		},
	},
	{
		repoType:   domain.RepoCLITool,
		confidence: 0.7,
		keywords: []string{
			"command line",
			"command-line",
			"cli tool",
			"cli for",
			"usage: ",
			"--help",
			"terminal tool",
		},
	},
	{
		repoType:   domain.RepoLibrary,
		confidence: 0.6,
		keywords: []string{
			"pip install",
			"npm install",
			"yarn add",
			"cargo add",
			"go get ",
			"gem install",
			"composer require",
			"import ",
			"require(",
		},
	},
	{
		repoType:   domain.RepoDocumentation,
		confidence: 0.5,
		keywords: []string{
			"documentation site",
			"docs site",
			"awesome list",
			"curated list",
			"tutorial",
			"handbook",
			"cheat sheet",
		},
	},
}

// Classify runs the keyword cascade over the lowercased README, then applies
// language and popularity boosts capped at 1.0. An empty or unmatched README
// resolves to unknown with confidence 0.3; ambiguity is not an error.
func Classify(readme string, meta domain.RepoMetadata) domain.RepoClassification {
	lowered := strings.ToLower(readme)

	result := domain.RepoClassification{
		Type:       domain.RepoUnknown,
		Confidence: 0.3,
	}

	for _, cat := range cascade {
		if keyword, ok := firstMatch(lowered, cat.keywords); ok {
			result.Type = cat.repoType
			result.Confidence = cat.confidence
			result.Indicators = append(result.Indicators, "keyword:"+keyword)
			break
		}
	}

	if lang := strings.ToLower(meta.Language); lang != "" {
		if _, known := domain.WellKnownLanguages[lang]; known {
			result.Confidence += 0.1
			result.Indicators = append(result.Indicators, "language:"+lang)
		}
	}
	if meta.Stars > 1000 {
		result.Confidence += 0.05
		result.Indicators = append(result.Indicators, fmt.Sprintf("stars:%d", meta.Stars))
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}

	return result
}

func firstMatch(text string, keywords []string) (string, bool) {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return keyword, true
		}
	}
	return "", false
}
