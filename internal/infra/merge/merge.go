// Package merge reconciles tools discovered by multiple extractors into a
// set unique by name.
package merge

import "toolforge/internal/domain"

// Merge deduplicates tools by name, preserving the insertion order of each
// name's first occurrence. On a collision the tool from the higher-priority
// source wins; ties keep the earliest-seen tool. Priority is decided by
// source type alone, never by the confidence field. Idempotent.
func Merge(tools []domain.ExtractedTool) []domain.ExtractedTool {
	merged := make([]domain.ExtractedTool, 0, len(tools))
	index := make(map[string]int, len(tools))

	for _, tool := range tools {
		at, seen := index[tool.Name]
		if !seen {
			index[tool.Name] = len(merged)
			merged = append(merged, tool)
			continue
		}
		if tool.Source.Type.Priority() > merged[at].Source.Type.Priority() {
			merged[at] = tool
		}
	}

	return merged
}
